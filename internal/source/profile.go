// Package source configures the pipeline per source system: formats,
// code mapping tables, hooks, and merge priority. A profile is the only
// thing that differs between harvested portals; the engines themselves
// are source-agnostic.
package source

import (
	"github.com/openprocure/procurement-pipeline/internal/clean"
	"github.com/openprocure/procurement-pipeline/internal/codes"
	"github.com/openprocure/procurement-pipeline/internal/model"
)

// Profile describes one source system.
type Profile struct {
	// Name is the source system identifier carried on record envelopes.
	Name string

	// Version tags clean records produced under this profile. Bump it when
	// formats, tables, or hooks change; the deterministic record id keys on
	// it, so a bump re-cleans into new records.
	Version string

	// Priority ranks this source during mastering. Higher wins field
	// conflicts; unregistered sources rank zero.
	Priority int

	NumberFormats   []clean.NumberFormat
	DateLayouts     []string
	DateTimeLayouts []string

	Procedures *codes.MappingTable
	Supplies   *codes.MappingTable
	Selections *codes.MappingTable
	BuyerTypes *codes.MappingTable
	Activities *codes.MappingTable
	FormTypes  *codes.MappingTable

	// RequirePublicationDate rejects tenders whose publication date does
	// not parse, instead of leaving the field absent.
	RequirePublicationDate bool

	// RequireBuyerName rejects tenders without a named buyer.
	RequireBuyerName bool

	TenderHooks clean.Hooks[model.ParsedTender, model.CleanTender]
	BodyHooks   clean.Hooks[model.ParsedBody, model.CleanBody]
}

// TenderCleaner assembles the cleaning engine for this profile's tenders.
// Plugin order is fixed across profiles so records from different sources
// go through the same stages.
func (p *Profile) TenderCleaner() *clean.TenderCleaner {
	reg := clean.NewRegistry[model.ParsedTender, model.CleanTender]()
	reg.Register("text", clean.TextPlugin{}).
		Register("date", &clean.DatePlugin{
			Layouts:                p.DateLayouts,
			RequirePublicationDate: p.RequirePublicationDate,
		}).
		Register("datetime", &clean.DateTimePlugin{Layouts: p.DateTimeLayouts}).
		Register("price", &clean.PricePlugin{Formats: p.NumberFormats}).
		Register("procedure_type", clean.ProcedureTypePlugin(p.Procedures)).
		Register("supply_type", clean.SupplyTypePlugin(p.Supplies)).
		Register("selection_method", clean.SelectionMethodPlugin(p.Selections)).
		Register("body", &clean.BodyPlugin{
			BuyerTypes:  p.BuyerTypes,
			Activities:  p.Activities,
			RequireName: p.RequireBuyerName,
		}).
		Register("lot", &clean.LotPlugin{
			Numbers:    p.NumberFormats,
			Dates:      p.DateLayouts,
			BuyerTypes: p.BuyerTypes,
			Activities: p.Activities,
		}).
		Register("publication", &clean.PublicationPlugin{
			Dates:     p.DateLayouts,
			FormTypes: p.FormTypes,
		}).
		Register("award_criteria", &clean.AwardCriteriaPlugin{Numbers: p.NumberFormats})

	return &clean.TenderCleaner{
		Engine: clean.New(p.Name+"/"+p.Version, reg, p.TenderHooks),
	}
}

// BodyCleaner assembles the cleaning engine for this profile's standalone
// organization records.
func (p *Profile) BodyCleaner() *clean.BodyCleaner {
	reg := clean.NewRegistry[model.ParsedBody, model.CleanBody]()
	reg.Register("body_fields", &clean.BodyFieldsPlugin{
		BuyerTypes:  p.BuyerTypes,
		Activities:  p.Activities,
		RequireName: true,
	})

	return &clean.BodyCleaner{
		Engine: clean.New(p.Name+"/"+p.Version, reg, p.BodyHooks),
	}
}
