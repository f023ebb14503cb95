package source

import (
	"strings"
	"unicode"

	"github.com/openprocure/procurement-pipeline/internal/clean"
	"github.com/openprocure/procurement-pipeline/internal/codes"
	"github.com/openprocure/procurement-pipeline/internal/model"
)

// French returns the profile for the French national procurement journal.
// Notices use comma decimals with space grouping, day-first dates, and
// oui/non booleans.
func French() *Profile {
	return &Profile{
		Name:     "fr",
		Version:  "3",
		Priority: 5,

		NumberFormats: []clean.NumberFormat{
			{DecimalSep: ',', GroupingSep: ' '},
			{DecimalSep: '.', GroupingSep: ','},
		},
		DateLayouts: []string{
			"02/01/2006",
			"2006-01-02",
			"02-01-2006",
		},
		DateTimeLayouts: []string{
			"02/01/2006 15:04",
			"02/01/2006 15h04",
			"2006-01-02T15:04:05",
		},

		Procedures: codes.NewMappingTable("procedureType",
			codes.Entry{Code: string(codes.ProcedureOpen), Literals: []string{
				"appel d'offres ouvert", "procédure ouverte",
			}},
			codes.Entry{Code: string(codes.ProcedureRestricted), Literals: []string{
				"appel d'offres restreint", "procédure restreinte",
			}},
			codes.Entry{Code: string(codes.ProcedureNegotiated), Literals: []string{
				"marché négocié", "procédure négociée",
			}},
			codes.Entry{Code: string(codes.ProcedureNegotiatedWithPublication), Literals: []string{
				"procédure concurrentielle avec négociation",
			}},
			codes.Entry{Code: string(codes.ProcedureNegotiatedWithoutPublication), Literals: []string{
				"marché négocié sans publicité",
			}},
			codes.Entry{Code: string(codes.ProcedureCompetitiveDialog), Literals: []string{
				"dialogue compétitif",
			}},
			codes.Entry{Code: string(codes.ProcedureDesignContest), Literals: []string{
				"concours", "concours de maîtrise d'oeuvre",
			}},
			codes.Entry{Code: string(codes.ProcedureOther), Literals: []string{
				"procédure adaptée", "autre procédure",
			}},
		).Override("autre", string(codes.ProcedureOther)),

		Supplies: codes.NewMappingTable("supplyType",
			codes.Entry{Code: string(codes.SupplyWorks), Literals: []string{"travaux"}},
			codes.Entry{Code: string(codes.SupplyServices), Literals: []string{"services"}},
			codes.Entry{Code: string(codes.SupplySupplies), Literals: []string{"fournitures"}},
		).Override("autre", string(codes.SupplyOther)),

		Selections: codes.NewMappingTable("selectionMethod",
			codes.Entry{Code: string(codes.SelectionLowestPrice), Literals: []string{
				"prix le plus bas",
			}},
			codes.Entry{Code: string(codes.SelectionMEAT), Literals: []string{
				"offre économiquement la plus avantageuse",
				"offre economiquement la plus avantageuse",
			}},
		),

		BuyerTypes: codes.NewMappingTable("buyerType",
			codes.Entry{Code: string(codes.BuyerNationalAuthority), Literals: []string{
				"ministère", "état", "autorité nationale",
			}},
			codes.Entry{Code: string(codes.BuyerRegionalAuthority), Literals: []string{
				"collectivité territoriale", "commune", "département", "région",
			}},
			codes.Entry{Code: string(codes.BuyerPublicBody), Literals: []string{
				"organisme de droit public", "établissement public",
			}},
			codes.Entry{Code: string(codes.BuyerUtility), Literals: []string{
				"entité adjudicatrice", "opérateur de réseaux",
			}},
		).Override("autre", string(codes.BuyerOther)),

		Activities: codes.NewMappingTable("mainActivity",
			codes.Entry{Code: string(codes.ActivityGeneralPublicServices), Literals: []string{
				"services généraux des administrations publiques",
			}},
			codes.Entry{Code: string(codes.ActivityDefence), Literals: []string{"défense"}},
			codes.Entry{Code: string(codes.ActivityHealth), Literals: []string{"santé"}},
			codes.Entry{Code: string(codes.ActivityEducation), Literals: []string{"éducation"}},
			codes.Entry{Code: string(codes.ActivityEnvironment), Literals: []string{"environnement"}},
			codes.Entry{Code: string(codes.ActivityWater), Literals: []string{"eau"}},
			codes.Entry{Code: string(codes.ActivityUrbanTransport), Literals: []string{
				"services de chemin de fer urbain, de tramway ou d'autobus",
			}},
			codes.Entry{Code: string(codes.ActivitySocialProtection), Literals: []string{
				"protection sociale",
			}},
		).Override("autre", string(codes.ActivityOther)),

		FormTypes: codes.NewMappingTable("formType",
			codes.Entry{Code: string(codes.FormContractNotice), Literals: []string{
				"avis de marché", "avis d'appel public à la concurrence",
			}},
			codes.Entry{Code: string(codes.FormContractAward), Literals: []string{
				"avis d'attribution", "avis d'attribution de marché",
			}},
			codes.Entry{Code: string(codes.FormContractUpdate), Literals: []string{
				"avis rectificatif",
			}},
			codes.Entry{Code: string(codes.FormContractCancellation), Literals: []string{
				"avis d'annulation",
			}},
			codes.Entry{Code: string(codes.FormPriorInformation), Literals: []string{
				"avis de pré-information",
			}},
		),

		RequirePublicationDate: true,
		RequireBuyerName:       true,

		TenderHooks: clean.Hooks[model.ParsedTender, model.CleanTender]{
			PreProcess: frenchPreProcess,
		},
	}
}

// frenchPreProcess rewrites locale quirks the common plugins do not know
// about: oui/non booleans and award criterion weights written as "60 %".
func frenchPreProcess(t *model.ParsedTender) *model.ParsedTender {
	cp := *t
	cp.IsFrameworkAgreement = frenchBool(cp.IsFrameworkAgreement)
	cp.AreVariantsAccepted = frenchBool(cp.AreVariantsAccepted)

	cp.Lots = append([]model.ParsedLot(nil), cp.Lots...)
	for i := range cp.Lots {
		cp.Lots[i].Bids = append([]model.ParsedBid(nil), cp.Lots[i].Bids...)
		for j := range cp.Lots[i].Bids {
			cp.Lots[i].Bids[j].IsWinning = frenchBool(cp.Lots[i].Bids[j].IsWinning)
		}
	}

	cp.Publications = append([]model.ParsedPublication(nil), cp.Publications...)
	for i := range cp.Publications {
		cp.Publications[i].IsIncluded = frenchBool(cp.Publications[i].IsIncluded)
	}

	cp.AwardCriteria = append([]model.ParsedAwardCriterion(nil), cp.AwardCriteria...)
	for i := range cp.AwardCriteria {
		cp.AwardCriteria[i].Weight = digitsOnly(cp.AwardCriteria[i].Weight)
	}
	return &cp
}

func frenchBool(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "oui":
		return "true"
	case "non":
		return "false"
	}
	return raw
}

// digitsOnly strips everything but digits, turning "60 %" into "60". An
// all-symbol value collapses to empty and stays absent.
func digitsOnly(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
