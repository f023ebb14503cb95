package source

import (
	"strings"

	"github.com/openprocure/procurement-pipeline/internal/clean"
	"github.com/openprocure/procurement-pipeline/internal/codes"
	"github.com/openprocure/procurement-pipeline/internal/model"
)

// Portuguese returns the profile for the Portuguese public contracts
// portal. Contracts there use comma decimals with dot grouping, day-first
// dates, and sim/não booleans.
func Portuguese() *Profile {
	return &Profile{
		Name:     "pt",
		Version:  "2",
		Priority: 5,

		NumberFormats: []clean.NumberFormat{
			{DecimalSep: ',', GroupingSep: '.'},
			{DecimalSep: '.', GroupingSep: ','},
		},
		DateLayouts: []string{
			"02-01-2006",
			"02/01/2006",
			"2006-01-02",
		},
		DateTimeLayouts: []string{
			"02-01-2006 15:04",
			"2006-01-02T15:04:05",
		},

		Procedures: codes.NewMappingTable("procedureType",
			codes.Entry{Code: string(codes.ProcedureOpen), Literals: []string{
				"concurso público", "concurso publico",
			}},
			codes.Entry{Code: string(codes.ProcedureRestricted), Literals: []string{
				"concurso limitado por prévia qualificação",
			}},
			codes.Entry{Code: string(codes.ProcedureNegotiated), Literals: []string{
				"procedimento de negociação",
			}},
			codes.Entry{Code: string(codes.ProcedureOutrightAward), Literals: []string{
				"ajuste direto", "ajuste directo", "consulta prévia",
			}},
			codes.Entry{Code: string(codes.ProcedureCompetitiveDialog), Literals: []string{
				"diálogo concorrencial",
			}},
			codes.Entry{Code: string(codes.ProcedureDesignContest), Literals: []string{
				"concurso de concepção",
			}},
			codes.Entry{Code: string(codes.ProcedureOther), Literals: []string{
				"outro procedimento",
			}},
		).Override("outro", string(codes.ProcedureOther)),

		Supplies: codes.NewMappingTable("supplyType",
			codes.Entry{Code: string(codes.SupplyWorks), Literals: []string{
				"empreitadas de obras públicas", "obras",
			}},
			codes.Entry{Code: string(codes.SupplyServices), Literals: []string{
				"aquisição de serviços", "serviços",
			}},
			codes.Entry{Code: string(codes.SupplySupplies), Literals: []string{
				"aquisição de bens móveis", "bens",
			}},
		).Override("outro", string(codes.SupplyOther)),

		Selections: codes.NewMappingTable("selectionMethod",
			codes.Entry{Code: string(codes.SelectionLowestPrice), Literals: []string{
				"preço mais baixo", "preco mais baixo",
			}},
			codes.Entry{Code: string(codes.SelectionMEAT), Literals: []string{
				"proposta economicamente mais vantajosa",
			}},
		),

		BuyerTypes: codes.NewMappingTable("buyerType",
			codes.Entry{Code: string(codes.BuyerNationalAuthority), Literals: []string{
				"estado", "administração central",
			}},
			codes.Entry{Code: string(codes.BuyerRegionalAuthority), Literals: []string{
				"autarquia local", "município", "administração regional",
			}},
			codes.Entry{Code: string(codes.BuyerPublicBody), Literals: []string{
				"instituto público", "organismo de direito público",
			}},
			codes.Entry{Code: string(codes.BuyerUtility), Literals: []string{
				"setor dos serviços públicos essenciais",
			}},
		).Override("outro", string(codes.BuyerOther)),

		Activities: codes.NewMappingTable("mainActivity",
			codes.Entry{Code: string(codes.ActivityGeneralPublicServices), Literals: []string{
				"serviços públicos gerais",
			}},
			codes.Entry{Code: string(codes.ActivityDefence), Literals: []string{"defesa"}},
			codes.Entry{Code: string(codes.ActivityHealth), Literals: []string{"saúde", "saude"}},
			codes.Entry{Code: string(codes.ActivityEducation), Literals: []string{"educação"}},
			codes.Entry{Code: string(codes.ActivityEnvironment), Literals: []string{"ambiente"}},
			codes.Entry{Code: string(codes.ActivityWater), Literals: []string{"água"}},
		).Override("outro", string(codes.ActivityOther)),

		FormTypes: codes.NewMappingTable("formType",
			codes.Entry{Code: string(codes.FormContractNotice), Literals: []string{
				"anúncio de procedimento",
			}},
			codes.Entry{Code: string(codes.FormContractAward), Literals: []string{
				"anúncio de adjudicação", "contrato",
			}},
			codes.Entry{Code: string(codes.FormContractUpdate), Literals: []string{
				"declaração de retificação de anúncio",
			}},
		),

		TenderHooks: clean.Hooks[model.ParsedTender, model.CleanTender]{
			PreProcess: portuguesePreProcess,
		},
	}
}

// portuguesePreProcess rewrites sim/não booleans before the common
// plugins run.
func portuguesePreProcess(t *model.ParsedTender) *model.ParsedTender {
	cp := *t
	cp.IsFrameworkAgreement = portugueseBool(cp.IsFrameworkAgreement)
	cp.AreVariantsAccepted = portugueseBool(cp.AreVariantsAccepted)

	cp.Lots = append([]model.ParsedLot(nil), cp.Lots...)
	for i := range cp.Lots {
		cp.Lots[i].Bids = append([]model.ParsedBid(nil), cp.Lots[i].Bids...)
		for j := range cp.Lots[i].Bids {
			cp.Lots[i].Bids[j].IsWinning = portugueseBool(cp.Lots[i].Bids[j].IsWinning)
		}
	}
	return &cp
}

func portugueseBool(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "sim":
		return "true"
	case "não", "nao":
		return "false"
	}
	return raw
}
