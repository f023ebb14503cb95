package source

import (
	"github.com/openprocure/procurement-pipeline/internal/clean"
	"github.com/openprocure/procurement-pipeline/internal/codes"
)

// Generic returns the fallback profile for feeds that already publish
// ISO-ish values: dot decimals, ISO dates, English code literals. Lowest
// merge priority; any curated profile beats it.
func Generic() *Profile {
	return &Profile{
		Name:     "generic",
		Version:  "1",
		Priority: 1,

		NumberFormats: []clean.NumberFormat{
			{DecimalSep: '.', GroupingSep: ','},
			{DecimalSep: '.', GroupingSep: ' '},
		},
		DateLayouts: []string{
			"2006-01-02",
			"02/01/2006",
		},
		DateTimeLayouts: []string{
			"2006-01-02T15:04:05Z07:00",
			"2006-01-02T15:04:05",
			"2006-01-02 15:04",
		},

		Procedures: codes.NewMappingTable("procedureType",
			codes.Entry{Code: string(codes.ProcedureOpen), Literals: []string{"open"}},
			codes.Entry{Code: string(codes.ProcedureRestricted), Literals: []string{"restricted"}},
			codes.Entry{Code: string(codes.ProcedureNegotiated), Literals: []string{"negotiated"}},
			codes.Entry{Code: string(codes.ProcedureNegotiatedWithPublication), Literals: []string{
				"negotiated with publication", "competitive procedure with negotiation",
			}},
			codes.Entry{Code: string(codes.ProcedureNegotiatedWithoutPublication), Literals: []string{
				"negotiated without publication",
			}},
			codes.Entry{Code: string(codes.ProcedureCompetitiveDialog), Literals: []string{
				"competitive dialogue", "competitive dialog",
			}},
			codes.Entry{Code: string(codes.ProcedureDesignContest), Literals: []string{"design contest"}},
			codes.Entry{Code: string(codes.ProcedureOutrightAward), Literals: []string{
				"direct award", "outright award",
			}},
			codes.Entry{Code: string(codes.ProcedureMinitender), Literals: []string{"minitender"}},
			codes.Entry{Code: string(codes.ProcedureOther), Literals: []string{"other"}},
		),

		Supplies: codes.NewMappingTable("supplyType",
			codes.Entry{Code: string(codes.SupplyWorks), Literals: []string{"works"}},
			codes.Entry{Code: string(codes.SupplyServices), Literals: []string{"services"}},
			codes.Entry{Code: string(codes.SupplySupplies), Literals: []string{"supplies", "goods"}},
			codes.Entry{Code: string(codes.SupplyOther), Literals: []string{"other"}},
		),

		Selections: codes.NewMappingTable("selectionMethod",
			codes.Entry{Code: string(codes.SelectionLowestPrice), Literals: []string{"lowest price"}},
			codes.Entry{Code: string(codes.SelectionMEAT), Literals: []string{
				"meat", "most economically advantageous tender", "best price-quality ratio",
			}},
		),

		BuyerTypes: codes.NewMappingTable("buyerType",
			codes.Entry{Code: string(codes.BuyerNationalAuthority), Literals: []string{
				"national authority", "ministry",
			}},
			codes.Entry{Code: string(codes.BuyerNationalAgency), Literals: []string{"national agency"}},
			codes.Entry{Code: string(codes.BuyerRegionalAuthority), Literals: []string{
				"regional authority", "local authority", "municipality",
			}},
			codes.Entry{Code: string(codes.BuyerRegionalAgency), Literals: []string{"regional agency"}},
			codes.Entry{Code: string(codes.BuyerPublicBody), Literals: []string{
				"body governed by public law", "public body",
			}},
			codes.Entry{Code: string(codes.BuyerEuropeanAgency), Literals: []string{
				"european institution", "european agency",
			}},
			codes.Entry{Code: string(codes.BuyerUtility), Literals: []string{"utility", "utilities"}},
			codes.Entry{Code: string(codes.BuyerOther), Literals: []string{"other"}},
		),

		Activities: codes.NewMappingTable("mainActivity",
			codes.Entry{Code: string(codes.ActivityGeneralPublicServices), Literals: []string{
				"general public services",
			}},
			codes.Entry{Code: string(codes.ActivityDefence), Literals: []string{"defence", "defense"}},
			codes.Entry{Code: string(codes.ActivityPublicOrderAndSafety), Literals: []string{
				"public order and safety",
			}},
			codes.Entry{Code: string(codes.ActivityEnvironment), Literals: []string{"environment"}},
			codes.Entry{Code: string(codes.ActivityEconomicAndFinancial), Literals: []string{
				"economic and financial affairs",
			}},
			codes.Entry{Code: string(codes.ActivityHealth), Literals: []string{"health"}},
			codes.Entry{Code: string(codes.ActivityEducation), Literals: []string{"education"}},
			codes.Entry{Code: string(codes.ActivityWater), Literals: []string{"water"}},
			codes.Entry{Code: string(codes.ActivityElectricity), Literals: []string{"electricity"}},
			codes.Entry{Code: string(codes.ActivityPostal), Literals: []string{"postal services", "postal"}},
			codes.Entry{Code: string(codes.ActivityUrbanTransport), Literals: []string{
				"urban transport", "urban railway, tramway, trolleybus or bus services",
			}},
			codes.Entry{Code: string(codes.ActivityAirport), Literals: []string{"airport-related activities"}},
			codes.Entry{Code: string(codes.ActivityPort), Literals: []string{"port-related activities"}},
			codes.Entry{Code: string(codes.ActivityGasAndOilExtraction), Literals: []string{
				"extraction of gas and oil",
			}},
			codes.Entry{Code: string(codes.ActivitySocialProtection), Literals: []string{"social protection"}},
			codes.Entry{Code: string(codes.ActivityRecreationCultureReligion), Literals: []string{
				"recreation, culture and religion",
			}},
			codes.Entry{Code: string(codes.ActivityOther), Literals: []string{"other"}},
		),

		FormTypes: codes.NewMappingTable("formType",
			codes.Entry{Code: string(codes.FormContractNotice), Literals: []string{"contract notice"}},
			codes.Entry{Code: string(codes.FormContractAward), Literals: []string{
				"contract award", "contract award notice",
			}},
			codes.Entry{Code: string(codes.FormContractImplementation), Literals: []string{
				"contract implementation",
			}},
			codes.Entry{Code: string(codes.FormPriorInformation), Literals: []string{
				"prior information notice",
			}},
			codes.Entry{Code: string(codes.FormContractCancellation), Literals: []string{
				"contract cancellation",
			}},
			codes.Entry{Code: string(codes.FormContractUpdate), Literals: []string{
				"contract update", "corrigendum",
			}},
			codes.Entry{Code: string(codes.FormOther), Literals: []string{"other"}},
		),
	}
}
