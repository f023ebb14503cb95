// Package codes defines the closed enumerated code sets used by clean
// records, and the mapping tables that translate source literals into them.
package codes

// ProcedureType classifies the award procedure of a tender.
type ProcedureType string

// Procedure types.
const (
	ProcedureOpen                     ProcedureType = "OPEN"
	ProcedureRestricted               ProcedureType = "RESTRICTED"
	ProcedureNegotiated               ProcedureType = "NEGOTIATED"
	ProcedureNegotiatedWithPublication ProcedureType = "NEGOTIATED_WITH_PUBLICATION"
	ProcedureNegotiatedWithoutPublication ProcedureType = "NEGOTIATED_WITHOUT_PUBLICATION"
	ProcedureCompetitiveDialog        ProcedureType = "COMPETITIVE_DIALOG"
	ProcedureDesignContest            ProcedureType = "DESIGN_CONTEST"
	ProcedureOutrightAward            ProcedureType = "OUTRIGHT_AWARD"
	ProcedureMinitender               ProcedureType = "MINITENDER"
	ProcedureOther                    ProcedureType = "OTHER"
)

// SupplyType classifies what is being procured.
type SupplyType string

// Supply types.
const (
	SupplyWorks    SupplyType = "WORKS"
	SupplyServices SupplyType = "SERVICES"
	SupplySupplies SupplyType = "SUPPLIES"
	SupplyOther    SupplyType = "OTHER"
)

// SelectionMethod classifies how the winning bid is selected.
type SelectionMethod string

// Selection methods.
const (
	SelectionLowestPrice SelectionMethod = "LOWEST_PRICE"
	SelectionMEAT        SelectionMethod = "MEAT"
)

// BuyerType classifies the buying organization.
type BuyerType string

// Buyer types.
const (
	BuyerPublicBody        BuyerType = "PUBLIC_BODY"
	BuyerNationalAgency    BuyerType = "NATIONAL_AGENCY"
	BuyerNationalAuthority BuyerType = "NATIONAL_AUTHORITY"
	BuyerRegionalAgency    BuyerType = "REGIONAL_AGENCY"
	BuyerRegionalAuthority BuyerType = "REGIONAL_AUTHORITY"
	BuyerEuropeanAgency    BuyerType = "EUROPEAN_AGENCY"
	BuyerUtility           BuyerType = "UTILITY"
	BuyerOther             BuyerType = "OTHER"
)

// BuyerActivityType classifies the buyer's main field of activity.
type BuyerActivityType string

// Buyer activities.
const (
	ActivityGeneralPublicServices BuyerActivityType = "GENERAL_PUBLIC_SERVICES"
	ActivityDefence               BuyerActivityType = "DEFENCE"
	ActivityPublicOrderAndSafety  BuyerActivityType = "PUBLIC_ORDER_AND_SAFETY"
	ActivityEnvironment           BuyerActivityType = "ENVIRONMENT"
	ActivityEconomicAndFinancial  BuyerActivityType = "ECONOMIC_AND_FINANCIAL_AFFAIRS"
	ActivityHealth                BuyerActivityType = "HEALTH"
	ActivityEducation             BuyerActivityType = "EDUCATION"
	ActivityWater                 BuyerActivityType = "WATER"
	ActivityElectricity           BuyerActivityType = "ELECTRICITY"
	ActivityPostal                BuyerActivityType = "POSTAL"
	ActivityUrbanTransport        BuyerActivityType = "URBAN_TRANSPORT"
	ActivityAirport               BuyerActivityType = "AIRPORT"
	ActivityPort                  BuyerActivityType = "PORT"
	ActivityGasAndOilExtraction   BuyerActivityType = "GAS_AND_OIL_EXTRACTION"
	ActivitySocialProtection      BuyerActivityType = "SOCIAL_PROTECTION"
	ActivityRecreationCultureReligion BuyerActivityType = "RECREATION_CULTURE_AND_RELIGION"
	ActivityOther                 BuyerActivityType = "OTHER"
)

// FormType classifies the publication form of a notice.
type FormType string

// Form types.
const (
	FormContractNotice       FormType = "CONTRACT_NOTICE"
	FormContractAward        FormType = "CONTRACT_AWARD"
	FormContractImplementation FormType = "CONTRACT_IMPLEMENTATION"
	FormPriorInformation     FormType = "PRIOR_INFORMATION_NOTICE"
	FormContractCancellation FormType = "CONTRACT_CANCELLATION"
	FormContractUpdate       FormType = "CONTRACT_UPDATE"
	FormOther                FormType = "OTHER"
)
