package model

import (
	"time"

	"github.com/openprocure/procurement-pipeline/internal/codes"
)

// CleanTender is a normalized tender. Every present field is valid in its
// target type; a nil pointer or empty string means the source did not
// provide a parseable value.
type CleanTender struct {
	SourceID             string                `json:"source_id,omitempty"`
	Title                string                `json:"title,omitempty"`
	Description          string                `json:"description,omitempty"`
	ProcedureType        codes.ProcedureType   `json:"procedure_type,omitempty"`
	SupplyType           codes.SupplyType      `json:"supply_type,omitempty"`
	SelectionMethod      codes.SelectionMethod `json:"selection_method,omitempty"`
	IsFrameworkAgreement *bool                 `json:"is_framework_agreement,omitempty"`
	AreVariantsAccepted  *bool                 `json:"are_variants_accepted,omitempty"`
	PublicationDate      *time.Time            `json:"publication_date,omitempty"`
	AwardDecisionDate    *time.Time            `json:"award_decision_date,omitempty"`
	BidDeadline          *time.Time            `json:"bid_deadline,omitempty"`
	EstimatedPrice       *CleanPrice           `json:"estimated_price,omitempty"`
	FinalPrice           *CleanPrice           `json:"final_price,omitempty"`

	Buyer         *CleanBody            `json:"buyer,omitempty"`
	Lots          []CleanLot            `json:"lots,omitempty"`
	Publications  []CleanPublication    `json:"publications,omitempty"`
	AwardCriteria []CleanAwardCriterion `json:"award_criteria,omitempty"`
}

// CleanBody is a normalized organization.
type CleanBody struct {
	Name           string                  `json:"name,omitempty"`
	NormalizedName string                  `json:"normalized_name,omitempty"`
	LegalID        string                  `json:"legal_id,omitempty"`
	BuyerType      codes.BuyerType         `json:"buyer_type,omitempty"`
	MainActivity   codes.BuyerActivityType `json:"main_activity,omitempty"`
	Email          string                  `json:"email,omitempty"`
	Phone          string                  `json:"phone,omitempty"`

	Street   string `json:"street,omitempty"`
	City     string `json:"city,omitempty"`
	Postcode string `json:"postcode,omitempty"`
	Country  string `json:"country,omitempty"`
}

// CleanPrice is a normalized monetary value with an ISO-4217 currency.
type CleanPrice struct {
	NetAmount     *float64 `json:"net_amount,omitempty"`
	AmountWithVAT *float64 `json:"amount_with_vat,omitempty"`
	VAT           *float64 `json:"vat,omitempty"`
	Currency      string   `json:"currency,omitempty"`
}

// CleanLot is a normalized tender lot.
type CleanLot struct {
	LotNumber      *int        `json:"lot_number,omitempty"`
	Title          string      `json:"title,omitempty"`
	EstimatedPrice *CleanPrice `json:"estimated_price,omitempty"`
	AwardDate      *time.Time  `json:"award_date,omitempty"`
	Bids           []CleanBid  `json:"bids,omitempty"`
}

// CleanBid is a normalized bid.
type CleanBid struct {
	IsWinning *bool       `json:"is_winning,omitempty"`
	Price     *CleanPrice `json:"price,omitempty"`
	Bidder    *CleanBody  `json:"bidder,omitempty"`
}

// CleanPublication is a normalized publication reference.
type CleanPublication struct {
	Source           string         `json:"source,omitempty"`
	SourceID         string         `json:"source_id,omitempty"`
	FormType         codes.FormType `json:"form_type,omitempty"`
	PublicationDate  *time.Time     `json:"publication_date,omitempty"`
	IsIncluded       *bool          `json:"is_included,omitempty"`
	HumanReadableURL string         `json:"human_readable_url,omitempty"`
}

// CleanAwardCriterion is a normalized award criterion.
type CleanAwardCriterion struct {
	Name           string `json:"name,omitempty"`
	Weight         *int   `json:"weight,omitempty"`
	IsPriceRelated *bool  `json:"is_price_related,omitempty"`
}
