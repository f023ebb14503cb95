package model

import "time"

// ParsedTender is the raw, source-shaped extraction of one tender notice.
// Every field is an unvalidated string exactly as scraped; absent fields are
// empty. Ingestion tags the envelope with source metadata before hand-off
// to the cleaning stage.
type ParsedTender struct {
	ID            string    `json:"id"`
	Source        string    `json:"source"`
	SourceVersion string    `json:"source_version,omitempty"`
	PublishedAt   time.Time `json:"published_at"`

	SourceID             string `json:"source_id,omitempty"`
	Title                string `json:"title,omitempty"`
	Description          string `json:"description,omitempty"`
	ProcedureType        string `json:"procedure_type,omitempty"`
	SupplyType           string `json:"supply_type,omitempty"`
	SelectionMethod      string `json:"selection_method,omitempty"`
	IsFrameworkAgreement string `json:"is_framework_agreement,omitempty"`
	AreVariantsAccepted  string `json:"are_variants_accepted,omitempty"`
	PublicationDate      string `json:"publication_date,omitempty"`
	AwardDecisionDate    string `json:"award_decision_date,omitempty"`
	BidDeadline          string `json:"bid_deadline,omitempty"`
	EstimatedPrice       *ParsedPrice `json:"estimated_price,omitempty"`
	FinalPrice           *ParsedPrice `json:"final_price,omitempty"`

	Buyer         *ParsedBody            `json:"buyer,omitempty"`
	Lots          []ParsedLot            `json:"lots,omitempty"`
	Publications  []ParsedPublication    `json:"publications,omitempty"`
	AwardCriteria []ParsedAwardCriterion `json:"award_criteria,omitempty"`
}

// ParsedBody is the raw extraction of one buying/selling organization.
type ParsedBody struct {
	ID            string    `json:"id,omitempty"`
	Source        string    `json:"source,omitempty"`
	SourceVersion string    `json:"source_version,omitempty"`
	PublishedAt   time.Time `json:"published_at,omitzero"`

	Name         string `json:"name,omitempty"`
	LegalID      string `json:"legal_id,omitempty"`
	BuyerType    string `json:"buyer_type,omitempty"`
	MainActivity string `json:"main_activity,omitempty"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`

	Street   string `json:"street,omitempty"`
	City     string `json:"city,omitempty"`
	Postcode string `json:"postcode,omitempty"`
	Country  string `json:"country,omitempty"`
}

// ParsedPrice is a raw monetary value.
type ParsedPrice struct {
	NetAmount     string `json:"net_amount,omitempty"`
	AmountWithVAT string `json:"amount_with_vat,omitempty"`
	VAT           string `json:"vat,omitempty"`
	Currency      string `json:"currency,omitempty"`
}

// ParsedLot is a raw tender lot.
type ParsedLot struct {
	LotNumber      string       `json:"lot_number,omitempty"`
	Title          string       `json:"title,omitempty"`
	EstimatedPrice *ParsedPrice `json:"estimated_price,omitempty"`
	AwardDate      string       `json:"award_date,omitempty"`
	Bids           []ParsedBid  `json:"bids,omitempty"`
}

// ParsedBid is a raw bid within a lot.
type ParsedBid struct {
	IsWinning string       `json:"is_winning,omitempty"`
	Price     *ParsedPrice `json:"price,omitempty"`
	Bidder    *ParsedBody  `json:"bidder,omitempty"`
}

// ParsedPublication is a raw reference to a publication of the notice,
// either on the harvested source or cross-referenced on another system.
type ParsedPublication struct {
	Source          string `json:"source,omitempty"`
	SourceID        string `json:"source_id,omitempty"`
	SourceFormType  string `json:"source_form_type,omitempty"`
	PublicationDate string `json:"publication_date,omitempty"`
	IsIncluded      string `json:"is_included,omitempty"`
	HumanReadableURL string `json:"human_readable_url,omitempty"`
}

// ParsedAwardCriterion is a raw award criterion.
type ParsedAwardCriterion struct {
	Name           string `json:"name,omitempty"`
	Weight         string `json:"weight,omitempty"`
	IsPriceRelated string `json:"is_price_related,omitempty"`
}
