package clean

import (
	"net/mail"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/openprocure/procurement-pipeline/internal/codes"
	"github.com/openprocure/procurement-pipeline/internal/model"
)

// BodyPlugin normalizes the tender's buyer.
type BodyPlugin struct {
	BuyerTypes *codes.MappingTable
	Activities *codes.MappingTable

	// RequireName makes a buyer with no name a ValidationError.
	RequireName bool
}

// Clean implements Plugin.
func (p *BodyPlugin) Clean(parsed *model.ParsedTender, out *model.CleanTender) error {
	if parsed.Buyer == nil {
		return nil
	}
	if p.RequireName && strings.TrimSpace(parsed.Buyer.Name) == "" {
		return &ValidationError{Field: "buyer.name", Reason: "required field absent"}
	}
	out.Buyer = CleanBodyValue(parsed.Buyer, p.BuyerTypes, p.Activities)
	return nil
}

// BodyFieldsPlugin normalizes a standalone parsed body in the body
// pipeline. It owns every output field of CleanBody.
type BodyFieldsPlugin struct {
	BuyerTypes *codes.MappingTable
	Activities *codes.MappingTable
	RequireName bool
}

// Clean implements Plugin.
func (p *BodyFieldsPlugin) Clean(parsed *model.ParsedBody, out *model.CleanBody) error {
	if p.RequireName && strings.TrimSpace(parsed.Name) == "" && strings.TrimSpace(parsed.LegalID) == "" {
		return &ValidationError{Field: "name", Reason: "body has neither name nor legal id"}
	}
	if b := CleanBodyValue(parsed, p.BuyerTypes, p.Activities); b != nil {
		*out = *b
	}
	return nil
}

// CleanBodyValue normalizes one organization. Shared by the buyer plugin,
// the lot plugin (bidders) and the body pipeline.
func CleanBodyValue(raw *model.ParsedBody, buyerTypes, activities *codes.MappingTable) *model.CleanBody {
	if raw == nil {
		return nil
	}

	b := &model.CleanBody{
		Name:     strings.TrimSpace(raw.Name),
		LegalID:  NormalizeLegalID(raw.LegalID),
		Street:   strings.TrimSpace(raw.Street),
		City:     strings.TrimSpace(raw.City),
		Postcode: strings.TrimSpace(raw.Postcode),
		Phone:    strings.TrimSpace(raw.Phone),
	}
	b.NormalizedName = NormalizeName(b.Name)

	if email := strings.TrimSpace(raw.Email); email != "" {
		if _, err := mail.ParseAddress(email); err == nil {
			b.Email = email
		} else {
			zap.L().Warn("clean: invalid body email", zap.String("raw", email))
		}
	}

	if c := cleanCountry(raw.Country); c != "" {
		b.Country = c
	}

	if code, ok := mapCode(buyerTypes, raw.BuyerType, "buyerType"); ok {
		b.BuyerType = codes.BuyerType(code)
	}
	if code, ok := mapCode(activities, raw.MainActivity, "mainActivity"); ok {
		b.MainActivity = codes.BuyerActivityType(code)
	}

	if *b == (model.CleanBody{}) {
		return nil
	}
	return b
}

// cleanCountry canonicalizes a country to its ISO 3166-1 alpha-2 code.
func cleanCountry(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	region, err := language.ParseRegion(raw)
	if err != nil {
		zap.L().Warn("clean: unknown country", zap.String("raw", raw))
		return ""
	}
	return region.String()
}
