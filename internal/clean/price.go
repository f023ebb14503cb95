package clean

import (
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/currency"

	"github.com/openprocure/procurement-pipeline/internal/model"
)

// PricePlugin normalizes the tender-level monetary fields.
type PricePlugin struct {
	Formats []NumberFormat
}

// Clean implements Plugin.
func (p *PricePlugin) Clean(parsed *model.ParsedTender, out *model.CleanTender) error {
	out.EstimatedPrice = CleanPriceValue(parsed.EstimatedPrice, p.Formats)
	out.FinalPrice = CleanPriceValue(parsed.FinalPrice, p.Formats)
	return nil
}

// CleanPriceValue normalizes one raw price. Unparseable components degrade
// to absent; a price with no parseable component at all is dropped.
func CleanPriceValue(raw *model.ParsedPrice, formats []NumberFormat) *model.CleanPrice {
	if raw == nil {
		return nil
	}

	price := &model.CleanPrice{}
	if v, ok := ParseNumber(raw.NetAmount, formats); ok {
		price.NetAmount = &v
	}
	if v, ok := ParseNumber(raw.AmountWithVAT, formats); ok {
		price.AmountWithVAT = &v
	}
	if v, ok := ParseNumber(raw.VAT, formats); ok {
		price.VAT = &v
	}
	if cur := cleanCurrency(raw.Currency); cur != "" {
		price.Currency = cur
	}

	if price.NetAmount == nil && price.AmountWithVAT == nil && price.VAT == nil && price.Currency == "" {
		return nil
	}
	return price
}

// cleanCurrency validates a raw currency against ISO 4217 and returns its
// canonical code, or "" when the value is not a known currency.
func cleanCurrency(raw string) string {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if raw == "" {
		return ""
	}
	unit, err := currency.ParseISO(raw)
	if err != nil {
		zap.L().Warn("clean: unknown currency", zap.String("raw", raw))
		return ""
	}
	return unit.String()
}
