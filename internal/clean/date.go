package clean

import (
	"go.uber.org/zap"

	"github.com/openprocure/procurement-pipeline/internal/model"
)

// DatePlugin normalizes the tender-level calendar dates. Formats are tried
// in declaration order; the first successful parse wins.
type DatePlugin struct {
	Layouts []string

	// RequirePublicationDate makes an unparseable or missing publication
	// date a ValidationError instead of an absent field.
	RequirePublicationDate bool
}

// Clean implements Plugin.
func (p *DatePlugin) Clean(parsed *model.ParsedTender, out *model.CleanTender) error {
	if t, ok := ParseDate(parsed.PublicationDate, p.Layouts); ok {
		out.PublicationDate = &t
	} else if p.RequirePublicationDate {
		return &ValidationError{
			Field:  "publicationDate",
			Value:  parsed.PublicationDate,
			Reason: "no configured date format matched",
		}
	} else if parsed.PublicationDate != "" {
		zap.L().Warn("clean: unparseable publication date",
			zap.String("raw", parsed.PublicationDate))
	}

	if t, ok := ParseDate(parsed.AwardDecisionDate, p.Layouts); ok {
		out.AwardDecisionDate = &t
	}
	return nil
}

// DateTimePlugin normalizes the tender-level instants (bid deadline).
type DateTimePlugin struct {
	Layouts []string
}

// Clean implements Plugin.
func (p *DateTimePlugin) Clean(parsed *model.ParsedTender, out *model.CleanTender) error {
	if t, ok := ParseDate(parsed.BidDeadline, p.Layouts); ok {
		out.BidDeadline = &t
	} else if parsed.BidDeadline != "" {
		zap.L().Warn("clean: unparseable bid deadline",
			zap.String("raw", parsed.BidDeadline))
	}
	return nil
}
