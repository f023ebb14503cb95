package clean

import (
	"strings"

	"github.com/openprocure/procurement-pipeline/internal/model"
)

// TextPlugin owns the free-text and boolean scalar fields of a tender.
type TextPlugin struct{}

// Clean implements Plugin.
func (TextPlugin) Clean(parsed *model.ParsedTender, out *model.CleanTender) error {
	out.SourceID = strings.TrimSpace(parsed.SourceID)
	out.Title = strings.TrimSpace(parsed.Title)
	out.Description = strings.TrimSpace(parsed.Description)

	if v, ok := ParseBool(parsed.IsFrameworkAgreement); ok {
		out.IsFrameworkAgreement = &v
	}
	if v, ok := ParseBool(parsed.AreVariantsAccepted); ok {
		out.AreVariantsAccepted = &v
	}
	return nil
}
