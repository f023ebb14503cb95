package clean

import (
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/openprocure/procurement-pipeline/internal/codes"
	"github.com/openprocure/procurement-pipeline/internal/model"
)

// PublicationPlugin normalizes publication references.
type PublicationPlugin struct {
	Dates     []string
	FormTypes *codes.MappingTable
}

// Clean implements Plugin.
func (p *PublicationPlugin) Clean(parsed *model.ParsedTender, out *model.CleanTender) error {
	for _, raw := range parsed.Publications {
		pub := model.CleanPublication{
			Source:   strings.TrimSpace(raw.Source),
			SourceID: strings.TrimSpace(raw.SourceID),
		}
		if code, ok := mapCode(p.FormTypes, raw.SourceFormType, "formType"); ok {
			pub.FormType = codes.FormType(code)
		}
		if t, ok := ParseDate(raw.PublicationDate, p.Dates); ok {
			pub.PublicationDate = &t
		}
		if v, ok := ParseBool(raw.IsIncluded); ok {
			pub.IsIncluded = &v
		}
		if u := cleanURL(raw.HumanReadableURL); u != "" {
			pub.HumanReadableURL = u
		}

		if pub != (model.CleanPublication{}) {
			out.Publications = append(out.Publications, pub)
		}
	}
	return nil
}

// cleanURL accepts absolute http(s) URLs only.
func cleanURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		zap.L().Warn("clean: invalid publication url", zap.String("raw", raw))
		return ""
	}
	return u.String()
}
