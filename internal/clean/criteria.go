package clean

import (
	"strings"

	"github.com/openprocure/procurement-pipeline/internal/model"
)

// AwardCriteriaPlugin normalizes award criteria.
type AwardCriteriaPlugin struct {
	Numbers []NumberFormat
}

// Clean implements Plugin.
func (p *AwardCriteriaPlugin) Clean(parsed *model.ParsedTender, out *model.CleanTender) error {
	for _, raw := range parsed.AwardCriteria {
		crit := model.CleanAwardCriterion{
			Name: strings.TrimSpace(raw.Name),
		}
		if n, ok := ParseInt(raw.Weight, p.Numbers); ok && n >= 0 && n <= 100 {
			crit.Weight = &n
		}
		if v, ok := ParseBool(raw.IsPriceRelated); ok {
			crit.IsPriceRelated = &v
		}
		if crit != (model.CleanAwardCriterion{}) {
			out.AwardCriteria = append(out.AwardCriteria, crit)
		}
	}
	return nil
}
