package clean

import (
	"go.uber.org/zap"

	"github.com/openprocure/procurement-pipeline/internal/codes"
	"github.com/openprocure/procurement-pipeline/internal/model"
)

// mapCode resolves raw through a mapping table, logging unmapped non-empty
// values as warnings. Unmapped fields stay absent.
func mapCode(table *codes.MappingTable, raw, field string) (string, bool) {
	if table == nil || raw == "" {
		return "", false
	}
	code, ok := table.Map(raw)
	if !ok {
		zap.L().Warn("clean: unmapped code literal",
			zap.String("field", field),
			zap.String("raw", raw),
		)
	}
	return code, ok
}

// ProcedureTypePlugin maps the raw procedure type literal.
func ProcedureTypePlugin(table *codes.MappingTable) Plugin[model.ParsedTender, model.CleanTender] {
	return PluginFunc[model.ParsedTender, model.CleanTender](func(p *model.ParsedTender, c *model.CleanTender) error {
		if code, ok := mapCode(table, p.ProcedureType, "procedureType"); ok {
			c.ProcedureType = codes.ProcedureType(code)
		}
		return nil
	})
}

// SupplyTypePlugin maps the raw supply type literal.
func SupplyTypePlugin(table *codes.MappingTable) Plugin[model.ParsedTender, model.CleanTender] {
	return PluginFunc[model.ParsedTender, model.CleanTender](func(p *model.ParsedTender, c *model.CleanTender) error {
		if code, ok := mapCode(table, p.SupplyType, "supplyType"); ok {
			c.SupplyType = codes.SupplyType(code)
		}
		return nil
	})
}

// SelectionMethodPlugin maps the raw selection method literal.
func SelectionMethodPlugin(table *codes.MappingTable) Plugin[model.ParsedTender, model.CleanTender] {
	return PluginFunc[model.ParsedTender, model.CleanTender](func(p *model.ParsedTender, c *model.CleanTender) error {
		if code, ok := mapCode(table, p.SelectionMethod, "selectionMethod"); ok {
			c.SelectionMethod = codes.SelectionMethod(code)
		}
		return nil
	})
}
