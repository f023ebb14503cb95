package codes

import (
	"strings"

	"github.com/agext/levenshtein"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// DefaultFuzzyDistance is the maximum edit distance accepted by fuzzy
// literal matching when a table does not configure its own.
const DefaultFuzzyDistance = 2

// Entry binds one target code to the source literals known to mean it.
// Declaration order is significant: it is the tie-break for exact matches.
type Entry struct {
	Code     string   `yaml:"code"`
	Literals []string `yaml:"literals"`
}

// MappingTable maps raw source literals onto one enumerated code set.
//
// Resolution order: explicit override, exact case-insensitive literal
// match, then fuzzy match by edit distance against all literals. A fuzzy
// tie between two different codes yields no mapping rather than a guess.
type MappingTable struct {
	Field         string  `yaml:"field"`
	FuzzyDistance int     `yaml:"fuzzy_distance"`
	Entries       []Entry `yaml:"entries"`

	// Overrides bind a raw value directly to a code before fuzzy matching
	// runs. Needed where edit distance picks surprising winners, e.g. a
	// source's generic "other" literal sitting closer to an unrelated label.
	Overrides map[string]string `yaml:"overrides,omitempty"`
}

// NewMappingTable builds a table for a named field from entries in
// declaration order.
func NewMappingTable(field string, entries ...Entry) *MappingTable {
	return &MappingTable{Field: field, FuzzyDistance: DefaultFuzzyDistance, Entries: entries}
}

// Override binds raw directly to code, bypassing fuzzy matching.
func (t *MappingTable) Override(raw, code string) *MappingTable {
	if t.Overrides == nil {
		t.Overrides = map[string]string{}
	}
	t.Overrides[canonical(raw)] = code
	return t
}

// Map resolves a raw literal to a code. The second return reports whether
// a mapping was found; unmapped values are left absent by the caller.
func (t *MappingTable) Map(raw string) (string, bool) {
	c := canonical(raw)
	if c == "" {
		return "", false
	}

	if code, ok := t.Overrides[c]; ok {
		return code, true
	}

	// Exact pass, declaration order.
	for _, e := range t.Entries {
		for _, lit := range e.Literals {
			if canonical(lit) == c {
				return e.Code, true
			}
		}
	}

	return t.fuzzy(c)
}

// fuzzy scans every literal of every entry and returns the code of the
// closest literal within the distance budget. Equal-distance candidates
// from different codes cancel each other out.
func (t *MappingTable) fuzzy(c string) (string, bool) {
	max := t.FuzzyDistance
	if max <= 0 {
		max = DefaultFuzzyDistance
	}

	best := max + 1
	bestCode := ""
	tied := false
	for _, e := range t.Entries {
		for _, lit := range e.Literals {
			d := levenshtein.Distance(canonical(lit), c, nil)
			switch {
			case d < best:
				best = d
				bestCode = e.Code
				tied = false
			case d == best && e.Code != bestCode:
				tied = true
			}
		}
	}

	if bestCode == "" || tied {
		return "", false
	}
	return bestCode, true
}

// canonical lowercases and collapses surrounding whitespace for comparison.
func canonical(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// LoadTables parses a YAML document holding one mapping table per field.
func LoadTables(data []byte) (map[string]*MappingTable, error) {
	var tables []*MappingTable
	if err := yaml.Unmarshal(data, &tables); err != nil {
		return nil, eris.Wrap(err, "codes: parse mapping tables")
	}

	byField := make(map[string]*MappingTable, len(tables))
	for _, t := range tables {
		if t.Field == "" {
			return nil, eris.New("codes: mapping table without field name")
		}
		if _, dup := byField[t.Field]; dup {
			return nil, eris.Errorf("codes: duplicate mapping table for field %s", t.Field)
		}
		// Canonicalize override keys so lookups match Map's normalization.
		if len(t.Overrides) > 0 {
			normalized := make(map[string]string, len(t.Overrides))
			for raw, code := range t.Overrides {
				normalized[canonical(raw)] = code
			}
			t.Overrides = normalized
		}
		byField[t.Field] = t
	}
	return byField, nil
}
