package codes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTable() *MappingTable {
	return NewMappingTable("procedureType",
		Entry{Code: "OPEN", Literals: []string{"open procedure", "open"}},
		Entry{Code: "RESTRICTED", Literals: []string{"restricted procedure"}},
		Entry{Code: "OTHER", Literals: []string{"other procedure"}},
	).Override("autre", "OTHER")
}

func TestMapExact(t *testing.T) {
	table := testTable()

	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{"exact literal", "open procedure", "OPEN", true},
		{"case insensitive", "OPEN PROCEDURE", "OPEN", true},
		{"surrounding whitespace", "  open  ", "OPEN", true},
		{"empty", "", "", false},
		{"whitespace only", "   ", "", false},
		{"nowhere close", "zzzzzzzzzzzz", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := table.Map(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMapExactPrefersDeclarationOrder(t *testing.T) {
	table := NewMappingTable("supplyType",
		Entry{Code: "WORKS", Literals: []string{"works"}},
		Entry{Code: "OTHER", Literals: []string{"works"}},
	)

	got, ok := table.Map("works")
	require.True(t, ok)
	assert.Equal(t, "WORKS", got)
}

func TestMapFuzzy(t *testing.T) {
	table := testTable()

	// One edit away from "open procedure".
	got, ok := table.Map("open procedur")
	require.True(t, ok)
	assert.Equal(t, "OPEN", got)

	// Two edits, still within the default budget.
	got, ok = table.Map("open procedu")
	require.True(t, ok)
	assert.Equal(t, "OPEN", got)

	// Three edits, over budget.
	_, ok = table.Map("open proced")
	assert.False(t, ok)
}

func TestMapFuzzyTieYieldsAbsent(t *testing.T) {
	table := NewMappingTable("supplyType",
		Entry{Code: "WORKS", Literals: []string{"aaaa"}},
		Entry{Code: "SERVICES", Literals: []string{"aaab"}},
	)

	// "aaac" is distance 1 from both literals, which belong to different
	// codes: no winner.
	_, ok := table.Map("aaac")
	assert.False(t, ok)

	// A tie within the same code is not a tie.
	same := NewMappingTable("supplyType",
		Entry{Code: "WORKS", Literals: []string{"aaaa", "aaab"}},
	)
	got, ok := same.Map("aaac")
	require.True(t, ok)
	assert.Equal(t, "WORKS", got)
}

func TestMapOverrideBeatsFuzzy(t *testing.T) {
	table := NewMappingTable("procedureType",
		Entry{Code: "OPEN", Literals: []string{"autres"}},
	).Override("autre", "OTHER")

	// Without the override, "autre" would fuzzy-match "autres" onto OPEN.
	got, ok := table.Map("autre")
	require.True(t, ok)
	assert.Equal(t, "OTHER", got)

	got, ok = table.Map("AUTRE")
	require.True(t, ok)
	assert.Equal(t, "OTHER", got)
}

func TestLoadTables(t *testing.T) {
	data := []byte(`
- field: procedureType
  fuzzy_distance: 1
  entries:
    - code: OPEN
      literals: ["open procedure"]
  overrides:
    "Autre": OTHER
- field: supplyType
  entries:
    - code: WORKS
      literals: ["works"]
`)

	tables, err := LoadTables(data)
	require.NoError(t, err)
	require.Len(t, tables, 2)

	proc := tables["procedureType"]
	require.NotNil(t, proc)
	assert.Equal(t, 1, proc.FuzzyDistance)

	// Override keys are canonicalized at load time.
	got, ok := proc.Map("autre")
	require.True(t, ok)
	assert.Equal(t, "OTHER", got)

	got, ok = tables["supplyType"].Map("works")
	require.True(t, ok)
	assert.Equal(t, "WORKS", got)
}

func TestLoadTablesErrors(t *testing.T) {
	_, err := LoadTables([]byte("{not yaml"))
	assert.Error(t, err)

	_, err = LoadTables([]byte("- entries: []\n"))
	assert.Error(t, err)

	_, err = LoadTables([]byte("- field: a\n- field: a\n"))
	assert.Error(t, err)
}
