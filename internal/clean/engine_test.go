package clean

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openprocure/procurement-pipeline/internal/model"
)

func fixedClock() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func upperTitle() Plugin[model.ParsedTender, model.CleanTender] {
	return PluginFunc[model.ParsedTender, model.CleanTender](func(p *model.ParsedTender, c *model.CleanTender) error {
		c.Title = strings.ToUpper(p.Title)
		return nil
	})
}

func TestRegistryOrder(t *testing.T) {
	reg := NewRegistry[model.ParsedTender, model.CleanTender]()
	var order []string
	for _, name := range []string{"first", "second", "third"} {
		name := name
		reg.Register(name, PluginFunc[model.ParsedTender, model.CleanTender](func(*model.ParsedTender, *model.CleanTender) error {
			order = append(order, name)
			return nil
		}))
	}

	engine := New("test/1", reg, Hooks[model.ParsedTender, model.CleanTender]{})
	_, err := engine.Run(context.Background(), &model.ParsedTender{})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, order)
	assert.Equal(t, []string{"first", "second", "third"}, reg.Names())
}

func TestRegistryReRegisterKeepsPosition(t *testing.T) {
	reg := NewRegistry[model.ParsedTender, model.CleanTender]()
	reg.Register("a", upperTitle()).
		Register("b", upperTitle()).
		Register("a", upperTitle())

	assert.Equal(t, []string{"a", "b"}, reg.Names())
}

func TestEngineValidationErrorPassesThrough(t *testing.T) {
	reg := NewRegistry[model.ParsedTender, model.CleanTender]()
	reg.Register("reject", PluginFunc[model.ParsedTender, model.CleanTender](func(*model.ParsedTender, *model.CleanTender) error {
		return &ValidationError{Field: "title", Reason: "missing"}
	}))

	engine := New("test/1", reg, Hooks[model.ParsedTender, model.CleanTender]{})
	_, err := engine.Run(context.Background(), &model.ParsedTender{})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestEngineHookOrder(t *testing.T) {
	reg := NewRegistry[model.ParsedTender, model.CleanTender]()
	reg.Register("title", upperTitle())

	engine := New("test/1", reg, Hooks[model.ParsedTender, model.CleanTender]{
		PreProcess: func(p *model.ParsedTender) *model.ParsedTender {
			cp := *p
			cp.Title = cp.Title + " pre"
			return &cp
		},
		PostProcessCommon: func(_ *model.ParsedTender, c *model.CleanTender) *model.CleanTender {
			c.Title += " common"
			return c
		},
		PostProcessSource: func(_ *model.ParsedTender, c *model.CleanTender) *model.CleanTender {
			c.Title += " source"
			return c
		},
	})

	out, err := engine.Run(context.Background(), &model.ParsedTender{Title: "x"})
	require.NoError(t, err)
	assert.Equal(t, "X PRE common source", out.Title)
}

func TestTenderCleanerDeterministicID(t *testing.T) {
	reg := NewRegistry[model.ParsedTender, model.CleanTender]()
	reg.Register("title", upperTitle())
	cleaner := &TenderCleaner{
		Engine: New("fr/3", reg, Hooks[model.ParsedTender, model.CleanTender]{}),
		Now:    fixedClock,
	}

	parsed := &model.ParsedTender{
		ID:          "notice-1",
		Source:      "fr",
		PublishedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Title:       "Travaux de voirie",
	}

	first, err := cleaner.Clean(context.Background(), parsed)
	require.NoError(t, err)
	second, err := cleaner.Clean(context.Background(), parsed)
	require.NoError(t, err)

	// Same input, same cleaner version: identical records.
	assert.Equal(t, first, second)
	assert.Equal(t, model.KindTender, first.Kind)
	assert.Equal(t, "fr/3", first.CleanerVersion)
	assert.Equal(t, "TRAVAUX DE VOIRIE", first.Tender.Title)

	// A different cleaner version yields a different record id.
	bumped := &TenderCleaner{
		Engine: New("fr/4", reg, Hooks[model.ParsedTender, model.CleanTender]{}),
		Now:    fixedClock,
	}
	third, err := bumped.Clean(context.Background(), parsed)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, third.ID)
}

func TestBodyCleanerEnvelope(t *testing.T) {
	reg := NewRegistry[model.ParsedBody, model.CleanBody]()
	reg.Register("fields", &BodyFieldsPlugin{})
	cleaner := &BodyCleaner{
		Engine: New("fr/3", reg, Hooks[model.ParsedBody, model.CleanBody]{}),
		Now:    fixedClock,
	}

	rec, err := cleaner.Clean(context.Background(), &model.ParsedBody{
		ID:     "body-1",
		Source: "fr",
		Name:   "Mairie de Lyon",
	})
	require.NoError(t, err)
	assert.Equal(t, model.KindBody, rec.Kind)
	assert.Equal(t, "fr", rec.Source)
	require.NotNil(t, rec.Body)
	assert.Equal(t, "Mairie de Lyon", rec.Body.Name)
	assert.Equal(t, "MAIRIE DE LYON", rec.Body.NormalizedName)
}

func TestEngineNilParsed(t *testing.T) {
	engine := New("test/1", NewRegistry[model.ParsedTender, model.CleanTender](), Hooks[model.ParsedTender, model.CleanTender]{})
	_, err := engine.Run(context.Background(), nil)
	assert.Error(t, err)
}
