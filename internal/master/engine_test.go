package master

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openprocure/procurement-pipeline/internal/model"
	"github.com/openprocure/procurement-pipeline/internal/store"
)

func member(id, source string, published time.Time, tender *model.CleanTender) model.MatchedRecord {
	return model.MatchedRecord{
		CleanRecord: model.CleanRecord{
			ID:          id,
			Kind:        model.KindTender,
			Source:      source,
			PublishedAt: published,
			Tender:      tender,
		},
		GroupID: "g1",
	}
}

func TestBuildMergesByPriority(t *testing.T) {
	engine := New(store.NewMemory(), map[string]int{"fr": 5, "generic": 1}, Hooks{})

	day1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	price := 137640.0
	members := []model.MatchedRecord{
		member("low", "generic", day2, &model.CleanTender{
			Title:       "generic title",
			Description: "only the generic feed has this",
			EstimatedPrice: &model.CleanPrice{
				NetAmount: &price,
				Currency:  "EUR",
			},
		}),
		member("high", "fr", day1, &model.CleanTender{
			Title: "titre officiel",
		}),
	}

	rec := engine.Build(model.KindTender, "g1", members)
	require.NotNil(t, rec.Tender)

	// The higher-priority source wins the conflicting field.
	assert.Equal(t, "titre officiel", rec.Tender.Title)
	// Fields absent there fall through to the lower-priority member.
	assert.Equal(t, "only the generic feed has this", rec.Tender.Description)
	require.NotNil(t, rec.Tender.EstimatedPrice)
	assert.Equal(t, "EUR", rec.Tender.EstimatedPrice.Currency)

	assert.Equal(t, []string{"high", "low"}, rec.MemberIDs)
	assert.Equal(t, Version, rec.MastererVersion)
}

func TestBuildUnionsCollections(t *testing.T) {
	engine := New(store.NewMemory(), map[string]int{"fr": 5, "generic": 1}, Hooks{})

	one, two := 1, 2
	members := []model.MatchedRecord{
		member("a", "fr", time.Time{}, &model.CleanTender{
			Lots: []model.CleanLot{
				{LotNumber: &one, Title: "Lot 1"},
			},
			Publications: []model.CleanPublication{
				{Source: "fr", SourceID: "FR-100"},
			},
			AwardCriteria: []model.CleanAwardCriterion{
				{Name: "prix"},
			},
		}),
		member("b", "generic", time.Time{}, &model.CleanTender{
			Lots: []model.CleanLot{
				{LotNumber: &one, Title: "duplicate of lot 1"},
				{LotNumber: &two, Title: "Lot 2"},
			},
			Publications: []model.CleanPublication{
				{Source: "fr", SourceID: "FR-100"},
				{Source: "generic", SourceID: "EU-900"},
			},
			AwardCriteria: []model.CleanAwardCriterion{
				{Name: "prix"},
				{Name: "délai"},
			},
		}),
	}

	rec := engine.Build(model.KindTender, "g1", members)

	// Lot 1 appears once, keeping the higher-priority title.
	require.Len(t, rec.Tender.Lots, 2)
	assert.Equal(t, "Lot 1", rec.Tender.Lots[0].Title)
	assert.Equal(t, "Lot 2", rec.Tender.Lots[1].Title)

	assert.Len(t, rec.Tender.Publications, 2)
	assert.Len(t, rec.Tender.AwardCriteria, 2)
}

func TestBuildIsDeterministic(t *testing.T) {
	engine := New(store.NewMemory(), map[string]int{"fr": 5}, Hooks{})

	mk := func() []model.MatchedRecord {
		one := 1
		return []model.MatchedRecord{
			member("b", "generic", time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), &model.CleanTender{
				Title: "b title",
				Lots:  []model.CleanLot{{LotNumber: &one}},
			}),
			member("a", "fr", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), &model.CleanTender{
				Title: "a title",
			}),
		}
	}

	first := engine.Build(model.KindTender, "g1", mk())
	// Reversed input order, same member set.
	reversed := mk()
	reversed[0], reversed[1] = reversed[1], reversed[0]
	second := engine.Build(model.KindTender, "g1", reversed)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestMasterPersistsAndIsIdempotent(t *testing.T) {
	st := store.NewMemory()
	engine := New(st, map[string]int{"fr": 5}, Hooks{})
	ctx := context.Background()

	matched := member("a", "fr", time.Time{}, &model.CleanTender{Title: "titre"})
	matched.GroupID = "g1"
	require.NoError(t, st.PutMatched(ctx, &matched))

	first, err := engine.Master(ctx, model.KindTender, "g1")
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := engine.Master(ctx, model.KindTender, "g1")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	stored, err := st.GetMaster(ctx, model.KindTender, "g1")
	require.NoError(t, err)
	assert.Equal(t, first, stored)
}

func TestMasterEmptyGroupIsNoop(t *testing.T) {
	st := store.NewMemory()
	engine := New(st, nil, Hooks{})
	ctx := context.Background()

	rec, err := engine.Master(ctx, model.KindTender, "missing")
	require.NoError(t, err)
	assert.Nil(t, rec)

	stored, err := st.GetMaster(ctx, model.KindTender, "missing")
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestBuildBodies(t *testing.T) {
	engine := New(store.NewMemory(), map[string]int{"fr": 5, "generic": 1}, Hooks{})

	members := []model.MatchedRecord{
		{
			CleanRecord: model.CleanRecord{
				ID: "a", Kind: model.KindBody, Source: "generic",
				Body: &model.CleanBody{Name: "ACME", Email: "info@acme.example"},
			},
		},
		{
			CleanRecord: model.CleanRecord{
				ID: "b", Kind: model.KindBody, Source: "fr",
				Body: &model.CleanBody{Name: "Acme SA", LegalID: "123"},
			},
		},
	}

	rec := engine.Build(model.KindBody, "g1", members)
	require.NotNil(t, rec.Body)
	assert.Equal(t, "Acme SA", rec.Body.Name)
	assert.Equal(t, "123", rec.Body.LegalID)
	assert.Equal(t, "info@acme.example", rec.Body.Email)
}

func TestHooks(t *testing.T) {
	engine := New(store.NewMemory(), nil, Hooks{
		PreMerge: func(members []model.MatchedRecord) []model.MatchedRecord {
			// Drop everything except the first member.
			return members[:1]
		},
		PostMerge: func(rec *model.MasterRecord) {
			rec.Tender.Description = "postprocessed"
		},
	})

	members := []model.MatchedRecord{
		member("a", "fr", time.Time{}, &model.CleanTender{Title: "kept"}),
		member("b", "fr", time.Time{}, &model.CleanTender{Title: "dropped"}),
	}

	rec := engine.Build(model.KindTender, "g1", members)
	assert.Equal(t, "kept", rec.Tender.Title)
	assert.Equal(t, "postprocessed", rec.Tender.Description)
	// MemberIDs reflect the full group, not the hook-filtered merge set.
	assert.Equal(t, []string{"a", "b"}, rec.MemberIDs)
}
