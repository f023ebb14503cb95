package match

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openprocure/procurement-pipeline/internal/model"
	"github.com/openprocure/procurement-pipeline/internal/store"
)

func cleanTender(id, source, sourceID string) *model.CleanRecord {
	return &model.CleanRecord{
		ID:        id,
		Kind:      model.KindTender,
		Source:    source,
		CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Tender:    &model.CleanTender{SourceID: sourceID},
	}
}

func cleanBody(id, legalID, name string) *model.CleanRecord {
	return &model.CleanRecord{
		ID:   id,
		Kind: model.KindBody,
		Body: &model.CleanBody{LegalID: legalID, Name: name, Country: "FR"},
	}
}

func TestMatchSameFingerprintSameGroup(t *testing.T) {
	st := store.NewMemory()
	engine := New(st)
	ctx := context.Background()

	a, err := engine.Match(ctx, cleanBody("a", "123", "Acme"))
	require.NoError(t, err)
	b, err := engine.Match(ctx, cleanBody("b", "1-2-3", "Acme SA"))
	require.NoError(t, err)

	assert.Equal(t, a.GroupID, b.GroupID)
	assert.Equal(t, model.MatchedByHash, a.MatchedBy)
	assert.Equal(t, model.MatchedByGroup, b.MatchedBy)

	members, err := st.GroupMembers(ctx, model.KindBody, a.GroupID)
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestMatchIsIdempotent(t *testing.T) {
	st := store.NewMemory()
	engine := New(st)
	ctx := context.Background()

	rec := cleanTender("t1", "fr", "2026-001")
	first, err := engine.Match(ctx, rec)
	require.NoError(t, err)

	// Redelivery returns the same binding without touching the group.
	second, err := engine.Match(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, first.GroupID, second.GroupID)
	assert.Equal(t, first.MatchedBy, second.MatchedBy)

	members, err := st.GroupMembers(ctx, model.KindTender, first.GroupID)
	require.NoError(t, err)
	assert.Len(t, members, 1)
}

func TestMatchDistinctFingerprintsDistinctGroups(t *testing.T) {
	st := store.NewMemory()
	engine := New(st)
	ctx := context.Background()

	a, err := engine.Match(ctx, cleanTender("t1", "fr", "2026-001"))
	require.NoError(t, err)
	b, err := engine.Match(ctx, cleanTender("t2", "fr", "2026-002"))
	require.NoError(t, err)
	assert.NotEqual(t, a.GroupID, b.GroupID)
}

func TestMatchUnstableFingerprintOpensSingletonGroups(t *testing.T) {
	st := store.NewMemory()
	engine := New(st)
	ctx := context.Background()

	a, err := engine.Match(ctx, cleanTender("t1", "fr", ""))
	require.NoError(t, err)
	b, err := engine.Match(ctx, cleanTender("t2", "fr", ""))
	require.NoError(t, err)

	assert.False(t, a.FingerprintStable)
	assert.False(t, b.FingerprintStable)
	assert.NotEqual(t, a.GroupID, b.GroupID)
}

func TestMatchUnmatchableRecorded(t *testing.T) {
	st := store.NewMemory()
	engine := New(st)
	ctx := context.Background()

	_, err := engine.Match(ctx, cleanBody("b1", "", ""))
	require.Error(t, err)

	unmatchable, err := st.ListUnmatchable(ctx, 10)
	require.NoError(t, err)
	require.Len(t, unmatchable, 1)
	assert.Equal(t, "b1", unmatchable[0].RecordID)

	// The record is not bound to any group.
	matched, err := st.GetMatched(ctx, "b1")
	require.NoError(t, err)
	assert.Nil(t, matched)
}

func TestMatchPublicationRuleJoinsCrossSourceGroup(t *testing.T) {
	st := store.NewMemory()
	engine := New(st, PublicationRule{})
	ctx := context.Background()

	// A French notice matched first.
	fr, err := engine.Match(ctx, cleanTender("fr1", "fr", "FR-100"))
	require.NoError(t, err)

	// A generic-feed notice referencing the French publication joins the
	// same group despite a different own fingerprint.
	ref := cleanTender("eu1", "generic", "EU-900")
	ref.Tender.Publications = []model.CleanPublication{
		{Source: "fr", SourceID: "FR-100"},
	}
	eu, err := engine.Match(ctx, ref)
	require.NoError(t, err)

	assert.Equal(t, fr.GroupID, eu.GroupID)
	assert.Equal(t, "cross_source_publication", eu.MatchedBy)

	// A later notice sharing the generic feed's own fingerprint also
	// lands in the merged group.
	again, err := engine.Match(ctx, cleanTender("eu2", "generic", "EU-900"))
	require.NoError(t, err)
	assert.Equal(t, fr.GroupID, again.GroupID)
}

func TestMatchConcurrentSameFingerprint(t *testing.T) {
	st := store.NewMemory()
	engine := New(st)
	ctx := context.Background()

	const n = 16
	groups := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := cleanBody(string(rune('a'+i)), "999", "")
			matched, err := engine.Match(ctx, rec)
			if assert.NoError(t, err) {
				groups[i] = matched.GroupID
			}
		}()
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		assert.Equal(t, groups[0], groups[i])
	}
}

func TestRederiveReplacesBinding(t *testing.T) {
	st := store.NewMemory()
	ctx := context.Background()

	// First bound without the publication rule.
	plain := New(st)
	fr, err := plain.Match(ctx, cleanTender("fr1", "fr", "FR-100"))
	require.NoError(t, err)

	ref := cleanTender("eu1", "generic", "EU-900")
	ref.Tender.Publications = []model.CleanPublication{{Source: "fr", SourceID: "FR-100"}}
	eu, err := plain.Match(ctx, ref)
	require.NoError(t, err)
	require.NotEqual(t, fr.GroupID, eu.GroupID)

	// Match keeps the old binding; Rederive with the rule moves it.
	ruled := New(st, PublicationRule{})
	kept, err := ruled.Match(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, eu.GroupID, kept.GroupID)

	moved, err := ruled.Rederive(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, fr.GroupID, moved.GroupID)
}
