package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openprocure/procurement-pipeline/internal/model"
)

func TestMemoryZeroValueOnMiss(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()

	parsed, err := st.GetParsedTender(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, parsed)

	clean, err := st.GetClean(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, clean)

	matched, err := st.GetMatched(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, matched)

	group, err := st.GroupByFingerprint(ctx, model.KindTender, "missing")
	require.NoError(t, err)
	assert.Empty(t, group)

	master, err := st.GetMaster(ctx, model.KindTender, "missing")
	require.NoError(t, err)
	assert.Nil(t, master)
}

func TestMemoryRoundTrips(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()

	require.NoError(t, st.PutParsedTender(ctx, &model.ParsedTender{ID: "p1", Source: "fr"}))
	parsed, err := st.GetParsedTender(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, parsed)
	assert.Equal(t, "fr", parsed.Source)

	require.NoError(t, st.PutParsedBody(ctx, &model.ParsedBody{ID: "b1", Name: "Acme"}))
	body, err := st.GetParsedBody(ctx, "b1")
	require.NoError(t, err)
	require.NotNil(t, body)
	assert.Equal(t, "Acme", body.Name)

	require.NoError(t, st.PutClean(ctx, &model.CleanRecord{ID: "c1", Kind: model.KindTender}))
	clean, err := st.GetClean(ctx, "c1")
	require.NoError(t, err)
	require.NotNil(t, clean)

	// Writes are copies: mutating the returned record does not leak back.
	clean.Source = "mutated"
	again, err := st.GetClean(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, again.Source)
}

func TestMemoryCreateGroupIfAbsent(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()

	winner, created, err := st.CreateGroupIfAbsent(ctx, model.KindTender, "fp1", "g1")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "g1", winner)

	// A second caller loses and receives the first group id.
	winner, created, err = st.CreateGroupIfAbsent(ctx, model.KindTender, "fp1", "g2")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "g1", winner)

	// The same digest under another kind is an independent binding.
	winner, created, err = st.CreateGroupIfAbsent(ctx, model.KindBody, "fp1", "g3")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "g3", winner)

	group, err := st.GroupByFingerprint(ctx, model.KindTender, "fp1")
	require.NoError(t, err)
	assert.Equal(t, "g1", group)
}

func TestMemoryCreateGroupIfAbsentConcurrent(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()

	const n = 32
	winners := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			winner, _, err := st.CreateGroupIfAbsent(ctx, model.KindTender, "fp", string(rune('a'+i)))
			if assert.NoError(t, err) {
				winners[i] = winner
			}
		}()
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		assert.Equal(t, winners[0], winners[i])
	}
}

func TestMemoryPublicationIndex(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()

	rec := &model.MatchedRecord{
		CleanRecord: model.CleanRecord{
			ID:   "t1",
			Kind: model.KindTender,
			Tender: &model.CleanTender{
				Publications: []model.CleanPublication{
					{Source: "fr", SourceID: "FR-100"},
					{Source: "fr"}, // no source id, not indexed
				},
			},
		},
		GroupID: "g1",
	}
	require.NoError(t, st.PutMatched(ctx, rec))

	group, err := st.GroupByPublication(ctx, model.KindTender, "fr", "FR-100")
	require.NoError(t, err)
	assert.Equal(t, "g1", group)

	group, err = st.GroupByPublication(ctx, model.KindTender, "fr", "FR-999")
	require.NoError(t, err)
	assert.Empty(t, group)
}

func TestMemoryGroupMembers(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		require.NoError(t, st.PutMatched(ctx, &model.MatchedRecord{
			CleanRecord: model.CleanRecord{ID: id, Kind: model.KindTender},
			GroupID:     "g1",
		}))
	}
	require.NoError(t, st.PutMatched(ctx, &model.MatchedRecord{
		CleanRecord: model.CleanRecord{ID: "c", Kind: model.KindTender},
		GroupID:     "g2",
	}))
	require.NoError(t, st.PutMatched(ctx, &model.MatchedRecord{
		CleanRecord: model.CleanRecord{ID: "d", Kind: model.KindBody},
		GroupID:     "g1",
	}))

	members, err := st.GroupMembers(ctx, model.KindTender, "g1")
	require.NoError(t, err)
	assert.Len(t, members, 2)

	members, err = st.GroupMembers(ctx, model.KindTender, "none")
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestMemoryUnmatchable(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		rec := &model.CleanRecord{ID: id, Kind: model.KindBody, Source: "fr"}
		require.NoError(t, st.RecordUnmatchable(ctx, rec, "no identity fields"))
	}

	all, err := st.ListUnmatchable(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	limited, err := st.ListUnmatchable(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "a", limited[0].RecordID)
	assert.Equal(t, "no identity fields", limited[0].Reason)
}
