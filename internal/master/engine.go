// Package master rebuilds the golden record of each entity group from its
// matched members. Mastering is a pure function of the member set and the
// masterer version: re-running it on an unchanged group yields a
// byte-identical record.
package master

import (
	"context"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/openprocure/procurement-pipeline/internal/model"
	"github.com/openprocure/procurement-pipeline/internal/store"
)

// Version tags master records with the merge-logic revision that produced
// them.
const Version = "1.1"

// Hooks customize the merge around the common field logic. Either hook
// may be nil.
type Hooks struct {
	// PreMerge may filter or reorder the priority-sorted member list
	// before merging, e.g. dropping cancelled notices.
	PreMerge func(members []model.MatchedRecord) []model.MatchedRecord

	// PostMerge adjusts the merged record, e.g. deriving a final price
	// from winning bids.
	PostMerge func(rec *model.MasterRecord)
}

// Engine rebuilds master records.
type Engine struct {
	store      store.Store
	priorities map[string]int
	hooks      Hooks
	version    string
}

// New creates an Engine. priorities maps source system names to merge
// priority; higher values win field conflicts, unknown sources rank zero.
func New(st store.Store, priorities map[string]int, hooks Hooks) *Engine {
	if priorities == nil {
		priorities = map[string]int{}
	}
	return &Engine{store: st, priorities: priorities, hooks: hooks, version: Version}
}

// Version returns the masterer revision tag.
func (e *Engine) Version() string { return e.version }

// Master rebuilds the golden record for one group from scratch and
// persists it. An empty group is a no-op: the master message may arrive
// before the matched member is visible, and redelivery will catch up.
func (e *Engine) Master(ctx context.Context, kind model.Kind, groupID string) (*model.MasterRecord, error) {
	members, err := e.store.GroupMembers(ctx, kind, groupID)
	if err != nil {
		return nil, eris.Wrap(err, "master: load group members")
	}
	if len(members) == 0 {
		zap.L().Debug("master: empty group, skipping",
			zap.String("kind", string(kind)),
			zap.String("group_id", groupID),
		)
		return nil, nil
	}

	rec := e.Build(kind, groupID, members)
	if err := e.store.PutMaster(ctx, rec); err != nil {
		return nil, eris.Wrap(err, "master: persist record")
	}

	zap.L().Debug("group mastered",
		zap.String("kind", string(kind)),
		zap.String("group_id", groupID),
		zap.Int("members", len(members)),
	)
	return rec, nil
}

// Build merges an in-memory member set without touching the store. The
// member slice is reordered in place.
func (e *Engine) Build(kind model.Kind, groupID string, members []model.MatchedRecord) *model.MasterRecord {
	sort.SliceStable(members, func(i, j int) bool {
		return memberLess(e.priorities, members[i], members[j])
	})
	if e.hooks.PreMerge != nil {
		members = e.hooks.PreMerge(members)
	}

	rec := &model.MasterRecord{
		GroupID:         groupID,
		Kind:            kind,
		MastererVersion: e.version,
	}
	for _, m := range members {
		rec.MemberIDs = append(rec.MemberIDs, m.ID)
	}
	sort.Strings(rec.MemberIDs)

	switch kind {
	case model.KindTender:
		t := mergeTenders(members)
		sortLots(t.Lots)
		sortPublications(t.Publications)
		sortCriteria(t.AwardCriteria)
		rec.Tender = t
	case model.KindBody:
		rec.Body = mergeBodies(members)
	}

	if e.hooks.PostMerge != nil {
		e.hooks.PostMerge(rec)
	}
	return rec
}
