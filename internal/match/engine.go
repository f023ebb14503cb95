// Package match binds clean records to entity groups. A group represents
// one real-world entity (a tender or a body); binding is monotonic: once a
// record is bound it keeps its group across redeliveries.
package match

import (
	"context"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/openprocure/procurement-pipeline/internal/identity"
	"github.com/openprocure/procurement-pipeline/internal/model"
	"github.com/openprocure/procurement-pipeline/internal/store"
)

// Version tags matched records with the matcher revision that produced
// them. Bump when the fingerprint definition or rule set changes.
const Version = "1.2"

// Engine matches clean records into entity groups.
type Engine struct {
	store   store.Store
	rules   []Rule
	version string
}

// New creates an Engine with the given rules. Rules run in order before
// the fingerprint lookup.
func New(st store.Store, rules ...Rule) *Engine {
	return &Engine{store: st, rules: rules, version: Version}
}

// Version returns the matcher revision tag.
func (e *Engine) Version() string { return e.version }

// Match binds rec to a group and persists the matched record. The
// operation is idempotent: a record already matched is returned as-is,
// keeping the binding monotonic under at-least-once delivery.
//
// An unmatchable record is recorded for review and the UnmatchableError
// is returned so the caller can park the message.
func (e *Engine) Match(ctx context.Context, rec *model.CleanRecord) (*model.MatchedRecord, error) {
	existing, err := e.store.GetMatched(ctx, rec.ID)
	if err != nil {
		return nil, eris.Wrap(err, "match: lookup existing binding")
	}
	if existing != nil {
		return existing, nil
	}
	return e.bind(ctx, rec)
}

// Rederive recomputes the binding for rec even if one exists. It is an
// administrative operation for matcher upgrades; the new binding replaces
// the old one wholesale.
func (e *Engine) Rederive(ctx context.Context, rec *model.CleanRecord) (*model.MatchedRecord, error) {
	return e.bind(ctx, rec)
}

func (e *Engine) bind(ctx context.Context, rec *model.CleanRecord) (*model.MatchedRecord, error) {
	fp, err := identity.Record(rec)
	if err != nil {
		if identity.IsUnmatchable(err) {
			if rerr := e.store.RecordUnmatchable(ctx, rec, err.Error()); rerr != nil {
				return nil, eris.Wrap(rerr, "match: record unmatchable")
			}
			zap.L().Warn("record unmatchable",
				zap.String("record_id", rec.ID),
				zap.String("kind", string(rec.Kind)),
				zap.String("source", rec.Source),
				zap.Error(err),
			)
		}
		return nil, err
	}

	groupID, matchedBy, err := e.resolveGroup(ctx, rec, fp)
	if err != nil {
		return nil, err
	}

	matched := &model.MatchedRecord{
		CleanRecord:       *rec,
		GroupID:           groupID,
		Fingerprint:       fp.Digest,
		FingerprintStable: fp.Stable,
		MatcherVersion:    e.version,
		MatchedBy:         matchedBy,
	}
	if err := e.store.PutMatched(ctx, matched); err != nil {
		return nil, eris.Wrap(err, "match: persist matched record")
	}

	zap.L().Debug("record matched",
		zap.String("record_id", rec.ID),
		zap.String("group_id", groupID),
		zap.String("matched_by", matchedBy),
	)
	return matched, nil
}

// resolveGroup finds or creates the group for a fingerprinted record.
// Rules run first; the fingerprint lookup is the default path. Group
// creation is a single atomic insert-if-absent on the store, so two
// workers racing on one fingerprint converge on the same group.
func (e *Engine) resolveGroup(ctx context.Context, rec *model.CleanRecord, fp identity.Fingerprint) (string, string, error) {
	for _, rule := range e.rules {
		groupID, err := rule.Match(ctx, e.store, rec)
		if err != nil {
			return "", "", eris.Wrapf(err, "match: rule %s", rule.Name())
		}
		if groupID != "" {
			// Register the fingerprint under the rule's group so later
			// same-fingerprint records land there directly. If the
			// fingerprint is already bound elsewhere the rule still wins
			// for this record; an unstable fingerprint is never
			// registered as an identity.
			if fp.Stable {
				if _, _, err := e.store.CreateGroupIfAbsent(ctx, rec.Kind, fp.Digest, groupID); err != nil {
					return "", "", eris.Wrap(err, "match: bind fingerprint to rule group")
				}
			}
			return groupID, rule.Name(), nil
		}
	}

	if !fp.Stable {
		// Random-fallback fingerprints always open a singleton group.
		groupID := uuid.NewString()
		winner, _, err := e.store.CreateGroupIfAbsent(ctx, rec.Kind, fp.Digest, groupID)
		if err != nil {
			return "", "", eris.Wrap(err, "match: create singleton group")
		}
		return winner, model.MatchedByHash, nil
	}

	existing, err := e.store.GroupByFingerprint(ctx, rec.Kind, fp.Digest)
	if err != nil {
		return "", "", eris.Wrap(err, "match: fingerprint lookup")
	}
	if existing != "" {
		return existing, model.MatchedByGroup, nil
	}

	winner, created, err := e.store.CreateGroupIfAbsent(ctx, rec.Kind, fp.Digest, uuid.NewString())
	if err != nil {
		return "", "", eris.Wrap(err, "match: create group")
	}
	matchedBy := model.MatchedByHash
	if !created {
		matchedBy = model.MatchedByGroup
	}
	return winner, matchedBy, nil
}
