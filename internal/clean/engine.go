// Package clean normalizes parsed records into clean records by running an
// ordered registry of field transformer plugins between source-specific
// pre- and post-processing hooks.
package clean

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/openprocure/procurement-pipeline/internal/model"
)

// Hooks are the per-source customization points of an engine. Nil hooks
// are identity transforms.
type Hooks[P, C any] struct {
	// PreProcess may rewrite the parsed record before any plugin runs,
	// e.g. normalizing locale booleans or stripping non-digits.
	PreProcess func(*P) *P

	// PostProcessCommon runs after all plugins, before the source hook.
	PostProcessCommon func(*P, *C) *C

	// PostProcessSource applies source-specific final adjustments.
	PostProcessSource func(*P, *C) *C
}

// Engine transforms one parsed payload into one clean payload. It is pure
// given its configuration: no state, no side effects beyond the result.
type Engine[P, C any] struct {
	version  string
	registry *Registry[P, C]
	hooks    Hooks[P, C]
}

// New creates an engine with a cleaner version string, a plugin registry
// and optional hooks.
func New[P, C any](version string, registry *Registry[P, C], hooks Hooks[P, C]) *Engine[P, C] {
	return &Engine[P, C]{version: version, registry: registry, hooks: hooks}
}

// Version returns the cleaner version stamped on produced records.
func (e *Engine[P, C]) Version() string { return e.version }

// Run cleans one parsed payload. The context is accepted for interface
// symmetry with the other stages; cleaning itself never blocks.
func (e *Engine[P, C]) Run(_ context.Context, parsed *P) (*C, error) {
	if parsed == nil {
		return nil, eris.New("clean: nil parsed record")
	}

	if e.hooks.PreProcess != nil {
		parsed = e.hooks.PreProcess(parsed)
	}

	out := new(C)
	if err := e.registry.apply(parsed, out); err != nil {
		return nil, err
	}

	if e.hooks.PostProcessCommon != nil {
		out = e.hooks.PostProcessCommon(parsed, out)
	}
	if e.hooks.PostProcessSource != nil {
		out = e.hooks.PostProcessSource(parsed, out)
	}
	return out, nil
}

// TenderCleaner wraps a tender engine and produces envelope records.
type TenderCleaner struct {
	Engine *Engine[model.ParsedTender, model.CleanTender]

	// Now is the clock for envelope timestamps; nil means time.Now.
	Now func() time.Time
}

// Clean normalizes one parsed tender into a clean record. The record id is
// derived deterministically from (source, parsed id, cleaner version) so a
// redelivered message re-creates the same record.
func (c *TenderCleaner) Clean(ctx context.Context, parsed *model.ParsedTender) (*model.CleanRecord, error) {
	payload, err := c.Engine.Run(ctx, parsed)
	if err != nil {
		return nil, err
	}

	rec := &model.CleanRecord{
		ID:             recordID(parsed.Source, parsed.ID, c.Engine.Version()),
		Kind:           model.KindTender,
		Source:         parsed.Source,
		SourceVersion:  parsed.SourceVersion,
		CleanerVersion: c.Engine.Version(),
		PublishedAt:    parsed.PublishedAt,
		CreatedAt:      c.now(),
		Tender:         payload,
	}
	zap.L().Debug("clean: tender cleaned",
		zap.String("source", parsed.Source),
		zap.String("record_id", rec.ID),
	)
	return rec, nil
}

func (c *TenderCleaner) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now().UTC()
}

// BodyCleaner wraps a body engine and produces envelope records.
type BodyCleaner struct {
	Engine *Engine[model.ParsedBody, model.CleanBody]
	Now    func() time.Time
}

// Clean normalizes one parsed body into a clean record.
func (c *BodyCleaner) Clean(ctx context.Context, parsed *model.ParsedBody) (*model.CleanRecord, error) {
	payload, err := c.Engine.Run(ctx, parsed)
	if err != nil {
		return nil, err
	}

	rec := &model.CleanRecord{
		ID:             recordID(parsed.Source, parsed.ID, c.Engine.Version()),
		Kind:           model.KindBody,
		Source:         parsed.Source,
		SourceVersion:  parsed.SourceVersion,
		CleanerVersion: c.Engine.Version(),
		PublishedAt:    parsed.PublishedAt,
		CreatedAt:      c.now(),
		Body:           payload,
	}
	return rec, nil
}

func (c *BodyCleaner) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now().UTC()
}

// cleanNamespace scopes the deterministic record id derivation.
var cleanNamespace = uuid.MustParse("7f1c3c84-52a5-43d5-9f6a-0f3b7f6f2d11")

func recordID(source, parsedID, version string) string {
	return uuid.NewSHA1(cleanNamespace, []byte(source+"/"+parsedID+"/"+version)).String()
}
