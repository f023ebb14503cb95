// Package worker runs the pipeline stages against the queues. Each
// handler consumes one topic; the pool polls, retries transient failures,
// and parks permanent ones.
package worker

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/openprocure/procurement-pipeline/internal/clean"
	"github.com/openprocure/procurement-pipeline/internal/master"
	"github.com/openprocure/procurement-pipeline/internal/match"
	"github.com/openprocure/procurement-pipeline/internal/model"
	"github.com/openprocure/procurement-pipeline/internal/queue"
	"github.com/openprocure/procurement-pipeline/internal/source"
	"github.com/openprocure/procurement-pipeline/internal/store"
)

// Handler processes messages of one topic. A returned error is classified
// by the pool: transient errors are redelivered with backoff, permanent
// ones are dead-lettered.
type Handler interface {
	Topic() string
	Handle(ctx context.Context, msg *queue.Message) error
}

// permanentf builds an error the pool will dead-letter without retrying.
func permanentf(format string, args ...any) error {
	return &PermanentError{Err: eris.Errorf(format, args...)}
}

// PermanentError marks a failure that redelivery cannot fix.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// CleanTenderHandler cleans parsed tenders. The message key is the parsed
// record id.
type CleanTenderHandler struct {
	Store    store.Store
	Queue    queue.Queue
	cleaners map[string]*clean.TenderCleaner
}

// NewCleanTenderHandler builds a handler with one cleaner per registered
// source profile.
func NewCleanTenderHandler(st store.Store, q queue.Queue, sources *source.Registry) *CleanTenderHandler {
	cleaners := map[string]*clean.TenderCleaner{}
	for _, name := range sources.Names() {
		p, _ := sources.Get(name)
		cleaners[name] = p.TenderCleaner()
	}
	return &CleanTenderHandler{Store: st, Queue: q, cleaners: cleaners}
}

// Topic implements Handler.
func (h *CleanTenderHandler) Topic() string { return queue.TopicCleanTender }

// Handle implements Handler.
func (h *CleanTenderHandler) Handle(ctx context.Context, msg *queue.Message) error {
	parsed, err := h.Store.GetParsedTender(ctx, msg.Key)
	if err != nil {
		return eris.Wrap(err, "worker: load parsed tender")
	}
	if parsed == nil {
		return permanentf("worker: parsed tender %s not found", msg.Key)
	}

	cleaner, ok := h.cleaners[parsed.Source]
	if !ok {
		return permanentf("worker: no profile for source %q", parsed.Source)
	}

	rec, err := cleaner.Clean(ctx, parsed)
	if err != nil {
		return err
	}
	if err := h.Store.PutClean(ctx, rec); err != nil {
		return eris.Wrap(err, "worker: persist clean tender")
	}
	return eris.Wrap(
		h.Queue.Publish(ctx, queue.MatchTopic(rec.Kind), rec.ID),
		"worker: publish match message",
	)
}

// CleanBodyHandler cleans standalone parsed bodies.
type CleanBodyHandler struct {
	Store    store.Store
	Queue    queue.Queue
	cleaners map[string]*clean.BodyCleaner
}

// NewCleanBodyHandler builds a handler with one cleaner per registered
// source profile.
func NewCleanBodyHandler(st store.Store, q queue.Queue, sources *source.Registry) *CleanBodyHandler {
	cleaners := map[string]*clean.BodyCleaner{}
	for _, name := range sources.Names() {
		p, _ := sources.Get(name)
		cleaners[name] = p.BodyCleaner()
	}
	return &CleanBodyHandler{Store: st, Queue: q, cleaners: cleaners}
}

// Topic implements Handler.
func (h *CleanBodyHandler) Topic() string { return queue.TopicCleanBody }

// Handle implements Handler.
func (h *CleanBodyHandler) Handle(ctx context.Context, msg *queue.Message) error {
	parsed, err := h.Store.GetParsedBody(ctx, msg.Key)
	if err != nil {
		return eris.Wrap(err, "worker: load parsed body")
	}
	if parsed == nil {
		return permanentf("worker: parsed body %s not found", msg.Key)
	}

	cleaner, ok := h.cleaners[parsed.Source]
	if !ok {
		return permanentf("worker: no profile for source %q", parsed.Source)
	}

	rec, err := cleaner.Clean(ctx, parsed)
	if err != nil {
		return err
	}
	if err := h.Store.PutClean(ctx, rec); err != nil {
		return eris.Wrap(err, "worker: persist clean body")
	}
	return eris.Wrap(
		h.Queue.Publish(ctx, queue.MatchTopic(rec.Kind), rec.ID),
		"worker: publish match message",
	)
}

// MatchHandler binds clean records to groups. The message key is the
// clean record id.
type MatchHandler struct {
	Store  store.Store
	Queue  queue.Queue
	Engine *match.Engine
	Kind   model.Kind
}

// Topic implements Handler.
func (h *MatchHandler) Topic() string { return queue.MatchTopic(h.Kind) }

// Handle implements Handler.
func (h *MatchHandler) Handle(ctx context.Context, msg *queue.Message) error {
	rec, err := h.Store.GetClean(ctx, msg.Key)
	if err != nil {
		return eris.Wrap(err, "worker: load clean record")
	}
	if rec == nil {
		return permanentf("worker: clean record %s not found", msg.Key)
	}

	matched, err := h.Engine.Match(ctx, rec)
	if err != nil {
		return err
	}
	return eris.Wrap(
		h.Queue.Publish(ctx, queue.MasterTopic(matched.Kind), matched.GroupID),
		"worker: publish master message",
	)
}

// MasterHandler rebuilds golden records. The message key is the group id.
type MasterHandler struct {
	Engine *master.Engine
	Kind   model.Kind
}

// Topic implements Handler.
func (h *MasterHandler) Topic() string { return queue.MasterTopic(h.Kind) }

// Handle implements Handler.
func (h *MasterHandler) Handle(ctx context.Context, msg *queue.Message) error {
	_, err := h.Engine.Master(ctx, h.Kind, msg.Key)
	return err
}
