package worker

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/openprocure/procurement-pipeline/internal/clean"
	"github.com/openprocure/procurement-pipeline/internal/identity"
	"github.com/openprocure/procurement-pipeline/internal/queue"
	"github.com/openprocure/procurement-pipeline/internal/resilience"
)

// PoolConfig tunes the polling workers.
type PoolConfig struct {
	// Workers is the number of concurrent consumers per handler. Default: 2.
	Workers int

	// PollInterval is the sleep between polls of an empty topic. Default: 1s.
	PollInterval time.Duration

	// MaxAttempts is the delivery limit before a message is parked.
	// Default: 5.
	MaxAttempts int

	// RatePerSecond caps message throughput per handler; zero means
	// unlimited.
	RatePerSecond float64
}

func (c PoolConfig) withDefaults() PoolConfig {
	if c.Workers <= 0 {
		c.Workers = 2
	}
	if c.PollInterval <= 0 {
		c.PollInterval = time.Second
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 5
	}
	return c
}

// Pool polls queues and dispatches messages to handlers.
type Pool struct {
	queue    queue.Queue
	handlers []Handler
	cfg      PoolConfig
}

// NewPool creates a pool over the given handlers.
func NewPool(q queue.Queue, cfg PoolConfig, handlers ...Handler) *Pool {
	return &Pool{queue: q, handlers: handlers, cfg: cfg.withDefaults()}
}

// Run consumes until the context is cancelled. Cancellation is a clean
// shutdown: in-flight messages finish, then Run returns nil.
func (p *Pool) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, h := range p.handlers {
		var limiter *rate.Limiter
		if p.cfg.RatePerSecond > 0 {
			limiter = rate.NewLimiter(rate.Limit(p.cfg.RatePerSecond), 1)
		}
		for i := 0; i < p.cfg.Workers; i++ {
			h := h
			g.Go(func() error {
				return p.consume(ctx, h, limiter)
			})
		}
	}
	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (p *Pool) consume(ctx context.Context, h Handler, limiter *rate.Limiter) error {
	log := zap.L().With(zap.String("topic", h.Topic()))
	for {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
		}

		msg, err := p.queue.Claim(ctx, h.Topic())
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn("claim failed", zap.Error(err))
			msg = nil
		}
		if msg == nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.cfg.PollInterval):
			}
			continue
		}

		p.dispatch(ctx, h, msg, log)
	}
}

// dispatch runs one message through the handler. Transient failures are
// retried in-process first, then redelivered with backoff; permanent
// failures and exhausted messages are parked with a reason.
func (p *Pool) dispatch(ctx context.Context, h Handler, msg *queue.Message, log *zap.Logger) {
	handleErr := resilience.Do(ctx, resilience.RetryConfig{
		MaxAttempts:    2,
		InitialBackoff: 100 * time.Millisecond,
		OnRetry:        resilience.RetryLogger(h.Topic(), "handle"),
	}, func(ctx context.Context) error {
		return h.Handle(ctx, msg)
	})

	switch {
	case handleErr == nil:
		if err := p.queue.Ack(ctx, msg); err != nil {
			log.Warn("ack failed", zap.String("key", msg.Key), zap.Error(err))
		}

	case isPermanent(handleErr):
		log.Warn("message parked",
			zap.String("key", msg.Key),
			zap.Int("attempts", msg.Attempts),
			zap.Error(handleErr),
		)
		if err := p.queue.DeadLetter(ctx, msg, handleErr.Error()); err != nil {
			log.Error("dead letter failed", zap.String("key", msg.Key), zap.Error(err))
		}

	case msg.Attempts >= p.cfg.MaxAttempts:
		log.Warn("message exhausted retries",
			zap.String("key", msg.Key),
			zap.Int("attempts", msg.Attempts),
			zap.Error(handleErr),
		)
		reason := resilience.ClassifyError(handleErr) + ": " + handleErr.Error()
		if err := p.queue.DeadLetter(ctx, msg, reason); err != nil {
			log.Error("dead letter failed", zap.String("key", msg.Key), zap.Error(err))
		}

	default:
		delay := resilience.Backoff(msg.Attempts, resilience.StoreRetry())
		log.Debug("message redelivery scheduled",
			zap.String("key", msg.Key),
			zap.Int("attempts", msg.Attempts),
			zap.Duration("delay", delay),
			zap.Error(handleErr),
		)
		if err := p.queue.Nack(ctx, msg, delay, handleErr.Error()); err != nil {
			log.Error("nack failed", zap.String("key", msg.Key), zap.Error(err))
		}
	}
}

// isPermanent reports whether redelivering the message could ever
// succeed. Validation and identity failures are properties of the record;
// everything else gets the benefit of the doubt until MaxAttempts.
func isPermanent(err error) bool {
	var pe *PermanentError
	if errors.As(err, &pe) {
		return true
	}
	return clean.IsValidation(err) || identity.IsUnmatchable(err)
}
