package queue

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/openprocure/procurement-pipeline/internal/db"
)

// PostgresQueue is a Postgres-backed Queue. Claims use FOR UPDATE SKIP
// LOCKED so any number of workers can poll the same topic without
// coordination.
type PostgresQueue struct {
	pool db.Pool
}

// NewPostgres creates a PostgresQueue over an existing pool.
func NewPostgres(pool db.Pool) *PostgresQueue {
	return &PostgresQueue{pool: pool}
}

var queueSchema = []string{
	`CREATE TABLE IF NOT EXISTS pipeline_queue (
		id         BIGSERIAL PRIMARY KEY,
		topic      TEXT NOT NULL,
		key        TEXT NOT NULL,
		status     TEXT NOT NULL DEFAULT 'pending',
		attempts   INT NOT NULL DEFAULT 0,
		not_before TIMESTAMPTZ NOT NULL DEFAULT now(),
		last_error TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (topic, key)
	)`,
	`CREATE INDEX IF NOT EXISTS pipeline_queue_claim_idx
		ON pipeline_queue (topic, status, not_before, created_at)`,
	`CREATE TABLE IF NOT EXISTS pipeline_deadletters (
		id         BIGSERIAL PRIMARY KEY,
		topic      TEXT NOT NULL,
		key        TEXT NOT NULL,
		attempts   INT NOT NULL,
		reason     TEXT NOT NULL,
		failed_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// Migrate creates the queue tables.
func (q *PostgresQueue) Migrate(ctx context.Context) error {
	for _, stmt := range queueSchema {
		if _, err := q.pool.Exec(ctx, stmt); err != nil {
			return eris.Wrap(err, "queue: migrate")
		}
	}
	return nil
}

// Publish implements Queue. Re-publishing a key resets it to pending,
// mirroring the stage semantics: a newer version of the record supersedes
// whatever outcome the old message had.
func (q *PostgresQueue) Publish(ctx context.Context, topic, key string) error {
	_, err := q.pool.Exec(ctx, `
		INSERT INTO pipeline_queue (topic, key, status, attempts, not_before, created_at, updated_at)
		VALUES ($1, $2, 'pending', 0, now(), now(), now())
		ON CONFLICT (topic, key) DO UPDATE SET
			status = 'pending',
			attempts = 0,
			not_before = now(),
			last_error = NULL,
			updated_at = now()`,
		topic, key,
	)
	return eris.Wrapf(err, "queue: publish %s", topic)
}

// Claim implements Queue.
func (q *PostgresQueue) Claim(ctx context.Context, topic string) (*Message, error) {
	var msg Message
	err := q.pool.QueryRow(ctx, `
		UPDATE pipeline_queue
		SET status = 'processing', attempts = attempts + 1, updated_at = now()
		WHERE id = (
			SELECT id FROM pipeline_queue
			WHERE topic = $1 AND status = 'pending' AND not_before <= now()
			ORDER BY created_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, topic, key, attempts`,
		topic,
	).Scan(&msg.ID, &msg.Topic, &msg.Key, &msg.Attempts)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "queue: claim %s", topic)
	}
	return &msg, nil
}

// Ack implements Queue. The row is deleted only if no concurrent Publish
// reset it back to pending.
func (q *PostgresQueue) Ack(ctx context.Context, msg *Message) error {
	_, err := q.pool.Exec(ctx,
		`DELETE FROM pipeline_queue WHERE id = $1 AND status = 'processing'`,
		msg.ID,
	)
	return eris.Wrapf(err, "queue: ack %s", msg.Topic)
}

// Nack implements Queue.
func (q *PostgresQueue) Nack(ctx context.Context, msg *Message, delay time.Duration, reason string) error {
	_, err := q.pool.Exec(ctx, `
		UPDATE pipeline_queue
		SET status = 'pending', not_before = now() + $2, last_error = $3, updated_at = now()
		WHERE id = $1`,
		msg.ID, delay, reason,
	)
	return eris.Wrapf(err, "queue: nack %s", msg.Topic)
}

// DeadLetter implements Queue.
func (q *PostgresQueue) DeadLetter(ctx context.Context, msg *Message, reason string) error {
	tx, err := q.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "queue: begin dead letter")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO pipeline_deadletters (topic, key, attempts, reason)
		VALUES ($1, $2, $3, $4)`,
		msg.Topic, msg.Key, msg.Attempts, reason,
	)
	if err != nil {
		return eris.Wrap(err, "queue: insert dead letter")
	}
	_, err = tx.Exec(ctx, `DELETE FROM pipeline_queue WHERE id = $1`, msg.ID)
	if err != nil {
		return eris.Wrap(err, "queue: remove dead-lettered message")
	}
	return eris.Wrap(tx.Commit(ctx), "queue: commit dead letter")
}

// Depth implements Queue.
func (q *PostgresQueue) Depth(ctx context.Context, topic string) (int, error) {
	var n int
	err := q.pool.QueryRow(ctx,
		`SELECT count(*) FROM pipeline_queue WHERE topic = $1 AND status = 'pending'`,
		topic,
	).Scan(&n)
	return n, eris.Wrapf(err, "queue: depth %s", topic)
}

// ListDeadLetters implements Queue.
func (q *PostgresQueue) ListDeadLetters(ctx context.Context, topic string, limit int) ([]DeadLetter, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := q.pool.Query(ctx, `
		SELECT id, topic, key, attempts, reason, failed_at
		FROM pipeline_deadletters
		WHERE $1 = '' OR topic = $1
		ORDER BY failed_at DESC
		LIMIT $2`,
		topic, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "queue: list dead letters")
	}
	defer rows.Close()

	var out []DeadLetter
	for rows.Next() {
		var d DeadLetter
		if err := rows.Scan(&d.ID, &d.Topic, &d.Key, &d.Attempts, &d.Reason, &d.FailedAt); err != nil {
			return nil, eris.Wrap(err, "queue: scan dead letter")
		}
		out = append(out, d)
	}
	return out, eris.Wrap(rows.Err(), "queue: dead letter rows")
}

// Close implements Queue. The pool is shared with the store, so closing
// is left to its owner.
func (q *PostgresQueue) Close() error { return nil }
