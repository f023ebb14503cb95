package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/openprocure/procurement-pipeline/internal/db"
	"github.com/openprocure/procurement-pipeline/internal/model"
)

// PostgresStore implements Store on a pgx pool. Group creation relies on
// the primary key of entity_groups: INSERT ... ON CONFLICT DO NOTHING is
// the single atomic insert-if-absent operation, never check-then-act.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// NewPostgres creates a PostgresStore over an existing pool.
func NewPostgres(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, closeFn: pool.Close}
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS parsed_records (
		id         TEXT PRIMARY KEY,
		kind       TEXT NOT NULL,
		source     TEXT NOT NULL,
		payload    JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS clean_records (
		id         TEXT PRIMARY KEY,
		kind       TEXT NOT NULL,
		source     TEXT NOT NULL,
		payload    JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS entity_groups (
		kind        TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		group_id    TEXT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (kind, fingerprint)
	)`,
	`CREATE TABLE IF NOT EXISTS matched_records (
		id          TEXT PRIMARY KEY,
		kind        TEXT NOT NULL,
		source      TEXT NOT NULL,
		group_id    TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		payload     JSONB NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS matched_records_group_idx
		ON matched_records (kind, group_id)`,
	`CREATE TABLE IF NOT EXISTS matched_publications (
		kind          TEXT NOT NULL,
		pub_source    TEXT NOT NULL,
		pub_source_id TEXT NOT NULL,
		record_id     TEXT NOT NULL,
		group_id      TEXT NOT NULL,
		PRIMARY KEY (kind, pub_source, pub_source_id, record_id)
	)`,
	`CREATE TABLE IF NOT EXISTS master_records (
		kind       TEXT NOT NULL,
		group_id   TEXT NOT NULL,
		payload    JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (kind, group_id)
	)`,
	`CREATE TABLE IF NOT EXISTS unmatchable_records (
		record_id  TEXT PRIMARY KEY,
		kind       TEXT NOT NULL,
		source     TEXT NOT NULL,
		reason     TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// Migrate creates the schema.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	for _, stmt := range postgresSchema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return eris.Wrap(err, "postgres: migrate")
		}
	}
	return nil
}

// PutParsedTender implements Store.
func (s *PostgresStore) PutParsedTender(ctx context.Context, t *model.ParsedTender) error {
	return s.putParsed(ctx, t.ID, model.KindTender, t.Source, t)
}

// PutParsedBody implements Store.
func (s *PostgresStore) PutParsedBody(ctx context.Context, b *model.ParsedBody) error {
	return s.putParsed(ctx, b.ID, model.KindBody, b.Source, b)
}

func (s *PostgresStore) putParsed(ctx context.Context, id string, kind model.Kind, source string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal parsed record")
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO parsed_records (id, kind, source, payload)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload`,
		id, kind, source, data,
	)
	return eris.Wrap(err, "postgres: put parsed record")
}

// GetParsedTender implements Store.
func (s *PostgresStore) GetParsedTender(ctx context.Context, id string) (*model.ParsedTender, error) {
	var t model.ParsedTender
	ok, err := s.getParsed(ctx, id, model.KindTender, &t)
	if err != nil || !ok {
		return nil, err
	}
	return &t, nil
}

// GetParsedBody implements Store.
func (s *PostgresStore) GetParsedBody(ctx context.Context, id string) (*model.ParsedBody, error) {
	var b model.ParsedBody
	ok, err := s.getParsed(ctx, id, model.KindBody, &b)
	if err != nil || !ok {
		return nil, err
	}
	return &b, nil
}

func (s *PostgresStore) getParsed(ctx context.Context, id string, kind model.Kind, out any) (bool, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM parsed_records WHERE id = $1 AND kind = $2`,
		id, kind,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, eris.Wrap(err, "postgres: get parsed record")
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, eris.Wrap(err, "postgres: unmarshal parsed record")
	}
	return true, nil
}

// PutClean implements Store.
func (s *PostgresStore) PutClean(ctx context.Context, rec *model.CleanRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal clean record")
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO clean_records (id, kind, source, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload`,
		rec.ID, rec.Kind, rec.Source, data, rec.CreatedAt,
	)
	return eris.Wrap(err, "postgres: put clean record")
}

// GetClean implements Store.
func (s *PostgresStore) GetClean(ctx context.Context, id string) (*model.CleanRecord, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM clean_records WHERE id = $1`, id,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get clean record")
	}
	var rec model.CleanRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal clean record")
	}
	return &rec, nil
}

// PutMatched implements Store. The publication index rows are written in
// the same transaction so cross-source matching never sees a half-indexed
// record.
func (s *PostgresStore) PutMatched(ctx context.Context, rec *model.MatchedRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal matched record")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin put matched")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO matched_records (id, kind, source, group_id, fingerprint, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			group_id = EXCLUDED.group_id,
			fingerprint = EXCLUDED.fingerprint,
			payload = EXCLUDED.payload`,
		rec.ID, rec.Kind, rec.Source, rec.GroupID, rec.Fingerprint, data, rec.CreatedAt,
	)
	if err != nil {
		return eris.Wrap(err, "postgres: put matched record")
	}

	if rec.Kind == model.KindTender && rec.Tender != nil {
		for _, pub := range rec.Tender.Publications {
			if pub.Source == "" || pub.SourceID == "" {
				continue
			}
			_, err = tx.Exec(ctx, `
				INSERT INTO matched_publications (kind, pub_source, pub_source_id, record_id, group_id)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (kind, pub_source, pub_source_id, record_id) DO NOTHING`,
				rec.Kind, pub.Source, pub.SourceID, rec.ID, rec.GroupID,
			)
			if err != nil {
				return eris.Wrap(err, "postgres: index matched publication")
			}
		}
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit put matched")
}

// GetMatched implements Store.
func (s *PostgresStore) GetMatched(ctx context.Context, id string) (*model.MatchedRecord, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM matched_records WHERE id = $1`, id,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get matched record")
	}
	var rec model.MatchedRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal matched record")
	}
	return &rec, nil
}

// GroupByFingerprint implements Store.
func (s *PostgresStore) GroupByFingerprint(ctx context.Context, kind model.Kind, digest string) (string, error) {
	var groupID string
	err := s.pool.QueryRow(ctx,
		`SELECT group_id FROM entity_groups WHERE kind = $1 AND fingerprint = $2`,
		kind, digest,
	).Scan(&groupID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", eris.Wrap(err, "postgres: group by fingerprint")
	}
	return groupID, nil
}

// GroupByPublication implements Store.
func (s *PostgresStore) GroupByPublication(ctx context.Context, kind model.Kind, pubSource, pubSourceID string) (string, error) {
	var groupID string
	err := s.pool.QueryRow(ctx, `
		SELECT group_id FROM matched_publications
		WHERE kind = $1 AND pub_source = $2 AND pub_source_id = $3
		LIMIT 1`,
		kind, pubSource, pubSourceID,
	).Scan(&groupID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", eris.Wrap(err, "postgres: group by publication")
	}
	return groupID, nil
}

// GroupMembers implements Store. Members are returned in insertion order;
// the mastering engine applies its own priority ordering.
func (s *PostgresStore) GroupMembers(ctx context.Context, kind model.Kind, groupID string) ([]model.MatchedRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT payload FROM matched_records
		WHERE kind = $1 AND group_id = $2
		ORDER BY created_at, id`,
		kind, groupID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: group members")
	}
	defer rows.Close()

	var members []model.MatchedRecord
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "postgres: scan group member")
		}
		var rec model.MatchedRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal group member")
		}
		members = append(members, rec)
	}
	return members, eris.Wrap(rows.Err(), "postgres: group members rows")
}

// CreateGroupIfAbsent implements Store. A single statement performs the
// insert-if-absent and reads back the winner, so two concurrent workers
// racing on one fingerprint converge on the same group id.
func (s *PostgresStore) CreateGroupIfAbsent(ctx context.Context, kind model.Kind, digest, groupID string) (string, bool, error) {
	var winner string
	var created bool
	err := s.pool.QueryRow(ctx, `
		WITH ins AS (
			INSERT INTO entity_groups (kind, fingerprint, group_id)
			VALUES ($1, $2, $3)
			ON CONFLICT (kind, fingerprint) DO NOTHING
			RETURNING group_id
		)
		SELECT group_id, true FROM ins
		UNION ALL
		SELECT group_id, false FROM entity_groups WHERE kind = $1 AND fingerprint = $2
		LIMIT 1`,
		kind, digest, groupID,
	).Scan(&winner, &created)
	if err != nil {
		return "", false, eris.Wrap(err, "postgres: create group if absent")
	}
	return winner, created, nil
}

// PutMaster implements Store. The master row is replaced, not patched.
func (s *PostgresStore) PutMaster(ctx context.Context, rec *model.MasterRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal master record")
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO master_records (kind, group_id, payload, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (kind, group_id) DO UPDATE SET
			payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at`,
		rec.Kind, rec.GroupID, data, time.Now().UTC(),
	)
	return eris.Wrap(err, "postgres: put master record")
}

// GetMaster implements Store.
func (s *PostgresStore) GetMaster(ctx context.Context, kind model.Kind, groupID string) (*model.MasterRecord, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM master_records WHERE kind = $1 AND group_id = $2`,
		kind, groupID,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get master record")
	}
	var rec model.MasterRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal master record")
	}
	return &rec, nil
}

// RecordUnmatchable implements Store.
func (s *PostgresStore) RecordUnmatchable(ctx context.Context, rec *model.CleanRecord, reason string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO unmatchable_records (record_id, kind, source, reason)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (record_id) DO UPDATE SET reason = EXCLUDED.reason`,
		rec.ID, rec.Kind, rec.Source, reason,
	)
	return eris.Wrap(err, "postgres: record unmatchable")
}

// ListUnmatchable implements Store.
func (s *PostgresStore) ListUnmatchable(ctx context.Context, limit int) ([]UnmatchableRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT record_id, kind, source, reason, created_at
		FROM unmatchable_records
		ORDER BY created_at DESC
		LIMIT $1`, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list unmatchable")
	}
	defer rows.Close()

	var out []UnmatchableRecord
	for rows.Next() {
		var u UnmatchableRecord
		if err := rows.Scan(&u.RecordID, &u.Kind, &u.Source, &u.Reason, &u.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan unmatchable")
		}
		out = append(out, u)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list unmatchable rows")
}

// BulkPutParsed upserts a batch of pre-marshalled parsed records via COPY
// into a temp table. Used by the ingest command for large batch loads.
func (s *PostgresStore) BulkPutParsed(ctx context.Context, rows [][]any) (int64, error) {
	return db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "parsed_records",
		Columns:      []string{"id", "kind", "source", "payload"},
		ConflictKeys: []string{"id"},
	}, rows)
}

// Close implements Store.
func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}
