package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/openprocure/procurement-pipeline/internal/model"
)

// SQLiteStore implements Store on a local SQLite file. It serves single
// node runs and integration tests that want durable state without a
// Postgres instance. Group creation uses INSERT OR IGNORE followed by a
// read inside one transaction, which is atomic under SQLite's writer lock.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path. Use ":memory:" for
// an ephemeral store.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	// SQLite permits one writer; a larger pool just queues on the lock.
	db.SetMaxOpenConns(1)
	return &SQLiteStore{db: db}, nil
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS parsed_records (
		id         TEXT PRIMARY KEY,
		kind       TEXT NOT NULL,
		source     TEXT NOT NULL,
		payload    TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS clean_records (
		id         TEXT PRIMARY KEY,
		kind       TEXT NOT NULL,
		source     TEXT NOT NULL,
		payload    TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS entity_groups (
		kind        TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		group_id    TEXT NOT NULL,
		PRIMARY KEY (kind, fingerprint)
	)`,
	`CREATE TABLE IF NOT EXISTS matched_records (
		id          TEXT PRIMARY KEY,
		kind        TEXT NOT NULL,
		source      TEXT NOT NULL,
		group_id    TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		payload     TEXT NOT NULL,
		created_at  TEXT NOT NULL
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
		kind     TEXT NOT NULL,
		group_id TEXT NOT NULL,
		payload  TEXT NOT NULL,
		PRIMARY KEY (kind, group_id)
	)`,
	`CREATE TABLE IF NOT EXISTS unmatchable_records (
		record_id  TEXT PRIMARY KEY,
		kind       TEXT NOT NULL,
		source     TEXT NOT NULL,
		reason     TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
}

// Migrate creates the schema.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	for _, stmt := range sqliteSchema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return eris.Wrap(err, "sqlite: migrate")
		}
	}
	return nil
}

// PutParsedTender implements Store.
func (s *SQLiteStore) PutParsedTender(ctx context.Context, t *model.ParsedTender) error {
	return s.putParsed(ctx, t.ID, model.KindTender, t.Source, t)
}

// PutParsedBody implements Store.
func (s *SQLiteStore) PutParsedBody(ctx context.Context, b *model.ParsedBody) error {
	return s.putParsed(ctx, b.ID, model.KindBody, b.Source, b)
}

func (s *SQLiteStore) putParsed(ctx context.Context, id string, kind model.Kind, source string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal parsed record")
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO parsed_records (id, kind, source, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET payload = excluded.payload`,
		id, string(kind), source, string(data),
	)
	return eris.Wrap(err, "sqlite: put parsed record")
}

// GetParsedTender implements Store.
func (s *SQLiteStore) GetParsedTender(ctx context.Context, id string) (*model.ParsedTender, error) {
	var t model.ParsedTender
	ok, err := s.getJSON(ctx,
		`SELECT payload FROM parsed_records WHERE id = ? AND kind = ?`,
		[]any{id, string(model.KindTender)}, &t)
	if err != nil || !ok {
		return nil, err
	}
	return &t, nil
}

// GetParsedBody implements Store.
func (s *SQLiteStore) GetParsedBody(ctx context.Context, id string) (*model.ParsedBody, error) {
	var b model.ParsedBody
	ok, err := s.getJSON(ctx,
		`SELECT payload FROM parsed_records WHERE id = ? AND kind = ?`,
		[]any{id, string(model.KindBody)}, &b)
	if err != nil || !ok {
		return nil, err
	}
	return &b, nil
}

func (s *SQLiteStore) getJSON(ctx context.Context, query string, args []any, out any) (bool, error) {
	var data string
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, eris.Wrap(err, "sqlite: query record")
	}
	if err := json.Unmarshal([]byte(data), out); err != nil {
		return false, eris.Wrap(err, "sqlite: unmarshal record")
	}
	return true, nil
}

// PutClean implements Store.
func (s *SQLiteStore) PutClean(ctx context.Context, rec *model.CleanRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal clean record")
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO clean_records (id, kind, source, payload, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET payload = excluded.payload`,
		rec.ID, string(rec.Kind), rec.Source, string(data), rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	return eris.Wrap(err, "sqlite: put clean record")
}

// GetClean implements Store.
func (s *SQLiteStore) GetClean(ctx context.Context, id string) (*model.CleanRecord, error) {
	var rec model.CleanRecord
	ok, err := s.getJSON(ctx,
		`SELECT payload FROM clean_records WHERE id = ?`, []any{id}, &rec)
	if err != nil || !ok {
		return nil, err
	}
	return &rec, nil
}

// PutMatched implements Store.
func (s *SQLiteStore) PutMatched(ctx context.Context, rec *model.MatchedRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal matched record")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin put matched")
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO matched_records (id, kind, source, group_id, fingerprint, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			group_id = excluded.group_id,
			fingerprint = excluded.fingerprint,
			payload = excluded.payload`,
		rec.ID, string(rec.Kind), rec.Source, rec.GroupID, rec.Fingerprint,
		string(data), rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: put matched record")
	}

	if rec.Kind == model.KindTender && rec.Tender != nil {
		for _, pub := range rec.Tender.Publications {
			if pub.Source == "" || pub.SourceID == "" {
				continue
			}
			_, err = tx.ExecContext(ctx, `
				INSERT OR IGNORE INTO matched_publications
					(kind, pub_source, pub_source_id, record_id, group_id)
				VALUES (?, ?, ?, ?, ?)`,
				string(rec.Kind), pub.Source, pub.SourceID, rec.ID, rec.GroupID,
			)
			if err != nil {
				return eris.Wrap(err, "sqlite: index matched publication")
			}
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit put matched")
}

// GetMatched implements Store.
func (s *SQLiteStore) GetMatched(ctx context.Context, id string) (*model.MatchedRecord, error) {
	var rec model.MatchedRecord
	ok, err := s.getJSON(ctx,
		`SELECT payload FROM matched_records WHERE id = ?`, []any{id}, &rec)
	if err != nil || !ok {
		return nil, err
	}
	return &rec, nil
}

// GroupByFingerprint implements Store.
func (s *SQLiteStore) GroupByFingerprint(ctx context.Context, kind model.Kind, digest string) (string, error) {
	var groupID string
	err := s.db.QueryRowContext(ctx,
		`SELECT group_id FROM entity_groups WHERE kind = ? AND fingerprint = ?`,
		string(kind), digest,
	).Scan(&groupID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return groupID, eris.Wrap(err, "sqlite: group by fingerprint")
}

// GroupByPublication implements Store.
func (s *SQLiteStore) GroupByPublication(ctx context.Context, kind model.Kind, pubSource, pubSourceID string) (string, error) {
	var groupID string
	err := s.db.QueryRowContext(ctx, `
		SELECT group_id FROM matched_publications
		WHERE kind = ? AND pub_source = ? AND pub_source_id = ?
		LIMIT 1`,
		string(kind), pubSource, pubSourceID,
	).Scan(&groupID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return groupID, eris.Wrap(err, "sqlite: group by publication")
}

// GroupMembers implements Store.
func (s *SQLiteStore) GroupMembers(ctx context.Context, kind model.Kind, groupID string) ([]model.MatchedRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT payload FROM matched_records
		WHERE kind = ? AND group_id = ?
		ORDER BY created_at, id`,
		string(kind), groupID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: group members")
	}
	defer rows.Close()

	var members []model.MatchedRecord
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan group member")
		}
		var rec model.MatchedRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal group member")
		}
		members = append(members, rec)
	}
	return members, eris.Wrap(rows.Err(), "sqlite: group members rows")
}

// CreateGroupIfAbsent implements Store.
func (s *SQLiteStore) CreateGroupIfAbsent(ctx context.Context, kind model.Kind, digest, groupID string) (string, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", false, eris.Wrap(err, "sqlite: begin create group")
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO entity_groups (kind, fingerprint, group_id)
		VALUES (?, ?, ?)`,
		string(kind), digest, groupID,
	)
	if err != nil {
		return "", false, eris.Wrap(err, "sqlite: insert group")
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return "", false, eris.Wrap(err, "sqlite: insert group result")
	}

	var winner string
	err = tx.QueryRowContext(ctx,
		`SELECT group_id FROM entity_groups WHERE kind = ? AND fingerprint = ?`,
		string(kind), digest,
	).Scan(&winner)
	if err != nil {
		return "", false, eris.Wrap(err, "sqlite: read group winner")
	}
	if err := tx.Commit(); err != nil {
		return "", false, eris.Wrap(err, "sqlite: commit create group")
	}
	return winner, inserted > 0, nil
}

// PutMaster implements Store.
func (s *SQLiteStore) PutMaster(ctx context.Context, rec *model.MasterRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal master record")
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO master_records (kind, group_id, payload)
		VALUES (?, ?, ?)
		ON CONFLICT (kind, group_id) DO UPDATE SET payload = excluded.payload`,
		string(rec.Kind), rec.GroupID, string(data),
	)
	return eris.Wrap(err, "sqlite: put master record")
}

// GetMaster implements Store.
func (s *SQLiteStore) GetMaster(ctx context.Context, kind model.Kind, groupID string) (*model.MasterRecord, error) {
	var rec model.MasterRecord
	ok, err := s.getJSON(ctx,
		`SELECT payload FROM master_records WHERE kind = ? AND group_id = ?`,
		[]any{string(kind), groupID}, &rec)
	if err != nil || !ok {
		return nil, err
	}
	return &rec, nil
}

// RecordUnmatchable implements Store.
func (s *SQLiteStore) RecordUnmatchable(ctx context.Context, rec *model.CleanRecord, reason string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO unmatchable_records (record_id, kind, source, reason, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (record_id) DO UPDATE SET reason = excluded.reason`,
		rec.ID, string(rec.Kind), rec.Source, reason, time.Now().UTC().Format(time.RFC3339Nano),
	)
	return eris.Wrap(err, "sqlite: record unmatchable")
}

// ListUnmatchable implements Store.
func (s *SQLiteStore) ListUnmatchable(ctx context.Context, limit int) ([]UnmatchableRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT record_id, kind, source, reason, created_at
		FROM unmatchable_records
		ORDER BY created_at DESC
		LIMIT ?`, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list unmatchable")
	}
	defer rows.Close()

	var out []UnmatchableRecord
	for rows.Next() {
		var u UnmatchableRecord
		var kind, createdAt string
		if err := rows.Scan(&u.RecordID, &kind, &u.Source, &u.Reason, &createdAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan unmatchable")
		}
		u.Kind = model.Kind(kind)
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			u.CreatedAt = t
		}
		out = append(out, u)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list unmatchable rows")
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
