// Package store persists pipeline records and owns the atomic group
// creation primitive the matching stage depends on.
package store

import (
	"context"
	"time"

	"github.com/openprocure/procurement-pipeline/internal/model"
)

// UnmatchableRecord is a clean record whose identity could not be
// computed, kept for administrative review.
type UnmatchableRecord struct {
	RecordID  string     `json:"record_id" db:"record_id"`
	Kind      model.Kind `json:"kind" db:"kind"`
	Source    string     `json:"source" db:"source"`
	Reason    string     `json:"reason" db:"reason"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// Store defines the persistence interface for the normalization pipeline.
// Lookup methods return the zero value (nil pointer or empty string)
// rather than an error when nothing matches.
type Store interface {
	// Parsed records (written by ingestion, read by cleaning)
	PutParsedTender(ctx context.Context, t *model.ParsedTender) error
	GetParsedTender(ctx context.Context, id string) (*model.ParsedTender, error)
	PutParsedBody(ctx context.Context, b *model.ParsedBody) error
	GetParsedBody(ctx context.Context, id string) (*model.ParsedBody, error)

	// Clean records
	PutClean(ctx context.Context, rec *model.CleanRecord) error
	GetClean(ctx context.Context, id string) (*model.CleanRecord, error)

	// Matched records and groups
	PutMatched(ctx context.Context, rec *model.MatchedRecord) error
	GetMatched(ctx context.Context, id string) (*model.MatchedRecord, error)
	GroupByFingerprint(ctx context.Context, kind model.Kind, digest string) (string, error)
	GroupByPublication(ctx context.Context, kind model.Kind, pubSource, pubSourceID string) (string, error)
	GroupMembers(ctx context.Context, kind model.Kind, groupID string) ([]model.MatchedRecord, error)

	// CreateGroupIfAbsent binds a fingerprint to a group atomically:
	// insert-if-absent, else read. It returns the winning group id and
	// whether this call created it. Concurrent callers with the same
	// fingerprint all receive the same group id.
	CreateGroupIfAbsent(ctx context.Context, kind model.Kind, digest, groupID string) (string, bool, error)

	// Master records
	PutMaster(ctx context.Context, rec *model.MasterRecord) error
	GetMaster(ctx context.Context, kind model.Kind, groupID string) (*model.MasterRecord, error)

	// Unmatchable records
	RecordUnmatchable(ctx context.Context, rec *model.CleanRecord, reason string) error
	ListUnmatchable(ctx context.Context, limit int) ([]UnmatchableRecord, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
