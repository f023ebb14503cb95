// Package model defines the record shapes flowing through the pipeline:
// parsed (source-shaped), clean (normalized), matched (grouped), and
// master (merged golden record).
package model

import "time"

// Kind distinguishes the two entity families processed by the pipeline.
type Kind string

// Entity kinds.
const (
	KindTender Kind = "tender"
	KindBody   Kind = "body"
)

// CleanRecord is the normalized form of one parsed record. Exactly one of
// Tender or Body is set, according to Kind. Immutable after creation.
type CleanRecord struct {
	ID             string    `json:"id" db:"id"`
	Kind           Kind      `json:"kind" db:"kind"`
	Source         string    `json:"source" db:"source"`
	SourceVersion  string    `json:"source_version,omitempty" db:"source_version"`
	CleanerVersion string    `json:"cleaner_version" db:"cleaner_version"`
	PublishedAt    time.Time `json:"published_at" db:"published_at"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`

	Tender *CleanTender `json:"tender,omitempty" db:"tender"`
	Body   *CleanBody   `json:"body,omitempty" db:"body"`
}

// MatchedRecord is a CleanRecord bound to a real-world entity group.
// GroupID is assigned once; it never changes under the same matcher version.
type MatchedRecord struct {
	CleanRecord

	GroupID           string `json:"group_id" db:"group_id"`
	Fingerprint       string `json:"fingerprint" db:"fingerprint"`
	FingerprintStable bool   `json:"fingerprint_stable" db:"fingerprint_stable"`
	MatcherVersion    string `json:"matcher_version" db:"matcher_version"`
	MatchedBy         string `json:"matched_by" db:"matched_by"`
}

// How a matched record was bound to its group.
const (
	MatchedByHash  = "hash"
	MatchedByGroup = "existing_group"
)

// MasterRecord is the canonical merged representation of one group. It is
// rebuilt from scratch whenever the group's member set changes; the payload
// carries no wall-clock fields so that rebuilding an unchanged member set
// yields a byte-identical record.
type MasterRecord struct {
	GroupID         string   `json:"group_id" db:"group_id"`
	Kind            Kind     `json:"kind" db:"kind"`
	MastererVersion string   `json:"masterer_version" db:"masterer_version"`
	MemberIDs       []string `json:"member_ids" db:"member_ids"`

	Tender *CleanTender `json:"tender,omitempty" db:"tender"`
	Body   *CleanBody   `json:"body,omitempty" db:"body"`
}
