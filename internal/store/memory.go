package store

import (
	"context"
	"sync"
	"time"

	"github.com/openprocure/procurement-pipeline/internal/model"
)

// MemoryStore is an in-process Store used by tests and local experiments.
// All maps are guarded by one mutex; the group index mutation is therefore
// trivially insert-if-absent.
type MemoryStore struct {
	mu sync.Mutex

	parsedTenders map[string]model.ParsedTender
	parsedBodies  map[string]model.ParsedBody
	clean         map[string]model.CleanRecord
	matched       map[string]model.MatchedRecord
	groups        map[groupKey]string
	pubIndex      map[pubKey]string
	masters       map[masterKey]model.MasterRecord
	unmatchable   []UnmatchableRecord
}

type groupKey struct {
	kind   model.Kind
	digest string
}

type pubKey struct {
	kind     model.Kind
	source   string
	sourceID string
}

type masterKey struct {
	kind    model.Kind
	groupID string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		parsedTenders: map[string]model.ParsedTender{},
		parsedBodies:  map[string]model.ParsedBody{},
		clean:         map[string]model.CleanRecord{},
		matched:       map[string]model.MatchedRecord{},
		groups:        map[groupKey]string{},
		pubIndex:      map[pubKey]string{},
		masters:       map[masterKey]model.MasterRecord{},
	}
}

// PutParsedTender implements Store.
func (s *MemoryStore) PutParsedTender(_ context.Context, t *model.ParsedTender) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parsedTenders[t.ID] = *t
	return nil
}

// GetParsedTender implements Store.
func (s *MemoryStore) GetParsedTender(_ context.Context, id string) (*model.ParsedTender, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.parsedTenders[id]; ok {
		return &t, nil
	}
	return nil, nil
}

// PutParsedBody implements Store.
func (s *MemoryStore) PutParsedBody(_ context.Context, b *model.ParsedBody) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parsedBodies[b.ID] = *b
	return nil
}

// GetParsedBody implements Store.
func (s *MemoryStore) GetParsedBody(_ context.Context, id string) (*model.ParsedBody, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.parsedBodies[id]; ok {
		return &b, nil
	}
	return nil, nil
}

// PutClean implements Store.
func (s *MemoryStore) PutClean(_ context.Context, rec *model.CleanRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clean[rec.ID] = *rec
	return nil
}

// GetClean implements Store.
func (s *MemoryStore) GetClean(_ context.Context, id string) (*model.CleanRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.clean[id]; ok {
		return &rec, nil
	}
	return nil, nil
}

// PutMatched implements Store.
func (s *MemoryStore) PutMatched(_ context.Context, rec *model.MatchedRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matched[rec.ID] = *rec
	if rec.Kind == model.KindTender && rec.Tender != nil {
		for _, pub := range rec.Tender.Publications {
			if pub.Source != "" && pub.SourceID != "" {
				s.pubIndex[pubKey{rec.Kind, pub.Source, pub.SourceID}] = rec.GroupID
			}
		}
	}
	return nil
}

// GetMatched implements Store.
func (s *MemoryStore) GetMatched(_ context.Context, id string) (*model.MatchedRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.matched[id]; ok {
		return &rec, nil
	}
	return nil, nil
}

// GroupByFingerprint implements Store.
func (s *MemoryStore) GroupByFingerprint(_ context.Context, kind model.Kind, digest string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.groups[groupKey{kind, digest}], nil
}

// GroupByPublication implements Store.
func (s *MemoryStore) GroupByPublication(_ context.Context, kind model.Kind, pubSource, pubSourceID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pubIndex[pubKey{kind, pubSource, pubSourceID}], nil
}

// GroupMembers implements Store.
func (s *MemoryStore) GroupMembers(_ context.Context, kind model.Kind, groupID string) ([]model.MatchedRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var members []model.MatchedRecord
	for _, rec := range s.matched {
		if rec.Kind == kind && rec.GroupID == groupID {
			members = append(members, rec)
		}
	}
	return members, nil
}

// CreateGroupIfAbsent implements Store.
func (s *MemoryStore) CreateGroupIfAbsent(_ context.Context, kind model.Kind, digest, groupID string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := groupKey{kind, digest}
	if existing, ok := s.groups[key]; ok {
		return existing, false, nil
	}
	s.groups[key] = groupID
	return groupID, true, nil
}

// PutMaster implements Store.
func (s *MemoryStore) PutMaster(_ context.Context, rec *model.MasterRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.masters[masterKey{rec.Kind, rec.GroupID}] = *rec
	return nil
}

// GetMaster implements Store.
func (s *MemoryStore) GetMaster(_ context.Context, kind model.Kind, groupID string) (*model.MasterRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.masters[masterKey{kind, groupID}]; ok {
		return &rec, nil
	}
	return nil, nil
}

// RecordUnmatchable implements Store.
func (s *MemoryStore) RecordUnmatchable(_ context.Context, rec *model.CleanRecord, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unmatchable = append(s.unmatchable, UnmatchableRecord{
		RecordID:  rec.ID,
		Kind:      rec.Kind,
		Source:    rec.Source,
		Reason:    reason,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

// ListUnmatchable implements Store.
func (s *MemoryStore) ListUnmatchable(_ context.Context, limit int) ([]UnmatchableRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 || limit > len(s.unmatchable) {
		limit = len(s.unmatchable)
	}
	out := make([]UnmatchableRecord, limit)
	copy(out, s.unmatchable[:limit])
	return out, nil
}

// Migrate implements Store.
func (s *MemoryStore) Migrate(context.Context) error { return nil }

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }
