package queue

import (
	"context"
	"sync"
	"time"
)

// MemoryQueue is an in-process Queue for tests and the local pipeline
// command. It mirrors the Postgres semantics: per-topic key dedup,
// delayed redelivery on nack, and a dead letter list.
type MemoryQueue struct {
	mu         sync.Mutex
	nextID     int64
	pending    map[string][]*memMessage // keyed by topic, claim order
	processing map[int64]*memMessage
	dead       []DeadLetter
	now        func() time.Time
}

type memMessage struct {
	id        int64
	topic     string
	key       string
	attempts  int
	notBefore time.Time
	createdAt time.Time
}

// NewMemory creates an empty in-memory queue.
func NewMemory() *MemoryQueue {
	return &MemoryQueue{
		pending:    map[string][]*memMessage{},
		processing: map[int64]*memMessage{},
		now:        time.Now,
	}
}

// Publish implements Queue.
func (q *MemoryQueue) Publish(_ context.Context, topic, key string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, m := range q.pending[topic] {
		if m.key == key {
			m.attempts = 0
			m.notBefore = q.now()
			return nil
		}
	}

	q.nextID++
	q.pending[topic] = append(q.pending[topic], &memMessage{
		id:        q.nextID,
		topic:     topic,
		key:       key,
		notBefore: q.now(),
		createdAt: q.now(),
	})
	return nil
}

// Claim implements Queue.
func (q *MemoryQueue) Claim(_ context.Context, topic string) (*Message, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	msgs := q.pending[topic]
	now := q.now()
	for i, m := range msgs {
		if m.notBefore.After(now) {
			continue
		}
		q.pending[topic] = append(msgs[:i:i], msgs[i+1:]...)
		m.attempts++
		q.processing[m.id] = m
		return &Message{ID: m.id, Topic: m.topic, Key: m.key, Attempts: m.attempts}, nil
	}
	return nil, nil
}

// Ack implements Queue.
func (q *MemoryQueue) Ack(_ context.Context, msg *Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.processing, msg.ID)
	return nil
}

// Nack implements Queue.
func (q *MemoryQueue) Nack(_ context.Context, msg *Message, delay time.Duration, _ string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	m, ok := q.processing[msg.ID]
	if !ok {
		return nil
	}
	delete(q.processing, msg.ID)
	m.notBefore = q.now().Add(delay)
	q.pending[m.topic] = append(q.pending[m.topic], m)
	return nil
}

// DeadLetter implements Queue.
func (q *MemoryQueue) DeadLetter(_ context.Context, msg *Message, reason string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	delete(q.processing, msg.ID)
	q.dead = append(q.dead, DeadLetter{
		ID:       msg.ID,
		Topic:    msg.Topic,
		Key:      msg.Key,
		Attempts: msg.Attempts,
		Reason:   reason,
		FailedAt: q.now(),
	})
	return nil
}

// Depth implements Queue.
func (q *MemoryQueue) Depth(_ context.Context, topic string) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending[topic]), nil
}

// ListDeadLetters implements Queue.
func (q *MemoryQueue) ListDeadLetters(_ context.Context, topic string, limit int) ([]DeadLetter, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var out []DeadLetter
	for i := len(q.dead) - 1; i >= 0; i-- {
		if topic != "" && q.dead[i].Topic != topic {
			continue
		}
		out = append(out, q.dead[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Close implements Queue.
func (q *MemoryQueue) Close() error { return nil }
