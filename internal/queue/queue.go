// Package queue provides the work queues that drive the pipeline stages.
// Delivery is at-least-once; every consumer is idempotent, so a redelivered
// message converges on the same state.
package queue

import (
	"context"
	"time"

	"github.com/openprocure/procurement-pipeline/internal/model"
)

// Stage topics. The key carried on a message is a record id for the clean
// and match stages and a group id for the master stage.
const (
	TopicCleanTender  = "clean.tender"
	TopicCleanBody    = "clean.body"
	TopicMatchTender  = "match.tender"
	TopicMatchBody    = "match.body"
	TopicMasterTender = "master.tender"
	TopicMasterBody   = "master.body"
)

// CleanTopic returns the cleaning topic for a record kind.
func CleanTopic(kind model.Kind) string {
	if kind == model.KindBody {
		return TopicCleanBody
	}
	return TopicCleanTender
}

// MatchTopic returns the matching topic for a record kind.
func MatchTopic(kind model.Kind) string {
	if kind == model.KindBody {
		return TopicMatchBody
	}
	return TopicMatchTender
}

// MasterTopic returns the mastering topic for a record kind.
func MasterTopic(kind model.Kind) string {
	if kind == model.KindBody {
		return TopicMasterBody
	}
	return TopicMasterTender
}

// Topics lists every stage topic, in pipeline order.
func Topics() []string {
	return []string{
		TopicCleanTender, TopicCleanBody,
		TopicMatchTender, TopicMatchBody,
		TopicMasterTender, TopicMasterBody,
	}
}

// Message is a claimed unit of work.
type Message struct {
	ID       int64
	Topic    string
	Key      string
	Attempts int
}

// DeadLetter is a message parked after exhausting its retries or failing
// a permanent validation.
type DeadLetter struct {
	ID       int64     `json:"id"`
	Topic    string    `json:"topic"`
	Key      string    `json:"key"`
	Attempts int       `json:"attempts"`
	Reason   string    `json:"reason"`
	FailedAt time.Time `json:"failed_at"`
}

// Queue is the transport between pipeline stages.
type Queue interface {
	// Publish enqueues key on topic. Publishing a key that is already
	// pending resets it rather than duplicating it.
	Publish(ctx context.Context, topic, key string) error

	// Claim takes one pending message from topic, or returns nil when the
	// topic is empty. A claimed message stays invisible to other workers
	// until it is acked, nacked, or dead-lettered.
	Claim(ctx context.Context, topic string) (*Message, error)

	// Ack removes a claimed message.
	Ack(ctx context.Context, msg *Message) error

	// Nack returns a claimed message to pending after delay, incrementing
	// its attempt count.
	Nack(ctx context.Context, msg *Message, delay time.Duration, reason string) error

	// DeadLetter parks a claimed message permanently.
	DeadLetter(ctx context.Context, msg *Message, reason string) error

	// Depth reports the number of pending messages on topic.
	Depth(ctx context.Context, topic string) (int, error)

	// ListDeadLetters returns parked messages, newest first. An empty
	// topic matches all topics.
	ListDeadLetters(ctx context.Context, topic string, limit int) ([]DeadLetter, error)

	Close() error
}
