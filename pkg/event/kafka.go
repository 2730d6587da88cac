package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	TopicProfileEvents = "profile.events"
	TopicPostEvents    = "post.events"
)

const (
	TypeProfileUpserted = "profile.upserted"
	TypeAccountDeleted  = "account.deleted"
	TypePostCreated     = "post.created"
	TypePostDeleted     = "post.deleted"
)

// Event is the envelope written to every topic.
type Event struct {
	Type       string    `json:"type"`
	UserID     uuid.UUID `json:"user_id"`
	ResourceID uuid.UUID `json:"resource_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher delivers domain events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, topic string, evt Event) error
	Close() error
}

type kafkaPublisher struct {
	writers map[string]*kafka.Writer
}

// NewKafkaPublisher creates one writer per known topic. Without brokers it
// returns a publisher that drops events.
func NewKafkaPublisher(brokers []string) Publisher {
	if len(brokers) == 0 {
		return NopPublisher{}
	}

	writers := make(map[string]*kafka.Writer, 2)
	for _, topic := range []string{TopicProfileEvents, TopicPostEvents} {
		writers[topic] = &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			BatchTimeout:           10 * time.Millisecond,
			AllowAutoTopicCreation: true,
		}
	}

	return &kafkaPublisher{writers: writers}
}

func (p *kafkaPublisher) Publish(ctx context.Context, topic string, evt Event) error {
	w, ok := p.writers[topic]
	if !ok {
		return fmt.Errorf("unknown topic %q", topic)
	}

	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	return w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(evt.UserID.String()),
		Value: payload,
	})
}

func (p *kafkaPublisher) Close() error {
	var firstErr error
	for _, w := range p.writers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// NopPublisher discards events.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, Event) error { return nil }

func (NopPublisher) Close() error { return nil }
