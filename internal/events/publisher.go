package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Publisher appends domain events to Redis streams. Every event is
// wrapped in an Event envelope carrying its type and a UTC timestamp, so
// consumers can dispatch on type without decoding the payload first.
type Publisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// Publish wraps data in an envelope and XADDs it to the stream. The
// stream entry holds the whole envelope as one JSON value under the
// "event" field, which is the format the Subscriber decodes.
func (p *Publisher) Publish(ctx context.Context, stream, eventType string, data any) error {
	envelope, err := json.Marshal(Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]any{"event": envelope},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
