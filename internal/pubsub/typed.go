package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
)

// Event ties a topic name to the payload type published on it.
type Event[T any] struct {
	name string
}

// NewEvent declares a typed topic.
func NewEvent[T any](name string) Event[T] {
	return Event[T]{name: name}
}

// Name returns the topic name.
func (e Event[T]) Name() string {
	return e.name
}

// Publish encodes payload as JSON and sends it on event's topic for owner.
func Publish[T any](ctx context.Context, p Publisher, event Event[T], owner string, payload T, meta map[string]string) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", event.name, err)
	}
	return p.Publish(ctx, Message{
		Topic:    event.name,
		Owner:    owner,
		Payload:  data,
		Metadata: meta,
	})
}

// Subscribe decodes every message on event's topic into T before calling fn.
// Messages that do not decode are logged and dropped by the bus.
func Subscribe[T any](ctx context.Context, s Subscriber, event Event[T], fn func(ctx context.Context, owner string, payload T) error) error {
	return s.Subscribe(ctx, event.name, func(ctx context.Context, msg Message) error {
		var payload T
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return fmt.Errorf("failed to decode %s payload: %w", event.name, err)
		}
		return fn(ctx, msg.Owner, payload)
	})
}
