// Package pubsub is the in-process event bus. Stores and services publish
// what changed; the realtime feed and cache invalidation subscribe.
package pubsub

import (
	"context"
)

// Message is one event on the bus.
type Message struct {
	// Topic names the event, e.g. "guide.changed".
	Topic string
	// Owner is the key of the user the event concerns ("user:abc").
	Owner string
	// Payload is the JSON encoded event body.
	Payload []byte
	// Metadata carries extra string fields such as the guide id.
	Metadata map[string]string
}

// Handler processes a received message.
type Handler func(ctx context.Context, msg Message) error

// Publisher sends messages to the bus.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// Subscriber receives messages from the bus.
type Subscriber interface {
	// Subscribe delivers messages for topic to handler until ctx is done.
	// It returns once the subscription is active.
	Subscribe(ctx context.Context, topic string, handler Handler) error
	Close() error
}
