package pubsub

import (
	"context"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// DefaultBufferSize is the per-subscriber queue length of the bus.
const DefaultBufferSize = 64

// Bus implements Publisher and Subscriber on watermill's GoChannel.
type Bus struct {
	channel *gochannel.GoChannel
}

var (
	_ Publisher  = (*Bus)(nil)
	_ Subscriber = (*Bus)(nil)
)

const (
	metaKeyOwner = "owner"
	metaKeyTopic = "topic"
)

// NewBus creates an in-memory bus. bufferSize bounds how many messages may
// queue for one subscriber; zero uses DefaultBufferSize.
func NewBus(bufferSize int64) *Bus {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	logger := watermill.NewStdLogger(false, false)
	return &Bus{
		channel: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: bufferSize,
		}, logger),
	}
}

func toWatermill(msg Message) *message.Message {
	wm := message.NewMessage(watermill.NewUUID(), msg.Payload)
	for k, v := range msg.Metadata {
		wm.Metadata.Set(k, v)
	}
	wm.Metadata.Set(metaKeyOwner, msg.Owner)
	wm.Metadata.Set(metaKeyTopic, msg.Topic)
	return wm
}

func fromWatermill(wm *message.Message) Message {
	meta := make(map[string]string, len(wm.Metadata))
	for k, v := range wm.Metadata {
		if k != metaKeyOwner && k != metaKeyTopic {
			meta[k] = v
		}
	}
	return Message{
		Topic:    wm.Metadata.Get(metaKeyTopic),
		Owner:    wm.Metadata.Get(metaKeyOwner),
		Payload:  wm.Payload,
		Metadata: meta,
	}
}

// Publish sends msg on its topic.
func (b *Bus) Publish(ctx context.Context, msg Message) error {
	wm := toWatermill(msg)
	wm.SetContext(ctx)
	return b.channel.Publish(msg.Topic, wm)
}

// Subscribe starts a goroutine feeding messages on topic to handler. Handler
// errors are logged and the message is dropped; GoChannel would redeliver a
// nacked message to the same handler forever.
func (b *Bus) Subscribe(ctx context.Context, topic string, handler Handler) error {
	messages, err := b.channel.Subscribe(ctx, topic)
	if err != nil {
		return err
	}
	go func() {
		for wm := range messages {
			if err := handler(ctx, fromWatermill(wm)); err != nil {
				slog.ErrorContext(ctx, "failed to handle message",
					"event", "pubsub_handler_failed",
					"topic", topic,
					"msg_id", wm.UUID,
					"error", err,
				)
			}
			wm.Ack()
		}
		slog.Debug("subscription closed", "topic", topic)
	}()
	return nil
}

// Close stops every subscription.
func (b *Bus) Close() error {
	return b.channel.Close()
}
