// Package events implements the change notification channel for the
// pipeline: named per-floor topics, fire-and-forget publish, and
// re-fetch-on-signal subscriptions. Notifications carry no authoritative
// payload; subscribers must read the store again.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.uber.org/zap"
)

// LeadsTopic names the change topic for one floor's leads.
func LeadsTopic(floor int) string {
	return fmt.Sprintf("leads.floor.%d", floor)
}

// ReportsTopic names the change topic for one floor's sales reports.
func ReportsTopic(floor int) string {
	return fmt.Sprintf("reports.floor.%d", floor)
}

// Change is the signal delivered to subscribers. It identifies what kind of
// data changed, never the data itself.
type Change struct {
	Topic      string    `json:"topic"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Bus is an in-process publish/subscribe channel backed by watermill's
// gochannel transport. Subscriptions are bound to a context and release
// their resources when it is cancelled, so a disconnected subscriber
// cannot leak.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger *zap.Logger
}

// NewBus creates a bus with a small per-subscriber buffer.
func NewBus(logger *zap.Logger) *Bus {
	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 16,
	}, newLoggerAdapter(logger.Named("events")))

	return &Bus{
		pubsub: pubsub,
		logger: logger,
	}
}

// Publish signals a change on the topic. Fire-and-forget: a delivery
// failure degrades freshness for some viewer but must never fail the write
// that triggered it, so errors are logged and swallowed here.
func (b *Bus) Publish(topic string) {
	change := Change{Topic: topic, OccurredAt: time.Now()}
	payload, err := json.Marshal(change)
	if err != nil {
		b.logger.Error("failed to encode change notification", zap.Error(err))
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := b.pubsub.Publish(topic, msg); err != nil {
		b.logger.Warn("failed to publish change notification",
			zap.String("topic", topic),
			zap.Error(err))
	}
}

// Subscribe returns a channel of change signals for the topic. The channel
// has capacity one and drops signals while the subscriber is busy: rapid
// consecutive writes coalesce into a single pending notification, which is
// safe because subscribers re-fetch state rather than consume payloads.
// The channel closes when ctx is cancelled or the bus shuts down.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan Change, error) {
	messages, err := b.pubsub.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	out := make(chan Change, 1)
	go func() {
		defer close(out)
		for msg := range messages {
			var change Change
			if err := json.Unmarshal(msg.Payload, &change); err != nil {
				change = Change{Topic: topic, OccurredAt: time.Now()}
			}
			msg.Ack()

			select {
			case out <- change:
			default:
				// subscriber still has an unconsumed signal; coalesce
			}
		}
	}()

	return out, nil
}

// Close shuts the bus down and closes all subscriber channels.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}
