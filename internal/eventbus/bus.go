package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/oklog/ulid/v2"

	"github.com/kazz187/taskboard/internal/task"
)

const (
	tasksTopic = "tasks"
	// events buffered per subscriber before new ones are dropped
	subscriberBuffer = 64
)

var _ task.Publisher = (*Bus)(nil)

// Bus fans task events out to every subscriber over an in-process
// watermill channel. Publishing waits for each subscriber to take the
// message, which keeps per-subscriber delivery in publish order.
type Bus struct {
	pubSub *gochannel.GoChannel
}

func New(logger *slog.Logger) *Bus {
	return &Bus{
		pubSub: gochannel.NewGoChannel(
			gochannel.Config{
				OutputChannelBuffer:            subscriberBuffer,
				BlockPublishUntilSubscriberAck: true,
			},
			watermill.NewSlogLogger(logger),
		),
	}
}

func (b *Bus) PublishTaskEvent(eventType task.EventType, t task.Task) {
	if err := b.Publish(task.Event{
		ID:        ulid.Make().String(),
		Type:      eventType,
		Task:      t,
		CreatedAt: time.Now(),
	}); err != nil {
		slog.Warn("failed to publish task event", "type", eventType, "task_id", t.ID, "error", err)
	}
}

func (b *Bus) Publish(event task.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	msg := message.NewMessage(event.ID, payload)
	if err := b.pubSub.Publish(tasksTopic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Subscribe returns a channel of events that is closed when ctx is done or
// the bus is closed. A subscriber that falls more than subscriberBuffer
// events behind misses events.
func (b *Bus) Subscribe(ctx context.Context) (<-chan task.Event, error) {
	messages, err := b.pubSub.Subscribe(ctx, tasksTopic)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}
	out := make(chan task.Event, subscriberBuffer)
	go func() {
		defer close(out)
		for msg := range messages {
			msg.Ack()
			var event task.Event
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				slog.Warn("dropping malformed task event", "message_id", msg.UUID, "error", err)
				continue
			}
			select {
			case out <- event:
			default:
				// buffer full, drop event for this subscriber
				slog.Warn("subscriber is too slow, dropping task event", "event_id", event.ID)
			}
		}
	}()
	return out, nil
}

func (b *Bus) Close() error {
	return b.pubSub.Close()
}
