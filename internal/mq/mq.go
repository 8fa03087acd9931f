// Package mq publishes todo lifecycle events to a message broker.
package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tasklane/apiserver/config"
	"github.com/tasklane/apiserver/internal/logging"
	"github.com/tasklane/apiserver/types"
)

// Message represents a broker-agnostic payload delivered to subscribers.
type Message struct {
	ID         string
	Data       []byte
	Attributes map[string]string
}

// Handler processes a message. Return an error to signal a retry/nack.
type Handler func(ctx context.Context, msg Message) error

// Backend defines the broker-agnostic operations used by the app.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Subscribe(ctx context.Context, channel string, handler Handler) error
	Close() error
}

const attrKind = "kind"

// Open connects the backend selected by cfg. It returns a nil Backend when
// publishing is disabled.
func Open(ctx context.Context, cfg config.MQConfig) (Backend, error) {
	switch cfg.Backend {
	case config.MQBackendNone:
		return nil, nil
	case config.MQBackendRabbitMQ:
		client, err := NewRabbitMQClient(cfg.RabbitMQ)
		if err != nil {
			return nil, fmt.Errorf("connect rabbitmq: %w", err)
		}
		return client, nil
	case config.MQBackendPubSub:
		client, err := NewPubSubClient(ctx, cfg.PubSub)
		if err != nil {
			return nil, fmt.Errorf("connect pubsub: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown mq backend %q", cfg.Backend)
	}
}

// MQ publishes and consumes todo events on a single channel. A nil *MQ, or
// one without a backend, drops every event.
type MQ struct {
	backend Backend
	channel string
	now     func() time.Time
}

// New constructs an MQ for the provided backend and channel.
func New(backend Backend, channel string) *MQ {
	return &MQ{backend: backend, channel: channel, now: time.Now}
}

// PublishTodo emits an event for a committed todo mutation. Delivery is best
// effort: failures are logged and never returned to the caller.
func (m *MQ) PublishTodo(ctx context.Context, kind types.TodoEventKind, todo types.Todo) {
	if m == nil || m.backend == nil {
		return
	}
	logger := logging.FromContext(ctx).With(
		slog.String("event", string(kind)),
		slog.Int("todo_id", todo.ID),
	)

	data, err := json.Marshal(types.TodoEvent{Kind: kind, Todo: todo, OccurredAt: m.now().UTC()})
	if err != nil {
		logger.ErrorContext(ctx, "failed to encode todo event", slog.Any("error", err))
		return
	}
	id, err := m.backend.Publish(ctx, m.channel, data, map[string]string{attrKind: string(kind)})
	if err != nil {
		logger.WarnContext(ctx, "failed to publish todo event", slog.Any("error", err))
		return
	}
	logger.DebugContext(ctx, "published todo event", slog.String("message_id", id))
}

// SubscribeTodos delivers decoded todo events to handler until ctx ends.
// Undecodable messages are logged and acknowledged.
func (m *MQ) SubscribeTodos(ctx context.Context, handler func(context.Context, types.TodoEvent) error) error {
	if m == nil || m.backend == nil {
		return errors.New("mq backend is not configured")
	}
	return m.backend.Subscribe(ctx, m.channel, func(ctx context.Context, msg Message) error {
		var event types.TodoEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			logging.FromContext(ctx).WarnContext(ctx, "dropping malformed todo event",
				slog.String("message_id", msg.ID),
				slog.Any("error", err),
			)
			return nil
		}
		return handler(ctx, event)
	})
}

// Close closes the underlying backend.
func (m *MQ) Close() error {
	if m == nil || m.backend == nil {
		return nil
	}
	return m.backend.Close()
}
