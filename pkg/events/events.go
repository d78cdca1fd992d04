package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Event subjects published by the placement services.
const (
	ApplicationCreated       = "application.created"
	ApplicationStatusChanged = "application.status_changed"
	PlacementCreated         = "placement.created"
	JobClosed                = "job.closed"
)

// Envelope is the wire shape of every published event.
type Envelope struct {
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data"`
}

// Publisher emits domain events.
type Publisher interface {
	Publish(ctx context.Context, eventType string, data interface{}) error
	Close() error
}

// NATSPublisher publishes JSON envelopes on "<prefix>.<eventType>".
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
	logger *zap.Logger
}

// NewNATSPublisher connects to url.
func NewNATSPublisher(url, prefix string, logger *zap.Logger) (*NATSPublisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	nc, err := nats.Connect(url,
		nats.Name("placement-api"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", zap.Error(err))
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	logger.Info("nats publisher initialised", zap.String("url", url), zap.String("prefix", prefix))
	return &NATSPublisher{conn: nc, prefix: strings.TrimSuffix(prefix, "."), logger: logger}, nil
}

// Publish marshals data and sends it without waiting for subscribers.
func (p *NATSPublisher) Publish(ctx context.Context, eventType string, data interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(Envelope{Type: eventType, OccurredAt: time.Now().UTC(), Data: data})
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", eventType, err)
	}
	subject := Subject(p.prefix, eventType)
	if err := p.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	p.logger.Debug("event published", zap.String("subject", subject))
	return nil
}

// Close drains pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}

// Subject joins prefix and event type.
func Subject(prefix, eventType string) string {
	if prefix == "" {
		return eventType
	}
	return prefix + "." + eventType
}

// NoopPublisher discards events. Used when NATS is not configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, interface{}) error { return nil }
func (NoopPublisher) Close() error                                      { return nil }
