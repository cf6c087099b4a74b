package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Abdurahmanit/review-service/internal/platform/logger"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("review-service/nats-publisher")

// Publisher emits review events as JSON messages with trace context in the headers.
type Publisher struct {
	conn   *nats.Conn
	logger *logger.Logger
}

func NewPublisher(url string, log *logger.Logger, appName string) (*Publisher, error) {
	log.Info("NATS Publisher: connecting...", zap.String("url", url))

	opts := []nats.Option{
		nats.Name(fmt.Sprintf("%s NATS Publisher", appName)),
		nats.Timeout(10 * time.Second),
		nats.ErrorHandler(func(_ *nats.Conn, sub *nats.Subscription, err error) {
			subject := ""
			if sub != nil {
				subject = sub.Subject
			}
			log.Error("NATS error", zap.String("subject", subject), zap.Error(err))
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Info("NATS connection closed")
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		log.Error("NATS Publisher: failed to connect", zap.String("url", url), zap.Error(err))
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	log.Info("NATS Publisher: successfully connected", zap.String("url", conn.ConnectedUrl()))

	return &Publisher{
		conn:   conn,
		logger: log.Named("NATSPublisher"),
	}, nil
}

func (p *Publisher) Publish(ctx context.Context, subject string, data interface{}) error {
	ctx, span := tracer.Start(ctx, "NATS.Publish."+subject)
	defer span.End()

	payload, err := json.Marshal(data)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to marshal data for subject %s: %w", subject, err)
	}

	msg := nats.NewMsg(subject)
	msg.Data = payload
	otel.GetTextMapPropagator().Inject(ctx, HeaderCarrier(msg.Header))

	if err := p.conn.PublishMsg(msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "publish failed")
		return fmt.Errorf("failed to publish message to subject %s: %w", subject, err)
	}

	p.logger.Debug("NATS Publisher: message published", zap.String("subject", subject), zap.Int("data_size_bytes", len(payload)))
	return nil
}

// HeaderCarrier adapts nats.Header to the otel TextMapCarrier interface.
type HeaderCarrier nats.Header

func (c HeaderCarrier) Get(key string) string {
	return nats.Header(c).Get(key)
}

func (c HeaderCarrier) Set(key string, value string) {
	nats.Header(c).Set(key, value)
}

func (c HeaderCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}

// Close drains and closes the NATS connection.
func (p *Publisher) Close() {
	if p.conn == nil || p.conn.IsClosed() {
		return
	}
	p.logger.Info("NATS Publisher: draining connection")
	if err := p.conn.Drain(); err != nil {
		p.logger.Error("NATS Publisher: failed to drain connection", zap.Error(err))
		p.conn.Close()
	}
}

// NoopPublisher drops events. Used when NATS_URL is empty.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, interface{}) error { return nil }
