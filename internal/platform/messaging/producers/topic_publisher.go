package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/invoice-reconciler/internal/config"
	"github.com/segmentio/kafka-go"
)

// CorrelationIDHeader carries the request correlation id on published messages
const CorrelationIDHeader = "correlation-id"

type correlationKey struct{}

// WithCorrelationID attaches a correlation id that Publish copies into a header
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// CorrelationIDFromContext returns the id set by WithCorrelationID, or ""
func CorrelationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

// TopicPublisher publishes JSON messages to a single Kafka topic
type TopicPublisher struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// PublisherOptions tune the underlying kafka.Writer
type PublisherOptions struct {
	// Async trades delivery confirmation for latency. Use it only for
	// best-effort streams.
	Async bool
	// RequireAll waits for every in-sync replica to acknowledge
	RequireAll bool
}

// NewTopicPublisher creates a publisher for topic and ensures the topic exists
func NewTopicPublisher(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig, topic string, opts PublisherOptions) (*TopicPublisher, error) {
	if topic == "" {
		return nil, fmt.Errorf("kafka topic is not configured")
	}

	conn, err := kafka.DialContext(ctx, "tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for topic %s: %w", topic, err)
	}
	defer conn.Close()

	err = ensureTopic(ctx, conn, topicSpec{Name: topic, NumPartitions: cfg.NumPartitions, ReplicationFactor: cfg.ReplicationFactor}, topicLookupBackoff, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure topic %s exists: %w", topic, err)
	}

	acks := kafka.RequireOne
	if opts.RequireAll {
		acks = kafka.RequireAll
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        topic,
		Balancer:     &kafka.Hash{}, // Same key, same partition: per-invoice ordering
		RequiredAcks: acks,
		Async:        opts.Async,
		WriteTimeout: cfg.MaxWait,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("Failed to write messages", "topic", topic, "error", err, "count", len(messages))
			} else {
				logger.Debug("Successfully wrote messages", "topic", topic, "count", len(messages))
			}
		},
	}

	return newTopicPublisher(logger, writer, topic), nil
}

func newTopicPublisher(logger *slog.Logger, writer KafkaWriter, topic string) *TopicPublisher {
	return &TopicPublisher{
		logger: logger,
		writer: writer,
		topic:  topic,
	}
}

// Topic returns the destination topic
func (p *TopicPublisher) Topic() string {
	return p.topic
}

func (p *TopicPublisher) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal message value for topic %s: %w", p.topic, err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}
	if id := CorrelationIDFromContext(ctx); id != "" {
		msg.Headers = append(msg.Headers, kafka.Header{Key: CorrelationIDHeader, Value: []byte(id)})
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish message",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish message to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published message",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

func (p *TopicPublisher) Close() error {
	p.logger.Info("Closing Kafka publisher", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
