package producers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	topicLookupAttempts = 5
	topicLookupBackoff  = 2 * time.Second
)

// topicSpec describes a topic the relay writes to
type topicSpec struct {
	Name              string
	NumPartitions     int
	ReplicationFactor int
}

// withDefaults fills unset partition and replica counts with one. A single
// partition still keeps per-invoice ordering because writers hash on the key.
func (s topicSpec) withDefaults() topicSpec {
	if s.NumPartitions <= 0 {
		s.NumPartitions = 1
	}
	if s.ReplicationFactor <= 0 {
		s.ReplicationFactor = 1
	}
	return s
}

// ensureTopic creates spec.Name unless the broker already reports partitions
// for it. Partition lookups are retried since a freshly started broker may
// not have loaded its metadata yet.
func ensureTopic(ctx context.Context, admin topicAdmin, spec topicSpec, backoff time.Duration, log *slog.Logger) error {
	spec = spec.withDefaults()

	var lastErr error
	for attempt := 1; attempt <= topicLookupAttempts; attempt++ {
		partitions, err := admin.ReadPartitions(spec.Name)
		if err == nil && len(partitions) > 0 {
			log.Info("Kafka topic already exists", "topic", spec.Name, "partitions", len(partitions))
			return nil
		}
		if err == nil {
			break
		}
		lastErr = err
		log.Warn("Failed to read topic partitions", "topic", spec.Name, "attempt", attempt, "error", err)

		if attempt == topicLookupAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("gave up waiting for kafka topic %s: %w", spec.Name, ctx.Err())
		case <-time.After(backoff):
		}
	}

	log.Info("Creating Kafka topic",
		"topic", spec.Name,
		"partitions", spec.NumPartitions,
		"replication_factor", spec.ReplicationFactor,
		"last_lookup_error", lastErr,
	)
	err := admin.CreateTopics(kafka.TopicConfig{
		Topic:             spec.Name,
		NumPartitions:     spec.NumPartitions,
		ReplicationFactor: spec.ReplicationFactor,
	})
	if err != nil {
		return fmt.Errorf("failed to create kafka topic %s: %w", spec.Name, err)
	}
	log.Info("Created Kafka topic", "topic", spec.Name)
	return nil
}
