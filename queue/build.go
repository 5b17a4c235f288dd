package queue

import (
	"context"
	"fmt"
)

// Build constructs the Backend named by cfg.Backend.
func Build(ctx context.Context, cfg Config) (Backend, error) {
	cfg = cfg.Defaults()
	switch cfg.Backend {
	case "memory":
		return NewMemoryQueue(cfg.MemoryBufferSize), nil
	case "kafka":
		return NewKafkaQueue(cfg.Kafka), nil
	case "sqs":
		return NewSQSQueue(ctx, cfg.SQS)
	default:
		return nil, fmt.Errorf("queue: unknown backend %q", cfg.Backend)
	}
}
