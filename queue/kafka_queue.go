package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/meshhq/ghcrawler/processor"
	"github.com/segmentio/kafka-go"
)

// KafkaQueue is a Backend writing/reading one topic per priority lane, for
// deployments where multiple worker processes share one crawl.
type KafkaQueue struct {
	writers map[processor.Priority]*kafka.Writer
	readers map[processor.Priority]*kafka.Reader
	order   []processor.Priority
}

// KafkaQueueConfig names the topic backing each priority lane.
type KafkaQueueConfig struct {
	Brokers     []string                      `json:"brokers" yaml:"brokers"`
	GroupID     string                        `json:"group_id" yaml:"group_id"`
	TopicByLane map[processor.Priority]string `json:"topic_by_lane" yaml:"topic_by_lane"`
}

// NewKafkaQueue opens one writer and one reader per configured lane.
func NewKafkaQueue(cfg KafkaQueueConfig) *KafkaQueue {
	q := &KafkaQueue{
		writers: make(map[processor.Priority]*kafka.Writer, len(cfg.TopicByLane)),
		readers: make(map[processor.Priority]*kafka.Reader, len(cfg.TopicByLane)),
	}
	for _, lane := range []processor.Priority{processor.PriorityImmediate, processor.PrioritySoon, processor.PriorityDefault} {
		topic, ok := cfg.TopicByLane[lane]
		if !ok {
			continue
		}
		q.order = append(q.order, lane)
		q.writers[lane] = &kafka.Writer{
			Addr:     kafka.TCP(cfg.Brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		}
		q.readers[lane] = kafka.NewReader(kafka.ReaderConfig{
			Brokers: cfg.Brokers,
			Topic:   topic,
			GroupID: cfg.GroupID,
		})
	}
	return q
}

// Push implements processor.QueueSet.
func (q *KafkaQueue) Push(ctx context.Context, priority processor.Priority, reqs ...*processor.Request) error {
	w, ok := q.writers[priority]
	if !ok {
		return fmt.Errorf("kafka queue: no writer configured for priority %q", priority)
	}
	msgs := make([]kafka.Message, 0, len(reqs))
	for _, r := range reqs {
		b, err := Marshal(FromRequest(priority, r))
		if err != nil {
			return err
		}
		msgs = append(msgs, kafka.Message{Value: b})
	}
	if len(msgs) == 0 {
		return nil
	}
	if err := w.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("kafka queue: write to %q: %w", priority, err)
	}
	return nil
}

// kafkaLaneReadTimeout bounds how long Pop waits on one lane before moving
// on to the next.
const kafkaLaneReadTimeout = 500 * time.Millisecond

// Pop implements Backend, polling immediate, then soon, then default with a
// short per-lane read timeout so an empty lane doesn't block the lanes after
// it. It keeps polling until a message arrives or ctx is done.
func (q *KafkaQueue) Pop(ctx context.Context) (*processor.Request, error) {
	if len(q.order) == 0 {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	for ctx.Err() == nil {
		for _, lane := range q.order {
			r, ok, err := q.tryRead(ctx, lane)
			if err != nil {
				return nil, err
			}
			if ok {
				return r, nil
			}
		}
	}
	return nil, ctx.Err()
}

func (q *KafkaQueue) tryRead(ctx context.Context, lane processor.Priority) (*processor.Request, bool, error) {
	reader := q.readers[lane]
	readCtx, cancel := context.WithTimeout(ctx, kafkaLaneReadTimeout)
	defer cancel()
	msg, err := reader.FetchMessage(readCtx)
	if err != nil {
		if readCtx.Err() != nil {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("kafka queue: fetch from %q: %w", lane, err)
	}
	env, err := Unmarshal(msg.Value)
	if err != nil {
		return nil, false, err
	}
	if err := reader.CommitMessages(ctx, msg); err != nil {
		return nil, false, fmt.Errorf("kafka queue: commit from %q: %w", lane, err)
	}
	return env.ToRequest(), true, nil
}

// Close releases every writer/reader.
func (q *KafkaQueue) Close() error {
	for _, w := range q.writers {
		_ = w.Close()
	}
	for _, r := range q.readers {
		_ = r.Close()
	}
	return nil
}
