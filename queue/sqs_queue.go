package queue

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/meshhq/ghcrawler/processor"
)

// SQSQueue is a Backend backed by one SQS queue per priority lane:
// GetQueueUrl once at construction, then ReceiveMessage/DeleteMessage in
// the Pop loop.
type SQSQueue struct {
	client    *sqs.Client
	queueURLs map[processor.Priority]string
	order     []processor.Priority
}

// SQSQueueConfig names the queue URL backing each priority lane.
type SQSQueueConfig struct {
	Region      string                        `json:"region" yaml:"region"`
	AccessID    string                        `json:"access_id" yaml:"access_id"`
	AccessKey   string                        `json:"access_key" yaml:"access_key"`
	QueueByLane map[processor.Priority]string `json:"queue_by_lane" yaml:"queue_by_lane"`
}

// NewSQSQueue builds an SQSQueue from static credentials or the default
// credential chain when AccessID is empty.
func NewSQSQueue(ctx context.Context, cfg SQSQueueConfig) (*SQSQueue, error) {
	options := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessID != "" {
		options = append(options, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessID, cfg.AccessKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("sqs queue: load aws config: %w", err)
	}

	q := &SQSQueue{
		client:    sqs.NewFromConfig(awsCfg),
		queueURLs: make(map[processor.Priority]string, len(cfg.QueueByLane)),
	}
	for _, lane := range []processor.Priority{processor.PriorityImmediate, processor.PrioritySoon, processor.PriorityDefault} {
		name, ok := cfg.QueueByLane[lane]
		if !ok {
			continue
		}
		out, err := q.client.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{QueueName: aws.String(name)})
		if err != nil {
			return nil, fmt.Errorf("sqs queue: get url for %q: %w", name, err)
		}
		q.queueURLs[lane] = *out.QueueUrl
		q.order = append(q.order, lane)
	}
	return q, nil
}

// Push implements processor.QueueSet. SQS has no native batch-of-N-distinct
// messages call that preserves per-message identity simply, so each request
// is sent individually.
func (q *SQSQueue) Push(ctx context.Context, priority processor.Priority, reqs ...*processor.Request) error {
	url, ok := q.queueURLs[priority]
	if !ok {
		return fmt.Errorf("sqs queue: no queue configured for priority %q", priority)
	}
	for _, r := range reqs {
		b, err := Marshal(FromRequest(priority, r))
		if err != nil {
			return err
		}
		if _, err := q.client.SendMessage(ctx, &sqs.SendMessageInput{
			QueueUrl:    aws.String(url),
			MessageBody: aws.String(string(b)),
		}); err != nil {
			return fmt.Errorf("sqs queue: send to %q: %w", priority, err)
		}
	}
	return nil
}

// Pop implements Backend, long-polling immediate, then soon, then default,
// and repeating the pass until a message arrives or ctx is done.
func (q *SQSQueue) Pop(ctx context.Context) (*processor.Request, error) {
	if len(q.order) == 0 {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	for ctx.Err() == nil {
		for _, lane := range q.order {
			url := q.queueURLs[lane]
			out, err := q.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
				QueueUrl:            aws.String(url),
				MaxNumberOfMessages: 1,
				WaitTimeSeconds:     1,
			})
			if err != nil {
				return nil, fmt.Errorf("sqs queue: receive from %q: %w", lane, err)
			}
			if len(out.Messages) == 0 {
				continue
			}
			msg := out.Messages[0]
			env, err := Unmarshal([]byte(*msg.Body))
			if err != nil {
				return nil, err
			}
			if _, err := q.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
				QueueUrl:      aws.String(url),
				ReceiptHandle: msg.ReceiptHandle,
			}); err != nil {
				return nil, fmt.Errorf("sqs queue: delete from %q: %w", lane, err)
			}
			return env.ToRequest(), nil
		}
	}
	return nil, ctx.Err()
}
