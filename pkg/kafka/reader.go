package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Message represents a generic Kafka message
type Message struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int32
	Offset    int64
	Timestamp time.Time
}

// Reader is a pull-style Kafka consumer. Unlike a push consumer it hands
// records to the caller in bounded batches and commits only what the caller
// has fully processed, so a consumer restart never skips an unprocessed
// record.
type Reader struct {
	client    *kgo.Client
	logger    *logrus.Logger
	groupID   string
	topic     string
	buffered  []*kgo.Record
	processed []*kgo.Record
}

// NewReader creates a new Kafka reader subscribed to a single topic
func NewReader(brokers []string, groupID, clientID, topic string, logger *logrus.Logger) (*Reader, error) {
	opts := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.ConsumerGroup(groupID),
		kgo.ClientID(clientID),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
		kgo.DisableAutoCommit(),
		kgo.BlockRebalanceOnPoll(),
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	return &Reader{
		client:  client,
		logger:  logger,
		groupID: groupID,
		topic:   topic,
	}, nil
}

// FetchBatch returns up to max messages, polling the broker when the local
// buffer is empty. It blocks until at least one record is available or the
// context is cancelled.
func (r *Reader) FetchBatch(ctx context.Context, max int) ([]Message, error) {
	for len(r.buffered) == 0 {
		fetches := r.client.PollFetches(ctx)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errs := fetches.Errors(); len(errs) > 0 {
			return nil, fmt.Errorf("kafka poll failed: %v", errs)
		}
		iter := fetches.RecordIter()
		for !iter.Done() {
			r.buffered = append(r.buffered, iter.Next())
		}
	}

	n := max
	if n > len(r.buffered) {
		n = len(r.buffered)
	}
	take := r.buffered[:n]
	r.buffered = r.buffered[n:]

	messages := make([]Message, 0, n)
	for _, record := range take {
		hdrs := make(map[string]string, len(record.Headers))
		for _, h := range record.Headers {
			hdrs[h.Key] = string(h.Value)
		}
		messages = append(messages, Message{
			Key:       record.Key,
			Value:     record.Value,
			Headers:   hdrs,
			Topic:     record.Topic,
			Partition: record.Partition,
			Offset:    record.Offset,
			Timestamp: record.Timestamp,
		})
	}
	r.processed = append(r.processed, take...)

	return messages, nil
}

// Commit commits offsets for every record handed out by FetchBatch since the
// previous Commit call.
func (r *Reader) Commit(ctx context.Context) error {
	if len(r.processed) == 0 {
		return nil
	}
	if err := r.client.CommitRecords(ctx, r.processed...); err != nil {
		return fmt.Errorf("failed to commit records: %w", err)
	}
	r.processed = r.processed[:0]
	return nil
}

// HealthCheck pings the broker
func (r *Reader) HealthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.client.Ping(ctx); err != nil {
		return fmt.Errorf("kafka health check failed: %w", err)
	}
	return nil
}

// GetClient returns the underlying kgo.Client for health checks
func (r *Reader) GetClient() *kgo.Client {
	return r.client
}

// Close closes the underlying client
func (r *Reader) Close() error {
	r.client.Close()
	return nil
}
