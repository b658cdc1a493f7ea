package pipeline

import (
	"context"
	"encoding/json"

	"github.com/christiano-developer/gaur/internal/models"
	"github.com/christiano-developer/gaur/pkg/kafka"
	"github.com/christiano-developer/gaur/pkg/logging"
)

// batchReader is the surface of kafka.Reader the source needs.
type batchReader interface {
	FetchBatch(ctx context.Context, max int) ([]kafka.Message, error)
	Commit(ctx context.Context) error
}

// KafkaSource feeds the pipeline from a raw-posts topic. Each message value
// is a JSON-encoded RawPost; malformed messages are logged and skipped
// rather than failing the run.
type KafkaSource struct {
	reader batchReader
	logger logging.Logger
}

func NewKafkaSource(reader *kafka.Reader, logger logging.Logger) *KafkaSource {
	return &KafkaSource{reader: reader, logger: logger}
}

func (s *KafkaSource) NextBatch(ctx context.Context, max int) ([]models.RawPost, error) {
	messages, err := s.reader.FetchBatch(ctx, max)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ErrExhausted
		}
		return nil, err
	}

	posts := make([]models.RawPost, 0, len(messages))
	for _, msg := range messages {
		var post models.RawPost
		if err := json.Unmarshal(msg.Value, &post); err != nil {
			if s.logger != nil {
				s.logger.WithFields(logging.Fields{
					"topic":     msg.Topic,
					"partition": msg.Partition,
					"offset":    msg.Offset,
					"error":     err.Error(),
				}).Warn("Skipping malformed post message")
			}
			continue
		}
		if post.ScrapedAt.IsZero() {
			post.ScrapedAt = msg.Timestamp
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// Commit acknowledges everything fetched since the last commit.
func (s *KafkaSource) Commit(ctx context.Context) error {
	return s.reader.Commit(ctx)
}
