package pipeline

import (
	"context"
	"errors"

	"github.com/christiano-developer/gaur/internal/models"
)

// ErrExhausted signals that a source has no more posts for this run.
var ErrExhausted = errors.New("source exhausted")

// Source supplies raw posts in bounded batches. NextBatch blocks until up to
// max posts are available and must be safe to call repeatedly; once it
// returns ErrExhausted every further call returns ErrExhausted too.
type Source interface {
	NextBatch(ctx context.Context, max int) ([]models.RawPost, error)
}

// Committer is implemented by sources that track delivery positions. The
// orchestrator commits after the batch has been fully persisted, so a crash
// mid-batch replays the batch instead of losing it.
type Committer interface {
	Commit(ctx context.Context) error
}

// MemorySource serves a fixed slice of posts. Used for tests and for
// one-shot runs over already-scraped data.
type MemorySource struct {
	posts []models.RawPost
	pos   int
}

func NewMemorySource(posts []models.RawPost) *MemorySource {
	return &MemorySource{posts: posts}
}

func (s *MemorySource) NextBatch(_ context.Context, max int) ([]models.RawPost, error) {
	if s.pos >= len(s.posts) {
		return nil, ErrExhausted
	}
	end := s.pos + max
	if end > len(s.posts) {
		end = len(s.posts)
	}
	batch := s.posts[s.pos:end]
	s.pos = end
	return batch, nil
}
