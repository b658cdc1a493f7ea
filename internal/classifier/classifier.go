// Package classifier composes the analysis backends into a single chain.
// Each backend implements the same contract; the chain walks them in
// configured order and guarantees exactly one result per post.
package classifier

import (
	"context"
	"errors"

	"github.com/christiano-developer/gaur/internal/models"
	"github.com/christiano-developer/gaur/pkg/logging"
)

// ErrNotConfigured is returned by a backend whose credentials or input
// requirements are not met for the given post.
var ErrNotConfigured = errors.New("classifier not configured for this input")

// Classifier produces a verdict for one post. Implementations return an
// error only when they could not produce a meaningful verdict; the chain
// then moves on to the next backend.
type Classifier interface {
	Name() string
	Classify(ctx context.Context, post models.RawPost) (models.ClassificationResult, error)
}

// Chain tries each classifier in order and returns the first successful
// verdict. A backend that errors or hands back the failure verdict is
// skipped without retry. When every backend fails the chain returns the
// fixed fallback result so downstream stages always see a complete verdict.
type Chain struct {
	classifiers []Classifier
	logger      logging.Logger
}

// NewChain builds a chain over the given classifiers in priority order.
func NewChain(logger logging.Logger, classifiers ...Classifier) *Chain {
	return &Chain{
		classifiers: classifiers,
		logger:      logger,
	}
}

// Classify runs the chain for one post.
func (c *Chain) Classify(ctx context.Context, post models.RawPost) models.ClassificationResult {
	last := FallbackResult("none")

	for _, cl := range c.classifiers {
		result, err := cl.Classify(ctx, post)
		if err != nil {
			if c.logger != nil {
				c.logger.WithFields(logging.Fields{
					"classifier": cl.Name(),
					"source_id":  post.SourceID,
					"error":      err.Error(),
				}).Warn("Classifier failed, trying next backend")
			}
			continue
		}

		if result.FraudType == models.FraudTypeFailed {
			last = result
			if c.logger != nil {
				c.logger.WithFields(logging.Fields{
					"classifier": cl.Name(),
					"source_id":  post.SourceID,
				}).Warn("Classifier returned failure verdict, trying next backend")
			}
			continue
		}

		return result
	}

	return last
}
