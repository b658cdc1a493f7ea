// Package triage decides which classified posts are retained.
package triage

import (
	"github.com/christiano-developer/gaur/internal/models"
)

// FailedAnalysisAction controls what happens to posts whose every analysis
// backend failed.
type FailedAnalysisAction string

const (
	// FailedDiscard treats analysis failure as non-fraud and drops the post.
	FailedDiscard FailedAnalysisAction = "discard"

	// FailedReview routes analysis failures to human review instead of
	// silently dropping them.
	FailedReview FailedAnalysisAction = "review"
)

// DefaultRetentionThreshold is the minimum confidence score a post needs to
// be retained. It deliberately sits between the MEDIUM boundary (0.4) and
// the HIGH boundary (0.7), so a MEDIUM-risk post may still be discarded.
const DefaultRetentionThreshold = 0.5

// Config configures the gate.
type Config struct {
	RetentionThreshold   float64
	FailedAnalysisAction FailedAnalysisAction
}

// DefaultConfig returns the default gate configuration.
func DefaultConfig() Config {
	return Config{
		RetentionThreshold:   DefaultRetentionThreshold,
		FailedAnalysisAction: FailedDiscard,
	}
}

// Gate is a stateless decision function over classification results.
type Gate struct {
	threshold    float64
	failedAction FailedAnalysisAction
}

// NewGate creates a gate. A zero threshold falls back to the default; an
// unrecognized failed-analysis action falls back to discard.
func NewGate(cfg Config) *Gate {
	threshold := cfg.RetentionThreshold
	if threshold <= 0 {
		threshold = DefaultRetentionThreshold
	}
	action := cfg.FailedAnalysisAction
	if action != FailedReview {
		action = FailedDiscard
	}
	return &Gate{
		threshold:    threshold,
		failedAction: action,
	}
}

// Decide returns the retention decision for one classified post. A score at
// or above the threshold is accepted; everything below is discarded, except
// failed analyses when the gate is configured to route them to review.
func (g *Gate) Decide(result models.ClassificationResult) models.TriageDecision {
	if result.FraudType == models.FraudTypeFailed {
		if g.failedAction == FailedReview {
			return models.DecisionReview
		}
		return models.DecisionDiscard
	}

	if result.Score >= g.threshold {
		return models.DecisionAccept
	}
	return models.DecisionDiscard
}

// Threshold reports the configured retention threshold.
func (g *Gate) Threshold() float64 {
	return g.threshold
}
