package classifier

import (
	"context"

	"github.com/christiano-developer/gaur/internal/lexical"
	"github.com/christiano-developer/gaur/internal/models"
)

// LexicalClassifier adapts the keyword/pattern scorer to the chain contract.
// It is deterministic, needs no network, and never fails, which makes it the
// terminal classifier of every chain.
type LexicalClassifier struct {
	scorer *lexical.Scorer
}

func NewLexicalClassifier(scorer *lexical.Scorer) *LexicalClassifier {
	return &LexicalClassifier{scorer: scorer}
}

func (c *LexicalClassifier) Name() string {
	return lexical.AnalysisMethod
}

func (c *LexicalClassifier) Classify(_ context.Context, post models.RawPost) (models.ClassificationResult, error) {
	return c.scorer.Analyze(post.Text), nil
}
