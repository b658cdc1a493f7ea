package lexical

import (
	"fmt"
	"strings"

	"github.com/christiano-developer/gaur/internal/models"
	"github.com/christiano-developer/gaur/pkg/logging"
)

const (
	keywordWeight   = 0.15
	maxKeywordScore = 0.6
	maxPatternScore = 0.4

	// AnalysisMethod labels lexical verdicts in stored metadata.
	AnalysisMethod = "keyword_pattern"
)

// Scorer produces deterministic fraud verdicts from keyword and regex
// matching alone. It never fails and needs no network, which makes it the
// terminal fallback of the classifier chain.
type Scorer struct {
	logger logging.Logger
}

// NewScorer creates a lexical scorer.
func NewScorer(logger logging.Logger) *Scorer {
	return &Scorer{logger: logger}
}

// Analyze scores the given text. Empty or whitespace-only text yields a zero
// score with fraud type "none".
func (s *Scorer) Analyze(text string) models.ClassificationResult {
	if strings.TrimSpace(text) == "" {
		return models.ClassificationResult{
			Score:          0.0,
			RiskLevel:      models.RiskLow,
			FraudType:      models.FraudTypeNone,
			Keywords:       []string{},
			RedFlags:       []string{},
			Reasoning:      "No content to analyze",
			AnalysisMethod: AnalysisMethod,
		}
	}

	textLower := strings.ToLower(text)

	var matchedKeywords []string
	for _, keyword := range fraudKeywords {
		if strings.Contains(textLower, strings.ToLower(keyword)) {
			matchedKeywords = append(matchedKeywords, keyword)
		}
	}

	keywordScore := float64(len(matchedKeywords)) * keywordWeight
	if keywordScore > maxKeywordScore {
		keywordScore = maxKeywordScore
	}

	var matchedPatterns []string
	patternScore := 0.0
	for _, p := range fraudPatterns {
		if p.Regex.MatchString(textLower) {
			matchedPatterns = append(matchedPatterns, p.Name)
			patternScore += p.Weight
		}
	}
	if patternScore > maxPatternScore {
		patternScore = maxPatternScore
	}

	score := keywordScore + patternScore
	if score > 1.0 {
		score = 1.0
	}

	riskLevel := models.RiskLevelForScore(score)

	result := models.ClassificationResult{
		Score:          score,
		RiskLevel:      riskLevel,
		FraudType:      classifyFraudType(matchedKeywords),
		Keywords:       matchedKeywords,
		RedFlags:       matchedPatterns,
		Reasoning:      buildReasoning(matchedKeywords, matchedPatterns, score),
		AnalysisMethod: AnalysisMethod,
	}
	if result.Keywords == nil {
		result.Keywords = []string{}
	}
	if result.RedFlags == nil {
		result.RedFlags = []string{}
	}

	if s.logger != nil {
		s.logger.WithFields(logging.Fields{
			"score":      score,
			"risk_level": riskLevel,
			"fraud_type": result.FraudType,
			"keywords":   len(matchedKeywords),
			"patterns":   len(matchedPatterns),
		}).Debug("Lexical analysis complete")
	}

	return result
}

func buildReasoning(keywords, patterns []string, score float64) string {
	var parts []string

	if len(keywords) > 0 {
		shown := keywords
		if len(shown) > 5 {
			shown = shown[:5]
		}
		part := fmt.Sprintf("Detected %d fraud keywords: %s", len(keywords), strings.Join(shown, ", "))
		if len(keywords) > 5 {
			part += fmt.Sprintf(" and %d more", len(keywords)-5)
		}
		parts = append(parts, part)
	}

	if len(patterns) > 0 {
		parts = append(parts, fmt.Sprintf("Matched %d fraud patterns: %s", len(patterns), strings.Join(patterns, ", ")))
	}

	switch {
	case score >= 0.7:
		parts = append(parts, "HIGH confidence fraud detection")
	case score >= 0.4:
		parts = append(parts, "Moderate fraud indicators present")
	default:
		parts = append(parts, "Low fraud probability")
	}

	return strings.Join(parts, ". ") + "."
}
