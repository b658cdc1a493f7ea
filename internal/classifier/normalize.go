package classifier

import "github.com/christiano-developer/gaur/internal/models"

const defaultReasoning = "No analysis provided"

// backendResponse is the JSON object an analysis backend is expected to
// return. Every field is optional; normalization fills the gaps.
type backendResponse struct {
	IsFraud         bool     `json:"is_fraud"`
	FraudScore      float64  `json:"fraud_score"`
	RiskLevel       string   `json:"risk_level"`
	FraudType       string   `json:"fraud_type"`
	Reasoning       string   `json:"reasoning"`
	Username        string   `json:"username"`
	Content         string   `json:"content"`
	Language        string   `json:"language"`
	RedFlags        []string `json:"red_flags"`
	MatchedKeywords []string `json:"matched_keywords"`
}

// normalize converts a raw backend response into a complete
// ClassificationResult. The score is clamped to [0,1], the risk level is
// always derived from the clamped score so the two can never disagree, and
// absent lists become empty slices.
func normalize(resp backendResponse, method string) models.ClassificationResult {
	score := resp.FraudScore
	if score < 0.0 {
		score = 0.0
	}
	if score > 1.0 {
		score = 1.0
	}

	riskLevel := models.RiskLevelForScore(score)

	fraudType := resp.FraudType
	if fraudType == "" {
		fraudType = models.FraudTypeGeneric
	}

	reasoning := resp.Reasoning
	if reasoning == "" {
		reasoning = defaultReasoning
	}

	keywords := resp.MatchedKeywords
	if keywords == nil {
		keywords = []string{}
	}
	redFlags := resp.RedFlags
	if redFlags == nil {
		redFlags = []string{}
	}

	return models.ClassificationResult{
		Score:          score,
		RiskLevel:      riskLevel,
		FraudType:      fraudType,
		Keywords:       keywords,
		RedFlags:       redFlags,
		Reasoning:      reasoning,
		AnalysisMethod: method,
	}
}

// FallbackResult is the verdict used when an analysis backend fails for any
// reason. A failed analysis must never itself flag a post as fraud.
func FallbackResult(method string) models.ClassificationResult {
	return models.ClassificationResult{
		Score:          0.0,
		RiskLevel:      models.RiskLow,
		FraudType:      models.FraudTypeFailed,
		Keywords:       []string{},
		RedFlags:       []string{},
		Reasoning:      "Analysis failed, treating as non-fraud for safety",
		AnalysisMethod: method,
	}
}
