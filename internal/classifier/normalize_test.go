package classifier

import (
	"testing"

	"github.com/christiano-developer/gaur/internal/models"
)

func TestNormalizeClampsScore(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{-0.5, 0.0},
		{0.0, 0.0},
		{0.42, 0.42},
		{1.0, 1.0},
		{3.7, 1.0},
	}

	for _, tc := range cases {
		result := normalize(backendResponse{FraudScore: tc.in, RiskLevel: models.RiskLow}, "test")
		if result.Score != tc.want {
			t.Fatalf("normalize score %f: got %f, want %f", tc.in, result.Score, tc.want)
		}
	}
}

func TestNormalizeDerivesRiskLevelFromScore(t *testing.T) {
	cases := []struct {
		score float64
		risk  string
		want  string
	}{
		{0.9, "CRITICAL", models.RiskHigh},
		{0.5, "", models.RiskMedium},
		{0.1, "banana", models.RiskLow},
		{0.9, models.RiskLow, models.RiskHigh}, // a label that contradicts the score is overridden
		{0.2, models.RiskHigh, models.RiskLow},
		{0.85, models.RiskHigh, models.RiskHigh},
	}

	for _, tc := range cases {
		result := normalize(backendResponse{FraudScore: tc.score, RiskLevel: tc.risk}, "test")
		if result.RiskLevel != tc.want {
			t.Fatalf("score %f risk %q: got %s, want %s", tc.score, tc.risk, result.RiskLevel, tc.want)
		}
	}
}

func TestNormalizeDefaults(t *testing.T) {
	result := normalize(backendResponse{}, "test")

	if result.FraudType != models.FraudTypeGeneric {
		t.Fatalf("expected default fraud type %s, got %s", models.FraudTypeGeneric, result.FraudType)
	}
	if result.Reasoning != defaultReasoning {
		t.Fatalf("expected placeholder reasoning, got %q", result.Reasoning)
	}
	if result.Keywords == nil || result.RedFlags == nil {
		t.Fatal("expected empty slices, got nil")
	}
	if result.AnalysisMethod != "test" {
		t.Fatalf("expected analysis method to be set, got %q", result.AnalysisMethod)
	}
}

func TestFallbackResult(t *testing.T) {
	result := FallbackResult("gpt_html")

	if result.Score != 0.0 {
		t.Fatalf("expected zero score, got %f", result.Score)
	}
	if result.RiskLevel != models.RiskLow {
		t.Fatalf("expected LOW risk, got %s", result.RiskLevel)
	}
	if result.FraudType != models.FraudTypeFailed {
		t.Fatalf("expected %s, got %s", models.FraudTypeFailed, result.FraudType)
	}
}
