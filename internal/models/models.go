package models

import (
	"encoding/json"
	"time"
)

// Risk levels assigned by classifiers.
const (
	RiskHigh   = "HIGH"
	RiskMedium = "MEDIUM"
	RiskLow    = "LOW"
)

// Fraud type labels. FraudTypeGeneric is used when a post scores as
// suspicious but no specific category matched. FraudTypeFailed marks the
// fallback verdict produced when every analysis backend failed.
const (
	FraudTypeHotelBooking   = "hotel_booking_scam"
	FraudTypeInvestment     = "investment_scam"
	FraudTypeGambling       = "gambling_scam"
	FraudTypeAdultServices  = "prostitution_racket"
	FraudTypeFakeDocuments  = "fake_documents"
	FraudTypeCrypto         = "cryptocurrency_scam"
	FraudTypeAdvancePayment = "advance_payment_fraud"
	FraudTypeGeneric        = "suspicious_content"
	FraudTypeLegitimate     = "legitimate"
	FraudTypeNone           = "none"
	FraudTypeFailed         = "analysis_failed"
)

// Alert statuses. Alerts move monotonically open -> investigating -> resolved.
const (
	AlertStatusOpen          = "open"
	AlertStatusInvestigating = "investigating"
	AlertStatusResolved      = "resolved"
)

// RawPost is one scraped social media post entering the pipeline.
type RawPost struct {
	SourcePlatform  string    `json:"source_platform"`
	SourceID        string    `json:"source_id"`
	Username        string    `json:"username,omitempty"`
	Text            string    `json:"text"`
	HTML            string    `json:"html,omitempty"`
	ScreenshotPath  string    `json:"screenshot_path,omitempty"`
	PostURL         string    `json:"post_url,omitempty"`
	Language        string    `json:"language,omitempty"`
	KeywordSearched string    `json:"keyword_searched,omitempty"`
	ScrapedAt       time.Time `json:"scraped_at"`
}

// ClassificationResult is the verdict a classifier produces for one post.
type ClassificationResult struct {
	Score          float64  `json:"confidence_score"`
	RiskLevel      string   `json:"risk_level"`
	FraudType      string   `json:"fraud_type"`
	Keywords       []string `json:"detected_keywords"`
	RedFlags       []string `json:"red_flags"`
	Reasoning      string   `json:"reasoning"`
	AnalysisMethod string   `json:"analysis_method"`
}

// TriageDecision is the gate's verdict on a classified post.
type TriageDecision int

const (
	DecisionDiscard TriageDecision = iota
	DecisionAccept
	DecisionReview
)

func (d TriageDecision) String() string {
	switch d {
	case DecisionAccept:
		return "accept"
	case DecisionReview:
		return "review"
	default:
		return "discard"
	}
}

// StoredPost is a retained post row.
type StoredPost struct {
	ID             int64     `json:"id"`
	SourcePlatform string    `json:"source_platform"`
	SourceID       string    `json:"source_id"`
	Username       string    `json:"username,omitempty"`
	ContentText    string    `json:"content_text"`
	PostURL        string    `json:"post_url,omitempty"`
	ScreenshotPath string    `json:"screenshot_path,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// FraudAlert is a stored alert raised for a retained post.
type FraudAlert struct {
	ID              int64           `json:"id"`
	PostID          int64           `json:"post_id"`
	SourcePlatform  string          `json:"source_platform"`
	SourceID        string          `json:"source_id"`
	ContentText     string          `json:"content_text"`
	ConfidenceScore float64         `json:"confidence_score"`
	RiskLevel       string          `json:"risk_level"`
	FraudType       string          `json:"fraud_type"`
	Keywords        []string        `json:"detected_keywords"`
	Metadata        json.RawMessage `json:"ai_metadata,omitempty"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// AlertMetadata is the JSON document stored alongside each alert.
type AlertMetadata struct {
	KeywordSearched string   `json:"keyword_searched,omitempty"`
	Username        string   `json:"username,omitempty"`
	ScreenshotPath  string   `json:"screenshot_path,omitempty"`
	Language        string   `json:"language,omitempty"`
	RedFlags        []string `json:"red_flags,omitempty"`
	Reasoning       string   `json:"reasoning,omitempty"`
	AnalysisMethod  string   `json:"analysis_method,omitempty"`
}

// AlertStats aggregates alert counts for the stats endpoint.
type AlertStats struct {
	Total      int64            `json:"total"`
	ByRisk     map[string]int64 `json:"by_risk_level"`
	ByType     map[string]int64 `json:"by_fraud_type"`
	ByStatus   map[string]int64 `json:"by_status"`
	ByPlatform map[string]int64 `json:"by_platform"`
}

// ValidRiskLevel reports whether s is one of the three recognized levels.
func ValidRiskLevel(s string) bool {
	return s == RiskHigh || s == RiskMedium || s == RiskLow
}

// ValidAlertStatus reports whether s is a recognized alert status.
func ValidAlertStatus(s string) bool {
	return s == AlertStatusOpen || s == AlertStatusInvestigating || s == AlertStatusResolved
}

// StatusRank orders alert statuses for the monotonic transition check.
// Unknown statuses rank lowest.
func StatusRank(s string) int {
	switch s {
	case AlertStatusOpen:
		return 1
	case AlertStatusInvestigating:
		return 2
	case AlertStatusResolved:
		return 3
	default:
		return 0
	}
}

// RiskLevelForScore derives a risk level from a confidence score.
func RiskLevelForScore(score float64) string {
	switch {
	case score >= 0.7:
		return RiskHigh
	case score >= 0.4:
		return RiskMedium
	default:
		return RiskLow
	}
}
