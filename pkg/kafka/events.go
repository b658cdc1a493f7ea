package kafka

import (
	"time"

	"github.com/google/uuid"
)

// EventTypeAlertCreated is emitted when the triage pipeline stores a new
// fraud alert.
const EventTypeAlertCreated = "fraud-alert-created"

// AlertEvent is the wire format for alert lifecycle events
type AlertEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`

	AlertID         int64    `json:"alert_id"`
	SourcePlatform  string   `json:"source_platform"`
	SourceID        string   `json:"source_id"`
	ConfidenceScore float64  `json:"confidence_score"`
	RiskLevel       string   `json:"risk_level"`
	FraudType       string   `json:"fraud_type"`
	Keywords        []string `json:"keywords,omitempty"`
}

// NewAlertCreatedEvent builds an AlertEvent with a fresh event ID
func NewAlertCreatedEvent(source string) *AlertEvent {
	return &AlertEvent{
		EventID:   uuid.New().String(),
		EventType: EventTypeAlertCreated,
		Source:    source,
		Timestamp: time.Now().UTC(),
	}
}
