// Package store persists retained posts and fraud alerts.
package store

import (
	"context"
	"errors"

	"github.com/christiano-developer/gaur/internal/models"
)

// ErrNotFound is returned when the requested alert does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidTransition is returned when an alert status update would move
// backwards. Statuses only advance: open -> investigating -> resolved.
var ErrInvalidTransition = errors.New("invalid status transition")

// AlertFilter narrows alert listings. Zero values mean "no filter".
type AlertFilter struct {
	RiskLevel string
	FraudType string
	Status    string
	Limit     int
	Offset    int
}

// PostStore persists retained posts.
type PostStore interface {
	StorePost(ctx context.Context, post models.RawPost, result models.ClassificationResult) (int64, error)
}

// AlertStore persists and queries fraud alerts.
type AlertStore interface {
	CreateAlert(ctx context.Context, postID int64, post models.RawPost, result models.ClassificationResult) (int64, error)
	ListAlerts(ctx context.Context, filter AlertFilter) ([]models.FraudAlert, int64, error)
	GetAlert(ctx context.Context, id int64) (*models.FraudAlert, error)
	UpdateAlertStatus(ctx context.Context, id int64, status string) error
	GetStats(ctx context.Context) (*models.AlertStats, error)
}

// Store is the full persistence sink surface.
type Store interface {
	PostStore
	AlertStore
}
