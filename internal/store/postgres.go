package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/christiano-developer/gaur/internal/models"
	"github.com/christiano-developer/gaur/pkg/logging"
)

// PostgresStore is the Postgres-backed persistence sink. Every store and
// alert write is a single independent insert, so concurrent pipeline runs
// need no coordination beyond the database itself.
type PostgresStore struct {
	db     *sql.DB
	logger logging.Logger
}

// NewPostgresStore creates a store over an open database handle.
func NewPostgresStore(db *sql.DB, logger logging.Logger) *PostgresStore {
	return &PostgresStore{db: db, logger: logger}
}

// StorePost inserts one retained post and returns its ID.
func (s *PostgresStore) StorePost(ctx context.Context, post models.RawPost, result models.ClassificationResult) (int64, error) {
	query := `
		INSERT INTO ai_scraped_posts (
			source_platform, source_id, username, content_text,
			post_url, screenshot_path, confidence_score, risk_level
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	var id int64
	err := s.db.QueryRowContext(ctx, query,
		post.SourcePlatform, post.SourceID, post.Username, post.Text,
		post.PostURL, post.ScreenshotPath, result.Score, result.RiskLevel,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to store post: %w", err)
	}
	return id, nil
}

// CreateAlert inserts a fraud alert for a stored post and returns the alert
// ID. New alerts always open in status "open".
func (s *PostgresStore) CreateAlert(ctx context.Context, postID int64, post models.RawPost, result models.ClassificationResult) (int64, error) {
	metadata, err := json.Marshal(models.AlertMetadata{
		KeywordSearched: post.KeywordSearched,
		Username:        post.Username,
		ScreenshotPath:  post.ScreenshotPath,
		Language:        post.Language,
		RedFlags:        result.RedFlags,
		Reasoning:       result.Reasoning,
		AnalysisMethod:  result.AnalysisMethod,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal alert metadata: %w", err)
	}

	query := `
		INSERT INTO ai_fraud_alerts (
			post_id, source_platform, source_id, content_text,
			confidence_score, risk_level, fraud_type,
			detected_keywords, ai_metadata, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	var id int64
	err = s.db.QueryRowContext(ctx, query,
		postID, post.SourcePlatform, post.SourceID, post.Text,
		result.Score, result.RiskLevel, result.FraudType,
		pq.Array(result.Keywords), metadata, models.AlertStatusOpen,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create alert: %w", err)
	}

	if s.logger != nil {
		s.logger.WithFields(logging.Fields{
			"alert_id":   id,
			"post_id":    postID,
			"risk_level": result.RiskLevel,
			"fraud_type": result.FraudType,
			"score":      result.Score,
		}).Info("Fraud alert created")
	}
	return id, nil
}

// ListAlerts returns a filtered page of alerts plus the total count matching
// the filter.
func (s *PostgresStore) ListAlerts(ctx context.Context, filter AlertFilter) ([]models.FraudAlert, int64, error) {
	var conditions []string
	var args []interface{}

	addFilter := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	addFilter("risk_level", filter.RiskLevel)
	addFilter("fraud_type", filter.FraudType)
	addFilter("status", filter.Status)

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM ai_fraud_alerts" + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count alerts: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)

	query := fmt.Sprintf(`
		SELECT id, post_id, source_platform, source_id, content_text,
			confidence_score, risk_level, fraud_type,
			detected_keywords, ai_metadata, status, created_at, updated_at
		FROM ai_fraud_alerts%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer rows.Close()

	var alerts []models.FraudAlert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, 0, err
		}
		alerts = append(alerts, *alert)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate alerts: %w", err)
	}

	return alerts, total, nil
}

// GetAlert fetches one alert by ID.
func (s *PostgresStore) GetAlert(ctx context.Context, id int64) (*models.FraudAlert, error) {
	query := `
		SELECT id, post_id, source_platform, source_id, content_text,
			confidence_score, risk_level, fraud_type,
			detected_keywords, ai_metadata, status, created_at, updated_at
		FROM ai_fraud_alerts
		WHERE id = $1`

	row := s.db.QueryRowContext(ctx, query, id)
	alert, err := scanAlert(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return alert, nil
}

// UpdateAlertStatus advances an alert's status. Transitions only move
// forward; attempting to reopen a resolved alert fails with
// ErrInvalidTransition.
func (s *PostgresStore) UpdateAlertStatus(ctx context.Context, id int64, status string) error {
	if !models.ValidAlertStatus(status) {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, status)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRowContext(ctx, "SELECT status FROM ai_fraud_alerts WHERE id = $1 FOR UPDATE", id).Scan(&current)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load alert status: %w", err)
	}

	if models.StatusRank(status) < models.StatusRank(current) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, status)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE ai_fraud_alerts
		SET status = $1,
			updated_at = NOW(),
			resolved_at = CASE WHEN $1 = 'resolved' THEN NOW() ELSE resolved_at END
		WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update alert status: %w", err)
	}

	return tx.Commit()
}

// GetStats aggregates alert counts.
func (s *PostgresStore) GetStats(ctx context.Context) (*models.AlertStats, error) {
	stats := &models.AlertStats{
		ByRisk:     make(map[string]int64),
		ByType:     make(map[string]int64),
		ByStatus:   make(map[string]int64),
		ByPlatform: make(map[string]int64),
	}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM ai_fraud_alerts").Scan(&stats.Total); err != nil {
		return nil, fmt.Errorf("failed to count alerts: %w", err)
	}

	groups := []struct {
		column string
		dest   map[string]int64
	}{
		{"risk_level", stats.ByRisk},
		{"fraud_type", stats.ByType},
		{"status", stats.ByStatus},
		{"source_platform", stats.ByPlatform},
	}
	for _, g := range groups {
		query := fmt.Sprintf("SELECT %s, COUNT(*) FROM ai_fraud_alerts GROUP BY %s", g.column, g.column)
		rows, err := s.db.QueryContext(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate by %s: %w", g.column, err)
		}
		for rows.Next() {
			var key string
			var count int64
			if err := rows.Scan(&key, &count); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan %s aggregate: %w", g.column, err)
			}
			g.dest[key] = count
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to iterate %s aggregate: %w", g.column, err)
		}
		rows.Close()
	}

	return stats, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAlert(row rowScanner) (*models.FraudAlert, error) {
	var alert models.FraudAlert
	var keywords pq.StringArray
	var metadata []byte

	err := row.Scan(
		&alert.ID, &alert.PostID, &alert.SourcePlatform, &alert.SourceID,
		&alert.ContentText, &alert.ConfidenceScore, &alert.RiskLevel,
		&alert.FraudType, &keywords, &metadata, &alert.Status,
		&alert.CreatedAt, &alert.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan alert: %w", err)
	}

	alert.Keywords = []string(keywords)
	if alert.Keywords == nil {
		alert.Keywords = []string{}
	}
	alert.Metadata = metadata
	return &alert, nil
}
