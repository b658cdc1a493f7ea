package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/christiano-developer/gaur/internal/models"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPostgresStore(db, nil), mock
}

func samplePost() models.RawPost {
	return models.RawPost{
		SourcePlatform: "facebook",
		SourceID:       "fb_123",
		Username:       "scammer42",
		Text:           "URGENT! Send advance payment via UPI",
		PostURL:        "https://facebook.com/posts/123",
		ScrapedAt:      time.Now(),
	}
}

func sampleResult() models.ClassificationResult {
	return models.ClassificationResult{
		Score:          0.85,
		RiskLevel:      models.RiskHigh,
		FraudType:      models.FraudTypeAdvancePayment,
		Keywords:       []string{"advance payment", "upi"},
		RedFlags:       []string{"urgency_pressure"},
		Reasoning:      "Detected 2 fraud keywords",
		AnalysisMethod: "keyword_pattern",
	}
}

func TestStorePost(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("INSERT INTO ai_scraped_posts").
		WithArgs("facebook", "fb_123", "scammer42", "URGENT! Send advance payment via UPI",
			"https://facebook.com/posts/123", "", 0.85, models.RiskHigh).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	id, err := s.StorePost(context.Background(), samplePost(), sampleResult())
	if err != nil {
		t.Fatalf("store post failed: %v", err)
	}
	if id != 7 {
		t.Fatalf("expected post id 7, got %d", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateAlert(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("INSERT INTO ai_fraud_alerts").
		WithArgs(int64(7), "facebook", "fb_123", "URGENT! Send advance payment via UPI",
			0.85, models.RiskHigh, models.FraudTypeAdvancePayment,
			sqlmock.AnyArg(), sqlmock.AnyArg(), models.AlertStatusOpen).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	id, err := s.CreateAlert(context.Background(), 7, samplePost(), sampleResult())
	if err != nil {
		t.Fatalf("create alert failed: %v", err)
	}
	if id != 42 {
		t.Fatalf("expected alert id 42, got %d", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func alertRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "post_id", "source_platform", "source_id", "content_text",
		"confidence_score", "risk_level", "fraud_type",
		"detected_keywords", "ai_metadata", "status", "created_at", "updated_at",
	}).AddRow(
		int64(42), int64(7), "facebook", "fb_123", "URGENT! Send advance payment via UPI",
		0.85, models.RiskHigh, models.FraudTypeAdvancePayment,
		[]byte(`{"advance payment","upi"}`), []byte(`{"reasoning":"test"}`),
		models.AlertStatusOpen, now, now,
	)
}

func TestListAlertsWithFilters(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM ai_fraud_alerts WHERE risk_level = \$1 AND status = \$2`).
		WithArgs(models.RiskHigh, models.AlertStatusOpen).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(1)))

	mock.ExpectQuery(`(?s)SELECT id, post_id, source_platform.+FROM ai_fraud_alerts WHERE risk_level = \$1 AND status = \$2`).
		WithArgs(models.RiskHigh, models.AlertStatusOpen, 10, 0).
		WillReturnRows(alertRows())

	alerts, total, err := s.ListAlerts(context.Background(), AlertFilter{
		RiskLevel: models.RiskHigh,
		Status:    models.AlertStatusOpen,
	})
	if err != nil {
		t.Fatalf("list alerts failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected total 1, got %d", total)
	}
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	if alerts[0].ID != 42 {
		t.Fatalf("expected alert id 42, got %d", alerts[0].ID)
	}
	if len(alerts[0].Keywords) != 2 {
		t.Fatalf("expected 2 keywords, got %v", alerts[0].Keywords)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetAlertNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT id, post_id, source_platform").
		WithArgs(int64(999)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.GetAlert(context.Background(), 999)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateAlertStatusAdvances(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT status FROM ai_fraud_alerts").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(models.AlertStatusOpen))
	mock.ExpectExec("UPDATE ai_fraud_alerts").
		WithArgs(models.AlertStatusInvestigating, int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := s.UpdateAlertStatus(context.Background(), 42, models.AlertStatusInvestigating); err != nil {
		t.Fatalf("update status failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateAlertStatusRejectsBackwards(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT status FROM ai_fraud_alerts").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(models.AlertStatusResolved))
	mock.ExpectRollback()

	err := s.UpdateAlertStatus(context.Background(), 42, models.AlertStatusOpen)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestUpdateAlertStatusUnknownStatus(t *testing.T) {
	s, _ := newMockStore(t)

	err := s.UpdateAlertStatus(context.Background(), 42, "escalated")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for unknown status, got %v", err)
	}
}

func TestGetStats(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM ai_fraud_alerts`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(5)))
	mock.ExpectQuery("SELECT risk_level, COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"risk_level", "count"}).
			AddRow(models.RiskHigh, int64(3)).AddRow(models.RiskMedium, int64(2)))
	mock.ExpectQuery("SELECT fraud_type, COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"fraud_type", "count"}).
			AddRow(models.FraudTypeHotelBooking, int64(4)).AddRow(models.FraudTypeCrypto, int64(1)))
	mock.ExpectQuery("SELECT status, COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow(models.AlertStatusOpen, int64(5)))
	mock.ExpectQuery("SELECT source_platform, COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"source_platform", "count"}).
			AddRow("facebook", int64(5)))

	stats, err := s.GetStats(context.Background())
	if err != nil {
		t.Fatalf("get stats failed: %v", err)
	}
	if stats.Total != 5 {
		t.Fatalf("expected total 5, got %d", stats.Total)
	}
	if stats.ByRisk[models.RiskHigh] != 3 {
		t.Fatalf("expected 3 HIGH alerts, got %d", stats.ByRisk[models.RiskHigh])
	}
	if stats.ByType[models.FraudTypeHotelBooking] != 4 {
		t.Fatalf("expected 4 hotel booking alerts, got %d", stats.ByType[models.FraudTypeHotelBooking])
	}
	if stats.ByPlatform["facebook"] != 5 {
		t.Fatalf("expected 5 facebook alerts, got %d", stats.ByPlatform["facebook"])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
