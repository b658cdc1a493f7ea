// Package handlers exposes the threats query surface over HTTP.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/christiano-developer/gaur/internal/models"
	"github.com/christiano-developer/gaur/internal/store"
	"github.com/christiano-developer/gaur/pkg/logging"
	"github.com/christiano-developer/gaur/pkg/middleware"
)

var (
	alerts store.AlertStore
	logger logging.Logger
)

// Init initializes the handlers with the alert store and logger
func Init(alertStore store.AlertStore, log logging.Logger) {
	alerts = alertStore
	logger = log
}

// RegisterRoutes mounts the threats API on the given router.
func RegisterRoutes(router middleware.Engine) {
	api := router.Group("/api")
	{
		api.GET("/threats", ListThreats)
		api.GET("/threats/stats", GetThreatStats)
		api.GET("/threats/:id", GetThreat)
		api.PUT("/threats/:id/status", UpdateThreatStatus)
	}
}

// ListThreats returns a filtered, paginated list of fraud alerts
func ListThreats(c middleware.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	if size < 1 || size > 100 {
		size = 10
	}

	filter := store.AlertFilter{
		RiskLevel: c.Query("risk_level"),
		FraudType: c.Query("fraud_type"),
		Status:    c.Query("status"),
		Limit:     size,
		Offset:    (page - 1) * size,
	}

	if filter.RiskLevel != "" && !models.ValidRiskLevel(filter.RiskLevel) {
		c.JSON(http.StatusBadRequest, middleware.H{"error": "invalid risk_level"})
		return
	}
	if filter.Status != "" && !models.ValidAlertStatus(filter.Status) {
		c.JSON(http.StatusBadRequest, middleware.H{"error": "invalid status"})
		return
	}

	items, total, err := alerts.ListAlerts(c.Request.Context(), filter)
	if err != nil {
		logger.WithError(err).Error("Failed to list threats")
		c.JSON(http.StatusInternalServerError, middleware.H{"error": "Internal server error"})
		return
	}
	if items == nil {
		items = []models.FraudAlert{}
	}

	c.JSON(http.StatusOK, middleware.H{
		"items": items,
		"total": total,
		"page":  page,
		"size":  size,
	})
}

// GetThreat returns a single fraud alert by ID
func GetThreat(c middleware.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, middleware.H{"error": "invalid threat id"})
		return
	}

	alert, err := alerts.GetAlert(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, middleware.H{"error": "threat not found"})
		return
	}
	if err != nil {
		logger.WithError(err).WithField("threat_id", id).Error("Failed to load threat")
		c.JSON(http.StatusInternalServerError, middleware.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, alert)
}

// GetThreatStats returns aggregate alert counts
func GetThreatStats(c middleware.Context) {
	stats, err := alerts.GetStats(c.Request.Context())
	if err != nil {
		logger.WithError(err).Error("Failed to load threat stats")
		c.JSON(http.StatusInternalServerError, middleware.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateThreatStatus advances the status of an alert
func UpdateThreatStatus(c middleware.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, middleware.H{"error": "invalid threat id"})
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, middleware.H{"error": err.Error()})
		return
	}

	err = alerts.UpdateAlertStatus(c.Request.Context(), id, req.Status)
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, middleware.H{"error": "threat not found"})
	case errors.Is(err, store.ErrInvalidTransition):
		c.JSON(http.StatusConflict, middleware.H{"error": err.Error()})
	case err != nil:
		logger.WithError(err).WithField("threat_id", id).Error("Failed to update threat status")
		c.JSON(http.StatusInternalServerError, middleware.H{"error": "Internal server error"})
	default:
		c.JSON(http.StatusOK, middleware.H{"id": id, "status": req.Status})
	}
}
