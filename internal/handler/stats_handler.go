package handler

import (
	"net/http"
	"time"

	"adoption-service/internal/model"
	"adoption-service/pkg/logger"
	"adoption-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StatsHandler serves the shelter counters shown on the mobile home screen
type StatsHandler struct {
	db *gorm.DB
}

func NewStatsHandler(db *gorm.DB) *StatsHandler {
	return &StatsHandler{db: db}
}

// Get returns the shelter counters: cats ready for adoption, cats adopted
// and cats already collected by their adopter
func (h *StatsHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)

	defer prometheus.TrackDBOperation("query")(time.Now())

	var ready, adopted, claimed int64
	if err := h.db.Model(&model.Cat{}).
		Where("adopted = ? AND taken = ?", false, false).
		Count(&ready).Error; err != nil {
		log.Error("Failed to count available cats", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to retrieve stats"})
	}
	if err := h.db.Model(&model.Cat{}).
		Where("adopted = ?", true).
		Count(&adopted).Error; err != nil {
		log.Error("Failed to count adopted cats", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to retrieve stats"})
	}
	if err := h.db.Model(&model.Cat{}).
		Where("taken = ?", true).
		Count(&claimed).Error; err != nil {
		log.Error("Failed to count claimed cats", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to retrieve stats"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"ready":   ready,
		"adopted": adopted,
		"claimed": claimed,
	})
}
