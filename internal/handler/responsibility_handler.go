package handler

import (
	"errors"
	"net/http"
	"time"

	"adoption-service/internal/model"
	"adoption-service/pkg/logger"
	"adoption-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// The check-in program covers the first three weeks after adoption
const maxResponsibilityWeek = 3

// ResponsibilityHandler serves post-adoption check-ins: the adopter files
// weekly proof images and anyone can read a cat's check-in history
type ResponsibilityHandler struct {
	db *gorm.DB
}

func NewResponsibilityHandler(db *gorm.DB) *ResponsibilityHandler {
	return &ResponsibilityHandler{db: db}
}

// ResponsibilityRequest defines the structure for filing a check-in.
// The image fields carry stored-file references produced by the upload
// collaborator.
type ResponsibilityRequest struct {
	CatID         uint   `json:"cat_id"`
	Week          int    `json:"week"`
	FoodImage     string `json:"food_image"`
	ActivityImage string `json:"activity_image"`
	LitterImage   string `json:"litter_image"`
}

// Create files a weekly check-in. A second submission for the same cat and
// week fills in the image slots it carries and leaves the rest untouched,
// so the adopter can upload the proofs one at a time.
func (h *ResponsibilityHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)

	var req ResponsibilityRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request data"})
	}
	if req.CatID == 0 || req.Week < 1 || req.Week > maxResponsibilityWeek {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "cat_id and a week between 1 and 3 are required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var checkin model.Responsibility
	err := h.db.Where("cat_id = ? AND week = ?", req.CatID, req.Week).First(&checkin).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		checkin = model.Responsibility{
			CatID:         req.CatID,
			Week:          req.Week,
			FoodImage:     req.FoodImage,
			ActivityImage: req.ActivityImage,
			LitterImage:   req.LitterImage,
			Date:          time.Now(),
		}
		defer prometheus.TrackDBOperation("insert")(time.Now())
		if err := h.db.Create(&checkin).Error; err != nil {
			log.Error("Failed to create check-in", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to save check-in"})
		}
	case err != nil:
		log.Error("Failed to load check-in", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to save check-in"})
	default:
		updates := map[string]interface{}{"date": time.Now()}
		if req.FoodImage != "" {
			updates["food_image"] = req.FoodImage
		}
		if req.ActivityImage != "" {
			updates["activity_image"] = req.ActivityImage
		}
		if req.LitterImage != "" {
			updates["litter_image"] = req.LitterImage
		}
		defer prometheus.TrackDBOperation("update")(time.Now())
		if err := h.db.Model(&checkin).Updates(updates).Error; err != nil {
			log.Error("Failed to update check-in", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to save check-in"})
		}
		if err := h.db.First(&checkin, checkin.ID).Error; err != nil {
			log.Error("Failed to reload check-in", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to save check-in"})
		}
	}

	log.Info("Check-in saved",
		zap.Uint("cat_id", req.CatID),
		zap.Int("week", req.Week))
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Week check-in saved successfully!",
		"data":    checkin,
	})
}

// History returns every check-in filed for one cat, in week order
func (h *ResponsibilityHandler) History(c echo.Context) error {
	log := logger.FromContext(c)

	catID, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid cat id"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var checkins []model.Responsibility
	if err := h.db.Where("cat_id = ?", catID).Order("week ASC").Find(&checkins).Error; err != nil {
		log.Error("Failed to list check-ins",
			zap.Uint("cat_id", catID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to retrieve check-ins"})
	}

	return c.JSON(http.StatusOK, checkins)
}
