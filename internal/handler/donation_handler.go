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

// DonationHandler records contributions and serves the donation feeds.
// Bookkeeping only; payment processing lives outside this service.
type DonationHandler struct {
	db *gorm.DB
}

func NewDonationHandler(db *gorm.DB) *DonationHandler {
	return &DonationHandler{db: db}
}

// DonationRequest defines the structure for recording a donation
type DonationRequest struct {
	Username string `json:"username"`
	Amount   int64  `json:"amount"`
	Method   string `json:"method"`
	Note     string `json:"note"`
	ProofURL string `json:"proof_url"`
}

// Create handles recording a new donation
func (h *DonationHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)

	var req DonationRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request data"})
	}
	if req.Username == "" || req.Amount <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "username and a positive amount are required"})
	}

	donation := model.Donation{
		Username: req.Username,
		Amount:   req.Amount,
		Method:   req.Method,
		Note:     req.Note,
		ProofURL: req.ProofURL,
		Date:     time.Now(),
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := h.db.Create(&donation); result.Error != nil {
		log.Error("Failed to record donation", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to record donation"})
	}

	log.Info("Donation recorded",
		zap.Uint("donation_id", donation.ID),
		zap.String("username", donation.Username),
		zap.Int64("amount", donation.Amount))
	return c.JSON(http.StatusCreated, echo.Map{
		"status": "success",
		"data":   donation,
	})
}

// List handles retrieving all donations with the running total
func (h *DonationHandler) List(c echo.Context) error {
	log := logger.FromContext(c)

	defer prometheus.TrackDBOperation("query")(time.Now())
	var donations []model.Donation
	result := h.db.Order("id DESC").Find(&donations)
	if result.Error != nil {
		log.Error("Failed to list donations", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to retrieve donations"})
	}

	var total int64
	for _, d := range donations {
		total += d.Amount
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status": "success",
		"data":   donations,
		"total":  total,
	})
}

// History handles retrieving one user's donations
func (h *DonationHandler) History(c echo.Context) error {
	log := logger.FromContext(c)
	username := c.Param("username")

	defer prometheus.TrackDBOperation("query")(time.Now())
	var donations []model.Donation
	result := h.db.Where("username = ?", username).Order("id DESC").Find(&donations)
	if result.Error != nil {
		log.Error("Failed to list donations",
			zap.String("username", username),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to retrieve donations"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status": "success",
		"data":   donations,
	})
}
