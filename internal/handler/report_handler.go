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

// ReportHandler serves stray-cat reports: filing, per-user history, the
// public feed and the admin response
type ReportHandler struct {
	db *gorm.DB
}

func NewReportHandler(db *gorm.DB) *ReportHandler {
	return &ReportHandler{db: db}
}

// ReportRequest defines the structure for filing a report
type ReportRequest struct {
	Username string `json:"username"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	Location string `json:"location"`
	ImageURL string `json:"image_url"`
}

// Create handles filing a new stray-cat report
func (h *ReportHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)

	var req ReportRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request data"})
	}
	if req.Username == "" || req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "username and title are required"})
	}

	report := model.Report{
		Username: req.Username,
		Title:    req.Title,
		Body:     req.Body,
		Location: orDash(req.Location),
		ImageURL: orDefaultString(req.ImageURL, "default-report.png"),
		Status:   model.ReportPending,
		Response: "-",
		Date:     time.Now(),
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := h.db.Create(&report); result.Error != nil {
		log.Error("Failed to create report", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to send report"})
	}

	log.Info("Report created",
		zap.Uint("report_id", report.ID),
		zap.String("username", report.Username))
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Report sent successfully!",
		"data":    report,
	})
}

// History handles retrieving one user's reports
func (h *ReportHandler) History(c echo.Context) error {
	log := logger.FromContext(c)
	username := c.Param("username")

	defer prometheus.TrackDBOperation("query")(time.Now())
	var reports []model.Report
	result := h.db.Where("username = ?", username).Order("date DESC").Find(&reports)
	if result.Error != nil {
		log.Error("Failed to list reports",
			zap.String("username", username),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to retrieve reports"})
	}

	return c.JSON(http.StatusOK, reports)
}

// All handles retrieving the full report feed with reporter profiles
func (h *ReportHandler) All(c echo.Context) error {
	log := logger.FromContext(c)

	defer prometheus.TrackDBOperation("query")(time.Now())
	var reports []model.Report
	result := h.db.Preload("User").Order("date DESC").Find(&reports)
	if result.Error != nil {
		log.Error("Failed to list reports", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to retrieve reports"})
	}

	return c.JSON(http.StatusOK, reports)
}

// RespondRequest defines the admin answer to a report
type RespondRequest struct {
	Status   model.ReportStatus `json:"status"`
	Response string             `json:"response"`
}

// Respond handles the admin answering a report (admin only)
func (h *ReportHandler) Respond(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid report id"})
	}

	var req RespondRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request data"})
	}

	switch req.Status {
	case model.ReportPending, model.ReportHandled, model.ReportRejected:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid report status"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	result := h.db.Model(&model.Report{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":   req.Status,
			"response": orDash(req.Response),
		})
	if result.Error != nil {
		log.Error("Failed to respond to report",
			zap.Uint("report_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to respond to report"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "report not found"})
	}

	log.Info("Report answered",
		zap.Uint("report_id", id),
		zap.String("status", string(req.Status)))
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Report answered.",
	})
}
