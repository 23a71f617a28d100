package handler

import (
	"errors"
	"net/http"
	"time"

	"adoption-service/internal/adoption"
	"adoption-service/pkg/logger"
	"adoption-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AdoptionHandler serves the adoption-request lifecycle: submission, the
// applicant's status and history views, the admin queue, approve/reject
// and the claim action.
type AdoptionHandler struct {
	svc *adoption.Service
}

func NewAdoptionHandler(svc *adoption.Service) *AdoptionHandler {
	return &AdoptionHandler{svc: svc}
}

// AdoptRequest defines the structure for adoption submissions
type AdoptRequest struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

// Submit handles an applicant requesting (or re-requesting) a cat
func (h *AdoptionHandler) Submit(c echo.Context) error {
	log := logger.FromContext(c)

	catID, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid cat id"})
	}

	var req AdoptRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request data"})
	}
	if req.Username == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "username is required"})
	}

	defer prometheus.TrackDBOperation("transaction")(time.Now())
	_, resubmitted, err := h.svc.Submit(c.Request().Context(), catID, req.Username, req.Message)
	if err != nil {
		return h.submitError(c, err, catID, req.Username)
	}

	if resubmitted {
		prometheus.RecordSubmission("resubmitted")
		log.Info("Adoption request resubmitted",
			zap.Uint("cat_id", catID),
			zap.String("username", req.Username))
		return c.JSON(http.StatusOK, echo.Map{
			"success": true,
			"message": "Request sent again! Better luck this time.",
		})
	}

	prometheus.RecordSubmission("created")
	log.Info("Adoption request submitted",
		zap.Uint("cat_id", catID),
		zap.String("username", req.Username))
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Adoption request sent! Wait for news from the admin.",
	})
}

func (h *AdoptionHandler) submitError(c echo.Context, err error, catID uint, username string) error {
	log := logger.FromContext(c)
	prometheus.RecordSubmission("rejected")

	switch {
	case errors.Is(err, adoption.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
	case errors.Is(err, adoption.ErrCatNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"message": "cat not found"})
	case errors.Is(err, adoption.ErrProfileIncomplete):
		return c.JSON(http.StatusBadRequest, echo.Map{
			"success": false,
			"code":    "PROFILE_INCOMPLETE",
			"message": "Your profile is incomplete. Fill in your occupation and income first.",
		})
	case errors.Is(err, adoption.ErrCatAlreadyAdopted):
		return c.JSON(http.StatusBadRequest, echo.Map{
			"success": false,
			"message": "This cat has already been adopted by someone else.",
		})
	case errors.Is(err, adoption.ErrDuplicatePending):
		return c.JSON(http.StatusBadRequest, echo.Map{
			"success": false,
			"message": "Hang in there, your request is still being reviewed by the admin.",
		})
	case errors.Is(err, adoption.ErrAlreadyApproved):
		return c.JSON(http.StatusBadRequest, echo.Map{
			"success": false,
			"message": "You have already been approved for this cat!",
		})
	}

	log.Error("Failed to process adoption request",
		zap.Uint("cat_id", catID),
		zap.String("username", username),
		zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to process adoption request"})
}

// Pending lists the applicant's open requests overlaid on cat data
func (h *AdoptionHandler) Pending(c echo.Context) error {
	log := logger.FromContext(c)
	username := c.Param("username")

	defer prometheus.TrackDBOperation("query")(time.Now())
	cats, err := h.svc.PendingForUser(c.Request().Context(), username)
	if err != nil {
		log.Error("Failed to list pending requests",
			zap.String("username", username),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to retrieve pending requests"})
	}

	return c.JSON(http.StatusOK, cats)
}

// History lists the cats the user has adopted and collected
func (h *AdoptionHandler) History(c echo.Context) error {
	log := logger.FromContext(c)
	username := c.Param("username")

	defer prometheus.TrackDBOperation("query")(time.Now())
	cats, err := h.svc.HistoryForUser(c.Request().Context(), username)
	if err != nil {
		log.Error("Failed to list adoption history",
			zap.String("username", username),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to retrieve history"})
	}

	return c.JSON(http.StatusOK, cats)
}

// Queue lists every pending request with cat and applicant data (admin only)
func (h *AdoptionHandler) Queue(c echo.Context) error {
	log := logger.FromContext(c)

	defer prometheus.TrackDBOperation("query")(time.Now())
	requests, err := h.svc.PendingQueue(c.Request().Context())
	if err != nil {
		log.Error("Failed to list request queue", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to retrieve requests"})
	}

	log.Info("Request queue retrieved", zap.Int("count", len(requests)))
	return c.JSON(http.StatusOK, requests)
}

// Approve handles the atomic approve/reject-rivals/lock-cat transaction
// (admin only)
func (h *AdoptionHandler) Approve(c echo.Context) error {
	log := logger.FromContext(c)

	requestID, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request id"})
	}

	defer prometheus.TrackDBOperation("transaction")(time.Now())
	if err := h.svc.Approve(c.Request().Context(), requestID); err != nil {
		switch {
		case errors.Is(err, adoption.ErrRequestNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"message": "request not found"})
		case errors.Is(err, adoption.ErrAlreadyApproved):
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "request is already approved"})
		case errors.Is(err, adoption.ErrInvalidTransition):
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "request cannot be approved from its current status"})
		}
		log.Error("Failed to approve request",
			zap.Uint("request_id", requestID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to approve request"})
	}

	prometheus.ApprovalCounter.Inc()
	log.Info("Adoption request approved", zap.Uint("request_id", requestID))
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Adoption approved! Other candidates were rejected automatically.",
	})
}

// Reject handles rejecting a single request (admin only)
func (h *AdoptionHandler) Reject(c echo.Context) error {
	log := logger.FromContext(c)

	requestID, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request id"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := h.svc.Reject(c.Request().Context(), requestID); err != nil {
		switch {
		case errors.Is(err, adoption.ErrRequestNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"message": "request not found"})
		case errors.Is(err, adoption.ErrInvalidTransition):
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "request cannot be rejected from its current status"})
		}
		log.Error("Failed to reject request",
			zap.Uint("request_id", requestID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to reject request"})
	}

	prometheus.RejectionCounter.Inc()
	log.Info("Adoption request rejected", zap.Uint("request_id", requestID))
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Request rejected.",
	})
}

// Take handles the adopter confirming physical receipt of the cat
func (h *AdoptionHandler) Take(c echo.Context) error {
	log := logger.FromContext(c)

	catID, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid cat id"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	cat, err := h.svc.MarkTaken(c.Request().Context(), catID)
	if err != nil {
		switch {
		case errors.Is(err, adoption.ErrCatNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"message": "cat not found"})
		case errors.Is(err, adoption.ErrCatNotAdopted):
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "cat has not been adopted yet"})
		}
		log.Error("Failed to mark cat as taken",
			zap.Uint("cat_id", catID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to pick up cat"})
	}

	prometheus.ClaimCounter.Inc()
	log.Info("Cat marked as taken", zap.Uint("cat_id", catID))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Cat picked up successfully!",
		"data":    cat,
	})
}
