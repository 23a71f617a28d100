package handler

import (
	"net/http"
	"strconv"
	"time"

	"adoption-service/internal/adoption"
	"adoption-service/internal/model"
	"adoption-service/pkg/logger"
	"adoption-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CatHandler serves the cat registry: listing, detail and admin creation
type CatHandler struct {
	svc *adoption.Service
}

func NewCatHandler(svc *adoption.Service) *CatHandler {
	return &CatHandler{svc: svc}
}

// CatRequest defines the structure for cat creation requests
type CatRequest struct {
	Name        string `json:"name"`
	Age         int    `json:"age"`
	Gender      string `json:"gender"`
	Breed       string `json:"breed"`
	Temperament string `json:"temperament"`
	ImageURL    string `json:"image_url"`
	Vaccinated  bool   `json:"vaccinated"`
}

// List handles retrieving all cats still available for adoption
func (h *CatHandler) List(c echo.Context) error {
	log := logger.FromContext(c)

	defer prometheus.TrackDBOperation("query")(time.Now())
	cats, err := h.svc.AvailableCats(c.Request().Context())
	if err != nil {
		log.Error("Failed to list cats", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve cats",
		})
	}

	log.Info("Cats retrieved successfully", zap.Int("count", len(cats)))
	return c.JSON(http.StatusOK, cats)
}

// Get handles retrieving a single cat by ID
func (h *CatHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cat id"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	cat, err := h.svc.CatByID(c.Request().Context(), id)
	if err != nil {
		log.Warn("Cat not found", zap.Uint("cat_id", id), zap.Error(err))
		return c.JSON(http.StatusNotFound, echo.Map{
			"message": "cat not found",
		})
	}

	return c.JSON(http.StatusOK, cat)
}

// Create handles registering a new adoptable cat (admin only)
func (h *CatHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)

	var req CatRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "name is required",
		})
	}

	cat := model.Cat{
		Name:        req.Name,
		Age:         req.Age,
		Gender:      req.Gender,
		Breed:       req.Breed,
		Temperament: req.Temperament,
		ImageURL:    req.ImageURL,
		Vaccinated:  req.Vaccinated,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.svc.CreateCat(c.Request().Context(), &cat); err != nil {
		log.Error("Failed to create cat",
			zap.String("name", req.Name),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to create cat",
		})
	}

	log.Info("Cat created successfully",
		zap.Uint("cat_id", cat.ID),
		zap.String("name", cat.Name))
	return c.JSON(http.StatusCreated, cat)
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
