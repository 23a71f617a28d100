package main

import (
	"net/http"

	"adoption-service/internal/adoption"
	"adoption-service/internal/handler"
	mid "adoption-service/internal/middleware"
	"adoption-service/pkg/config"
	"adoption-service/pkg/database"
	"adoption-service/pkg/jwtutil"
	"adoption-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration (.env is read by config.Load when present)
	appConfig, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	if err := logger.InitLogger(appConfig); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting adoption-service",
		zap.String("environment", appConfig.Server.Env),
		zap.String("port", appConfig.Server.Port))

	// Initialize JWT utility
	jwtutil.Initialize(&appConfig.JWT)
	log.Info("JWT utility initialized")

	// Connect database; the handle is passed into the handlers explicitly
	db, err := database.Connect(appConfig)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Services and handlers
	adoptionSvc := adoption.NewService(db)
	catHandler := handler.NewCatHandler(adoptionSvc)
	adoptionHandler := handler.NewAdoptionHandler(adoptionSvc)
	authHandler := handler.NewAuthHandler(db)
	reportHandler := handler.NewReportHandler(db)
	donationHandler := handler.NewDonationHandler(db)
	responsibilityHandler := handler.NewResponsibilityHandler(db)
	statsHandler := handler.NewStatsHandler(db)

	// Initialize Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware)
	e.Use(logger.Middleware())

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Auth routes
	auth := e.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/me", authHandler.Me, mid.AuthMiddleware)
	auth.PUT("/update/:username", authHandler.UpdateProfile, mid.AuthMiddleware)
	auth.POST("/forgot-password", authHandler.ForgotPassword)
	auth.POST("/verify-otp", authHandler.VerifyOTP)
	auth.POST("/reset-password", authHandler.ResetPassword)

	// Cat and adoption routes
	cats := e.Group("/cats")
	cats.GET("", catHandler.List)
	cats.GET("/pending/:username", adoptionHandler.Pending)
	cats.GET("/history/:username", adoptionHandler.History)
	cats.GET("/requests", adoptionHandler.Queue, mid.AuthMiddleware, mid.RequireAdmin)
	cats.GET("/:id", catHandler.Get)
	cats.POST("", catHandler.Create, mid.AuthMiddleware, mid.RequireAdmin)
	cats.PUT("/adopt/:id", adoptionHandler.Submit)
	cats.PUT("/take/:id", adoptionHandler.Take)
	cats.PUT("/requests/approve/:id", adoptionHandler.Approve, mid.AuthMiddleware, mid.RequireAdmin)
	cats.PUT("/requests/reject/:id", adoptionHandler.Reject, mid.AuthMiddleware, mid.RequireAdmin)

	// Stray-cat report routes
	reports := e.Group("/reports")
	reports.POST("", reportHandler.Create)
	reports.GET("/history/:username", reportHandler.History)
	reports.GET("/all", reportHandler.All)
	reports.PUT("/respond/:id", reportHandler.Respond, mid.AuthMiddleware, mid.RequireAdmin)

	// Donation routes
	donations := e.Group("/donations")
	donations.POST("", donationHandler.Create)
	donations.GET("", donationHandler.List)
	donations.GET("/history/:username", donationHandler.History)

	// Post-adoption check-in routes
	responsibilities := e.Group("/responsibilities")
	responsibilities.POST("", responsibilityHandler.Create, mid.AuthMiddleware)
	responsibilities.GET("/:id", responsibilityHandler.History)

	// Shelter stats
	e.GET("/stats", statsHandler.Get)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}
