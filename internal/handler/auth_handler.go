package handler

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"adoption-service/internal/model"
	"adoption-service/pkg/jwtutil"
	"adoption-service/pkg/logger"
	"adoption-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler serves account registration, login and profile maintenance.
// The profile fields it writes (salary, occupation, housing) feed the
// adoption eligibility check.
type AuthHandler struct {
	db *gorm.DB
}

func NewAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{db: db}
}

// Register creates a new account
func (h *AuthHandler) Register(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RegisterCounter.Inc()

	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
		Phone    string `json:"phone"`
		Bio      string `json:"bio"`
		Address  string `json:"address"`
		ImageURL string `json:"image_url"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse registration request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Username == "" || req.Email == "" || req.Name == "" || req.Password == "" || req.Address == "" {
		prometheus.RecordAuthError("incomplete_registration")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username, email, name, password and address are required"})
	}

	// Check if user already exists - track DB query
	defer prometheus.TrackDBOperation("query")(time.Now())
	var existing model.User
	result := h.db.Where("username = ? OR email = ?", req.Username, req.Email).First(&existing)
	if result.Error == nil {
		log.Warn("User already exists", zap.String("username", req.Username))
		prometheus.RecordAuthError("user_already_exists")
		return c.JSON(http.StatusConflict, echo.Map{"error": "username or email already registered"})
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		prometheus.RecordAuthError("password_hash_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	user := model.User{
		Username:   req.Username,
		Email:      req.Email,
		Name:       req.Name,
		Password:   string(hashedPassword),
		Phone:      orDash(req.Phone),
		Bio:        orDash(req.Bio),
		Address:    req.Address,
		ImageURL:   orDefaultString(req.ImageURL, "default.png"),
		Role:       "USER",
		Occupation: "-",
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := h.db.Create(&user); result.Error != nil {
		log.Error("Failed to create user", zap.Error(result.Error))
		prometheus.RecordAuthError("user_creation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	log.Info("User registered", zap.String("username", user.Username))
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Registration successful",
		"user":    user.Username,
	})
}

// Login verifies credentials and issues a JWT
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	result := h.db.Where("username = ?", req.Username).First(&user)
	if result.Error != nil {
		log.Warn("User not found", zap.String("username", req.Username))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		log.Warn("Invalid password", zap.String("username", req.Username))
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	token, err := jwtutil.GenerateToken(user.Username, user.Email, user.ID, user.Role)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	log.Info("User logged in",
		zap.String("username", user.Username),
		zap.String("role", user.Role))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Login successful",
		"token":   token,
		"user": map[string]interface{}{
			"username":  user.Username,
			"name":      user.Name,
			"image_url": user.ImageURL,
			"role":      user.Role,
		},
	})
}

// Me returns the bearer's profile
func (h *AuthHandler) Me(c echo.Context) error {
	log := logger.FromContext(c)
	username, _ := c.Get("username").(string)

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	if result := h.db.Where("username = ?", username).First(&user); result.Error != nil {
		log.Warn("User not found", zap.String("username", username))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	return c.JSON(http.StatusOK, user)
}

// ProfileUpdateRequest carries the editable profile fields. Pointers so
// that omitted fields stay untouched.
type ProfileUpdateRequest struct {
	Name       *string  `json:"name"`
	Email      *string  `json:"email"`
	Phone      *string  `json:"phone"`
	Bio        *string  `json:"bio"`
	Address    *string  `json:"address"`
	ImageURL   *string  `json:"image_url"`
	Salary     *float64 `json:"salary"`
	Occupation *string  `json:"occupation"`
	HouseSize  *string  `json:"house_size"`
	HasYard    *bool    `json:"has_yard"`
	CatCount   *int     `json:"cat_count"`
}

// UpdateProfile updates an account's profile, including the fields the
// adoption eligibility gate reads
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	log := logger.FromContext(c)
	username := c.Param("username")

	var req ProfileUpdateRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse profile update", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	if result := h.db.Where("username = ?", username).First(&user); result.Error != nil {
		log.Warn("User not found for update", zap.String("username", username))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	updates := map[string]interface{}{}
	setString := func(column string, v *string) {
		if v != nil {
			updates[column] = *v
		}
	}
	setString("name", req.Name)
	setString("email", req.Email)
	setString("phone", req.Phone)
	setString("bio", req.Bio)
	setString("address", req.Address)
	setString("image_url", req.ImageURL)
	setString("occupation", req.Occupation)
	setString("house_size", req.HouseSize)
	if req.Salary != nil {
		updates["salary"] = *req.Salary
	}
	if req.HasYard != nil {
		updates["has_yard"] = *req.HasYard
	}
	if req.CatCount != nil {
		updates["cat_count"] = *req.CatCount
	}

	if len(updates) == 0 {
		return c.JSON(http.StatusOK, echo.Map{"status": "success", "user": user})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := h.db.Model(&user).Updates(updates); result.Error != nil {
		log.Error("Failed to update profile",
			zap.String("username", username),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update profile"})
	}

	log.Info("Profile updated", zap.String("username", username))
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "success",
		"message": "Profile updated",
		"user":    user,
	})
}

// ForgotPassword issues a six-digit reset code with a one-hour lifetime.
// Delivery happens outside this service; the code is logged so operators
// can relay it while no mail collaborator is wired up.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse forgot-password request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email is required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	if result := h.db.Where("email = ?", req.Email).First(&user); result.Error != nil {
		log.Warn("Forgot-password for unknown email", zap.String("email", req.Email))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusNotFound, echo.Map{"error": "email not registered"})
	}

	code, err := generateResetCode()
	if err != nil {
		log.Error("Failed to generate reset code", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to issue reset code"})
	}

	expires := time.Now().Add(time.Hour)
	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := h.db.Model(&user).Updates(map[string]interface{}{
		"reset_token":   code,
		"reset_expires": expires,
	}); result.Error != nil {
		log.Error("Failed to store reset code", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to issue reset code"})
	}

	log.Info("Password reset code issued",
		zap.String("username", user.Username),
		zap.String("code", code))
	return c.JSON(http.StatusOK, echo.Map{"message": "Reset code sent to your email."})
}

// VerifyOTP checks a reset code without consuming it, so the client can
// gate the new-password form
func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		Token string `json:"token"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse verify-otp request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"valid": false, "message": "token is required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	if _, err := h.userByResetToken(req.Token); err != nil {
		prometheus.RecordAuthError("invalid_reset_token")
		return c.JSON(http.StatusBadRequest, echo.Map{"valid": false, "message": "invalid or expired code"})
	}

	return c.JSON(http.StatusOK, echo.Map{"valid": true, "message": "code is valid"})
}

// ResetPassword consumes a valid reset code: the password is re-hashed and
// the code is cleared so it cannot be replayed
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse reset-password request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Token == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token and password are required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	user, err := h.userByResetToken(req.Token)
	if err != nil {
		prometheus.RecordAuthError("invalid_reset_token")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired code"})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		prometheus.RecordAuthError("password_hash_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to reset password"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := h.db.Model(user).Updates(map[string]interface{}{
		"password":      string(hashedPassword),
		"reset_token":   nil,
		"reset_expires": nil,
	}); result.Error != nil {
		log.Error("Failed to reset password", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to reset password"})
	}

	log.Info("Password reset", zap.String("username", user.Username))
	return c.JSON(http.StatusOK, echo.Map{"message": "Password changed successfully."})
}

func (h *AuthHandler) userByResetToken(token string) (*model.User, error) {
	var user model.User
	result := h.db.Where("reset_token = ? AND reset_expires > ?", token, time.Now()).First(&user)
	if result.Error != nil {
		return nil, result.Error
	}
	return &user, nil
}

func generateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func orDash(s string) string {
	return orDefaultString(s, "-")
}

func orDefaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
