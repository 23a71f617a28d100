package jwtutil

import (
	"time"

	"adoption-service/pkg/config"

	"github.com/golang-jwt/jwt/v5"
)

var (
	secret     = []byte("secret-key")
	expiration = time.Hour * 24
)

// Initialize sets the signing key and token lifetime from configuration
func Initialize(cfg *config.JWTConfig) {
	if cfg.SigningKey != "" {
		secret = []byte(cfg.SigningKey)
	}
	if cfg.ExpirationTime > 0 {
		expiration = cfg.ExpirationTime
	}
}

// UserClaims represents the JWT claims for user authentication
type UserClaims struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	UserID   uint   `json:"user_id"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken creates a JWT token with user information
func GenerateToken(username, email string, userID uint, role string) (string, error) {
	claims := UserClaims{
		Username: username,
		Email:    email,
		UserID:   userID,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken validates and parses the JWT token
func ValidateToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}
