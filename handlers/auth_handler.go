package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/Shravan4507/orbitx-checkin-engine/database"
	"github.com/Shravan4507/orbitx-checkin-engine/models"
)

/* ====================== Config & Helpers ====================== */

type AuthHandler struct {
	JWTSecret string
}

func NewAuthHandler(secret string) *AuthHandler {
	if secret == "" {
		secret = "dev-secret" // set JWT_SECRET in .env for real use
	}
	return &AuthHandler{JWTSecret: secret}
}

func (h *AuthHandler) signJWT(sub uint, actor, role, deviceID string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":       sub,
		"actor":     actor,
		"role":      role,
		"device_id": deviceID,
		"exp":       time.Now().Add(ttl).Unix(),
		"iat":       time.Now().Unix(),
	}
	tk := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tk.SignedString([]byte(h.JWTSecret))
}

/* ====================== Handlers ====================== */

type LoginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
	// DeviceID identifies the scan station; a fresh one is minted when the
	// client does not send its own.
	DeviceID string `json:"device_id"`
}

// POST /auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}

	username := strings.TrimSpace(strings.ToLower(req.Username))
	if username == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "MISSING_FIELDS"})
	}

	var op models.Operator
	if err := database.Get().Where("username = ?", username).First(&op).Error; err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, map[string]any{"error": "INVALID_CREDENTIALS"})
	}
	if bcrypt.CompareHashAndPassword([]byte(op.Password), []byte(req.Password)) != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, map[string]any{"error": "INVALID_CREDENTIALS"})
	}

	deviceID := strings.TrimSpace(req.DeviceID)
	if deviceID == "" {
		deviceID = uuid.NewString()
	}

	token, err := h.signJWT(op.ID, op.Username, op.Role, deviceID, 12*time.Hour)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]any{"error": "SIGN_FAILED"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"token":     token,
		"device_id": deviceID,
		"operator": map[string]any{
			"id":       op.ID,
			"username": op.Username,
			"role":     op.Role,
			"name":     op.Name,
		},
	})
}
