package api

import (
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/matcheco/matcheco/backend/portal-service/internal/db"
	"github.com/matcheco/matcheco/backend/portal-service/internal/models"
)

// Register handles POST /api/auth/register
func (h *Handler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}
	if req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: "Email and password are required.",
		})
		return
	}
	if len(req.Password) < 8 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: "Password must be at least 8 characters.",
		})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.DB.CreateUser(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, db.ErrDuplicateEmail) {
			c.JSON(http.StatusConflict, models.ErrorResponse{
				Error: "Email already registered.",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Registration failed.",
			Message: err.Error(),
		})
		return
	}

	token, err := generateJWTToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Registration failed.",
			Message: "Could not issue token",
		})
		return
	}

	c.JSON(http.StatusCreated, models.AuthResponse{
		Token: token,
		User:  models.AuthUser{ID: user.ID, Email: user.Email},
	})
}

// Login handles POST /api/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}
	if req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: "Email and password are required.",
		})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.DB.GetUserByEmail(ctx, req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Login failed.",
			Message: err.Error(),
		})
		return
	}
	if user == nil || !h.DB.ValidatePassword(user, req.Password) {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error: "Invalid credentials.",
		})
		return
	}

	token, err := generateJWTToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Login failed.",
			Message: "Could not issue token",
		})
		return
	}

	c.JSON(http.StatusOK, models.AuthResponse{
		Token: token,
		User:  models.AuthUser{ID: user.ID, Email: user.Email},
	})
}

// Me handles GET /api/auth/me
func (h *Handler) Me(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.DB.GetUserByID(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Lookup failed",
			Message: err.Error(),
		})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":         user.ID,
		"email":      user.Email,
		"created_at": user.CreatedAt,
	})
}

// generateJWTToken creates a JWT token for the user
func generateJWTToken(user *models.User) (string, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return "", errors.New("JWT_SECRET not configured")
	}

	expirationDays := 7
	if v := os.Getenv("JWT_EXPIRATION_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil && days > 0 {
			expirationDays = days
		}
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": strconv.FormatInt(user.ID, 10),
		"email":   user.Email,
		"iat":     now.Unix(),
		"exp":     now.Add(time.Duration(expirationDays) * 24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
