package handlers

import (
	"errors"
	"net/http"

	"github.com/crownvote/pageant-backend/internal/models"
	"github.com/crownvote/pageant-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService     services.AuthService
	activityService *services.ActivityLogService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService services.AuthService, activityService *services.ActivityLogService) *AuthHandler {
	return &AuthHandler{
		authService:     authService,
		activityService: activityService,
	}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var request models.LoginRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.authService.Login(c.Request.Context(), &request)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed: " + err.Error()})
		return
	}

	h.activityService.Record(c.Request.Context(), request.Email, "ADMIN_LOGIN", "", nil)
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Register handles POST /auth/register (protected; admins create accounts)
func (h *AuthHandler) Register(c *gin.Context) {
	var request models.RegisterRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	adminUser, err := h.authService.Register(c.Request.Context(), &request)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Registration failed: " + err.Error()})
		return
	}

	h.activityService.Record(c.Request.Context(), actorFromContext(c), "ADMIN_REGISTERED", adminUser.Email, nil)
	c.JSON(http.StatusCreated, adminUser)
}
