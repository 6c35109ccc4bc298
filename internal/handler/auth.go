package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Demo credentials; real authentication is a stub integration for now.
const (
	demoUsername = "demo"
	demoPassword = "demo"
	demoToken    = "demo_token_123"
)

// LoginRequest is the request body for login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest is the request body for registration.
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is returned by login and register.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      int    `json:"user_id"`
	Username    string `json:"username"`
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Username != demoUsername || req.Password != demoPassword {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	c.JSON(http.StatusOK, TokenResponse{
		AccessToken: demoToken,
		TokenType:   "bearer",
		UserID:      1,
		Username:    req.Username,
	})
}

// Register handles POST /api/auth/register.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, TokenResponse{
		AccessToken: demoToken,
		TokenType:   "bearer",
		UserID:      1,
		Username:    req.Username,
	})
}

// Logout handles POST /api/auth/logout.
func (h *Handler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}

// CurrentUser handles GET /api/auth/me.
func (h *Handler) CurrentUser(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"id":       1,
		"username": demoUsername,
		"email":    "demo@cronix.com",
		"role":     "trader",
	})
}
