package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminUser is a user record in the admin listing.
type AdminUser struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

// GetUsers handles GET /api/admin/users. Role checks and real user
// storage are stub integrations.
func (h *Handler) GetUsers(c *gin.Context) {
	c.JSON(http.StatusOK, []AdminUser{
		{
			ID:        1,
			Username:  demoUsername,
			Email:     "demo@cronix.com",
			Role:      "trader",
			IsActive:  true,
			CreatedAt: "2025-07-24T10:00:00Z",
		},
	})
}

// ToggleUserStatus handles POST /api/admin/users/:id/toggle-status.
func (h *Handler) ToggleUserStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "User " + c.Param("id") + " status toggled successfully",
	})
}

// GetSystemHealth handles GET /api/admin/system-health.
func (h *Handler) GetSystemHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"database":   "connected",
		"redis":      "connected",
		"kucoin_api": "connected",
		"uptime":     "2h 15m",
	})
}

// GetAllOrders handles GET /api/admin/orders.
func (h *Handler) GetAllOrders(c *gin.Context) {
	c.JSON(http.StatusOK, []gin.H{
		{
			"id":         "order_123",
			"user_id":    1,
			"symbol":     "BTC-USDT",
			"side":       "buy",
			"quantity":   "0.1",
			"status":     "active",
			"created_at": "2025-07-24T10:00:00Z",
		},
	})
}
