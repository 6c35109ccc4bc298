package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/cronix/trading-terminal/internal/domain"
)

// Balance is one currency balance in a portfolio.
type Balance struct {
	Currency  string          `json:"currency"`
	Available decimal.Decimal `json:"available"`
	Frozen    decimal.Decimal `json:"frozen"`
}

// Portfolio is the demo portfolio response.
type Portfolio struct {
	Balances      []Balance       `json:"balances"`
	TotalValueUSD decimal.Decimal `json:"total_value_usd"`
}

// ExchangeOrderRequest is the request body for placing a plain exchange
// order.
type ExchangeOrderRequest struct {
	Symbol   string           `json:"symbol" binding:"required"`
	Side     domain.Side      `json:"side" binding:"required"`
	Type     string           `json:"type" binding:"required"`
	Quantity decimal.Decimal  `json:"quantity"`
	Price    *decimal.Decimal `json:"price"`
}

// ExchangeOrder is the demo exchange order response.
type ExchangeOrder struct {
	ID        string           `json:"id"`
	Symbol    string           `json:"symbol"`
	Side      domain.Side      `json:"side"`
	Type      string           `json:"type"`
	Quantity  decimal.Decimal  `json:"quantity"`
	Price     *decimal.Decimal `json:"price,omitempty"`
	Status    string           `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
}

// GetPortfolio handles GET /api/trading/portfolio. Exchange portfolio
// retrieval is stubbed with demo holdings.
func (h *Handler) GetPortfolio(c *gin.Context) {
	c.JSON(http.StatusOK, Portfolio{
		Balances: []Balance{
			{Currency: "BTC", Available: decimal.NewFromFloat(0.5), Frozen: decimal.Zero},
			{Currency: "USDT", Available: decimal.NewFromInt(1000), Frozen: decimal.Zero},
		},
		TotalValueUSD: decimal.NewFromInt(25000),
	})
}

// GetBalance handles GET /api/trading/balance.
func (h *Handler) GetBalance(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"BTC":  gin.H{"available": "0.5", "frozen": "0.0"},
		"USDT": gin.H{"available": "1000.0", "frozen": "0.0"},
		"ETH":  gin.H{"available": "2.0", "frozen": "0.0"},
	})
}

// PlaceExchangeOrder handles POST /api/trading/orders. Order routing to
// the exchange is stubbed; the request is echoed back as an active order.
func (h *Handler) PlaceExchangeOrder(c *gin.Context) {
	var req ExchangeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, ExchangeOrder{
		ID:        "demo_order_123",
		Symbol:    req.Symbol,
		Side:      req.Side,
		Type:      req.Type,
		Quantity:  req.Quantity,
		Price:     req.Price,
		Status:    "active",
		CreatedAt: time.Now().UTC(),
	})
}

// GetExchangeOrders handles GET /api/trading/orders.
func (h *Handler) GetExchangeOrders(c *gin.Context) {
	price := decimal.NewFromInt(50000)
	c.JSON(http.StatusOK, []ExchangeOrder{
		{
			ID:        "demo_order_123",
			Symbol:    "BTC-USDT",
			Side:      domain.SideBuy,
			Type:      "limit",
			Quantity:  decimal.NewFromFloat(0.1),
			Price:     &price,
			Status:    "active",
			CreatedAt: time.Date(2025, 7, 24, 10, 0, 0, 0, time.UTC),
		},
	})
}

// CancelExchangeOrder handles DELETE /api/trading/orders/:id.
func (h *Handler) CancelExchangeOrder(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Order " + c.Param("id") + " cancelled successfully",
	})
}

// GetSymbols handles GET /api/trading/symbols.
func (h *Handler) GetSymbols(c *gin.Context) {
	c.JSON(http.StatusOK, []gin.H{
		{"symbol": "BTC-USDT", "base": "BTC", "quote": "USDT"},
		{"symbol": "ETH-USDT", "base": "ETH", "quote": "USDT"},
		{"symbol": "ETH-BTC", "base": "ETH", "quote": "BTC"},
	})
}
