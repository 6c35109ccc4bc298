package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cronix/trading-terminal/internal/bracket"
	"github.com/cronix/trading-terminal/internal/domain"
	"github.com/cronix/trading-terminal/internal/middleware"
	"github.com/cronix/trading-terminal/internal/pricing"
)

// Handler holds the HTTP handler dependencies.
type Handler struct {
	store  bracket.Store
	oracle pricing.Oracle
	log    *zap.Logger
}

// NewHandler creates a new Handler.
func NewHandler(store bracket.Store, oracle pricing.Oracle, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		store:  store,
		oracle: oracle,
		log:    log,
	}
}

// RegisterRoutes sets up the Gin routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", h.Login)
			auth.POST("/register", h.Register)
			auth.POST("/logout", h.Logout)
			auth.GET("/me", h.CurrentUser)
		}

		trading := api.Group("/trading")
		{
			trading.GET("/portfolio", h.GetPortfolio)
			trading.GET("/balance", h.GetBalance)
			trading.POST("/orders", h.PlaceExchangeOrder)
			trading.GET("/orders", h.GetExchangeOrders)
			trading.DELETE("/orders/:id", h.CancelExchangeOrder)
			trading.GET("/symbols", h.GetSymbols)
		}

		// The :id segment doubles as the symbol for the market-price
		// route; gin requires one param name per position.
		brackets := api.Group("/bracket-orders")
		{
			brackets.POST("", h.CreateBracketOrder)
			brackets.GET("", h.ListBracketOrders)
			brackets.GET("/:id", h.GetBracketOrder)
			brackets.PUT("/:id", h.UpdateBracketOrder)
			brackets.DELETE("/:id", h.CancelBracketOrder)
			brackets.GET("/:id/market-price", h.GetMarketPrice)
		}

		admin := api.Group("/admin")
		{
			admin.GET("/users", h.GetUsers)
			admin.POST("/users/:id/toggle-status", h.ToggleUserStatus)
			admin.GET("/system-health", h.GetSystemHealth)
			admin.GET("/orders", h.GetAllOrders)
		}
	}
}

// Root returns the service banner.
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Cronix Trading Terminal API",
		"status":  "running",
	})
}

// Health returns a health check response.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "cronix-api",
	})
}

// TakeProfitLevelRequest is one take-profit leg in a request body.
type TakeProfitLevelRequest struct {
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
}

// CreateBracketOrderRequest is the request body for creating a bracket order.
type CreateBracketOrderRequest struct {
	Symbol           string                   `json:"symbol" binding:"required"`
	Side             domain.Side              `json:"side" binding:"required"`
	Quantity         decimal.Decimal          `json:"quantity"`
	EntryType        domain.EntryType         `json:"entry_type" binding:"required"`
	EntryPrice       *decimal.Decimal         `json:"entry_price"`
	StopLossPrice    *decimal.Decimal         `json:"stop_loss_price"`
	TakeProfitLevels []TakeProfitLevelRequest `json:"take_profit_levels"`
}

// UpdateBracketOrderRequest is the request body for updating a pending
// bracket order. Omitted fields are left unchanged.
type UpdateBracketOrderRequest struct {
	EntryPrice       *decimal.Decimal          `json:"entry_price"`
	StopLossPrice    *decimal.Decimal          `json:"stop_loss_price"`
	TakeProfitLevels *[]TakeProfitLevelRequest `json:"take_profit_levels"`
}

func toDomainLevels(levels []TakeProfitLevelRequest) []domain.TakeProfitLevel {
	out := make([]domain.TakeProfitLevel, len(levels))
	for i, l := range levels {
		out[i] = domain.TakeProfitLevel{Price: l.Price, Quantity: l.Quantity}
	}
	return out
}

// CreateBracketOrder handles POST /api/bracket-orders.
func (h *Handler) CreateBracketOrder(c *gin.Context) {
	var req CreateBracketOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Side != domain.SideBuy && req.Side != domain.SideSell {
		c.JSON(http.StatusBadRequest, gin.H{"error": "side must be 'buy' or 'sell'"})
		return
	}
	if req.EntryType != domain.EntryTypeMarket && req.EntryType != domain.EntryTypeLimit {
		c.JSON(http.StatusBadRequest, gin.H{"error": "entry_type must be 'market' or 'limit'"})
		return
	}

	order, err := h.store.Create(bracket.Spec{
		Symbol:           req.Symbol,
		Side:             req.Side,
		Quantity:         req.Quantity,
		EntryType:        req.EntryType,
		EntryPrice:       req.EntryPrice,
		StopLossPrice:    req.StopLossPrice,
		TakeProfitLevels: toDomainLevels(req.TakeProfitLevels),
	})
	if err != nil {
		h.rejectBracketError(c, "create", err)
		return
	}

	middleware.BracketOrdersTotal.WithLabelValues("create", "ok").Inc()
	c.JSON(http.StatusCreated, order)
}

// ListBracketOrders handles GET /api/bracket-orders.
func (h *Handler) ListBracketOrders(c *gin.Context) {
	orders := h.store.List(c.Query("symbol"))
	c.JSON(http.StatusOK, orders)
}

// GetBracketOrder handles GET /api/bracket-orders/:id.
func (h *Handler) GetBracketOrder(c *gin.Context) {
	order, err := h.store.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Bracket order not found"})
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdateBracketOrder handles PUT /api/bracket-orders/:id.
func (h *Handler) UpdateBracketOrder(c *gin.Context) {
	var req UpdateBracketOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patch := bracket.Patch{
		EntryPrice:    req.EntryPrice,
		StopLossPrice: req.StopLossPrice,
	}
	if req.TakeProfitLevels != nil {
		patch.TakeProfitLevels = toDomainLevels(*req.TakeProfitLevels)
	}

	order, err := h.store.Update(c.Param("id"), patch)
	if err != nil {
		h.rejectBracketError(c, "update", err)
		return
	}

	middleware.BracketOrdersTotal.WithLabelValues("update", "ok").Inc()
	c.JSON(http.StatusOK, order)
}

// CancelBracketOrder handles DELETE /api/bracket-orders/:id.
func (h *Handler) CancelBracketOrder(c *gin.Context) {
	id := c.Param("id")
	if !h.store.Cancel(id) {
		middleware.BracketOrdersTotal.WithLabelValues("cancel", "not_found").Inc()
		c.JSON(http.StatusNotFound, gin.H{"error": "Bracket order not found or cannot be cancelled"})
		return
	}

	middleware.BracketOrdersTotal.WithLabelValues("cancel", "ok").Inc()
	c.JSON(http.StatusOK, gin.H{"message": "Bracket order " + id + " cancelled successfully"})
}

// GetMarketPrice handles GET /api/bracket-orders/:id/market-price, where
// the path segment is a symbol.
func (h *Handler) GetMarketPrice(c *gin.Context) {
	symbol := c.Param("id")
	price := h.oracle.PriceFor(symbol)
	c.JSON(http.StatusOK, gin.H{
		"symbol": symbol,
		"price":  price.String(),
	})
}

// rejectBracketError maps store errors onto the API error taxonomy:
// validation failures are 400 with the rule message, missing or
// non-editable orders are 404 (409 under strict status errors), anything
// else is a generic 500.
func (h *Handler) rejectBracketError(c *gin.Context, action string, err error) {
	var ve *bracket.ValidationError
	switch {
	case errors.As(err, &ve):
		middleware.BracketOrdersTotal.WithLabelValues(action, "rejected").Inc()
		middleware.ValidationFailuresTotal.WithLabelValues(string(ve.Rule)).Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Message})
	case errors.Is(err, bracket.ErrNotFound):
		middleware.BracketOrdersTotal.WithLabelValues(action, "not_found").Inc()
		c.JSON(http.StatusNotFound, gin.H{"error": "Bracket order not found or cannot be updated"})
	case errors.Is(err, bracket.ErrImmutableStatus):
		middleware.BracketOrdersTotal.WithLabelValues(action, "conflict").Inc()
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		middleware.BracketOrdersTotal.WithLabelValues(action, "error").Inc()
		h.log.Error("bracket order operation failed",
			zap.String("action", action),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action + " bracket order"})
	}
}
