package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cronix/trading-terminal/internal/bracket"
	"github.com/cronix/trading-terminal/internal/domain"
	"github.com/cronix/trading-terminal/internal/pricing"
)

func newTestRouter() (*gin.Engine, *bracket.MemoryStore) {
	gin.SetMode(gin.TestMode)

	store := bracket.NewMemoryStore(zap.NewNop())
	oracle := pricing.NewStaticOracle(nil)
	h := NewHandler(store, oracle, zap.NewNop())

	r := gin.New()
	h.RegisterRoutes(r)
	return r, store
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func validCreateBody() gin.H {
	return gin.H{
		"symbol":          "BTC-USDT",
		"side":            "buy",
		"quantity":        "1",
		"entry_type":      "limit",
		"entry_price":     "50000",
		"stop_loss_price": "49000",
		"take_profit_levels": []gin.H{
			{"price": "51000", "quantity": "0.5"},
			{"price": "52000", "quantity": "0.5"},
		},
	}
}

func decodeOrder(t *testing.T, w *httptest.ResponseRecorder) domain.BracketOrder {
	t.Helper()
	var order domain.BracketOrder
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	return order
}

func TestCreateBracketOrder(t *testing.T) {
	r, _ := newTestRouter()

	w := doJSON(t, r, http.MethodPost, "/api/bracket-orders", validCreateBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	order := decodeOrder(t, w)
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.True(t, order.RemainingQuantity.Equal(decimal.NewFromInt(1)))
	assert.Len(t, order.TakeProfitLevels, 2)
}

func TestCreateBracketOrder_ValidationFailure(t *testing.T) {
	r, _ := newTestRouter()

	// Descending take profits on a BUY.
	body := validCreateBody()
	body["take_profit_levels"] = []gin.H{
		{"price": "52000", "quantity": "0.5"},
		{"price": "51000", "quantity": "0.5"},
	}
	w := doJSON(t, r, http.MethodPost, "/api/bracket-orders", body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "lowest to highest")
}

func TestCreateBracketOrder_BadSide(t *testing.T) {
	r, _ := newTestRouter()

	body := validCreateBody()
	body["side"] = "hold"
	w := doJSON(t, r, http.MethodPost, "/api/bracket-orders", body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "side must be")
}

func TestCreateBracketOrder_QuantityBudgetExceeded(t *testing.T) {
	r, _ := newTestRouter()

	w := doJSON(t, r, http.MethodPost, "/api/bracket-orders", gin.H{
		"symbol":      "ETH-USDT",
		"side":        "sell",
		"quantity":    "2",
		"entry_type":  "limit",
		"entry_price": "3000",
		"take_profit_levels": []gin.H{
			{"price": "2900", "quantity": "1"},
			{"price": "2800", "quantity": "1.5"},
		},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "cannot exceed order quantity")
}

func TestListBracketOrders_SymbolFilter(t *testing.T) {
	r, _ := newTestRouter()

	require.Equal(t, http.StatusCreated,
		doJSON(t, r, http.MethodPost, "/api/bracket-orders", validCreateBody()).Code)

	ethBody := validCreateBody()
	ethBody["symbol"] = "ETH-USDT"
	ethBody["entry_price"] = "3000"
	ethBody["stop_loss_price"] = "2900"
	ethBody["take_profit_levels"] = []gin.H{{"price": "3100", "quantity": "1"}}
	require.Equal(t, http.StatusCreated,
		doJSON(t, r, http.MethodPost, "/api/bracket-orders", ethBody).Code)

	w := doJSON(t, r, http.MethodGet, "/api/bracket-orders?symbol=ETH-USDT", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var orders []domain.BracketOrder
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &orders))
	require.Len(t, orders, 1)
	assert.Equal(t, "ETH-USDT", orders[0].Symbol)
}

func TestGetBracketOrder(t *testing.T) {
	r, _ := newTestRouter()

	created := decodeOrder(t, doJSON(t, r, http.MethodPost, "/api/bracket-orders", validCreateBody()))

	w := doJSON(t, r, http.MethodGet, "/api/bracket-orders/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created.ID, decodeOrder(t, w).ID)

	w = doJSON(t, r, http.MethodGet, "/api/bracket-orders/nonexistent", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateBracketOrder(t *testing.T) {
	r, _ := newTestRouter()

	created := decodeOrder(t, doJSON(t, r, http.MethodPost, "/api/bracket-orders", validCreateBody()))

	w := doJSON(t, r, http.MethodPut, "/api/bracket-orders/"+created.ID, gin.H{
		"stop_loss_price": "49500",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	updated := decodeOrder(t, w)
	require.NotNil(t, updated.StopLossPrice)
	assert.True(t, updated.StopLossPrice.Equal(decimal.NewFromInt(49500)))
}

func TestUpdateBracketOrder_ValidationFailure(t *testing.T) {
	r, _ := newTestRouter()

	created := decodeOrder(t, doJSON(t, r, http.MethodPost, "/api/bracket-orders", validCreateBody()))

	w := doJSON(t, r, http.MethodPut, "/api/bracket-orders/"+created.ID, gin.H{
		"stop_loss_price": "51000",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateBracketOrder_NotFound(t *testing.T) {
	r, _ := newTestRouter()

	w := doJSON(t, r, http.MethodPut, "/api/bracket-orders/nonexistent", gin.H{
		"stop_loss_price": "49500",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateBracketOrder_CancelledOrderReportsNotFound(t *testing.T) {
	r, _ := newTestRouter()

	created := decodeOrder(t, doJSON(t, r, http.MethodPost, "/api/bracket-orders", validCreateBody()))
	require.Equal(t, http.StatusOK,
		doJSON(t, r, http.MethodDelete, "/api/bracket-orders/"+created.ID, nil).Code)

	w := doJSON(t, r, http.MethodPut, "/api/bracket-orders/"+created.ID, gin.H{
		"stop_loss_price": "49500",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCancelBracketOrder(t *testing.T) {
	r, _ := newTestRouter()

	created := decodeOrder(t, doJSON(t, r, http.MethodPost, "/api/bracket-orders", validCreateBody()))

	w := doJSON(t, r, http.MethodDelete, "/api/bracket-orders/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "cancelled successfully")

	// A second cancel is a 404.
	w = doJSON(t, r, http.MethodDelete, "/api/bracket-orders/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetMarketPrice(t *testing.T) {
	r, _ := newTestRouter()

	w := doJSON(t, r, http.MethodGet, "/api/bracket-orders/BTC-USDT/market-price", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "BTC-USDT", resp.Symbol)
	assert.Equal(t, "45000", resp.Price)
}

func TestGetMarketPrice_UnknownSymbolUsesDefault(t *testing.T) {
	r, _ := newTestRouter()

	w := doJSON(t, r, http.MethodGet, "/api/bracket-orders/DOGE-USDT/market-price", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"price":"100"`)
}

func TestLogin(t *testing.T) {
	r, _ := newTestRouter()

	w := doJSON(t, r, http.MethodPost, "/api/auth/login", gin.H{
		"username": "demo",
		"password": "demo",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "demo_token_123")

	w = doJSON(t, r, http.MethodPost, "/api/auth/login", gin.H{
		"username": "demo",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHealthAndRoot(t *testing.T) {
	r, _ := newTestRouter()

	w := doJSON(t, r, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")

	w = doJSON(t, r, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Cronix Trading Terminal API")
}

func TestTradingStubs(t *testing.T) {
	r, _ := newTestRouter()

	w := doJSON(t, r, http.MethodGet, "/api/trading/portfolio", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "total_value_usd")

	w = doJSON(t, r, http.MethodGet, "/api/trading/symbols", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "BTC-USDT")
}
