package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cronix/trading-terminal/internal/bracket"
	"github.com/cronix/trading-terminal/internal/middleware"
)

// Hub tracks connected terminal clients and their per-symbol price
// subscriptions, and fans messages out to them. It doubles as the audit
// sink for order lifecycle events: every create/update/cancel is pushed
// to all connected clients.
type Hub struct {
	mu          sync.RWMutex
	clients     map[string]*Client         // clientID -> client
	subscribers map[string]map[string]bool // symbol -> clientIDs

	log *zap.Logger
}

// NewHub creates an empty hub.
func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		clients:     make(map[string]*Client),
		subscribers: make(map[string]map[string]bool),
		log:         log,
	}
}

// addClient registers a client. A second connection with the same id
// replaces the first, which is closed.
func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	old, replaced := h.clients[c.id]
	h.clients[c.id] = c
	count := len(h.clients)
	h.mu.Unlock()

	if replaced {
		old.closeSend()
	}
	middleware.WSConnections.Set(float64(count))
	h.log.Info("client connected",
		zap.String("client_id", c.id),
		zap.Int("total_connections", count),
	)
}

// removeClient drops a client and all of its subscriptions.
func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	if current, ok := h.clients[c.id]; !ok || current != c {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c.id)
	for symbol, subs := range h.subscribers {
		delete(subs, c.id)
		if len(subs) == 0 {
			delete(h.subscribers, symbol)
		}
	}
	count := len(h.clients)
	h.mu.Unlock()

	c.closeSend()
	middleware.WSConnections.Set(float64(count))
	h.log.Info("client disconnected",
		zap.String("client_id", c.id),
		zap.Int("total_connections", count),
	)
}

// subscribe adds a client to a symbol's price subscription list.
func (h *Hub) subscribe(clientID, symbol string) {
	h.mu.Lock()
	subs, ok := h.subscribers[symbol]
	if !ok {
		subs = make(map[string]bool)
		h.subscribers[symbol] = subs
	}
	subs[clientID] = true
	h.mu.Unlock()

	h.sendTo(clientID, subscriptionMessage{
		Type:   "subscription",
		Symbol: symbol,
		Status: "subscribed",
	})
}

// unsubscribe removes a client from a symbol's subscription list.
func (h *Hub) unsubscribe(clientID, symbol string) {
	h.mu.Lock()
	if subs, ok := h.subscribers[symbol]; ok {
		delete(subs, clientID)
		if len(subs) == 0 {
			delete(h.subscribers, symbol)
		}
	}
	h.mu.Unlock()

	h.sendTo(clientID, subscriptionMessage{
		Type:   "subscription",
		Symbol: symbol,
		Status: "unsubscribed",
	})
}

type subscriptionMessage struct {
	Type   string `json:"type"`
	Symbol string `json:"symbol"`
	Status string `json:"status"`
}

type priceUpdateMessage struct {
	Type   string    `json:"type"`
	Symbol string    `json:"symbol"`
	Data   priceData `json:"data"`
}

type priceData struct {
	Price     decimal.Decimal `json:"price"`
	Timestamp time.Time       `json:"timestamp"`
}

type orderUpdateMessage struct {
	Type  string `json:"type"`
	Event string `json:"event"`
	Order any    `json:"order"`
}

// BroadcastPrice pushes a price update to every client subscribed to the
// symbol. Implements pricing.Broadcaster.
func (h *Hub) BroadcastPrice(symbol string, price decimal.Decimal) {
	payload, err := json.Marshal(priceUpdateMessage{
		Type:   "price_update",
		Symbol: symbol,
		Data:   priceData{Price: price, Timestamp: time.Now()},
	})
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for clientID := range h.subscribers[symbol] {
		if c, ok := h.clients[clientID]; ok {
			c.trySend(payload)
		}
	}
}

// Publish fans an order lifecycle event out to every connected client.
// Implements bracket.EventSink.
func (h *Hub) Publish(event bracket.Event) {
	payload, err := json.Marshal(orderUpdateMessage{
		Type:  "order_update",
		Event: string(event.Type),
		Order: event.Order,
	})
	if err != nil {
		return
	}
	h.broadcast(payload)
}

// broadcast sends a payload to every connected client.
func (h *Hub) broadcast(payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		c.trySend(payload)
	}
}

// sendTo sends a message to a single client, dropping it if the client
// is gone or its buffer is full.
func (h *Hub) sendTo(clientID string, msg any) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}

	h.mu.RLock()
	c, ok := h.clients[clientID]
	h.mu.RUnlock()
	if ok {
		c.trySend(payload)
	}
}

// ConnectionCount returns the number of connected clients.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
