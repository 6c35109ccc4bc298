package bracket

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cronix/trading-terminal/internal/domain"
)

// EventType labels lifecycle events emitted by the store.
type EventType string

const (
	EventCreated   EventType = "created"
	EventUpdated   EventType = "updated"
	EventCancelled EventType = "cancelled"
)

// Event is an audit record of a successful mutation. The order carried is
// a clone, safe to retain.
type Event struct {
	Type  EventType
	Order *domain.BracketOrder
}

// EventSink receives lifecycle events. Publish must not block; slow
// consumers should buffer internally.
type EventSink interface {
	Publish(Event)
}

// Patch is a partial update to a pending order. Nil fields are left
// unchanged; there is no way to unset a stop loss once placed.
type Patch struct {
	EntryPrice       *decimal.Decimal
	StopLossPrice    *decimal.Decimal
	TakeProfitLevels []domain.TakeProfitLevel
}

// Store is the lifecycle store for bracket orders. The in-memory
// implementation below is the demo backing; a durable store can be
// substituted without touching the validator.
type Store interface {
	Create(spec Spec) (*domain.BracketOrder, error)
	Get(id string) (*domain.BracketOrder, error)
	List(symbol string) []*domain.BracketOrder
	Update(id string, patch Patch) (*domain.BracketOrder, error)
	Cancel(id string) bool
}

// MemoryStore keeps canonical order records in a mutex-guarded map.
// Every mutation is atomic with respect to readers; callers only ever
// receive clones.
type MemoryStore struct {
	mu     sync.RWMutex
	orders map[string]*domain.BracketOrder

	log          *zap.Logger
	sink         EventSink
	strictStatus bool
	now          func() time.Time
}

// Option configures a MemoryStore.
type Option func(*MemoryStore)

// WithEventSink wires an audit sink for lifecycle events.
func WithEventSink(sink EventSink) Option {
	return func(s *MemoryStore) { s.sink = sink }
}

// WithStrictStatusErrors makes Update distinguish an order that exists
// but is past its editable window (ErrImmutableStatus) from a missing
// one (ErrNotFound). Off by default: the API historically reported both
// as not found.
func WithStrictStatusErrors() Option {
	return func(s *MemoryStore) { s.strictStatus = true }
}

// NewMemoryStore creates an empty in-memory lifecycle store.
func NewMemoryStore(log *zap.Logger, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		orders: make(map[string]*domain.BracketOrder),
		log:    log,
		now:    time.Now,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates a candidate order and persists it in PENDING state.
// The reference price for directional checks is the entry price for
// limit entries; market entries skip those checks. A failed validation
// leaves no partial write.
func (s *MemoryStore) Create(spec Spec) (*domain.BracketOrder, error) {
	if err := Validate(spec, spec.ReferencePrice()); err != nil {
		return nil, err
	}

	order := &domain.BracketOrder{
		ID:                uuid.New().String(),
		Symbol:            spec.Symbol,
		Side:              spec.Side,
		Quantity:          spec.Quantity,
		Status:            domain.OrderStatusPending,
		CreatedAt:         s.now(),
		EntryType:         spec.EntryType,
		EntryPrice:        spec.EntryPrice,
		StopLossPrice:     spec.StopLossPrice,
		TakeProfitLevels:  append([]domain.TakeProfitLevel(nil), spec.TakeProfitLevels...),
		RemainingQuantity: spec.Quantity,
	}
	if order.TakeProfitLevels == nil {
		order.TakeProfitLevels = []domain.TakeProfitLevel{}
	}

	s.mu.Lock()
	s.orders[order.ID] = order
	// Snapshot before the record is reachable by other writers.
	snapshot := order.Clone()
	s.mu.Unlock()

	s.log.Info("bracket order created",
		zap.String("order_id", order.ID),
		zap.String("symbol", order.Symbol),
		zap.String("side", string(order.Side)),
		zap.String("quantity", order.Quantity.String()),
	)
	s.publish(EventCreated, snapshot)

	return snapshot, nil
}

// Get returns a copy of the order with the given id.
func (s *MemoryStore) Get(id string) (*domain.BracketOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return order.Clone(), nil
}

// List returns all orders, newest first, optionally filtered by exact
// symbol match.
func (s *MemoryStore) List(symbol string) []*domain.BracketOrder {
	s.mu.RLock()
	result := make([]*domain.BracketOrder, 0, len(s.orders))
	for _, order := range s.orders {
		if symbol != "" && order.Symbol != symbol {
			continue
		}
		result = append(result, order.Clone())
	}
	s.mu.RUnlock()

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

// Update applies a patch to a pending order, re-validates the merged
// result, and commits it only on success. A failed validation leaves the
// stored order exactly as it was.
func (s *MemoryStore) Update(id string, patch Patch) (*domain.BracketOrder, error) {
	s.mu.Lock()

	current, ok := s.orders[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	if !domain.CanUpdate(current.Status) {
		s.mu.Unlock()
		if s.strictStatus {
			return nil, ErrImmutableStatus
		}
		return nil, ErrNotFound
	}

	// Merge onto a clone; the canonical record is untouched until the
	// merged order passes validation.
	merged := current.Clone()
	if patch.EntryPrice != nil {
		merged.EntryPrice = patch.EntryPrice
	}
	if patch.StopLossPrice != nil {
		merged.StopLossPrice = patch.StopLossPrice
	}
	if patch.TakeProfitLevels != nil {
		merged.TakeProfitLevels = append([]domain.TakeProfitLevel(nil), patch.TakeProfitLevels...)
	}

	spec := Spec{
		Symbol:           merged.Symbol,
		Side:             merged.Side,
		Quantity:         merged.Quantity,
		EntryType:        merged.EntryType,
		EntryPrice:       merged.EntryPrice,
		StopLossPrice:    merged.StopLossPrice,
		TakeProfitLevels: merged.TakeProfitLevels,
	}
	if err := Validate(spec, spec.ReferencePrice()); err != nil {
		s.mu.Unlock()
		return nil, err
	}

	s.orders[id] = merged
	snapshot := merged.Clone()
	s.mu.Unlock()

	s.log.Info("bracket order updated", zap.String("order_id", id))
	s.publish(EventUpdated, snapshot)

	return snapshot, nil
}

// Cancel moves an order to CANCELLED if its status permits. It reports
// false when the id is unknown or the order is already terminal.
func (s *MemoryStore) Cancel(id string) bool {
	s.mu.Lock()

	order, ok := s.orders[id]
	if !ok {
		s.mu.Unlock()
		return false
	}
	if !domain.CanCancel(order.Status) {
		s.mu.Unlock()
		return false
	}

	order.Status = domain.OrderStatusCancelled
	snapshot := order.Clone()
	s.mu.Unlock()

	s.log.Info("bracket order cancelled",
		zap.String("order_id", id),
		zap.String("symbol", order.Symbol),
	)
	s.publish(EventCancelled, snapshot)

	return true
}

func (s *MemoryStore) publish(t EventType, order *domain.BracketOrder) {
	if s.sink == nil {
		return
	}
	s.sink.Publish(Event{Type: t, Order: order.Clone()})
}
