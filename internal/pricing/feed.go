package pricing

import (
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Broadcaster receives price updates for fan-out to subscribed clients.
type Broadcaster interface {
	BroadcastPrice(symbol string, price decimal.Decimal)
}

// Feed periodically publishes a jittered price for every symbol the
// oracle knows, simulating a live market-data stream for connected
// terminal clients. Real feed ingestion is out of scope; this keeps the
// frontend's price subscriptions alive in the demo.
type Feed struct {
	oracle      *StaticOracle
	broadcaster Broadcaster
	interval    time.Duration
	log         *zap.Logger

	done   chan struct{}
	ticker *time.Ticker
}

// NewFeed creates a feed over the given oracle. interval <= 0 defaults
// to two seconds.
func NewFeed(oracle *StaticOracle, broadcaster Broadcaster, interval time.Duration, log *zap.Logger) *Feed {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Feed{
		oracle:      oracle,
		broadcaster: broadcaster,
		interval:    interval,
		log:         log,
		done:        make(chan struct{}),
	}
}

// Start begins the feed loop in a goroutine.
func (f *Feed) Start() {
	f.ticker = time.NewTicker(f.interval)
	go f.run()
}

// Stop shuts the feed down.
func (f *Feed) Stop() {
	if f.ticker != nil {
		f.ticker.Stop()
	}
	close(f.done)
}

func (f *Feed) run() {
	f.log.Info("price feed started", zap.Duration("interval", f.interval))
	for {
		select {
		case <-f.ticker.C:
			f.publishAll()
		case <-f.done:
			f.log.Info("price feed stopped")
			return
		}
	}
}

// publishAll pushes a slightly jittered price for every known symbol so
// subscribed clients see movement. Jitter stays within ±0.5% of the
// table price.
func (f *Feed) publishAll() {
	for _, symbol := range f.oracle.Symbols() {
		base := f.oracle.PriceFor(symbol)
		jitter := decimal.NewFromFloat((rand.Float64() - 0.5) / 100)
		price := base.Mul(decimal.NewFromInt(1).Add(jitter)).Round(8)
		f.broadcaster.BroadcastPrice(symbol, price)
	}
}
