package pricing

import (
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingBroadcaster struct {
	mu     sync.Mutex
	prices map[string][]decimal.Decimal
}

func newRecordingBroadcaster() *recordingBroadcaster {
	return &recordingBroadcaster{prices: make(map[string][]decimal.Decimal)}
}

func (b *recordingBroadcaster) BroadcastPrice(symbol string, price decimal.Decimal) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.prices[symbol] = append(b.prices[symbol], price)
}

func (b *recordingBroadcaster) snapshot() map[string][]decimal.Decimal {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string][]decimal.Decimal, len(b.prices))
	for s, p := range b.prices {
		out[s] = append([]decimal.Decimal(nil), p...)
	}
	return out
}

func TestFeed_PublishAllCoversEverySymbol(t *testing.T) {
	oracle := NewStaticOracle(map[string]decimal.Decimal{
		"BTC-USDT": decimal.NewFromInt(45000),
		"ETH-USDT": decimal.NewFromInt(3000),
	})
	broadcaster := newRecordingBroadcaster()
	feed := NewFeed(oracle, broadcaster, time.Second, nil)

	feed.publishAll()

	prices := broadcaster.snapshot()
	require.Len(t, prices, 2)

	// Jitter stays within ±0.5% of the table price.
	for _, p := range prices["BTC-USDT"] {
		assert.True(t, p.GreaterThan(decimal.NewFromInt(44000)), "price %s too low", p)
		assert.True(t, p.LessThan(decimal.NewFromInt(46000)), "price %s too high", p)
	}
}

func TestFeed_StartStop(t *testing.T) {
	oracle := NewStaticOracle(map[string]decimal.Decimal{
		"BTC-USDT": decimal.NewFromInt(45000),
	})
	broadcaster := newRecordingBroadcaster()
	feed := NewFeed(oracle, broadcaster, 10*time.Millisecond, nil)

	feed.Start()
	time.Sleep(50 * time.Millisecond)
	feed.Stop()

	prices := broadcaster.snapshot()
	assert.NotEmpty(t, prices["BTC-USDT"])
}
