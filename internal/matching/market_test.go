package matching

import (
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/exim-exchange/core/internal/models"
)

func clockAt(n int64) func() int64 { return func() int64 { return n } }

func newOrder(id models.OrderID, owner models.AccountID, side models.Side, p string, qty string) *models.Order {
	var price *decimal.Decimal
	if p != "" {
		v := decimal.RequireFromString(p)
		price = &v
	}
	return &models.Order{
		ID:              id,
		Owner:           owner,
		Side:            side,
		Price:           price,
		Quantity:        decimal.RequireFromString(qty),
		InitialQuantity: decimal.RequireFromString(qty),
		Status:          models.Open,
	}
}

func submit(m *Market, o *models.Order) ([]models.TradeID, []models.OrderID) {
	m.Orders[o.ID] = o
	return m.ProcessOrder(o, clockAt(1))
}

func TestProcessOrderSimpleMatch(t *testing.T) {
	m := New("BTC", "USD")

	sell := newOrder(m.NextOrderID(), 1, models.Sell, "100", "10")
	submit(m, sell)

	buy := newOrder(m.NextOrderID(), 2, models.Buy, "100", "10")
	trades, filled := submit(m, buy)

	assert.Len(t, trades, 1)
	trade := m.Trades[trades[0]]
	assert.True(t, trade.Quantity.Equal(decimal.RequireFromString("10")))
	assert.True(t, trade.Price.Equal(decimal.RequireFromString("100")))
	assert.ElementsMatch(t, []models.OrderID{sell.ID, buy.ID}, filled)
	assert.True(t, m.Book.Bids.Empty())
	assert.True(t, m.Book.Asks.Empty())
}

func TestProcessOrderPartialFillRests(t *testing.T) {
	m := New("BTC", "USD")

	sell := newOrder(m.NextOrderID(), 1, models.Sell, "100", "5")
	submit(m, sell)

	buy := newOrder(m.NextOrderID(), 2, models.Buy, "100", "10")
	trades, _ := submit(m, buy)

	assert.Len(t, trades, 1)
	assert.True(t, buy.Quantity.Equal(decimal.RequireFromString("5")))
	assert.False(t, m.Book.Bids.Empty())
	assert.True(t, m.Book.Asks.Empty())
	assert.Equal(t, buy.ID, m.Book.Bids.Top().ID)
}

func TestProcessOrderMultiLevelMatch(t *testing.T) {
	m := New("BTC", "USD")

	sell1 := newOrder(m.NextOrderID(), 1, models.Sell, "100", "5")
	sell2 := newOrder(m.NextOrderID(), 2, models.Sell, "101", "5")
	submit(m, sell1)
	submit(m, sell2)

	buy := newOrder(m.NextOrderID(), 3, models.Buy, "101", "8")
	trades, _ := submit(m, buy)

	assert.Len(t, trades, 2)
	assert.True(t, m.Trades[trades[0]].Price.Equal(decimal.RequireFromString("100")))
	assert.True(t, m.Trades[trades[1]].Price.Equal(decimal.RequireFromString("101")))
	assert.True(t, buy.Quantity.IsZero())

	best := m.Book.Asks.Top()
	assert.Equal(t, sell2.ID, best.ID)
	assert.True(t, best.Quantity.Equal(decimal.RequireFromString("2")))
}

func TestProcessOrderMarketOrderDoesNotRest(t *testing.T) {
	m := New("BTC", "USD")

	sell := newOrder(m.NextOrderID(), 1, models.Sell, "100", "5")
	submit(m, sell)

	buy := newOrder(m.NextOrderID(), 2, models.Buy, "", "10")
	trades, _ := submit(m, buy)

	assert.Len(t, trades, 1)
	assert.True(t, buy.Quantity.Equal(decimal.RequireFromString("5")))
	assert.True(t, m.Book.Bids.Empty(), "an unfilled market order must never rest")
}

func TestProcessOrderConcurrentCallersSerialize(t *testing.T) {
	m := New("BTC", "USD")
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			mu.Lock()
			defer mu.Unlock()
			submit(m, newOrder(m.NextOrderID(), models.AccountID(i), models.Sell, "100", "1"))
		}(i)
		go func(i int) {
			defer wg.Done()
			mu.Lock()
			defer mu.Unlock()
			submit(m, newOrder(m.NextOrderID(), models.AccountID(i), models.Buy, "100", "1"))
		}(i)
	}
	wg.Wait()

	assert.True(t, m.Book.Bids.Volume().Add(m.Book.Asks.Volume()).GreaterThanOrEqual(decimal.Zero))
}

func BenchmarkProcessOrder(b *testing.B) {
	m := New("BTC", "USD")
	for i := 0; i < 1000; i++ {
		submit(m, newOrder(m.NextOrderID(), 1, models.Sell, fmt.Sprintf("%d", 1000+i), "1"))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		submit(m, newOrder(m.NextOrderID(), 2, models.Buy, "1000", "1"))
	}
}
