package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Trade is an immutable execution record. Side is the maker's side; price
// is always the maker's resting price (price-time priority: the maker sets
// price).
type Trade struct {
	ID       TradeID
	Time     int64
	Side     Side
	Quantity decimal.Decimal
	Price    decimal.Decimal
	Maker    AccountID
	Taker    AccountID
}

func (t *Trade) String() string {
	return fmt.Sprintf("Trade[id=%d side=%s qty=%s price=%s maker=%d taker=%d]",
		t.ID, t.Side, t.Quantity, t.Price, t.Maker, t.Taker)
}
