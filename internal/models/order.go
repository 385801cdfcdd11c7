// Package models holds the value records shared by the book, matching, and
// ledger packages: orders and trades.
package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AccountID, OrderID, and TradeID are assigned sequentially by their owning
// registry (the exchange for accounts, the market for orders and trades).
type (
	AccountID int64
	OrderID   int64
	TradeID   int64
)

// Side is the direction of an order or the maker side of a trade.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

func (s Side) String() string { return string(s) }

// OrderKind distinguishes limit orders (price set) from market orders
// (price absent). It is derived from Order.Price, never stored directly.
type OrderKind string

const (
	Limit  OrderKind = "LIMIT"
	Market OrderKind = "MARKET"
)

// Status is the lifecycle state of an order: OPEN -> FILLED or OPEN -> CANCELED.
// There is no partial terminal state; a partially filled resting order stays OPEN.
type Status string

const (
	Open     Status = "OPEN"
	Filled   Status = "FILLED"
	Canceled Status = "CANCELED"
)

// Order is a resting or matched order. Quantity is the remaining unfilled
// amount; InitialQuantity is immutable after creation. Price is nil for a
// market order. Orders are owned exclusively by their Market's order
// registry; Order itself carries no intrusive book links (see
// internal/book, which indexes orders by ID instead).
type Order struct {
	ID              OrderID
	Market          string
	Time            int64
	Owner           AccountID
	Side            Side
	Quantity        decimal.Decimal
	InitialQuantity decimal.Decimal
	Price           *decimal.Decimal
	Status          Status
	Trades          []TradeID
}

// Kind reports whether the order is a limit or market order.
func (o *Order) Kind() OrderKind {
	if o.Price == nil {
		return Market
	}
	return Limit
}

func (o *Order) String() string {
	price := "MARKET"
	if o.Price != nil {
		price = o.Price.String()
	}
	return fmt.Sprintf("Order[id=%d market=%s side=%s price=%s qty=%s/%s status=%s owner=%d]",
		o.ID, o.Market, o.Side, price, o.Quantity, o.InitialQuantity, o.Status, o.Owner)
}
