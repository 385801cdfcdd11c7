package ledger

import "github.com/exim-exchange/core/internal/models"

// OrderList partitions an account's orders in one market into those still
// OPEN and those that reached a terminal status (FILLED or CANCELED).
// Orders are appended once to Open at submission and moved once to Closed;
// they are never removed from Closed.
type OrderList struct {
	Open   []models.OrderID
	Closed []models.OrderID
}

// Account holds one participant's per-symbol wallet and per-market order
// history. Wallet and Orders are populated at registration time for every
// symbol/market registered so far; a symbol or market registered afterward
// does not retroactively gain a slot here. Registering every instrument
// before opening accounts keeps wallet/order-list lookups a plain map
// index instead of a lazily-initialized one.
type Account struct {
	ID     models.AccountID
	Name   string
	Wallet map[string]*Asset
	Orders map[string]*OrderList
}

func newAccount(id models.AccountID, name string, symbols []string, markets []string) *Account {
	a := &Account{
		ID:     id,
		Name:   name,
		Wallet: make(map[string]*Asset, len(symbols)),
		Orders: make(map[string]*OrderList, len(markets)),
	}
	for _, sym := range symbols {
		a.Wallet[sym] = NewAsset()
	}
	for _, mkt := range markets {
		a.Orders[mkt] = &OrderList{}
	}
	return a
}

// moveToClosed relocates orderID from the market's open list to its closed
// list. It is a no-op if the id is not found in Open (defensive; callers
// only invoke this for ids the matcher just reported as filled and for
// orders Cancel has just canceled).
func (a *Account) moveToClosed(market string, orderID models.OrderID) {
	list := a.Orders[market]
	for i, id := range list.Open {
		if id == orderID {
			list.Open = append(list.Open[:i], list.Open[i+1:]...)
			list.Closed = append(list.Closed, orderID)
			return
		}
	}
}
