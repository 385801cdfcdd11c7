// Package views provides read-only projections of an Exchange's state,
// re-expressed as plain Go structs rather than the pandas DataFrames the
// source returns from get_trades/get_orderbook/get_orders/get_wallet/
// get_accounts — no dataframe-equivalent dependency is wired, since tabular
// reporting is explicitly out of scope.
package views

import (
	"sort"

	"github.com/exim-exchange/core/internal/book"
	"github.com/exim-exchange/core/internal/ledger"
	"github.com/exim-exchange/core/internal/models"
)

// BookSnapshot is a depth view of one market's book, best price first on
// each side.
type BookSnapshot struct {
	Market string
	Bids   []book.Level
	Asks   []book.Level
}

// OrderBook returns marketSym's current bid/ask depth.
func OrderBook(ex *ledger.Exchange, marketSym string) (BookSnapshot, error) {
	bids, asks, err := ex.GetOrderBook(marketSym)
	if err != nil {
		return BookSnapshot{}, err
	}
	return BookSnapshot{Market: marketSym, Bids: bids, Asks: asks}, nil
}

// TradeTapeEntry is one historical trade, in execution order.
type TradeTapeEntry struct {
	ID       models.TradeID
	Time     int64
	Price    string
	Quantity string
	Maker    models.AccountID
	Taker    models.AccountID
}

// Trades returns marketSym's full trade tape.
func Trades(ex *ledger.Exchange, marketSym string) ([]TradeTapeEntry, error) {
	trades, err := ex.GetTrades(marketSym)
	if err != nil {
		return nil, err
	}
	out := make([]TradeTapeEntry, 0, len(trades))
	for _, t := range trades {
		out = append(out, TradeTapeEntry{
			ID:       t.ID,
			Time:     t.Time,
			Price:    t.Price.String(),
			Quantity: t.Quantity.String(),
			Maker:    t.Maker,
			Taker:    t.Taker,
		})
	}
	return out, nil
}

// OrderSummary is one account's view of a single order.
type OrderSummary struct {
	ID       models.OrderID
	Market   string
	Side     models.Side
	Price    *string
	Quantity string
	Status   models.Status
}

// Orders returns accountID's open and closed orders in marketSym: open
// orders in submission order (oldest first), then closed orders in the
// order they were filled or canceled.
func Orders(ex *ledger.Exchange, accountID models.AccountID, marketSym string) ([]OrderSummary, error) {
	list, err := ex.GetOrders(accountID, marketSym)
	if err != nil {
		return nil, err
	}
	ids := make([]models.OrderID, 0, len(list.Open)+len(list.Closed))
	ids = append(ids, list.Open...)
	ids = append(ids, list.Closed...)

	out := make([]OrderSummary, 0, len(ids))
	for _, id := range ids {
		order, err := ex.OrderDetail(marketSym, id)
		if err != nil {
			continue
		}
		var price *string
		if order.Price != nil {
			s := order.Price.String()
			price = &s
		}
		out = append(out, OrderSummary{
			ID:       order.ID,
			Market:   order.Market,
			Side:     order.Side,
			Price:    price,
			Quantity: order.Quantity.String(),
			Status:   order.Status,
		})
	}
	return out, nil
}

// WalletEntry is one symbol's balance within an account's wallet.
type WalletEntry struct {
	Symbol   string
	Unlocked string
	Locked   string
	Total    string
}

// Wallet returns accountID's full per-symbol wallet, sorted by symbol.
func Wallet(ex *ledger.Exchange, accountID models.AccountID) ([]WalletEntry, error) {
	wallet, err := ex.GetWallet(accountID)
	if err != nil {
		return nil, err
	}
	out := make([]WalletEntry, 0, len(wallet))
	for symbol, asset := range wallet {
		out = append(out, WalletEntry{
			Symbol:   symbol,
			Unlocked: asset.Unlocked().String(),
			Locked:   asset.Locked().String(),
			Total:    asset.Total().String(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

// AccountSummary is the roster view of a registered account.
type AccountSummary struct {
	ID   models.AccountID
	Name string
}

// Accounts returns every registered account, ordered by id.
func Accounts(ex *ledger.Exchange) []AccountSummary {
	accounts := ex.GetAccounts()
	out := make([]AccountSummary, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, AccountSummary{ID: a.ID, Name: a.Name})
	}
	return out
}
