package ledger

import (
	"fmt"
	"sort"

	"github.com/exim-exchange/core/internal/book"
	"github.com/exim-exchange/core/internal/matching"
	"github.com/exim-exchange/core/internal/models"
)

// GetOrderBook returns a snapshot of marketSym's resting bid and ask levels,
// best price first on each side.
func (ex *Exchange) GetOrderBook(marketSym string) (bids, asks []book.Level, err error) {
	ex.mu.RLock()
	defer ex.mu.RUnlock()

	market, ok := ex.markets[normalize(marketSym)]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownMarket, marketSym)
	}
	return market.Book.Bids.Levels(), market.Book.Asks.Levels(), nil
}

// GetTrades returns marketSym's trade tape in execution order.
func (ex *Exchange) GetTrades(marketSym string) ([]*models.Trade, error) {
	ex.mu.RLock()
	defer ex.mu.RUnlock()

	market, ok := ex.markets[normalize(marketSym)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMarket, marketSym)
	}
	trades := make([]*models.Trade, 0, len(market.Trades))
	for id := models.TradeID(1); int(id) <= len(market.Trades); id++ {
		if t, ok := market.Trades[id]; ok {
			trades = append(trades, t)
		}
	}
	return trades, nil
}

// GetOrders returns accountID's open and closed orders in marketSym.
func (ex *Exchange) GetOrders(accountID models.AccountID, marketSym string) (*OrderList, error) {
	ex.mu.RLock()
	defer ex.mu.RUnlock()

	account, ok := ex.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("%w: account %d", ErrUnknownAccount, accountID)
	}
	list, ok := account.Orders[normalize(marketSym)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMarket, marketSym)
	}
	return list, nil
}

// OrderDetail looks up a single order by id within marketSym.
func (ex *Exchange) OrderDetail(marketSym string, orderID models.OrderID) (*models.Order, error) {
	ex.mu.RLock()
	defer ex.mu.RUnlock()

	market, ok := ex.markets[normalize(marketSym)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMarket, marketSym)
	}
	order, ok := market.Orders[orderID]
	if !ok {
		return nil, fmt.Errorf("%w: order %d", ErrOrderNotCancellable, orderID)
	}
	return order, nil
}

// GetWallet returns accountID's full per-symbol wallet.
func (ex *Exchange) GetWallet(accountID models.AccountID) (map[string]*Asset, error) {
	ex.mu.RLock()
	defer ex.mu.RUnlock()

	account, ok := ex.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("%w: account %d", ErrUnknownAccount, accountID)
	}
	return account.Wallet, nil
}

// GetAccounts returns every registered account, ordered by id.
func (ex *Exchange) GetAccounts() []*Account {
	ex.mu.RLock()
	defer ex.mu.RUnlock()

	accounts := make([]*Account, 0, len(ex.accounts))
	for _, a := range ex.accounts {
		accounts = append(accounts, a)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts
}

// GetMarket exposes the underlying matching.Market for callers that need
// its best-bid/ask/mid/last accessors. It returns the live market, not a
// copy: the pointer also reaches its exported maps and its mutating methods
// (ProcessOrder, NextOrderID), and nothing guards those once this call has
// returned.
func (ex *Exchange) GetMarket(marketSym string) (*matching.Market, error) {
	ex.mu.RLock()
	defer ex.mu.RUnlock()

	market, ok := ex.markets[normalize(marketSym)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMarket, marketSym)
	}
	return market, nil
}
