package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/exim-exchange/core/internal/matching"
	"github.com/exim-exchange/core/internal/models"
)

func (ex *Exchange) resolve(accountID models.AccountID, marketSym string) (*Account, *matching.Market, error) {
	account, ok := ex.accounts[accountID]
	if !ok {
		return nil, nil, fmt.Errorf("%w: account %d", ErrUnknownAccount, accountID)
	}
	market, ok := ex.markets[normalize(marketSym)]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownMarket, marketSym)
	}
	return account, market, nil
}

// Buy submits a buy order (limit if price is non-nil, market otherwise),
// locking the quote-currency cost up front and settling every resulting
// trade atomically against the submitter's and counterparties' wallets.
func (ex *Exchange) Buy(accountID models.AccountID, marketSym string, quantity decimal.Decimal, price *decimal.Decimal) (bool, error) {
	ex.mu.Lock()
	defer ex.mu.Unlock()

	start := ex.clock()
	account, market, err := ex.resolve(accountID, marketSym)
	if err != nil {
		return ex.fail("buy", err)
	}

	quantity = ex.quantize(market.Base, quantity)
	if price != nil {
		q := ex.quantize(market.Quote, *price)
		price = &q
	}
	if !quantity.IsPositive() {
		return ex.fail("buy", fmt.Errorf("%w: quantity must be positive", ErrInvalidQuantity))
	}
	if price != nil && !price.IsPositive() {
		return ex.fail("buy", fmt.Errorf("%w: price must be positive", ErrInvalidPrice))
	}

	cost, ok := calculateBuyCost(market.Book.Asks.Levels(), quantity, price)
	if !ok {
		return ex.fail("buy", fmt.Errorf("%w: not enough resting asks to cover %s", ErrInsufficientLiquidity, quantity))
	}
	quote := account.Wallet[market.Quote]
	if quote.Unlocked().LessThan(cost) {
		return ex.fail("buy", fmt.Errorf("%w: have %s, need %s", ErrInsufficientBalance, quote.Unlocked(), cost))
	}
	if err := quote.Lock(cost); err != nil {
		return ex.fail("buy", err)
	}

	order := &models.Order{
		ID:              market.NextOrderID(),
		Market:          market.Symbol,
		Time:            ex.clock(),
		Owner:           accountID,
		Side:            models.Buy,
		Quantity:        quantity,
		InitialQuantity: quantity,
		Price:           price,
		Status:          models.Open,
	}
	market.Orders[order.ID] = order
	account.Orders[market.Symbol].Open = append(account.Orders[market.Symbol].Open, order.ID)

	tradeIDs, filledIDs := market.ProcessOrder(order, ex.clock)
	for _, tid := range tradeIDs {
		trade := market.Trades[tid]
		maker := ex.accounts[trade.Maker] // seller
		taker := ex.accounts[trade.Taker] // buyer
		proceeds := trade.Quantity.Mul(trade.Price)
		if err := maker.Wallet[market.Base].DebitLocked(trade.Quantity); err != nil {
			return ex.fail("buy", err)
		}
		if err := maker.Wallet[market.Quote].CreditUnlocked(proceeds); err != nil {
			return ex.fail("buy", err)
		}
		if err := taker.Wallet[market.Quote].DebitLocked(proceeds); err != nil {
			return ex.fail("buy", err)
		}
		if err := taker.Wallet[market.Base].CreditUnlocked(trade.Quantity); err != nil {
			return ex.fail("buy", err)
		}
	}
	for _, id := range filledIDs {
		owner := ex.accounts[market.Orders[id].Owner]
		owner.moveToClosed(market.Symbol, id)
	}

	ex.record(start, int64(len(tradeIDs)), int64(len(filledIDs)))
	ex.diag("order executed with id: %d", order.ID)
	return true, nil
}

// Sell submits a sell order, locking the base-asset quantity up front and
// settling every resulting trade symmetrically to Buy.
func (ex *Exchange) Sell(accountID models.AccountID, marketSym string, quantity decimal.Decimal, price *decimal.Decimal) (bool, error) {
	ex.mu.Lock()
	defer ex.mu.Unlock()

	start := ex.clock()
	account, market, err := ex.resolve(accountID, marketSym)
	if err != nil {
		return ex.fail("sell", err)
	}

	quantity = ex.quantize(market.Base, quantity)
	if price != nil {
		q := ex.quantize(market.Quote, *price)
		price = &q
	}
	if !quantity.IsPositive() {
		return ex.fail("sell", fmt.Errorf("%w: quantity must be positive", ErrInvalidQuantity))
	}
	if price != nil && !price.IsPositive() {
		return ex.fail("sell", fmt.Errorf("%w: price must be positive", ErrInvalidPrice))
	}

	if price == nil && quantity.GreaterThan(market.Book.Bids.Volume()) {
		return ex.fail("sell", fmt.Errorf("%w: not enough resting bids to cover %s", ErrInsufficientLiquidity, quantity))
	}
	base := account.Wallet[market.Base]
	if base.Unlocked().LessThan(quantity) {
		return ex.fail("sell", fmt.Errorf("%w: have %s, need %s", ErrInsufficientBalance, base.Unlocked(), quantity))
	}
	if err := base.Lock(quantity); err != nil {
		return ex.fail("sell", err)
	}

	order := &models.Order{
		ID:              market.NextOrderID(),
		Market:          market.Symbol,
		Time:            ex.clock(),
		Owner:           accountID,
		Side:            models.Sell,
		Quantity:        quantity,
		InitialQuantity: quantity,
		Price:           price,
		Status:          models.Open,
	}
	market.Orders[order.ID] = order
	account.Orders[market.Symbol].Open = append(account.Orders[market.Symbol].Open, order.ID)

	tradeIDs, filledIDs := market.ProcessOrder(order, ex.clock)
	for _, tid := range tradeIDs {
		trade := market.Trades[tid]
		maker := ex.accounts[trade.Maker] // buyer
		taker := ex.accounts[trade.Taker] // seller
		proceeds := trade.Quantity.Mul(trade.Price)
		if err := maker.Wallet[market.Quote].DebitLocked(proceeds); err != nil {
			return ex.fail("sell", err)
		}
		if err := maker.Wallet[market.Base].CreditUnlocked(trade.Quantity); err != nil {
			return ex.fail("sell", err)
		}
		if err := taker.Wallet[market.Base].DebitLocked(trade.Quantity); err != nil {
			return ex.fail("sell", err)
		}
		if err := taker.Wallet[market.Quote].CreditUnlocked(proceeds); err != nil {
			return ex.fail("sell", err)
		}
	}
	for _, id := range filledIDs {
		owner := ex.accounts[market.Orders[id].Owner]
		owner.moveToClosed(market.Symbol, id)
	}

	ex.record(start, int64(len(tradeIDs)), int64(len(filledIDs)))
	ex.diag("order executed with id: %d", order.ID)
	return true, nil
}

// Cancel pops a resting OPEN order owned by accountID out of its market's
// book, marks it CANCELED, and unlocks the funds that backed it. A
// partially filled limit buy unlocks only its remaining quantity times its
// price; any consumed portion has already been settled by the matcher.
func (ex *Exchange) Cancel(accountID models.AccountID, marketSym string, orderID models.OrderID) (bool, error) {
	ex.mu.Lock()
	defer ex.mu.Unlock()

	account, market, err := ex.resolve(accountID, marketSym)
	if err != nil {
		return ex.fail("cancel", err)
	}
	order, ok := market.Orders[orderID]
	if !ok || order.Owner != accountID || order.Status != models.Open {
		return ex.fail("cancel", fmt.Errorf("%w: order %d", ErrOrderNotCancellable, orderID))
	}

	switch order.Side {
	case models.Buy:
		market.Book.Bids.Pop(order)
		order.Status = models.Canceled
		if err := account.Wallet[market.Quote].Unlock(order.Quantity.Mul(*order.Price)); err != nil {
			return ex.fail("cancel", err)
		}
	case models.Sell:
		market.Book.Asks.Pop(order)
		order.Status = models.Canceled
		if err := account.Wallet[market.Base].Unlock(order.Quantity); err != nil {
			return ex.fail("cancel", err)
		}
	}
	account.moveToClosed(market.Symbol, order.ID)
	if ex.metrics != nil {
		ex.metrics.IncOrdersCanceled()
	}
	ex.diag("order canceled with id: %d", order.ID)
	return true, nil
}

// ProcessQuote dispatches a single request envelope: a cancel if OrderID is
// set, otherwise a buy or sell keyed on Side.
func (ex *Exchange) ProcessQuote(q Quote) (bool, error) {
	if q.OrderID != nil {
		return ex.Cancel(q.AccountID, q.Market, *q.OrderID)
	}
	switch q.Side {
	case models.Buy:
		return ex.Buy(q.AccountID, q.Market, q.Quantity, q.Price)
	case models.Sell:
		return ex.Sell(q.AccountID, q.Market, q.Quantity, q.Price)
	default:
		return ex.fail("quote", fmt.Errorf("%w: side must be BUY or SELL", ErrInvalidQuantity))
	}
}

func (ex *Exchange) record(startNanos int64, tradeCount, filledCount int64) {
	if ex.metrics == nil {
		return
	}
	ex.metrics.IncOrdersSubmitted()
	ex.metrics.IncTradesExecuted(tradeCount)
	ex.metrics.IncOrdersFilled(filledCount)
	ex.metrics.AddLatency((ex.clock() - startNanos) / 1000)
}
