// Package matching implements the per-pair matching engine: the order
// registry, trade registry, trade tape, and the iterative match routine
// that consumes a new order against resting liquidity.
package matching

import (
	"github.com/shopspring/decimal"

	"github.com/exim-exchange/core/internal/book"
	"github.com/exim-exchange/core/internal/models"
)

// TapeEntry is one append-only trade-tape record (time, price, quantity),
// kept separately from the full Trade record for cheap chronological scans.
type TapeEntry struct {
	Time     int64
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

// Market holds one trading pair's book plus every order and trade it has
// ever seen. A Market does not synchronize its own access; the ledger
// package serializes all mutating calls against it (see internal/ledger).
type Market struct {
	Base, Quote string
	Symbol      string

	Book   *book.OrderBook
	Orders map[models.OrderID]*models.Order
	Trades map[models.TradeID]*models.Trade
	Tape   []TapeEntry

	orderSeq int64
	tradeSeq int64
}

// New returns an empty market for the base/quote pair. Symbol is the
// uppercase concatenation base+quote.
func New(base, quote string) *Market {
	return &Market{
		Base:   base,
		Quote:  quote,
		Symbol: base + quote,
		Book:   book.New(),
		Orders: make(map[models.OrderID]*models.Order),
		Trades: make(map[models.TradeID]*models.Trade),
	}
}

// NextOrderID returns the next sequential order id for this market.
func (m *Market) NextOrderID() models.OrderID {
	m.orderSeq++
	return models.OrderID(m.orderSeq)
}

func (m *Market) nextTradeID() models.TradeID {
	m.tradeSeq++
	return models.TradeID(m.tradeSeq)
}

// BestBid is the best resting bid price, or nil if the bid side is empty.
func (m *Market) BestBid() *decimal.Decimal {
	if top := m.Book.Bids.Top(); top != nil {
		return top.Price
	}
	return nil
}

// BestAsk is the best resting ask price, or nil if the ask side is empty.
func (m *Market) BestAsk() *decimal.Decimal {
	if top := m.Book.Asks.Top(); top != nil {
		return top.Price
	}
	return nil
}

// LastPrice is the price of the most recent trade, or nil if none yet.
func (m *Market) LastPrice() *decimal.Decimal {
	if len(m.Tape) == 0 {
		return nil
	}
	p := m.Tape[len(m.Tape)-1].Price
	return &p
}

// MidPrice averages BestBid and BestAsk, or nil unless both sides are present.
func (m *Market) MidPrice() *decimal.Decimal {
	bid, ask := m.BestBid(), m.BestAsk()
	if bid == nil || ask == nil {
		return nil
	}
	mid := bid.Add(*ask).Div(decimal.NewFromInt(2))
	return &mid
}

// ProcessOrder consumes o against the opposite side of the book and
// returns the trades it produced and the orders (maker or taker) it
// filled. The caller must have already inserted o into m.Orders with
// status OPEN and assigned its ID before calling.
//
// Matching is iterative, not recursive (stack depth must not grow with the
// number of price levels consumed): each pass inspects the current best
// opposite order, trades against it if the order crosses (or is a market
// order), and loops until the order rests, fills, or liquidity runs out.
func (m *Market) ProcessOrder(o *models.Order, now func() int64) (tradeIDs []models.TradeID, filledOrderIDs []models.OrderID) {
	for {
		own, opposite := m.sides(o)

		maker := opposite.Top()
		if o.Kind() == models.Limit {
			if maker == nil || !crosses(o, maker) {
				own.Push(o)
				return tradeIDs, filledOrderIDs
			}
		} else if maker == nil {
			// A market order that exhausts liquidity mid-match must never
			// have entered the matcher; the ledger pre-checks coverage.
			return tradeIDs, filledOrderIDs
		}

		amount := decimal.Min(maker.Quantity, o.Quantity)
		trade := m.trade(maker, o, amount, now)
		tradeIDs = append(tradeIDs, trade.ID)

		opposite.ReduceDepth(*maker.Price, amount)
		if maker.Quantity.IsZero() {
			opposite.Pop(maker)
			maker.Status = models.Filled
			filledOrderIDs = append(filledOrderIDs, maker.ID)
		}

		if o.Quantity.IsZero() {
			o.Status = models.Filled
			filledOrderIDs = append(filledOrderIDs, o.ID)
			return tradeIDs, filledOrderIDs
		}
	}
}

// sides returns (o's own tree, the opposite tree) for o.Side.
func (m *Market) sides(o *models.Order) (own, opposite *book.OrderTree) {
	if o.Side == models.Buy {
		return m.Book.Bids, m.Book.Asks
	}
	return m.Book.Asks, m.Book.Bids
}

// crosses reports whether limit order o crosses the resting maker, i.e.
// whether trading can happen at the maker's price.
func crosses(o, maker *models.Order) bool {
	if o.Side == models.Buy {
		return !o.Price.LessThan(*maker.Price)
	}
	return !o.Price.GreaterThan(*maker.Price)
}

// trade executes one fill between maker (resting) and taker (incoming) for
// amount units at the maker's price, records the Trade, the tape entry, and
// deducts amount from both orders' remaining quantity.
func (m *Market) trade(maker, taker *models.Order, amount decimal.Decimal, now func() int64) *models.Trade {
	t := &models.Trade{
		ID:       m.nextTradeID(),
		Time:     now(),
		Side:     maker.Side,
		Quantity: amount,
		Price:    *maker.Price,
		Maker:    maker.Owner,
		Taker:    taker.Owner,
	}
	m.Trades[t.ID] = t
	m.Tape = append(m.Tape, TapeEntry{Time: t.Time, Price: t.Price, Quantity: t.Quantity})

	maker.Quantity = maker.Quantity.Sub(amount)
	taker.Quantity = taker.Quantity.Sub(amount)
	maker.Trades = append(maker.Trades, t.ID)
	taker.Trades = append(taker.Trades, t.ID)

	return t
}
