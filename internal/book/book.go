package book

// OrderBook is a (bids, asks) pair. Bids are sorted most-aggressive
// (highest price) first; asks are sorted most-aggressive (lowest price)
// first. At rest, bids.Top().Price < asks.Top().Price whenever both exist.
type OrderBook struct {
	Bids *OrderTree
	Asks *OrderTree
}

// New returns an empty order book.
func New() *OrderBook {
	return &OrderBook{
		Bids: NewOrderTree(false),
		Asks: NewOrderTree(true),
	}
}
