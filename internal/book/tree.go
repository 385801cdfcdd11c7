package book

import (
	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/shopspring/decimal"

	"github.com/exim-exchange/core/internal/models"
)

// Level is a read-only snapshot of one price level, used by callers that
// need to walk the book from best price outward (e.g. the ledger's cost
// pre-check) without reaching into the tree's internals.
type Level struct {
	Price  decimal.Decimal
	Volume decimal.Decimal
}

type priceLevel struct {
	price decimal.Decimal
	queue OrderQueue
}

func decimalComparator(a, b interface{}) int {
	return a.(decimal.Decimal).Cmp(b.(decimal.Decimal))
}

// OrderTree is an ordered mapping price -> OrderQueue, plus a parallel
// mapping price -> depth (sum of remaining quantities at that price) and a
// scalar volume (sum of all remaining quantities). The orientation is fixed
// at construction: ascending trees (asks) put the lowest price first,
// descending trees (bids) put the highest price first, via the comparator
// direction. Because of that, Top is always tree.Left() regardless of side.
type OrderTree struct {
	tree   *redblacktree.Tree
	depth  map[string]decimal.Decimal
	nodes  map[models.OrderID]*node
	volume decimal.Decimal
}

func newComparator(ascending bool) func(a, b interface{}) int {
	if ascending {
		return decimalComparator
	}
	return func(a, b interface{}) int { return decimalComparator(b, a) }
}

// NewOrderTree returns an empty tree. ascending=true sorts lowest price
// first (asks); ascending=false sorts highest price first (bids).
func NewOrderTree(ascending bool) *OrderTree {
	return &OrderTree{
		tree:  redblacktree.NewWith(newComparator(ascending)),
		depth: make(map[string]decimal.Decimal),
		nodes: make(map[models.OrderID]*node),
	}
}

// Push appends o to the queue at o's price, creating the level if needed,
// and adds o.Quantity to both the level's depth and the tree's volume.
func (t *OrderTree) Push(o *models.Order) {
	price := *o.Price
	key := price.String()
	level, found := t.tree.Get(price)
	var pl *priceLevel
	if !found {
		pl = &priceLevel{price: price}
		t.tree.Put(price, pl)
		t.depth[key] = decimal.Zero
	} else {
		pl = level.(*priceLevel)
	}
	n := &node{order: o}
	pl.queue.append(n)
	t.nodes[o.ID] = n
	t.depth[key] = t.depth[key].Add(o.Quantity)
	t.volume = t.volume.Add(o.Quantity)
}

// Pop removes o from its price queue, subtracts o.Quantity (the order's
// *current* remaining quantity at call time) from the level's depth and the
// tree's volume, and drops the level entirely if it is now empty. Callers
// that partially fill a resting order must reduce its quantity and call
// ReduceDepth themselves *before* any eventual Pop, per the matcher's
// partial-fill discipline (see ReduceDepth).
func (t *OrderTree) Pop(o *models.Order) {
	n, ok := t.nodes[o.ID]
	if !ok {
		return
	}
	key := o.Price.String()
	level, found := t.tree.Get(*o.Price)
	if !found {
		return
	}
	pl := level.(*priceLevel)
	pl.queue.remove(n)
	delete(t.nodes, o.ID)
	t.depth[key] = t.depth[key].Sub(o.Quantity)
	t.volume = t.volume.Sub(o.Quantity)
	if pl.queue.empty() {
		t.tree.Remove(*o.Price)
		delete(t.depth, key)
	}
}

// ReduceDepth subtracts amount from the depth at price and from the tree's
// volume without touching the queue. This is how a partial fill against a
// resting maker is reflected: the maker stays at the queue head, only the
// aggregate counters move.
func (t *OrderTree) ReduceDepth(price decimal.Decimal, amount decimal.Decimal) {
	key := price.String()
	if d, ok := t.depth[key]; ok {
		t.depth[key] = d.Sub(amount)
	}
	t.volume = t.volume.Sub(amount)
}

// Top returns the head order at the extreme (best) price, or nil if empty.
func (t *OrderTree) Top() *models.Order {
	node := t.tree.Left()
	if node == nil {
		return nil
	}
	return node.Value.(*priceLevel).queue.Head()
}

// Empty reports whether the tree holds no resting orders.
func (t *OrderTree) Empty() bool { return t.tree.Empty() }

// Volume is the sum of remaining quantities across all resting orders.
func (t *OrderTree) Volume() decimal.Decimal { return t.volume }

// Levels returns every price level best-to-worst, using the depth map for
// each level's aggregate volume.
func (t *OrderTree) Levels() []Level {
	levels := make([]Level, 0, t.tree.Size())
	it := t.tree.Iterator()
	it.Begin()
	for it.Next() {
		pl := it.Value().(*priceLevel)
		levels = append(levels, Level{Price: pl.price, Volume: t.depth[pl.price.String()]})
	}
	return levels
}
