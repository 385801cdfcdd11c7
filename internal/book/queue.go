// Package book implements the price-time priority resting-order structures:
// a doubly-linked FIFO per price level (OrderQueue), a price-indexed
// collection of those queues with aggregate depth tracking (OrderTree), and
// the bid/ask pair (OrderBook).
//
// Orders are not self-linking here (unlike the Python original, where Order
// carried its own prev/next fields): Go's aliasing rules make an
// order-owns-its-queue-link design awkward to keep consistent with the
// order also being a plain value owned by the market's order registry.
// Instead each queue entry is a *node wrapping the order, and OrderTree
// keeps a node-by-OrderID index so a resting order can still be located and
// unlinked in O(1) given only its ID.
package book

import "github.com/exim-exchange/core/internal/models"

type node struct {
	order      *models.Order
	prev, next *node
}

// OrderQueue is a FIFO of orders resting at one price level, retaining
// insertion order. Empty iff head == tail == nil.
type OrderQueue struct {
	head, tail *node
}

func (q *OrderQueue) empty() bool { return q.head == nil }

// append links n at the tail.
func (q *OrderQueue) append(n *node) {
	if q.empty() {
		q.head = n
		q.tail = n
		return
	}
	q.tail.next = n
	n.prev = q.tail
	q.tail = n
}

// remove unlinks n and clears its links.
func (q *OrderQueue) remove(n *node) {
	switch {
	case q.head == q.tail:
		q.head, q.tail = nil, nil
	case n == q.head:
		q.head = n.next
		q.head.prev = nil
	case n == q.tail:
		q.tail = n.prev
		q.tail.next = nil
	default:
		n.prev.next = n.next
		n.next.prev = n.prev
	}
	n.prev, n.next = nil, nil
}

// Head returns the earliest-arrived order at this level, or nil if empty.
func (q *OrderQueue) Head() *models.Order {
	if q.empty() {
		return nil
	}
	return q.head.order
}
