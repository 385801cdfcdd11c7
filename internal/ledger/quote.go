package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/exim-exchange/core/internal/models"
)

// Quote is the single-envelope request shape accepted by ProcessQuote: a
// cancel if OrderID is set, otherwise a buy or sell dispatched on Side.
type Quote struct {
	AccountID models.AccountID
	Market    string
	Side      models.Side
	Quantity  decimal.Decimal
	Price     *decimal.Decimal
	OrderID   *models.OrderID
}
