package ledger

import "errors"

// Sentinel error kinds. Every public Exchange operation wraps one of these
// with context via fmt.Errorf("%w: ...", ...); callers compare with
// errors.Is. No operation panics or mutates state on a failed pre-check.
var (
	ErrUnknownAccount        = errors.New("unknown account")
	ErrUnknownSymbol         = errors.New("unknown symbol")
	ErrUnknownMarket         = errors.New("unknown market")
	ErrInvalidQuantity       = errors.New("invalid quantity")
	ErrInvalidPrice          = errors.New("invalid price")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
	ErrOrderNotCancellable   = errors.New("order not cancellable")
	ErrNegativeBalance       = errors.New("balance would go negative")
)
