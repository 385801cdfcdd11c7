package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Asset is a two-bucket balance: unlocked funds are spendable, locked funds
// back open orders and cannot be withdrawn. Both buckets must be >= 0 at
// every observable point; no method changes both buckets in a single call
// other than the paired move operations below, so a failed move never
// leaves an intermediate state for a caller to observe.
type Asset struct {
	unlocked decimal.Decimal
	locked   decimal.Decimal
}

// NewAsset returns a zero-balance asset.
func NewAsset() *Asset {
	return &Asset{unlocked: decimal.Zero, locked: decimal.Zero}
}

func (a *Asset) Unlocked() decimal.Decimal { return a.unlocked }
func (a *Asset) Locked() decimal.Decimal   { return a.locked }
func (a *Asset) Total() decimal.Decimal    { return a.unlocked.Add(a.locked) }

func (a *Asset) setUnlocked(v decimal.Decimal) error {
	if v.IsNegative() {
		return fmt.Errorf("%w: unlocked", ErrNegativeBalance)
	}
	a.unlocked = v
	return nil
}

func (a *Asset) setLocked(v decimal.Decimal) error {
	if v.IsNegative() {
		return fmt.Errorf("%w: locked", ErrNegativeBalance)
	}
	a.locked = v
	return nil
}

// Lock moves amount from unlocked to locked. Used at order-submission time
// to back a new order with real funds.
func (a *Asset) Lock(amount decimal.Decimal) error {
	if err := a.setUnlocked(a.unlocked.Sub(amount)); err != nil {
		return err
	}
	return a.setLocked(a.locked.Add(amount))
}

// Unlock moves amount from locked back to unlocked. Used when a resting
// order is canceled and its backing funds are released.
func (a *Asset) Unlock(amount decimal.Decimal) error {
	if err := a.setLocked(a.locked.Sub(amount)); err != nil {
		return err
	}
	return a.setUnlocked(a.unlocked.Add(amount))
}

// DebitLocked removes amount from locked funds without crediting unlocked.
// Used during trade settlement on the side of the trade that gave up an
// asset it had locked (the seller's base, the buyer's quote).
func (a *Asset) DebitLocked(amount decimal.Decimal) error {
	return a.setLocked(a.locked.Sub(amount))
}

// CreditUnlocked adds amount to unlocked funds without debiting locked.
// Used during trade settlement on the side of the trade that received an
// asset (the seller's quote proceeds, the buyer's base).
func (a *Asset) CreditUnlocked(amount decimal.Decimal) error {
	return a.setUnlocked(a.unlocked.Add(amount))
}

func (a *Asset) String() string {
	return fmt.Sprintf("Asset(total=%s, unlocked=%s, locked=%s)", a.Total(), a.unlocked, a.locked)
}
