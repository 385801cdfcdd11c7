// Package ledger implements the accounting layer: symbols, markets,
// accounts, and the submission pipeline (register/deposit/withdraw/
// buy/sell/cancel) that binds the matching engine to real, lockable
// balances so that no value is created or destroyed.
package ledger

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/exim-exchange/core/internal/book"
	"github.com/exim-exchange/core/internal/logging"
	"github.com/exim-exchange/core/internal/matching"
	"github.com/exim-exchange/core/internal/metrics"
	"github.com/exim-exchange/core/internal/models"
)

// Exchange is the ledger: it owns every symbol, market, and account, and is
// the sole mutator of its markets' books and its accounts' wallets. All
// mutating operations are serialized with mu; read views (internal/views)
// take mu for reading only, consistent with the core's single-writer
// concurrency model.
type Exchange struct {
	mu sync.RWMutex

	symbols      []string
	unitDecimals map[string]int32
	markets      map[string]*matching.Market
	accounts     map[models.AccountID]*Account
	accountSeq   int64

	// Verbose gates the diagnostic line emitted for every operation,
	// success or failure.
	Verbose bool

	clock   func() int64
	log     logging.Logger
	metrics *metrics.Metrics
}

// New returns an empty exchange. log and m may be zero values
// (logging.Silent(), nil) for library/test use without diagnostics.
func New(log logging.Logger, m *metrics.Metrics) *Exchange {
	return &Exchange{
		unitDecimals: make(map[string]int32),
		markets:      make(map[string]*matching.Market),
		accounts:     make(map[models.AccountID]*Account),
		Verbose:      true,
		clock:        func() int64 { return time.Now().UnixNano() },
		log:          log,
		metrics:      m,
	}
}

// SetClock overrides the timestamp source, for deterministic tests.
func (ex *Exchange) SetClock(clock func() int64) { ex.clock = clock }

func (ex *Exchange) diag(format string, args ...interface{}) {
	if ex.Verbose {
		ex.log.Debug().Msg(fmt.Sprintf(format, args...))
	}
}

// RegisterSymbol adds sym (uppercased) to the exchange with its
// quantity-quantization scale. Must precede any market or account using it.
func (ex *Exchange) RegisterSymbol(sym string, unitDecimals int32) bool {
	ex.mu.Lock()
	defer ex.mu.Unlock()

	sym = strings.ToUpper(sym)
	ex.symbols = append(ex.symbols, sym)
	ex.unitDecimals[sym] = unitDecimals
	ex.diag("symbol registered: %s", sym)
	return true
}

func normalize(sym string) string { return strings.ToUpper(sym) }

func (ex *Exchange) hasSymbol(sym string) bool {
	_, ok := ex.unitDecimals[sym]
	return ok
}

// RegisterMarket creates a market for base/quote, both of which must
// already be registered symbols. The market key is the uppercase
// concatenation base+quote.
func (ex *Exchange) RegisterMarket(base, quote string) bool {
	ex.mu.Lock()
	defer ex.mu.Unlock()

	base, quote = strings.ToUpper(base), strings.ToUpper(quote)
	if !ex.hasSymbol(base) || !ex.hasSymbol(quote) {
		ex.diag("register market failed: symbol not listed")
		return false
	}
	m := matching.New(base, quote)
	ex.markets[m.Symbol] = m
	ex.diag("market registered: %s", m.Symbol)
	return true
}

func (ex *Exchange) marketSymbols() []string {
	keys := make([]string, 0, len(ex.markets))
	for k := range ex.markets {
		keys = append(keys, k)
	}
	return keys
}

// RegisterAccount creates a fresh account with a zero-balance Asset for
// every currently registered symbol and an empty open/closed order list
// for every currently registered market. Symbols or markets registered
// afterward will not appear in this account's wallet or order lists: setup
// is treated as complete before any account is created.
func (ex *Exchange) RegisterAccount(name string) (models.AccountID, bool) {
	ex.mu.Lock()
	defer ex.mu.Unlock()

	ex.accountSeq++
	id := models.AccountID(ex.accountSeq)
	ex.accounts[id] = newAccount(id, name, ex.symbols, ex.marketSymbols())
	ex.diag("account registered with id: %d", id)
	return id, true
}

func (ex *Exchange) quantize(sym string, qty decimal.Decimal) decimal.Decimal {
	return qty.Round(ex.unitDecimals[sym])
}

// Deposit quantizes quantity to sym's scale and credits it to the
// account's unlocked balance. Non-positive quantities fail without effect.
func (ex *Exchange) Deposit(accountID models.AccountID, sym string, quantity decimal.Decimal) (bool, error) {
	ex.mu.Lock()
	defer ex.mu.Unlock()

	sym = strings.ToUpper(sym)
	account, ok := ex.accounts[accountID]
	if !ok {
		return ex.fail("deposit", fmt.Errorf("%w: account %d", ErrUnknownAccount, accountID))
	}
	if !ex.hasSymbol(sym) {
		return ex.fail("deposit", fmt.Errorf("%w: %s", ErrUnknownSymbol, sym))
	}
	quantity = ex.quantize(sym, quantity)
	if !quantity.IsPositive() {
		return ex.fail("deposit", fmt.Errorf("%w: quantity must be positive", ErrInvalidQuantity))
	}
	asset := account.Wallet[sym]
	if err := asset.CreditUnlocked(quantity); err != nil {
		return ex.fail("deposit", err)
	}
	ex.diag("deposit successful: account=%d symbol=%s quantity=%s", accountID, sym, quantity)
	return true, nil
}

// Withdraw quantizes quantity to sym's scale and debits it from the
// account's unlocked balance, iff 0 < quantity <= unlocked.
func (ex *Exchange) Withdraw(accountID models.AccountID, sym string, quantity decimal.Decimal) (bool, error) {
	ex.mu.Lock()
	defer ex.mu.Unlock()

	sym = strings.ToUpper(sym)
	account, ok := ex.accounts[accountID]
	if !ok {
		return ex.fail("withdraw", fmt.Errorf("%w: account %d", ErrUnknownAccount, accountID))
	}
	if !ex.hasSymbol(sym) {
		return ex.fail("withdraw", fmt.Errorf("%w: %s", ErrUnknownSymbol, sym))
	}
	quantity = ex.quantize(sym, quantity)
	asset := account.Wallet[sym]
	if !quantity.IsPositive() || quantity.GreaterThan(asset.Unlocked()) {
		return ex.fail("withdraw", fmt.Errorf("%w: have %s, want %s", ErrInsufficientBalance, asset.Unlocked(), quantity))
	}
	if err := asset.setUnlocked(asset.unlocked.Sub(quantity)); err != nil {
		return ex.fail("withdraw", err)
	}
	ex.diag("withdraw successful: account=%d symbol=%s quantity=%s", accountID, sym, quantity)
	return true, nil
}

func (ex *Exchange) fail(op string, err error) (bool, error) {
	ex.diag("%s failed: %v", op, err)
	if ex.metrics != nil {
		ex.metrics.IncOrdersRejected()
	}
	return false, err
}

// calculateBuyCost walks levels (asks, best price first) to determine the
// quote-currency cost of acquiring quantity units of base. For a limit
// order, any residue once the order's price no longer crosses (or once the
// book is drained) rests at the limit price. For a market order, the full
// quantity must be coverable by resting liquidity or the order is rejected.
func calculateBuyCost(levels []book.Level, quantity decimal.Decimal, price *decimal.Decimal) (decimal.Decimal, bool) {
	cost := decimal.Zero
	remaining := quantity

	if price != nil {
		for _, lvl := range levels {
			if !remaining.IsPositive() {
				break
			}
			if price.LessThanOrEqual(lvl.Price) {
				cost = cost.Add(remaining.Mul(*price))
				remaining = decimal.Zero
				break
			}
			consume := decimal.Min(remaining, lvl.Volume)
			cost = cost.Add(consume.Mul(lvl.Price))
			remaining = remaining.Sub(consume)
		}
		if remaining.IsPositive() {
			cost = cost.Add(remaining.Mul(*price))
		}
		return cost, true
	}

	for _, lvl := range levels {
		if !remaining.IsPositive() {
			break
		}
		consume := decimal.Min(remaining, lvl.Volume)
		cost = cost.Add(consume.Mul(lvl.Price))
		remaining = remaining.Sub(consume)
	}
	if remaining.IsPositive() {
		return decimal.Zero, false
	}
	return cost, true
}
