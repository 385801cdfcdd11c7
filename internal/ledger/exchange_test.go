package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exim-exchange/core/internal/logging"
	"github.com/exim-exchange/core/internal/metrics"
	"github.com/exim-exchange/core/internal/models"
)

func newTestExchange(t *testing.T) *Exchange {
	t.Helper()
	ex := New(logging.Silent(), metrics.New())
	require.True(t, ex.RegisterSymbol("USD", 2))
	require.True(t, ex.RegisterSymbol("BTC", 8))
	require.True(t, ex.RegisterMarket("BTC", "USD"))
	return ex
}

func TestScenarioRestThenCross(t *testing.T) {
	ex := newTestExchange(t)
	alice, _ := ex.RegisterAccount("alice")
	bob, _ := ex.RegisterAccount("bob")

	_, err := ex.Deposit(alice, "USD", d("1000"))
	require.NoError(t, err)
	_, err = ex.Deposit(bob, "BTC", d("1"))
	require.NoError(t, err)

	price := d("100")
	ok, err := ex.Sell(bob, "BTCUSD", d("1"), &price)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = ex.Buy(alice, "BTCUSD", d("1"), &price)
	require.NoError(t, err)
	require.True(t, ok)

	market := ex.markets["BTCUSD"]
	assert.Len(t, market.Trades, 1)

	aliceWallet, _ := ex.GetWallet(alice)
	bobWallet, _ := ex.GetWallet(bob)
	assert.True(t, aliceWallet["BTC"].Total().Equal(d("1")))
	assert.True(t, aliceWallet["USD"].Total().Equal(d("900")))
	assert.True(t, bobWallet["BTC"].Total().IsZero())
	assert.True(t, bobWallet["USD"].Total().Equal(d("100")))
	assert.True(t, market.Book.Bids.Empty())
	assert.True(t, market.Book.Asks.Empty())
}

func TestScenarioPartialFillOnMarketOrder(t *testing.T) {
	ex := newTestExchange(t)
	alice, _ := ex.RegisterAccount("alice")
	bob, _ := ex.RegisterAccount("bob")

	_, err := ex.Deposit(alice, "USD", d("1000"))
	require.NoError(t, err)
	_, err = ex.Deposit(bob, "BTC", d("2"))
	require.NoError(t, err)

	price := d("50")
	_, err = ex.Sell(bob, "BTCUSD", d("2"), &price)
	require.NoError(t, err)

	ok, err := ex.Buy(alice, "BTCUSD", d("1"), nil)
	require.NoError(t, err)
	require.True(t, ok)

	aliceWallet, _ := ex.GetWallet(alice)
	bobWallet, _ := ex.GetWallet(bob)
	assert.True(t, aliceWallet["BTC"].Total().Equal(d("1")))
	assert.True(t, aliceWallet["USD"].Total().Equal(d("950")))
	assert.True(t, bobWallet["USD"].Unlocked().Equal(d("50")))
	assert.True(t, bobWallet["BTC"].Locked().Equal(d("1")))

	market := ex.markets["BTCUSD"]
	assert.False(t, market.Book.Asks.Empty())
	assert.True(t, market.Book.Asks.Top().Quantity.Equal(d("1")))
}

func TestScenarioCrossingLimitAcrossTwoLevels(t *testing.T) {
	ex := newTestExchange(t)
	alice, _ := ex.RegisterAccount("alice")
	bob, _ := ex.RegisterAccount("bob")
	carol, _ := ex.RegisterAccount("carol")

	_, err := ex.Deposit(alice, "USD", d("10000"))
	require.NoError(t, err)
	_, err = ex.Deposit(bob, "BTC", d("1"))
	require.NoError(t, err)
	_, err = ex.Deposit(carol, "BTC", d("1"))
	require.NoError(t, err)

	p100, p110, p120 := d("100"), d("110"), d("120")
	_, err = ex.Sell(bob, "BTCUSD", d("1"), &p100)
	require.NoError(t, err)
	_, err = ex.Sell(carol, "BTCUSD", d("1"), &p110)
	require.NoError(t, err)

	ok, err := ex.Buy(alice, "BTCUSD", d("2"), &p120)
	require.NoError(t, err)
	require.True(t, ok)

	market := ex.markets["BTCUSD"]
	assert.Len(t, market.Trades, 2)
	assert.True(t, market.Trades[1].Price.Equal(p100))
	assert.True(t, market.Trades[2].Price.Equal(p110))

	aliceWallet, _ := ex.GetWallet(alice)
	assert.True(t, aliceWallet["USD"].Locked().IsZero())
	assert.True(t, aliceWallet["USD"].Unlocked().Equal(d("10000").Sub(d("210"))))
}

func TestScenarioLimitBuyWithPartialRest(t *testing.T) {
	ex := newTestExchange(t)
	alice, _ := ex.RegisterAccount("alice")
	bob, _ := ex.RegisterAccount("bob")

	_, err := ex.Deposit(alice, "USD", d("10000"))
	require.NoError(t, err)
	_, err = ex.Deposit(bob, "BTC", d("1"))
	require.NoError(t, err)

	p100, p105 := d("100"), d("105")
	_, err = ex.Sell(bob, "BTCUSD", d("1"), &p100)
	require.NoError(t, err)

	ok, err := ex.Buy(alice, "BTCUSD", d("3"), &p105)
	require.NoError(t, err)
	require.True(t, ok)

	aliceWallet, _ := ex.GetWallet(alice)
	// 100 + 2*105 = 310 is locked at submission; settling the 1@100 fill
	// debits 100 of it, leaving 2*105 backing the resting bid.
	wantLocked := d("2").Mul(d("105"))
	assert.True(t, aliceWallet["USD"].Locked().Equal(wantLocked))

	market := ex.markets["BTCUSD"]
	assert.False(t, market.Book.Bids.Empty())
	assert.True(t, market.Book.Bids.Top().Quantity.Equal(d("2")))
}

func TestScenarioMarketSellFailsOnThinBook(t *testing.T) {
	ex := newTestExchange(t)
	alice, _ := ex.RegisterAccount("alice")
	_, err := ex.Deposit(alice, "BTC", d("1"))
	require.NoError(t, err)

	before, _ := ex.GetWallet(alice)
	beforeTotal := before["BTC"].Total()

	ok, err := ex.Sell(alice, "BTCUSD", d("1"), nil)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrInsufficientLiquidity)

	after, _ := ex.GetWallet(alice)
	assert.True(t, after["BTC"].Total().Equal(beforeTotal))
	assert.True(t, after["BTC"].Locked().IsZero())
}

func TestScenarioCancelUnlocksCorrectly(t *testing.T) {
	ex := newTestExchange(t)
	alice, _ := ex.RegisterAccount("alice")
	_, err := ex.Deposit(alice, "USD", d("1000"))
	require.NoError(t, err)

	price := d("100")
	ok, err := ex.Buy(alice, "BTCUSD", d("5"), &price)
	require.NoError(t, err)
	require.True(t, ok)

	wallet, _ := ex.GetWallet(alice)
	assert.True(t, wallet["USD"].Unlocked().Equal(d("500")))
	assert.True(t, wallet["USD"].Locked().Equal(d("500")))

	var orderID models.OrderID
	for id := range ex.markets["BTCUSD"].Orders {
		orderID = id
	}

	ok, err = ex.Cancel(alice, "BTCUSD", orderID)
	require.NoError(t, err)
	require.True(t, ok)

	wallet, _ = ex.GetWallet(alice)
	assert.True(t, wallet["USD"].Unlocked().Equal(d("1000")))
	assert.True(t, wallet["USD"].Locked().IsZero())

	list, err := ex.GetOrders(alice, "BTCUSD")
	require.NoError(t, err)
	assert.Empty(t, list.Open)
	assert.Contains(t, list.Closed, orderID)
}

func TestConservationAcrossTrade(t *testing.T) {
	ex := newTestExchange(t)
	alice, _ := ex.RegisterAccount("alice")
	bob, _ := ex.RegisterAccount("bob")

	_, err := ex.Deposit(alice, "USD", d("1000"))
	require.NoError(t, err)
	_, err = ex.Deposit(bob, "BTC", d("1"))
	require.NoError(t, err)

	totalUSDBefore := d("1000")
	totalBTCBefore := d("1")

	price := d("100")
	_, err = ex.Sell(bob, "BTCUSD", d("1"), &price)
	require.NoError(t, err)
	_, err = ex.Buy(alice, "BTCUSD", d("1"), &price)
	require.NoError(t, err)

	aliceWallet, _ := ex.GetWallet(alice)
	bobWallet, _ := ex.GetWallet(bob)

	totalUSDAfter := aliceWallet["USD"].Total().Add(bobWallet["USD"].Total())
	totalBTCAfter := aliceWallet["BTC"].Total().Add(bobWallet["BTC"].Total())

	assert.True(t, totalUSDBefore.Equal(totalUSDAfter))
	assert.True(t, totalBTCBefore.Equal(totalBTCAfter))
}

func TestWithdrawSubtractsNotAdds(t *testing.T) {
	ex := newTestExchange(t)
	alice, _ := ex.RegisterAccount("alice")
	_, err := ex.Deposit(alice, "USD", d("1000"))
	require.NoError(t, err)

	ok, err := ex.Withdraw(alice, "USD", d("400"))
	require.NoError(t, err)
	require.True(t, ok)

	wallet, _ := ex.GetWallet(alice)
	assert.True(t, wallet["USD"].Unlocked().Equal(d("600")))
}

func TestWithdrawRejectsOverdraw(t *testing.T) {
	ex := newTestExchange(t)
	alice, _ := ex.RegisterAccount("alice")
	_, err := ex.Deposit(alice, "USD", d("100"))
	require.NoError(t, err)

	ok, err := ex.Withdraw(alice, "USD", d("200"))
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}
