package token

import (
	"errors"
	"math/big"
	"testing"

	"emberchain/state"
)

var exchangeAccount = addr(0xBB)

// stubExchange converts tokens at a fixed rate plus an optional fixed bonus,
// and records every call for assertions.
type stubExchange struct {
	rate          int64
	proceedsBonus int64
	minted        int64
	failSwap      bool
	failLiquidity bool

	swapped         []*big.Int
	liquidityTokens []*big.Int
	liquidityPaired []*big.Int
}

func (s *stubExchange) SwapTokensForSettlement(tokens *big.Int) (*big.Int, error) {
	if s.failSwap {
		return nil, errors.New("router: swap reverted")
	}
	s.swapped = append(s.swapped, new(big.Int).Set(tokens))
	out := new(big.Int).Mul(tokens, big.NewInt(s.rate))
	return out.Add(out, big.NewInt(s.proceedsBonus)), nil
}

func (s *stubExchange) AddLiquidity(tokens, settlement *big.Int) (*big.Int, error) {
	if s.failLiquidity {
		return nil, errors.New("router: add liquidity reverted")
	}
	s.liquidityTokens = append(s.liquidityTokens, new(big.Int).Set(tokens))
	s.liquidityPaired = append(s.liquidityPaired, new(big.Int).Set(settlement))
	return big.NewInt(s.minted), nil
}

func newDistributionEngine(t *testing.T, ex *stubExchange) (*Engine, *state.Manager) {
	t.Helper()
	e, m := newTradingEngine(t, 10_000)
	e.SetExchange(ex, exchangeAccount)
	return e, m
}

// runTradeCycle performs one buy of 1000 and four sells of 100. With default
// fees and trigger 5 the fourth sell is the fifth taxed transfer, so the
// distribution fires inside it. Module balance at that point is 46 tokens:
// 30 from the buy plus four times 4 from the sells, with accumulators
// owner/marketing/dev 14 each and liquidity 4.
func runTradeCycle(t *testing.T, e *Engine) {
	t.Helper()
	if err := e.Transfer(testPair, user1, big.NewInt(1000)); err != nil {
		t.Fatalf("buy: %v", err)
	}
	for i := 0; i < 4; i++ {
		if err := e.Transfer(user1, testPair, big.NewInt(100)); err != nil {
			t.Fatalf("sell %d: %v", i, err)
		}
	}
}

func settlement(t *testing.T, m *state.Manager, a [20]byte) *big.Int {
	t.Helper()
	bal, err := m.SettlementBalance(a)
	if err != nil {
		t.Fatalf("settlement balance: %v", err)
	}
	return bal
}

func TestDistributionFiresOnTrigger(t *testing.T) {
	ex := &stubExchange{rate: 2, minted: 7}
	e, m := newDistributionEngine(t, ex)
	runTradeCycle(t, e)

	// Held 46: 2 liquidity tokens kept, 44 swapped at rate 2 for 88.
	if len(ex.swapped) != 1 || ex.swapped[0].Cmp(big.NewInt(44)) != 0 {
		t.Fatalf("expected one swap of 44, got %v", ex.swapped)
	}
	if len(ex.liquidityTokens) != 1 || ex.liquidityTokens[0].Cmp(big.NewInt(2)) != 0 {
		t.Fatalf("expected 2 liquidity tokens, got %v", ex.liquidityTokens)
	}
	// Liquidity settlement share: 88 * 2 / 44.
	if ex.liquidityPaired[0].Cmp(big.NewInt(4)) != 0 {
		t.Fatalf("expected 4 settlement paired, got %v", ex.liquidityPaired)
	}
	// Each recipient counter is 14: 88 * 14 / 44 = 28.
	for name, a := range map[string][20]byte{"owner": testRecipient, "marketing": testMarketing, "dev": testDev} {
		if got := settlement(t, m, a); got.Cmp(big.NewInt(28)) != 0 {
			t.Fatalf("%s settlement should be 28, got %s", name, got)
		}
	}
	if got := settlement(t, m, testModule); got.Sign() != 0 {
		t.Fatalf("no dust expected, module settlement is %s", got)
	}
	if got := balance(t, e, testModule); got.Sign() != 0 {
		t.Fatalf("module token balance should be drained, got %s", got)
	}
	if got := balance(t, e, exchangeAccount); got.Cmp(big.NewInt(46)) != 0 {
		t.Fatalf("exchange account should hold the 46 consumed tokens, got %s", got)
	}
	totals := e.Totals()
	for name, c := range map[string]*big.Int{"owner": totals.Owner, "marketing": totals.Marketing, "dev": totals.Dev, "liquidity": totals.Liquidity} {
		if c.Sign() != 0 {
			t.Fatalf("%s accumulator should reset, got %s", name, c)
		}
	}
	if e.TxCounter() != 0 {
		t.Fatalf("tx counter should reset, got %d", e.TxCounter())
	}
	if e.LiquidityMinted().Cmp(big.NewInt(7)) != 0 {
		t.Fatalf("lp minted should be 7, got %s", e.LiquidityMinted())
	}
	requireConserved(t, m)
}

func TestDistributionWaitsForSellAtPair(t *testing.T) {
	ex := &stubExchange{rate: 2}
	e, _ := newDistributionEngine(t, ex)
	if err := e.Transfer(testPair, user1, big.NewInt(1000)); err != nil {
		t.Fatalf("buy: %v", err)
	}
	// Four more buys pass the trigger count, but the recipient is not the
	// pair so nothing fires.
	for i := 0; i < 4; i++ {
		if err := e.Transfer(testPair, user2, big.NewInt(100)); err != nil {
			t.Fatalf("buy %d: %v", i, err)
		}
	}
	if len(ex.swapped) != 0 {
		t.Fatalf("distribution must wait for a sell, swapped %v", ex.swapped)
	}
	if e.TxCounter() != 5 {
		t.Fatalf("tx counter should be 5, got %d", e.TxCounter())
	}
	if err := e.Transfer(user1, testPair, big.NewInt(100)); err != nil {
		t.Fatalf("sell: %v", err)
	}
	if len(ex.swapped) != 1 {
		t.Fatal("sell into the pair should fire the distribution")
	}
}

func TestDistributionFailureIsRecoverable(t *testing.T) {
	ex := &stubExchange{rate: 2, failSwap: true}
	e, m := newDistributionEngine(t, ex)
	runTradeCycle(t, e)

	// The swap reverted; the triggering sell still settles and all fee
	// accounting survives for the next attempt.
	if got := balance(t, e, testModule); got.Cmp(big.NewInt(46)) != 0 {
		t.Fatalf("module should keep 46 fee tokens, got %s", got)
	}
	if e.TxCounter() != 5 {
		t.Fatalf("tx counter must survive the failure, got %d", e.TxCounter())
	}
	totals := e.Totals()
	if totals.Owner.Cmp(big.NewInt(14)) != 0 || totals.Liquidity.Cmp(big.NewInt(4)) != 0 {
		t.Fatalf("accumulators must survive the failure: %+v", totals)
	}
	requireConserved(t, m)

	// Next taxed sell retries with a healthy exchange.
	ex.failSwap = false
	if err := e.Transfer(user1, testPair, big.NewInt(100)); err != nil {
		t.Fatalf("retry sell: %v", err)
	}
	if len(ex.swapped) != 1 {
		t.Fatal("retry should swap")
	}
	if e.TxCounter() != 0 {
		t.Fatalf("tx counter should reset after the retry, got %d", e.TxCounter())
	}
	requireConserved(t, m)
}

func TestDistributionDustStaysWithModule(t *testing.T) {
	// Rate 2 with a bonus unit makes every floor division leave a remainder.
	ex := &stubExchange{rate: 2, proceedsBonus: 1}
	e, m := newDistributionEngine(t, ex)
	runTradeCycle(t, e)

	// Proceeds 89 over 44 swapped: 28 each to the three recipients, 4 to
	// liquidity, 1 unit of dust.
	if got := settlement(t, m, testRecipient); got.Cmp(big.NewInt(28)) != 0 {
		t.Fatalf("owner settlement %s", got)
	}
	if got := settlement(t, m, testModule); got.Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("dust should stay with the module, got %s", got)
	}
}

func TestDistributionSkipsAirdropReserve(t *testing.T) {
	ex := &stubExchange{rate: 2}
	e, m := newDistributionEngine(t, ex)
	if err := e.DepositAirdropTokens(testOwner, big.NewInt(5_000)); err != nil {
		t.Fatalf("deposit airdrop: %v", err)
	}
	runTradeCycle(t, e)

	// Only the 46 fee tokens are distributable; the reserve stays put.
	if len(ex.swapped) != 1 || ex.swapped[0].Cmp(big.NewInt(44)) != 0 {
		t.Fatalf("expected swap of 44, got %v", ex.swapped)
	}
	if got := balance(t, e, testModule); got.Cmp(big.NewInt(5_000)) != 0 {
		t.Fatalf("airdrop reserve must remain, module has %s", got)
	}
	if e.AirdropTokens().Cmp(big.NewInt(5_000)) != 0 {
		t.Fatalf("reserve accounting drifted: %s", e.AirdropTokens())
	}
	requireConserved(t, m)
}

func TestDistributionWithoutExchangeLeavesStateIntact(t *testing.T) {
	e, m := newTradingEngine(t, 10_000)
	runTradeCycle(t, e)

	if got := balance(t, e, testModule); got.Cmp(big.NewInt(46)) != 0 {
		t.Fatalf("fees should accumulate unswapped, got %s", got)
	}
	if e.TxCounter() != 5 {
		t.Fatalf("tx counter should keep counting, got %d", e.TxCounter())
	}
	requireConserved(t, m)
}
