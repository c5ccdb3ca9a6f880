package token

import (
	"errors"
	"math/big"
	"testing"

	"emberchain/state"
)

func addr(b byte) [20]byte {
	var a [20]byte
	a[19] = b
	return a
}

var (
	testOwner     = addr(0x01)
	testModule    = addr(0xFE)
	testPair      = addr(0xAA)
	testMarketing = addr(0x02)
	testDev       = addr(0x03)
	testRecipient = addr(0x04)
	user1         = addr(0x11)
	user2         = addr(0x12)
)

const testSupply = 21_000_000

func newTestEngine(t *testing.T) (*Engine, *state.Manager) {
	t.Helper()
	m := state.NewManager()
	e := NewEngine(testOwner, testModule, big.NewInt(testSupply))
	e.SetState(m)
	if err := e.InitGenesis(); err != nil {
		t.Fatalf("genesis: %v", err)
	}
	return e, m
}

// newTradingEngine registers a funded pair and dedicated fee recipients, the
// setup every buy/sell scenario starts from.
func newTradingEngine(t *testing.T, pairFunding int64) (*Engine, *state.Manager) {
	t.Helper()
	e, m := newTestEngine(t)
	if err := e.SetPairAddress(testOwner, testPair, true); err != nil {
		t.Fatalf("set pair: %v", err)
	}
	if err := e.SetIsWalletLimitUnlimited(testOwner, testPair, true); err != nil {
		t.Fatalf("pair unlimited: %v", err)
	}
	if err := e.BulkSetAddresses(testOwner, testRecipient, testMarketing, testDev); err != nil {
		t.Fatalf("recipients: %v", err)
	}
	if pairFunding > 0 {
		if err := e.Transfer(testOwner, testPair, big.NewInt(pairFunding)); err != nil {
			t.Fatalf("fund pair: %v", err)
		}
	}
	return e, m
}

func balance(t *testing.T, e *Engine, a [20]byte) *big.Int {
	t.Helper()
	bal, err := e.BalanceOf(a)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	return bal
}

func requireConserved(t *testing.T, m *state.Manager) {
	t.Helper()
	if total := m.TotalBalance(); total.Cmp(big.NewInt(testSupply)) != 0 {
		t.Fatalf("supply not conserved: %s", total)
	}
}

func TestGenesisMintsSupplyToOwner(t *testing.T) {
	e, m := newTestEngine(t)
	if got := balance(t, e, testOwner); got.Cmp(big.NewInt(testSupply)) != 0 {
		t.Fatalf("owner balance %s", got)
	}
	exempt, _ := e.IsExcludedFee(testOwner)
	if !exempt {
		t.Fatal("owner should be fee exempt at genesis")
	}
	exempt, _ = e.IsExcludedFee(testModule)
	if !exempt {
		t.Fatal("module account should be fee exempt at genesis")
	}
	requireConserved(t, m)
}

func TestPlainTransferMovesFullAmount(t *testing.T) {
	e, m := newTestEngine(t)
	if err := e.Transfer(testOwner, user1, big.NewInt(1000)); err != nil {
		t.Fatalf("fund: %v", err)
	}
	if err := e.Transfer(user1, user2, big.NewInt(1000)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if got := balance(t, e, user1); got.Sign() != 0 {
		t.Fatalf("user1 balance %s", got)
	}
	if got := balance(t, e, user2); got.Cmp(big.NewInt(1000)) != 0 {
		t.Fatalf("user2 balance %s", got)
	}
	if got := balance(t, e, testModule); got.Sign() != 0 {
		t.Fatalf("module should hold no fees, has %s", got)
	}
	requireConserved(t, m)
}

func TestTransferRejectsBlacklistedParties(t *testing.T) {
	e, _ := newTestEngine(t)
	if err := e.Transfer(testOwner, user1, big.NewInt(10_000)); err != nil {
		t.Fatalf("fund: %v", err)
	}
	if err := e.SetIsBlacklisted(testOwner, user1, true); err != nil {
		t.Fatalf("blacklist: %v", err)
	}
	if err := e.Transfer(user1, user2, big.NewInt(1000)); !errors.Is(err, ErrBlacklistedAddress) {
		t.Fatalf("expected ErrBlacklistedAddress, got %v", err)
	}
	if err := e.Transfer(user2, user1, big.NewInt(1)); !errors.Is(err, ErrBlacklistedAddress) {
		t.Fatalf("expected ErrBlacklistedAddress for recipient, got %v", err)
	}
}

func TestBuyAppliesFees(t *testing.T) {
	e, m := newTradingEngine(t, 10_000)
	if err := e.Transfer(testPair, user1, big.NewInt(100)); err != nil {
		t.Fatalf("buy: %v", err)
	}
	if got := balance(t, e, user1); got.Cmp(big.NewInt(97)) != 0 {
		t.Fatalf("buyer should net 97, got %s", got)
	}
	if got := balance(t, e, testModule); got.Cmp(big.NewInt(3)) != 0 {
		t.Fatalf("module should hold 3, got %s", got)
	}
	totals := e.Totals()
	for name, got := range map[string]*big.Int{"owner": totals.Owner, "marketing": totals.Marketing, "dev": totals.Dev} {
		if got.Cmp(big.NewInt(1)) != 0 {
			t.Fatalf("%s accumulator should be 1, got %s", name, got)
		}
	}
	if totals.Liquidity.Sign() != 0 {
		t.Fatalf("liquidity accumulator should stay 0 on buys, got %s", totals.Liquidity)
	}
	requireConserved(t, m)
}

func TestSellAddsLiquidityFee(t *testing.T) {
	e, _ := newTradingEngine(t, 10_000)
	if err := e.Transfer(testPair, user1, big.NewInt(1000)); err != nil {
		t.Fatalf("buy: %v", err)
	}
	if err := e.Transfer(user1, testPair, big.NewInt(100)); err != nil {
		t.Fatalf("sell: %v", err)
	}
	totals := e.Totals()
	if totals.Liquidity.Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("liquidity accumulator should be 1 after sell, got %s", totals.Liquidity)
	}
	// 970 from the buy minus the gross 100 sold.
	if got := balance(t, e, user1); got.Cmp(big.NewInt(870)) != 0 {
		t.Fatalf("seller balance %s", got)
	}
}

func TestFeeExemptSkipsFeesAndWalletLimit(t *testing.T) {
	e, _ := newTradingEngine(t, 1_000_000)
	if err := e.SetIsExcludedFee(testOwner, user1, true); err != nil {
		t.Fatalf("exclude: %v", err)
	}
	// 1% of supply is 210,000; an exempt recipient may exceed it untaxed.
	if err := e.Transfer(testPair, user1, big.NewInt(300_000)); err != nil {
		t.Fatalf("exempt buy: %v", err)
	}
	if got := balance(t, e, user1); got.Cmp(big.NewInt(300_000)) != 0 {
		t.Fatalf("exempt buyer should receive full amount, got %s", got)
	}
	if got := balance(t, e, testModule); got.Sign() != 0 {
		t.Fatalf("no fee should accrue, module holds %s", got)
	}
}

func TestWalletLimitEnforcement(t *testing.T) {
	e, _ := newTestEngine(t)
	limitPlusOne := big.NewInt(testSupply/100 + 1)
	if err := e.Transfer(testOwner, user1, limitPlusOne); err != nil {
		t.Fatalf("owner funding bypasses the limit: %v", err)
	}
	if err := e.Transfer(user1, user2, limitPlusOne); !errors.Is(err, ErrExceedsWalletLimit) {
		t.Fatalf("expected ErrExceedsWalletLimit, got %v", err)
	}
	if err := e.SetIsWalletLimitUnlimited(testOwner, user2, true); err != nil {
		t.Fatalf("unlimited: %v", err)
	}
	if err := e.Transfer(user1, user2, limitPlusOne); err != nil {
		t.Fatalf("exempt recipient should accept: %v", err)
	}
	if err := e.SetIsWalletLimitUnlimited(testOwner, user2, false); err != nil {
		t.Fatalf("re-limit: %v", err)
	}
	if err := e.Transfer(user2, user1, limitPlusOne); !errors.Is(err, ErrExceedsWalletLimit) {
		t.Fatalf("expected ErrExceedsWalletLimit on return leg, got %v", err)
	}
	if err := e.SetWalletsLimit(testOwner, 2); err != nil {
		t.Fatalf("raise limit: %v", err)
	}
	if err := e.Transfer(user2, user1, limitPlusOne); err != nil {
		t.Fatalf("transfer within raised limit: %v", err)
	}
	if err := e.SetIsWalletsLimitEnabled(testOwner, false); err != nil {
		t.Fatalf("disable: %v", err)
	}
	if err := e.Transfer(user1, user2, limitPlusOne); err != nil {
		t.Fatalf("disabled limit should not block: %v", err)
	}
}

func TestSetterIdempotencyGuards(t *testing.T) {
	e, _ := newTestEngine(t)
	cases := []struct {
		name string
		op   func() error
		want error
	}{
		{"blacklist", func() error { return e.SetIsBlacklisted(testOwner, user1, false) }, ErrAlreadyBlacklisted},
		{"excludedFee", func() error { return e.SetIsExcludedFee(testOwner, user1, false) }, ErrAlreadyExcludedFee},
		{"walletUnlimited", func() error { return e.SetIsWalletLimitUnlimited(testOwner, user1, false) }, ErrAlreadyWalletLimitUnlimited},
		{"pair", func() error { return e.SetPairAddress(testOwner, user1, false) }, ErrAlreadyAPairAddress},
		{"walletsLimitEnabled", func() error { return e.SetIsWalletsLimitEnabled(testOwner, true) }, ErrAlreadyWalletsLimitEnabled},
		{"walletsLimit", func() error { return e.SetWalletsLimit(testOwner, DefaultWalletsLimitPercent) }, ErrAlreadyWalletLimit},
		{"txTrigger", func() error { return e.SetTxTrigger(testOwner, DefaultTxTrigger) }, ErrAlreadyTxTrigger},
	}
	for _, tc := range cases {
		if err := tc.op(); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
	if err := e.SetWalletsLimit(testOwner, 0); !errors.Is(err, ErrWalletLimitZero) {
		t.Fatalf("expected ErrWalletLimitZero, got %v", err)
	}
}

func TestSettersRequireOwner(t *testing.T) {
	e, _ := newTestEngine(t)
	cases := []struct {
		name string
		op   func() error
	}{
		{"blacklist", func() error { return e.SetIsBlacklisted(user1, user2, true) }},
		{"excludedFee", func() error { return e.SetIsExcludedFee(user1, user2, true) }},
		{"walletUnlimited", func() error { return e.SetIsWalletLimitUnlimited(user1, user2, true) }},
		{"pair", func() error { return e.SetPairAddress(user1, user2, true) }},
		{"walletsLimitEnabled", func() error { return e.SetIsWalletsLimitEnabled(user1, false) }},
		{"walletsLimit", func() error { return e.SetWalletsLimit(user1, 5) }},
		{"txTrigger", func() error { return e.SetTxTrigger(user1, 50) }},
		{"bulkSetFees", func() error { return e.BulkSetFees(user1, 2, 2, 2, 2) }},
		{"bulkSetAddresses", func() error { return e.BulkSetAddresses(user1, user1, user1, user1) }},
		{"depositAirdrop", func() error { return e.DepositAirdropTokens(user1, big.NewInt(1)) }},
		{"bulkAirdrop", func() error { return e.BulkAirdrop(user1, [][20]byte{user2}, []*big.Int{big.NewInt(1)}) }},
		{"withdrawToken", func() error { return e.WithdrawToken(user1, big.NewInt(1)) }},
		{"renounce", func() error { return e.RenounceOwnership(user1) }},
	}
	for _, tc := range cases {
		if err := tc.op(); !errors.Is(err, ErrNotOwner) {
			t.Fatalf("%s: expected ErrNotOwner, got %v", tc.name, err)
		}
	}
}

func TestBulkSetFeesCeiling(t *testing.T) {
	e, _ := newTestEngine(t)
	if err := e.BulkSetFees(testOwner, 2, 2, 2, 3); !errors.Is(err, ErrExceedsFeesLimit) {
		t.Fatalf("expected ErrExceedsFeesLimit, got %v", err)
	}
	fees := e.Fees()
	if fees.OwnerPercent != 1 || fees.LiquidityPercent != 1 {
		t.Fatalf("failed call must not change fees: %+v", fees)
	}
	if err := e.BulkSetFees(testOwner, 3, 1, 2, 2); err != nil {
		t.Fatalf("8%% total should be accepted: %v", err)
	}
	if err := e.BulkSetFees(testOwner, 0, 0, 0, 0); err != nil {
		t.Fatalf("fee holiday should be accepted: %v", err)
	}
}

func TestApproveAndTransferFrom(t *testing.T) {
	e, m := newTestEngine(t)
	if err := e.Transfer(testOwner, user1, big.NewInt(1000)); err != nil {
		t.Fatalf("fund: %v", err)
	}
	spender := addr(0x22)
	if err := e.Approve(user1, spender, big.NewInt(300)); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := e.TransferFrom(spender, user1, user2, big.NewInt(400)); !errors.Is(err, ErrInsufficientAllowance) {
		t.Fatalf("expected ErrInsufficientAllowance, got %v", err)
	}
	if err := e.TransferFrom(spender, user1, user2, big.NewInt(250)); err != nil {
		t.Fatalf("transferFrom: %v", err)
	}
	remaining, _ := e.Allowance(user1, spender)
	if remaining.Cmp(big.NewInt(50)) != 0 {
		t.Fatalf("allowance should drop by the gross amount, got %s", remaining)
	}
	if got := balance(t, e, user2); got.Cmp(big.NewInt(250)) != 0 {
		t.Fatalf("recipient balance %s", got)
	}
	requireConserved(t, m)
}

func TestTransferFromFailureKeepsAllowance(t *testing.T) {
	e, _ := newTestEngine(t)
	spender := addr(0x22)
	if err := e.Transfer(testOwner, user1, big.NewInt(100)); err != nil {
		t.Fatalf("fund: %v", err)
	}
	if err := e.Approve(user1, spender, big.NewInt(500)); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := e.TransferFrom(spender, user1, user2, big.NewInt(200)); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	remaining, _ := e.Allowance(user1, spender)
	if remaining.Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("failed transfer must keep the allowance, got %s", remaining)
	}
}

func TestOwnershipLifecycle(t *testing.T) {
	e, _ := newTestEngine(t)
	next := addr(0x33)
	if err := e.TransferOwnership(testOwner, next); err != nil {
		t.Fatalf("transfer ownership: %v", err)
	}
	if err := e.SetTxTrigger(testOwner, 50); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("old owner must lose privileges, got %v", err)
	}
	if err := e.SetTxTrigger(next, 50); err != nil {
		t.Fatalf("new owner: %v", err)
	}
	if err := e.RenounceOwnership(next); err != nil {
		t.Fatalf("renounce: %v", err)
	}
	if e.Owner() != ([20]byte{}) {
		t.Fatal("owner should be the zero address after renounce")
	}
	if err := e.SetTxTrigger(next, 60); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("renounced owner must lose privileges, got %v", err)
	}
}

func TestConservationAcrossOperations(t *testing.T) {
	e, m := newTradingEngine(t, 500_000)
	_ = e.Transfer(testPair, user1, big.NewInt(10_000))
	_ = e.Transfer(user1, user2, big.NewInt(2_000))
	_ = e.Transfer(user2, testPair, big.NewInt(500))
	_ = e.DepositAirdropTokens(testOwner, big.NewInt(10_000))
	_ = e.BulkAirdrop(testOwner, [][20]byte{user1, user2}, []*big.Int{big.NewInt(1_000), big.NewInt(2_000)})
	requireConserved(t, m)
}
