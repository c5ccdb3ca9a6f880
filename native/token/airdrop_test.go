package token

import (
	"errors"
	"math/big"
	"testing"
)

func TestDepositAirdropTokens(t *testing.T) {
	e, m := newTestEngine(t)
	if err := e.DepositAirdropTokens(testOwner, big.NewInt(10_000)); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if got := e.AirdropTokens(); got.Cmp(big.NewInt(10_000)) != 0 {
		t.Fatalf("reserve should be 10000, got %s", got)
	}
	if got := balance(t, e, testModule); got.Cmp(big.NewInt(10_000)) != 0 {
		t.Fatalf("module should custody the reserve, got %s", got)
	}
	if err := e.DepositAirdropTokens(testOwner, big.NewInt(0)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if err := e.DepositAirdropTokens(testOwner, big.NewInt(testSupply)); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	requireConserved(t, m)
}

func TestBulkAirdrop(t *testing.T) {
	e, m := newTestEngine(t)
	if err := e.DepositAirdropTokens(testOwner, big.NewInt(10_000)); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	recipients := [][20]byte{user1, user2}
	amounts := []*big.Int{big.NewInt(1_000), big.NewInt(2_000)}
	if err := e.BulkAirdrop(testOwner, recipients, amounts); err != nil {
		t.Fatalf("airdrop: %v", err)
	}
	if got := balance(t, e, user1); got.Cmp(big.NewInt(1_000)) != 0 {
		t.Fatalf("user1 balance %s", got)
	}
	if got := balance(t, e, user2); got.Cmp(big.NewInt(2_000)) != 0 {
		t.Fatalf("user2 balance %s", got)
	}
	if got := e.AirdropTokens(); got.Cmp(big.NewInt(7_000)) != 0 {
		t.Fatalf("reserve should be 7000, got %s", got)
	}
	requireConserved(t, m)
}

func TestBulkAirdropRejectsBadBatches(t *testing.T) {
	e, _ := newTestEngine(t)
	if err := e.DepositAirdropTokens(testOwner, big.NewInt(1_000)); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if err := e.BulkAirdrop(testOwner, [][20]byte{user1, user2}, []*big.Int{big.NewInt(1)}); !errors.Is(err, ErrInvalidArrayLength) {
		t.Fatalf("expected ErrInvalidArrayLength, got %v", err)
	}
	if err := e.BulkAirdrop(testOwner, [][20]byte{user1}, []*big.Int{big.NewInt(0)}); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	// Over-reserve batches fail before any recipient is credited.
	err := e.BulkAirdrop(testOwner, [][20]byte{user1, user2}, []*big.Int{big.NewInt(900), big.NewInt(200)})
	if !errors.Is(err, ErrInsufficientAirdropTokens) {
		t.Fatalf("expected ErrInsufficientAirdropTokens, got %v", err)
	}
	if got := balance(t, e, user1); got.Sign() != 0 {
		t.Fatalf("failed batch must not credit anyone, user1 has %s", got)
	}
	if got := e.AirdropTokens(); got.Cmp(big.NewInt(1_000)) != 0 {
		t.Fatalf("reserve must be untouched, got %s", got)
	}
}

func TestWithdrawTokenProtectsAirdropReserve(t *testing.T) {
	e, m := newTestEngine(t)
	if err := e.DepositAirdropTokens(testOwner, big.NewInt(10_000)); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	// A stray direct transfer leaves 9000 withdrawable on top of the
	// untouchable 10000 reserve.
	if err := e.Transfer(testOwner, testModule, big.NewInt(9_000)); err != nil {
		t.Fatalf("stray transfer: %v", err)
	}
	if err := e.WithdrawToken(testOwner, big.NewInt(9_001)); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if err := e.WithdrawToken(testOwner, big.NewInt(9_000)); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if got := balance(t, e, testModule); got.Cmp(big.NewInt(10_000)) != 0 {
		t.Fatalf("only the reserve should remain, got %s", got)
	}
	requireConserved(t, m)
}
