package state

import (
	"math/big"
	"testing"
)

func addr(b byte) [20]byte {
	var a [20]byte
	a[19] = b
	return a
}

func TestAccountLifecycle(t *testing.T) {
	m := NewManager()
	acc, err := m.GetAccount(addr(1))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if acc.Balance.Sign() != 0 {
		t.Fatalf("fresh account should have zero balance, got %s", acc.Balance)
	}
	acc.Balance = big.NewInt(500)
	acc.FeeExempt = true
	if err := m.PutAccount(addr(1), acc); err != nil {
		t.Fatalf("put: %v", err)
	}
	reloaded, _ := m.GetAccount(addr(1))
	if reloaded.Balance.Cmp(big.NewInt(500)) != 0 || !reloaded.FeeExempt {
		t.Fatalf("unexpected reloaded account: %+v", reloaded)
	}
	if total := m.TotalBalance(); total.Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("total balance mismatch: %s", total)
	}
}

func TestAllowanceClearsOnZero(t *testing.T) {
	m := NewManager()
	if err := m.SetAllowance(addr(1), addr(2), big.NewInt(100)); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, _ := m.Allowance(addr(1), addr(2))
	if got.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("allowance mismatch: %s", got)
	}
	if err := m.SetAllowance(addr(1), addr(2), big.NewInt(0)); err != nil {
		t.Fatalf("clear: %v", err)
	}
	got, _ = m.Allowance(addr(1), addr(2))
	if got.Sign() != 0 {
		t.Fatalf("allowance should be cleared, got %s", got)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	m := NewManager()
	acc, _ := m.GetAccount(addr(1))
	acc.Balance = big.NewInt(1234)
	acc.Blacklisted = true
	_ = m.PutAccount(addr(1), acc)
	_ = m.SetAllowance(addr(1), addr(2), big.NewInt(77))
	_ = m.CreditSettlement(addr(3), big.NewInt(9))

	restored := NewManager()
	if err := restored.Restore(m.Export()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	acc2, _ := restored.GetAccount(addr(1))
	if acc2.Balance.Cmp(big.NewInt(1234)) != 0 || !acc2.Blacklisted {
		t.Fatalf("account not restored: %+v", acc2)
	}
	allowance, _ := restored.Allowance(addr(1), addr(2))
	if allowance.Cmp(big.NewInt(77)) != 0 {
		t.Fatalf("allowance not restored: %s", allowance)
	}
	settle, _ := restored.SettlementBalance(addr(3))
	if settle.Cmp(big.NewInt(9)) != 0 {
		t.Fatalf("settlement not restored: %s", settle)
	}
}
