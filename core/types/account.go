package types

import "math/big"

// Account is a ledger account record. Balance is always non-nil once the
// account has passed through EnsureAccount.
type Account struct {
	Nonce           uint64   `json:"nonce"`
	Balance         *big.Int `json:"balance"`
	Blacklisted     bool     `json:"blacklisted,omitempty"`
	FeeExempt       bool     `json:"feeExempt,omitempty"`
	WalletUnlimited bool     `json:"walletUnlimited,omitempty"`
	Pair            bool     `json:"pair,omitempty"`
}

// EnsureAccount normalises a possibly-nil record so callers can mutate it
// without nil checks.
func EnsureAccount(acc *Account) *Account {
	if acc == nil {
		return &Account{Balance: big.NewInt(0)}
	}
	if acc.Balance == nil {
		acc.Balance = big.NewInt(0)
	}
	return acc
}

// Clone returns a deep copy of the account.
func (a *Account) Clone() *Account {
	if a == nil {
		return &Account{Balance: big.NewInt(0)}
	}
	clone := *a
	if a.Balance != nil {
		clone.Balance = new(big.Int).Set(a.Balance)
	} else {
		clone.Balance = big.NewInt(0)
	}
	return &clone
}
