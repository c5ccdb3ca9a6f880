package state

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"sort"

	"emberchain/core/types"
)

type allowanceKey struct {
	owner   [20]byte
	spender [20]byte
}

// Manager is the in-memory deterministic store backing the engines. It holds
// token account records, allowances and settlement-asset balances. Manager
// performs no locking of its own: the node admits one operation at a time,
// so every call observes a single consistent version of state.
type Manager struct {
	accounts   map[[20]byte]*types.Account
	allowances map[allowanceKey]*big.Int
	settlement map[[20]byte]*big.Int
}

// NewManager returns an empty store.
func NewManager() *Manager {
	return &Manager{
		accounts:   make(map[[20]byte]*types.Account),
		allowances: make(map[allowanceKey]*big.Int),
		settlement: make(map[[20]byte]*big.Int),
	}
}

// GetAccount returns the record for addr, creating an empty one on first
// access. The returned pointer aliases the stored record; callers mutate it
// and persist via PutAccount.
func (m *Manager) GetAccount(addr [20]byte) (*types.Account, error) {
	acc, ok := m.accounts[addr]
	if !ok {
		acc = &types.Account{Balance: big.NewInt(0)}
		m.accounts[addr] = acc
	}
	return types.EnsureAccount(acc), nil
}

// PutAccount stores the record for addr.
func (m *Manager) PutAccount(addr [20]byte, acc *types.Account) error {
	if acc == nil {
		return fmt.Errorf("state: nil account for %x", addr)
	}
	m.accounts[addr] = types.EnsureAccount(acc)
	return nil
}

// Allowance returns the approved spend amount for the (owner, spender) pair.
func (m *Manager) Allowance(owner, spender [20]byte) (*big.Int, error) {
	if amount, ok := m.allowances[allowanceKey{owner: owner, spender: spender}]; ok {
		return new(big.Int).Set(amount), nil
	}
	return big.NewInt(0), nil
}

// SetAllowance stores the approved spend amount for the (owner, spender)
// pair. A zero or negative amount clears the entry.
func (m *Manager) SetAllowance(owner, spender [20]byte, amount *big.Int) error {
	key := allowanceKey{owner: owner, spender: spender}
	if amount == nil || amount.Sign() <= 0 {
		delete(m.allowances, key)
		return nil
	}
	m.allowances[key] = new(big.Int).Set(amount)
	return nil
}

// SettlementBalance returns the settlement-asset balance credited to addr by
// past distributions.
func (m *Manager) SettlementBalance(addr [20]byte) (*big.Int, error) {
	if bal, ok := m.settlement[addr]; ok {
		return new(big.Int).Set(bal), nil
	}
	return big.NewInt(0), nil
}

// CreditSettlement adds amount to the settlement-asset balance of addr.
func (m *Manager) CreditSettlement(addr [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return nil
	}
	bal, ok := m.settlement[addr]
	if !ok {
		bal = big.NewInt(0)
		m.settlement[addr] = bal
	}
	bal.Add(bal, amount)
	return nil
}

// TotalBalance sums every account balance. Used by conservation checks and
// snapshot validation.
func (m *Manager) TotalBalance() *big.Int {
	total := big.NewInt(0)
	for _, acc := range m.accounts {
		if acc != nil && acc.Balance != nil {
			total.Add(total, acc.Balance)
		}
	}
	return total
}

// AllowanceEntry is the serialised form of a single approval.
type AllowanceEntry struct {
	Owner   string `json:"owner"`
	Spender string `json:"spender"`
	Amount  string `json:"amount"`
}

// Snapshot is the JSON-serialisable image of the store.
type Snapshot struct {
	Accounts   map[string]*types.Account `json:"accounts"`
	Allowances []AllowanceEntry          `json:"allowances,omitempty"`
	Settlement map[string]string         `json:"settlement,omitempty"`
}

// Export captures the full store state. Map keys are hex encoded addresses;
// allowances are sorted for deterministic output.
func (m *Manager) Export() *Snapshot {
	snap := &Snapshot{
		Accounts:   make(map[string]*types.Account, len(m.accounts)),
		Settlement: make(map[string]string, len(m.settlement)),
	}
	for addr, acc := range m.accounts {
		snap.Accounts[hex.EncodeToString(addr[:])] = acc.Clone()
	}
	for key, amount := range m.allowances {
		snap.Allowances = append(snap.Allowances, AllowanceEntry{
			Owner:   hex.EncodeToString(key.owner[:]),
			Spender: hex.EncodeToString(key.spender[:]),
			Amount:  amount.String(),
		})
	}
	sort.Slice(snap.Allowances, func(i, j int) bool {
		if snap.Allowances[i].Owner != snap.Allowances[j].Owner {
			return snap.Allowances[i].Owner < snap.Allowances[j].Owner
		}
		return snap.Allowances[i].Spender < snap.Allowances[j].Spender
	})
	for addr, bal := range m.settlement {
		snap.Settlement[hex.EncodeToString(addr[:])] = bal.String()
	}
	return snap
}

// Restore replaces the store contents with the supplied snapshot.
func (m *Manager) Restore(snap *Snapshot) error {
	if snap == nil {
		return fmt.Errorf("state: nil snapshot")
	}
	accounts := make(map[[20]byte]*types.Account, len(snap.Accounts))
	for key, acc := range snap.Accounts {
		addr, err := decodeAddr(key)
		if err != nil {
			return err
		}
		accounts[addr] = types.EnsureAccount(acc.Clone())
	}
	allowances := make(map[allowanceKey]*big.Int, len(snap.Allowances))
	for _, entry := range snap.Allowances {
		owner, err := decodeAddr(entry.Owner)
		if err != nil {
			return err
		}
		spender, err := decodeAddr(entry.Spender)
		if err != nil {
			return err
		}
		amount, ok := new(big.Int).SetString(entry.Amount, 10)
		if !ok {
			return fmt.Errorf("state: invalid allowance amount %q", entry.Amount)
		}
		allowances[allowanceKey{owner: owner, spender: spender}] = amount
	}
	settlement := make(map[[20]byte]*big.Int, len(snap.Settlement))
	for key, raw := range snap.Settlement {
		addr, err := decodeAddr(key)
		if err != nil {
			return err
		}
		bal, ok := new(big.Int).SetString(raw, 10)
		if !ok {
			return fmt.Errorf("state: invalid settlement balance %q", raw)
		}
		settlement[addr] = bal
	}
	m.accounts = accounts
	m.allowances = allowances
	m.settlement = settlement
	return nil
}

func decodeAddr(key string) ([20]byte, error) {
	var addr [20]byte
	raw, err := hex.DecodeString(key)
	if err != nil {
		return addr, fmt.Errorf("state: invalid address key %q: %w", key, err)
	}
	if len(raw) != 20 {
		return addr, fmt.Errorf("state: invalid address key length %d", len(raw))
	}
	copy(addr[:], raw)
	return addr, nil
}
