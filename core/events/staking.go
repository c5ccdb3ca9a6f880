package events

import (
	"math/big"
	"strconv"

	"emberchain/core/types"
)

const (
	// TypeStaked is emitted when a stake is created or topped up.
	TypeStaked = "staking.staked"
	// TypeStakeWithdrawn is emitted when a matured stake pays out.
	TypeStakeWithdrawn = "staking.withdrawn"
	// TypePoolFunded is emitted when the owner moves tokens in or out of a
	// reward pool.
	TypePoolFunded = "staking.pool.funded"
)

// Staked captures a stake creation or top-up in one tier.
type Staked struct {
	Account    [20]byte
	Tier       int
	Principal  *big.Int
	Reward     *big.Int
	UnlockTime int64
}

func (Staked) EventType() string { return TypeStaked }

func (e Staked) Event() *types.Event {
	return &types.Event{Type: TypeStaked, Attributes: map[string]string{
		"account":    formatAddr(e.Account),
		"tier":       strconv.Itoa(e.Tier),
		"principal":  formatAmount(e.Principal),
		"reward":     formatAmount(e.Reward),
		"unlockTime": strconv.FormatInt(e.UnlockTime, 10),
	}}
}

// StakeWithdrawn captures a matured stake payout.
type StakeWithdrawn struct {
	Account [20]byte
	Tier    int
	Payout  *big.Int
}

func (StakeWithdrawn) EventType() string { return TypeStakeWithdrawn }

func (e StakeWithdrawn) Event() *types.Event {
	return &types.Event{Type: TypeStakeWithdrawn, Attributes: map[string]string{
		"account": formatAddr(e.Account),
		"tier":    strconv.Itoa(e.Tier),
		"payout":  formatAmount(e.Payout),
	}}
}

// PoolFunded captures an owner deposit into or withdrawal from a pool
// reserve. Amount is negative for withdrawals.
type PoolFunded struct {
	Tier    int
	Amount  *big.Int
	Reserve *big.Int
}

func (PoolFunded) EventType() string { return TypePoolFunded }

func (e PoolFunded) Event() *types.Event {
	return &types.Event{Type: TypePoolFunded, Attributes: map[string]string{
		"tier":    strconv.Itoa(e.Tier),
		"amount":  formatAmount(e.Amount),
		"reserve": formatAmount(e.Reserve),
	}}
}
