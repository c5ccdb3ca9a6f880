package staking

import "math/big"

// Tier identifies one of the three fixed-duration staking pools.
type Tier int

const (
	TierNinety Tier = iota
	TierOneEighty
	TierThreeSixty
)

const secondsPerDay = 86_400

// Default genesis APRs per tier, in whole percent annualised over a 360-day
// year.
const (
	DefaultAprNinety     uint64 = 400
	DefaultAprOneEighty  uint64 = 600
	DefaultAprThreeSixty uint64 = 800
)

// Tiers enumerates every pool tier in declaration order.
func Tiers() []Tier {
	return []Tier{TierNinety, TierOneEighty, TierThreeSixty}
}

// Days returns the lock duration of the tier in days.
func (t Tier) Days() int64 {
	switch t {
	case TierNinety:
		return 90
	case TierOneEighty:
		return 180
	case TierThreeSixty:
		return 360
	default:
		return 0
	}
}

// DurationSeconds returns the lock duration of the tier in seconds.
func (t Tier) DurationSeconds() int64 {
	return t.Days() * secondsPerDay
}

// Valid reports whether t names a configured tier.
func (t Tier) Valid() bool {
	return t >= TierNinety && t <= TierThreeSixty
}

func (t Tier) String() string {
	switch t {
	case TierNinety:
		return "ninety"
	case TierOneEighty:
		return "one-eighty"
	case TierThreeSixty:
		return "three-sixty"
	default:
		return "unknown"
	}
}

// StakeRecord is the locked position of one account in one tier. The
// reserved reward is fixed at stake time from the APR applicable at that
// moment; later APR changes do not touch it.
type StakeRecord struct {
	Principal      *big.Int `json:"principal"`
	ReservedReward *big.Int `json:"reservedReward"`
	UnlockTime     int64    `json:"unlockTime"`
}

// Clone returns a deep copy of the record.
func (r *StakeRecord) Clone() *StakeRecord {
	if r == nil {
		return nil
	}
	clone := &StakeRecord{UnlockTime: r.UnlockTime, Principal: big.NewInt(0), ReservedReward: big.NewInt(0)}
	if r.Principal != nil {
		clone.Principal.Set(r.Principal)
	}
	if r.ReservedReward != nil {
		clone.ReservedReward.Set(r.ReservedReward)
	}
	return clone
}

type pool struct {
	apr     uint64
	reserve *big.Int
	stakes  map[[20]byte]*StakeRecord
}

func newPool(apr uint64) *pool {
	return &pool{apr: apr, reserve: big.NewInt(0), stakes: make(map[[20]byte]*StakeRecord)}
}
