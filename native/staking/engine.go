package staking

import (
	"math/big"
	"time"

	"emberchain/core/events"
)

// ledger is the slice of the token ledger the staking engine moves balances
// through. The staking module account is fee exempt at genesis, so these
// transfers are untaxed and unlimited.
type ledger interface {
	Transfer(from, to [20]byte, amount *big.Int) error
}

// Engine manages the three fixed-duration staking pools. Rewards are
// reserved out of the pool reserve at stake time, so the reserve can never
// be oversubscribed.
type Engine struct {
	ledger        ledger
	emitter       events.Emitter
	owner         [20]byte
	moduleAddress [20]byte
	pools         map[Tier]*pool
	nowFn         func() int64
}

// NewEngine constructs a staking engine with genesis APRs. The module
// account custodies pool and stake tokens inside the token ledger.
func NewEngine(owner, module [20]byte) *Engine {
	return &Engine{
		emitter:       events.NoopEmitter{},
		owner:         owner,
		moduleAddress: module,
		pools: map[Tier]*pool{
			TierNinety:     newPool(DefaultAprNinety),
			TierOneEighty:  newPool(DefaultAprOneEighty),
			TierThreeSixty: newPool(DefaultAprThreeSixty),
		},
		nowFn: func() int64 { return time.Now().Unix() },
	}
}

// SetLedger wires the engine to the token ledger.
func (e *Engine) SetLedger(l ledger) { e.ledger = l }

// SetEmitter configures the event emitter. Passing nil resets it to a no-op.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the clock, primarily for deterministic tests.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// ModuleAddress returns the custody account for pool and stake tokens.
func (e *Engine) ModuleAddress() [20]byte { return e.moduleAddress }

// Owner returns the privileged account.
func (e *Engine) Owner() [20]byte { return e.owner }

func (e *Engine) emit(evt events.Event) {
	if e == nil || e.emitter == nil || evt == nil {
		return
	}
	e.emitter.Emit(evt)
}

func (e *Engine) pool(tier Tier) (*pool, error) {
	p, ok := e.pools[tier]
	if !ok {
		return nil, errUnknownTier
	}
	return p, nil
}

func (e *Engine) requireOwner(caller [20]byte) error {
	if caller != e.owner || caller == ([20]byte{}) {
		return ErrNotOwner
	}
	return nil
}

// --- views ---

// Apr returns the tier's current APR in whole percent.
func (e *Engine) Apr(tier Tier) (uint64, error) {
	p, err := e.pool(tier)
	if err != nil {
		return 0, err
	}
	return p.apr, nil
}

// PoolReserve returns the unreserved funding left in the tier's pool.
func (e *Engine) PoolReserve(tier Tier) (*big.Int, error) {
	p, err := e.pool(tier)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(p.reserve), nil
}

// StakeOf returns a copy of the caller's record in the tier, or nil when
// unstaked.
func (e *Engine) StakeOf(tier Tier, account [20]byte) (*StakeRecord, error) {
	p, err := e.pool(tier)
	if err != nil {
		return nil, err
	}
	return p.stakes[account].Clone(), nil
}

// ReservedRewards sums the outstanding reserved rewards in the tier.
func (e *Engine) ReservedRewards(tier Tier) (*big.Int, error) {
	p, err := e.pool(tier)
	if err != nil {
		return nil, err
	}
	total := big.NewInt(0)
	for _, rec := range p.stakes {
		if rec != nil && rec.ReservedReward != nil {
			total.Add(total, rec.ReservedReward)
		}
	}
	return total, nil
}

// --- owner operations ---

// SetApr updates the tier's APR for future stakes only.
func (e *Engine) SetApr(caller [20]byte, tier Tier, apr uint64) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	p, err := e.pool(tier)
	if err != nil {
		return err
	}
	if apr == 0 {
		return ErrInvalidApr
	}
	if apr == p.apr {
		return ErrAprAlreadySet
	}
	p.apr = apr
	return nil
}

// BulkSetApr updates all three APRs atomically; any zero rejects the whole
// call.
func (e *Engine) BulkSetApr(caller [20]byte, ninety, oneEighty, threeSixty uint64) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if ninety == 0 || oneEighty == 0 || threeSixty == 0 {
		return ErrInvalidApr
	}
	e.pools[TierNinety].apr = ninety
	e.pools[TierOneEighty].apr = oneEighty
	e.pools[TierThreeSixty].apr = threeSixty
	return nil
}

// DepositStakingPool funds the tier's reward reserve from the owner's
// balance.
func (e *Engine) DepositStakingPool(caller [20]byte, tier Tier, amount *big.Int) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if e.ledger == nil {
		return errNilLedger
	}
	p, err := e.pool(tier)
	if err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if err := e.ledger.Transfer(caller, e.moduleAddress, amount); err != nil {
		return err
	}
	p.reserve.Add(p.reserve, amount)
	e.emit(events.PoolFunded{Tier: int(tier), Amount: new(big.Int).Set(amount), Reserve: new(big.Int).Set(p.reserve)})
	return nil
}

// WithdrawStakingPool returns unreserved pool funding to the owner.
func (e *Engine) WithdrawStakingPool(caller [20]byte, tier Tier, amount *big.Int) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if e.ledger == nil {
		return errNilLedger
	}
	p, err := e.pool(tier)
	if err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if amount.Cmp(p.reserve) > 0 {
		return ErrNotEnoughTokensIntoStakingPool
	}
	if err := e.ledger.Transfer(e.moduleAddress, caller, amount); err != nil {
		return err
	}
	p.reserve.Sub(p.reserve, amount)
	e.emit(events.PoolFunded{Tier: int(tier), Amount: new(big.Int).Neg(amount), Reserve: new(big.Int).Set(p.reserve)})
	return nil
}

// --- staking ---

// reward computes the payout reserved for principal at the tier's current
// APR: principal * apr% prorated over the lock duration of a 360-day year,
// rounded down.
func (e *Engine) reward(p *pool, tier Tier, principal *big.Int) *big.Int {
	reward := new(big.Int).Mul(principal, new(big.Int).SetUint64(p.apr))
	reward.Mul(reward, big.NewInt(tier.Days()))
	return reward.Div(reward, big.NewInt(360*100))
}

// Stake locks amount for the tier's full duration, reserving the reward out
// of the pool. A repeat stake before unlock merges principal and reward and
// re-locks the whole position for a fresh full duration.
func (e *Engine) Stake(caller [20]byte, tier Tier, amount *big.Int) error {
	if e.ledger == nil {
		return errNilLedger
	}
	p, err := e.pool(tier)
	if err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	reward := e.reward(p, tier, amount)
	if reward.Cmp(p.reserve) > 0 {
		return ErrNotEnoughTokensIntoStakingPool
	}
	if err := e.ledger.Transfer(caller, e.moduleAddress, amount); err != nil {
		return err
	}
	p.reserve.Sub(p.reserve, reward)
	unlock := e.nowFn() + tier.DurationSeconds()
	rec := p.stakes[caller]
	if rec == nil || rec.Principal == nil || rec.Principal.Sign() == 0 {
		rec = &StakeRecord{
			Principal:      new(big.Int).Set(amount),
			ReservedReward: reward,
			UnlockTime:     unlock,
		}
	} else {
		rec.Principal.Add(rec.Principal, amount)
		rec.ReservedReward.Add(rec.ReservedReward, reward)
		rec.UnlockTime = unlock
	}
	p.stakes[caller] = rec
	e.emit(events.Staked{
		Account:    caller,
		Tier:       int(tier),
		Principal:  new(big.Int).Set(rec.Principal),
		Reward:     new(big.Int).Set(rec.ReservedReward),
		UnlockTime: unlock,
	})
	return nil
}

// Withdraw pays out principal plus reserved reward once the lock expires
// and zeroes the record.
func (e *Engine) Withdraw(caller [20]byte, tier Tier) error {
	if e.ledger == nil {
		return errNilLedger
	}
	p, err := e.pool(tier)
	if err != nil {
		return err
	}
	rec := p.stakes[caller]
	if rec == nil || rec.Principal == nil || rec.Principal.Sign() == 0 {
		return ErrNothingToWithdraw
	}
	if e.nowFn() < rec.UnlockTime {
		return ErrStakingPeriodNotOver
	}
	payout := new(big.Int).Add(rec.Principal, rec.ReservedReward)
	if err := e.ledger.Transfer(e.moduleAddress, caller, payout); err != nil {
		return err
	}
	delete(p.stakes, caller)
	e.emit(events.StakeWithdrawn{Account: caller, Tier: int(tier), Payout: payout})
	return nil
}
