package staking

import "errors"

var (
	// ErrNotOwner rejects privileged operations from any caller other than
	// the configured owner.
	ErrNotOwner = errors.New("staking: caller is not the owner")
	// ErrInvalidAmount rejects nil, zero or negative amounts.
	ErrInvalidAmount = errors.New("staking: amount must be positive")
	// ErrInvalidApr rejects a zero APR.
	ErrInvalidApr = errors.New("staking: apr must not be zero")
	// ErrAprAlreadySet rejects setting a tier's APR to its current value.
	ErrAprAlreadySet = errors.New("staking: apr already set to this value")
	// ErrNotEnoughTokensIntoStakingPool indicates the pool reserve cannot
	// back the requested reward or withdrawal.
	ErrNotEnoughTokensIntoStakingPool = errors.New("staking: not enough tokens in staking pool")
	// ErrNothingToWithdraw indicates the caller holds no stake in the tier.
	ErrNothingToWithdraw = errors.New("staking: nothing to withdraw")
	// ErrStakingPeriodNotOver indicates the stake's unlock time is still in
	// the future.
	ErrStakingPeriodNotOver = errors.New("staking: staking period not over")
)

var (
	errNilLedger  = errors.New("staking: token ledger not configured")
	errUnknownTier = errors.New("staking: unknown tier")
)
