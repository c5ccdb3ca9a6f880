package rpc

import (
	"errors"

	"emberchain/native/staking"
	"emberchain/native/token"
)

// errorLabel maps ledger sentinel errors to the short labels clients switch
// on. Unknown errors surface as Internal.
func errorLabel(err error) string {
	switch {
	case errors.Is(err, token.ErrNotOwner) || errors.Is(err, staking.ErrNotOwner):
		return "NotOwner"
	case errors.Is(err, token.ErrInvalidAmount) || errors.Is(err, staking.ErrInvalidAmount):
		return "InvalidAmount"
	case errors.Is(err, token.ErrBlacklistedAddress):
		return "BlacklistedAddress"
	case errors.Is(err, token.ErrInsufficientBalance):
		return "InsufficientBalance"
	case errors.Is(err, token.ErrInsufficientAllowance):
		return "InsufficientAllowance"
	case errors.Is(err, token.ErrExceedsWalletLimit):
		return "ExceedsWalletLimit"
	case errors.Is(err, token.ErrExceedsFeesLimit):
		return "ExceedsFeesLimit"
	case errors.Is(err, token.ErrAlreadyBlacklisted):
		return "AlreadyBlacklisted"
	case errors.Is(err, token.ErrAlreadyExcludedFee):
		return "AlreadyExcludedFee"
	case errors.Is(err, token.ErrAlreadyWalletLimitUnlimited):
		return "AlreadyWalletLimitUnlimited"
	case errors.Is(err, token.ErrAlreadyWalletsLimitEnabled):
		return "AlreadyWalletsLimitEnabled"
	case errors.Is(err, token.ErrAlreadyWalletLimit):
		return "AlreadyWalletLimit"
	case errors.Is(err, token.ErrWalletLimitZero):
		return "WalletLimitZero"
	case errors.Is(err, token.ErrAlreadyAPairAddress):
		return "AlreadyAPairAddress"
	case errors.Is(err, token.ErrAlreadyTxTrigger):
		return "AlreadyTxTrigger"
	case errors.Is(err, token.ErrInvalidArrayLength):
		return "InvalidArrayLength"
	case errors.Is(err, token.ErrInsufficientAirdropTokens):
		return "InsufficientAirdropTokens"
	case errors.Is(err, staking.ErrInvalidApr):
		return "InvalidApr"
	case errors.Is(err, staking.ErrAprAlreadySet):
		return "AprAlreadySet"
	case errors.Is(err, staking.ErrNotEnoughTokensIntoStakingPool):
		return "NotEnoughTokensIntoStakingPool"
	case errors.Is(err, staking.ErrNothingToWithdraw):
		return "NothingToWithdraw"
	case errors.Is(err, staking.ErrStakingPeriodNotOver):
		return "StakingPeriodNotOver"
	default:
		return "Internal"
	}
}
