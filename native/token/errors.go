package token

import "errors"

var (
	// ErrNotOwner rejects privileged operations from any caller other than
	// the configured owner.
	ErrNotOwner = errors.New("token: caller is not the owner")
	// ErrInvalidAmount rejects nil, zero or negative amounts.
	ErrInvalidAmount = errors.New("token: amount must be positive")
	// ErrBlacklistedAddress rejects transfers touching a blacklisted party.
	ErrBlacklistedAddress = errors.New("token: blacklisted address")
	// ErrInsufficientBalance indicates the debited account cannot cover the
	// requested amount.
	ErrInsufficientBalance = errors.New("token: insufficient balance")
	// ErrInsufficientAllowance indicates the spender was not approved for
	// the requested gross amount.
	ErrInsufficientAllowance = errors.New("token: insufficient allowance")
	// ErrExceedsWalletLimit indicates the recipient balance would exceed the
	// configured share of total supply.
	ErrExceedsWalletLimit = errors.New("token: recipient exceeds wallet limit")
	// ErrExceedsFeesLimit indicates the four fee percentages would sum above
	// the hard ceiling.
	ErrExceedsFeesLimit = errors.New("token: fees exceed limit")

	// ErrAlreadyBlacklisted rejects a blacklist setter that would not change
	// state.
	ErrAlreadyBlacklisted = errors.New("token: blacklist flag already set")
	// ErrAlreadyExcludedFee rejects a fee-exemption setter that would not
	// change state.
	ErrAlreadyExcludedFee = errors.New("token: fee exemption flag already set")
	// ErrAlreadyWalletLimitUnlimited rejects a wallet-limit-exemption setter
	// that would not change state.
	ErrAlreadyWalletLimitUnlimited = errors.New("token: wallet limit exemption flag already set")
	// ErrAlreadyWalletsLimitEnabled rejects enabling or disabling the wallet
	// limit into its current state.
	ErrAlreadyWalletsLimitEnabled = errors.New("token: wallets limit enabled flag already set")
	// ErrAlreadyWalletLimit rejects setting the wallet limit to its current
	// value.
	ErrAlreadyWalletLimit = errors.New("token: wallets limit already set to this value")
	// ErrWalletLimitZero rejects a zero wallet limit.
	ErrWalletLimitZero = errors.New("token: wallets limit must not be zero")
	// ErrAlreadyAPairAddress rejects a pair setter that would not change
	// state.
	ErrAlreadyAPairAddress = errors.New("token: pair flag already set")
	// ErrAlreadyTxTrigger rejects setting the distribution trigger to its
	// current value.
	ErrAlreadyTxTrigger = errors.New("token: tx trigger already set to this value")

	// ErrInvalidArrayLength rejects airdrop batches whose recipient and
	// amount slices differ in length.
	ErrInvalidArrayLength = errors.New("token: recipients and amounts length mismatch")
	// ErrInsufficientAirdropTokens indicates the batch total exceeds the
	// airdrop reserve.
	ErrInsufficientAirdropTokens = errors.New("token: insufficient airdrop tokens")
)

var (
	errNilState             = errors.New("token: state not configured")
	errExchangeUnavailable  = errors.New("token: exchange not configured")
	errDistributionPending  = errors.New("token: distribution already in progress")
	errNothingToDistribute  = errors.New("token: nothing to distribute")
	errSupplyNotInitialised = errors.New("token: genesis supply not initialised")
)
