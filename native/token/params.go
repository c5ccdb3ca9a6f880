package token

const (
	// Name, Symbol and Decimals describe the ledger's single fungible token.
	Name     = "Ember"
	Symbol   = "EMB"
	Decimals = 18

	// FeeLimitPercent caps the sum of the four fee percentages.
	FeeLimitPercent = 8

	// DefaultTxTrigger is the genesis distribution trigger: the number of
	// taxed transfers counted before a sell may fire a distribution.
	DefaultTxTrigger = 5

	// DefaultWalletsLimitPercent is the genesis maximum wallet size as a
	// percentage of total supply.
	DefaultWalletsLimitPercent = 1
)

// FeeConfig carries the owner-controlled fee percentages (whole percent) and
// their settlement recipients. The liquidity percentage is charged only on
// sells, transfers whose recipient is a registered pair.
type FeeConfig struct {
	OwnerPercent     uint64
	MarketingPercent uint64
	DevPercent       uint64
	LiquidityPercent uint64

	OwnerRecipient     [20]byte
	MarketingRecipient [20]byte
	DevRecipient       [20]byte
}

// DefaultFees returns the genesis fee configuration with every bucket at 1%
// and all proceeds routed to the supplied owner.
func DefaultFees(owner [20]byte) FeeConfig {
	return FeeConfig{
		OwnerPercent:       1,
		MarketingPercent:   1,
		DevPercent:         1,
		LiquidityPercent:   1,
		OwnerRecipient:     owner,
		MarketingRecipient: owner,
		DevRecipient:       owner,
	}
}

// Total returns the sum of the four percentages.
func (c FeeConfig) Total() uint64 {
	return c.OwnerPercent + c.MarketingPercent + c.DevPercent + c.LiquidityPercent
}
