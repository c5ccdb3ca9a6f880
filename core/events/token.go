package events

import (
	"math/big"
	"strconv"

	"emberchain/core/types"
	"emberchain/crypto"
)

const (
	// TypeTransfer is emitted for every completed balance movement.
	TypeTransfer = "token.transfer"
	// TypeFeeAccrued is emitted when a taxed transfer credits the fee
	// accumulators.
	TypeFeeAccrued = "token.fee.accrued"
	// TypeDistribution is emitted after a fee distribution cycle completes.
	TypeDistribution = "token.distribution"
	// TypeAirdrop is emitted for each completed bulk airdrop batch.
	TypeAirdrop = "token.airdrop"
)

func formatAmount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func formatAddr(b [20]byte) string {
	return crypto.MustNewAddress(crypto.EmberPrefix, b[:]).String()
}

// Transfer captures a completed balance movement, net of any extracted fee.
type Transfer struct {
	From [20]byte
	To   [20]byte
	Net  *big.Int
	Fee  *big.Int
}

func (Transfer) EventType() string { return TypeTransfer }

func (e Transfer) Event() *types.Event {
	return &types.Event{Type: TypeTransfer, Attributes: map[string]string{
		"from": formatAddr(e.From),
		"to":   formatAddr(e.To),
		"net":  formatAmount(e.Net),
		"fee":  formatAmount(e.Fee),
	}}
}

// FeeAccrued records the per-bucket split of a single transfer tax.
type FeeAccrued struct {
	Owner     *big.Int
	Marketing *big.Int
	Dev       *big.Int
	Liquidity *big.Int
}

func (FeeAccrued) EventType() string { return TypeFeeAccrued }

func (e FeeAccrued) Event() *types.Event {
	return &types.Event{Type: TypeFeeAccrued, Attributes: map[string]string{
		"owner":     formatAmount(e.Owner),
		"marketing": formatAmount(e.Marketing),
		"dev":       formatAmount(e.Dev),
		"liquidity": formatAmount(e.Liquidity),
	}}
}

// Distribution summarises a completed fee distribution cycle.
type Distribution struct {
	TokensSwapped    *big.Int
	Proceeds         *big.Int
	LiquidityTokens  *big.Int
	LiquidityMinted  *big.Int
	RecipientsCount  int
	SettlementUnpaid *big.Int
}

func (Distribution) EventType() string { return TypeDistribution }

func (e Distribution) Event() *types.Event {
	return &types.Event{Type: TypeDistribution, Attributes: map[string]string{
		"tokensSwapped":   formatAmount(e.TokensSwapped),
		"proceeds":        formatAmount(e.Proceeds),
		"liquidityTokens": formatAmount(e.LiquidityTokens),
		"liquidityMinted": formatAmount(e.LiquidityMinted),
		"recipients":      strconv.Itoa(e.RecipientsCount),
		"dust":            formatAmount(e.SettlementUnpaid),
	}}
}

// Airdrop records a completed bulk airdrop batch.
type Airdrop struct {
	Recipients int
	Total      *big.Int
	Remaining  *big.Int
}

func (Airdrop) EventType() string { return TypeAirdrop }

func (e Airdrop) Event() *types.Event {
	return &types.Event{Type: TypeAirdrop, Attributes: map[string]string{
		"recipients": strconv.Itoa(e.Recipients),
		"total":      formatAmount(e.Total),
		"remaining":  formatAmount(e.Remaining),
	}}
}
