package token

import (
	"encoding/hex"
	"fmt"
	"math/big"
)

// ModuleState is the serialisable image of the engine's own state, persisted
// alongside the account store so a restarted node resumes mid-cycle.
type ModuleState struct {
	Owner               string `json:"owner"`
	Initialised         bool   `json:"initialised"`
	OwnerFeePercent     uint64 `json:"ownerFeePercent"`
	MarketingFeePercent uint64 `json:"marketingFeePercent"`
	DevFeePercent       uint64 `json:"devFeePercent"`
	LiquidityFeePercent uint64 `json:"liquidityFeePercent"`
	OwnerRecipient      string `json:"ownerRecipient"`
	MarketingRecipient  string `json:"marketingRecipient"`
	DevRecipient        string `json:"devRecipient"`
	WalletsLimitEnabled bool   `json:"walletsLimitEnabled"`
	WalletsLimitPercent uint64 `json:"walletsLimitPercent"`
	TxTrigger           uint64 `json:"txTrigger"`
	TxCounter           uint64 `json:"txCounter"`
	AirdropTokens       string `json:"airdropTokens"`
	TotalOwnerAmount    string `json:"totalOwnerAmount"`
	TotalMarketing      string `json:"totalMarketingAmount"`
	TotalDevAmount      string `json:"totalDevAmount"`
	TotalLiquidity      string `json:"totalLiquidityAmount"`
	LiquidityMinted     string `json:"liquidityMinted"`
}

// ExportState captures the engine configuration and counters.
func (e *Engine) ExportState() ModuleState {
	return ModuleState{
		Owner:               hex.EncodeToString(e.owner[:]),
		Initialised:         e.initialised,
		OwnerFeePercent:     e.fees.OwnerPercent,
		MarketingFeePercent: e.fees.MarketingPercent,
		DevFeePercent:       e.fees.DevPercent,
		LiquidityFeePercent: e.fees.LiquidityPercent,
		OwnerRecipient:      hex.EncodeToString(e.fees.OwnerRecipient[:]),
		MarketingRecipient:  hex.EncodeToString(e.fees.MarketingRecipient[:]),
		DevRecipient:        hex.EncodeToString(e.fees.DevRecipient[:]),
		WalletsLimitEnabled: e.walletsLimitEnabled,
		WalletsLimitPercent: e.walletsLimitPercent,
		TxTrigger:           e.txTrigger,
		TxCounter:           e.txCounter,
		AirdropTokens:       e.airdropTokens.String(),
		TotalOwnerAmount:    e.totals.Owner.String(),
		TotalMarketing:      e.totals.Marketing.String(),
		TotalDevAmount:      e.totals.Dev.String(),
		TotalLiquidity:      e.totals.Liquidity.String(),
		LiquidityMinted:     e.lpMinted.String(),
	}
}

// RestoreState replaces the engine configuration and counters with the
// supplied image.
func (e *Engine) RestoreState(ms ModuleState) error {
	owner, err := parseAddr(ms.Owner)
	if err != nil {
		return err
	}
	ownerRecipient, err := parseAddr(ms.OwnerRecipient)
	if err != nil {
		return err
	}
	marketingRecipient, err := parseAddr(ms.MarketingRecipient)
	if err != nil {
		return err
	}
	devRecipient, err := parseAddr(ms.DevRecipient)
	if err != nil {
		return err
	}
	airdrop, err := parseAmount(ms.AirdropTokens)
	if err != nil {
		return err
	}
	totalOwner, err := parseAmount(ms.TotalOwnerAmount)
	if err != nil {
		return err
	}
	totalMarketing, err := parseAmount(ms.TotalMarketing)
	if err != nil {
		return err
	}
	totalDev, err := parseAmount(ms.TotalDevAmount)
	if err != nil {
		return err
	}
	totalLiquidity, err := parseAmount(ms.TotalLiquidity)
	if err != nil {
		return err
	}
	minted, err := parseAmount(ms.LiquidityMinted)
	if err != nil {
		return err
	}
	e.owner = owner
	e.initialised = ms.Initialised
	e.fees.OwnerPercent = ms.OwnerFeePercent
	e.fees.MarketingPercent = ms.MarketingFeePercent
	e.fees.DevPercent = ms.DevFeePercent
	e.fees.LiquidityPercent = ms.LiquidityFeePercent
	e.fees.OwnerRecipient = ownerRecipient
	e.fees.MarketingRecipient = marketingRecipient
	e.fees.DevRecipient = devRecipient
	e.walletsLimitEnabled = ms.WalletsLimitEnabled
	e.walletsLimitPercent = ms.WalletsLimitPercent
	e.txTrigger = ms.TxTrigger
	e.txCounter = ms.TxCounter
	e.airdropTokens = airdrop
	e.totals = Accumulated{Owner: totalOwner, Marketing: totalMarketing, Dev: totalDev, Liquidity: totalLiquidity}
	e.lpMinted = minted
	return nil
}

func parseAddr(raw string) ([20]byte, error) {
	var addr [20]byte
	decoded, err := hex.DecodeString(raw)
	if err != nil {
		return addr, fmt.Errorf("token: invalid address %q: %w", raw, err)
	}
	if len(decoded) != 20 {
		return addr, fmt.Errorf("token: invalid address length %d", len(decoded))
	}
	copy(addr[:], decoded)
	return addr, nil
}

func parseAmount(raw string) (*big.Int, error) {
	if raw == "" {
		return big.NewInt(0), nil
	}
	amount, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, fmt.Errorf("token: invalid amount %q", raw)
	}
	return amount, nil
}
