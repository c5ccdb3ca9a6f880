package token

import (
	"math/big"

	"emberchain/core/events"
)

// Exchange converts accumulated fee tokens into the settlement asset and
// provides liquidity. Implementations sit outside the deterministic core;
// a returned error is recoverable and aborts the current distribution
// attempt without touching ledger state.
type Exchange interface {
	SwapTokensForSettlement(tokens *big.Int) (*big.Int, error)
	AddLiquidity(tokens, settlement *big.Int) (*big.Int, error)
}

// maybeDistribute runs one fee distribution cycle against the ledger's held
// balance minus the airdrop reserve. External exchange calls happen before
// any internal mutation so a failure leaves the accumulators and balances
// exactly as they were.
func (e *Engine) maybeDistribute() error {
	if e.distributing {
		return errDistributionPending
	}
	if e.exchange == nil {
		return errExchangeUnavailable
	}
	moduleAcc, err := e.state.GetAccount(e.moduleAddress)
	if err != nil {
		return err
	}
	held := new(big.Int).Sub(moduleAcc.Balance, e.airdropTokens)
	if held.Sign() <= 0 {
		return errNothingToDistribute
	}

	// Half the liquidity counter stays as tokens to pair with proceeds.
	liquidityTokens := new(big.Int).Rsh(e.totals.Liquidity, 1)
	if liquidityTokens.Cmp(held) > 0 {
		liquidityTokens = new(big.Int).Set(held)
	}
	swapAmount := new(big.Int).Sub(held, liquidityTokens)
	if swapAmount.Sign() <= 0 {
		return errNothingToDistribute
	}
	liquidityShare := new(big.Int).Sub(e.totals.Liquidity, liquidityTokens)

	e.distributing = true
	defer func() { e.distributing = false }()

	proceeds, err := e.exchange.SwapTokensForSettlement(new(big.Int).Set(swapAmount))
	if err != nil {
		return err
	}
	if proceeds == nil {
		proceeds = big.NewInt(0)
	}

	// Each share is derived from its own counter over the swapped amount;
	// floor-division leftovers stay with the module for the next cycle.
	shareOf := func(counter *big.Int) *big.Int {
		if counter.Sign() <= 0 || proceeds.Sign() <= 0 {
			return big.NewInt(0)
		}
		share := new(big.Int).Mul(proceeds, counter)
		return share.Div(share, swapAmount)
	}
	ownerShare := shareOf(e.totals.Owner)
	marketingShare := shareOf(e.totals.Marketing)
	devShare := shareOf(e.totals.Dev)
	liquiditySettlement := shareOf(liquidityShare)

	minted := big.NewInt(0)
	if liquidityTokens.Sign() > 0 && liquiditySettlement.Sign() > 0 {
		minted, err = e.exchange.AddLiquidity(new(big.Int).Set(liquidityTokens), new(big.Int).Set(liquiditySettlement))
		if err != nil {
			return err
		}
		if minted == nil {
			minted = big.NewInt(0)
		}
	}

	// External side effects are committed; mirror them in ledger state.
	consumed := new(big.Int).Add(swapAmount, liquidityTokens)
	moduleAcc.Balance.Sub(moduleAcc.Balance, consumed)
	if err := e.state.PutAccount(e.moduleAddress, moduleAcc); err != nil {
		return err
	}
	exchangeAcc, err := e.state.GetAccount(e.exchangeAccount)
	if err != nil {
		return err
	}
	exchangeAcc.Balance.Add(exchangeAcc.Balance, consumed)
	if err := e.state.PutAccount(e.exchangeAccount, exchangeAcc); err != nil {
		return err
	}

	if err := e.state.CreditSettlement(e.fees.OwnerRecipient, ownerShare); err != nil {
		return err
	}
	if err := e.state.CreditSettlement(e.fees.MarketingRecipient, marketingShare); err != nil {
		return err
	}
	if err := e.state.CreditSettlement(e.fees.DevRecipient, devShare); err != nil {
		return err
	}
	dust := new(big.Int).Set(proceeds)
	for _, paid := range []*big.Int{ownerShare, marketingShare, devShare, liquiditySettlement} {
		dust.Sub(dust, paid)
	}
	if err := e.state.CreditSettlement(e.moduleAddress, dust); err != nil {
		return err
	}

	e.totals.Owner.SetInt64(0)
	e.totals.Marketing.SetInt64(0)
	e.totals.Dev.SetInt64(0)
	e.totals.Liquidity.SetInt64(0)
	e.lpMinted.Add(e.lpMinted, minted)

	e.emit(events.Distribution{
		TokensSwapped:    new(big.Int).Set(swapAmount),
		Proceeds:         new(big.Int).Set(proceeds),
		LiquidityTokens:  new(big.Int).Set(liquidityTokens),
		LiquidityMinted:  new(big.Int).Set(minted),
		RecipientsCount:  3,
		SettlementUnpaid: dust,
	})
	return nil
}
