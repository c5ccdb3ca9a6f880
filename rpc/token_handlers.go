package rpc

import (
	"encoding/json"
	"math/big"

	"emberchain/native/token"
)

func (s *Server) handleTokenInfo([]json.RawMessage) (interface{}, *rpcError) {
	return map[string]interface{}{
		"name":     token.Name,
		"symbol":   token.Symbol,
		"decimals": token.Decimals,
	}, nil
}

func (s *Server) handleBalanceOf(params []json.RawMessage) (interface{}, *rpcError) {
	var p addressParam
	if err := decodeParams(params, &p); err != nil {
		return nil, paramsError(err)
	}
	addr, err := parseAddress(p.Address)
	if err != nil {
		return nil, paramsError(err)
	}
	bal, err := s.node.BalanceOf(addr)
	if err != nil {
		return nil, ledgerError(err)
	}
	return balanceResult{Balance: formatAmount(bal)}, nil
}

func (s *Server) handleSettlementBalanceOf(params []json.RawMessage) (interface{}, *rpcError) {
	var p addressParam
	if err := decodeParams(params, &p); err != nil {
		return nil, paramsError(err)
	}
	addr, err := parseAddress(p.Address)
	if err != nil {
		return nil, paramsError(err)
	}
	bal, err := s.node.SettlementBalanceOf(addr)
	if err != nil {
		return nil, ledgerError(err)
	}
	return balanceResult{Balance: formatAmount(bal)}, nil
}

func (s *Server) handleTotalSupply([]json.RawMessage) (interface{}, *rpcError) {
	return balanceResult{Balance: formatAmount(s.node.TotalSupply())}, nil
}

func (s *Server) handleOwner([]json.RawMessage) (interface{}, *rpcError) {
	return map[string]string{"owner": formatAddress(s.node.TokenOwner())}, nil
}

func (s *Server) handleFees([]json.RawMessage) (interface{}, *rpcError) {
	fees := s.node.Fees()
	return feesResult{
		OwnerPercent:       fees.OwnerPercent,
		MarketingPercent:   fees.MarketingPercent,
		DevPercent:         fees.DevPercent,
		LiquidityPercent:   fees.LiquidityPercent,
		OwnerRecipient:     formatAddress(fees.OwnerRecipient),
		MarketingRecipient: formatAddress(fees.MarketingRecipient),
		DevRecipient:       formatAddress(fees.DevRecipient),
	}, nil
}

func (s *Server) handleTotals([]json.RawMessage) (interface{}, *rpcError) {
	totals := s.node.Totals()
	return totalsResult{
		Owner:     formatAmount(totals.Owner),
		Marketing: formatAmount(totals.Marketing),
		Dev:       formatAmount(totals.Dev),
		Liquidity: formatAmount(totals.Liquidity),
	}, nil
}

func (s *Server) handleAllowance(params []json.RawMessage) (interface{}, *rpcError) {
	var p allowanceParams
	if err := decodeParams(params, &p); err != nil {
		return nil, paramsError(err)
	}
	owner, err := parseAddress(p.Owner)
	if err != nil {
		return nil, paramsError(err)
	}
	spender, err := parseAddress(p.Spender)
	if err != nil {
		return nil, paramsError(err)
	}
	allowance, err := s.node.Allowance(owner, spender)
	if err != nil {
		return nil, ledgerError(err)
	}
	return balanceResult{Balance: formatAmount(allowance)}, nil
}

func (s *Server) handleTxTrigger([]json.RawMessage) (interface{}, *rpcError) {
	return uintResult{Value: s.node.TxTrigger()}, nil
}

func (s *Server) handleTxCounter([]json.RawMessage) (interface{}, *rpcError) {
	return uintResult{Value: s.node.TxCounter()}, nil
}

func (s *Server) handleWalletsLimit([]json.RawMessage) (interface{}, *rpcError) {
	return uintResult{Value: s.node.WalletsLimit()}, nil
}

func (s *Server) handleWalletsLimitEnabled([]json.RawMessage) (interface{}, *rpcError) {
	return boolResult{Value: s.node.WalletsLimitEnabled()}, nil
}

func (s *Server) handleAirdropTokens([]json.RawMessage) (interface{}, *rpcError) {
	return balanceResult{Balance: formatAmount(s.node.AirdropTokens())}, nil
}

func (s *Server) handleLiquidityMinted([]json.RawMessage) (interface{}, *rpcError) {
	return balanceResult{Balance: formatAmount(s.node.LiquidityMinted())}, nil
}

func (s *Server) addressFlagView(params []json.RawMessage, view func([20]byte) (bool, error)) (interface{}, *rpcError) {
	var p addressParam
	if err := decodeParams(params, &p); err != nil {
		return nil, paramsError(err)
	}
	addr, err := parseAddress(p.Address)
	if err != nil {
		return nil, paramsError(err)
	}
	flag, err := view(addr)
	if err != nil {
		return nil, ledgerError(err)
	}
	return boolResult{Value: flag}, nil
}

func (s *Server) handleIsBlacklisted(params []json.RawMessage) (interface{}, *rpcError) {
	return s.addressFlagView(params, s.node.IsBlacklisted)
}

func (s *Server) handleIsExcludedFee(params []json.RawMessage) (interface{}, *rpcError) {
	return s.addressFlagView(params, s.node.IsExcludedFee)
}

func (s *Server) handleIsWalletLimitUnlimited(params []json.RawMessage) (interface{}, *rpcError) {
	return s.addressFlagView(params, s.node.IsWalletLimitUnlimited)
}

func (s *Server) handleIsPairAddress(params []json.RawMessage) (interface{}, *rpcError) {
	return s.addressFlagView(params, s.node.IsPairAddress)
}

func (s *Server) handleEvents(params []json.RawMessage) (interface{}, *rpcError) {
	var p struct {
		After uint64 `json:"after"`
	}
	if len(params) > 0 {
		if err := decodeParams(params, &p); err != nil {
			return nil, paramsError(err)
		}
	}
	return s.node.Events(p.After), nil
}

// --- transactions ---

func (s *Server) handleTransfer(params []json.RawMessage) (interface{}, *rpcError) {
	var p transferParams
	if err := decodeParams(params, &p); err != nil {
		return nil, paramsError(err)
	}
	from, err := parseAddress(p.From)
	if err != nil {
		return nil, paramsError(err)
	}
	to, err := parseAddress(p.To)
	if err != nil {
		return nil, paramsError(err)
	}
	amount, err := parseAmount(p.Amount)
	if err != nil {
		return nil, paramsError(err)
	}
	if err := s.node.Transfer(from, to, amount); err != nil {
		return nil, ledgerError(err)
	}
	return boolResult{Value: true}, nil
}

func (s *Server) handleTransferFrom(params []json.RawMessage) (interface{}, *rpcError) {
	var p transferFromParams
	if err := decodeParams(params, &p); err != nil {
		return nil, paramsError(err)
	}
	spender, err := parseAddress(p.Spender)
	if err != nil {
		return nil, paramsError(err)
	}
	from, err := parseAddress(p.From)
	if err != nil {
		return nil, paramsError(err)
	}
	to, err := parseAddress(p.To)
	if err != nil {
		return nil, paramsError(err)
	}
	amount, err := parseAmount(p.Amount)
	if err != nil {
		return nil, paramsError(err)
	}
	if err := s.node.TransferFrom(spender, from, to, amount); err != nil {
		return nil, ledgerError(err)
	}
	return boolResult{Value: true}, nil
}

func (s *Server) handleApprove(params []json.RawMessage) (interface{}, *rpcError) {
	var p approveParams
	if err := decodeParams(params, &p); err != nil {
		return nil, paramsError(err)
	}
	owner, err := parseAddress(p.Owner)
	if err != nil {
		return nil, paramsError(err)
	}
	spender, err := parseAddress(p.Spender)
	if err != nil {
		return nil, paramsError(err)
	}
	amount, err := parseAmount(p.Amount)
	if err != nil {
		return nil, paramsError(err)
	}
	if err := s.node.Approve(owner, spender, amount); err != nil {
		return nil, ledgerError(err)
	}
	return boolResult{Value: true}, nil
}

func (s *Server) addressFlagSetter(params []json.RawMessage, set func(caller, addr [20]byte, flag bool) error) (interface{}, *rpcError) {
	var p callerAddressFlagParams
	if err := decodeParams(params, &p); err != nil {
		return nil, paramsError(err)
	}
	caller, err := parseAddress(p.Caller)
	if err != nil {
		return nil, paramsError(err)
	}
	addr, err := parseAddress(p.Address)
	if err != nil {
		return nil, paramsError(err)
	}
	if err := set(caller, addr, p.Flag); err != nil {
		return nil, ledgerError(err)
	}
	return boolResult{Value: true}, nil
}

func (s *Server) handleSetIsBlacklisted(params []json.RawMessage) (interface{}, *rpcError) {
	return s.addressFlagSetter(params, s.node.SetIsBlacklisted)
}

func (s *Server) handleSetIsExcludedFee(params []json.RawMessage) (interface{}, *rpcError) {
	return s.addressFlagSetter(params, s.node.SetIsExcludedFee)
}

func (s *Server) handleSetIsWalletLimitUnlimited(params []json.RawMessage) (interface{}, *rpcError) {
	return s.addressFlagSetter(params, s.node.SetIsWalletLimitUnlimited)
}

func (s *Server) handleSetPairAddress(params []json.RawMessage) (interface{}, *rpcError) {
	return s.addressFlagSetter(params, s.node.SetPairAddress)
}

func (s *Server) handleSetIsWalletsLimitEnabled(params []json.RawMessage) (interface{}, *rpcError) {
	var p struct {
		Caller  string `json:"caller"`
		Enabled bool   `json:"enabled"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, paramsError(err)
	}
	caller, err := parseAddress(p.Caller)
	if err != nil {
		return nil, paramsError(err)
	}
	if err := s.node.SetIsWalletsLimitEnabled(caller, p.Enabled); err != nil {
		return nil, ledgerError(err)
	}
	return boolResult{Value: true}, nil
}

func (s *Server) callerUintSetter(params []json.RawMessage, set func(caller [20]byte, value uint64) error) (interface{}, *rpcError) {
	var p struct {
		Caller string `json:"caller"`
		Value  uint64 `json:"value"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, paramsError(err)
	}
	caller, err := parseAddress(p.Caller)
	if err != nil {
		return nil, paramsError(err)
	}
	if err := set(caller, p.Value); err != nil {
		return nil, ledgerError(err)
	}
	return boolResult{Value: true}, nil
}

func (s *Server) handleSetWalletsLimit(params []json.RawMessage) (interface{}, *rpcError) {
	return s.callerUintSetter(params, s.node.SetWalletsLimit)
}

func (s *Server) handleSetTxTrigger(params []json.RawMessage) (interface{}, *rpcError) {
	return s.callerUintSetter(params, s.node.SetTxTrigger)
}

func (s *Server) handleBulkSetFees(params []json.RawMessage) (interface{}, *rpcError) {
	var p struct {
		Caller    string `json:"caller"`
		Owner     uint64 `json:"owner"`
		Marketing uint64 `json:"marketing"`
		Dev       uint64 `json:"dev"`
		Liquidity uint64 `json:"liquidity"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, paramsError(err)
	}
	caller, err := parseAddress(p.Caller)
	if err != nil {
		return nil, paramsError(err)
	}
	if err := s.node.BulkSetFees(caller, p.Owner, p.Marketing, p.Dev, p.Liquidity); err != nil {
		return nil, ledgerError(err)
	}
	return boolResult{Value: true}, nil
}

func (s *Server) handleBulkSetAddresses(params []json.RawMessage) (interface{}, *rpcError) {
	var p struct {
		Caller    string `json:"caller"`
		Owner     string `json:"owner"`
		Marketing string `json:"marketing"`
		Dev       string `json:"dev"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, paramsError(err)
	}
	caller, err := parseAddress(p.Caller)
	if err != nil {
		return nil, paramsError(err)
	}
	owner, err := parseAddress(p.Owner)
	if err != nil {
		return nil, paramsError(err)
	}
	marketing, err := parseAddress(p.Marketing)
	if err != nil {
		return nil, paramsError(err)
	}
	dev, err := parseAddress(p.Dev)
	if err != nil {
		return nil, paramsError(err)
	}
	if err := s.node.BulkSetAddresses(caller, owner, marketing, dev); err != nil {
		return nil, ledgerError(err)
	}
	return boolResult{Value: true}, nil
}

func (s *Server) handleTransferOwnership(params []json.RawMessage) (interface{}, *rpcError) {
	var p struct {
		Caller   string `json:"caller"`
		NewOwner string `json:"newOwner"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, paramsError(err)
	}
	caller, err := parseAddress(p.Caller)
	if err != nil {
		return nil, paramsError(err)
	}
	newOwner, err := parseAddress(p.NewOwner)
	if err != nil {
		return nil, paramsError(err)
	}
	if err := s.node.TransferOwnership(caller, newOwner); err != nil {
		return nil, ledgerError(err)
	}
	return boolResult{Value: true}, nil
}

func (s *Server) handleRenounceOwnership(params []json.RawMessage) (interface{}, *rpcError) {
	var p callerParam
	if err := decodeParams(params, &p); err != nil {
		return nil, paramsError(err)
	}
	caller, err := parseAddress(p.Caller)
	if err != nil {
		return nil, paramsError(err)
	}
	if err := s.node.RenounceOwnership(caller); err != nil {
		return nil, ledgerError(err)
	}
	return boolResult{Value: true}, nil
}

func (s *Server) callerAmountOp(params []json.RawMessage, op func(caller [20]byte, amount *big.Int) error) (interface{}, *rpcError) {
	var p callerAmountParams
	if err := decodeParams(params, &p); err != nil {
		return nil, paramsError(err)
	}
	caller, err := parseAddress(p.Caller)
	if err != nil {
		return nil, paramsError(err)
	}
	amount, err := parseAmount(p.Amount)
	if err != nil {
		return nil, paramsError(err)
	}
	if err := op(caller, amount); err != nil {
		return nil, ledgerError(err)
	}
	return boolResult{Value: true}, nil
}

func (s *Server) handleDepositAirdropTokens(params []json.RawMessage) (interface{}, *rpcError) {
	return s.callerAmountOp(params, s.node.DepositAirdropTokens)
}

func (s *Server) handleWithdrawToken(params []json.RawMessage) (interface{}, *rpcError) {
	return s.callerAmountOp(params, s.node.WithdrawToken)
}

func (s *Server) handleBulkAirdrop(params []json.RawMessage) (interface{}, *rpcError) {
	var p struct {
		Caller     string   `json:"caller"`
		Recipients []string `json:"recipients"`
		Amounts    []string `json:"amounts"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, paramsError(err)
	}
	caller, err := parseAddress(p.Caller)
	if err != nil {
		return nil, paramsError(err)
	}
	recipients := make([][20]byte, len(p.Recipients))
	for i, raw := range p.Recipients {
		recipients[i], err = parseAddress(raw)
		if err != nil {
			return nil, paramsError(err)
		}
	}
	amounts := make([]*big.Int, len(p.Amounts))
	for i, raw := range p.Amounts {
		amounts[i], err = parseAmount(raw)
		if err != nil {
			return nil, paramsError(err)
		}
	}
	if err := s.node.BulkAirdrop(caller, recipients, amounts); err != nil {
		return nil, ledgerError(err)
	}
	return boolResult{Value: true}, nil
}
