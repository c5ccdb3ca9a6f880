package rpc

import "encoding/json"

func (s *Server) handleApr(params []json.RawMessage) (interface{}, *rpcError) {
	var p tierParams
	if err := decodeParams(params, &p); err != nil {
		return nil, paramsError(err)
	}
	tier, err := parseTier(p.Tier)
	if err != nil {
		return nil, paramsError(err)
	}
	apr, err := s.node.Apr(tier)
	if err != nil {
		return nil, ledgerError(err)
	}
	return uintResult{Value: apr}, nil
}

func (s *Server) handlePoolReserve(params []json.RawMessage) (interface{}, *rpcError) {
	var p tierParams
	if err := decodeParams(params, &p); err != nil {
		return nil, paramsError(err)
	}
	tier, err := parseTier(p.Tier)
	if err != nil {
		return nil, paramsError(err)
	}
	reserve, err := s.node.PoolReserve(tier)
	if err != nil {
		return nil, ledgerError(err)
	}
	return balanceResult{Balance: formatAmount(reserve)}, nil
}

func (s *Server) handleStakeOf(params []json.RawMessage) (interface{}, *rpcError) {
	var p tierAccountParams
	if err := decodeParams(params, &p); err != nil {
		return nil, paramsError(err)
	}
	tier, err := parseTier(p.Tier)
	if err != nil {
		return nil, paramsError(err)
	}
	account, err := parseAddress(p.Account)
	if err != nil {
		return nil, paramsError(err)
	}
	rec, err := s.node.StakeOf(tier, account)
	if err != nil {
		return nil, ledgerError(err)
	}
	if rec == nil {
		return stakeResult{Principal: "0", ReservedReward: "0"}, nil
	}
	return stakeResult{
		Principal:      formatAmount(rec.Principal),
		ReservedReward: formatAmount(rec.ReservedReward),
		UnlockTime:     rec.UnlockTime,
	}, nil
}

func (s *Server) handleReservedRewards(params []json.RawMessage) (interface{}, *rpcError) {
	var p tierParams
	if err := decodeParams(params, &p); err != nil {
		return nil, paramsError(err)
	}
	tier, err := parseTier(p.Tier)
	if err != nil {
		return nil, paramsError(err)
	}
	total, err := s.node.ReservedRewards(tier)
	if err != nil {
		return nil, ledgerError(err)
	}
	return balanceResult{Balance: formatAmount(total)}, nil
}

func (s *Server) handleSetApr(params []json.RawMessage) (interface{}, *rpcError) {
	var p struct {
		Caller string `json:"caller"`
		Tier   uint64 `json:"tier"`
		Apr    uint64 `json:"apr"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, paramsError(err)
	}
	caller, err := parseAddress(p.Caller)
	if err != nil {
		return nil, paramsError(err)
	}
	tier, err := parseTier(p.Tier)
	if err != nil {
		return nil, paramsError(err)
	}
	if err := s.node.SetApr(caller, tier, p.Apr); err != nil {
		return nil, ledgerError(err)
	}
	return boolResult{Value: true}, nil
}

func (s *Server) handleBulkSetApr(params []json.RawMessage) (interface{}, *rpcError) {
	var p struct {
		Caller     string `json:"caller"`
		Ninety     uint64 `json:"ninety"`
		OneEighty  uint64 `json:"oneEighty"`
		ThreeSixty uint64 `json:"threeSixty"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, paramsError(err)
	}
	caller, err := parseAddress(p.Caller)
	if err != nil {
		return nil, paramsError(err)
	}
	if err := s.node.BulkSetApr(caller, p.Ninety, p.OneEighty, p.ThreeSixty); err != nil {
		return nil, ledgerError(err)
	}
	return boolResult{Value: true}, nil
}

func (s *Server) handleDepositPool(params []json.RawMessage) (interface{}, *rpcError) {
	var p callerTierAmountParams
	if err := decodeParams(params, &p); err != nil {
		return nil, paramsError(err)
	}
	caller, err := parseAddress(p.Caller)
	if err != nil {
		return nil, paramsError(err)
	}
	tier, err := parseTier(p.Tier)
	if err != nil {
		return nil, paramsError(err)
	}
	amount, err := parseAmount(p.Amount)
	if err != nil {
		return nil, paramsError(err)
	}
	if err := s.node.DepositStakingPool(caller, tier, amount); err != nil {
		return nil, ledgerError(err)
	}
	return boolResult{Value: true}, nil
}

func (s *Server) handleWithdrawPool(params []json.RawMessage) (interface{}, *rpcError) {
	var p callerTierAmountParams
	if err := decodeParams(params, &p); err != nil {
		return nil, paramsError(err)
	}
	caller, err := parseAddress(p.Caller)
	if err != nil {
		return nil, paramsError(err)
	}
	tier, err := parseTier(p.Tier)
	if err != nil {
		return nil, paramsError(err)
	}
	amount, err := parseAmount(p.Amount)
	if err != nil {
		return nil, paramsError(err)
	}
	if err := s.node.WithdrawStakingPool(caller, tier, amount); err != nil {
		return nil, ledgerError(err)
	}
	return boolResult{Value: true}, nil
}

func (s *Server) handleStake(params []json.RawMessage) (interface{}, *rpcError) {
	var p callerTierAmountParams
	if err := decodeParams(params, &p); err != nil {
		return nil, paramsError(err)
	}
	caller, err := parseAddress(p.Caller)
	if err != nil {
		return nil, paramsError(err)
	}
	tier, err := parseTier(p.Tier)
	if err != nil {
		return nil, paramsError(err)
	}
	amount, err := parseAmount(p.Amount)
	if err != nil {
		return nil, paramsError(err)
	}
	if err := s.node.Stake(caller, tier, amount); err != nil {
		return nil, ledgerError(err)
	}
	return boolResult{Value: true}, nil
}

func (s *Server) handleWithdrawStake(params []json.RawMessage) (interface{}, *rpcError) {
	var p callerTierParams
	if err := decodeParams(params, &p); err != nil {
		return nil, paramsError(err)
	}
	caller, err := parseAddress(p.Caller)
	if err != nil {
		return nil, paramsError(err)
	}
	tier, err := parseTier(p.Tier)
	if err != nil {
		return nil, paramsError(err)
	}
	if err := s.node.WithdrawStake(caller, tier); err != nil {
		return nil, ledgerError(err)
	}
	return boolResult{Value: true}, nil
}
