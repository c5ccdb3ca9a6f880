package rpc

import (
	"encoding/json"
	"fmt"
	"math/big"

	"emberchain/crypto"
	"emberchain/native/staking"
)

const (
	jsonRPCVersion  = "2.0"
	maxRequestBytes = 1 << 20 // 1 MiB
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeUnauthorized   = -32001
	codeServerError    = -32000
)

type rpcRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      interface{}       `json:"id"`
}

type rpcResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *rpcError   `json:"error,omitempty"`
}

type rpcError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// decodeParams unmarshals the single object parameter every method accepts.
func decodeParams(params []json.RawMessage, v interface{}) error {
	if len(params) != 1 {
		return fmt.Errorf("expected exactly one params object, got %d", len(params))
	}
	if err := json.Unmarshal(params[0], v); err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}
	return nil
}

func parseAddress(raw string) ([20]byte, error) {
	addr, err := crypto.DecodeAddress(raw)
	if err != nil {
		return [20]byte{}, fmt.Errorf("invalid address %q: %w", raw, err)
	}
	return addr.Array(), nil
}

func parseAmount(raw string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", raw)
	}
	return amount, nil
}

func parseTier(raw uint64) (staking.Tier, error) {
	tier := staking.Tier(raw)
	if !tier.Valid() {
		return 0, fmt.Errorf("invalid tier %d", raw)
	}
	return tier, nil
}

func formatAddress(b [20]byte) string {
	return crypto.MustNewAddress(crypto.EmberPrefix, b[:]).String()
}

func formatAmount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

// --- shared param shapes ---

type callerParam struct {
	Caller string `json:"caller"`
}

type addressParam struct {
	Address string `json:"address"`
}

type callerAddressFlagParams struct {
	Caller  string `json:"caller"`
	Address string `json:"address"`
	Flag    bool   `json:"flag"`
}

type callerAmountParams struct {
	Caller string `json:"caller"`
	Amount string `json:"amount"`
}

type transferParams struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type transferFromParams struct {
	Spender string `json:"spender"`
	From    string `json:"from"`
	To      string `json:"to"`
	Amount  string `json:"amount"`
}

type approveParams struct {
	Owner   string `json:"owner"`
	Spender string `json:"spender"`
	Amount  string `json:"amount"`
}

type allowanceParams struct {
	Owner   string `json:"owner"`
	Spender string `json:"spender"`
}

type tierParams struct {
	Tier uint64 `json:"tier"`
}

type tierAccountParams struct {
	Tier    uint64 `json:"tier"`
	Account string `json:"account"`
}

type callerTierAmountParams struct {
	Caller string `json:"caller"`
	Tier   uint64 `json:"tier"`
	Amount string `json:"amount"`
}

type callerTierParams struct {
	Caller string `json:"caller"`
	Tier   uint64 `json:"tier"`
}

// --- result shapes ---

type balanceResult struct {
	Balance string `json:"balance"`
}

type boolResult struct {
	Value bool `json:"value"`
}

type uintResult struct {
	Value uint64 `json:"value"`
}

type feesResult struct {
	OwnerPercent       uint64 `json:"ownerPercent"`
	MarketingPercent   uint64 `json:"marketingPercent"`
	DevPercent         uint64 `json:"devPercent"`
	LiquidityPercent   uint64 `json:"liquidityPercent"`
	OwnerRecipient     string `json:"ownerRecipient"`
	MarketingRecipient string `json:"marketingRecipient"`
	DevRecipient       string `json:"devRecipient"`
}

type totalsResult struct {
	Owner     string `json:"owner"`
	Marketing string `json:"marketing"`
	Dev       string `json:"dev"`
	Liquidity string `json:"liquidity"`
}

type stakeResult struct {
	Principal      string `json:"principal"`
	ReservedReward string `json:"reservedReward"`
	UnlockTime     int64  `json:"unlockTime"`
}
