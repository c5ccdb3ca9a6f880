package core

import (
	"fmt"
	"log/slog"
	"math/big"
	"sync"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"emberchain/core/events"
	"emberchain/core/types"
	"emberchain/native/staking"
	"emberchain/native/token"
	"emberchain/observability"
	"emberchain/state"
)

const eventBufferSize = 1024

// ModuleAddress derives a deterministic ledger account for a named module.
// Module accounts have no known private key.
func ModuleAddress(name string) [20]byte {
	digest := ethcrypto.Keccak256([]byte(name))
	var addr [20]byte
	copy(addr[:], digest[12:])
	return addr
}

var (
	tokenModuleAccount   = ModuleAddress("ember/token/fees")
	stakingModuleAccount = ModuleAddress("ember/staking/custody")
)

// TokenModuleAccount returns the account that custodies accrued fees and the
// airdrop reserve.
func TokenModuleAccount() [20]byte { return tokenModuleAccount }

// StakingModuleAccount returns the account that custodies pool funding and
// locked stakes.
func StakingModuleAccount() [20]byte { return stakingModuleAccount }

// GenesisParams are the one-time ledger bootstrap settings. Zero values fall
// back to the engine defaults.
type GenesisParams struct {
	Owner              [20]byte
	TotalSupply        *big.Int
	OwnerRecipient     *[20]byte
	MarketingRecipient *[20]byte
	DevRecipient       *[20]byte
	TxTrigger          uint64
	WalletsLimit       uint64
	AprNinety          uint64
	AprOneEighty       uint64
	AprThreeSixty      uint64
}

// Snapshot is the composite persisted image of the node.
type Snapshot struct {
	Accounts *state.Snapshot     `json:"accounts"`
	Token    token.ModuleState   `json:"token"`
	Staking  staking.ModuleState `json:"staking"`
}

// StoredEvent pairs an emitted event with its position in the node's event
// sequence.
type StoredEvent struct {
	Sequence uint64       `json:"sequence"`
	Event    *types.Event `json:"event"`
}

// Node owns the deterministic ledger state and serialises every operation:
// exactly one runs at a time, so each observes and produces a single
// consistent state version.
type Node struct {
	mu      sync.Mutex
	logger  *slog.Logger
	state   *state.Manager
	token   *token.Engine
	staking *staking.Engine

	events   []StoredEvent
	eventSeq uint64
}

// NewNode wires the engines over a fresh in-memory store. Call Bootstrap to
// apply genesis or restore a snapshot before serving.
func NewNode(logger *slog.Logger, params GenesisParams) (*Node, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if params.TotalSupply == nil || params.TotalSupply.Sign() <= 0 {
		return nil, fmt.Errorf("core: genesis total supply must be positive")
	}
	n := &Node{logger: logger, state: state.NewManager()}
	n.token = token.NewEngine(params.Owner, tokenModuleAccount, params.TotalSupply)
	n.token.SetState(n.state)
	n.token.SetEmitter(n)
	n.staking = staking.NewEngine(params.Owner, stakingModuleAccount)
	n.staking.SetLedger(n.token)
	n.staking.SetEmitter(n)
	return n, nil
}

// SetExchange wires the external liquidity venue used by fee distributions.
// The venue's ledger account absorbs the tokens each cycle consumes.
func (n *Node) SetExchange(exchange token.Exchange, account [20]byte) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.token.SetExchange(exchange, account)
}

// Bootstrap initialises the ledger: from the snapshot when one is supplied,
// otherwise from the genesis parameters.
func (n *Node) Bootstrap(params GenesisParams, snap *Snapshot) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if snap != nil {
		if err := n.state.Restore(snap.Accounts); err != nil {
			return err
		}
		if err := n.token.RestoreState(snap.Token); err != nil {
			return err
		}
		if err := n.staking.RestoreState(snap.Staking); err != nil {
			return err
		}
		n.logger.Info("ledger restored from snapshot")
		return nil
	}
	if err := n.token.InitGenesis(); err != nil {
		return err
	}
	owner := params.Owner
	// The staking custody account moves balances untaxed and unlimited.
	if err := n.token.SetIsExcludedFee(owner, stakingModuleAccount, true); err != nil {
		return err
	}
	if err := n.token.SetIsWalletLimitUnlimited(owner, stakingModuleAccount, true); err != nil {
		return err
	}
	if params.OwnerRecipient != nil && params.MarketingRecipient != nil && params.DevRecipient != nil {
		if err := n.token.BulkSetAddresses(owner, *params.OwnerRecipient, *params.MarketingRecipient, *params.DevRecipient); err != nil {
			return err
		}
	}
	if params.TxTrigger != 0 && params.TxTrigger != token.DefaultTxTrigger {
		if err := n.token.SetTxTrigger(owner, params.TxTrigger); err != nil {
			return err
		}
	}
	if params.WalletsLimit != 0 && params.WalletsLimit != token.DefaultWalletsLimitPercent {
		if err := n.token.SetWalletsLimit(owner, params.WalletsLimit); err != nil {
			return err
		}
	}
	if params.AprNinety != 0 || params.AprOneEighty != 0 || params.AprThreeSixty != 0 {
		ninety, oneEighty, threeSixty := params.AprNinety, params.AprOneEighty, params.AprThreeSixty
		if ninety == 0 {
			ninety = staking.DefaultAprNinety
		}
		if oneEighty == 0 {
			oneEighty = staking.DefaultAprOneEighty
		}
		if threeSixty == 0 {
			threeSixty = staking.DefaultAprThreeSixty
		}
		if err := n.staking.BulkSetApr(owner, ninety, oneEighty, threeSixty); err != nil {
			return err
		}
	}
	n.logger.Info("ledger initialised from genesis",
		"owner", fmt.Sprintf("%x", owner),
		"supply", params.TotalSupply.String())
	return nil
}

// Emit implements events.Emitter. Engines call it while holding the node
// lock, so the buffer needs no locking of its own.
func (n *Node) Emit(evt events.Event) {
	type attributed interface {
		Event() *types.Event
	}
	typed, ok := evt.(attributed)
	if !ok {
		return
	}
	n.eventSeq++
	n.events = append(n.events, StoredEvent{Sequence: n.eventSeq, Event: typed.Event()})
	if len(n.events) > eventBufferSize {
		n.events = n.events[len(n.events)-eventBufferSize:]
	}
	switch evt.(type) {
	case events.Distribution:
		observability.LedgerMetrics().RecordDistribution(true)
	}
}

// Events returns buffered events with a sequence strictly greater than after.
func (n *Node) Events(after uint64) []StoredEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]StoredEvent, 0, len(n.events))
	for _, evt := range n.events {
		if evt.Sequence > after {
			out = append(out, evt)
		}
	}
	return out
}

// ExportSnapshot captures the full node state for persistence.
func (n *Node) ExportSnapshot() *Snapshot {
	n.mu.Lock()
	defer n.mu.Unlock()
	return &Snapshot{
		Accounts: n.state.Export(),
		Token:    n.token.ExportState(),
		Staking:  n.staking.ExportState(),
	}
}

func (n *Node) transferKind(from, to [20]byte) string {
	fromPair, _ := n.token.IsPairAddress(from)
	toPair, _ := n.token.IsPairAddress(to)
	switch {
	case fromPair:
		return "buy"
	case toPair:
		return "sell"
	default:
		return "plain"
	}
}

// --- token operations ---

func (n *Node) Transfer(from, to [20]byte, amount *big.Int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	kind := n.transferKind(from, to)
	if err := n.token.Transfer(from, to, amount); err != nil {
		return err
	}
	observability.LedgerMetrics().RecordTransfer(kind)
	return nil
}

func (n *Node) TransferFrom(spender, from, to [20]byte, amount *big.Int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	kind := n.transferKind(from, to)
	if err := n.token.TransferFrom(spender, from, to, amount); err != nil {
		return err
	}
	observability.LedgerMetrics().RecordTransfer(kind)
	return nil
}

func (n *Node) Approve(owner, spender [20]byte, amount *big.Int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.token.Approve(owner, spender, amount)
}

func (n *Node) Allowance(owner, spender [20]byte) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.token.Allowance(owner, spender)
}

func (n *Node) BalanceOf(addr [20]byte) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.token.BalanceOf(addr)
}

func (n *Node) SettlementBalanceOf(addr [20]byte) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state.SettlementBalance(addr)
}

func (n *Node) TotalSupply() *big.Int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.token.TotalSupply()
}

func (n *Node) TokenOwner() [20]byte {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.token.Owner()
}

func (n *Node) Fees() token.FeeConfig {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.token.Fees()
}

func (n *Node) Totals() token.Accumulated {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.token.Totals()
}

func (n *Node) WalletsLimitEnabled() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.token.WalletsLimitEnabled()
}

func (n *Node) WalletsLimit() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.token.WalletsLimit()
}

func (n *Node) TxTrigger() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.token.TxTrigger()
}

func (n *Node) TxCounter() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.token.TxCounter()
}

func (n *Node) AirdropTokens() *big.Int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.token.AirdropTokens()
}

func (n *Node) LiquidityMinted() *big.Int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.token.LiquidityMinted()
}

func (n *Node) IsBlacklisted(addr [20]byte) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.token.IsBlacklisted(addr)
}

func (n *Node) IsExcludedFee(addr [20]byte) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.token.IsExcludedFee(addr)
}

func (n *Node) IsWalletLimitUnlimited(addr [20]byte) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.token.IsWalletLimitUnlimited(addr)
}

func (n *Node) IsPairAddress(addr [20]byte) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.token.IsPairAddress(addr)
}

func (n *Node) TransferOwnership(caller, newOwner [20]byte) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.token.TransferOwnership(caller, newOwner)
}

func (n *Node) RenounceOwnership(caller [20]byte) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.token.RenounceOwnership(caller)
}

func (n *Node) SetIsBlacklisted(caller, addr [20]byte, flag bool) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.token.SetIsBlacklisted(caller, addr, flag)
}

func (n *Node) SetIsExcludedFee(caller, addr [20]byte, flag bool) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.token.SetIsExcludedFee(caller, addr, flag)
}

func (n *Node) SetIsWalletLimitUnlimited(caller, addr [20]byte, flag bool) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.token.SetIsWalletLimitUnlimited(caller, addr, flag)
}

func (n *Node) SetPairAddress(caller, addr [20]byte, flag bool) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.token.SetPairAddress(caller, addr, flag)
}

func (n *Node) SetIsWalletsLimitEnabled(caller [20]byte, enabled bool) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.token.SetIsWalletsLimitEnabled(caller, enabled)
}

func (n *Node) SetWalletsLimit(caller [20]byte, percent uint64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.token.SetWalletsLimit(caller, percent)
}

func (n *Node) SetTxTrigger(caller [20]byte, trigger uint64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.token.SetTxTrigger(caller, trigger)
}

func (n *Node) BulkSetFees(caller [20]byte, owner, marketing, dev, liquidity uint64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.token.BulkSetFees(caller, owner, marketing, dev, liquidity)
}

func (n *Node) BulkSetAddresses(caller, owner, marketing, dev [20]byte) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.token.BulkSetAddresses(caller, owner, marketing, dev)
}

func (n *Node) DepositAirdropTokens(caller [20]byte, amount *big.Int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.token.DepositAirdropTokens(caller, amount)
}

func (n *Node) BulkAirdrop(caller [20]byte, recipients [][20]byte, amounts []*big.Int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.token.BulkAirdrop(caller, recipients, amounts)
}

func (n *Node) WithdrawToken(caller [20]byte, amount *big.Int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.token.WithdrawToken(caller, amount)
}

// --- staking operations ---

func (n *Node) Apr(tier staking.Tier) (uint64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.staking.Apr(tier)
}

func (n *Node) PoolReserve(tier staking.Tier) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.staking.PoolReserve(tier)
}

func (n *Node) StakeOf(tier staking.Tier, account [20]byte) (*staking.StakeRecord, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.staking.StakeOf(tier, account)
}

func (n *Node) ReservedRewards(tier staking.Tier) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.staking.ReservedRewards(tier)
}

func (n *Node) SetApr(caller [20]byte, tier staking.Tier, apr uint64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.staking.SetApr(caller, tier, apr)
}

func (n *Node) BulkSetApr(caller [20]byte, ninety, oneEighty, threeSixty uint64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.staking.BulkSetApr(caller, ninety, oneEighty, threeSixty)
}

func (n *Node) DepositStakingPool(caller [20]byte, tier staking.Tier, amount *big.Int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.staking.DepositStakingPool(caller, tier, amount)
}

func (n *Node) WithdrawStakingPool(caller [20]byte, tier staking.Tier, amount *big.Int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.staking.WithdrawStakingPool(caller, tier, amount)
}

func (n *Node) Stake(caller [20]byte, tier staking.Tier, amount *big.Int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.staking.Stake(caller, tier, amount); err != nil {
		return err
	}
	observability.LedgerMetrics().RecordStakeOp(tier, "stake")
	return nil
}

func (n *Node) WithdrawStake(caller [20]byte, tier staking.Tier) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.staking.Withdraw(caller, tier); err != nil {
		return err
	}
	observability.LedgerMetrics().RecordStakeOp(tier, "withdraw")
	return nil
}
