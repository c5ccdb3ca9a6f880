package token

import (
	"math/big"

	"emberchain/core/events"
	"emberchain/core/types"
)

type engineState interface {
	GetAccount(addr [20]byte) (*types.Account, error)
	PutAccount(addr [20]byte, acc *types.Account) error
	Allowance(owner, spender [20]byte) (*big.Int, error)
	SetAllowance(owner, spender [20]byte, amount *big.Int) error
	CreditSettlement(addr [20]byte, amount *big.Int) error
}

// Accumulated tracks the running fee counters consumed by the distributor.
type Accumulated struct {
	Owner     *big.Int
	Marketing *big.Int
	Dev       *big.Int
	Liquidity *big.Int
}

func newAccumulated() Accumulated {
	return Accumulated{
		Owner:     big.NewInt(0),
		Marketing: big.NewInt(0),
		Dev:       big.NewInt(0),
		Liquidity: big.NewInt(0),
	}
}

// Engine implements the fungible-token ledger: taxed transfers, wallet-size
// limiting, allowances, the airdrop sub-ledger and the distribution trigger.
// Callers pass an authenticated identity with every operation; owner-gated
// setters compare it against the configured owner.
type Engine struct {
	state   engineState
	emitter events.Emitter

	owner         [20]byte
	moduleAddress [20]byte
	totalSupply   *big.Int
	initialised   bool

	fees                FeeConfig
	walletsLimitEnabled bool
	walletsLimitPercent uint64
	txTrigger           uint64
	txCounter           uint64

	airdropTokens *big.Int
	totals        Accumulated

	exchange        Exchange
	exchangeAccount [20]byte
	lpMinted        *big.Int
	distributing    bool
}

// NewEngine constructs a token engine for the given owner, module account
// and immutable total supply. Call InitGenesis once the state backend is
// wired to mint the supply.
func NewEngine(owner, module [20]byte, totalSupply *big.Int) *Engine {
	supply := big.NewInt(0)
	if totalSupply != nil {
		supply = new(big.Int).Set(totalSupply)
	}
	return &Engine{
		emitter:             events.NoopEmitter{},
		owner:               owner,
		moduleAddress:       module,
		totalSupply:         supply,
		fees:                DefaultFees(owner),
		walletsLimitEnabled: true,
		walletsLimitPercent: DefaultWalletsLimitPercent,
		txTrigger:           DefaultTxTrigger,
		airdropTokens:       big.NewInt(0),
		totals:              newAccumulated(),
		lpMinted:            big.NewInt(0),
	}
}

// SetState wires the engine to the external persistence layer.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetEmitter configures the event emitter. Passing nil resets it to a no-op.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetExchange wires the external exchange collaborator and the ledger
// account its pool trades against. Without an exchange every distribution
// attempt is treated as a recoverable failure.
func (e *Engine) SetExchange(exchange Exchange, account [20]byte) {
	e.exchange = exchange
	e.exchangeAccount = account
}

func (e *Engine) emit(evt events.Event) {
	if e == nil || e.emitter == nil || evt == nil {
		return
	}
	e.emitter.Emit(evt)
}

// InitGenesis mints the total supply to the owner and marks the owner and
// the module account fee exempt and wallet unlimited. Idempotent: a second
// call is a no-op.
func (e *Engine) InitGenesis() error {
	if e.state == nil {
		return errNilState
	}
	if e.initialised {
		return nil
	}
	ownerAcc, err := e.state.GetAccount(e.owner)
	if err != nil {
		return err
	}
	ownerAcc.Balance = new(big.Int).Set(e.totalSupply)
	ownerAcc.FeeExempt = true
	ownerAcc.WalletUnlimited = true
	if err := e.state.PutAccount(e.owner, ownerAcc); err != nil {
		return err
	}
	moduleAcc, err := e.state.GetAccount(e.moduleAddress)
	if err != nil {
		return err
	}
	moduleAcc.FeeExempt = true
	moduleAcc.WalletUnlimited = true
	if err := e.state.PutAccount(e.moduleAddress, moduleAcc); err != nil {
		return err
	}
	e.initialised = true
	return nil
}

// --- views ---

// Owner returns the current privileged account. After RenounceOwnership it
// is the zero address and every owner-gated operation fails.
func (e *Engine) Owner() [20]byte { return e.owner }

// ModuleAddress returns the ledger's own held account.
func (e *Engine) ModuleAddress() [20]byte { return e.moduleAddress }

// TotalSupply returns the immutable genesis supply.
func (e *Engine) TotalSupply() *big.Int { return new(big.Int).Set(e.totalSupply) }

// BalanceOf returns the balance of addr.
func (e *Engine) BalanceOf(addr [20]byte) (*big.Int, error) {
	if e.state == nil {
		return nil, errNilState
	}
	acc, err := e.state.GetAccount(addr)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(acc.Balance), nil
}

// Fees returns the current fee configuration.
func (e *Engine) Fees() FeeConfig { return e.fees }

// Totals returns copies of the accumulated fee counters.
func (e *Engine) Totals() Accumulated {
	return Accumulated{
		Owner:     new(big.Int).Set(e.totals.Owner),
		Marketing: new(big.Int).Set(e.totals.Marketing),
		Dev:       new(big.Int).Set(e.totals.Dev),
		Liquidity: new(big.Int).Set(e.totals.Liquidity),
	}
}

// WalletsLimitEnabled reports whether the wallet-size limit is enforced.
func (e *Engine) WalletsLimitEnabled() bool { return e.walletsLimitEnabled }

// WalletsLimit returns the wallet limit in percent of total supply.
func (e *Engine) WalletsLimit() uint64 { return e.walletsLimitPercent }

// TxTrigger returns the distribution trigger threshold.
func (e *Engine) TxTrigger() uint64 { return e.txTrigger }

// TxCounter returns the qualifying-transfer count since the last
// distribution.
func (e *Engine) TxCounter() uint64 { return e.txCounter }

// AirdropTokens returns the reserved airdrop balance.
func (e *Engine) AirdropTokens() *big.Int { return new(big.Int).Set(e.airdropTokens) }

// LiquidityMinted returns the cumulative liquidity-position tokens credited
// to the owner by past distributions.
func (e *Engine) LiquidityMinted() *big.Int { return new(big.Int).Set(e.lpMinted) }

// IsBlacklisted reports the blacklist flag for addr.
func (e *Engine) IsBlacklisted(addr [20]byte) (bool, error) {
	acc, err := e.account(addr)
	if err != nil {
		return false, err
	}
	return acc.Blacklisted, nil
}

// IsExcludedFee reports the fee-exemption flag for addr.
func (e *Engine) IsExcludedFee(addr [20]byte) (bool, error) {
	acc, err := e.account(addr)
	if err != nil {
		return false, err
	}
	return acc.FeeExempt, nil
}

// IsWalletLimitUnlimited reports the wallet-limit exemption flag for addr.
func (e *Engine) IsWalletLimitUnlimited(addr [20]byte) (bool, error) {
	acc, err := e.account(addr)
	if err != nil {
		return false, err
	}
	return acc.WalletUnlimited, nil
}

// IsPairAddress reports whether addr is a registered pair.
func (e *Engine) IsPairAddress(addr [20]byte) (bool, error) {
	acc, err := e.account(addr)
	if err != nil {
		return false, err
	}
	return acc.Pair, nil
}

func (e *Engine) account(addr [20]byte) (*types.Account, error) {
	if e.state == nil {
		return nil, errNilState
	}
	return e.state.GetAccount(addr)
}

func (e *Engine) requireOwner(caller [20]byte) error {
	if caller != e.owner || caller == ([20]byte{}) {
		return ErrNotOwner
	}
	return nil
}

// --- ownership ---

// TransferOwnership hands the privileged role to newOwner.
func (e *Engine) TransferOwnership(caller, newOwner [20]byte) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	e.owner = newOwner
	return nil
}

// RenounceOwnership clears the privileged role permanently.
func (e *Engine) RenounceOwnership(caller [20]byte) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	e.owner = [20]byte{}
	return nil
}

// --- registry setters ---

// SetIsBlacklisted flips the blacklist flag for addr. Setting the flag to
// its current value fails with ErrAlreadyBlacklisted.
func (e *Engine) SetIsBlacklisted(caller, addr [20]byte, flag bool) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	acc, err := e.account(addr)
	if err != nil {
		return err
	}
	if acc.Blacklisted == flag {
		return ErrAlreadyBlacklisted
	}
	acc.Blacklisted = flag
	return e.state.PutAccount(addr, acc)
}

// SetIsExcludedFee flips the fee-exemption flag for addr.
func (e *Engine) SetIsExcludedFee(caller, addr [20]byte, flag bool) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	acc, err := e.account(addr)
	if err != nil {
		return err
	}
	if acc.FeeExempt == flag {
		return ErrAlreadyExcludedFee
	}
	acc.FeeExempt = flag
	return e.state.PutAccount(addr, acc)
}

// SetIsWalletLimitUnlimited flips the wallet-limit exemption flag for addr.
func (e *Engine) SetIsWalletLimitUnlimited(caller, addr [20]byte, flag bool) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	acc, err := e.account(addr)
	if err != nil {
		return err
	}
	if acc.WalletUnlimited == flag {
		return ErrAlreadyWalletLimitUnlimited
	}
	acc.WalletUnlimited = flag
	return e.state.PutAccount(addr, acc)
}

// SetPairAddress flips the pair designation for addr. Transfers into a pair
// count as sells for the distribution trigger.
func (e *Engine) SetPairAddress(caller, addr [20]byte, flag bool) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	acc, err := e.account(addr)
	if err != nil {
		return err
	}
	if acc.Pair == flag {
		return ErrAlreadyAPairAddress
	}
	acc.Pair = flag
	return e.state.PutAccount(addr, acc)
}

// SetIsWalletsLimitEnabled toggles wallet-limit enforcement globally.
func (e *Engine) SetIsWalletsLimitEnabled(caller [20]byte, enabled bool) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if e.walletsLimitEnabled == enabled {
		return ErrAlreadyWalletsLimitEnabled
	}
	e.walletsLimitEnabled = enabled
	return nil
}

// SetWalletsLimit updates the wallet limit percentage.
func (e *Engine) SetWalletsLimit(caller [20]byte, percent uint64) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if percent == 0 {
		return ErrWalletLimitZero
	}
	if percent == e.walletsLimitPercent {
		return ErrAlreadyWalletLimit
	}
	e.walletsLimitPercent = percent
	return nil
}

// SetTxTrigger updates the distribution trigger threshold.
func (e *Engine) SetTxTrigger(caller [20]byte, trigger uint64) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if trigger == e.txTrigger {
		return ErrAlreadyTxTrigger
	}
	e.txTrigger = trigger
	return nil
}

// BulkSetFees replaces the four fee percentages atomically. The sum must
// not exceed FeeLimitPercent; all-zero is a valid fee holiday.
func (e *Engine) BulkSetFees(caller [20]byte, owner, marketing, dev, liquidity uint64) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if owner+marketing+dev+liquidity > FeeLimitPercent {
		return ErrExceedsFeesLimit
	}
	e.fees.OwnerPercent = owner
	e.fees.MarketingPercent = marketing
	e.fees.DevPercent = dev
	e.fees.LiquidityPercent = liquidity
	return nil
}

// BulkSetAddresses replaces the three fee recipients atomically.
func (e *Engine) BulkSetAddresses(caller, owner, marketing, dev [20]byte) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	e.fees.OwnerRecipient = owner
	e.fees.MarketingRecipient = marketing
	e.fees.DevRecipient = dev
	return nil
}

// --- allowances ---

// Approve authorises spender to move up to amount from owner's balance.
func (e *Engine) Approve(owner, spender [20]byte, amount *big.Int) error {
	if e.state == nil {
		return errNilState
	}
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	return e.state.SetAllowance(owner, spender, amount)
}

// Allowance returns the remaining approved amount for (owner, spender).
func (e *Engine) Allowance(owner, spender [20]byte) (*big.Int, error) {
	if e.state == nil {
		return nil, errNilState
	}
	return e.state.Allowance(owner, spender)
}

// TransferFrom moves amount from `from` to `to` on behalf of spender,
// subject to the same tax, limit and blacklist checks as Transfer. The
// allowance is decremented by the gross amount requested.
func (e *Engine) TransferFrom(spender, from, to [20]byte, amount *big.Int) error {
	if e.state == nil {
		return errNilState
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	allowance, err := e.state.Allowance(from, spender)
	if err != nil {
		return err
	}
	if allowance.Cmp(amount) < 0 {
		return ErrInsufficientAllowance
	}
	if err := e.transfer(from, to, amount); err != nil {
		return err
	}
	remaining := new(big.Int).Sub(allowance, amount)
	return e.state.SetAllowance(from, spender, remaining)
}

// --- transfers ---

// Transfer moves amount from `from` to `to`, extracting the transfer tax
// and enforcing the wallet limit, then runs the distribution trigger.
func (e *Engine) Transfer(from, to [20]byte, amount *big.Int) error {
	return e.transfer(from, to, amount)
}

func (e *Engine) transfer(from, to [20]byte, amount *big.Int) error {
	if e.state == nil {
		return errNilState
	}
	if !e.initialised {
		return errSupplyNotInitialised
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	fromAcc, err := e.state.GetAccount(from)
	if err != nil {
		return err
	}
	toAcc, err := e.state.GetAccount(to)
	if err != nil {
		return err
	}
	if fromAcc.Blacklisted || toAcc.Blacklisted {
		return ErrBlacklistedAddress
	}

	internal := from == e.moduleAddress || to == e.moduleAddress
	exempt := fromAcc.FeeExempt || toAcc.FeeExempt
	// Only trades against a pair are taxed; plain wallet-to-wallet moves
	// transfer the full amount.
	takeFee := !e.distributing && !internal && !exempt && (fromAcc.Pair || toAcc.Pair)

	shares := feeShares{}
	if takeFee {
		shares = e.computeFee(amount, toAcc.Pair)
	}
	net := new(big.Int).Sub(amount, shares.total())

	if fromAcc.Balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	// Fee-exempt parties bypass the wallet limit alongside the tax.
	if e.walletsLimitEnabled && !e.distributing && !internal && !exempt && !toAcc.WalletUnlimited {
		limit := new(big.Int).Mul(e.totalSupply, new(big.Int).SetUint64(e.walletsLimitPercent))
		limit.Div(limit, big.NewInt(100))
		post := new(big.Int).Add(toAcc.Balance, net)
		if post.Cmp(limit) > 0 {
			return ErrExceedsWalletLimit
		}
	}

	fromAcc.Balance.Sub(fromAcc.Balance, amount)
	toAcc.Balance.Add(toAcc.Balance, net)
	if err := e.state.PutAccount(from, fromAcc); err != nil {
		return err
	}
	if err := e.state.PutAccount(to, toAcc); err != nil {
		return err
	}
	if fee := shares.total(); fee.Sign() > 0 {
		moduleAcc, err := e.state.GetAccount(e.moduleAddress)
		if err != nil {
			return err
		}
		moduleAcc.Balance.Add(moduleAcc.Balance, fee)
		if err := e.state.PutAccount(e.moduleAddress, moduleAcc); err != nil {
			return err
		}
		e.totals.Owner.Add(e.totals.Owner, shares.owner)
		e.totals.Marketing.Add(e.totals.Marketing, shares.marketing)
		e.totals.Dev.Add(e.totals.Dev, shares.dev)
		e.totals.Liquidity.Add(e.totals.Liquidity, shares.liquidity)
		e.emit(events.FeeAccrued{
			Owner:     new(big.Int).Set(shares.owner),
			Marketing: new(big.Int).Set(shares.marketing),
			Dev:       new(big.Int).Set(shares.dev),
			Liquidity: new(big.Int).Set(shares.liquidity),
		})
	}
	e.emit(events.Transfer{From: from, To: to, Net: new(big.Int).Set(net), Fee: shares.total()})

	if takeFee {
		e.txCounter++
		if e.txCounter >= e.txTrigger && toAcc.Pair {
			if err := e.maybeDistribute(); err == nil {
				e.txCounter = 0
			}
			// A failed distribution is recoverable: the accumulators and the
			// counter stay put for a retry on the next qualifying sell.
		}
	}
	return nil
}

type feeShares struct {
	owner     *big.Int
	marketing *big.Int
	dev       *big.Int
	liquidity *big.Int
}

func (s feeShares) total() *big.Int {
	total := big.NewInt(0)
	for _, part := range []*big.Int{s.owner, s.marketing, s.dev, s.liquidity} {
		if part != nil {
			total.Add(total, part)
		}
	}
	return total
}

// computeFee derives each bucket's share from its own percentage so later
// percentage changes cannot distort already-taxed transfers. The liquidity
// share is charged only on sells.
func (e *Engine) computeFee(amount *big.Int, sell bool) feeShares {
	percentOf := func(pct uint64) *big.Int {
		if pct == 0 {
			return big.NewInt(0)
		}
		share := new(big.Int).Mul(amount, new(big.Int).SetUint64(pct))
		return share.Div(share, big.NewInt(100))
	}
	shares := feeShares{
		owner:     percentOf(e.fees.OwnerPercent),
		marketing: percentOf(e.fees.MarketingPercent),
		dev:       percentOf(e.fees.DevPercent),
		liquidity: big.NewInt(0),
	}
	if sell {
		shares.liquidity = percentOf(e.fees.LiquidityPercent)
	}
	return shares
}
