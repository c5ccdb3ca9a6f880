package token

import (
	"math/big"

	"emberchain/core/events"
)

// DepositAirdropTokens moves amount from the owner's balance into the
// ledger's held balance and grows the airdrop reserve. The reserve is
// untouchable by distributions and by WithdrawToken.
func (e *Engine) DepositAirdropTokens(caller [20]byte, amount *big.Int) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if e.state == nil {
		return errNilState
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	ownerAcc, err := e.state.GetAccount(e.owner)
	if err != nil {
		return err
	}
	if ownerAcc.Balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	moduleAcc, err := e.state.GetAccount(e.moduleAddress)
	if err != nil {
		return err
	}
	ownerAcc.Balance.Sub(ownerAcc.Balance, amount)
	moduleAcc.Balance.Add(moduleAcc.Balance, amount)
	if err := e.state.PutAccount(e.owner, ownerAcc); err != nil {
		return err
	}
	if err := e.state.PutAccount(e.moduleAddress, moduleAcc); err != nil {
		return err
	}
	e.airdropTokens.Add(e.airdropTokens, amount)
	return nil
}

// BulkAirdrop credits each recipient from the airdrop reserve as one atomic
// batch: the whole call is validated before any balance moves.
func (e *Engine) BulkAirdrop(caller [20]byte, recipients [][20]byte, amounts []*big.Int) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if e.state == nil {
		return errNilState
	}
	if len(recipients) != len(amounts) {
		return ErrInvalidArrayLength
	}
	total := big.NewInt(0)
	for _, amount := range amounts {
		if amount == nil || amount.Sign() <= 0 {
			return ErrInvalidAmount
		}
		total.Add(total, amount)
	}
	if total.Cmp(e.airdropTokens) > 0 {
		return ErrInsufficientAirdropTokens
	}
	moduleAcc, err := e.state.GetAccount(e.moduleAddress)
	if err != nil {
		return err
	}
	for i, recipient := range recipients {
		acc, err := e.state.GetAccount(recipient)
		if err != nil {
			return err
		}
		acc.Balance.Add(acc.Balance, amounts[i])
		if err := e.state.PutAccount(recipient, acc); err != nil {
			return err
		}
	}
	moduleAcc.Balance.Sub(moduleAcc.Balance, total)
	if err := e.state.PutAccount(e.moduleAddress, moduleAcc); err != nil {
		return err
	}
	e.airdropTokens.Sub(e.airdropTokens, total)
	e.emit(events.Airdrop{
		Recipients: len(recipients),
		Total:      new(big.Int).Set(total),
		Remaining:  new(big.Int).Set(e.airdropTokens),
	})
	return nil
}

// WithdrawToken returns stray tokens from the ledger's held balance to the
// owner. The airdrop reserve is never withdrawable this way.
func (e *Engine) WithdrawToken(caller [20]byte, amount *big.Int) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if e.state == nil {
		return errNilState
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	moduleAcc, err := e.state.GetAccount(e.moduleAddress)
	if err != nil {
		return err
	}
	available := new(big.Int).Sub(moduleAcc.Balance, e.airdropTokens)
	if amount.Cmp(available) > 0 {
		return ErrInsufficientBalance
	}
	ownerAcc, err := e.state.GetAccount(e.owner)
	if err != nil {
		return err
	}
	moduleAcc.Balance.Sub(moduleAcc.Balance, amount)
	ownerAcc.Balance.Add(ownerAcc.Balance, amount)
	if err := e.state.PutAccount(e.moduleAddress, moduleAcc); err != nil {
		return err
	}
	return e.state.PutAccount(e.owner, ownerAcc)
}
