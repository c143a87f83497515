package paychan

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/iov-one/unichan"
	"github.com/iov-one/unichan/crypto"
	"github.com/iov-one/unichan/errors"
	"github.com/iov-one/unichan/x/cash"
)

const (
	pathFundMsg      = "paychan/fund"
	pathWithdrawMsg  = "paychan/withdraw"
	pathChallengeMsg = "paychan/challenge"
	pathDefundMsg    = "paychan/defund"
)

// Voucher is the payer's signed claim that the remaining balance of the
// channel is UpdatedBalance. It is not persisted.
type Voucher struct {
	UpdatedBalance *big.Int
	Signature      crypto.Signature
}

// NewVoucher signs a voucher for updatedBalance.
func NewVoucher(signer crypto.Signer, updatedBalance *big.Int) (Voucher, error) {
	sig, err := crypto.SignVoucher(signer, updatedBalance)
	if err != nil {
		return Voucher{}, err
	}
	return Voucher{UpdatedBalance: new(big.Int).Set(updatedBalance), Signature: sig}, nil
}

// Validate checks the voucher is well formed. It does not check who signed
// it, that is up to the ledger.
func (v Voucher) Validate() error {
	var errs error
	if v.UpdatedBalance == nil {
		errs = errors.Append(errs, errors.Field("UpdatedBalance", errors.ErrEmpty, "missing balance"))
	} else {
		errs = errors.AppendField(errs, "UpdatedBalance", cash.ValidateAmount(v.UpdatedBalance))
	}
	if v.Signature.IsZero() {
		errs = errors.Append(errs, errors.Field("Signature", errors.ErrEmpty, "missing signature"))
	}
	return errs
}

// Signer recovers the identity that signed the voucher.
func (v Voucher) Signer() (common.Address, error) {
	return crypto.RecoverVoucherSigner(v.UpdatedBalance, v.Signature)
}

type voucherJSON struct {
	UpdatedBalance *math.HexOrDecimal256 `json:"updated_balance"`
	Signature      crypto.Signature      `json:"signature"`
}

// MarshalJSON encodes the balance as a decimal string, so it survives
// JSON parsers limited to float64 numbers.
func (v Voucher) MarshalJSON() ([]byte, error) {
	return json.Marshal(voucherJSON{
		UpdatedBalance: (*math.HexOrDecimal256)(v.UpdatedBalance),
		Signature:      v.Signature,
	})
}

// UnmarshalJSON accepts decimal or 0x prefixed hex balances.
func (v *Voucher) UnmarshalJSON(raw []byte) error {
	var vj voucherJSON
	if err := json.Unmarshal(raw, &vj); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	v.UpdatedBalance = (*big.Int)(vj.UpdatedBalance)
	v.Signature = vj.Signature
	return nil
}

// FundMsg opens the caller's channel with Amount taken from the caller's
// wallet.
type FundMsg struct {
	Amount *big.Int
}

var _ unichan.Msg = (*FundMsg)(nil)

func (FundMsg) Path() string {
	return pathFundMsg
}

func (m *FundMsg) Validate() error {
	if m.Amount == nil || m.Amount.Sign() == 0 {
		return errors.Field("Amount", errors.ErrAmount, "deposit must be positive")
	}
	return errors.Field("Amount", cash.ValidateAmount(m.Amount), "invalid deposit")
}

// WithdrawMsg settles a voucher, paying the difference between the channel
// balance and the voucher balance to the owner.
type WithdrawMsg struct {
	Voucher Voucher
}

var _ unichan.Msg = (*WithdrawMsg)(nil)

func (WithdrawMsg) Path() string {
	return pathWithdrawMsg
}

func (m *WithdrawMsg) Validate() error {
	return errors.Field("Voucher", m.Voucher.Validate(), "invalid voucher")
}

// ChallengeMsg starts or restarts the dispute window of the caller's
// channel.
type ChallengeMsg struct{}

var _ unichan.Msg = (*ChallengeMsg)(nil)

func (ChallengeMsg) Path() string {
	return pathChallengeMsg
}

func (m *ChallengeMsg) Validate() error {
	return nil
}

// DefundMsg returns the remaining balance of a channel to the caller, once
// its dispute window passed.
type DefundMsg struct{}

var _ unichan.Msg = (*DefundMsg)(nil)

func (DefundMsg) Path() string {
	return pathDefundMsg
}

func (m *DefundMsg) Validate() error {
	return nil
}
