package cash

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/iov-one/unichan"
	"github.com/iov-one/unichan/codec"
	"github.com/iov-one/unichan/errors"
	"github.com/iov-one/unichan/orm"
)

// BucketName is where we store the balances
const BucketName = "cash"

//---- Set

// Set is the persisted state of a wallet.
type Set struct {
	Amount *big.Int
}

var _ unichan.Persistent = (*Set)(nil)

// Validate requires the amount to fit in the uint256 range.
func (s *Set) Validate() error {
	return ValidateAmount(s.Amount)
}

// Copy makes a new set with the same amount
func (s *Set) Copy() *Set {
	return &Set{Amount: new(big.Int).Set(s.amount())}
}

func (s *Set) amount() *big.Int {
	if s.Amount == nil {
		return new(big.Int)
	}
	return s.Amount
}

// Marshal serializes the set as
//
//	message Set { bytes amount = 1; }
func (s *Set) Marshal() ([]byte, error) {
	amount, err := codec.BigIntBytes(s.Amount)
	if err != nil {
		return nil, err
	}
	return codec.Marshal(&setMsg{Amount: amount})
}

// Unmarshal loads the set from its serialized form.
func (s *Set) Unmarshal(raw []byte) error {
	var m setMsg
	if err := codec.Unmarshal(raw, &m); err != nil {
		return err
	}
	*s = Set{Amount: codec.BytesBigInt(m.Amount)}
	return nil
}

// ValidateAmount returns an error if the amount is negative or does not fit
// in 256 bits.
func ValidateAmount(amount *big.Int) error {
	if amount == nil {
		return nil
	}
	if amount.Sign() < 0 {
		return errors.Wrap(errors.ErrAmount, "negative amount")
	}
	if amount.Cmp(math.MaxBig256) > 0 {
		return errors.Wrap(errors.ErrOverflow, "amount exceeds uint256")
	}
	return nil
}

//--- Wallet (Set object, wallet + key)

// Wallet is the actual object that we want to pass around
// in our code. It contains the balance, as well as the
// address. It is connected to the Bucket to easily manipulate
// state.
//
// Wallet is a type-safe wrapper around orm.SimpleObj
type Wallet struct {
	key   []byte
	value *Set
}

var _ orm.Object = (*Wallet)(nil)

// NewWallet creates a wallet with this address holding amount.
// A nil amount creates an empty wallet.
func NewWallet(key common.Address, amount *big.Int) *Wallet {
	set := &Set{Amount: new(big.Int)}
	if amount != nil {
		set.Amount.Set(amount)
	}
	return &Wallet{key: key.Bytes(), value: set}
}

// Value gets the value stored in the object
func (w Wallet) Value() unichan.Persistent {
	return w.value
}

// Key returns the key to store the object under
func (w Wallet) Key() []byte {
	return w.key
}

// Address returns the owner of the wallet
func (w Wallet) Address() common.Address {
	return common.BytesToAddress(w.key)
}

// Validate makes sure the fields aren't empty.
// And delegates to the value validator if present
func (w Wallet) Validate() error {
	if len(w.key) != common.AddressLength {
		return errors.Field("Key", errors.ErrEmpty, "missing or invalid address")
	}
	return errors.Field("Value", w.value.Validate(), "invalid wallet")
}

// SetKey may be used to update a simple obj key
func (w *Wallet) SetKey(key []byte) {
	w.key = key
}

// Clone will make a copy of this object
func (w *Wallet) Clone() orm.Object {
	res := &Wallet{
		value: w.value.Copy(),
	}
	// only copy key if non-nil
	if len(w.key) > 0 {
		res.key = append([]byte(nil), w.key...)
	}
	return res
}

// Amount returns a copy of the balance stored in the wallet
func (w Wallet) Amount() *big.Int {
	return new(big.Int).Set(w.value.amount())
}

// IsEmpty returns true if the wallet holds nothing
func (w Wallet) IsEmpty() bool {
	return w.value.amount().Sign() == 0
}

// Add modifies the wallet to add amount. It fails if the result
// leaves the uint256 range.
func (w *Wallet) Add(amount *big.Int) error {
	sum := new(big.Int).Add(w.value.amount(), amount)
	if sum.Sign() < 0 {
		return errors.Wrapf(errors.ErrInsufficientAmount, "balance %s, requested %s", w.value.amount(), new(big.Int).Neg(amount))
	}
	if sum.Cmp(math.MaxBig256) > 0 {
		return errors.Wrap(errors.ErrOverflow, "wallet balance exceeds uint256")
	}
	w.value.Amount = sum
	return nil
}

// Subtract modifies the wallet to remove amount
func (w *Wallet) Subtract(amount *big.Int) error {
	return w.Add(new(big.Int).Neg(amount))
}

//--- cash.Bucket - type-safe bucket

// Bucket is a type-safe wrapper around orm.Bucket
type Bucket struct {
	orm.Bucket
}

// NewBucket initializes a cash.Bucket with default name
func NewBucket() Bucket {
	return Bucket{
		Bucket: orm.NewBucket(BucketName, NewWallet(common.Address{}, nil)),
	}
}

// Get returns the wallet of the address or nil if it does not exist.
func (b Bucket) Get(db unichan.ReadOnlyKVStore, key common.Address) (*Wallet, error) {
	obj, err := b.Bucket.Get(db, key.Bytes())
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, nil
	}
	w, ok := obj.(*Wallet)
	if !ok {
		return nil, errors.WithType(errors.ErrModel, obj)
	}
	return w, nil
}

// Save persists the wallet.
func (b Bucket) Save(db unichan.KVStore, value *Wallet) error {
	return b.Bucket.Save(db, value)
}

// GetOrCreate returns the stored wallet or a new empty one.
// A created wallet is not saved.
func (b Bucket) GetOrCreate(db unichan.ReadOnlyKVStore, key common.Address) (*Wallet, error) {
	wallet, err := b.Get(db, key)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		wallet = NewWallet(key, nil)
	}
	return wallet, nil
}

// RegisterQuery will register this bucket as "/wallets"
func RegisterQuery(qr unichan.QueryRouter) {
	NewBucket().Register("wallets", qr)
}
