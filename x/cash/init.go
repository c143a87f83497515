package cash

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/iov-one/unichan"
	"github.com/iov-one/unichan/errors"
)

const optKey = "cash"

// GenesisAccount is used to parse the json from genesis file.
// Amount accepts both decimal and 0x prefixed hex numbers.
type GenesisAccount struct {
	Address common.Address        `json:"address"`
	Amount  *math.HexOrDecimal256 `json:"amount"`
}

// Initializer fulfils the Initializer interface to load data from
// the genesis file
type Initializer struct{}

var _ unichan.Initializer = Initializer{}

// FromGenesis will parse initial account info from genesis
// and save it to the database
func (Initializer) FromGenesis(opts unichan.Options, kv unichan.KVStore) error {
	var accts []GenesisAccount
	if err := opts.ReadOptions(optKey, &accts); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	ctrl := NewController(NewBucket())
	for i, acct := range accts {
		if acct.Address == (common.Address{}) {
			return errors.Field("Address", errors.ErrEmpty, "genesis account %d", i)
		}
		if acct.Amount == nil {
			return errors.Field("Amount", errors.ErrEmpty, "genesis account %d", i)
		}
		amount := (*big.Int)(acct.Amount)
		if err := ctrl.IssueCoins(kv, acct.Address, amount); err != nil {
			return errors.Wrapf(err, "genesis account %s", acct.Address.Hex())
		}
	}
	return nil
}
