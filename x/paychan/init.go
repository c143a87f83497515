package paychan

import (
	"github.com/iov-one/unichan"
	"github.com/iov-one/unichan/gconf"
)

// Initializer fulfils the Initializer interface to load the ledger
// configuration from the genesis file
type Initializer struct{}

var _ unichan.Initializer = Initializer{}

// FromGenesis reads the conf.paychan section, validates it and stores it.
func (Initializer) FromGenesis(opts unichan.Options, db unichan.KVStore) error {
	var conf Configuration
	return gconf.InitConfig(db, opts, confPkg, &conf)
}
