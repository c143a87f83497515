package paychan

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/unichan"
	"github.com/iov-one/unichan/codec"
	"github.com/iov-one/unichan/errors"
	"github.com/iov-one/unichan/gconf"
)

const (
	// confPkg is the key of the configuration in the genesis conf section
	// and in the database.
	confPkg = "paychan"

	// DefaultDisputeWindow is used when the configuration does not set one.
	DefaultDisputeWindow = 30 * time.Second
)

// Configuration of the ledger, set once at genesis.
type Configuration struct {
	// Owner is the custodian receiving every voucher payout.
	Owner common.Address `json:"owner"`
	// DisputeWindow is how long a challenged channel stays disputed.
	DisputeWindow unichan.UnixDuration `json:"dispute_window"`
}

var _ gconf.Configuration = (*Configuration)(nil)

// Validate ensures the configuration is valid.
func (c *Configuration) Validate() error {
	var errs error
	if c.Owner == (common.Address{}) {
		errs = errors.Append(errs, errors.Field("Owner", errors.ErrEmpty, "missing owner"))
	}
	if c.DisputeWindow < 0 {
		errs = errors.Append(errs, errors.Field("DisputeWindow", errors.ErrInput, "negative window"))
	}
	return errs
}

// Window returns the dispute window, falling back to the default.
func (c *Configuration) Window() time.Duration {
	if c.DisputeWindow == 0 {
		return DefaultDisputeWindow
	}
	return c.DisputeWindow.Duration()
}

// Marshal serializes the configuration as
//
//	message Configuration {
//	  bytes owner = 1;
//	  int64 dispute_window = 2;
//	}
func (c *Configuration) Marshal() ([]byte, error) {
	return codec.Marshal(&configurationMsg{
		Owner:         c.Owner.Bytes(),
		DisputeWindow: int64(c.DisputeWindow),
	})
}

// Unmarshal loads the configuration from its serialized form.
func (c *Configuration) Unmarshal(raw []byte) error {
	var m configurationMsg
	if err := codec.Unmarshal(raw, &m); err != nil {
		return err
	}
	*c = Configuration{
		Owner:         common.BytesToAddress(m.Owner),
		DisputeWindow: unichan.UnixDuration(m.DisputeWindow),
	}
	return nil
}

// loadConf returns the configuration stored at genesis.
func loadConf(db gconf.ReadStore) (*Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, confPkg, &conf); err != nil {
		return nil, errors.Wrap(err, "load configuration")
	}
	return &conf, nil
}
