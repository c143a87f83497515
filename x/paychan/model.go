package paychan

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/unichan"
	"github.com/iov-one/unichan/codec"
	"github.com/iov-one/unichan/errors"
	"github.com/iov-one/unichan/orm"
	"github.com/iov-one/unichan/x/cash"
)

// Channel is the state of a payer's channel. The payer address is the key.
type Channel struct {
	// Balance is the amount still locked in the channel.
	Balance *big.Int
	// ClosingDeadline is zero unless the channel is disputed.
	ClosingDeadline unichan.UnixTime
}

var _ orm.Model = (*Channel)(nil)

// IsOpen returns true if the channel holds any funds.
func (c *Channel) IsOpen() bool {
	return c != nil && c.Balance != nil && c.Balance.Sign() > 0
}

// Validate ensures the channel is valid.
func (c *Channel) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Balance", cash.ValidateAmount(c.Balance))
	errs = errors.AppendField(errs, "ClosingDeadline", c.ClosingDeadline.Validate())
	return errs
}

// Marshal serializes the channel as
//
//	message Channel {
//	  bytes balance = 1;
//	  int64 closing_deadline = 2;
//	}
func (c *Channel) Marshal() ([]byte, error) {
	balance, err := codec.BigIntBytes(c.Balance)
	if err != nil {
		return nil, err
	}
	return codec.Marshal(&channelMsg{
		Balance:         balance,
		ClosingDeadline: int64(c.ClosingDeadline),
	})
}

// Unmarshal loads the channel from its serialized form.
func (c *Channel) Unmarshal(raw []byte) error {
	var m channelMsg
	if err := codec.Unmarshal(raw, &m); err != nil {
		return err
	}
	*c = Channel{
		Balance:         codec.BytesBigInt(m.Balance),
		ClosingDeadline: unichan.UnixTime(m.ClosingDeadline),
	}
	return nil
}

// ChannelBucket is a wrapper over orm.Bucket that ensures that only
// Channel entities can be persisted.
type ChannelBucket struct {
	orm.Bucket
}

// NewChannelBucket returns a bucket for storing Channel state.
func NewChannelBucket() ChannelBucket {
	return ChannelBucket{
		Bucket: orm.NewBucket("paychan", orm.NewSimpleObj(nil, &Channel{})),
	}
}

// GetChannel returns the channel of the payer. A payer without a channel
// gets an empty one, which is not open.
func (b ChannelBucket) GetChannel(db unichan.ReadOnlyKVStore, payer common.Address) (*Channel, error) {
	obj, err := b.Get(db, payer.Bytes())
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return &Channel{Balance: new(big.Int)}, nil
	}
	ch, ok := obj.Value().(*Channel)
	if !ok {
		return nil, errors.WithType(errors.ErrModel, obj.Value())
	}
	return ch, nil
}

// SaveChannel updates the state of the payer's channel.
func (b ChannelBucket) SaveChannel(db unichan.KVStore, payer common.Address, ch *Channel) error {
	return b.Save(db, orm.NewSimpleObj(payer.Bytes(), ch))
}

// EventKind names what happened to a channel.
type EventKind int32

const (
	EventOpened EventKind = iota + 1
	EventChallenged
	EventWithdrawn
	EventClosed
)

var eventKindNames = map[EventKind]string{
	EventOpened:     "opened",
	EventChallenged: "challenged",
	EventWithdrawn:  "withdrawn",
	EventClosed:     "closed",
}

func (k EventKind) String() string {
	if name, ok := eventKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Event is an entry of the append only audit log.
type Event struct {
	Kind    EventKind
	Account common.Address
	// Amount is set for opened, withdrawn and closed events.
	Amount *big.Int
	// Time is the block time of the operation.
	Time unichan.UnixTime
}

var _ orm.Model = (*Event)(nil)

// Validate ensures the event is valid.
func (e *Event) Validate() error {
	var errs error
	if _, ok := eventKindNames[e.Kind]; !ok {
		errs = errors.Append(errs, errors.Field("Kind", errors.ErrInput, "unknown kind %d", e.Kind))
	}
	if e.Account == (common.Address{}) {
		errs = errors.Append(errs, errors.Field("Account", errors.ErrEmpty, "missing account"))
	}
	errs = errors.AppendField(errs, "Amount", cash.ValidateAmount(e.Amount))
	return errs
}

// Marshal serializes the event as
//
//	message Event {
//	  int32 kind = 1;
//	  bytes account = 2;
//	  bytes amount = 3;
//	  int64 time = 4;
//	}
func (e *Event) Marshal() ([]byte, error) {
	amount, err := codec.BigIntBytes(e.Amount)
	if err != nil {
		return nil, err
	}
	return codec.Marshal(&eventMsg{
		Kind:    int32(e.Kind),
		Account: e.Account.Bytes(),
		Amount:  amount,
		Time:    int64(e.Time),
	})
}

// Unmarshal loads the event from its serialized form.
func (e *Event) Unmarshal(raw []byte) error {
	var m eventMsg
	if err := codec.Unmarshal(raw, &m); err != nil {
		return err
	}
	*e = Event{
		Kind:    EventKind(m.Kind),
		Account: common.BytesToAddress(m.Account),
		Time:    unichan.UnixTime(m.Time),
	}
	if len(m.Amount) > 0 {
		e.Amount = codec.BytesBigInt(m.Amount)
	}
	return nil
}

// Tags describe the event for the delivery result.
func (e *Event) Tags() []unichan.Tag {
	tags := []unichan.Tag{
		{Key: "action", Value: e.Kind.String()},
		{Key: "account", Value: e.Account.Hex()},
	}
	if e.Amount != nil {
		tags = append(tags, unichan.Tag{Key: "amount", Value: e.Amount.String()})
	}
	return tags
}

// EventBucket stores the audit log, keyed by a sequence so that iteration
// returns events in the order they happened.
type EventBucket struct {
	orm.Bucket
	seq orm.Sequence
}

// NewEventBucket returns a bucket for the channel events.
func NewEventBucket() EventBucket {
	b := orm.NewBucket("pcevent", orm.NewSimpleObj(nil, &Event{}))
	return EventBucket{
		Bucket: b,
		seq:    b.Sequence(orm.SeqID),
	}
}

// Append adds the event to the log and returns its key.
func (b EventBucket) Append(db unichan.KVStore, e *Event) ([]byte, error) {
	key, err := b.seq.NextVal(db)
	if err != nil {
		return nil, errors.Wrap(err, "event sequence")
	}
	return key, b.Save(db, orm.NewSimpleObj(key, e))
}

// Events returns the whole log, oldest first.
func (b EventBucket) Events(db unichan.ReadOnlyKVStore) ([]*Event, error) {
	objs, err := b.All(db)
	if err != nil {
		return nil, err
	}
	events := make([]*Event, len(objs))
	for i, obj := range objs {
		e, ok := obj.Value().(*Event)
		if !ok {
			return nil, errors.WithType(errors.ErrModel, obj.Value())
		}
		events[i] = e
	}
	return events, nil
}
