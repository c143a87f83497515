package orm

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/unichan/codec"
	"github.com/iov-one/unichan/errors"
)

// counter is a minimal model used to exercise buckets
type counter struct {
	Count int64
}

var _ Model = (*counter)(nil)

func (c *counter) Validate() error {
	if c.Count < 0 {
		return errors.Wrap(errors.ErrState, "negative count")
	}
	return nil
}

func (c *counter) Marshal() ([]byte, error) {
	return codec.Marshal(&counterMsg{Count: c.Count})
}

func (c *counter) Unmarshal(raw []byte) error {
	var m counterMsg
	if err := codec.Unmarshal(raw, &m); err != nil {
		return err
	}
	*c = counter{Count: m.Count}
	return nil
}

type counterMsg struct {
	Count int64 `protobuf:"varint,1,opt,name=count,proto3" json:"count,omitempty"`
}

func (m *counterMsg) Reset()         { *m = counterMsg{} }
func (m *counterMsg) String() string { return proto.CompactTextString(m) }
func (*counterMsg) ProtoMessage()    {}
