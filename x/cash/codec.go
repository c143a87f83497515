package cash

import (
	"github.com/gogo/protobuf/proto"
)

// setMsg is the protobuf representation of a Set. The amount is stored as
// big endian bytes.
type setMsg struct {
	Amount []byte `protobuf:"bytes,1,opt,name=amount,proto3" json:"amount,omitempty"`
}

func (m *setMsg) Reset()         { *m = setMsg{} }
func (m *setMsg) String() string { return proto.CompactTextString(m) }
func (*setMsg) ProtoMessage()    {}
