package paychan

import (
	"github.com/gogo/protobuf/proto"
)

// Protobuf representations of the persisted models. Balances are stored as
// big endian bytes, addresses as their 20 raw bytes.

type channelMsg struct {
	Balance         []byte `protobuf:"bytes,1,opt,name=balance,proto3" json:"balance,omitempty"`
	ClosingDeadline int64  `protobuf:"varint,2,opt,name=closing_deadline,json=closingDeadline,proto3" json:"closing_deadline,omitempty"`
}

func (m *channelMsg) Reset()         { *m = channelMsg{} }
func (m *channelMsg) String() string { return proto.CompactTextString(m) }
func (*channelMsg) ProtoMessage()    {}

type eventMsg struct {
	Kind    int32  `protobuf:"varint,1,opt,name=kind,proto3" json:"kind,omitempty"`
	Account []byte `protobuf:"bytes,2,opt,name=account,proto3" json:"account,omitempty"`
	Amount  []byte `protobuf:"bytes,3,opt,name=amount,proto3" json:"amount,omitempty"`
	Time    int64  `protobuf:"varint,4,opt,name=time,proto3" json:"time,omitempty"`
}

func (m *eventMsg) Reset()         { *m = eventMsg{} }
func (m *eventMsg) String() string { return proto.CompactTextString(m) }
func (*eventMsg) ProtoMessage()    {}

type configurationMsg struct {
	Owner         []byte `protobuf:"bytes,1,opt,name=owner,proto3" json:"owner,omitempty"`
	DisputeWindow int64  `protobuf:"varint,2,opt,name=dispute_window,json=disputeWindow,proto3" json:"dispute_window,omitempty"`
}

func (m *configurationMsg) Reset()         { *m = configurationMsg{} }
func (m *configurationMsg) String() string { return proto.CompactTextString(m) }
func (*configurationMsg) ProtoMessage()    {}
