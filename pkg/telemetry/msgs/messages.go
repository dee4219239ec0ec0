// Package msgs defines the protobuf payloads of telemetry topics.
package msgs

import (
	"github.com/golang/protobuf/proto"
)

// Temperature is published on <node>/temperature.
type Temperature struct {
	Raw     int32   `protobuf:"zigzag32,1,opt,name=raw,proto3" json:"raw,omitempty"`
	Celsius float64 `protobuf:"fixed64,2,opt,name=celsius,proto3" json:"celsius,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *Temperature) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Temperature) Reset() { *m = Temperature{} }

// String implements proto.Message.
func (m *Temperature) String() string { return proto.CompactTextString(m) }

// Light is published on <node>/light.
type Light struct {
	Millivolts uint32 `protobuf:"varint,1,opt,name=millivolts,proto3" json:"millivolts,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *Light) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Light) Reset() { *m = Light{} }

// String implements proto.Message.
func (m *Light) String() string { return proto.CompactTextString(m) }

// Color is published on <node>/rgb and accepted on <node>/rgb/set.
type Color struct {
	R uint32 `protobuf:"varint,1,opt,name=r,proto3" json:"r,omitempty"`
	G uint32 `protobuf:"varint,2,opt,name=g,proto3" json:"g,omitempty"`
	B uint32 `protobuf:"varint,3,opt,name=b,proto3" json:"b,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *Color) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Color) Reset() { *m = Color{} }

// String implements proto.Message.
func (m *Color) String() string { return proto.CompactTextString(m) }

// Indicators is published on <node>/leds and accepted on <node>/leds/set.
// Bit n of Mask is indicator n.
type Indicators struct {
	Mask uint32 `protobuf:"varint,1,opt,name=mask,proto3" json:"mask,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *Indicators) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Indicators) Reset() { *m = Indicators{} }

// String implements proto.Message.
func (m *Indicators) String() string { return proto.CompactTextString(m) }

// LinStats is published on <node>/lin/stats.
type LinStats struct {
	Frames         uint64 `protobuf:"varint,1,opt,name=frames,proto3" json:"frames,omitempty"`
	Responses      uint64 `protobuf:"varint,2,opt,name=responses,proto3" json:"responses,omitempty"`
	Commands       uint64 `protobuf:"varint,3,opt,name=commands,proto3" json:"commands,omitempty"`
	Unknown        uint64 `protobuf:"varint,4,opt,name=unknown,proto3" json:"unknown,omitempty"`
	InvalidSync    uint64 `protobuf:"varint,5,opt,name=invalid_sync,proto3" json:"invalid_sync,omitempty"`
	InvalidPid     uint64 `protobuf:"varint,6,opt,name=invalid_pid,proto3" json:"invalid_pid,omitempty"`
	ChecksumErrors uint64 `protobuf:"varint,7,opt,name=checksum_errors,proto3" json:"checksum_errors,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *LinStats) ProtoMessage() {}

// Reset implements proto.Message.
func (m *LinStats) Reset() { *m = LinStats{} }

// String implements proto.Message.
func (m *LinStats) String() string { return proto.CompactTextString(m) }
