// Package decoder implements protocol header decoding.
package decoder

import (
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/framewatch/framewatch/internal/core"
)

const (
	ethernetHeaderLen = 14
	vlanTagLen        = 4

	// EtherType values
	etherTypeIPv4 = 0x0800
	etherTypeARP  = 0x0806
	etherTypeVLAN = 0x8100
	etherTypeIPv6 = 0x86DD
	etherTypeQinQ = 0x88A8
	etherTypeLLDP = 0x88CC
)

// etherTypeNames is the closed description table for EtherType codes.
var etherTypeNames = map[uint16]string{
	etherTypeIPv4: "IPv4",
	etherTypeARP:  "ARP",
	etherTypeIPv6: "IPv6",
	etherTypeVLAN: "VLAN",
	etherTypeLLDP: "LLDP",
}

// MacAddress is a 6-byte hardware address copied out of the frame.
type MacAddress [6]byte

// String renders lowercase colon-separated hex octets.
func (m MacAddress) String() string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", m[0], m[1], m[2], m[3], m[4], m[5])
}

// EtherType is the 16-bit encapsulated-protocol code.
type EtherType uint16

func (e EtherType) String() string {
	return fmt.Sprintf("0x%04x", uint16(e))
}

// IsKnownEtherTypeName reports whether name appears in the EtherType
// description table.
func IsKnownEtherTypeName(name string) bool {
	for _, n := range etherTypeNames {
		if n == name {
			return true
		}
	}
	return false
}

// Description resolves the EtherType to a protocol name.
func (e EtherType) Description() string {
	if name, ok := etherTypeNames[uint16(e)]; ok {
		return name
	}
	return fmt.Sprintf("Unknown (0x%04x)", uint16(e))
}

// EthernetFrame is a read-only view over one captured frame. It borrows
// the caller's buffer and must not be retained past the decode call;
// accessors copy field values out.
type EthernetFrame struct {
	data []byte
	// Number of 802.1Q/802.1ad tags unwrapped; payload starts after them.
	vlanIDs []uint16
	// EtherType after VLAN unwrapping and offset of the payload.
	etherType     uint16
	payloadOffset int
}

// ParseEthernet validates the minimum header length and unwraps any
// VLAN/QinQ tags. Any 14+ byte buffer parses successfully — there is no
// way to reject malformed-but-long-enough input at this layer.
func ParseEthernet(data []byte) (*EthernetFrame, error) {
	if len(data) < ethernetHeaderLen {
		return nil, core.ErrFrameTooShort
	}

	etherType := binary.BigEndian.Uint16(data[12:14])
	offset := ethernetHeaderLen

	// Unwrap VLAN tags (can be nested: QinQ). The tag carried EtherType
	// at offset 12 names the tag itself; the real protocol follows it.
	var vlanIDs []uint16
	for etherType == etherTypeVLAN || etherType == etherTypeQinQ {
		if len(data) < offset+vlanTagLen {
			return nil, core.ErrFrameTooShort
		}
		tci := binary.BigEndian.Uint16(data[offset : offset+2])
		vlanIDs = append(vlanIDs, tci&0x0FFF)
		etherType = binary.BigEndian.Uint16(data[offset+2 : offset+4])
		offset += vlanTagLen
	}

	return &EthernetFrame{
		data:          data,
		vlanIDs:       vlanIDs,
		etherType:     etherType,
		payloadOffset: offset,
	}, nil
}

// DstMAC returns the destination hardware address (bytes 0-5).
func (f *EthernetFrame) DstMAC() MacAddress {
	var mac MacAddress
	copy(mac[:], f.data[0:6])
	return mac
}

// SrcMAC returns the source hardware address (bytes 6-11).
func (f *EthernetFrame) SrcMAC() MacAddress {
	var mac MacAddress
	copy(mac[:], f.data[6:12])
	return mac
}

// EtherType returns the encapsulated-protocol code, after VLAN unwrapping.
func (f *EthernetFrame) EtherType() EtherType {
	return EtherType(f.etherType)
}

// VLANIDs returns the unwrapped 802.1Q VLAN IDs, outermost first.
func (f *EthernetFrame) VLANIDs() []uint16 {
	return f.vlanIDs
}

// Payload returns the bytes following the Ethernet header and any VLAN
// tags. May be empty.
func (f *EthernetFrame) Payload() []byte {
	return f.data[f.payloadOffset:]
}

// FrameControl builds the frame control information for this frame:
// the three Ethernet-layer fields, one VLAN ID field per unwrapped tag,
// then the inner IPv4/IPv6 fields when the EtherType selects a decoder
// the payload satisfies. Inner decode failure omits the inner fields;
// partial results are acceptable here.
func (f *EthernetFrame) FrameControl() *core.FrameControlInfo {
	etype := f.EtherType()

	fields := []core.ControlField{
		{
			Name:        "Source MAC",
			Value:       f.SrcMAC().String(),
			Description: "Source hardware address",
		},
		{
			Name:        "Destination MAC",
			Value:       f.DstMAC().String(),
			Description: "Destination hardware address",
		},
		{
			Name:        "EtherType",
			Value:       etype.String(),
			Description: etype.Description(),
		},
	}

	for _, id := range f.vlanIDs {
		fields = append(fields, core.ControlField{
			Name:        "VLAN ID",
			Value:       strconv.Itoa(int(id)),
			Description: "802.1Q virtual LAN identifier",
		})
	}

	switch f.etherType {
	case etherTypeIPv4:
		if ip, err := ParseIPv4(f.Payload()); err == nil {
			fields = append(fields, ip.ControlFields()...)
		}
	case etherTypeIPv6:
		if ip, err := ParseIPv6(f.Payload()); err == nil {
			fields = append(fields, ip.ControlFields()...)
		}
	}

	return &core.FrameControlInfo{
		Protocol:      core.ProtocolEthernet,
		ControlFields: fields,
	}
}
