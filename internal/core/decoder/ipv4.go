package decoder

import (
	"encoding/binary"
	"fmt"
	"net/netip"
	"strconv"
	"strings"

	"github.com/framewatch/framewatch/internal/core"
)

const ipv4HeaderMinLen = 20

// ipProtocolNames is the closed description table for IPv4 protocol codes.
var ipProtocolNames = map[uint8]string{
	1:  "ICMP",
	2:  "IGMP",
	6:  "TCP",
	17: "UDP",
}

// IPv4Packet is a read-only view over one IPv4 header. It borrows the
// caller's buffer for the duration of the decode call; accessors copy
// field values out.
type IPv4Packet struct {
	data []byte
}

// ParseIPv4 validates the IPv4 header: minimum length, version nibble,
// and that the declared header length (IHL) is at least 20 bytes and
// fits within the buffer.
func ParseIPv4(data []byte) (*IPv4Packet, error) {
	if len(data) < ipv4HeaderMinLen {
		return nil, core.ErrFrameTooShort
	}

	version := data[0] >> 4
	if version != 4 {
		return nil, core.ErrInvalidVersion
	}

	ihl := data[0] & 0x0F
	headerLen := int(ihl) * 4 // IHL is in 32-bit words
	if headerLen < ipv4HeaderMinLen || headerLen > len(data) {
		return nil, core.ErrInvalidHeaderLength
	}

	return &IPv4Packet{data: data}, nil
}

// Version returns the version nibble (always 4 after a successful parse).
func (p *IPv4Packet) Version() uint8 {
	return p.data[0] >> 4
}

// HeaderLength returns the header length in bytes (IHL × 4).
func (p *IPv4Packet) HeaderLength() uint8 {
	return (p.data[0] & 0x0F) * 4
}

// DSCP returns the Differentiated Services Code Point (top 6 bits of byte 1).
func (p *IPv4Packet) DSCP() uint8 {
	return p.data[1] >> 2
}

// ECN returns the Explicit Congestion Notification bits (low 2 bits of byte 1).
func (p *IPv4Packet) ECN() uint8 {
	return p.data[1] & 0x03
}

// TotalLength returns the total packet length in bytes.
func (p *IPv4Packet) TotalLength() uint16 {
	return binary.BigEndian.Uint16(p.data[2:4])
}

// Identification returns the fragmentation identification field.
func (p *IPv4Packet) Identification() uint16 {
	return binary.BigEndian.Uint16(p.data[4:6])
}

// Flags returns the 3-bit flags field (top bits of byte 6).
func (p *IPv4Packet) Flags() uint8 {
	return p.data[6] >> 5
}

// FragmentOffset returns the 13-bit fragment offset spanning bytes 6-7.
func (p *IPv4Packet) FragmentOffset() uint16 {
	return binary.BigEndian.Uint16(p.data[6:8]) & 0x1FFF
}

// TTL returns the Time to Live field.
func (p *IPv4Packet) TTL() uint8 {
	return p.data[8]
}

// Protocol returns the encapsulated protocol code.
func (p *IPv4Packet) Protocol() uint8 {
	return p.data[9]
}

// Checksum returns the header checksum as stored; it is never verified
// or recomputed.
func (p *IPv4Packet) Checksum() uint16 {
	return binary.BigEndian.Uint16(p.data[10:12])
}

// SrcIP returns the source address copied out of bytes 12-15.
func (p *IPv4Packet) SrcIP() netip.Addr {
	return netip.AddrFrom4([4]byte(p.data[12:16]))
}

// DstIP returns the destination address copied out of bytes 16-19.
func (p *IPv4Packet) DstIP() netip.Addr {
	return netip.AddrFrom4([4]byte(p.data[16:20]))
}

// ProtocolName resolves the protocol code to a name.
func (p *IPv4Packet) ProtocolName() string {
	if name, ok := ipProtocolNames[p.Protocol()]; ok {
		return name
	}
	return fmt.Sprintf("Unknown (%d)", p.Protocol())
}

// FlagsDescription renders the set flag bits as a comma-joined list,
// or "None" when no bits are set.
func (p *IPv4Packet) FlagsDescription() string {
	flags := p.Flags()
	var desc []string

	if flags&0x01 != 0 {
		desc = append(desc, "More Fragments")
	}
	if flags&0x02 != 0 {
		desc = append(desc, "Don't Fragment")
	}
	if flags&0x04 != 0 {
		desc = append(desc, "Reserved")
	}

	if len(desc) == 0 {
		return "None"
	}
	return strings.Join(desc, ", ")
}

// ControlFields emits the IPv4 header fields in protocol-defined order.
func (p *IPv4Packet) ControlFields() []core.ControlField {
	return []core.ControlField{
		{
			Name:        "IP Version",
			Value:       strconv.Itoa(int(p.Version())),
			Description: "Internet Protocol version",
		},
		{
			Name:        "Header Length",
			Value:       strconv.Itoa(int(p.HeaderLength())),
			Description: "IP header length in bytes",
		},
		{
			Name:        "DSCP",
			Value:       strconv.Itoa(int(p.DSCP())),
			Description: "Differentiated Services Code Point",
		},
		{
			Name:        "ECN",
			Value:       strconv.Itoa(int(p.ECN())),
			Description: "Explicit Congestion Notification",
		},
		{
			Name:        "Total Length",
			Value:       strconv.Itoa(int(p.TotalLength())),
			Description: "Total packet length in bytes",
		},
		{
			Name:        "Identification",
			Value:       fmt.Sprintf("0x%04x", p.Identification()),
			Description: "Packet identification for fragmentation",
		},
		{
			Name:        "Flags",
			Value:       fmt.Sprintf("0x%02x", p.Flags()),
			Description: p.FlagsDescription(),
		},
		{
			Name:        "Fragment Offset",
			Value:       strconv.Itoa(int(p.FragmentOffset())),
			Description: "Fragment offset in 8-byte units",
		},
		{
			Name:        "TTL",
			Value:       strconv.Itoa(int(p.TTL())),
			Description: "Time to Live",
		},
		{
			Name:        "Protocol",
			Value:       strconv.Itoa(int(p.Protocol())),
			Description: p.ProtocolName(),
		},
		{
			Name:        "Checksum",
			Value:       fmt.Sprintf("0x%04x", p.Checksum()),
			Description: "Header checksum",
		},
		{
			Name:        "Source IP",
			Value:       p.SrcIP().String(),
			Description: "Source IP address",
		},
		{
			Name:        "Destination IP",
			Value:       p.DstIP().String(),
			Description: "Destination IP address",
		},
	}
}
