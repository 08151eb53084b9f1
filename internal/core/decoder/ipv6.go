package decoder

import (
	"encoding/binary"
	"fmt"
	"net/netip"
	"strconv"

	"github.com/framewatch/framewatch/internal/core"
)

const ipv6HeaderLen = 40

// nextHeaderNames is the closed description table for IPv6 next-header codes.
var nextHeaderNames = map[uint8]string{
	0:  "Hop-by-Hop Options",
	1:  "ICMP",
	6:  "TCP",
	17: "UDP",
	43: "Routing",
	44: "Fragment",
	50: "ESP",
	51: "AH",
	58: "ICMPv6",
	59: "No Next Header",
	60: "Destination Options",
}

// IPv6Packet is a read-only view over one fixed-length IPv6 header.
// The base header has no options; extension headers are not walked.
type IPv6Packet struct {
	data []byte
}

// ParseIPv6 validates the fixed 40-byte header length and the version
// nibble.
func ParseIPv6(data []byte) (*IPv6Packet, error) {
	if len(data) < ipv6HeaderLen {
		return nil, core.ErrFrameTooShort
	}

	version := data[0] >> 4
	if version != 6 {
		return nil, core.ErrInvalidVersion
	}

	return &IPv6Packet{data: data}, nil
}

// Version returns the version nibble (always 6 after a successful parse).
func (p *IPv6Packet) Version() uint8 {
	return p.data[0] >> 4
}

// TrafficClass returns the 8-bit traffic class, split across bytes 0-1.
func (p *IPv6Packet) TrafficClass() uint8 {
	return (p.data[0]&0x0F)<<4 | p.data[1]>>4
}

// FlowLabel returns the 20-bit flow label spanning bytes 1-3.
func (p *IPv6Packet) FlowLabel() uint32 {
	return uint32(p.data[1]&0x0F)<<16 | uint32(p.data[2])<<8 | uint32(p.data[3])
}

// PayloadLength returns the payload length in bytes.
func (p *IPv6Packet) PayloadLength() uint16 {
	return binary.BigEndian.Uint16(p.data[4:6])
}

// NextHeader returns the next-header code (the IPv6 analogue of the
// IPv4 protocol field).
func (p *IPv6Packet) NextHeader() uint8 {
	return p.data[6]
}

// HopLimit returns the hop limit field.
func (p *IPv6Packet) HopLimit() uint8 {
	return p.data[7]
}

// SrcIP returns the source address copied out of bytes 8-23.
func (p *IPv6Packet) SrcIP() netip.Addr {
	return netip.AddrFrom16([16]byte(p.data[8:24]))
}

// DstIP returns the destination address copied out of bytes 24-39.
func (p *IPv6Packet) DstIP() netip.Addr {
	return netip.AddrFrom16([16]byte(p.data[24:40]))
}

// NextHeaderName resolves the next-header code to a name.
func (p *IPv6Packet) NextHeaderName() string {
	if name, ok := nextHeaderNames[p.NextHeader()]; ok {
		return name
	}
	return fmt.Sprintf("Unknown (%d)", p.NextHeader())
}

// ControlFields emits the IPv6 header fields in protocol-defined order.
func (p *IPv6Packet) ControlFields() []core.ControlField {
	return []core.ControlField{
		{
			Name:        "IP Version",
			Value:       strconv.Itoa(int(p.Version())),
			Description: "Internet Protocol version",
		},
		{
			Name:        "Traffic Class",
			Value:       fmt.Sprintf("0x%02x", p.TrafficClass()),
			Description: "Traffic class field",
		},
		{
			Name:        "Flow Label",
			Value:       fmt.Sprintf("0x%05x", p.FlowLabel()),
			Description: "Flow label field",
		},
		{
			Name:        "Payload Length",
			Value:       strconv.Itoa(int(p.PayloadLength())),
			Description: "Length of the payload in bytes",
		},
		{
			Name:        "Next Header",
			Value:       strconv.Itoa(int(p.NextHeader())),
			Description: p.NextHeaderName(),
		},
		{
			Name:        "Hop Limit",
			Value:       strconv.Itoa(int(p.HopLimit())),
			Description: "Hop limit (similar to IPv4 TTL)",
		},
		{
			Name:        "Source IP",
			Value:       p.SrcIP().String(),
			Description: "Source IPv6 address",
		},
		{
			Name:        "Destination IP",
			Value:       p.DstIP().String(),
			Description: "Destination IPv6 address",
		},
	}
}
