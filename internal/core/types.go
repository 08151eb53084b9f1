// Package core defines core types with zero external dependencies.
package core

import (
	"fmt"
	"strings"
)

// ProtocolType identifies which protocol layer a FrameControlInfo describes.
type ProtocolType string

const (
	ProtocolEthernet ProtocolType = "Ethernet"
	ProtocolWiFi     ProtocolType = "WiFi"
	ProtocolIPv4     ProtocolType = "IPv4"
	ProtocolIPv6     ProtocolType = "IPv6"
	ProtocolTCP      ProtocolType = "TCP"
	ProtocolUDP      ProtocolType = "UDP"
)

// OtherProtocol builds a tag for a protocol outside the closed set.
func OtherProtocol(name string) ProtocolType {
	return ProtocolType(name)
}

// ControlField is one decoded header field surfaced for display.
// It is created once by a decoder and never mutated.
type ControlField struct {
	Name        string // short label, e.g. "TTL"
	Value       string // pre-formatted display value, e.g. "64" or "0x0800"
	Description string // human-readable meaning
}

func (f ControlField) String() string {
	return fmt.Sprintf("%s: %s", f.Name, f.Value)
}

// FrameControlInfo is the result of decoding one frame: the outermost
// decoded layer tag plus all control fields in decode order, outer-layer
// fields first. The ordering is an external contract — display output
// depends on it.
type FrameControlInfo struct {
	Protocol      ProtocolType
	ControlFields []ControlField
}

// String renders one line "Protocol: <tag>" followed by one line per
// control field as "  <name>: <value> (<description>)".
func (fc *FrameControlInfo) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Protocol: %s\n", fc.Protocol)
	for _, field := range fc.ControlFields {
		fmt.Fprintf(&b, "  %s: %s (%s)\n", field.Name, field.Value, field.Description)
	}
	return b.String()
}
