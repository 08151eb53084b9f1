package decoder

import (
	"errors"
	"testing"

	"github.com/framewatch/framewatch/internal/core"
)

func TestParseIPv4Basic(t *testing.T) {
	data := []byte{
		0x45,       // Version 4, IHL 5
		0x2E,       // DSCP 11, ECN 2
		0x00, 0x1C, // Total Length: 28
		0xAB, 0xCD, // Identification
		0x40, 0x00, // Flags: DF, Fragment Offset 0
		0x40,       // TTL: 64
		0x06,       // Protocol: TCP
		0xBE, 0xEF, // Checksum
		10, 0, 0, 1, // Src IP
		10, 0, 0, 2, // Dst IP
	}

	p, err := ParseIPv4(data)
	if err != nil {
		t.Fatalf("ParseIPv4 failed: %v", err)
	}

	if p.Version() != 4 {
		t.Errorf("Expected version 4, got %d", p.Version())
	}
	if p.HeaderLength() != 20 {
		t.Errorf("Expected header length 20, got %d", p.HeaderLength())
	}
	if p.DSCP() != 0x0B {
		t.Errorf("Expected DSCP 11, got %d", p.DSCP())
	}
	if p.ECN() != 2 {
		t.Errorf("Expected ECN 2, got %d", p.ECN())
	}
	if p.TotalLength() != 28 {
		t.Errorf("Expected total length 28, got %d", p.TotalLength())
	}
	if p.Identification() != 0xABCD {
		t.Errorf("Expected identification 0xabcd, got 0x%04x", p.Identification())
	}
	if p.Flags() != 0x02 {
		t.Errorf("Expected flags 0x02, got 0x%02x", p.Flags())
	}
	if p.FragmentOffset() != 0 {
		t.Errorf("Expected fragment offset 0, got %d", p.FragmentOffset())
	}
	if p.TTL() != 64 {
		t.Errorf("Expected TTL 64, got %d", p.TTL())
	}
	if p.Protocol() != 6 {
		t.Errorf("Expected protocol 6, got %d", p.Protocol())
	}
	if p.Checksum() != 0xBEEF {
		t.Errorf("Expected checksum 0xbeef, got 0x%04x", p.Checksum())
	}
	if got := p.SrcIP().String(); got != "10.0.0.1" {
		t.Errorf("Expected SrcIP 10.0.0.1, got %s", got)
	}
	if got := p.DstIP().String(); got != "10.0.0.2" {
		t.Errorf("Expected DstIP 10.0.0.2, got %s", got)
	}
}

func TestParseIPv4TooShort(t *testing.T) {
	_, err := ParseIPv4(make([]byte, 19))
	if !errors.Is(err, core.ErrFrameTooShort) {
		t.Errorf("Expected ErrFrameTooShort, got %v", err)
	}
}

func TestParseIPv4InvalidVersion(t *testing.T) {
	data := make([]byte, 20)
	data[0] = 0x55 // version 5
	_, err := ParseIPv4(data)
	if !errors.Is(err, core.ErrInvalidVersion) {
		t.Errorf("Expected ErrInvalidVersion, got %v", err)
	}
}

func TestParseIPv4InvalidIHL(t *testing.T) {
	data := make([]byte, 20)
	data[0] = 0x44 // version 4, IHL 4 → 16 bytes, below the minimum
	_, err := ParseIPv4(data)
	if !errors.Is(err, core.ErrInvalidHeaderLength) {
		t.Errorf("Expected ErrInvalidHeaderLength, got %v", err)
	}
}

func TestParseIPv4HeaderLengthExceedsBuffer(t *testing.T) {
	// IHL 15 claims a 60-byte header but only 20 bytes are present.
	data := make([]byte, 20)
	data[0] = 0x4F
	_, err := ParseIPv4(data)
	if !errors.Is(err, core.ErrInvalidHeaderLength) {
		t.Errorf("Expected ErrInvalidHeaderLength, got %v", err)
	}

	// The same IHL with a big enough buffer parses.
	data = make([]byte, 60)
	data[0] = 0x4F
	if _, err := ParseIPv4(data); err != nil {
		t.Errorf("Expected 60-byte buffer with IHL 15 to parse, got %v", err)
	}
}

func TestIPv4FlagsDescription(t *testing.T) {
	cases := []struct {
		flags byte
		want  string
	}{
		{0x00, "None"},
		{0x20, "More Fragments"},
		{0x40, "Don't Fragment"},
		{0x80, "Reserved"},
		{0x60, "More Fragments, Don't Fragment"},
	}

	for _, tc := range cases {
		data := make([]byte, 20)
		data[0] = 0x45
		data[6] = tc.flags
		p, err := ParseIPv4(data)
		if err != nil {
			t.Fatalf("ParseIPv4 failed: %v", err)
		}
		if got := p.FlagsDescription(); got != tc.want {
			t.Errorf("Flags byte 0x%02x: expected %q, got %q", tc.flags, tc.want, got)
		}
	}
}

func TestIPv4ProtocolName(t *testing.T) {
	cases := []struct {
		proto byte
		want  string
	}{
		{1, "ICMP"},
		{2, "IGMP"},
		{6, "TCP"},
		{17, "UDP"},
		{89, "Unknown (89)"},
	}

	for _, tc := range cases {
		data := make([]byte, 20)
		data[0] = 0x45
		data[9] = tc.proto
		p, err := ParseIPv4(data)
		if err != nil {
			t.Fatalf("ParseIPv4 failed: %v", err)
		}
		if got := p.ProtocolName(); got != tc.want {
			t.Errorf("Protocol %d: expected %q, got %q", tc.proto, tc.want, got)
		}
	}
}

func TestIPv4ControlFieldOrder(t *testing.T) {
	p, err := ParseIPv4(ipv4Header)
	if err != nil {
		t.Fatalf("ParseIPv4 failed: %v", err)
	}

	fields := p.ControlFields()
	expected := []string{
		"IP Version", "Header Length", "DSCP", "ECN", "Total Length",
		"Identification", "Flags", "Fragment Offset", "TTL", "Protocol",
		"Checksum", "Source IP", "Destination IP",
	}
	if len(fields) != len(expected) {
		t.Fatalf("Expected %d fields, got %d", len(expected), len(fields))
	}
	for i, name := range expected {
		if fields[i].Name != name {
			t.Errorf("Field %d: expected %q, got %q", i, name, fields[i].Name)
		}
	}
}

func TestIPv4FragmentOffsetSpansBytes(t *testing.T) {
	data := make([]byte, 20)
	data[0] = 0x45
	data[6] = 0x1F // low 5 bits of the offset high byte
	data[7] = 0xFF
	p, err := ParseIPv4(data)
	if err != nil {
		t.Fatalf("ParseIPv4 failed: %v", err)
	}
	if p.FragmentOffset() != 0x1FFF {
		t.Errorf("Expected fragment offset 0x1fff, got 0x%04x", p.FragmentOffset())
	}
	// Flag bits must not leak into the offset.
	data[6] = 0xE0
	data[7] = 0x00
	p, _ = ParseIPv4(data)
	if p.FragmentOffset() != 0 {
		t.Errorf("Expected fragment offset 0, got %d", p.FragmentOffset())
	}
}
