// Package decoder implements protocol header decoding.
//
// Decoding is synchronous, pure computation over a borrowed input buffer:
// no decoder retains the buffer past the call, mutates shared state, or
// performs I/O. Concurrent decoding of independent buffers is safe.
package decoder

import "github.com/framewatch/framewatch/internal/core"

// Inspect decodes one captured link-layer frame into frame control
// information. The buffer is treated as an Ethernet frame; when the
// EtherType selects IPv4 or IPv6 the inner header fields are appended to
// the Ethernet-layer fields. A failure here means no frame control
// information is available for the packet — it is never fatal to the
// capture loop.
func Inspect(data []byte) (*core.FrameControlInfo, error) {
	frame, err := ParseEthernet(data)
	if err != nil {
		return nil, err
	}
	return frame.FrameControl(), nil
}
