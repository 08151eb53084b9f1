// Package core defines core data structures with zero external dependencies.
package core

import "time"

// RawPacket is one captured link-layer frame, zero-copy reference to the
// capture buffer. Decoders may borrow Data only for the duration of a
// decode call; anything needed longer is copied out.
type RawPacket struct {
	Data       []byte    // Raw frame data, zero-copy slice
	Timestamp  time.Time // Capture timestamp (kernel timestamp preferred)
	CaptureLen int       // Actual captured length
	OrigLen    int       // Original frame length
}
