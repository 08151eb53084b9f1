// Package capture implements capture sources and the capture loop.
package capture

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/gopacket"

	"github.com/framewatch/framewatch/internal/config"
	"github.com/framewatch/framewatch/internal/core"
)

// Stats are the driver/kernel-side capture counters, cumulative since
// the source was started.
type Stats struct {
	Received  int
	Dropped   int // dropped by the kernel (buffer full)
	IfDropped int // dropped by the interface/driver
}

// Source reads raw link-layer frames from somewhere: a live interface,
// an AF_PACKET ring, or a pcap file.
type Source interface {
	// Start opens the underlying handle. The context bounds the open,
	// not the subsequent reads.
	Start(ctx context.Context) error
	// ReadPacket returns the next frame. Timeout-ish conditions are
	// reported as ErrReadTimeout so the loop can back off; io.EOF ends
	// a file replay.
	ReadPacket() (data []byte, ci gopacket.CaptureInfo, err error)
	// Stats reports cumulative capture counters.
	Stats() (Stats, error)
	Stop() error
}

// ErrReadTimeout signals that no packet was available within the poll
// timeout; the caller should back off briefly and retry.
var ErrReadTimeout = errors.New("framewatch: capture read timeout")

type factoryFn func(cfg config.CaptureConfig) (Source, error)

var registry = make(map[string]factoryFn)

// Register adds a named source constructor. Called from init() in each
// source file.
func Register(name string, fn factoryFn) {
	registry[name] = fn
}

// NewSource builds the source selected by cfg.Source.
func NewSource(cfg config.CaptureConfig) (Source, error) {
	fn, ok := registry[cfg.Source]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", core.ErrSourceNotFound, cfg.Source, Names())
	}
	return fn(cfg)
}

// Names lists registered source names, sorted for stable output.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
