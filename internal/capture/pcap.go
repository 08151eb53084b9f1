package capture

import (
	"context"
	"fmt"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/pcap"

	"github.com/framewatch/framewatch/internal/config"
	"github.com/framewatch/framewatch/internal/core"
)

// PcapName is the registry name of the libpcap live source.
const PcapName = "pcap"

func init() {
	Register(PcapName, func(cfg config.CaptureConfig) (Source, error) {
		return NewPcapSource(cfg), nil
	})
}

// PcapSource captures live traffic through libpcap.
type PcapSource struct {
	device    string
	snapLen   int
	promisc   bool
	timeout   time.Duration
	bpfFilter string

	handle *pcap.Handle
}

// NewPcapSource builds a libpcap source from config; the handle is not
// opened until Start.
func NewPcapSource(cfg config.CaptureConfig) *PcapSource {
	return &PcapSource{
		device:    cfg.Device,
		snapLen:   cfg.SnapLen,
		promisc:   cfg.Promisc,
		timeout:   time.Duration(cfg.TimeoutMs) * time.Millisecond,
		bpfFilter: cfg.BPFFilter,
	}
}

// Start opens the device. The interface must exist; permission errors
// surface here.
func (s *PcapSource) Start(ctx context.Context) error {
	inactive, err := pcap.NewInactiveHandle(s.device)
	if err != nil {
		return fmt.Errorf("failed to create handle for %s: %w", s.device, err)
	}
	defer inactive.CleanUp()

	if err := inactive.SetSnapLen(s.snapLen); err != nil {
		return err
	}
	if err := inactive.SetPromisc(s.promisc); err != nil {
		return err
	}
	if err := inactive.SetTimeout(s.timeout); err != nil {
		return err
	}
	if err := inactive.SetImmediateMode(true); err != nil {
		return err
	}

	handle, err := inactive.Activate()
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", s.device, err)
	}

	if s.bpfFilter != "" {
		if err := handle.SetBPFFilter(s.bpfFilter); err != nil {
			handle.Close()
			return fmt.Errorf("invalid bpf filter %q: %w", s.bpfFilter, err)
		}
	}

	s.handle = handle
	return nil
}

func (s *PcapSource) ReadPacket() ([]byte, gopacket.CaptureInfo, error) {
	if s.handle == nil {
		return nil, gopacket.CaptureInfo{}, core.ErrSourceNotStarted
	}

	data, ci, err := s.handle.ReadPacketData()
	if err == pcap.NextErrorTimeoutExpired {
		return nil, ci, ErrReadTimeout
	}
	return data, ci, err
}

func (s *PcapSource) Stats() (Stats, error) {
	if s.handle == nil {
		return Stats{}, core.ErrSourceNotStarted
	}
	st, err := s.handle.Stats()
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		Received:  st.PacketsReceived,
		Dropped:   st.PacketsDropped,
		IfDropped: st.PacketsIfDropped,
	}, nil
}

func (s *PcapSource) Stop() error {
	if s.handle != nil {
		s.handle.Close()
		s.handle = nil
	}
	return nil
}

// Devices lists capture-capable interfaces with their addresses.
func Devices() ([]pcap.Interface, error) {
	return pcap.FindAllDevs()
}
