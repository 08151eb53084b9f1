package capture

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/afpacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
	"github.com/mitchellh/mapstructure"
	"golang.org/x/net/bpf"

	"github.com/framewatch/framewatch/internal/config"
	"github.com/framewatch/framewatch/internal/core"
)

// AfpacketName is the registry name of the AF_PACKET TPacketV3 source.
const AfpacketName = "afpacket"

// afpacketOptions are the source-specific keys under capture.options.
type afpacketOptions struct {
	BufferSizeMB int    `mapstructure:"buffer_size_mb"`
	FanoutID     uint16 `mapstructure:"fanout_id"`
}

func init() {
	Register(AfpacketName, func(cfg config.CaptureConfig) (Source, error) {
		opts := afpacketOptions{BufferSizeMB: 8}
		if cfg.Options != nil {
			if err := mapstructure.Decode(cfg.Options, &opts); err != nil {
				return nil, fmt.Errorf("invalid afpacket options: %w", err)
			}
		}
		return NewAfpacketSource(cfg, opts)
	})
}

// AfpacketSource captures through an AF_PACKET v3 ring buffer.
type AfpacketSource struct {
	device      string
	snapLen     int
	pollTimeout time.Duration
	bpfFilter   string
	fanoutID    uint16

	frameSize int
	blockSize int
	numBlocks int

	handle *afpacket.TPacket
}

// NewAfpacketSource sizes the ring from the memory budget and builds the
// source; the ring is not mapped until Start.
func NewAfpacketSource(cfg config.CaptureConfig, opts afpacketOptions) (*AfpacketSource, error) {
	frameSize, blockSize, numBlocks, err := ringSizes(opts.BufferSizeMB, cfg.SnapLen, os.Getpagesize())
	if err != nil {
		return nil, err
	}
	return &AfpacketSource{
		device:      cfg.Device,
		snapLen:     cfg.SnapLen,
		pollTimeout: time.Duration(cfg.TimeoutMs) * time.Millisecond,
		bpfFilter:   cfg.BPFFilter,
		fanoutID:    opts.FanoutID,
		frameSize:   frameSize,
		blockSize:   blockSize,
		numBlocks:   numBlocks,
	}, nil
}

func (s *AfpacketSource) Start(ctx context.Context) error {
	tp, err := afpacket.NewTPacket(
		afpacket.OptInterface(s.device),
		afpacket.OptFrameSize(s.frameSize),
		afpacket.OptBlockSize(s.blockSize),
		afpacket.OptNumBlocks(s.numBlocks),
		afpacket.OptPollTimeout(s.pollTimeout),
		afpacket.SocketRaw,
		afpacket.TPacketVersion3,
	)
	if err != nil {
		return fmt.Errorf("failed to open af_packet ring on %s: %w", s.device, err)
	}

	if s.fanoutID > 0 {
		if err := tp.SetFanout(afpacket.FanoutHashWithDefrag, s.fanoutID); err != nil {
			tp.Close()
			return err
		}
	}

	if s.bpfFilter != "" {
		if err := s.setBPF(tp); err != nil {
			tp.Close()
			return err
		}
	}

	s.handle = tp
	return nil
}

// setBPF compiles the pcap filter expression and installs it as raw
// instructions on the ring socket.
func (s *AfpacketSource) setBPF(tp *afpacket.TPacket) error {
	pcapBPF, err := pcap.CompileBPFFilter(layers.LinkTypeEthernet, s.snapLen, s.bpfFilter)
	if err != nil {
		return fmt.Errorf("invalid bpf filter %q: %w", s.bpfFilter, err)
	}
	rawBPF := make([]bpf.RawInstruction, len(pcapBPF))
	for i, inst := range pcapBPF {
		rawBPF[i] = bpf.RawInstruction{
			Op: inst.Code,
			Jt: inst.Jt,
			Jf: inst.Jf,
			K:  inst.K,
		}
	}
	return tp.SetBPF(rawBPF)
}

func (s *AfpacketSource) ReadPacket() ([]byte, gopacket.CaptureInfo, error) {
	if s.handle == nil {
		return nil, gopacket.CaptureInfo{}, core.ErrSourceNotStarted
	}

	data, ci, err := s.handle.ReadPacketData()
	if err == afpacket.ErrTimeout {
		return nil, ci, ErrReadTimeout
	}
	return data, ci, err
}

func (s *AfpacketSource) Stats() (Stats, error) {
	if s.handle == nil {
		return Stats{}, core.ErrSourceNotStarted
	}
	_, v3, err := s.handle.SocketStats()
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		Received: int(v3.Packets()),
		Dropped:  int(v3.Drops()),
	}, nil
}

func (s *AfpacketSource) Stop() error {
	if s.handle != nil {
		s.handle.Close()
		s.handle = nil
	}
	return nil
}

// ringSizes computes AF_PACKET ring dimensions honoring PACKET_MMAP
// alignment: frames aligned to TPACKET_ALIGNMENT, blocks a multiple of
// both the page size and the frame size, total memory near the budget.
func ringSizes(bufferSizeMB, snapLen, pageSize int) (frameSize, blockSize, numBlocks int, err error) {
	const tpacketAlignment = 16
	const tpacketHdrLen = 52

	if bufferSizeMB <= 0 {
		return 0, 0, 0, fmt.Errorf("buffer_size_mb must be positive, got %d", bufferSizeMB)
	}
	if snapLen <= 0 {
		return 0, 0, 0, fmt.Errorf("snap_len must be positive, got %d", snapLen)
	}

	targetBytes := bufferSizeMB * 1024 * 1024

	rawFrameSize := tpacketHdrLen + snapLen
	frameSize = (rawFrameSize + tpacketAlignment - 1) / tpacketAlignment * tpacketAlignment

	// Block size must be a multiple of both the page size and the frame
	// size; grow by whole frames until page alignment is reached.
	framesPerBlock := 1
	for framesPerBlock*frameSize%pageSize != 0 {
		framesPerBlock++
	}
	blockSize = framesPerBlock * frameSize

	numBlocks = targetBytes / blockSize
	if numBlocks < 1 {
		numBlocks = 1
	}
	return frameSize, blockSize, numBlocks, nil
}
