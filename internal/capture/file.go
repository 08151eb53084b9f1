package capture

import (
	"context"
	"fmt"
	"io"

	"github.com/google/gopacket"
	"github.com/google/gopacket/pcap"
	"github.com/mitchellh/mapstructure"

	"github.com/framewatch/framewatch/internal/config"
	"github.com/framewatch/framewatch/internal/core"
)

// FileName is the registry name of the pcap file replay source.
const FileName = "file"

// fileOptions are the source-specific keys under capture.options.
type fileOptions struct {
	FilePath string `mapstructure:"file_path"`
}

func init() {
	Register(FileName, func(cfg config.CaptureConfig) (Source, error) {
		var opts fileOptions
		if cfg.Options != nil {
			if err := mapstructure.Decode(cfg.Options, &opts); err != nil {
				return nil, fmt.Errorf("invalid file options: %w", err)
			}
		}
		if opts.FilePath == "" {
			return nil, fmt.Errorf("file source requires options.file_path")
		}
		return &FileSource{path: opts.FilePath}, nil
	})
}

// FileSource replays frames from a pcap capture file. EOF ends the
// capture loop cleanly.
type FileSource struct {
	path   string
	handle *pcap.Handle
	read   int
}

func (s *FileSource) Start(ctx context.Context) error {
	handle, err := pcap.OpenOffline(s.path)
	if err != nil {
		return fmt.Errorf("failed to open pcap file %s: %w", s.path, err)
	}
	s.handle = handle
	return nil
}

func (s *FileSource) ReadPacket() ([]byte, gopacket.CaptureInfo, error) {
	if s.handle == nil {
		return nil, gopacket.CaptureInfo{}, core.ErrSourceNotStarted
	}

	data, ci, err := s.handle.ReadPacketData()
	if err != nil {
		if err == io.EOF {
			return nil, ci, io.EOF
		}
		return nil, ci, fmt.Errorf("failed to read packet: %w", err)
	}
	s.read++
	return data, ci, nil
}

// Stats for a file replay report only the frames read; nothing drops.
func (s *FileSource) Stats() (Stats, error) {
	return Stats{Received: s.read}, nil
}

func (s *FileSource) Stop() error {
	if s.handle != nil {
		s.handle.Close()
		s.handle = nil
	}
	return nil
}
