package capture

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/framewatch/framewatch/internal/analyzer"
	"github.com/framewatch/framewatch/internal/config"
	"github.com/framewatch/framewatch/internal/core"
	"github.com/framewatch/framewatch/internal/core/decoder"
	"github.com/framewatch/framewatch/internal/log"
	"github.com/framewatch/framewatch/internal/metrics"
)

// readBackoff is how long the loop sleeps when the source had nothing.
const readBackoff = 500 * time.Microsecond

// Analyzer submits a packet for security analysis.
type Analyzer interface {
	AnalyzePacket(ctx context.Context, pkt core.RawPacket) (*analyzer.SecurityAnalysis, error)
}

// Sniffer runs the capture loop: read a frame, decode it into frame
// control information, log it, keep the counters fresh. Decode failure
// is never fatal; only source-level errors end the loop.
type Sniffer struct {
	source     Source
	sourceName string
	device     string
	analyzer   Analyzer
	sampleRate int

	logger *logrus.Logger

	count     int
	lastStats Stats
	haveStats bool

	// analysis runs off the read loop, at most one request in flight.
	analyzing atomic.Bool
	wg        sync.WaitGroup
}

// NewSniffer builds a sniffer over an already-constructed source. The
// analyzer may be nil (analysis disabled).
func NewSniffer(src Source, cfg config.CaptureConfig, ai Analyzer, sampleEvery int) *Sniffer {
	return &Sniffer{
		source:     src,
		sourceName: cfg.Source,
		device:     cfg.Device,
		analyzer:   ai,
		sampleRate: sampleEvery,
		logger:     log.GetLogger(),
	}
}

// Run starts the source and processes frames until the context is
// cancelled, the source is exhausted (file replay), or the source fails.
func (s *Sniffer) Run(ctx context.Context) error {
	s.logger.WithField("source", s.sourceName).WithField("device", s.device).
		Info("starting packet capture")

	if err := s.source.Start(ctx); err != nil {
		if isPermissionError(err) {
			s.logger.Error("missing privileges; try: sudo setcap cap_net_raw,cap_net_admin=eip ./framewatch")
		}
		return err
	}
	defer s.source.Stop()
	defer s.wg.Wait()

	metrics.CaptureRunning.Set(1)
	defer metrics.CaptureRunning.Set(0)

	for {
		select {
		case <-ctx.Done():
			s.logger.WithField("packets", s.count).Info("capture stopped")
			return nil
		default:
		}

		s.reportStats()

		data, ci, err := s.source.ReadPacket()
		switch {
		case err == nil:
			s.handlePacket(ctx, core.RawPacket{
				Data:       data,
				Timestamp:  ci.Timestamp,
				CaptureLen: ci.CaptureLength,
				OrigLen:    ci.Length,
			})
		case errors.Is(err, ErrReadTimeout):
			time.Sleep(readBackoff)
		case errors.Is(err, io.EOF):
			s.logger.WithField("packets", s.count).Info("capture completed")
			return nil
		default:
			if ctx.Err() != nil {
				return nil
			}
			s.logger.WithError(err).Error("capture read failed")
			return err
		}
	}
}

// handlePacket decodes and logs one frame. Every outcome lets the loop
// continue.
func (s *Sniffer) handlePacket(ctx context.Context, pkt core.RawPacket) {
	s.count++
	metrics.PacketsTotal.WithLabelValues(s.sourceName, s.device).Inc()

	if s.logger.IsLevelEnabled(logrus.DebugLevel) {
		s.logger.WithFields(logrus.Fields{
			"len": len(pkt.Data),
			"ts":  pkt.Timestamp.Format(time.RFC3339Nano),
		}).Debug("packet received")
	}

	fc, err := decoder.Inspect(pkt.Data)
	if err != nil {
		// No frame control information available for this packet.
		metrics.DecodeErrorsTotal.WithLabelValues(decodeErrorReason(err)).Inc()
		s.logger.WithError(err).Debug("failed to parse frame control")
		return
	}

	metrics.DecodedTotal.WithLabelValues(etherTypeLabel(fc)).Inc()
	s.logger.Infof("Frame Control: %s", fc)

	if s.analyzer != nil && s.sampleRate > 0 && s.count%s.sampleRate == 0 {
		s.maybeAnalyze(ctx, pkt)
	}
}

// maybeAnalyze hands the packet to the AI collaborator on its own
// goroutine so a slow endpoint never stalls the read loop. At most one
// request is in flight; sampled packets arriving during one are skipped.
func (s *Sniffer) maybeAnalyze(ctx context.Context, pkt core.RawPacket) {
	if !s.analyzing.CompareAndSwap(false, true) {
		metrics.AnalyzerRequestsTotal.WithLabelValues("skipped").Inc()
		return
	}

	// The source may reuse the read buffer on the next ReadPacket.
	data := make([]byte, len(pkt.Data))
	copy(data, pkt.Data)
	pkt.Data = data

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.analyzing.Store(false)
		s.analyze(ctx, pkt)
	}()
}

// analyze submits the packet to the AI collaborator; failures are logged
// and swallowed.
func (s *Sniffer) analyze(ctx context.Context, pkt core.RawPacket) {
	analysis, err := s.analyzer.AnalyzePacket(ctx, pkt)
	if err != nil {
		metrics.AnalyzerRequestsTotal.WithLabelValues("error").Inc()
		s.logger.WithError(err).Warn("security analysis failed")
		return
	}

	metrics.AnalyzerRequestsTotal.WithLabelValues("ok").Inc()
	s.logger.WithFields(logrus.Fields{
		"score":           analysis.SecurityScore,
		"threats":         analysis.PotentialThreats,
		"recommendations": analysis.Recommendations,
	}).Info("security analysis")
}

// reportStats logs the source counters whenever they change.
func (s *Sniffer) reportStats() {
	stats, err := s.source.Stats()
	if err != nil {
		s.logger.WithError(err).Warn("unable to retrieve capture stats")
		return
	}

	if s.haveStats && stats == s.lastStats {
		return
	}

	if d := stats.Dropped - s.lastStats.Dropped; d > 0 {
		metrics.DropsTotal.WithLabelValues(s.sourceName, "kernel").Add(float64(d))
	}
	if d := stats.IfDropped - s.lastStats.IfDropped; d > 0 {
		metrics.DropsTotal.WithLabelValues(s.sourceName, "interface").Add(float64(d))
	}
	s.lastStats = stats
	s.haveStats = true

	s.logger.WithFields(logrus.Fields{
		"received":    stats.Received,
		"dropped":     stats.Dropped,
		"kernel_drop": stats.IfDropped,
		"delta":       stats.Received - s.count,
	}).Info("capture stats")
}

// PacketCount reports how many frames the loop has processed.
func (s *Sniffer) PacketCount() int {
	return s.count
}

func decodeErrorReason(err error) string {
	switch {
	case errors.Is(err, core.ErrFrameTooShort):
		return "too_short"
	case errors.Is(err, core.ErrInvalidVersion):
		return "invalid_version"
	case errors.Is(err, core.ErrInvalidHeaderLength):
		return "invalid_header_length"
	default:
		return "other"
	}
}

// etherTypeLabel derives the metric label from the decoded EtherType.
// Only names from the decoder's description table become label values,
// keeping the series count bounded against arbitrary frames.
func etherTypeLabel(fc *core.FrameControlInfo) string {
	for _, f := range fc.ControlFields {
		if f.Name != "EtherType" {
			continue
		}
		if decoder.IsKnownEtherTypeName(f.Description) {
			return f.Description
		}
		return "other"
	}
	return "other"
}

func isPermissionError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "Operation not permitted")
}
