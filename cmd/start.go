package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/framewatch/framewatch/internal/analyzer"
	"github.com/framewatch/framewatch/internal/capture"
	"github.com/framewatch/framewatch/internal/config"
	"github.com/framewatch/framewatch/internal/log"
	"github.com/framewatch/framewatch/internal/metrics"
)

var startDevice string

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start live capture and frame inspection",
	Long: `Start capturing frames from a network interface and log the decoded
frame control information for each one.

Examples:
  framewatch start                          # defaults: pcap source on lo
  framewatch start -c config.yml            # full configuration
  framewatch start -i eth0                  # override the capture interface`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(configFile)
		if err != nil {
			exitWithError("failed to load config", err)
		}
		if startDevice != "" {
			cfg.Capture.Device = startDevice
		}
		runCapture(cfg)
	},
}

func init() {
	startCmd.Flags().StringVarP(&startDevice, "interface", "i", "",
		"capture interface (overrides capture.device)")
	rootCmd.AddCommand(startCmd)
}

// runCapture wires logging, metrics, the capture source, and the
// optional analyzer, then runs the sniffer until interrupted.
func runCapture(cfg *config.Config) {
	if err := log.Init(cfg.Log); err != nil {
		exitWithError("failed to init logging", err)
	}
	logger := log.GetLogger()

	if cfg.Metrics.Enabled {
		srv := metrics.NewServer(cfg.Metrics.Listen, cfg.Metrics.Path)
		if err := srv.Start(); err != nil {
			exitWithError("failed to start metrics server", err)
		}
		defer srv.Stop(context.Background())
	}

	src, err := capture.NewSource(cfg.Capture)
	if err != nil {
		exitWithError("failed to create capture source", err)
	}

	var ai capture.Analyzer
	if cfg.Analyzer.Enabled {
		ai = analyzer.NewClient(cfg.Analyzer)
		logger.WithField("endpoint", cfg.Analyzer.Endpoint).Info("security analyzer enabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sniffer := capture.NewSniffer(src, cfg.Capture, ai, cfg.Analyzer.SampleEvery)
	if err := sniffer.Run(ctx); err != nil {
		exitWithError("capture failed", err)
	}
}
