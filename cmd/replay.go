package cmd

import (
	"github.com/spf13/cobra"

	"github.com/framewatch/framewatch/internal/capture"
	"github.com/framewatch/framewatch/internal/config"
)

var replayFile string

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a pcap file through the frame inspector",
	Long: `Read frames from a pcap capture file instead of a live interface and
log the decoded frame control information for each one.

Examples:
  framewatch replay -f capture.pcap
  framewatch replay -f capture.pcap -c config.yml`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(configFile)
		if err != nil {
			exitWithError("failed to load config", err)
		}

		cfg.Capture.Source = capture.FileName
		if cfg.Capture.Options == nil {
			cfg.Capture.Options = map[string]interface{}{}
		}
		cfg.Capture.Options["file_path"] = replayFile

		runCapture(cfg)
	},
}

func init() {
	replayCmd.Flags().StringVarP(&replayFile, "file", "f", "", "pcap file to replay (required)")
	replayCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(replayCmd)
}
