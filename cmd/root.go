// Package cmd implements CLI commands using cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "framewatch",
	Short: "framewatch - edge network frame inspection agent",
	Long: `framewatch captures raw link-layer frames from a network interface,
decodes their Ethernet / IPv4 / IPv6 headers into structured frame control
information, and logs the decomposition. It can also submit sampled packets
to a remote AI completion API for a security assessment.

Capture sources:
  pcap      libpcap live capture (default)
  afpacket  AF_PACKET v3 ring buffer (Linux)
  file      pcap file replay`,
	Version: "0.1.0",
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		"config file path")
}

// exitWithError prints an error message and exits with code 1.
func exitWithError(msg string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
	}
	os.Exit(1)
}
