package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/framewatch/framewatch/internal/capture"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List capture-capable network interfaces",
	Run: func(cmd *cobra.Command, args []string) {
		devs, err := capture.Devices()
		if err != nil {
			exitWithError("failed to list devices", err)
		}

		for _, d := range devs {
			fmt.Printf("%s", d.Name)
			if d.Description != "" {
				fmt.Printf(" (%s)", d.Description)
			}
			fmt.Println()
			for _, addr := range d.Addresses {
				fmt.Printf("  %s\n", addr.IP)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}
