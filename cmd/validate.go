package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/framewatch/framewatch/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Load a configuration file, apply defaults, and print the normalized
result as YAML. Useful for pre-checking configuration before deploying.

Examples:
  framewatch validate -c config.yml`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "INVALID: %v\n", err)
			os.Exit(1)
		}

		out, err := yaml.Marshal(cfg)
		if err != nil {
			exitWithError("failed to render config", err)
		}
		fmt.Println("VALID")
		fmt.Print(string(out))
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
