// Package main is the entry point for the framewatch frame inspection agent.
package main

import (
	"fmt"
	"os"

	"github.com/framewatch/framewatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
