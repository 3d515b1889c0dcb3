package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "options-monitor",
	Short: "A CLI for managing the options monitor services",
	Long:  `Options monitor watches short option positions, evaluates trigger rules against live quotes and raises roll alerts.`,
}

func main() {

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your CLI '%s'", err)
		os.Exit(1)
	}
}
