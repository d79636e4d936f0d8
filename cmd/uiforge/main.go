package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var noColor bool

func main() {
	if err := newRootCmd().Execute(); err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "uiforge",
		Short:         "UI component retrieval that learns from feedback",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "config file path (default $XDG_CONFIG_HOME/uiforge/config.yaml)")
	root.PersistentFlags().String("log-level", "", "log level override: debug, info, warn, error")
	root.PersistentFlags().BoolVar(&noColor, "no-color", os.Getenv("NO_COLOR") != "", "disable colored output")

	root.AddCommand(
		newServeCmd(),
		newIngestCmd(),
		newSearchCmd(),
		newFeedbackCmd(),
		newStatsCmd(),
		newPromoteCmd(),
		newConfigCmd(),
	)
	root.SetVersionTemplate(fmt.Sprintf("uiforge version %s\n", version))
	return root
}
