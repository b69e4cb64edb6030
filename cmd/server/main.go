package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "tenancy-server",
		Short:         "Tenancy and occupancy management service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ./configs/config.yaml)")

	rootCmd.AddCommand(
		serveCmd(&configPath),
		migrateCmd(&configPath),
		createCaretakerCmd(&configPath),
		seedCmd(&configPath),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
