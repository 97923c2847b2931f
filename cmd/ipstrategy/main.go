package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	var configPath string

	root := &cobra.Command{
		Use:           "ipstrategy",
		Short:         "ipstrategy — cached intellectual property strategy gateway",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "ipstrategy.yaml", "path to config file")

	root.AddCommand(
		newServeCmd(&configPath),
		newGenerateCmd(&configPath),
		newCacheCmd(&configPath),
		newTypesCmd(),
		newMCPCmd(&configPath),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
