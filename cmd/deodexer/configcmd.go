package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odexlab/deodexer/internal/cli/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manages the deodexer configuration file.",
}

// configInitCmd writes a starter YAML configuration with the built-in
// defaults. It refuses to overwrite an existing file.
var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Writes a starter configuration file with the default settings.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultConfigName + ".yaml"
		if len(args) == 1 {
			path = args[0]
		}
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		fmt.Printf("Wrote default configuration to %s\n", path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
