package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cradle-dev/cradle/pkg/buildinfo"
	"github.com/cradle-dev/cradle/pkg/config"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and supported schema revisions",
	RunE: func(cmd *cobra.Command, args []string) error {
		version := buildinfo.BinaryVersion
		if version == "dev" {
			if mv := buildinfo.ModuleVersion(); mv != "" {
				version = mv
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "cradle %s\n", version)
		for _, v := range config.SupportedVersions() {
			fmt.Fprintf(cmd.OutOrStdout(), "  schema %s\n", v)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
