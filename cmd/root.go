// Package cmd wires the cradle CLI: configuration parsing, artifact
// generation, drift reporting, and environment checks.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/cradle-dev/cradle/internal/generator"
	"github.com/cradle-dev/cradle/pkg/config"
	"github.com/cradle-dev/cradle/pkg/exitcode"
	"github.com/cradle-dev/cradle/pkg/logger"
)

// DefaultConfigFile is the document the commands operate on unless --config
// points elsewhere.
const DefaultConfigFile = "cradle.yaml"

var (
	flagConfig   string
	flagLogLevel string
	flagJSON     bool
	flagNoColor  bool
)

var rootCmd = &cobra.Command{
	Use:   "cradle",
	Short: "Scaffold reproducible devcontainer project environments",
	Long: `cradle reads a cradle.yaml document and generates a complete project
environment: a devcontainer configuration, a workspace skeleton, and the git
repositories that track them. Generation is deterministic, so sync, diff, and
plan always agree about what the tree should contain.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeLogger()
	},
}

func init() {
	// Accept snake_case flag spellings from scripts and normalize them.
	rootCmd.PersistentFlags().SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", DefaultConfigFile, "path to the configuration document")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "log in JSON format")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colored log output")
}

// initializeLogger merges tool settings with command-line flags. Flags win.
func initializeLogger() error {
	level := ""
	useColor := !flagNoColor
	useJSON := flagJSON

	if settings, err := config.LoadSettings(); err == nil {
		level = settings.Output.LogLevel
		if !flagJSON {
			useJSON = settings.Output.JSON
		}
		if !flagNoColor {
			useColor = settings.Output.Color
		}
	}
	if flagLogLevel != "" {
		level = flagLogLevel
	}

	return logger.Initialize(logger.Config{
		Level:     logger.ParseLevel(level),
		UseColor:  useColor,
		JSON:      useJSON,
		Component: "cradle",
	})
}

// Execute runs the CLI and maps errors to process exit codes.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error(err.Error())
		os.Exit(exitCodeFor(err))
	}
}

func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, config.ErrValidation):
		return exitcode.ValidationError
	case errors.Is(err, config.ErrSchema):
		return exitcode.ConfigError
	case errors.Is(err, os.ErrNotExist), errors.Is(err, os.ErrPermission):
		return exitcode.FileSystemError
	default:
		return exitcode.GeneralError
	}
}

// newGenerator builds a generator for doc, honoring tool settings. When
// generator.install_root (or CRADLE_GENERATOR_INSTALL_ROOT) is set it pins
// the installation root instead of the upward search.
func newGenerator(doc config.Document) (*generator.Generator, *config.Settings, error) {
	settings, err := config.LoadSettings()
	if err != nil {
		return nil, nil, err
	}
	var opts []generator.Option
	if settings.Generator.InstallRoot != "" {
		opts = append(opts, generator.WithInstallRoot(settings.Generator.InstallRoot))
	}
	gen, err := generator.New(doc, opts...)
	if err != nil {
		return nil, nil, err
	}
	return gen, settings, nil
}

// loadDocument parses the configured document, translating a missing file
// into a friendly error.
func loadDocument() (config.Document, error) {
	if _, err := os.Stat(flagConfig); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration %s not found: %w (run cradle init to create one)", flagConfig, os.ErrNotExist)
	}
	return config.ParseFile(flagConfig)
}
