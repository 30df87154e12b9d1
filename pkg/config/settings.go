package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Settings holds tool-level preferences for the cradle CLI. These are distinct
// from the project document (cradle.yaml) parsed by Parse: settings tune how
// the tool behaves, the document describes what to generate.
type Settings struct {
	Output    OutputSettings    `mapstructure:"output"`
	Generator GeneratorSettings `mapstructure:"generator"`
}

// OutputSettings controls logging and terminal output.
type OutputSettings struct {
	LogLevel string `mapstructure:"log_level"`
	JSON     bool   `mapstructure:"json"`
	Color    bool   `mapstructure:"color"`
}

// GeneratorSettings tunes artifact generation.
type GeneratorSettings struct {
	// InstallRoot overrides the upward search for the tool installation.
	InstallRoot string `mapstructure:"install_root"`
	// KeepOrphans silences orphan reporting and pruning during sync.
	KeepOrphans bool `mapstructure:"keep_orphans"`
}

var defaultSettings = Settings{
	Output: OutputSettings{
		LogLevel: "info",
		JSON:     false,
		Color:    true,
	},
	Generator: GeneratorSettings{
		InstallRoot: "",
		KeepOrphans: false,
	},
}

// LoadSettings loads tool settings from ~/.cradle/settings.yaml, the current
// directory, and CRADLE_* environment variables, in ascending precedence.
func LoadSettings() (*Settings, error) {
	v := viper.New()

	v.SetDefault("output.log_level", defaultSettings.Output.LogLevel)
	v.SetDefault("output.json", defaultSettings.Output.JSON)
	v.SetDefault("output.color", defaultSettings.Output.Color)
	v.SetDefault("generator.install_root", defaultSettings.Generator.InstallRoot)
	v.SetDefault("generator.keep_orphans", defaultSettings.Generator.KeepOrphans)

	// Named "settings" so the search never collides with the project
	// document, which is also a YAML file in the current directory.
	v.SetConfigName("settings")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := GetCradleHome(); err == nil {
		v.AddConfigPath(home)
	}

	v.SetEnvPrefix("CRADLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Settings file is optional; defaults apply when absent.
	_ = v.ReadInConfig()

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}
	return &s, nil
}

// GetCradleHome returns the cradle home directory, honoring CRADLE_HOME and
// falling back to ~/.cradle.
func GetCradleHome() (string, error) {
	if custom := os.Getenv("CRADLE_HOME"); custom != "" {
		return custom, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determine home directory: %w", err)
	}
	return filepath.Join(home, ".cradle"), nil
}

// EnsureCradleHome creates the cradle home directory if missing and returns
// its path.
func EnsureCradleHome() (string, error) {
	dir, err := GetCradleHome()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create cradle home: %w", err)
	}
	return dir, nil
}
