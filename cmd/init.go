package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cradle-dev/cradle/pkg/config"
	"github.com/cradle-dev/cradle/pkg/logger"
)

var initForce bool

// starterDocument is a commented starting point, not a dump of every option.
const starterDocument = `version: "0.1"
name: %s

workspace:
  dir: ./project

docker:
  image: mcr.microsoft.com/devcontainers/base:ubuntu
  # build_args:
  #   - CACHE_BUST=1

assistant:
  version: latest
  provider: anthropic

# runtime:
#   language: python
#   version: "3.12"
#   package_manager: pip

# proxy:
#   http: http://proxy.example:3128
#   https: http://proxy.example:3128

# marketplaces:
#   internal:
#     url: https://plugins.example/registry

# plugins:
#   - marketplace: internal
#     name: linter

git:
  generated: ignored
`

var initCmd = &cobra.Command{
	Use:   "init [name]",
	Short: "Create a starter configuration document",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := "my-project"
		if len(args) == 1 {
			name = args[0]
		} else if wd, err := os.Getwd(); err == nil {
			name = filepath.Base(wd)
		}

		if _, err := os.Stat(flagConfig); err == nil && !initForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", flagConfig)
		}

		content := fmt.Sprintf(starterDocument, name)
		// Round-trip through the parser so init can never write a
		// document that validate would reject.
		if _, err := config.Parse([]byte(content)); err != nil {
			return fmt.Errorf("starter document is invalid: %w", err)
		}
		if err := os.WriteFile(flagConfig, []byte(content), 0o644); err != nil { // #nosec G306 -- user-facing config file
			return fmt.Errorf("write %s: %w", flagConfig, err)
		}

		logger.Info("created configuration", logger.String("path", flagConfig), logger.String("name", name))
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s for project %q\n", flagConfig, name)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing configuration")
	rootCmd.AddCommand(initCmd)
}
