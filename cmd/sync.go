package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cradle-dev/cradle/pkg/logger"
	"github.com/cradle-dev/cradle/pkg/safeio"
)

var (
	syncDryRun bool
	syncForce  bool
	syncOutput string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Generate or update the project environment from the configuration",
	Long: `sync renders every artifact the configuration describes and writes it to
disk, copies the feature trees, and initializes the workspace and
devcontainer git repositories when missing.

With --dry-run nothing is written; sync prints what it would do. Orphaned
files under .devcontainer are reported and only deleted with --force. The
generator.keep_orphans setting silences orphan handling entirely.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outputDir, err := safeio.CleanUserPath(syncOutput)
		if err != nil {
			return fmt.Errorf("--output: %w", err)
		}
		doc, err := loadDocument()
		if err != nil {
			return err
		}
		gen, settings, err := newGenerator(doc)
		if err != nil {
			return err
		}

		if syncDryRun {
			plan, err := gen.Plan(outputDir)
			if err != nil {
				return err
			}
			printList(cmd, "Would create", plan.WouldCreate)
			printList(cmd, "Would modify", plan.WouldModify)
			printList(cmd, "Unchanged", plan.Unchanged)
			if !settings.Generator.KeepOrphans {
				printList(cmd, "Orphaned", plan.Orphaned)
			}
			return nil
		}

		report, err := gen.Apply(outputDir)
		if err != nil {
			return err
		}
		printList(cmd, "Created", report.Created)
		printList(cmd, "Modified", report.Modified)

		if len(report.Orphaned) > 0 && !settings.Generator.KeepOrphans {
			if syncForce {
				if err := gen.PruneOrphans(outputDir, report.Orphaned); err != nil {
					return err
				}
				printList(cmd, "Removed orphans", report.Orphaned)
			} else {
				printList(cmd, "Orphaned (kept, use --force to remove)", report.Orphaned)
			}
		}

		logger.Info("sync complete",
			logger.Int("created", len(report.Created)),
			logger.Int("modified", len(report.Modified)),
			logger.Int("orphaned", len(report.Orphaned)))
		return nil
	},
}

func printList(cmd *cobra.Command, header string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s:\n", header)
	for _, it := range items {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", it)
	}
}

func init() {
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "report planned changes without writing")
	syncCmd.Flags().BoolVar(&syncForce, "force", false, "delete orphaned files under .devcontainer")
	syncCmd.Flags().StringVarP(&syncOutput, "output", "o", ".", "output directory")
	rootCmd.AddCommand(syncCmd)
}
