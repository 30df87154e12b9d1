package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cradle-dev/cradle/internal/reconcile"
	"github.com/cradle-dev/cradle/pkg/safeio"
)

var (
	diffFormat string
	diffFile   string
	diffOutput string
)

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Show drift between the configuration and the generated tree",
	Long: `diff renders every artifact in memory and compares it line by line against
what is on disk. Nothing is written. The comparison is positional: an inserted
line reports every following line as changed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outputDir, err := safeio.CleanUserPath(diffOutput)
		if err != nil {
			return fmt.Errorf("--output: %w", err)
		}
		doc, err := loadDocument()
		if err != nil {
			return err
		}
		gen, _, err := newGenerator(doc)
		if err != nil {
			return err
		}
		artifacts, err := gen.RenderArtifacts()
		if err != nil {
			return err
		}

		var diffs []reconcile.FileDiff
		for _, a := range artifacts {
			if diffFile != "" && filepath.ToSlash(a.Rel) != filepath.ToSlash(diffFile) {
				continue
			}
			d, err := reconcile.DiffFile(filepath.Join(outputDir, a.Rel), a.Content)
			if err != nil {
				return err
			}
			d.Path = filepath.ToSlash(a.Rel)
			diffs = append(diffs, d)
		}
		if diffFile != "" && len(diffs) == 0 {
			return fmt.Errorf("no artifact named %s", diffFile)
		}

		switch diffFormat {
		case "json":
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(diffs)
		case "text":
			printTextDiffs(cmd, diffs)
			return nil
		default:
			return fmt.Errorf("unknown format %q (want text or json)", diffFormat)
		}
	},
}

func printTextDiffs(cmd *cobra.Command, diffs []reconcile.FileDiff) {
	clean := true
	for _, d := range diffs {
		if d.Status == reconcile.StatusUnchanged {
			continue
		}
		clean = false
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s, +%d -%d)\n", d.Path, d.Status, d.Added(), d.Removed())
		for _, l := range d.Lines {
			switch l.Kind {
			case reconcile.LineAdded:
				fmt.Fprintf(cmd.OutOrStdout(), "  + %s\n", l.Content)
			case reconcile.LineRemoved:
				fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", l.Content)
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "    %s\n", l.Content)
			}
		}
	}
	if clean {
		fmt.Fprintln(cmd.OutOrStdout(), "No drift: generated tree matches the configuration")
	}
}

func init() {
	diffCmd.Flags().StringVar(&diffFormat, "format", "text", "output format (text, json)")
	diffCmd.Flags().StringVar(&diffFile, "file", "", "limit the diff to one artifact path")
	diffCmd.Flags().StringVarP(&diffOutput, "output", "o", ".", "directory holding the generated tree")
	rootCmd.AddCommand(diffCmd)
}
