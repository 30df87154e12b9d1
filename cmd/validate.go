package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cradle-dev/cradle/pkg/render"
)

var validateFormat string

type validationSummary struct {
	Valid     bool     `json:"valid"`
	Schema    string   `json:"schema"`
	Project   string   `json:"project"`
	Workspace string   `json:"workspace"`
	Image     string   `json:"image"`
	Warnings  []string `json:"warnings,omitempty"`
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Parse and validate the configuration document",
	Long: `validate parses the document, checks every invariant, and renders all
artifacts in memory to report template tokens that would survive
substitution. Nothing is written to disk.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadDocument()
		if err != nil {
			return err
		}

		summary := validationSummary{
			Valid:     true,
			Schema:    string(doc.SchemaVersion()),
			Project:   doc.Name(),
			Workspace: doc.WorkspaceDir(),
			Image:     doc.Image(),
		}

		gen, _, err := newGenerator(doc)
		if err != nil {
			return err
		}
		artifacts, err := gen.RenderArtifacts()
		if err != nil {
			return err
		}
		for _, a := range artifacts {
			for _, token := range render.UnresolvedTokens(a.Content) {
				summary.Warnings = append(summary.Warnings,
					fmt.Sprintf("%s: unresolved token {{%s}}", a.Rel, token))
			}
		}

		switch validateFormat {
		case "json":
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(summary)
		case "text":
			fmt.Fprintf(cmd.OutOrStdout(), "%s is valid (schema %s)\n", flagConfig, summary.Schema)
			fmt.Fprintf(cmd.OutOrStdout(), "  project:   %s\n", summary.Project)
			fmt.Fprintf(cmd.OutOrStdout(), "  workspace: %s\n", summary.Workspace)
			fmt.Fprintf(cmd.OutOrStdout(), "  image:     %s\n", summary.Image)
			if rt, ok := doc.Runtime(); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "  runtime:   %s %s (%s)\n", rt.Language, rt.Version, rt.PackageManager)
			}
			if n := len(doc.Plugins()); n > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "  plugins:   %d from %d marketplace(s)\n", n, len(doc.Marketplaces()))
			}
			for _, w := range summary.Warnings {
				fmt.Fprintf(cmd.OutOrStdout(), "  warning:   %s\n", w)
			}
			return nil
		default:
			return fmt.Errorf("unknown format %q (want text or json)", validateFormat)
		}
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateFormat, "format", "text", "output format (text, json)")
	rootCmd.AddCommand(validateCmd)
}
