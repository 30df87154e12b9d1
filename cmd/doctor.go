package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cradle-dev/cradle/internal/doctor"
)

var doctorJSON bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the environment cradle depends on",
	RunE: func(cmd *cobra.Command, args []string) error {
		report := doctor.Run(doctor.DefaultProbes(flagConfig))

		if doctorJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}
		} else {
			for _, r := range report.Results {
				marker := "ok "
				switch r.Health {
				case doctor.HealthWarn:
					marker = "warn"
				case doctor.HealthError:
					marker = "FAIL"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] %-14s %s\n", marker, r.Name, r.Detail)
			}
		}

		if !report.Healthy() {
			return fmt.Errorf("environment checks failed")
		}
		return nil
	},
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json-report", false, "emit the report as JSON")
	rootCmd.AddCommand(doctorCmd)
}
