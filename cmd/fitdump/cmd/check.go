package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/twinfer/fit-plugin/pkg/fitkit"
)

var errIntegrity = errors.New("integrity check failed")

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Verify the header and CRCs of a FIT file",
		Long: `Check whether a file is FIT and whether its header and file CRCs match.
The report is printed as JSON; the command fails when the file is not FIT
or its integrity check fails.

Example:
  fitdump check activity.fit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			decoder := fitkit.NewDecoder(fitkit.WithLogger(loggerFrom(cmd)))
			report := decoder.Check(data)

			out, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling to JSON: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))

			if !report.IsFIT || !report.Integrity {
				return fmt.Errorf("%s: %w", args[0], errIntegrity)
			}
			return nil
		},
	}
}
