package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/twinfer/fit-plugin/pkg/fit"
	"github.com/twinfer/fit-plugin/pkg/fitkit"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>",
		Short: "Summarize the FIT units and messages in a file",
		Long: `Print the header of every chained FIT unit followed by the number of
decoded messages per collection.

Example:
  fitdump info activity.fit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			headers, err := fit.ReadFileHeaders(data)
			if err != nil {
				return fmt.Errorf("reading headers: %w", err)
			}

			out := cmd.OutOrStdout()
			for i, h := range headers {
				fmt.Fprintf(out, "unit %d: header %d bytes, protocol %d.%d, profile %d, data %d bytes\n",
					i, h.HeaderSize, h.ProtocolVersion>>4, h.ProtocolVersion&0x0F, h.ProfileVersion, h.DataSize)
			}

			decoder := fitkit.NewDecoder(fitkit.WithLogger(loggerFrom(cmd)))
			result, err := decoder.Decode(cmd.Context(), data)
			if result != nil {
				keys := make([]string, 0, len(result.Messages))
				for key := range result.Messages {
					keys = append(keys, key)
				}
				sort.Strings(keys)
				for _, key := range keys {
					fmt.Fprintf(out, "%-28s %d\n", key, len(result.Messages[key]))
				}
			}
			return err
		},
	}
}
