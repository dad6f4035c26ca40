package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/twinfer/fit-plugin/pkg/fit"
	"github.com/twinfer/fit-plugin/pkg/fitkit"
)

// optionFlags maps read option flags onto fit.Config fields.
var optionFlags = []struct {
	name  string
	usage string
	field func(*fit.Config) *bool
}{
	{"expand-sub-fields", "Resolve dynamic sub-fields", func(c *fit.Config) *bool { return &c.ExpandSubFields }},
	{"expand-components", "Unpack component fields", func(c *fit.Config) *bool { return &c.ExpandComponents }},
	{"apply-scale-and-offset", "Convert raw values to physical units", func(c *fit.Config) *bool { return &c.ApplyScaleAndOffset }},
	{"convert-types-to-strings", "Replace enum values with names", func(c *fit.Config) *bool { return &c.ConvertTypesToStrings }},
	{"convert-date-times-to-dates", "Convert timestamps to dates", func(c *fit.Config) *bool { return &c.ConvertDateTimesToDates }},
	{"include-unknown-data", "Keep messages and fields missing from the profile", func(c *fit.Config) *bool { return &c.IncludeUnknownData }},
	{"merge-heart-rates", "Merge hr message samples into records", func(c *fit.Config) *bool { return &c.MergeHeartRates }},
	{"decode-memo-globs", "Reassemble memo glob text", func(c *fit.Config) *bool { return &c.DecodeMemoGlobs }},
}

func addOptionFlags(flags *pflag.FlagSet) {
	defaults := fit.DefaultConfig()
	for _, f := range optionFlags {
		flags.Bool(f.name, *f.field(&defaults), f.usage)
	}
	flags.String("config", "", "YAML file with read options; explicit flags take precedence")
}

// readConfig loads --config and applies any explicitly set option flags.
func readConfig(flags *pflag.FlagSet) (fit.Config, error) {
	cfg := fit.DefaultConfig()
	if path, _ := flags.GetString("config"); path != "" {
		var err error
		if cfg, err = fit.LoadConfig(path); err != nil {
			return cfg, err
		}
	}
	for _, f := range optionFlags {
		if flags.Changed(f.name) {
			v, _ := flags.GetBool(f.name)
			*f.field(&cfg) = v
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func newDecodeCmd() *cobra.Command {
	decodeCmd := &cobra.Command{
		Use:   "decode <file>",
		Short: "Decode a FIT file to JSON",
		Long: `Decode a FIT file and print its message collections as JSON.
Use "-" to read from stdin.

Examples:
  fitdump decode activity.fit
  fitdump decode --filter "name == 'record' && mesg.heartRate > 150" activity.fit
  fitdump decode --config options.yaml --include-unknown-data activity.fit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readConfig(cmd.Flags())
			if err != nil {
				return err
			}
			filter, _ := cmd.Flags().GetString("filter")
			profilePath, _ := cmd.Flags().GetString("profile")
			compact, _ := cmd.Flags().GetBool("compact")

			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			logger := loggerFrom(cmd)
			decoder := fitkit.NewDecoder(fitkit.WithLogger(logger), fitkit.WithProfilePath(profilePath))
			result, err := decoder.Decode(cmd.Context(), data,
				fitkit.WithReadOptions(cfg.Options()...),
				fitkit.WithFilter(filter))
			if err != nil {
				return err
			}

			var out []byte
			if compact {
				out, err = json.Marshal(result.Messages)
			} else {
				out, err = json.MarshalIndent(result.Messages, "", "  ")
			}
			if err != nil {
				return fmt.Errorf("marshaling to JSON: %w", err)
			}
			logger.Debug("Decoded FIT file", "file", args[0], "bytes", len(data), "collections", len(result.Messages))
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}

	decodeCmd.Flags().String("filter", "", "CEL expression selecting the messages to keep")
	decodeCmd.Flags().String("profile", "", "YAML profile file (default: embedded profile)")
	decodeCmd.Flags().Bool("compact", false, "Print JSON without indentation")
	addOptionFlags(decodeCmd.Flags())
	return decodeCmd
}
