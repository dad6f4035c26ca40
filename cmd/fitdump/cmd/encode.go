package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/twinfer/fit-plugin/pkg/fit"
	"github.com/twinfer/fit-plugin/pkg/profile"
)

func newEncodeCmd() *cobra.Command {
	encodeCmd := &cobra.Command{
		Use:   "encode <file>",
		Short: "Encode JSON messages into a FIT file",
		Long: `Encode a JSON array of messages into one FIT file. Each message names
its type with "name" (fileId, record, ...) or "mesgNum". Enum values may be
given by name and timestamps as RFC 3339 strings. developerDataId and
fieldDescription messages register developer fields in the order they appear,
matching the keys used under "developerFields". Use "-" to read from stdin.

Examples:
  fitdump encode -o activity.fit messages.json
  cat messages.json | fitdump encode -o activity.fit -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			profilePath, _ := cmd.Flags().GetString("profile")

			p := profile.Default()
			if profilePath != "" {
				var err error
				if p, err = profile.LoadFile(profilePath); err != nil {
					return err
				}
			}

			input, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			dec := json.NewDecoder(bytes.NewReader(input))
			dec.UseNumber()
			var mesgs []map[string]any
			if err := dec.Decode(&mesgs); err != nil {
				return fmt.Errorf("parsing messages: %w", err)
			}

			logger := loggerFrom(cmd)
			data, err := encodeMessages(p, mesgs, fit.WithEncoderProfile(p), fit.WithEncoderLogger(logger))
			if err != nil {
				return err
			}
			logger.Debug("Encoded FIT file", "messages", len(mesgs), "bytes", len(data))

			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			return nil
		},
	}

	encodeCmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")
	encodeCmd.Flags().String("profile", "", "YAML profile file (default: embedded profile)")
	return encodeCmd
}

// encodeMessages writes mesgs in order, registering developer fields from
// the developerDataId and fieldDescription messages as they pass.
func encodeMessages(p *profile.Profile, mesgs []map[string]any, opts ...fit.EncoderOption) ([]byte, error) {
	enc, err := fit.NewEncoder(opts...)
	if err != nil {
		return nil, err
	}

	developerDataIDs := make(map[string]map[string]any)
	nextKey := 0
	for i, raw := range mesgs {
		mesg := normalizeNumbers(raw).(map[string]any)
		mesgNum, err := messageNumber(p, mesg)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		delete(mesg, "name")
		delete(mesg, "mesgNum")

		switch mesgNum {
		case fit.MesgNumDeveloperDataID:
			developerDataIDs[fmt.Sprint(mesg["developerDataIndex"])] = mesg
		case fit.MesgNumFieldDescription:
			id, ok := developerDataIDs[fmt.Sprint(mesg["developerDataIndex"])]
			if !ok {
				return nil, fmt.Errorf("message %d: %w: no developerDataId for index %v", i, fit.ErrInvalidDeveloperField, mesg["developerDataIndex"])
			}
			if err := enc.AddDeveloperField(nextKey, id, mesg); err != nil {
				return nil, fmt.Errorf("message %d: %w", i, err)
			}
			nextKey++
		}

		if err := enc.OnMesg(mesgNum, mesg); err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
	}
	return enc.Close()
}

func messageNumber(p *profile.Profile, mesg map[string]any) (uint16, error) {
	if name, ok := mesg["name"].(string); ok {
		m, ok := p.MessageByName(name)
		if !ok {
			return 0, fmt.Errorf("%w %q", fit.ErrUnknownMessage, name)
		}
		return m.Num, nil
	}
	if n, ok := mesg["mesgNum"].(int64); ok && n >= 0 && n <= 0xFFFF {
		return uint16(n), nil
	}
	return 0, fmt.Errorf("%w: message has neither name nor mesgNum", fit.ErrUnknownMessage)
}

// normalizeNumbers turns json.Number into int64 where exact, else float64.
func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		f, _ := t.Float64()
		return f
	case map[string]any:
		for k, el := range t {
			t[k] = normalizeNumbers(el)
		}
		return t
	case []any:
		for i, el := range t {
			t[i] = normalizeNumbers(el)
		}
		return t
	}
	return v
}
