package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/redpanda-data/benthos/v4/public/service"
	"github.com/segmentio/ksuid"

	"github.com/twinfer/fit-plugin/pkg/fit"
	"github.com/twinfer/fit-plugin/pkg/fitkit"
)

// FITProcessor is a Benthos processor that decodes FIT activity files
// into structured messages.
type FITProcessor struct {
	config      FITConfig
	decoder     *fitkit.Decoder
	logger      *service.Logger
	mFiles      *service.MetricCounter
	mMessages   *service.MetricCounter
	mErrors     *service.MetricCounter
	mIntegrity  *service.MetricCounter
	readOptions []fit.Option
}

// FITConfig contains configuration parameters for the FIT processor.
type FITConfig struct {
	ProfilePath    string     `json:"profile_path" yaml:"profile_path"`
	Filter         string     `json:"filter" yaml:"filter"`
	SplitMessages  bool       `json:"split_messages" yaml:"split_messages"`
	CheckIntegrity bool       `json:"check_integrity" yaml:"check_integrity"`
	Read           fit.Config `json:"read" yaml:",inline"`
}

func init() {
	err := service.RegisterProcessor(
		"fit_decode",
		fitProcessorConfig(),
		func(conf *service.ParsedConfig, mgr *service.Resources) (service.Processor, error) {
			return newFITProcessorFromConfig(conf, mgr)
		},
	)
	if err != nil {
		panic(err)
	}
}

func main() {
	service.RunCLI(context.Background())
}

// readOptionFields lists the boolean read options with their defaults.
var readOptionFields = []struct {
	name        string
	description string
	set         func(*fit.Config, bool)
	get         func(fit.Config) bool
}{
	{"expand_sub_fields", "Resolve fields whose meaning depends on another field of the same message.",
		func(c *fit.Config, v bool) { c.ExpandSubFields = v }, func(c fit.Config) bool { return c.ExpandSubFields }},
	{"expand_components", "Unpack packed fields into their component fields.",
		func(c *fit.Config, v bool) { c.ExpandComponents = v }, func(c fit.Config) bool { return c.ExpandComponents }},
	{"apply_scale_and_offset", "Convert raw integers to physical units.",
		func(c *fit.Config, v bool) { c.ApplyScaleAndOffset = v }, func(c fit.Config) bool { return c.ApplyScaleAndOffset }},
	{"convert_types_to_strings", "Replace enum values with their names.",
		func(c *fit.Config, v bool) { c.ConvertTypesToStrings = v }, func(c fit.Config) bool { return c.ConvertTypesToStrings }},
	{"convert_date_times_to_dates", "Convert FIT timestamps to RFC 3339 dates.",
		func(c *fit.Config, v bool) { c.ConvertDateTimesToDates = v }, func(c fit.Config) bool { return c.ConvertDateTimesToDates }},
	{"include_unknown_data", "Keep messages and fields missing from the profile, keyed by number.",
		func(c *fit.Config, v bool) { c.IncludeUnknownData = v }, func(c fit.Config) bool { return c.IncludeUnknownData }},
	{"merge_heart_rates", "Copy heart rate samples from hr messages into records. Requires apply_scale_and_offset and expand_components.",
		func(c *fit.Config, v bool) { c.MergeHeartRates = v }, func(c fit.Config) bool { return c.MergeHeartRates }},
	{"decode_memo_globs", "Reassemble memo glob text into the fields it belongs to.",
		func(c *fit.Config, v bool) { c.DecodeMemoGlobs = v }, func(c fit.Config) bool { return c.DecodeMemoGlobs }},
}

// fitProcessorConfig returns a config spec for a fit_decode processor.
func fitProcessorConfig() *service.ConfigSpec {
	defaults := fit.DefaultConfig()
	spec := service.NewConfigSpec().
		Summary("Decodes Garmin FIT activity files into structured messages.").
		Description("Each input message must hold a complete FIT file (several chained FIT units are allowed). " +
			"By default the output is a single structured message mapping collection names such as `recordMesgs` to arrays of decoded messages. " +
			"With `split_messages` every decoded FIT message becomes its own Benthos message.").
		Field(service.NewStringField("profile_path").
			Description("Path to a YAML profile file. Leave empty to use the embedded profile.").
			Default("")).
		Field(service.NewStringField("filter").
			Description("CEL expression evaluated per decoded message; only messages for which it is true are kept. Leave empty to keep everything.").
			Example("name == 'record' && has(mesg.heartRate)").
			Default("")).
		Field(service.NewBoolField("split_messages").
			Description("Emit one Benthos message per decoded FIT message.").
			Default(false)).
		Field(service.NewBoolField("check_integrity").
			Description("Verify the header and file CRCs before decoding and fail the message when they do not match.").
			Default(false))
	for _, f := range readOptionFields {
		spec = spec.Field(service.NewBoolField(f.name).
			Description(f.description).
			Default(f.get(defaults)).
			Advanced())
	}
	return spec.Version("0.1.0")
}

// newFITProcessorFromConfig creates a new FITProcessor from a parsed config.
func newFITProcessorFromConfig(conf *service.ParsedConfig, mgr *service.Resources) (*FITProcessor, error) {
	var config FITConfig
	var err error

	if config.ProfilePath, err = conf.FieldString("profile_path"); err != nil {
		return nil, err
	}
	if config.Filter, err = conf.FieldString("filter"); err != nil {
		return nil, err
	}
	if config.SplitMessages, err = conf.FieldBool("split_messages"); err != nil {
		return nil, err
	}
	if config.CheckIntegrity, err = conf.FieldBool("check_integrity"); err != nil {
		return nil, err
	}
	config.Read = fit.DefaultConfig()
	for _, f := range readOptionFields {
		v, err := conf.FieldBool(f.name)
		if err != nil {
			return nil, err
		}
		f.set(&config.Read, v)
	}
	if err := config.Read.Validate(); err != nil {
		return nil, fmt.Errorf("invalid read options: %w", err)
	}

	var opts []fitkit.Option
	if config.ProfilePath != "" {
		opts = append(opts, fitkit.WithProfilePath(config.ProfilePath))
	}
	decoder := fitkit.NewDecoder(opts...)
	if config.ProfilePath != "" {
		if err := decoder.ValidateProfile(config.ProfilePath); err != nil {
			return nil, fmt.Errorf("failed to load profile: %w", err)
		}
	}
	if config.Filter != "" {
		if err := decoder.ValidateFilter(config.Filter); err != nil {
			return nil, fmt.Errorf("invalid filter: %w", err)
		}
	}

	metrics := mgr.Metrics()
	return &FITProcessor{
		config:      config,
		decoder:     decoder,
		logger:      mgr.Logger(),
		mFiles:      metrics.NewCounter("fit_decoded_files"),
		mMessages:   metrics.NewCounter("fit_decoded_messages"),
		mErrors:     metrics.NewCounter("fit_decode_errors"),
		mIntegrity:  metrics.NewCounter("fit_integrity_failures"),
		readOptions: config.Read.Options(),
	}, nil
}

// Process decodes the FIT file held by msg.
func (f *FITProcessor) Process(ctx context.Context, msg *service.Message) (service.MessageBatch, error) {
	data, err := msg.AsBytes()
	if err != nil {
		f.logger.Errorf("Failed to get binary data from message: %v", err)
		f.mErrors.Incr(1)
		msg.SetError(fmt.Errorf("failed to get binary data from message: %w", err))
		return service.MessageBatch{msg}, nil
	}

	if len(data) == 0 {
		f.logger.Warn("Empty binary data provided")
		f.mErrors.Incr(1)
		msg.SetError(fmt.Errorf("empty binary data provided"))
		return service.MessageBatch{msg}, nil
	}

	if f.config.CheckIntegrity {
		report := f.decoder.Check(data)
		if !report.Integrity {
			f.logger.Warnf("FIT integrity check failed for %d bytes", len(data))
			f.mIntegrity.Incr(1)
			msg.SetError(fmt.Errorf("FIT integrity check failed: %w", fit.ErrCRC))
			return service.MessageBatch{msg}, nil
		}
	}

	result, err := f.decoder.Decode(ctx, data,
		fitkit.WithReadOptions(f.readOptions...),
		fitkit.WithFilter(f.config.Filter))
	if err != nil {
		f.logger.Errorf("Failed to decode FIT data of size %d bytes: %v", len(data), err)
		f.mErrors.Incr(1)
		msg.SetError(fmt.Errorf("failed to decode FIT data of size %d bytes: %w", len(data), err))
		return service.MessageBatch{msg}, nil
	}

	fileID := ksuid.New().String()
	f.mFiles.Incr(1)

	if f.config.SplitMessages {
		batch := f.split(msg, fileID, result)
		f.mMessages.Incr(int64(len(batch)))
		f.logger.Debugf("Decoded %d bytes into %d messages", len(data), len(batch))
		return batch, nil
	}

	out := make(map[string]any, len(result.Messages))
	total := 0
	for key, mesgs := range result.Messages {
		list := make([]any, len(mesgs))
		for i, m := range mesgs {
			list[i] = m.Map()
		}
		out[key] = list
		total += len(mesgs)
	}
	f.mMessages.Incr(int64(total))
	f.logger.Debugf("Decoded %d bytes into %d messages", len(data), total)

	newMsg := msg.Copy()
	newMsg.SetStructured(out)
	newMsg.MetaSetMut("fit_file_id", fileID)
	return service.MessageBatch{newMsg}, nil
}

// split emits one message per decoded FIT message, in file order within
// each collection and collections ordered by message number.
func (f *FITProcessor) split(msg *service.Message, fileID string, result *fit.Result) service.MessageBatch {
	keys := make([]string, 0, len(result.Messages))
	for key := range result.Messages {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var decoded []*fit.Message
	for _, key := range keys {
		decoded = append(decoded, result.Messages[key]...)
	}
	sort.SliceStable(decoded, func(i, j int) bool { return decoded[i].Num < decoded[j].Num })

	batch := make(service.MessageBatch, 0, len(decoded))
	for i, m := range decoded {
		part := msg.Copy()
		part.SetStructured(m.Map())
		part.MetaSetMut("fit_file_id", fileID)
		part.MetaSetMut("fit_message", m.Name)
		part.MetaSetMut("fit_mesg_num", strconv.Itoa(int(m.Num)))
		part.MetaSetMut("fit_index", strconv.Itoa(i))
		batch = append(batch, part)
	}
	return batch
}

// Close the processor resources
func (f *FITProcessor) Close(ctx context.Context) error {
	f.logger.Debug("Closing FIT processor and clearing profile cache")
	f.decoder.ClearCache()
	return nil
}
