package fit

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/twinfer/fit-plugin/pkg/profile"
	"gopkg.in/yaml.v3"
)

// ProfileLookup resolves message metadata and named type tables.
type ProfileLookup interface {
	MessageByNumber(num uint16) (*profile.Message, bool)
	TypeEnumByName(name string) (map[int64]string, bool)
}

// MesgListener is called synchronously for every decoded message.
// A non-nil error aborts the read and is reported as its only error.
type MesgListener func(mesgNum uint16, msg *Message) error

type options struct {
	mesgListener            MesgListener
	expandSubFields         bool
	expandComponents        bool
	applyScaleAndOffset     bool
	convertTypesToStrings   bool
	convertDateTimesToDates bool
	includeUnknownData      bool
	mergeHeartRates         bool
	decodeMemoGlobs         bool
	profile                 ProfileLookup
	logger                  *slog.Logger
}

// Option configures a Decoder or a single Read.
type Option func(*options)

// WithMesgListener registers a per-message callback.
func WithMesgListener(fn MesgListener) Option {
	return func(o *options) {
		o.mesgListener = fn
	}
}

// WithExpandSubFields toggles sub-field expansion (default true).
func WithExpandSubFields(enabled bool) Option {
	return func(o *options) {
		o.expandSubFields = enabled
	}
}

// WithExpandComponents toggles component expansion (default true).
func WithExpandComponents(enabled bool) Option {
	return func(o *options) {
		o.expandComponents = enabled
	}
}

// WithApplyScaleAndOffset toggles scale and offset (default true).
func WithApplyScaleAndOffset(enabled bool) Option {
	return func(o *options) {
		o.applyScaleAndOffset = enabled
	}
}

// WithConvertTypesToStrings toggles enum to string conversion (default true).
func WithConvertTypesToStrings(enabled bool) Option {
	return func(o *options) {
		o.convertTypesToStrings = enabled
	}
}

// WithConvertDateTimesToDates toggles dateTime to time.Time conversion (default true).
func WithConvertDateTimesToDates(enabled bool) Option {
	return func(o *options) {
		o.convertDateTimesToDates = enabled
	}
}

// WithIncludeUnknownData keeps messages and fields missing from the profile (default false).
func WithIncludeUnknownData(enabled bool) Option {
	return func(o *options) {
		o.includeUnknownData = enabled
	}
}

// WithMergeHeartRates merges hr messages into records (default true).
// It requires scale/offset and component expansion.
func WithMergeHeartRates(enabled bool) Option {
	return func(o *options) {
		o.mergeHeartRates = enabled
	}
}

// WithDecodeMemoGlobs reassembles memo glob strings into their target messages (default false).
func WithDecodeMemoGlobs(enabled bool) Option {
	return func(o *options) {
		o.decodeMemoGlobs = enabled
	}
}

// WithProfile substitutes the profile database.
func WithProfile(p ProfileLookup) Option {
	return func(o *options) {
		o.profile = p
	}
}

// WithLogger sets a custom logger
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func defaultOptions() options {
	return options{
		expandSubFields:         true,
		expandComponents:        true,
		applyScaleAndOffset:     true,
		convertTypesToStrings:   true,
		convertDateTimesToDates: true,
		includeUnknownData:      false,
		mergeHeartRates:         true,
		decodeMemoGlobs:         false,
		logger:                  slog.Default(),
	}
}

func (o options) validate() error {
	if o.mergeHeartRates && (!o.applyScaleAndOffset || !o.expandComponents) {
		return ErrInvalidOptions
	}
	return nil
}

// Config is the declarative form of the read options.
type Config struct {
	ExpandSubFields         bool `yaml:"expand_sub_fields" json:"expand_sub_fields"`
	ExpandComponents        bool `yaml:"expand_components" json:"expand_components"`
	ApplyScaleAndOffset     bool `yaml:"apply_scale_and_offset" json:"apply_scale_and_offset"`
	ConvertTypesToStrings   bool `yaml:"convert_types_to_strings" json:"convert_types_to_strings"`
	ConvertDateTimesToDates bool `yaml:"convert_date_times_to_dates" json:"convert_date_times_to_dates"`
	IncludeUnknownData      bool `yaml:"include_unknown_data" json:"include_unknown_data"`
	MergeHeartRates         bool `yaml:"merge_heart_rates" json:"merge_heart_rates"`
	DecodeMemoGlobs         bool `yaml:"decode_memo_globs" json:"decode_memo_globs"`
}

// DefaultConfig mirrors the decoder defaults.
func DefaultConfig() Config {
	o := defaultOptions()
	return Config{
		ExpandSubFields:         o.expandSubFields,
		ExpandComponents:        o.expandComponents,
		ApplyScaleAndOffset:     o.applyScaleAndOffset,
		ConvertTypesToStrings:   o.convertTypesToStrings,
		ConvertDateTimesToDates: o.convertDateTimesToDates,
		IncludeUnknownData:      o.includeUnknownData,
		MergeHeartRates:         o.mergeHeartRates,
		DecodeMemoGlobs:         o.decodeMemoGlobs,
	}
}

// LoadConfig reads a YAML config file. Keys absent from the file keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Validate reports option combinations a read would reject.
func (c Config) Validate() error {
	if c.MergeHeartRates && (!c.ApplyScaleAndOffset || !c.ExpandComponents) {
		return ErrInvalidOptions
	}
	return nil
}

// Options converts the config to read options.
func (c Config) Options() []Option {
	return []Option{
		WithExpandSubFields(c.ExpandSubFields),
		WithExpandComponents(c.ExpandComponents),
		WithApplyScaleAndOffset(c.ApplyScaleAndOffset),
		WithConvertTypesToStrings(c.ConvertTypesToStrings),
		WithConvertDateTimesToDates(c.ConvertDateTimesToDates),
		WithIncludeUnknownData(c.IncludeUnknownData),
		WithMergeHeartRates(c.MergeHeartRates),
		WithDecodeMemoGlobs(c.DecodeMemoGlobs),
	}
}
