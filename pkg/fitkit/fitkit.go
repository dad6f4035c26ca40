package fitkit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	internalcel "github.com/twinfer/fit-plugin/internal/cel"
	"github.com/twinfer/fit-plugin/pkg/fit"
	"github.com/twinfer/fit-plugin/pkg/profile"
)

// Decoder wraps the FIT decoder with profile caching, message filters and metrics.
type Decoder struct {
	profileCache map[string]*profile.Profile
	poolCache    map[string]*internalcel.ExpressionPool
	cacheMutex   sync.RWMutex
	logger       *slog.Logger
	options      options
}

type options struct {
	logger        *slog.Logger
	profilePath   string
	readOptions   []fit.Option
	filter        string
	metrics       *Metrics
	enableCaching bool
	debugMode     bool
}

// Option is a function that configures decoder options
type Option func(*options)

// WithLogger sets a custom logger
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithProfilePath decodes against a YAML profile file instead of the embedded one.
func WithProfilePath(path string) Option {
	return func(o *options) {
		o.profilePath = path
	}
}

// WithReadOptions appends options passed to every fit read.
func WithReadOptions(opts ...fit.Option) Option {
	return func(o *options) {
		o.readOptions = append(o.readOptions, opts...)
	}
}

// WithFilter keeps only messages for which the CEL expression is true.
// An empty expression disables filtering.
func WithFilter(expr string) Option {
	return func(o *options) {
		o.filter = expr
	}
}

// WithMetrics records decode metrics.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithCaching toggles caching of loaded profiles and compiled filters.
func WithCaching(enabled bool) Option {
	return func(o *options) {
		o.enableCaching = enabled
	}
}

// WithDebugMode enables debug logging
func WithDebugMode(enabled bool) Option {
	return func(o *options) {
		o.debugMode = enabled
	}
}

func defaultOptions() options {
	return options{
		logger:        slog.Default(),
		enableCaching: true,
	}
}

var globalDecoder *Decoder
var globalDecoderOnce sync.Once

func getGlobalDecoder() *Decoder {
	globalDecoderOnce.Do(func() {
		globalDecoder = NewDecoder()
	})
	return globalDecoder
}

// NewDecoder creates a new decoder instance with the given options
func NewDecoder(opts ...Option) *Decoder {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	if options.debugMode {
		options.logger = options.logger.With("debug", true)
	}

	return &Decoder{
		profileCache: make(map[string]*profile.Profile),
		poolCache:    make(map[string]*internalcel.ExpressionPool),
		logger:       options.logger,
		options:      options,
	}
}

// Decode decodes data with the global decoder.
func Decode(ctx context.Context, data []byte, opts ...Option) (*fit.Result, error) {
	return getGlobalDecoder().Decode(ctx, data, opts...)
}

// DecodeToJSON decodes data with the global decoder and renders the messages as JSON.
func DecodeToJSON(ctx context.Context, data []byte, opts ...Option) ([]byte, error) {
	return getGlobalDecoder().DecodeToJSON(ctx, data, opts...)
}

// Check inspects data with the global decoder.
func Check(data []byte, opts ...Option) CheckReport {
	return getGlobalDecoder().Check(data, opts...)
}

// Decode decodes every chained FIT unit in data. On a decode fault the
// partial result is returned together with the error.
func (d *Decoder) Decode(ctx context.Context, data []byte, opts ...Option) (*fit.Result, error) {
	options := d.options
	options.readOptions = append([]fit.Option(nil), d.options.readOptions...)
	for _, opt := range opts {
		opt(&options)
	}

	start := time.Now()
	result, err := d.decode(ctx, data, options)

	counts := make(map[string]int)
	if result != nil {
		for key, mesgs := range result.Messages {
			counts[key] = len(mesgs)
		}
	}
	options.metrics.recordDecode(len(data), counts, time.Since(start), err)
	return result, err
}

func (d *Decoder) decode(ctx context.Context, data []byte, options options) (*fit.Result, error) {
	p, err := d.loadProfile(options.profilePath, options.enableCaching)
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}

	var pool *internalcel.ExpressionPool
	if options.filter != "" {
		pool, err = d.filterPool(options.profilePath, p, options.enableCaching)
		if err != nil {
			return nil, err
		}
		if err := pool.CompileFilter(options.filter); err != nil {
			return nil, fmt.Errorf("compiling filter: %w", err)
		}
	}

	logger := options.logger
	if logger == nil {
		logger = d.logger
	}

	decoder, err := fit.NewDecoder(data, fit.WithProfile(p), fit.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("creating decoder: %w", err)
	}

	result := decoder.Read(ctx, options.readOptions...)
	if pool != nil {
		applyFilter(ctx, logger, pool, options.filter, result)
	}

	if err := result.Err(); err != nil {
		return result, fmt.Errorf("decoding FIT data: %w", err)
	}
	logger.DebugContext(ctx, "Decoded FIT data", "bytes", len(data), "collections", len(result.Messages))
	return result, nil
}

// applyFilter drops messages the filter rejects. Evaluation errors, such as a
// reference to a field the message lacks, count as a rejection.
func applyFilter(ctx context.Context, logger *slog.Logger, pool *internalcel.ExpressionPool, expr string, result *fit.Result) {
	for key, mesgs := range result.Messages {
		kept := mesgs[:0]
		for _, m := range mesgs {
			ok, err := pool.Matches(expr, m.Num, m.Name, m.Map())
			if err != nil {
				logger.DebugContext(ctx, "Filter evaluation failed", "message", m.Name, "error", err)
				continue
			}
			if ok {
				kept = append(kept, m)
			}
		}
		if len(kept) == 0 {
			delete(result.Messages, key)
			continue
		}
		result.Messages[key] = kept
	}
}

// DecodeToJSON decodes data and renders the message collections as indented JSON.
func (d *Decoder) DecodeToJSON(ctx context.Context, data []byte, opts ...Option) ([]byte, error) {
	result, err := d.Decode(ctx, data, opts...)
	if err != nil {
		return nil, err
	}

	jsonData, err := json.MarshalIndent(result.Messages, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling to JSON: %w", err)
	}
	return jsonData, nil
}

// CheckReport summarizes a structural check of a FIT buffer.
type CheckReport struct {
	IsFIT     bool             `json:"isFIT"`
	Integrity bool             `json:"integrity"`
	Headers   []fit.FileHeader `json:"headers,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// Check reports whether data is FIT, whether the first unit passes its CRC
// checks, and the headers of every chained unit.
func (d *Decoder) Check(data []byte, opts ...Option) CheckReport {
	options := d.options
	for _, opt := range opts {
		opt(&options)
	}

	report := CheckReport{IsFIT: fit.IsFIT(data)}
	if !report.IsFIT {
		report.Error = fit.ErrNotFIT.Error()
		return report
	}

	decoder, err := fit.NewDecoder(data)
	if err != nil {
		report.Error = err.Error()
		return report
	}
	report.Integrity = decoder.CheckIntegrity()
	if !report.Integrity {
		options.metrics.recordIntegrityFailure()
	}

	headers, err := fit.ReadFileHeaders(data)
	report.Headers = headers
	if err != nil {
		report.Error = err.Error()
	}
	return report
}

// loadProfile returns the embedded profile for an empty path.
func (d *Decoder) loadProfile(path string, caching bool) (*profile.Profile, error) {
	if path == "" {
		return profile.Default(), nil
	}

	if caching {
		d.cacheMutex.RLock()
		cached, exists := d.profileCache[path]
		d.cacheMutex.RUnlock()
		if exists {
			return cached, nil
		}
	}

	p, err := profile.LoadFile(path)
	if err != nil {
		return nil, err
	}

	if caching {
		d.cacheMutex.Lock()
		d.profileCache[path] = p
		d.cacheMutex.Unlock()
	}
	return p, nil
}

func (d *Decoder) filterPool(path string, p *profile.Profile, caching bool) (*internalcel.ExpressionPool, error) {
	if caching {
		d.cacheMutex.RLock()
		pool, exists := d.poolCache[path]
		d.cacheMutex.RUnlock()
		if exists {
			return pool, nil
		}
	}

	pool, err := internalcel.NewExpressionPool(p)
	if err != nil {
		return nil, fmt.Errorf("creating filter environment: %w", err)
	}

	if caching {
		d.cacheMutex.Lock()
		d.poolCache[path] = pool
		d.cacheMutex.Unlock()
	}
	return pool, nil
}

// ValidateFilter compiles expr against the configured profile.
func (d *Decoder) ValidateFilter(expr string) error {
	p, err := d.loadProfile(d.options.profilePath, d.options.enableCaching)
	if err != nil {
		return fmt.Errorf("loading profile: %w", err)
	}
	pool, err := d.filterPool(d.options.profilePath, p, d.options.enableCaching)
	if err != nil {
		return err
	}
	return pool.CompileFilter(expr)
}

// ValidateProfile loads a profile file without decoding any data.
func (d *Decoder) ValidateProfile(path string) error {
	_, err := d.loadProfile(path, d.options.enableCaching)
	return err
}

// ClearCache clears the profile and filter caches
func (d *Decoder) ClearCache() {
	d.cacheMutex.Lock()
	defer d.cacheMutex.Unlock()
	d.profileCache = make(map[string]*profile.Profile)
	d.poolCache = make(map[string]*internalcel.ExpressionPool)
}
