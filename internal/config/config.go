package config

import "errors"

// Config is the top-level configuration struct for treeq.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Query   QueryConfig   `mapstructure:"query"`
	Output  OutputConfig  `mapstructure:"output"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Tracing TracingConfig `mapstructure:"tracing"`
}

// QueryConfig holds execution knobs applied when flags do not override
// them.
type QueryConfig struct {
	// Language forces a grammar instead of per-file detection.
	Language string `mapstructure:"language"`
	// MatchLimit caps simultaneously in-flight partial matches; 0 means
	// unlimited.
	MatchLimit uint32 `mapstructure:"match_limit"`
	// MaxFileSize skips larger files, in bytes.
	MaxFileSize int64 `mapstructure:"max_file_size"`
}

// OutputConfig holds presentation settings.
type OutputConfig struct {
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}

// MetricsConfig holds the optional Prometheus endpoint settings for pack
// runs.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
}

// TracingConfig holds the optional OTLP span export settings for pack
// runs.
type TracingConfig struct {
	// Endpoint is the OTLP gRPC collector address; empty disables export.
	Endpoint string `mapstructure:"endpoint"`
	// Insecure skips TLS on the collector connection.
	Insecure bool `mapstructure:"insecure"`
	// SampleRatio keeps this fraction of new traces; 0 means always
	// sample.
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

// Defaults applied by the loader.
const (
	DefaultQueryMatchLimit  = uint32(0)
	DefaultQueryMaxFileSize = int64(4 << 20)
	DefaultOutputFormat     = "table"
	DefaultOutputColor      = true
	DefaultMetricsEnabled   = false
	DefaultMetricsListen    = "localhost:9464"
	DefaultTracingEndpoint  = ""
	DefaultTracingInsecure  = false
	DefaultTraceSampleRatio = float64(0)
)

// errBadOutputFormat indicates an unsupported output format value.
var errBadOutputFormat = errors.New("config: output.format must be table, json, or count")

// errBadMaxFileSize indicates a negative file size limit.
var errBadMaxFileSize = errors.New("config: query.max_file_size must not be negative")

// errBadSampleRatio indicates a trace sample ratio outside [0, 1].
var errBadSampleRatio = errors.New("config: tracing.sample_ratio must be between 0 and 1")

// Validate checks cross-field consistency after unmarshalling.
func (c *Config) Validate() error {
	switch c.Output.Format {
	case "table", "json", "count":
	default:
		return errBadOutputFormat
	}

	if c.Query.MaxFileSize < 0 {
		return errBadMaxFileSize
	}

	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return errBadSampleRatio
	}

	return nil
}
