package parjson

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"

	"github.com/cybergodev/parjson/internal"
)

// SegmentStrategy selects how a serialized tree is cut into segments
type SegmentStrategy string

const (
	// SegmentsByEvents slices the flattened event stream into near-equal ranges
	SegmentsByEvents SegmentStrategy = "events"
	// SegmentsByContainers cuts at the container nodes chosen by the segment planner
	SegmentsByContainers SegmentStrategy = "containers"
)

// Config holds configuration for a Parser
type Config struct {
	// Concurrency
	Threads           int `yaml:"threads"`
	MinParallelTokens int `yaml:"min_parallel_tokens"`
	MinParallelEvents int `yaml:"min_parallel_events"`

	// Limits
	MaxJSONSize     int64 `yaml:"max_json_size"`
	MaxNestingDepth int   `yaml:"max_nesting_depth"`

	// Serialization
	SegmentStrategy SegmentStrategy `yaml:"segment_strategy"`

	// Additional options
	EnableMetrics    bool `yaml:"enable_metrics"`
	ValidateFilePath bool `yaml:"validate_file_path"`

	// Logger receives debug and error records; nil uses slog.Default()
	Logger *slog.Logger `yaml:"-"`
	// Registerer receives Prometheus collectors when metrics are enabled
	Registerer prometheus.Registerer `yaml:"-"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Threads:           internal.DefaultWorkers(),
		MinParallelTokens: DefaultMinParallelTokens,
		MinParallelEvents: DefaultMinParallelEvents,
		MaxJSONSize:       DefaultMaxJSONSize,
		MaxNestingDepth:   DefaultMaxNestingDepth,
		SegmentStrategy:   SegmentsByEvents,
		EnableMetrics:     false,
		ValidateFilePath:  true,
	}
}

// ValidateConfig validates configuration values and applies corrections
func ValidateConfig(config *Config) error {
	if config == nil {
		return newOperationError("validate_config", "config cannot be nil", ErrInvalidValue)
	}
	return config.Validate()
}

// Validate rejects impossible values and replaces unset ones with defaults
func (c *Config) Validate() error {
	if c.Threads < 0 {
		return newOperationError("validate_config", "Threads cannot be negative", ErrInvalidValue)
	}
	if c.MaxJSONSize < 0 {
		return newOperationError("validate_config", "MaxJSONSize cannot be negative", ErrInvalidValue)
	}

	if c.Threads == 0 {
		c.Threads = internal.DefaultWorkers()
	}
	if c.Threads > MaxThreads {
		c.Threads = MaxThreads
	}
	if c.MinParallelTokens <= 0 {
		c.MinParallelTokens = DefaultMinParallelTokens
	}
	if c.MinParallelEvents <= 0 {
		c.MinParallelEvents = DefaultMinParallelEvents
	}
	if c.MaxJSONSize == 0 {
		c.MaxJSONSize = DefaultMaxJSONSize
	}
	if c.MaxNestingDepth <= 0 {
		c.MaxNestingDepth = DefaultMaxNestingDepth
	}

	switch c.SegmentStrategy {
	case "":
		c.SegmentStrategy = SegmentsByEvents
	case SegmentsByEvents, SegmentsByContainers:
	default:
		return newOperationError("validate_config",
			fmt.Sprintf("unknown segment strategy %q", c.SegmentStrategy), ErrInvalidValue)
	}
	return nil
}

// Clone creates a copy of the configuration. Logger and Registerer are shared.
func (c *Config) Clone() *Config {
	if c == nil {
		return DefaultConfig()
	}
	clone := *c
	return &clone
}

// LoadConfigFile reads a YAML configuration file on top of DefaultConfig
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newOperationError("load_config", fmt.Sprintf("failed to read %s", path), err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML configuration on top of DefaultConfig. Unknown
// fields are rejected.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, newOperationError("load_config", "invalid configuration", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
