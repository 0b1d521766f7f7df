package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/s3a-spatialaudio/VISR-sub001/errors"
)

// Config represents the complete runtime configuration
type Config struct {
	Version string        `json:"version" yaml:"version"` // Semantic version of the configuration format
	Flow    FlowConfig    `json:"flow" yaml:"flow"`
	Logging LoggingConfig `json:"logging" yaml:"logging"`
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`
	NATS    NATSConfig    `json:"nats" yaml:"nats"`
	Demo    DemoConfig    `json:"demo" yaml:"demo"`
}

// FlowConfig defines the signal flow context and the run length
type FlowConfig struct {
	Period            int     `json:"period" yaml:"period"`                         // Samples per block
	SamplingFrequency float64 `json:"sampling_frequency" yaml:"sampling_frequency"` // Hz
	Blocks            int     `json:"blocks" yaml:"blocks"`                         // 0 runs until interrupted
	Realtime          bool    `json:"realtime" yaml:"realtime"`                     // Pace blocks at the sampling rate
}

// LoggingConfig defines the process logger
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level"`   // debug, info, warn, error
	Format string `json:"format" yaml:"format"` // json, text
}

// MetricsConfig defines the Prometheus exposition server
type MetricsConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Port    int    `json:"port" yaml:"port"`
	Path    string `json:"path" yaml:"path"`
}

// NATSConfig defines where component status messages are published
type NATSConfig struct {
	URL     string `json:"url" yaml:"url"`
	Enabled bool   `json:"enabled" yaml:"enabled"`
}

// DemoConfig defines the demonstration graph run by the CLI
type DemoConfig struct {
	Channels int     `json:"channels" yaml:"channels"`
	Gain     float64 `json:"gain" yaml:"gain"`
	Events   []Event `json:"events,omitempty" yaml:"events,omitempty"`
}

// Event is a parameter value injected into a top-level parameter input before
// the given block is processed.
type Event struct {
	Block int     `json:"block" yaml:"block"`
	Port  string  `json:"port" yaml:"port"`
	Value float64 `json:"value" yaml:"value"`
}

// SafeConfig provides thread-safe access to configuration
type SafeConfig struct {
	mu     sync.RWMutex
	config *Config
}

// NewSafeConfig creates a new thread-safe config wrapper
func NewSafeConfig(cfg *Config) *SafeConfig {
	if cfg == nil {
		cfg = Defaults()
	}
	return &SafeConfig{
		config: cfg,
	}
}

// Get returns a deep copy of the current configuration
func (sc *SafeConfig) Get() *Config {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.config.Clone()
}

// Update atomically updates the configuration after validation
func (sc *SafeConfig) Update(cfg *Config) error {
	if cfg == nil {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "SafeConfig", "Update", "nil config check")
	}

	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "SafeConfig", "Update", "config validation")
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.config = cfg.Clone()
	return nil
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	if c == nil {
		return Defaults()
	}
	copied := *c
	if c.Demo.Events != nil {
		copied.Demo.Events = append([]Event(nil), c.Demo.Events...)
	}
	return &copied
}

// Defaults returns the default configuration
func Defaults() *Config {
	return &Config{
		Version: "1.0.0",
		Flow: FlowConfig{
			Period:            64,
			SamplingFrequency: 48000,
			Blocks:            750,
			Realtime:          false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
			Path:    "/metrics",
		},
		NATS: NATSConfig{
			URL:     "nats://localhost:4222",
			Enabled: false,
		},
		Demo: DemoConfig{
			Channels: 2,
			Gain:     0.5,
		},
	}
}

// Validate checks if the config is valid
func (c *Config) Validate() error {
	if _, _, _, err := parseSemVer(c.Version); err != nil {
		return invalid("version: %v", err)
	}

	if c.Flow.Period <= 0 {
		return invalid("flow.period must be positive, got %d", c.Flow.Period)
	}
	if c.Flow.SamplingFrequency <= 0 {
		return invalid("flow.sampling_frequency must be positive, got %g", c.Flow.SamplingFrequency)
	}
	if c.Flow.Blocks < 0 {
		return invalid("flow.blocks must not be negative, got %d", c.Flow.Blocks)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return invalid("invalid log level: %s", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		return invalid("invalid log format: %s", c.Logging.Format)
	}

	if c.Metrics.Enabled {
		if c.Metrics.Port <= 0 || c.Metrics.Port > 65535 {
			return invalid("invalid metrics port: %d", c.Metrics.Port)
		}
		if !strings.HasPrefix(c.Metrics.Path, "/") {
			return invalid("metrics.path must start with '/', got %q", c.Metrics.Path)
		}
	}

	if c.NATS.Enabled && c.NATS.URL == "" {
		return invalid("nats.url is required when nats is enabled")
	}

	if c.Demo.Channels <= 0 {
		return invalid("demo.channels must be positive, got %d", c.Demo.Channels)
	}
	for i, ev := range c.Demo.Events {
		if ev.Block < 0 {
			return invalid("demo.events[%d].block must not be negative", i)
		}
		if ev.Port == "" {
			return invalid("demo.events[%d].port is required", i)
		}
		if c.Flow.Blocks > 0 && ev.Block >= c.Flow.Blocks {
			return invalid("demo.events[%d].block %d is beyond the last block %d", i, ev.Block, c.Flow.Blocks-1)
		}
	}
	return nil
}

func invalid(format string, args ...any) error {
	return errors.Invalidf(errors.ErrInvalidConfig, "Config", "Validate", format, args...)
}

// SaveToFile saves the configuration to a JSON or YAML file, chosen by extension
func (c *Config) SaveToFile(path string) error {
	data, err := marshalFor(path, c)
	if err != nil {
		return err
	}
	return safeWriteFile(path, data)
}

// String returns a JSON representation of the config
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// CompareVersions compares two semver version strings
// Returns:
//
//	-1 if v1 < v2
//	 0 if v1 == v2
//	 1 if v1 > v2
//	error if either version is invalid
func CompareVersions(v1, v2 string) (int, error) {
	major1, minor1, patch1, err := parseSemVer(v1)
	if err != nil {
		return 0, fmt.Errorf("invalid version '%s': %w", v1, err)
	}
	major2, minor2, patch2, err := parseSemVer(v2)
	if err != nil {
		return 0, fmt.Errorf("invalid version '%s': %w", v2, err)
	}

	for _, d := range [][2]int{{major1, major2}, {minor1, minor2}, {patch1, patch2}} {
		switch {
		case d[0] > d[1]:
			return 1, nil
		case d[0] < d[1]:
			return -1, nil
		}
	}
	return 0, nil
}

// parseSemVer parses a semantic version string (e.g., "1.2.3")
func parseSemVer(version string) (int, int, int, error) {
	if version == "" {
		return 0, 0, 0, errors.New("version cannot be empty")
	}

	version = strings.TrimPrefix(version, "v")
	parts := strings.Split(version, ".")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("version must be in format 'major.minor.patch', got '%s'", version)
	}

	var nums [3]int
	for i, name := range []string{"major", "minor", "patch"} {
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid %s version '%s': %w", name, parts[i], err)
		}
		nums[i] = n
	}
	return nums[0], nums[1], nums[2], nil
}
