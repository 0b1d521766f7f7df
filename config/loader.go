package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/s3a-spatialaudio/VISR-sub001/errors"
)

// DefaultEnvPrefix is the prefix of environment overrides, e.g. VISR_PERIOD.
const DefaultEnvPrefix = "VISR"

type fileFormat int

const (
	formatUnknown fileFormat = iota
	formatJSON
	formatYAML
)

func formatOf(path string) fileFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return formatJSON
	case ".yaml", ".yml":
		return formatYAML
	default:
		return formatUnknown
	}
}

func marshalFor(path string, c *Config) ([]byte, error) {
	switch formatOf(path) {
	case formatYAML:
		return yaml.Marshal(c)
	case formatJSON:
		return json.MarshalIndent(c, "", "  ")
	default:
		return nil, errors.Invalidf(errors.ErrInvalidConfig, "Config", "SaveToFile",
			"unsupported config file extension: %s", path)
	}
}

// Loader handles configuration loading with layers and overrides
type Loader struct {
	layers     []string
	validation bool
	envPrefix  string
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		layers:     []string{},
		validation: false,
		envPrefix:  DefaultEnvPrefix,
	}
}

// AddLayer adds a configuration file layer. Later layers override earlier ones.
func (l *Loader) AddLayer(path string) {
	l.layers = append(l.layers, path)
}

// EnableValidation enables or disables schema and semantic validation
func (l *Loader) EnableValidation(enable bool) {
	l.validation = enable
}

// SetEnvPrefix changes the environment override prefix
func (l *Loader) SetEnvPrefix(prefix string) {
	l.envPrefix = prefix
}

// LoadFile loads configuration from a single file
func (l *Loader) LoadFile(path string) (*Config, error) {
	l.layers = []string{path}
	return l.Load()
}

// Load applies defaults, every layer in order, then environment overrides, and
// validates the result if enabled.
func (l *Loader) Load() (*Config, error) {
	cfg := Defaults()

	for _, path := range l.layers {
		raw, err := l.loadRaw(path)
		if err != nil {
			return nil, errors.WrapInvalid(err, "Loader", "Load", fmt.Sprintf("load %s", path))
		}
		cfg, err = l.mergeFromMap(cfg, raw)
		if err != nil {
			return nil, errors.WrapInvalid(err, "Loader", "Load", fmt.Sprintf("merge %s", path))
		}
	}

	if err := l.applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if l.validation {
		if err := ValidateSchema(cfg); err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// loadRaw loads a JSON or YAML file as a map
func (l *Loader) loadRaw(path string) (map[string]any, error) {
	data, err := safeReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	switch formatOf(path) {
	case formatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
	default:
		if err := validateJSONDepth(data); err != nil {
			return nil, fmt.Errorf("invalid JSON structure: %w", err)
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	}
	return raw, nil
}

// mergeFromMap merges configuration from a raw map, only overriding fields present in the map
func (l *Loader) mergeFromMap(base *Config, override map[string]any) (*Config, error) {
	if override == nil {
		return base, nil
	}

	baseJSON, err := json.Marshal(base)
	if err != nil {
		return nil, err
	}
	var baseMap map[string]any
	if err := json.Unmarshal(baseJSON, &baseMap); err != nil {
		return nil, err
	}

	mergedJSON, err := json.Marshal(deepMergeMaps(baseMap, override))
	if err != nil {
		return nil, err
	}
	var merged Config
	if err := json.Unmarshal(mergedJSON, &merged); err != nil {
		return nil, err
	}
	return &merged, nil
}

// deepMergeMaps recursively merges two maps, with override taking precedence
func deepMergeMaps(base, override map[string]any) map[string]any {
	result := make(map[string]any, len(base))
	for k, v := range base {
		result[k] = v
	}

	for k, v := range override {
		if v == nil {
			continue
		}
		if baseMap, ok := base[k].(map[string]any); ok {
			if overrideMap, ok := v.(map[string]any); ok {
				result[k] = deepMergeMaps(baseMap, overrideMap)
				continue
			}
		}
		result[k] = v
	}
	return result
}

// applyEnvOverrides applies environment variable overrides
func (l *Loader) applyEnvOverrides(cfg *Config) error {
	env := func(name string) (string, bool, error) {
		key := l.envPrefix + "_" + name
		val := os.Getenv(key)
		if err := validateEnvVar(key, val); err != nil {
			return "", false, errors.WrapInvalid(err, "Loader", "applyEnvOverrides", "environment check")
		}
		return val, val != "", nil
	}
	parseErr := func(name string, err error) error {
		return errors.Invalidf(errors.ErrInvalidConfig, "Loader", "applyEnvOverrides",
			"%s_%s: %v", l.envPrefix, name, err)
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"PERIOD", &cfg.Flow.Period},
		{"BLOCKS", &cfg.Flow.Blocks},
		{"METRICS_PORT", &cfg.Metrics.Port},
		{"CHANNELS", &cfg.Demo.Channels},
	}
	for _, o := range ints {
		val, ok, err := env(o.name)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		n, err := strconv.Atoi(val)
		if err != nil {
			return parseErr(o.name, err)
		}
		*o.dst = n
	}

	floats := []struct {
		name string
		dst  *float64
	}{
		{"SAMPLING_FREQUENCY", &cfg.Flow.SamplingFrequency},
		{"GAIN", &cfg.Demo.Gain},
	}
	for _, o := range floats {
		val, ok, err := env(o.name)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return parseErr(o.name, err)
		}
		*o.dst = f
	}

	bools := []struct {
		name string
		dst  *bool
	}{
		{"REALTIME", &cfg.Flow.Realtime},
		{"METRICS_ENABLED", &cfg.Metrics.Enabled},
		{"NATS_ENABLED", &cfg.NATS.Enabled},
	}
	for _, o := range bools {
		val, ok, err := env(o.name)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(val)
		if err != nil {
			return parseErr(o.name, err)
		}
		*o.dst = b
	}

	strs := []struct {
		name string
		dst  *string
	}{
		{"LOG_LEVEL", &cfg.Logging.Level},
		{"LOG_FORMAT", &cfg.Logging.Format},
		{"METRICS_PATH", &cfg.Metrics.Path},
		{"NATS_URL", &cfg.NATS.URL},
	}
	for _, o := range strs {
		val, ok, err := env(o.name)
		if err != nil {
			return err
		}
		if ok {
			*o.dst = val
		}
	}
	return nil
}
