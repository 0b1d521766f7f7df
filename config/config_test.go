package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s3a-spatialaudio/VISR-sub001/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoader_Defaults(t *testing.T) {
	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
	assert.NoError(t, cfg.Validate())
	assert.NoError(t, ValidateSchema(cfg))
}

func TestLoader_LoadJSON(t *testing.T) {
	path := writeFile(t, "visr.json", `{
		"flow": {"period": 128, "sampling_frequency": 44100, "realtime": true},
		"logging": {"level": "debug"},
		"demo": {"events": [{"block": 3, "port": "gain", "value": 0.1}]}
	}`)

	loader := NewLoader()
	loader.EnableValidation(true)
	cfg, err := loader.LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 128, cfg.Flow.Period)
	assert.Equal(t, 44100.0, cfg.Flow.SamplingFrequency)
	assert.True(t, cfg.Flow.Realtime)
	assert.Equal(t, 750, cfg.Flow.Blocks, "unset fields keep their defaults")
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, []Event{{Block: 3, Port: "gain", Value: 0.1}}, cfg.Demo.Events)
}

func TestLoader_LoadYAML(t *testing.T) {
	path := writeFile(t, "visr.yaml", `
flow:
  period: 32
  blocks: 10
metrics:
  enabled: true
  port: 9100
demo:
  channels: 4
  gain: 0.8
`)

	cfg, err := NewLoader().LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 32, cfg.Flow.Period)
	assert.Equal(t, 10, cfg.Flow.Blocks)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 9100, cfg.Metrics.Port)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, 4, cfg.Demo.Channels)
	assert.Equal(t, 0.8, cfg.Demo.Gain)
}

func TestLoader_MergeLayers(t *testing.T) {
	base := writeFile(t, "base.yaml", `
flow:
  period: 256
  blocks: 100
nats:
  url: nats://base:4222
`)
	override := writeFile(t, "override.json", `{"flow": {"blocks": 20}, "nats": {"enabled": true}}`)

	loader := NewLoader()
	loader.AddLayer(base)
	loader.AddLayer(override)
	loader.EnableValidation(true)
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, 256, cfg.Flow.Period)
	assert.Equal(t, 20, cfg.Flow.Blocks)
	assert.Equal(t, "nats://base:4222", cfg.NATS.URL)
	assert.True(t, cfg.NATS.Enabled)
}

func TestLoader_EnvOverrides(t *testing.T) {
	t.Setenv("VISR_PERIOD", "512")
	t.Setenv("VISR_SAMPLING_FREQUENCY", "96000")
	t.Setenv("VISR_REALTIME", "true")
	t.Setenv("VISR_LOG_FORMAT", "text")
	t.Setenv("VISR_NATS_URL", "nats://env:4222")
	t.Setenv("VISR_GAIN", "0.125")

	path := writeFile(t, "visr.json", `{"flow": {"period": 128}}`)
	cfg, err := NewLoader().LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 512, cfg.Flow.Period, "environment wins over files")
	assert.Equal(t, 96000.0, cfg.Flow.SamplingFrequency)
	assert.True(t, cfg.Flow.Realtime)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "nats://env:4222", cfg.NATS.URL)
	assert.Equal(t, 0.125, cfg.Demo.Gain)
}

func TestLoader_EnvOverrideParseError(t *testing.T) {
	t.Setenv("VISR_BLOCKS", "many")

	_, err := NewLoader().Load()
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "VISR_BLOCKS")
}

func TestLoader_EnvPrefix(t *testing.T) {
	t.Setenv("TEST_PERIOD", "16")
	t.Setenv("VISR_PERIOD", "999")

	loader := NewLoader()
	loader.SetEnvPrefix("TEST")
	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Flow.Period)
}

func TestLoader_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{"negative period fails schema", `{"flow": {"period": -4}}`, "schema validation failed"},
		{"unknown log level fails schema", `{"logging": {"level": "loud"}}`, "schema validation failed"},
		{"event without port", `{"demo": {"events": [{"block": 1, "port": "", "value": 1}]}}`, "schema validation failed"},
		{"event after the last block", `{"flow": {"blocks": 5}, "demo": {"events": [{"block": 5, "port": "gain", "value": 1}]}}`, "beyond the last block"},
		{"metrics path without slash", `{"metrics": {"enabled": true, "path": "metrics"}}`, "metrics.path"},
		{"nats enabled without url", `{"nats": {"enabled": true, "url": ""}}`, "nats.url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "visr.json", tt.content)
			loader := NewLoader()
			loader.EnableValidation(true)

			_, err := loader.LoadFile(path)
			require.Error(t, err)
			assert.True(t, errors.IsInvalid(err))
			assert.ErrorIs(t, err, errors.ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.wantMsg)

			loader.EnableValidation(false)
			_, err = loader.LoadFile(path)
			assert.NoError(t, err)
		})
	}
}

func TestLoader_FileErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := NewLoader().LoadFile(filepath.Join(t.TempDir(), "absent.json"))
		require.Error(t, err)
		assert.True(t, errors.IsInvalid(err))
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := writeFile(t, "visr.toml", `period = 1`)
		_, err := NewLoader().LoadFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "only JSON or YAML")
	})

	t.Run("malformed json", func(t *testing.T) {
		path := writeFile(t, "visr.json", `{"flow": {"period": 1}`)
		_, err := NewLoader().LoadFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unclosed brackets")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeFile(t, "visr.yaml", "flow: [unterminated")
		_, err := NewLoader().LoadFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid YAML")
	})

	t.Run("relative path escaping the working directory", func(t *testing.T) {
		_, err := NewLoader().LoadFile("../../outside.json")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "path traversal")
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{"defaults", func(*Config) {}, ""},
		{"bad version", func(c *Config) { c.Version = "1.0" }, "version"},
		{"zero period", func(c *Config) { c.Flow.Period = 0 }, "flow.period"},
		{"zero sampling frequency", func(c *Config) { c.Flow.SamplingFrequency = 0 }, "flow.sampling_frequency"},
		{"negative blocks", func(c *Config) { c.Flow.Blocks = -1 }, "flow.blocks"},
		{"unbounded run", func(c *Config) { c.Flow.Blocks = 0 }, ""},
		{"bad level", func(c *Config) { c.Logging.Level = "trace" }, "log level"},
		{"upper case level", func(c *Config) { c.Logging.Level = "WARN" }, ""},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "log format"},
		{"bad metrics port", func(c *Config) { c.Metrics.Enabled = true; c.Metrics.Port = 70000 }, "metrics port"},
		{"metrics port ignored when disabled", func(c *Config) { c.Metrics.Port = 0 }, ""},
		{"no channels", func(c *Config) { c.Demo.Channels = 0 }, "demo.channels"},
		{"negative event block", func(c *Config) {
			c.Demo.Events = []Event{{Block: -1, Port: "gain"}}
		}, "demo.events[0].block"},
		{"event in unbounded run", func(c *Config) {
			c.Flow.Blocks = 0
			c.Demo.Events = []Event{{Block: 100000, Port: "gain"}}
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestConfig_SaveRoundTrip(t *testing.T) {
	cfg := Defaults()
	cfg.Flow.Period = 16
	cfg.Demo.Events = []Event{{Block: 2, Port: "events", Value: 4}}

	for _, name := range []string{"saved.json", "saved.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, cfg.SaveToFile(path))

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

			loaded, err := NewLoader().LoadFile(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)
		})
	}

	err := cfg.SaveToFile(filepath.Join(t.TempDir(), "saved.ini"))
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		v1, v2 string
		want   int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.2.0", "1.10.0", -1},
		{"v2.0.0", "1.9.9", 1},
		{"1.0.1", "1.0.0", 1},
	}
	for _, tt := range tests {
		got, err := CompareVersions(tt.v1, tt.v2)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s vs %s", tt.v1, tt.v2)
	}

	_, err := CompareVersions("1.0", "1.0.0")
	assert.Error(t, err)
	_, err = CompareVersions("1.0.0", "")
	assert.Error(t, err)
}

func TestValidateJSONDepth(t *testing.T) {
	assert.NoError(t, validateJSONDepth([]byte(`{"a": "}}}{{{", "b": [1, 2, {"c": "\"]"}]}`)))

	deep := make([]byte, 0, 2*(maxJSONDepth+1))
	for i := 0; i <= maxJSONDepth; i++ {
		deep = append(deep, '[')
	}
	for i := 0; i <= maxJSONDepth; i++ {
		deep = append(deep, ']')
	}
	assert.ErrorContains(t, validateJSONDepth(deep), "too deep")
	assert.ErrorContains(t, validateJSONDepth([]byte(`]`)), "unbalanced")
}
