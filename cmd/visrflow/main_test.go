package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s3a-spatialaudio/VISR-sub001/component"
	"github.com/s3a-spatialaudio/VISR-sub001/config"
	flowengine "github.com/s3a-spatialaudio/VISR-sub001/engine"
	"github.com/s3a-spatialaudio/VISR-sub001/errors"
	"github.com/s3a-spatialaudio/VISR-sub001/health"
	visrtest "github.com/s3a-spatialaudio/VISR-sub001/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseFlags(t *testing.T) {
	cli, err := parseFlags([]string{
		"--config=a.json,b.yaml", "-c", "c.yml",
		"--blocks=12", "--realtime", "--log-level=debug", "--nats-url=nats://x:4222",
	}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.json", "b.yaml", "c.yml"}, cli.ConfigPaths)
	assert.Equal(t, 12, cli.Blocks)
	assert.True(t, cli.isSet("realtime"))
	assert.False(t, cli.isSet("log-format"))

	cfg := config.Defaults()
	cli.apply(cfg)
	assert.Equal(t, 12, cfg.Flow.Blocks)
	assert.True(t, cfg.Flow.Realtime)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format, "unset flags keep the configured value")
	assert.True(t, cfg.NATS.Enabled)
	assert.Equal(t, "nats://x:4222", cfg.NATS.URL)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestParseFlags_EnvConfig(t *testing.T) {
	t.Setenv("VISRFLOW_CONFIG", "env.json")
	cli, err := parseFlags(nil, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, []string{"env.json"}, cli.ConfigPaths)

	cli, err = parseFlags([]string{"--config=flag.json"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, []string{"flag.json"}, cli.ConfigPaths)
}

func TestValidateFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"defaults", nil, ""},
		{"missing config", []string{"--config=/does/not/exist.json"}, "config file not found"},
		{"bad level", []string{"--log-level=loud"}, "invalid log level"},
		{"bad format", []string{"--log-format=xml"}, "invalid log format"},
		{"negative blocks", []string{"--blocks=-1"}, "invalid block count"},
		{"bad metrics port", []string{"--metrics-port=70000"}, "invalid metrics port"},
		{"version skips checks", []string{"--version", "--blocks=-1"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli, err := parseFlags(tt.args, io.Discard)
			require.NoError(t, err)
			err = validateFlags(cli)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestParseFlags_Unknown(t *testing.T) {
	_, err := parseFlags([]string{"--no-such-flag"}, io.Discard)
	assert.Error(t, err)
}

func newDemoFlow(t *testing.T, cfg *config.Config) (*demoGraph, *flowengine.Flow, *runner) {
	t.Helper()
	ctx := visrtest.NewContext(t)
	demo, err := buildDemo(ctx, cfg.Demo)
	require.NoError(t, err)
	flow, err := flowengine.New(demo.root)
	require.NoError(t, err)
	t.Cleanup(func() { _ = flow.Close() })

	cfg.Flow.Period = ctx.Period()
	r, err := newRunner(flow, demo.root, cfg, discardLogger())
	require.NoError(t, err)
	return demo, flow, r
}

func TestDemoGraph(t *testing.T) {
	cfg := config.Defaults()
	cfg.Demo.Channels = 3
	_, flow, _ := newDemoFlow(t, cfg)

	assert.Equal(t, "valid", flow.Analysis().ValidationStatus)
	order := flow.Order()
	assert.Len(t, order, 6)
	pos := make(map[string]int)
	for i, name := range order {
		pos[name] = i
	}
	assert.Less(t, pos["tone"], pos["amp"])
	assert.Less(t, pos["amp"], pos["mix"])
	assert.Less(t, pos["bias"], pos["mix"])
	assert.Less(t, pos["mix"], pos["meter"])

	out, err := flow.Playback(portOut)
	require.NoError(t, err)
	assert.Equal(t, 3, out.Channels())
}

func TestRunner_EventsAndLevel(t *testing.T) {
	cfg := config.Defaults()
	cfg.Flow.Blocks = 4
	cfg.Demo.Channels = 1
	cfg.Demo.Events = []config.Event{
		{Block: 1, Port: portGain, Value: 0.875},
		{Block: 2, Port: portEvents, Value: 7},
		{Block: 2, Port: portEvents, Value: 8},
	}
	demo, flow, r := newDemoFlow(t, cfg)
	monitor := health.NewMonitor()
	r.watch(monitor)

	pending, ok := monitor.Get(healthProcessing)
	require.True(t, ok)
	assert.True(t, pending.IsDegraded())

	require.NoError(t, r.inject(portGain, 0.5))
	require.NoError(t, r.Run(context.Background()))

	assert.True(t, monitor.AggregateHealth(appName).IsHealthy())
	processing, _ := monitor.Get(healthProcessing)
	require.NotNil(t, processing.Metrics)
	assert.Equal(t, uint64(4), processing.Metrics.BlocksProcessed)

	assert.Equal(t, uint64(4), flow.Blocks())
	assert.Equal(t, []float64{7, 8}, demo.sink.Received)
	assert.Equal(t, 0.875, demo.amp.Current())
	// tone 1.0 * 0.875 + bias 0.125
	assert.InDelta(t, 1.0, r.lastLevel, 1e-6)
	assert.Equal(t, 4, r.injected)

	out, err := flow.Playback(portOut)
	require.NoError(t, err)
	assert.Equal(t, visrtest.DefaultPeriod, out.Length())
}

func TestRunner_ControlMessages(t *testing.T) {
	nc := visrtest.NATSConnection(t)

	cfg := config.Defaults()
	cfg.Flow.Blocks = 2
	cfg.Demo.Channels = 1
	demo, _, r := newDemoFlow(t, cfg)

	sub, err := r.subscribe(nc)
	require.NoError(t, err)
	defer sub.Unsubscribe()

	require.NoError(t, nc.Publish(controlPrefix+portGain, []byte(`{"value":0.25}`)))
	require.NoError(t, nc.Publish(controlPrefix+portEvents, []byte(`{"value":3}`)))
	require.NoError(t, nc.Publish(controlPrefix+portEvents, []byte(`not json`)))
	require.NoError(t, nc.Publish(controlPrefix+"volume", []byte(`{"value":1}`)))
	require.NoError(t, nc.Flush())
	require.Eventually(t, func() bool { return len(r.control) == 4 }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, 0.25, demo.amp.Current())
	assert.Equal(t, []float64{3}, demo.sink.Received)
	assert.Equal(t, 2, r.injected)
}

func TestRunner_UnknownEventPort(t *testing.T) {
	cfg := config.Defaults()
	cfg.Demo.Events = []config.Event{{Block: 0, Port: "volume", Value: 1}}

	ctx := visrtest.NewContext(t)
	demo, err := buildDemo(ctx, cfg.Demo)
	require.NoError(t, err)
	flow, err := flowengine.New(demo.root)
	require.NoError(t, err)
	defer flow.Close()

	_, err = newRunner(flow, demo.root, cfg, discardLogger())
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
	assert.ErrorIs(t, err, errors.ErrNotFound)
	assert.Contains(t, err.Error(), `"volume"`)
}

func TestRunner_StopsOnCancel(t *testing.T) {
	cfg := config.Defaults()
	cfg.Flow.Blocks = 0
	_, flow, r := newDemoFlow(t, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.NoError(t, r.Run(ctx))
	assert.Positive(t, flow.Blocks())
}

func TestRunner_RealtimePacing(t *testing.T) {
	cfg := config.Defaults()
	cfg.Flow.Blocks = 6
	cfg.Flow.Realtime = true
	// 32 samples at 1600 Hz is 50 blocks per second.
	cfg.Flow.SamplingFrequency = 1600
	_, flow, r := newDemoFlow(t, cfg)

	start := time.Now()
	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, uint64(6), flow.Blocks())
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestRunner_FailureAborts(t *testing.T) {
	cfg := config.Defaults()
	cfg.Flow.Blocks = 10
	ctx := visrtest.NewContext(t)
	demo, err := buildDemo(ctx, cfg.Demo)
	require.NoError(t, err)

	mock := &visrtest.MockProcessor{Err: errors.New("boom")}
	_, err = component.NewAtomic(ctx, "broken", demo.root, mock)
	require.NoError(t, err)

	flow, err := flowengine.New(demo.root)
	require.NoError(t, err)
	defer flow.Close()
	r, err := newRunner(flow, demo.root, cfg, discardLogger())
	require.NoError(t, err)
	monitor := health.NewMonitor()
	r.watch(monitor)

	err = r.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsFatal(err))
	processing, _ := monitor.Get(healthProcessing)
	assert.True(t, processing.IsUnhealthy())
	assert.Contains(t, processing.Message, "boom")
	assert.Equal(t, 1, mock.Calls())
	assert.Zero(t, flow.Blocks())
}

func TestRun_Commands(t *testing.T) {
	t.Run("version", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, run([]string{"--version"}, &out, io.Discard))
		assert.Equal(t, "visrflow version "+Version+"\n", out.String())
	})

	t.Run("help", func(t *testing.T) {
		var errOut bytes.Buffer
		require.NoError(t, run([]string{"--help"}, io.Discard, &errOut))
		assert.Contains(t, errOut.String(), "-print-schema")
	})

	t.Run("print schema", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, run([]string{"--print-schema"}, &out, io.Discard))
		var schema map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &schema))
		assert.Contains(t, schema, "properties")
	})

	t.Run("invalid configuration", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"flow": {"period": 0}}`), 0600))
		err := run([]string{"--config=" + path}, io.Discard, io.Discard)
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrInvalidConfig)
	})
}

func TestRun_ValidateOnly(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"--validate", "--log-format=text"}, &out, io.Discard))
	assert.Contains(t, out.String(), "Configuration is valid")
	assert.NotContains(t, out.String(), "Processing started")
}

func TestRun_EndToEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "visr.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
flow:
  period: 16
  blocks: 8
demo:
  channels: 2
  gain: 0.25
  events:
    - {block: 3, port: events, value: 42}
`), 0600))

	var out bytes.Buffer
	require.NoError(t, run([]string{"--config=" + path, "--log-format=text"}, &out, io.Discard))

	logs := out.String()
	for _, want := range []string{
		"Flow built", "Processing started", "Event received", "value=42",
		"Processing stopped", "blocks=8", "visrflow shutdown complete",
	} {
		assert.True(t, strings.Contains(logs, want), "missing %q in logs", want)
	}
}
