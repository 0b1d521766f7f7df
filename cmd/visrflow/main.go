// Package main implements visrflow, a command that builds a demonstration
// signal flow from configuration and processes it block by block.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/s3a-spatialaudio/VISR-sub001/component"
	"github.com/s3a-spatialaudio/VISR-sub001/config"
	flowengine "github.com/s3a-spatialaudio/VISR-sub001/engine"
	"github.com/s3a-spatialaudio/VISR-sub001/health"
	"github.com/s3a-spatialaudio/VISR-sub001/metric"
	"github.com/s3a-spatialaudio/VISR-sub001/natsclient"
	"github.com/s3a-spatialaudio/VISR-sub001/protocolregistry"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "visrflow"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	cli, err := parseFlags(args, stderr)
	if err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	if err := validateFlags(cli); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	switch {
	case cli.ShowVersion:
		_, _ = fmt.Fprintf(stdout, "%s version %s\n", appName, Version)
		return nil
	case cli.ShowHelp:
		cli.usage()
		return nil
	case cli.PrintSchema:
		_, err := stdout.Write(config.Schema())
		return err
	}

	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}

	logger := newLogger(stdout, cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)
	logger.Info("Starting visrflow",
		"build_time", BuildTime,
		"config_paths", cli.ConfigPaths,
		"period", cfg.Flow.Period,
		"sampling_frequency", cfg.Flow.SamplingFrequency)

	ctx := context.Background()
	return execute(ctx, cli, cfg, logger)
}

// loadConfig layers the configuration files, applies flag overrides and validates
// the result.
func loadConfig(cli *CLIConfig) (*config.Config, error) {
	loader := config.NewLoader()
	for _, path := range cli.ConfigPaths {
		loader.AddLayer(path)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	cli.apply(cfg)
	if err := config.ValidateSchema(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config.NewSafeConfig(cfg).Get(), nil
}

func execute(ctx context.Context, cli *CLIConfig, cfg *config.Config, logger *slog.Logger) error {
	registry := metric.NewMetricsRegistry()
	opts := []component.ContextOption{
		component.WithLogger(logger),
		component.WithMetrics(registry.FlowMetrics()),
	}

	var nc *natsclient.Client
	if cfg.NATS.Enabled && !cli.Validate {
		var err error
		nc, err = connectToNATS(ctx, cfg.NATS.URL, logger)
		if err != nil {
			return err
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), cli.ShutdownTimeout)
			defer cancel()
			if err := nc.Close(closeCtx); err != nil {
				logger.Warn("NATS close failed", "error", err)
			}
		}()
		opts = append(opts, component.WithNATS(nc.Conn()))
	}

	_, protocols, err := protocolregistry.New()
	if err != nil {
		return fmt.Errorf("register protocols: %w", err)
	}
	opts = append(opts, component.WithProtocols(protocols))

	sfc, err := component.NewContext(cfg.Flow.Period, cfg.Flow.SamplingFrequency, opts...)
	if err != nil {
		return fmt.Errorf("create signal flow context: %w", err)
	}

	demo, err := buildDemo(sfc, cfg.Demo)
	if err != nil {
		return fmt.Errorf("build demo graph: %w", err)
	}
	defer func() { _ = demo.root.Close() }()

	flow, err := flowengine.New(demo.root)
	if err != nil {
		return fmt.Errorf("build flow: %w", err)
	}
	defer func() { _ = flow.Close() }()

	r, err := newRunner(flow, demo.root, cfg, logger)
	if err != nil {
		return fmt.Errorf("configure runner: %w", err)
	}
	if cli.Validate {
		logger.Info("Configuration is valid", "components", len(flow.Order()))
		return nil
	}

	if err := r.inject(portGain, cfg.Demo.Gain); err != nil {
		return err
	}
	demo.sink.OnValue = func(v float64) {
		logger.Info("Event received", "value", v, "block", flow.Blocks())
	}
	if nc != nil {
		sub, err := r.subscribe(nc.Conn())
		if err != nil {
			return err
		}
		defer func() { _ = sub.Unsubscribe() }()
	}

	monitor := health.NewMonitor()
	r.watch(monitor)

	var server *metric.Server
	if cfg.Metrics.Enabled {
		server = metric.NewServer(cfg.Metrics.Port, cfg.Metrics.Path, registry)
		server.SetHealthHandler(health.Handler(monitor, appName))
		logger.Info("Serving metrics", "address", server.Address())
	}

	return runWithSignalHandling(ctx, r, server, cli.ShutdownTimeout, logger)
}

// connectToNATS establishes the NATS connection used for status publishing and
// control messages.
func connectToNATS(ctx context.Context, url string, logger *slog.Logger) (*natsclient.Client, error) {
	client, err := natsclient.NewClient(url,
		natsclient.WithName(appName),
		natsclient.WithLogger(logger),
		natsclient.WithMaxReconnects(5))
	if err != nil {
		return nil, fmt.Errorf("create NATS client: %w", err)
	}

	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Connect(connCtx); err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	if err := client.WaitForConnection(connCtx); err != nil {
		return nil, fmt.Errorf("NATS connection timeout: %w", err)
	}
	return client, nil
}

// runWithSignalHandling runs the processing loop next to the metrics server until
// the run completes, a signal arrives or either side fails.
func runWithSignalHandling(ctx context.Context, r *runner, server *metric.Server,
	shutdownTimeout time.Duration, logger *slog.Logger) error {
	signalCtx, signalCancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	g, gctx := errgroup.WithContext(signalCtx)
	done, finish := context.WithCancel(gctx)
	defer finish()

	g.Go(func() error {
		defer finish()
		return r.Run(gctx)
	})

	if server != nil {
		g.Go(func() error { return server.Run(done, shutdownTimeout) })
	}

	g.Go(func() error {
		<-done.Done()
		if signalCtx.Err() != nil && ctx.Err() == nil {
			logger.Info("Received shutdown signal")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	logger.Info("visrflow shutdown complete")
	return nil
}
