package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"golang.org/x/time/rate"

	"github.com/s3a-spatialaudio/VISR-sub001/component"
	"github.com/s3a-spatialaudio/VISR-sub001/config"
	flowengine "github.com/s3a-spatialaudio/VISR-sub001/engine"
	"github.com/s3a-spatialaudio/VISR-sub001/errors"
	"github.com/s3a-spatialaudio/VISR-sub001/health"
	"github.com/s3a-spatialaudio/VISR-sub001/parameter"
	"github.com/s3a-spatialaudio/VISR-sub001/protocol/doublebuffering"
	"github.com/s3a-spatialaudio/VISR-sub001/protocol/messagequeue"
)

// Health status names reported by the runner.
const (
	healthFlow       = "flow"
	healthProcessing = "processing"
)

// controlPrefix is the subject prefix of parameter values sent over NATS. The
// last token names the top-level parameter input, e.g. visrflow.control.gain.
const controlPrefix = "visrflow.control."

// injector delivers one value to a top-level parameter input.
type injector func(value float64) error

// runner drives a flow block by block. All endpoint access happens on the
// goroutine calling Run.
type runner struct {
	flow      *flowengine.Flow
	logger    *slog.Logger
	blocks    int
	limiter   *rate.Limiter
	injectors map[string]injector
	schedule  map[int][]config.Event
	level     *doublebuffering.Input[parameter.Parameter]
	control   chan *nats.Msg
	monitor   *health.Monitor

	lastLevel float64
	injected  int
}

func newRunner(flow *flowengine.Flow, top component.Component, cfg *config.Config, logger *slog.Logger) (*runner, error) {
	r := &runner{
		flow:      flow,
		logger:    logger,
		blocks:    cfg.Flow.Blocks,
		injectors: make(map[string]injector),
		schedule:  make(map[int][]config.Event),
	}
	if cfg.Flow.Realtime {
		blocksPerSecond := cfg.Flow.SamplingFrequency / float64(cfg.Flow.Period)
		r.limiter = rate.NewLimiter(rate.Limit(blocksPerSecond), 1)
	}

	for _, p := range top.ParameterPorts() {
		if p.Direction() != component.Input {
			continue
		}
		inj, err := r.injectorFor(p)
		if err != nil {
			return nil, err
		}
		if inj != nil {
			r.injectors[p.Name()] = inj
		}
	}

	for _, ev := range cfg.Demo.Events {
		if _, ok := r.injectors[ev.Port]; !ok {
			return nil, errors.Invalidf(errors.ErrNotFound, "runner", "New",
				"event for block %d targets unknown parameter input %q", ev.Block, ev.Port)
		}
		r.schedule[ev.Block] = append(r.schedule[ev.Block], ev)
	}

	if lvl, err := flowengine.Reader[*doublebuffering.Input[parameter.Parameter]](flow, portLevel); err == nil {
		r.level = lvl
	}
	return r, nil
}

func (r *runner) injectorFor(p component.ParameterPort) (injector, error) {
	switch p.ProtocolType() {
	case doublebuffering.Type:
		w, err := flowengine.Writer[*doublebuffering.Output[parameter.Parameter]](r.flow, p.Name())
		if err != nil {
			return nil, err
		}
		return func(v float64) error {
			if err := w.SetData(parameter.NewScalar(v)); err != nil {
				return err
			}
			return w.SwapBuffers()
		}, nil
	case messagequeue.Type:
		w, err := flowengine.Writer[*messagequeue.Output[parameter.Parameter]](r.flow, p.Name())
		if err != nil {
			return nil, err
		}
		return func(v float64) error { return w.Enqueue(parameter.NewScalar(v)) }, nil
	default:
		return nil, nil
	}
}

// subscribe forwards parameter values published on NATS to the processing loop.
func (r *runner) subscribe(nc *nats.Conn) (*nats.Subscription, error) {
	r.control = make(chan *nats.Msg, 64)
	sub, err := nc.ChanSubscribe(controlPrefix+"*", r.control)
	if err != nil {
		return nil, errors.WrapFatal(err, "runner", "subscribe", "subscribe to "+controlPrefix+"*")
	}
	return sub, nil
}

func (r *runner) inject(port string, value float64) error {
	inj, ok := r.injectors[port]
	if !ok {
		return errors.Invalidf(errors.ErrNotFound, "runner", "inject", "parameter input %q", port)
	}
	if err := inj(value); err != nil {
		return errors.Wrap(err, "runner", "inject", "deliver value to "+port)
	}
	r.injected++
	return nil
}

// drainControl applies every pending NATS control message. Malformed messages
// are logged and dropped.
func (r *runner) drainControl() {
	if r.control == nil {
		return
	}
	for {
		select {
		case msg := <-r.control:
			port := strings.TrimPrefix(msg.Subject, controlPrefix)
			var v parameter.Scalar[float64]
			if err := json.Unmarshal(msg.Data, &v); err != nil {
				r.logger.Warn("Dropping malformed control message", "subject", msg.Subject, "error", err)
				continue
			}
			if err := r.inject(port, v.Value); err != nil {
				r.logger.Warn("Dropping control message", "subject", msg.Subject, "error", err)
			}
		default:
			return
		}
	}
}

// Run processes blocks until the configured count is reached or ctx is done.
// Cancellation is a regular stop. A failing block aborts the run.
func (r *runner) Run(ctx context.Context) error {
	r.logger.Info("Processing started", "blocks", r.blocks, "realtime", r.limiter != nil)
	progress := health.Run{Started: time.Now()}
	r.report(progress)

	for b := 0; r.blocks == 0 || b < r.blocks; b++ {
		if ctx.Err() != nil {
			break
		}
		r.drainControl()
		for _, ev := range r.schedule[b] {
			if err := r.inject(ev.Port, ev.Value); err != nil {
				progress.Err = err
				r.report(progress)
				return err
			}
			r.logger.Debug("Event injected", "block", b, "port", ev.Port, "value", ev.Value)
		}
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				break
			}
		}
		if err := r.flow.Process(); err != nil {
			progress.Err = err
			r.report(progress)
			return err
		}
		r.readLevel()
		progress.Blocks, progress.LastBlock = r.flow.Blocks(), time.Now()
		r.report(progress)
	}

	r.logger.Info("Processing stopped", "blocks", r.flow.Blocks(), "level", r.lastLevel, "injected", r.injected)
	return nil
}

// watch publishes the build analysis and the processing progress to m.
func (r *runner) watch(m *health.Monitor) {
	r.monitor = m
	m.Update(healthFlow, health.FromAnalysis(healthFlow, r.flow.Analysis()))
	m.Update(healthProcessing, health.FromRun(healthProcessing, health.Run{}))
}

func (r *runner) report(progress health.Run) {
	if r.monitor != nil {
		r.monitor.Update(healthProcessing, health.FromRun(healthProcessing, progress))
	}
}

func (r *runner) readLevel() {
	if r.level == nil || !r.level.Changed() {
		return
	}
	r.level.ResetChanged()
	p, err := r.level.Data()
	if err != nil {
		return
	}
	if s, err := parameter.As[*parameter.Scalar[float64]](p); err == nil {
		r.lastLevel = s.Value
	}
}
