package flowengine

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/s3a-spatialaudio/VISR-sub001/audio"
	"github.com/s3a-spatialaudio/VISR-sub001/component"
	"github.com/s3a-spatialaudio/VISR-sub001/component/flowgraph"
	"github.com/s3a-spatialaudio/VISR-sub001/errors"
	"github.com/s3a-spatialaudio/VISR-sub001/metric"
	"github.com/s3a-spatialaudio/VISR-sub001/protocol"
)

// Option configures a Flow.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	metrics *metric.Metrics
}

// WithLogger overrides the logger taken from the top-level component's context.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics overrides the metric set taken from the top-level component's context.
func WithMetrics(m *metric.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// channelCopy moves one channel from a source buffer into a port buffer.
type channelCopy struct {
	dst   audio.Buffer
	dstCh int
	src   audio.Buffer
	srcCh int
}

// step is one atomic component of the schedule with the copies feeding its inputs.
type step struct {
	node   *flowgraph.Node
	copies []channelCopy
}

// Flow is an executable signal flow built from a component hierarchy.
type Flow struct {
	id      string
	top     component.Component
	graph   *flowgraph.FlowGraph
	result  flowgraph.AnalysisResult
	period  int
	logger  *slog.Logger
	metrics flowMetrics

	steps      []step
	outCopies  []channelCopy
	topOutputs []component.AudioPort
	bound      []component.AudioPort
	capture    map[string]audio.Buffer
	playback   map[string]audio.Buffer

	instances []*instance
	writers   map[string]protocol.Output
	readers   map[string]protocol.Input

	mu     sync.Mutex
	blocks uint64
	failed error
	closed bool
}

// New resolves the hierarchy rooted at top into an executable flow.
//
// The hierarchy must not be modified while the flow is open. A failed build
// releases every buffer and endpoint it attached.
func New(top component.Component, opts ...Option) (*Flow, error) {
	if top == nil {
		return nil, errors.WrapFatal(errors.ErrMissingConfig, "Flow", "New", "nil top-level component")
	}
	start := time.Now()
	top = component.Canonical(top)
	ctx := top.Context()

	o := options{logger: ctx.Logger(), metrics: ctx.Metrics()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	f := &Flow{
		id:       ctx.FlowID(),
		top:      top,
		period:   ctx.Period(),
		capture:  make(map[string]audio.Buffer),
		playback: make(map[string]audio.Buffer),
		writers:  make(map[string]protocol.Output),
		readers:  make(map[string]protocol.Input),
	}
	f.logger = o.logger.With("flow_id", f.id, "top", top.Name())
	f.metrics = flowMetrics{m: o.metrics, flow: f.id}

	if err := f.build(ctx); err != nil {
		f.release()
		return nil, err
	}

	elapsed := time.Since(start)
	f.metrics.recordBuild(elapsed)
	f.logger.Info("Flow built",
		"components", len(f.steps),
		"audio_edges", len(f.graph.AudioEdges()),
		"protocol_instances", len(f.instances),
		"status", f.result.ValidationStatus,
		"duration", elapsed)
	return f, nil
}

func (f *Flow) build(ctx *component.SignalFlowContext) error {
	g, err := flowgraph.Build(f.top)
	if err != nil {
		return errors.Wrap(err, "Flow", "New", "graph resolution")
	}
	f.graph = g

	result, err := validate(g, f.logger)
	f.result = result
	if err != nil {
		return errors.WrapInvalid(err, "Flow", "New", "graph analysis")
	}

	order, err := g.TopologicalOrder()
	if err != nil {
		return errors.Wrap(err, "Flow", "New", "scheduling")
	}

	if err := f.bindBuffers(); err != nil {
		return err
	}

	for _, n := range order {
		s := step{node: n}
		for _, p := range n.Component.AudioPorts() {
			if p.Direction() != component.Input || g.IsExternal(p.Owner()) {
				continue
			}
			s.copies = append(s.copies, f.copiesInto(p)...)
		}
		f.steps = append(f.steps, s)
	}
	if f.top.IsComposite() {
		for _, p := range f.top.AudioPorts() {
			if p.Direction() == component.Output {
				f.topOutputs = append(f.topOutputs, p)
				f.outCopies = append(f.outCopies, f.copiesInto(p)...)
			}
		}
	}

	reg := ctx.Protocols()
	if reg == nil {
		if len(g.ParameterGroups()) > 0 {
			return errors.Usagef(errors.ErrUnregisteredType, "Flow", "New",
				"context of %s has no protocol registry", f.top.Name())
		}
		return nil
	}
	return f.connectParameters(reg)
}

// bindBuffers gives every atomic port and every top-level port its own buffer.
func (f *Flow) bindBuffers() error {
	var ports []component.AudioPort
	for _, n := range f.graph.Nodes() {
		if n.Component == f.top {
			continue
		}
		ports = append(ports, n.Component.AudioPorts()...)
	}
	external := f.top.AudioPorts()
	ports = append(ports, external...)

	for _, p := range ports {
		buf, err := audio.NewBuffer(p.SampleType(), p.Width(), f.period)
		if err != nil {
			return errors.Wrap(err, "Flow", "New", "buffer allocation for "+p.FullName())
		}
		if err := p.Bind(buf); err != nil {
			return errors.Wrap(err, "Flow", "New", "buffer binding")
		}
		f.bound = append(f.bound, p)
	}
	for _, p := range external {
		if p.Direction() == component.Input {
			f.capture[p.Name()] = p.Buffer()
		} else {
			f.playback[p.Name()] = p.Buffer()
		}
	}
	return nil
}

func (f *Flow) copiesInto(p component.AudioPort) []channelCopy {
	var copies []channelCopy
	for ch := 0; ch < p.Width(); ch++ {
		src, ok := f.graph.Source(p, ch)
		if !ok {
			continue
		}
		copies = append(copies, channelCopy{
			dst:   p.Buffer(),
			dstCh: ch,
			src:   src.Port.Buffer(),
			srcCh: src.Channel,
		})
	}
	return copies
}

func runCopies(copies []channelCopy) error {
	for _, c := range copies {
		if err := c.dst.CopyChannel(c.dstCh, c.src, c.srcCh); err != nil {
			return err
		}
	}
	return nil
}

// ID returns the unique id of this flow instance.
func (f *Flow) ID() string { return f.id }

// Graph returns the resolved graph.
func (f *Flow) Graph() *flowgraph.FlowGraph { return f.graph }

// Analysis returns the connectivity analysis performed at build time.
func (f *Flow) Analysis() flowgraph.AnalysisResult { return f.result }

// Order returns the full names of the atomic components in execution order.
func (f *Flow) Order() []string {
	names := make([]string, len(f.steps))
	for i, s := range f.steps {
		names[i] = s.node.Name
	}
	return names
}

// Blocks returns the number of blocks processed successfully.
func (f *Flow) Blocks() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.blocks
}

// Capture returns the buffer of a top-level audio input. The host fills it before
// each Process call.
func (f *Flow) Capture(port string) (audio.Buffer, error) {
	buf, ok := f.capture[port]
	if !ok {
		return nil, errors.Invalidf(errors.ErrNotFound, "Flow", "Capture", "top-level audio input %q", port)
	}
	return buf, nil
}

// Playback returns the buffer of a top-level audio output. It holds the output of
// the last Process call.
func (f *Flow) Playback(port string) (audio.Buffer, error) {
	buf, ok := f.playback[port]
	if !ok {
		return nil, errors.Invalidf(errors.ErrNotFound, "Flow", "Playback", "top-level audio output %q", port)
	}
	return buf, nil
}

// Process runs one block.
func (f *Flow) Process() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.process()
}

func (f *Flow) process() error {
	if f.closed {
		return errors.Usagef(errors.ErrClosed, "Flow", "Process", "flow %s is closed", f.id)
	}
	if f.failed != nil {
		return f.failed
	}

	for _, s := range f.steps {
		if err := runCopies(s.copies); err != nil {
			return f.fail(errors.WrapInternal(err, "Flow", "Process", "input transfer of "+s.node.Name))
		}
		start := time.Now()
		err := s.node.Component.Process()
		f.metrics.recordProcess(s.node.Name, time.Since(start), err)
		if err != nil {
			s.node.Component.Status(component.StatusCritical, "process failed: %v", err)
			return f.fail(errors.WrapFatal(err, "Flow", "Process", fmt.Sprintf("process() of %s", s.node.Name)))
		}
	}

	for _, p := range f.topOutputs {
		p.Buffer().Zero()
	}
	if err := runCopies(f.outCopies); err != nil {
		return f.fail(errors.WrapInternal(err, "Flow", "Process", "output transfer"))
	}

	f.blocks++
	f.metrics.recordBlock()
	return nil
}

func (f *Flow) fail(err error) error {
	f.failed = err
	f.logger.Error("Flow aborted", "block", f.blocks, "error", err)
	return err
}

// ProcessFloat32 copies in into the top-level audio inputs, runs one block and
// copies the top-level outputs into out. Channels are numbered across ports in
// port registration order and every channel holds one period of samples.
func (f *Flow) ProcessFloat32(in, out [][]float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.transfer(in, component.Input, "ProcessFloat32"); err != nil {
		return err
	}
	if err := f.process(); err != nil {
		return err
	}
	return f.transfer(out, component.Output, "ProcessFloat32")
}

// transfer exchanges host channels with the top-level ports of one direction.
func (f *Flow) transfer(host [][]float32, dir component.Direction, method string) error {
	var blocks []*audio.Block[float32]
	total := 0
	for _, p := range f.top.AudioPorts() {
		if p.Direction() != dir {
			continue
		}
		b, ok := p.Buffer().(*audio.Block[float32])
		if !ok {
			return errors.Invalidf(errors.ErrTypeMismatch, "Flow", method,
				"top-level port %s carries %s samples", p.Name(), p.SampleType())
		}
		blocks = append(blocks, b)
		total += p.Width()
	}
	if len(host) != total {
		return errors.Invalidf(errors.ErrWidthMismatch, "Flow", method,
			"%d host %s channels for %d port channels", len(host), dir, total)
	}

	i := 0
	for _, b := range blocks {
		for ch := 0; ch < b.Channels(); ch++ {
			if len(host[i]) != f.period {
				return errors.Invalidf(errors.ErrLengthMismatch, "Flow", method,
					"host %s channel %d has %d samples, period is %d", dir, i, len(host[i]), f.period)
			}
			if dir == component.Input {
				copy(b.Channel(ch), host[i])
			} else {
				copy(host[i], b.Channel(ch))
			}
			i++
		}
	}
	return nil
}

// Close detaches every endpoint and resets every bound port. It does not close
// the components. Closing twice is a no-op.
func (f *Flow) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.release()
	f.logger.Info("Flow closed", "blocks", f.blocks)
	return nil
}

func (f *Flow) release() {
	for _, inst := range f.instances {
		inst.detach()
		f.metrics.protocolInstances(inst.name, -1)
	}
	for _, p := range f.bound {
		p.Reset()
	}
	f.instances, f.bound = nil, nil
	f.steps, f.outCopies, f.topOutputs = nil, nil, nil
	clear(f.capture)
	clear(f.playback)
	clear(f.writers)
	clear(f.readers)
	f.closed = true
}
