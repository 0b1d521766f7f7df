package testutil

import (
	"slices"
	"sync"

	"github.com/s3a-spatialaudio/VISR-sub001/component"
)

// Recorder captures every block received on its float32 input "in".
type Recorder struct {
	*component.Atomic
	In *component.AudioInput[float32]

	// Blocks holds one entry per Process call, each a copy of all channels.
	Blocks [][][]float32
}

// NewRecorder creates a recorder with width input channels.
func NewRecorder(ctx *component.SignalFlowContext, name string, parent *component.Composite, width int) (*Recorder, error) {
	r := &Recorder{}
	var err error
	if r.Atomic, err = component.NewAtomic(ctx, name, parent, r); err != nil {
		return nil, err
	}
	if r.In, err = component.NewAudioInput[float32](r, "in", width); err != nil {
		return nil, err
	}
	return r, nil
}

// Process implements component.Processor.
func (r *Recorder) Process() error {
	block := make([][]float32, r.In.Width())
	for ch := range block {
		block[ch] = slices.Clone(r.In.Channel(ch))
	}
	r.Blocks = append(r.Blocks, block)
	return nil
}

// Last returns the most recent block, nil before the first Process call.
func (r *Recorder) Last() [][]float32 {
	if len(r.Blocks) == 0 {
		return nil
	}
	return r.Blocks[len(r.Blocks)-1]
}

// Generator writes a ramp to its float32 output "out". Channel ch of block b starts
// at Offset + 1000*ch + b*period.
type Generator struct {
	*component.Atomic
	Out    *component.AudioOutput[float32]
	Offset float32

	block int
}

// NewGenerator creates a generator with width output channels.
func NewGenerator(ctx *component.SignalFlowContext, name string, parent *component.Composite, width int) (*Generator, error) {
	g := &Generator{}
	var err error
	if g.Atomic, err = component.NewAtomic(ctx, name, parent, g); err != nil {
		return nil, err
	}
	if g.Out, err = component.NewAudioOutput[float32](g, "out", width); err != nil {
		return nil, err
	}
	return g, nil
}

// Expected returns the samples channel ch carries in block b.
func (g *Generator) Expected(ch, b int) []float32 {
	period := g.Context().Period()
	return Ramp(g.Offset+float32(1000*ch+b*period), period)
}

// Process implements component.Processor.
func (g *Generator) Process() error {
	for ch := 0; ch < g.Out.Width(); ch++ {
		copy(g.Out.Channel(ch), g.Expected(ch, g.block))
	}
	g.block++
	return nil
}

// MockProcessor counts Process calls and returns Err when set.
// It is safe for concurrent use.
type MockProcessor struct {
	mu    sync.Mutex
	calls int
	Err   error
	// OnProcess, when set, runs before the call is counted.
	OnProcess func()
}

// Process implements component.Processor.
func (m *MockProcessor) Process() error {
	if m.OnProcess != nil {
		m.OnProcess()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.Err
}

// Calls returns the number of Process calls.
func (m *MockProcessor) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
