package flowgraph_test

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s3a-spatialaudio/VISR-sub001/channel"
	"github.com/s3a-spatialaudio/VISR-sub001/component"
	"github.com/s3a-spatialaudio/VISR-sub001/component/flowgraph"
	"github.com/s3a-spatialaudio/VISR-sub001/errors"
	"github.com/s3a-spatialaudio/VISR-sub001/parameter"
	"github.com/s3a-spatialaudio/VISR-sub001/protocol/doublebuffering"
	"github.com/s3a-spatialaudio/VISR-sub001/protocol/messagequeue"
	"github.com/s3a-spatialaudio/VISR-sub001/testutil"
)

type stage struct {
	*component.Atomic
	in  *component.AudioInput[float32]
	out *component.AudioOutput[float32]
}

func (s *stage) Process() error { return nil }

func newStage(t *testing.T, ctx *component.SignalFlowContext, name string, parent *component.Composite, width int) *stage {
	t.Helper()
	s := &stage{}
	var err error
	s.Atomic, err = component.NewAtomic(ctx, name, parent, s)
	require.NoError(t, err)
	s.in, err = component.NewAudioInput[float32](s, "in", width)
	require.NoError(t, err)
	s.out, err = component.NewAudioOutput[float32](s, "out", width)
	require.NoError(t, err)
	return s
}

func edgeStrings(edges []flowgraph.AudioEdge) []string {
	out := make([]string, len(edges))
	for i, e := range edges {
		out[i] = fmt.Sprintf("%s[%d] -> %s[%d]", e.From.Port.FullName(), e.From.Channel, e.To.Port.FullName(), e.To.Channel)
	}
	return out
}

func nodeNames(nodes []*flowgraph.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}

func TestBuild_ResolvesNestedAudio(t *testing.T) {
	ctx := testutil.NewContext(t)
	root, err := component.NewComposite(ctx, "root", nil)
	require.NoError(t, err)
	rootIn, err := component.NewAudioInput[float32](root, "in", 2)
	require.NoError(t, err)
	rootOut, err := component.NewAudioOutput[float32](root, "out", 2)
	require.NoError(t, err)

	mix, err := component.NewComposite(ctx, "mix", root)
	require.NoError(t, err)
	mixIn, err := component.NewAudioInput[float32](mix, "in", 2)
	require.NoError(t, err)
	mixOut, err := component.NewAudioOutput[float32](mix, "out", 2)
	require.NoError(t, err)
	g := newStage(t, ctx, "g", mix, 2)
	rec, err := testutil.NewRecorder(ctx, "rec", root, 2)
	require.NoError(t, err)

	require.NoError(t, root.ConnectAudioPorts(rootIn, channel.MustIndices(0, 1), mixIn, channel.MustIndices(1, 0)))
	require.NoError(t, mix.ConnectAudioPortsFull(mixIn, g.in))
	require.NoError(t, mix.ConnectAudioPortsFull(g.out, mixOut))
	require.NoError(t, root.ConnectAudioPortsFull(mixOut, rec.In))
	require.NoError(t, root.ConnectAudio("mix", "out", channel.Single(1), "", "out", channel.Single(0)))

	graph, err := flowgraph.Build(root)
	require.NoError(t, err)

	want := []string{
		"root.in[1] -> mix:g.in[0]",
		"root.in[0] -> mix:g.in[1]",
		"mix:g.out[0] -> rec.in[0]",
		"mix:g.out[1] -> rec.in[1]",
		"mix:g.out[1] -> root.out[0]",
	}
	if diff := cmp.Diff(want, edgeStrings(graph.AudioEdges())); diff != "" {
		t.Errorf("AudioEdges mismatch (-want +got):\n%s", diff)
	}

	src, ok := graph.Source(rootOut, 0)
	require.True(t, ok)
	assert.Same(t, g.out, src.Port)
	_, ok = graph.Source(rootOut, 1)
	assert.False(t, ok)

	assert.Equal(t, []string{"mix:g", "rec"}, nodeNames(graph.Nodes()))
	order, err := graph.TopologicalOrder()
	require.NoError(t, err)
	assert.Equal(t, []string{"mix:g", "rec"}, nodeNames(order))

	result := graph.Analyze()
	assert.Equal(t, flowgraph.StatusWarnings, result.ValidationStatus)
	require.Len(t, result.OrphanedPorts, 1)
	assert.Equal(t, flowgraph.OrphanedPort{
		ComponentName: "root",
		PortName:      "out",
		Direction:     component.Output,
		Channels:      []int{1},
		Issue:         flowgraph.IssueNoSource,
	}, result.OrphanedPorts[0])
}

func TestBuild_DoubleDriver(t *testing.T) {
	ctx := testutil.NewContext(t)
	root, err := component.NewComposite(ctx, "root", nil)
	require.NoError(t, err)
	a := newStage(t, ctx, "a", root, 1)
	b := newStage(t, ctx, "b", root, 1)
	c := newStage(t, ctx, "c", root, 1)
	require.NoError(t, root.ConnectAudioPortsFull(a.out, c.in))
	require.NoError(t, root.ConnectAudioPortsFull(b.out, c.in))

	_, err = flowgraph.Build(root)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrAlreadyConnected)
	assert.True(t, errors.IsInvalid(err))
}

func TestBuild_WidthChangedAfterConnect(t *testing.T) {
	tests := []struct {
		name   string
		shrink func(a, b *stage) error
		port   string
	}{
		{"sender", func(a, _ *stage) error { return a.out.SetWidth(1) }, "a.out"},
		{"receiver", func(_, b *stage) error { return b.in.SetWidth(1) }, "b.in"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testutil.NewContext(t)
			root, err := component.NewComposite(ctx, "root", nil)
			require.NoError(t, err)
			a := newStage(t, ctx, "a", root, 2)
			b := newStage(t, ctx, "b", root, 2)
			require.NoError(t, root.ConnectAudioPortsFull(a.out, b.in))
			require.NoError(t, tt.shrink(a, b))

			_, err = flowgraph.Build(root)
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrChannelOutOfRange)
			assert.True(t, errors.IsInvalid(err))
			assert.Contains(t, err.Error(), "root")
			assert.Contains(t, err.Error(), tt.port)
		})
	}
}

func TestTopologicalOrder(t *testing.T) {
	ctx := testutil.NewContext(t)
	root, err := component.NewComposite(ctx, "root", nil)
	require.NoError(t, err)
	// Created consumer first to check that order follows data flow.
	last := newStage(t, ctx, "last", root, 1)
	mid := newStage(t, ctx, "mid", root, 1)
	first := newStage(t, ctx, "first", root, 1)
	lone := newStage(t, ctx, "lone", root, 1)
	require.NoError(t, root.ConnectAudioPortsFull(first.out, mid.in))
	require.NoError(t, root.ConnectAudioPortsFull(mid.out, last.in))
	_ = lone

	graph, err := flowgraph.Build(root)
	require.NoError(t, err)
	order, err := graph.TopologicalOrder()
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "mid", "last", "lone"}, nodeNames(order))

	result := graph.Analyze()
	assert.Equal(t, flowgraph.StatusErrors, result.ValidationStatus, "unconnected inputs of first and lone")
	if diff := cmp.Diff([][]string{{"first", "last", "mid"}, {"lone"}}, result.ConnectedGroups); diff != "" {
		t.Errorf("ConnectedGroups mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, result.DisconnectedNodes, 1)
	assert.Equal(t, "lone", result.DisconnectedNodes[0].ComponentName)
}

func TestTopologicalOrder_Cycle(t *testing.T) {
	ctx := testutil.NewContext(t)
	root, err := component.NewComposite(ctx, "root", nil)
	require.NoError(t, err)
	a := newStage(t, ctx, "a", root, 1)
	b := newStage(t, ctx, "b", root, 1)
	require.NoError(t, root.ConnectAudioPortsFull(a.out, b.in))
	require.NoError(t, root.ConnectAudioPortsFull(b.out, a.in))

	graph, err := flowgraph.Build(root)
	require.NoError(t, err)
	_, err = graph.TopologicalOrder()
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrCycle)
	assert.Contains(t, err.Error(), "a, b")
}

func TestTopologicalOrder_SelfLoop(t *testing.T) {
	ctx := testutil.NewContext(t)
	root, err := component.NewComposite(ctx, "root", nil)
	require.NoError(t, err)
	a := newStage(t, ctx, "a", root, 1)
	require.NoError(t, root.ConnectAudioPortsFull(a.out, a.in))

	graph, err := flowgraph.Build(root)
	require.NoError(t, err)
	_, err = graph.TopologicalOrder()
	assert.ErrorIs(t, err, errors.ErrCycle)
}

func TestBuild_CompositeRelayCycle(t *testing.T) {
	ctx := testutil.NewContext(t)
	root, err := component.NewComposite(ctx, "root", nil)
	require.NoError(t, err)
	loop, err := component.NewComposite(ctx, "loop", root)
	require.NoError(t, err)
	in, err := component.NewAudioInput[float32](loop, "in", 1)
	require.NoError(t, err)
	out, err := component.NewAudioOutput[float32](loop, "out", 1)
	require.NoError(t, err)
	sink := newStage(t, ctx, "sink", loop, 1)
	require.NoError(t, loop.ConnectAudioPortsFull(in, out))
	require.NoError(t, loop.ConnectAudioPortsFull(in, sink.in))
	require.NoError(t, root.ConnectAudioPortsFull(out, in))

	_, err = flowgraph.Build(root)
	assert.ErrorIs(t, err, errors.ErrCycle)
}

type control struct {
	*component.Atomic
	set   *component.ParameterOutput[*doublebuffering.Output[*parameter.Scalar[float64]]]
	get   *component.ParameterInput[*doublebuffering.Input[*parameter.Scalar[float64]]]
	event *component.ParameterInput[*messagequeue.Input[*parameter.Scalar[float64]]]
}

func (c *control) Process() error { return nil }

func newControl(t *testing.T, ctx *component.SignalFlowContext, name string, parent *component.Composite, cfg parameter.Config) *control {
	t.Helper()
	c := &control{}
	var err error
	c.Atomic, err = component.NewAtomic(ctx, name, parent, c)
	require.NoError(t, err)
	c.set, err = component.NewParameterOutput(c, "set", parameter.TypeDouble, cfg,
		doublebuffering.NewOutput[*parameter.Scalar[float64]])
	require.NoError(t, err)
	c.get, err = component.NewParameterInput(c, "get", parameter.TypeDouble, nil,
		doublebuffering.NewInput[*parameter.Scalar[float64]])
	require.NoError(t, err)
	c.event, err = component.NewParameterInput(c, "event", parameter.TypeDouble, nil,
		messagequeue.NewInput[*parameter.Scalar[float64]])
	require.NoError(t, err)
	return c
}

func TestParameterGroups(t *testing.T) {
	ctx := testutil.NewContext(t)
	root, err := component.NewComposite(ctx, "root", nil)
	require.NoError(t, err)
	ext, err := component.NewParameterInput(root, "events", parameter.TypeDouble, nil,
		messagequeue.NewInput[*parameter.Scalar[float64]])
	require.NoError(t, err)

	sub, err := component.NewComposite(ctx, "sub", root)
	require.NoError(t, err)
	relay, err := component.NewParameterInput(sub, "gain", parameter.TypeDouble, nil,
		doublebuffering.NewInput[*parameter.Scalar[float64]])
	require.NoError(t, err)

	src := newControl(t, ctx, "src", root, nil)
	x := newControl(t, ctx, "x", sub, nil)
	y := newControl(t, ctx, "y", sub, nil)

	require.NoError(t, root.ConnectParameterPorts(src.set, relay))
	require.NoError(t, sub.ConnectParameter("", "gain", "x", "get"))
	require.NoError(t, sub.ConnectParameter("", "gain", "y", "get"))
	require.NoError(t, root.ConnectParameter("", "events", "src", "event"))

	graph, err := flowgraph.Build(root)
	require.NoError(t, err)

	var fanOut, events *flowgraph.ParameterGroup
	groups := graph.ParameterGroups()
	for i := range groups {
		pg := &groups[i]
		if len(pg.Senders) == 1 && pg.Senders[0] == component.ParameterPort(src.set) {
			fanOut = pg
		}
		if len(pg.Inputs) == 1 && pg.Inputs[0] == component.ParameterPort(ext) {
			events = pg
		}
	}
	require.NotNil(t, fanOut)
	require.NotNil(t, events)

	assert.ElementsMatch(t, []component.ParameterPort{x.get, y.get}, fanOut.Receivers)
	assert.Empty(t, fanOut.Inputs)
	assert.Equal(t, doublebuffering.Type, fanOut.ProtocolType())
	assert.Equal(t, parameter.TypeDouble, fanOut.ParameterType())
	assert.True(t, fanOut.Connected())

	assert.Equal(t, []component.ParameterPort{src.event}, events.Receivers)
	assert.Empty(t, events.Senders)

	// x.set, y.set, x.event, y.event and src.get are unconnected singletons.
	assert.Len(t, groups, 7)

	order, err := graph.TopologicalOrder()
	require.NoError(t, err)
	assert.Equal(t, []string{"src", "sub:x", "sub:y"}, nodeNames(order))
}

func TestParameterGroups_ConfigConflict(t *testing.T) {
	ctx := testutil.NewContext(t)
	root, err := component.NewComposite(ctx, "root", nil)
	require.NoError(t, err)
	a := newControl(t, ctx, "a", root, parameter.StringConfig{MaxLength: 4})
	b := newControl(t, ctx, "b", root, nil)
	require.NoError(t, b.get.SetConfig(parameter.StringConfig{MaxLength: 8}))
	require.NoError(t, root.ConnectParameterPorts(a.set, b.get))

	_, err = flowgraph.Build(root)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "a.set")
}

func TestBuild_TopLevelAtomic(t *testing.T) {
	ctx := testutil.NewContext(t)
	solo := newControl(t, ctx, "solo", nil, nil)

	graph, err := flowgraph.Build(solo.Atomic)
	require.NoError(t, err)
	require.Len(t, graph.Nodes(), 1)
	assert.Empty(t, graph.AudioEdges())

	groups := graph.ParameterGroups()
	require.Len(t, groups, 3)
	for _, pg := range groups {
		assert.Len(t, pg.Ports(), 2, "atomic and external membership")
	}
	assert.Equal(t, flowgraph.StatusValid, graph.Analyze().ValidationStatus)
}
