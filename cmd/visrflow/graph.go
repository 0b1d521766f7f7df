package main

import (
	"github.com/s3a-spatialaudio/VISR-sub001/channel"
	"github.com/s3a-spatialaudio/VISR-sub001/component"
	"github.com/s3a-spatialaudio/VISR-sub001/components"
	"github.com/s3a-spatialaudio/VISR-sub001/config"
	"github.com/s3a-spatialaudio/VISR-sub001/parameter"
	"github.com/s3a-spatialaudio/VISR-sub001/protocol/doublebuffering"
	"github.com/s3a-spatialaudio/VISR-sub001/protocol/messagequeue"
)

// Top-level ports of the demo graph.
const (
	portOut    = "out"
	portGain   = "gain"
	portEvents = "events"
	portLevel  = "level"
)

// demoGraph is
//
//	tone -> amp -> mix.in0 \
//	bias ---------> mix.in1 -> out, meter -> level
//	gain -> amp.gain, events -> sink
type demoGraph struct {
	root  *component.Composite
	tone  *components.Constant
	bias  *components.Constant
	amp   *components.Gain
	mix   *components.Sum
	meter *components.LevelMeter
	sink  *components.QueueSink
}

func buildDemo(ctx *component.SignalFlowContext, demo config.DemoConfig) (*demoGraph, error) {
	d := &demoGraph{}
	n := demo.Channels
	var err error

	if d.root, err = component.NewComposite(ctx, appName, nil); err != nil {
		return nil, err
	}
	if _, err = component.NewAudioOutput[float32](d.root, portOut, n); err != nil {
		return nil, err
	}
	gain, err := component.NewParameterPort(d.root, portGain, component.Input,
		parameter.TypeDouble, doublebuffering.Type, nil)
	if err != nil {
		return nil, err
	}
	events, err := component.NewParameterPort(d.root, portEvents, component.Input,
		parameter.TypeDouble, messagequeue.Type, nil)
	if err != nil {
		return nil, err
	}
	level, err := component.NewParameterPort(d.root, portLevel, component.Output,
		parameter.TypeDouble, doublebuffering.Type, nil)
	if err != nil {
		return nil, err
	}

	if d.tone, err = components.NewConstant(ctx, "tone", d.root, n, 1); err != nil {
		return nil, err
	}
	if d.bias, err = components.NewConstant(ctx, "bias", d.root, n, 0.125); err != nil {
		return nil, err
	}
	if d.amp, err = components.NewGain(ctx, "amp", d.root, n); err != nil {
		return nil, err
	}
	if d.mix, err = components.NewSum(ctx, "mix", d.root, 2, n); err != nil {
		return nil, err
	}
	if d.meter, err = components.NewLevelMeter(ctx, "meter", d.root, n); err != nil {
		return nil, err
	}
	d.meter.Threshold = 1
	if d.sink, err = components.NewQueueSink(ctx, "sink", d.root); err != nil {
		return nil, err
	}

	all := channel.Identity(n)
	audio := []struct {
		from, fromPort, to, toPort string
	}{
		{"tone", "out", "amp", "in"},
		{"amp", "out", "mix", "in0"},
		{"bias", "out", "mix", "in1"},
		{"mix", "out", component.ThisComponent, portOut},
		{"mix", "out", "meter", "in"},
	}
	for _, c := range audio {
		if err := d.root.ConnectAudio(c.from, c.fromPort, all, c.to, c.toPort, all); err != nil {
			return nil, err
		}
	}

	if err := d.root.ConnectParameterPorts(gain, d.amp.Control); err != nil {
		return nil, err
	}
	if err := d.root.ConnectParameterPorts(events, d.sink.In); err != nil {
		return nil, err
	}
	if err := d.root.ConnectParameterPorts(d.meter.Level, level); err != nil {
		return nil, err
	}
	return d, nil
}
