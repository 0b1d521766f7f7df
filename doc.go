// Package visr is a component runtime for real-time audio and control
// processing.
//
// Signal flows are assembled from components that exchange multichannel audio
// and typed control parameters through named ports. Atomic components do the
// processing of one block. Composite components only wire children together
// and expose external ports of their own. The hierarchy is flattened into an
// executable flow that processes one block per call.
//
// # Layers
//
// The packages build on each other bottom-up:
//
//   - errors: classified errors (invalid, usage, internal, fatal) and sentinels
//   - channel: channel ranges and lists used to address parts of audio ports
//   - parameter: parameter values, configurations and the parameter registry
//   - protocol: communication protocols between parameter ports, with the
//     shareddata, doublebuffering and messagequeue implementations
//   - protocolregistry: one-shot registration of every built-in type
//   - audio: sample types and aligned multichannel buffers
//   - component: atomic and composite components, ports, connections and
//     status messages
//   - component/flowgraph: flattening, connectivity analysis and ordering
//   - engine: the executable flow (package flowengine)
//
// Supporting packages carry the runtime around a flow: config (layered JSON and
// YAML configuration), metric (Prometheus metrics and the exposition server),
// health (flow health reporting), natsclient (connection management for status
// publishing) and testutil (recording components and a NATS test container).
//
// # Building a Flow
//
//	_, protocols, err := protocolregistry.New()
//	if err != nil {
//		return err
//	}
//	ctx, err := component.NewContext(64, 48000, component.WithProtocols(protocols))
//	if err != nil {
//		return err
//	}
//
//	root, _ := component.NewComposite(ctx, "root", nil)
//	out, _ := component.NewAudioOutput[float32](root, "out", 2)
//	amp, _ := components.NewGain(ctx, "amp", root, 2)
//	tone, _ := components.NewConstant(ctx, "tone", root, 2, 1)
//	_ = root.ConnectAudioPortsFull(tone.Out, amp.In)
//	_ = root.ConnectAudioPortsFull(amp.Out, out)
//
//	flow, err := flowengine.New(root)
//	if err != nil {
//		return err
//	}
//	defer flow.Close()
//	for i := 0; i < blocks; i++ {
//		if err := flow.Process(); err != nil {
//			return err
//		}
//	}
//
// # Command
//
// cmd/visrflow builds a demonstration flow from configuration and runs it:
//
//	visrflow --config flow.yaml --blocks 0 --realtime --metrics-port 9090
//
// # Testing
//
// Unit tests use testify. Integration tests that need a NATS server start one
// with testcontainers-go and run only when INTEGRATION_TESTS is set:
//
//	INTEGRATION_TESTS=1 go test ./...
package visr
