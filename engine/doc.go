// Package flowengine executes a component hierarchy block by block.
//
// # Overview
//
// New resolves the hierarchy rooted at a top-level component into a Flow:
//
//  1. flowgraph.Build flattens the hierarchy into atomic nodes and per-channel
//     audio edges, and groups connected parameter ports.
//  2. The analysis result is checked. Unconnected atomic inputs fail the build,
//     other findings are logged as warnings.
//  3. Every audio port of every atomic component, and every port of the top-level
//     component, is bound to its own aligned buffer of one period.
//  4. One protocol instance is created per parameter group. Endpoints of atomic
//     ports are attached to it. External parameter ports of the top-level
//     component are served by polymorphic endpoints that the host reaches through
//     ParameterWriter and ParameterReader.
//  5. The atomic components are put into producer-before-consumer order.
//
// # Processing
//
// One call to Process runs one block:
//
//	host writes Capture(port) buffers
//	for each atomic in order:
//	    copy each connected input channel from its source buffer
//	    Process()
//	copy top-level output channels from their sources, zero the rest
//	host reads Playback(port) buffers
//
// ProcessFloat32 wraps this cycle for hosts exchanging plain float32 channels.
// A failing Process call aborts the run: the error is classified fatal and the
// flow refuses further blocks.
//
// # Concurrency
//
// A Flow is driven by one goroutine. Process, ProcessFloat32 and Close serialise on
// an internal mutex, but parameter endpoints returned to the host are not
// synchronised and must only be used between blocks from the processing goroutine.
//
// # Teardown
//
// Close disconnects every endpoint from its protocol instance, unfreezes the
// parameter port configurations and resets every bound audio port, after which
// the hierarchy can be modified or resolved again.
package flowengine
