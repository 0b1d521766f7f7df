// Package components provides small generic atomic components: a parameter
// controlled Gain, a Sum of several inputs, a Constant source and two parameter
// sinks, QueueSink and LevelMeter.
//
// All components process float32 audio. They are used by the visrflow demo graph
// and as building blocks in tests.
package components
