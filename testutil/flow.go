package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/s3a-spatialaudio/VISR-sub001/component"
	"github.com/s3a-spatialaudio/VISR-sub001/protocolregistry"
)

// Test flow defaults.
const (
	DefaultPeriod            = 32
	DefaultSamplingFrequency = 48000
)

// NewContext creates a context with DefaultPeriod and DefaultSamplingFrequency and
// registries populated with all built-in types.
func NewContext(t testing.TB, opts ...component.ContextOption) *component.SignalFlowContext {
	t.Helper()
	_, protocols, err := protocolregistry.New()
	require.NoError(t, err)
	opts = append([]component.ContextOption{
		component.WithProtocols(protocols),
		component.WithFlowID("test-" + t.Name()),
	}, opts...)
	ctx, err := component.NewContext(DefaultPeriod, DefaultSamplingFrequency, opts...)
	require.NoError(t, err)
	return ctx
}

// Ramp returns n samples start, start+1, ...
func Ramp(start float32, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = start + float32(i)
	}
	return out
}
