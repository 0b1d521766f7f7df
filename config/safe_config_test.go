package config

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s3a-spatialaudio/VISR-sub001/errors"
)

func TestSafeConfig_ThreadSafety(t *testing.T) {
	safeConfig := NewSafeConfig(Defaults())

	const numGoroutines = 50
	const numOperations = 500

	var wg sync.WaitGroup
	errs := make(chan error, numGoroutines)

	for i := 0; i < numGoroutines/2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < numOperations; j++ {
				cfg := safeConfig.Get()
				if cfg.Flow.Period != 64 && cfg.Flow.Period != 128 {
					errs <- fmt.Errorf("unexpected period: %d", cfg.Flow.Period)
					return
				}
			}
		}()
	}

	for i := 0; i < numGoroutines/2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < numOperations/10; j++ {
				cfg := Defaults()
				cfg.Flow.Period = 128
				if err := safeConfig.Update(cfg); err != nil {
					errs <- fmt.Errorf("update failed: %w", err)
					return
				}
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		close(errs)
		for err := range errs {
			t.Fatalf("concurrent access error: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("test timed out, possible deadlock")
	}
	assert.Equal(t, 128, safeConfig.Get().Flow.Period)
}

func TestSafeConfig_NilHandling(t *testing.T) {
	safeConfig := NewSafeConfig(nil)
	require.NotNil(t, safeConfig.Get())
	assert.Equal(t, Defaults().Flow, safeConfig.Get().Flow)

	err := safeConfig.Update(nil)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)
}

func TestSafeConfig_ValidationDuringUpdate(t *testing.T) {
	safeConfig := NewSafeConfig(Defaults())

	bad := Defaults()
	bad.Flow.Period = 0
	err := safeConfig.Update(bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "flow.period")

	assert.Equal(t, 64, safeConfig.Get().Flow.Period)
}

func TestSafeConfig_DeepCopy(t *testing.T) {
	base := Defaults()
	base.Demo.Events = []Event{{Block: 1, Port: "gain", Value: 0.25}}
	safeConfig := NewSafeConfig(base)

	cfg := safeConfig.Get()
	cfg.Demo.Events[0].Value = 9
	cfg.Demo.Gain = 3

	again := safeConfig.Get()
	assert.Equal(t, 0.25, again.Demo.Events[0].Value)
	assert.Equal(t, 0.5, again.Demo.Gain)

	src := Defaults()
	src.Demo.Events = []Event{{Block: 2, Port: "events", Value: 1}}
	require.NoError(t, safeConfig.Update(src))
	src.Demo.Events[0].Port = "mutated"
	assert.Equal(t, "events", safeConfig.Get().Demo.Events[0].Port)
}

func TestConfigClone(t *testing.T) {
	var nilCfg *Config
	assert.Equal(t, Defaults(), nilCfg.Clone())

	cfg := Defaults()
	clone := cfg.Clone()
	assert.Equal(t, cfg, clone)
	assert.NotSame(t, cfg, clone)
}
