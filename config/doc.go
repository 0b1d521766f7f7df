// Package config provides configuration for the visrflow runtime.
//
// A Config describes the signal flow context (period and sampling frequency),
// how many blocks to run and whether to pace them in real time, the process
// logger, the Prometheus exposition server, the optional NATS status sink and
// the demonstration graph including scheduled parameter events.
//
// # Loading
//
// Loader starts from Defaults, merges each JSON or YAML layer in order and then
// applies VISR_* environment overrides:
//
//	loader := config.NewLoader()
//	loader.AddLayer("configs/base.yaml")
//	loader.AddLayer("configs/local.json") // Overrides base
//	loader.EnableValidation(true)
//
//	cfg, err := loader.Load()
//	if err != nil {
//		return err
//	}
//
// Layers are merged field by field: a layer that only sets flow.period leaves
// every other default in place. Recognised overrides are VISR_PERIOD,
// VISR_SAMPLING_FREQUENCY, VISR_BLOCKS, VISR_REALTIME, VISR_LOG_LEVEL,
// VISR_LOG_FORMAT, VISR_METRICS_ENABLED, VISR_METRICS_PORT, VISR_METRICS_PATH,
// VISR_NATS_URL, VISR_NATS_ENABLED, VISR_CHANNELS and VISR_GAIN.
//
// # Validation
//
// With validation enabled the merged document is first checked against the
// embedded JSON schema (see Schema) and then by Config.Validate, which also
// enforces cross-field rules such as events falling inside the run. Every
// failure wraps errors.ErrInvalidConfig and is classified invalid.
//
// # Thread Safety
//
// SafeConfig guards a Config with an RWMutex. Get returns a deep copy and Update
// validates before it stores a copy of its argument.
//
// # File Handling
//
// Files are read and written through size, depth and path checks. Relative
// paths must stay inside the working directory and only .json, .yaml and .yml
// files are accepted.
package config
