package headless

import (
	"github.com/Carmen-Shannon/oxy-gpu/engine/gpu"
)

// Option configures a headless Backend.
type Option func(*Backend)

// WithWorkers sizes the worker pool that delivers acquisition callbacks.
//
// Parameters:
//   - workers: the maximum number of workers
//
// Returns:
//   - Option: a function that applies the worker count to a Backend
func WithWorkers(workers int) Option {
	return func(b *Backend) {
		b.workers = max(workers, 1)
	}
}

// WithSynchronousCallbacks delivers acquisition callbacks before the request call returns.
func WithSynchronousCallbacks() Option {
	return func(b *Backend) {
		b.synchronous = true
	}
}

// WithFeatureSupport overrides the backend's answer for one feature.
//
// Parameters:
//   - feature: the feature to override
//   - support: the answer Support returns for it
//
// Returns:
//   - Option: a function that applies the override to a Backend
func WithFeatureSupport(feature gpu.Feature, support gpu.Support) Option {
	return func(b *Backend) {
		b.support[feature] = support
	}
}

// WithAdapterError makes every adapter request fail with err.
func WithAdapterError(err error) Option {
	return func(b *Backend) {
		b.adapterErr = err
	}
}

// WithDeviceError makes every device request fail with err.
func WithDeviceError(err error) Option {
	return func(b *Backend) {
		b.deviceErr = err
	}
}

// WithNullAdapter makes adapter requests succeed with the null handle.
func WithNullAdapter() Option {
	return func(b *Backend) {
		b.nullAdapter = true
	}
}

// WithDuplicateCallbacks makes acquisition deliver a second, different result after the first.
func WithDuplicateCallbacks() Option {
	return func(b *Backend) {
		b.duplicate = true
	}
}

// WithAcquisitionGate holds every acquisition result until gate is closed.
func WithAcquisitionGate(gate <-chan struct{}) Option {
	return func(b *Backend) {
		b.gate = gate
	}
}

// WithOpError makes the named command operation fail with err after its handles resolve.
// Operations are named as in BackendError.Op: "copy buffer to buffer", "copy buffer to
// texture", "copy texture to buffer", "clear buffer", "end render pass", "end compute pass",
// "write buffer" and "unmap".
//
// Parameters:
//   - op: the operation to fail
//   - err: the error the operation reports
//
// Returns:
//   - Option: a function that applies the failure to a Backend
func WithOpError(op string, err error) Option {
	return func(b *Backend) {
		b.opErrs[op] = err
	}
}
