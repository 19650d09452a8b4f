package gpu

import (
	"context"
	"fmt"
)

// Adapter is a selected GPU. Its only use is producing a Device.
type Adapter struct {
	instance *Instance
	id       AdapterID
	released bool
}

func (a *Adapter) ID() AdapterID { return a.id }

func (a *Adapter) String() string { return fmt.Sprintf("Adapter(%d)", uint64(a.id)) }

// RequestDevice acquires a device and its default queue, blocking until the backend answers.
// The trace path is resolved once here, from desc.TracePath or else OXY_GPU_TRACE_PATH.
//
// Parameters:
//   - ctx: bounds the wait, may be context.Background()
//   - desc: device extras, nil for defaults
//
// Returns:
//   - *Device: the acquired device
//   - error: an *AcquisitionError for a nil or released adapter, a backend failure, a null
//     handle or an ended ctx; a *FeatureError if an explicit trace path is not supported
func (a *Adapter) RequestDevice(ctx context.Context, desc *DeviceDescriptor) (*Device, error) {
	const op = "request device"
	if a == nil || a.instance == nil || a.id.IsNil() {
		return nil, &AcquisitionError{Op: op, Err: ErrInvalidHandle}
	}
	if a.released {
		return nil, &AcquisitionError{Op: op, Err: fmt.Errorf("adapter %d released: %w", uint64(a.id), ErrInvalidHandle)}
	}
	backend := a.instance.backend

	var d DeviceDescriptor
	if desc != nil {
		d = *desc
	}
	if d.MaxBindGroups == 0 {
		d.MaxBindGroups = DefaultMaxBindGroups
	}

	explicitTrace := d.TracePath != ""
	if !explicitTrace {
		d.TracePath = ConfigFromEnv().TracePath
	}
	if d.TracePath != "" {
		if s := backend.Support(FeatureTracePath); s != Supported {
			if explicitTrace {
				return nil, featureError(backend, FeatureTracePath, s)
			}
			Logger().Warn("ignoring trace path, backend does not support tracing",
				"backend", backend.Name(), "env", EnvTracePath)
			d.TracePath = ""
		} else {
			Logger().Info("device tracing enabled", "backend", backend.Name(), "path", d.TracePath)
		}
	}

	cell := newOneShot[DeviceGrant]()
	backend.RequestDevice(a.id, d, func(g DeviceGrant, err error) {
		if cell.complete(g, err) {
			return
		}
		if cell.isAbandoned() && err == nil && !g.Device.IsNil() {
			if rerr := backend.ReleaseDevice(g.Device); rerr != nil {
				Logger().Warn("release abandoned device", "device", uint64(g.Device), "error", rerr)
			}
			return
		}
		Logger().Warn("device request completed more than once", "backend", backend.Name())
	})

	grant, err := cell.wait(ctx)
	if err != nil {
		return nil, &AcquisitionError{Op: op, Err: err}
	}
	if grant.Device.IsNil() || grant.Queue.IsNil() {
		return nil, &AcquisitionError{Op: op, Err: ErrNullHandle}
	}

	dev := &Device{
		adapter:       a,
		backend:       backend,
		id:            grant.Device,
		label:         d.Label,
		maxBindGroups: d.MaxBindGroups,
		tracePath:     d.TracePath,
	}
	dev.queue = &Queue{device: dev, id: grant.Queue}

	Logger().Info("device acquired",
		"backend", backend.Name(),
		"device", uint64(grant.Device),
		"label", d.Label,
		"maxBindGroups", d.MaxBindGroups,
	)
	return dev, nil
}

// Release releases the adapter. Devices already acquired from it stay valid.
func (a *Adapter) Release() {
	if a == nil || a.released || a.id.IsNil() {
		return
	}
	a.released = true
	if err := a.instance.backend.ReleaseAdapter(a.id); err != nil {
		Logger().Warn("release adapter", "adapter", uint64(a.id), "error", err)
	}
}
