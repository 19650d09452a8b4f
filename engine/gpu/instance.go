package gpu

import (
	"context"
	"fmt"
)

// Instance is the entry point of the API. It owns the backend every object created through it
// dispatches to.
type Instance struct {
	backend Backend
}

// NewInstance wraps an already constructed backend. Most programs use Open or OpenDefault.
func NewInstance(backend Backend) *Instance {
	return &Instance{backend: backend}
}

// Backend returns the backend this instance dispatches to.
func (i *Instance) Backend() Backend {
	return i.backend
}

// RequestAdapter asks the backend for an adapter and blocks until it answers.
// There is no built-in timeout and no retry; ctx bounds how long the caller waits, but the
// backend request itself is not cancelled when ctx ends.
//
// Parameters:
//   - ctx: bounds the wait, may be context.Background()
//   - opts: adapter selection options, nil for defaults
//
// Returns:
//   - *Adapter: the acquired adapter
//   - error: an *AcquisitionError if the backend fails, returns a null handle, or ctx ends first
func (i *Instance) RequestAdapter(ctx context.Context, opts *RequestAdapterOptions) (*Adapter, error) {
	const op = "request adapter"
	if i == nil || i.backend == nil {
		return nil, &AcquisitionError{Op: op, Err: ErrBackendNotAvailable}
	}

	var o RequestAdapterOptions
	if opts != nil {
		o = *opts
	}

	cell := newOneShot[AdapterID]()
	i.backend.RequestAdapter(o, func(id AdapterID, err error) {
		if cell.complete(id, err) {
			return
		}
		if cell.isAbandoned() && err == nil && !id.IsNil() {
			Logger().Debug("releasing adapter delivered after caller gave up", "adapter", uint64(id))
			if rerr := i.backend.ReleaseAdapter(id); rerr != nil {
				Logger().Warn("release abandoned adapter", "adapter", uint64(id), "error", rerr)
			}
			return
		}
		Logger().Warn("adapter request completed more than once", "backend", i.backend.Name())
	})

	id, err := cell.wait(ctx)
	if err != nil {
		return nil, &AcquisitionError{Op: op, Err: err}
	}
	if id.IsNil() {
		return nil, &AcquisitionError{Op: op, Err: ErrNullHandle}
	}

	Logger().Info("adapter acquired",
		"backend", i.backend.Name(),
		"adapter", uint64(id),
		"powerPreference", o.PowerPreference.String(),
		"surface", o.CompatibleSurface != nil,
	)
	return &Adapter{instance: i, id: id}, nil
}

func (i *Instance) String() string {
	if i == nil || i.backend == nil {
		return "Instance(<nil>)"
	}
	return fmt.Sprintf("Instance(%s)", i.backend.Name())
}
