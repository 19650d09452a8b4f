package headless

import (
	"github.com/Carmen-Shannon/oxy-gpu/engine/gpu"
)

type adapter struct {
	opts gpu.RequestAdapterOptions
}

type device struct {
	adapter gpu.AdapterID
	desc    gpu.DeviceDescriptor
	queue   gpu.QueueID
}

func (b *Backend) RequestAdapter(opts gpu.RequestAdapterOptions, done func(gpu.AdapterID, error)) {
	b.record(Call{Op: "RequestAdapter"})
	b.dispatch(func() {
		switch {
		case b.adapterErr != nil:
			done(0, backendError("request adapter", b.adapterErr))
		case b.nullAdapter:
			done(0, nil)
		default:
			id := b.adapters.Insert(&adapter{opts: opts})
			gpu.Logger().Debug("headless adapter allocated", "adapter", uint64(id))
			done(id, nil)
			if b.duplicate {
				done(b.adapters.Insert(&adapter{opts: opts}), nil)
			}
		}
	})
}

func (b *Backend) RequestDevice(adapterID gpu.AdapterID, desc gpu.DeviceDescriptor, done func(gpu.DeviceGrant, error)) {
	b.record(Call{Op: "RequestDevice", Handle: uint64(adapterID)})
	b.dispatch(func() {
		if b.deviceErr != nil {
			done(gpu.DeviceGrant{}, backendError("request device", b.deviceErr))
			return
		}
		if _, err := b.adapters.Lookup(adapterID); err != nil {
			done(gpu.DeviceGrant{}, backendError("request device", err))
			return
		}

		d := &device{adapter: adapterID, desc: desc}
		id := b.devices.Insert(d)
		d.queue = b.queues.Insert(id)
		done(gpu.DeviceGrant{Device: id, Queue: d.queue}, nil)
		if b.duplicate {
			done(gpu.DeviceGrant{Device: id + 1000, Queue: d.queue}, nil)
		}
	})
}

func (b *Backend) ReleaseAdapter(id gpu.AdapterID) error {
	b.record(Call{Op: "ReleaseAdapter", Handle: uint64(id)})
	if _, ok := b.adapters.Remove(id); !ok {
		return backendError("release adapter", gpu.ErrInvalidHandle)
	}
	return nil
}

func (b *Backend) ReleaseDevice(id gpu.DeviceID) error {
	b.record(Call{Op: "ReleaseDevice", Handle: uint64(id)})
	d, ok := b.devices.Remove(id)
	if !ok {
		return backendError("release device", gpu.ErrInvalidHandle)
	}
	b.queues.Remove(d.queue)
	return nil
}

// DeviceDescriptor returns the descriptor a device was requested with, after defaulting.
func (b *Backend) DeviceDescriptor(id gpu.DeviceID) (gpu.DeviceDescriptor, bool) {
	d, ok := b.devices.Get(id)
	if !ok {
		return gpu.DeviceDescriptor{}, false
	}
	return d.desc, true
}
