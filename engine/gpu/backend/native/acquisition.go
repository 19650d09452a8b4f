//go:build !js

package native

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gpu/engine/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// RequestAdapter blocks in wgpu-native and reports through done before returning.
func (b *Backend) RequestAdapter(opts gpu.RequestAdapterOptions, done func(gpu.AdapterID, error)) {
	wopts := &wgpu.RequestAdapterOptions{
		PowerPreference:      enum(powerPreferences, opts.PowerPreference),
		ForceFallbackAdapter: opts.ForceFallbackAdapter || gpu.ConfigFromEnv().ForceFallbackAdapter,
	}
	if opts.CompatibleSurface != nil {
		surf, err := b.surface(opts.CompatibleSurface)
		if err != nil {
			done(0, backendError("request adapter", err))
			return
		}
		wopts.CompatibleSurface = surf
	}

	a, err := b.instance.RequestAdapter(wopts)
	if err != nil {
		done(0, backendError("request adapter", err))
		return
	}
	if a == nil {
		done(0, nil)
		return
	}
	id := b.adapters.Insert(a)
	gpu.Logger().Debug("native adapter acquired", "adapter", uint64(id), "fallback", wopts.ForceFallbackAdapter)
	done(id, nil)
}

func (b *Backend) RequestDevice(adapterID gpu.AdapterID, desc gpu.DeviceDescriptor, done func(gpu.DeviceGrant, error)) {
	a, err := b.adapters.Lookup(adapterID)
	if err != nil {
		done(gpu.DeviceGrant{}, backendError("request device", err))
		return
	}

	limits := wgpu.DefaultLimits()
	limits.MaxBindGroups = desc.MaxBindGroups
	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: desc.Label,
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: limits,
		},
		TracePath: desc.TracePath,
	})
	if err != nil {
		done(gpu.DeviceGrant{}, backendError("request device", err))
		return
	}
	if d == nil {
		done(gpu.DeviceGrant{}, nil)
		return
	}

	dev := &device{adapter: adapterID, device: d}
	id := b.devices.Insert(dev)
	dev.queue = b.queues.Insert(d.GetQueue())
	done(gpu.DeviceGrant{Device: id, Queue: dev.queue}, nil)
}

func (b *Backend) ReleaseAdapter(id gpu.AdapterID) error {
	a, ok := b.adapters.Remove(id)
	if !ok {
		return backendError("release adapter", gpu.ErrInvalidHandle)
	}
	if a != nil {
		a.Release()
	}
	return nil
}

func (b *Backend) ReleaseDevice(id gpu.DeviceID) error {
	d, ok := b.devices.Remove(id)
	if !ok {
		return backendError("release device", gpu.ErrInvalidHandle)
	}
	if q, ok := b.queues.Remove(d.queue); ok && q != nil {
		q.Release()
	}
	if d.device != nil {
		d.device.Release()
	}
	return nil
}

// Release drops every cached surface and the wgpu instance. Handles issued by the backend
// must not be used afterwards.
func (b *Backend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for desc, surf := range b.surfaces {
		surf.Release()
		delete(b.surfaces, desc)
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

func errNull(what string) error {
	return fmt.Errorf("%s: %w", what, gpu.ErrNullHandle)
}
