//go:build !js

package native

import (
	"github.com/Carmen-Shannon/oxy-gpu/engine/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

func (b *Backend) CreateBuffer(deviceID gpu.DeviceID, desc *gpu.BufferDescriptor) (gpu.BufferID, error) {
	d, err := b.device(deviceID, "create buffer")
	if err != nil {
		return 0, err
	}
	buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            desc.Label,
		Size:             desc.Size,
		Usage:            wgpu.BufferUsage(desc.Usage),
		MappedAtCreation: desc.MappedAtCreation,
	})
	if err != nil {
		return 0, backendError("create buffer", err)
	}
	return b.buffers.Insert(buf), nil
}

// BufferMappedRange exposes wgpu-native's mapping directly; the returned memory aliases the
// mapped range and must not be used after BufferUnmap.
func (b *Backend) BufferMappedRange(id gpu.BufferID, offset, size uint64) (gpu.MappedMemory, error) {
	buf, err := b.buffers.Lookup(id)
	if err != nil {
		return nil, backendError("mapped range", err)
	}
	data := buf.GetMappedRange(uint(offset), uint(size))
	if data == nil && size > 0 {
		return nil, backendError("mapped range", gpu.ErrBufferNotMapped)
	}
	return gpu.HostMemory(data), nil
}

func (b *Backend) BufferUnmap(id gpu.BufferID) error {
	buf, err := b.buffers.Lookup(id)
	if err != nil {
		return backendError("unmap", err)
	}
	if err := buf.Unmap(); err != nil {
		return backendError("unmap", err)
	}
	return nil
}

// BufferDestroy destroys and releases the wgpu buffer and retires the handle.
func (b *Backend) BufferDestroy(id gpu.BufferID) error {
	buf, ok := b.buffers.Remove(id)
	if !ok {
		return backendError("destroy buffer", gpu.ErrInvalidHandle)
	}
	buf.Destroy()
	buf.Release()
	return nil
}

func (b *Backend) CreateTexture(deviceID gpu.DeviceID, desc *gpu.TextureDescriptor) (gpu.TextureID, error) {
	d, err := b.device(deviceID, "create texture")
	if err != nil {
		return 0, err
	}
	tex, err := d.device.CreateTexture(b.textureDescriptor(desc))
	if err != nil {
		return 0, backendError("create texture", err)
	}
	return b.textures.Insert(&texture{texture: tex, desc: *desc}), nil
}

func (b *Backend) TextureDestroy(id gpu.TextureID) error {
	t, ok := b.textures.Remove(id)
	if !ok {
		return backendError("destroy texture", gpu.ErrInvalidHandle)
	}
	t.texture.Destroy()
	t.texture.Release()
	return nil
}

func (b *Backend) CreateTextureView(textureID gpu.TextureID, desc *gpu.TextureViewDescriptor) (gpu.TextureViewID, error) {
	t, err := b.textures.Lookup(textureID)
	if err != nil {
		return 0, backendError("create texture view", err)
	}
	var wdesc *wgpu.TextureViewDescriptor
	if desc != nil {
		wdesc = b.viewDescriptor(t, desc)
	}
	view, err := t.texture.CreateView(wdesc)
	if err != nil {
		return 0, backendError("create texture view", err)
	}
	return b.views.Insert(view), nil
}

func (b *Backend) TextureViewDestroy(id gpu.TextureViewID) error {
	v, ok := b.views.Remove(id)
	if !ok {
		return backendError("destroy texture view", gpu.ErrInvalidHandle)
	}
	v.Release()
	return nil
}

func (b *Backend) CreateSampler(deviceID gpu.DeviceID, desc *gpu.SamplerDescriptor) (gpu.SamplerID, error) {
	d, err := b.device(deviceID, "create sampler")
	if err != nil {
		return 0, err
	}
	s, err := d.device.CreateSampler(b.samplerDescriptor(desc))
	if err != nil {
		return 0, backendError("create sampler", err)
	}
	return b.samplers.Insert(s), nil
}

func (b *Backend) CreateShaderModule(deviceID gpu.DeviceID, desc *gpu.ShaderModuleDescriptor) (gpu.ShaderModuleID, error) {
	d, err := b.device(deviceID, "create shader module")
	if err != nil {
		return 0, err
	}
	m, err := d.device.CreateShaderModule(b.shaderModuleDescriptor(desc))
	if err != nil {
		return 0, backendError("create shader module", err)
	}
	return b.shaders.Insert(m), nil
}

func (b *Backend) CreateBindGroupLayout(deviceID gpu.DeviceID, desc *gpu.BindGroupLayoutDescriptor) (gpu.BindGroupLayoutID, error) {
	d, err := b.device(deviceID, "create bind group layout")
	if err != nil {
		return 0, err
	}
	l, err := d.device.CreateBindGroupLayout(b.bindGroupLayoutDescriptor(desc))
	if err != nil {
		return 0, backendError("create bind group layout", err)
	}
	return b.bindGroupLayouts.Insert(l), nil
}

func (b *Backend) CreateBindGroup(deviceID gpu.DeviceID, desc *gpu.BindGroupDescriptor) (gpu.BindGroupID, error) {
	d, err := b.device(deviceID, "create bind group")
	if err != nil {
		return 0, err
	}
	wdesc, err := b.bindGroupDescriptor(desc)
	if err != nil {
		return 0, backendError("create bind group", err)
	}
	g, err := d.device.CreateBindGroup(wdesc)
	if err != nil {
		return 0, backendError("create bind group", err)
	}
	return b.bindGroups.Insert(g), nil
}

func (b *Backend) CreatePipelineLayout(deviceID gpu.DeviceID, desc *gpu.PipelineLayoutDescriptor) (gpu.PipelineLayoutID, error) {
	d, err := b.device(deviceID, "create pipeline layout")
	if err != nil {
		return 0, err
	}
	wdesc, err := b.pipelineLayoutDescriptor(desc)
	if err != nil {
		return 0, backendError("create pipeline layout", err)
	}
	l, err := d.device.CreatePipelineLayout(wdesc)
	if err != nil {
		return 0, backendError("create pipeline layout", err)
	}
	return b.pipelineLayouts.Insert(l), nil
}

func (b *Backend) CreateRenderPipeline(deviceID gpu.DeviceID, desc *gpu.RenderPipelineDescriptor) (gpu.RenderPipelineID, error) {
	d, err := b.device(deviceID, "create render pipeline")
	if err != nil {
		return 0, err
	}
	wdesc, err := b.renderPipelineDescriptor(desc)
	if err != nil {
		return 0, backendError("create render pipeline", err)
	}
	p, err := d.device.CreateRenderPipeline(wdesc)
	if err != nil {
		return 0, backendError("create render pipeline", err)
	}
	return b.renderPipelines.Insert(p), nil
}

func (b *Backend) CreateComputePipeline(deviceID gpu.DeviceID, desc *gpu.ComputePipelineDescriptor) (gpu.ComputePipelineID, error) {
	d, err := b.device(deviceID, "create compute pipeline")
	if err != nil {
		return 0, err
	}
	wdesc, err := b.computePipelineDescriptor(desc)
	if err != nil {
		return 0, backendError("create compute pipeline", err)
	}
	p, err := d.device.CreateComputePipeline(wdesc)
	if err != nil {
		return 0, backendError("create compute pipeline", err)
	}
	return b.computePipelines.Insert(p), nil
}
