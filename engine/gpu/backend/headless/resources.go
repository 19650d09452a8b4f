package headless

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gpu/engine/gpu"
)

type buffer struct {
	device    gpu.DeviceID
	desc      gpu.BufferDescriptor
	data      []byte
	mapped    bool
	destroyed bool
}

type texture struct {
	device    gpu.DeviceID
	desc      gpu.TextureDescriptor
	texelSize uint32
	data      []byte
	destroyed bool
}

// rowBytes returns the size of one tightly packed texel row of mip level 0.
func (t *texture) rowBytes() uint64 {
	return uint64(t.desc.Size.Width) * uint64(t.texelSize)
}

type textureView struct {
	texture gpu.TextureID
	desc    gpu.TextureViewDescriptor
}

func (b *Backend) checkDevice(id gpu.DeviceID, op string) error {
	if _, err := b.devices.Lookup(id); err != nil {
		return backendError(op, err)
	}
	return nil
}

func (b *Backend) CreateBuffer(deviceID gpu.DeviceID, desc *gpu.BufferDescriptor) (gpu.BufferID, error) {
	if err := b.checkDevice(deviceID, "create buffer"); err != nil {
		return 0, err
	}
	id := b.buffers.Insert(&buffer{
		device: deviceID,
		desc:   *desc,
		data:   make([]byte, desc.Size),
		mapped: desc.MappedAtCreation,
	})
	b.record(Call{Op: "CreateBuffer", Handle: uint64(id)})
	return id, nil
}

func (b *Backend) liveBuffer(id gpu.BufferID, op string) (*buffer, error) {
	buf, err := b.buffers.Lookup(id)
	if err != nil {
		return nil, backendError(op, err)
	}
	if buf.destroyed {
		return nil, backendError(op, gpu.ErrBufferDestroyed)
	}
	return buf, nil
}

func (b *Backend) BufferMappedRange(id gpu.BufferID, offset, size uint64) (gpu.MappedMemory, error) {
	buf, err := b.liveBuffer(id, "mapped range")
	if err != nil {
		return nil, err
	}
	if !buf.mapped {
		return nil, backendError("mapped range", gpu.ErrBufferNotMapped)
	}
	if offset > uint64(len(buf.data)) || size > uint64(len(buf.data))-offset {
		return nil, backendError("mapped range", gpu.ErrOutOfRange)
	}
	return gpu.HostMemory(buf.data[offset : offset+size : offset+size]), nil
}

func (b *Backend) BufferUnmap(id gpu.BufferID) error {
	buf, err := b.liveBuffer(id, "unmap")
	if err != nil {
		return err
	}
	if err := b.failure("unmap"); err != nil {
		return err
	}
	buf.mapped = false
	b.record(Call{Op: "BufferUnmap", Handle: uint64(id)})
	return nil
}

// BufferDestroy frees the host memory but keeps the handle so later use reports
// ErrBufferDestroyed instead of an unknown handle.
func (b *Backend) BufferDestroy(id gpu.BufferID) error {
	buf, err := b.buffers.Lookup(id)
	if err != nil {
		return backendError("destroy buffer", err)
	}
	b.mu.Lock()
	buf.destroyed = true
	buf.mapped = false
	buf.data = nil
	b.mu.Unlock()
	b.record(Call{Op: "BufferDestroy", Handle: uint64(id)})
	return nil
}

func (b *Backend) CreateTexture(deviceID gpu.DeviceID, desc *gpu.TextureDescriptor) (gpu.TextureID, error) {
	if err := b.checkDevice(deviceID, "create texture"); err != nil {
		return 0, err
	}
	id := b.textures.Insert(newTexture(deviceID, *desc))
	b.record(Call{Op: "CreateTexture", Handle: uint64(id)})
	return id, nil
}

func newTexture(deviceID gpu.DeviceID, desc gpu.TextureDescriptor) *texture {
	if desc.Size.DepthOrArrayLayers == 0 {
		desc.Size.DepthOrArrayLayers = 1
	}
	texel := desc.Format.BytesPerTexel()
	if texel == 0 {
		texel = 4
	}
	n := uint64(desc.Size.Width) * uint64(desc.Size.Height) * uint64(desc.Size.DepthOrArrayLayers) * uint64(texel)
	return &texture{device: deviceID, desc: desc, texelSize: texel, data: make([]byte, n)}
}

func (b *Backend) TextureDestroy(id gpu.TextureID) error {
	t, err := b.textures.Lookup(id)
	if err != nil {
		return backendError("destroy texture", err)
	}
	b.mu.Lock()
	t.destroyed = true
	b.mu.Unlock()
	b.record(Call{Op: "TextureDestroy", Handle: uint64(id)})
	return nil
}

func (b *Backend) CreateTextureView(textureID gpu.TextureID, desc *gpu.TextureViewDescriptor) (gpu.TextureViewID, error) {
	t, err := b.textures.Lookup(textureID)
	if err != nil {
		return 0, backendError("create texture view", err)
	}
	if t.destroyed {
		return 0, backendError("create texture view", gpu.ErrInvalidState)
	}
	v := &textureView{texture: textureID}
	if desc != nil {
		v.desc = *desc
	}
	id := b.views.Insert(v)
	b.record(Call{Op: "CreateTextureView", Handle: uint64(id)})
	return id, nil
}

func (b *Backend) TextureViewDestroy(id gpu.TextureViewID) error {
	if _, ok := b.views.Remove(id); !ok {
		return backendError("destroy texture view", gpu.ErrInvalidHandle)
	}
	b.record(Call{Op: "TextureViewDestroy", Handle: uint64(id)})
	return nil
}

func (b *Backend) CreateSampler(deviceID gpu.DeviceID, desc *gpu.SamplerDescriptor) (gpu.SamplerID, error) {
	if err := b.checkDevice(deviceID, "create sampler"); err != nil {
		return 0, err
	}
	id := b.samplers.Insert(*desc)
	b.record(Call{Op: "CreateSampler", Handle: uint64(id)})
	return id, nil
}

func (b *Backend) CreateShaderModule(deviceID gpu.DeviceID, desc *gpu.ShaderModuleDescriptor) (gpu.ShaderModuleID, error) {
	if err := b.checkDevice(deviceID, "create shader module"); err != nil {
		return 0, err
	}
	id := b.shaders.Insert(shaderModuleRecord(desc))
	b.record(Call{Op: "CreateShaderModule", Handle: uint64(id)})
	return id, nil
}

func (b *Backend) CreateBindGroupLayout(deviceID gpu.DeviceID, desc *gpu.BindGroupLayoutDescriptor) (gpu.BindGroupLayoutID, error) {
	if err := b.checkDevice(deviceID, "create bind group layout"); err != nil {
		return 0, err
	}
	r := bindGroupLayoutRecord(desc)
	id := b.bindGroupLayouts.Insert(r)
	b.record(Call{Op: "CreateBindGroupLayout", Handle: uint64(id), Count: r.EntryCount})
	return id, nil
}

func (b *Backend) CreateBindGroup(deviceID gpu.DeviceID, desc *gpu.BindGroupDescriptor) (gpu.BindGroupID, error) {
	if err := b.checkDevice(deviceID, "create bind group"); err != nil {
		return 0, err
	}
	layout, err := b.bindGroupLayouts.Lookup(desc.Layout.ID())
	if err != nil {
		return 0, backendError("create bind group", err)
	}
	if len(desc.Entries) != layout.EntryCount {
		return 0, backendError("create bind group",
			fmt.Errorf("%d entries for a layout of %d: %w", len(desc.Entries), layout.EntryCount, gpu.ErrInvalidDescriptor))
	}

	r := bindGroupRecord(desc)
	id := b.bindGroups.Insert(r)
	b.record(Call{Op: "CreateBindGroup", Handle: uint64(id), Count: r.EntryCount})
	return id, nil
}

func (b *Backend) CreatePipelineLayout(deviceID gpu.DeviceID, desc *gpu.PipelineLayoutDescriptor) (gpu.PipelineLayoutID, error) {
	if err := b.checkDevice(deviceID, "create pipeline layout"); err != nil {
		return 0, err
	}
	r := pipelineLayoutRecord(desc)
	items := make([]uint64, len(r.BindGroupLayouts))
	for i, l := range r.BindGroupLayouts {
		items[i] = uint64(l)
	}
	id := b.pipelineLayouts.Insert(r)
	b.record(Call{Op: "CreatePipelineLayout", Handle: uint64(id), Count: r.BindGroupLayoutCount, Items: items})
	return id, nil
}

func (b *Backend) CreateRenderPipeline(deviceID gpu.DeviceID, desc *gpu.RenderPipelineDescriptor) (gpu.RenderPipelineID, error) {
	if err := b.checkDevice(deviceID, "create render pipeline"); err != nil {
		return 0, err
	}
	r := renderPipelineRecord(desc)
	id := b.renderPipelines.Insert(r)
	targets := 0
	if r.Fragment != nil {
		targets = r.Fragment.TargetCount
	}
	b.record(Call{Op: "CreateRenderPipeline", Handle: uint64(id), Count: targets})
	return id, nil
}

func (b *Backend) CreateComputePipeline(deviceID gpu.DeviceID, desc *gpu.ComputePipelineDescriptor) (gpu.ComputePipelineID, error) {
	if err := b.checkDevice(deviceID, "create compute pipeline"); err != nil {
		return 0, err
	}
	id := b.computePipelines.Insert(computePipelineRecord(desc))
	b.record(Call{Op: "CreateComputePipeline", Handle: uint64(id)})
	return id, nil
}
