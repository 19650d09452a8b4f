package gpu

import (
	"fmt"
)

// Device is the factory for every other resource and the owner of the default Queue.
// Resources created by a Device can only be combined with resources of the same Device.
//
// A Device and the objects created from it are meant to be driven from one logical sequence
// of calls; they are not safe for concurrent use.
type Device struct {
	adapter       *Adapter
	backend       Backend
	id            DeviceID
	label         string
	queue         *Queue
	maxBindGroups uint32
	tracePath     string
	released      bool
}

func (d *Device) ID() DeviceID          { return d.id }
func (d *Device) Label() string         { return d.label }
func (d *Device) Queue() *Queue         { return d.queue }
func (d *Device) Adapter() *Adapter     { return d.adapter }
func (d *Device) Backend() Backend      { return d.backend }
func (d *Device) MaxBindGroups() uint32 { return d.maxBindGroups }

// TracePath returns the trace directory resolved at acquisition, or "" when tracing is off.
func (d *Device) TracePath() string { return d.tracePath }

func (d *Device) String() string { return fmt.Sprintf("Device(%d)", uint64(d.id)) }

// Release releases the device. Resources created from it must not be used afterwards.
func (d *Device) Release() {
	if d == nil || d.released {
		return
	}
	d.released = true
	if err := d.backend.ReleaseDevice(d.id); err != nil {
		Logger().Warn("release device", "device", uint64(d.id), "error", err)
	}
}

func featureError(b Backend, f Feature, s Support) error {
	err := ErrUnsupported
	if s == NotImplemented {
		err = ErrNotImplemented
	}
	return &FeatureError{Backend: b.Name(), Feature: f, Err: err}
}

func (d *Device) require(f Feature) error {
	if s := d.backend.Support(f); s != Supported {
		return featureError(d.backend, f, s)
	}
	return nil
}

// deviceChild is implemented by every resource object.
type deviceChild interface {
	owner() *Device
}

func (d *Device) checkOwned(what string, r deviceChild) error {
	owner := r.owner()
	if owner == nil {
		return fmt.Errorf("%s: %w", what, ErrNilResource)
	}
	if owner != d {
		return fmt.Errorf("%s: %w", what, ErrDeviceMismatch)
	}
	return nil
}

func (d *Device) checkLive() error {
	if d == nil || d.id.IsNil() {
		return ErrInvalidHandle
	}
	if d.released {
		return fmt.Errorf("%s released: %w", d, ErrInvalidState)
	}
	return nil
}

// CreateBuffer allocates a buffer. A buffer created with MappedAtCreation starts mapped and
// must be unmapped before the GPU uses it.
//
// Parameters:
//   - desc: the buffer descriptor
//
// Returns:
//   - *Buffer: the new buffer
//   - error: ErrNilDescriptor, ErrInvalidDescriptor, or the backend's failure
func (d *Device) CreateBuffer(desc *BufferDescriptor) (*Buffer, error) {
	if err := d.checkLive(); err != nil {
		return nil, fmt.Errorf("create buffer: %w", err)
	}
	if desc == nil {
		return nil, fmt.Errorf("create buffer: %w", ErrNilDescriptor)
	}
	if desc.MappedAtCreation && desc.Size%4 != 0 {
		return nil, fmt.Errorf("create buffer: mapped at creation size %d not a multiple of 4: %w", desc.Size, ErrInvalidDescriptor)
	}

	id, err := d.backend.CreateBuffer(d.id, desc)
	if err != nil {
		return nil, fmt.Errorf("create buffer: %w", err)
	}
	if id.IsNil() {
		return nil, fmt.Errorf("create buffer: %w", ErrNullHandle)
	}

	state := BufferStateUnmapped
	if desc.MappedAtCreation {
		state = BufferStateMapped
	}
	Logger().Debug("buffer created", "buffer", uint64(id), "size", desc.Size, "mapped", desc.MappedAtCreation)
	return &Buffer{device: d, id: id, label: desc.Label, size: desc.Size, usage: desc.Usage, state: state}, nil
}

// CreateTexture allocates a texture.
//
// Parameters:
//   - desc: the texture descriptor; Size must be non-empty and Format defined
//
// Returns:
//   - *Texture: the new texture
//   - error: ErrNilDescriptor, ErrInvalidDescriptor, or the backend's failure
func (d *Device) CreateTexture(desc *TextureDescriptor) (*Texture, error) {
	if err := d.checkLive(); err != nil {
		return nil, fmt.Errorf("create texture: %w", err)
	}
	if desc == nil {
		return nil, fmt.Errorf("create texture: %w", ErrNilDescriptor)
	}
	if desc.Size.Width == 0 || desc.Size.Height == 0 || desc.Format == TextureFormatUndefined {
		return nil, fmt.Errorf("create texture: empty size or undefined format: %w", ErrInvalidDescriptor)
	}
	if desc.Format.IsDepth() {
		if err := d.require(FeatureDepthStencil); err != nil {
			return nil, fmt.Errorf("create texture: %w", err)
		}
	}

	id, err := d.backend.CreateTexture(d.id, desc)
	if err != nil {
		return nil, fmt.Errorf("create texture: %w", err)
	}
	if id.IsNil() {
		return nil, fmt.Errorf("create texture: %w", ErrNullHandle)
	}
	return newTexture(d, id, desc), nil
}

func (d *Device) CreateSampler(desc *SamplerDescriptor) (*Sampler, error) {
	if err := d.checkLive(); err != nil {
		return nil, fmt.Errorf("create sampler: %w", err)
	}
	if desc == nil {
		return nil, fmt.Errorf("create sampler: %w", ErrNilDescriptor)
	}
	if err := d.require(FeatureSamplers); err != nil {
		return nil, fmt.Errorf("create sampler: %w", err)
	}

	id, err := d.backend.CreateSampler(d.id, desc)
	if err != nil {
		return nil, fmt.Errorf("create sampler: %w", err)
	}
	if id.IsNil() {
		return nil, fmt.Errorf("create sampler: %w", ErrNullHandle)
	}
	return &Sampler{device: d, id: id, label: desc.Label}, nil
}

// CreateShaderModule hands the shader payload to the backend unmodified.
//
// Parameters:
//   - desc: a descriptor holding exactly one of WGSL source or SPIR-V words
//
// Returns:
//   - *ShaderModule: the new shader module
//   - error: ErrInvalidDescriptor when zero or both payloads are set, a *FeatureError when the
//     backend does not accept the payload kind, or the backend's failure
func (d *Device) CreateShaderModule(desc *ShaderModuleDescriptor) (*ShaderModule, error) {
	if err := d.checkLive(); err != nil {
		return nil, fmt.Errorf("create shader module: %w", err)
	}
	if desc == nil {
		return nil, fmt.Errorf("create shader module: %w", ErrNilDescriptor)
	}

	hasWGSL, hasSPIRV := desc.WGSL != "", len(desc.SPIRV) > 0
	switch {
	case hasWGSL == hasSPIRV:
		return nil, fmt.Errorf("create shader module: exactly one of WGSL and SPIR-V must be set: %w", ErrInvalidDescriptor)
	case hasWGSL:
		if err := d.require(FeatureWGSLShaders); err != nil {
			return nil, fmt.Errorf("create shader module: %w", err)
		}
	default:
		if err := d.require(FeatureSPIRVShaders); err != nil {
			return nil, fmt.Errorf("create shader module: %w", err)
		}
	}

	id, err := d.backend.CreateShaderModule(d.id, desc)
	if err != nil {
		return nil, fmt.Errorf("create shader module: %w", err)
	}
	if id.IsNil() {
		return nil, fmt.Errorf("create shader module: %w", ErrNullHandle)
	}
	return &ShaderModule{device: d, id: id, label: desc.Label}, nil
}

func (d *Device) CreateBindGroupLayout(desc *BindGroupLayoutDescriptor) (*BindGroupLayout, error) {
	if err := d.checkLive(); err != nil {
		return nil, fmt.Errorf("create bind group layout: %w", err)
	}
	if desc == nil {
		return nil, fmt.Errorf("create bind group layout: %w", ErrNilDescriptor)
	}
	if err := d.require(FeatureBindGroups); err != nil {
		return nil, fmt.Errorf("create bind group layout: %w", err)
	}

	seen := make(map[uint32]struct{}, len(desc.Entries))
	for i, e := range desc.Entries {
		if e.layoutCount() != 1 {
			return nil, fmt.Errorf("create bind group layout: entry %d must set exactly one binding layout: %w", i, ErrInvalidDescriptor)
		}
		if _, dup := seen[e.Binding]; dup {
			return nil, fmt.Errorf("create bind group layout: duplicate binding %d: %w", e.Binding, ErrInvalidDescriptor)
		}
		seen[e.Binding] = struct{}{}
		if e.StorageTexture != nil || e.Texture != nil {
			if err := d.require(FeatureTextureViews); err != nil {
				return nil, fmt.Errorf("create bind group layout: %w", err)
			}
		}
		if e.Sampler != nil {
			if err := d.require(FeatureSamplers); err != nil {
				return nil, fmt.Errorf("create bind group layout: %w", err)
			}
		}
	}

	id, err := d.backend.CreateBindGroupLayout(d.id, desc)
	if err != nil {
		return nil, fmt.Errorf("create bind group layout: %w", err)
	}
	if id.IsNil() {
		return nil, fmt.Errorf("create bind group layout: %w", ErrNullHandle)
	}

	entries := make([]BindGroupLayoutEntry, len(desc.Entries))
	copy(entries, desc.Entries)
	return &BindGroupLayout{device: d, id: id, label: desc.Label, entries: entries}, nil
}

// CreateBindGroup binds concrete resources to the slots of a layout.
//
// Parameters:
//   - desc: the layout and one entry per bound resource
//
// Returns:
//   - *BindGroup: the new bind group
//   - error: ErrNilDescriptor, ErrNilResource, ErrDeviceMismatch, ErrOutOfRange for a buffer
//     range past the end of its buffer, ErrInvalidState for a destroyed resource, or the
//     backend's failure
func (d *Device) CreateBindGroup(desc *BindGroupDescriptor) (*BindGroup, error) {
	if err := d.checkLive(); err != nil {
		return nil, fmt.Errorf("create bind group: %w", err)
	}
	if desc == nil {
		return nil, fmt.Errorf("create bind group: %w", ErrNilDescriptor)
	}
	if err := d.require(FeatureBindGroups); err != nil {
		return nil, fmt.Errorf("create bind group: %w", err)
	}
	if err := d.checkOwned("layout", desc.Layout); err != nil {
		return nil, fmt.Errorf("create bind group: %w", err)
	}

	for _, e := range desc.Entries {
		what := fmt.Sprintf("binding %d", e.Binding)
		switch r := e.Resource.(type) {
		case BufferBinding:
			if err := d.checkOwned(what, r.Buffer); err != nil {
				return nil, fmt.Errorf("create bind group: %w", err)
			}
			if r.Buffer.state == BufferStateDestroyed {
				return nil, fmt.Errorf("create bind group: %s: %w", what, ErrBufferDestroyed)
			}
			if r.Offset > r.Buffer.size || r.Size > r.Buffer.size-r.Offset {
				return nil, fmt.Errorf("create bind group: %s: %w", what, ErrOutOfRange)
			}
		case *Sampler:
			if err := d.checkOwned(what, r); err != nil {
				return nil, fmt.Errorf("create bind group: %w", err)
			}
		case *TextureView:
			if err := d.checkOwned(what, r); err != nil {
				return nil, fmt.Errorf("create bind group: %w", err)
			}
			if err := r.valid(); err != nil {
				return nil, fmt.Errorf("create bind group: %s: %w", what, err)
			}
		default:
			return nil, fmt.Errorf("create bind group: %s: %w", what, ErrNilResource)
		}
	}

	id, err := d.backend.CreateBindGroup(d.id, desc)
	if err != nil {
		return nil, fmt.Errorf("create bind group: %w", err)
	}
	if id.IsNil() {
		return nil, fmt.Errorf("create bind group: %w", ErrNullHandle)
	}
	return &BindGroup{device: d, id: id, label: desc.Label, layout: desc.Layout}, nil
}

func (d *Device) CreatePipelineLayout(desc *PipelineLayoutDescriptor) (*PipelineLayout, error) {
	if err := d.checkLive(); err != nil {
		return nil, fmt.Errorf("create pipeline layout: %w", err)
	}
	if desc == nil {
		return nil, fmt.Errorf("create pipeline layout: %w", ErrNilDescriptor)
	}
	if uint32(len(desc.BindGroupLayouts)) > d.maxBindGroups {
		return nil, fmt.Errorf("create pipeline layout: %d bind group layouts exceed the limit of %d: %w",
			len(desc.BindGroupLayouts), d.maxBindGroups, ErrInvalidDescriptor)
	}
	for i, l := range desc.BindGroupLayouts {
		if err := d.checkOwned(fmt.Sprintf("bind group layout %d", i), l); err != nil {
			return nil, fmt.Errorf("create pipeline layout: %w", err)
		}
	}

	id, err := d.backend.CreatePipelineLayout(d.id, desc)
	if err != nil {
		return nil, fmt.Errorf("create pipeline layout: %w", err)
	}
	if id.IsNil() {
		return nil, fmt.Errorf("create pipeline layout: %w", ErrNullHandle)
	}
	return &PipelineLayout{device: d, id: id, label: desc.Label, groups: len(desc.BindGroupLayouts)}, nil
}

// CreateRenderPipeline builds a render pipeline. A nil Fragment, a nil DepthStencil or a nil
// Blend on a color target is passed to the backend as absent; no default state is synthesized.
//
// Parameters:
//   - desc: the pipeline descriptor
//
// Returns:
//   - *RenderPipeline: the new pipeline
//   - error: ErrNilDescriptor, ErrNilResource, ErrDeviceMismatch, a *FeatureError when depth
//     stencil state is unsupported, or the backend's failure
func (d *Device) CreateRenderPipeline(desc *RenderPipelineDescriptor) (*RenderPipeline, error) {
	if err := d.checkLive(); err != nil {
		return nil, fmt.Errorf("create render pipeline: %w", err)
	}
	if desc == nil {
		return nil, fmt.Errorf("create render pipeline: %w", ErrNilDescriptor)
	}
	if desc.Layout != nil {
		if err := d.checkOwned("layout", desc.Layout); err != nil {
			return nil, fmt.Errorf("create render pipeline: %w", err)
		}
	}
	if err := d.checkOwned("vertex module", desc.Vertex.Module); err != nil {
		return nil, fmt.Errorf("create render pipeline: %w", err)
	}
	if desc.Fragment != nil {
		if err := d.checkOwned("fragment module", desc.Fragment.Module); err != nil {
			return nil, fmt.Errorf("create render pipeline: %w", err)
		}
	}
	if desc.DepthStencil != nil {
		if err := d.require(FeatureDepthStencil); err != nil {
			return nil, fmt.Errorf("create render pipeline: %w", err)
		}
	}

	id, err := d.backend.CreateRenderPipeline(d.id, desc)
	if err != nil {
		return nil, fmt.Errorf("create render pipeline: %w", err)
	}
	if id.IsNil() {
		return nil, fmt.Errorf("create render pipeline: %w", ErrNullHandle)
	}
	return &RenderPipeline{device: d, id: id, label: desc.Label}, nil
}

func (d *Device) CreateComputePipeline(desc *ComputePipelineDescriptor) (*ComputePipeline, error) {
	if err := d.checkLive(); err != nil {
		return nil, fmt.Errorf("create compute pipeline: %w", err)
	}
	if desc == nil {
		return nil, fmt.Errorf("create compute pipeline: %w", ErrNilDescriptor)
	}
	if err := d.require(FeatureComputePipelines); err != nil {
		return nil, fmt.Errorf("create compute pipeline: %w", err)
	}
	if desc.Layout != nil {
		if err := d.checkOwned("layout", desc.Layout); err != nil {
			return nil, fmt.Errorf("create compute pipeline: %w", err)
		}
	}
	if err := d.checkOwned("compute module", desc.Compute.Module); err != nil {
		return nil, fmt.Errorf("create compute pipeline: %w", err)
	}

	id, err := d.backend.CreateComputePipeline(d.id, desc)
	if err != nil {
		return nil, fmt.Errorf("create compute pipeline: %w", err)
	}
	if id.IsNil() {
		return nil, fmt.Errorf("create compute pipeline: %w", ErrNullHandle)
	}
	return &ComputePipeline{device: d, id: id, label: desc.Label}, nil
}

// CreateCommandEncoder starts a new single-use command encoder. desc may be nil.
func (d *Device) CreateCommandEncoder(desc *CommandEncoderDescriptor) (*CommandEncoder, error) {
	if err := d.checkLive(); err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	var dsc CommandEncoderDescriptor
	if desc != nil {
		dsc = *desc
	}

	id, err := d.backend.CreateCommandEncoder(d.id, &dsc)
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if id.IsNil() {
		return nil, fmt.Errorf("create command encoder: %w", ErrNullHandle)
	}
	return &CommandEncoder{device: d, id: id, label: dsc.Label, state: EncoderStateRecording}, nil
}

// CreateSwapChain configures surface for presentation and captures its current size.
//
// Parameters:
//   - surface: the window surface to present to
//   - desc: presentation settings, nil for defaults
//
// Returns:
//   - *SwapChain: the new swap chain
//   - error: ErrNilResource for a nil surface, a *FeatureError when the backend can not present,
//     or the backend's failure
func (d *Device) CreateSwapChain(surface Surface, desc *SwapChainDescriptor) (*SwapChain, error) {
	if err := d.checkLive(); err != nil {
		return nil, fmt.Errorf("create swap chain: %w", err)
	}
	if surface == nil {
		return nil, fmt.Errorf("create swap chain: surface: %w", ErrNilResource)
	}
	if err := d.require(FeatureSwapChain); err != nil {
		return nil, fmt.Errorf("create swap chain: %w", err)
	}

	var dsc SwapChainDescriptor
	if desc != nil {
		dsc = *desc
	}
	if dsc.Usage == 0 {
		dsc.Usage = TextureUsageRenderAttachment
	}

	size := surface.Size()
	id, err := d.backend.CreateSwapChain(d.id, surface, &dsc, size)
	if err != nil {
		return nil, fmt.Errorf("create swap chain: %w", err)
	}
	if id.IsNil() {
		return nil, fmt.Errorf("create swap chain: %w", ErrNullHandle)
	}

	Logger().Info("swap chain created", "swapChain", uint64(id), "size", size.String(), "format", dsc.Format.String())
	return &SwapChain{device: d, id: id, surface: surface, desc: dsc, size: size}, nil
}
