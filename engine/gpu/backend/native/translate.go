//go:build !js

package native

import (
	"encoding/binary"
	"fmt"

	"github.com/Carmen-Shannon/oxy-gpu/common"
	"github.com/Carmen-Shannon/oxy-gpu/engine/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// The translate methods turn gpu descriptors into wgpu descriptors. Object references are
// resolved through the backend registries, and absent optional state stays nil.

func (b *Backend) textureDescriptor(desc *gpu.TextureDescriptor) *wgpu.TextureDescriptor {
	size := desc.Size
	if size.DepthOrArrayLayers == 0 {
		size.DepthOrArrayLayers = 1
	}
	return &wgpu.TextureDescriptor{
		Label: desc.Label,
		Size: wgpu.Extent3D{
			Width:              size.Width,
			Height:             size.Height,
			DepthOrArrayLayers: size.DepthOrArrayLayers,
		},
		MipLevelCount: common.Coalesce(desc.MipLevelCount, 1),
		SampleCount:   common.Coalesce(desc.SampleCount, 1),
		Dimension:     enum(textureDimensions, common.Coalesce(desc.Dimension, gpu.TextureDimension2D)),
		Format:        enum(textureFormats, desc.Format),
		Usage:         wgpu.TextureUsage(desc.Usage),
	}
}

// viewDescriptor fills zero view fields from the texture the view is created on.
func (b *Backend) viewDescriptor(tex *texture, desc *gpu.TextureViewDescriptor) *wgpu.TextureViewDescriptor {
	td := tex.desc
	layers := common.Coalesce(td.Size.DepthOrArrayLayers, 1)
	mips := common.Coalesce(td.MipLevelCount, 1)

	dim := desc.Dimension
	if dim == gpu.TextureViewDimensionUndefined {
		switch common.Coalesce(td.Dimension, gpu.TextureDimension2D) {
		case gpu.TextureDimension1D:
			dim = gpu.TextureViewDimension1D
		case gpu.TextureDimension3D:
			dim = gpu.TextureViewDimension3D
		default:
			dim = gpu.TextureViewDimension2D
			if layers-min(desc.BaseArrayLayer, layers) > 1 && desc.ArrayLayerCount != 1 {
				dim = gpu.TextureViewDimension2DArray
			}
		}
	}

	arrayLayers := desc.ArrayLayerCount
	if arrayLayers == 0 {
		if dim == gpu.TextureViewDimension3D {
			arrayLayers = 1
		} else {
			arrayLayers = layers - min(desc.BaseArrayLayer, layers)
		}
	}

	return &wgpu.TextureViewDescriptor{
		Label:           desc.Label,
		Format:          enum(textureFormats, common.Coalesce(desc.Format, td.Format)),
		Dimension:       enum(viewDimensions, dim),
		BaseMipLevel:    desc.BaseMipLevel,
		MipLevelCount:   common.Coalesce(desc.MipLevelCount, mips-min(desc.BaseMipLevel, mips)),
		BaseArrayLayer:  desc.BaseArrayLayer,
		ArrayLayerCount: arrayLayers,
		Aspect:          enum(textureAspects, desc.Aspect),
	}
}

func (b *Backend) samplerDescriptor(desc *gpu.SamplerDescriptor) *wgpu.SamplerDescriptor {
	return &wgpu.SamplerDescriptor{
		Label:         desc.Label,
		AddressModeU:  enum(addressModes, common.Coalesce(desc.AddressModeU, gpu.AddressModeClampToEdge)),
		AddressModeV:  enum(addressModes, common.Coalesce(desc.AddressModeV, gpu.AddressModeClampToEdge)),
		AddressModeW:  enum(addressModes, common.Coalesce(desc.AddressModeW, gpu.AddressModeClampToEdge)),
		MagFilter:     enum(filterModes, common.Coalesce(desc.MagFilter, gpu.FilterModeNearest)),
		MinFilter:     enum(filterModes, common.Coalesce(desc.MinFilter, gpu.FilterModeNearest)),
		MipmapFilter:  enum(mipmapFilterModes, common.Coalesce(desc.MipmapFilter, gpu.FilterModeNearest)),
		LodMinClamp:   desc.LodMinClamp,
		LodMaxClamp:   common.Coalesce(desc.LodMaxClamp, 32.0),
		Compare:       enum(compareFunctions, desc.Compare),
		MaxAnisotropy: common.Coalesce(desc.MaxAnisotropy, 1),
	}
}

func (b *Backend) shaderModuleDescriptor(desc *gpu.ShaderModuleDescriptor) *wgpu.ShaderModuleDescriptor {
	out := &wgpu.ShaderModuleDescriptor{Label: desc.Label}
	if desc.SPIRV != nil {
		out.SPIRVDescriptor = &wgpu.ShaderModuleSPIRVDescriptor{Code: spirvBytes(desc.SPIRV)}
	} else {
		out.WGSLDescriptor = &wgpu.ShaderModuleWGSLDescriptor{Code: desc.WGSL}
	}
	return out
}

// spirvBytes encodes SPIR-V words in little-endian byte order, as wgpu-native reads them.
func spirvBytes(words []uint32) []byte {
	out := make([]byte, len(words)*4)
	for i, w := range words {
		binary.LittleEndian.PutUint32(out[i*4:], w)
	}
	return out
}

// bindGroupLayoutDescriptor leaves the binding types of absent layouts undefined, which is how
// wgpu-native tells which of the four layouts an entry uses.
func (b *Backend) bindGroupLayoutDescriptor(desc *gpu.BindGroupLayoutDescriptor) *wgpu.BindGroupLayoutDescriptor {
	entries := make([]wgpu.BindGroupLayoutEntry, len(desc.Entries))
	for i, e := range desc.Entries {
		entry := wgpu.BindGroupLayoutEntry{
			Binding:    e.Binding,
			Visibility: wgpu.ShaderStage(e.Visibility),
		}
		if e.Buffer != nil {
			entry.Buffer.Type = enum(bufferBindingTypes, common.Coalesce(e.Buffer.Type, gpu.BufferBindingTypeUniform))
			entry.Buffer.HasDynamicOffset = e.Buffer.HasDynamicOffset
			entry.Buffer.MinBindingSize = e.Buffer.MinBindingSize
		}
		if e.Sampler != nil {
			entry.Sampler.Type = enum(samplerBindingTypes, common.Coalesce(e.Sampler.Type, gpu.SamplerBindingTypeFiltering))
		}
		if e.Texture != nil {
			entry.Texture.SampleType = enum(sampleTypes, common.Coalesce(e.Texture.SampleType, gpu.TextureSampleTypeFloat))
			entry.Texture.ViewDimension = enum(viewDimensions, common.Coalesce(e.Texture.ViewDimension, gpu.TextureViewDimension2D))
			entry.Texture.Multisampled = e.Texture.Multisampled
		}
		if e.StorageTexture != nil {
			entry.StorageTexture.Access = enum(storageAccesses, common.Coalesce(e.StorageTexture.Access, gpu.StorageTextureAccessWriteOnly))
			entry.StorageTexture.Format = enum(textureFormats, e.StorageTexture.Format)
			entry.StorageTexture.ViewDimension = enum(viewDimensions, common.Coalesce(e.StorageTexture.ViewDimension, gpu.TextureViewDimension2D))
		}
		entries[i] = entry
	}
	return &wgpu.BindGroupLayoutDescriptor{Label: desc.Label, Entries: entries}
}

func (b *Backend) bindGroupDescriptor(desc *gpu.BindGroupDescriptor) (*wgpu.BindGroupDescriptor, error) {
	layout, err := b.bindGroupLayouts.Lookup(desc.Layout.ID())
	if err != nil {
		return nil, err
	}

	entries := make([]wgpu.BindGroupEntry, len(desc.Entries))
	for i, e := range desc.Entries {
		entry := wgpu.BindGroupEntry{Binding: e.Binding}
		switch r := e.Resource.(type) {
		case gpu.BufferBinding:
			buf, err := b.buffers.Lookup(r.Buffer.ID())
			if err != nil {
				return nil, err
			}
			entry.Buffer = buf
			entry.Offset = r.Offset
			entry.Size = r.Size
			if r.Size == 0 {
				entry.Size = wgpu.WholeSize
			}
		case *gpu.Sampler:
			s, err := b.samplers.Lookup(r.ID())
			if err != nil {
				return nil, err
			}
			entry.Sampler = s
		case *gpu.TextureView:
			v, err := b.views.Lookup(r.ID())
			if err != nil {
				return nil, err
			}
			entry.TextureView = v
		default:
			return nil, fmt.Errorf("binding %d: resource %T: %w", e.Binding, e.Resource, gpu.ErrInvalidDescriptor)
		}
		entries[i] = entry
	}
	return &wgpu.BindGroupDescriptor{Label: desc.Label, Layout: layout, Entries: entries}, nil
}

func (b *Backend) pipelineLayoutDescriptor(desc *gpu.PipelineLayoutDescriptor) (*wgpu.PipelineLayoutDescriptor, error) {
	layouts := make([]*wgpu.BindGroupLayout, len(desc.BindGroupLayouts))
	for i, l := range desc.BindGroupLayouts {
		layout, err := b.bindGroupLayouts.Lookup(l.ID())
		if err != nil {
			return nil, err
		}
		layouts[i] = layout
	}
	return &wgpu.PipelineLayoutDescriptor{Label: desc.Label, BindGroupLayouts: layouts}, nil
}

func (b *Backend) pipelineLayout(l *gpu.PipelineLayout) (*wgpu.PipelineLayout, error) {
	if l == nil {
		return nil, nil
	}
	return b.pipelineLayouts.Lookup(l.ID())
}

func blendComponent(c gpu.BlendComponent) wgpu.BlendComponent {
	return wgpu.BlendComponent{
		Operation: enum(blendOperations, common.Coalesce(c.Operation, gpu.BlendOperationAdd)),
		SrcFactor: enum(blendFactors, common.Coalesce(c.SrcFactor, gpu.BlendFactorOne)),
		DstFactor: enum(blendFactors, common.Coalesce(c.DstFactor, gpu.BlendFactorZero)),
	}
}

func stencilFace(s gpu.StencilFaceState) wgpu.StencilFaceState {
	return wgpu.StencilFaceState{
		Compare:     enum(compareFunctions, common.Coalesce(s.Compare, gpu.CompareFunctionAlways)),
		FailOp:      enum(stencilOperations, s.FailOp),
		DepthFailOp: enum(stencilOperations, s.DepthFailOp),
		PassOp:      enum(stencilOperations, s.PassOp),
	}
}

func (b *Backend) renderPipelineDescriptor(desc *gpu.RenderPipelineDescriptor) (*wgpu.RenderPipelineDescriptor, error) {
	layout, err := b.pipelineLayout(desc.Layout)
	if err != nil {
		return nil, err
	}
	vs, err := b.shaders.Lookup(desc.Vertex.Module.ID())
	if err != nil {
		return nil, err
	}

	buffers := make([]wgpu.VertexBufferLayout, len(desc.Vertex.Buffers))
	for i, l := range desc.Vertex.Buffers {
		attrs := make([]wgpu.VertexAttribute, len(l.Attributes))
		for j, a := range l.Attributes {
			attrs[j] = wgpu.VertexAttribute{
				Format:         enum(vertexFormats, a.Format),
				Offset:         a.Offset,
				ShaderLocation: a.ShaderLocation,
			}
		}
		buffers[i] = wgpu.VertexBufferLayout{
			ArrayStride: l.ArrayStride,
			StepMode:    enum(stepModes, l.StepMode),
			Attributes:  attrs,
		}
	}

	out := &wgpu.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: desc.Vertex.EntryPoint,
			Buffers:    buffers,
		},
		Primitive: wgpu.PrimitiveState{
			Topology:         enum(topologies, common.Coalesce(desc.Primitive.Topology, gpu.PrimitiveTopologyTriangleList)),
			StripIndexFormat: enum(indexFormats, desc.Primitive.StripIndexFormat),
			FrontFace:        enum(frontFaces, common.Coalesce(desc.Primitive.FrontFace, gpu.FrontFaceCCW)),
			CullMode:         enum(cullModes, common.Coalesce(desc.Primitive.CullMode, gpu.CullModeNone)),
		},
		Multisample: wgpu.MultisampleState{
			Count:                  desc.Multisample.SampleCount(),
			Mask:                   desc.Multisample.SampleMask(),
			AlphaToCoverageEnabled: desc.Multisample.AlphaToCoverageEnabled,
		},
	}

	if ds := desc.DepthStencil; ds != nil {
		out.DepthStencil = &wgpu.DepthStencilState{
			Format:              enum(textureFormats, ds.Format),
			DepthWriteEnabled:   ds.DepthWriteEnabled,
			DepthCompare:        enum(compareFunctions, common.Coalesce(ds.DepthCompare, gpu.CompareFunctionAlways)),
			StencilFront:        stencilFace(ds.StencilFront),
			StencilBack:         stencilFace(ds.StencilBack),
			StencilReadMask:     common.Coalesce(ds.StencilReadMask, gpu.StencilMaskAll),
			StencilWriteMask:    common.Coalesce(ds.StencilWriteMask, gpu.StencilMaskAll),
			DepthBias:           ds.DepthBias,
			DepthBiasSlopeScale: ds.DepthBiasSlopeScale,
			DepthBiasClamp:      ds.DepthBiasClamp,
		}
	}

	if fs := desc.Fragment; fs != nil {
		module, err := b.shaders.Lookup(fs.Module.ID())
		if err != nil {
			return nil, err
		}
		targets := make([]wgpu.ColorTargetState, len(fs.Targets))
		for i, t := range fs.Targets {
			targets[i] = wgpu.ColorTargetState{
				Format:    enum(textureFormats, t.Format),
				WriteMask: wgpu.ColorWriteMask(t.Mask()),
			}
			if t.Blend != nil {
				targets[i].Blend = &wgpu.BlendState{
					Color: blendComponent(t.Blend.Color),
					Alpha: blendComponent(t.Blend.Alpha),
				}
			}
		}
		out.Fragment = &wgpu.FragmentState{
			Module:     module,
			EntryPoint: fs.EntryPoint,
			Targets:    targets,
		}
	}
	return out, nil
}

func (b *Backend) computePipelineDescriptor(desc *gpu.ComputePipelineDescriptor) (*wgpu.ComputePipelineDescriptor, error) {
	layout, err := b.pipelineLayout(desc.Layout)
	if err != nil {
		return nil, err
	}
	module, err := b.shaders.Lookup(desc.Compute.Module.ID())
	if err != nil {
		return nil, err
	}
	return &wgpu.ComputePipelineDescriptor{
		Label:  desc.Label,
		Layout: layout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     module,
			EntryPoint: desc.Compute.EntryPoint,
		},
	}, nil
}

func (b *Backend) renderPassDescriptor(desc *gpu.RenderPassDescriptor) (*wgpu.RenderPassDescriptor, error) {
	colors := make([]wgpu.RenderPassColorAttachment, len(desc.ColorAttachments))
	for i, a := range desc.ColorAttachments {
		view, err := b.views.Lookup(a.View.ID())
		if err != nil {
			return nil, err
		}
		c := a.ClearValue()
		colors[i] = wgpu.RenderPassColorAttachment{
			View:       view,
			LoadOp:     enum(loadOps, common.Coalesce(a.LoadOp, gpu.LoadOpLoad)),
			StoreOp:    enum(storeOps, common.Coalesce(a.StoreOp, gpu.StoreOpStore)),
			ClearValue: wgpu.Color{R: float64(c.R), G: float64(c.G), B: float64(c.B), A: float64(c.A)},
		}
		if a.ResolveTarget != nil {
			resolve, err := b.views.Lookup(a.ResolveTarget.ID())
			if err != nil {
				return nil, err
			}
			colors[i].ResolveTarget = resolve
		}
	}

	out := &wgpu.RenderPassDescriptor{Label: desc.Label, ColorAttachments: colors}
	if ds := desc.DepthStencilAttachment; ds != nil {
		view, err := b.views.Lookup(ds.View.ID())
		if err != nil {
			return nil, err
		}
		out.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
			View:              view,
			DepthLoadOp:       enum(loadOps, ds.DepthLoadOp),
			DepthStoreOp:      enum(storeOps, ds.DepthStoreOp),
			DepthClearValue:   ds.DepthClearValue,
			DepthReadOnly:     ds.DepthReadOnly,
			StencilLoadOp:     enum(loadOps, ds.StencilLoadOp),
			StencilStoreOp:    enum(storeOps, ds.StencilStoreOp),
			StencilClearValue: ds.StencilClearValue,
			StencilReadOnly:   ds.StencilReadOnly,
		}
	}
	return out, nil
}

// texelCopy resolves the texture and buffer of a copy. Zero BytesPerRow and RowsPerImage
// describe tightly packed rows and images.
func (b *Backend) texelCopy(buf *gpu.ImageCopyBuffer, tex *gpu.ImageCopyTexture, size gpu.Extent3D) (*wgpu.ImageCopyBuffer, *wgpu.ImageCopyTexture, *wgpu.Extent3D, error) {
	wb, err := b.buffers.Lookup(buf.Buffer.ID())
	if err != nil {
		return nil, nil, nil, err
	}
	wt, err := b.textures.Lookup(tex.Texture.ID())
	if err != nil {
		return nil, nil, nil, err
	}

	layout := wgpu.TextureDataLayout{
		Offset:       buf.Layout.Offset,
		BytesPerRow:  common.Coalesce(buf.Layout.BytesPerRow, size.Width*wt.desc.Format.BytesPerTexel()),
		RowsPerImage: common.Coalesce(buf.Layout.RowsPerImage, size.Height),
	}
	return &wgpu.ImageCopyBuffer{Buffer: wb, Layout: layout},
		&wgpu.ImageCopyTexture{
			Texture:  wt.texture,
			MipLevel: tex.MipLevel,
			Origin:   wgpu.Origin3D{X: tex.Origin.X, Y: tex.Origin.Y, Z: tex.Origin.Z},
			Aspect:   enum(textureAspects, tex.Aspect),
		},
		&wgpu.Extent3D{
			Width:              size.Width,
			Height:             size.Height,
			DepthOrArrayLayers: max(size.DepthOrArrayLayers, 1),
		}, nil
}
