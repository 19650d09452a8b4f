package browser

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gpu/engine/gpu"
)

// object is a WebGPU descriptor literal. Values are restricted to what js.ValueOf accepts:
// strings, numbers, bools, nested objects, []any and resolved JS references.
type object = map[string]any

// refs resolves handles to the JS objects they stand for.
type refs interface {
	buffer(gpu.BufferID) (any, error)
	texture(gpu.TextureID) (any, error)
	textureView(gpu.TextureViewID) (any, error)
	sampler(gpu.SamplerID) (any, error)
	shaderModule(gpu.ShaderModuleID) (any, error)
	bindGroupLayout(gpu.BindGroupLayoutID) (any, error)
	pipelineLayout(gpu.PipelineLayoutID) (any, error)
}

type enumValue interface {
	~uint32
	String() string
}

// putEnum sets key unless v is the undefined zero value, leaving the key absent so the
// browser applies its own default.
func putEnum[E enumValue](o object, key string, v E) {
	if v != 0 {
		o[key] = v.String()
	}
}

func putLabel(o object, label string) {
	if label != "" {
		o["label"] = label
	}
}

func labelled(label string) object {
	o := object{}
	putLabel(o, label)
	return o
}

func extent(e gpu.Extent3D) object {
	return object{
		"width":              e.Width,
		"height":             max(e.Height, 1),
		"depthOrArrayLayers": max(e.DepthOrArrayLayers, 1),
	}
}

func adapterOptions(opts gpu.RequestAdapterOptions) object {
	o := object{}
	putEnum(o, "powerPreference", opts.PowerPreference)
	if opts.ForceFallbackAdapter {
		o["forceFallbackAdapter"] = true
	}
	return o
}

func deviceDescriptor(desc gpu.DeviceDescriptor) object {
	o := labelled(desc.Label)
	if desc.MaxBindGroups != 0 {
		o["requiredLimits"] = object{"maxBindGroups": desc.MaxBindGroups}
	}
	return o
}

func bufferDescriptor(desc *gpu.BufferDescriptor) object {
	o := labelled(desc.Label)
	o["size"] = desc.Size
	o["usage"] = uint32(desc.Usage)
	if desc.MappedAtCreation {
		o["mappedAtCreation"] = true
	}
	return o
}

func textureDescriptor(desc *gpu.TextureDescriptor) object {
	o := labelled(desc.Label)
	o["size"] = extent(desc.Size)
	o["format"] = desc.Format.String()
	o["usage"] = uint32(desc.Usage)
	if desc.MipLevelCount != 0 {
		o["mipLevelCount"] = desc.MipLevelCount
	}
	if desc.SampleCount != 0 {
		o["sampleCount"] = desc.SampleCount
	}
	putEnum(o, "dimension", desc.Dimension)
	return o
}

// viewDescriptor returns nil for a nil descriptor; the view is then created without arguments.
func viewDescriptor(desc *gpu.TextureViewDescriptor) object {
	if desc == nil {
		return nil
	}
	o := labelled(desc.Label)
	putEnum(o, "format", desc.Format)
	putEnum(o, "dimension", desc.Dimension)
	if desc.Aspect != gpu.TextureAspectAll {
		o["aspect"] = desc.Aspect.String()
	}
	if desc.BaseMipLevel != 0 {
		o["baseMipLevel"] = desc.BaseMipLevel
	}
	if desc.MipLevelCount != 0 {
		o["mipLevelCount"] = desc.MipLevelCount
	}
	if desc.BaseArrayLayer != 0 {
		o["baseArrayLayer"] = desc.BaseArrayLayer
	}
	if desc.ArrayLayerCount != 0 {
		o["arrayLayerCount"] = desc.ArrayLayerCount
	}
	return o
}

func samplerDescriptor(desc *gpu.SamplerDescriptor) object {
	o := labelled(desc.Label)
	putEnum(o, "addressModeU", desc.AddressModeU)
	putEnum(o, "addressModeV", desc.AddressModeV)
	putEnum(o, "addressModeW", desc.AddressModeW)
	putEnum(o, "magFilter", desc.MagFilter)
	putEnum(o, "minFilter", desc.MinFilter)
	putEnum(o, "mipmapFilter", desc.MipmapFilter)
	putEnum(o, "compare", desc.Compare)
	if desc.LodMinClamp != 0 {
		o["lodMinClamp"] = desc.LodMinClamp
	}
	if desc.LodMaxClamp != 0 {
		o["lodMaxClamp"] = desc.LodMaxClamp
	}
	if desc.MaxAnisotropy != 0 {
		o["maxAnisotropy"] = desc.MaxAnisotropy
	}
	return o
}

func shaderModuleDescriptor(desc *gpu.ShaderModuleDescriptor) object {
	o := labelled(desc.Label)
	o["code"] = desc.WGSL
	return o
}

func bindGroupLayoutDescriptor(desc *gpu.BindGroupLayoutDescriptor) object {
	entries := make([]any, len(desc.Entries))
	for i, e := range desc.Entries {
		entry := object{
			"binding":    e.Binding,
			"visibility": uint32(e.Visibility),
		}
		if l := e.Buffer; l != nil {
			b := object{}
			putEnum(b, "type", l.Type)
			if l.HasDynamicOffset {
				b["hasDynamicOffset"] = true
			}
			if l.MinBindingSize != 0 {
				b["minBindingSize"] = l.MinBindingSize
			}
			entry["buffer"] = b
		}
		if l := e.Sampler; l != nil {
			s := object{}
			putEnum(s, "type", l.Type)
			entry["sampler"] = s
		}
		if l := e.Texture; l != nil {
			t := object{}
			putEnum(t, "sampleType", l.SampleType)
			putEnum(t, "viewDimension", l.ViewDimension)
			if l.Multisampled {
				t["multisampled"] = true
			}
			entry["texture"] = t
		}
		if l := e.StorageTexture; l != nil {
			t := object{"format": l.Format.String()}
			putEnum(t, "access", l.Access)
			putEnum(t, "viewDimension", l.ViewDimension)
			entry["storageTexture"] = t
		}
		entries[i] = entry
	}
	o := labelled(desc.Label)
	o["entries"] = entries
	return o
}

func bindGroupDescriptor(r refs, desc *gpu.BindGroupDescriptor) (object, error) {
	layout, err := r.bindGroupLayout(desc.Layout.ID())
	if err != nil {
		return nil, err
	}

	entries := make([]any, len(desc.Entries))
	for i, e := range desc.Entries {
		var resource any
		switch res := e.Resource.(type) {
		case gpu.BufferBinding:
			buf, err := r.buffer(res.Buffer.ID())
			if err != nil {
				return nil, err
			}
			binding := object{"buffer": buf}
			if res.Offset != 0 {
				binding["offset"] = res.Offset
			}
			if res.Size != 0 {
				binding["size"] = res.Size
			}
			resource = binding
		case *gpu.Sampler:
			if resource, err = r.sampler(res.ID()); err != nil {
				return nil, err
			}
		case *gpu.TextureView:
			if resource, err = r.textureView(res.ID()); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("binding %d: resource %T: %w", e.Binding, e.Resource, gpu.ErrInvalidDescriptor)
		}
		entries[i] = object{"binding": e.Binding, "resource": resource}
	}

	o := labelled(desc.Label)
	o["layout"] = layout
	o["entries"] = entries
	return o, nil
}

func pipelineLayoutDescriptor(r refs, desc *gpu.PipelineLayoutDescriptor) (object, error) {
	layouts := make([]any, len(desc.BindGroupLayouts))
	for i, l := range desc.BindGroupLayouts {
		layout, err := r.bindGroupLayout(l.ID())
		if err != nil {
			return nil, err
		}
		layouts[i] = layout
	}
	o := labelled(desc.Label)
	o["bindGroupLayouts"] = layouts
	return o, nil
}

// pipelineLayout resolves an optional layout; a nil layout asks the browser to derive one.
func pipelineLayout(r refs, l *gpu.PipelineLayout) (any, error) {
	if l == nil {
		return "auto", nil
	}
	return r.pipelineLayout(l.ID())
}

func stage(r refs, module *gpu.ShaderModule, entryPoint string) (object, error) {
	m, err := r.shaderModule(module.ID())
	if err != nil {
		return nil, err
	}
	o := object{"module": m}
	if entryPoint != "" {
		o["entryPoint"] = entryPoint
	}
	return o, nil
}

func blendComponent(c gpu.BlendComponent) object {
	o := object{}
	putEnum(o, "operation", c.Operation)
	putEnum(o, "srcFactor", c.SrcFactor)
	putEnum(o, "dstFactor", c.DstFactor)
	return o
}

func stencilFace(s gpu.StencilFaceState) object {
	o := object{}
	putEnum(o, "compare", s.Compare)
	putEnum(o, "failOp", s.FailOp)
	putEnum(o, "depthFailOp", s.DepthFailOp)
	putEnum(o, "passOp", s.PassOp)
	return o
}

func renderPipelineDescriptor(r refs, desc *gpu.RenderPipelineDescriptor) (object, error) {
	layout, err := pipelineLayout(r, desc.Layout)
	if err != nil {
		return nil, err
	}
	vertex, err := stage(r, desc.Vertex.Module, desc.Vertex.EntryPoint)
	if err != nil {
		return nil, err
	}

	buffers := make([]any, len(desc.Vertex.Buffers))
	for i, l := range desc.Vertex.Buffers {
		attrs := make([]any, len(l.Attributes))
		for j, a := range l.Attributes {
			attrs[j] = object{
				"format":         a.Format.String(),
				"offset":         a.Offset,
				"shaderLocation": a.ShaderLocation,
			}
		}
		buffers[i] = object{
			"arrayStride": l.ArrayStride,
			"stepMode":    l.StepMode.String(),
			"attributes":  attrs,
		}
	}
	vertex["buffers"] = buffers

	primitive := object{}
	putEnum(primitive, "topology", desc.Primitive.Topology)
	putEnum(primitive, "stripIndexFormat", desc.Primitive.StripIndexFormat)
	putEnum(primitive, "frontFace", desc.Primitive.FrontFace)
	putEnum(primitive, "cullMode", desc.Primitive.CullMode)

	multisample := object{
		"count": desc.Multisample.SampleCount(),
		"mask":  desc.Multisample.SampleMask(),
	}
	if desc.Multisample.AlphaToCoverageEnabled {
		multisample["alphaToCoverageEnabled"] = true
	}

	o := labelled(desc.Label)
	o["layout"] = layout
	o["vertex"] = vertex
	o["primitive"] = primitive
	o["multisample"] = multisample

	if ds := desc.DepthStencil; ds != nil {
		depth := object{
			"format":            ds.Format.String(),
			"depthWriteEnabled": ds.DepthWriteEnabled,
			"stencilFront":      stencilFace(ds.StencilFront),
			"stencilBack":       stencilFace(ds.StencilBack),
		}
		putEnum(depth, "depthCompare", ds.DepthCompare)
		if ds.StencilReadMask != 0 {
			depth["stencilReadMask"] = ds.StencilReadMask
		}
		if ds.StencilWriteMask != 0 {
			depth["stencilWriteMask"] = ds.StencilWriteMask
		}
		if ds.DepthBias != 0 {
			depth["depthBias"] = ds.DepthBias
		}
		if ds.DepthBiasSlopeScale != 0 {
			depth["depthBiasSlopeScale"] = ds.DepthBiasSlopeScale
		}
		if ds.DepthBiasClamp != 0 {
			depth["depthBiasClamp"] = ds.DepthBiasClamp
		}
		o["depthStencil"] = depth
	}

	if fs := desc.Fragment; fs != nil {
		fragment, err := stage(r, fs.Module, fs.EntryPoint)
		if err != nil {
			return nil, err
		}
		targets := make([]any, len(fs.Targets))
		for i, t := range fs.Targets {
			target := object{
				"format":    t.Format.String(),
				"writeMask": uint32(t.Mask()),
			}
			if t.Blend != nil {
				target["blend"] = object{
					"color": blendComponent(t.Blend.Color),
					"alpha": blendComponent(t.Blend.Alpha),
				}
			}
			targets[i] = target
		}
		fragment["targets"] = targets
		o["fragment"] = fragment
	}
	return o, nil
}

func computePipelineDescriptor(r refs, desc *gpu.ComputePipelineDescriptor) (object, error) {
	layout, err := pipelineLayout(r, desc.Layout)
	if err != nil {
		return nil, err
	}
	compute, err := stage(r, desc.Compute.Module, desc.Compute.EntryPoint)
	if err != nil {
		return nil, err
	}
	o := labelled(desc.Label)
	o["layout"] = layout
	o["compute"] = compute
	return o, nil
}

func color(c gpu.Color) object {
	return object{"r": float64(c.R), "g": float64(c.G), "b": float64(c.B), "a": float64(c.A)}
}

// renderPassDescriptor defaults undefined load and store ops to load and store, which WebGPU
// requires to be present.
func renderPassDescriptor(r refs, desc *gpu.RenderPassDescriptor) (object, error) {
	colors := make([]any, len(desc.ColorAttachments))
	for i, a := range desc.ColorAttachments {
		view, err := r.textureView(a.View.ID())
		if err != nil {
			return nil, err
		}
		loadOp := a.LoadOp
		if loadOp == gpu.LoadOpUndefined {
			loadOp = gpu.LoadOpLoad
		}
		storeOp := a.StoreOp
		if storeOp == gpu.StoreOpUndefined {
			storeOp = gpu.StoreOpStore
		}
		attachment := object{
			"view":    view,
			"loadOp":  loadOp.String(),
			"storeOp": storeOp.String(),
		}
		if loadOp == gpu.LoadOpClear {
			attachment["clearValue"] = color(a.ClearValue())
		}
		if a.ResolveTarget != nil {
			resolve, err := r.textureView(a.ResolveTarget.ID())
			if err != nil {
				return nil, err
			}
			attachment["resolveTarget"] = resolve
		}
		colors[i] = attachment
	}

	o := labelled(desc.Label)
	o["colorAttachments"] = colors
	if ds := desc.DepthStencilAttachment; ds != nil {
		view, err := r.textureView(ds.View.ID())
		if err != nil {
			return nil, err
		}
		depth := object{"view": view}
		putEnum(depth, "depthLoadOp", ds.DepthLoadOp)
		putEnum(depth, "depthStoreOp", ds.DepthStoreOp)
		putEnum(depth, "stencilLoadOp", ds.StencilLoadOp)
		putEnum(depth, "stencilStoreOp", ds.StencilStoreOp)
		if ds.DepthLoadOp == gpu.LoadOpClear {
			depth["depthClearValue"] = ds.DepthClearValue
		}
		if ds.StencilLoadOp == gpu.LoadOpClear {
			depth["stencilClearValue"] = ds.StencilClearValue
		}
		if ds.DepthReadOnly {
			depth["depthReadOnly"] = true
		}
		if ds.StencilReadOnly {
			depth["stencilReadOnly"] = true
		}
		o["depthStencilAttachment"] = depth
	}
	return o, nil
}

func imageCopyBuffer(r refs, c *gpu.ImageCopyBuffer) (object, error) {
	buf, err := r.buffer(c.Buffer.ID())
	if err != nil {
		return nil, err
	}
	o := object{"buffer": buf}
	if c.Layout.Offset != 0 {
		o["offset"] = c.Layout.Offset
	}
	if c.Layout.BytesPerRow != 0 {
		o["bytesPerRow"] = c.Layout.BytesPerRow
	}
	if c.Layout.RowsPerImage != 0 {
		o["rowsPerImage"] = c.Layout.RowsPerImage
	}
	return o, nil
}

func imageCopyTexture(r refs, c *gpu.ImageCopyTexture) (object, error) {
	tex, err := r.texture(c.Texture.ID())
	if err != nil {
		return nil, err
	}
	o := object{
		"texture": tex,
		"origin":  object{"x": c.Origin.X, "y": c.Origin.Y, "z": c.Origin.Z},
	}
	if c.MipLevel != 0 {
		o["mipLevel"] = c.MipLevel
	}
	if c.Aspect != gpu.TextureAspectAll {
		o["aspect"] = c.Aspect.String()
	}
	return o, nil
}

// canvasConfiguration describes a GPUCanvasContext configuration for a device.
func canvasConfiguration(device any, desc *gpu.SwapChainDescriptor) object {
	return object{
		"device":    device,
		"format":    desc.Format.String(),
		"usage":     uint32(desc.Usage),
		"alphaMode": "opaque",
	}
}
