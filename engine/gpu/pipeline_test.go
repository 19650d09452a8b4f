package gpu_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-gpu/engine/gpu"
	"github.com/Carmen-Shannon/oxy-gpu/engine/gpu/backend/headless"
)

func TestRenderPipelineForwardsAbsentBlend(t *testing.T) {
	dev, b := newDevice(t)
	shader := newShader(t, dev)

	p, err := dev.CreateRenderPipeline(&gpu.RenderPipelineDescriptor{
		Vertex: gpu.VertexState{Module: shader, EntryPoint: "vs_main"},
		Fragment: &gpu.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets:    []gpu.ColorTargetState{{Format: gpu.TextureFormatBGRA8Unorm, Blend: nil}},
		},
	})
	require.NoError(t, err)
	require.False(t, p.ID().IsNil())

	rec, ok := b.RenderPipeline(p.ID())
	require.True(t, ok)
	require.NotNil(t, rec.Fragment)
	require.Equal(t, 1, rec.Fragment.TargetCount)
	require.Len(t, rec.Fragment.Targets, 1)
	assert.Nil(t, rec.Fragment.Targets[0].Blend)
	assert.Equal(t, gpu.ColorWriteMaskAll, rec.Fragment.Targets[0].WriteMask)
	assert.Nil(t, rec.DepthStencil)
	assert.Equal(t, gpu.PrimitiveTopologyTriangleList, rec.Primitive.Topology)
	assert.Equal(t, uint32(1), rec.SampleCount)
}

func TestRenderPipelineArrayCounts(t *testing.T) {
	dev, b := newDevice(t)
	shader := newShader(t, dev)

	for _, n := range []int{0, 1, 2, 3, 8} {
		t.Run(fmt.Sprintf("%d elements", n), func(t *testing.T) {
			targets := make([]gpu.ColorTargetState, n)
			buffers := make([]gpu.VertexBufferLayout, n)
			for i := range n {
				targets[i] = gpu.ColorTargetState{Format: gpu.TextureFormatRGBA8Unorm}
				if i%2 == 0 {
					targets[i].Blend = &gpu.BlendState{
						Color: gpu.BlendComponent{Operation: gpu.BlendOperationAdd, SrcFactor: gpu.BlendFactorSrcAlpha, DstFactor: gpu.BlendFactorOneMinusSrcAlpha},
						Alpha: gpu.BlendComponent{Operation: gpu.BlendOperationAdd, SrcFactor: gpu.BlendFactorOne, DstFactor: gpu.BlendFactorZero},
					}
				}
				attrs := make([]gpu.VertexAttribute, i+1)
				for j := range attrs {
					attrs[j] = gpu.VertexAttribute{Format: gpu.VertexFormatFloat32x4, Offset: uint64(16 * j), ShaderLocation: uint32(j)}
				}
				buffers[i] = gpu.VertexBufferLayout{ArrayStride: uint64(16 * len(attrs)), Attributes: attrs}
			}

			p, err := dev.CreateRenderPipeline(&gpu.RenderPipelineDescriptor{
				Vertex:   gpu.VertexState{Module: shader, EntryPoint: "vs_main", Buffers: buffers},
				Fragment: &gpu.FragmentState{Module: shader, EntryPoint: "fs_main", Targets: targets},
			})
			require.NoError(t, err)

			rec, ok := b.RenderPipeline(p.ID())
			require.True(t, ok)
			assert.Equal(t, n, rec.Fragment.TargetCount)
			assert.Len(t, rec.Fragment.Targets, n)
			assert.Equal(t, n, rec.VertexBufferCount)
			assert.Len(t, rec.VertexBuffers, n)
			for i := range n {
				assert.Equal(t, i+1, rec.VertexBuffers[i].AttributeCount)
				assert.Len(t, rec.VertexBuffers[i].Attributes, i+1)
				if i%2 == 0 {
					require.NotNil(t, rec.Fragment.Targets[i].Blend)
					assert.Equal(t, *targets[i].Blend, *rec.Fragment.Targets[i].Blend)
				} else {
					assert.Nil(t, rec.Fragment.Targets[i].Blend)
				}
			}

			calls := b.CallsOf("CreateRenderPipeline")
			assert.Equal(t, n, calls[len(calls)-1].Count)
		})
	}
}

func TestRenderPipelineWithoutFragment(t *testing.T) {
	dev, b := newDevice(t)
	shader := newShader(t, dev)

	p, err := dev.CreateRenderPipeline(&gpu.RenderPipelineDescriptor{
		Vertex: gpu.VertexState{Module: shader, EntryPoint: "vs_main"},
	})
	require.NoError(t, err)

	rec, ok := b.RenderPipeline(p.ID())
	require.True(t, ok)
	assert.Nil(t, rec.Fragment)
}

func TestRenderPipelineDepthStencilSupport(t *testing.T) {
	depth := &gpu.DepthStencilState{
		Format:            gpu.TextureFormatDepth32Float,
		DepthWriteEnabled: true,
		DepthCompare:      gpu.CompareFunctionLess,
	}

	t.Run("supported", func(t *testing.T) {
		dev, b := newDevice(t)
		shader := newShader(t, dev)
		p, err := dev.CreateRenderPipeline(&gpu.RenderPipelineDescriptor{
			Vertex:       gpu.VertexState{Module: shader, EntryPoint: "vs_main"},
			DepthStencil: depth,
		})
		require.NoError(t, err)
		rec, _ := b.RenderPipeline(p.ID())
		require.NotNil(t, rec.DepthStencil)
		assert.Equal(t, *depth, *rec.DepthStencil)
	})

	t.Run("not implemented", func(t *testing.T) {
		dev, b := newDevice(t, headless.WithFeatureSupport(gpu.FeatureDepthStencil, gpu.NotImplemented))
		shader := newShader(t, dev)
		_, err := dev.CreateRenderPipeline(&gpu.RenderPipelineDescriptor{
			Vertex:       gpu.VertexState{Module: shader, EntryPoint: "vs_main"},
			DepthStencil: depth,
		})

		var fe *gpu.FeatureError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, gpu.FeatureDepthStencil, fe.Feature)
		assert.ErrorIs(t, err, gpu.ErrNotImplemented)
		assert.NotErrorIs(t, err, gpu.ErrUnsupported)
		assert.Empty(t, b.CallsOf("CreateRenderPipeline"))
	})
}

func TestShaderModulePayload(t *testing.T) {
	dev, b := newDevice(t)

	m := newShader(t, dev)
	rec, ok := b.ShaderModule(m.ID())
	require.True(t, ok)
	assert.Equal(t, testWGSL, rec.WGSL)
	assert.Nil(t, rec.SPIRV)

	words := []uint32{0x07230203, 0x00010000, 0x0008000a}
	spv, err := dev.CreateShaderModule(&gpu.ShaderModuleDescriptor{SPIRV: words})
	require.NoError(t, err)
	rec, ok = b.ShaderModule(spv.ID())
	require.True(t, ok)
	assert.Equal(t, words, rec.SPIRV)

	_, err = dev.CreateShaderModule(&gpu.ShaderModuleDescriptor{})
	assert.ErrorIs(t, err, gpu.ErrInvalidDescriptor)
	_, err = dev.CreateShaderModule(&gpu.ShaderModuleDescriptor{WGSL: testWGSL, SPIRV: words})
	assert.ErrorIs(t, err, gpu.ErrInvalidDescriptor)
}

func TestShaderModuleSPIRVUnsupported(t *testing.T) {
	dev, _ := newDevice(t, headless.WithFeatureSupport(gpu.FeatureSPIRVShaders, gpu.UnsupportedByDesign))

	_, err := dev.CreateShaderModule(&gpu.ShaderModuleDescriptor{SPIRV: []uint32{0x07230203}})
	assert.ErrorIs(t, err, gpu.ErrUnsupported)
	assert.NotErrorIs(t, err, gpu.ErrNotImplemented)

	_, err = dev.CreateShaderModule(&gpu.ShaderModuleDescriptor{WGSL: testWGSL})
	assert.NoError(t, err)
}

func TestDeviceMismatch(t *testing.T) {
	inst, _ := newInstance(t)
	t.Setenv(gpu.EnvTracePath, "")
	adapter, err := inst.RequestAdapter(t.Context(), nil)
	require.NoError(t, err)
	devA, err := adapter.RequestDevice(t.Context(), nil)
	require.NoError(t, err)
	devB, err := adapter.RequestDevice(t.Context(), nil)
	require.NoError(t, err)

	shader := newShader(t, devA)
	_, err = devB.CreateRenderPipeline(&gpu.RenderPipelineDescriptor{
		Vertex: gpu.VertexState{Module: shader, EntryPoint: "vs_main"},
	})
	assert.ErrorIs(t, err, gpu.ErrDeviceMismatch)

	_, err = devB.CreateRenderPipeline(&gpu.RenderPipelineDescriptor{})
	assert.ErrorIs(t, err, gpu.ErrNilResource)

	buf := newMappedBuffer(t, devA, 16, gpu.BufferUsageMapWrite)
	buf.Unmap()
	assert.ErrorIs(t, devB.Queue().WriteBuffer(buf, 0, []byte{1, 2, 3, 4}), gpu.ErrDeviceMismatch)
}

func TestPipelineLayout(t *testing.T) {
	dev, b := newDevice(t)

	layouts := make([]*gpu.BindGroupLayout, 5)
	for i := range layouts {
		l, err := dev.CreateBindGroupLayout(&gpu.BindGroupLayoutDescriptor{
			Entries: []gpu.BindGroupLayoutEntry{{
				Binding:    0,
				Visibility: gpu.ShaderStageVertex,
				Buffer:     &gpu.BufferBindingLayout{Type: gpu.BufferBindingTypeUniform},
			}},
		})
		require.NoError(t, err)
		layouts[i] = l
	}

	_, err := dev.CreatePipelineLayout(&gpu.PipelineLayoutDescriptor{BindGroupLayouts: layouts})
	assert.ErrorIs(t, err, gpu.ErrInvalidDescriptor)

	pl, err := dev.CreatePipelineLayout(&gpu.PipelineLayoutDescriptor{BindGroupLayouts: []*gpu.BindGroupLayout{layouts[2], layouts[0]}})
	require.NoError(t, err)
	assert.Equal(t, 2, pl.BindGroupCount())

	rec, ok := b.PipelineLayout(pl.ID())
	require.True(t, ok)
	assert.Equal(t, 2, rec.BindGroupLayoutCount)
	assert.Equal(t, []gpu.BindGroupLayoutID{layouts[2].ID(), layouts[0].ID()}, rec.BindGroupLayouts)

	_, err = dev.CreatePipelineLayout(&gpu.PipelineLayoutDescriptor{BindGroupLayouts: []*gpu.BindGroupLayout{nil}})
	assert.ErrorIs(t, err, gpu.ErrNilResource)
}

func TestBindGroup(t *testing.T) {
	dev, b := newDevice(t)

	layout, err := dev.CreateBindGroupLayout(&gpu.BindGroupLayoutDescriptor{
		Label: "material",
		Entries: []gpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gpu.ShaderStageVertex | gpu.ShaderStageFragment, Buffer: &gpu.BufferBindingLayout{Type: gpu.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: gpu.ShaderStageFragment, Sampler: &gpu.SamplerBindingLayout{Type: gpu.SamplerBindingTypeFiltering}},
			{Binding: 2, Visibility: gpu.ShaderStageFragment, Texture: &gpu.TextureBindingLayout{SampleType: gpu.TextureSampleTypeFloat, ViewDimension: gpu.TextureViewDimension2D}},
		},
	})
	require.NoError(t, err)
	assert.Len(t, layout.Entries(), 3)

	uniforms, err := dev.CreateBuffer(&gpu.BufferDescriptor{Size: 64, Usage: gpu.BufferUsageUniform})
	require.NoError(t, err)
	sampler, err := dev.CreateSampler(&gpu.SamplerDescriptor{MagFilter: gpu.FilterModeLinear, MinFilter: gpu.FilterModeLinear})
	require.NoError(t, err)
	_, view := newTarget(t, dev, 4, 4)

	group, err := dev.CreateBindGroup(&gpu.BindGroupDescriptor{
		Layout: layout,
		Entries: []gpu.BindGroupEntry{
			{Binding: 0, Resource: gpu.BufferBinding{Buffer: uniforms, Offset: 16}},
			{Binding: 1, Resource: sampler},
			{Binding: 2, Resource: view},
		},
	})
	require.NoError(t, err)
	assert.Same(t, layout, group.Layout())

	rec, ok := b.BindGroup(group.ID())
	require.True(t, ok)
	assert.Equal(t, layout.ID(), rec.Layout)
	require.Equal(t, 3, rec.EntryCount)
	assert.Equal(t, uniforms.ID(), rec.Entries[0].Buffer)
	assert.Equal(t, uint64(48), rec.Entries[0].Size)
	assert.Equal(t, sampler.ID(), rec.Entries[1].Sampler)
	assert.Equal(t, view.ID(), rec.Entries[2].TextureView)

	_, err = dev.CreateBindGroup(&gpu.BindGroupDescriptor{
		Layout:  layout,
		Entries: []gpu.BindGroupEntry{{Binding: 0, Resource: gpu.BufferBinding{Buffer: uniforms, Offset: 32, Size: 64}}},
	})
	assert.ErrorIs(t, err, gpu.ErrOutOfRange)

	_, err = dev.CreateBindGroup(&gpu.BindGroupDescriptor{
		Layout:  layout,
		Entries: []gpu.BindGroupEntry{{Binding: 0}},
	})
	assert.ErrorIs(t, err, gpu.ErrNilResource)
}

func TestBindGroupLayoutValidation(t *testing.T) {
	dev, _ := newDevice(t)

	_, err := dev.CreateBindGroupLayout(&gpu.BindGroupLayoutDescriptor{
		Entries: []gpu.BindGroupLayoutEntry{{
			Binding: 0,
			Buffer:  &gpu.BufferBindingLayout{Type: gpu.BufferBindingTypeStorage},
			Sampler: &gpu.SamplerBindingLayout{Type: gpu.SamplerBindingTypeFiltering},
		}},
	})
	assert.ErrorIs(t, err, gpu.ErrInvalidDescriptor)

	_, err = dev.CreateBindGroupLayout(&gpu.BindGroupLayoutDescriptor{
		Entries: []gpu.BindGroupLayoutEntry{
			{Binding: 3, Buffer: &gpu.BufferBindingLayout{}},
			{Binding: 3, Buffer: &gpu.BufferBindingLayout{}},
		},
	})
	assert.ErrorIs(t, err, gpu.ErrInvalidDescriptor)

	noGroups, _ := newDevice(t, headless.WithFeatureSupport(gpu.FeatureBindGroups, gpu.NotImplemented))
	_, err = noGroups.CreateBindGroupLayout(&gpu.BindGroupLayoutDescriptor{})
	assert.ErrorIs(t, err, gpu.ErrNotImplemented)
}

func TestCreateRejectsNilDescriptors(t *testing.T) {
	dev, _ := newDevice(t)

	tests := map[string]func() error{
		"buffer":            func() error { _, err := dev.CreateBuffer(nil); return err },
		"texture":           func() error { _, err := dev.CreateTexture(nil); return err },
		"sampler":           func() error { _, err := dev.CreateSampler(nil); return err },
		"shader module":     func() error { _, err := dev.CreateShaderModule(nil); return err },
		"bind group layout": func() error { _, err := dev.CreateBindGroupLayout(nil); return err },
		"bind group":        func() error { _, err := dev.CreateBindGroup(nil); return err },
		"pipeline layout":   func() error { _, err := dev.CreatePipelineLayout(nil); return err },
		"render pipeline":   func() error { _, err := dev.CreateRenderPipeline(nil); return err },
		"compute pipeline":  func() error { _, err := dev.CreateComputePipeline(nil); return err },
	}
	for name, create := range tests {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, create(), gpu.ErrNilDescriptor)
		})
	}
}

func TestTextureViews(t *testing.T) {
	dev, _ := newDevice(t)
	tex, view := newTarget(t, dev, 8, 8)

	assert.Equal(t, gpu.TextureFormatRGBA8Unorm, view.Format())
	assert.Same(t, tex, view.Texture())
	assert.True(t, view.IsValid())
	assert.Equal(t, uint32(1), tex.MipLevelCount())
	assert.Equal(t, gpu.TextureDimension2D, tex.Dimension())

	tex.Destroy()
	assert.False(t, view.IsValid())
	_, err := tex.CreateView(nil)
	assert.ErrorIs(t, err, gpu.ErrInvalidState)

	noViews, _ := newDevice(t, headless.WithFeatureSupport(gpu.FeatureTextureViews, gpu.UnsupportedByDesign))
	tex2, err := noViews.CreateTexture(&gpu.TextureDescriptor{
		Size:   gpu.Extent3D{Width: 1, Height: 1},
		Format: gpu.TextureFormatRGBA8Unorm,
	})
	require.NoError(t, err)
	_, err = tex2.CreateView(nil)
	assert.ErrorIs(t, err, gpu.ErrUnsupported)

	_, err = dev.CreateTexture(&gpu.TextureDescriptor{Size: gpu.Extent3D{Width: 0, Height: 4}, Format: gpu.TextureFormatRGBA8Unorm})
	assert.ErrorIs(t, err, gpu.ErrInvalidDescriptor)
}
