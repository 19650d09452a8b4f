package browser

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-gpu/engine/gpu"
	"github.com/Carmen-Shannon/oxy-gpu/engine/gpu/backend/headless"
)

// fakeRefs stands in for the JS objects with readable tags.
type fakeRefs struct{}

func tag(kind string, id uint64) (any, error) {
	if id == 0 {
		return nil, fmt.Errorf("%s 0: %w", kind, gpu.ErrInvalidHandle)
	}
	return fmt.Sprintf("%s#%d", kind, id), nil
}

func (fakeRefs) buffer(id gpu.BufferID) (any, error)          { return tag("buffer", uint64(id)) }
func (fakeRefs) texture(id gpu.TextureID) (any, error)        { return tag("texture", uint64(id)) }
func (fakeRefs) textureView(id gpu.TextureViewID) (any, error) { return tag("view", uint64(id)) }
func (fakeRefs) sampler(id gpu.SamplerID) (any, error)        { return tag("sampler", uint64(id)) }
func (fakeRefs) shaderModule(id gpu.ShaderModuleID) (any, error) {
	return tag("shader", uint64(id))
}
func (fakeRefs) bindGroupLayout(id gpu.BindGroupLayoutID) (any, error) {
	return tag("bgl", uint64(id))
}
func (fakeRefs) pipelineLayout(id gpu.PipelineLayoutID) (any, error) {
	return tag("layout", uint64(id))
}

func headlessDevice(t *testing.T) *gpu.Device {
	t.Helper()
	t.Setenv(gpu.EnvTracePath, "")
	inst := gpu.NewInstance(headless.New(headless.WithSynchronousCallbacks()))
	a, err := inst.RequestAdapter(context.Background(), nil)
	require.NoError(t, err)
	d, err := a.RequestDevice(context.Background(), nil)
	require.NoError(t, err)
	return d
}

func TestSupport(t *testing.T) {
	assert.Equal(t, gpu.UnsupportedByDesign, support(gpu.FeatureSPIRVShaders))
	assert.Equal(t, gpu.UnsupportedByDesign, support(gpu.FeatureTracePath))
	assert.Equal(t, gpu.Supported, support(gpu.FeatureWGSLShaders))
	assert.Equal(t, gpu.Supported, support(gpu.FeatureSwapChain))
	assert.Equal(t, gpu.Supported, support(gpu.FeatureComputePipelines))
}

func TestAdapterAndDeviceOptions(t *testing.T) {
	assert.Equal(t, object{}, adapterOptions(gpu.RequestAdapterOptions{}))
	assert.Equal(t, object{"powerPreference": "high-performance", "forceFallbackAdapter": true},
		adapterOptions(gpu.RequestAdapterOptions{PowerPreference: gpu.PowerPreferenceHighPerformance, ForceFallbackAdapter: true}))

	assert.Equal(t, object{"label": "main", "requiredLimits": object{"maxBindGroups": uint32(4)}},
		deviceDescriptor(gpu.DeviceDescriptor{Label: "main", MaxBindGroups: 4}))
}

func TestBufferAndTextureDescriptors(t *testing.T) {
	assert.Equal(t, object{"size": uint64(64), "usage": uint32(gpu.BufferUsageVertex | gpu.BufferUsageCopyDst)},
		bufferDescriptor(&gpu.BufferDescriptor{Size: 64, Usage: gpu.BufferUsageVertex | gpu.BufferUsageCopyDst}))

	tex := textureDescriptor(&gpu.TextureDescriptor{
		Label:  "depth",
		Size:   gpu.Extent3D{Width: 640, Height: 480},
		Format: gpu.TextureFormatDepth24Plus,
		Usage:  gpu.TextureUsageRenderAttachment,
	})
	assert.Equal(t, object{
		"label":  "depth",
		"size":   object{"width": uint32(640), "height": uint32(480), "depthOrArrayLayers": uint32(1)},
		"format": "depth24plus",
		"usage":  uint32(gpu.TextureUsageRenderAttachment),
	}, tex)
}

func TestViewAndSamplerOmitUndefined(t *testing.T) {
	assert.Nil(t, viewDescriptor(nil))
	assert.Equal(t, object{}, viewDescriptor(&gpu.TextureViewDescriptor{}))
	assert.Equal(t, object{"dimension": "2d-array", "aspect": "depth-only", "arrayLayerCount": uint32(2)},
		viewDescriptor(&gpu.TextureViewDescriptor{Dimension: gpu.TextureViewDimension2DArray, Aspect: gpu.TextureAspectDepthOnly, ArrayLayerCount: 2}))

	assert.Equal(t, object{}, samplerDescriptor(&gpu.SamplerDescriptor{}))
	assert.Equal(t, object{"magFilter": "linear", "addressModeU": "repeat", "compare": "less"},
		samplerDescriptor(&gpu.SamplerDescriptor{MagFilter: gpu.FilterModeLinear, AddressModeU: gpu.AddressModeRepeat, Compare: gpu.CompareFunctionLess}))
}

func TestBindGroupLayoutEntries(t *testing.T) {
	o := bindGroupLayoutDescriptor(&gpu.BindGroupLayoutDescriptor{
		Entries: []gpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gpu.ShaderStageVertex, Buffer: &gpu.BufferBindingLayout{Type: gpu.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: gpu.ShaderStageFragment, Texture: &gpu.TextureBindingLayout{}},
			{Binding: 2, Visibility: gpu.ShaderStageCompute, StorageTexture: &gpu.StorageTextureBindingLayout{Format: gpu.TextureFormatRGBA8Unorm}},
		},
	})

	entries := o["entries"].([]any)
	require.Len(t, entries, 3)
	assert.Equal(t, object{"binding": uint32(0), "visibility": uint32(gpu.ShaderStageVertex), "buffer": object{"type": "uniform"}}, entries[0])
	assert.Equal(t, object{"binding": uint32(1), "visibility": uint32(gpu.ShaderStageFragment), "texture": object{}}, entries[1])
	assert.Equal(t, object{"format": "rgba8unorm"}, entries[2].(object)["storageTexture"])
	assert.NotContains(t, entries[0].(object), "sampler")
}

func TestRenderPipelineAbsentState(t *testing.T) {
	dev := headlessDevice(t)
	shader, err := dev.CreateShaderModule(&gpu.ShaderModuleDescriptor{WGSL: "@vertex fn vs() {}"})
	require.NoError(t, err)

	o, err := renderPipelineDescriptor(fakeRefs{}, &gpu.RenderPipelineDescriptor{
		Vertex: gpu.VertexState{Module: shader, EntryPoint: "vs"},
	})
	require.NoError(t, err)

	assert.Equal(t, "auto", o["layout"])
	assert.NotContains(t, o, "fragment")
	assert.NotContains(t, o, "depthStencil")
	assert.NotContains(t, o, "label")
	assert.Equal(t, object{}, o["primitive"])
	assert.Equal(t, object{"count": uint32(1), "mask": uint32(0xFFFFFFFF)}, o["multisample"])
	assert.Equal(t, object{"module": "shader#1", "entryPoint": "vs", "buffers": []any{}}, o["vertex"])
}

func TestRenderPipelineArrays(t *testing.T) {
	dev := headlessDevice(t)
	shader, err := dev.CreateShaderModule(&gpu.ShaderModuleDescriptor{WGSL: "@vertex fn vs() {}"})
	require.NoError(t, err)

	for _, n := range []int{0, 1, 3} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			targets := make([]gpu.ColorTargetState, n)
			buffers := make([]gpu.VertexBufferLayout, n)
			for i := range n {
				targets[i] = gpu.ColorTargetState{Format: gpu.TextureFormatBGRA8Unorm}
				buffers[i] = gpu.VertexBufferLayout{
					ArrayStride: 8,
					Attributes:  []gpu.VertexAttribute{{Format: gpu.VertexFormatFloat32x2, ShaderLocation: uint32(i)}},
				}
			}
			if n > 0 {
				targets[0].Blend = &gpu.BlendState{
					Color: gpu.BlendComponent{Operation: gpu.BlendOperationAdd, SrcFactor: gpu.BlendFactorSrcAlpha, DstFactor: gpu.BlendFactorOneMinusSrcAlpha},
				}
			}

			o, err := renderPipelineDescriptor(fakeRefs{}, &gpu.RenderPipelineDescriptor{
				Vertex:   gpu.VertexState{Module: shader, Buffers: buffers},
				Fragment: &gpu.FragmentState{Module: shader, EntryPoint: "fs", Targets: targets},
			})
			require.NoError(t, err)

			assert.Len(t, o["vertex"].(object)["buffers"], n)
			fragment := o["fragment"].(object)
			got := fragment["targets"].([]any)
			require.Len(t, got, n)
			for i, target := range got {
				if i == 0 {
					assert.Equal(t, object{
						"color": object{"operation": "add", "srcFactor": "src-alpha", "dstFactor": "one-minus-src-alpha"},
						"alpha": object{},
					}, target.(object)["blend"])
					continue
				}
				assert.NotContains(t, target.(object), "blend")
				assert.Equal(t, uint32(gpu.ColorWriteMaskAll), target.(object)["writeMask"])
			}
		})
	}
}

func TestDepthStencilState(t *testing.T) {
	dev := headlessDevice(t)
	shader, err := dev.CreateShaderModule(&gpu.ShaderModuleDescriptor{WGSL: "@vertex fn vs() {}"})
	require.NoError(t, err)

	o, err := renderPipelineDescriptor(fakeRefs{}, &gpu.RenderPipelineDescriptor{
		Vertex: gpu.VertexState{Module: shader},
		DepthStencil: &gpu.DepthStencilState{
			Format:            gpu.TextureFormatDepth32Float,
			DepthWriteEnabled: true,
			DepthCompare:      gpu.CompareFunctionLess,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, object{
		"format":            "depth32float",
		"depthWriteEnabled": true,
		"depthCompare":      "less",
		"stencilFront":      object{},
		"stencilBack":       object{},
	}, o["depthStencil"])
}

func TestStencilState(t *testing.T) {
	dev := headlessDevice(t)
	shader, err := dev.CreateShaderModule(&gpu.ShaderModuleDescriptor{WGSL: "@vertex fn vs() {}"})
	require.NoError(t, err)

	o, err := renderPipelineDescriptor(fakeRefs{}, &gpu.RenderPipelineDescriptor{
		Vertex: gpu.VertexState{Module: shader},
		DepthStencil: &gpu.DepthStencilState{
			Format: gpu.TextureFormatDepth24PlusStencil8,
			StencilFront: gpu.StencilFaceState{
				Compare:     gpu.CompareFunctionNotEqual,
				FailOp:      gpu.StencilOperationZero,
				DepthFailOp: gpu.StencilOperationDecrementClamp,
				PassOp:      gpu.StencilOperationReplace,
			},
			StencilWriteMask: 0xFF,
		},
	})
	require.NoError(t, err)
	depth, ok := o["depthStencil"].(object)
	require.True(t, ok)

	assert.Equal(t, object{
		"compare":     "not-equal",
		"failOp":      "zero",
		"depthFailOp": "decrement-clamp",
		"passOp":      "replace",
	}, depth["stencilFront"])
	assert.Equal(t, object{}, depth["stencilBack"])
	assert.Equal(t, uint32(0xFF), depth["stencilWriteMask"])
	assert.NotContains(t, depth, "stencilReadMask")
}

func TestRenderPassDescriptor(t *testing.T) {
	dev := headlessDevice(t)
	tex, err := dev.CreateTexture(&gpu.TextureDescriptor{
		Size:   gpu.Extent3D{Width: 4, Height: 4},
		Format: gpu.TextureFormatRGBA8Unorm,
		Usage:  gpu.TextureUsageRenderAttachment,
	})
	require.NoError(t, err)
	view, err := tex.CreateView(nil)
	require.NoError(t, err)

	o, err := renderPassDescriptor(fakeRefs{}, &gpu.RenderPassDescriptor{
		ColorAttachments: []gpu.RenderPassColorAttachment{
			{View: view},
			{View: view, LoadOp: gpu.LoadOpClear, StoreOp: gpu.StoreOpDiscard, ClearColor: &gpu.Color{R: 1, A: 1}},
		},
	})
	require.NoError(t, err)

	colors := o["colorAttachments"].([]any)
	require.Len(t, colors, 2)
	assert.Equal(t, object{"view": "view#1", "loadOp": "load", "storeOp": "store"}, colors[0])
	assert.Equal(t, object{
		"view":       "view#1",
		"loadOp":     "clear",
		"storeOp":    "discard",
		"clearValue": object{"r": 1.0, "g": 0.0, "b": 0.0, "a": 1.0},
	}, colors[1])
	assert.NotContains(t, o, "depthStencilAttachment")
}

func TestImageCopies(t *testing.T) {
	dev := headlessDevice(t)
	buf, err := dev.CreateBuffer(&gpu.BufferDescriptor{Size: 256, Usage: gpu.BufferUsageCopyDst})
	require.NoError(t, err)
	tex, err := dev.CreateTexture(&gpu.TextureDescriptor{
		Size:   gpu.Extent3D{Width: 4, Height: 4},
		Format: gpu.TextureFormatRGBA8Unorm,
		Usage:  gpu.TextureUsageCopySrc,
	})
	require.NoError(t, err)

	b, err := imageCopyBuffer(fakeRefs{}, &gpu.ImageCopyBuffer{Buffer: buf, Layout: gpu.TextureDataLayout{BytesPerRow: 256}})
	require.NoError(t, err)
	assert.Equal(t, object{"buffer": "buffer#1", "bytesPerRow": uint32(256)}, b)

	tx, err := imageCopyTexture(fakeRefs{}, &gpu.ImageCopyTexture{Texture: tex, Origin: gpu.Origin3D{X: 1}})
	require.NoError(t, err)
	assert.Equal(t, object{"texture": "texture#1", "origin": object{"x": uint32(1), "y": uint32(0), "z": uint32(0)}}, tx)
}

func TestCanvasConfiguration(t *testing.T) {
	o := canvasConfiguration("device#1", &gpu.SwapChainDescriptor{
		Format: gpu.TextureFormatBGRA8Unorm,
		Usage:  gpu.TextureUsageRenderAttachment,
	})
	assert.Equal(t, object{
		"device":    "device#1",
		"format":    "bgra8unorm",
		"usage":     uint32(gpu.TextureUsageRenderAttachment),
		"alphaMode": "opaque",
	}, o)
}
