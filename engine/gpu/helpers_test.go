package gpu_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-gpu/common"
	"github.com/Carmen-Shannon/oxy-gpu/engine/gpu"
	"github.com/Carmen-Shannon/oxy-gpu/engine/gpu/backend/headless"
)

const testWGSL = `
@vertex
fn vs_main(@builtin(vertex_index) i: u32) -> @builtin(position) vec4<f32> {
	return vec4<f32>(0.0, 0.0, 0.0, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
	return vec4<f32>(1.0, 0.0, 0.0, 1.0);
}
`

type testSurface struct {
	size common.Size
}

func (s *testSurface) Surface() any      { return s }
func (s *testSurface) Size() common.Size { return s.size }

func newInstance(t *testing.T, opts ...headless.Option) (*gpu.Instance, *headless.Backend) {
	t.Helper()
	b := headless.New(opts...)
	return gpu.NewInstance(b), b
}

func newDevice(t *testing.T, opts ...headless.Option) (*gpu.Device, *headless.Backend) {
	t.Helper()
	t.Setenv(gpu.EnvTracePath, "")

	inst, b := newInstance(t, opts...)
	adapter, err := inst.RequestAdapter(context.Background(), nil)
	require.NoError(t, err)
	dev, err := adapter.RequestDevice(context.Background(), nil)
	require.NoError(t, err)
	return dev, b
}

func newShader(t *testing.T, dev *gpu.Device) *gpu.ShaderModule {
	t.Helper()
	m, err := dev.CreateShaderModule(&gpu.ShaderModuleDescriptor{Label: "test", WGSL: testWGSL})
	require.NoError(t, err)
	return m
}

func newTarget(t *testing.T, dev *gpu.Device, width, height uint32) (*gpu.Texture, *gpu.TextureView) {
	t.Helper()
	tex, err := dev.CreateTexture(&gpu.TextureDescriptor{
		Label:  "target",
		Size:   gpu.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		Format: gpu.TextureFormatRGBA8Unorm,
		Usage:  gpu.TextureUsageRenderAttachment | gpu.TextureUsageCopySrc | gpu.TextureUsageCopyDst,
	})
	require.NoError(t, err)
	view, err := tex.CreateView(nil)
	require.NoError(t, err)
	return tex, view
}

func newPipeline(t *testing.T, dev *gpu.Device) *gpu.RenderPipeline {
	t.Helper()
	shader := newShader(t, dev)
	p, err := dev.CreateRenderPipeline(&gpu.RenderPipelineDescriptor{
		Label:  "test",
		Vertex: gpu.VertexState{Module: shader, EntryPoint: "vs_main"},
		Fragment: &gpu.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets:    []gpu.ColorTargetState{{Format: gpu.TextureFormatRGBA8Unorm}},
		},
	})
	require.NoError(t, err)
	return p
}

func newMappedBuffer(t *testing.T, dev *gpu.Device, size uint64, usage gpu.BufferUsage) *gpu.Buffer {
	t.Helper()
	buf, err := dev.CreateBuffer(&gpu.BufferDescriptor{Size: size, Usage: usage, MappedAtCreation: true})
	require.NoError(t, err)
	return buf
}

func finish(t *testing.T, dev *gpu.Device, label string) *gpu.CommandBuffer {
	t.Helper()
	enc, err := dev.CreateCommandEncoder(&gpu.CommandEncoderDescriptor{Label: label})
	require.NoError(t, err)
	cb, err := enc.Finish()
	require.NoError(t, err)
	return cb
}
