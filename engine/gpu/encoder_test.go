package gpu_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-gpu/engine/gpu"
	"github.com/Carmen-Shannon/oxy-gpu/engine/gpu/backend/headless"
)

func beginPass(t *testing.T, enc *gpu.CommandEncoder, view *gpu.TextureView) *gpu.RenderPassEncoder {
	t.Helper()
	pass, err := enc.BeginRenderPass(&gpu.RenderPassDescriptor{
		ColorAttachments: []gpu.RenderPassColorAttachment{{View: view, LoadOp: gpu.LoadOpClear, StoreOp: gpu.StoreOpStore}},
	})
	require.NoError(t, err)
	return pass
}

func TestRenderPassOpsAfterEnd(t *testing.T) {
	dev, _ := newDevice(t)
	pipeline := newPipeline(t, dev)
	_, view := newTarget(t, dev, 4, 4)
	vertices, err := dev.CreateBuffer(&gpu.BufferDescriptor{Size: 64, Usage: gpu.BufferUsageVertex | gpu.BufferUsageIndex})
	require.NoError(t, err)

	enc, err := dev.CreateCommandEncoder(nil)
	require.NoError(t, err)
	pass := beginPass(t, enc, view)
	require.Equal(t, gpu.PassStateOpen, pass.State())
	require.NoError(t, pass.End())
	assert.Equal(t, gpu.PassStateEnded, pass.State())
	assert.True(t, pass.ID().IsNil())

	ops := map[string]func() error{
		"set pipeline":      func() error { return pass.SetPipeline(pipeline) },
		"set bind group":    func() error { return pass.SetBindGroup(0, nil, nil) },
		"set vertex buffer": func() error { return pass.SetVertexBuffer(0, vertices, 0, 0) },
		"set index buffer":  func() error { return pass.SetIndexBuffer(vertices, gpu.IndexFormatUint16, 0, 0) },
		"set viewport":      func() error { return pass.SetViewport(0, 0, 4, 4, 0, 1) },
		"set scissor rect":  func() error { return pass.SetScissorRect(0, 0, 4, 4) },
		"draw":              func() error { return pass.Draw(3, 1, 0, 0) },
		"draw indexed":      func() error { return pass.DrawIndexed(3, 1, 0, 0, 0) },
		"end":               pass.End,
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			err := op()
			assert.ErrorIs(t, err, gpu.ErrPassEnded)
			assert.ErrorIs(t, err, gpu.ErrInvalidState)
		})
	}
}

func TestComputePassOpsAfterEnd(t *testing.T) {
	dev, b := newDevice(t)
	shader := newShader(t, dev)
	pipeline, err := dev.CreateComputePipeline(&gpu.ComputePipelineDescriptor{
		Compute: gpu.ProgrammableStage{Module: shader, EntryPoint: "cs_main"},
	})
	require.NoError(t, err)

	enc, err := dev.CreateCommandEncoder(nil)
	require.NoError(t, err)
	pass, err := enc.BeginComputePass(nil)
	require.NoError(t, err)
	require.NoError(t, pass.SetPipeline(pipeline))
	require.NoError(t, pass.DispatchWorkgroups(8, 4, 1))
	require.NoError(t, pass.End())

	assert.ErrorIs(t, pass.SetPipeline(pipeline), gpu.ErrPassEnded)
	assert.ErrorIs(t, pass.DispatchWorkgroups(1, 1, 1), gpu.ErrPassEnded)
	assert.ErrorIs(t, pass.End(), gpu.ErrPassEnded)

	ends := b.CallsOf("EndComputePass")
	require.Len(t, ends, 1)
	assert.Equal(t, 1, ends[0].Count)

	rec, ok := b.ComputePipeline(pipeline.ID())
	require.True(t, ok)
	assert.Equal(t, "cs_main", rec.EntryPoint)
	assert.Equal(t, shader.ID(), rec.Module)
}

func TestComputePassNotImplemented(t *testing.T) {
	dev, _ := newDevice(t, headless.WithFeatureSupport(gpu.FeatureComputePipelines, gpu.NotImplemented))

	enc, err := dev.CreateCommandEncoder(nil)
	require.NoError(t, err)
	_, err = enc.BeginComputePass(nil)
	assert.ErrorIs(t, err, gpu.ErrNotImplemented)
	assert.Equal(t, gpu.EncoderStateRecording, enc.State())
}

func TestEncoderLockedWhilePassOpen(t *testing.T) {
	dev, _ := newDevice(t)
	_, view := newTarget(t, dev, 4, 4)
	buf, err := dev.CreateBuffer(&gpu.BufferDescriptor{Size: 16, Usage: gpu.BufferUsageCopySrc | gpu.BufferUsageCopyDst})
	require.NoError(t, err)
	other, err := dev.CreateBuffer(&gpu.BufferDescriptor{Size: 16, Usage: gpu.BufferUsageCopyDst})
	require.NoError(t, err)

	enc, err := dev.CreateCommandEncoder(nil)
	require.NoError(t, err)
	pass := beginPass(t, enc, view)
	assert.Equal(t, gpu.EncoderStateLocked, enc.State())

	_, err = enc.BeginRenderPass(&gpu.RenderPassDescriptor{
		ColorAttachments: []gpu.RenderPassColorAttachment{{View: view}},
	})
	assert.ErrorIs(t, err, gpu.ErrEncoderLocked)
	_, err = enc.BeginComputePass(nil)
	assert.ErrorIs(t, err, gpu.ErrEncoderLocked)
	assert.ErrorIs(t, enc.CopyBufferToBuffer(buf, 0, other, 0, 16), gpu.ErrEncoderLocked)
	assert.ErrorIs(t, enc.ClearBuffer(buf, 0, 0), gpu.ErrEncoderLocked)
	_, err = enc.Finish()
	assert.ErrorIs(t, err, gpu.ErrEncoderLocked)

	require.NoError(t, pass.End())
	assert.Equal(t, gpu.EncoderStateRecording, enc.State())
	assert.NoError(t, enc.CopyBufferToBuffer(buf, 0, other, 0, 16))
}

func TestEncoderFinishTwice(t *testing.T) {
	dev, _ := newDevice(t)

	enc, err := dev.CreateCommandEncoder(&gpu.CommandEncoderDescriptor{Label: "frame"})
	require.NoError(t, err)
	cb, err := enc.Finish()
	require.NoError(t, err)
	assert.Equal(t, "frame", cb.Label())
	assert.Equal(t, gpu.CommandBufferStateReady, cb.State())
	assert.Equal(t, gpu.EncoderStateFinished, enc.State())

	_, err = enc.Finish()
	assert.ErrorIs(t, err, gpu.ErrEncoderFinished)
	_, err = enc.BeginComputePass(nil)
	assert.ErrorIs(t, err, gpu.ErrEncoderFinished)
}

func TestBeginRenderPassValidation(t *testing.T) {
	dev, _ := newDevice(t)
	other, _ := newDevice(t)
	tex, view := newTarget(t, dev, 4, 4)
	_, foreign := newTarget(t, other, 4, 4)

	tests := []struct {
		name string
		desc *gpu.RenderPassDescriptor
		want error
	}{
		{name: "nil descriptor", desc: nil, want: gpu.ErrNilDescriptor},
		{name: "no attachments", desc: &gpu.RenderPassDescriptor{}, want: gpu.ErrInvalidDescriptor},
		{
			name: "nil view",
			desc: &gpu.RenderPassDescriptor{ColorAttachments: []gpu.RenderPassColorAttachment{{}}},
			want: gpu.ErrNilResource,
		},
		{
			name: "foreign view",
			desc: &gpu.RenderPassDescriptor{ColorAttachments: []gpu.RenderPassColorAttachment{{View: foreign}}},
			want: gpu.ErrDeviceMismatch,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := dev.CreateCommandEncoder(nil)
			require.NoError(t, err)
			_, err = enc.BeginRenderPass(tt.desc)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, gpu.EncoderStateRecording, enc.State())
		})
	}

	t.Run("destroyed texture", func(t *testing.T) {
		tex.Destroy()
		enc, err := dev.CreateCommandEncoder(nil)
		require.NoError(t, err)
		_, err = enc.BeginRenderPass(&gpu.RenderPassDescriptor{
			ColorAttachments: []gpu.RenderPassColorAttachment{{View: view}},
		})
		assert.ErrorIs(t, err, gpu.ErrInvalidState)
	})
}

func TestRenderPassDepthStencilAttachment(t *testing.T) {
	dev, _ := newDevice(t, headless.WithFeatureSupport(gpu.FeatureDepthStencil, gpu.UnsupportedByDesign))
	_, view := newTarget(t, dev, 4, 4)

	enc, err := dev.CreateCommandEncoder(nil)
	require.NoError(t, err)
	_, err = enc.BeginRenderPass(&gpu.RenderPassDescriptor{
		ColorAttachments:       []gpu.RenderPassColorAttachment{{View: view}},
		DepthStencilAttachment: &gpu.RenderPassDepthStencilAttachment{View: view},
	})

	var fe *gpu.FeatureError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, gpu.FeatureDepthStencil, fe.Feature)
	assert.ErrorIs(t, err, gpu.ErrUnsupported)
}

func TestRenderPassRecordsOps(t *testing.T) {
	dev, b := newDevice(t)
	pipeline := newPipeline(t, dev)
	_, view := newTarget(t, dev, 4, 4)
	vertices, err := dev.CreateBuffer(&gpu.BufferDescriptor{Size: 48, Usage: gpu.BufferUsageVertex})
	require.NoError(t, err)
	indices, err := dev.CreateBuffer(&gpu.BufferDescriptor{Size: 12, Usage: gpu.BufferUsageIndex})
	require.NoError(t, err)

	enc, err := dev.CreateCommandEncoder(nil)
	require.NoError(t, err)
	pass, err := enc.BeginRenderPass(&gpu.RenderPassDescriptor{
		Label:            "main",
		ColorAttachments: []gpu.RenderPassColorAttachment{{View: view, LoadOp: gpu.LoadOpLoad, StoreOp: gpu.StoreOpStore}},
	})
	require.NoError(t, err)
	require.NoError(t, pass.SetPipeline(pipeline))
	require.NoError(t, pass.SetVertexBuffer(0, vertices, 16, 0))
	require.NoError(t, pass.SetIndexBuffer(indices, gpu.IndexFormatUint32, 0, 0))
	require.NoError(t, pass.Draw(3, 1, 0, 0))
	require.NoError(t, pass.DrawIndexed(3, 2, 0, -1, 0))
	require.NoError(t, pass.End())

	passes := b.RenderPasses()
	require.Len(t, passes, 1)
	rec := passes[0]
	assert.Equal(t, "main", rec.Label)
	require.Equal(t, 1, rec.ColorAttachmentCount)
	assert.Equal(t, gpu.Color{}, rec.ColorAttachments[0].ClearValue)
	assert.Nil(t, rec.DepthStencil)

	want := []headless.PassOp{
		{Op: "SetPipeline", Args: []uint64{uint64(pipeline.ID())}},
		{Op: "SetVertexBuffer", Args: []uint64{0, uint64(vertices.ID()), 16, 32}},
		{Op: "SetIndexBuffer", Args: []uint64{uint64(indices.ID()), uint64(gpu.IndexFormatUint32), 0, 12}},
		{Op: "Draw", Args: []uint64{3, 1, 0, 0}},
		{Op: "DrawIndexed", Args: []uint64{3, 2, 0, ^uint64(0), 0}},
	}
	assert.Equal(t, want, rec.Ops)
}

func TestRenderPassArgumentValidation(t *testing.T) {
	dev, _ := newDevice(t)
	_, view := newTarget(t, dev, 4, 4)
	buf, err := dev.CreateBuffer(&gpu.BufferDescriptor{Size: 16, Usage: gpu.BufferUsageVertex})
	require.NoError(t, err)
	layout, err := dev.CreateBindGroupLayout(&gpu.BindGroupLayoutDescriptor{})
	require.NoError(t, err)
	group, err := dev.CreateBindGroup(&gpu.BindGroupDescriptor{Layout: layout})
	require.NoError(t, err)

	enc, err := dev.CreateCommandEncoder(nil)
	require.NoError(t, err)
	pass := beginPass(t, enc, view)

	assert.NoError(t, pass.SetBindGroup(dev.MaxBindGroups()-1, group, nil))
	assert.ErrorIs(t, pass.SetBindGroup(dev.MaxBindGroups(), group, nil), gpu.ErrOutOfRange)
	assert.ErrorIs(t, pass.SetVertexBuffer(0, buf, 8, 16), gpu.ErrOutOfRange)
	assert.ErrorIs(t, pass.SetIndexBuffer(buf, gpu.IndexFormatUndefined, 0, 0), gpu.ErrInvalidDescriptor)
	assert.ErrorIs(t, pass.SetViewport(0, 0, 4, 4, 0.5, 0.25), gpu.ErrOutOfRange)
	assert.ErrorIs(t, pass.SetViewport(0, 0, -1, 4, 0, 1), gpu.ErrOutOfRange)
	assert.ErrorIs(t, pass.SetPipeline(nil), gpu.ErrNilResource)

	assert.Equal(t, gpu.PassStateOpen, pass.State())
	require.NoError(t, pass.End())
}

func TestSubmitOrder(t *testing.T) {
	dev, b := newDevice(t)

	a := finish(t, dev, "A")
	bb := finish(t, dev, "B")
	c := finish(t, dev, "C")
	require.NoError(t, dev.Queue().Submit(a, bb, c))

	want := []gpu.CommandBufferID{a.ID(), bb.ID(), c.ID()}
	assert.Equal(t, want, b.Executed())

	submits := b.CallsOf("QueueSubmit")
	require.Len(t, submits, 1)
	assert.Equal(t, 3, submits[0].Count)
	assert.Equal(t, []uint64{uint64(a.ID()), uint64(bb.ID()), uint64(c.ID())}, submits[0].Items)

	for _, cb := range []*gpu.CommandBuffer{a, bb, c} {
		assert.Equal(t, gpu.CommandBufferStateConsumed, cb.State())
	}
}

func TestSubmitRejectsConsumedBuffers(t *testing.T) {
	dev, b := newDevice(t)
	q := dev.Queue()

	a := finish(t, dev, "A")
	require.NoError(t, q.Submit(a))
	assert.ErrorIs(t, q.Submit(a), gpu.ErrCommandBufferConsumed)

	fresh := finish(t, dev, "B")
	err := q.Submit(fresh, fresh)
	assert.ErrorIs(t, err, gpu.ErrCommandBufferConsumed)
	assert.ErrorIs(t, err, gpu.ErrInvalidState)
	assert.Equal(t, gpu.CommandBufferStateReady, fresh.State())

	assert.ErrorIs(t, q.Submit(fresh, nil), gpu.ErrNilResource)
	assert.Equal(t, gpu.CommandBufferStateReady, fresh.State())

	assert.Len(t, b.CallsOf("QueueSubmit"), 1)
	require.NoError(t, q.Submit(fresh))
}

func TestSubmitEmpty(t *testing.T) {
	dev, b := newDevice(t)

	require.NoError(t, dev.Queue().Submit())
	submits := b.CallsOf("QueueSubmit")
	require.Len(t, submits, 1)
	assert.Zero(t, submits[0].Count)
	assert.Empty(t, b.Executed())
}

func TestCopyBufferToBuffer(t *testing.T) {
	dev, b := newDevice(t)

	src := newMappedBuffer(t, dev, 32, gpu.BufferUsageCopySrc)
	require.NoError(t, src.Write(0, bytes.Repeat([]byte{0x11, 0x22, 0x33, 0x44}, 8)))
	src.Unmap()
	dst, err := dev.CreateBuffer(&gpu.BufferDescriptor{Size: 32, Usage: gpu.BufferUsageCopyDst | gpu.BufferUsageMapRead})
	require.NoError(t, err)

	enc, err := dev.CreateCommandEncoder(nil)
	require.NoError(t, err)
	require.NoError(t, enc.CopyBufferToBuffer(src, 4, dst, 8, 16))
	cb, err := enc.Finish()
	require.NoError(t, err)

	got, _ := b.BufferContents(dst.ID())
	assert.Equal(t, make([]byte, 32), got, "copies run on submit")

	require.NoError(t, dev.Queue().Submit(cb))
	got, _ = b.BufferContents(dst.ID())
	want := make([]byte, 32)
	copy(want[8:24], bytes.Repeat([]byte{0x11, 0x22, 0x33, 0x44}, 4))
	assert.Equal(t, want, got)
}

func TestCopyBufferToBufferRanges(t *testing.T) {
	dev, b := newDevice(t)
	src, err := dev.CreateBuffer(&gpu.BufferDescriptor{Size: 32, Usage: gpu.BufferUsageCopySrc | gpu.BufferUsageCopyDst})
	require.NoError(t, err)
	dst, err := dev.CreateBuffer(&gpu.BufferDescriptor{Size: 16, Usage: gpu.BufferUsageCopyDst})
	require.NoError(t, err)

	tests := []struct {
		name              string
		src, dst          *gpu.Buffer
		srcOff, dstOff, n uint64
		want              error
	}{
		{name: "dst overflow", src: src, dst: dst, srcOff: 0, dstOff: 8, n: 16, want: gpu.ErrCopyRange},
		{name: "src overflow", src: src, dst: dst, srcOff: 24, dstOff: 0, n: 16, want: gpu.ErrCopyRange},
		{name: "unaligned", src: src, dst: dst, srcOff: 2, dstOff: 0, n: 4, want: gpu.ErrCopyRange},
		{name: "overlap", src: src, dst: src, srcOff: 0, dstOff: 8, n: 16, want: gpu.ErrCopyRange},
		{name: "nil source", src: nil, dst: dst, n: 4, want: gpu.ErrNilResource},
		{name: "disjoint same buffer", src: src, dst: src, srcOff: 0, dstOff: 16, n: 16},
		{name: "exact fit", src: src, dst: dst, srcOff: 16, dstOff: 0, n: 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := dev.CreateCommandEncoder(nil)
			require.NoError(t, err)
			before := len(b.CallsOf("CopyBufferToBuffer"))

			err = enc.CopyBufferToBuffer(tt.src, tt.srcOff, tt.dst, tt.dstOff, tt.n)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
				assert.Len(t, b.CallsOf("CopyBufferToBuffer"), before)
				return
			}
			assert.NoError(t, err)
			assert.Len(t, b.CallsOf("CopyBufferToBuffer"), before+1)
		})
	}

	src.Destroy()
	enc, err := dev.CreateCommandEncoder(nil)
	require.NoError(t, err)
	assert.ErrorIs(t, enc.CopyBufferToBuffer(src, 0, dst, 0, 4), gpu.ErrBufferDestroyed)
}

func TestCommandsExecuteInRecordedOrder(t *testing.T) {
	dev, b := newDevice(t)

	staging := newMappedBuffer(t, dev, 16, gpu.BufferUsageCopySrc)
	require.NoError(t, staging.Write(0, bytes.Repeat([]byte{0xFF}, 16)))
	staging.Unmap()
	dst, err := dev.CreateBuffer(&gpu.BufferDescriptor{Size: 16, Usage: gpu.BufferUsageCopyDst})
	require.NoError(t, err)

	enc, err := dev.CreateCommandEncoder(nil)
	require.NoError(t, err)
	require.NoError(t, enc.CopyBufferToBuffer(staging, 0, dst, 0, 16))
	require.NoError(t, enc.ClearBuffer(dst, 4, 8))
	cb, err := enc.Finish()
	require.NoError(t, err)
	require.NoError(t, dev.Queue().Submit(cb))

	got, _ := b.BufferContents(dst.ID())
	assert.Equal(t, []byte{
		0xFF, 0xFF, 0xFF, 0xFF,
		0, 0, 0, 0, 0, 0, 0, 0,
		0xFF, 0xFF, 0xFF, 0xFF,
	}, got)

	assert.Equal(t, 2, b.CallsOf("Finish")[0].Count)
}

func TestLaterSubmitObservesEarlierWrites(t *testing.T) {
	dev, b := newDevice(t)
	q := dev.Queue()

	src, err := dev.CreateBuffer(&gpu.BufferDescriptor{Size: 8, Usage: gpu.BufferUsageCopySrc | gpu.BufferUsageCopyDst})
	require.NoError(t, err)
	dst, err := dev.CreateBuffer(&gpu.BufferDescriptor{Size: 8, Usage: gpu.BufferUsageCopyDst})
	require.NoError(t, err)

	require.NoError(t, q.WriteBuffer(src, 0, []byte{1, 2, 3, 4, 5, 6, 7, 8}))
	enc, err := dev.CreateCommandEncoder(nil)
	require.NoError(t, err)
	require.NoError(t, enc.CopyBufferToBuffer(src, 0, dst, 0, 8))
	cb, err := enc.Finish()
	require.NoError(t, err)
	require.NoError(t, q.Submit(cb))

	got, _ := b.BufferContents(dst.ID())
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, got)
}

func TestTexelCopyRoundTrip(t *testing.T) {
	dev, b := newDevice(t)
	tex, _ := newTarget(t, dev, 2, 2)

	pixels := []byte{
		1, 2, 3, 4, 5, 6, 7, 8,
		9, 10, 11, 12, 13, 14, 15, 16,
	}
	upload := newMappedBuffer(t, dev, 16, gpu.BufferUsageCopySrc)
	require.NoError(t, upload.Write(0, pixels))
	upload.Unmap()
	readback, err := dev.CreateBuffer(&gpu.BufferDescriptor{Size: 512, Usage: gpu.BufferUsageCopyDst | gpu.BufferUsageMapRead})
	require.NoError(t, err)

	enc, err := dev.CreateCommandEncoder(nil)
	require.NoError(t, err)
	size := gpu.Extent3D{Width: 2, Height: 2, DepthOrArrayLayers: 1}
	require.NoError(t, enc.CopyBufferToTexture(
		&gpu.ImageCopyBuffer{Buffer: upload},
		&gpu.ImageCopyTexture{Texture: tex},
		size))
	require.NoError(t, enc.CopyTextureToBuffer(
		&gpu.ImageCopyTexture{Texture: tex},
		&gpu.ImageCopyBuffer{Buffer: readback, Layout: gpu.TextureDataLayout{BytesPerRow: 256}},
		size))
	cb, err := enc.Finish()
	require.NoError(t, err)
	require.NoError(t, dev.Queue().Submit(cb))

	texels, _ := b.TextureContents(tex.ID())
	assert.Equal(t, pixels, texels)

	got, err := readback.MappedRange(0, 0)
	require.ErrorIs(t, err, gpu.ErrBufferNotMapped)
	assert.Nil(t, got)

	contents, _ := b.BufferContents(readback.ID())
	assert.Equal(t, pixels[:8], contents[:8])
	assert.Equal(t, pixels[8:], contents[256:264])
}

func TestTexelCopyValidation(t *testing.T) {
	dev, _ := newDevice(t)
	tex, _ := newTarget(t, dev, 4, 4)
	small, err := dev.CreateBuffer(&gpu.BufferDescriptor{Size: 32, Usage: gpu.BufferUsageCopySrc})
	require.NoError(t, err)

	enc, err := dev.CreateCommandEncoder(nil)
	require.NoError(t, err)

	err = enc.CopyBufferToTexture(&gpu.ImageCopyBuffer{Buffer: small}, &gpu.ImageCopyTexture{Texture: tex},
		gpu.Extent3D{Width: 4, Height: 4, DepthOrArrayLayers: 1})
	assert.ErrorIs(t, err, gpu.ErrCopyRange)

	err = enc.CopyBufferToTexture(&gpu.ImageCopyBuffer{Buffer: small}, &gpu.ImageCopyTexture{Texture: tex, Origin: gpu.Origin3D{X: 3}},
		gpu.Extent3D{Width: 2, Height: 1, DepthOrArrayLayers: 1})
	assert.ErrorIs(t, err, gpu.ErrCopyRange)

	err = enc.CopyBufferToTexture(&gpu.ImageCopyBuffer{Buffer: small, Layout: gpu.TextureDataLayout{BytesPerRow: 4}},
		&gpu.ImageCopyTexture{Texture: tex}, gpu.Extent3D{Width: 2, Height: 1, DepthOrArrayLayers: 1})
	assert.ErrorIs(t, err, gpu.ErrCopyRange)

	err = enc.CopyBufferToTexture(nil, &gpu.ImageCopyTexture{Texture: tex}, gpu.Extent3D{Width: 1, Height: 1})
	assert.ErrorIs(t, err, gpu.ErrNilDescriptor)

	err = enc.CopyBufferToTexture(&gpu.ImageCopyBuffer{Buffer: small}, &gpu.ImageCopyTexture{Texture: tex},
		gpu.Extent3D{Width: 2, Height: 2, DepthOrArrayLayers: 1})
	assert.NoError(t, err)
}

func TestRenderPassClearsTarget(t *testing.T) {
	dev, b := newDevice(t)
	tex, view := newTarget(t, dev, 2, 1)

	enc, err := dev.CreateCommandEncoder(nil)
	require.NoError(t, err)
	pass, err := enc.BeginRenderPass(&gpu.RenderPassDescriptor{
		ColorAttachments: []gpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     gpu.LoadOpClear,
			StoreOp:    gpu.StoreOpStore,
			ClearColor: &gpu.Color{R: 1, A: 1},
		}},
	})
	require.NoError(t, err)
	require.NoError(t, pass.SetPipeline(newPipeline(t, dev)))
	require.NoError(t, pass.Draw(3, 1, 0, 0))
	require.NoError(t, pass.End())
	cb, err := enc.Finish()
	require.NoError(t, err)
	require.NoError(t, dev.Queue().Submit(cb))

	got, _ := b.TextureContents(tex.ID())
	assert.Equal(t, []byte{255, 0, 0, 255, 255, 0, 0, 255}, got)
}

func TestCommandBackendFailures(t *testing.T) {
	errDriver := errors.New("driver rejected the command")
	newBuffer := func(t *testing.T, dev *gpu.Device, size uint64, usage gpu.BufferUsage) *gpu.Buffer {
		buf, err := dev.CreateBuffer(&gpu.BufferDescriptor{Size: size, Usage: usage})
		require.NoError(t, err)
		return buf
	}
	newEncoder := func(t *testing.T, dev *gpu.Device) *gpu.CommandEncoder {
		enc, err := dev.CreateCommandEncoder(nil)
		require.NoError(t, err)
		return enc
	}
	texels := gpu.Extent3D{Width: 2, Height: 2, DepthOrArrayLayers: 1}

	tests := map[string]func(t *testing.T, dev *gpu.Device) error{
		"copy buffer to buffer": func(t *testing.T, dev *gpu.Device) error {
			src := newBuffer(t, dev, 16, gpu.BufferUsageCopySrc)
			dst := newBuffer(t, dev, 16, gpu.BufferUsageCopyDst)
			return newEncoder(t, dev).CopyBufferToBuffer(src, 0, dst, 0, 16)
		},
		"copy buffer to texture": func(t *testing.T, dev *gpu.Device) error {
			tex, _ := newTarget(t, dev, 2, 2)
			upload := newBuffer(t, dev, 16, gpu.BufferUsageCopySrc)
			return newEncoder(t, dev).CopyBufferToTexture(&gpu.ImageCopyBuffer{Buffer: upload}, &gpu.ImageCopyTexture{Texture: tex}, texels)
		},
		"copy texture to buffer": func(t *testing.T, dev *gpu.Device) error {
			tex, _ := newTarget(t, dev, 2, 2)
			readback := newBuffer(t, dev, 512, gpu.BufferUsageCopyDst)
			return newEncoder(t, dev).CopyTextureToBuffer(
				&gpu.ImageCopyTexture{Texture: tex},
				&gpu.ImageCopyBuffer{Buffer: readback, Layout: gpu.TextureDataLayout{BytesPerRow: 256}},
				texels)
		},
		"clear buffer": func(t *testing.T, dev *gpu.Device) error {
			buf := newBuffer(t, dev, 16, gpu.BufferUsageCopyDst)
			return newEncoder(t, dev).ClearBuffer(buf, 0, 0)
		},
		"end render pass": func(t *testing.T, dev *gpu.Device) error {
			_, view := newTarget(t, dev, 2, 2)
			return beginPass(t, newEncoder(t, dev), view).End()
		},
		"end compute pass": func(t *testing.T, dev *gpu.Device) error {
			pass, err := newEncoder(t, dev).BeginComputePass(nil)
			require.NoError(t, err)
			return pass.End()
		},
		"write buffer": func(t *testing.T, dev *gpu.Device) error {
			buf := newBuffer(t, dev, 16, gpu.BufferUsageCopyDst)
			return dev.Queue().WriteBuffer(buf, 0, make([]byte, 16))
		},
	}
	for op, run := range tests {
		t.Run(op, func(t *testing.T) {
			dev, _ := newDevice(t, headless.WithOpError(op, errDriver))
			err := run(t, dev)
			require.ErrorIs(t, err, errDriver)

			var be *gpu.BackendError
			require.ErrorAs(t, err, &be)
			assert.Equal(t, headless.Name, be.Backend)
			assert.Equal(t, op, be.Op)
		})
	}
}

func TestBufferUnmapBackendFailure(t *testing.T) {
	dev, b := newDevice(t, headless.WithOpError("unmap", errors.New("driver rejected the unmap")))
	buf := newMappedBuffer(t, dev, 16, gpu.BufferUsageCopySrc)

	buf.Unmap()
	assert.Equal(t, gpu.BufferStateUnmapped, buf.State())
	assert.Empty(t, b.CallsOf("BufferUnmap"))
}

func TestBackendSubmitWithUnknownHandleRetiresNothing(t *testing.T) {
	dev, b := newDevice(t)
	cb := finish(t, dev, "kept")
	queue := dev.Queue().ID()

	err := b.QueueSubmit(queue, []gpu.CommandBufferID{cb.ID(), 999})
	require.ErrorIs(t, err, gpu.ErrInvalidHandle)
	assert.Empty(t, b.Executed())

	require.NoError(t, b.QueueSubmit(queue, []gpu.CommandBufferID{cb.ID()}))
	assert.Equal(t, []gpu.CommandBufferID{cb.ID()}, b.Executed())
}
