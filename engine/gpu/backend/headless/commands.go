package headless

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-gpu/engine/gpu"
)

// command is one recorded encoder command, replayed when its command buffer executes.
type command interface {
	execute(b *Backend) error
}

type encoder struct {
	device   gpu.DeviceID
	label    string
	commands []command
	finished bool
}

type commandBuffer struct {
	device   gpu.DeviceID
	label    string
	commands []command
}

type renderPass struct {
	encoder *encoder
	record  RenderPassRecord
}

type computePass struct {
	encoder    *encoder
	dispatches [][3]uint32
}

type copyBufferCmd struct {
	src, dst          gpu.BufferID
	srcOffset, offset uint64
	size              uint64
}

func (c copyBufferCmd) execute(b *Backend) error {
	src, err := b.liveBuffer(c.src, "copy buffer to buffer")
	if err != nil {
		return err
	}
	dst, err := b.liveBuffer(c.dst, "copy buffer to buffer")
	if err != nil {
		return err
	}
	copy(dst.data[c.offset:c.offset+c.size], src.data[c.srcOffset:c.srcOffset+c.size])
	return nil
}

type clearBufferCmd struct {
	buffer       gpu.BufferID
	offset, size uint64
}

func (c clearBufferCmd) execute(b *Backend) error {
	buf, err := b.liveBuffer(c.buffer, "clear buffer")
	if err != nil {
		return err
	}
	clear(buf.data[c.offset : c.offset+c.size])
	return nil
}

type texelCopyCmd struct {
	toTexture bool
	buffer    gpu.BufferID
	layout    gpu.TextureDataLayout
	texture   gpu.TextureID
	origin    gpu.Origin3D
	size      gpu.Extent3D
}

func (c texelCopyCmd) execute(b *Backend) error {
	buf, err := b.liveBuffer(c.buffer, "texel copy")
	if err != nil {
		return err
	}
	tex, err := b.textures.Lookup(c.texture)
	if err != nil {
		return backendError("texel copy", err)
	}

	texel := uint64(tex.texelSize)
	row := uint64(c.size.Width) * texel
	bytesPerRow := uint64(c.layout.BytesPerRow)
	if bytesPerRow == 0 {
		bytesPerRow = row
	}
	rowsPerImage := uint64(c.layout.RowsPerImage)
	if rowsPerImage == 0 {
		rowsPerImage = uint64(c.size.Height)
	}
	texRow := tex.rowBytes()
	texImage := texRow * uint64(tex.desc.Size.Height)

	for z := uint64(0); z < uint64(max(c.size.DepthOrArrayLayers, 1)); z++ {
		for y := uint64(0); y < uint64(c.size.Height); y++ {
			bufOff := c.layout.Offset + z*rowsPerImage*bytesPerRow + y*bytesPerRow
			texOff := (uint64(c.origin.Z)+z)*texImage + (uint64(c.origin.Y)+y)*texRow + uint64(c.origin.X)*texel
			if c.toTexture {
				copy(tex.data[texOff:texOff+row], buf.data[bufOff:bufOff+row])
			} else {
				copy(buf.data[bufOff:bufOff+row], tex.data[texOff:texOff+row])
			}
		}
	}
	return nil
}

type renderPassCmd struct {
	record RenderPassRecord
}

// execute applies the load operations of the pass. Draws are recorded but not rasterized.
func (c renderPassCmd) execute(b *Backend) error {
	for _, a := range c.record.ColorAttachments {
		if a.LoadOp != gpu.LoadOpClear {
			continue
		}
		v, err := b.views.Lookup(a.View)
		if err != nil {
			return backendError("render pass", err)
		}
		tex, err := b.textures.Lookup(v.texture)
		if err != nil {
			return backendError("render pass", err)
		}
		fillClear(tex, a.ClearValue)
	}
	return nil
}

// fillClear writes the clear color into every texel of an 8-bit RGBA or BGRA texture.
func fillClear(t *texture, c gpu.Color) {
	to8 := func(v float64) byte {
		return byte(math.Round(math.Max(0, math.Min(1, v)) * 255))
	}
	var px [4]byte
	switch t.desc.Format {
	case gpu.TextureFormatRGBA8Unorm, gpu.TextureFormatRGBA8UnormSrgb:
		px = [4]byte{to8(float64(c.R)), to8(float64(c.G)), to8(float64(c.B)), to8(float64(c.A))}
	case gpu.TextureFormatBGRA8Unorm, gpu.TextureFormatBGRA8UnormSrgb:
		px = [4]byte{to8(float64(c.B)), to8(float64(c.G)), to8(float64(c.R)), to8(float64(c.A))}
	default:
		return
	}
	for i := 0; i+4 <= len(t.data); i += 4 {
		copy(t.data[i:i+4], px[:])
	}
}

type computePassCmd struct {
	dispatches [][3]uint32
}

func (computePassCmd) execute(*Backend) error { return nil }

func (b *Backend) recordingEncoder(id gpu.CommandEncoderID, op string) (*encoder, error) {
	e, err := b.encoders.Lookup(id)
	if err != nil {
		return nil, backendError(op, err)
	}
	if e.finished {
		return nil, backendError(op, gpu.ErrEncoderFinished)
	}
	return e, nil
}

func (b *Backend) CreateCommandEncoder(deviceID gpu.DeviceID, desc *gpu.CommandEncoderDescriptor) (gpu.CommandEncoderID, error) {
	if err := b.checkDevice(deviceID, "create command encoder"); err != nil {
		return 0, err
	}
	id := b.encoders.Insert(&encoder{device: deviceID, label: desc.Label})
	b.record(Call{Op: "CreateCommandEncoder", Handle: uint64(id)})
	return id, nil
}

func (b *Backend) CommandEncoderBeginRenderPass(id gpu.CommandEncoderID, desc *gpu.RenderPassDescriptor) (gpu.RenderPassID, error) {
	e, err := b.recordingEncoder(id, "begin render pass")
	if err != nil {
		return 0, err
	}
	r := renderPassRecord(desc)
	pass := b.renderPasses.Insert(&renderPass{encoder: e, record: r})
	b.record(Call{Op: "BeginRenderPass", Handle: uint64(pass), Count: r.ColorAttachmentCount})
	return pass, nil
}

func (b *Backend) CommandEncoderBeginComputePass(id gpu.CommandEncoderID, _ *gpu.ComputePassDescriptor) (gpu.ComputePassID, error) {
	e, err := b.recordingEncoder(id, "begin compute pass")
	if err != nil {
		return 0, err
	}
	pass := b.computePasses.Insert(&computePass{encoder: e})
	b.record(Call{Op: "BeginComputePass", Handle: uint64(pass)})
	return pass, nil
}

func (b *Backend) CommandEncoderCopyBufferToBuffer(id gpu.CommandEncoderID, src gpu.BufferID, srcOffset uint64, dst gpu.BufferID, dstOffset uint64, size uint64) error {
	e, err := b.recordingEncoder(id, "copy buffer to buffer")
	if err != nil {
		return err
	}
	if err := b.failure("copy buffer to buffer"); err != nil {
		return err
	}
	e.commands = append(e.commands, copyBufferCmd{src: src, dst: dst, srcOffset: srcOffset, offset: dstOffset, size: size})
	b.record(Call{Op: "CopyBufferToBuffer", Handle: uint64(id), Items: []uint64{uint64(src), uint64(dst)}})
	return nil
}

func (b *Backend) CommandEncoderCopyBufferToTexture(id gpu.CommandEncoderID, src *gpu.ImageCopyBuffer, dst *gpu.ImageCopyTexture, size gpu.Extent3D) error {
	e, err := b.recordingEncoder(id, "copy buffer to texture")
	if err != nil {
		return err
	}
	if err := b.failure("copy buffer to texture"); err != nil {
		return err
	}
	if dst.MipLevel != 0 {
		return backendError("copy buffer to texture", fmt.Errorf("mip level %d: %w", dst.MipLevel, gpu.ErrNotImplemented))
	}
	e.commands = append(e.commands, texelCopyCmd{
		toTexture: true,
		buffer:    src.Buffer.ID(),
		layout:    src.Layout,
		texture:   dst.Texture.ID(),
		origin:    dst.Origin,
		size:      size,
	})
	b.record(Call{Op: "CopyBufferToTexture", Handle: uint64(id)})
	return nil
}

func (b *Backend) CommandEncoderCopyTextureToBuffer(id gpu.CommandEncoderID, src *gpu.ImageCopyTexture, dst *gpu.ImageCopyBuffer, size gpu.Extent3D) error {
	e, err := b.recordingEncoder(id, "copy texture to buffer")
	if err != nil {
		return err
	}
	if err := b.failure("copy texture to buffer"); err != nil {
		return err
	}
	if src.MipLevel != 0 {
		return backendError("copy texture to buffer", fmt.Errorf("mip level %d: %w", src.MipLevel, gpu.ErrNotImplemented))
	}
	e.commands = append(e.commands, texelCopyCmd{
		buffer:  dst.Buffer.ID(),
		layout:  dst.Layout,
		texture: src.Texture.ID(),
		origin:  src.Origin,
		size:    size,
	})
	b.record(Call{Op: "CopyTextureToBuffer", Handle: uint64(id)})
	return nil
}

func (b *Backend) CommandEncoderClearBuffer(id gpu.CommandEncoderID, buf gpu.BufferID, offset, size uint64) error {
	e, err := b.recordingEncoder(id, "clear buffer")
	if err != nil {
		return err
	}
	if err := b.failure("clear buffer"); err != nil {
		return err
	}
	e.commands = append(e.commands, clearBufferCmd{buffer: buf, offset: offset, size: size})
	b.record(Call{Op: "ClearBuffer", Handle: uint64(id)})
	return nil
}

func (b *Backend) CommandEncoderFinish(id gpu.CommandEncoderID, label string) (gpu.CommandBufferID, error) {
	e, err := b.recordingEncoder(id, "finish")
	if err != nil {
		return 0, err
	}
	e.finished = true
	b.encoders.Remove(id)

	cb := b.commandBuffers.Insert(&commandBuffer{device: e.device, label: label, commands: e.commands})
	b.record(Call{Op: "Finish", Handle: uint64(cb), Count: len(e.commands)})
	return cb, nil
}

func (b *Backend) renderPassOp(id gpu.RenderPassID, op string, args ...uint64) error {
	p, err := b.renderPasses.Lookup(id)
	if err != nil {
		return backendError(op, err)
	}
	p.record.Ops = append(p.record.Ops, PassOp{Op: op, Args: args})
	return nil
}

func (b *Backend) RenderPassSetPipeline(pass gpu.RenderPassID, pipeline gpu.RenderPipelineID) error {
	if _, err := b.renderPipelines.Lookup(pipeline); err != nil {
		return backendError("SetPipeline", err)
	}
	return b.renderPassOp(pass, "SetPipeline", uint64(pipeline))
}

func (b *Backend) RenderPassSetBindGroup(pass gpu.RenderPassID, index uint32, group gpu.BindGroupID, dynamicOffsets []uint32) error {
	if _, err := b.bindGroups.Lookup(group); err != nil {
		return backendError("SetBindGroup", err)
	}
	args := []uint64{uint64(index), uint64(group), uint64(len(dynamicOffsets))}
	for _, o := range dynamicOffsets {
		args = append(args, uint64(o))
	}
	return b.renderPassOp(pass, "SetBindGroup", args...)
}

func (b *Backend) RenderPassSetVertexBuffer(pass gpu.RenderPassID, slot uint32, buf gpu.BufferID, offset, size uint64) error {
	return b.renderPassOp(pass, "SetVertexBuffer", uint64(slot), uint64(buf), offset, size)
}

func (b *Backend) RenderPassSetIndexBuffer(pass gpu.RenderPassID, buf gpu.BufferID, format gpu.IndexFormat, offset, size uint64) error {
	return b.renderPassOp(pass, "SetIndexBuffer", uint64(buf), uint64(format), offset, size)
}

func (b *Backend) RenderPassSetViewport(pass gpu.RenderPassID, x, y, width, height, minDepth, maxDepth float32) error {
	return b.renderPassOp(pass, "SetViewport",
		uint64(math.Float32bits(x)), uint64(math.Float32bits(y)),
		uint64(math.Float32bits(width)), uint64(math.Float32bits(height)),
		uint64(math.Float32bits(minDepth)), uint64(math.Float32bits(maxDepth)))
}

func (b *Backend) RenderPassSetScissorRect(pass gpu.RenderPassID, x, y, width, height uint32) error {
	return b.renderPassOp(pass, "SetScissorRect", uint64(x), uint64(y), uint64(width), uint64(height))
}

func (b *Backend) RenderPassDraw(pass gpu.RenderPassID, vertexCount, instanceCount, firstVertex, firstInstance uint32) error {
	return b.renderPassOp(pass, "Draw", uint64(vertexCount), uint64(instanceCount), uint64(firstVertex), uint64(firstInstance))
}

func (b *Backend) RenderPassDrawIndexed(pass gpu.RenderPassID, indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) error {
	return b.renderPassOp(pass, "DrawIndexed",
		uint64(indexCount), uint64(instanceCount), uint64(firstIndex), uint64(int64(baseVertex)), uint64(firstInstance))
}

func (b *Backend) RenderPassEnd(pass gpu.RenderPassID) error {
	p, ok := b.renderPasses.Remove(pass)
	if !ok {
		return backendError("end render pass", gpu.ErrInvalidHandle)
	}
	if err := b.failure("end render pass"); err != nil {
		return err
	}
	p.encoder.commands = append(p.encoder.commands, renderPassCmd{record: p.record})

	b.mu.Lock()
	b.passes = append(b.passes, p.record)
	b.mu.Unlock()
	b.record(Call{Op: "EndRenderPass", Handle: uint64(pass), Count: len(p.record.Ops)})
	return nil
}

func (b *Backend) ComputePassSetPipeline(pass gpu.ComputePassID, pipeline gpu.ComputePipelineID) error {
	if _, err := b.computePasses.Lookup(pass); err != nil {
		return backendError("SetPipeline", err)
	}
	if _, err := b.computePipelines.Lookup(pipeline); err != nil {
		return backendError("SetPipeline", err)
	}
	return nil
}

func (b *Backend) ComputePassSetBindGroup(pass gpu.ComputePassID, _ uint32, group gpu.BindGroupID, _ []uint32) error {
	if _, err := b.computePasses.Lookup(pass); err != nil {
		return backendError("SetBindGroup", err)
	}
	if _, err := b.bindGroups.Lookup(group); err != nil {
		return backendError("SetBindGroup", err)
	}
	return nil
}

func (b *Backend) ComputePassDispatchWorkgroups(pass gpu.ComputePassID, x, y, z uint32) error {
	p, err := b.computePasses.Lookup(pass)
	if err != nil {
		return backendError("DispatchWorkgroups", err)
	}
	p.dispatches = append(p.dispatches, [3]uint32{x, y, z})
	return nil
}

func (b *Backend) ComputePassEnd(pass gpu.ComputePassID) error {
	p, ok := b.computePasses.Remove(pass)
	if !ok {
		return backendError("end compute pass", gpu.ErrInvalidHandle)
	}
	if err := b.failure("end compute pass"); err != nil {
		return err
	}
	p.encoder.commands = append(p.encoder.commands, computePassCmd{dispatches: p.dispatches})
	b.record(Call{Op: "EndComputePass", Handle: uint64(pass), Count: len(p.dispatches)})
	return nil
}

// QueueSubmit replays the command buffers in slice order. Execution is synchronous, so a
// later submission always observes the results of an earlier one.
func (b *Backend) QueueSubmit(queue gpu.QueueID, buffers []gpu.CommandBufferID) error {
	if _, err := b.queues.Lookup(queue); err != nil {
		return backendError("submit", err)
	}
	items := make([]uint64, len(buffers))
	for i, id := range buffers {
		items[i] = uint64(id)
	}
	b.record(Call{Op: "QueueSubmit", Handle: uint64(queue), Count: len(buffers), Items: items})

	cbs, err := b.commandBuffers.RemoveAll(buffers)
	if err != nil {
		return backendError("submit", err)
	}
	for i, cb := range cbs {
		b.mu.Lock()
		b.executed = append(b.executed, buffers[i])
		for _, c := range cb.commands {
			if err := c.execute(b); err != nil {
				b.mu.Unlock()
				return err
			}
		}
		b.mu.Unlock()
	}
	return nil
}

func (b *Backend) QueueWriteBuffer(queue gpu.QueueID, id gpu.BufferID, offset uint64, data []byte) error {
	if _, err := b.queues.Lookup(queue); err != nil {
		return backendError("write buffer", err)
	}
	buf, err := b.liveBuffer(id, "write buffer")
	if err != nil {
		return err
	}
	if err := b.failure("write buffer"); err != nil {
		return err
	}
	b.mu.Lock()
	copy(buf.data[offset:], data)
	b.mu.Unlock()
	b.record(Call{Op: "QueueWriteBuffer", Handle: uint64(id), Count: len(data)})
	return nil
}
