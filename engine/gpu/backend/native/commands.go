//go:build !js

package native

import (
	"github.com/Carmen-Shannon/oxy-gpu/engine/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

func (b *Backend) CreateCommandEncoder(deviceID gpu.DeviceID, desc *gpu.CommandEncoderDescriptor) (gpu.CommandEncoderID, error) {
	d, err := b.device(deviceID, "create command encoder")
	if err != nil {
		return 0, err
	}
	enc, err := d.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: desc.Label})
	if err != nil {
		return 0, backendError("create command encoder", err)
	}
	return b.encoders.Insert(enc), nil
}

func (b *Backend) encoder(id gpu.CommandEncoderID, op string) (*wgpu.CommandEncoder, error) {
	enc, err := b.encoders.Lookup(id)
	if err != nil {
		return nil, backendError(op, err)
	}
	return enc, nil
}

func (b *Backend) CommandEncoderBeginRenderPass(encoderID gpu.CommandEncoderID, desc *gpu.RenderPassDescriptor) (gpu.RenderPassID, error) {
	enc, err := b.encoder(encoderID, "begin render pass")
	if err != nil {
		return 0, err
	}
	wdesc, err := b.renderPassDescriptor(desc)
	if err != nil {
		return 0, backendError("begin render pass", err)
	}
	pass := enc.BeginRenderPass(wdesc)
	if pass == nil {
		return 0, backendError("begin render pass", errNull("render pass"))
	}
	return b.renderPasses.Insert(pass), nil
}

func (b *Backend) CommandEncoderBeginComputePass(encoderID gpu.CommandEncoderID, desc *gpu.ComputePassDescriptor) (gpu.ComputePassID, error) {
	enc, err := b.encoder(encoderID, "begin compute pass")
	if err != nil {
		return 0, err
	}
	var wdesc *wgpu.ComputePassDescriptor
	if desc != nil {
		wdesc = &wgpu.ComputePassDescriptor{Label: desc.Label}
	}
	pass := enc.BeginComputePass(wdesc)
	if pass == nil {
		return 0, backendError("begin compute pass", errNull("compute pass"))
	}
	return b.computePasses.Insert(pass), nil
}

func (b *Backend) CommandEncoderCopyBufferToBuffer(encoderID gpu.CommandEncoderID, src gpu.BufferID, srcOffset uint64, dst gpu.BufferID, dstOffset uint64, size uint64) error {
	enc, err := b.encoder(encoderID, "copy buffer to buffer")
	if err != nil {
		return err
	}
	s, err := b.buffers.Lookup(src)
	if err != nil {
		return backendError("copy buffer to buffer", err)
	}
	d, err := b.buffers.Lookup(dst)
	if err != nil {
		return backendError("copy buffer to buffer", err)
	}
	if err := enc.CopyBufferToBuffer(s, srcOffset, d, dstOffset, size); err != nil {
		return backendError("copy buffer to buffer", err)
	}
	return nil
}

func (b *Backend) CommandEncoderCopyBufferToTexture(encoderID gpu.CommandEncoderID, src *gpu.ImageCopyBuffer, dst *gpu.ImageCopyTexture, size gpu.Extent3D) error {
	enc, err := b.encoder(encoderID, "copy buffer to texture")
	if err != nil {
		return err
	}
	buf, tex, extent, err := b.texelCopy(src, dst, size)
	if err != nil {
		return backendError("copy buffer to texture", err)
	}
	if err := enc.CopyBufferToTexture(buf, tex, extent); err != nil {
		return backendError("copy buffer to texture", err)
	}
	return nil
}

func (b *Backend) CommandEncoderCopyTextureToBuffer(encoderID gpu.CommandEncoderID, src *gpu.ImageCopyTexture, dst *gpu.ImageCopyBuffer, size gpu.Extent3D) error {
	enc, err := b.encoder(encoderID, "copy texture to buffer")
	if err != nil {
		return err
	}
	buf, tex, extent, err := b.texelCopy(dst, src, size)
	if err != nil {
		return backendError("copy texture to buffer", err)
	}
	if err := enc.CopyTextureToBuffer(tex, buf, extent); err != nil {
		return backendError("copy texture to buffer", err)
	}
	return nil
}

func (b *Backend) CommandEncoderClearBuffer(encoderID gpu.CommandEncoderID, bufferID gpu.BufferID, offset, size uint64) error {
	enc, err := b.encoder(encoderID, "clear buffer")
	if err != nil {
		return err
	}
	buf, err := b.buffers.Lookup(bufferID)
	if err != nil {
		return backendError("clear buffer", err)
	}
	if err := enc.ClearBuffer(buf, offset, size); err != nil {
		return backendError("clear buffer", err)
	}
	return nil
}

// CommandEncoderFinish releases the encoder; a finished encoder has no further use in wgpu.
func (b *Backend) CommandEncoderFinish(encoderID gpu.CommandEncoderID, label string) (gpu.CommandBufferID, error) {
	enc, ok := b.encoders.Remove(encoderID)
	if !ok {
		return 0, backendError("finish", gpu.ErrInvalidHandle)
	}
	defer enc.Release()

	cb, err := enc.Finish(&wgpu.CommandBufferDescriptor{Label: label})
	if err != nil {
		return 0, backendError("finish", err)
	}
	return b.commandBuffers.Insert(cb), nil
}

func (b *Backend) renderPass(id gpu.RenderPassID, op string) (*wgpu.RenderPassEncoder, error) {
	p, err := b.renderPasses.Lookup(id)
	if err != nil {
		return nil, backendError(op, err)
	}
	return p, nil
}

func (b *Backend) RenderPassSetPipeline(passID gpu.RenderPassID, pipelineID gpu.RenderPipelineID) error {
	pass, err := b.renderPass(passID, "set pipeline")
	if err != nil {
		return err
	}
	p, err := b.renderPipelines.Lookup(pipelineID)
	if err != nil {
		return backendError("set pipeline", err)
	}
	pass.SetPipeline(p)
	return nil
}

func (b *Backend) RenderPassSetBindGroup(passID gpu.RenderPassID, index uint32, groupID gpu.BindGroupID, dynamicOffsets []uint32) error {
	pass, err := b.renderPass(passID, "set bind group")
	if err != nil {
		return err
	}
	g, err := b.bindGroups.Lookup(groupID)
	if err != nil {
		return backendError("set bind group", err)
	}
	pass.SetBindGroup(index, g, dynamicOffsets)
	return nil
}

func (b *Backend) RenderPassSetVertexBuffer(passID gpu.RenderPassID, slot uint32, bufferID gpu.BufferID, offset, size uint64) error {
	pass, err := b.renderPass(passID, "set vertex buffer")
	if err != nil {
		return err
	}
	buf, err := b.buffers.Lookup(bufferID)
	if err != nil {
		return backendError("set vertex buffer", err)
	}
	pass.SetVertexBuffer(slot, buf, offset, size)
	return nil
}

func (b *Backend) RenderPassSetIndexBuffer(passID gpu.RenderPassID, bufferID gpu.BufferID, format gpu.IndexFormat, offset, size uint64) error {
	pass, err := b.renderPass(passID, "set index buffer")
	if err != nil {
		return err
	}
	buf, err := b.buffers.Lookup(bufferID)
	if err != nil {
		return backendError("set index buffer", err)
	}
	pass.SetIndexBuffer(buf, enum(indexFormats, format), offset, size)
	return nil
}

func (b *Backend) RenderPassSetViewport(passID gpu.RenderPassID, x, y, width, height, minDepth, maxDepth float32) error {
	pass, err := b.renderPass(passID, "set viewport")
	if err != nil {
		return err
	}
	pass.SetViewport(x, y, width, height, minDepth, maxDepth)
	return nil
}

func (b *Backend) RenderPassSetScissorRect(passID gpu.RenderPassID, x, y, width, height uint32) error {
	pass, err := b.renderPass(passID, "set scissor rect")
	if err != nil {
		return err
	}
	pass.SetScissorRect(x, y, width, height)
	return nil
}

func (b *Backend) RenderPassDraw(passID gpu.RenderPassID, vertexCount, instanceCount, firstVertex, firstInstance uint32) error {
	pass, err := b.renderPass(passID, "draw")
	if err != nil {
		return err
	}
	pass.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
	return nil
}

func (b *Backend) RenderPassDrawIndexed(passID gpu.RenderPassID, indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) error {
	pass, err := b.renderPass(passID, "draw indexed")
	if err != nil {
		return err
	}
	pass.DrawIndexed(indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
	return nil
}

func (b *Backend) RenderPassEnd(passID gpu.RenderPassID) error {
	pass, ok := b.renderPasses.Remove(passID)
	if !ok {
		return backendError("end render pass", gpu.ErrInvalidHandle)
	}
	defer pass.Release()

	if err := pass.End(); err != nil {
		return backendError("end render pass", err)
	}
	return nil
}

func (b *Backend) computePass(id gpu.ComputePassID, op string) (*wgpu.ComputePassEncoder, error) {
	p, err := b.computePasses.Lookup(id)
	if err != nil {
		return nil, backendError(op, err)
	}
	return p, nil
}

func (b *Backend) ComputePassSetPipeline(passID gpu.ComputePassID, pipelineID gpu.ComputePipelineID) error {
	pass, err := b.computePass(passID, "set pipeline")
	if err != nil {
		return err
	}
	p, err := b.computePipelines.Lookup(pipelineID)
	if err != nil {
		return backendError("set pipeline", err)
	}
	pass.SetPipeline(p)
	return nil
}

func (b *Backend) ComputePassSetBindGroup(passID gpu.ComputePassID, index uint32, groupID gpu.BindGroupID, dynamicOffsets []uint32) error {
	pass, err := b.computePass(passID, "set bind group")
	if err != nil {
		return err
	}
	g, err := b.bindGroups.Lookup(groupID)
	if err != nil {
		return backendError("set bind group", err)
	}
	pass.SetBindGroup(index, g, dynamicOffsets)
	return nil
}

func (b *Backend) ComputePassDispatchWorkgroups(passID gpu.ComputePassID, x, y, z uint32) error {
	pass, err := b.computePass(passID, "dispatch workgroups")
	if err != nil {
		return err
	}
	pass.DispatchWorkgroups(x, y, z)
	return nil
}

func (b *Backend) ComputePassEnd(passID gpu.ComputePassID) error {
	pass, ok := b.computePasses.Remove(passID)
	if !ok {
		return backendError("end compute pass", gpu.ErrInvalidHandle)
	}
	defer pass.Release()

	if err := pass.End(); err != nil {
		return backendError("end compute pass", err)
	}
	return nil
}

// QueueSubmit retires the command buffer handles whether or not wgpu accepts them. An
// unknown handle fails the submit before any handle is retired.
func (b *Backend) QueueSubmit(queueID gpu.QueueID, buffers []gpu.CommandBufferID) error {
	q, err := b.queues.Lookup(queueID)
	if err != nil {
		return backendError("submit", err)
	}

	cbs, err := b.commandBuffers.RemoveAll(buffers)
	if err != nil {
		return backendError("submit", err)
	}

	q.Submit(cbs...)
	for _, cb := range cbs {
		cb.Release()
	}
	return nil
}

func (b *Backend) QueueWriteBuffer(queueID gpu.QueueID, bufferID gpu.BufferID, offset uint64, data []byte) error {
	q, err := b.queues.Lookup(queueID)
	if err != nil {
		return backendError("write buffer", err)
	}
	buf, err := b.buffers.Lookup(bufferID)
	if err != nil {
		return backendError("write buffer", err)
	}
	if err := q.WriteBuffer(buf, offset, data); err != nil {
		return backendError("write buffer", err)
	}
	return nil
}
