package gpu

import "fmt"

// PassState is the state of a render or compute pass encoder.
type PassState uint8

const (
	PassStateOpen PassState = iota
	PassStateEnded
)

func (s PassState) String() string {
	if s == PassStateEnded {
		return "ended"
	}
	return "open"
}

// RenderPassEncoder records draw commands into its CommandEncoder. After End every method
// returns ErrPassEnded; the pass handle is reset to the null handle at that point and the
// null handle is what the state check looks at.
type RenderPassEncoder struct {
	encoder *CommandEncoder
	id      RenderPassID
}

func (p *RenderPassEncoder) ID() RenderPassID { return p.id }

// State reports PassStateEnded once End has been called.
func (p *RenderPassEncoder) State() PassState {
	if p.id.IsNil() {
		return PassStateEnded
	}
	return PassStateOpen
}

func (p *RenderPassEncoder) String() string { return fmt.Sprintf("RenderPassEncoder(%d)", uint64(p.id)) }

func (p *RenderPassEncoder) checkOpen(op string) error {
	if p == nil || p.id.IsNil() {
		return fmt.Errorf("%s: %w", op, ErrPassEnded)
	}
	return nil
}

func (p *RenderPassEncoder) backend() Backend { return p.encoder.device.backend }

func (p *RenderPassEncoder) SetPipeline(pipeline *RenderPipeline) error {
	if err := p.checkOpen("set pipeline"); err != nil {
		return err
	}
	if err := p.encoder.device.checkOwned("pipeline", pipeline); err != nil {
		return fmt.Errorf("set pipeline: %w", err)
	}
	if err := p.backend().RenderPassSetPipeline(p.id, pipeline.id); err != nil {
		return fmt.Errorf("set pipeline: %w", err)
	}
	return nil
}

// SetBindGroup binds group at index for subsequent draws.
//
// Parameters:
//   - index: the bind group slot, below the device's MaxBindGroups
//   - group: the bind group
//   - dynamicOffsets: one offset per dynamic buffer binding, may be nil
//
// Returns:
//   - error: ErrPassEnded, ErrOutOfRange, ErrDeviceMismatch, or the backend's failure
func (p *RenderPassEncoder) SetBindGroup(index uint32, group *BindGroup, dynamicOffsets []uint32) error {
	if err := p.checkOpen("set bind group"); err != nil {
		return err
	}
	if index >= p.encoder.device.maxBindGroups {
		return fmt.Errorf("set bind group: index %d: %w", index, ErrOutOfRange)
	}
	if err := p.encoder.device.checkOwned("bind group", group); err != nil {
		return fmt.Errorf("set bind group: %w", err)
	}
	if err := p.backend().RenderPassSetBindGroup(p.id, index, group.id, dynamicOffsets); err != nil {
		return fmt.Errorf("set bind group: %w", err)
	}
	return nil
}

// SetVertexBuffer binds a range of buf to a vertex buffer slot. A zero size binds the rest of
// the buffer.
func (p *RenderPassEncoder) SetVertexBuffer(slot uint32, buf *Buffer, offset, size uint64) error {
	if err := p.checkOpen("set vertex buffer"); err != nil {
		return err
	}
	size, err := p.bufferRange(buf, offset, size)
	if err != nil {
		return fmt.Errorf("set vertex buffer: %w", err)
	}
	if err := p.backend().RenderPassSetVertexBuffer(p.id, slot, buf.id, offset, size); err != nil {
		return fmt.Errorf("set vertex buffer: %w", err)
	}
	return nil
}

// SetIndexBuffer binds a range of buf as the index buffer. A zero size binds the rest of the
// buffer.
func (p *RenderPassEncoder) SetIndexBuffer(buf *Buffer, format IndexFormat, offset, size uint64) error {
	if err := p.checkOpen("set index buffer"); err != nil {
		return err
	}
	if format.Size() == 0 {
		return fmt.Errorf("set index buffer: index format %s: %w", format, ErrInvalidDescriptor)
	}
	size, err := p.bufferRange(buf, offset, size)
	if err != nil {
		return fmt.Errorf("set index buffer: %w", err)
	}
	if err := p.backend().RenderPassSetIndexBuffer(p.id, buf.id, format, offset, size); err != nil {
		return fmt.Errorf("set index buffer: %w", err)
	}
	return nil
}

func (p *RenderPassEncoder) bufferRange(buf *Buffer, offset, size uint64) (uint64, error) {
	if err := p.encoder.device.checkOwned("buffer", buf); err != nil {
		return 0, err
	}
	if err := buf.checkUsable(); err != nil {
		return 0, err
	}
	if size == 0 && offset <= buf.size {
		size = buf.size - offset
	}
	if err := buf.checkRange(offset, size); err != nil {
		return 0, err
	}
	return size, nil
}

func (p *RenderPassEncoder) SetViewport(x, y, width, height, minDepth, maxDepth float32) error {
	if err := p.checkOpen("set viewport"); err != nil {
		return err
	}
	if width < 0 || height < 0 || minDepth < 0 || maxDepth > 1 || minDepth > maxDepth {
		return fmt.Errorf("set viewport: %w", ErrOutOfRange)
	}
	if err := p.backend().RenderPassSetViewport(p.id, x, y, width, height, minDepth, maxDepth); err != nil {
		return fmt.Errorf("set viewport: %w", err)
	}
	return nil
}

func (p *RenderPassEncoder) SetScissorRect(x, y, width, height uint32) error {
	if err := p.checkOpen("set scissor rect"); err != nil {
		return err
	}
	if err := p.backend().RenderPassSetScissorRect(p.id, x, y, width, height); err != nil {
		return fmt.Errorf("set scissor rect: %w", err)
	}
	return nil
}

func (p *RenderPassEncoder) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) error {
	if err := p.checkOpen("draw"); err != nil {
		return err
	}
	if err := p.backend().RenderPassDraw(p.id, vertexCount, instanceCount, firstVertex, firstInstance); err != nil {
		return fmt.Errorf("draw: %w", err)
	}
	return nil
}

func (p *RenderPassEncoder) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) error {
	if err := p.checkOpen("draw indexed"); err != nil {
		return err
	}
	if err := p.backend().RenderPassDrawIndexed(p.id, indexCount, instanceCount, firstIndex, baseVertex, firstInstance); err != nil {
		return fmt.Errorf("draw indexed: %w", err)
	}
	return nil
}

// End closes the pass and unlocks the encoder. The pass is ended even if the backend reports
// a failure. Calling End again returns ErrPassEnded.
func (p *RenderPassEncoder) End() error {
	if err := p.checkOpen("end pass"); err != nil {
		return err
	}
	id := p.id
	p.id = 0
	p.encoder.passEnded()

	if err := p.backend().RenderPassEnd(id); err != nil {
		return fmt.Errorf("end pass: %w", err)
	}
	Logger().Debug("render pass ended", "encoder", uint64(p.encoder.id), "pass", uint64(id))
	return nil
}
