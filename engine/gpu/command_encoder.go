package gpu

import "fmt"

// EncoderState is the recording state of a CommandEncoder.
type EncoderState uint8

const (
	// EncoderStateRecording accepts copies and new passes.
	EncoderStateRecording EncoderState = iota
	// EncoderStateLocked has a pass open; the encoder only accepts work through that pass.
	EncoderStateLocked
	// EncoderStateFinished has produced its CommandBuffer and accepts nothing.
	EncoderStateFinished
)

func (s EncoderState) String() string {
	switch s {
	case EncoderStateRecording:
		return "recording"
	case EncoderStateLocked:
		return "locked"
	case EncoderStateFinished:
		return "finished"
	}
	return fmt.Sprintf("EncoderState(%d)", uint8(s))
}

// CommandEncoder records passes and copies into a CommandBuffer. Passes are opened and ended
// one at a time; an encoder can be finished once and is not reusable.
type CommandEncoder struct {
	device *Device
	id     CommandEncoderID
	label  string
	state  EncoderState
}

func (e *CommandEncoder) ID() CommandEncoderID { return e.id }
func (e *CommandEncoder) Label() string        { return e.label }
func (e *CommandEncoder) Device() *Device      { return e.device }
func (e *CommandEncoder) State() EncoderState  { return e.state }
func (e *CommandEncoder) String() string       { return fmt.Sprintf("CommandEncoder(%d)", uint64(e.id)) }

func (e *CommandEncoder) checkRecording() error {
	switch e.state {
	case EncoderStateLocked:
		return ErrEncoderLocked
	case EncoderStateFinished:
		return ErrEncoderFinished
	}
	return nil
}

// BeginRenderPass opens a render pass and locks the encoder until the pass ends.
//
// Parameters:
//   - desc: at least one color attachment; attachments without a ClearColor clear to
//     transparent black
//
// Returns:
//   - *RenderPassEncoder: the open pass
//   - error: ErrEncoderLocked, ErrEncoderFinished, ErrNilDescriptor, ErrInvalidDescriptor,
//     ErrDeviceMismatch, ErrInvalidState for an invalid view, or the backend's failure
func (e *CommandEncoder) BeginRenderPass(desc *RenderPassDescriptor) (*RenderPassEncoder, error) {
	if err := e.checkRecording(); err != nil {
		return nil, fmt.Errorf("begin render pass: %w", err)
	}
	if desc == nil {
		return nil, fmt.Errorf("begin render pass: %w", ErrNilDescriptor)
	}
	if len(desc.ColorAttachments) == 0 {
		return nil, fmt.Errorf("begin render pass: no color attachments: %w", ErrInvalidDescriptor)
	}

	for i, a := range desc.ColorAttachments {
		what := fmt.Sprintf("color attachment %d", i)
		if err := e.device.checkOwned(what, a.View); err != nil {
			return nil, fmt.Errorf("begin render pass: %w", err)
		}
		if err := a.View.valid(); err != nil {
			return nil, fmt.Errorf("begin render pass: %s: %w", what, err)
		}
		if a.ResolveTarget != nil {
			if err := e.device.checkOwned(what+" resolve target", a.ResolveTarget); err != nil {
				return nil, fmt.Errorf("begin render pass: %w", err)
			}
			if err := a.ResolveTarget.valid(); err != nil {
				return nil, fmt.Errorf("begin render pass: %s resolve target: %w", what, err)
			}
		}
	}
	if ds := desc.DepthStencilAttachment; ds != nil {
		if err := e.device.require(FeatureDepthStencil); err != nil {
			return nil, fmt.Errorf("begin render pass: %w", err)
		}
		if err := e.device.checkOwned("depth stencil attachment", ds.View); err != nil {
			return nil, fmt.Errorf("begin render pass: %w", err)
		}
		if err := ds.View.valid(); err != nil {
			return nil, fmt.Errorf("begin render pass: depth stencil attachment: %w", err)
		}
	}

	id, err := e.device.backend.CommandEncoderBeginRenderPass(e.id, desc)
	if err != nil {
		return nil, fmt.Errorf("begin render pass: %w", err)
	}
	if id.IsNil() {
		return nil, fmt.Errorf("begin render pass: %w", ErrNullHandle)
	}

	e.state = EncoderStateLocked
	Logger().Debug("render pass begun", "encoder", uint64(e.id), "pass", uint64(id), "attachments", len(desc.ColorAttachments))
	return &RenderPassEncoder{encoder: e, id: id}, nil
}

// BeginComputePass opens a compute pass and locks the encoder until the pass ends. desc may be nil.
func (e *CommandEncoder) BeginComputePass(desc *ComputePassDescriptor) (*ComputePassEncoder, error) {
	if err := e.checkRecording(); err != nil {
		return nil, fmt.Errorf("begin compute pass: %w", err)
	}
	if err := e.device.require(FeatureComputePipelines); err != nil {
		return nil, fmt.Errorf("begin compute pass: %w", err)
	}
	var dsc ComputePassDescriptor
	if desc != nil {
		dsc = *desc
	}

	id, err := e.device.backend.CommandEncoderBeginComputePass(e.id, &dsc)
	if err != nil {
		return nil, fmt.Errorf("begin compute pass: %w", err)
	}
	if id.IsNil() {
		return nil, fmt.Errorf("begin compute pass: %w", ErrNullHandle)
	}

	e.state = EncoderStateLocked
	return &ComputePassEncoder{encoder: e, id: id}, nil
}

// passEnded returns the encoder to recording once its open pass ends.
func (e *CommandEncoder) passEnded() {
	if e.state == EncoderStateLocked {
		e.state = EncoderStateRecording
	}
}

// CopyBufferToBuffer records a copy of size bytes from src to dst. Offsets and size must be
// multiples of 4 and both ranges must lie inside their buffers.
//
// Parameters:
//   - src: the source buffer
//   - srcOffset: byte offset into src
//   - dst: the destination buffer
//   - dstOffset: byte offset into dst
//   - size: number of bytes to copy
//
// Returns:
//   - error: ErrEncoderLocked, ErrEncoderFinished, ErrCopyRange, ErrBufferDestroyed,
//     ErrDeviceMismatch, or the backend's failure
func (e *CommandEncoder) CopyBufferToBuffer(src *Buffer, srcOffset uint64, dst *Buffer, dstOffset uint64, size uint64) error {
	if err := e.checkRecording(); err != nil {
		return fmt.Errorf("copy buffer to buffer: %w", err)
	}
	if err := e.device.checkOwned("source", src); err != nil {
		return fmt.Errorf("copy buffer to buffer: %w", err)
	}
	if err := e.device.checkOwned("destination", dst); err != nil {
		return fmt.Errorf("copy buffer to buffer: %w", err)
	}
	if err := src.checkUsable(); err != nil {
		return fmt.Errorf("copy buffer to buffer: %w", err)
	}
	if err := dst.checkUsable(); err != nil {
		return fmt.Errorf("copy buffer to buffer: %w", err)
	}
	if srcOffset%4 != 0 || dstOffset%4 != 0 || size%4 != 0 {
		return fmt.Errorf("copy buffer to buffer: offsets and size must be 4-byte aligned: %w", ErrCopyRange)
	}
	if src.checkRange(srcOffset, size) != nil || dst.checkRange(dstOffset, size) != nil {
		return fmt.Errorf("copy buffer to buffer: %d bytes from %d to %d: %w", size, srcOffset, dstOffset, ErrCopyRange)
	}
	if src == dst && srcOffset < dstOffset+size && dstOffset < srcOffset+size {
		return fmt.Errorf("copy buffer to buffer: overlapping ranges in %s: %w", src, ErrCopyRange)
	}

	if err := e.device.backend.CommandEncoderCopyBufferToBuffer(e.id, src.id, srcOffset, dst.id, dstOffset, size); err != nil {
		return fmt.Errorf("copy buffer to buffer: %w", err)
	}
	return nil
}

func (e *CommandEncoder) checkTexelCopy(buf *ImageCopyBuffer, tex *ImageCopyTexture, size Extent3D) error {
	if err := e.checkRecording(); err != nil {
		return err
	}
	if err := e.device.require(FeatureTexelCopies); err != nil {
		return err
	}
	if buf == nil || tex == nil {
		return ErrNilDescriptor
	}
	if err := e.device.checkOwned("buffer", buf.Buffer); err != nil {
		return err
	}
	if err := e.device.checkOwned("texture", tex.Texture); err != nil {
		return err
	}
	if err := buf.Buffer.checkUsable(); err != nil {
		return err
	}
	if err := tex.Texture.valid(); err != nil {
		return err
	}

	bpt := uint64(tex.Texture.format.BytesPerTexel())
	if bpt == 0 {
		return fmt.Errorf("format %s has no host layout: %w", tex.Texture.format, ErrCopyRange)
	}
	ts := tex.Texture.size
	if uint64(tex.Origin.X)+uint64(size.Width) > uint64(ts.Width) ||
		uint64(tex.Origin.Y)+uint64(size.Height) > uint64(ts.Height) ||
		uint64(tex.Origin.Z)+uint64(max(size.DepthOrArrayLayers, 1)) > uint64(ts.DepthOrArrayLayers) {
		return fmt.Errorf("copy extent exceeds %s: %w", tex.Texture, ErrCopyRange)
	}

	rowBytes := uint64(size.Width) * bpt
	bytesPerRow := uint64(buf.Layout.BytesPerRow)
	if bytesPerRow == 0 {
		bytesPerRow = rowBytes
	}
	if bytesPerRow < rowBytes {
		return fmt.Errorf("bytes per row %d below row size %d: %w", bytesPerRow, rowBytes, ErrCopyRange)
	}
	rows := uint64(buf.Layout.RowsPerImage)
	if rows == 0 {
		rows = uint64(size.Height)
	}
	layers := uint64(max(size.DepthOrArrayLayers, 1))
	var need uint64
	if size.Width > 0 && size.Height > 0 {
		need = bytesPerRow*(rows*(layers-1)+uint64(size.Height)-1) + rowBytes
	}
	if err := buf.Buffer.checkRange(buf.Layout.Offset, need); err != nil {
		return fmt.Errorf("%w: %w", ErrCopyRange, err)
	}
	return nil
}

// CopyBufferToTexture records an upload from a buffer into a texture region.
func (e *CommandEncoder) CopyBufferToTexture(src *ImageCopyBuffer, dst *ImageCopyTexture, size Extent3D) error {
	if err := e.checkTexelCopy(src, dst, size); err != nil {
		return fmt.Errorf("copy buffer to texture: %w", err)
	}
	if err := e.device.backend.CommandEncoderCopyBufferToTexture(e.id, src, dst, size); err != nil {
		return fmt.Errorf("copy buffer to texture: %w", err)
	}
	return nil
}

// CopyTextureToBuffer records a readback of a texture region into a buffer.
func (e *CommandEncoder) CopyTextureToBuffer(src *ImageCopyTexture, dst *ImageCopyBuffer, size Extent3D) error {
	if err := e.checkTexelCopy(dst, src, size); err != nil {
		return fmt.Errorf("copy texture to buffer: %w", err)
	}
	if err := e.device.backend.CommandEncoderCopyTextureToBuffer(e.id, src, dst, size); err != nil {
		return fmt.Errorf("copy texture to buffer: %w", err)
	}
	return nil
}

// ClearBuffer records zeroing size bytes of buf at offset. A zero size clears to the end.
func (e *CommandEncoder) ClearBuffer(buf *Buffer, offset, size uint64) error {
	if err := e.checkRecording(); err != nil {
		return fmt.Errorf("clear buffer: %w", err)
	}
	if err := e.device.checkOwned("buffer", buf); err != nil {
		return fmt.Errorf("clear buffer: %w", err)
	}
	if err := buf.checkUsable(); err != nil {
		return fmt.Errorf("clear buffer: %w", err)
	}
	if size == 0 && offset <= buf.size {
		size = buf.size - offset
	}
	if offset%4 != 0 || size%4 != 0 || buf.checkRange(offset, size) != nil {
		return fmt.Errorf("clear buffer: %d bytes at %d: %w", size, offset, ErrCopyRange)
	}

	if err := e.device.backend.CommandEncoderClearBuffer(e.id, buf.id, offset, size); err != nil {
		return fmt.Errorf("clear buffer: %w", err)
	}
	return nil
}

// Finish closes the encoder and returns the recorded CommandBuffer. It can be called once;
// the encoder is finished afterwards even if the backend fails.
//
// Returns:
//   - *CommandBuffer: the buffer, ready for Queue.Submit
//   - error: ErrEncoderLocked when a pass is still open, ErrEncoderFinished on a second call,
//     or the backend's failure
func (e *CommandEncoder) Finish() (*CommandBuffer, error) {
	if err := e.checkRecording(); err != nil {
		return nil, fmt.Errorf("finish: %w", err)
	}
	e.state = EncoderStateFinished

	id, err := e.device.backend.CommandEncoderFinish(e.id, e.label)
	if err != nil {
		return nil, fmt.Errorf("finish: %w", err)
	}
	if id.IsNil() {
		return nil, fmt.Errorf("finish: %w", ErrNullHandle)
	}
	return &CommandBuffer{device: e.device, id: id, label: e.label}, nil
}

// CommandBufferState tracks whether a CommandBuffer has been submitted.
type CommandBufferState uint8

const (
	CommandBufferStateReady CommandBufferState = iota
	CommandBufferStateConsumed
)

func (s CommandBufferState) String() string {
	if s == CommandBufferStateConsumed {
		return "consumed"
	}
	return "ready"
}

// CommandBuffer is the immutable result of CommandEncoder.Finish. It can be submitted once.
type CommandBuffer struct {
	device *Device
	id     CommandBufferID
	label  string
	state  CommandBufferState
}

func (b *CommandBuffer) ID() CommandBufferID       { return b.id }
func (b *CommandBuffer) Label() string             { return b.label }
func (b *CommandBuffer) Device() *Device           { return b.device }
func (b *CommandBuffer) State() CommandBufferState { return b.state }
func (b *CommandBuffer) String() string            { return fmt.Sprintf("CommandBuffer(%d)", uint64(b.id)) }

func (b *CommandBuffer) owner() *Device {
	if b == nil {
		return nil
	}
	return b.device
}
