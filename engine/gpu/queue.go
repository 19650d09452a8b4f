package gpu

import "fmt"

// Queue is the single submission point of a Device.
type Queue struct {
	device *Device
	id     QueueID
}

func (q *Queue) ID() QueueID     { return q.id }
func (q *Queue) Device() *Device { return q.device }
func (q *Queue) String() string  { return fmt.Sprintf("Queue(%d)", uint64(q.id)) }

// Submit hands command buffers to the backend, which executes them in argument order and after
// everything submitted earlier on this queue. Every buffer is checked before anything is sent,
// so a rejected call submits nothing. Submitted buffers are consumed even if the backend fails.
//
// Parameters:
//   - buffers: zero or more finished command buffers of this queue's device
//
// Returns:
//   - error: ErrNilResource, ErrDeviceMismatch, ErrCommandBufferConsumed for a buffer already
//     submitted or listed twice, or the backend's failure
func (q *Queue) Submit(buffers ...*CommandBuffer) error {
	ids := make([]CommandBufferID, len(buffers))
	seen := make(map[*CommandBuffer]struct{}, len(buffers))
	for i, b := range buffers {
		if err := q.device.checkOwned(fmt.Sprintf("command buffer %d", i), b); err != nil {
			return fmt.Errorf("submit: %w", err)
		}
		if _, dup := seen[b]; dup || b.state == CommandBufferStateConsumed {
			return fmt.Errorf("submit: %s: %w", b, ErrCommandBufferConsumed)
		}
		seen[b] = struct{}{}
		ids[i] = b.id
	}

	for _, b := range buffers {
		b.state = CommandBufferStateConsumed
	}
	if err := q.device.backend.QueueSubmit(q.id, ids); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	return nil
}

// WriteBuffer schedules a write of data into buf at offset. The write is ordered before any
// work submitted afterwards. data is copied before WriteBuffer returns.
//
// Parameters:
//   - buf: an unmapped buffer of this queue's device
//   - offset: byte offset, a multiple of 4
//   - data: the bytes to write; len(data) must be a multiple of 4
//
// Returns:
//   - error: ErrBufferDestroyed, ErrInvalidState for a mapped buffer, ErrOutOfRange, or the
//     backend's failure
func (q *Queue) WriteBuffer(buf *Buffer, offset uint64, data []byte) error {
	if err := q.device.checkOwned("buffer", buf); err != nil {
		return fmt.Errorf("write buffer: %w", err)
	}
	if err := buf.checkUsable(); err != nil {
		return fmt.Errorf("write buffer: %w", err)
	}
	if buf.state == BufferStateMapped {
		return fmt.Errorf("write buffer: %s is mapped: %w", buf, ErrInvalidState)
	}
	if offset%4 != 0 || len(data)%4 != 0 {
		return fmt.Errorf("write buffer: offset and length must be 4-byte aligned: %w", ErrOutOfRange)
	}
	if err := buf.checkRange(offset, uint64(len(data))); err != nil {
		return fmt.Errorf("write buffer: %w", err)
	}

	if err := q.device.backend.QueueWriteBuffer(q.id, buf.id, offset, data); err != nil {
		return fmt.Errorf("write buffer: %w", err)
	}
	return nil
}
