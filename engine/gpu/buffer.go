package gpu

import (
	"fmt"
	"io"
)

// BufferState is the host-visible state of a Buffer.
type BufferState uint8

const (
	BufferStateUnmapped BufferState = iota
	BufferStateMapped
	BufferStateDestroyed
)

func (s BufferState) String() string {
	switch s {
	case BufferStateUnmapped:
		return "unmapped"
	case BufferStateMapped:
		return "mapped"
	case BufferStateDestroyed:
		return "destroyed"
	}
	return fmt.Sprintf("BufferState(%d)", uint8(s))
}

// Buffer is a GPU buffer of a fixed byte size.
//
// While a buffer is mapped its memory belongs to the caller. The GPU must not use a mapped
// buffer; this is not checked. Unmap before submitting work that reads or writes it.
type Buffer struct {
	device *Device
	id     BufferID
	label  string
	size   uint64
	usage  BufferUsage
	state  BufferState
	// mapGen changes whenever the mapping ends, invalidating BufferData handed out earlier.
	mapGen uint64
}

func (b *Buffer) ID() BufferID       { return b.id }
func (b *Buffer) Label() string      { return b.label }
func (b *Buffer) Device() *Device    { return b.device }
func (b *Buffer) Size() uint64       { return b.size }
func (b *Buffer) Usage() BufferUsage { return b.usage }
func (b *Buffer) State() BufferState { return b.state }
func (b *Buffer) String() string     { return fmt.Sprintf("Buffer(%d)", uint64(b.id)) }

func (b *Buffer) owner() *Device {
	if b == nil {
		return nil
	}
	return b.device
}

func (b *Buffer) checkUsable() error {
	if b.state == BufferStateDestroyed {
		return fmt.Errorf("%s: %w", b, ErrBufferDestroyed)
	}
	return nil
}

// checkRange reports whether [offset, offset+size) lies inside the buffer.
func (b *Buffer) checkRange(offset, size uint64) error {
	if offset > b.size || size > b.size-offset {
		return fmt.Errorf("%s: range [%d, +%d) exceeds size %d: %w", b, offset, size, b.size, ErrOutOfRange)
	}
	return nil
}

// MappedRange returns host access to a range of the mapped buffer.
//
// Parameters:
//   - offset: byte offset of the range
//   - size: byte length of the range
//
// Returns:
//   - *BufferData: the mapped range, valid until Unmap or Destroy
//   - error: ErrBufferNotMapped, ErrBufferDestroyed, ErrOutOfRange, or the backend's failure
func (b *Buffer) MappedRange(offset, size uint64) (*BufferData, error) {
	if err := b.checkUsable(); err != nil {
		return nil, err
	}
	if b.state != BufferStateMapped {
		return nil, fmt.Errorf("%s: %w", b, ErrBufferNotMapped)
	}
	if err := b.checkRange(offset, size); err != nil {
		return nil, err
	}

	mem, err := b.device.backend.BufferMappedRange(b.id, offset, size)
	if err != nil {
		return nil, fmt.Errorf("mapped range: %w", err)
	}
	return &BufferData{buffer: b, gen: b.mapGen, offset: offset, mem: mem}, nil
}

// Write copies data into the mapped buffer at offset.
func (b *Buffer) Write(offset uint64, data []byte) error {
	r, err := b.MappedRange(offset, uint64(len(data)))
	if err != nil {
		return err
	}
	return r.PutBytes(0, data)
}

// Read returns a copy of size bytes of the mapped buffer at offset.
func (b *Buffer) Read(offset, size uint64) ([]byte, error) {
	r, err := b.MappedRange(offset, size)
	if err != nil {
		return nil, err
	}
	return r.Bytes()
}

// Unmap ends the mapping. Calling it on an unmapped or destroyed buffer does nothing.
// A backend failure is logged, not returned.
func (b *Buffer) Unmap() {
	if b == nil || b.state != BufferStateMapped {
		return
	}
	if err := b.device.backend.BufferUnmap(b.id); err != nil {
		Logger().Warn("buffer unmap failed", "buffer", uint64(b.id), "error", err)
	}
	b.state = BufferStateUnmapped
	b.mapGen++
}

// Destroy releases the buffer's GPU memory. Destroying twice does nothing.
// A backend failure is logged, not returned.
func (b *Buffer) Destroy() {
	if b == nil || b.state == BufferStateDestroyed {
		return
	}
	if err := b.device.backend.BufferDestroy(b.id); err != nil {
		Logger().Warn("buffer destroy failed", "buffer", uint64(b.id), "error", err)
	}
	b.state = BufferStateDestroyed
	b.mapGen++
	Logger().Debug("buffer destroyed", "buffer", uint64(b.id))
}

// BufferData is host access to a range of a mapped buffer. Offsets passed to its methods are
// relative to the start of the range.
type BufferData struct {
	buffer *Buffer
	gen    uint64
	offset uint64
	mem    MappedMemory
}

// Offset returns the offset of the range inside the buffer.
func (d *BufferData) Offset() uint64 { return d.offset }

// Len returns the byte length of the range.
func (d *BufferData) Len() int { return d.mem.Len() }

func (d *BufferData) valid() error {
	if d.buffer.state == BufferStateDestroyed {
		return fmt.Errorf("%s: %w", d.buffer, ErrBufferDestroyed)
	}
	if d.buffer.state != BufferStateMapped || d.gen != d.buffer.mapGen {
		return fmt.Errorf("%s: %w", d.buffer, ErrBufferNotMapped)
	}
	return nil
}

// PutBytes writes b at offset within the range.
func (d *BufferData) PutBytes(offset int, b []byte) error {
	if err := d.valid(); err != nil {
		return err
	}
	if offset < 0 || offset > d.Len() || len(b) > d.Len()-offset {
		return fmt.Errorf("put %d bytes at %d into range of %d: %w", len(b), offset, d.Len(), ErrOutOfRange)
	}
	if _, err := d.mem.WriteAt(b, int64(offset)); err != nil {
		return fmt.Errorf("put bytes: %w", err)
	}
	return nil
}

// Bytes returns a copy of the whole range.
func (d *BufferData) Bytes() ([]byte, error) {
	if err := d.valid(); err != nil {
		return nil, err
	}
	out := make([]byte, d.Len())
	if _, err := d.mem.ReadAt(out, 0); err != nil {
		return nil, fmt.Errorf("read bytes: %w", err)
	}
	return out, nil
}

// HostMemory is a MappedMemory backed directly by a byte slice, used by backends whose mapped
// ranges are addressable from Go.
type HostMemory []byte

func (m HostMemory) Len() int { return len(m) }

func (m HostMemory) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > int64(len(m)) {
		return 0, ErrOutOfRange
	}
	n := copy(p, m[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (m HostMemory) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 || off > int64(len(m)) || int64(len(p)) > int64(len(m))-off {
		return 0, ErrOutOfRange
	}
	return copy(m[off:], p), nil
}
