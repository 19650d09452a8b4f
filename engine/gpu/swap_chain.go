package gpu

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gpu/common"
)

// SwapChain hands out per-frame render targets for a window surface and presents them.
// It remembers the surface size at creation; once the surface is resized the swap chain is
// out of date and must be recreated by the caller.
type SwapChain struct {
	device   *Device
	id       SwapChainID
	surface  Surface
	desc     SwapChainDescriptor
	size     common.Size
	current  *TextureView
	released bool
}

func (s *SwapChain) ID() SwapChainID                 { return s.id }
func (s *SwapChain) Device() *Device                 { return s.device }
func (s *SwapChain) Descriptor() SwapChainDescriptor { return s.desc }

// Size returns the surface size captured when the swap chain was created.
func (s *SwapChain) Size() common.Size { return s.size }

func (s *SwapChain) String() string { return fmt.Sprintf("SwapChain(%d)", uint64(s.id)) }

// IsOutOfDate reports whether the surface's current size differs from the captured size.
func (s *SwapChain) IsOutOfDate() bool {
	return s.surface.Size() != s.size
}

func (s *SwapChain) checkLive(op string) error {
	if s == nil || s.released {
		return fmt.Errorf("%s: swap chain released: %w", op, ErrInvalidState)
	}
	return nil
}

// CurrentTextureView returns the render target for this frame. Repeated calls before Present
// return the same view.
//
// Returns:
//   - *TextureView: the frame's view, valid until Present
//   - error: ErrInvalidState for a released swap chain, or the backend's failure
func (s *SwapChain) CurrentTextureView() (*TextureView, error) {
	if err := s.checkLive("current texture view"); err != nil {
		return nil, err
	}
	if s.current != nil && !s.current.invalid {
		return s.current, nil
	}

	id, err := s.device.backend.SwapChainCurrentTextureView(s.id)
	if err != nil {
		return nil, fmt.Errorf("current texture view: %w", err)
	}
	if id.IsNil() {
		return nil, fmt.Errorf("current texture view: %w", ErrNullHandle)
	}
	s.current = &TextureView{device: s.device, id: id, format: s.desc.Format, swapChain: s}
	return s.current, nil
}

// Present shows the current frame. The view returned by CurrentTextureView for this frame is
// invalid afterwards.
func (s *SwapChain) Present() error {
	if err := s.checkLive("present"); err != nil {
		return err
	}
	if s.current != nil {
		s.current.invalid = true
		s.current = nil
	}
	if err := s.device.backend.SwapChainPresent(s.id); err != nil {
		return fmt.Errorf("present: %w", err)
	}
	return nil
}

// Release unconfigures the surface. Releasing twice does nothing.
func (s *SwapChain) Release() {
	if s == nil || s.released {
		return
	}
	s.released = true
	if s.current != nil {
		s.current.invalid = true
		s.current = nil
	}
	if err := s.device.backend.SwapChainRelease(s.id); err != nil {
		Logger().Warn("swap chain release failed", "swapChain", uint64(s.id), "error", err)
	}
}
