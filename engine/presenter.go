package engine

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gpu/engine/gpu"
)

// Presenter runs the per-frame swap chain cycle for one surface: recreate when the surface
// was resized, acquire the frame view, draw, present.
type Presenter struct {
	device    *gpu.Device
	surface   gpu.Surface
	desc      gpu.SwapChainDescriptor
	swapChain *gpu.SwapChain
}

// NewPresenter creates a Presenter. The swap chain is created immediately unless the surface
// has a zero size, in which case the first drawable frame creates it.
//
// Parameters:
//   - device: the device that renders the frames
//   - surface: the window surface to present to
//   - desc: swap chain settings, nil for defaults
//
// Returns:
//   - *Presenter: the presenter
//   - error: the swap chain creation failure
func NewPresenter(device *gpu.Device, surface gpu.Surface, desc *gpu.SwapChainDescriptor) (*Presenter, error) {
	if device == nil || surface == nil {
		return nil, fmt.Errorf("new presenter: %w", gpu.ErrNilResource)
	}
	p := &Presenter{device: device, surface: surface}
	if desc != nil {
		p.desc = *desc
	}
	if !surface.Size().IsZero() {
		if err := p.recreate(); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// SwapChain returns the current swap chain, nil before the first one was created.
func (p *Presenter) SwapChain() *gpu.SwapChain {
	return p.swapChain
}

func (p *Presenter) recreate() error {
	if p.swapChain != nil {
		p.swapChain.Release()
		p.swapChain = nil
	}
	desc := p.desc
	sc, err := p.device.CreateSwapChain(p.surface, &desc)
	if err != nil {
		return fmt.Errorf("presenter: %w", err)
	}
	p.swapChain = sc
	return nil
}

// Frame draws and presents one frame. The surface size is checked once: a zero size skips the
// frame, and a changed size recreates the swap chain before the view is acquired. When fn fails
// nothing is presented and the next Frame hands out the same view.
//
// Parameters:
//   - fn: records and submits the frame's work targeting view
//
// Returns:
//   - error: fn's error, or the swap chain failure
func (p *Presenter) Frame(fn func(view *gpu.TextureView) error) error {
	if size := p.surface.Size(); size.IsZero() {
		gpu.Logger().Debug("frame skipped", "size", size.String())
		return nil
	}
	if p.swapChain == nil || p.swapChain.IsOutOfDate() {
		if err := p.recreate(); err != nil {
			return err
		}
	}

	view, err := p.swapChain.CurrentTextureView()
	if err != nil {
		return fmt.Errorf("presenter: %w", err)
	}
	if err := fn(view); err != nil {
		return err
	}
	if err := p.swapChain.Present(); err != nil {
		return fmt.Errorf("presenter: %w", err)
	}
	return nil
}

// Release releases the swap chain. The presenter must not be used afterwards.
func (p *Presenter) Release() {
	p.swapChain.Release()
	p.swapChain = nil
}
