//go:build !js

package native

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gpu/common"
	"github.com/Carmen-Shannon/oxy-gpu/engine/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

type swapChain struct {
	surface *wgpu.Surface
	texture *wgpu.Texture
	view    gpu.TextureViewID
}

// CreateSwapChain configures the window surface for the device. An undefined format selects
// the first format the surface reports for the device's adapter.
func (b *Backend) CreateSwapChain(deviceID gpu.DeviceID, s gpu.Surface, desc *gpu.SwapChainDescriptor, size common.Size) (gpu.SwapChainID, error) {
	d, err := b.device(deviceID, "create swap chain")
	if err != nil {
		return 0, err
	}
	if size.IsZero() {
		return 0, backendError("create swap chain", fmt.Errorf("surface size %s: %w", size, gpu.ErrInvalidDescriptor))
	}
	surf, err := b.surface(s)
	if err != nil {
		return 0, backendError("create swap chain", err)
	}
	a, err := b.adapters.Lookup(d.adapter)
	if err != nil {
		return 0, backendError("create swap chain", err)
	}

	caps := surf.GetCapabilities(a)
	if len(caps.Formats) == 0 || len(caps.AlphaModes) == 0 {
		return 0, backendError("create swap chain", fmt.Errorf("surface reports no formats: %w", gpu.ErrUnsupported))
	}
	format := enum(textureFormats, desc.Format)
	if desc.Format == gpu.TextureFormatUndefined {
		format = caps.Formats[0]
		desc.Format = fromTextureFormat(format)
	}

	surf.Configure(a, d.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsage(common.Coalesce(desc.Usage, gpu.TextureUsageRenderAttachment)),
		Format:      format,
		Width:       uint32(size.Width),
		Height:      uint32(size.Height),
		PresentMode: enum(presentModes, desc.PresentMode),
		AlphaMode:   caps.AlphaModes[0],
	})
	gpu.Logger().Debug("surface configured",
		"format", desc.Format, "width", size.Width, "height", size.Height, "presentMode", desc.PresentMode)

	return b.swapChains.Insert(&swapChain{surface: surf}), nil
}

func (b *Backend) SwapChainCurrentTextureView(id gpu.SwapChainID) (gpu.TextureViewID, error) {
	sc, err := b.swapChains.Lookup(id)
	if err != nil {
		return 0, backendError("current texture view", err)
	}
	if !sc.view.IsNil() {
		return sc.view, nil
	}

	tex, err := sc.surface.GetCurrentTexture()
	if err != nil {
		return 0, backendError("current texture view", err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return 0, backendError("current texture view", err)
	}
	sc.texture = tex
	sc.view = b.views.Insert(view)
	return sc.view, nil
}

func (b *Backend) SwapChainPresent(id gpu.SwapChainID) error {
	sc, err := b.swapChains.Lookup(id)
	if err != nil {
		return backendError("present", err)
	}
	if sc.view.IsNil() {
		return backendError("present", gpu.ErrInvalidState)
	}
	sc.surface.Present()
	b.releaseFrame(sc)
	return nil
}

func (b *Backend) SwapChainRelease(id gpu.SwapChainID) error {
	sc, ok := b.swapChains.Remove(id)
	if !ok {
		return backendError("release swap chain", gpu.ErrInvalidHandle)
	}
	b.releaseFrame(sc)
	return nil
}

func (b *Backend) releaseFrame(sc *swapChain) {
	if v, ok := b.views.Remove(sc.view); ok {
		v.Release()
	}
	if sc.texture != nil {
		sc.texture.Release()
	}
	sc.view, sc.texture = 0, nil
}
