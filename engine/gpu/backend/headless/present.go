package headless

import (
	"github.com/Carmen-Shannon/oxy-gpu/common"
	"github.com/Carmen-Shannon/oxy-gpu/engine/gpu"
)

type swapChain struct {
	device  gpu.DeviceID
	desc    gpu.SwapChainDescriptor
	size    common.Size
	texture gpu.TextureID
	view    gpu.TextureViewID
	last    []byte
}

// CreateSwapChain accepts any surface. Frames are host textures of the captured size.
func (b *Backend) CreateSwapChain(deviceID gpu.DeviceID, _ gpu.Surface, desc *gpu.SwapChainDescriptor, size common.Size) (gpu.SwapChainID, error) {
	if err := b.checkDevice(deviceID, "create swap chain"); err != nil {
		return 0, err
	}
	if desc.Format == gpu.TextureFormatUndefined {
		desc.Format = gpu.TextureFormatBGRA8Unorm
	}
	id := b.swapChains.Insert(&swapChain{device: deviceID, desc: *desc, size: size})
	b.record(Call{Op: "CreateSwapChain", Handle: uint64(id)})
	return id, nil
}

func (b *Backend) SwapChainCurrentTextureView(id gpu.SwapChainID) (gpu.TextureViewID, error) {
	sc, err := b.swapChains.Lookup(id)
	if err != nil {
		return 0, backendError("current texture view", err)
	}
	if !sc.view.IsNil() {
		return sc.view, nil
	}

	sc.texture = b.textures.Insert(newTexture(sc.device, gpu.TextureDescriptor{
		Label:  "swap chain frame",
		Size:   gpu.Extent3D{Width: uint32(sc.size.Width), Height: uint32(sc.size.Height), DepthOrArrayLayers: 1},
		Format: sc.desc.Format,
		Usage:  sc.desc.Usage,
	}))
	sc.view = b.views.Insert(&textureView{texture: sc.texture})
	b.record(Call{Op: "SwapChainCurrentTextureView", Handle: uint64(sc.view)})
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

	if t, ok := b.textures.Remove(sc.texture); ok {
		b.mu.Lock()
		sc.last = t.data
		b.mu.Unlock()
	}
	b.views.Remove(sc.view)
	sc.view, sc.texture = 0, 0

	b.mu.Lock()
	b.presented++
	b.mu.Unlock()
	b.record(Call{Op: "SwapChainPresent", Handle: uint64(id)})
	return nil
}

func (b *Backend) SwapChainRelease(id gpu.SwapChainID) error {
	sc, ok := b.swapChains.Remove(id)
	if !ok {
		return backendError("release swap chain", gpu.ErrInvalidHandle)
	}
	if !sc.view.IsNil() {
		b.views.Remove(sc.view)
		b.textures.Remove(sc.texture)
	}
	b.record(Call{Op: "SwapChainRelease", Handle: uint64(id)})
	return nil
}

// LastFrame returns the contents of the most recently presented frame of a swap chain.
func (b *Backend) LastFrame(id gpu.SwapChainID) ([]byte, bool) {
	sc, ok := b.swapChains.Get(id)
	if !ok {
		return nil, false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), sc.last...), sc.last != nil
}
