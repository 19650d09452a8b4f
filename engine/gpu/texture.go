package gpu

import "fmt"

type Texture struct {
	device        *Device
	id            TextureID
	label         string
	size          Extent3D
	format        TextureFormat
	usage         TextureUsage
	dimension     TextureDimension
	mipLevelCount uint32
	sampleCount   uint32
	destroyed     bool
}

func newTexture(d *Device, id TextureID, desc *TextureDescriptor) *Texture {
	t := &Texture{
		device:        d,
		id:            id,
		label:         desc.Label,
		size:          desc.Size,
		format:        desc.Format,
		usage:         desc.Usage,
		dimension:     desc.Dimension,
		mipLevelCount: desc.MipLevelCount,
		sampleCount:   desc.SampleCount,
	}
	if t.dimension == TextureDimensionUndefined {
		t.dimension = TextureDimension2D
	}
	if t.mipLevelCount == 0 {
		t.mipLevelCount = 1
	}
	if t.sampleCount == 0 {
		t.sampleCount = 1
	}
	if t.size.DepthOrArrayLayers == 0 {
		t.size.DepthOrArrayLayers = 1
	}
	return t
}

func (t *Texture) ID() TextureID               { return t.id }
func (t *Texture) Label() string               { return t.label }
func (t *Texture) Device() *Device             { return t.device }
func (t *Texture) Size() Extent3D              { return t.size }
func (t *Texture) Format() TextureFormat       { return t.format }
func (t *Texture) Usage() TextureUsage         { return t.usage }
func (t *Texture) Dimension() TextureDimension { return t.dimension }
func (t *Texture) MipLevelCount() uint32       { return t.mipLevelCount }
func (t *Texture) SampleCount() uint32         { return t.sampleCount }
func (t *Texture) String() string              { return fmt.Sprintf("Texture(%d)", uint64(t.id)) }

func (t *Texture) owner() *Device {
	if t == nil {
		return nil
	}
	return t.device
}

func (t *Texture) valid() error {
	if t.destroyed {
		return fmt.Errorf("%s destroyed: %w", t, ErrInvalidState)
	}
	return nil
}

// CreateView creates a view of the texture. A nil descriptor gives the default view over
// the whole texture.
//
// Parameters:
//   - desc: the view descriptor, or nil
//
// Returns:
//   - *TextureView: the new view
//   - error: ErrInvalidState for a destroyed texture, a *FeatureError when the backend lacks
//     texture views, or the backend's failure
func (t *Texture) CreateView(desc *TextureViewDescriptor) (*TextureView, error) {
	if err := t.valid(); err != nil {
		return nil, fmt.Errorf("create texture view: %w", err)
	}
	if err := t.device.require(FeatureTextureViews); err != nil {
		return nil, fmt.Errorf("create texture view: %w", err)
	}

	id, err := t.device.backend.CreateTextureView(t.id, desc)
	if err != nil {
		return nil, fmt.Errorf("create texture view: %w", err)
	}
	if id.IsNil() {
		return nil, fmt.Errorf("create texture view: %w", ErrNullHandle)
	}

	v := &TextureView{device: t.device, id: id, texture: t, format: t.format}
	if desc != nil {
		v.label = desc.Label
		if desc.Format != TextureFormatUndefined {
			v.format = desc.Format
		}
	}
	return v, nil
}

// Destroy releases the texture. Views of it become invalid. Destroying twice does nothing.
func (t *Texture) Destroy() {
	if t == nil || t.destroyed {
		return
	}
	t.destroyed = true
	if err := t.device.backend.TextureDestroy(t.id); err != nil {
		Logger().Warn("texture destroy failed", "texture", uint64(t.id), "error", err)
	}
}

// TextureView is a render target or shader-visible view of a texture. Views handed out by a
// SwapChain have no Texture and stop being valid once the frame is presented.
type TextureView struct {
	device    *Device
	id        TextureViewID
	label     string
	texture   *Texture
	format    TextureFormat
	swapChain *SwapChain
	invalid   bool
}

func (v *TextureView) ID() TextureViewID     { return v.id }
func (v *TextureView) Label() string         { return v.label }
func (v *TextureView) Device() *Device       { return v.device }
func (v *TextureView) Texture() *Texture     { return v.texture }
func (v *TextureView) Format() TextureFormat { return v.format }
func (v *TextureView) String() string        { return fmt.Sprintf("TextureView(%d)", uint64(v.id)) }

// IsValid reports whether the view can still be used in a pass or bind group.
func (v *TextureView) IsValid() bool { return v.valid() == nil }

func (*TextureView) bindingResource() {}

func (v *TextureView) owner() *Device {
	if v == nil {
		return nil
	}
	return v.device
}

func (v *TextureView) valid() error {
	if v.invalid {
		return fmt.Errorf("%s: %w", v, ErrInvalidState)
	}
	if v.texture != nil {
		return v.texture.valid()
	}
	return nil
}

// Destroy releases the view. Views owned by a swap chain are released by Present instead;
// for those Destroy only marks the view unusable.
func (v *TextureView) Destroy() {
	if v == nil || v.invalid {
		return
	}
	v.invalid = true
	if v.swapChain != nil {
		return
	}
	if err := v.device.backend.TextureViewDestroy(v.id); err != nil {
		Logger().Warn("texture view destroy failed", "view", uint64(v.id), "error", err)
	}
}
