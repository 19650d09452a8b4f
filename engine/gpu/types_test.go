package gpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnumStrings(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{TextureFormatBGRA8UnormSrgb.String(), "bgra8unorm-srgb"},
		{TextureFormatDepth24PlusStencil8.String(), "depth24plus-stencil8"},
		{PrimitiveTopologyTriangleStrip.String(), "triangle-strip"},
		{CompareFunctionLessEqual.String(), "less-equal"},
		{StencilOperationDecrementWrap.String(), "decrement-wrap"},
		{PowerPreferenceDefault.String(), "undefined"},
		{PowerPreferenceHighPerformance.String(), "high-performance"},
		{PresentModeMailbox.String(), "mailbox"},
		{IndexFormatUint16.String(), "uint16"},
		{TextureFormat(200).String(), "TextureFormat(200)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.got)
	}
}

func TestParseTextureFormat(t *testing.T) {
	for i := 1; i < len(textureFormatNames); i++ {
		f := TextureFormat(i)
		got, ok := ParseTextureFormat(f.String())
		assert.True(t, ok, f.String())
		assert.Equal(t, f, got)
	}

	got, ok := ParseTextureFormat("RGBA8Unorm")
	assert.True(t, ok)
	assert.Equal(t, TextureFormatRGBA8Unorm, got)

	_, ok = ParseTextureFormat("undefined")
	assert.False(t, ok)
	_, ok = ParseTextureFormat("astc-4x4-unorm")
	assert.False(t, ok)
}

func TestTextureFormatLayout(t *testing.T) {
	assert.Equal(t, uint32(1), TextureFormatR8Unorm.BytesPerTexel())
	assert.Equal(t, uint32(4), TextureFormatBGRA8Unorm.BytesPerTexel())
	assert.Equal(t, uint32(8), TextureFormatRGBA16Float.BytesPerTexel())
	assert.Equal(t, uint32(16), TextureFormatRGBA32Float.BytesPerTexel())
	assert.Zero(t, TextureFormatDepth24Plus.BytesPerTexel())

	assert.True(t, TextureFormatDepth32Float.IsDepth())
	assert.False(t, TextureFormatRGBA8Unorm.IsDepth())
}

func TestFlagSets(t *testing.T) {
	u := BufferUsageVertex | BufferUsageCopyDst
	assert.True(t, u.Has(BufferUsageVertex))
	assert.True(t, u.Has(BufferUsageVertex|BufferUsageCopyDst))
	assert.False(t, u.Has(BufferUsageVertex|BufferUsageIndex))

	assert.Equal(t, ColorWriteMaskAll, ColorTargetState{}.Mask())
	assert.Equal(t, ColorWriteMaskRed, ColorTargetState{WriteMask: ColorWriteMaskRed}.Mask())
	assert.Equal(t, uint32(1), MultisampleState{}.SampleCount())
	assert.Equal(t, ^uint32(0), MultisampleState{}.SampleMask())
}
