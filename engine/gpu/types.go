package gpu

import (
	"fmt"
	"strings"
)

// enumName returns the WebGPU spelling of an enum value. The browser backend forwards these
// strings verbatim, so they must match the IDL exactly.
func enumName(names []string, v uint32, kind string) string {
	if int(v) < len(names) {
		return names[v]
	}
	return fmt.Sprintf("%s(%d)", kind, v)
}

type TextureFormat uint32

const (
	TextureFormatUndefined TextureFormat = iota
	TextureFormatR8Unorm
	TextureFormatR32Float
	TextureFormatR32Uint
	TextureFormatR32Sint
	TextureFormatRG32Float
	TextureFormatRGBA8Unorm
	TextureFormatRGBA8UnormSrgb
	TextureFormatRGBA8Snorm
	TextureFormatRGBA8Uint
	TextureFormatRGBA8Sint
	TextureFormatBGRA8Unorm
	TextureFormatBGRA8UnormSrgb
	TextureFormatRGBA16Float
	TextureFormatRGBA32Float
	TextureFormatDepth32Float
	TextureFormatDepth24Plus
	TextureFormatDepth24PlusStencil8
)

var textureFormatNames = []string{
	"undefined", "r8unorm", "r32float", "r32uint", "r32sint", "rg32float",
	"rgba8unorm", "rgba8unorm-srgb", "rgba8snorm", "rgba8uint", "rgba8sint",
	"bgra8unorm", "bgra8unorm-srgb", "rgba16float", "rgba32float",
	"depth32float", "depth24plus", "depth24plus-stencil8",
}

func (f TextureFormat) String() string {
	return enumName(textureFormatNames, uint32(f), "TextureFormat")
}

// BytesPerTexel returns the size of one texel, or 0 for formats without a fixed host layout.
func (f TextureFormat) BytesPerTexel() uint32 {
	switch f {
	case TextureFormatR8Unorm:
		return 1
	case TextureFormatR32Float, TextureFormatR32Uint, TextureFormatR32Sint,
		TextureFormatRGBA8Unorm, TextureFormatRGBA8UnormSrgb, TextureFormatRGBA8Snorm,
		TextureFormatRGBA8Uint, TextureFormatRGBA8Sint,
		TextureFormatBGRA8Unorm, TextureFormatBGRA8UnormSrgb, TextureFormatDepth32Float:
		return 4
	case TextureFormatRG32Float, TextureFormatRGBA16Float:
		return 8
	case TextureFormatRGBA32Float:
		return 16
	}
	return 0
}

// IsDepth reports whether f is a depth or depth-stencil format.
func (f TextureFormat) IsDepth() bool {
	return f == TextureFormatDepth32Float || f == TextureFormatDepth24Plus || f == TextureFormatDepth24PlusStencil8
}

// ParseTextureFormat maps a WebGPU format name back to a TextureFormat.
//
// Parameters:
//   - name: the WebGPU spelling, e.g. "bgra8unorm"
//
// Returns:
//   - TextureFormat: the matching format, or TextureFormatUndefined
//   - bool: false when the name is not known
func ParseTextureFormat(name string) (TextureFormat, bool) {
	name = strings.ToLower(name)
	for i, n := range textureFormatNames {
		if i > 0 && n == name {
			return TextureFormat(i), true
		}
	}
	return TextureFormatUndefined, false
}

type TextureDimension uint32

const (
	TextureDimensionUndefined TextureDimension = iota
	TextureDimension1D
	TextureDimension2D
	TextureDimension3D
)

func (d TextureDimension) String() string {
	return enumName([]string{"undefined", "1d", "2d", "3d"}, uint32(d), "TextureDimension")
}

type TextureViewDimension uint32

const (
	TextureViewDimensionUndefined TextureViewDimension = iota
	TextureViewDimension1D
	TextureViewDimension2D
	TextureViewDimension2DArray
	TextureViewDimensionCube
	TextureViewDimensionCubeArray
	TextureViewDimension3D
)

func (d TextureViewDimension) String() string {
	return enumName([]string{"undefined", "1d", "2d", "2d-array", "cube", "cube-array", "3d"}, uint32(d), "TextureViewDimension")
}

type TextureAspect uint32

const (
	TextureAspectAll TextureAspect = iota
	TextureAspectStencilOnly
	TextureAspectDepthOnly
)

func (a TextureAspect) String() string {
	return enumName([]string{"all", "stencil-only", "depth-only"}, uint32(a), "TextureAspect")
}

type PrimitiveTopology uint32

const (
	PrimitiveTopologyUndefined PrimitiveTopology = iota
	PrimitiveTopologyPointList
	PrimitiveTopologyLineList
	PrimitiveTopologyLineStrip
	PrimitiveTopologyTriangleList
	PrimitiveTopologyTriangleStrip
)

func (t PrimitiveTopology) String() string {
	return enumName([]string{"undefined", "point-list", "line-list", "line-strip", "triangle-list", "triangle-strip"}, uint32(t), "PrimitiveTopology")
}

type IndexFormat uint32

const (
	IndexFormatUndefined IndexFormat = iota
	IndexFormatUint16
	IndexFormatUint32
)

func (f IndexFormat) String() string {
	return enumName([]string{"undefined", "uint16", "uint32"}, uint32(f), "IndexFormat")
}

// Size returns the byte size of one index.
func (f IndexFormat) Size() uint64 {
	switch f {
	case IndexFormatUint16:
		return 2
	case IndexFormatUint32:
		return 4
	}
	return 0
}

type FrontFace uint32

const (
	FrontFaceUndefined FrontFace = iota
	FrontFaceCCW
	FrontFaceCW
)

func (f FrontFace) String() string {
	return enumName([]string{"undefined", "ccw", "cw"}, uint32(f), "FrontFace")
}

type CullMode uint32

const (
	CullModeUndefined CullMode = iota
	CullModeNone
	CullModeFront
	CullModeBack
)

func (m CullMode) String() string {
	return enumName([]string{"undefined", "none", "front", "back"}, uint32(m), "CullMode")
}

type VertexFormat uint32

const (
	VertexFormatUndefined VertexFormat = iota
	VertexFormatFloat16x2
	VertexFormatFloat16x4
	VertexFormatFloat32
	VertexFormatFloat32x2
	VertexFormatFloat32x3
	VertexFormatFloat32x4
	VertexFormatUint32
	VertexFormatUint32x2
	VertexFormatUint32x3
	VertexFormatUint32x4
	VertexFormatSint32
	VertexFormatSint32x2
	VertexFormatSint32x3
	VertexFormatSint32x4
)

func (f VertexFormat) String() string {
	return enumName([]string{
		"undefined", "float16x2", "float16x4",
		"float32", "float32x2", "float32x3", "float32x4",
		"uint32", "uint32x2", "uint32x3", "uint32x4",
		"sint32", "sint32x2", "sint32x3", "sint32x4",
	}, uint32(f), "VertexFormat")
}

type VertexStepMode uint32

const (
	VertexStepModeVertex VertexStepMode = iota
	VertexStepModeInstance
)

func (m VertexStepMode) String() string {
	return enumName([]string{"vertex", "instance"}, uint32(m), "VertexStepMode")
}

type BlendFactor uint32

const (
	BlendFactorUndefined BlendFactor = iota
	BlendFactorZero
	BlendFactorOne
	BlendFactorSrc
	BlendFactorOneMinusSrc
	BlendFactorSrcAlpha
	BlendFactorOneMinusSrcAlpha
	BlendFactorDst
	BlendFactorOneMinusDst
	BlendFactorDstAlpha
	BlendFactorOneMinusDstAlpha
	BlendFactorSrcAlphaSaturated
	BlendFactorConstant
	BlendFactorOneMinusConstant
)

func (f BlendFactor) String() string {
	return enumName([]string{
		"undefined", "zero", "one", "src", "one-minus-src", "src-alpha", "one-minus-src-alpha",
		"dst", "one-minus-dst", "dst-alpha", "one-minus-dst-alpha", "src-alpha-saturated",
		"constant", "one-minus-constant",
	}, uint32(f), "BlendFactor")
}

type BlendOperation uint32

const (
	BlendOperationUndefined BlendOperation = iota
	BlendOperationAdd
	BlendOperationSubtract
	BlendOperationReverseSubtract
	BlendOperationMin
	BlendOperationMax
)

func (o BlendOperation) String() string {
	return enumName([]string{"undefined", "add", "subtract", "reverse-subtract", "min", "max"}, uint32(o), "BlendOperation")
}

type CompareFunction uint32

const (
	CompareFunctionUndefined CompareFunction = iota
	CompareFunctionNever
	CompareFunctionLess
	CompareFunctionEqual
	CompareFunctionLessEqual
	CompareFunctionGreater
	CompareFunctionNotEqual
	CompareFunctionGreaterEqual
	CompareFunctionAlways
)

func (f CompareFunction) String() string {
	return enumName([]string{
		"undefined", "never", "less", "equal", "less-equal", "greater", "not-equal", "greater-equal", "always",
	}, uint32(f), "CompareFunction")
}

// StencilOperation is applied to the stencil value when a stencil face test resolves.
// Undefined keeps the current value.
type StencilOperation uint32

const (
	StencilOperationUndefined StencilOperation = iota
	StencilOperationKeep
	StencilOperationZero
	StencilOperationReplace
	StencilOperationInvert
	StencilOperationIncrementClamp
	StencilOperationDecrementClamp
	StencilOperationIncrementWrap
	StencilOperationDecrementWrap
)

func (o StencilOperation) String() string {
	return enumName([]string{
		"undefined", "keep", "zero", "replace", "invert",
		"increment-clamp", "decrement-clamp", "increment-wrap", "decrement-wrap",
	}, uint32(o), "StencilOperation")
}

type LoadOp uint32

const (
	LoadOpUndefined LoadOp = iota
	LoadOpClear
	LoadOpLoad
)

func (o LoadOp) String() string {
	return enumName([]string{"undefined", "clear", "load"}, uint32(o), "LoadOp")
}

type StoreOp uint32

const (
	StoreOpUndefined StoreOp = iota
	StoreOpStore
	StoreOpDiscard
)

func (o StoreOp) String() string {
	return enumName([]string{"undefined", "store", "discard"}, uint32(o), "StoreOp")
}

type PowerPreference uint32

const (
	// PowerPreferenceDefault leaves adapter selection to the backend.
	PowerPreferenceDefault PowerPreference = iota
	PowerPreferenceLowPower
	PowerPreferenceHighPerformance
)

func (p PowerPreference) String() string {
	return enumName([]string{"undefined", "low-power", "high-performance"}, uint32(p), "PowerPreference")
}

type AddressMode uint32

const (
	AddressModeUndefined AddressMode = iota
	AddressModeClampToEdge
	AddressModeRepeat
	AddressModeMirrorRepeat
)

func (m AddressMode) String() string {
	return enumName([]string{"undefined", "clamp-to-edge", "repeat", "mirror-repeat"}, uint32(m), "AddressMode")
}

type FilterMode uint32

const (
	FilterModeUndefined FilterMode = iota
	FilterModeNearest
	FilterModeLinear
)

func (m FilterMode) String() string {
	return enumName([]string{"undefined", "nearest", "linear"}, uint32(m), "FilterMode")
}

type BufferBindingType uint32

const (
	BufferBindingTypeUndefined BufferBindingType = iota
	BufferBindingTypeUniform
	BufferBindingTypeStorage
	BufferBindingTypeReadOnlyStorage
)

func (t BufferBindingType) String() string {
	return enumName([]string{"undefined", "uniform", "storage", "read-only-storage"}, uint32(t), "BufferBindingType")
}

type SamplerBindingType uint32

const (
	SamplerBindingTypeUndefined SamplerBindingType = iota
	SamplerBindingTypeFiltering
	SamplerBindingTypeNonFiltering
	SamplerBindingTypeComparison
)

func (t SamplerBindingType) String() string {
	return enumName([]string{"undefined", "filtering", "non-filtering", "comparison"}, uint32(t), "SamplerBindingType")
}

type TextureSampleType uint32

const (
	TextureSampleTypeUndefined TextureSampleType = iota
	TextureSampleTypeFloat
	TextureSampleTypeUnfilterableFloat
	TextureSampleTypeDepth
	TextureSampleTypeSint
	TextureSampleTypeUint
)

func (t TextureSampleType) String() string {
	return enumName([]string{"undefined", "float", "unfilterable-float", "depth", "sint", "uint"}, uint32(t), "TextureSampleType")
}

type StorageTextureAccess uint32

const (
	StorageTextureAccessUndefined StorageTextureAccess = iota
	StorageTextureAccessWriteOnly
	StorageTextureAccessReadOnly
	StorageTextureAccessReadWrite
)

func (a StorageTextureAccess) String() string {
	return enumName([]string{"undefined", "write-only", "read-only", "read-write"}, uint32(a), "StorageTextureAccess")
}

type PresentMode uint32

const (
	PresentModeFifo PresentMode = iota
	PresentModeImmediate
	PresentModeMailbox
)

func (m PresentMode) String() string {
	return enumName([]string{"fifo", "immediate", "mailbox"}, uint32(m), "PresentMode")
}

// BufferUsage is a bit set with the WebGPU GPUBufferUsage values.
type BufferUsage uint32

const (
	BufferUsageMapRead      BufferUsage = 0x0001
	BufferUsageMapWrite     BufferUsage = 0x0002
	BufferUsageCopySrc      BufferUsage = 0x0004
	BufferUsageCopyDst      BufferUsage = 0x0008
	BufferUsageIndex        BufferUsage = 0x0010
	BufferUsageVertex       BufferUsage = 0x0020
	BufferUsageUniform      BufferUsage = 0x0040
	BufferUsageStorage      BufferUsage = 0x0080
	BufferUsageIndirect     BufferUsage = 0x0100
	BufferUsageQueryResolve BufferUsage = 0x0200
)

func (u BufferUsage) Has(flag BufferUsage) bool { return u&flag == flag }

// TextureUsage is a bit set with the WebGPU GPUTextureUsage values.
type TextureUsage uint32

const (
	TextureUsageCopySrc          TextureUsage = 0x01
	TextureUsageCopyDst          TextureUsage = 0x02
	TextureUsageTextureBinding   TextureUsage = 0x04
	TextureUsageStorageBinding   TextureUsage = 0x08
	TextureUsageRenderAttachment TextureUsage = 0x10
)

func (u TextureUsage) Has(flag TextureUsage) bool { return u&flag == flag }

// ShaderStage is a bit set with the WebGPU GPUShaderStage values.
type ShaderStage uint32

const (
	ShaderStageNone     ShaderStage = 0
	ShaderStageVertex   ShaderStage = 0x1
	ShaderStageFragment ShaderStage = 0x2
	ShaderStageCompute  ShaderStage = 0x4
)

func (s ShaderStage) Has(flag ShaderStage) bool { return s&flag == flag }

// ColorWriteMask is a bit set with the WebGPU GPUColorWrite values.
// A zero mask on a ColorTargetState selects ColorWriteMaskAll.
type ColorWriteMask uint32

const (
	ColorWriteMaskRed   ColorWriteMask = 0x1
	ColorWriteMaskGreen ColorWriteMask = 0x2
	ColorWriteMaskBlue  ColorWriteMask = 0x4
	ColorWriteMaskAlpha ColorWriteMask = 0x8
	ColorWriteMaskAll   ColorWriteMask = 0xF
)
