//go:build !js

package native

import (
	"github.com/Carmen-Shannon/oxy-gpu/engine/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// Undefined gpu values are left out of the tables and translate to the zero wgpu value.

var textureFormats = []wgpu.TextureFormat{
	gpu.TextureFormatR8Unorm:             wgpu.TextureFormatR8Unorm,
	gpu.TextureFormatR32Float:            wgpu.TextureFormatR32Float,
	gpu.TextureFormatR32Uint:             wgpu.TextureFormatR32Uint,
	gpu.TextureFormatR32Sint:             wgpu.TextureFormatR32Sint,
	gpu.TextureFormatRG32Float:           wgpu.TextureFormatRG32Float,
	gpu.TextureFormatRGBA8Unorm:          wgpu.TextureFormatRGBA8Unorm,
	gpu.TextureFormatRGBA8UnormSrgb:      wgpu.TextureFormatRGBA8UnormSrgb,
	gpu.TextureFormatRGBA8Snorm:          wgpu.TextureFormatRGBA8Snorm,
	gpu.TextureFormatRGBA8Uint:           wgpu.TextureFormatRGBA8Uint,
	gpu.TextureFormatRGBA8Sint:           wgpu.TextureFormatRGBA8Sint,
	gpu.TextureFormatBGRA8Unorm:          wgpu.TextureFormatBGRA8Unorm,
	gpu.TextureFormatBGRA8UnormSrgb:      wgpu.TextureFormatBGRA8UnormSrgb,
	gpu.TextureFormatRGBA16Float:         wgpu.TextureFormatRGBA16Float,
	gpu.TextureFormatRGBA32Float:         wgpu.TextureFormatRGBA32Float,
	gpu.TextureFormatDepth32Float:        wgpu.TextureFormatDepth32Float,
	gpu.TextureFormatDepth24Plus:         wgpu.TextureFormatDepth24Plus,
	gpu.TextureFormatDepth24PlusStencil8: wgpu.TextureFormatDepth24PlusStencil8,
}

var textureDimensions = []wgpu.TextureDimension{
	gpu.TextureDimension1D: wgpu.TextureDimension1D,
	gpu.TextureDimension2D: wgpu.TextureDimension2D,
	gpu.TextureDimension3D: wgpu.TextureDimension3D,
}

var viewDimensions = []wgpu.TextureViewDimension{
	gpu.TextureViewDimension1D:        wgpu.TextureViewDimension1D,
	gpu.TextureViewDimension2D:        wgpu.TextureViewDimension2D,
	gpu.TextureViewDimension2DArray:   wgpu.TextureViewDimension2DArray,
	gpu.TextureViewDimensionCube:      wgpu.TextureViewDimensionCube,
	gpu.TextureViewDimensionCubeArray: wgpu.TextureViewDimensionCubeArray,
	gpu.TextureViewDimension3D:        wgpu.TextureViewDimension3D,
}

var textureAspects = []wgpu.TextureAspect{
	gpu.TextureAspectAll:         wgpu.TextureAspectAll,
	gpu.TextureAspectStencilOnly: wgpu.TextureAspectStencilOnly,
	gpu.TextureAspectDepthOnly:   wgpu.TextureAspectDepthOnly,
}

var topologies = []wgpu.PrimitiveTopology{
	gpu.PrimitiveTopologyPointList:     wgpu.PrimitiveTopologyPointList,
	gpu.PrimitiveTopologyLineList:      wgpu.PrimitiveTopologyLineList,
	gpu.PrimitiveTopologyLineStrip:     wgpu.PrimitiveTopologyLineStrip,
	gpu.PrimitiveTopologyTriangleList:  wgpu.PrimitiveTopologyTriangleList,
	gpu.PrimitiveTopologyTriangleStrip: wgpu.PrimitiveTopologyTriangleStrip,
}

var indexFormats = []wgpu.IndexFormat{
	gpu.IndexFormatUint16: wgpu.IndexFormatUint16,
	gpu.IndexFormatUint32: wgpu.IndexFormatUint32,
}

var frontFaces = []wgpu.FrontFace{
	gpu.FrontFaceCCW: wgpu.FrontFaceCCW,
	gpu.FrontFaceCW:  wgpu.FrontFaceCW,
}

var cullModes = []wgpu.CullMode{
	gpu.CullModeNone:  wgpu.CullModeNone,
	gpu.CullModeFront: wgpu.CullModeFront,
	gpu.CullModeBack:  wgpu.CullModeBack,
}

var vertexFormats = []wgpu.VertexFormat{
	gpu.VertexFormatFloat16x2: wgpu.VertexFormatFloat16x2,
	gpu.VertexFormatFloat16x4: wgpu.VertexFormatFloat16x4,
	gpu.VertexFormatFloat32:   wgpu.VertexFormatFloat32,
	gpu.VertexFormatFloat32x2: wgpu.VertexFormatFloat32x2,
	gpu.VertexFormatFloat32x3: wgpu.VertexFormatFloat32x3,
	gpu.VertexFormatFloat32x4: wgpu.VertexFormatFloat32x4,
	gpu.VertexFormatUint32:    wgpu.VertexFormatUint32,
	gpu.VertexFormatUint32x2:  wgpu.VertexFormatUint32x2,
	gpu.VertexFormatUint32x3:  wgpu.VertexFormatUint32x3,
	gpu.VertexFormatUint32x4:  wgpu.VertexFormatUint32x4,
	gpu.VertexFormatSint32:    wgpu.VertexFormatSint32,
	gpu.VertexFormatSint32x2:  wgpu.VertexFormatSint32x2,
	gpu.VertexFormatSint32x3:  wgpu.VertexFormatSint32x3,
	gpu.VertexFormatSint32x4:  wgpu.VertexFormatSint32x4,
}

var stepModes = []wgpu.VertexStepMode{
	gpu.VertexStepModeVertex:   wgpu.VertexStepModeVertex,
	gpu.VertexStepModeInstance: wgpu.VertexStepModeInstance,
}

var blendFactors = []wgpu.BlendFactor{
	gpu.BlendFactorZero:              wgpu.BlendFactorZero,
	gpu.BlendFactorOne:               wgpu.BlendFactorOne,
	gpu.BlendFactorSrc:               wgpu.BlendFactorSrc,
	gpu.BlendFactorOneMinusSrc:       wgpu.BlendFactorOneMinusSrc,
	gpu.BlendFactorSrcAlpha:          wgpu.BlendFactorSrcAlpha,
	gpu.BlendFactorOneMinusSrcAlpha:  wgpu.BlendFactorOneMinusSrcAlpha,
	gpu.BlendFactorDst:               wgpu.BlendFactorDst,
	gpu.BlendFactorOneMinusDst:       wgpu.BlendFactorOneMinusDst,
	gpu.BlendFactorDstAlpha:          wgpu.BlendFactorDstAlpha,
	gpu.BlendFactorOneMinusDstAlpha:  wgpu.BlendFactorOneMinusDstAlpha,
	gpu.BlendFactorSrcAlphaSaturated: wgpu.BlendFactorSrcAlphaSaturated,
	gpu.BlendFactorConstant:          wgpu.BlendFactorConstant,
	gpu.BlendFactorOneMinusConstant:  wgpu.BlendFactorOneMinusConstant,
}

var blendOperations = []wgpu.BlendOperation{
	gpu.BlendOperationAdd:             wgpu.BlendOperationAdd,
	gpu.BlendOperationSubtract:        wgpu.BlendOperationSubtract,
	gpu.BlendOperationReverseSubtract: wgpu.BlendOperationReverseSubtract,
	gpu.BlendOperationMin:             wgpu.BlendOperationMin,
	gpu.BlendOperationMax:             wgpu.BlendOperationMax,
}

var compareFunctions = []wgpu.CompareFunction{
	gpu.CompareFunctionNever:        wgpu.CompareFunctionNever,
	gpu.CompareFunctionLess:         wgpu.CompareFunctionLess,
	gpu.CompareFunctionEqual:        wgpu.CompareFunctionEqual,
	gpu.CompareFunctionLessEqual:    wgpu.CompareFunctionLessEqual,
	gpu.CompareFunctionGreater:      wgpu.CompareFunctionGreater,
	gpu.CompareFunctionNotEqual:     wgpu.CompareFunctionNotEqual,
	gpu.CompareFunctionGreaterEqual: wgpu.CompareFunctionGreaterEqual,
	gpu.CompareFunctionAlways:       wgpu.CompareFunctionAlways,
}

var stencilOperations = []wgpu.StencilOperation{
	gpu.StencilOperationKeep:           wgpu.StencilOperationKeep,
	gpu.StencilOperationZero:           wgpu.StencilOperationZero,
	gpu.StencilOperationReplace:        wgpu.StencilOperationReplace,
	gpu.StencilOperationInvert:         wgpu.StencilOperationInvert,
	gpu.StencilOperationIncrementClamp: wgpu.StencilOperationIncrementClamp,
	gpu.StencilOperationDecrementClamp: wgpu.StencilOperationDecrementClamp,
	gpu.StencilOperationIncrementWrap:  wgpu.StencilOperationIncrementWrap,
	gpu.StencilOperationDecrementWrap:  wgpu.StencilOperationDecrementWrap,
}

var addressModes = []wgpu.AddressMode{
	gpu.AddressModeClampToEdge:  wgpu.AddressModeClampToEdge,
	gpu.AddressModeRepeat:       wgpu.AddressModeRepeat,
	gpu.AddressModeMirrorRepeat: wgpu.AddressModeMirrorRepeat,
}

var filterModes = []wgpu.FilterMode{
	gpu.FilterModeNearest: wgpu.FilterModeNearest,
	gpu.FilterModeLinear:  wgpu.FilterModeLinear,
}

var mipmapFilterModes = []wgpu.MipmapFilterMode{
	gpu.FilterModeNearest: wgpu.MipmapFilterModeNearest,
	gpu.FilterModeLinear:  wgpu.MipmapFilterModeLinear,
}

var bufferBindingTypes = []wgpu.BufferBindingType{
	gpu.BufferBindingTypeUniform:         wgpu.BufferBindingTypeUniform,
	gpu.BufferBindingTypeStorage:         wgpu.BufferBindingTypeStorage,
	gpu.BufferBindingTypeReadOnlyStorage: wgpu.BufferBindingTypeReadOnlyStorage,
}

var samplerBindingTypes = []wgpu.SamplerBindingType{
	gpu.SamplerBindingTypeFiltering:    wgpu.SamplerBindingTypeFiltering,
	gpu.SamplerBindingTypeNonFiltering: wgpu.SamplerBindingTypeNonFiltering,
	gpu.SamplerBindingTypeComparison:   wgpu.SamplerBindingTypeComparison,
}

var sampleTypes = []wgpu.TextureSampleType{
	gpu.TextureSampleTypeFloat:             wgpu.TextureSampleTypeFloat,
	gpu.TextureSampleTypeUnfilterableFloat: wgpu.TextureSampleTypeUnfilterableFloat,
	gpu.TextureSampleTypeDepth:             wgpu.TextureSampleTypeDepth,
	gpu.TextureSampleTypeSint:              wgpu.TextureSampleTypeSint,
	gpu.TextureSampleTypeUint:              wgpu.TextureSampleTypeUint,
}

var storageAccesses = []wgpu.StorageTextureAccess{
	gpu.StorageTextureAccessWriteOnly: wgpu.StorageTextureAccessWriteOnly,
	gpu.StorageTextureAccessReadOnly:  wgpu.StorageTextureAccessReadOnly,
	gpu.StorageTextureAccessReadWrite: wgpu.StorageTextureAccessReadWrite,
}

var loadOps = []wgpu.LoadOp{
	gpu.LoadOpClear: wgpu.LoadOpClear,
	gpu.LoadOpLoad:  wgpu.LoadOpLoad,
}

var storeOps = []wgpu.StoreOp{
	gpu.StoreOpStore:   wgpu.StoreOpStore,
	gpu.StoreOpDiscard: wgpu.StoreOpDiscard,
}

var powerPreferences = []wgpu.PowerPreference{
	gpu.PowerPreferenceLowPower:        wgpu.PowerPreferenceLowPower,
	gpu.PowerPreferenceHighPerformance: wgpu.PowerPreferenceHighPerformance,
}

var presentModes = []wgpu.PresentMode{
	gpu.PresentModeFifo:      wgpu.PresentModeFifo,
	gpu.PresentModeImmediate: wgpu.PresentModeImmediate,
	gpu.PresentModeMailbox:   wgpu.PresentModeMailbox,
}

// enum looks v up in a translation table, returning the zero value for anything outside it.
func enum[E ~uint32, W any](table []W, v E) W {
	var zero W
	if uint64(v) >= uint64(len(table)) {
		return zero
	}
	return table[v]
}

// fromTextureFormat is the inverse of the texture format table, used for surface formats
// reported by wgpu. Formats with no gpu equivalent map to TextureFormatUndefined.
func fromTextureFormat(f wgpu.TextureFormat) gpu.TextureFormat {
	for i, w := range textureFormats {
		if w == f && i != int(gpu.TextureFormatUndefined) {
			return gpu.TextureFormat(i)
		}
	}
	return gpu.TextureFormatUndefined
}
