package gpu

import "github.com/gogpu/gputypes"

// Extent3D is the size of a texture or copy region in texels.
type Extent3D = gputypes.Extent3D

// Color is a linear RGBA color used for clear values and blend constants.
type Color = gputypes.Color

// Origin3D is the texel offset of a copy region.
type Origin3D struct {
	X, Y, Z uint32
}

// DefaultMaxBindGroups is the bind group limit requested when DeviceDescriptor.MaxBindGroups is zero.
const DefaultMaxBindGroups = 4

// RequestAdapterOptions selects an adapter. All fields are optional.
type RequestAdapterOptions struct {
	// CompatibleSurface restricts the choice to adapters that can present to this surface.
	CompatibleSurface Surface
	PowerPreference   PowerPreference
	// ForceFallbackAdapter asks for a software adapter. It is also enabled by
	// the WGPU_FORCE_FALLBACK_ADAPTER environment variable on the native backend.
	ForceFallbackAdapter bool
}

// DeviceDescriptor carries the device extras forwarded at acquisition time.
type DeviceDescriptor struct {
	Label string
	// MaxBindGroups is the requested bind group limit. Zero selects DefaultMaxBindGroups.
	MaxBindGroups uint32
	// TracePath enables API tracing into the given directory on backends that support it.
	// When empty, the OXY_GPU_TRACE_PATH environment variable is consulted.
	TracePath string
}

type BufferDescriptor struct {
	Label            string
	Size             uint64
	Usage            BufferUsage
	MappedAtCreation bool
}

type TextureDescriptor struct {
	Label string
	Size  Extent3D
	// MipLevelCount and SampleCount default to 1 when zero.
	MipLevelCount uint32
	SampleCount   uint32
	// Dimension defaults to TextureDimension2D.
	Dimension TextureDimension
	Format    TextureFormat
	Usage     TextureUsage
}

// TextureViewDescriptor describes a view. Zero fields inherit from the texture.
type TextureViewDescriptor struct {
	Label           string
	Format          TextureFormat
	Dimension       TextureViewDimension
	BaseMipLevel    uint32
	MipLevelCount   uint32
	BaseArrayLayer  uint32
	ArrayLayerCount uint32
	Aspect          TextureAspect
}

type SamplerDescriptor struct {
	Label        string
	AddressModeU AddressMode
	AddressModeV AddressMode
	AddressModeW AddressMode
	MagFilter    FilterMode
	MinFilter    FilterMode
	MipmapFilter FilterMode
	LodMinClamp  float32
	LodMaxClamp  float32
	// Compare makes this a comparison sampler when set.
	Compare       CompareFunction
	MaxAnisotropy uint16
}

// ShaderModuleDescriptor carries shader code as an opaque payload. Exactly one of WGSL and
// SPIRV must be set. The payload is handed to the backend unmodified.
type ShaderModuleDescriptor struct {
	Label string
	WGSL  string
	SPIRV []uint32
}

type PipelineLayoutDescriptor struct {
	Label            string
	BindGroupLayouts []*BindGroupLayout
}

type BufferBindingLayout struct {
	Type             BufferBindingType
	HasDynamicOffset bool
	MinBindingSize   uint64
}

type SamplerBindingLayout struct {
	Type SamplerBindingType
}

type TextureBindingLayout struct {
	SampleType    TextureSampleType
	ViewDimension TextureViewDimension
	Multisampled  bool
}

type StorageTextureBindingLayout struct {
	Access        StorageTextureAccess
	Format        TextureFormat
	ViewDimension TextureViewDimension
}

// BindGroupLayoutEntry describes one binding slot. Exactly one of the layout pointers is set.
type BindGroupLayoutEntry struct {
	Binding        uint32
	Visibility     ShaderStage
	Buffer         *BufferBindingLayout
	Sampler        *SamplerBindingLayout
	Texture        *TextureBindingLayout
	StorageTexture *StorageTextureBindingLayout
}

func (e BindGroupLayoutEntry) layoutCount() int {
	n := 0
	if e.Buffer != nil {
		n++
	}
	if e.Sampler != nil {
		n++
	}
	if e.Texture != nil {
		n++
	}
	if e.StorageTexture != nil {
		n++
	}
	return n
}

type BindGroupLayoutDescriptor struct {
	Label   string
	Entries []BindGroupLayoutEntry
}

// BindingResource is a resource bound into a bind group: a BufferBinding, a *Sampler or a *TextureView.
type BindingResource interface {
	bindingResource()
}

// BufferBinding binds a range of a buffer. A zero Size binds the rest of the buffer.
type BufferBinding struct {
	Buffer *Buffer
	Offset uint64
	Size   uint64
}

func (BufferBinding) bindingResource() {}

type BindGroupEntry struct {
	Binding  uint32
	Resource BindingResource
}

type BindGroupDescriptor struct {
	Label   string
	Layout  *BindGroupLayout
	Entries []BindGroupEntry
}

type VertexAttribute struct {
	Format         VertexFormat
	Offset         uint64
	ShaderLocation uint32
}

type VertexBufferLayout struct {
	ArrayStride uint64
	StepMode    VertexStepMode
	Attributes  []VertexAttribute
}

type VertexState struct {
	Module     *ShaderModule
	EntryPoint string
	Buffers    []VertexBufferLayout
}

type PrimitiveState struct {
	Topology         PrimitiveTopology
	StripIndexFormat IndexFormat
	FrontFace        FrontFace
	CullMode         CullMode
}

type StencilFaceState struct {
	Compare     CompareFunction
	FailOp      StencilOperation
	DepthFailOp StencilOperation
	PassOp      StencilOperation
}

// StencilMaskAll is the mask a zero StencilReadMask or StencilWriteMask stands for.
const StencilMaskAll uint32 = 0xFFFFFFFF

// DepthStencilState zero masks select StencilMaskAll. To leave the stencil buffer untouched
// keep every StencilOperation at its default.
type DepthStencilState struct {
	Format              TextureFormat
	DepthWriteEnabled   bool
	DepthCompare        CompareFunction
	StencilFront        StencilFaceState
	StencilBack         StencilFaceState
	StencilReadMask     uint32
	StencilWriteMask    uint32
	DepthBias           int32
	DepthBiasSlopeScale float32
	DepthBiasClamp      float32
}

// MultisampleState zero value means a single sample with every sample enabled.
type MultisampleState struct {
	Count                  uint32
	Mask                   uint32
	AlphaToCoverageEnabled bool
}

// SampleCount returns Count, defaulting to 1.
func (m MultisampleState) SampleCount() uint32 {
	if m.Count == 0 {
		return 1
	}
	return m.Count
}

// SampleMask returns Mask, defaulting to all samples.
func (m MultisampleState) SampleMask() uint32 {
	if m.Mask == 0 {
		return 0xFFFFFFFF
	}
	return m.Mask
}

type BlendComponent struct {
	Operation BlendOperation
	SrcFactor BlendFactor
	DstFactor BlendFactor
}

type BlendState struct {
	Color BlendComponent
	Alpha BlendComponent
}

// ColorTargetState describes one render target. A nil Blend means blending is disabled
// and is forwarded to the backend as absent.
type ColorTargetState struct {
	Format    TextureFormat
	Blend     *BlendState
	WriteMask ColorWriteMask
}

// Mask returns WriteMask, defaulting to ColorWriteMaskAll.
func (t ColorTargetState) Mask() ColorWriteMask {
	if t.WriteMask == 0 {
		return ColorWriteMaskAll
	}
	return t.WriteMask
}

type FragmentState struct {
	Module     *ShaderModule
	EntryPoint string
	Targets    []ColorTargetState
}

// RenderPipelineDescriptor describes a render pipeline. DepthStencil and Fragment are optional;
// a nil value is forwarded as absent rather than as a zeroed state.
type RenderPipelineDescriptor struct {
	Label string
	// Layout may be nil to let the backend derive one from the shaders.
	Layout       *PipelineLayout
	Vertex       VertexState
	Primitive    PrimitiveState
	DepthStencil *DepthStencilState
	Multisample  MultisampleState
	Fragment     *FragmentState
}

type ProgrammableStage struct {
	Module     *ShaderModule
	EntryPoint string
}

type ComputePipelineDescriptor struct {
	Label   string
	Layout  *PipelineLayout
	Compute ProgrammableStage
}

type CommandEncoderDescriptor struct {
	Label string
}

type RenderPassColorAttachment struct {
	View          *TextureView
	ResolveTarget *TextureView
	LoadOp        LoadOp
	StoreOp       StoreOp
	// ClearColor is used with LoadOpClear. Nil clears to transparent black.
	ClearColor *Color
}

// ClearValue returns the effective clear color of the attachment.
func (a RenderPassColorAttachment) ClearValue() Color {
	if a.ClearColor == nil {
		return Color{}
	}
	return *a.ClearColor
}

type RenderPassDepthStencilAttachment struct {
	View              *TextureView
	DepthLoadOp       LoadOp
	DepthStoreOp      StoreOp
	DepthClearValue   float32
	DepthReadOnly     bool
	StencilLoadOp     LoadOp
	StencilStoreOp    StoreOp
	StencilClearValue uint32
	StencilReadOnly   bool
}

type RenderPassDescriptor struct {
	Label                  string
	ColorAttachments       []RenderPassColorAttachment
	DepthStencilAttachment *RenderPassDepthStencilAttachment
}

type ComputePassDescriptor struct {
	Label string
}

// TextureDataLayout describes how texel rows are laid out in a buffer.
type TextureDataLayout struct {
	Offset       uint64
	BytesPerRow  uint32
	RowsPerImage uint32
}

type ImageCopyBuffer struct {
	Buffer *Buffer
	Layout TextureDataLayout
}

type ImageCopyTexture struct {
	Texture  *Texture
	MipLevel uint32
	Origin   Origin3D
	Aspect   TextureAspect
}

// SwapChainDescriptor configures a surface for presentation. A zero Usage selects
// TextureUsageRenderAttachment; a zero Format lets the backend pick the surface's preferred format.
type SwapChainDescriptor struct {
	Label       string
	Format      TextureFormat
	Usage       TextureUsage
	PresentMode PresentMode
}
