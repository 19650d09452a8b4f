package gpu

import (
	"github.com/Carmen-Shannon/oxy-gpu/common"
)

// Surface is a presentation target provided by a window.
type Surface interface {
	// Surface returns the opaque native surface handle understood by the active backend.
	Surface() any
	// Size returns the current drawable size in pixels.
	Size() common.Size
}

// Feature names a capability a descriptor may need from a backend.
type Feature uint8

const (
	FeatureWGSLShaders Feature = iota
	FeatureSPIRVShaders
	FeatureDepthStencil
	FeatureTextureViews
	FeatureSamplers
	FeatureBindGroups
	FeatureComputePipelines
	FeatureTexelCopies
	FeatureTracePath
	FeatureSwapChain
)

func (f Feature) String() string {
	return enumName([]string{
		"wgsl shaders", "spir-v shaders", "depth-stencil state", "texture views", "samplers",
		"bind groups", "compute pipelines", "texel copies", "trace path", "swap chain",
	}, uint32(f), "Feature")
}

// Support is a backend's answer for a Feature.
type Support uint8

const (
	Supported Support = iota
	// NotImplemented means the backend could provide the feature but does not yet.
	NotImplemented
	// UnsupportedByDesign means the platform behind the backend can not provide the feature.
	UnsupportedByDesign
)

func (s Support) String() string {
	return enumName([]string{"supported", "not implemented", "unsupported by design"}, uint32(s), "Support")
}

// MappedMemory is a host view of a mapped buffer range. Offsets are relative to the start of
// the range. The memory is only valid until the buffer is unmapped.
type MappedMemory interface {
	ReadAt(p []byte, off int64) (int, error)
	WriteAt(p []byte, off int64) (int, error)
	Len() int
}

// DeviceGrant is the pair of handles produced by a device request.
type DeviceGrant struct {
	Device DeviceID
	Queue  QueueID
}

// AcquisitionBackend negotiates adapters and devices. Both requests complete through the done
// callback, which the backend must call exactly once, either before returning or later from
// a goroutine of its own.
type AcquisitionBackend interface {
	RequestAdapter(opts RequestAdapterOptions, done func(AdapterID, error))
	RequestDevice(adapter AdapterID, desc DeviceDescriptor, done func(DeviceGrant, error))
	ReleaseAdapter(adapter AdapterID) error
	ReleaseDevice(device DeviceID) error
}

// ResourceBackend allocates backend objects from descriptors. Every creation call is
// synchronous and returns a fresh handle.
type ResourceBackend interface {
	CreateBuffer(device DeviceID, desc *BufferDescriptor) (BufferID, error)
	BufferMappedRange(buffer BufferID, offset, size uint64) (MappedMemory, error)
	BufferUnmap(buffer BufferID) error
	BufferDestroy(buffer BufferID) error

	CreateTexture(device DeviceID, desc *TextureDescriptor) (TextureID, error)
	TextureDestroy(texture TextureID) error
	CreateTextureView(texture TextureID, desc *TextureViewDescriptor) (TextureViewID, error)
	TextureViewDestroy(view TextureViewID) error

	CreateSampler(device DeviceID, desc *SamplerDescriptor) (SamplerID, error)
	CreateShaderModule(device DeviceID, desc *ShaderModuleDescriptor) (ShaderModuleID, error)
	CreateBindGroupLayout(device DeviceID, desc *BindGroupLayoutDescriptor) (BindGroupLayoutID, error)
	CreateBindGroup(device DeviceID, desc *BindGroupDescriptor) (BindGroupID, error)
	CreatePipelineLayout(device DeviceID, desc *PipelineLayoutDescriptor) (PipelineLayoutID, error)
	CreateRenderPipeline(device DeviceID, desc *RenderPipelineDescriptor) (RenderPipelineID, error)
	CreateComputePipeline(device DeviceID, desc *ComputePipelineDescriptor) (ComputePipelineID, error)
}

// CommandBackend records and submits GPU commands.
type CommandBackend interface {
	CreateCommandEncoder(device DeviceID, desc *CommandEncoderDescriptor) (CommandEncoderID, error)
	CommandEncoderBeginRenderPass(encoder CommandEncoderID, desc *RenderPassDescriptor) (RenderPassID, error)
	CommandEncoderBeginComputePass(encoder CommandEncoderID, desc *ComputePassDescriptor) (ComputePassID, error)
	CommandEncoderCopyBufferToBuffer(encoder CommandEncoderID, src BufferID, srcOffset uint64, dst BufferID, dstOffset uint64, size uint64) error
	CommandEncoderCopyBufferToTexture(encoder CommandEncoderID, src *ImageCopyBuffer, dst *ImageCopyTexture, size Extent3D) error
	CommandEncoderCopyTextureToBuffer(encoder CommandEncoderID, src *ImageCopyTexture, dst *ImageCopyBuffer, size Extent3D) error
	CommandEncoderClearBuffer(encoder CommandEncoderID, buffer BufferID, offset, size uint64) error
	CommandEncoderFinish(encoder CommandEncoderID, label string) (CommandBufferID, error)

	RenderPassSetPipeline(pass RenderPassID, pipeline RenderPipelineID) error
	RenderPassSetBindGroup(pass RenderPassID, index uint32, group BindGroupID, dynamicOffsets []uint32) error
	RenderPassSetVertexBuffer(pass RenderPassID, slot uint32, buffer BufferID, offset, size uint64) error
	RenderPassSetIndexBuffer(pass RenderPassID, buffer BufferID, format IndexFormat, offset, size uint64) error
	RenderPassSetViewport(pass RenderPassID, x, y, width, height, minDepth, maxDepth float32) error
	RenderPassSetScissorRect(pass RenderPassID, x, y, width, height uint32) error
	RenderPassDraw(pass RenderPassID, vertexCount, instanceCount, firstVertex, firstInstance uint32) error
	RenderPassDrawIndexed(pass RenderPassID, indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) error
	RenderPassEnd(pass RenderPassID) error

	ComputePassSetPipeline(pass ComputePassID, pipeline ComputePipelineID) error
	ComputePassSetBindGroup(pass ComputePassID, index uint32, group BindGroupID, dynamicOffsets []uint32) error
	ComputePassDispatchWorkgroups(pass ComputePassID, x, y, z uint32) error
	ComputePassEnd(pass ComputePassID) error

	// QueueSubmit hands the command buffers to the GPU in slice order.
	QueueSubmit(queue QueueID, buffers []CommandBufferID) error
	QueueWriteBuffer(queue QueueID, buffer BufferID, offset uint64, data []byte) error
}

// PresentBackend drives swap chains bound to window surfaces. CreateSwapChain receives a
// private copy of the descriptor and fills in Format when it is undefined.
type PresentBackend interface {
	CreateSwapChain(device DeviceID, surface Surface, desc *SwapChainDescriptor, size common.Size) (SwapChainID, error)
	SwapChainCurrentTextureView(swapChain SwapChainID) (TextureViewID, error)
	SwapChainPresent(swapChain SwapChainID) error
	SwapChainRelease(swapChain SwapChainID) error
}

// Backend is one execution target for the descriptor API. A backend is selected once, when
// an Instance is created, and every object created from that Instance dispatches to it.
//
// Implementations forward array fields with exactly as many elements as the descriptor holds,
// and forward absent optional fields (nil pointers in descriptors) as the backend's own
// null or undefined value rather than as zeroed structures.
type Backend interface {
	AcquisitionBackend
	ResourceBackend
	CommandBackend
	PresentBackend

	// Name returns the registry name of the backend.
	Name() string
	// Support reports whether the backend provides a feature.
	Support(feature Feature) Support
}
