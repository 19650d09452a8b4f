//go:build !js

// Package native dispatches the gpu backend contract to wgpu-native through the
// cogentcore/webgpu bindings. Importing the package registers it under the name "native".
package native

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-gpu/engine/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// Name is the registry name of the backend.
const Name = gpu.BackendNative

func init() {
	gpu.Register(Name, func() (gpu.Backend, error) {
		b, err := New()
		if err != nil {
			return nil, err
		}
		return b, nil
	})
}

type device struct {
	adapter gpu.AdapterID
	device  *wgpu.Device
	queue   gpu.QueueID
}

type texture struct {
	texture *wgpu.Texture
	desc    gpu.TextureDescriptor
}

// Backend is the wgpu-native gpu.Backend. Every wgpu object it creates is owned by one of its
// registries and released when the matching handle is released or destroyed.
type Backend struct {
	mu       sync.Mutex
	instance *wgpu.Instance
	surfaces map[*wgpu.SurfaceDescriptor]*wgpu.Surface

	adapters         *gpu.Registry[gpu.AdapterID, *wgpu.Adapter]
	devices          *gpu.Registry[gpu.DeviceID, *device]
	queues           *gpu.Registry[gpu.QueueID, *wgpu.Queue]
	buffers          *gpu.Registry[gpu.BufferID, *wgpu.Buffer]
	textures         *gpu.Registry[gpu.TextureID, *texture]
	views            *gpu.Registry[gpu.TextureViewID, *wgpu.TextureView]
	samplers         *gpu.Registry[gpu.SamplerID, *wgpu.Sampler]
	shaders          *gpu.Registry[gpu.ShaderModuleID, *wgpu.ShaderModule]
	bindGroupLayouts *gpu.Registry[gpu.BindGroupLayoutID, *wgpu.BindGroupLayout]
	bindGroups       *gpu.Registry[gpu.BindGroupID, *wgpu.BindGroup]
	pipelineLayouts  *gpu.Registry[gpu.PipelineLayoutID, *wgpu.PipelineLayout]
	renderPipelines  *gpu.Registry[gpu.RenderPipelineID, *wgpu.RenderPipeline]
	computePipelines *gpu.Registry[gpu.ComputePipelineID, *wgpu.ComputePipeline]
	encoders         *gpu.Registry[gpu.CommandEncoderID, *wgpu.CommandEncoder]
	commandBuffers   *gpu.Registry[gpu.CommandBufferID, *wgpu.CommandBuffer]
	renderPasses     *gpu.Registry[gpu.RenderPassID, *wgpu.RenderPassEncoder]
	computePasses    *gpu.Registry[gpu.ComputePassID, *wgpu.ComputePassEncoder]
	swapChains       *gpu.Registry[gpu.SwapChainID, *swapChain]
}

var _ gpu.Backend = &Backend{}

// New creates the wgpu instance and applies the WGPU_LOG_LEVEL environment setting.
//
// Returns:
//   - *Backend: the backend
//   - error: ErrBackendNotAvailable when wgpu-native could not create an instance
func New() (*Backend, error) {
	setLogLevel(gpu.ConfigFromEnv().LogLevel)

	inst := wgpu.CreateInstance(nil)
	if inst == nil {
		return nil, fmt.Errorf("native: create instance: %w", gpu.ErrBackendNotAvailable)
	}
	b := newBackend()
	b.instance = inst
	return b, nil
}

func newBackend() *Backend {
	return &Backend{
		surfaces:         make(map[*wgpu.SurfaceDescriptor]*wgpu.Surface),
		adapters:         gpu.NewRegistry[gpu.AdapterID, *wgpu.Adapter]("adapter"),
		devices:          gpu.NewRegistry[gpu.DeviceID, *device]("device"),
		queues:           gpu.NewRegistry[gpu.QueueID, *wgpu.Queue]("queue"),
		buffers:          gpu.NewRegistry[gpu.BufferID, *wgpu.Buffer]("buffer"),
		textures:         gpu.NewRegistry[gpu.TextureID, *texture]("texture"),
		views:            gpu.NewRegistry[gpu.TextureViewID, *wgpu.TextureView]("texture view"),
		samplers:         gpu.NewRegistry[gpu.SamplerID, *wgpu.Sampler]("sampler"),
		shaders:          gpu.NewRegistry[gpu.ShaderModuleID, *wgpu.ShaderModule]("shader module"),
		bindGroupLayouts: gpu.NewRegistry[gpu.BindGroupLayoutID, *wgpu.BindGroupLayout]("bind group layout"),
		bindGroups:       gpu.NewRegistry[gpu.BindGroupID, *wgpu.BindGroup]("bind group"),
		pipelineLayouts:  gpu.NewRegistry[gpu.PipelineLayoutID, *wgpu.PipelineLayout]("pipeline layout"),
		renderPipelines:  gpu.NewRegistry[gpu.RenderPipelineID, *wgpu.RenderPipeline]("render pipeline"),
		computePipelines: gpu.NewRegistry[gpu.ComputePipelineID, *wgpu.ComputePipeline]("compute pipeline"),
		encoders:         gpu.NewRegistry[gpu.CommandEncoderID, *wgpu.CommandEncoder]("command encoder"),
		commandBuffers:   gpu.NewRegistry[gpu.CommandBufferID, *wgpu.CommandBuffer]("command buffer"),
		renderPasses:     gpu.NewRegistry[gpu.RenderPassID, *wgpu.RenderPassEncoder]("render pass"),
		computePasses:    gpu.NewRegistry[gpu.ComputePassID, *wgpu.ComputePassEncoder]("compute pass"),
		swapChains:       gpu.NewRegistry[gpu.SwapChainID, *swapChain]("swap chain"),
	}
}

func (b *Backend) Name() string { return Name }

// Support reports every feature as supported; wgpu-native implements the whole contract.
func (b *Backend) Support(gpu.Feature) gpu.Support { return gpu.Supported }

// setLogLevel maps a WGPU_LOG_LEVEL value onto wgpu-native's logger. Unknown values leave the
// library default in place.
func setLogLevel(level string) {
	switch level {
	case "OFF":
		wgpu.SetLogLevel(wgpu.LogLevelOff)
	case "ERROR":
		wgpu.SetLogLevel(wgpu.LogLevelError)
	case "WARN":
		wgpu.SetLogLevel(wgpu.LogLevelWarn)
	case "INFO":
		wgpu.SetLogLevel(wgpu.LogLevelInfo)
	case "DEBUG":
		wgpu.SetLogLevel(wgpu.LogLevelDebug)
	case "TRACE":
		wgpu.SetLogLevel(wgpu.LogLevelTrace)
	default:
		return
	}
	gpu.Logger().Debug("wgpu log level set", "level", level)
}

func backendError(op string, err error) error {
	return &gpu.BackendError{Backend: Name, Op: op, Err: err}
}

func (b *Backend) device(id gpu.DeviceID, op string) (*device, error) {
	d, err := b.devices.Lookup(id)
	if err != nil {
		return nil, backendError(op, err)
	}
	return d, nil
}

// surface returns the wgpu surface for a window, creating it on first use. Surfaces are cached
// per surface descriptor so a window keeps one surface across swap chain recreation.
func (b *Backend) surface(s gpu.Surface) (*wgpu.Surface, error) {
	desc, ok := s.Surface().(*wgpu.SurfaceDescriptor)
	if !ok || desc == nil {
		return nil, fmt.Errorf("surface %T is not a native surface: %w", s.Surface(), gpu.ErrInvalidDescriptor)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if surf, ok := b.surfaces[desc]; ok {
		return surf, nil
	}
	surf := b.instance.CreateSurface(desc)
	if surf == nil {
		return nil, fmt.Errorf("create surface: %w", gpu.ErrNullHandle)
	}
	b.surfaces[desc] = surf
	return surf, nil
}
