// Package headless is an in-process software backend. Buffers and textures live in host
// memory, command buffers are recorded as command lists and replayed on submit, and nothing is
// rasterized. It backs the tests of the gpu package and runs anywhere without a GPU.
package headless

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-gpu/engine/gpu"
)

// Name is the registry name of the backend.
const Name = gpu.BackendHeadless

func init() {
	gpu.Register(Name, func() (gpu.Backend, error) {
		return New(), nil
	})
}

// Call is one entry of the backend's call trace. Count mirrors the explicit element count a
// native ABI would receive next to an array argument, and Items holds the forwarded handles.
type Call struct {
	Op     string
	Handle uint64
	Count  int
	Items  []uint64
}

// Backend is the headless gpu.Backend.
type Backend struct {
	mu sync.Mutex

	pool        worker.DynamicWorkerPool
	workers     int
	synchronous bool
	taskID      atomic.Int64
	gate        <-chan struct{}

	support     map[gpu.Feature]gpu.Support
	adapterErr  error
	deviceErr   error
	nullAdapter bool
	duplicate   bool
	opErrs      map[string]error

	adapters         *gpu.Registry[gpu.AdapterID, *adapter]
	devices          *gpu.Registry[gpu.DeviceID, *device]
	queues           *gpu.Registry[gpu.QueueID, gpu.DeviceID]
	buffers          *gpu.Registry[gpu.BufferID, *buffer]
	textures         *gpu.Registry[gpu.TextureID, *texture]
	views            *gpu.Registry[gpu.TextureViewID, *textureView]
	samplers         *gpu.Registry[gpu.SamplerID, gpu.SamplerDescriptor]
	shaders          *gpu.Registry[gpu.ShaderModuleID, ShaderModuleRecord]
	bindGroupLayouts *gpu.Registry[gpu.BindGroupLayoutID, BindGroupLayoutRecord]
	bindGroups       *gpu.Registry[gpu.BindGroupID, BindGroupRecord]
	pipelineLayouts  *gpu.Registry[gpu.PipelineLayoutID, PipelineLayoutRecord]
	renderPipelines  *gpu.Registry[gpu.RenderPipelineID, RenderPipelineRecord]
	computePipelines *gpu.Registry[gpu.ComputePipelineID, ComputePipelineRecord]
	encoders         *gpu.Registry[gpu.CommandEncoderID, *encoder]
	commandBuffers   *gpu.Registry[gpu.CommandBufferID, *commandBuffer]
	renderPasses     *gpu.Registry[gpu.RenderPassID, *renderPass]
	computePasses    *gpu.Registry[gpu.ComputePassID, *computePass]
	swapChains       *gpu.Registry[gpu.SwapChainID, *swapChain]

	calls     []Call
	executed  []gpu.CommandBufferID
	passes    []RenderPassRecord
	presented int
}

var _ gpu.Backend = &Backend{}

// New creates a headless backend. By default every feature is supported and acquisition
// callbacks are delivered from a worker pool, the way a native driver calls back from its own
// threads.
//
// Parameters:
//   - options: functional options configuring the backend
//
// Returns:
//   - *Backend: the new backend
func New(options ...Option) *Backend {
	b := &Backend{
		support:          make(map[gpu.Feature]gpu.Support),
		opErrs:           make(map[string]error),
		adapters:         gpu.NewRegistry[gpu.AdapterID, *adapter]("adapter"),
		devices:          gpu.NewRegistry[gpu.DeviceID, *device]("device"),
		queues:           gpu.NewRegistry[gpu.QueueID, gpu.DeviceID]("queue"),
		buffers:          gpu.NewRegistry[gpu.BufferID, *buffer]("buffer"),
		textures:         gpu.NewRegistry[gpu.TextureID, *texture]("texture"),
		views:            gpu.NewRegistry[gpu.TextureViewID, *textureView]("texture view"),
		samplers:         gpu.NewRegistry[gpu.SamplerID, gpu.SamplerDescriptor]("sampler"),
		shaders:          gpu.NewRegistry[gpu.ShaderModuleID, ShaderModuleRecord]("shader module"),
		bindGroupLayouts: gpu.NewRegistry[gpu.BindGroupLayoutID, BindGroupLayoutRecord]("bind group layout"),
		bindGroups:       gpu.NewRegistry[gpu.BindGroupID, BindGroupRecord]("bind group"),
		pipelineLayouts:  gpu.NewRegistry[gpu.PipelineLayoutID, PipelineLayoutRecord]("pipeline layout"),
		renderPipelines:  gpu.NewRegistry[gpu.RenderPipelineID, RenderPipelineRecord]("render pipeline"),
		computePipelines: gpu.NewRegistry[gpu.ComputePipelineID, ComputePipelineRecord]("compute pipeline"),
		encoders:         gpu.NewRegistry[gpu.CommandEncoderID, *encoder]("command encoder"),
		commandBuffers:   gpu.NewRegistry[gpu.CommandBufferID, *commandBuffer]("command buffer"),
		renderPasses:     gpu.NewRegistry[gpu.RenderPassID, *renderPass]("render pass"),
		computePasses:    gpu.NewRegistry[gpu.ComputePassID, *computePass]("compute pass"),
		swapChains:       gpu.NewRegistry[gpu.SwapChainID, *swapChain]("swap chain"),
	}
	b.workers = 2

	for _, opt := range options {
		opt(b)
	}
	if !b.synchronous {
		b.pool = worker.NewDynamicWorkerPool(b.workers, 16, time.Second)
	}
	return b
}

func (b *Backend) Name() string { return Name }

func (b *Backend) Support(feature gpu.Feature) gpu.Support {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.support[feature]; ok {
		return s
	}
	return gpu.Supported
}

func (b *Backend) record(c Call) {
	b.mu.Lock()
	b.calls = append(b.calls, c)
	b.mu.Unlock()
}

// dispatch delivers an acquisition result. Results go through the worker pool unless the
// backend was built with WithSynchronousCallbacks; a configured gate holds every delivery
// until it is closed.
func (b *Backend) dispatch(fn func()) {
	run := func() {
		if b.gate != nil {
			<-b.gate
		}
		fn()
	}
	if b.synchronous {
		if b.gate != nil {
			go run()
			return
		}
		run()
		return
	}
	b.pool.SubmitTask(worker.Task{
		ID: int(b.taskID.Add(1)),
		Do: func() (any, error) {
			run()
			return nil, nil
		},
	})
}

func backendError(op string, err error) error {
	return &gpu.BackendError{Backend: Name, Op: op, Err: err}
}

// failure returns the error configured for op with WithOpError, wrapped like any other
// backend failure.
func (b *Backend) failure(op string) error {
	if err, ok := b.opErrs[op]; ok {
		return backendError(op, err)
	}
	return nil
}

// Calls returns a copy of the call trace.
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Call, len(b.calls))
	copy(out, b.calls)
	return out
}

// CallsOf returns the traced calls of one operation, in call order.
func (b *Backend) CallsOf(op string) []Call {
	var out []Call
	for _, c := range b.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Executed returns the command buffers the queue has executed, in execution order.
func (b *Backend) Executed() []gpu.CommandBufferID {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]gpu.CommandBufferID, len(b.executed))
	copy(out, b.executed)
	return out
}

// RenderPasses returns the render passes recorded so far, in the order they ended.
func (b *Backend) RenderPasses() []RenderPassRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]RenderPassRecord, len(b.passes))
	copy(out, b.passes)
	return out
}

// Presented returns the number of frames presented across all swap chains.
func (b *Backend) Presented() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.presented
}

// AdapterCount returns the number of live adapters.
func (b *Backend) AdapterCount() int { return b.adapters.Len() }

// DeviceCount returns the number of live devices.
func (b *Backend) DeviceCount() int { return b.devices.Len() }

// BufferContents returns a copy of a buffer's host memory, whatever its map state.
func (b *Backend) BufferContents(id gpu.BufferID) ([]byte, bool) {
	buf, ok := b.buffers.Get(id)
	if !ok {
		return nil, false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), buf.data...), true
}

// TextureContents returns a copy of mip level 0 of a texture, rows tightly packed.
func (b *Backend) TextureContents(id gpu.TextureID) ([]byte, bool) {
	t, ok := b.textures.Get(id)
	if !ok {
		return nil, false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), t.data...), true
}

func (b *Backend) ShaderModule(id gpu.ShaderModuleID) (ShaderModuleRecord, bool) {
	return b.shaders.Get(id)
}

func (b *Backend) BindGroupLayout(id gpu.BindGroupLayoutID) (BindGroupLayoutRecord, bool) {
	return b.bindGroupLayouts.Get(id)
}

func (b *Backend) BindGroup(id gpu.BindGroupID) (BindGroupRecord, bool) {
	return b.bindGroups.Get(id)
}

func (b *Backend) PipelineLayout(id gpu.PipelineLayoutID) (PipelineLayoutRecord, bool) {
	return b.pipelineLayouts.Get(id)
}

func (b *Backend) RenderPipeline(id gpu.RenderPipelineID) (RenderPipelineRecord, bool) {
	return b.renderPipelines.Get(id)
}

func (b *Backend) ComputePipeline(id gpu.ComputePipelineID) (ComputePipelineRecord, bool) {
	return b.computePipelines.Get(id)
}
