//go:build js && wasm

package browser

import (
	"fmt"
	"io"
	"syscall/js"

	"github.com/Carmen-Shannon/oxy-gpu/common"
	"github.com/Carmen-Shannon/oxy-gpu/engine/gpu"
)

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
	device js.Value
	queue  gpu.QueueID
}

type swapChain struct {
	context js.Value
	view    gpu.TextureViewID
}

// Backend is the navigator.gpu gpu.Backend. JS objects are held in registries keyed by the
// handles given out to the core.
type Backend struct {
	gpu js.Value

	adapters         *gpu.Registry[gpu.AdapterID, js.Value]
	devices          *gpu.Registry[gpu.DeviceID, *device]
	queues           *gpu.Registry[gpu.QueueID, js.Value]
	buffers          *gpu.Registry[gpu.BufferID, js.Value]
	textures         *gpu.Registry[gpu.TextureID, js.Value]
	views            *gpu.Registry[gpu.TextureViewID, js.Value]
	samplers         *gpu.Registry[gpu.SamplerID, js.Value]
	shaders          *gpu.Registry[gpu.ShaderModuleID, js.Value]
	bindGroupLayouts *gpu.Registry[gpu.BindGroupLayoutID, js.Value]
	bindGroups       *gpu.Registry[gpu.BindGroupID, js.Value]
	pipelineLayouts  *gpu.Registry[gpu.PipelineLayoutID, js.Value]
	renderPipelines  *gpu.Registry[gpu.RenderPipelineID, js.Value]
	computePipelines *gpu.Registry[gpu.ComputePipelineID, js.Value]
	encoders         *gpu.Registry[gpu.CommandEncoderID, js.Value]
	commandBuffers   *gpu.Registry[gpu.CommandBufferID, js.Value]
	renderPasses     *gpu.Registry[gpu.RenderPassID, js.Value]
	computePasses    *gpu.Registry[gpu.ComputePassID, js.Value]
	swapChains       *gpu.Registry[gpu.SwapChainID, *swapChain]
}

var _ gpu.Backend = &Backend{}

// New binds to navigator.gpu.
//
// Returns:
//   - *Backend: the backend
//   - error: ErrBackendNotAvailable when the browser has no WebGPU
func New() (*Backend, error) {
	navGPU := js.Global().Get("navigator").Get("gpu")
	if !navGPU.Truthy() {
		return nil, fmt.Errorf("browser: navigator.gpu: %w", gpu.ErrBackendNotAvailable)
	}
	return &Backend{
		gpu:              navGPU,
		adapters:         gpu.NewRegistry[gpu.AdapterID, js.Value]("adapter"),
		devices:          gpu.NewRegistry[gpu.DeviceID, *device]("device"),
		queues:           gpu.NewRegistry[gpu.QueueID, js.Value]("queue"),
		buffers:          gpu.NewRegistry[gpu.BufferID, js.Value]("buffer"),
		textures:         gpu.NewRegistry[gpu.TextureID, js.Value]("texture"),
		views:            gpu.NewRegistry[gpu.TextureViewID, js.Value]("texture view"),
		samplers:         gpu.NewRegistry[gpu.SamplerID, js.Value]("sampler"),
		shaders:          gpu.NewRegistry[gpu.ShaderModuleID, js.Value]("shader module"),
		bindGroupLayouts: gpu.NewRegistry[gpu.BindGroupLayoutID, js.Value]("bind group layout"),
		bindGroups:       gpu.NewRegistry[gpu.BindGroupID, js.Value]("bind group"),
		pipelineLayouts:  gpu.NewRegistry[gpu.PipelineLayoutID, js.Value]("pipeline layout"),
		renderPipelines:  gpu.NewRegistry[gpu.RenderPipelineID, js.Value]("render pipeline"),
		computePipelines: gpu.NewRegistry[gpu.ComputePipelineID, js.Value]("compute pipeline"),
		encoders:         gpu.NewRegistry[gpu.CommandEncoderID, js.Value]("command encoder"),
		commandBuffers:   gpu.NewRegistry[gpu.CommandBufferID, js.Value]("command buffer"),
		renderPasses:     gpu.NewRegistry[gpu.RenderPassID, js.Value]("render pass"),
		computePasses:    gpu.NewRegistry[gpu.ComputePassID, js.Value]("compute pass"),
		swapChains:       gpu.NewRegistry[gpu.SwapChainID, *swapChain]("swap chain"),
	}, nil
}

func (b *Backend) Name() string                            { return Name }
func (b *Backend) Support(feature gpu.Feature) gpu.Support { return support(feature) }

func backendError(op string, err error) error {
	return &gpu.BackendError{Backend: Name, Op: op, Err: err}
}

// invoke calls a JS method and turns a thrown exception into an error.
func invoke(op string, v js.Value, method string, args ...any) (res js.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			jsErr, ok := r.(js.Error)
			if !ok {
				panic(r)
			}
			err = backendError(op, jsErr)
		}
	}()
	return v.Call(method, args...), nil
}

// awaitPromise settles a promise into done. Exactly one of the two handlers runs; both JS
// functions are released once it has.
func awaitPromise(promise js.Value, done func(js.Value, error)) {
	var onFulfilled, onRejected js.Func
	release := func() {
		onFulfilled.Release()
		onRejected.Release()
	}
	onFulfilled = js.FuncOf(func(_ js.Value, args []js.Value) any {
		release()
		done(firstArg(args), nil)
		return nil
	})
	onRejected = js.FuncOf(func(_ js.Value, args []js.Value) any {
		release()
		done(js.Undefined(), js.Error{Value: firstArg(args)})
		return nil
	})
	promise.Call("then", onFulfilled, onRejected)
}

func firstArg(args []js.Value) js.Value {
	if len(args) == 0 {
		return js.Undefined()
	}
	return args[0]
}

func lookup[K ~uint64](r *gpu.Registry[K, js.Value], id K) (any, error) {
	v, err := r.Lookup(id)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (b *Backend) buffer(id gpu.BufferID) (any, error)                  { return lookup(b.buffers, id) }
func (b *Backend) texture(id gpu.TextureID) (any, error)                { return lookup(b.textures, id) }
func (b *Backend) textureView(id gpu.TextureViewID) (any, error)        { return lookup(b.views, id) }
func (b *Backend) sampler(id gpu.SamplerID) (any, error)                { return lookup(b.samplers, id) }
func (b *Backend) shaderModule(id gpu.ShaderModuleID) (any, error)      { return lookup(b.shaders, id) }
func (b *Backend) bindGroupLayout(id gpu.BindGroupLayoutID) (any, error) { return lookup(b.bindGroupLayouts, id) }
func (b *Backend) pipelineLayout(id gpu.PipelineLayoutID) (any, error)  { return lookup(b.pipelineLayouts, id) }

func (b *Backend) device(id gpu.DeviceID, op string) (js.Value, error) {
	d, err := b.devices.Lookup(id)
	if err != nil {
		return js.Undefined(), backendError(op, err)
	}
	return d.device, nil
}

// create runs a device.createX call with a translated descriptor.
func (b *Backend) create(deviceID gpu.DeviceID, op, method string, desc object) (js.Value, error) {
	d, err := b.device(deviceID, op)
	if err != nil {
		return js.Undefined(), err
	}
	return invoke(op, d, method, js.ValueOf(desc))
}

func (b *Backend) RequestAdapter(opts gpu.RequestAdapterOptions, done func(gpu.AdapterID, error)) {
	promise, err := invoke("request adapter", b.gpu, "requestAdapter", js.ValueOf(adapterOptions(opts)))
	if err != nil {
		done(0, err)
		return
	}
	awaitPromise(promise, func(a js.Value, err error) {
		switch {
		case err != nil:
			done(0, backendError("request adapter", err))
		case a.IsNull() || a.IsUndefined():
			done(0, nil)
		default:
			id := b.adapters.Insert(a)
			gpu.Logger().Debug("browser adapter acquired", "adapter", uint64(id))
			done(id, nil)
		}
	})
}

func (b *Backend) RequestDevice(adapterID gpu.AdapterID, desc gpu.DeviceDescriptor, done func(gpu.DeviceGrant, error)) {
	a, err := b.adapters.Lookup(adapterID)
	if err != nil {
		done(gpu.DeviceGrant{}, backendError("request device", err))
		return
	}
	promise, err := invoke("request device", a, "requestDevice", js.ValueOf(deviceDescriptor(desc)))
	if err != nil {
		done(gpu.DeviceGrant{}, err)
		return
	}
	awaitPromise(promise, func(d js.Value, err error) {
		switch {
		case err != nil:
			done(gpu.DeviceGrant{}, backendError("request device", err))
		case d.IsNull() || d.IsUndefined():
			done(gpu.DeviceGrant{}, nil)
		default:
			dev := &device{device: d}
			id := b.devices.Insert(dev)
			dev.queue = b.queues.Insert(d.Get("queue"))
			done(gpu.DeviceGrant{Device: id, Queue: dev.queue}, nil)
		}
	})
}

// ReleaseAdapter forgets the adapter; browsers collect adapters themselves.
func (b *Backend) ReleaseAdapter(id gpu.AdapterID) error {
	if _, ok := b.adapters.Remove(id); !ok {
		return backendError("release adapter", gpu.ErrInvalidHandle)
	}
	return nil
}

func (b *Backend) ReleaseDevice(id gpu.DeviceID) error {
	d, ok := b.devices.Remove(id)
	if !ok {
		return backendError("release device", gpu.ErrInvalidHandle)
	}
	b.queues.Remove(d.queue)
	_, err := invoke("release device", d.device, "destroy")
	return err
}

func (b *Backend) CreateBuffer(deviceID gpu.DeviceID, desc *gpu.BufferDescriptor) (gpu.BufferID, error) {
	buf, err := b.create(deviceID, "create buffer", "createBuffer", bufferDescriptor(desc))
	if err != nil {
		return 0, err
	}
	return b.buffers.Insert(buf), nil
}

// jsMemory is a MappedMemory over a Uint8Array view of a mapped GPUBuffer range.
type jsMemory struct {
	array js.Value
	n     int
}

func (m jsMemory) Len() int { return m.n }

func (m jsMemory) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > int64(m.n) {
		return 0, gpu.ErrOutOfRange
	}
	n := min(len(p), m.n-int(off))
	js.CopyBytesToGo(p[:n], m.array.Call("subarray", off, off+int64(n)))
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (m jsMemory) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 || off > int64(m.n) || int64(len(p)) > int64(m.n)-off {
		return 0, gpu.ErrOutOfRange
	}
	return js.CopyBytesToJS(m.array.Call("subarray", off, off+int64(len(p))), p), nil
}

func (b *Backend) BufferMappedRange(id gpu.BufferID, offset, size uint64) (gpu.MappedMemory, error) {
	buf, err := b.buffers.Lookup(id)
	if err != nil {
		return nil, backendError("mapped range", err)
	}
	ab, err := invoke("mapped range", buf, "getMappedRange", offset, size)
	if err != nil {
		return nil, err
	}
	return jsMemory{array: js.Global().Get("Uint8Array").New(ab), n: int(size)}, nil
}

func (b *Backend) BufferUnmap(id gpu.BufferID) error {
	buf, err := b.buffers.Lookup(id)
	if err != nil {
		return backendError("unmap", err)
	}
	_, err = invoke("unmap", buf, "unmap")
	return err
}

func (b *Backend) BufferDestroy(id gpu.BufferID) error {
	buf, ok := b.buffers.Remove(id)
	if !ok {
		return backendError("destroy buffer", gpu.ErrInvalidHandle)
	}
	_, err := invoke("destroy buffer", buf, "destroy")
	return err
}

func (b *Backend) CreateTexture(deviceID gpu.DeviceID, desc *gpu.TextureDescriptor) (gpu.TextureID, error) {
	tex, err := b.create(deviceID, "create texture", "createTexture", textureDescriptor(desc))
	if err != nil {
		return 0, err
	}
	return b.textures.Insert(tex), nil
}

func (b *Backend) TextureDestroy(id gpu.TextureID) error {
	tex, ok := b.textures.Remove(id)
	if !ok {
		return backendError("destroy texture", gpu.ErrInvalidHandle)
	}
	_, err := invoke("destroy texture", tex, "destroy")
	return err
}

func (b *Backend) CreateTextureView(textureID gpu.TextureID, desc *gpu.TextureViewDescriptor) (gpu.TextureViewID, error) {
	tex, err := b.textures.Lookup(textureID)
	if err != nil {
		return 0, backendError("create texture view", err)
	}
	var args []any
	if o := viewDescriptor(desc); o != nil {
		args = append(args, js.ValueOf(o))
	}
	view, err := invoke("create texture view", tex, "createView", args...)
	if err != nil {
		return 0, err
	}
	return b.views.Insert(view), nil
}

func (b *Backend) TextureViewDestroy(id gpu.TextureViewID) error {
	if _, ok := b.views.Remove(id); !ok {
		return backendError("destroy texture view", gpu.ErrInvalidHandle)
	}
	return nil
}

func (b *Backend) CreateSampler(deviceID gpu.DeviceID, desc *gpu.SamplerDescriptor) (gpu.SamplerID, error) {
	s, err := b.create(deviceID, "create sampler", "createSampler", samplerDescriptor(desc))
	if err != nil {
		return 0, err
	}
	return b.samplers.Insert(s), nil
}

func (b *Backend) CreateShaderModule(deviceID gpu.DeviceID, desc *gpu.ShaderModuleDescriptor) (gpu.ShaderModuleID, error) {
	m, err := b.create(deviceID, "create shader module", "createShaderModule", shaderModuleDescriptor(desc))
	if err != nil {
		return 0, err
	}
	return b.shaders.Insert(m), nil
}

func (b *Backend) CreateBindGroupLayout(deviceID gpu.DeviceID, desc *gpu.BindGroupLayoutDescriptor) (gpu.BindGroupLayoutID, error) {
	l, err := b.create(deviceID, "create bind group layout", "createBindGroupLayout", bindGroupLayoutDescriptor(desc))
	if err != nil {
		return 0, err
	}
	return b.bindGroupLayouts.Insert(l), nil
}

func (b *Backend) CreateBindGroup(deviceID gpu.DeviceID, desc *gpu.BindGroupDescriptor) (gpu.BindGroupID, error) {
	o, err := bindGroupDescriptor(b, desc)
	if err != nil {
		return 0, backendError("create bind group", err)
	}
	g, err := b.create(deviceID, "create bind group", "createBindGroup", o)
	if err != nil {
		return 0, err
	}
	return b.bindGroups.Insert(g), nil
}

func (b *Backend) CreatePipelineLayout(deviceID gpu.DeviceID, desc *gpu.PipelineLayoutDescriptor) (gpu.PipelineLayoutID, error) {
	o, err := pipelineLayoutDescriptor(b, desc)
	if err != nil {
		return 0, backendError("create pipeline layout", err)
	}
	l, err := b.create(deviceID, "create pipeline layout", "createPipelineLayout", o)
	if err != nil {
		return 0, err
	}
	return b.pipelineLayouts.Insert(l), nil
}

func (b *Backend) CreateRenderPipeline(deviceID gpu.DeviceID, desc *gpu.RenderPipelineDescriptor) (gpu.RenderPipelineID, error) {
	o, err := renderPipelineDescriptor(b, desc)
	if err != nil {
		return 0, backendError("create render pipeline", err)
	}
	p, err := b.create(deviceID, "create render pipeline", "createRenderPipeline", o)
	if err != nil {
		return 0, err
	}
	return b.renderPipelines.Insert(p), nil
}

func (b *Backend) CreateComputePipeline(deviceID gpu.DeviceID, desc *gpu.ComputePipelineDescriptor) (gpu.ComputePipelineID, error) {
	o, err := computePipelineDescriptor(b, desc)
	if err != nil {
		return 0, backendError("create compute pipeline", err)
	}
	p, err := b.create(deviceID, "create compute pipeline", "createComputePipeline", o)
	if err != nil {
		return 0, err
	}
	return b.computePipelines.Insert(p), nil
}

func (b *Backend) CreateCommandEncoder(deviceID gpu.DeviceID, desc *gpu.CommandEncoderDescriptor) (gpu.CommandEncoderID, error) {
	enc, err := b.create(deviceID, "create command encoder", "createCommandEncoder", labelled(desc.Label))
	if err != nil {
		return 0, err
	}
	return b.encoders.Insert(enc), nil
}

func (b *Backend) encoder(id gpu.CommandEncoderID, op string) (js.Value, error) {
	enc, err := b.encoders.Lookup(id)
	if err != nil {
		return js.Undefined(), backendError(op, err)
	}
	return enc, nil
}

func (b *Backend) CommandEncoderBeginRenderPass(encoderID gpu.CommandEncoderID, desc *gpu.RenderPassDescriptor) (gpu.RenderPassID, error) {
	enc, err := b.encoder(encoderID, "begin render pass")
	if err != nil {
		return 0, err
	}
	o, err := renderPassDescriptor(b, desc)
	if err != nil {
		return 0, backendError("begin render pass", err)
	}
	pass, err := invoke("begin render pass", enc, "beginRenderPass", js.ValueOf(o))
	if err != nil {
		return 0, err
	}
	return b.renderPasses.Insert(pass), nil
}

func (b *Backend) CommandEncoderBeginComputePass(encoderID gpu.CommandEncoderID, desc *gpu.ComputePassDescriptor) (gpu.ComputePassID, error) {
	enc, err := b.encoder(encoderID, "begin compute pass")
	if err != nil {
		return 0, err
	}
	o := object{}
	if desc != nil {
		o = labelled(desc.Label)
	}
	pass, err := invoke("begin compute pass", enc, "beginComputePass", js.ValueOf(o))
	if err != nil {
		return 0, err
	}
	return b.computePasses.Insert(pass), nil
}

func (b *Backend) CommandEncoderCopyBufferToBuffer(encoderID gpu.CommandEncoderID, src gpu.BufferID, srcOffset uint64, dst gpu.BufferID, dstOffset uint64, size uint64) error {
	enc, err := b.encoder(encoderID, "copy buffer to buffer")
	if err != nil {
		return err
	}
	s, err := b.buffers.Lookup(src)
	if err != nil {
		return backendError("copy buffer to buffer", err)
	}
	d, err := b.buffers.Lookup(dst)
	if err != nil {
		return backendError("copy buffer to buffer", err)
	}
	_, err = invoke("copy buffer to buffer", enc, "copyBufferToBuffer", s, srcOffset, d, dstOffset, size)
	return err
}

func (b *Backend) CommandEncoderCopyBufferToTexture(encoderID gpu.CommandEncoderID, src *gpu.ImageCopyBuffer, dst *gpu.ImageCopyTexture, size gpu.Extent3D) error {
	enc, err := b.encoder(encoderID, "copy buffer to texture")
	if err != nil {
		return err
	}
	s, err := imageCopyBuffer(b, src)
	if err != nil {
		return backendError("copy buffer to texture", err)
	}
	d, err := imageCopyTexture(b, dst)
	if err != nil {
		return backendError("copy buffer to texture", err)
	}
	_, err = invoke("copy buffer to texture", enc, "copyBufferToTexture", js.ValueOf(s), js.ValueOf(d), js.ValueOf(extent(size)))
	return err
}

func (b *Backend) CommandEncoderCopyTextureToBuffer(encoderID gpu.CommandEncoderID, src *gpu.ImageCopyTexture, dst *gpu.ImageCopyBuffer, size gpu.Extent3D) error {
	enc, err := b.encoder(encoderID, "copy texture to buffer")
	if err != nil {
		return err
	}
	s, err := imageCopyTexture(b, src)
	if err != nil {
		return backendError("copy texture to buffer", err)
	}
	d, err := imageCopyBuffer(b, dst)
	if err != nil {
		return backendError("copy texture to buffer", err)
	}
	_, err = invoke("copy texture to buffer", enc, "copyTextureToBuffer", js.ValueOf(s), js.ValueOf(d), js.ValueOf(extent(size)))
	return err
}

func (b *Backend) CommandEncoderClearBuffer(encoderID gpu.CommandEncoderID, bufferID gpu.BufferID, offset, size uint64) error {
	enc, err := b.encoder(encoderID, "clear buffer")
	if err != nil {
		return err
	}
	buf, err := b.buffers.Lookup(bufferID)
	if err != nil {
		return backendError("clear buffer", err)
	}
	_, err = invoke("clear buffer", enc, "clearBuffer", buf, offset, size)
	return err
}

func (b *Backend) CommandEncoderFinish(encoderID gpu.CommandEncoderID, label string) (gpu.CommandBufferID, error) {
	enc, ok := b.encoders.Remove(encoderID)
	if !ok {
		return 0, backendError("finish", gpu.ErrInvalidHandle)
	}
	cb, err := invoke("finish", enc, "finish", js.ValueOf(labelled(label)))
	if err != nil {
		return 0, err
	}
	return b.commandBuffers.Insert(cb), nil
}

// passCall runs a method on an open render or compute pass encoder.
func passCall[K ~uint64](r *gpu.Registry[K, js.Value], id K, op, method string, args ...any) error {
	pass, err := r.Lookup(id)
	if err != nil {
		return backendError(op, err)
	}
	_, err = invoke(op, pass, method, args...)
	return err
}

func offsets(dynamicOffsets []uint32) []any {
	out := make([]any, len(dynamicOffsets))
	for i, o := range dynamicOffsets {
		out[i] = o
	}
	return out
}

func (b *Backend) RenderPassSetPipeline(pass gpu.RenderPassID, pipeline gpu.RenderPipelineID) error {
	p, err := b.renderPipelines.Lookup(pipeline)
	if err != nil {
		return backendError("set pipeline", err)
	}
	return passCall(b.renderPasses, pass, "set pipeline", "setPipeline", p)
}

func (b *Backend) RenderPassSetBindGroup(pass gpu.RenderPassID, index uint32, group gpu.BindGroupID, dynamicOffsets []uint32) error {
	g, err := b.bindGroups.Lookup(group)
	if err != nil {
		return backendError("set bind group", err)
	}
	return passCall(b.renderPasses, pass, "set bind group", "setBindGroup", index, g, js.ValueOf(offsets(dynamicOffsets)))
}

func (b *Backend) RenderPassSetVertexBuffer(pass gpu.RenderPassID, slot uint32, buffer gpu.BufferID, offset, size uint64) error {
	buf, err := b.buffers.Lookup(buffer)
	if err != nil {
		return backendError("set vertex buffer", err)
	}
	return passCall(b.renderPasses, pass, "set vertex buffer", "setVertexBuffer", slot, buf, offset, size)
}

func (b *Backend) RenderPassSetIndexBuffer(pass gpu.RenderPassID, buffer gpu.BufferID, format gpu.IndexFormat, offset, size uint64) error {
	buf, err := b.buffers.Lookup(buffer)
	if err != nil {
		return backendError("set index buffer", err)
	}
	return passCall(b.renderPasses, pass, "set index buffer", "setIndexBuffer", buf, format.String(), offset, size)
}

func (b *Backend) RenderPassSetViewport(pass gpu.RenderPassID, x, y, width, height, minDepth, maxDepth float32) error {
	return passCall(b.renderPasses, pass, "set viewport", "setViewport", x, y, width, height, minDepth, maxDepth)
}

func (b *Backend) RenderPassSetScissorRect(pass gpu.RenderPassID, x, y, width, height uint32) error {
	return passCall(b.renderPasses, pass, "set scissor rect", "setScissorRect", x, y, width, height)
}

func (b *Backend) RenderPassDraw(pass gpu.RenderPassID, vertexCount, instanceCount, firstVertex, firstInstance uint32) error {
	return passCall(b.renderPasses, pass, "draw", "draw", vertexCount, instanceCount, firstVertex, firstInstance)
}

func (b *Backend) RenderPassDrawIndexed(pass gpu.RenderPassID, indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) error {
	return passCall(b.renderPasses, pass, "draw indexed", "drawIndexed", indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
}

func (b *Backend) RenderPassEnd(pass gpu.RenderPassID) error {
	p, ok := b.renderPasses.Remove(pass)
	if !ok {
		return backendError("end render pass", gpu.ErrInvalidHandle)
	}
	_, err := invoke("end render pass", p, "end")
	return err
}

func (b *Backend) ComputePassSetPipeline(pass gpu.ComputePassID, pipeline gpu.ComputePipelineID) error {
	p, err := b.computePipelines.Lookup(pipeline)
	if err != nil {
		return backendError("set pipeline", err)
	}
	return passCall(b.computePasses, pass, "set pipeline", "setPipeline", p)
}

func (b *Backend) ComputePassSetBindGroup(pass gpu.ComputePassID, index uint32, group gpu.BindGroupID, dynamicOffsets []uint32) error {
	g, err := b.bindGroups.Lookup(group)
	if err != nil {
		return backendError("set bind group", err)
	}
	return passCall(b.computePasses, pass, "set bind group", "setBindGroup", index, g, js.ValueOf(offsets(dynamicOffsets)))
}

func (b *Backend) ComputePassDispatchWorkgroups(pass gpu.ComputePassID, x, y, z uint32) error {
	return passCall(b.computePasses, pass, "dispatch workgroups", "dispatchWorkgroups", x, y, z)
}

func (b *Backend) ComputePassEnd(pass gpu.ComputePassID) error {
	p, ok := b.computePasses.Remove(pass)
	if !ok {
		return backendError("end compute pass", gpu.ErrInvalidHandle)
	}
	_, err := invoke("end compute pass", p, "end")
	return err
}

func (b *Backend) QueueSubmit(queueID gpu.QueueID, buffers []gpu.CommandBufferID) error {
	q, err := b.queues.Lookup(queueID)
	if err != nil {
		return backendError("submit", err)
	}
	taken, err := b.commandBuffers.RemoveAll(buffers)
	if err != nil {
		return backendError("submit", err)
	}
	cbs := make([]any, len(taken))
	for i, cb := range taken {
		cbs[i] = cb
	}
	_, err = invoke("submit", q, "submit", js.ValueOf(cbs))
	return err
}

func (b *Backend) QueueWriteBuffer(queueID gpu.QueueID, buffer gpu.BufferID, offset uint64, data []byte) error {
	q, err := b.queues.Lookup(queueID)
	if err != nil {
		return backendError("write buffer", err)
	}
	buf, err := b.buffers.Lookup(buffer)
	if err != nil {
		return backendError("write buffer", err)
	}
	array := js.Global().Get("Uint8Array").New(len(data))
	js.CopyBytesToJS(array, data)
	_, err = invoke("write buffer", q, "writeBuffer", buf, offset, array)
	return err
}

// CreateSwapChain configures the canvas's webgpu context. The surface handle must be the
// canvas element. An undefined format selects navigator.gpu.getPreferredCanvasFormat().
func (b *Backend) CreateSwapChain(deviceID gpu.DeviceID, surface gpu.Surface, desc *gpu.SwapChainDescriptor, size common.Size) (gpu.SwapChainID, error) {
	d, err := b.device(deviceID, "create swap chain")
	if err != nil {
		return 0, err
	}
	canvas, ok := surface.Surface().(js.Value)
	if !ok || !canvas.Truthy() {
		return 0, backendError("create swap chain", fmt.Errorf("surface %T is not a canvas: %w", surface.Surface(), gpu.ErrInvalidDescriptor))
	}
	ctx, err := invoke("create swap chain", canvas, "getContext", "webgpu")
	if err != nil {
		return 0, err
	}
	if desc.Format == gpu.TextureFormatUndefined {
		name := b.gpu.Call("getPreferredCanvasFormat").String()
		f, ok := gpu.ParseTextureFormat(name)
		if !ok {
			return 0, backendError("create swap chain", fmt.Errorf("canvas format %q: %w", name, gpu.ErrUnsupported))
		}
		desc.Format = f
	}

	canvas.Set("width", size.Width)
	canvas.Set("height", size.Height)
	if _, err := invoke("create swap chain", ctx, "configure", js.ValueOf(canvasConfiguration(d, desc))); err != nil {
		return 0, err
	}
	return b.swapChains.Insert(&swapChain{context: ctx}), nil
}

func (b *Backend) SwapChainCurrentTextureView(id gpu.SwapChainID) (gpu.TextureViewID, error) {
	sc, err := b.swapChains.Lookup(id)
	if err != nil {
		return 0, backendError("current texture view", err)
	}
	if !sc.view.IsNil() {
		return sc.view, nil
	}
	tex, err := invoke("current texture view", sc.context, "getCurrentTexture")
	if err != nil {
		return 0, err
	}
	view, err := invoke("current texture view", tex, "createView")
	if err != nil {
		return 0, err
	}
	sc.view = b.views.Insert(view)
	return sc.view, nil
}

// SwapChainPresent retires the frame view. The browser composites the canvas itself once the
// current task yields.
func (b *Backend) SwapChainPresent(id gpu.SwapChainID) error {
	sc, err := b.swapChains.Lookup(id)
	if err != nil {
		return backendError("present", err)
	}
	if sc.view.IsNil() {
		return backendError("present", gpu.ErrInvalidState)
	}
	b.views.Remove(sc.view)
	sc.view = 0
	return nil
}

func (b *Backend) SwapChainRelease(id gpu.SwapChainID) error {
	sc, ok := b.swapChains.Remove(id)
	if !ok {
		return backendError("release swap chain", gpu.ErrInvalidHandle)
	}
	b.views.Remove(sc.view)
	_, err := invoke("release swap chain", sc.context, "unconfigure")
	return err
}
