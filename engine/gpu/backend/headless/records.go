package headless

import (
	"github.com/Carmen-Shannon/oxy-gpu/engine/gpu"
)

// The record types below are the headless equivalent of a native ABI: descriptors are
// flattened into handle-only structures, every array travels with an explicit count, and
// absent optional state stays nil.

type ShaderModuleRecord struct {
	Label string
	WGSL  string
	SPIRV []uint32
}

type BindGroupLayoutRecord struct {
	Label      string
	EntryCount int
	Entries    []gpu.BindGroupLayoutEntry
}

type BindGroupEntryRecord struct {
	Binding     uint32
	Buffer      gpu.BufferID
	Offset      uint64
	Size        uint64
	Sampler     gpu.SamplerID
	TextureView gpu.TextureViewID
}

type BindGroupRecord struct {
	Label      string
	Layout     gpu.BindGroupLayoutID
	EntryCount int
	Entries    []BindGroupEntryRecord
}

type PipelineLayoutRecord struct {
	Label                string
	BindGroupLayoutCount int
	BindGroupLayouts     []gpu.BindGroupLayoutID
}

type VertexBufferLayoutRecord struct {
	ArrayStride    uint64
	StepMode       gpu.VertexStepMode
	AttributeCount int
	Attributes     []gpu.VertexAttribute
}

type ColorTargetRecord struct {
	Format    gpu.TextureFormat
	Blend     *gpu.BlendState
	WriteMask gpu.ColorWriteMask
}

type FragmentRecord struct {
	Module      gpu.ShaderModuleID
	EntryPoint  string
	TargetCount int
	Targets     []ColorTargetRecord
}

type RenderPipelineRecord struct {
	Label             string
	Layout            gpu.PipelineLayoutID
	VertexModule      gpu.ShaderModuleID
	VertexEntryPoint  string
	VertexBufferCount int
	VertexBuffers     []VertexBufferLayoutRecord
	Primitive         gpu.PrimitiveState
	SampleCount       uint32
	SampleMask        uint32
	DepthStencil      *gpu.DepthStencilState
	Fragment          *FragmentRecord
}

type ComputePipelineRecord struct {
	Label      string
	Layout     gpu.PipelineLayoutID
	Module     gpu.ShaderModuleID
	EntryPoint string
}

type ColorAttachmentRecord struct {
	View          gpu.TextureViewID
	ResolveTarget gpu.TextureViewID
	LoadOp        gpu.LoadOp
	StoreOp       gpu.StoreOp
	ClearValue    gpu.Color
}

// PassOp is one command recorded inside a pass.
type PassOp struct {
	Op   string
	Args []uint64
}

type RenderPassRecord struct {
	Label                string
	ColorAttachmentCount int
	ColorAttachments     []ColorAttachmentRecord
	DepthStencil         *gpu.RenderPassDepthStencilAttachment
	Ops                  []PassOp
}

func shaderModuleRecord(desc *gpu.ShaderModuleDescriptor) ShaderModuleRecord {
	r := ShaderModuleRecord{Label: desc.Label, WGSL: desc.WGSL}
	if len(desc.SPIRV) > 0 {
		r.SPIRV = append([]uint32(nil), desc.SPIRV...)
	}
	return r
}

func bindGroupLayoutRecord(desc *gpu.BindGroupLayoutDescriptor) BindGroupLayoutRecord {
	entries := make([]gpu.BindGroupLayoutEntry, len(desc.Entries))
	copy(entries, desc.Entries)
	return BindGroupLayoutRecord{Label: desc.Label, EntryCount: len(entries), Entries: entries}
}

func bindGroupRecord(desc *gpu.BindGroupDescriptor) BindGroupRecord {
	entries := make([]BindGroupEntryRecord, len(desc.Entries))
	for i, e := range desc.Entries {
		entries[i].Binding = e.Binding
		switch res := e.Resource.(type) {
		case gpu.BufferBinding:
			entries[i].Buffer = res.Buffer.ID()
			entries[i].Offset = res.Offset
			entries[i].Size = res.Size
			if res.Size == 0 {
				entries[i].Size = res.Buffer.Size() - res.Offset
			}
		case *gpu.Sampler:
			entries[i].Sampler = res.ID()
		case *gpu.TextureView:
			entries[i].TextureView = res.ID()
		}
	}
	return BindGroupRecord{Label: desc.Label, Layout: desc.Layout.ID(), EntryCount: len(entries), Entries: entries}
}

func pipelineLayoutRecord(desc *gpu.PipelineLayoutDescriptor) PipelineLayoutRecord {
	ids := make([]gpu.BindGroupLayoutID, len(desc.BindGroupLayouts))
	for i, l := range desc.BindGroupLayouts {
		ids[i] = l.ID()
	}
	return PipelineLayoutRecord{Label: desc.Label, BindGroupLayoutCount: len(ids), BindGroupLayouts: ids}
}

func renderPipelineRecord(desc *gpu.RenderPipelineDescriptor) RenderPipelineRecord {
	r := RenderPipelineRecord{
		Label:             desc.Label,
		VertexModule:      desc.Vertex.Module.ID(),
		VertexEntryPoint:  desc.Vertex.EntryPoint,
		VertexBufferCount: len(desc.Vertex.Buffers),
		VertexBuffers:     make([]VertexBufferLayoutRecord, len(desc.Vertex.Buffers)),
		Primitive:         desc.Primitive,
		SampleCount:       desc.Multisample.SampleCount(),
		SampleMask:        desc.Multisample.SampleMask(),
	}
	if desc.Layout != nil {
		r.Layout = desc.Layout.ID()
	}
	if r.Primitive.Topology == gpu.PrimitiveTopologyUndefined {
		r.Primitive.Topology = gpu.PrimitiveTopologyTriangleList
	}
	for i, vb := range desc.Vertex.Buffers {
		r.VertexBuffers[i] = VertexBufferLayoutRecord{
			ArrayStride:    vb.ArrayStride,
			StepMode:       vb.StepMode,
			AttributeCount: len(vb.Attributes),
			Attributes:     append([]gpu.VertexAttribute(nil), vb.Attributes...),
		}
	}
	if desc.DepthStencil != nil {
		ds := *desc.DepthStencil
		r.DepthStencil = &ds
	}
	if f := desc.Fragment; f != nil {
		fr := &FragmentRecord{
			Module:      f.Module.ID(),
			EntryPoint:  f.EntryPoint,
			TargetCount: len(f.Targets),
			Targets:     make([]ColorTargetRecord, len(f.Targets)),
		}
		for i, t := range f.Targets {
			fr.Targets[i] = ColorTargetRecord{Format: t.Format, WriteMask: t.Mask()}
			if t.Blend != nil {
				blend := *t.Blend
				fr.Targets[i].Blend = &blend
			}
		}
		r.Fragment = fr
	}
	return r
}

func computePipelineRecord(desc *gpu.ComputePipelineDescriptor) ComputePipelineRecord {
	r := ComputePipelineRecord{
		Label:      desc.Label,
		Module:     desc.Compute.Module.ID(),
		EntryPoint: desc.Compute.EntryPoint,
	}
	if desc.Layout != nil {
		r.Layout = desc.Layout.ID()
	}
	return r
}

func renderPassRecord(desc *gpu.RenderPassDescriptor) RenderPassRecord {
	r := RenderPassRecord{
		Label:                desc.Label,
		ColorAttachmentCount: len(desc.ColorAttachments),
		ColorAttachments:     make([]ColorAttachmentRecord, len(desc.ColorAttachments)),
	}
	for i, a := range desc.ColorAttachments {
		r.ColorAttachments[i] = ColorAttachmentRecord{
			View:       a.View.ID(),
			LoadOp:     a.LoadOp,
			StoreOp:    a.StoreOp,
			ClearValue: a.ClearValue(),
		}
		if a.ResolveTarget != nil {
			r.ColorAttachments[i].ResolveTarget = a.ResolveTarget.ID()
		}
	}
	if desc.DepthStencilAttachment != nil {
		ds := *desc.DepthStencilAttachment
		r.DepthStencil = &ds
	}
	return r
}
