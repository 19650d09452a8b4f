package gpu

import "fmt"

type ShaderModule struct {
	device *Device
	id     ShaderModuleID
	label  string
}

func (m *ShaderModule) ID() ShaderModuleID { return m.id }
func (m *ShaderModule) Label() string      { return m.label }
func (m *ShaderModule) Device() *Device    { return m.device }
func (m *ShaderModule) String() string     { return fmt.Sprintf("ShaderModule(%d)", uint64(m.id)) }

func (m *ShaderModule) owner() *Device {
	if m == nil {
		return nil
	}
	return m.device
}

type PipelineLayout struct {
	device *Device
	id     PipelineLayoutID
	label  string
	groups int
}

func (l *PipelineLayout) ID() PipelineLayoutID { return l.id }
func (l *PipelineLayout) Label() string        { return l.label }
func (l *PipelineLayout) Device() *Device      { return l.device }

// BindGroupCount returns the number of bind group layouts in the pipeline layout.
func (l *PipelineLayout) BindGroupCount() int { return l.groups }

func (l *PipelineLayout) String() string { return fmt.Sprintf("PipelineLayout(%d)", uint64(l.id)) }

func (l *PipelineLayout) owner() *Device {
	if l == nil {
		return nil
	}
	return l.device
}

type BindGroupLayout struct {
	device  *Device
	id      BindGroupLayoutID
	label   string
	entries []BindGroupLayoutEntry
}

func (l *BindGroupLayout) ID() BindGroupLayoutID { return l.id }
func (l *BindGroupLayout) Label() string         { return l.label }
func (l *BindGroupLayout) Device() *Device       { return l.device }

// Entries returns a copy of the layout entries.
func (l *BindGroupLayout) Entries() []BindGroupLayoutEntry {
	out := make([]BindGroupLayoutEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *BindGroupLayout) String() string { return fmt.Sprintf("BindGroupLayout(%d)", uint64(l.id)) }

func (l *BindGroupLayout) owner() *Device {
	if l == nil {
		return nil
	}
	return l.device
}

type BindGroup struct {
	device *Device
	id     BindGroupID
	label  string
	layout *BindGroupLayout
}

func (g *BindGroup) ID() BindGroupID          { return g.id }
func (g *BindGroup) Label() string            { return g.label }
func (g *BindGroup) Device() *Device          { return g.device }
func (g *BindGroup) Layout() *BindGroupLayout { return g.layout }
func (g *BindGroup) String() string           { return fmt.Sprintf("BindGroup(%d)", uint64(g.id)) }

func (g *BindGroup) owner() *Device {
	if g == nil {
		return nil
	}
	return g.device
}

type RenderPipeline struct {
	device *Device
	id     RenderPipelineID
	label  string
}

func (p *RenderPipeline) ID() RenderPipelineID { return p.id }
func (p *RenderPipeline) Label() string        { return p.label }
func (p *RenderPipeline) Device() *Device      { return p.device }
func (p *RenderPipeline) String() string       { return fmt.Sprintf("RenderPipeline(%d)", uint64(p.id)) }

func (p *RenderPipeline) owner() *Device {
	if p == nil {
		return nil
	}
	return p.device
}

type ComputePipeline struct {
	device *Device
	id     ComputePipelineID
	label  string
}

func (p *ComputePipeline) ID() ComputePipelineID { return p.id }
func (p *ComputePipeline) Label() string         { return p.label }
func (p *ComputePipeline) Device() *Device       { return p.device }
func (p *ComputePipeline) String() string        { return fmt.Sprintf("ComputePipeline(%d)", uint64(p.id)) }

func (p *ComputePipeline) owner() *Device {
	if p == nil {
		return nil
	}
	return p.device
}

type Sampler struct {
	device *Device
	id     SamplerID
	label  string
}

func (s *Sampler) ID() SamplerID   { return s.id }
func (s *Sampler) Label() string   { return s.label }
func (s *Sampler) Device() *Device { return s.device }
func (s *Sampler) String() string  { return fmt.Sprintf("Sampler(%d)", uint64(s.id)) }

func (s *Sampler) owner() *Device {
	if s == nil {
		return nil
	}
	return s.device
}

func (*Sampler) bindingResource() {}
