package gpu

import "fmt"

// ComputePassEncoder records dispatches. It follows the same open/ended rules as
// RenderPassEncoder.
type ComputePassEncoder struct {
	encoder *CommandEncoder
	id      ComputePassID
}

func (p *ComputePassEncoder) ID() ComputePassID { return p.id }

func (p *ComputePassEncoder) State() PassState {
	if p.id.IsNil() {
		return PassStateEnded
	}
	return PassStateOpen
}

func (p *ComputePassEncoder) String() string {
	return fmt.Sprintf("ComputePassEncoder(%d)", uint64(p.id))
}

func (p *ComputePassEncoder) checkOpen(op string) error {
	if p == nil || p.id.IsNil() {
		return fmt.Errorf("%s: %w", op, ErrPassEnded)
	}
	return nil
}

func (p *ComputePassEncoder) SetPipeline(pipeline *ComputePipeline) error {
	if err := p.checkOpen("set pipeline"); err != nil {
		return err
	}
	d := p.encoder.device
	if err := d.checkOwned("pipeline", pipeline); err != nil {
		return fmt.Errorf("set pipeline: %w", err)
	}
	if err := d.backend.ComputePassSetPipeline(p.id, pipeline.id); err != nil {
		return fmt.Errorf("set pipeline: %w", err)
	}
	return nil
}

func (p *ComputePassEncoder) SetBindGroup(index uint32, group *BindGroup, dynamicOffsets []uint32) error {
	if err := p.checkOpen("set bind group"); err != nil {
		return err
	}
	d := p.encoder.device
	if index >= d.maxBindGroups {
		return fmt.Errorf("set bind group: index %d: %w", index, ErrOutOfRange)
	}
	if err := d.checkOwned("bind group", group); err != nil {
		return fmt.Errorf("set bind group: %w", err)
	}
	if err := d.backend.ComputePassSetBindGroup(p.id, index, group.id, dynamicOffsets); err != nil {
		return fmt.Errorf("set bind group: %w", err)
	}
	return nil
}

// DispatchWorkgroups runs x*y*z workgroups of the bound pipeline.
func (p *ComputePassEncoder) DispatchWorkgroups(x, y, z uint32) error {
	if err := p.checkOpen("dispatch workgroups"); err != nil {
		return err
	}
	if err := p.encoder.device.backend.ComputePassDispatchWorkgroups(p.id, x, y, z); err != nil {
		return fmt.Errorf("dispatch workgroups: %w", err)
	}
	return nil
}

func (p *ComputePassEncoder) End() error {
	if err := p.checkOpen("end pass"); err != nil {
		return err
	}
	id := p.id
	p.id = 0
	p.encoder.passEnded()

	if err := p.encoder.device.backend.ComputePassEnd(id); err != nil {
		return fmt.Errorf("end pass: %w", err)
	}
	return nil
}
