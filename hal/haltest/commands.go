package haltest

import (
	"fmt"

	"github.com/gekko3d/halmark/hal"
)

type CommandKind int

const (
	CmdTransitionBuffers CommandKind = iota
	CmdTransitionTextures
	CmdCopyBufferToTexture
	CmdBeginRenderPass
	CmdEndRenderPass
	CmdSetPipeline
	CmdSetBindGroup
	CmdDraw
)

func (k CommandKind) String() string {
	switch k {
	case CmdTransitionBuffers:
		return "transition_buffers"
	case CmdTransitionTextures:
		return "transition_textures"
	case CmdCopyBufferToTexture:
		return "copy_buffer_to_texture"
	case CmdBeginRenderPass:
		return "begin_render_pass"
	case CmdEndRenderPass:
		return "end_render_pass"
	case CmdSetPipeline:
		return "set_pipeline"
	case CmdSetBindGroup:
		return "set_bind_group"
	case CmdDraw:
		return "draw"
	}
	return "unknown"
}

// Command is one recorded command with the fields its kind uses.
type Command struct {
	Kind CommandKind

	BufferBarriers  []hal.BufferBarrier
	TextureBarriers []hal.TextureBarrier

	CopySrc     *Buffer
	CopyDst     *Texture
	CopyRegions []hal.BufferTextureCopy

	Pass     hal.RenderPassDescriptor
	Pipeline *RenderPipeline

	Slot           uint32
	Group          *BindGroup
	DynamicOffsets []uint32

	VertexCount   uint32
	InstanceCount uint32
	FirstVertex   uint32
	FirstInstance uint32
}

// DrawRead is the sub-range of a dynamically-offset uniform binding that a
// recorded draw would read, captured at submission time.
type DrawRead struct {
	Slot   uint32
	Offset uint32
	Data   []byte
}

// CommandBuffer records commands; Queue.Submit replays them against the
// device's host-memory resources, validating state transitions.
type CommandBuffer struct {
	Label    string
	Commands []Command
	Finished bool

	// DrawReads is populated during submission, one entry per draw per
	// dynamic buffer binding bound at that draw.
	DrawReads []DrawRead

	dev *Device
}

func (cb *CommandBuffer) record(c Command) {
	if cb.Finished {
		panic("haltest: recording into a finished command buffer")
	}
	cb.Commands = append(cb.Commands, c)
}

func (cb *CommandBuffer) TransitionBuffers(barriers ...hal.BufferBarrier) {
	cb.record(Command{Kind: CmdTransitionBuffers, BufferBarriers: barriers})
}

func (cb *CommandBuffer) TransitionTextures(barriers ...hal.TextureBarrier) {
	cb.record(Command{Kind: CmdTransitionTextures, TextureBarriers: barriers})
}

func (cb *CommandBuffer) CopyBufferToTexture(src hal.Buffer, dst hal.Texture, regions ...hal.BufferTextureCopy) {
	cb.record(Command{
		Kind:        CmdCopyBufferToTexture,
		CopySrc:     src.(*Buffer),
		CopyDst:     dst.(*Texture),
		CopyRegions: regions,
	})
}

func (cb *CommandBuffer) BeginRenderPass(desc *hal.RenderPassDescriptor) {
	cb.record(Command{Kind: CmdBeginRenderPass, Pass: *desc})
}

func (cb *CommandBuffer) EndRenderPass() {
	cb.record(Command{Kind: CmdEndRenderPass})
}

func (cb *CommandBuffer) SetPipeline(p hal.RenderPipeline) {
	cb.record(Command{Kind: CmdSetPipeline, Pipeline: p.(*RenderPipeline)})
}

func (cb *CommandBuffer) SetBindGroup(slot uint32, group hal.BindGroup, dynamicOffsets []uint32) {
	offsets := append([]uint32(nil), dynamicOffsets...)
	cb.record(Command{Kind: CmdSetBindGroup, Slot: slot, Group: group.(*BindGroup), DynamicOffsets: offsets})
}

func (cb *CommandBuffer) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	cb.record(Command{
		Kind:          CmdDraw,
		VertexCount:   vertexCount,
		InstanceCount: instanceCount,
		FirstVertex:   firstVertex,
		FirstInstance: firstInstance,
	})
}

func (cb *CommandBuffer) Finish() error {
	if cb.Finished {
		return fmt.Errorf("haltest: command buffer %q finished twice", cb.Label)
	}
	cb.Finished = true
	return nil
}

// Queue executes submissions synchronously against host memory.
type Queue struct {
	dev       *Device
	Submitted []*CommandBuffer
	Presented int
}

func (q *Queue) Submit(hcb hal.CommandBuffer, fence hal.Fence, value uint64) error {
	cb := hcb.(*CommandBuffer)
	if !cb.Finished {
		return fmt.Errorf("haltest: submit of unfinished command buffer %q", cb.Label)
	}
	if err := q.execute(cb); err != nil {
		return fmt.Errorf("haltest: %q: %w", cb.Label, err)
	}
	q.Submitted = append(q.Submitted, cb)
	q.dev.Trace = append(q.dev.Trace, "submit:"+cb.Label)
	if fence != nil {
		fence.(*Fence).Value = value
	}
	return nil
}

// execute replays commands, enforcing the transition contract: a barrier's
// From must match the resource's current state, and copies require the
// matching copy states. Sequencing mistakes therefore fail the submit.
func (q *Queue) execute(cb *CommandBuffer) error {
	alignment := q.dev.Lim.MinUniformBufferOffsetAlignment
	inPass := false
	bound := map[uint32]Command{}

	for i, c := range cb.Commands {
		switch c.Kind {
		case CmdTransitionBuffers:
			for _, b := range c.BufferBarriers {
				buf := b.Buffer.(*Buffer)
				if buf.State != b.From {
					return fmt.Errorf("command %d: buffer %q is in state %#x, barrier expects %#x",
						i, buf.Label, buf.State, b.From)
				}
				buf.State = b.To
			}
		case CmdTransitionTextures:
			for _, b := range c.TextureBarriers {
				tex := b.Texture.(*Texture)
				if tex.State != b.From {
					return fmt.Errorf("command %d: texture %q is in state %#x, barrier expects %#x",
						i, tex.Label, tex.State, b.From)
				}
				tex.State = b.To
			}
		case CmdCopyBufferToTexture:
			if c.CopySrc.State&hal.BufferUsageCopySrc == 0 {
				return fmt.Errorf("command %d: copy source %q not in CopySrc state", i, c.CopySrc.Label)
			}
			if c.CopyDst.State&hal.TextureUsageCopyDst == 0 {
				return fmt.Errorf("command %d: copy destination %q not in CopyDst state", i, c.CopyDst.Label)
			}
			for _, r := range c.CopyRegions {
				if err := copyRegion(c.CopySrc, c.CopyDst, r); err != nil {
					return fmt.Errorf("command %d: %w", i, err)
				}
			}
		case CmdBeginRenderPass:
			if inPass {
				return fmt.Errorf("command %d: nested render pass", i)
			}
			inPass = true
			bound = map[uint32]Command{}
		case CmdEndRenderPass:
			if !inPass {
				return fmt.Errorf("command %d: end outside render pass", i)
			}
			inPass = false
		case CmdSetPipeline:
			if !inPass {
				return fmt.Errorf("command %d: pipeline bind outside render pass", i)
			}
		case CmdSetBindGroup:
			if !inPass {
				return fmt.Errorf("command %d: bind group outside render pass", i)
			}
			for _, off := range c.DynamicOffsets {
				if off%alignment != 0 {
					return fmt.Errorf("command %d: dynamic offset %d not aligned to %d", i, off, alignment)
				}
			}
			bound[c.Slot] = c
		case CmdDraw:
			if !inPass {
				return fmt.Errorf("command %d: draw outside render pass", i)
			}
			for slot, bind := range bound {
				cb.DrawReads = append(cb.DrawReads, dynamicReads(slot, bind)...)
			}
		}
	}
	if inPass {
		return fmt.Errorf("render pass left open")
	}
	return nil
}

// dynamicReads captures the bytes each dynamic buffer binding of a bound
// group would expose to the draw.
func dynamicReads(slot uint32, bind Command) []DrawRead {
	var reads []DrawRead
	dyn := 0
	for _, layoutEntry := range bind.Group.Layout.Desc.Entries {
		if layoutEntry.Buffer == nil || !layoutEntry.Buffer.HasDynamicOffset {
			continue
		}
		var entry *hal.BindGroupEntry
		for j := range bind.Group.Desc.Entries {
			if bind.Group.Desc.Entries[j].Binding == layoutEntry.Binding {
				entry = &bind.Group.Desc.Entries[j]
				break
			}
		}
		if entry == nil || dyn >= len(bind.DynamicOffsets) {
			break
		}
		buf := entry.Buffer.(*Buffer)
		base := entry.Offset + uint64(bind.DynamicOffsets[dyn])
		size := layoutEntry.Buffer.MinBindingSize
		if base+size > uint64(len(buf.Data)) {
			size = uint64(len(buf.Data)) - base
		}
		reads = append(reads, DrawRead{
			Slot:   slot,
			Offset: bind.DynamicOffsets[dyn],
			Data:   append([]byte(nil), buf.Data[base:base+size]...),
		})
		dyn++
	}
	return reads
}

func copyRegion(src *Buffer, dst *Texture, r hal.BufferTextureCopy) error {
	bpt := uint64(dst.Format.BytesPerTexel())
	for row := uint64(0); row < uint64(r.Size.Height); row++ {
		srcOff := r.BufferOffset + row*uint64(r.BytesPerRow)
		dstOff := ((uint64(r.Origin[1])+row)*uint64(dst.Size.Width) + uint64(r.Origin[0])) * bpt
		n := uint64(r.Size.Width) * bpt
		if srcOff+n > uint64(len(src.Data)) || dstOff+n > uint64(len(dst.Data)) {
			return fmt.Errorf("copy region out of bounds (src %q, dst %q)", src.Label, dst.Label)
		}
		copy(dst.Data[dstOff:dstOff+n], src.Data[srcOff:srcOff+n])
	}
	return nil
}

func (q *Queue) Present(s hal.Surface, t hal.SurfaceTexture) error {
	srf := s.(*Surface)
	if srf.PresentErr != nil {
		return srf.PresentErr
	}
	q.Presented++
	srf.Presented++
	return nil
}
