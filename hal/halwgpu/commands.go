package halwgpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gekko3d/halmark/hal"
)

// CommandBuffer records into a wgpu encoder. Explicit transitions are
// validated against shadow state and dropped; WebGPU performs its own
// internal synchronization.
type CommandBuffer struct {
	dev     *Device
	encoder *wgpu.CommandEncoder
	label   string

	pass     *wgpu.RenderPassEncoder
	finished *wgpu.CommandBuffer

	bufferStates  map[*Buffer]hal.BufferUsage
	textureStates map[*Texture]hal.TextureUsage
	err           error
}

func (cb *CommandBuffer) TransitionBuffers(barriers ...hal.BufferBarrier) {
	if cb.bufferStates == nil {
		cb.bufferStates = map[*Buffer]hal.BufferUsage{}
	}
	for _, b := range barriers {
		buf := b.Buffer.(*Buffer)
		if state, ok := cb.bufferStates[buf]; ok && state != b.From {
			cb.fail(fmt.Errorf("buffer barrier from %#x but buffer is in %#x", b.From, state))
			return
		}
		cb.bufferStates[buf] = b.To
	}
}

func (cb *CommandBuffer) TransitionTextures(barriers ...hal.TextureBarrier) {
	if cb.textureStates == nil {
		cb.textureStates = map[*Texture]hal.TextureUsage{}
	}
	for _, b := range barriers {
		tex := b.Texture.(*Texture)
		if state, ok := cb.textureStates[tex]; ok && state != b.From {
			cb.fail(fmt.Errorf("texture barrier from %#x but texture is in %#x", b.From, state))
			return
		}
		cb.textureStates[tex] = b.To
	}
}

func (cb *CommandBuffer) fail(err error) {
	if cb.err == nil {
		cb.err = fmt.Errorf("halwgpu: %q: %w", cb.label, err)
	}
}

func (cb *CommandBuffer) CopyBufferToTexture(src hal.Buffer, dst hal.Texture, regions ...hal.BufferTextureCopy) {
	buf := src.(*Buffer)
	tex := dst.(*Texture)
	for _, r := range regions {
		cb.encoder.CopyBufferToTexture(
			&wgpu.ImageCopyBuffer{
				Buffer: buf.buf,
				Layout: wgpu.TextureDataLayout{
					Offset:       r.BufferOffset,
					BytesPerRow:  r.BytesPerRow,
					RowsPerImage: r.RowsPerImage,
				},
			},
			&wgpu.ImageCopyTexture{
				Texture:  tex.tex,
				MipLevel: r.MipLevel,
				Origin:   wgpu.Origin3D{X: r.Origin[0], Y: r.Origin[1], Z: 0},
			},
			&wgpu.Extent3D{
				Width:              r.Size.Width,
				Height:             r.Size.Height,
				DepthOrArrayLayers: 1,
			},
		)
	}
}

func (cb *CommandBuffer) BeginRenderPass(desc *hal.RenderPassDescriptor) {
	attachments := make([]wgpu.RenderPassColorAttachment, 0, len(desc.ColorAttachments))
	for _, a := range desc.ColorAttachments {
		load := wgpu.LoadOpClear
		if a.LoadOp == hal.LoadOpLoad {
			load = wgpu.LoadOpLoad
		}
		store := wgpu.StoreOpStore
		if a.StoreOp == hal.StoreOpDiscard {
			store = wgpu.StoreOpDiscard
		}
		attachments = append(attachments, wgpu.RenderPassColorAttachment{
			View:    a.View.(*TextureView).view,
			LoadOp:  load,
			StoreOp: store,
			ClearValue: wgpu.Color{
				R: a.ClearValue.R,
				G: a.ClearValue.G,
				B: a.ClearValue.B,
				A: a.ClearValue.A,
			},
		})
	}
	cb.pass = cb.encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label:            desc.Label,
		ColorAttachments: attachments,
	})
}

func (cb *CommandBuffer) EndRenderPass() {
	if cb.pass == nil {
		cb.fail(fmt.Errorf("end outside render pass"))
		return
	}
	if err := cb.pass.End(); err != nil {
		cb.fail(err)
	}
	cb.pass.Release()
	cb.pass = nil
}

func (cb *CommandBuffer) SetPipeline(p hal.RenderPipeline) {
	cb.pass.SetPipeline(p.(*RenderPipeline).pipeline)
}

func (cb *CommandBuffer) SetBindGroup(slot uint32, group hal.BindGroup, dynamicOffsets []uint32) {
	cb.pass.SetBindGroup(slot, group.(*BindGroup).group, dynamicOffsets)
}

func (cb *CommandBuffer) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	cb.pass.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
}

func (cb *CommandBuffer) Finish() error {
	if cb.err != nil {
		return cb.err
	}
	if cb.pass != nil {
		return fmt.Errorf("halwgpu: %q: finish with open render pass", cb.label)
	}
	finished, err := cb.encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("halwgpu: finish %q: %w", cb.label, err)
	}
	cb.finished = finished
	return nil
}

type Queue struct {
	dev   *Device
	queue *wgpu.Queue
}

func (q *Queue) Submit(hcb hal.CommandBuffer, fence hal.Fence, value uint64) error {
	cb := hcb.(*CommandBuffer)
	if cb.finished == nil {
		return fmt.Errorf("halwgpu: submit of unfinished command buffer %q", cb.label)
	}
	q.queue.Submit(cb.finished)
	cb.finished.Release()
	cb.encoder.Release()
	cb.finished = nil
	if fence != nil {
		// Submission order is queue order; the fence becomes waitable as
		// soon as the submission is queued. Wait drains the queue.
		fence.(*Fence).pending = value
	}
	return nil
}

func (q *Queue) Present(hs hal.Surface, t hal.SurfaceTexture) error {
	s := hs.(*Surface)
	s.surface.Present()
	if st, ok := t.(*SurfaceTexture); ok {
		st.release()
	}
	return nil
}
