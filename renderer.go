package halmark

import (
	"errors"
	"fmt"
	"time"

	"github.com/gekko3d/halmark/hal"
)

// frameGenerations is the depth of the local buffer ring. Each frame
// rewrites only its generation's buffer, so the host never touches a
// region a previous frame's draws may still be reading.
const frameGenerations = 3

const acquireTimeout = time.Second

type framePhase int

const (
	phaseIdle framePhase = iota
	phasePhysicsStep
	phaseBufferUpload
	phaseRecordPass
	phaseSubmit
	phasePresent
)

// frameRenderer drives one frame per tick through a fixed phase order,
// with a single frame in flight.
type frameRenderer struct {
	device  hal.Device
	queue   hal.Queue
	surface hal.Surface

	rs  *resourceSet
	log Logger

	phase      framePhase
	generation int
	frame      uint64
}

// renderFrame runs one full tick. Any error is fatal to the render loop
// and must stop the app.
func (r *frameRenderer) renderFrame(bunnies *Bunnies, width, height uint32) error {
	if r.phase != phaseIdle {
		panic(fmt.Sprintf("renderFrame re-entered in phase %d", r.phase))
	}

	r.phase = phasePhysicsStep
	bunnies.Step(simDelta, float32(width))

	// The local buffers were sized for rs.capacity instances. The
	// population normally shares that bound, but a larger arena must
	// never push the upload past the buffer end.
	count := bunnies.Count()
	if count > r.rs.capacity {
		count = r.rs.capacity
	}

	r.phase = phaseBufferUpload
	if err := r.uploadLocals(bunnies, count); err != nil {
		r.phase = phaseIdle
		return err
	}

	r.phase = phaseRecordPass
	surfaceTex, err := r.acquire()
	if err != nil {
		r.phase = phaseIdle
		return err
	}
	cmd, err := r.recordPass(surfaceTex, count)
	if err != nil {
		r.phase = phaseIdle
		return err
	}

	r.phase = phaseSubmit
	if err := r.queue.Submit(cmd, nil, 0); err != nil {
		r.phase = phaseIdle
		return fmt.Errorf("submit frame %d: %w", r.frame, err)
	}

	r.phase = phasePresent
	if err := r.queue.Present(r.surface, surfaceTex); err != nil {
		r.phase = phaseIdle
		return fmt.Errorf("present frame %d: %w", r.frame, err)
	}

	r.phase = phaseIdle
	r.generation = (r.generation + 1) % frameGenerations
	r.frame++
	return nil
}

// uploadLocals rewrites the drawn prefix of this generation's buffer
// before any draw of the frame is recorded.
func (r *frameRenderer) uploadLocals(bunnies *Bunnies, count int) error {
	if count == 0 {
		return nil
	}
	buf := r.rs.localBuffers[r.generation]
	size := uint64(count) * uint64(r.rs.stride)

	data, err := r.device.MapBuffer(buf, 0, size)
	if err != nil {
		return fmt.Errorf("map locals: %w", err)
	}
	for i := 0; i < count; i++ {
		writeLocals(data[uint64(i)*uint64(r.rs.stride):], bunnies.At(i))
	}
	if err := r.device.UnmapBuffer(buf); err != nil {
		return fmt.Errorf("unmap locals: %w", err)
	}
	return nil
}

// acquire blocks for the next presentable image, retrying a timeout
// once before escalating.
func (r *frameRenderer) acquire() (hal.SurfaceTexture, error) {
	tex, err := r.surface.Acquire(acquireTimeout)
	if errors.Is(err, hal.ErrAcquireTimeout) {
		r.log.Warnf("surface acquire timed out, retrying")
		tex, err = r.surface.Acquire(acquireTimeout)
	}
	if err != nil {
		return nil, fmt.Errorf("acquire frame %d: %w", r.frame, err)
	}
	return tex, nil
}

func (r *frameRenderer) recordPass(surfaceTex hal.SurfaceTexture, count int) (hal.CommandBuffer, error) {
	view, err := r.device.CreateTextureView(surfaceTex.Texture(), &hal.TextureViewDescriptor{Label: "frame"})
	if err != nil {
		return nil, fmt.Errorf("frame view: %w", err)
	}

	cmd, err := r.device.CreateCommandBuffer(&hal.CommandBufferDescriptor{Label: "frame"})
	if err != nil {
		return nil, fmt.Errorf("frame command buffer: %w", err)
	}

	cmd.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "bunnymark",
		ColorAttachments: []hal.ColorAttachment{
			{
				View:       view,
				LoadOp:     hal.LoadOpClear,
				StoreOp:    hal.StoreOpStore,
				ClearValue: hal.Color{R: 0.1, G: 0.2, B: 0.3, A: 1.0},
			},
		},
	})
	cmd.SetPipeline(r.rs.pipeline)
	cmd.SetBindGroup(0, r.rs.globalGroup, nil)

	alignment := r.device.Limits().MinUniformBufferOffsetAlignment
	local := r.rs.localGroups[r.generation]
	for i := 0; i < count; i++ {
		cmd.SetBindGroup(1, local, []uint32{r.rs.offsetFor(i, alignment)})
		cmd.Draw(4, 1, 0, 0)
	}
	cmd.EndRenderPass()

	if err := cmd.Finish(); err != nil {
		return nil, fmt.Errorf("finish frame: %w", err)
	}
	return cmd, nil
}

// handleResize reconfigures the surface for the new extent and rewrites
// the projection. The pipeline is untouched; the format does not change.
func (r *frameRenderer) handleResize(width, height uint32) error {
	err := r.surface.Configure(r.device, &hal.SurfaceConfig{
		Usage:       hal.TextureUsageColorTarget,
		Format:      r.surface.PreferredFormat(),
		Width:       width,
		Height:      height,
		PresentMode: hal.PresentModeFifo,
		ImageCount:  2,
	})
	if err != nil {
		return fmt.Errorf("reconfigure surface: %w", err)
	}
	if err := r.rs.writeGlobals(r.device, width, height); err != nil {
		return fmt.Errorf("rewrite globals: %w", err)
	}
	return nil
}
