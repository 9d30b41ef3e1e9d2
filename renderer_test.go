package halmark

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/halmark/hal"
	"github.com/gekko3d/halmark/hal/haltest"
	"github.com/gekko3d/halmark/shaders"
)

func rendererFixture(t *testing.T, capacity int) (*haltest.Backend, *frameRenderer) {
	t.Helper()
	backend := haltest.New()

	surface := backend.Srf
	require.NoError(t, surface.Configure(backend.Dev, &hal.SurfaceConfig{
		Usage:       hal.TextureUsageColorTarget,
		Format:      surface.PreferredFormat(),
		Width:       800,
		Height:      600,
		PresentMode: hal.PresentModeFifo,
		ImageCount:  2,
	}))

	shader := ShaderAsset{name: "sprite", listing: shaders.SpriteWGSL}
	sprite := TextureAsset{texels: []uint8{0xFF, 0xFF, 0xFF, 0xFF}, width: 1, height: 1}

	rs, err := newResourceSet(backend.Dev, surface.PreferredFormat(), 800, 600, shader, sprite, capacity)
	require.NoError(t, err)
	require.NoError(t, uploadTexture(backend.Dev, backend.Q, rs.texture, sprite.Texels(), 1, 1))

	return backend, &frameRenderer{
		device:  backend.Dev,
		queue:   backend.Q,
		surface: surface,
		rs:      rs,
		log:     NewNopLogger(),
	}
}

func spawnedBunnies(t *testing.T, capacity, count int) *Bunnies {
	t.Helper()
	b := newBunnies(capacity)
	for b.Count() < count {
		b.SpawnBatch(time.Duration(b.Count()+1)*time.Millisecond, 600)
	}
	b.count = count
	return b
}

// Every live instance must land at its own stride-aligned offset, and
// the bytes a draw reads there must be exactly that instance's state at
// draw time.
func TestFrameRenderer_StrideRoundTrip(t *testing.T) {
	backend, r := rendererFixture(t, 256)
	bunnies := spawnedBunnies(t, 256, 5)

	require.NoError(t, r.renderFrame(bunnies, 800, 600))

	require.Len(t, backend.Q.Submitted, 2, "upload plus one frame")
	frame := backend.Q.Submitted[1]

	require.Len(t, frame.DrawReads, 5)
	for i, read := range frame.DrawReads {
		assert.Equal(t, uint32(1), read.Slot)
		assert.Equal(t, uint32(i)*r.rs.stride, read.Offset)
		assert.Equal(t, bunnies.At(i), readLocals(read.Data))
	}
}

// A population above the local buffer capacity must clamp the frame to
// the instances the buffers were sized for, never map past the buffer
// end or fail the render loop.
func TestFrameRenderer_PopulationBeyondBufferCapacity(t *testing.T) {
	backend, r := rendererFixture(t, 4)
	bunnies := spawnedBunnies(t, 16, 10)

	require.NoError(t, r.renderFrame(bunnies, 800, 600))

	require.Len(t, backend.Q.Submitted, 2, "upload plus one frame")
	frame := backend.Q.Submitted[1]

	require.Len(t, frame.DrawReads, 4)
	for i, read := range frame.DrawReads {
		assert.Equal(t, uint32(i)*r.rs.stride, read.Offset)
		assert.Equal(t, bunnies.At(i), readLocals(read.Data))
	}
	assert.Equal(t, 1, backend.Srf.Presented)
}

func TestFrameRenderer_PassShape(t *testing.T) {
	backend, r := rendererFixture(t, 256)
	bunnies := spawnedBunnies(t, 256, 3)

	require.NoError(t, r.renderFrame(bunnies, 800, 600))

	frame := backend.Q.Submitted[len(backend.Q.Submitted)-1]
	var kinds []haltest.CommandKind
	for _, c := range frame.Commands {
		kinds = append(kinds, c.Kind)
	}

	want := []haltest.CommandKind{
		haltest.CmdBeginRenderPass,
		haltest.CmdSetPipeline,
		haltest.CmdSetBindGroup, // globals at slot 0
	}
	for i := 0; i < 3; i++ {
		want = append(want, haltest.CmdSetBindGroup, haltest.CmdDraw)
	}
	want = append(want, haltest.CmdEndRenderPass)
	assert.Equal(t, want, kinds)

	begin := frame.Commands[0]
	require.Len(t, begin.Pass.ColorAttachments, 1)
	assert.Equal(t, hal.Color{R: 0.1, G: 0.2, B: 0.3, A: 1.0}, begin.Pass.ColorAttachments[0].ClearValue)
	assert.Equal(t, hal.LoadOpClear, begin.Pass.ColorAttachments[0].LoadOp)

	for _, c := range frame.Commands {
		if c.Kind == haltest.CmdDraw {
			assert.Equal(t, uint32(4), c.VertexCount)
			assert.Equal(t, uint32(1), c.InstanceCount)
		}
	}
}

func TestFrameRenderer_GenerationRing(t *testing.T) {
	_, r := rendererFixture(t, 256)
	bunnies := spawnedBunnies(t, 256, 2)

	for frame := 0; frame < 4; frame++ {
		assert.Equal(t, frame%frameGenerations, r.generation)
		require.NoError(t, r.renderFrame(bunnies, 800, 600))
	}

	// Generation 0 served frames 0 and 3, the others one frame each.
	unmaps := func(gen int) int {
		return r.rs.localBuffers[gen].(*haltest.Buffer).Unmaps
	}
	assert.Equal(t, 2, unmaps(0))
	assert.Equal(t, 1, unmaps(1))
	assert.Equal(t, 1, unmaps(2))
}

func TestFrameRenderer_EmptyPopulation(t *testing.T) {
	backend, r := rendererFixture(t, 256)
	bunnies := newBunnies(256)

	require.NoError(t, r.renderFrame(bunnies, 800, 600))

	assert.Equal(t, 1, backend.Srf.Presented)
	for gen := range r.rs.localBuffers {
		assert.Equal(t, 0, r.rs.localBuffers[gen].(*haltest.Buffer).Unmaps)
	}
}

func TestFrameRenderer_AcquireTimeoutRetriesOnce(t *testing.T) {
	backend, r := rendererFixture(t, 256)
	bunnies := spawnedBunnies(t, 256, 1)

	backend.Srf.AcquireErrs = []error{hal.ErrAcquireTimeout}
	require.NoError(t, r.renderFrame(bunnies, 800, 600))
	assert.Equal(t, 1, backend.Srf.Acquired)

	backend.Srf.AcquireErrs = []error{hal.ErrAcquireTimeout, hal.ErrAcquireTimeout}
	err := r.renderFrame(bunnies, 800, 600)
	assert.ErrorIs(t, err, hal.ErrAcquireTimeout)
}

func TestFrameRenderer_SurfaceLostIsFatal(t *testing.T) {
	backend, r := rendererFixture(t, 256)
	bunnies := spawnedBunnies(t, 256, 1)

	backend.Srf.AcquireErrs = []error{hal.ErrSurfaceLost}
	err := r.renderFrame(bunnies, 800, 600)

	assert.ErrorIs(t, err, hal.ErrSurfaceLost)
	assert.Equal(t, 0, backend.Srf.Presented)
	assert.Equal(t, phaseIdle, r.phase, "renderer must be reusable after a failed frame")
}

func TestFrameRenderer_Resize(t *testing.T) {
	backend, r := rendererFixture(t, 256)

	require.NoError(t, r.handleResize(1024, 768))

	assert.Equal(t, uint32(1024), backend.Srf.Config.Width)
	assert.Equal(t, uint32(768), backend.Srf.Config.Height)

	globals := r.rs.globalBuffer.(*haltest.Buffer)
	want := globalsBytes(Globals{
		Mvp:  projection(1024, 768),
		Size: [2]float32{BunnySize, BunnySize},
	})
	assert.Equal(t, want, globals.Data)

	bunnies := spawnedBunnies(t, 256, 1)
	require.NoError(t, r.renderFrame(bunnies, 1024, 768))
}

func TestFrameRenderer_OffsetAlignmentPrecondition(t *testing.T) {
	_, r := rendererFixture(t, 256)

	// A stride that is no multiple of the device alignment is a
	// programmer error and must trip the precondition.
	r.rs.stride = 24
	assert.Panics(t, func() {
		r.rs.offsetFor(1, 256)
	})
}
