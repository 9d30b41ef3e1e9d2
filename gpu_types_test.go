package halmark

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestProjection_PixelToNDC(t *testing.T) {
	cases := []struct {
		width, height float32
	}{
		{800, 600},
		{1024, 768},
		{1, 1},
		{1920, 1080},
	}

	for _, tc := range cases {
		mvp := projection(tc.width, tc.height)

		origin := mvp.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
		assert.InDelta(t, -1.0, origin.X(), 1e-6)
		assert.InDelta(t, -1.0, origin.Y(), 1e-6)

		corner := mvp.Mul4x1(mgl32.Vec4{tc.width, tc.height, 0, 1})
		assert.InDelta(t, 1.0, corner.X(), 1e-6)
		assert.InDelta(t, 1.0, corner.Y(), 1e-6)

		center := mvp.Mul4x1(mgl32.Vec4{tc.width / 2, tc.height / 2, 0, 1})
		assert.InDelta(t, 0.0, center.X(), 1e-6)
		assert.InDelta(t, 0.0, center.Y(), 1e-6)
	}
}

func TestLocals_PackUnpack(t *testing.T) {
	in := Locals{
		Position: mgl32.Vec2{12.5, -3.75},
		Velocity: mgl32.Vec2{-750, 0.01},
		Color:    0xDEADBEEF,
	}

	buf := make([]byte, localsSize)
	writeLocals(buf, in)
	out := readLocals(buf)

	assert.Equal(t, in, out)
}

func TestGlobalsBytes_Layout(t *testing.T) {
	g := Globals{
		Mvp:  projection(800, 600),
		Size: mgl32.Vec2{BunnySize, BunnySize},
	}

	data := globalsBytes(g)

	assert.Len(t, data, globalsSize)
	// Size lives right after the 64-byte matrix.
	sx := math.Float32frombits(binary.LittleEndian.Uint32(data[64:]))
	sy := math.Float32frombits(binary.LittleEndian.Uint32(data[68:]))
	assert.Equal(t, float32(BunnySize), sx)
	assert.Equal(t, float32(BunnySize), sy)
}

func TestLocalsStride(t *testing.T) {
	assert.Equal(t, uint32(256), localsStride(256), "alignment dominates the packed size")
	assert.Equal(t, uint32(localsSize), localsStride(16), "packed size dominates a small alignment")
	assert.Equal(t, uint32(localsSize), localsStride(0))
}

func TestLocalsStride_OffsetsDoNotOverlap(t *testing.T) {
	stride := localsStride(256)
	for i := 1; i < 8; i++ {
		prevEnd := uint32(i-1)*stride + localsSize
		assert.LessOrEqual(t, prevEnd, uint32(i)*stride)
	}
}
