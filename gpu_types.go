package halmark

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Globals is the per-scene uniform block: projection plus sprite size.
// Layout matches the WGSL Globals struct, std140-padded to 80 bytes.
type Globals struct {
	Mvp  mgl32.Mat4
	Size mgl32.Vec2
}

// Locals is the per-instance uniform block: kinematic state plus tint.
// Layout matches the WGSL Locals struct, padded to 24 bytes.
type Locals struct {
	Position mgl32.Vec2
	Velocity mgl32.Vec2
	Color    uint32
}

const (
	globalsSize = 16*4 + 2*4 + 2*4
	localsSize  = 2*4 + 2*4 + 4 + 4
)

// projection maps pixel coordinates to NDC: origin bottom-left,
// x right, y up, matching the simulation's coordinate space.
func projection(width, height float32) mgl32.Mat4 {
	return mgl32.Ortho2D(0, width, 0, height)
}

func putFloat32(dst []byte, v float32) {
	binary.LittleEndian.PutUint32(dst, math.Float32bits(v))
}

func globalsBytes(g Globals) []byte {
	out := make([]byte, globalsSize)
	for i := 0; i < 16; i++ {
		putFloat32(out[i*4:], g.Mvp[i])
	}
	putFloat32(out[64:], g.Size[0])
	putFloat32(out[68:], g.Size[1])
	return out
}

// writeLocals packs one instance into dst, which must hold at least
// localsSize bytes.
func writeLocals(dst []byte, l Locals) {
	putFloat32(dst[0:], l.Position[0])
	putFloat32(dst[4:], l.Position[1])
	putFloat32(dst[8:], l.Velocity[0])
	putFloat32(dst[12:], l.Velocity[1])
	binary.LittleEndian.PutUint32(dst[16:], l.Color)
}

func readLocals(src []byte) Locals {
	getFloat32 := func(b []byte) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(b))
	}
	return Locals{
		Position: mgl32.Vec2{getFloat32(src[0:]), getFloat32(src[4:])},
		Velocity: mgl32.Vec2{getFloat32(src[8:]), getFloat32(src[12:])},
		Color:    binary.LittleEndian.Uint32(src[16:]),
	}
}

// localsStride is the spacing between consecutive instances in the
// shared uniform buffer. Dynamic offsets must be multiples of the
// device alignment, so the stride absorbs it.
func localsStride(alignment uint32) uint32 {
	if alignment > localsSize {
		return alignment
	}
	return localsSize
}
