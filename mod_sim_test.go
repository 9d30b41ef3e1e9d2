package halmark

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpawnBatchSize(t *testing.T) {
	assert.Equal(t, 64, spawnBatchSize(0))
	assert.Equal(t, 64, spawnBatchSize(1))
	assert.Equal(t, 114, spawnBatchSize(100))
	assert.Equal(t, 64+500, spawnBatchSize(1000))
}

func TestBunnies_SpawnBatch_Deterministic(t *testing.T) {
	elapsed := 1234567891 * time.Nanosecond

	a := newBunnies(1024)
	b := newBunnies(1024)
	a.SpawnBatch(elapsed, 600)
	b.SpawnBatch(elapsed, 600)

	require.Equal(t, a.Count(), b.Count())
	for i := 0; i < a.Count(); i++ {
		assert.Equal(t, a.At(i), b.At(i))
	}
}

func TestBunnies_SpawnBatch_InitialState(t *testing.T) {
	elapsed := 987654321 * time.Nanosecond
	b := newBunnies(1024)

	spawned := b.SpawnBatch(elapsed, 600)

	require.Equal(t, 64, spawned)
	ns := elapsed.Nanoseconds()
	wantSpeed := float32(ns&0xFF)/255.0*MaxVelocity - MaxVelocity/2
	wantColor := uint32(ns)
	for i := 0; i < b.Count(); i++ {
		bunny := b.At(i)
		assert.Equal(t, float32(0), bunny.Position[0])
		assert.Equal(t, float32(300), bunny.Position[1])
		assert.Equal(t, wantSpeed, bunny.Velocity[0])
		assert.Equal(t, float32(0), bunny.Velocity[1])
		assert.Equal(t, wantColor, bunny.Color)
	}
}

func TestBunnies_SpawnBatch_ClampsAtCapacity(t *testing.T) {
	b := newBunnies(100)

	first := b.SpawnBatch(time.Second, 600)
	second := b.SpawnBatch(2*time.Second, 600)
	third := b.SpawnBatch(3*time.Second, 600)

	assert.Equal(t, 64, first)
	assert.Equal(t, 36, second, "only the remaining room is filled")
	assert.Equal(t, 0, third, "a full arena spawns nothing")
	assert.Equal(t, 100, b.Count())
}

func TestBunnies_SpawnBatch_GrowsWithPopulation(t *testing.T) {
	b := newBunnies(100000)

	b.SpawnBatch(time.Second, 600)
	require.Equal(t, 64, b.Count())

	spawned := b.SpawnBatch(2*time.Second, 600)
	assert.Equal(t, 64+64/2, spawned)
}

func TestBunnies_Step_IntegratesAndAppliesGravity(t *testing.T) {
	b := newBunnies(16)
	b.arena[0] = Locals{
		Position: [2]float32{100, 300},
		Velocity: [2]float32{50, 20},
	}
	b.count = 1

	b.Step(simDelta, 800)

	got := b.At(0)
	assert.InDelta(t, 100+50*simDelta, got.Position[0], 1e-4)
	assert.InDelta(t, 300+20*simDelta, got.Position[1], 1e-4)
	assert.InDelta(t, 20+Gravity*simDelta, got.Velocity[1], 1e-4)
	assert.Equal(t, float32(50), got.Velocity[0])
}

func TestBunnies_Step_ReflectsAtRightEdge(t *testing.T) {
	b := newBunnies(16)
	b.arena[0] = Locals{
		Position: [2]float32{800 - BunnySize/2, 300},
		Velocity: [2]float32{500, 0},
	}
	b.count = 1

	b.Step(simDelta, 800)

	got := b.At(0)
	assert.Equal(t, float32(-500), got.Velocity[0], "sign flips, magnitude is preserved")
}

func TestBunnies_Step_ReflectsAtLeftEdge(t *testing.T) {
	b := newBunnies(16)
	b.arena[0] = Locals{
		Position: [2]float32{BunnySize / 2, 300},
		Velocity: [2]float32{-500, 0},
	}
	b.count = 1

	b.Step(simDelta, 800)

	got := b.At(0)
	assert.Equal(t, float32(500), got.Velocity[0])
}

func TestBunnies_Step_ReflectsAtFloor(t *testing.T) {
	b := newBunnies(16)
	b.arena[0] = Locals{
		Position: [2]float32{400, BunnySize/2 - 1},
		Velocity: [2]float32{0, -100},
	}
	b.count = 1

	b.Step(simDelta, 800)

	got := b.At(0)
	assert.Greater(t, got.Velocity[1], float32(0), "falling below the floor flips vertical velocity up")
}

func TestBunnies_Step_NoReflectionMovingAway(t *testing.T) {
	b := newBunnies(16)
	// Inside the right edge zone but already moving left.
	b.arena[0] = Locals{
		Position: [2]float32{800, 300},
		Velocity: [2]float32{-10, 0},
	}
	b.count = 1

	b.Step(simDelta, 800)

	assert.Equal(t, float32(-10), b.At(0).Velocity[0])
}

// A longer scenario on a 800x600 playfield: population stays inside a
// bounded overshoot of the playfield no matter how long it runs.
func TestBunnies_Scenario800x600(t *testing.T) {
	const width, height = 800, 600
	b := newBunnies(4096)

	elapsed := time.Duration(0)
	for frame := 0; frame < 600; frame++ {
		if frame%120 == 0 {
			elapsed += 16 * time.Millisecond * 120
			b.SpawnBatch(elapsed, height)
		}
		b.Step(simDelta, width)
	}

	require.Greater(t, b.Count(), 64)
	// One step of the fastest instance bounds the overshoot.
	maxOvershoot := float32(MaxVelocity*simDelta) + BunnySize/2
	for i := 0; i < b.Count(); i++ {
		pos := b.At(i).Position
		assert.GreaterOrEqual(t, pos[0], -maxOvershoot)
		assert.LessOrEqual(t, pos[0], float32(width)+maxOvershoot)
	}
}
