package halmark

import (
	"time"
)

const (
	// MaxBunnies bounds the arena; the local uniform buffer is sized
	// for it up front, so the population can never outgrow the GPU side.
	MaxBunnies = 1 << 20

	BunnySize   = 0.15 * 256
	Gravity     = -9.8 * 100
	MaxVelocity = 750
)

// simDelta is the fixed physics step. The sim is deterministic per tick
// regardless of frame pacing.
const simDelta = 0.01

// Bunnies is a fixed-capacity arena of live instances. Storage is
// allocated once; Count is the live prefix length.
type Bunnies struct {
	arena []Locals
	count int
}

func newBunnies(capacity int) *Bunnies {
	if capacity <= 0 || capacity > MaxBunnies {
		capacity = MaxBunnies
	}
	return &Bunnies{arena: make([]Locals, capacity)}
}

func (b *Bunnies) Count() int      { return b.count }
func (b *Bunnies) Capacity() int   { return len(b.arena) }
func (b *Bunnies) At(i int) Locals { return b.arena[i] }
func (b *Bunnies) Live() []Locals  { return b.arena[:b.count] }

func spawnBatchSize(count int) int {
	return 64 + count/2
}

// SpawnBatch adds a batch of instances at the left edge, half the
// playfield up. Batch size grows with the population; the arena clamps
// silently at capacity. Velocity and color derive from the elapsed
// wall clock, so a given elapsed always produces the same batch.
func (b *Bunnies) SpawnBatch(elapsed time.Duration, height float32) int {
	want := spawnBatchSize(b.count)
	if room := len(b.arena) - b.count; want > room {
		want = room
	}

	ns := elapsed.Nanoseconds()
	speed := float32(ns&0xFF)/255.0*MaxVelocity - MaxVelocity/2
	color := uint32(ns)

	for i := 0; i < want; i++ {
		b.arena[b.count] = Locals{
			Position: [2]float32{0, height / 2},
			Velocity: [2]float32{speed, 0},
			Color:    color,
		}
		b.count++
	}
	return want
}

// Step advances every live instance by delta seconds. Velocity reflects
// at the playfield edges with a sign flip only; speed is preserved.
func (b *Bunnies) Step(delta, width float32) {
	for i := 0; i < b.count; i++ {
		bunny := &b.arena[i]
		bunny.Position[0] += bunny.Velocity[0] * delta
		bunny.Position[1] += bunny.Velocity[1] * delta
		bunny.Velocity[1] += Gravity * delta

		if (bunny.Velocity[0] > 0 && bunny.Position[0]+BunnySize/2 > width) ||
			(bunny.Velocity[0] < 0 && bunny.Position[0]-BunnySize/2 < 0) {
			bunny.Velocity[0] = -bunny.Velocity[0]
		}
		if bunny.Velocity[1] < 0 && bunny.Position[1] < BunnySize/2 {
			bunny.Velocity[1] = -bunny.Velocity[1]
		}
	}
}

type SimulationModule struct {
	// Capacity caps the population below MaxBunnies. Zero means the
	// full arena.
	Capacity int
}

func (mod SimulationModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(newBunnies(mod.Capacity))

	log := app.Logger()
	app.UseSystem(
		System(func(input *Input, t *Time, bunnies *Bunnies, s *WindowState) {
			if !input.JustPressed[KeySpace] {
				return
			}
			spawned := bunnies.SpawnBatch(t.Elapsed(), float32(s.WindowHeight))
			if spawned < spawnBatchSize(bunnies.Count()-spawned) {
				log.Debugf("spawn clamped at capacity %d", bunnies.Capacity())
			}
			log.Infof("Spawning %d bunnies, total at %d", spawned, bunnies.Count())
		}).InStage(Update),
	)
}
