package halmark

import (
	"fmt"
	"reflect"

	"github.com/gekko3d/halmark/hal"
	"github.com/gekko3d/halmark/shaders"
)

// RenderModule opens a hal backend against the shared window, builds the
// GPU resource set and drives the frame renderer. Requires WindowModule,
// AssetServerModule and SimulationModule to be installed first; the
// local buffers are sized for the simulation's arena so the population
// can never outgrow them.
type RenderModule struct {
	// Backend is a registered hal backend name. Empty picks the first
	// available by priority.
	Backend string

	// SpritePath is an optional PNG to draw instead of the builtin
	// white texel.
	SpritePath string
}

func (mod RenderModule) Install(app *App, cmd *Commands) {
	log := app.Logger()

	ws := mustResource[WindowState](app, "RenderModule requires WindowModule")
	assets := mustResource[AssetServer](app, "RenderModule requires AssetServerModule")
	bunnies := mustResource[Bunnies](app, "RenderModule requires SimulationModule")

	backend, err := hal.Open(mod.Backend)
	if err != nil {
		panic(fmt.Sprintf("open backend %q: %v", mod.Backend, err))
	}

	surface, err := backend.CreateSurface(ws.Glfw())
	if err != nil {
		panic(fmt.Sprintf("create surface: %v", err))
	}
	device, queue, err := backend.OpenDevice(surface)
	if err != nil {
		panic(fmt.Sprintf("open device: %v", err))
	}

	format := surface.PreferredFormat()
	width, height := uint32(ws.WindowWidth), uint32(ws.WindowHeight)
	if err := surface.Configure(device, &hal.SurfaceConfig{
		Usage:       hal.TextureUsageColorTarget,
		Format:      format,
		Width:       width,
		Height:      height,
		PresentMode: hal.PresentModeFifo,
		ImageCount:  2,
	}); err != nil {
		panic(fmt.Sprintf("configure surface: %v", err))
	}
	log.Infof("backend %s, surface %dx%d format %v", backend.Name(), width, height, format)

	shaderId := assets.LoadShader("sprite", shaders.SpriteWGSL)
	var spriteId AssetId
	if mod.SpritePath != "" {
		spriteId = assets.LoadTexture(mod.SpritePath)
	} else {
		spriteId = assets.WhiteTexture()
	}
	shader, _ := assets.Shader(shaderId)
	sprite, _ := assets.Texture(spriteId)

	rs, err := newResourceSet(device, format, width, height, shader, sprite, bunnies.Capacity())
	if err != nil {
		panic(fmt.Sprintf("build gpu resources: %v", err))
	}

	texW, texH := sprite.Size()
	if err := uploadTexture(device, queue, rs.texture, sprite.Texels(), texW, texH); err != nil {
		panic(fmt.Sprintf("upload sprite texture: %v", err))
	}

	renderer := &frameRenderer{
		device:  device,
		queue:   queue,
		surface: surface,
		rs:      rs,
		log:     log,
	}
	cmd.AddResources(renderer)

	app.UseSystem(
		System(resizeSystem).
			InStage(PreRender),
	)
	app.UseSystem(
		System(renderSystem).
			InStage(Render),
	)
}

func resizeSystem(r *frameRenderer, s *WindowState, cmd *Commands) {
	if !s.Resized {
		return
	}
	if err := r.handleResize(uint32(s.WindowWidth), uint32(s.WindowHeight)); err != nil {
		cmd.Quit(err)
	}
}

func renderSystem(r *frameRenderer, bunnies *Bunnies, s *WindowState, cmd *Commands) {
	if err := r.renderFrame(bunnies, uint32(s.WindowWidth), uint32(s.WindowHeight)); err != nil {
		cmd.Quit(err)
	}
}

func mustResource[T any](app *App, msg string) *T {
	t := reflect.TypeOf((*T)(nil)).Elem()
	res, ok := app.resources[t]
	if !ok {
		panic(msg)
	}
	return res.(*T)
}
