package halmark

import (
	"reflect"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// WindowState is the single shared GLFW window, available as a resource
// for the renderer and input modules.
type WindowState struct {
	windowGlfw   *glfw.Window
	WindowWidth  int
	WindowHeight int
	windowTitle  string

	// Resized holds for one frame after the framebuffer size changed.
	Resized bool
}

func (s *WindowState) Glfw() *glfw.Window { return s.windowGlfw }

type WindowModule struct {
	Width  int
	Height int
	Title  string
}

// NewWindow creates a module that provides the shared WindowState resource.
// If Width/Height are zero, sensible defaults are used.
func NewWindow(width, height int, title string) *WindowModule {
	if width <= 0 {
		width = 1280
	}
	if height <= 0 {
		height = 720
	}
	if title == "" {
		title = "halmark"
	}
	return &WindowModule{
		Width:  width,
		Height: height,
		Title:  title,
	}
}

// Install provides the WindowState resource if missing. Idempotent: if a
// WindowState resource already exists, it is reused.
func (m WindowModule) Install(app *App, cmd *Commands) {
	t := reflect.TypeOf((*WindowState)(nil)).Elem()
	if _, ok := app.resources[t]; ok {
		return
	}

	ws := createWindowState(m.Width, m.Height, m.Title)
	app.addResources(ws)

	app.UseSystem(
		System(windowSystem).
			InStage(Prelude),
	)
}

func createWindowState(windowWidth int, windowHeight int, windowTitle string) *WindowState {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		panic(err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // Important: tell GLFW we don't want OpenGL
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(windowWidth, windowHeight, windowTitle, nil, nil)
	if err != nil {
		panic(err)
	}

	return &WindowState{
		windowGlfw:   win,
		WindowWidth:  windowWidth,
		WindowHeight: windowHeight,
		windowTitle:  windowTitle,
	}
}

func windowSystem(s *WindowState, cmd *Commands) {
	glfw.PollEvents()

	if s.windowGlfw.ShouldClose() {
		cmd.Quit(nil)
		return
	}

	w, h := s.windowGlfw.GetFramebufferSize()
	s.Resized = w != s.WindowWidth || h != s.WindowHeight
	if s.Resized {
		s.WindowWidth = w
		s.WindowHeight = h
	}
}
