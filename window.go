package fundamentals

import (
	"fmt"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/gekko3d/fundamentals/lessonrt/rt/frame"
)

// WindowState owns the glfw window a session presents into.
type WindowState struct {
	Window       *glfw.Window
	WindowWidth  int
	WindowHeight int
	windowTitle  string
}

// samplerKeys flip one sampler setting each.
var samplerKeys = map[glfw.Key]SamplerField{
	glfw.KeyU: AddressU,
	glfw.KeyV: AddressV,
	glfw.KeyM: MagFilter,
	glfw.KeyN: MinFilter,
}

// CreateWindow opens a resizable window without a client API. glfw must be
// initialised on the locked main thread.
func CreateWindow(cfg WindowConfig) (*WindowState, error) {
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}
	return &WindowState{
		Window:       win,
		WindowWidth:  cfg.Width,
		WindowHeight: cfg.Height,
		windowTitle:  cfg.Title,
	}, nil
}

// Bind forwards framebuffer sizes to sizes and sampler keys to controls. Escape
// closes the window.
func (ws *WindowState) Bind(sizes *frame.SizeObserver, controls *SamplerControls, log Logger) {
	w, h := ws.Window.GetFramebufferSize()
	sizes.Observe(w, h)

	ws.Window.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		ws.WindowWidth, ws.WindowHeight = width, height
		sizes.Observe(width, height)
	})
	ws.Window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		if key == glfw.KeyEscape {
			w.SetShouldClose(true)
			return
		}
		if field, ok := samplerKeys[key]; ok && controls != nil {
			s := controls.Toggle(field)
			log.Infof("sampler %s", s)
			ws.Window.SetTitle(fmt.Sprintf("%s (%s)", ws.windowTitle, s))
		}
	})
}

func (ws *WindowState) ShouldClose() bool { return ws.Window.ShouldClose() }

func (ws *WindowState) Destroy() {
	if ws.Window != nil {
		ws.Window.Destroy()
		ws.Window = nil
	}
}
