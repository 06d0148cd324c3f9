package fundamentals

import (
	"fmt"
	"math/rand/v2"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/google/uuid"

	"github.com/gekko3d/fundamentals/lessonrt/rt/core"
	"github.com/gekko3d/fundamentals/lessonrt/rt/frame"
	"github.com/gekko3d/fundamentals/lessonrt/rt/gpu"
	"github.com/gekko3d/fundamentals/lessonrt/rt/lessons"
)

// profileEvery is how often, in frames, a debug session logs its profiler.
const profileEvery = 300

// Session runs one lesson on one window until the window closes or a frame fails.
type Session struct {
	ID       uuid.UUID
	Config   Config
	Log      Logger
	Window   *WindowState
	Backend  *gpu.Backend
	Driver   *frame.Driver
	Controls *SamplerControls

	watcher *SettingsWatcher
}

// NewSession builds the GPU backend, the lesson scene and its frame driver.
func NewSession(cfg Config, ws *WindowState, log *DefaultLogger) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	id := uuid.New()
	sessionLog := log.With(fmt.Sprintf("%s %s", cfg.Lesson, id.String()[:8]))
	sessionLog.SetDebug(cfg.Debug)

	s := &Session{
		ID:       id,
		Config:   cfg,
		Log:      sessionLog,
		Window:   ws,
		Controls: NewSamplerControls(DefaultSamplerSettings),
	}

	backend, err := gpu.NewBackend(ws.Window, sessionLog)
	if err != nil {
		return nil, err
	}
	s.Backend = backend

	scene, err := lessons.Build(cfg.Lesson, lessons.Env{
		Device:        backend,
		SurfaceFormat: backend.Format(),
		Config:        cfg.LessonConfig(),
		Rand:          rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
		Log:           sessionLog,
	})
	if err != nil {
		s.Release()
		return nil, err
	}

	sizes := &frame.SizeObserver{}
	s.Driver, err = frame.NewDriver(backend, backend, scene,
		frame.WithSizeObserver(sizes),
		frame.WithLogger(sessionLog),
	)
	if err != nil {
		scene.Release()
		s.Release()
		return nil, err
	}
	ws.Bind(sizes, s.Controls, sessionLog)

	if cfg.SettingsFile != "" {
		s.watcher, err = WatchSettings(cfg.SettingsFile, s.Controls, sessionLog)
		if err != nil {
			s.Release()
			return nil, err
		}
	}
	sessionLog.Infof("session started, %d resources", len(scene.Resources))
	return s, nil
}

// Frame renders one frame with the latest sampler settings.
func (s *Session) Frame() error {
	stats, err := s.Driver.RenderFrame(s.Controls.Observer().Latest())
	if err != nil {
		return err
	}
	if stats.Skipped {
		s.Log.Debugf("frame %d skipped: %s", stats.Frame, stats.Reason)
		return nil
	}
	if stats.Recreated {
		s.Log.Debugf("frame %d: surface %dx%d", stats.Frame, stats.Width, stats.Height)
	}
	if s.Log.DebugEnabled() && stats.Frame%profileEvery == 0 {
		s.Log.Debugf("frame %d: %s", stats.Frame, s.Driver.Profiler())
	}
	return nil
}

// Run polls window events and renders until the window closes. Fatal frame errors
// end the loop; anything else is logged and retried next frame.
func (s *Session) Run() error {
	for !s.Window.ShouldClose() {
		glfw.PollEvents()
		if err := s.Frame(); err != nil {
			if core.IsFatal(err) {
				return err
			}
			s.Log.Warnf("%v", err)
		}
	}
	return nil
}

// Release frees everything the session created, newest first.
func (s *Session) Release() {
	if s.watcher != nil {
		if err := s.watcher.Close(); err != nil {
			s.Log.Warnf("close settings watcher: %v", err)
		}
		s.watcher = nil
	}
	if s.Driver != nil {
		s.Driver.Release()
		s.Driver = nil
	}
	if s.Backend != nil {
		s.Backend.Release()
		s.Backend = nil
	}
}
