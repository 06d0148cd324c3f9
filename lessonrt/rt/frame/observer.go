package frame

import (
	"sync"

	"github.com/gekko3d/fundamentals/lessonrt/rt/core"
	"github.com/gekko3d/fundamentals/lessonrt/rt/permute"
)

// SizeObserver keeps the most recent surface size reported by the window system.
// Observe may be called from any goroutine; the driver reads it once per frame.
type SizeObserver struct {
	mu     sync.Mutex
	width  int
	height int
}

func (o *SizeObserver) Observe(width, height int) {
	o.mu.Lock()
	o.width, o.height = width, height
	o.mu.Unlock()
}

func (o *SizeObserver) Latest() (width, height int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.width, o.height
}

// Settings are the user choices applied to one frame.
type Settings struct {
	// Permutation selects the scene's permutation bind group. Nil means all zeros.
	Permutation permute.Combination
}

func SamplerSettings(s core.SamplerSettings) Settings {
	return Settings{Permutation: s.Combination()}
}

// SettingsObserver is SizeObserver for Settings.
type SettingsObserver struct {
	mu       sync.Mutex
	settings Settings
}

func (o *SettingsObserver) Observe(s Settings) {
	o.mu.Lock()
	o.settings = Settings{Permutation: append(permute.Combination(nil), s.Permutation...)}
	o.mu.Unlock()
}

func (o *SettingsObserver) Latest() Settings {
	o.mu.Lock()
	defer o.mu.Unlock()
	return Settings{Permutation: append(permute.Combination(nil), o.settings.Permutation...)}
}
