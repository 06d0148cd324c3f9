package fundamentals

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/gekko3d/fundamentals/lessonrt/rt/core"
	"github.com/gekko3d/fundamentals/lessonrt/rt/frame"
)

// SettingsFile is the YAML form of the sampler settings:
//
//	address_u: repeat
//	address_v: clamp-to-edge
//	mag_filter: linear
//	min_filter: nearest
type SettingsFile struct {
	AddressU  string `yaml:"address_u"`
	AddressV  string `yaml:"address_v"`
	MagFilter string `yaml:"mag_filter"`
	MinFilter string `yaml:"min_filter"`
}

func ParseSettings(data []byte) (core.SamplerSettings, error) {
	var f SettingsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return core.SamplerSettings{}, core.Configf("settings: %v", err)
	}
	var s core.SamplerSettings
	var err error
	if s.AddressU, err = core.ParseAddressMode(f.AddressU); err != nil {
		return s, err
	}
	if s.AddressV, err = core.ParseAddressMode(f.AddressV); err != nil {
		return s, err
	}
	if s.Mag, err = core.ParseFilterMode(f.MagFilter); err != nil {
		return s, err
	}
	if s.Min, err = core.ParseFilterMode(f.MinFilter); err != nil {
		return s, err
	}
	return s, nil
}

// DefaultSamplerSettings is what a session starts with before any key or settings
// file changes it: repeat in both directions, linear filtering.
var DefaultSamplerSettings = core.SamplerSettings{
	AddressU: core.AddressModeRepeat,
	AddressV: core.AddressModeRepeat,
	Mag:      core.FilterModeLinear,
	Min:      core.FilterModeLinear,
}

type SamplerField uint8

const (
	AddressU SamplerField = iota
	AddressV
	MagFilter
	MinFilter
)

// SamplerControls holds the sampler settings the user picked and publishes every
// change to the frame settings observer.
type SamplerControls struct {
	mu       sync.Mutex
	current  core.SamplerSettings
	observer *frame.SettingsObserver
}

func NewSamplerControls(initial core.SamplerSettings) *SamplerControls {
	c := &SamplerControls{observer: &frame.SettingsObserver{}}
	c.Set(initial)
	return c
}

func (c *SamplerControls) Observer() *frame.SettingsObserver { return c.observer }

func (c *SamplerControls) Current() core.SamplerSettings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *SamplerControls) Set(s core.SamplerSettings) {
	c.mu.Lock()
	c.current = s
	c.mu.Unlock()
	c.observer.Observe(frame.SamplerSettings(s))
}

// Toggle flips one setting and returns the result.
func (c *SamplerControls) Toggle(field SamplerField) core.SamplerSettings {
	c.mu.Lock()
	s := c.current
	switch field {
	case AddressU:
		s.AddressU ^= 1
	case AddressV:
		s.AddressV ^= 1
	case MagFilter:
		s.Mag ^= 1
	case MinFilter:
		s.Min ^= 1
	}
	c.current = s
	c.mu.Unlock()
	c.observer.Observe(frame.SamplerSettings(s))
	return s
}

// SettingsWatcher reloads a settings file whenever it changes on disk.
type SettingsWatcher struct {
	path     string
	controls *SamplerControls
	log      Logger
	watcher  *fsnotify.Watcher
	done     chan struct{}
}

// WatchSettings loads path into controls if it exists and keeps it in sync. The
// directory is watched so editors that replace the file are picked up too.
func WatchSettings(path string, controls *SamplerControls, log Logger) (*SettingsWatcher, error) {
	if log == nil {
		log = NewNopLogger()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("settings path %s: %w", path, err)
	}
	w := &SettingsWatcher{path: abs, controls: controls, log: log, done: make(chan struct{})}
	if err := w.reload(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	w.watcher, err = fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("settings watcher: %w", err)
	}
	if err := w.watcher.Add(filepath.Dir(abs)); err != nil {
		w.watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	go w.loop()
	return w, nil
}

func (w *SettingsWatcher) reload() error {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return err
	}
	s, err := ParseSettings(data)
	if err != nil {
		return fmt.Errorf("%s: %w", w.path, err)
	}
	w.controls.Set(s)
	w.log.Infof("sampler settings %s", s)
	return nil
}

func (w *SettingsWatcher) loop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if err := w.reload(); err != nil {
					w.log.Warnf("reload settings: %v", err)
				}
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warnf("settings watcher: %v", err)
		}
	}
}

func (w *SettingsWatcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}
