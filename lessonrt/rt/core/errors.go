package core

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration reports a setup mistake: bad field specs, bad mesh parameters,
	// an empty choice set. Fatal to the session that hit it.
	ErrConfiguration = errors.New("configuration error")

	// ErrRange reports an out-of-bounds record, field name or permutation key.
	// It is a programming error and is never retried.
	ErrRange = errors.New("range error")

	// ErrCapability reports a request beyond device limits. Callers clamp instead of
	// surfacing it; it exists so clamping code can say what it recovered from.
	ErrCapability = errors.New("capability error")

	// ErrSurfaceUnavailable means the surface could not hand out an image this frame.
	// The frame is skipped and retried.
	ErrSurfaceUnavailable = errors.New("surface unavailable")

	// ErrReentrant is returned when a frame is requested while one is in progress.
	ErrReentrant = errors.New("render frame is not reentrant")
)

func Configf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

func Rangef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrRange, fmt.Sprintf(format, args...))
}

// IsFatal reports whether err terminates a rendering session.
func IsFatal(err error) bool {
	return errors.Is(err, ErrConfiguration) || errors.Is(err, ErrRange) || errors.Is(err, ErrReentrant)
}

// IsTransient reports whether the frame that produced err can simply be retried.
func IsTransient(err error) bool {
	return errors.Is(err, ErrSurfaceUnavailable)
}
