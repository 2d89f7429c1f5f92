// Package profile wires optional pprof capture around a CLI run using
// github.com/pkg/profile. An empty or unknown mode is a safe no-op, so
// callers can defer profile.Start(...).Stop() unconditionally.
package profile

import (
	"slices"

	"github.com/pkg/profile"
)

var mode = map[string]func(*profile.Profile){
	"cpu":       profile.CPUProfile,
	"mem":       profile.MemProfile,
	"allocs":    profile.MemProfileAllocs,
	"heap":      profile.MemProfileHeap,
	"block":     profile.BlockProfile,
	"mutex":     profile.MutexProfile,
	"goroutine": profile.GoroutineProfile,
	"trace":     profile.TraceProfile,
}

// Modes returns the sorted list of supported profiling modes.
func Modes() []string {
	names := make([]string, 0, len(mode))
	for name := range mode {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

type ignore struct{}

func (ignore) Stop() {}

// Start begins profiling in the named mode, writing output under path
// when path is not empty.
func Start(name, path string) interface{ Stop() } {
	fn, ok := mode[name]
	if !ok {
		return ignore{}
	}

	opts := []func(*profile.Profile){fn, profile.Quiet}
	if path != "" {
		opts = append(opts, profile.ProfilePath(path))
	}

	return profile.Start(opts...)
}
