package watcher

import (
	"errors"
	"io/fs"
	"os"
	"sort"
)

type gateResult int

const (
	// gateStale means the fire belonged to a superseded or cancelled wait.
	gateStale gateResult = iota
	// gateSampled stored a first sample and re-armed.
	gateSampled
	// gateUnstable saw a different sample and re-armed.
	gateUnstable
	// gateStable saw two equal samples; the path is no longer pending.
	gateStable
	// gateStatFailed could not sample and re-armed.
	gateStatFailed
)

type pendingEntry struct {
	gen    uint64
	sample *Sample
	cancel func() bool
}

// stabilityGate decides when a changed path has stopped changing. It never
// starts goroutines itself: arm schedules a fire(path, gen) call and returns
// a cancel func.
type stabilityGate struct {
	mode    DebounceMode
	arm     func(path string, gen uint64) func() bool
	stat    func(path string) (Sample, error)
	pending map[string]*pendingEntry
	nextGen uint64
}

func newStabilityGate(mode DebounceMode, arm func(string, uint64) func() bool, stat func(string) (Sample, error)) *stabilityGate {
	if mode == "" {
		mode = DebounceSingle
	}
	return &stabilityGate{
		mode:    mode,
		arm:     arm,
		stat:    stat,
		pending: make(map[string]*pendingEntry),
	}
}

// observe records a raw change for path and restarts its delay. In single
// mode any other pending path is discarded and returned.
func (g *stabilityGate) observe(path string) []string {
	var superseded []string
	if g.mode == DebounceSingle {
		for other := range g.pending {
			if other == path {
				continue
			}
			g.discard(other)
			superseded = append(superseded, other)
		}
		sort.Strings(superseded)
	}

	entry, ok := g.pending[path]
	if !ok {
		entry = &pendingEntry{}
		g.pending[path] = entry
	}
	g.rearm(path, entry)
	return superseded
}

// fire handles an expired delay for path.
func (g *stabilityGate) fire(path string, gen uint64) (gateResult, error) {
	entry, ok := g.pending[path]
	if !ok || entry.gen != gen {
		return gateStale, nil
	}

	sample, err := g.stat(path)
	if err != nil {
		g.rearm(path, entry)
		return gateStatFailed, err
	}
	if entry.sample == nil {
		entry.sample = &sample
		g.rearm(path, entry)
		return gateSampled, nil
	}
	if entry.sample.Equal(sample) {
		delete(g.pending, path)
		return gateStable, nil
	}
	entry.sample = &sample
	g.rearm(path, entry)
	return gateUnstable, nil
}

// forget drops any pending wait and sample for path.
func (g *stabilityGate) forget(path string) bool {
	if _, ok := g.pending[path]; !ok {
		return false
	}
	g.discard(path)
	return true
}

func (g *stabilityGate) reset() {
	for path := range g.pending {
		g.discard(path)
	}
}

func (g *stabilityGate) isPending(path string) bool {
	_, ok := g.pending[path]
	return ok
}

func (g *stabilityGate) hasSample(path string) bool {
	entry, ok := g.pending[path]
	return ok && entry.sample != nil
}

func (g *stabilityGate) size() int {
	return len(g.pending)
}

func (g *stabilityGate) rearm(path string, entry *pendingEntry) {
	if entry.cancel != nil {
		entry.cancel()
	}
	g.nextGen++
	entry.gen = g.nextGen
	entry.cancel = g.arm(path, entry.gen)
}

func (g *stabilityGate) discard(path string) {
	entry := g.pending[path]
	if entry != nil && entry.cancel != nil {
		entry.cancel()
	}
	delete(g.pending, path)
}

// statSample samples path. A missing file is a valid sample so a removed
// file settles as absent after two samples.
func statSample(path string) (Sample, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Sample{}, nil
	}
	if err != nil {
		return Sample{}, err
	}
	return Sample{Exists: true, Size: info.Size(), ModTime: info.ModTime()}, nil
}
