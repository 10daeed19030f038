package watcher

import (
	"sort"
	"time"

	"golang.org/x/time/rate"

	"kiosk/internal/metrics"
)

// Registration failures are retried every poll tick; only log them this often.
const registrationLogInterval = 30 * time.Second

// registrar is the OS watch facility. *fsnotify.Watcher satisfies it.
type registrar interface {
	Add(name string) error
	Remove(name string) error
}

type pathEntry struct {
	registered bool
}

// pathSet tracks desired paths and which of them the registrar accepted.
// It is owned by the watcher goroutine.
type pathSet struct {
	name      string
	entries   map[string]*pathEntry
	registrar registrar
	exists    func(path string) bool
	limiters  map[string]*rate.Limiter
	registry  *metrics.Registry
	logWarn   func(message string, fields map[string]string)
	logDebug  func(message string, fields map[string]string)
}

func newPathSet(name string, reg registrar, exists func(string) bool) *pathSet {
	return &pathSet{
		name:      name,
		entries:   make(map[string]*pathEntry),
		registrar: reg,
		exists:    exists,
		limiters:  make(map[string]*rate.Limiter),
		logWarn:   func(string, map[string]string) {},
		logDebug:  func(string, map[string]string) {},
	}
}

// request adds path as desired and registers it when it exists. It reports
// whether the path is registered afterwards.
func (s *pathSet) request(path string) bool {
	entry, ok := s.entries[path]
	if !ok {
		entry = &pathEntry{}
		s.entries[path] = entry
	}
	if entry.registered {
		return true
	}
	if !s.exists(path) {
		s.logDebug("waiting for file to appear", map[string]string{"path": path})
		return false
	}
	return s.register(path, entry)
}

// remove forgets path and releases its registration.
func (s *pathSet) remove(path string) bool {
	entry, ok := s.entries[path]
	if !ok {
		return false
	}
	if entry.registered && s.registrar != nil {
		_ = s.registrar.Remove(path)
	}
	delete(s.entries, path)
	delete(s.limiters, path)
	s.logDebug("stopped watching file", map[string]string{"path": path})
	return true
}

// clear releases every registration and forgets all paths.
func (s *pathSet) clear() {
	for path := range s.entries {
		s.remove(path)
	}
}

func (s *pathSet) desired(path string) bool {
	_, ok := s.entries[path]
	return ok
}

func (s *pathSet) registered(path string) bool {
	entry, ok := s.entries[path]
	return ok && entry.registered
}

// markDropped records that the OS dropped the watch for path, which happens
// after remove or replace-on-write.
func (s *pathSet) markDropped(path string) {
	entry, ok := s.entries[path]
	if !ok || !entry.registered {
		return
	}
	entry.registered = false
	if s.registrar != nil {
		_ = s.registrar.Remove(path)
	}
}

// ensureRegistered re-registers a desired path the OS silently dropped.
func (s *pathSet) ensureRegistered(path string) bool {
	entry, ok := s.entries[path]
	if !ok {
		return false
	}
	if entry.registered {
		return true
	}
	if !s.exists(path) {
		return false
	}
	return s.register(path, entry)
}

// unregistered lists desired paths without a registration, sorted.
func (s *pathSet) unregistered() []string {
	paths := make([]string, 0)
	for path, entry := range s.entries {
		if !entry.registered {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths
}

// rebind moves every registration onto a replacement registrar. Paths that
// fail to re-register are left for the poller.
func (s *pathSet) rebind(reg registrar) {
	s.registrar = reg
	for _, path := range s.sortedPaths() {
		entry := s.entries[path]
		if !entry.registered {
			continue
		}
		entry.registered = false
		s.register(path, entry)
	}
}

func (s *pathSet) snapshot(pending func(string) bool) []WatchedPath {
	paths := s.sortedPaths()
	out := make([]WatchedPath, 0, len(paths))
	for _, path := range paths {
		out = append(out, WatchedPath{
			Path:       path,
			Registered: s.entries[path].registered,
			Pending:    pending != nil && pending(path),
		})
	}
	return out
}

func (s *pathSet) counts() (desired int, registered int) {
	for _, entry := range s.entries {
		desired++
		if entry.registered {
			registered++
		}
	}
	return desired, registered
}

func (s *pathSet) sortedPaths() []string {
	paths := make([]string, 0, len(s.entries))
	for path := range s.entries {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

func (s *pathSet) register(path string, entry *pathEntry) bool {
	if s.registrar == nil {
		return false
	}
	if err := s.registrar.Add(path); err != nil {
		s.registry.IncWatcherEvent(s.name, metrics.WatcherRegistrationFailed)
		if s.limiter(path).Allow() {
			s.logWarn("watch registration failed", map[string]string{
				"path":  path,
				"error": err.Error(),
			})
		}
		return false
	}
	entry.registered = true
	s.logDebug("watching file", map[string]string{"path": path})
	return true
}

func (s *pathSet) limiter(path string) *rate.Limiter {
	limiter, ok := s.limiters[path]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(registrationLogInterval), 1)
		s.limiters[path] = limiter
	}
	return limiter
}
