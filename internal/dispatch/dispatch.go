// Package dispatch maps a confirmed-stable path to exactly one loader.
package dispatch

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"kiosk/internal/logging"
	"kiosk/internal/metrics"
)

// Kind orders routes so specific loaders are not shadowed by generic ones.
type Kind int

const (
	KindRecord Kind = iota
	KindText
	KindPresence
	KindSection
)

func (k Kind) String() string {
	switch k {
	case KindRecord:
		return "record"
	case KindText:
		return "text"
	case KindPresence:
		return "presence"
	case KindSection:
		return "section"
	default:
		return "unknown"
	}
}

// Matcher reports whether a route handles path.
type Matcher func(path string) bool

// Base matches the file name exactly.
func Base(name string) Matcher {
	return func(path string) bool {
		return filepath.Base(path) == name
	}
}

// Suffix matches file names ending in suffix.
func Suffix(suffix string) Matcher {
	return func(path string) bool {
		return strings.HasSuffix(filepath.Base(path), suffix)
	}
}

// Exact matches one full path.
func Exact(target string) Matcher {
	cleaned := filepath.Clean(target)
	return func(path string) bool {
		return filepath.Clean(path) == cleaned
	}
}

// Any matches when one of matchers does.
func Any(matchers ...Matcher) Matcher {
	return func(path string) bool {
		for _, matcher := range matchers {
			if matcher(path) {
				return true
			}
		}
		return false
	}
}

type Route struct {
	Name  string
	Kind  Kind
	Match Matcher
	Load  func(path string) error
}

// Router holds the route table. It keeps no state between dispatches.
type Router struct {
	mu       sync.RWMutex
	routes   []Route
	logger   *logging.Logger
	registry *metrics.Registry
}

func NewRouter(logger *logging.Logger, registry *metrics.Registry) *Router {
	if logger == nil {
		logger = logging.Discard()
	}
	if registry == nil {
		registry = metrics.Default
	}
	return &Router{
		logger:   logger.Category("dispatch"),
		registry: registry,
	}
}

// Handle adds a route. Routes are tried in kind order, then in the order
// they were added.
func (r *Router) Handle(route Route) {
	if route.Match == nil || route.Load == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, route)
	sort.SliceStable(r.routes, func(i, j int) bool {
		return r.routes[i].Kind < r.routes[j].Kind
	})
}

// Match returns the route that would handle path.
func (r *Router) Match(path string) (Route, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, route := range r.routes {
		if route.Match(path) {
			return route, true
		}
	}
	return Route{}, false
}

// Dispatch runs the matching loader. Loader errors and panics are logged and
// counted; they never reach the caller. It reports whether a route matched.
func (r *Router) Dispatch(path string) bool {
	route, ok := r.Match(path)
	if !ok {
		r.logger.Debug("no loader for path", map[string]string{"path": path})
		return false
	}

	start := time.Now()
	err := r.invoke(route, path)
	r.registry.RecordLoad(route.Name, time.Since(start), err)
	if err != nil {
		r.logger.Warn("load failed, keeping previous value", map[string]string{
			"path":  path,
			"route": route.Name,
			"kind":  route.Kind.String(),
			"error": err.Error(),
		})
		return true
	}
	r.logger.Debug("loaded", map[string]string{
		"path":  path,
		"route": route.Name,
	})
	return true
}

func (r *Router) invoke(route Route, path string) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("loader panicked: %v", recovered)
		}
	}()
	return route.Load(path)
}

// Routes lists route names in evaluation order.
func (r *Router) Routes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.routes))
	for _, route := range r.routes {
		names = append(names, route.Name)
	}
	return names
}
