package display

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"kiosk/internal/dispatch"
	"kiosk/internal/fsutil"
	"kiosk/internal/logging"
	"kiosk/internal/metrics"
	"kiosk/internal/notify"
	"kiosk/internal/watcher"
)

const source = "display"

var ErrNoConfigPath = errors.New("no config path set")

type Options struct {
	Path         string
	ContentRoot  string
	Logger       *logging.Logger
	Registry     *metrics.Registry
	Notifier     *notify.Notifier
	Delay        time.Duration
	PollInterval time.Duration
	Debounce     watcher.DebounceMode
	ReadLimit    int64
	DisableWatch bool
}

// Manager keeps the current Config and reloads it when the file settles.
// Readers always see a complete Config from a single reload.
type Manager struct {
	current atomic.Pointer[Config]

	mu          sync.Mutex
	path        string
	contentRoot string

	readLimit int64
	logger    *logging.Logger
	notifier  *notify.Notifier
	router    *dispatch.Router
	watcher   *watcher.Watcher
}

// New starts from defaults and loads the file when a path is set. A missing
// file is not an error.
func New(options Options) (*Manager, error) {
	logger := options.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	manager := &Manager{
		contentRoot: options.ContentRoot,
		readLimit:   options.ReadLimit,
		logger:      logger.Category(source),
		notifier:    options.Notifier,
		router:      dispatch.NewRouter(logger, options.Registry),
	}
	if options.Path != "" {
		manager.path = filepath.Clean(options.Path)
	}
	defaults := Defaults(manager.contentRoot)
	manager.current.Store(&defaults)
	manager.router.Handle(dispatch.Route{
		Name: "config",
		Kind: dispatch.KindSection,
		Match: func(path string) bool {
			current := manager.Path()
			return current != "" && filepath.Clean(path) == current
		},
		Load: func(string) error { return manager.Reload() },
	})

	if !options.DisableWatch {
		instance, err := watcher.New(watcher.Options{
			Name:         "config",
			Logger:       logger,
			Registry:     options.Registry,
			Delay:        options.Delay,
			PollInterval: options.PollInterval,
			Debounce:     options.Debounce,
			OnStable: func(path string) {
				manager.router.Dispatch(path)
			},
		})
		if err != nil {
			return nil, err
		}
		manager.watcher = instance
		if manager.path != "" {
			if err := instance.Watch(manager.path); err != nil {
				instance.Close()
				return nil, err
			}
		}
	}

	if manager.path != "" {
		if err := manager.Reload(); err != nil {
			manager.logger.Warn("initial config load failed, using defaults", map[string]string{
				"path":  manager.path,
				"error": err.Error(),
			})
		}
	}
	return manager, nil
}

// Config returns a copy of the current configuration.
func (m *Manager) Config() Config {
	return m.current.Load().Clone()
}

func (m *Manager) Path() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.path
}

// SetPath switches to another config file and reloads from it.
func (m *Manager) SetPath(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return ErrNoConfigPath
	}
	path = filepath.Clean(path)
	m.mu.Lock()
	if path == m.path {
		m.mu.Unlock()
		return nil
	}
	m.path = path
	m.mu.Unlock()

	if m.watcher != nil {
		if err := m.watcher.ReplaceAll([]string{path}); err != nil {
			return fmt.Errorf("replace config watch: %w", err)
		}
	}
	m.logger.Info("config path changed", map[string]string{"path": path})
	return m.Reload()
}

// Reload rebuilds the configuration from the file. On any failure the
// previous configuration stays in place.
func (m *Manager) Reload() error {
	m.mu.Lock()
	path := m.path
	contentRoot := m.contentRoot
	m.mu.Unlock()
	if path == "" {
		return ErrNoConfigPath
	}

	data, err := fsutil.ReadBounded(path, m.readLimit)
	if errors.Is(err, fs.ErrNotExist) {
		m.logger.Warn("config file missing, keeping previous config", map[string]string{"path": path})
		return nil
	}
	if err != nil {
		return err
	}
	next, err := Parse(data, contentRoot)
	if err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	previous := m.current.Swap(&next)
	sections := ChangedSections(*previous, next)
	resolutionChanged := ResolutionChanged(*previous, next)
	m.logger.Info("config reloaded", map[string]string{
		"path":     path,
		"sections": strings.Join(sections, ","),
	})
	m.notifier.ConfigChanged(source, path, sections, resolutionChanged)
	return nil
}

// SetContentRoot moves the root that asset defaults resolve under.
func (m *Manager) SetContentRoot(root string) error {
	m.mu.Lock()
	if root == m.contentRoot {
		m.mu.Unlock()
		return nil
	}
	m.contentRoot = root
	path := m.path
	m.mu.Unlock()

	if path == "" {
		defaults := Defaults(root)
		m.current.Store(&defaults)
		return nil
	}
	return m.Reload()
}

// Dispatch runs the reload when path is the config file.
func (m *Manager) Dispatch(path string) bool {
	return m.router.Dispatch(path)
}

// Watcher exposes the underlying watcher; nil when watching is disabled.
func (m *Manager) Watcher() *watcher.Watcher {
	return m.watcher
}

func (m *Manager) Close() error {
	if m.watcher == nil {
		return nil
	}
	return m.watcher.Close()
}
