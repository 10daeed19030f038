// Package content loads the kiosk's content directory: JSON records, short
// text fields and image assets whose presence flips availability flags.
package content

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"kiosk/internal/dispatch"
	"kiosk/internal/fields"
	"kiosk/internal/fsutil"
	"kiosk/internal/logging"
	"kiosk/internal/metrics"
	"kiosk/internal/notify"
	"kiosk/internal/watcher"
)

const source = "content"

type Options struct {
	Root         string
	Logger       *logging.Logger
	Registry     *metrics.Registry
	Notifier     *notify.Notifier
	Delay        time.Duration
	PollInterval time.Duration
	Debounce     watcher.DebounceMode
	ReadLimit    int64
	// DisableWatch loads once without starting a watcher.
	DisableWatch bool
}

// Store owns the content snapshot. Loaders run on the watcher goroutine;
// getters may be called from any goroutine and return copies.
type Store struct {
	mu      sync.RWMutex
	root    string
	records map[string]map[string]any
	texts   map[string]string
	flags   map[string]bool

	readLimit int64
	logger    *logging.Logger
	notifier  *notify.Notifier
	router    *dispatch.Router
	watcher   *watcher.Watcher
}

func New(options Options) (*Store, error) {
	logger := options.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	root := options.Root
	if root == "" {
		root = DefaultRoot
	}

	store := &Store{
		root:      filepath.Clean(root),
		records:   make(map[string]map[string]any),
		texts:     make(map[string]string),
		flags:     make(map[string]bool),
		readLimit: options.ReadLimit,
		logger:    logger.Category(source),
		notifier:  options.Notifier,
		router:    dispatch.NewRouter(logger, options.Registry),
	}
	for _, text := range textFields {
		store.texts[text.field] = text.fallback
	}
	store.registerRoutes()

	if !options.DisableWatch {
		instance, err := watcher.New(watcher.Options{
			Name:         source,
			Logger:       logger,
			Registry:     options.Registry,
			Delay:        options.Delay,
			PollInterval: options.PollInterval,
			Debounce:     options.Debounce,
			OnStable: func(path string) {
				store.router.Dispatch(path)
			},
		})
		if err != nil {
			return nil, err
		}
		store.watcher = instance
		if err := instance.ReplaceAll(store.watchedPaths()); err != nil {
			instance.Close()
			return nil, err
		}
	}

	store.LoadAll()
	return store, nil
}

func (s *Store) registerRoutes() {
	for _, record := range recordFields {
		record := record
		s.router.Handle(dispatch.Route{
			Name:  record.field,
			Kind:  dispatch.KindRecord,
			Match: dispatch.Base(record.file),
			Load:  func(string) error { return s.loadRecord(record) },
		})
	}
	for _, text := range textFields {
		text := text
		s.router.Handle(dispatch.Route{
			Name:  text.field,
			Kind:  dispatch.KindText,
			Match: dispatch.Base(text.file),
			Load:  func(string) error { return s.loadText(text) },
		})
	}
	s.router.Handle(dispatch.Route{
		Name:  FieldQRCodeAvailable,
		Kind:  dispatch.KindPresence,
		Match: dispatch.Base(FileQRCode),
		Load: func(string) error {
			s.checkQRCode()
			return nil
		},
	})
	s.router.Handle(dispatch.Route{
		Name:  "facility_logo",
		Kind:  dispatch.KindPresence,
		Match: dispatch.Any(dispatch.Base(FileLogoPNG), dispatch.Base(FileLogoGIF)),
		Load: func(path string) error {
			s.checkFacilityLogo()
			s.notifier.AssetsChanged(source, path)
			return nil
		},
	})
	s.router.Handle(dispatch.Route{
		Name:  "images",
		Kind:  dispatch.KindPresence,
		Match: dispatch.Any(dispatch.Suffix("_image.jpg"), dispatch.Suffix("_image.png"), dispatch.Base(FileGameLabGIF)),
		Load: func(path string) error {
			s.notifier.AssetsChanged(source, path)
			return nil
		},
	})
}

// Dispatch runs the loader for one changed path.
func (s *Store) Dispatch(path string) bool {
	return s.router.Dispatch(path)
}

// LoadAll reloads every field from the current root.
func (s *Store) LoadAll() {
	for _, record := range recordFields {
		s.logLoadError(record.file, s.loadRecord(record))
	}
	for _, text := range textFields {
		s.logLoadError(text.file, s.loadText(text))
	}
	s.checkQRCode()
	s.checkFacilityLogo()
}

// SetRoot moves the store to a new content root: the watch set is replaced,
// everything is reloaded and data_path is announced.
func (s *Store) SetRoot(root string) error {
	root = filepath.Clean(root)
	s.mu.Lock()
	if root == s.root {
		s.mu.Unlock()
		return nil
	}
	s.root = root
	s.mu.Unlock()

	if s.watcher != nil {
		if err := s.watcher.ReplaceAll(s.watchedPaths()); err != nil {
			return fmt.Errorf("replace content watches: %w", err)
		}
	}
	s.LoadAll()
	s.logger.Info("content root changed", map[string]string{"root": root})
	s.notifier.FieldChanged(source, FieldDataPath, root)
	s.notifier.AssetsChanged(source, root)
	return nil
}

func (s *Store) Root() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root
}

// Watcher exposes the underlying watcher; nil when watching is disabled.
func (s *Store) Watcher() *watcher.Watcher {
	return s.watcher
}

func (s *Store) Close() error {
	if s.watcher == nil {
		return nil
	}
	return s.watcher.Close()
}

func (s *Store) loadRecord(record recordField) error {
	path := s.path(record.file)
	data, err := fsutil.ReadBounded(path, s.readLimit)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug("record file missing, keeping previous value", map[string]string{"path": path})
		return nil
	}
	if err != nil {
		return err
	}
	if len(data) == 0 {
		s.logger.Warn("record file empty, keeping previous value", map[string]string{"path": path})
		return nil
	}
	parsed, err := fields.ParseRecord(data)
	if err != nil {
		return fmt.Errorf("%s: %w", record.file, err)
	}

	s.mu.Lock()
	s.records[record.field] = parsed
	s.mu.Unlock()
	s.notifier.FieldChanged(source, record.field, path)
	return nil
}

func (s *Store) loadText(text textField) error {
	path := s.path(text.file)
	data, err := fsutil.ReadBounded(path, s.readLimit)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	value := fields.TrimText(string(data))
	if value == "" {
		if text.keepOnEmpty {
			return nil
		}
		value = text.fallback
	}

	s.mu.Lock()
	if s.texts[text.field] == value {
		s.mu.Unlock()
		return nil
	}
	s.texts[text.field] = value
	s.mu.Unlock()

	s.logger.Debug("text field changed", map[string]string{
		"field": text.field,
		"value": value,
	})
	s.notifier.FieldChanged(source, text.field, path)
	return nil
}

func (s *Store) checkQRCode() {
	s.setFlag(FieldQRCodeAvailable, fsutil.Exists(s.path(FileQRCode)))
}

// checkFacilityLogo flags a GIF logo only when no PNG logo shadows it.
func (s *Store) checkFacilityLogo() {
	isGIF := !fsutil.Exists(s.path(FileLogoPNG)) && fsutil.Exists(s.path(FileLogoGIF))
	s.setFlag(FieldLogoIsGIF, isGIF)
}

func (s *Store) setFlag(field string, value bool) {
	s.mu.Lock()
	if s.flags[field] == value {
		s.mu.Unlock()
		return
	}
	s.flags[field] = value
	s.mu.Unlock()
	s.notifier.FieldChanged(source, field, "")
}

func (s *Store) logLoadError(file string, err error) {
	if err == nil {
		return
	}
	s.logger.Warn("load failed, keeping previous value", map[string]string{
		"file":  file,
		"error": err.Error(),
	})
}

func (s *Store) path(file string) string {
	return filepath.Join(s.Root(), file)
}

func (s *Store) watchedPaths() []string {
	root := s.Root()
	files := WatchedFiles()
	paths := make([]string, 0, len(files))
	for _, file := range files {
		paths = append(paths, filepath.Join(root, file))
	}
	return paths
}
