package store

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"mcpforge/internal/api"
	"mcpforge/pkg/logging"
)

const watcherSubsystem = "SpecWatcher"

// settleDelay gives the writing process time to finish before the spec
// file is parsed. Editors and scp often produce several write events for
// a single save.
const settleDelay = 250 * time.Millisecond

// SpecWatcherConfig holds configuration for the drop-in spec watcher.
type SpecWatcherConfig struct {
	// SpecsDir is the directory watched for incoming build requests.
	SpecsDir string

	// OnSpec is called with each parsed build request. Errors returned by
	// the callback are logged; the file stays in place either way.
	OnSpec func(path string, request api.BuildSpecRequest) error
}

// SpecWatcher picks up yaml build requests dropped into a directory and
// hands them to the pipeline. Files already present when the watcher
// starts are processed once on startup.
type SpecWatcher struct {
	mu sync.Mutex

	config    SpecWatcherConfig
	fsWatcher *fsnotify.Watcher
	stopCh    chan struct{}
	running   bool

	// processed remembers files already handed to the callback so that
	// duplicate fsnotify events do not resubmit the same spec.
	processed map[string]time.Time
}

// NewSpecWatcher creates a watcher for the given config.
func NewSpecWatcher(config SpecWatcherConfig) *SpecWatcher {
	return &SpecWatcher{
		config:    config,
		processed: make(map[string]time.Time),
	}
}

// Start creates the specs directory if needed, processes any files
// already present and begins watching for new ones.
func (w *SpecWatcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	if err := os.MkdirAll(w.config.SpecsDir, 0755); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(w.config.SpecsDir); err != nil {
		watcher.Close()
		return err
	}

	w.fsWatcher = watcher
	w.stopCh = make(chan struct{})
	w.running = true

	// Capture channels before releasing the lock to avoid racing Stop().
	eventsCh := w.fsWatcher.Events
	errorsCh := w.fsWatcher.Errors

	go w.processExisting()
	go w.processEvents(eventsCh, errorsCh)

	logging.Info(watcherSubsystem, "Watching %s for build requests", w.config.SpecsDir)
	return nil
}

// Stop gracefully stops the watcher.
func (w *SpecWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}
	w.running = false
	close(w.stopCh)

	if w.fsWatcher != nil {
		if err := w.fsWatcher.Close(); err != nil {
			logging.Warn(watcherSubsystem, "Error closing fsnotify watcher: %v", err)
		}
		w.fsWatcher = nil
	}

	logging.Info(watcherSubsystem, "Stopped spec watcher")
	return nil
}

// IsRunning returns whether the watcher is currently active.
func (w *SpecWatcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// processExisting handles spec files that were dropped before startup.
func (w *SpecWatcher) processExisting() {
	entries, err := os.ReadDir(w.config.SpecsDir)
	if err != nil {
		logging.Warn(watcherSubsystem, "Failed to scan %s: %v", w.config.SpecsDir, err)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !isSpecFile(entry.Name()) {
			continue
		}
		w.handleSpecFile(filepath.Join(w.config.SpecsDir, entry.Name()))
	}
}

func (w *SpecWatcher) processEvents(eventsCh <-chan fsnotify.Event, errorsCh <-chan error) {
	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-eventsCh:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !isSpecFile(event.Name) {
				continue
			}
			time.Sleep(settleDelay)
			w.handleSpecFile(event.Name)

		case err, ok := <-errorsCh:
			if !ok {
				return
			}
			logging.Error(watcherSubsystem, err, "fsnotify error")
		}
	}
}

// handleSpecFile parses one dropped spec file and hands it to the
// callback, at most once per file.
func (w *SpecWatcher) handleSpecFile(path string) {
	w.mu.Lock()
	if _, seen := w.processed[path]; seen {
		w.mu.Unlock()
		return
	}
	w.processed[path] = time.Now()
	callback := w.config.OnSpec
	w.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		logging.Warn(watcherSubsystem, "Failed to read spec file %s: %v", path, err)
		return
	}

	var request api.BuildSpecRequest
	if err := yaml.Unmarshal(data, &request); err != nil {
		logging.Warn(watcherSubsystem, "Failed to parse spec file %s: %v", path, err)
		return
	}

	logging.Debug(watcherSubsystem, "Picked up build request %s from %s", request.ServerName, path)

	if callback != nil {
		if err := callback(path, request); err != nil {
			logging.Warn(watcherSubsystem, "Build request from %s rejected: %v", path, err)
		}
	}
}

func isSpecFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
