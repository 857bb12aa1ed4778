package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Editors fire several fsnotify events per save; collapse them into one
// reload.
const reloadDebounce = 250 * time.Millisecond

// ConfigWatcher reloads vault profiles when a profile or template file
// changes on disk.
type ConfigWatcher struct {
	watcher      *fsnotify.Watcher
	configDir    string
	templatesDir string
	logger       *slog.Logger
	reloadChan   chan struct{}

	mu      sync.Mutex
	pending *time.Timer
}

var (
	globalWatcher *ConfigWatcher
	watcherMu     sync.Mutex
)

// StartWatcher watches the profile directory, and its templates
// subdirectory when present, for changes
func StartWatcher(configDir string, logger *slog.Logger) (*ConfigWatcher, error) {
	watcherMu.Lock()
	defer watcherMu.Unlock()

	if globalWatcher != nil {
		return globalWatcher, nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	cw := &ConfigWatcher{
		watcher:      watcher,
		configDir:    configDir,
		templatesDir: filepath.Join(configDir, "templates"),
		logger:       logger,
		reloadChan:   make(chan struct{}, 1),
	}

	if err := watcher.Add(configDir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch profile directory: %w", err)
	}

	// A template edit changes every profile merged on top of it, so the
	// templates directory is watched alongside the profiles
	if _, err := os.Stat(cw.templatesDir); err == nil {
		if err := watcher.Add(cw.templatesDir); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("failed to watch templates directory: %w", err)
		}
	}

	go cw.watch()
	globalWatcher = cw
	return cw, nil
}

// ReloadChan returns the channel signaled after each successful reload
func (cw *ConfigWatcher) ReloadChan() <-chan struct{} {
	return cw.reloadChan
}

func (cw *ConfigWatcher) watch() {
	for {
		select {
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}

			// A templates directory created after startup gets picked up here
			if event.Has(fsnotify.Create) && event.Name == cw.templatesDir {
				if err := cw.watcher.Add(cw.templatesDir); err != nil {
					cw.logger.Error("failed to watch templates directory", "error", err)
				}
				continue
			}

			if !cw.relevant(event.Name) {
				continue
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				cw.scheduleReload(event.Name)
			}

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.logger.Error("watcher error", "error", err)
		}
	}
}

// relevant reports whether a change to name can affect a loaded profile:
// profile files in the config directory, template files one level down.
// Dotfiles are editor droppings and never relevant.
func (cw *ConfigWatcher) relevant(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	if filepath.Dir(name) == cw.templatesDir {
		return filepath.Ext(base) == ".yaml"
	}
	return strings.HasSuffix(base, ".config.yaml")
}

func (cw *ConfigWatcher) scheduleReload(path string) {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	cw.logger.Info("vault profile changed on disk", "path", path)

	if cw.pending != nil {
		cw.pending.Stop()
	}
	cw.pending = time.AfterFunc(reloadDebounce, cw.reload)
}

func (cw *ConfigWatcher) reload() {
	if err := LoadConfigs(cw.configDir); err != nil {
		cw.logger.Error("failed to reload vault profiles", "error", err)
		return
	}

	cw.logger.Info("vault profiles reloaded")

	select {
	case cw.reloadChan <- struct{}{}:
	default:
		// The listener already has a pending notification
	}
}

// Stop stops the configuration watcher
func (cw *ConfigWatcher) Stop() error {
	watcherMu.Lock()
	defer watcherMu.Unlock()

	cw.mu.Lock()
	if cw.pending != nil {
		cw.pending.Stop()
		cw.pending = nil
	}
	cw.mu.Unlock()

	if cw.watcher != nil {
		if err := cw.watcher.Close(); err != nil {
			return fmt.Errorf("failed to close watcher: %w", err)
		}
		cw.watcher = nil
	}

	if globalWatcher == cw {
		globalWatcher = nil
	}

	return nil
}
