package config

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher manages configuration hot reloading. Runtime-adjustable settings
// (fallback policy, log level) can be changed without a restart; subscribers
// receive the new configuration after it passes validation.
type Watcher struct {
	// Using atomic.Value for thread-safe config access
	currentConfig atomic.Value
	configPath    string
	watcher       *fsnotify.Watcher
	logger        *zap.Logger

	subMu       sync.Mutex
	subscribers []chan<- *Config
}

// NewWatcher creates a new configuration watcher for the given file.
func NewWatcher(configPath string, logger *zap.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		configPath: configPath,
		watcher:    fsWatcher,
		logger:     logger,
	}

	initial, err := LoadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("load initial config: %w", err)
	}
	w.currentConfig.Store(initial)

	if err := fsWatcher.Add(configPath); err != nil {
		return nil, fmt.Errorf("watch config file: %w", err)
	}

	go w.watchConfig()
	return w, nil
}

// Subscribe allows components to receive config updates
func (w *Watcher) Subscribe() <-chan *Config {
	ch := make(chan *Config, 1)
	w.subMu.Lock()
	w.subscribers = append(w.subscribers, ch)
	w.subMu.Unlock()
	return ch
}

// Current returns the current configuration thread-safely
func (w *Watcher) Current() *Config {
	return w.currentConfig.Load().(*Config)
}

func (w *Watcher) watchConfig() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Write == fsnotify.Write {
				w.handleConfigChange()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Config watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleConfigChange() {
	w.logger.Info("Detected config file change, reloading...")

	newConfig, err := LoadFile(w.configPath)
	if err != nil {
		// Keep serving with the previous config.
		w.logger.Error("Failed to load new config", zap.Error(err))
		return
	}

	w.currentConfig.Store(newConfig)

	w.subMu.Lock()
	subs := make([]chan<- *Config, len(w.subscribers))
	copy(subs, w.subscribers)
	w.subMu.Unlock()

	for _, sub := range subs {
		select {
		case sub <- newConfig:
		default:
			// Skip if subscriber is not ready
		}
	}

	w.logger.Info("Configuration reloaded successfully")
}

// Close stops watching the config file.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
