package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 2 * time.Second

// ReloadFunc receives each successfully reloaded configuration.
type ReloadFunc func(ctx context.Context, cfg *Config)

// Watcher reloads the configuration file when it changes on disk.
type Watcher struct {
	path     string
	onReload ReloadFunc
	debounce time.Duration
	watcher  *fsnotify.Watcher
	logger   *slog.Logger

	stopOnce sync.Once
	stop     chan struct{}
	reload   chan struct{}
	done     sync.WaitGroup
}

// NewWatcher creates a watcher for path. debounce <= 0 selects DefaultDebounce.
func NewWatcher(path string, debounce time.Duration, onReload ReloadFunc) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		path:     absPath,
		onReload: onReload,
		debounce: debounce,
		watcher:  fw,
		logger:   slog.Default().With("config_path", absPath),
		stop:     make(chan struct{}),
		reload:   make(chan struct{}, 1),
	}, nil
}

// Start watches the directory containing the file. Editors commonly replace files
// by rename, which a watch on the file itself would miss.
func (w *Watcher) Start(ctx context.Context) error {
	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch config directory %s: %w", dir, err)
	}
	w.logger.Info("Starting configuration watcher")
	w.done.Add(2)
	go w.watchLoop(ctx)
	go w.reloadLoop(ctx)
	return nil
}

// Stop ends watching and waits for the loops to exit.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stop)
		err = w.watcher.Close()
		w.done.Wait()
	})
	return err
}

func (w *Watcher) watchLoop(ctx context.Context) {
	defer w.done.Done()
	name := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			switch {
			case event.Has(fsnotify.Write), event.Has(fsnotify.Create), event.Has(fsnotify.Rename):
				w.logger.Debug("Config file change detected", "op", event.Op.String())
				w.trigger()
			case event.Has(fsnotify.Remove):
				w.logger.Warn("Config file removed")
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Config watcher error", "error", err)
		}
	}
}

func (w *Watcher) trigger() {
	select {
	case w.reload <- struct{}{}:
	default:
	}
}

func (w *Watcher) reloadLoop(ctx context.Context) {
	defer w.done.Done()
	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-w.stop:
			if timer != nil {
				timer.Stop()
			}
			return
		case <-w.reload:
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			fire = timer.C
		case <-fire:
			fire = nil
			w.performReload(ctx)
		}
	}
}

func (w *Watcher) performReload(ctx context.Context) {
	w.logger.Info("Reloading configuration")
	cfg, err := Load(w.path)
	if err != nil {
		w.logger.Error("Failed to reload configuration", "error", err)
		return
	}
	if w.onReload != nil {
		w.onReload(ctx, cfg)
	}
	w.logger.Info("Configuration reloaded")
}
