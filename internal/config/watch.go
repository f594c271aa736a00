package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rpggio/profitability/internal/domain/profitability"
)

// Store holds the current configuration. Readers take a snapshot per request,
// so a reload never changes the settings of a computation in flight.
type Store struct {
	current atomic.Pointer[Config]
}

// NewStore creates a store holding cfg.
func NewStore(cfg Config) *Store {
	s := &Store{}
	s.current.Store(&cfg)
	return s
}

// Config returns the current configuration.
func (s *Store) Config() Config {
	return *s.current.Load()
}

// Settings implements profitability.SettingsSource.
func (s *Store) Settings() profitability.Settings {
	return s.current.Load().Engine.Settings()
}

// Replace swaps in a new configuration.
func (s *Store) Replace(cfg Config) {
	s.current.Store(&cfg)
}

// Watch reloads path into s whenever the file changes, until ctx is done.
// The directory is watched so editors that replace the file are seen.
// Invalid files are logged and the previous configuration is kept.
func Watch(ctx context.Context, s *Store, path string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	const debounce = 200 * time.Millisecond
	var timer *time.Timer
	reload := func() {
		cfg, err := LoadFile(abs)
		if err != nil {
			logger.Warn("config reload failed, keeping previous", "path", abs, "error", err)
			return
		}
		s.Replace(cfg)
		logger.Info("config reloaded", "path", abs)
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, reload)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}
