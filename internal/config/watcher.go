//go:build !tinygo

package config

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"acorn/acornos/services/logger"
)

// Watcher reloads the config file when it changes and publishes every valid
// new version to subscribers.
type Watcher struct {
	path     string
	log      logger.Logger
	debounce time.Duration

	mu       sync.RWMutex
	cfg      *Config
	lastHash uint64

	subsMu sync.Mutex
	subs   []chan *Config
}

// NewWatcher starts from cfg, the config already loaded from path.
func NewWatcher(path string, cfg *Config, log logger.Logger) *Watcher {
	w := &Watcher{path: path, cfg: cfg, log: log, debounce: 250 * time.Millisecond}
	if b, err := os.ReadFile(path); err == nil {
		w.lastHash = hashBytes(b)
	}
	return w
}

// Get returns the current config.
func (w *Watcher) Get() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cfg
}

// Subscribe returns a channel receiving each new config. A slow subscriber
// only sees the latest one.
func (w *Watcher) Subscribe(buffer int) <-chan *Config {
	ch := make(chan *Config, max(1, buffer))
	w.subsMu.Lock()
	w.subs = append(w.subs, ch)
	w.subsMu.Unlock()
	return ch
}

func (w *Watcher) publish(cfg *Config) {
	w.subsMu.Lock()
	defer w.subsMu.Unlock()
	for _, ch := range w.subs {
		select {
		case ch <- cfg:
			continue
		default:
		}
		// drop the oldest, deliver the newest
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- cfg:
		default:
		}
	}
}

// reload parses the file and publishes it if it changed and is valid.
func (w *Watcher) reload() {
	b, err := os.ReadFile(w.path)
	if err != nil {
		w.log.Warn("config read failed", logger.String("path", w.path), logger.Err(err))
		return
	}
	h := hashBytes(b)
	w.mu.RLock()
	unchanged := h == w.lastHash
	w.mu.RUnlock()
	if unchanged {
		return
	}

	cfg, err := Parse(b)
	if err != nil {
		w.log.Warn("config rejected", logger.String("path", w.path), logger.Err(err))
		return
	}
	w.mu.Lock()
	w.cfg = cfg
	w.lastHash = h
	w.mu.Unlock()

	w.publish(cfg)
	w.log.Info("config reloaded", logger.String("path", w.path), logger.String("hash", fmt.Sprintf("%x", h)))
}

// Watch blocks until ctx is done, reloading after each burst of changes to
// the file settles.
func (w *Watcher) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: watch: %w", err)
	}
	defer fw.Close()

	dir, file := filepath.Dir(w.path), filepath.Base(w.path)
	// Editors replace files by rename, so watch the directory.
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("config: watch %s: %w", dir, err)
	}
	w.log.Debug("config watcher started", logger.String("dir", dir), logger.String("file", file))

	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)
	schedule := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(w.debounce, w.reload)
	}
	defer func() {
		timerMu.Lock()
		if timer != nil {
			timer.Stop()
		}
		timerMu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return errors.New("config: watcher closed")
			}
			if !strings.EqualFold(filepath.Base(ev.Name), file) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				schedule()
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return errors.New("config: watcher closed")
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				w.log.Warn("config watch overflow, forcing reload")
				schedule()
				continue
			}
			w.log.Warn("config watch error", logger.Err(err))
		}
	}
}

func hashBytes(b []byte) uint64 {
	h := fnv.New64a()
	_, _ = h.Write(b)
	return h.Sum64()
}
