package loader

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jonwraymond/rescache/observe"
)

// Forgetter drops the cache entry for a key. *cache.ResourceCache satisfies it.
type Forgetter interface {
	Forget(key string)
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithLogger sets the logger used for watch errors and flushes.
func WithLogger(l observe.Logger) WatcherOption {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// Watcher forgets cache entries whose backing files change.
//
// Changes are collected for Config.Debounce before the affected keys are
// forgotten, so an editor saving a file in several steps causes one rebuild.
// Callers already holding a resource keep their instance; the next Get reads
// the file again.
//
// Safe for concurrent use. Forget is called from a single goroutine.
type Watcher struct {
	cfg     Config
	target  Forgetter
	logger  observe.Logger
	watcher *fsnotify.Watcher

	mu       sync.Mutex
	started  bool
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewWatcher creates a watcher for cfg.Root that forgets keys on target.
// Call Start to begin watching and Stop to release it.
func NewWatcher(cfg Config, target Forgetter, opts ...WatcherOption) (*Watcher, error) {
	if target == nil {
		return nil, ErrNilTarget
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.checkRoot(); err != nil {
		return nil, err
	}
	cfg.Root = filepath.Clean(cfg.Root)

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("loader: create watcher: %w", err)
	}

	w := &Watcher{
		cfg:     cfg,
		target:  target,
		logger:  observe.NopLogger(),
		watcher: fw,
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start watches Root and every directory below it. Watching stops when ctx
// is canceled or Stop is called. Calling Start more than once is a no-op.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return nil
	}

	if err := w.addTree(w.cfg.Root); err != nil {
		return fmt.Errorf("loader: watch %s: %w", w.cfg.Root, err)
	}
	w.started = true

	w.wg.Add(1)
	go w.run(ctx)
	return nil
}

// Stop ends watching and waits for pending keys to be forgotten.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		w.wg.Wait()
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
}

func (w *Watcher) run(ctx context.Context) {
	defer w.wg.Done()

	pending := make(map[string]struct{})
	flush := func() {
		for key := range pending {
			w.target.Forget(key)
			w.logger.Debug(ctx, "forgot changed resource", observe.Field{Key: "cache.key", Value: key})
		}
		clear(pending)
	}
	defer flush()

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			key, ok := w.keyForEvent(ctx, ev)
			if !ok {
				continue
			}
			pending[key] = struct{}{}

			if w.cfg.Debounce == 0 {
				flush()
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.cfg.Debounce)
			} else {
				timer.Reset(w.cfg.Debounce)
			}
			fire = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn(ctx, "watch error", observe.Field{Key: "error", Value: err.Error()})

		case <-fire:
			fire = nil
			flush()
		}
	}
}

// keyForEvent returns the key affected by ev. New directories are added to
// the watch instead.
func (w *Watcher) keyForEvent(ctx context.Context, ev fsnotify.Event) (string, bool) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) &&
		!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return "", false
	}

	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addTree(ev.Name); err != nil {
				w.logger.Warn(ctx, "failed to watch new directory",
					observe.Field{Key: "path", Value: ev.Name},
					observe.Field{Key: "error", Value: err.Error()},
				)
			}
			return "", false
		}
	}

	key, ok := w.cfg.keyFor(ev.Name)
	if !ok || !w.cfg.allows(key) {
		return "", false
	}
	return key, true
}
