// Package watcher keeps the type checker's declaration libraries in sync
// with a directory of *.d.ts files.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/tliron/commonlog"
)

// Errors returned by the watcher.
var (
	ErrWatcherClosed = errors.New("watcher is closed")
	ErrNotDirectory  = errors.New("not a directory")
)

// DeclarationSuffix marks the files that are injected.
const DeclarationSuffix = ".d.ts"

// Injector receives declaration files.
type Injector interface {
	InjectLibrary(ctx context.Context, name, source string) error
}

// LibraryWatcher injects every declaration file under a directory and
// re-injects files as they are created or written. A library is named by
// its slash-separated path relative to the directory.
//
// Removing a file does not retract its library.
type LibraryWatcher struct {
	dir    string
	inject Injector
	delay  time.Duration

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	pending map[string]*time.Timer
	closed  bool
	closeCh chan struct{}
	wg      sync.WaitGroup

	injected atomic.Int64
	failures atomic.Int64

	log commonlog.Logger
}

// Option configures a LibraryWatcher.
type Option func(*LibraryWatcher)

// WithDelay sets how long a file must stay quiet before it is re-injected.
func WithDelay(d time.Duration) Option {
	return func(w *LibraryWatcher) {
		w.delay = d
	}
}

// New creates a watcher for dir. Nothing happens until Scan or Start.
func New(dir string, inject Injector, opts ...Option) *LibraryWatcher {
	w := &LibraryWatcher{
		dir:     dir,
		inject:  inject,
		delay:   100 * time.Millisecond,
		pending: make(map[string]*time.Timer),
		closeCh: make(chan struct{}),
		log:     commonlog.GetLogger("langkit.watcher"),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Scan injects every declaration file under the directory and returns how
// many were injected. A file that fails is logged and skipped.
func (w *LibraryWatcher) Scan(ctx context.Context) (int, error) {
	if err := w.checkDir(); err != nil {
		return 0, err
	}

	n := 0
	err := filepath.WalkDir(w.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.log.Warningf("scanning %s: %v", path, err)
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || !isDeclaration(path) {
			return nil
		}

		if err := w.injectFile(ctx, path); err != nil {
			w.log.Warningf("%v", err)
			return nil
		}
		n++
		return nil
	})
	return n, err
}

// Start watches the directory tree until ctx ends or Close is called.
func (w *LibraryWatcher) Start(ctx context.Context) error {
	if err := w.checkDir(); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	if w.watcher != nil {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	err = filepath.WalkDir(w.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		return fsw.Add(path)
	})
	if err != nil {
		_ = fsw.Close()
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}

	w.watcher = fsw
	w.wg.Add(1)
	go w.processLoop(ctx, fsw)

	w.log.Infof("watching %s", w.dir)
	return nil
}

// Close stops watching. Pending re-injections are dropped; one already
// running is waited for.
func (w *LibraryWatcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
	fsw := w.watcher
	w.mu.Unlock()

	w.wg.Wait()

	if fsw != nil {
		return fsw.Close()
	}
	return nil
}

// Injected returns how many injections succeeded.
func (w *LibraryWatcher) Injected() int64 {
	return w.injected.Load()
}

// Failures returns how many injections failed.
func (w *LibraryWatcher) Failures() int64 {
	return w.failures.Load()
}

func (w *LibraryWatcher) checkDir() error {
	info, err := os.Stat(w.dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: %w", w.dir, ErrNotDirectory)
	}
	return nil
}

func (w *LibraryWatcher) processLoop(ctx context.Context, fsw *fsnotify.Watcher) {
	defer w.wg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case <-ctx.Done():
			return

		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, fsw, ev)

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.failures.Add(1)
			w.log.Errorf("watch error: %v", err)
		}
	}
}

func (w *LibraryWatcher) handleEvent(ctx context.Context, fsw *fsnotify.Watcher, ev fsnotify.Event) {
	if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) {
		return
	}

	if ev.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := fsw.Add(ev.Name); err != nil {
				w.log.Warningf("watching %s: %v", ev.Name, err)
			}
			return
		}
	}

	if isDeclaration(ev.Name) {
		w.schedule(ctx, ev.Name)
	}
}

// schedule coalesces bursts of writes to one injection per path.
func (w *LibraryWatcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if t, ok := w.pending[path]; ok {
		t.Reset(w.delay)
		return
	}

	w.pending[path] = time.AfterFunc(w.delay, func() {
		w.mu.Lock()
		delete(w.pending, path)
		if w.closed {
			w.mu.Unlock()
			return
		}
		w.wg.Add(1)
		w.mu.Unlock()
		defer w.wg.Done()

		if err := w.injectFile(ctx, path); err != nil {
			w.log.Warningf("%v", err)
		}
	})
}

func (w *LibraryWatcher) injectFile(ctx context.Context, path string) error {
	name, err := w.libraryName(path)
	if err != nil {
		w.failures.Add(1)
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		w.failures.Add(1)
		return fmt.Errorf("reading library %s: %w", name, err)
	}

	if err := w.inject.InjectLibrary(ctx, name, string(data)); err != nil {
		w.failures.Add(1)
		return fmt.Errorf("injecting library %s: %w", name, err)
	}

	w.injected.Add(1)
	w.log.Debugf("injected library %s", name)
	return nil
}

func (w *LibraryWatcher) libraryName(path string) (string, error) {
	rel, err := filepath.Rel(w.dir, path)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

func isDeclaration(path string) bool {
	return strings.HasSuffix(path, DeclarationSuffix)
}
