// Package bootstrap owns the process-wide editor engine. It loads the engine
// module once, applies the type-checker options, and registers the custom
// languages and their providers.
//
// Acquire is an initialize-or-join primitive: the first caller starts the
// load and every caller that arrives before it finishes waits on the same
// in-flight result. Once the engine is ready it is returned immediately and
// setup is never entered again. A failed load is reported to everyone who
// waited on it and is then forgotten, so the next Acquire starts over.
//
// A stalled loader stalls every caller that has no deadline on its context.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/tliron/commonlog"

	"github.com/dshills/langkit/internal/engine"
	"github.com/dshills/langkit/internal/loader"
)

// ErrLoadFailed is wrapped by every LoadError.
var ErrLoadFailed = errors.New("engine load failed")

// LoadError reports a failed engine load.
type LoadError struct {
	Module string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %s: %v", e.Module, e.Err)
}

func (e *LoadError) Unwrap() []error {
	return []error{ErrLoadFailed, e.Err}
}

// State is the lifecycle state of a Bootstrap.
type State int

const (
	// Uninitialized means no load has been requested or the last one failed.
	Uninitialized State = iota
	// Loading means a load is in flight.
	Loading
	// Ready means the engine is loaded and configured.
	Ready
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

type future struct {
	done   chan struct{}
	engine *engine.Engine
	err    error
}

// Bootstrap loads and configures one engine.
type Bootstrap struct {
	loader         loader.Loader
	compiler       engine.CompilerOptions
	eagerModelSync bool
	units          []Unit

	mu      sync.Mutex
	pending *future
	engine  *engine.Engine

	log commonlog.Logger
}

// Option configures a Bootstrap.
type Option func(*Bootstrap)

// WithCompilerOptions sets the compiler options applied to the script
// family. The default is engine.DefaultCompilerOptions.
func WithCompilerOptions(opts engine.CompilerOptions) Option {
	return func(b *Bootstrap) {
		b.compiler = opts
	}
}

// WithEagerModelSync sets whether models are synced to the type checker
// eagerly. The default is off.
func WithEagerModelSync(enabled bool) Option {
	return func(b *Bootstrap) {
		b.eagerModelSync = enabled
	}
}

// WithUnits replaces the language units run during configuration.
func WithUnits(units ...Unit) Option {
	return func(b *Bootstrap) {
		b.units = units
	}
}

// New creates a Bootstrap that loads the engine through l.
func New(l loader.Loader, opts ...Option) *Bootstrap {
	b := &Bootstrap{
		loader:   l,
		compiler: engine.DefaultCompilerOptions(),
		units:    DefaultUnits(),
		log:      commonlog.GetLogger("langkit.bootstrap"),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Acquire returns the configured engine, loading it on first use.
//
// ctx only bounds the caller's wait. The load runs detached so that other
// callers joined on it still get a result.
func (b *Bootstrap) Acquire(ctx context.Context) (*engine.Engine, error) {
	b.mu.Lock()
	if b.engine != nil {
		e := b.engine
		b.mu.Unlock()
		return e, nil
	}

	f := b.pending
	if f == nil {
		f = &future{done: make(chan struct{})}
		b.pending = f
		go b.load(f)
	}
	b.mu.Unlock()

	select {
	case <-f.done:
		return f.engine, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// State reports the lifecycle state.
func (b *Bootstrap) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch {
	case b.engine != nil:
		return Ready
	case b.pending != nil:
		return Loading
	default:
		return Uninitialized
	}
}

func (b *Bootstrap) load(f *future) {
	ctx := context.Background()

	e, err := b.loader.LoadEngine(ctx)
	if err != nil {
		f.err = &LoadError{Module: loader.EngineModule, Err: err}
		b.log.Errorf("%v", f.err)
	} else {
		b.configure(ctx, e)
		f.engine = e
	}

	b.mu.Lock()
	b.engine = f.engine
	b.pending = nil
	b.mu.Unlock()

	close(f.done)
}

// configure runs the one-time setup. It does nothing when the engine's
// readiness flag is already set.
func (b *Bootstrap) configure(ctx context.Context, e *engine.Engine) {
	if !e.MarkLoaded() {
		b.log.Debug("engine already configured")
		return
	}

	ts := e.TypeScriptDefaults()
	ts.SetCompilerOptions(b.compiler)
	ts.SetEagerModelSync(b.eagerModelSync)

	for _, u := range b.units {
		if err := u.run(ctx, e, b.loader); err != nil {
			b.log.Warningf("configuring %s: %v", u.Language, err)
			continue
		}
		b.log.Debugf("configured %s", u.Language)
	}

	b.log.Infof("engine ready, languages: %s", strings.Join(e.Languages().IDs(), ", "))
}

var defaultBootstrap struct {
	sync.Mutex
	b *Bootstrap
}

// Default returns the process-wide Bootstrap, creating one over an
// AssetLoader with no asset directory if SetDefault was not called.
func Default() *Bootstrap {
	defaultBootstrap.Lock()
	defer defaultBootstrap.Unlock()

	if defaultBootstrap.b == nil {
		defaultBootstrap.b = New(loader.NewAssetLoader(loader.Config{}))
	}
	return defaultBootstrap.b
}

// SetDefault installs b as the process-wide Bootstrap. It returns false,
// leaving the current one in place, once Default has been used.
func SetDefault(b *Bootstrap) bool {
	defaultBootstrap.Lock()
	defer defaultBootstrap.Unlock()

	if defaultBootstrap.b != nil {
		return false
	}
	defaultBootstrap.b = b
	return true
}

// Acquire returns the process-wide engine.
func Acquire(ctx context.Context) (*engine.Engine, error) {
	return Default().Acquire(ctx)
}
