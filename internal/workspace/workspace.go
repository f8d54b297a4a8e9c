// Package workspace gives path-keyed access to the engine's open documents.
// Every operation acquires the engine first, so the first call on a fresh
// process triggers the engine bootstrap.
package workspace

import (
	"context"
	"errors"
	"fmt"

	"github.com/dshills/langkit/internal/engine"
	"github.com/dshills/langkit/internal/language"
)

// ErrDocumentNotOpen is returned when no open document matches a path.
var ErrDocumentNotOpen = errors.New("document not open")

// Acquirer hands out the shared engine.
type Acquirer interface {
	Acquire(ctx context.Context) (*engine.Engine, error)
}

// Registry resolves documents by file path. Paths match a document URI
// exactly or with a leading "/" added.
type Registry struct {
	engines Acquirer
}

// New creates a registry over the engine provided by a.
func New(a Acquirer) *Registry {
	return &Registry{engines: a}
}

// Engine returns the shared engine.
func (r *Registry) Engine(ctx context.Context) (*engine.Engine, error) {
	return r.engines.Acquire(ctx)
}

// Get returns the first open document matching path.
func (r *Registry) Get(ctx context.Context, path string) (*engine.Model, error) {
	e, err := r.engines.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	m := e.FindModel(path)
	if m == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrDocumentNotOpen)
	}
	return m, nil
}

// OpenOrGet returns the open document for path, or creates one holding
// content. An already open document is returned unchanged and content is
// ignored.
//
// The language comes from the file name; names with no known extension
// get the empty language.
func (r *Registry) OpenOrGet(ctx context.Context, path, content string) (*engine.Model, error) {
	e, err := r.engines.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	m, _ := e.OpenModel(path, string(language.ForModel(path)), content)
	return m, nil
}

// Replace overwrites the whole content of the open document for path. It
// never creates a document.
func (r *Registry) Replace(ctx context.Context, path, content string) (*engine.Model, error) {
	m, err := r.Get(ctx, path)
	if err != nil {
		return nil, err
	}

	m.SetValue(content)
	return m, nil
}

// List returns all open documents in creation order.
func (r *Registry) List(ctx context.Context) ([]*engine.Model, error) {
	e, err := r.engines.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return e.Models(), nil
}

// InjectLibrary adds a declaration file named name to the script-family
// type checker. Whether a repeated name replaces the earlier file is up to
// the engine.
func (r *Registry) InjectLibrary(ctx context.Context, name, source string) error {
	e, err := r.engines.Acquire(ctx)
	if err != nil {
		return err
	}

	e.TypeScriptDefaults().AddExtraLib(source, name)
	return nil
}
