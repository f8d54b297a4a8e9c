package engine

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/tliron/commonlog"

	"github.com/dshills/langkit/internal/completion"
)

// builtinLexers maps the languages the engine ships with to chroma lexer names.
var builtinLexers = map[string]string{
	"txt":        "plaintext",
	"css":        "css",
	"json":       "json",
	"javascript": "javascript",
	"typescript": "typescript",
	"markdown":   "markdown",
	"html":       "html",
	"xml":        "xml",
	"shell":      "bash",
}

// Engine is the editor engine handle.
type Engine struct {
	loaded atomic.Bool

	mu     sync.RWMutex
	models []*Model

	languages  *Languages
	typescript *TypeScriptDefaults

	log commonlog.Logger
}

// New creates an engine with the built-in languages registered.
func New() *Engine {
	e := &Engine{
		languages:  newLanguages(),
		typescript: newTypeScriptDefaults(),
		log:        commonlog.GetLogger("langkit.engine"),
	}

	ids := make([]string, 0, len(builtinLexers))
	for id := range builtinLexers {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		e.languages.Register(id)
		if lexer := lexers.Get(builtinLexers[id]); lexer != nil {
			_ = e.languages.SetTokensProvider(id, chroma.Coalesce(lexer))
		}
	}

	return e
}

// MarkLoaded sets the readiness flag. It returns true only for the caller
// that changed it from unset to set.
func (e *Engine) MarkLoaded() bool {
	return e.loaded.CompareAndSwap(false, true)
}

// Loaded reports whether the readiness flag is set.
func (e *Engine) Loaded() bool {
	return e.loaded.Load()
}

// Languages returns the language registry.
func (e *Engine) Languages() *Languages {
	return e.languages
}

// TypeScriptDefaults returns the script-family type-checking environment.
func (e *Engine) TypeScriptDefaults() *TypeScriptDefaults {
	return e.typescript
}

// OpenModel returns the model addressed by path, creating it with language
// and content when none exists. The lookup and the creation are atomic. The
// second result reports whether a model was created.
func (e *Engine) OpenModel(path, language, content string) (*Model, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if m := e.findLocked(path); m != nil {
		return m, false
	}

	m := newModel(FileURI(path), language, content)
	e.models = append(e.models, m)
	e.log.Debugf("created model %s (%s)", m.uri, language)
	return m, true
}

// FindModel returns the first model, in creation order, whose URI path is
// path or "/"+path. It returns nil when there is none.
func (e *Engine) FindModel(path string) *Model {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.findLocked(path)
}

func (e *Engine) findLocked(path string) *Model {
	for _, m := range e.models {
		if m.uri.Matches(path) {
			return m
		}
	}
	return nil
}

// Models returns all open models in creation order.
func (e *Engine) Models() []*Model {
	e.mu.RLock()
	defer e.mu.RUnlock()

	models := make([]*Model, len(e.models))
	copy(models, e.models)
	return models
}

// Complete runs the completion provider of the model's language at pos.
// A non-empty trigger only reaches providers that list it. Any problem with
// the request, including a provider panic, yields no suggestions.
func (e *Engine) Complete(m *Model, pos completion.Position, trigger string) (suggestions []completion.Suggestion) {
	provider := e.languages.CompletionProvider(m.Language())
	if provider == nil {
		return nil
	}
	if trigger != "" && !slices.Contains(provider.TriggerCharacters(), trigger) {
		return nil
	}

	line, ok := m.LineContent(pos.Line)
	if !ok {
		return nil
	}
	req, ok := completion.NewRequest(line, pos, trigger)
	if !ok {
		e.log.Debugf("completion position %d:%d outside %s", pos.Line, pos.Column, m.uri)
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			e.log.Errorf("completion provider for %s panicked: %v", m.Language(), r)
			suggestions = nil
		}
	}()

	return provider.Provide(req)
}

// Tokenize runs the tokenizer of the model's language over its content and
// returns the tokens split into lines.
func (e *Engine) Tokenize(m *Model) ([][]chroma.Token, error) {
	lexer := e.languages.TokensProvider(m.Language())
	if lexer == nil {
		return nil, fmt.Errorf("%s: %w", m.Language(), ErrNoTokenizer)
	}

	iterator, err := lexer.Tokenise(nil, m.Value())
	if err != nil {
		return nil, fmt.Errorf("tokenizing %s: %w", m.uri, err)
	}
	return chroma.SplitTokensIntoLines(iterator.Tokens()), nil
}
