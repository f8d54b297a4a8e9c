// Package loader fetches the editor engine and its on-demand language
// modules.
//
// Modules are addressed by the engine's logical paths, such as
// "vs/editor/editor.main" for the engine itself and
// "vs/basic-languages/solidity/solidity" for a grammar. When an asset
// directory is configured, the loader requires the engine's main module to
// be present there and prefers grammar files found there; otherwise the
// in-process engine and chroma's lexer registry serve every request.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/tliron/commonlog"

	"github.com/dshills/langkit/internal/engine"
)

// EngineModule is the logical path of the engine's main module.
const EngineModule = "vs/editor/editor.main"

// DefaultVersion is the engine release the asset layout refers to.
const DefaultVersion = "0.32.1"

// ErrModuleNotFound indicates a module could not be resolved.
var ErrModuleNotFound = errors.New("module not found")

// GrammarModule returns the logical path of a language's grammar module.
func GrammarModule(language string) string {
	return path.Join("vs/basic-languages", language, language)
}

// Loader resolves engine modules.
type Loader interface {
	// LoadEngine returns the engine module.
	LoadEngine(ctx context.Context) (*engine.Engine, error)

	// LoadGrammar returns the tokenizer module for a language.
	LoadGrammar(ctx context.Context, language string) (chroma.Lexer, error)
}

// Config locates the engine assets.
type Config struct {
	// BasePath is the directory that holds lib/monaco-editor/<Version>.
	// Empty means no asset directory.
	BasePath string

	// Version is the engine release directory name.
	Version string
}

// ModuleDir returns the directory the "vs" module prefix maps to.
func (c Config) ModuleDir() string {
	version := c.Version
	if version == "" {
		version = DefaultVersion
	}
	return path.Join(c.BasePath, "lib", "monaco-editor", version, "min", "vs")
}

// AssetLoader is the default Loader. Like a module loader it caches every
// module it resolves, so repeated requests return the same instance.
type AssetLoader struct {
	config Config
	assets fs.FS

	mu       sync.Mutex
	engine   *engine.Engine
	grammars map[string]chroma.Lexer

	log commonlog.Logger
}

// Option configures an AssetLoader.
type Option func(*AssetLoader)

// WithFS serves assets from fsys instead of Config.ModuleDir. Paths inside
// fsys are relative to the "vs" directory.
func WithFS(fsys fs.FS) Option {
	return func(l *AssetLoader) {
		l.assets = fsys
	}
}

// NewAssetLoader creates a loader for cfg.
func NewAssetLoader(cfg Config, opts ...Option) *AssetLoader {
	l := &AssetLoader{
		config:   cfg,
		grammars: make(map[string]chroma.Lexer),
		log:      commonlog.GetLogger("langkit.loader"),
	}
	if cfg.BasePath != "" {
		l.assets = os.DirFS(cfg.ModuleDir())
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// LoadEngine implements Loader.
func (l *AssetLoader) LoadEngine(ctx context.Context) (*engine.Engine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.engine != nil {
		return l.engine, nil
	}

	if l.assets != nil {
		main := path.Join("editor", "editor.main.js")
		if _, err := fs.Stat(l.assets, main); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%s: %w", EngineModule, ErrModuleNotFound)
			}
			return nil, fmt.Errorf("%s: %w", EngineModule, err)
		}
	}

	l.engine = engine.New()
	l.log.Infof("loaded %s", EngineModule)
	return l.engine, nil
}

// LoadGrammar implements Loader. A lexer definition at
// basic-languages/<lang>/<lang>.xml in the asset directory wins over
// chroma's registry.
func (l *AssetLoader) LoadGrammar(ctx context.Context, language string) (chroma.Lexer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if lexer, ok := l.grammars[language]; ok {
		return lexer, nil
	}

	module := GrammarModule(language)
	lexer, err := l.resolveGrammar(language)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", module, err)
	}

	l.grammars[language] = lexer
	l.log.Debugf("loaded %s", module)
	return lexer, nil
}

func (l *AssetLoader) resolveGrammar(language string) (chroma.Lexer, error) {
	if l.assets != nil {
		file := path.Join("basic-languages", language, language+".xml")
		if _, err := fs.Stat(l.assets, file); err == nil {
			lexer, err := chroma.NewXMLLexer(l.assets, file)
			if err != nil {
				return nil, err
			}
			return chroma.Coalesce(lexer), nil
		}
	}

	if lexer := lexers.Get(language); lexer != nil {
		return chroma.Coalesce(lexer), nil
	}
	return nil, ErrModuleNotFound
}
