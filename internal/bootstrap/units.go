package bootstrap

import (
	"context"
	"fmt"

	"github.com/dshills/langkit/internal/completion"
	"github.com/dshills/langkit/internal/engine"
	"github.com/dshills/langkit/internal/langdef"
	"github.com/dshills/langkit/internal/language"
	"github.com/dshills/langkit/internal/loader"
)

// Unit is the registration work for one language. Units are isolated: an
// error or panic in one is logged and the next one still runs.
type Unit struct {
	Language string
	Setup    func(ctx context.Context, e *engine.Engine, l loader.Loader) error
}

func (u Unit) run(ctx context.Context, e *engine.Engine, l loader.Loader) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return u.Setup(ctx, e, l)
}

// DefaultUnits returns the built-in language units in registration order.
func DefaultUnits() []Unit {
	return []Unit{
		{Language: string(language.TypeScript), Setup: setupTypeScript},
		DefinitionUnit(string(language.Tact)),
		{Language: string(language.Solidity), Setup: setupSolidity},
		DefinitionUnit(string(language.FunC)),
	}
}

func setupTypeScript(_ context.Context, e *engine.Engine, _ loader.Loader) error {
	id := string(language.TypeScript)
	langs := e.Languages()
	langs.Register(id)

	_, err := langs.RegisterCompletionProvider(id, completion.ClosingTagProvider{})
	return err
}

func setupSolidity(ctx context.Context, e *engine.Engine, l loader.Loader) error {
	id := string(language.Solidity)
	langs := e.Languages()
	langs.Register(id)

	lexer, err := l.LoadGrammar(ctx, id)
	if err != nil {
		return err
	}
	return langs.SetTokensProvider(id, lexer)
}

// DefinitionUnit registers a language from its embedded definition: the ID,
// then its tokenizer, structural configuration and completion provider.
func DefinitionUnit(id string) Unit {
	return Unit{
		Language: id,
		Setup: func(_ context.Context, e *engine.Engine, _ loader.Loader) error {
			def, err := langdef.Load(id)
			if err != nil {
				return err
			}

			lexer, err := def.Lexer()
			if err != nil {
				return err
			}
			provider, err := def.Provider()
			if err != nil {
				return err
			}

			langs := e.Languages()
			langs.Register(id)
			if err := langs.SetTokensProvider(id, lexer); err != nil {
				return err
			}
			if err := langs.SetLanguageConfiguration(id, def.LanguageConfiguration()); err != nil {
				return err
			}
			_, err = langs.RegisterCompletionProvider(id, provider)
			return err
		},
	}
}
