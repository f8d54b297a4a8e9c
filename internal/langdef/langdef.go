// Package langdef loads the static definition tables of the custom
// languages: keyword and snippet catalogs, tokenizer grammars and
// structural configuration.
//
// Definitions are YAML documents embedded in the binary. Each one is turned
// into the three services the engine installs for a language: a chroma lexer,
// an engine.LanguageConfiguration and a completion.StaticProvider.
package langdef

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"

	"gopkg.in/yaml.v3"

	"github.com/dshills/langkit/internal/completion"
	"github.com/dshills/langkit/internal/engine"
)

//go:embed definitions/*.yaml
var definitionFS embed.FS

// ErrNotFound indicates no definition exists for a language ID.
var ErrNotFound = errors.New("language definition not found")

// Definition is the static description of one custom language.
type Definition struct {
	ID         string   `yaml:"id"`
	Name       string   `yaml:"name"`
	Extensions []string `yaml:"extensions"`

	Configuration ConfigurationDef `yaml:"configuration"`
	Grammar       GrammarDef       `yaml:"grammar"`
	Completion    CompletionDef    `yaml:"completion"`
}

// ConfigurationDef describes bracket and comment rules.
type ConfigurationDef struct {
	Comments struct {
		Line  string   `yaml:"line"`
		Block []string `yaml:"block"`
	} `yaml:"comments"`
	Brackets         [][]string       `yaml:"brackets"`
	AutoClosingPairs []AutoClosingDef `yaml:"autoClosingPairs"`
	SurroundingPairs [][]string       `yaml:"surroundingPairs"`
}

// AutoClosingDef is one auto-closing pair.
type AutoClosingDef struct {
	Open  string   `yaml:"open"`
	Close string   `yaml:"close"`
	NotIn []string `yaml:"notIn"`
}

// CompletionDef holds the completion tables.
type CompletionDef struct {
	Groups   []GroupDef   `yaml:"groups"`
	Snippets []SnippetDef `yaml:"snippets"`
}

// GroupDef is a list of plain entries sharing a completion kind.
type GroupDef struct {
	Kind    string   `yaml:"kind"`
	Name    string   `yaml:"name"`
	Entries []string `yaml:"entries"`
}

// SnippetDef is one labeled snippet.
type SnippetDef struct {
	Label       string `yaml:"label"`
	Code        string `yaml:"code"`
	Description string `yaml:"description"`
}

// Parse decodes a YAML definition.
func Parse(source string, data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}
	if def.ID == "" {
		return nil, &ParseError{Source: source, Err: errors.New("missing id")}
	}
	return &def, nil
}

// Load returns the embedded definition for a language ID.
func Load(id string) (*Definition, error) {
	name := path.Join("definitions", id+".yaml")
	data, err := definitionFS.ReadFile(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return Parse(name, data)
}

// LanguageConfiguration converts the configuration section.
func (d *Definition) LanguageConfiguration() *engine.LanguageConfiguration {
	c := d.Configuration
	cfg := &engine.LanguageConfiguration{
		Comments: engine.CommentRule{LineComment: c.Comments.Line},
	}
	if len(c.Comments.Block) == 2 {
		cfg.Comments.BlockComment = &engine.CharacterPair{c.Comments.Block[0], c.Comments.Block[1]}
	}
	cfg.Brackets = pairs(c.Brackets)
	cfg.SurroundingPairs = pairs(c.SurroundingPairs)
	for _, p := range c.AutoClosingPairs {
		cfg.AutoClosingPairs = append(cfg.AutoClosingPairs, engine.AutoClosingPair{
			Open:  p.Open,
			Close: p.Close,
			NotIn: p.NotIn,
		})
	}
	return cfg
}

func pairs(in [][]string) []engine.CharacterPair {
	var out []engine.CharacterPair
	for _, p := range in {
		if len(p) == 2 {
			out = append(out, engine.CharacterPair{p[0], p[1]})
		}
	}
	return out
}

// Provider builds the static-table completion provider.
func (d *Definition) Provider() (*completion.StaticProvider, error) {
	p := &completion.StaticProvider{}

	for _, g := range d.Completion.Groups {
		kind, ok := completion.ParseKind(g.Kind)
		if !ok {
			return nil, fmt.Errorf("%s: unknown completion kind %q", d.ID, g.Kind)
		}
		p.Groups = append(p.Groups, completion.Group{Kind: kind, Entries: g.Entries})
	}

	for _, s := range d.Completion.Snippets {
		p.Snippets = append(p.Snippets, completion.Snippet{
			Label:       s.Label,
			Code:        s.Code,
			Description: s.Description,
		})
	}

	return p, nil
}

// ParseError reports a malformed definition.
type ParseError struct {
	Source string
	Err    error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("language definition %s: %v", e.Source, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}
