package langdef

import (
	"fmt"
	"slices"

	"github.com/alecthomas/chroma/v2"
)

// GrammarDef is a state machine of regex rules, in the shape chroma's
// RegexLexer expects. Every grammar starts in the "root" state.
type GrammarDef struct {
	Words  map[string][]string  `yaml:"words"`
	States map[string][]RuleDef `yaml:"states"`
}

// RuleDef is one tokenizer rule. Exactly one of Pattern and Words is set;
// Words names a list in GrammarDef.Words that is matched as whole words.
type RuleDef struct {
	Pattern string `yaml:"pattern"`
	Words   string `yaml:"words"`
	Token   string `yaml:"token"`
	Push    string `yaml:"push"`
	Pop     int    `yaml:"pop"`
}

var tokenTypes = map[string]chroma.TokenType{
	"text":              chroma.Text,
	"whitespace":        chroma.TextWhitespace,
	"comment":           chroma.CommentSingle,
	"comment.multiline": chroma.CommentMultiline,
	"keyword":           chroma.Keyword,
	"keyword.directive": chroma.CommentPreproc,
	"type":              chroma.KeywordType,
	"annotation":        chroma.NameDecorator,
	"function":          chroma.NameFunction,
	"identifier":        chroma.Name,
	"string":            chroma.LiteralString,
	"string.escape":     chroma.LiteralStringEscape,
	"number":            chroma.LiteralNumber,
	"operator":          chroma.Operator,
	"punctuation":       chroma.Punctuation,
	"invalid":           chroma.Error,
}

// Lexer compiles the grammar into a chroma lexer.
func (d *Definition) Lexer() (chroma.Lexer, error) {
	if _, ok := d.Grammar.States["root"]; !ok {
		return nil, fmt.Errorf("%s: grammar has no root state", d.ID)
	}

	rules := chroma.Rules{}
	for state, defs := range d.Grammar.States {
		for i, def := range defs {
			rule, err := d.rule(def)
			if err != nil {
				return nil, fmt.Errorf("%s: state %s rule %d: %w", d.ID, state, i, err)
			}
			rules[state] = append(rules[state], rule)
		}
	}

	config := &chroma.Config{
		Name:      d.Name,
		Aliases:   []string{d.ID},
		Filenames: globs(d.Extensions),
	}
	lexer, err := chroma.NewLexer(config, func() chroma.Rules { return rules })
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.ID, err)
	}

	// Patterns are compiled on first use; tokenize once to surface errors now.
	if _, err := lexer.Tokenise(nil, ""); err != nil {
		return nil, fmt.Errorf("%s: %w", d.ID, err)
	}

	return chroma.Coalesce(lexer), nil
}

func (d *Definition) rule(def RuleDef) (chroma.Rule, error) {
	tokenType, ok := tokenTypes[def.Token]
	if !ok {
		return chroma.Rule{}, fmt.Errorf("unknown token %q", def.Token)
	}

	pattern := def.Pattern
	if def.Words != "" {
		words, ok := d.Grammar.Words[def.Words]
		if !ok {
			return chroma.Rule{}, fmt.Errorf("unknown word list %q", def.Words)
		}
		// Words sorts in place; the list is shared by every build.
		pattern = chroma.Words(`\b`, `\b`, slices.Clone(words)...)
	}
	if pattern == "" {
		return chroma.Rule{}, fmt.Errorf("empty pattern")
	}
	if def.Push != "" {
		if _, ok := d.Grammar.States[def.Push]; !ok {
			return chroma.Rule{}, fmt.Errorf("push to unknown state %q", def.Push)
		}
	}

	rule := chroma.Rule{Pattern: pattern, Type: tokenType}
	switch {
	case def.Push != "":
		rule.Mutator = chroma.Push(def.Push)
	case def.Pop > 0:
		rule.Mutator = chroma.Pop(def.Pop)
	}
	return rule, nil
}

func globs(exts []string) []string {
	out := make([]string, len(exts))
	for i, ext := range exts {
		out[i] = "*." + ext
	}
	return out
}
