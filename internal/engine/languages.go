package engine

import (
	"sort"
	"sync"

	"github.com/alecthomas/chroma/v2"

	"github.com/dshills/langkit/internal/completion"
)

// CharacterPair is an opening and closing string, such as "{" and "}".
type CharacterPair [2]string

// AutoClosingPair is a pair that is closed automatically when the opening
// string is typed outside the listed token scopes.
type AutoClosingPair struct {
	Open  string
	Close string
	NotIn []string
}

// CommentRule describes a language's comment syntax.
type CommentRule struct {
	LineComment  string
	BlockComment *CharacterPair
}

// LanguageConfiguration holds structural editing rules for a language.
type LanguageConfiguration struct {
	Comments         CommentRule
	Brackets         []CharacterPair
	AutoClosingPairs []AutoClosingPair
	SurroundingPairs []CharacterPair
}

type languageEntry struct {
	id       string
	lexer    chroma.Lexer
	config   *LanguageConfiguration
	provider completion.Provider
}

// Languages is the registry of language IDs and the services installed for
// them. Registration is keyed by language ID and idempotent.
type Languages struct {
	mu      sync.RWMutex
	entries map[string]*languageEntry
	order   []string
}

func newLanguages() *Languages {
	return &Languages{
		entries: make(map[string]*languageEntry),
	}
}

// Register adds a language ID. It returns false, and changes nothing, when
// the ID is already registered.
func (l *Languages) Register(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.entries[id]; exists {
		return false
	}
	l.entries[id] = &languageEntry{id: id}
	l.order = append(l.order, id)
	return true
}

// IDs returns the registered language IDs in registration order.
func (l *Languages) IDs() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := make([]string, len(l.order))
	copy(ids, l.order)
	return ids
}

// SetTokensProvider installs the tokenizer for id, replacing any previous one.
func (l *Languages) SetTokensProvider(id string, lexer chroma.Lexer) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[id]
	if !ok {
		return ErrUnknownLanguage
	}
	entry.lexer = lexer
	return nil
}

// TokensProvider returns the tokenizer for id, or nil.
func (l *Languages) TokensProvider(id string) chroma.Lexer {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if entry, ok := l.entries[id]; ok {
		return entry.lexer
	}
	return nil
}

// SetLanguageConfiguration installs the structural configuration for id.
func (l *Languages) SetLanguageConfiguration(id string, cfg *LanguageConfiguration) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[id]
	if !ok {
		return ErrUnknownLanguage
	}
	entry.config = cfg
	return nil
}

// Configuration returns the structural configuration for id.
func (l *Languages) Configuration(id string) (*LanguageConfiguration, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if entry, ok := l.entries[id]; ok && entry.config != nil {
		return entry.config, true
	}
	return nil, false
}

// RegisterCompletionProvider installs the completion provider for id.
// It returns false, leaving the existing provider in place, when id already
// has one.
func (l *Languages) RegisterCompletionProvider(id string, p completion.Provider) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[id]
	if !ok {
		return false, ErrUnknownLanguage
	}
	if entry.provider != nil {
		return false, nil
	}
	entry.provider = p
	return true, nil
}

// CompletionProvider returns the completion provider for id, or nil.
func (l *Languages) CompletionProvider(id string) completion.Provider {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if entry, ok := l.entries[id]; ok {
		return entry.provider
	}
	return nil
}

// TriggerCharacters returns the union of all providers' trigger characters,
// sorted.
func (l *Languages) TriggerCharacters() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	seen := make(map[string]bool)
	var chars []string
	for _, entry := range l.entries {
		if entry.provider == nil {
			continue
		}
		for _, c := range entry.provider.TriggerCharacters() {
			if !seen[c] {
				seen[c] = true
				chars = append(chars, c)
			}
		}
	}
	sort.Strings(chars)
	return chars
}
