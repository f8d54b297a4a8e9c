package engine

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Model is an open, editable text buffer.
type Model struct {
	mu sync.RWMutex

	id       string
	uri      URI
	language string
	content  string
	version  int
}

func newModel(uri URI, language, content string) *Model {
	return &Model{
		id:       uuid.New().String(),
		uri:      uri,
		language: language,
		content:  content,
		version:  1,
	}
}

// ID returns the model's unique identity.
func (m *Model) ID() string {
	return m.id
}

// URI returns the model's URI.
func (m *Model) URI() URI {
	return m.uri
}

// Language returns the model's language ID. It is empty for models with no
// language association.
func (m *Model) Language() string {
	return m.language
}

// Value returns the full content.
func (m *Model) Value() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.content
}

// SetValue replaces the full content and bumps the version.
func (m *Model) SetValue(content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.content = content
	m.version++
}

// Version returns the content version. It starts at 1 and grows with every
// SetValue.
func (m *Model) Version() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.version
}

// LineContent returns the text of the 1-based line without its line
// terminator.
func (m *Model) LineContent(line int) (string, bool) {
	if line < 1 {
		return "", false
	}

	m.mu.RLock()
	content := m.content
	m.mu.RUnlock()

	for i := 1; i < line; i++ {
		nl := strings.IndexByte(content, '\n')
		if nl < 0 {
			return "", false
		}
		content = content[nl+1:]
	}
	if nl := strings.IndexByte(content, '\n'); nl >= 0 {
		content = content[:nl]
	}
	return strings.TrimSuffix(content, "\r"), true
}
