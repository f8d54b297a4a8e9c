package completion

import (
	"strings"
	"unicode"
)

// wordSeparators are the characters that end a word in addition to whitespace.
const wordSeparators = "`~!@#$%^&*()-=+[{]}\\|;:'\",.<>/?"

// IsWordRune reports whether r can be part of a word.
func IsWordRune(r rune) bool {
	if unicode.IsSpace(r) {
		return false
	}
	return !strings.ContainsRune(wordSeparators, r)
}

// WordUntil returns the word that ends at the 1-based column of line.
// Columns are counted in runes. Out-of-range columns are clamped.
func WordUntil(line string, column int) Word {
	runes := []rune(line)
	end := column - 1
	if end < 0 {
		end = 0
	}
	if end > len(runes) {
		end = len(runes)
	}

	start := end
	for start > 0 && IsWordRune(runes[start-1]) {
		start--
	}

	return Word{
		Text:        string(runes[start:end]),
		StartColumn: start + 1,
		EndColumn:   end + 1,
	}
}

// NewRequest builds a request from the full text of the cursor line.
// It returns false when the position does not address the line.
func NewRequest(line string, pos Position, trigger string) (Request, bool) {
	runes := []rune(line)
	if pos.Line < 1 || pos.Column < 1 || pos.Column > len(runes)+1 {
		return Request{}, false
	}

	return Request{
		Position:         pos,
		LinePrefix:       string(runes[:pos.Column-1]),
		Word:             WordUntil(line, pos.Column),
		TriggerCharacter: trigger,
	}, true
}
