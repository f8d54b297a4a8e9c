package lsp

import (
	"fmt"
	"net/url"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dshills/langkit/internal/completion"
)

// documentPath returns the registry path for a document URI.
func documentPath(uri protocol.DocumentUri) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidURI, err)
	}
	if u.Path == "" {
		return "", fmt.Errorf("%w: %q has no path", ErrInvalidURI, uri)
	}
	return u.Path, nil
}

// toPosition converts an LSP position to the engine's position on line.
func toPosition(line string, pos protocol.Position) completion.Position {
	return completion.Position{
		Line:   int(pos.Line) + 1,
		Column: utf16ToRuneOffset(line, int(pos.Character)) + 1,
	}
}

// toRange converts an engine range on a single line to an LSP range.
func toRange(line string, r completion.Range) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{
			Line:      protocol.UInteger(r.StartLine - 1),
			Character: protocol.UInteger(runeToUTF16Offset(line, r.StartColumn-1)),
		},
		End: protocol.Position{
			Line:      protocol.UInteger(r.EndLine - 1),
			Character: protocol.UInteger(runeToUTF16Offset(line, r.EndColumn-1)),
		},
	}
}

// byteOffset returns the byte offset of pos in content. Positions past the
// end of a line clamp to the line end; lines past the end clamp to the end
// of content.
func byteOffset(content string, pos protocol.Position) int {
	offset := 0
	for line := 0; line < int(pos.Line); line++ {
		i := strings.IndexByte(content[offset:], '\n')
		if i < 0 {
			return len(content)
		}
		offset += i + 1
	}

	lineText := content[offset:]
	if i := strings.IndexByte(lineText, '\n'); i >= 0 {
		lineText = lineText[:i]
	}
	return offset + utf16ToByteOffset(lineText, int(pos.Character))
}

// applyChange applies a ranged content change to content.
func applyChange(content string, change protocol.TextDocumentContentChangeEvent) string {
	if change.Range == nil {
		return change.Text
	}

	start := byteOffset(content, change.Range.Start)
	end := byteOffset(content, change.Range.End)
	if end < start {
		start, end = end, start
	}
	return content[:start] + change.Text + content[end:]
}

// utf16ToByteOffset converts a UTF-16 offset to a byte offset within s.
func utf16ToByteOffset(s string, utf16Off int) int {
	if utf16Off <= 0 {
		return 0
	}

	utf16Count := 0
	for i, r := range s {
		if utf16Count >= utf16Off {
			return i
		}
		utf16Count += utf16Len(r)
	}
	return len(s)
}

// runeToUTF16Offset converts a rune offset to a UTF-16 offset within s.
func runeToUTF16Offset(s string, runeOff int) int {
	if runeOff <= 0 {
		return 0
	}

	runeCount := 0
	utf16Off := 0
	for _, r := range s {
		if runeCount >= runeOff {
			break
		}
		utf16Off += utf16Len(r)
		runeCount++
	}
	return utf16Off
}

// utf16ToRuneOffset converts a UTF-16 offset to a rune offset within s.
func utf16ToRuneOffset(s string, utf16Off int) int {
	if utf16Off <= 0 {
		return 0
	}

	utf16Count := 0
	runeOff := 0
	for _, r := range s {
		if utf16Count >= utf16Off {
			break
		}
		utf16Count += utf16Len(r)
		runeOff++
	}
	return runeOff
}

func utf16Len(r rune) int {
	if r >= 0x10000 {
		return 2 // Surrogate pair
	}
	return 1
}
