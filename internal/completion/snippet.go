package completion

import "strings"

// ExpandSnippet renders snippet text the way it reads once every tabstop
// is accepted with its default. Tabstops ($1, ${1}) vanish, placeholders
// (${1:name}) keep their text, nested placeholders included, and choices
// (${1|a,b|}) keep their first option. \$, \} and \\ are unescaped.
// Anything else, variables included, is copied through.
func ExpandSnippet(snippet string) string {
	var b strings.Builder
	expandInto(&b, snippet, false)
	return b.String()
}

// expandInto writes the expansion of s to b and returns the number of bytes
// consumed. Inside a placeholder it stops at the closing brace.
func expandInto(b *strings.Builder, s string, inPlaceholder bool) int {
	i := 0
	for i < len(s) {
		switch c := s[i]; {
		case c == '\\' && i+1 < len(s) && strings.IndexByte(`$}\`, s[i+1]) >= 0:
			b.WriteByte(s[i+1])
			i += 2
		case c == '}' && inPlaceholder:
			return i
		case c == '$':
			if n := tabstop(s[i+1:], b); n > 0 {
				i += 1 + n
				continue
			}
			b.WriteByte(c)
			i++
		default:
			b.WriteByte(c)
			i++
		}
	}
	return i
}

// tabstop consumes the tabstop, placeholder or choice following a '$' and
// writes its default text. It returns 0 when s does not start one.
func tabstop(s string, b *strings.Builder) int {
	if n := digits(s); n > 0 {
		return n
	}
	if !strings.HasPrefix(s, "{") {
		return 0
	}

	n := digits(s[1:])
	if n == 0 || 1+n >= len(s) {
		return 0
	}

	rest := s[1+n:]
	switch rest[0] {
	case '}':
		return 1 + n + 1
	case ':':
		used := expandInto(b, rest[1:], true)
		return min(1+n+1+used+1, len(s))
	case '|':
		end := strings.Index(rest[1:], "|}")
		if end < 0 {
			return 0
		}
		first, _, _ := strings.Cut(rest[1:1+end], ",")
		b.WriteString(first)
		return 1 + n + 1 + end + 2
	}
	return 0
}

func digits(s string) int {
	n := 0
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	return n
}

// PlainText returns the text a suggestion inserts, snippet syntax expanded
// for clients that cannot take snippets.
func PlainText(s Suggestion) string {
	text := s.InsertText
	if text == "" {
		text = s.Label
	}
	if !s.IsSnippet() {
		return text
	}
	return ExpandSnippet(text)
}
