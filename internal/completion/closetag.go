package completion

import "strings"

// ClosingTagProvider offers the closing tag for a JSX-like element right
// after its opening tag is typed.
//
// It is a line-local heuristic, not a parser. The tag is the text after the
// last '<' on the cursor line, or the whole line when there is none. Closing
// tags, incomplete tags and tags with a space after the first character are
// skipped, so `< div>` still yields "</ div". A '<' or '>' inside a quoted
// attribute value earlier on the line can confuse it.
type ClosingTagProvider struct{}

// TriggerCharacters implements Provider.
func (ClosingTagProvider) TriggerCharacters() []string {
	return []string{">"}
}

// Provide implements Provider.
func (ClosingTagProvider) Provide(req Request) []Suggestion {
	name, ok := openingTag(req.LinePrefix)
	if !ok {
		return nil
	}

	return []Suggestion{{
		Label:      "</" + name,
		Kind:       KindEnumMember,
		InsertText: "$1</" + name + ">",
		Rules:      InsertAsSnippet,
		Range:      req.WordRange(),
	}}
}

// openingTag extracts the element name of a just-completed opening tag at
// the end of prefix, e.g. "span" for `return <span>`.
func openingTag(prefix string) (string, bool) {
	// With no '<' the index is -1 and the whole line is the tag.
	tag := prefix[strings.LastIndexByte(prefix, '<')+1:]
	if tag == "" || !strings.HasSuffix(tag, ">") || strings.HasPrefix(tag, "/") || strings.Index(tag, " ") > 0 {
		return "", false
	}

	// "<>" yields an empty name and closes a fragment.
	return strings.TrimSuffix(tag, ">"), true
}
