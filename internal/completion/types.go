package completion

// Kind classifies a suggestion for presentation.
type Kind int

// Suggestion kinds, numbered as the editor engine numbers them.
const (
	KindMethod Kind = iota
	KindFunction
	KindConstructor
	KindField
	KindVariable
	KindClass
	KindStruct
	KindInterface
	KindModule
	KindProperty
	KindEvent
	KindOperator
	KindUnit
	KindValue
	KindConstant
	KindEnum
	KindEnumMember
	KindKeyword
	KindText
	KindColor
	KindFile
	KindReference
	KindCustomColor
	KindFolder
	KindTypeParameter
	KindUser
	KindIssue
	KindSnippet
)

var kindNames = map[Kind]string{
	KindMethod:        "Method",
	KindFunction:      "Function",
	KindConstructor:   "Constructor",
	KindField:         "Field",
	KindVariable:      "Variable",
	KindClass:         "Class",
	KindStruct:        "Struct",
	KindInterface:     "Interface",
	KindModule:        "Module",
	KindProperty:      "Property",
	KindEvent:         "Event",
	KindOperator:      "Operator",
	KindUnit:          "Unit",
	KindValue:         "Value",
	KindConstant:      "Constant",
	KindEnum:          "Enum",
	KindEnumMember:    "EnumMember",
	KindKeyword:       "Keyword",
	KindText:          "Text",
	KindColor:         "Color",
	KindFile:          "File",
	KindReference:     "Reference",
	KindCustomColor:   "CustomColor",
	KindFolder:        "Folder",
	KindTypeParameter: "TypeParameter",
	KindUser:          "User",
	KindIssue:         "Issue",
	KindSnippet:       "Snippet",
}

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// ParseKind returns the kind with the given name, case-sensitive.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// InsertTextRule controls how InsertText is interpreted.
type InsertTextRule int

const (
	// InsertAsText inserts the text verbatim.
	InsertAsText InsertTextRule = 0

	// KeepWhitespace suppresses indentation adjustment.
	KeepWhitespace InsertTextRule = 1

	// InsertAsSnippet treats InsertText as a snippet with tab stops.
	InsertAsSnippet InsertTextRule = 4
)

// Position is a 1-based line and column in a document.
type Position struct {
	Line   int
	Column int
}

// Range is a span of text between two positions on 1-based coordinates.
// The end column is exclusive.
type Range struct {
	StartLine   int
	StartColumn int
	EndLine     int
	EndColumn   int
}

// Word is the word token ending at the cursor.
type Word struct {
	Text        string
	StartColumn int
	EndColumn   int
}

// Request is the cursor context handed to a provider.
type Request struct {
	Position Position

	// LinePrefix is the text of the current line from column 1 up to the cursor.
	LinePrefix string

	// Word is the word immediately before the cursor. It is empty, with
	// StartColumn == EndColumn == Position.Column, when the cursor does not
	// follow a word character.
	Word Word

	// TriggerCharacter is set when completion was triggered by typing a
	// registered trigger character.
	TriggerCharacter string
}

// WordRange returns the range covering the request's word span.
func (r Request) WordRange() Range {
	return Range{
		StartLine:   r.Position.Line,
		StartColumn: r.Word.StartColumn,
		EndLine:     r.Position.Line,
		EndColumn:   r.Word.EndColumn,
	}
}

// Suggestion is one proposed completion.
type Suggestion struct {
	Label         string
	Kind          Kind
	InsertText    string
	Rules         InsertTextRule
	Detail        string
	Documentation string
	Range         Range
}

// IsSnippet reports whether the suggestion uses snippet syntax.
func (s Suggestion) IsSnippet() bool {
	return s.Rules&InsertAsSnippet != 0
}

// Provider produces suggestions for a cursor context. Providers are pure
// functions of the request.
type Provider interface {
	// TriggerCharacters lists characters that invoke the provider when typed.
	TriggerCharacters() []string

	// Provide returns the suggestions for req. A nil or empty result means
	// there is nothing to offer.
	Provide(req Request) []Suggestion
}
