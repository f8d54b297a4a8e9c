// Package language maps file names to the language identifiers understood
// by the editor engine.
package language

import "strings"

// Tag identifies a language known to the editor engine.
type Tag string

// Supported language tags.
const (
	Text       Tag = "txt"
	CSS        Tag = "css"
	JSON       Tag = "json"
	JavaScript Tag = "javascript"
	TypeScript Tag = "typescript"
	Solidity   Tag = "solidity"
	Markdown   Tag = "markdown"
	HTML       Tag = "html"
	XML        Tag = "xml"
	Shell      Tag = "shell"
	Tact       Tag = "tact"
	FunC       Tag = "func"

	// None is the empty tag used for models with no language association.
	None Tag = ""
)

// extensions is the fixed extension table. Lookups are case-sensitive.
var extensions = map[string]Tag{
	"js":   JavaScript,
	"json": JSON,
	"tsx":  TypeScript,
	"ts":   TypeScript,
	"css":  CSS,
	"sol":  Solidity,
	"txt":  Text,
	"md":   Markdown,
	"html": HTML,
	"htm":  HTML,
	"xml":  XML,
	"sh":   Shell,
	"tact": Tact,
	"fc":   FunC,
}

// Classify returns the language tag for a file name based on the text after
// its last dot. The second result is false for unknown extensions and for
// names without a dot.
func Classify(fileName string) (Tag, bool) {
	i := strings.LastIndexByte(fileName, '.')
	if i < 0 {
		return None, false
	}
	tag, ok := extensions[fileName[i+1:]]
	return tag, ok
}

// ForModel returns the language a new document model should be created with.
// Script sources always use the TypeScript language so the type checker sees
// them; everything else falls back to None when unclassified.
func ForModel(fileName string) Tag {
	if strings.HasSuffix(fileName, ".tsx") || strings.HasSuffix(fileName, ".ts") {
		return TypeScript
	}
	tag, _ := Classify(fileName)
	return tag
}

// String returns the tag as a language identifier.
func (t Tag) String() string {
	return string(t)
}
