package completion

import "strings"

// Snippet is a labeled insertion template. Code may use tab stops ($1) and
// placeholders (${1:name}).
type Snippet struct {
	Label       string
	Code        string
	Description string
}

// Group is a list of plain entries sharing a kind, such as keywords or
// built-in function names.
type Group struct {
	Kind    Kind
	Entries []string
}

// StaticProvider suggests entries from fixed tables whose label starts with
// the word before the cursor. Matching is case-sensitive and anchored at the
// start of the label. Results keep table order: groups first, then snippets.
type StaticProvider struct {
	Groups   []Group
	Snippets []Snippet
	Triggers []string
}

// TriggerCharacters implements Provider.
func (p *StaticProvider) TriggerCharacters() []string {
	return p.Triggers
}

// Provide implements Provider.
func (p *StaticProvider) Provide(req Request) []Suggestion {
	prefix := req.Word.Text
	rng := req.WordRange()

	var suggestions []Suggestion

	for _, g := range p.Groups {
		for _, entry := range g.Entries {
			if !strings.HasPrefix(entry, prefix) {
				continue
			}
			suggestions = append(suggestions, Suggestion{
				Label:      entry,
				Kind:       g.Kind,
				InsertText: entry,
				Range:      rng,
			})
		}
	}

	for _, s := range p.Snippets {
		if !strings.HasPrefix(s.Label, prefix) {
			continue
		}
		suggestions = append(suggestions, Suggestion{
			Label:         s.Label,
			Kind:          KindSnippet,
			InsertText:    s.Code,
			Rules:         InsertAsSnippet,
			Detail:        s.Description,
			Documentation: s.Description,
			Range:         rng,
		})
	}

	return suggestions
}
