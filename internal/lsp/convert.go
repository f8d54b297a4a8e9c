package lsp

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dshills/langkit/internal/completion"
)

var itemKinds = map[completion.Kind]protocol.CompletionItemKind{
	completion.KindMethod:        protocol.CompletionItemKindMethod,
	completion.KindFunction:      protocol.CompletionItemKindFunction,
	completion.KindConstructor:   protocol.CompletionItemKindConstructor,
	completion.KindField:         protocol.CompletionItemKindField,
	completion.KindVariable:      protocol.CompletionItemKindVariable,
	completion.KindClass:         protocol.CompletionItemKindClass,
	completion.KindStruct:        protocol.CompletionItemKindStruct,
	completion.KindInterface:     protocol.CompletionItemKindInterface,
	completion.KindModule:        protocol.CompletionItemKindModule,
	completion.KindProperty:      protocol.CompletionItemKindProperty,
	completion.KindEvent:         protocol.CompletionItemKindEvent,
	completion.KindOperator:      protocol.CompletionItemKindOperator,
	completion.KindUnit:          protocol.CompletionItemKindUnit,
	completion.KindValue:         protocol.CompletionItemKindValue,
	completion.KindConstant:      protocol.CompletionItemKindConstant,
	completion.KindEnum:          protocol.CompletionItemKindEnum,
	completion.KindEnumMember:    protocol.CompletionItemKindEnumMember,
	completion.KindKeyword:       protocol.CompletionItemKindKeyword,
	completion.KindText:          protocol.CompletionItemKindText,
	completion.KindColor:         protocol.CompletionItemKindColor,
	completion.KindFile:          protocol.CompletionItemKindFile,
	completion.KindReference:     protocol.CompletionItemKindReference,
	completion.KindFolder:        protocol.CompletionItemKindFolder,
	completion.KindTypeParameter: protocol.CompletionItemKindTypeParameter,
	completion.KindSnippet:       protocol.CompletionItemKindSnippet,
}

// completionItem converts a suggestion on line to an LSP completion item.
// Without snippet support, snippet text is expanded to plain text.
func completionItem(line string, s completion.Suggestion, snippets bool) protocol.CompletionItem {
	kind, ok := itemKinds[s.Kind]
	if !ok {
		kind = protocol.CompletionItemKindText
	}

	format := protocol.InsertTextFormatPlainText
	text := s.InsertText
	if text == "" {
		text = s.Label
	}
	switch {
	case s.IsSnippet() && snippets:
		format = protocol.InsertTextFormatSnippet
	case s.IsSnippet():
		text = completion.PlainText(s)
	}

	item := protocol.CompletionItem{
		Label:            s.Label,
		Kind:             &kind,
		InsertText:       &text,
		InsertTextFormat: &format,
		TextEdit: protocol.TextEdit{
			Range:   toRange(line, s.Range),
			NewText: text,
		},
	}

	if s.Detail != "" {
		detail := s.Detail
		item.Detail = &detail
	}
	if s.Documentation != "" {
		item.Documentation = s.Documentation
	}
	if s.Rules&completion.KeepWhitespace != 0 {
		mode := protocol.InsertTextModeAsIs
		item.InsertTextMode = &mode
	}

	return item
}
