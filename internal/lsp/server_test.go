package lsp

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dshills/langkit/internal/bootstrap"
	"github.com/dshills/langkit/internal/loader"
	"github.com/dshills/langkit/internal/workspace"
)

// testContext returns a context canceled when the test finishes
// (stands in for testing.T.Context, which needs Go 1.24).
func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	b := bootstrap.New(loader.NewAssetLoader(loader.Config{}))
	return New(workspace.New(b), "langkit", "test")
}

func open(t *testing.T, s *Server, uri, text string) {
	t.Helper()
	err := s.textDocumentDidOpen(nil, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, Text: text},
	})
	if err != nil {
		t.Fatalf("didOpen %s: %v", uri, err)
	}
}

func complete(t *testing.T, s *Server, uri string, line, char uint32, trigger string) []protocol.CompletionItem {
	t.Helper()
	params := &protocol.CompletionParams{}
	params.TextDocument.URI = uri
	params.Position = protocol.Position{Line: line, Character: char}
	if trigger != "" {
		params.Context = &protocol.CompletionContext{
			TriggerKind:      protocol.CompletionTriggerKindTriggerCharacter,
			TriggerCharacter: &trigger,
		}
	}

	result, err := s.textDocumentCompletion(nil, params)
	if err != nil {
		t.Fatalf("completion: %v", err)
	}
	return result.([]protocol.CompletionItem)
}

func documentText(t *testing.T, s *Server, path string) string {
	t.Helper()
	m, err := s.registry.Get(testContext(t), path)
	if err != nil {
		t.Fatalf("Get(%s): %v", path, err)
	}
	return m.Value()
}

func TestInitialize(t *testing.T) {
	s := newTestServer(t)

	result, err := s.initialize(nil, &protocol.InitializeParams{})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}

	res := result.(protocol.InitializeResult)
	if res.ServerInfo == nil || res.ServerInfo.Name != "langkit" {
		t.Errorf("ServerInfo = %+v", res.ServerInfo)
	}

	caps := res.Capabilities
	if caps.CompletionProvider == nil {
		t.Fatal("completion provider not advertised")
	}
	if !slices.Contains(caps.CompletionProvider.TriggerCharacters, ">") {
		t.Errorf("TriggerCharacters = %v, want to contain >", caps.CompletionProvider.TriggerCharacters)
	}

	sync, ok := caps.TextDocumentSync.(*protocol.TextDocumentSyncOptions)
	if !ok || sync.Change == nil || *sync.Change != protocol.TextDocumentSyncKindFull {
		t.Errorf("TextDocumentSync = %#v, want full sync", caps.TextDocumentSync)
	}
	if caps.ExecuteCommandProvider == nil || !slices.Contains(caps.ExecuteCommandProvider.Commands, AddLibCommand) {
		t.Errorf("ExecuteCommandProvider = %+v", caps.ExecuteCommandProvider)
	}
}

func TestDidOpenKeepsContent(t *testing.T) {
	s := newTestServer(t)

	open(t, s, "file:///src/app.ts", "let a = 1")
	open(t, s, "file:///src/app.ts", "let b = 2")

	if got := documentText(t, s, "/src/app.ts"); got != "let a = 1" {
		t.Errorf("content = %q, want the first open's content", got)
	}
}

func TestDidChange(t *testing.T) {
	s := newTestServer(t)
	uri := "file:///src/app.ts"
	open(t, s, uri, "let a = 1\nlet b = 2\n")

	change := func(changes ...any) {
		t.Helper()
		params := &protocol.DidChangeTextDocumentParams{ContentChanges: changes}
		params.TextDocument.URI = uri
		if err := s.textDocumentDidChange(nil, params); err != nil {
			t.Fatalf("didChange: %v", err)
		}
	}

	change(protocol.TextDocumentContentChangeEventWhole{Text: "const x = 1\n"})
	if got := documentText(t, s, "src/app.ts"); got != "const x = 1\n" {
		t.Errorf("after whole change = %q", got)
	}

	change(protocol.TextDocumentContentChangeEvent{
		Range: &protocol.Range{
			Start: protocol.Position{Line: 0, Character: 6},
			End:   protocol.Position{Line: 0, Character: 7},
		},
		Text: "answer",
	})
	if got := documentText(t, s, "src/app.ts"); got != "const answer = 1\n" {
		t.Errorf("after ranged change = %q", got)
	}
}

func TestDidChangeUnopened(t *testing.T) {
	s := newTestServer(t)

	params := &protocol.DidChangeTextDocumentParams{
		ContentChanges: []any{protocol.TextDocumentContentChangeEventWhole{Text: "x"}},
	}
	params.TextDocument.URI = "file:///missing.ts"

	err := s.textDocumentDidChange(nil, params)
	if !errors.Is(err, workspace.ErrDocumentNotOpen) {
		t.Errorf("err = %v, want ErrDocumentNotOpen", err)
	}
	if _, err := s.registry.Get(testContext(t), "/missing.ts"); err == nil {
		t.Error("didChange must not create a document")
	}
}

func TestCompletionClosingTag(t *testing.T) {
	s := newTestServer(t)
	uri := "file:///src/App.tsx"
	open(t, s, uri, "const view = (\n  <span>\n)")

	items := complete(t, s, uri, 1, 8, ">")
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}

	item := items[0]
	if item.Label != "</span" {
		t.Errorf("Label = %q, want </span", item.Label)
	}
	if item.InsertText == nil || *item.InsertText != "$1</span>" {
		t.Errorf("InsertText = %v, want $1</span>", item.InsertText)
	}
	if item.InsertTextFormat == nil || *item.InsertTextFormat != protocol.InsertTextFormatSnippet {
		t.Error("item should be a snippet")
	}

	edit, ok := item.TextEdit.(protocol.TextEdit)
	if !ok {
		t.Fatalf("TextEdit = %T", item.TextEdit)
	}
	want := protocol.Range{
		Start: protocol.Position{Line: 1, Character: 8},
		End:   protocol.Position{Line: 1, Character: 8},
	}
	if edit.Range != want {
		t.Errorf("TextEdit.Range = %+v, want %+v", edit.Range, want)
	}
}

func TestCompletionSnippetSupport(t *testing.T) {
	tests := []struct {
		name   string
		caps   string
		text   string
		format protocol.InsertTextFormat
	}{
		{"not advertised", `{}`, "</span>", protocol.InsertTextFormatPlainText},
		{"declined", `{"textDocument":{"completion":{"completionItem":{"snippetSupport":false}}}}`, "</span>", protocol.InsertTextFormatPlainText},
		{"supported", `{"textDocument":{"completion":{"completionItem":{"snippetSupport":true}}}}`, "$1</span>", protocol.InsertTextFormatSnippet},
	}

	for _, tt := range tests {
		s := newTestServer(t)
		params := &protocol.InitializeParams{}
		if err := json.Unmarshal([]byte(tt.caps), &params.Capabilities); err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if _, err := s.initialize(nil, params); err != nil {
			t.Fatalf("%s: initialize: %v", tt.name, err)
		}

		uri := "file:///src/App.tsx"
		open(t, s, uri, "<span>")
		items := complete(t, s, uri, 0, 6, ">")
		if len(items) != 1 {
			t.Fatalf("%s: got %d items, want 1", tt.name, len(items))
		}
		if *items[0].InsertText != tt.text {
			t.Errorf("%s: InsertText = %q, want %q", tt.name, *items[0].InsertText, tt.text)
		}
		if *items[0].InsertTextFormat != tt.format {
			t.Errorf("%s: InsertTextFormat = %v, want %v", tt.name, *items[0].InsertTextFormat, tt.format)
		}
	}
}

func TestCompletionClosingTagSkipped(t *testing.T) {
	s := newTestServer(t)
	uri := "file:///src/App.tsx"
	open(t, s, uri, "<div\n</div>\n<a href=\"x\">")

	tests := []struct {
		line, char uint32
	}{
		{0, 4},
		{1, 6},
		{2, 12},
	}
	for _, tt := range tests {
		if items := complete(t, s, uri, tt.line, tt.char, ">"); len(items) != 0 {
			t.Errorf("line %d: got %d items, want none", tt.line, len(items))
		}
	}
}

func TestCompletionStaticTable(t *testing.T) {
	s := newTestServer(t)
	uri := "file:///contracts/wallet.fc"
	open(t, s, uri, "() recv_internal() impure {\n  thr\n}")

	items := complete(t, s, uri, 1, 5, "")

	var labels []string
	for _, item := range items {
		labels = append(labels, item.Label)
		if item.Kind == nil || *item.Kind != protocol.CompletionItemKindFunction {
			t.Errorf("%s kind = %v, want Function", item.Label, item.Kind)
		}
		edit := item.TextEdit.(protocol.TextEdit)
		if edit.Range.Start.Character != 2 || edit.Range.End.Character != 5 {
			t.Errorf("%s range = %+v, want columns 2..5", item.Label, edit.Range)
		}
	}
	want := []string{"throw", "throw_if", "throw_unless"}
	if !slices.Equal(labels, want) {
		t.Errorf("labels = %v, want %v", labels, want)
	}
}

func TestCompletionOutOfRange(t *testing.T) {
	s := newTestServer(t)
	uri := "file:///a.tact"
	open(t, s, uri, "contract")

	if items := complete(t, s, uri, 5, 0, ""); len(items) != 0 {
		t.Errorf("got %d items past the last line", len(items))
	}
}

func TestCompletionUnopened(t *testing.T) {
	s := newTestServer(t)

	params := &protocol.CompletionParams{}
	params.TextDocument.URI = "file:///nope.ts"
	if _, err := s.textDocumentCompletion(nil, params); !errors.Is(err, workspace.ErrDocumentNotOpen) {
		t.Errorf("err = %v, want ErrDocumentNotOpen", err)
	}
}

func TestExecuteAddLib(t *testing.T) {
	s := newTestServer(t)

	_, err := s.workspaceExecuteCommand(nil, &protocol.ExecuteCommandParams{
		Command:   AddLibCommand,
		Arguments: []any{"ton.d.ts", "declare const ton: number;"},
	})
	if err != nil {
		t.Fatalf("executeCommand: %v", err)
	}

	e, err := s.registry.Engine(testContext(t))
	if err != nil {
		t.Fatal(err)
	}
	lib, ok := e.TypeScriptDefaults().ExtraLib("ton.d.ts")
	if !ok || lib.Content != "declare const ton: number;" {
		t.Errorf("ExtraLib = %+v, %v", lib, ok)
	}
}

func TestExecuteCommandErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		params protocol.ExecuteCommandParams
		want   error
	}{
		{"unknown", protocol.ExecuteCommandParams{Command: "other"}, ErrUnknownCommand},
		{"no args", protocol.ExecuteCommandParams{Command: AddLibCommand}, ErrInvalidArguments},
		{"bad name", protocol.ExecuteCommandParams{Command: AddLibCommand, Arguments: []any{1.0, "x"}}, ErrInvalidArguments},
		{"empty name", protocol.ExecuteCommandParams{Command: AddLibCommand, Arguments: []any{"", "x"}}, ErrInvalidArguments},
		{"bad source", protocol.ExecuteCommandParams{Command: AddLibCommand, Arguments: []any{"a.d.ts", nil}}, ErrInvalidArguments},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.workspaceExecuteCommand(nil, &tt.params); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}
