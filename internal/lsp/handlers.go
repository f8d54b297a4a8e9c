package lsp

import (
	"context"
	"fmt"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func (s *Server) initialize(
	_ *glsp.Context,
	params *protocol.InitializeParams,
) (any, error) {
	if params.ClientInfo != nil {
		s.log.Infof("client: %s", params.ClientInfo.Name)
	}
	if !snippetSupport(params.Capabilities) {
		s.log.Debug("client lacks snippet support, sending plain text")
		s.plainText.Store(true)
	}

	// Trigger characters are only known once the engine is configured.
	e, err := s.registry.Engine(context.Background())
	if err != nil {
		return nil, err
	}

	capabilities := s.handler.CreateServerCapabilities()
	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: &protocol.True,
		Change:    &syncKind,
	}
	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: e.Languages().TriggerCharacters(),
	}
	capabilities.ExecuteCommandProvider = &protocol.ExecuteCommandOptions{
		Commands: []string{AddLibCommand},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    s.name,
			Version: &s.version,
		},
	}, nil
}

func snippetSupport(c protocol.ClientCapabilities) bool {
	td := c.TextDocument
	if td == nil || td.Completion == nil || td.Completion.CompletionItem == nil {
		return false
	}
	return td.Completion.CompletionItem.SnippetSupport != nil && *td.Completion.CompletionItem.SnippetSupport
}

func (s *Server) initialized(
	_ *glsp.Context,
	_ *protocol.InitializedParams,
) error {
	s.log.Info("client initialized")
	return nil
}

func (s *Server) shutdown(_ *glsp.Context) error {
	s.log.Info("shutting down")
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (s *Server) setTrace(_ *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) textDocumentDidOpen(
	_ *glsp.Context,
	params *protocol.DidOpenTextDocumentParams,
) error {
	path, err := documentPath(params.TextDocument.URI)
	if err != nil {
		return err
	}

	m, err := s.registry.OpenOrGet(context.Background(), path, params.TextDocument.Text)
	if err != nil {
		return err
	}
	s.log.Debugf("opened %s as %q", m.URI(), m.Language())
	return nil
}

func (s *Server) textDocumentDidChange(
	_ *glsp.Context,
	params *protocol.DidChangeTextDocumentParams,
) error {
	path, err := documentPath(params.TextDocument.URI)
	if err != nil {
		return err
	}

	ctx := context.Background()
	m, err := s.registry.Get(ctx, path)
	if err != nil {
		return err
	}

	content := m.Value()
	for _, raw := range params.ContentChanges {
		switch change := raw.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			content = change.Text
		case protocol.TextDocumentContentChangeEvent:
			content = applyChange(content, change)
		default:
			return fmt.Errorf("unexpected change event type %T", raw)
		}
	}

	_, err = s.registry.Replace(ctx, path, content)
	return err
}

func (s *Server) textDocumentDidClose(
	_ *glsp.Context,
	params *protocol.DidCloseTextDocumentParams,
) error {
	// Models stay open; disposal belongs to the editor shell.
	s.log.Debugf("closed %s", params.TextDocument.URI)
	return nil
}

func (s *Server) textDocumentCompletion(
	_ *glsp.Context,
	params *protocol.CompletionParams,
) (any, error) {
	path, err := documentPath(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	e, err := s.registry.Engine(ctx)
	if err != nil {
		return nil, err
	}
	m, err := s.registry.Get(ctx, path)
	if err != nil {
		return nil, err
	}

	items := []protocol.CompletionItem{}

	line, ok := m.LineContent(int(params.Position.Line) + 1)
	if !ok {
		return items, nil
	}

	var trigger string
	if c := params.Context; c != nil && c.TriggerKind == protocol.CompletionTriggerKindTriggerCharacter && c.TriggerCharacter != nil {
		trigger = *c.TriggerCharacter
	}

	for _, suggestion := range e.Complete(m, toPosition(line, params.Position), trigger) {
		items = append(items, completionItem(line, suggestion, !s.plainText.Load()))
	}
	return items, nil
}

func (s *Server) workspaceExecuteCommand(
	_ *glsp.Context,
	params *protocol.ExecuteCommandParams,
) (any, error) {
	if params.Command != AddLibCommand {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, params.Command)
	}

	if len(params.Arguments) != 2 {
		return nil, fmt.Errorf("%w: %s takes a name and a source", ErrInvalidArguments, AddLibCommand)
	}
	name, ok := params.Arguments[0].(string)
	if !ok || name == "" {
		return nil, fmt.Errorf("%w: library name must be a non-empty string", ErrInvalidArguments)
	}
	source, ok := params.Arguments[1].(string)
	if !ok {
		return nil, fmt.Errorf("%w: library source must be a string", ErrInvalidArguments)
	}

	if err := s.registry.InjectLibrary(context.Background(), name, source); err != nil {
		return nil, err
	}
	s.log.Infof("injected library %s", name)
	return nil, nil
}
