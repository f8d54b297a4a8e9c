package lsp

import (
	"sync/atomic"

	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/dshills/langkit/internal/workspace"
)

// AddLibCommand injects a declaration library. Its arguments are the
// library name and its source.
const AddLibCommand = "langkit.addLib"

// Server is the language server.
type Server struct {
	registry *workspace.Registry
	handler  protocol.Handler

	name    string
	version string

	// plainText is set when the client cannot take snippet insert text.
	plainText atomic.Bool

	log commonlog.Logger
}

// New creates a server over registry.
func New(registry *workspace.Registry, name, version string) *Server {
	s := &Server{
		registry: registry,
		name:     name,
		version:  version,
		log:      commonlog.GetLogger("langkit.lsp"),
	}

	s.handler = protocol.Handler{
		Initialize:              s.initialize,
		Initialized:             s.initialized,
		Shutdown:                s.shutdown,
		SetTrace:                s.setTrace,
		TextDocumentDidOpen:     s.textDocumentDidOpen,
		TextDocumentDidChange:   s.textDocumentDidChange,
		TextDocumentDidClose:    s.textDocumentDidClose,
		TextDocumentCompletion:  s.textDocumentCompletion,
		WorkspaceExecuteCommand: s.workspaceExecuteCommand,
	}

	return s
}

// Handler returns the protocol handler.
func (s *Server) Handler() *protocol.Handler {
	return &s.handler
}

// RunStdio serves requests on stdin and stdout until the client exits.
func (s *Server) RunStdio() error {
	return server.NewServer(&s.handler, s.name, false).RunStdio()
}
