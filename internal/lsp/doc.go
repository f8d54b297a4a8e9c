// Package lsp serves the document registry and the completion providers
// over the Language Server Protocol.
//
// Documents are synced in full: didOpen opens a document without
// overwriting one that is already open, and didChange replaces the whole
// content. Positions are converted between LSP's 0-based UTF-16 columns and
// the engine's 1-based rune columns.
//
// The server also accepts the workspace command "langkit.addLib" with a
// name and a declaration source, which injects a library into the
// script-family type checker.
package lsp
