package lsp

import "errors"

// Errors returned by request handlers.
var (
	// ErrUnknownCommand indicates an executeCommand request for a command
	// the server does not provide.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrInvalidArguments indicates a command was called with the wrong
	// arguments.
	ErrInvalidArguments = errors.New("invalid command arguments")

	// ErrInvalidURI indicates a document URI could not be parsed.
	ErrInvalidURI = errors.New("invalid document uri")
)
