package engine

import "errors"

// Errors returned by the engine.
var (
	// ErrUnknownLanguage indicates the language ID was never registered.
	ErrUnknownLanguage = errors.New("unknown language")

	// ErrNoTokenizer indicates the model's language has no tokenizer.
	ErrNoTokenizer = errors.New("no tokenizer for language")
)
