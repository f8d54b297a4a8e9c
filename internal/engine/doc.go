// Package engine is the in-process editor engine that language services are
// registered with.
//
// An Engine owns three process-wide registries:
//
//   - the model store: every open text document, addressed by file URI
//   - the language registry: language IDs with their tokenizer (a chroma
//     lexer), structural configuration and completion provider
//   - the TypeScript defaults: compiler options and injected library
//     declarations seen by the type checker
//
// Engines are created by the asset loader and configured once by the
// bootstrap package. The Loaded flag records that configuration happened;
// MarkLoaded is an atomic compare-and-set so only one caller ever performs it.
//
// # Thread Safety
//
// Engine, Languages, TypeScriptDefaults and Model are safe for concurrent use.
package engine
