// Package codegen defines the language-independent code generation
// surface: the Generator interface implemented by per-language emitters
// and the Registry used by the command layer to select one.
package codegen

import "github.com/cobia-platform/cidlgen/internal/cidl"

// Generator is implemented by every language-specific binding generator.
type Generator interface {
	// Generate emits the complete binding source for one library. The
	// resolver answers template-arity queries for interface references
	// whose arity is not syntactically evident.
	Generate(lib *cidl.Library, resolver cidl.Resolver) ([]byte, error)

	// Language returns the name of the target language (e.g. "rust").
	Language() string

	// FileExtension returns the extension for generated files (e.g. ".rs").
	FileExtension() string
}

// Options carries the naming knobs shared by binding generators.
type Options struct {
	// CobiaModule is the module under which references to the binding
	// runtime are qualified in generated code. Defaults to "cobia".
	CobiaModule string

	// ModuleName is the display-only module name used in illustrative
	// documentation comments. Defaults to the snake-cased library name.
	ModuleName string

	// NativeModule qualifies locally-defined interface types in raw
	// ABI-facing code. Defaults to "C".
	NativeModule string

	// NativeNamespace prefixes locally-defined interface names in raw
	// ABI-facing code. Defaults to the library name.
	NativeNamespace string
}
