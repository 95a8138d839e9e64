package codegen

import (
	"github.com/cobia-platform/cidlgen/internal/codegen/rust"
)

// DefaultRegistry is the global registry instance with pre-registered generators.
var DefaultRegistry = NewRegistry()

func init() {
	DefaultRegistry.Register("rust", func(opts Options) Generator {
		return rust.NewGenerator(rust.Options(opts))
	})

	// rs as an alias for rust
	DefaultRegistry.Register("rs", func(opts Options) Generator {
		return rust.NewGenerator(rust.Options(opts))
	})
}
