package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/cobia-platform/cidlgen/internal/cidl"
	"github.com/cobia-platform/cidlgen/internal/codegen"
)

// GenerateFlags carries the generate command options.
type GenerateFlags struct {
	// Output is the destination file; empty writes to stdout.
	Output string

	// Language selects the registered binding generator.
	Language string

	// CobiaModule qualifies references to the binding runtime in
	// generated code.
	CobiaModule string

	// ModuleName is the display-only module name used in illustrative
	// documentation comments.
	ModuleName string

	// NativeModule and NativeNamespace qualify locally-defined interface
	// types in raw ABI-facing code.
	NativeModule    string
	NativeNamespace string
}

// Generate parses the given CIDL files and writes the bindings for the
// first library found. Any validation error aborts the run without
// producing output.
func (c *Controller) Generate(ctx context.Context, flags GenerateFlags, files []string) error {
	if len(files) == 0 {
		return fmt.Errorf("no input files")
	}
	code, err := c.generate(flags, files)
	if err != nil {
		return err
	}
	if flags.Output == "" {
		_, err = os.Stdout.Write(code)
		return err
	}
	if err := os.WriteFile(flags.Output, code, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", flags.Output, err)
	}
	c.Logger.Debug().Str("output", flags.Output).Int("bytes", len(code)).Msg("wrote bindings")
	return nil
}

func (c *Controller) generate(flags GenerateFlags, files []string) ([]byte, error) {
	var libs []*cidl.Library
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		parsed, err := cidl.Parse(string(data), path)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		c.Logger.Debug().Str("path", path).Int("size", len(data)).
			Int("libraries", len(parsed)).Msg("read cidl file")
		libs = append(libs, parsed...)
	}
	if len(libs) == 0 {
		return nil, fmt.Errorf("no libraries found")
	}

	language := flags.Language
	if language == "" {
		language = "rust"
	}
	gen, err := codegen.DefaultRegistry.Get(language, codegen.Options{
		CobiaModule:     flags.CobiaModule,
		ModuleName:      flags.ModuleName,
		NativeModule:    flags.NativeModule,
		NativeNamespace: flags.NativeNamespace,
	})
	if err != nil {
		return nil, err
	}

	// bindings are generated for the first library; additional libraries
	// only feed cross-reference resolution
	resolver := cidl.NewResolver(libs)
	code, err := gen.Generate(libs[0], resolver)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug().Str("library", libs[0].Name).Int("bytes", len(code)).
		Msg("generated bindings")
	return code, nil
}
