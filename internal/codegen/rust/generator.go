package rust

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/cobia-platform/cidlgen/internal/cidl"
	"github.com/cobia-platform/cidlgen/internal/codegen/writer"
)

// Options are the naming knobs of the Rust generator; see codegen.Options.
type Options struct {
	CobiaModule     string
	ModuleName      string
	NativeModule    string
	NativeNamespace string
}

// Generator emits Rust bindings for one CIDL library.
type Generator struct {
	opts       Options
	moduleName string
}

// NewGenerator creates a Rust binding generator.
func NewGenerator(opts Options) *Generator {
	if opts.CobiaModule == "" {
		opts.CobiaModule = "cobia"
	}
	if opts.NativeModule == "" {
		opts.NativeModule = "C"
	}
	return &Generator{opts: opts}
}

// Language returns the name of the target language.
func (g *Generator) Language() string {
	return "rust"
}

// FileExtension returns the file extension for generated files.
func (g *Generator) FileExtension() string {
	return ".rs"
}

// Generate emits the complete binding module for a library, in fixed
// order: file marker, use declarations, identifier constants,
// enumerations, then interfaces in declaration order. Output is
// deterministic for identical input.
func (g *Generator) Generate(lib *cidl.Library, resolver cidl.Resolver) ([]byte, error) {
	if g.opts.NativeNamespace == "" {
		g.opts.NativeNamespace = lib.Name
	}
	g.moduleName = g.opts.ModuleName
	if g.moduleName == "" {
		// the display module name follows the crate naming convention
		g.moduleName = strings.Replace(toSnakeCase(lib.Name), "capeopen", "cape_open", 1)
	}
	ns := newNSResolver(lib.Name, g.opts)
	cm := g.opts.CobiaModule

	// body first, so that foreign namespaces encountered while mapping
	// interface members are known by the time the header is written
	body := writer.New("\t")

	if len(lib.Enums) > 0 {
		body.Line("")
		body.Line("//Enumerations")
		body.Line("")
		for _, e := range lib.Enums {
			g.emitEnum(body, e)
		}
	}

	if len(lib.Interfaces) > 0 {
		body.Line("")
		body.Line("//Interfaces")
		body.Line("")
		for i := range lib.Interfaces {
			if err := g.emitInterface(body, &lib.Interfaces[i], resolver, ns); err != nil {
				return nil, err
			}
		}
	}

	w := writer.New("\t")
	w.Line("// This file was generated by cidlgen")

	hasTemplates := false
	for _, iface := range lib.Interfaces {
		if len(iface.TemplateParams) > 0 {
			hasTemplates = true
			break
		}
	}
	if len(lib.Interfaces) > 0 {
		w.Linef("use %s::*;", cm)
		w.Linef("use %s::cape_smart_pointer::CapeSmartPointer;", cm)
		if hasTemplates {
			w.Line("use std::marker::PhantomData;")
		}
	} else {
		w.Linef("use %s::CapeUUID;", cm)
	}
	if len(lib.Enums) > 0 {
		w.Line("use std::fmt;")
		hasBitFlags := false
		for _, e := range lib.Enums {
			if isBitFlag(e) {
				hasBitFlags = true
				break
			}
		}
		if hasBitFlags {
			w.Line("use bitflags::bitflags;")
		}
	}
	if foreign := ns.foreignList(); len(foreign) > 0 {
		w.Linef("// external namespaces referenced but not imported: %s", strings.Join(foreign, ", "))
	}

	w.Line("")
	w.Line("//library ID")
	w.Linef("pub const LIBRARY_ID:CapeUUID=%s;", formatUUID(lib.ID))

	if len(lib.Categories) > 0 {
		w.Line("")
		w.Line("//Category IDs")
		for _, cat := range lib.Categories {
			w.Linef("pub const CATEGORYID_%s:CapeUUID=%s;", strings.ToUpper(cat.Name), formatUUID(cat.ID))
		}
	}

	if len(lib.Interfaces) > 0 {
		w.Line("")
		w.Line("//Interface IDs")
		for _, iface := range lib.Interfaces {
			w.Linef("pub const %s_UUID:CapeUUID=%s;", strings.ToUpper(iface.Name), formatUUID(iface.ID))
		}
	}

	w.Write(body.String())

	return w.Bytes(), nil
}

// formatUUID renders a unique identifier as a CapeUUID byte-slice
// constructor.
func formatUUID(id uuid.UUID) string {
	var b strings.Builder
	b.WriteString("CapeUUID::from_slice(&[")
	for i, octet := range id {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "0x%02xu8", octet)
	}
	b.WriteString("])")
	return b.String()
}
