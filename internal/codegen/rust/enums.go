package rust

import (
	"github.com/cobia-platform/cidlgen/internal/cidl"
	"github.com/cobia-platform/cidlgen/internal/codegen/writer"
)

// isBitFlag reports whether an enumeration is bit-flag shaped: at least
// two items, every value nonzero and a power of two. Classification is
// order-independent.
func isBitFlag(e cidl.Enumeration) bool {
	if len(e.Items) < 2 {
		return false
	}
	for _, item := range e.Items {
		if item.Value == 0 || item.Value&(item.Value-1) != 0 {
			return false
		}
	}
	return true
}

// emitEnum writes either a bitflags type or a closed enum with integer
// round-trip, reverse name lookup and a declaration-order iterator.
func (g *Generator) emitEnum(w *writer.Writer, e cidl.Enumeration) {
	if isBitFlag(e) {
		g.emitBitFlags(w, e)
		return
	}
	g.emitClosedEnum(w, e)
}

func (g *Generator) emitBitFlags(w *writer.Writer, e cidl.Enumeration) {
	w.Line("bitflags! {")
	w.Indent()
	w.Line("#[derive(Clone, Copy, Debug, PartialEq, Eq, Hash)]")
	w.Linef("pub struct %s: u32 {", e.Name)
	w.Indent()
	for _, item := range e.Items {
		w.Linef("const %s = %d;", toPascalCase(item.Name), item.Value)
	}
	w.Dedent()
	w.Line("}")
	w.Dedent()
	w.Line("}")
	w.BlankLine()
}

func (g *Generator) emitClosedEnum(w *writer.Writer, e cidl.Enumeration) {
	name := e.Name

	w.Linef("///%s", name)
	w.Line("///")
	w.Linef("///%s enumeration", name)
	w.Line("///")
	w.Line("#[repr(i32)]")
	w.Line("#[derive(Debug,PartialEq,Eq,Clone,Copy)]")
	w.Linef("pub enum %s {", name)
	w.Indent()
	for _, item := range e.Items {
		w.Linef("%s = %d,", toPascalCase(item.Name), item.Value)
	}
	w.Dedent()
	w.Line("}")
	w.BlankLine()

	w.Linef("impl %s {", name)
	w.Indent()

	// from(i32)
	w.Linef("/// Convert from i32 to %s", name)
	w.Line("///")
	w.Line("/// # Arguments")
	w.Line("///")
	w.Linef("/// * `value` - i32 value to be converted to %s", name)
	w.Line("///")
	w.Line("/// # Examples")
	w.Line("///")
	w.Line("/// ```")
	w.Linef("///use %s::*;", g.opts.CobiaModule)
	w.Linef("///use %s::%s;", g.moduleName, name)
	for i, item := range e.Items {
		w.Linef("///let v%d=%s::from(%d);", i, name, item.Value)
		w.Linef("///assert_eq!(v%d.unwrap(),%s::%s);", i, name, toPascalCase(item.Name))
	}
	w.Line("/// ```")
	w.Linef("pub fn from(value: i32) -> Option<%s> {", name)
	w.Indent()
	w.Line("match value {")
	w.Indent()
	for _, item := range e.Items {
		w.Linef("%d => Some(%s::%s),", item.Value, name, toPascalCase(item.Name))
	}
	w.Line("_ => None,")
	w.Dedent()
	w.Line("}")
	w.Dedent()
	w.Line("}")

	// reverse name lookup
	w.Line("/// Convert to string")
	w.Line("pub fn as_string(&self) -> &str {")
	w.Indent()
	w.Line("match self {")
	w.Indent()
	for _, item := range e.Items {
		camel := toPascalCase(item.Name)
		w.Linef("Self::%s => \"%s\",", camel, camel)
	}
	w.Dedent()
	w.Line("}")
	w.Dedent()
	w.Line("}")

	varName := enumVarName(name)

	// iterator accessor
	w.Line("///get an iterator")
	w.Line("///")
	w.Line("/// # Examples")
	w.Line("///")
	w.Line("/// ```")
	w.Linef("/// use %s::*;", g.opts.CobiaModule)
	w.Linef("/// use %s::%s;", g.moduleName, name)
	w.Linef("/// for %s in %s::iter() {", varName, name)
	w.Linef("///     println!(\"{}={}\",%s,%s as i32);", varName, varName)
	w.Line("/// }")
	w.Line("/// ```")
	w.Linef("pub fn iter() -> %sIterator {", name)
	w.Indent()
	w.Linef("%sIterator { current: 0 }", name)
	w.Dedent()
	w.Line("}")
	w.Dedent()
	w.Line("}")
	w.BlankLine()

	// iterator type; walks declared items in declaration order
	w.Linef("/// %s iterator", name)
	w.Line("///")
	w.Linef("/// Iterates over all %s values", name)
	w.Line("///")
	w.Line("/// # Examples")
	w.Line("///")
	w.Line("/// ```")
	w.Linef("/// use %s::*;", g.opts.CobiaModule)
	w.Linef("/// use %s::%s;", g.moduleName, name)
	w.Linef("/// for %s in %s::iter() {", varName, name)
	w.Linef("///     println!(\"{}={}\",%s,%s as i32);", varName, varName)
	w.Line("/// }")
	w.Line("/// ```")
	w.Linef("pub struct %sIterator {", name)
	w.Indent()
	w.Line("current: i32,")
	w.Dedent()
	w.Line("}")
	w.Linef("impl Iterator for %sIterator {", name)
	w.Indent()
	w.Linef("type Item = %s;", name)
	w.Line("fn next(&mut self) -> Option<Self::Item> {")
	w.Indent()
	w.Line("let result = match self.current {")
	w.Indent()
	for i, item := range e.Items {
		w.Linef("%d => Some(%s::%s),", i, name, toPascalCase(item.Name))
	}
	w.Line("_ => None,")
	w.Dedent()
	w.Line("};")
	w.Line("self.current+=1;")
	w.Line("result")
	w.Dedent()
	w.Line("}")
	w.Dedent()
	w.Line("}")
	w.Linef("impl fmt::Display for %s {", name)
	w.Indent()
	w.Line("fn fmt(&self, f: &mut fmt::Formatter) -> fmt::Result {")
	w.Indent()
	w.Line("write!(f,\"{}\",self.as_string())")
	w.Dedent()
	w.Line("}")
	w.Dedent()
	w.Line("}")
	w.BlankLine()
}

// enumVarName derives the loop variable used in illustrative doc comments.
func enumVarName(name string) string {
	if name == "" {
		return "_v"
	}
	c := name[0]
	if c >= 'A' && c <= 'Z' {
		return string(c-'A'+'a') + name[1:]
	}
	return "_" + name
}
