package writer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriter_Indentation(t *testing.T) {
	// Test: Indentation is applied at the start of every line
	w := New("\t")
	w.Line("fn outer() {")
	w.Indent()
	w.Line("inner();")
	w.Indent()
	w.Line("deeper();")
	w.Dedent()
	w.Dedent()
	w.Line("}")

	expected := "fn outer() {\n\tinner();\n\t\tdeeper();\n}\n"
	assert.Equal(t, expected, w.String())
}

func TestWriter_WriteContinuesLine(t *testing.T) {
	// Test: Write appends to the current line without re-indenting
	w := New("  ")
	w.Indent()
	w.Write("fn add(")
	w.Write("a:i32")
	w.Write(")")
	w.Newline()

	assert.Equal(t, "  fn add(a:i32)\n", w.String())
}

func TestWriter_Formatting(t *testing.T) {
	// Test: Writef and Linef format in place
	w := New("\t")
	w.Linef("pub const %s:u32=%d;", "LIMIT", 42)
	w.Writef("let %s", "x")
	w.Line(";")

	assert.Equal(t, "pub const LIMIT:u32=42;\nlet x;\n", w.String())
}

func TestWriter_BlankLine(t *testing.T) {
	// Test: BlankLine never stacks consecutive empty lines
	w := New("\t")
	w.Line("first")
	w.BlankLine()
	w.BlankLine()
	w.Line("second")

	assert.Equal(t, "first\n\nsecond\n", w.String())
}

func TestWriter_DedentFloor(t *testing.T) {
	// Test: Dedent below zero is a no-op
	w := New("\t")
	w.Dedent()
	w.Line("top")
	assert.Equal(t, "top\n", w.String())
}

func TestWriter_Bytes(t *testing.T) {
	// Test: Bytes mirrors String
	w := New("\t")
	w.Line("content")
	assert.Equal(t, []byte(w.String()), w.Bytes())
}
