// Package writer provides an indentation-aware text builder for code
// generators.
package writer

import (
	"fmt"
	"strings"
)

// Writer accumulates generated source text. Indentation is applied at the
// start of every line begun after a newline.
type Writer struct {
	sb          strings.Builder
	level       int
	indent      string
	needsIndent bool
}

// New creates a writer using the given indentation unit (e.g. "\t").
func New(indent string) *Writer {
	return &Writer{indent: indent, needsIndent: true}
}

// Indent increases the indentation level.
func (w *Writer) Indent() {
	w.level++
}

// Dedent decreases the indentation level.
func (w *Writer) Dedent() {
	if w.level > 0 {
		w.level--
	}
}

// Write appends a string without a trailing newline.
func (w *Writer) Write(s string) {
	if w.needsIndent && s != "" {
		for i := 0; i < w.level; i++ {
			w.sb.WriteString(w.indent)
		}
		w.needsIndent = false
	}
	w.sb.WriteString(s)
}

// Writef appends a formatted string without a trailing newline.
func (w *Writer) Writef(format string, args ...interface{}) {
	w.Write(fmt.Sprintf(format, args...))
}

// Line appends a string followed by a newline.
func (w *Writer) Line(s string) {
	w.Write(s)
	w.Newline()
}

// Linef appends a formatted string followed by a newline.
func (w *Writer) Linef(format string, args ...interface{}) {
	w.Writef(format, args...)
	w.Newline()
}

// Newline terminates the current line.
func (w *Writer) Newline() {
	w.sb.WriteString("\n")
	w.needsIndent = true
}

// BlankLine appends an empty line unless the output already ends with one.
func (w *Writer) BlankLine() {
	if w.sb.Len() > 0 && !strings.HasSuffix(w.sb.String(), "\n\n") {
		w.Newline()
	}
}

// String returns the accumulated text.
func (w *Writer) String() string {
	return w.sb.String()
}

// Bytes returns the accumulated text as a byte slice.
func (w *Writer) Bytes() []byte {
	return []byte(w.sb.String())
}
