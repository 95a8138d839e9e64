// Package rust generates Rust bindings for a CIDL library: capability
// traits, implementation-support traits with C-ABI shims and dispatch
// tables, smart-pointer proxies, and enumeration types.
package rust

import "strings"

// rustKeywords is the set of Rust reserved words. Identifiers colliding
// with one of these are escaped with a leading underscore.
var rustKeywords = map[string]struct{}{
	"as": {}, "break": {}, "const": {}, "continue": {}, "crate": {},
	"else": {}, "enum": {}, "extern": {}, "false": {}, "fn": {},
	"for": {}, "if": {}, "impl": {}, "in": {}, "let": {},
	"loop": {}, "match": {}, "mod": {}, "move": {}, "mut": {},
	"pub": {}, "ref": {}, "return": {}, "self": {}, "Self": {},
	"static": {}, "struct": {}, "super": {}, "trait": {}, "true": {},
	"type": {}, "unsafe": {}, "use": {}, "where": {}, "while": {},
	"async": {}, "await": {}, "dyn": {}, "abstract": {}, "become": {},
	"box": {}, "do": {}, "final": {}, "macro": {}, "override": {},
	"priv": {}, "typeof": {}, "unsized": {}, "virtual": {}, "yield": {},
	"try": {},
}

func isRustKeyword(word string) bool {
	_, ok := rustKeywords[word]
	return ok
}

// escapeIdent prefixes identifiers that collide with a Rust reserved word.
func escapeIdent(name string) string {
	if isRustKeyword(name) {
		return "_" + name
	}
	return name
}

// toSnakeCase lower-cases an identifier, inserting an underscore before
// each uppercase letter that follows a non-uppercase character. It is
// idempotent on identifiers that are already snake case.
func toSnakeCase(raw string) string {
	var b strings.Builder
	allowUnderscore := false
	for _, c := range raw {
		if c >= 'A' && c <= 'Z' {
			if allowUnderscore {
				b.WriteByte('_')
			}
			b.WriteByte(byte(c - 'A' + 'a'))
			allowUnderscore = false
		} else {
			b.WriteRune(c)
			allowUnderscore = true
		}
	}
	return b.String()
}

// toPascalCase turns a separator-delimited identifier into concatenated
// capitalized segments; all other letters are lower-cased.
func toPascalCase(identifier string) string {
	var b strings.Builder
	upper := true
	for _, c := range identifier {
		if c == '_' {
			upper = true
			continue
		}
		if upper {
			b.WriteRune(toUpperRune(c))
			upper = false
		} else {
			b.WriteRune(toLowerRune(c))
		}
	}
	return b.String()
}

// nativeMethodName derives the ABI shim entry-point name for a method:
// an underscore before every uppercase letter, all lower-cased, prefixed
// with the raw marker.
func nativeMethodName(identifier string) string {
	var b strings.Builder
	for _, c := range identifier {
		if c >= 'A' && c <= 'Z' {
			b.WriteByte('_')
			b.WriteByte(byte(c - 'A' + 'a'))
		} else {
			b.WriteRune(c)
		}
	}
	result := b.String()
	if len(result) == 0 || result[0] != '_' {
		result = "_" + result
	}
	return "raw" + result
}

func toUpperRune(c rune) rune {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}

func toLowerRune(c rune) rune {
	if c >= 'A' && c <= 'Z' {
		return c - 'A' + 'a'
	}
	return c
}
