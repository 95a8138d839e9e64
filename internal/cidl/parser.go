package cidl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// builtinCategories maps CIDL type keywords to their category. Any other
// type name resolves against the enclosing interface's template parameters,
// the declared enumerations, and finally defaults to an interface reference.
var builtinCategories = map[string]Category{
	"CapeBoolean":          CategoryBoolean,
	"CapeInteger":          CategoryInteger,
	"CapeReal":             CategoryReal,
	"CapeResult":           CategoryResult,
	"CapeUUID":             CategoryUUID,
	"CapeWindowId":         CategoryWindowID,
	"CapeString":           CategoryString,
	"CapeValue":            CategoryValue,
	"CapeArrayString":      CategoryArrayString,
	"CapeArrayInteger":     CategoryArrayInteger,
	"CapeArrayBoolean":     CategoryArrayBoolean,
	"CapeArrayReal":        CategoryArrayReal,
	"CapeArrayValue":       CategoryArrayValue,
	"CapeArrayByte":        CategoryArrayByte,
	"CapeArrayEnumeration": CategoryArrayEnumeration,
	"CapeEnumeration":      CategoryEnumeration,
}

// Parse parses CIDL source text into libraries with fully categorized
// datatype nodes. filename is used in diagnostics only.
func Parse(src, filename string) ([]*Library, error) {
	p := &parser{lex: newLexer(src, filename)}
	p.next()

	var libs []*Library
	for p.err == nil && p.tok.kind != tokEOF {
		lib, err := p.parseLibrary()
		if err != nil {
			return nil, err
		}
		libs = append(libs, lib)
	}
	if p.err != nil {
		return nil, p.err
	}
	for _, lib := range libs {
		if err := resolveTypes(lib, libs); err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
	}
	return libs, nil
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokPunct
)

type token struct {
	kind tokenKind
	text string
	line int
	col  int
}

type lexer struct {
	src      string
	filename string
	pos      int
	line     int
	col      int
}

func newLexer(src, filename string) *lexer {
	return &lexer{src: src, filename: filename, line: 1, col: 1}
}

func (l *lexer) advance() byte {
	c := l.src[l.pos]
	l.pos++
	if c == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return c
}

func (l *lexer) skipSpace() error {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.advance()
		case c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '/':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.advance()
			}
		case c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '*':
			l.advance()
			l.advance()
			for {
				if l.pos >= len(l.src) {
					return fmt.Errorf("%s:%d:%d: unterminated block comment", l.filename, l.line, l.col)
				}
				if l.src[l.pos] == '*' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '/' {
					l.advance()
					l.advance()
					break
				}
				l.advance()
			}
		default:
			return nil
		}
	}
	return nil
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func (l *lexer) scan() (token, error) {
	if err := l.skipSpace(); err != nil {
		return token{}, err
	}
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, line: l.line, col: l.col}, nil
	}
	line, col := l.line, l.col
	c := l.src[l.pos]
	switch {
	case isIdentStart(c):
		start := l.pos
		for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
			l.advance()
		}
		return token{kind: tokIdent, text: l.src[start:l.pos], line: line, col: col}, nil
	case c >= '0' && c <= '9' || c == '-':
		start := l.pos
		l.advance()
		for l.pos < len(l.src) && (isIdentPart(l.src[l.pos])) {
			l.advance()
		}
		return token{kind: tokNumber, text: l.src[start:l.pos], line: line, col: col}, nil
	case c == ':':
		l.advance()
		if l.pos < len(l.src) && l.src[l.pos] == ':' {
			l.advance()
			return token{kind: tokPunct, text: "::", line: line, col: col}, nil
		}
		return token{}, fmt.Errorf("%s:%d:%d: unexpected ':'", l.filename, line, col)
	case strings.IndexByte("{}[]()<>,;=", c) >= 0:
		l.advance()
		return token{kind: tokPunct, text: string(c), line: line, col: col}, nil
	default:
		return token{}, fmt.Errorf("%s:%d:%d: unexpected character %q", l.filename, line, col, string(c))
	}
}

// rawUntil consumes raw text up to (but not including) the given closing
// character. Used for attribute values such as uuid(...) and long_name(...).
func (l *lexer) rawUntil(close byte) (string, error) {
	start := l.pos
	for l.pos < len(l.src) && l.src[l.pos] != close {
		l.advance()
	}
	if l.pos >= len(l.src) {
		return "", fmt.Errorf("%s:%d:%d: unterminated attribute value", l.filename, l.line, l.col)
	}
	return strings.TrimSpace(l.src[start:l.pos]), nil
}

type parser struct {
	lex *lexer
	tok token
	err error
}

func (p *parser) next() {
	if p.err != nil {
		return
	}
	p.tok, p.err = p.lex.scan()
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("%s:%d:%d: %s", p.lex.filename, p.tok.line, p.tok.col, fmt.Sprintf(format, args...))
}

func (p *parser) expectPunct(text string) error {
	if p.err != nil {
		return p.err
	}
	if p.tok.kind != tokPunct || p.tok.text != text {
		return p.errorf("expected %q, found %q", text, p.tok.text)
	}
	p.next()
	return p.err
}

func (p *parser) expectIdent() (string, error) {
	if p.err != nil {
		return "", p.err
	}
	if p.tok.kind != tokIdent {
		return "", p.errorf("expected identifier, found %q", p.tok.text)
	}
	name := p.tok.text
	p.next()
	return name, p.err
}

func (p *parser) expectKeyword(kw string) error {
	name, err := p.expectIdent()
	if err != nil {
		return err
	}
	if name != kw {
		return p.errorf("expected %q, found %q", kw, name)
	}
	return nil
}

func (p *parser) isPunct(text string) bool {
	return p.err == nil && p.tok.kind == tokPunct && p.tok.text == text
}

// parseAttrs parses an optional [name, name(value), ...] attribute block.
func (p *parser) parseAttrs() ([]Attribute, error) {
	if !p.isPunct("[") {
		return nil, p.err
	}
	p.next()
	var attrs []Attribute
	for {
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		attr := Attribute{Name: name}
		if p.isPunct("(") {
			// the value runs raw to the closing parenthesis; this keeps
			// uuid and long_name values out of the token grammar
			value, err := p.lex.rawUntil(')')
			if err != nil {
				return nil, err
			}
			attr.Value = value
			p.next() // resynchronize on ')'
			if err := p.expectPunct(")"); err != nil {
				return nil, err
			}
		}
		attrs = append(attrs, attr)
		if p.isPunct(",") {
			p.next()
			continue
		}
		break
	}
	if err := p.expectPunct("]"); err != nil {
		return nil, err
	}
	return attrs, nil
}

func attrValue(attrs []Attribute, name string) (string, bool) {
	for _, a := range attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

func (p *parser) parseUUIDAttr(attrs []Attribute, owner string) (uuid.UUID, error) {
	value, ok := attrValue(attrs, "uuid")
	if !ok {
		return uuid.UUID{}, p.errorf("%s is missing a uuid attribute", owner)
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.UUID{}, p.errorf("%s has malformed uuid %q: %v", owner, value, err)
	}
	return id, nil
}

func (p *parser) parseLibrary() (*Library, error) {
	attrs, err := p.parseAttrs()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("library"); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	lib := &Library{Name: name}
	if lib.ID, err = p.parseUUIDAttr(attrs, "library "+name); err != nil {
		return nil, err
	}
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	for !p.isPunct("}") {
		if p.err != nil {
			return nil, p.err
		}
		if err := p.parseLibraryItem(lib); err != nil {
			return nil, err
		}
	}
	p.next()
	if p.isPunct(";") {
		p.next()
	}
	return lib, p.err
}

func (p *parser) parseLibraryItem(lib *Library) error {
	attrs, err := p.parseAttrs()
	if err != nil {
		return err
	}
	if p.tok.kind != tokIdent {
		return p.errorf("expected declaration, found %q", p.tok.text)
	}
	switch p.tok.text {
	case "category":
		p.next()
		name, err := p.expectIdent()
		if err != nil {
			return err
		}
		id, err := p.parseUUIDAttr(attrs, "category "+name)
		if err != nil {
			return err
		}
		lib.Categories = append(lib.Categories, CategoryID{Name: name, ID: id})
		return p.expectPunct(";")
	case "enum":
		p.next()
		return p.parseEnum(lib)
	case "interface":
		p.next()
		return p.parseInterface(lib, attrs)
	default:
		return p.errorf("expected category, enum or interface, found %q", p.tok.text)
	}
}

func (p *parser) parseEnum(lib *Library) error {
	name, err := p.expectIdent()
	if err != nil {
		return err
	}
	enum := Enumeration{Name: name}
	if err := p.expectPunct("{"); err != nil {
		return err
	}
	for !p.isPunct("}") {
		itemName, err := p.expectIdent()
		if err != nil {
			return err
		}
		if err := p.expectPunct("="); err != nil {
			return err
		}
		if p.tok.kind != tokNumber {
			return p.errorf("expected value for enumeration item %s, found %q", itemName, p.tok.text)
		}
		value, err := strconv.ParseInt(p.tok.text, 0, 32)
		if err != nil {
			return p.errorf("enumeration item %s has malformed value %q", itemName, p.tok.text)
		}
		p.next()
		enum.Items = append(enum.Items, EnumItem{Name: itemName, Value: int32(value)})
		if p.isPunct(",") {
			p.next()
		}
	}
	p.next()
	if p.isPunct(";") {
		p.next()
	}
	lib.Enums = append(lib.Enums, enum)
	return p.err
}

func (p *parser) parseInterface(lib *Library, attrs []Attribute) error {
	name, err := p.expectIdent()
	if err != nil {
		return err
	}
	iface := Interface{Name: name}
	if iface.ID, err = p.parseUUIDAttr(attrs, "interface "+name); err != nil {
		return err
	}
	if p.isPunct("<") {
		p.next()
		for {
			param, err := p.expectIdent()
			if err != nil {
				return err
			}
			iface.TemplateParams = append(iface.TemplateParams, param)
			if p.isPunct(",") {
				p.next()
				continue
			}
			break
		}
		if err := p.expectPunct(">"); err != nil {
			return err
		}
	}
	if err := p.expectPunct("{"); err != nil {
		return err
	}
	for !p.isPunct("}") {
		if p.err != nil {
			return p.err
		}
		method, err := p.parseMethod()
		if err != nil {
			return err
		}
		iface.Methods = append(iface.Methods, method)
	}
	p.next()
	if p.isPunct(";") {
		p.next()
	}
	lib.Interfaces = append(lib.Interfaces, iface)
	return p.err
}

func (p *parser) parseMethod() (Method, error) {
	attrs, err := p.parseAttrs()
	if err != nil {
		return Method{}, err
	}
	ret, err := p.parseTypeRef()
	if err != nil {
		return Method{}, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return Method{}, err
	}
	method := Method{Name: name, Attrs: attrs, Return: ret}
	if err := p.expectPunct("("); err != nil {
		return Method{}, err
	}
	for !p.isPunct(")") {
		argAttrs, err := p.parseAttrs()
		if err != nil {
			return Method{}, err
		}
		argType, err := p.parseTypeRef()
		if err != nil {
			return Method{}, err
		}
		argName, err := p.expectIdent()
		if err != nil {
			return Method{}, err
		}
		method.Args = append(method.Args, Argument{Name: argName, Attrs: argAttrs, Type: argType})
		if p.isPunct(",") {
			p.next()
		}
	}
	p.next()
	if err := p.expectPunct(";"); err != nil {
		return Method{}, err
	}
	return method, nil
}

// parseTypeRef parses a possibly qualified, possibly template-instantiated
// type reference. Categories are assigned afterwards by resolveTypes.
func (p *parser) parseTypeRef() (DataType, error) {
	name, err := p.expectIdent()
	if err != nil {
		return DataType{}, err
	}
	if p.isPunct("::") {
		p.next()
		rest, err := p.expectIdent()
		if err != nil {
			return DataType{}, err
		}
		name = name + "::" + rest
	}
	t := DataType{Name: name}
	if p.isPunct("<") {
		p.next()
		for {
			arg, err := p.parseTypeRef()
			if err != nil {
				return DataType{}, err
			}
			t.TemplateArgs = append(t.TemplateArgs, arg)
			if p.isPunct(",") {
				p.next()
				continue
			}
			break
		}
		if err := p.expectPunct(">"); err != nil {
			return DataType{}, err
		}
	}
	return t, nil
}

// resolveTypes assigns categories to every datatype node of a parsed
// library: built-in keywords, then the enclosing interface's template
// parameters, then declared enumerations; anything left is an interface
// reference.
func resolveTypes(lib *Library, all []*Library) error {
	enums := make(map[string]struct{})
	for _, l := range all {
		for _, e := range l.Enums {
			enums[e.Name] = struct{}{}
			enums[l.Name+"::"+e.Name] = struct{}{}
		}
	}
	for i := range lib.Interfaces {
		iface := &lib.Interfaces[i]
		params := make(map[string]int, len(iface.TemplateParams))
		for idx, name := range iface.TemplateParams {
			params[name] = idx
		}
		for m := range iface.Methods {
			method := &iface.Methods[m]
			resolveType(&method.Return, lib, params, enums)
			for a := range method.Args {
				resolveType(&method.Args[a].Type, lib, params, enums)
			}
		}
	}
	return nil
}

func resolveType(t *DataType, lib *Library, params map[string]int, enums map[string]struct{}) {
	for i := range t.TemplateArgs {
		resolveType(&t.TemplateArgs[i], lib, params, enums)
	}
	if cat, ok := builtinCategories[t.Name]; ok {
		t.Category = cat
		return
	}
	if idx, ok := params[t.Name]; ok {
		t.Category = CategoryTemplateParam
		t.TemplateIndex = idx
		return
	}
	if _, ok := enums[t.Name]; ok {
		t.Category = CategoryEnumeration
		return
	}
	if _, ok := enums[lib.Name+"::"+t.Name]; ok {
		t.Category = CategoryEnumeration
		return
	}
	t.Category = CategoryInterface
}
