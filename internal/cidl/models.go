// Package cidl holds the parsed, resolved model of a CAPE-OPEN CIDL
// description. Code generators treat everything in this package as
// read-only input.
package cidl

import "github.com/google/uuid"

// Category classifies a DataType node.
type Category int

const (
	CategoryInvalid Category = iota
	CategoryEnumeration
	CategoryBoolean
	CategoryInteger
	CategoryResult
	CategoryReal
	CategoryUUID
	CategoryWindowID
	CategoryString
	CategoryValue
	CategoryArrayString
	CategoryArrayInteger
	CategoryArrayBoolean
	CategoryArrayReal
	CategoryArrayValue
	CategoryArrayByte
	CategoryArrayEnumeration
	CategoryInterface
	CategoryTemplateParam
)

var categoryNames = map[Category]string{
	CategoryInvalid:          "invalid",
	CategoryEnumeration:      "enumeration",
	CategoryBoolean:          "boolean",
	CategoryInteger:          "integer",
	CategoryResult:           "result",
	CategoryReal:             "real",
	CategoryUUID:             "uuid",
	CategoryWindowID:         "window-id",
	CategoryString:           "string",
	CategoryValue:            "value",
	CategoryArrayString:      "array-string",
	CategoryArrayInteger:     "array-integer",
	CategoryArrayBoolean:     "array-boolean",
	CategoryArrayReal:        "array-real",
	CategoryArrayValue:       "array-value",
	CategoryArrayByte:        "array-byte",
	CategoryArrayEnumeration: "array-enumeration",
	CategoryInterface:        "interface",
	CategoryTemplateParam:    "template-parameter",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "unknown"
}

// Library is the root of a parsed CIDL unit.
type Library struct {
	Name       string
	ID         uuid.UUID
	Categories []CategoryID
	Enums      []Enumeration
	Interfaces []Interface
}

// CategoryID is a registration category identifier declared by a library.
type CategoryID struct {
	Name string
	ID   uuid.UUID
}

// Enumeration is a named list of (item, value) pairs in declaration order.
type Enumeration struct {
	Name  string
	Items []EnumItem
}

// EnumItem is a single enumeration member.
type EnumItem struct {
	Name  string
	Value int32
}

// Interface describes a reference-counted component interface. It may be
// generic over template parameters, each of which is constrained to be a
// smart-pointer type.
type Interface struct {
	Name           string
	ID             uuid.UUID
	TemplateParams []string
	Methods        []Method
}

// Attribute is a name/value pair attached to a method or argument.
// Value is empty for flag-style attributes such as [in].
type Attribute struct {
	Name  string
	Value string
}

// Method is a single interface operation. Return must classify as
// CategoryResult; the generator rejects anything else.
type Method struct {
	Name   string
	Attrs  []Attribute
	Args   []Argument
	Return DataType
}

// Argument is a method parameter with direction attributes.
type Argument struct {
	Name  string
	Attrs []Attribute
	Type  DataType
}

// DataType is a tagged union over type categories. Name carries the
// possibly namespace-qualified name as written in the source.
// TemplateIndex is meaningful only for CategoryTemplateParam and indexes
// the enclosing interface's TemplateParams.
type DataType struct {
	Category      Category
	Name          string
	TemplateArgs  []DataType
	TemplateIndex int
}
