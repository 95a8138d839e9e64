package cidl

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSource = `
// component interface description
[uuid(678c0b16-7d16-11d2-a67d-00105a42887f)]
library MyPackage {
	[uuid(678c0b17-7d16-11d2-a67d-00105a42887f)]
	category CATID_Component;

	enum PhaseState {
		SOLID = 1,
		LIQUID = 2,
		VAPOR = 4
	};

	/* generic collection */
	[uuid(678c0b18-7d16-11d2-a67d-00105a42887f)]
	interface ICapeCollection<T> {
		CapeResult Item([in] CapeInteger index, [out,retval] T item);
		[property_get] CapeResult Count([out,retval] CapeInteger count);
	};

	[uuid(678c0b19-7d16-11d2-a67d-00105a42887f)]
	interface ICalculator {
		[long_name(ComputeAll)] CapeResult Calc([in] PhaseState phase, [in] CapeString name);
		CapeResult Parts([in] ICapeCollection<ICalculator> parts);
	};
};
`

func parseSample(t *testing.T) *Library {
	t.Helper()
	libs, err := Parse(sampleSource, "sample.cidl")
	require.NoError(t, err)
	require.Len(t, libs, 1)
	return libs[0]
}

func TestParse_Library(t *testing.T) {
	// Test: Library header with uuid attribute and category declaration
	lib := parseSample(t)

	assert.Equal(t, "MyPackage", lib.Name)
	assert.Equal(t, uuid.MustParse("678c0b16-7d16-11d2-a67d-00105a42887f"), lib.ID)
	require.Len(t, lib.Categories, 1)
	assert.Equal(t, "CATID_Component", lib.Categories[0].Name)
	assert.Equal(t, uuid.MustParse("678c0b17-7d16-11d2-a67d-00105a42887f"), lib.Categories[0].ID)
}

func TestParse_Enum(t *testing.T) {
	// Test: Enumeration items keep declaration order and values
	lib := parseSample(t)

	require.Len(t, lib.Enums, 1)
	e := lib.Enums[0]
	assert.Equal(t, "PhaseState", e.Name)
	require.Len(t, e.Items, 3)
	assert.Equal(t, EnumItem{Name: "SOLID", Value: 1}, e.Items[0])
	assert.Equal(t, EnumItem{Name: "LIQUID", Value: 2}, e.Items[1])
	assert.Equal(t, EnumItem{Name: "VAPOR", Value: 4}, e.Items[2])
}

func TestParse_GenericInterface(t *testing.T) {
	// Test: Template parameters, method attributes and argument
	// directions all survive parsing
	lib := parseSample(t)

	require.Len(t, lib.Interfaces, 2)
	coll := lib.Interfaces[0]
	assert.Equal(t, "ICapeCollection", coll.Name)
	assert.Equal(t, []string{"T"}, coll.TemplateParams)
	require.Len(t, coll.Methods, 2)

	item := coll.Methods[0]
	assert.Equal(t, "Item", item.Name)
	assert.Equal(t, CategoryResult, item.Return.Category)
	require.Len(t, item.Args, 2)
	assert.Equal(t, attrNames(item.Args[0].Attrs), []string{"in"})
	assert.Equal(t, CategoryInteger, item.Args[0].Type.Category)
	assert.Equal(t, attrNames(item.Args[1].Attrs), []string{"out", "retval"})
	assert.Equal(t, CategoryTemplateParam, item.Args[1].Type.Category)
	assert.Equal(t, 0, item.Args[1].Type.TemplateIndex)

	count := coll.Methods[1]
	assert.Equal(t, attrNames(count.Attrs), []string{"property_get"})
}

func attrNames(attrs []Attribute) []string {
	names := make([]string, 0, len(attrs))
	for _, a := range attrs {
		names = append(names, a.Name)
	}
	return names
}

func TestParse_TypeResolution(t *testing.T) {
	// Test: Named types resolve to enumerations, data interfaces resolve
	// from keywords, and everything else is an interface reference
	lib := parseSample(t)

	calc := lib.Interfaces[1]
	calcMethod := calc.Methods[0]
	require.Len(t, calcMethod.Attrs, 1)
	assert.Equal(t, "long_name", calcMethod.Attrs[0].Name)
	assert.Equal(t, "ComputeAll", calcMethod.Attrs[0].Value)

	assert.Equal(t, CategoryEnumeration, calcMethod.Args[0].Type.Category)
	assert.Equal(t, CategoryString, calcMethod.Args[1].Type.Category)

	parts := calc.Methods[1].Args[0]
	assert.Equal(t, CategoryInterface, parts.Type.Category)
	assert.Equal(t, "ICapeCollection", parts.Type.Name)
	require.Len(t, parts.Type.TemplateArgs, 1)
	assert.Equal(t, CategoryInterface, parts.Type.TemplateArgs[0].Category)
	assert.Equal(t, "ICalculator", parts.Type.TemplateArgs[0].Name)
}

func TestParse_QualifiedTypes(t *testing.T) {
	// Test: Namespace-qualified references parse and resolve against any
	// parsed library's enumerations
	src := `
[uuid(678c0b16-7d16-11d2-a67d-00105a42887f)]
library First {
	enum Mode { ON = 0, OFF = 1 };
};
[uuid(678c0b17-7d16-11d2-a67d-00105a42887f)]
library Second {
	[uuid(678c0b18-7d16-11d2-a67d-00105a42887f)]
	interface IUser {
		CapeResult Apply([in] First::Mode mode, [in] Other::IThing thing);
	};
};
`
	libs, err := Parse(src, "multi.cidl")
	require.NoError(t, err)
	require.Len(t, libs, 2)

	args := libs[1].Interfaces[0].Methods[0].Args
	assert.Equal(t, CategoryEnumeration, args[0].Type.Category)
	assert.Equal(t, "First::Mode", args[0].Type.Name)
	assert.Equal(t, CategoryInterface, args[1].Type.Category)
	assert.Equal(t, "Other::IThing", args[1].Type.Name)
}

func TestParse_Errors(t *testing.T) {
	// Test: Malformed input fails with a positioned diagnostic
	tests := []struct {
		name     string
		src      string
		expected string
	}{
		{
			"missing library uuid",
			`library Foo {};`,
			"missing a uuid attribute",
		},
		{
			"malformed uuid",
			`[uuid(not-a-uuid)] library Foo {};`,
			"malformed uuid",
		},
		{
			"missing interface uuid",
			`[uuid(678c0b16-7d16-11d2-a67d-00105a42887f)]
			library Foo { interface IThing {}; };`,
			"interface IThing is missing a uuid attribute",
		},
		{
			"enum item without value",
			`[uuid(678c0b16-7d16-11d2-a67d-00105a42887f)]
			library Foo { enum E { A = }; };`,
			"expected value for enumeration item A",
		},
		{
			"unexpected declaration",
			`[uuid(678c0b16-7d16-11d2-a67d-00105a42887f)]
			library Foo { struct S; };`,
			"expected category, enum or interface",
		},
		{
			"unterminated block comment",
			`/* no end`,
			"unterminated block comment",
		},
		{
			"stray character",
			`[uuid(678c0b16-7d16-11d2-a67d-00105a42887f)]
			library Foo { @ };`,
			"unexpected character",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.src, "bad.cidl")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.expected)
			assert.Contains(t, err.Error(), "bad.cidl")
		})
	}
}

func TestParse_HexAndNegativeValues(t *testing.T) {
	// Test: Enumeration values accept hex and negative literals
	src := `
[uuid(678c0b16-7d16-11d2-a67d-00105a42887f)]
library Foo {
	enum E { A = 0x10, B = -1 };
};
`
	libs, err := Parse(src, "values.cidl")
	require.NoError(t, err)
	items := libs[0].Enums[0].Items
	assert.Equal(t, int32(16), items[0].Value)
	assert.Equal(t, int32(-1), items[1].Value)
}
