package rust

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToSnakeCase(t *testing.T) {
	// Test: Identifiers convert to snake case, idempotently
	tests := []struct {
		input    string
		expected string
	}{
		{"GetComponentName", "get_component_name"},
		{"ICapeIdentification", "icape_identification"},
		{"Add", "add"},
		{"UUID", "uuid"},
		{"value", "value"},
		{"already_snake_case", "already_snake_case"},
		{"MyLib", "my_lib"},
		{"HTTPServer", "httpserver"},
		{"", ""},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, toSnakeCase(tc.input))
		})
	}
}

func TestToPascalCase(t *testing.T) {
	// Test: Separator-delimited names become capitalized segments
	tests := []struct {
		input    string
		expected string
	}{
		{"fluid_properties", "FluidProperties"},
		{"SOLID", "Solid"},
		{"vapor", "Vapor"},
		{"CAPE_OPEN", "CapeOpen"},
		{"Solid", "Solid"},
		{"a_b_c", "ABC"},
		{"", ""},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, toPascalCase(tc.input))
		})
	}
}

func TestNativeMethodName(t *testing.T) {
	// Test: Shim entry points get the raw prefix and lower-cased words
	tests := []struct {
		input    string
		expected string
	}{
		{"Add", "raw_add"},
		{"GetComponentName", "raw_get_component_name"},
		{"getName", "raw_get_name"},
		{"calculate", "raw_calculate"},
		{"Value", "raw_value"},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, nativeMethodName(tc.input))
		})
	}
}

func TestEscapeIdent(t *testing.T) {
	// Test: Reserved words are escaped, anything else passes through
	assert.Equal(t, "_type", escapeIdent("type"))
	assert.Equal(t, "_match", escapeIdent("match"))
	assert.Equal(t, "_try", escapeIdent("try"))
	assert.Equal(t, "value", escapeIdent("value"))
	assert.Equal(t, "phase", escapeIdent("phase"))

	assert.True(t, isRustKeyword("fn"))
	assert.True(t, isRustKeyword("Self"))
	assert.False(t, isRustKeyword("cape"))
}
