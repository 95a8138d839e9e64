package rust

import "errors"

// Validation errors. Every one of these is fatal to the whole run: the
// generator either produces a complete artifact or none. Callers layer
// argument, method and interface context on top via error wrapping.
var (
	// ErrInvalidDirection reports an argument that is not exactly one of
	// [in] or [out].
	ErrInvalidDirection = errors.New("argument must be [in] or [out]")

	// ErrRetvalWithoutOut reports a [retval] argument lacking [out].
	ErrRetvalWithoutOut = errors.New("argument is [retval] but not [out]")

	// ErrUnknownAttribute reports an unrecognized method or argument
	// attribute.
	ErrUnknownAttribute = errors.New("invalid attribute")

	// ErrArityMismatch reports a template argument count that does not
	// match the referenced interface's declared arity.
	ErrArityMismatch = errors.New("unexpected number of template arguments")

	// ErrInvalidType reports the invalid datatype category.
	ErrInvalidType = errors.New("invalid data type")

	// ErrUnsupportedType reports a direction disallowed for a category.
	ErrUnsupportedType = errors.New("unsupported type usage")

	// ErrUnresolvedInterface reports a failed template-arity lookup.
	ErrUnresolvedInterface = errors.New("unable to resolve interface")

	// ErrNonResultReturn reports a method whose return type is not a
	// CapeResult.
	ErrNonResultReturn = errors.New("method does not return a CapeResult")
)
