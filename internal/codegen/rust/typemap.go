package rust

import (
	"fmt"
	"strings"

	"github.com/cobia-platform/cidlgen/internal/cidl"
)

// argKind partitions all datatype categories into the three marshaling
// shapes the emitters care about.
type argKind int

const (
	// argBasic: identical ABI and safe representation, passed by value,
	// out-parameters through a raw pointer.
	argBasic argKind = iota
	// argDataInterface: always passed by reference through a
	// direction-suffixed wrapper constructed around a raw provider pointer.
	argDataInterface
	// argInterface: reference-counted handle; ownership transfers on out.
	argInterface
)

// dataInterfaceAccessors gives the raw accessor stem for each
// data-interface category; the direction suffix is appended at mapping time.
var dataInterfaceAccessors = map[cidl.Category]string{
	cidl.CategoryString:        "as_cape_string_",
	cidl.CategoryValue:         "as_cape_value_",
	cidl.CategoryArrayString:   "as_cape_array_string_",
	cidl.CategoryArrayInteger:  "as_cape_array_integer_",
	cidl.CategoryArrayBoolean:  "as_cape_array_boolean_",
	cidl.CategoryArrayReal:     "as_cape_array_real_",
	cidl.CategoryArrayValue:    "as_cape_array_value_",
	cidl.CategoryArrayByte:     "as_cape_array_byte_",
}

// argInfo is the full mapping of one method argument: its classification,
// both representations, the conversion fragments between them, and the
// ownership behavior. Everything the member emitter writes for an argument
// comes from here.
type argInfo struct {
	kind   argKind
	in     bool
	out    bool
	retval bool

	name        string // snake-cased, keyword-escaped argument name
	rustType    string // safe representation
	rawType     string // ABI representation
	provider    string // provider trait bound for data-interface arguments
	smartPtr    string // smart-pointer type for interface arguments
	toRaw       string // fragment converting safe -> raw
	fromRaw     string // constructor name converting raw -> safe
	rawReturned string // fragment applied when writing through an out pointer
	initValue   string // initializer for raw out storage
	needRawConv bool   // explicit bidirectional conversion (window handles)
	needUnpack  bool   // fallible raw -> safe step (enumerations, generics)

	ns *nsResolver
}

// newArgInfo classifies one argument. Errors are returned without
// positional context; the member emitter wraps them with the enclosing
// argument, method and interface names.
func newArgInfo(arg cidl.Argument, iface *cidl.Interface, res cidl.Resolver, ns *nsResolver) (*argInfo, error) {
	a := &argInfo{ns: ns}
	a.name = escapeIdent(toSnakeCase(arg.Name))
	for _, attr := range arg.Attrs {
		switch attr.Name {
		case "in":
			a.in = true
		case "out":
			a.out = true
		case "retval":
			a.retval = true
		case "orphan":
			// marshaling hint, no generation effect
		default:
			return nil, fmt.Errorf("%w '%s'", ErrUnknownAttribute, attr.Name)
		}
	}
	if a.in == a.out {
		return nil, ErrInvalidDirection
	}
	if a.retval && !a.out {
		return nil, ErrRetvalWithoutOut
	}

	cm := ns.cobiaModule
	a.rustType = arg.Type.Name
	expected := 0
	processTemplates := true

	switch arg.Type.Category {
	case cidl.CategoryEnumeration:
		a.kind = argBasic
		a.initValue = "0"
		if a.rustType == "CapeEnumeration" {
			// the generic enumeration scalar needs no named enum type
			a.rawType = cm + "::C::CapeEnumeration"
			a.rustType = cm + "::CapeEnumeration"
		} else {
			nsName, typeName := ns.split(a.rustType)
			if nsName == ns.libName {
				a.rawType = ns.nativeModule + "::" + nsName + "_" + typeName
				a.rustType = typeName
			} else if converted, ok := knownNamespaces[nsName]; ok {
				a.rawType = cm + "::C::" + nsName + "_" + typeName
				a.rustType = cm + "::" + converted + "::" + typeName
			} else {
				a.rawType = nsName + "::" + typeName
				ns.foreign(nsName)
			}
			a.fromRaw = "from"
			a.toRaw = " as " + a.rawType
			a.needUnpack = true
		}

	case cidl.CategoryBoolean:
		a.kind = argBasic
		a.rawType = a.rustType
		a.initValue = "false as CapeBoolean"

	case cidl.CategoryInteger:
		a.kind = argBasic
		a.rawType = a.rustType
		a.initValue = "0"

	case cidl.CategoryResult:
		a.kind = argBasic
		a.rawType = a.rustType
		a.initValue = "COBIAERR_NOERROR"

	case cidl.CategoryReal:
		a.kind = argBasic
		a.rawType = a.rustType
		a.initValue = "0.0"

	case cidl.CategoryUUID:
		a.kind = argBasic
		a.rawType = a.rustType
		a.initValue = "CapeUUID::null()"

	case cidl.CategoryInvalid:
		return nil, ErrInvalidType

	case cidl.CategoryInterface:
		a.kind = argInterface
		expected = -1
		if arg.Type.Name == "CapeObject" {
			expected = 0
			a.rawType = cm + "::C::ICapeInterface"
			a.smartPtr = cm + "::CapeObject"
			a.toRaw = ".as_cape_interface_pointer()"
			a.rawReturned = ".detach()"
		} else {
			nsName, typeName := ns.split(a.rustType)
			a.smartPtr = smartPointerName(typeName)
			if nsName == ns.libName {
				a.rawType = ns.nativeModule + "::" + nsName + "_" + typeName
			} else if converted, ok := knownNamespaces[nsName]; ok {
				a.rawType = cm + "::C::" + nsName + "_" + typeName
				a.smartPtr = cm + "::" + converted + "::" + typeName
			} else {
				a.rawType = nsName + "::" + typeName
				ns.foreign(nsName)
				a.smartPtr = ns.nativeNamespace + "::" + a.smartPtr
			}
			a.toRaw = ".as_interface_pointer()"
			a.rawReturned = ".detach()"
		}
		if a.out {
			a.fromRaw = "attach"
		} else {
			a.fromRaw = "from_interface_pointer"
		}

	case cidl.CategoryTemplateParam:
		a.kind = argInterface
		a.rawType = cm + "::C::ICapeInterface"
		a.toRaw = ".as_cape_interface_pointer()"
		a.fromRaw = "from_object"
		a.rawReturned = ".detach() as *mut " + cm + "::C::ICapeInterface"
		a.needUnpack = true
		idx := arg.Type.TemplateIndex
		if idx < 0 || idx >= len(iface.TemplateParams) {
			return nil, fmt.Errorf("invalid template argument: index %d out of range", idx)
		}
		a.rustType = iface.TemplateParams[idx]
		a.smartPtr = a.rustType
		expected = 0

	case cidl.CategoryString, cidl.CategoryValue, cidl.CategoryArrayString,
		cidl.CategoryArrayInteger, cidl.CategoryArrayBoolean,
		cidl.CategoryArrayReal, cidl.CategoryArrayValue, cidl.CategoryArrayByte:
		a.kind = argDataInterface
		a.rawType = cm + "::C::I" + a.rustType
		a.provider = a.rustType + "Provider"
		dir, lower := directionSuffix(a.out)
		a.rustType += dir
		a.provider += dir
		a.toRaw = "." + dataInterfaceAccessors[arg.Type.Category] + lower + "() as *const " + a.rawType

	case cidl.CategoryArrayEnumeration:
		a.kind = argDataInterface
		a.provider = a.rustType + "Provider"
		dir, lower := directionSuffix(a.out)
		a.rustType += dir
		a.provider += dir
		a.rawType = cm + "::C::ICapeArrayEnumeration"
		a.toRaw = ".as_cape_array_enumeration_" + lower + "() as *const " + a.rawType
		if len(arg.Type.TemplateArgs) != 1 {
			return nil, fmt.Errorf("%w: CapeArrayEnumeration must have one template argument", ErrArityMismatch)
		}
		processTemplates = false
		elem := arg.Type.TemplateArgs[0]
		if elem.Category != cidl.CategoryEnumeration {
			return nil, fmt.Errorf("%w: CapeArrayEnumeration template argument must be an enumeration", ErrUnsupportedType)
		}
		a.rustType += "<" + ns.localize(elem.Name) + ">"

	case cidl.CategoryWindowID:
		// window handles pass by value and only travel into the component
		a.kind = argBasic
		a.rawType = cm + "::C::CapeWindowId"
		if a.out {
			return nil, fmt.Errorf("%w: CapeWindowId must be [in]", ErrUnsupportedType)
		}
		a.needRawConv = true

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, arg.Type.Category)
	}

	if processTemplates {
		if err := a.addTemplateArgs(a.rustType, arg.Type, expected, iface, res); err != nil {
			return nil, err
		}
	}
	if a.rawReturned == "" {
		a.rawReturned = a.toRaw
	}
	a.rustType = ns.localize(a.rustType)
	return a, nil
}

// addTemplateArgs appends the instantiated template argument list to both
// the safe type name and the smart-pointer type name. When expected is -1
// the referenced interface's declared arity is looked up via the resolver.
func (a *argInfo) addTemplateArgs(typeName string, t cidl.DataType, expected int, iface *cidl.Interface, res cidl.Resolver) error {
	if expected == -1 {
		ref, err := res.Interface(typeName)
		if err != nil {
			return fmt.Errorf("%w '%s': %v", ErrUnresolvedInterface, a.rustType, err)
		}
		expected = len(ref.TemplateParams)
	}
	if expected != len(t.TemplateArgs) {
		return ErrArityMismatch
	}
	if expected == 0 {
		return nil
	}
	a.rustType += "<"
	a.smartPtr += "<"
	for i, ta := range t.TemplateArgs {
		if i > 0 {
			a.rustType += ","
			a.smartPtr += ","
		}
		switch ta.Category {
		case cidl.CategoryTemplateParam:
			if ta.TemplateIndex < 0 || ta.TemplateIndex >= len(iface.TemplateParams) {
				return fmt.Errorf("invalid template argument: index %d out of range", ta.TemplateIndex)
			}
			name := iface.TemplateParams[ta.TemplateIndex]
			a.rustType += name
			a.smartPtr += name
			if len(ta.TemplateArgs) > 0 {
				return fmt.Errorf("%w: template argument cannot have template arguments", ErrArityMismatch)
			}
		case cidl.CategoryInterface:
			if ta.Name == "CapeObject" {
				a.rustType += a.ns.cobiaModule + "::C::ICapeInterface"
				a.smartPtr += a.ns.cobiaModule + "::CapeObject"
				continue
			}
			a.rustType += a.ns.localize(ta.Name)
			nsName, tn := a.ns.split(ta.Name)
			sp := smartPointerName(tn)
			if nsName == a.ns.libName {
				a.smartPtr += sp
			} else {
				// assume imported under its own namespace
				a.smartPtr += nsName + "::" + sp
				a.ns.foreign(nsName)
			}
			if err := a.addTemplateArgs(ta.Name, ta, -1, iface, res); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: invalid template argument type '%s'", ErrUnsupportedType, ta.Name)
		}
	}
	a.rustType += ">"
	a.smartPtr += ">"
	return nil
}

// smartPointerName derives a smart-pointer type name from an interface
// name: the conventional leading I is stripped, anything else gets a T
// prefix.
func smartPointerName(interfaceName string) string {
	if strings.HasPrefix(interfaceName, "I") {
		return interfaceName[1:]
	}
	return "T" + interfaceName
}

func directionSuffix(out bool) (string, string) {
	if out {
		return "Out", "out"
	}
	return "In", "in"
}

// smartPtrFromPointer renders the constructor path for building the smart
// pointer from a raw pointer, turbofishing any template argument list.
func (a *argInfo) smartPtrFromPointer() string {
	if a.fromRaw == "" {
		return a.smartPtr
	}
	var b strings.Builder
	for _, c := range a.smartPtr {
		if c == '<' {
			b.WriteString("::")
		}
		b.WriteRune(c)
	}
	b.WriteString("::")
	b.WriteString(a.fromRaw)
	return b.String()
}

// turbofish inserts :: before each template argument list of a type name
// so it can be used in expression position.
func turbofish(typeName string) string {
	var b strings.Builder
	for _, c := range typeName {
		if c == '<' {
			b.WriteString("::")
		}
		b.WriteRune(c)
	}
	return b.String()
}

// dataInterfaceToRaw renders the expression passing a data-interface
// wrapper across the ABI boundary.
func (a *argInfo) dataInterfaceToRaw() string {
	return "(&" + a.name + a.toRaw + ").cast_mut()"
}

// convertToRaw and convertFromRaw handle categories with an explicit
// bidirectional conversion function; currently only window handles.
func (a *argInfo) convertToRaw() string {
	return a.ns.cobiaModule + "::CapeWindowIdToRaw(" + a.name + ")"
}

func (a *argInfo) convertFromRaw() string {
	return a.ns.cobiaModule + "::CapeWindowIdFromRaw(" + a.name + ")"
}
