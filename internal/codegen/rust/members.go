package rust

import (
	"fmt"
	"strings"

	"github.com/cobia-platform/cidlgen/internal/cidl"
	"github.com/cobia-platform/cidlgen/internal/codegen/writer"
)

// methodNames carries the two rewritten forms of a method name: the
// capitalized form used for capability and proxy methods, and the raw form
// naming the dispatch-table slot.
type methodNames struct {
	name string
	raw  string
}

// rewriteMethodName applies method attributes: property_get and
// property_set prefix the name with the accessor marker, long_name
// replaces it wholesale. Anything else is an error.
func rewriteMethodName(m cidl.Method) (methodNames, error) {
	name, raw := m.Name, m.Name
	for _, attr := range m.Attrs {
		switch attr.Name {
		case "property_get":
			name = "Get" + name
			raw = "get" + raw
		case "property_set":
			name = "Set" + name
			raw = "put" + raw
		case "long_name":
			name = attr.Value
			raw = attr.Value
		default:
			return methodNames{}, fmt.Errorf("%w '%s'", ErrUnknownAttribute, attr.Name)
		}
	}
	return methodNames{name: name, raw: raw}, nil
}

// methodInfo is one method with its arguments fully mapped.
type methodInfo struct {
	names  methodNames
	snake  string
	native string
	args   []*argInfo
}

// context renders the Interface::Method diagnostic string baked into
// generated error paths.
func (m *methodInfo) context(ifaceName string) string {
	return ifaceName + "::" + m.names.name
}

// resultChannel returns the arguments routed into the method's result:
// retval scalars and out interfaces, in declared order.
func (m *methodInfo) resultChannel() []*argInfo {
	var retvals []*argInfo
	for _, a := range m.args {
		if (a.retval && a.kind == argBasic) || (a.kind == argInterface && a.out) {
			retvals = append(retvals, a)
		}
	}
	return retvals
}

// mapInterface validates and maps every method of an interface, attaching
// interface, method and argument context to any validation error.
func (g *Generator) mapInterface(iface *cidl.Interface, res cidl.Resolver, ns *nsResolver) ([]*methodInfo, error) {
	methods := make([]*methodInfo, 0, len(iface.Methods))
	for i := range iface.Methods {
		method := &iface.Methods[i]
		names, err := rewriteMethodName(*method)
		if err != nil {
			return nil, fmt.Errorf("method %s of interface %s: %w", method.Name, iface.Name, err)
		}
		if method.Return.Category != cidl.CategoryResult {
			return nil, fmt.Errorf("method %s of interface %s: %w", names.name, iface.Name, ErrNonResultReturn)
		}
		mi := &methodInfo{
			names:  names,
			snake:  toSnakeCase(names.name),
			native: nativeMethodName(names.name),
		}
		for _, arg := range method.Args {
			info, err := newArgInfo(arg, iface, res, ns)
			if err != nil {
				return nil, fmt.Errorf("argument %s of method %s of interface %s: %w",
					arg.Name, names.name, iface.Name, err)
			}
			mi.args = append(mi.args, info)
		}
		methods = append(methods, mi)
	}
	return methods, nil
}

// templateArgLists renders the bounded and plain template parameter lists
// of a generic interface; both are empty for non-generic interfaces.
func templateArgLists(iface *cidl.Interface) (long, short string) {
	if len(iface.TemplateParams) == 0 {
		return "", ""
	}
	var l, s strings.Builder
	l.WriteByte('<')
	s.WriteByte('<')
	for i, name := range iface.TemplateParams {
		if i > 0 {
			l.WriteByte(',')
			s.WriteByte(',')
		}
		l.WriteString(name)
		l.WriteString(":CapeSmartPointer")
		s.WriteString(name)
	}
	l.WriteByte('>')
	s.WriteByte('>')
	return l.String(), s.String()
}

// emitInterface writes the three coupled artifacts for one interface: the
// capability trait, the implementation-support trait with its ABI shims
// and dispatch table, and the smart-pointer proxy.
func (g *Generator) emitInterface(w *writer.Writer, iface *cidl.Interface, res cidl.Resolver, ns *nsResolver) error {
	methods, err := g.mapInterface(iface, res, ns)
	if err != nil {
		return err
	}
	long, short := templateArgLists(iface)

	g.emitCapabilityTrait(w, iface, methods, long)
	g.emitImplTrait(w, iface, methods, ns, long, short)
	g.emitSmartPointer(w, iface, methods, ns, long, short)
	return nil
}

func (g *Generator) emitCapabilityTrait(w *writer.Writer, iface *cidl.Interface, methods []*methodInfo, long string) {
	w.Linef("///%s", iface.Name)
	w.Line("///")
	w.Linef("///%s interface", iface.Name)
	w.Line("///")
	w.Linef("pub trait %s%s {", iface.Name, long)
	w.Indent()
	for _, m := range methods {
		retvals := m.resultChannel()
		w.Writef("fn %s(&mut self", m.snake)
		for _, a := range m.args {
			if (a.retval && a.kind == argBasic) || (a.kind == argInterface && a.out) {
				continue
			}
			if a.kind == argInterface {
				w.Writef(",%s:%s", a.name, a.smartPtr)
				continue
			}
			w.Writef(",%s:", a.name)
			switch {
			case a.kind == argBasic && a.out:
				w.Write("&mut ")
			case a.kind == argDataInterface && a.out:
				w.Write("&mut ")
			case a.kind == argDataInterface:
				w.Write("&")
			}
			w.Write(a.rustType)
		}
		w.Write(") -> Result<")
		w.Write(resultType(retvals))
		w.Line(",COBIAError>;")
	}
	w.Dedent()
	w.Line("}")
	w.BlankLine()
}

// resultType renders the result channel type: a single value unwrapped,
// zero or several as a tuple. Interface results use the smart-pointer
// type, scalars their safe representation.
func resultType(retvals []*argInfo) string {
	one := func(a *argInfo) string {
		if a.kind == argInterface {
			return a.smartPtr
		}
		return a.rustType
	}
	if len(retvals) == 1 {
		return one(retvals[0])
	}
	var b strings.Builder
	b.WriteByte('(')
	for i, a := range retvals {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(one(a))
	}
	b.WriteByte(')')
	return b.String()
}

func (g *Generator) emitImplTrait(w *writer.Writer, iface *cidl.Interface, methods []*methodInfo, ns *nsResolver, long, short string) {
	cm := g.opts.CobiaModule
	nm := g.opts.NativeModule
	nns := ns.nativeNamespace

	w.Linef("pub trait %sImpl%s : %s%s {", iface.Name, long, iface.Name, short)
	w.Indent()
	w.Linef("type T: ICapeInterfaceImpl+%sImpl%s;", iface.Name, short)
	w.Line("")
	w.Linef("fn as_interface_pointer(&mut self) -> *mut %s::C::ICapeInterface;", cm)
	w.Line("")
	w.Linef("///prepare %s_%s interface and return as generic ICapeInterface pointer", nns, iface.Name)
	w.Linef("fn init_interface() -> %s::C::ICapeInterface {", cm)
	w.Indent()
	w.Linef("%s::C::ICapeInterface {", cm)
	w.Indent()
	w.Line("me: std::ptr::null_mut(),")
	w.Linef("vTbl: (&Self::T::VTABLE as *const %s::C::%s_%s_VTable).cast_mut()", cm, nns, iface.Name)
	w.Indent()
	w.Linef("as *mut %s::C::ICapeInterface_VTable,", cm)
	w.Dedent()
	w.Dedent()
	w.Line("}")
	w.Dedent()
	w.Line("}")
	w.Line("")
	w.Linef("fn init<Timpl: %sImpl%s+ICapeInterfaceImpl>(u: &mut Timpl) {", iface.Name, short)
	w.Indent()
	w.Linef("let iface: *mut %s::C::%s_%s =", cm, nns, iface.Name)
	w.Indent()
	w.Linef("u.as_interface_pointer() as *mut %s::%s_%s;", nm, nns, iface.Name)
	w.Dedent()
	w.Line("unsafe { (*iface).me = u.get_self() as *const Timpl as *mut std::ffi::c_void };")
	w.Line("u.add_interface(")
	w.Indent()
	w.Linef("std::ptr::addr_of!(%s::%s_%s_UUID),", nm, nns, iface.Name)
	w.Linef("iface as *mut %s::C::ICapeInterface,", cm)
	w.Dedent()
	w.Line(");")
	w.Dedent()
	w.Line("}")
	w.Line("")

	for _, m := range methods {
		g.emitShim(w, iface, m, ns)
		w.Line("")
	}

	// dispatch table
	w.Linef("const VTABLE: %s::%s_%s_VTable =", nm, ns.libName, iface.Name)
	w.Indent()
	w.Linef("%s::%s_%s_VTable {", nm, ns.libName, iface.Name)
	w.Indent()
	w.Linef("base: %s::C::ICapeInterface_VTable {", cm)
	w.Indent()
	w.Line("addReference: Some(Self::T::raw_add_reference),")
	w.Line("release: Some(Self::T::raw_release),")
	w.Line("queryInterface: Some(Self::T::raw_query_interface),")
	w.Line("getLastError: Some(Self::T::raw_get_last_error),")
	w.Dedent()
	w.Line("},")
	for _, m := range methods {
		w.Linef("%s: Some(Self::T::%s),", m.names.raw, m.native)
	}
	w.Dedent()
	w.Line("};")
	w.Dedent()
	w.Dedent()
	w.Line("}")
	w.BlankLine()
}

// emitShim writes one extern "C" adapter bridging a raw dispatch-table
// call to the capability implementation.
func (g *Generator) emitShim(w *writer.Writer, iface *cidl.Interface, m *methodInfo, ns *nsResolver) {
	cm := g.opts.CobiaModule
	ctx := m.context(iface.Name)

	w.Writef("extern \"C\" fn %s(me: *mut std::ffi::c_void", m.native)
	var pointerArgs []string
	for _, a := range m.args {
		w.Writef(",%s:", a.name)
		switch a.kind {
		case argInterface, argDataInterface:
			if a.kind == argInterface && a.out {
				w.Write("*mut ")
			}
			w.Writef("*mut %s", a.rawType)
			if a.out || a.kind == argInterface {
				pointerArgs = append(pointerArgs, a.name)
			}
		default:
			if a.out {
				w.Write("*mut ")
				pointerArgs = append(pointerArgs, a.name)
			}
			w.Write(a.rawType)
		}
	}
	w.Linef(") -> %s::C::CapeResult {", cm)
	w.Indent()

	writeNullChecks := func(names []string) {
		if len(names) == 0 {
			return
		}
		w.Write("if ")
		for i, name := range names {
			if i > 0 {
				w.Write("||")
			}
			w.Writef("%s.is_null()", name)
		}
		w.Line(" {")
		w.Indent()
		w.Line("return COBIAERR_NULLPOINTER;")
		w.Dedent()
		w.Line("}")
	}
	writeNullChecks(pointerArgs)

	w.Line("let p = me as *mut Self::T;")
	w.Line("let myself=unsafe { &mut *p };")

	// the wrapper constructions below dereference these
	var deref []string
	for _, a := range m.args {
		if (a.kind == argDataInterface && a.out) || a.kind == argInterface {
			deref = append(deref, a.name)
		}
	}
	writeNullChecks(deref)

	var retvals, outvals []*argInfo
	for _, a := range m.args {
		switch {
		case a.kind == argDataInterface:
			if a.out {
				w.Linef("let mut %s=unsafe{*((&%s as *const *mut %s) as *mut *mut %s)};",
					a.name, a.name, a.rawType, a.rawType)
				w.Linef("let mut %s=%s::new(&mut %s);", a.name, turbofish(a.rustType), a.name)
			} else {
				w.Linef("let %s=%s::new(&%s);", a.name, turbofish(a.rustType), a.name)
			}
		case a.kind == argInterface:
			if a.out {
				retvals = append(retvals, a)
				continue
			}
			if a.needUnpack {
				w.Linef("let %s=match %s(%s) {", a.name, a.smartPtrFromPointer(), a.name)
				w.Indent()
				w.Linef("Ok(_%s) => _%s,", a.name, a.name)
				w.Linef("Err(e) => {return myself.set_last_error(e,\"%s\");}", ctx)
				w.Dedent()
				w.Line("};")
			} else {
				w.Linef("let %s=%s(%s);", a.name, a.smartPtrFromPointer(), a.name)
			}
		case a.retval:
			retvals = append(retvals, a)
		case a.out:
			outvals = append(outvals, a)
			w.Linef("let mut _%s:%s=%s;", a.name, a.rawType, a.initValue)
		default:
			if a.needUnpack {
				w.Linef("let %s=match %s::%s(%s) {", a.name, a.rustType, a.fromRaw, a.name)
				w.Indent()
				w.Linef("Some(_%s) => _%s,", a.name, a.name)
				w.Linef("None => {return myself.set_last_error(COBIAError::Message(\"Invalid enumeration value\".to_string()),\"%s\");}", ctx)
				w.Dedent()
				w.Line("};")
			}
		}
	}

	// invoke the capability implementation
	w.Writef("match myself.%s(", m.snake)
	first := true
	for _, a := range m.args {
		if (a.retval && a.kind == argBasic) || (a.out && a.kind == argInterface) {
			continue
		}
		if !first {
			w.Write(",")
		}
		first = false
		switch {
		case a.kind == argBasic && a.out:
			w.Write("&mut _")
		case a.kind == argDataInterface && a.out:
			w.Write("&mut ")
		case a.kind == argDataInterface:
			w.Write("&")
		}
		if a.needRawConv {
			w.Write(a.convertFromRaw())
		} else {
			w.Write(a.name)
		}
	}
	w.Line(") {")
	w.Indent()

	w.Write("Ok(")
	switch {
	case len(retvals) == 0:
		w.Write("_")
	case len(retvals) == 1:
		w.Writef("_%s", retvals[0].name)
	default:
		w.Write("(")
		for i, a := range retvals {
			if i > 0 {
				w.Write(",")
			}
			w.Writef("_%s", a.name)
		}
		w.Write(")")
	}
	w.Write(") => ")
	if len(retvals) == 0 && len(outvals) == 0 {
		w.Line("COBIAERR_NOERROR,")
	} else {
		w.Line("{")
		w.Indent()
		for _, a := range outvals {
			w.Linef("unsafe{*%s=_%s;}", a.name, a.name)
		}
		for _, a := range retvals {
			w.Linef("unsafe{*%s=_%s%s;}", a.name, a.name, a.rawReturned)
		}
		w.Line("COBIAERR_NOERROR")
		w.Dedent()
		w.Line("},")
	}
	w.Linef("Err(e) => myself.set_last_error(e,\"%s\")", ctx)
	w.Dedent()
	w.Line("}")
	w.Dedent()
	w.Line("}")
}

// typeOfName derives the provider type-parameter name for a
// data-interface argument of the proxy: TypeOf + the camel-cased argument
// name.
func typeOfName(argName string) string {
	name := strings.TrimPrefix(argName, "_")
	var b strings.Builder
	b.WriteString("TypeOf")
	upper := true
	for _, c := range name {
		if c == '_' {
			upper = true
			continue
		}
		if upper {
			b.WriteRune(toUpperRune(c))
			upper = false
		} else {
			b.WriteRune(c)
		}
	}
	return b.String()
}

func (g *Generator) emitSmartPointer(w *writer.Writer, iface *cidl.Interface, methods []*methodInfo, ns *nsResolver, long, short string) {
	cm := g.opts.CobiaModule
	nm := g.opts.NativeModule
	nns := ns.nativeNamespace
	smartName := smartPointerName(iface.Name)

	pubcrate := "pub"
	if cm == "crate" {
		pubcrate = "pub(crate)"
	}

	w.Linef("#[cape_smart_pointer(%s_UUID)]", strings.ToUpper(iface.Name))
	w.Linef("pub struct %s%s {", smartName, long)
	w.Indent()
	w.Linef("%s interface: *mut %s::%s_%s,", pubcrate, nm, nns, iface.Name)
	for _, param := range iface.TemplateParams {
		w.Linef("phantom_%s : PhantomData<%s>,", toSnakeCase(param), param)
	}
	w.Dedent()
	w.Line("}")
	w.BlankLine()
	w.Linef("impl%s %s%s {", long, smartName, short)
	w.Indent()
	w.Line("")

	for _, m := range methods {
		g.emitProxyMethod(w, m)
		w.Line("")
	}

	w.Dedent()
	w.Line("}")
	w.BlankLine()
}

// emitProxyMethod writes one caller-side marshaling method on the smart
// pointer.
func (g *Generator) emitProxyMethod(w *writer.Writer, m *methodInfo) {
	cm := g.opts.CobiaModule
	retvals := m.resultChannel()

	// signature: data-interface arguments become provider type parameters
	w.Writef("pub fn %s", m.snake)
	var argList strings.Builder
	firstGeneric := true
	for _, a := range m.args {
		if (a.retval && a.kind == argBasic) || (a.kind == argInterface && a.out) {
			continue
		}
		argList.WriteByte(',')
		argList.WriteString(a.name)
		argList.WriteByte(':')
		var argType string
		switch a.kind {
		case argDataInterface:
			if firstGeneric {
				w.Write("<")
				firstGeneric = false
			} else {
				w.Write(",")
			}
			argType = typeOfName(a.name)
			w.Writef("%s:%s", argType, a.provider)
		case argInterface:
			argType = a.smartPtr
		default:
			argType = a.rustType
		}
		if a.out {
			argList.WriteString("&mut ")
		} else if a.kind != argBasic {
			argList.WriteString("&")
		}
		argList.WriteString(argType)
	}
	if !firstGeneric {
		w.Write(">")
	}
	w.Writef("(&self%s) -> Result<", argList.String())
	w.Write(resultType(retvals))
	w.Line(",COBIAError> {")
	w.Indent()

	// raw output storage
	for _, a := range retvals {
		if a.kind == argBasic {
			w.Linef("let mut %s:%s=%s;", a.name, a.rawType, a.initValue)
		} else {
			w.Linef("let mut %s: *mut %s=std::ptr::null_mut();", a.name, a.rawType)
		}
	}

	w.Line("let result_code = unsafe {")
	w.Indent()
	w.Writef("((*(*self.interface).vTbl).%s.unwrap())((*self.interface).me", m.names.raw)
	for _, a := range m.args {
		w.Write(",")
		switch {
		case a.kind == argDataInterface:
			w.Write(a.dataInterfaceToRaw())
		case a.kind == argInterface && a.out:
			w.Writef("&mut %s as *mut *mut %s", a.name, a.rawType)
		case a.kind == argInterface:
			w.Writef("%s.as_interface_pointer() as *mut %s", a.name, a.rawType)
		case a.retval:
			w.Writef("&mut %s as *mut %s", a.name, a.rawType)
		case a.out:
			w.Writef("%s as *mut %s", a.name, a.rawType)
		case a.needRawConv:
			w.Write(a.convertToRaw())
		default:
			w.Writef("%s%s", a.name, a.toRaw)
		}
	}
	w.Line(")")
	w.Dedent()
	w.Line("};")

	// a generic result carries a reference count through an ICapeInterface;
	// bind it to a CapeObject without incrementing first
	for _, a := range retvals {
		if a.kind == argInterface && a.fromRaw == "from_object" {
			w.Linef("let %s=%s::CapeObject::attach(%s);", a.name, cm, a.name)
		}
	}
	for _, a := range retvals {
		if !a.needUnpack {
			continue
		}
		if a.kind == argBasic {
			w.Linef("let %s=match %s::%s(%s) {", a.name, a.rustType, a.fromRaw, a.name)
			w.Indent()
			w.Linef("Some(_%s) => _%s,", a.name, a.name)
			w.Line("None => {return Err(COBIAError::Message(\"Invalid enumeration value\".to_string()));}")
			w.Dedent()
			w.Line("};")
		} else {
			ref := ""
			if a.fromRaw == "from_object" {
				ref = "&"
			}
			w.Linef("let %s=match %s(%s%s) {", a.name, a.smartPtrFromPointer(), ref, a.name)
			w.Indent()
			w.Linef("Ok(_%s) => _%s,", a.name, a.name)
			w.Line("Err(e) => {return Err(e);}")
			w.Dedent()
			w.Line("};")
		}
	}

	w.Line("match result_code {")
	w.Indent()
	w.Write("COBIAERR_NOERROR => {Ok(")
	if len(retvals) != 1 {
		w.Write("(")
	}
	for i, a := range retvals {
		if i > 0 {
			w.Write(",")
		}
		if a.kind == argBasic || a.needUnpack {
			w.Write(a.name)
		} else {
			w.Writef("%s(%s)", a.smartPtrFromPointer(), a.name)
		}
	}
	if len(retvals) != 1 {
		w.Write(")")
	}
	w.Line(")},")
	w.Line("_ => Err(COBIAError::from_object(result_code,self))")
	w.Dedent()
	w.Line("}")
	w.Dedent()
	w.Line("}")
}
