package rust

import (
	"sort"
	"strings"
)

// knownNamespaces maps CAPE-OPEN framework namespaces to the module name
// they live under inside the binding runtime. Built once, never mutated.
var knownNamespaces = map[string]string{
	"CAPEOPEN":     "cape_open",
	"CAPEOPEN_1_2": "cape_open_1_2",
}

// nsResolver qualifies type names for the three output representations:
// local names lose their prefix, known CAPE-OPEN namespaces are rerouted
// through the binding runtime module, and everything else is treated as an
// externally imported namespace.
type nsResolver struct {
	libName         string
	cobiaModule     string
	nativeModule    string
	nativeNamespace string

	// imports collects foreign namespaces encountered during mapping.
	// Emitting use-declarations for them is an unresolved gap in the
	// upstream design; they are recorded so the driver can report them.
	imports map[string]struct{}
}

func newNSResolver(libName string, opts Options) *nsResolver {
	return &nsResolver{
		libName:         libName,
		cobiaModule:     opts.CobiaModule,
		nativeModule:    opts.NativeModule,
		nativeNamespace: opts.NativeNamespace,
		imports:         make(map[string]struct{}),
	}
}

// split separates a possibly qualified name into namespace and type name.
// Unqualified names belong to the current library.
func (ns *nsResolver) split(name string) (string, string) {
	if pos := strings.Index(name, "::"); pos >= 0 {
		return name[:pos], name[pos+2:]
	}
	return ns.libName, name
}

// localize rewrites the namespace prefix of a safe-representation type
// name. The prefix counts only when it appears before any template
// argument list.
func (ns *nsResolver) localize(name string) string {
	pos := strings.Index(name, "::")
	if pos < 0 {
		return name
	}
	if lt := strings.IndexByte(name, '<'); lt >= 0 && lt < pos {
		return name
	}
	prefix := name[:pos]
	if prefix == ns.libName {
		return name[pos+2:]
	}
	// already routed through the binding runtime by an earlier step
	if prefix == ns.cobiaModule {
		return name
	}
	if converted, ok := knownNamespaces[prefix]; ok {
		return ns.cobiaModule + "::" + converted + name[pos:]
	}
	ns.foreign(prefix)
	return name
}

// foreign records a namespace that would need an explicit import.
func (ns *nsResolver) foreign(namespace string) {
	ns.imports[namespace] = struct{}{}
}

// foreignList returns the recorded foreign namespaces in sorted order.
func (ns *nsResolver) foreignList() []string {
	if len(ns.imports) == 0 {
		return nil
	}
	list := make([]string, 0, len(ns.imports))
	for namespace := range ns.imports {
		list = append(list, namespace)
	}
	sort.Strings(list)
	return list
}
