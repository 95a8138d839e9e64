package cidl

import (
	"fmt"
	"strings"
)

// Resolver answers cross-reference queries against the parsed libraries.
// Code generators use it to look up an interface's declared template arity
// when the arity is not syntactically evident at the point of use.
type Resolver interface {
	// Interface returns the declaration for a plain or Library::Name
	// qualified interface name.
	Interface(name string) (*Interface, error)
}

type libraryResolver struct {
	interfaces map[string]*Interface
}

// NewResolver indexes all interfaces of the given libraries under both
// their plain name and their Library::Name qualified form.
func NewResolver(libs []*Library) Resolver {
	r := &libraryResolver{interfaces: make(map[string]*Interface)}
	for _, lib := range libs {
		for i := range lib.Interfaces {
			iface := &lib.Interfaces[i]
			r.interfaces[iface.Name] = iface
			r.interfaces[lib.Name+"::"+iface.Name] = iface
		}
	}
	return r
}

func (r *libraryResolver) Interface(name string) (*Interface, error) {
	if iface, ok := r.interfaces[name]; ok {
		return iface, nil
	}
	// A qualified name whose namespace is unknown may still refer to an
	// interface parsed under its plain name.
	if pos := strings.Index(name, "::"); pos >= 0 {
		if iface, ok := r.interfaces[name[pos+2:]]; ok {
			return iface, nil
		}
	}
	return nil, fmt.Errorf("interface %q is not declared in any parsed library", name)
}
