package plugins

import (
	"reflect"
	"strings"
)

// Capability is a set of lifecycle contracts an entry point implements.
type Capability uint8

const (
	CapEarlyBootstrap Capability = 1 << iota
	CapProcessInit
	CapPackageLoad
	CapResourceInit

	// CapNone is the empty set.
	CapNone Capability = 0
)

var capabilityTypes = []struct {
	cap  Capability
	name string
	typ  reflect.Type
}{
	{CapEarlyBootstrap, "early_bootstrap", reflect.TypeOf((*EarlyBootstrapHook)(nil)).Elem()},
	{CapProcessInit, "process_init", reflect.TypeOf((*ProcessInitHook)(nil)).Elem()},
	{CapPackageLoad, "package_load", reflect.TypeOf((*PackageLoadHook)(nil)).Elem()},
	{CapResourceInit, "resource_init", reflect.TypeOf((*ResourceInitHook)(nil)).Elem()},
}

// Has reports whether every capability in o is in c.
func (c Capability) Has(o Capability) bool { return c&o == o && o != 0 }

// String lists the capability names joined by "|".
func (c Capability) String() string {
	if c == CapNone {
		return "none"
	}
	var names []string
	for _, ct := range capabilityTypes {
		if c&ct.cap != 0 {
			names = append(names, ct.name)
		}
	}
	return strings.Join(names, "|")
}

// ProbeType returns the capabilities implemented by values of type t.
func ProbeType(t reflect.Type) Capability {
	if t == nil {
		return CapNone
	}
	var c Capability
	for _, ct := range capabilityTypes {
		if t.Implements(ct.typ) {
			c |= ct.cap
		}
	}
	return c
}

// Probe returns the capabilities implemented by v.
func Probe(v any) Capability {
	return ProbeType(reflect.TypeOf(v))
}
