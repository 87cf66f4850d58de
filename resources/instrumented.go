package resources

import (
	"reflect"

	"github.com/google/uuid"
)

// SystemPackageName is reported by the instrumented system bundle.
const SystemPackageName = "android"

// Assets is the unmanaged handle backing a resource bundle.
type Assets interface {
	Close() error
}

// Resource is a host resource bundle.
type Resource interface {
	Assets() Assets
}

// Instrumented is the replacement handed out in place of a host bundle. It
// embeds the host bundle, so it behaves like it for every Resource operation,
// and carries the instrumentation state.
type Instrumented struct {
	Resource

	id        uuid.UUID
	resDir    string
	firstLoad bool
	system    bool
	owner     *Coordinator
}

// ID returns the correlation id of this replacement.
func (r *Instrumented) ID() uuid.UUID { return r.id }

// ResDir returns the resource directory the bundle was created from.
func (r *Instrumented) ResDir() string { return r.resDir }

// FirstLoad reports whether this replacement is the first one created for its key.
func (r *Instrumented) FirstLoad() bool { return r.firstLoad }

// Raw returns the wrapped host bundle.
func (r *Instrumented) Raw() Resource { return r.Resource }

// PackageName returns the package registered for the bundle's resource directory.
func (r *Instrumented) PackageName() string {
	if r.system {
		return SystemPackageName
	}
	if r.owner == nil {
		return ""
	}
	return r.owner.packageForResDir(r.resDir)
}

// sameAssets reports whether a and b are the same handle by identity.
// Handles whose identity cannot be compared count as shared so they are never
// released twice.
func sameAssets(a, b Assets) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if !ta.Comparable() {
		return true
	}
	return a == b
}
