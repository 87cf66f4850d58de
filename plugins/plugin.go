// Package plugins defines the contracts plugin entry points implement and
// the capability flags the loader dispatches on.
//
// An entry point may implement any combination of EarlyBootstrapHook,
// ProcessInitHook, PackageLoadHook and ResourceInitHook. Capabilities are
// probed once from the entry point's type when it is loaded, and an instance
// is only ever dispatched through the capabilities recorded in its flags.
package plugins

import (
	"github.com/go-lynx/xhook/factory"
	"github.com/go-lynx/xhook/hook"
	"github.com/go-lynx/xhook/resources"
)

// EarlyBootstrapParam is passed once to EarlyBootstrapHook in the process
// that later forks application processes.
type EarlyBootstrapParam struct {
	// BundlePath is the archive the entry point was loaded from.
	BundlePath string
	// StartsPrivilegedChild reports whether this process will fork a privileged child.
	StartsPrivilegedChild bool
	// Hooks is the registry the entry point installs its advice into.
	Hooks *hook.Registry
}

// ProcessInitParam is passed once to ProcessInitHook in a process that does
// not fork further children.
type ProcessInitParam struct {
	BundlePath string
	// StartClassName is the entry class the process originally intended to start.
	StartClassName string
	Hooks          *hook.Registry
}

// PackageLoadParam describes an application package loaded into a process.
type PackageLoadParam struct {
	PackageName string
	ProcessName string
	// ClassLoader resolves the classes of the loaded package.
	ClassLoader factory.Loader
	// AppInfo is the host's application descriptor, nil for system packages.
	AppInfo any
	// IsFirstApplication is set for the first application bound in the process.
	IsFirstApplication bool
	Hooks              *hook.Registry
}

// ResourceInitParam describes the resources of a package being initialised.
type ResourceInitParam struct {
	PackageName string
	Res         *resources.Instrumented
	Hooks       *hook.Registry
}

// EarlyBootstrapHook runs in the early bootstrap process.
type EarlyBootstrapHook interface {
	InitEarlyBootstrap(p *EarlyBootstrapParam) error
}

// ProcessInitHook runs once in a generic process.
type ProcessInitHook interface {
	InitProcess(p *ProcessInitParam) error
}

// PackageLoadHook runs for every application package loaded, per process.
type PackageLoadHook interface {
	HandleLoadPackage(p *PackageLoadParam) error
}

// ResourceInitHook runs when the resources of a package are initialised.
type ResourceInitHook interface {
	HandleInitPackageResources(p *ResourceInitParam) error
}

// Instance is one instantiated plugin entry point.
type Instance struct {
	Value      any
	Caps       Capability
	BundlePath string
	ClassName  string
}

// EarlyBootstrap returns the instance as EarlyBootstrapHook if declared.
func (i *Instance) EarlyBootstrap() (EarlyBootstrapHook, bool) {
	if !i.Caps.Has(CapEarlyBootstrap) {
		return nil, false
	}
	h, ok := i.Value.(EarlyBootstrapHook)
	return h, ok
}

// ProcessInit returns the instance as ProcessInitHook if declared.
func (i *Instance) ProcessInit() (ProcessInitHook, bool) {
	if !i.Caps.Has(CapProcessInit) {
		return nil, false
	}
	h, ok := i.Value.(ProcessInitHook)
	return h, ok
}

// PackageLoad returns the instance as PackageLoadHook if declared.
func (i *Instance) PackageLoad() (PackageLoadHook, bool) {
	if !i.Caps.Has(CapPackageLoad) {
		return nil, false
	}
	h, ok := i.Value.(PackageLoadHook)
	return h, ok
}

// ResourceInit returns the instance as ResourceInitHook if declared.
func (i *Instance) ResourceInit() (ResourceInitHook, bool) {
	if !i.Caps.Has(CapResourceInit) {
		return nil, false
	}
	h, ok := i.Value.(ResourceInitHook)
	return h, ok
}

// String returns class@bundle.
func (i *Instance) String() string {
	return i.ClassName + "@" + i.BundlePath
}
