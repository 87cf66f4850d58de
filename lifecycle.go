package xhook

import (
	"context"

	"github.com/go-lynx/xhook/factory"
	"github.com/go-lynx/xhook/log"
	"github.com/go-lynx/xhook/plugins"
	"github.com/go-lynx/xhook/resources"
)

// HookLoadPackage registers h for every package load in this process. The
// returned function removes it.
func (b *Bridge) HookLoadPackage(h plugins.PackageLoadHook) (remove func()) {
	return b.packageLoad.Add(b.conf.DefaultPriority, h.HandleLoadPackage)
}

// HookInitPackageResources registers h for every resource initialisation.
// It is a no-op when resource hooks are disabled.
func (b *Bridge) HookInitPackageResources(h plugins.ResourceInitHook) (remove func()) {
	if b.resourcesDisabled {
		return func() {}
	}
	return b.resourceInit.Add(b.conf.DefaultPriority, h.HandleInitPackageResources)
}

// HandleLoadPackage notifies every package-load callback. A package that was
// already announced in this process is skipped unless it is the first
// application being bound.
func (b *Bridge) HandleLoadPackage(p *plugins.PackageLoadParam) error {
	if b.closed.Load() {
		return ErrClosed
	}
	b.mu.Lock()
	_, seen := b.loadedPackages[p.PackageName]
	if !seen {
		b.loadedPackages[p.PackageName] = struct{}{}
	}
	b.mu.Unlock()
	if seen && !p.IsFirstApplication {
		log.Debugf("package %s already loaded", p.PackageName)
		return nil
	}
	p.Hooks = b.registry
	log.Infof("loading package %s in process %s", p.PackageName, p.ProcessName)
	return b.packageLoad.Call(p)
}

// HandleInitPackageResources notifies every resource-init callback.
func (b *Bridge) HandleInitPackageResources(p *plugins.ResourceInitParam) error {
	if b.resourcesDisabled || b.closed.Load() {
		return nil
	}
	p.Hooks = b.registry
	return b.resourceInit.Call(p)
}

func (b *Bridge) onFirstLoad(_ context.Context, key resources.Key, res *resources.Instrumented) {
	pkg := res.PackageName()
	if pkg == "" {
		log.Debugf("resources %s have no package, skipping init callbacks", key)
		return
	}
	if err := b.HandleInitPackageResources(&plugins.ResourceInitParam{PackageName: pkg, Res: res}); err != nil {
		log.Errorf("resource init callbacks for %s: %v", pkg, err)
	}
}

// AppBinding describes the first application bound into a process.
type AppBinding struct {
	PackageName string
	ProcessName string
	// ResDir is the application's resource directory.
	ResDir      string
	ClassLoader factory.Loader
	AppInfo     any
	// Instrumentation is set when the process runs under a test harness.
	// Hooks are disabled for such processes.
	Instrumentation bool
}

// BindApplication records the package of the application's resource
// directory and announces the package load.
func (b *Bridge) BindApplication(app AppBinding) error {
	if app.Instrumentation {
		log.Infof("instrumentation detected for %s, disabling hooks", app.PackageName)
		b.Engine().Disable()
		return nil
	}
	if app.ResDir != "" {
		b.coordinator.SetPackageNameForResDir(app.PackageName, app.ResDir)
	}
	return b.HandleLoadPackage(&plugins.PackageLoadParam{
		PackageName:        app.PackageName,
		ProcessName:        app.ProcessName,
		ClassLoader:        app.ClassLoader,
		AppInfo:            app.AppInfo,
		IsFirstApplication: true,
	})
}
