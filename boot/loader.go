package boot

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/go-lynx/xhook/factory"
	"github.com/go-lynx/xhook/hook"
	"github.com/go-lynx/xhook/log"
	"github.com/go-lynx/xhook/observability/metrics"
	"github.com/go-lynx/xhook/plugins"
)

// ProcessContext tells the loader which lifecycle the current process is in.
// Detecting it is host specific and left to the caller.
type ProcessContext struct {
	// EarlyBootstrap is set in the preloading process that later forks
	// application processes.
	EarlyBootstrap bool
	// StartsPrivilegedChild reports whether that process will fork a privileged child.
	StartsPrivilegedChild bool
	// StartClassName is the entry class a generic process intended to start.
	StartClassName string
}

// Config configures a Loader.
type Config struct {
	Source  Source
	Catalog *factory.Catalog
	// Root is the host loader bundle loaders delegate to. Defaults to a
	// root loader over Catalog.
	Root       factory.Loader
	Validation Validation

	// ResourcesDisabled skips entry points declaring ResourceInitHook.
	ResourcesDisabled bool
	// Priority is used when registering lifecycle callbacks.
	Priority int

	Hooks        *hook.Registry
	PackageLoad  *hook.Set[*plugins.PackageLoadParam]
	ResourceInit *hook.Set[*plugins.ResourceInitParam]
}

// Loader runs Discover, Validate, Instantiate and Dispatch for a list of
// bundles. Each bundle is loaded at most once per Loader.
type Loader struct {
	cfg Config

	mu     sync.Mutex
	loaded map[string]struct{}
}

// NewLoader creates a loader. Missing collaborators get defaults.
func NewLoader(cfg Config) *Loader {
	if cfg.Source == nil {
		cfg.Source = FileSource{}
	}
	if cfg.Catalog == nil {
		cfg.Catalog = factory.Global()
	}
	if cfg.Root == nil {
		cfg.Root = factory.NewRootLoader(cfg.Catalog)
	}
	if cfg.Validation.FrameworkClass == "" {
		cfg.Validation.FrameworkClass = DefaultFrameworkClass
	}
	if cfg.Validation.ToolchainMarkers == nil {
		cfg.Validation.ToolchainMarkers = DefaultToolchainMarkers
	}
	if cfg.Priority == 0 {
		cfg.Priority = hook.PriorityDefault
	}
	return &Loader{cfg: cfg, loaded: make(map[string]struct{})}
}

// EntryReport is the outcome of one entry point.
type EntryReport struct {
	Class string
	Caps  plugins.Capability
	// Dispatched names the capabilities the instance was called or registered through.
	Dispatched []string
	// Err is set when the entry point was skipped or one of its calls failed.
	Err error
	// Instance is nil when the entry point was not instantiated.
	Instance *plugins.Instance
}

// BundleReport is the outcome of one bundle.
type BundleReport struct {
	Path    string
	Err     error
	Entries []EntryReport
}

// Report collects the outcome of one Run.
type Report struct {
	ModuleList string
	// ListErr is set when the module list could not be read.
	ListErr error
	Bundles []BundleReport
}

// Instances returns every instantiated entry point in load order.
func (r *Report) Instances() []*plugins.Instance {
	var out []*plugins.Instance
	for _, b := range r.Bundles {
		for _, e := range b.Entries {
			if e.Instance != nil {
				out = append(out, e.Instance)
			}
		}
	}
	return out
}

// Failed returns the number of skipped bundles and failed entry points.
func (r *Report) Failed() (bundles, entries int) {
	for _, b := range r.Bundles {
		if b.Err != nil {
			bundles++
		}
		for _, e := range b.Entries {
			if e.Err != nil {
				entries++
			}
		}
	}
	return bundles, entries
}

// Run loads every bundle listed in the module list at listPath. A missing
// list is logged and yields an empty report.
func (l *Loader) Run(pc ProcessContext, listPath string) *Report {
	report := &Report{ModuleList: listPath}
	paths, err := ReadModuleList(l.cfg.Source, listPath)
	if err != nil {
		report.ListErr = err
		if errors.Is(err, ErrModuleListMissing) {
			log.Warnf("cannot load any modules because %s was not found", listPath)
		} else {
			log.Errorf("failed to read module list: %v", err)
		}
		return report
	}

	log.Infof("loading %d modules from %s", len(paths), listPath)
	for _, path := range paths {
		report.Bundles = append(report.Bundles, l.LoadBundle(pc, path))
	}
	return report
}

// LoadBundle validates one bundle and loads its entry points. Failures are
// reported and logged, never returned to the host.
func (l *Loader) LoadBundle(pc ProcessContext, path string) BundleReport {
	br := BundleReport{Path: path}

	l.mu.Lock()
	if _, done := l.loaded[path]; done {
		l.mu.Unlock()
		br.Err = &BundleError{Path: path, Stage: StageOpen, Err: ErrAlreadyLoaded}
		log.Debugf("bundle %s already loaded", path)
		metrics.Bundles.WithLabelValues(metrics.ModuleSkipped).Inc()
		return br
	}
	l.loaded[path] = struct{}{}
	l.mu.Unlock()

	log.Infof("loading modules from %s", path)
	b, err := OpenBundle(l.cfg.Source, path, l.cfg.Validation)
	if err != nil {
		br.Err = err
		log.Errorf("skipping bundle: %v", err)
		metrics.Bundles.WithLabelValues(metrics.ModuleFailed).Inc()
		return br
	}
	metrics.Bundles.WithLabelValues(metrics.ModuleLoaded).Inc()

	loader := factory.NewBundleLoader(b.Path, b.Index, l.cfg.Root, l.cfg.Catalog)
	for _, class := range b.EntryPoints {
		br.Entries = append(br.Entries, l.loadEntry(pc, b, loader, class))
	}
	return br
}

func (l *Loader) loadEntry(pc ProcessContext, b *Bundle, loader factory.Loader, class string) EntryReport {
	er := EntryReport{Class: class}
	log.Infof("  loading class %s", class)

	cls, err := loader.LoadClass(class)
	if err != nil {
		return l.skip(er, plugins.NewPluginError(b.Path, class, "load class", "cannot resolve entry point", err))
	}

	er.Caps = plugins.ProbeType(cls.Type)
	if er.Caps == plugins.CapNone {
		return l.skip(er, plugins.NewPluginError(b.Path, class, "probe", "implements no lifecycle contract", plugins.ErrNoCapability))
	}
	if l.cfg.ResourcesDisabled && er.Caps.Has(plugins.CapResourceInit) {
		return l.skip(er, plugins.NewPluginError(b.Path, class, "probe", "requires resource hooks", plugins.ErrResourcesDisabled))
	}

	value, err := instantiate(cls)
	if err != nil {
		return l.skip(er, plugins.NewPluginError(b.Path, class, "instantiate", "constructor failed", err))
	}
	inst := &plugins.Instance{Value: value, Caps: er.Caps, BundlePath: b.Path, ClassName: class}
	er.Instance = inst
	metrics.ModuleEntries.WithLabelValues(metrics.ModuleLoaded).Inc()

	er.Dispatched, er.Err = l.dispatch(pc, inst)
	return er
}

func (l *Loader) skip(er EntryReport, err *plugins.PluginError) EntryReport {
	er.Err = err
	log.Errorf("    %v", err)
	metrics.ModuleEntries.WithLabelValues(metrics.ModuleSkipped).Inc()
	return er
}

// instantiate runs the no-argument constructor once.
func instantiate(cls factory.Class) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v\n%s", plugins.ErrInstantiation, r, debug.Stack())
		}
	}()
	v = cls.New()
	if v == nil {
		return nil, fmt.Errorf("%w: constructor returned nil", plugins.ErrInstantiation)
	}
	return v, nil
}

// dispatch calls or registers the instance through each declared capability
// relevant to the process context. Capabilities are independent: a failing
// call does not prevent the others.
func (l *Loader) dispatch(pc ProcessContext, inst *plugins.Instance) ([]string, error) {
	var (
		done []string
		errs []error
	)
	if pc.EarlyBootstrap {
		if h, ok := inst.EarlyBootstrap(); ok {
			err := safeCall(inst, "early bootstrap", func() error {
				return h.InitEarlyBootstrap(&plugins.EarlyBootstrapParam{
					BundlePath:            inst.BundlePath,
					StartsPrivilegedChild: pc.StartsPrivilegedChild,
					Hooks:                 l.cfg.Hooks,
				})
			})
			if err != nil {
				errs = append(errs, err)
			} else {
				done = append(done, plugins.CapEarlyBootstrap.String())
			}
		}
		if h, ok := inst.PackageLoad(); ok && l.cfg.PackageLoad != nil {
			l.cfg.PackageLoad.Add(l.cfg.Priority, h.HandleLoadPackage)
			done = append(done, plugins.CapPackageLoad.String())
		}
		if h, ok := inst.ResourceInit(); ok && l.cfg.ResourceInit != nil {
			l.cfg.ResourceInit.Add(l.cfg.Priority, h.HandleInitPackageResources)
			done = append(done, plugins.CapResourceInit.String())
		}
	} else if h, ok := inst.ProcessInit(); ok {
		err := safeCall(inst, "process init", func() error {
			return h.InitProcess(&plugins.ProcessInitParam{
				BundlePath:     inst.BundlePath,
				StartClassName: pc.StartClassName,
				Hooks:          l.cfg.Hooks,
			})
		})
		if err != nil {
			errs = append(errs, err)
		} else {
			done = append(done, plugins.CapProcessInit.String())
		}
	}

	if len(errs) > 0 {
		metrics.ModuleEntries.WithLabelValues(metrics.ModuleFailed).Inc()
	}
	return done, errors.Join(errs...)
}

// safeCall runs one lifecycle call of inst, converting failures and panics
// into a logged *plugins.PluginError.
func safeCall(inst *plugins.Instance, op string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v\n%s", plugins.ErrLifecycleCall, r, debug.Stack())
		}
		if err != nil {
			perr := plugins.NewPluginError(inst.BundlePath, inst.ClassName, op, "lifecycle call failed", err)
			log.Errorf("    %v", perr)
			err = perr
		}
	}()
	if err := fn(); err != nil {
		return fmt.Errorf("%w: %w", plugins.ErrLifecycleCall, err)
	}
	return nil
}
