package xhook

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/go-lynx/xhook/boot"
	"github.com/go-lynx/xhook/conf"
	"github.com/go-lynx/xhook/factory"
	"github.com/go-lynx/xhook/hook"
	"github.com/go-lynx/xhook/host"
	"github.com/go-lynx/xhook/log"
	"github.com/go-lynx/xhook/observability/metrics"
	"github.com/go-lynx/xhook/plugins"
	"github.com/go-lynx/xhook/resources"
)

// Version is the framework version reported in logs.
const Version = "1.0.0"

// FrameworkClassName is the class name of the framework API. Bundles that
// package it themselves are rejected.
const FrameworkClassName = boot.DefaultFrameworkClass

// ErrClosed is returned by operations on a closed Bridge.
var ErrClosed = errors.New("bridge closed")

// Options configures a Bridge.
type Options struct {
	// Name labels the bridge in metrics. Defaults to a random id.
	Name string
	// ProcessName, when set, initializes the log backend from Config.Log
	// with this process name.
	ProcessName string
	// Config defaults to conf.Default().
	Config *conf.Xhook
	// Host is the interception primitive. Required.
	Host host.Interceptor
	// Source defaults to the local file system.
	Source boot.Source
	// Catalog defaults to factory.Global().
	Catalog *factory.Catalog
	// Root is the host class loader bundles delegate to.
	Root factory.Loader

	// HostTable mirrors resource replacements into the host cache.
	HostTable resources.HostTable
	// Liveness is consulted before reusing a cached replacement.
	Liveness resources.LivenessFunc
	// CurrentPackage reports the package of the current process, used for
	// the conflicting package list.
	CurrentPackage func() string
}

// Bridge is the process-scoped framework instance.
type Bridge struct {
	name string
	conf *conf.Xhook

	registry     *hook.Registry
	coordinator  *resources.Coordinator
	loader       *boot.Loader
	packageLoad  *hook.Set[*plugins.PackageLoadParam]
	resourceInit *hook.Set[*plugins.ResourceInitParam]

	resourcesDisabled bool

	mu             sync.Mutex
	loadedPackages map[string]struct{}

	collector prometheus.Collector
	logs      io.Closer
	closed    atomic.Bool
}

// New creates a Bridge over the host interceptor.
func New(opts Options) (*Bridge, error) {
	if opts.Host == nil {
		return nil, fmt.Errorf("xhook: host interceptor is required")
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = conf.Default()
	}
	cfg.ApplyDefaults()
	if opts.Source == nil {
		opts.Source = boot.FileSource{}
	}
	if opts.Name == "" {
		opts.Name = uuid.NewString()[:8]
	}

	var logs io.Closer
	if opts.ProcessName != "" {
		closer, err := log.InitLogger(opts.ProcessName, Version, cfg.GetLog())
		if err != nil {
			return nil, fmt.Errorf("xhook: init logger: %w", err)
		}
		logs = closer
	}

	b := &Bridge{
			name:              opts.Name,
		conf:              cfg,
		registry:          hook.NewRegistry(opts.Host),
		packageLoad:       hook.NewSet[*plugins.PackageLoadParam]("package load"),
		resourceInit:      hook.NewSet[*plugins.ResourceInitParam]("resource init"),
		resourcesDisabled: boot.ResourcesDisabled(cfg, opts.Source),
		loadedPackages:    make(map[string]struct{}),
		logs:              logs,
	}

	copts := []resources.Option{}
	if opts.HostTable != nil {
		copts = append(copts, resources.WithHostTable(opts.HostTable))
	}
	if opts.Liveness != nil {
		copts = append(copts, resources.WithLiveness(opts.Liveness))
	}
	if opts.CurrentPackage != nil && len(cfg.ConflictingPackages) > 0 {
		copts = append(copts, resources.WithConflictingPackages(opts.CurrentPackage, cfg.ConflictingPackages...))
	}
	b.coordinator = resources.NewCoordinator(copts...)
	b.coordinator.AddFirstLoadListener(b.onFirstLoad)

	b.loader = boot.NewLoader(boot.Config{
		Source:            opts.Source,
		Catalog:           opts.Catalog,
		Root:              opts.Root,
		Validation:        boot.Validation{FrameworkClass: FrameworkClassName},
		ResourcesDisabled: b.resourcesDisabled,
		Priority:          cfg.DefaultPriority,
		Hooks:             b.registry,
		PackageLoad:       b.packageLoad,
		ResourceInit:      b.resourceInit,
	})

	b.collector = metrics.NewRegistryCollector(b.name, b.registry)
	if err := metrics.RegisterCollector(b.collector); err != nil {
		log.Warnf("xhook: registry metrics for %s not exported: %v", b.name, err)
		b.collector = nil
	}

	if b.resourcesDisabled {
		log.Infof("found %s, not hooking resources", boot.ResolvePath(cfg, cfg.DisableResourcesFile))
	}
	log.Infof("xhook %s bridge %s initialized", Version, b.name)
	return b, nil
}

// Close removes every hook and releases the metrics collector.
func (b *Bridge) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}
	if b.collector != nil {
		metrics.UnregisterCollector(b.collector)
	}
	err := b.registry.UnhookAll()
	if b.logs != nil {
		err = errors.Join(err, b.logs.Close())
	}
	return err
}

// Name returns the bridge label.
func (b *Bridge) Name() string { return b.name }

// Config returns the effective configuration.
func (b *Bridge) Config() *conf.Xhook { return b.conf }

// Registry returns the interception registry.
func (b *Bridge) Registry() *hook.Registry { return b.registry }

// Engine returns the dispatch engine.
func (b *Bridge) Engine() *hook.Engine { return b.registry.Engine() }

// Coordinator returns the resource substitution coordinator.
func (b *Bridge) Coordinator() *resources.Coordinator { return b.coordinator }

// ResourcesDisabled reports whether resource hooks are switched off.
func (b *Bridge) ResourcesDisabled() bool { return b.resourcesDisabled }

// HookMethod registers cb on m with the configured default priority.
func (b *Bridge) HookMethod(m host.Member, cb hook.Callback) (*hook.Unhook, error) {
	if b.closed.Load() {
		return nil, ErrClosed
	}
	return b.registry.Register(m, b.conf.DefaultPriority, cb)
}

// InstallResourceHooks binds the coordinator to the host factories described
// by adapters. It is a no-op when resource hooks are disabled.
func (b *Bridge) InstallResourceHooks(adapters ...resources.Adapter) error {
	if b.closed.Load() {
		return ErrClosed
	}
	if b.resourcesDisabled {
		metrics.Substitutions.WithLabelValues(metrics.SubstSkippedDisabled).Inc()
		return nil
	}
	_, err := resources.InstallAll(b.registry, b.coordinator, adapters...)
	return err
}

// LoadModules loads every bundle of the configured module list.
func (b *Bridge) LoadModules(pc boot.ProcessContext) *boot.Report {
	return b.loader.Run(pc, boot.ResolvePath(b.conf, b.conf.ModulesList))
}

// LoadBundle loads a single bundle outside the module list.
func (b *Bridge) LoadBundle(pc boot.ProcessContext, path string) boot.BundleReport {
	return b.loader.LoadBundle(pc, path)
}
