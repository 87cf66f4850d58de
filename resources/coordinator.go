package resources

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/go-lynx/xhook/log"
	"github.com/go-lynx/xhook/observability/metrics"
)

var (
	// ErrNilResource is returned when the host factory produced nothing to substitute.
	ErrNilResource = errors.New("nil resource")

	// ErrConflictingPackage is returned when substitution is switched off for the current package.
	ErrConflictingPackage = errors.New("substitution disabled for conflicting package")

	// ErrAmbiguousCorrelation is returned when a factory call cannot be tied to exactly one key.
	ErrAmbiguousCorrelation = errors.New("ambiguous key correlation")
)

// HostTable mirrors replacements into the host's own caches. Its methods run
// with the coordinator lock held and must not call back into the Coordinator.
type HostTable interface {
	// Put stores res as the cached bundle for key.
	Put(key Key, res Resource)
	// ReplaceReference swaps every reference the host still holds to old.
	ReplaceReference(old, replacement Resource)
}

// LivenessFunc reports whether the host still holds the canonical reference
// for a cached replacement.
type LivenessFunc func(key Key, res *Instrumented) bool

// FirstLoadListener is notified the first time a bundle is seen for a key.
type FirstLoadListener func(ctx context.Context, key Key, res *Instrumented)

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithHostTable mirrors every installed replacement into t.
func WithHostTable(t HostTable) Option {
	return func(c *Coordinator) { c.table = t }
}

// WithLiveness sets the probe consulted before reusing a cached entry.
func WithLiveness(fn LivenessFunc) Option {
	return func(c *Coordinator) { c.alive = fn }
}

// WithConflictingPackages skips substitution while the package reported by
// current is one of pkgs.
func WithConflictingPackages(current func() string, pkgs ...string) Option {
	return func(c *Coordinator) {
		c.currentPackage = current
		c.conflicting = append(c.conflicting, pkgs...)
	}
}

type entry struct {
	res  *Instrumented
	dead bool
}

// Coordinator owns the key to replacement map.
type Coordinator struct {
	mu      sync.Mutex
	entries map[Key]*entry
	dirs    map[string]struct{}
	system  *Instrumented

	listenersMu sync.RWMutex
	listeners   []FirstLoadListener

	pkgMu       sync.RWMutex
	resDirToPkg map[string]string

	table          HostTable
	alive          LivenessFunc
	currentPackage func() string
	conflicting    []string
}

// NewCoordinator creates an empty coordinator.
func NewCoordinator(opts ...Option) *Coordinator {
	c := &Coordinator{
		entries:     make(map[Key]*entry),
		dirs:        make(map[string]struct{}),
		resDirToPkg: make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AddFirstLoadListener registers fn for first-load notifications.
func (c *Coordinator) AddFirstLoadListener(fn FirstLoadListener) {
	if fn == nil {
		return
	}
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()
	c.listeners = append(slices.Clip(c.listeners), fn)
}

// SetPackageNameForResDir records which package owns resources under dir.
func (c *Coordinator) SetPackageNameForResDir(pkg, dir string) {
	c.pkgMu.Lock()
	defer c.pkgMu.Unlock()
	c.resDirToPkg[dir] = pkg
}

func (c *Coordinator) packageForResDir(dir string) string {
	c.pkgMu.RLock()
	defer c.pkgMu.RUnlock()
	return c.resDirToPkg[dir]
}

// Skipped reports whether substitution is disabled for the current package.
func (c *Coordinator) Skipped() bool {
	if c.currentPackage == nil || len(c.conflicting) == 0 {
		return false
	}
	return slices.Contains(c.conflicting, c.currentPackage())
}

// OnCreated is called after the host factory produced raw for key. It
// returns the replacement the host must hand out instead. If a live
// replacement already exists for key it is returned and raw is discarded.
func (c *Coordinator) OnCreated(ctx context.Context, raw Resource, key Key) (*Instrumented, error) {
	if raw == nil {
		return nil, ErrNilResource
	}
	if inst, ok := raw.(*Instrumented); ok {
		return inst, nil
	}
	if c.Skipped() {
		metrics.Substitutions.WithLabelValues(metrics.SubstSkippedConflict).Inc()
		return nil, fmt.Errorf("substitute %s: %w", key, ErrConflictingPackage)
	}

	c.mu.Lock()
	if e, ok := c.entries[key]; ok && c.isLive(key, e) {
		winner := e.res
		if c.table != nil {
			c.table.ReplaceReference(raw, winner)
		}
		c.mu.Unlock()

		if !sameAssets(raw.Assets(), winner.Assets()) {
			release(raw.Assets(), key)
		}
		metrics.Substitutions.WithLabelValues(metrics.SubstReused).Inc()
		return winner, nil
	}

	outcome := metrics.SubstInstalled
	if stale, ok := c.entries[key]; ok {
		if !sameAssets(stale.res.Assets(), raw.Assets()) {
			release(stale.res.Assets(), key)
		}
		outcome = metrics.SubstReplacedStale
	}

	inst := c.wrap(raw, key.ResDir)
	inst.firstLoad = true
	c.entries[key] = &entry{res: inst}
	if c.table != nil {
		c.table.Put(key, inst)
		c.table.ReplaceReference(raw, inst)
	}
	c.mu.Unlock()

	metrics.Substitutions.WithLabelValues(outcome).Inc()
	c.fireFirstLoad(ctx, key, inst)
	return inst, nil
}

// Substitute wraps a bundle produced by an uncached factory. The first bundle
// seen for a resource directory is reported to the first-load listeners.
func (c *Coordinator) Substitute(ctx context.Context, raw Resource, resDir string) (*Instrumented, error) {
	if raw == nil {
		return nil, ErrNilResource
	}
	if inst, ok := raw.(*Instrumented); ok {
		return inst, nil
	}
	if c.Skipped() {
		metrics.Substitutions.WithLabelValues(metrics.SubstSkippedConflict).Inc()
		return nil, fmt.Errorf("substitute %s: %w", resDir, ErrConflictingPackage)
	}

	inst := c.wrap(raw, resDir)
	c.mu.Lock()
	if _, seen := c.dirs[resDir]; !seen {
		c.dirs[resDir] = struct{}{}
		inst.firstLoad = true
	}
	c.mu.Unlock()

	metrics.Substitutions.WithLabelValues(metrics.SubstUncached).Inc()
	if inst.firstLoad {
		c.fireFirstLoad(ctx, Key{ResDir: resDir}, inst)
	}
	return inst, nil
}

// SubstituteSystem wraps the host's system bundle.
func (c *Coordinator) SubstituteSystem(raw Resource) (*Instrumented, error) {
	if raw == nil {
		return nil, ErrNilResource
	}
	inst, ok := raw.(*Instrumented)
	if !ok {
		inst = c.wrap(raw, "")
	}
	inst.system = true
	c.mu.Lock()
	c.system = inst
	c.mu.Unlock()
	return inst, nil
}

// System returns the instrumented system bundle, if any.
func (c *Coordinator) System() *Instrumented {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.system
}

// Invalidate declares the replacement for key dead. The next bundle created
// for key replaces it and is reported as a first load again.
func (c *Coordinator) Invalidate(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		e.dead = true
	}
}

// Lookup returns the live replacement for key.
func (c *Coordinator) Lookup(key Key) (*Instrumented, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || !c.isLive(key, e) {
		return nil, false
	}
	return e.res, true
}

// Len returns the number of cached entries, live or stale.
func (c *Coordinator) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Coordinator) isLive(key Key, e *entry) bool {
	if e.dead {
		return false
	}
	if c.alive != nil && !c.alive(key, e.res) {
		e.dead = true
		return false
	}
	return true
}

func (c *Coordinator) wrap(raw Resource, resDir string) *Instrumented {
	return &Instrumented{
		Resource: raw,
		id:       uuid.New(),
		resDir:   resDir,
		owner:    c,
	}
}

func (c *Coordinator) fireFirstLoad(ctx context.Context, key Key, res *Instrumented) {
	c.listenersMu.RLock()
	listeners := c.listeners
	c.listenersMu.RUnlock()

	metrics.FirstLoads.Inc()
	for _, fn := range listeners {
		safeNotify(ctx, fn, key, res)
	}
}

func safeNotify(ctx context.Context, fn FirstLoadListener, key Key, res *Instrumented) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("first-load listener for %s panicked: %v", key, r)
		}
	}()
	fn(ctx, key, res)
}

func release(a Assets, key Key) {
	if a == nil {
		return
	}
	if err := a.Close(); err != nil {
		log.Warnf("release assets of %s: %v", key, err)
	}
}
