package hook

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/go-lynx/xhook/host"
	"github.com/go-lynx/xhook/log"
)

// Registration is one callback attached to an interception point.
type Registration struct {
	Point    host.Member
	Priority int
	Callback Callback

	seq    uint64
	unhook *Unhook
}

// Unhook returns the token that removes this registration.
func (r Registration) Unhook() *Unhook { return r.unhook }

// Unhook removes one registration. It is safe to call more than once.
type Unhook struct {
	registry *Registry
	point    host.Member
	seq      uint64
	once     sync.Once
	err      error
}

// Point returns the member the registration is attached to.
func (u *Unhook) Point() host.Member { return u.point }

// Unhook removes the registration from its registry.
func (u *Unhook) Unhook() error {
	if u == nil {
		return nil
	}
	u.once.Do(func() {
		u.err = u.registry.remove(u.point, u.seq)
	})
	return u.err
}

type point struct {
	// regs is never mutated in place; writers publish a new slice.
	regs   []Registration
	handle host.Handle
}

// Registry keeps the ordered callbacks of every interception point and the
// trampolines routing those points into the engine.
type Registry struct {
	mu     sync.RWMutex
	host   host.Interceptor
	points map[host.Member]*point
	seq    uint64
	engine *Engine
}

// NewRegistry creates a registry installing trampolines through ic.
func NewRegistry(ic host.Interceptor) *Registry {
	r := &Registry{
		host:   ic,
		points: make(map[host.Member]*point),
	}
	r.engine = &Engine{registry: r}
	return r
}

// Engine returns the engine every trampoline of this registry dispatches into.
func (r *Registry) Engine() *Engine { return r.engine }

// Register attaches cb to m. The first registration for m installs the
// trampoline. Registering on a member the host cannot resolve fails with
// ErrTargetNotFound.
func (r *Registry) Register(m host.Member, priority int, cb Callback) (*Unhook, error) {
	if cb == nil {
		return nil, fmt.Errorf("register %s: %w", m, ErrNilCallback)
	}
	if err := r.host.Resolve(m); err != nil {
		return nil, fmt.Errorf("register %s: %w: %w", m, ErrTargetNotFound, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.points[m]
	if !ok {
		h, err := r.host.Install(m, r.engine)
		if err != nil {
			return nil, fmt.Errorf("install trampoline for %s: %w", m, err)
		}
		p = &point{handle: h}
		r.points[m] = p
		log.Debugf("installed trampoline for %s", m)
	}

	r.seq++
	u := &Unhook{registry: r, point: m, seq: r.seq}
	reg := Registration{Point: m, Priority: priority, Callback: cb, seq: r.seq, unhook: u}

	regs := make([]Registration, len(p.regs), len(p.regs)+1)
	copy(regs, p.regs)
	regs = append(regs, reg)
	sort.SliceStable(regs, func(i, j int) bool {
		if regs[i].Priority != regs[j].Priority {
			return regs[i].Priority < regs[j].Priority
		}
		return regs[i].seq < regs[j].seq
	})
	p.regs = regs
	return u, nil
}

// Unregister removes the registration identified by u.
func (r *Registry) Unregister(u *Unhook) error {
	if u == nil || u.registry != r {
		return nil
	}
	return u.Unhook()
}

func (r *Registry) remove(m host.Member, seq uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.points[m]
	if !ok {
		return nil
	}
	regs := make([]Registration, 0, len(p.regs))
	for _, reg := range p.regs {
		if reg.seq != seq {
			regs = append(regs, reg)
		}
	}
	if len(regs) == len(p.regs) {
		return nil
	}
	if len(regs) > 0 {
		p.regs = regs
		return nil
	}

	delete(r.points, m)
	if err := r.host.Uninstall(p.handle); err != nil {
		return fmt.Errorf("uninstall trampoline for %s: %w", m, err)
	}
	log.Debugf("removed trampoline for %s", m)
	return nil
}

// Snapshot returns the registrations of m in dispatch order.
func (r *Registry) Snapshot(m host.Member) []Registration {
	regs := r.snapshot(m)
	out := make([]Registration, len(regs))
	copy(out, regs)
	return out
}

func (r *Registry) snapshot(m host.Member) []Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.points[m]; ok {
		return p.regs
	}
	return nil
}

// HookAllMethods registers cb on every overload of owner.name.
func (r *Registry) HookAllMethods(owner, name string, priority int, cb Callback) ([]*Unhook, error) {
	return r.hookAll(owner, priority, cb, func(m host.Member) bool {
		return !m.Constructor && m.Name == name
	})
}

// HookAllConstructors registers cb on every constructor of owner.
func (r *Registry) HookAllConstructors(owner string, priority int, cb Callback) ([]*Unhook, error) {
	return r.hookAll(owner, priority, cb, func(m host.Member) bool {
		return m.Constructor
	})
}

func (r *Registry) hookAll(owner string, priority int, cb Callback, match func(host.Member) bool) ([]*Unhook, error) {
	var targets []host.Member
	for _, m := range r.host.Members(owner) {
		if match(m) {
			targets = append(targets, m)
		}
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("hook all on %s: %w", owner, ErrTargetNotFound)
	}

	unhooks := make([]*Unhook, 0, len(targets))
	for _, m := range targets {
		u, err := r.Register(m, priority, cb)
		if err != nil {
			for _, done := range unhooks {
				_ = done.Unhook()
			}
			return nil, err
		}
		unhooks = append(unhooks, u)
	}
	return unhooks, nil
}

// UnhookAll removes every registration and trampoline.
func (r *Registry) UnhookAll() error {
	r.mu.Lock()
	points := r.points
	r.points = make(map[host.Member]*point)
	r.mu.Unlock()

	var errs []error
	for m, p := range points {
		if err := r.host.Uninstall(p.handle); err != nil {
			errs = append(errs, fmt.Errorf("uninstall trampoline for %s: %w", m, err))
		}
	}
	return errors.Join(errs...)
}

// Points returns the number of members with an installed trampoline.
func (r *Registry) Points() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.points)
}

// Callbacks returns the number of registrations across all members.
func (r *Registry) Callbacks() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, p := range r.points {
		n += len(p.regs)
	}
	return n
}
