package host

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// Table is an in-process host runtime: members are Go functions registered in
// an explicit method table and every call goes through Call. Installing a
// trampoline swaps the routing of one entry atomically, so calls already in
// progress finish on the routing they started with.
type Table struct {
	mu      sync.RWMutex
	members map[Member]*slot
	owners  map[string][]Member
	nextID  atomic.Uint64
}

type slot struct {
	member Member
	impl   Invoker
	route  atomic.Pointer[route]
}

type route struct {
	id uint64
	d  Dispatcher
}

type tableHandle struct {
	member Member
	id     uint64
}

func (h *tableHandle) Member() Member { return h.member }

// NewTable creates an empty method table.
func NewTable() *Table {
	return &Table{
		members: make(map[Member]*slot),
		owners:  make(map[string][]Member),
	}
}

// Define registers the body of m.
func (t *Table) Define(m Member, impl Invoker) error {
	if impl == nil {
		return fmt.Errorf("define %s: nil implementation", m)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.members[m]; exists {
		return fmt.Errorf("define %s: %w", m, ErrMemberExists)
	}
	t.members[m] = &slot{member: m, impl: impl}
	t.owners[m.Owner] = append(t.owners[m.Owner], m)
	return nil
}

// MustDefine is like Define but panics on error.
func (t *Table) MustDefine(m Member, impl Invoker) {
	if err := t.Define(m, impl); err != nil {
		panic(err)
	}
}

func (t *Table) lookup(m Member) (*slot, error) {
	t.mu.RLock()
	s, ok := t.members[m]
	t.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%s: %w", m, ErrMemberNotFound)
	}
	return s, nil
}

// Call invokes m the way host code does: through the installed trampoline if
// there is one, otherwise straight into the body.
func (t *Table) Call(ctx context.Context, m Member, this any, args ...any) (any, error) {
	s, err := t.lookup(m)
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if r := s.route.Load(); r != nil {
		return r.d.Dispatch(ctx, m, this, args, s.impl)
	}
	return s.impl(ctx, this, args)
}

// New calls a constructor and returns the constructed object.
func (t *Table) New(ctx context.Context, owner string, params []string, args ...any) (any, error) {
	return t.Call(ctx, Constructor(owner, params...), nil, args...)
}

// CallOriginal invokes the body of m, bypassing any trampoline.
func (t *Table) CallOriginal(ctx context.Context, m Member, this any, args ...any) (any, error) {
	s, err := t.lookup(m)
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return s.impl(ctx, this, args)
}

// Resolve implements Interceptor.
func (t *Table) Resolve(m Member) error {
	_, err := t.lookup(m)
	return err
}

// Members implements Interceptor.
func (t *Table) Members(owner string) []Member {
	t.mu.RLock()
	defer t.mu.RUnlock()
	list := t.owners[owner]
	out := make([]Member, len(list))
	copy(out, list)
	return out
}

// Install implements Interceptor.
func (t *Table) Install(m Member, d Dispatcher) (Handle, error) {
	if d == nil {
		return nil, fmt.Errorf("install %s: nil dispatcher", m)
	}
	s, err := t.lookup(m)
	if err != nil {
		return nil, err
	}
	r := &route{id: t.nextID.Add(1), d: d}
	if !s.route.CompareAndSwap(nil, r) {
		return nil, fmt.Errorf("install %s: %w", m, ErrAlreadyInstalled)
	}
	return &tableHandle{member: m, id: r.id}, nil
}

// Uninstall implements Interceptor.
func (t *Table) Uninstall(h Handle) error {
	th, ok := h.(*tableHandle)
	if !ok || th == nil {
		return ErrNotInstalled
	}
	s, err := t.lookup(th.member)
	if err != nil {
		return err
	}
	cur := s.route.Load()
	if cur == nil || cur.id != th.id || !s.route.CompareAndSwap(cur, nil) {
		return fmt.Errorf("uninstall %s: %w", th.member, ErrNotInstalled)
	}
	return nil
}

// Installed reports whether a trampoline currently routes m.
func (t *Table) Installed(m Member) bool {
	s, err := t.lookup(m)
	if err != nil {
		return false
	}
	return s.route.Load() != nil
}
