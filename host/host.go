// Package host defines the contracts xhook consumes from the instrumented runtime.
//
// The runtime owns the real method bodies. xhook only needs to resolve a
// member, to route every invocation of it through a Dispatcher once a
// trampoline is installed, and to restore the original routing when the
// trampoline is removed. How a concrete runtime rewrites its entry points is
// not a concern of this package; Table is an in-process implementation for Go
// hosts built around an explicit method table.
package host

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrMemberNotFound is returned when a member cannot be resolved in the host.
	ErrMemberNotFound = errors.New("member not found")

	// ErrMemberExists is returned when a member is defined twice.
	ErrMemberExists = errors.New("member already defined")

	// ErrAlreadyInstalled is returned when a trampoline already routes the member.
	ErrAlreadyInstalled = errors.New("trampoline already installed")

	// ErrNotInstalled is returned when uninstalling an unknown or stale handle.
	ErrNotInstalled = errors.New("trampoline not installed")
)

// ConstructorName is the member name used for constructors.
const ConstructorName = "<init>"

// Member identifies one method or constructor slot by owning type and signature.
// Members are comparable and safe to use as map keys.
type Member struct {
	Owner       string
	Name        string
	Params      string // comma separated parameter type names
	Constructor bool
}

// Method builds a method member.
func Method(owner, name string, params ...string) Member {
	return Member{Owner: owner, Name: name, Params: strings.Join(params, ",")}
}

// Constructor builds a constructor member.
func Constructor(owner string, params ...string) Member {
	return Member{Owner: owner, Name: ConstructorName, Params: strings.Join(params, ","), Constructor: true}
}

// ParamTypes returns the parameter type names in declaration order.
func (m Member) ParamTypes() []string {
	if m.Params == "" {
		return nil
	}
	return strings.Split(m.Params, ",")
}

// String renders the member as owner#name(params).
func (m Member) String() string {
	return m.Owner + "#" + m.Name + "(" + m.Params + ")"
}

// Invoker runs a member body. For constructors the returned value is the
// newly constructed object and this is nil.
type Invoker func(ctx context.Context, this any, args []any) (any, error)

// Dispatcher receives every invocation of a member routed through a trampoline.
// original runs the unmodified body.
type Dispatcher interface {
	Dispatch(ctx context.Context, m Member, this any, args []any, original Invoker) (any, error)
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx context.Context, m Member, this any, args []any, original Invoker) (any, error)

// Dispatch implements Dispatcher.
func (f DispatcherFunc) Dispatch(ctx context.Context, m Member, this any, args []any, original Invoker) (any, error) {
	return f(ctx, m, this, args, original)
}

// Handle identifies an installed trampoline.
type Handle interface {
	Member() Member
}

// Interceptor is the interception primitive supplied by the host runtime.
type Interceptor interface {
	// Resolve reports ErrMemberNotFound (possibly wrapped) when m does not exist.
	Resolve(m Member) error

	// Members lists every member declared by owner, in declaration order.
	Members(owner string) []Member

	// Install routes every subsequent invocation of m through d.
	Install(m Member, d Dispatcher) (Handle, error)

	// Uninstall restores the original routing for the handle's member.
	Uninstall(h Handle) error
}
