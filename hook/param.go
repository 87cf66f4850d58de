package hook

import (
	"context"

	"github.com/go-lynx/xhook/host"
)

// Param carries the state of one intercepted invocation. It is created when
// the call enters the engine and is not shared between calls.
type Param struct {
	// Member is the interception point being dispatched.
	Member host.Member
	// This is the receiver, nil for static members and constructors.
	This any
	// Args are the call arguments. Before callbacks may modify them.
	Args []any

	ctx         context.Context
	original    host.Invoker
	result      any
	throwable   error
	returnEarly bool
	data        map[any]any
}

// Context returns the call context.
func (p *Param) Context() context.Context {
	if p.ctx == nil {
		return context.Background()
	}
	return p.ctx
}

// WithContext replaces the call context. The original body and every later
// callback of this invocation observe the new context.
func (p *Param) WithContext(ctx context.Context) {
	if ctx != nil {
		p.ctx = ctx
	}
}

// Result returns the current result.
func (p *Param) Result() any { return p.result }

// SetResult sets the result and clears any thrown value. Called from a before
// callback it skips the original body.
func (p *Param) SetResult(v any) {
	p.result = v
	p.throwable = nil
	p.returnEarly = true
}

// Throwable returns the current thrown value.
func (p *Param) Throwable() error { return p.throwable }

// HasThrowable reports whether the invocation currently ends with a fault.
func (p *Param) HasThrowable() bool { return p.throwable != nil }

// SetThrowable records err as the outcome. Called from a before callback it
// skips the original body.
func (p *Param) SetThrowable(err error) {
	p.throwable = err
	p.result = nil
	p.returnEarly = true
}

// ResultOrThrowable returns the outcome the caller would currently observe.
func (p *Param) ResultOrThrowable() (any, error) {
	if p.throwable != nil {
		return nil, p.throwable
	}
	return p.result, nil
}

// Returned reports whether a before callback ended the before stage.
func (p *Param) Returned() bool { return p.returnEarly }

// Set stores per-call data shared between the stages of this invocation.
func (p *Param) Set(key, value any) {
	if p.data == nil {
		p.data = make(map[any]any)
	}
	p.data[key] = value
}

// Get returns per-call data stored with Set.
func (p *Param) Get(key any) (any, bool) {
	v, ok := p.data[key]
	return v, ok
}

// InvokeOriginal runs the original body with the current receiver and
// arguments without going through any hook.
func (p *Param) InvokeOriginal() (any, error) {
	return p.original(p.Context(), p.This, p.Args)
}
