package hook

// Priorities. Lower values run earlier in the before stage and later in the after stage.
const (
	PriorityHighest = -10000
	PriorityDefault = 50
	PriorityLowest  = 10000
)

// Callback is advice attached to an interception point.
//
// Before may mutate p.Args, or call SetResult/SetThrowable to skip the
// original body and the remaining before callbacks. A returned error is
// recorded as the thrown value and ends the before stage. After observes the
// outcome and may override it; a returned error replaces the current outcome.
type Callback interface {
	Before(p *Param) error
	After(p *Param) error
}

// Funcs adapts a pair of optional functions to Callback.
type Funcs struct {
	BeforeFunc func(p *Param) error
	AfterFunc  func(p *Param) error
}

// Before implements Callback.
func (f Funcs) Before(p *Param) error {
	if f.BeforeFunc == nil {
		return nil
	}
	return f.BeforeFunc(p)
}

// After implements Callback.
func (f Funcs) After(p *Param) error {
	if f.AfterFunc == nil {
		return nil
	}
	return f.AfterFunc(p)
}

// BeforeFunc returns a callback with only a before stage.
func BeforeFunc(fn func(p *Param) error) Callback { return Funcs{BeforeFunc: fn} }

// AfterFunc returns a callback with only an after stage.
func AfterFunc(fn func(p *Param) error) Callback { return Funcs{AfterFunc: fn} }

type replacement struct {
	fn func(p *Param) (any, error)
}

// Replace returns a callback that substitutes the original body with fn.
// fn may still reach the body through p.InvokeOriginal.
func Replace(fn func(p *Param) (any, error)) Callback {
	return replacement{fn: fn}
}

func (r replacement) Before(p *Param) error {
	v, err := r.fn(p)
	if err != nil {
		p.SetThrowable(err)
		return nil
	}
	p.SetResult(v)
	return nil
}

func (replacement) After(*Param) error { return nil }

// ReturnConstant replaces the original body with one that always returns v.
func ReturnConstant(v any) Callback {
	return Replace(func(*Param) (any, error) { return v, nil })
}

// DoNothing replaces the original body with one that returns nil.
var DoNothing = ReturnConstant(nil)
