package hook

import (
	"context"
	"runtime/debug"
	"sync/atomic"

	"github.com/go-lynx/xhook/host"
	"github.com/go-lynx/xhook/log"
	"github.com/go-lynx/xhook/observability/metrics"
)

// Engine runs the before/original/after chain of one invocation.
// It implements host.Dispatcher and is what every trampoline routes into.
type Engine struct {
	registry *Registry
	disabled atomic.Bool
}

// Disable makes every later invocation call the original body directly.
func (e *Engine) Disable() { e.disabled.Store(true) }

// Enable reverts Disable.
func (e *Engine) Enable() { e.disabled.Store(false) }

// Disabled reports whether hooks are bypassed.
func (e *Engine) Disabled() bool { return e.disabled.Load() }

// Dispatch implements host.Dispatcher.
func (e *Engine) Dispatch(ctx context.Context, m host.Member, this any, args []any, original host.Invoker) (any, error) {
	if e.disabled.Load() {
		metrics.DispatchTotal.WithLabelValues(metrics.OutcomeDisabled).Inc()
		return original(ctx, this, args)
	}

	regs := e.registry.snapshot(m)
	if len(regs) == 0 {
		metrics.DispatchTotal.WithLabelValues(metrics.OutcomeOriginal).Inc()
		return original(ctx, this, args)
	}

	p := &Param{Member: m, This: this, Args: args, ctx: ctx, original: original}
	outcome := metrics.OutcomeOriginal

	entered := 0
	for _, reg := range regs {
		entered++
		if err := e.call(StageBefore, reg, p, reg.Callback.Before); err != nil {
			p.SetThrowable(err)
			outcome = metrics.OutcomeFault
			break
		}
		if p.returnEarly {
			outcome = metrics.OutcomeShortCircuit
			break
		}
	}

	if !p.returnEarly {
		p.result, p.throwable = original(p.Context(), p.This, p.Args)
	}

	for i := entered - 1; i >= 0; i-- {
		reg := regs[i]
		if err := e.call(StageAfter, reg, p, reg.Callback.After); err != nil {
			p.result = nil
			p.throwable = err
		}
	}

	metrics.DispatchTotal.WithLabelValues(outcome).Inc()
	return p.ResultOrThrowable()
}

// call runs one stage of a callback and converts a panic into a *CallbackError.
func (e *Engine) call(stage string, reg Registration, p *Param, fn func(*Param) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &CallbackError{
				Point:    reg.Point,
				Stage:    stage,
				Priority: reg.Priority,
				Value:    r,
				Stack:    debug.Stack(),
			}
			log.Errorf("panic in %s hook on %s: %v", stage, reg.Point, r)
		}
		if err != nil {
			metrics.CallbackFaults.WithLabelValues(stage).Inc()
		}
	}()
	return fn(p)
}
