package resources

import (
	"fmt"

	"github.com/go-lynx/xhook/hook"
	"github.com/go-lynx/xhook/host"
	"github.com/go-lynx/xhook/log"
	"github.com/go-lynx/xhook/observability/metrics"
)

// Adapter binds a Coordinator to the factory members of one host version.
type Adapter interface {
	Install(reg *hook.Registry, c *Coordinator) ([]*hook.Unhook, error)
}

// KeyedFactory adapts a factory whose arguments carry the key and whose
// result is the created bundle.
type KeyedFactory struct {
	Factory host.Member
	// KeyArg is the index of the key argument.
	KeyArg int
	// KeyFunc converts the key argument. DirectKey is used when nil.
	KeyFunc KeyFunc
}

// Install implements Adapter.
func (a KeyedFactory) Install(reg *hook.Registry, c *Coordinator) ([]*hook.Unhook, error) {
	keyFunc := a.KeyFunc
	if keyFunc == nil {
		keyFunc = DirectKey
	}
	u, err := reg.Register(a.Factory, hook.PriorityDefault, hook.AfterFunc(func(p *hook.Param) error {
		if p.HasThrowable() || a.KeyArg >= len(p.Args) {
			return nil
		}
		key, ok := keyFunc(p.Args[a.KeyArg])
		if !ok {
			log.Warnf("resources: unrecognised key argument %T on %s", p.Args[a.KeyArg], a.Factory)
			return nil
		}
		substitute(p, key, c)
		return nil
	}))
	if err != nil {
		return nil, err
	}
	return []*hook.Unhook{u}, nil
}

// CorrelatedFactory adapts a factory that builds the key internally. The key
// is recovered by intercepting the key constructor on the same call scope.
type CorrelatedFactory struct {
	Factory        host.Member
	KeyConstructor host.Member
	// KeyFunc converts the constructed key object. DirectKey is used when nil.
	KeyFunc KeyFunc
}

type scopeSlot struct{}

// Install implements Adapter.
func (a CorrelatedFactory) Install(reg *hook.Registry, c *Coordinator) ([]*hook.Unhook, error) {
	keyFunc := a.KeyFunc
	if keyFunc == nil {
		keyFunc = DirectKey
	}

	ctorHook, err := reg.Register(a.KeyConstructor, hook.PriorityDefault, hook.AfterFunc(func(p *hook.Param) error {
		s, ok := ScopeFrom(p.Context())
		if !ok || p.HasThrowable() {
			return nil
		}
		if key, ok := keyFunc(p.Result()); ok {
			s.Record(key)
		}
		return nil
	}))
	if err != nil {
		return nil, err
	}

	factoryHook, err := reg.Register(a.Factory, hook.PriorityDefault, hook.Funcs{
		BeforeFunc: func(p *hook.Param) error {
			ctx, s := OpenScope(p.Context())
			p.WithContext(ctx)
			p.Set(scopeSlot{}, s)
			return nil
		},
		AfterFunc: func(p *hook.Param) error {
			v, ok := p.Get(scopeSlot{})
			if !ok || p.HasThrowable() {
				return nil
			}
			key, err := v.(*Scope).Key()
			if err != nil {
				metrics.Substitutions.WithLabelValues(metrics.SubstSkippedAmbiguous).Inc()
				log.Warnf("resources: skip substitution on %s: %v", a.Factory, err)
				return nil
			}
			substitute(p, key, c)
			return nil
		},
	})
	if err != nil {
		_ = ctorHook.Unhook()
		return nil, err
	}
	return []*hook.Unhook{ctorHook, factoryHook}, nil
}

// UncachedFactory adapts a factory that never caches its result, such as a
// themed bundle factory taking the resource directory as an argument.
type UncachedFactory struct {
	Factory   host.Member
	ResDirArg int
}

// Install implements Adapter.
func (a UncachedFactory) Install(reg *hook.Registry, c *Coordinator) ([]*hook.Unhook, error) {
	u, err := reg.Register(a.Factory, hook.PriorityDefault, hook.AfterFunc(func(p *hook.Param) error {
		if p.HasThrowable() || a.ResDirArg >= len(p.Args) {
			return nil
		}
		raw, ok := p.Result().(Resource)
		if !ok {
			return nil
		}
		dir, _ := p.Args[a.ResDirArg].(string)
		inst, err := c.Substitute(p.Context(), raw, dir)
		if err != nil {
			log.Debugf("resources: keep original bundle for %s: %v", dir, err)
			return nil
		}
		p.SetResult(inst)
		return nil
	}))
	if err != nil {
		return nil, err
	}
	return []*hook.Unhook{u}, nil
}

func substitute(p *hook.Param, key Key, c *Coordinator) {
	raw, ok := p.Result().(Resource)
	if !ok {
		if p.Result() != nil {
			log.Warnf("resources: factory %s returned %T, not a resource", p.Member, p.Result())
		}
		return
	}
	inst, err := c.OnCreated(p.Context(), raw, key)
	if err != nil {
		log.Debugf("resources: keep original bundle for %s: %v", key, err)
		return
	}
	p.SetResult(inst)
}

// InstallAll installs every adapter and removes the hooks of all of them on
// the first failure.
func InstallAll(reg *hook.Registry, c *Coordinator, adapters ...Adapter) ([]*hook.Unhook, error) {
	var all []*hook.Unhook
	for i, a := range adapters {
		unhooks, err := a.Install(reg, c)
		if err != nil {
			for _, u := range all {
				_ = u.Unhook()
			}
			return nil, fmt.Errorf("install resource adapter %d: %w", i, err)
		}
		all = append(all, unhooks...)
	}
	return all, nil
}
