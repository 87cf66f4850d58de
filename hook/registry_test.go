package hook

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-lynx/xhook/host"
)

func TestRegister_TargetNotFound(t *testing.T) {
	reg := NewRegistry(host.NewTable())
	_, err := reg.Register(host.Method("app.Missing", "run"), PriorityDefault, Funcs{})
	assert.ErrorIs(t, err, ErrTargetNotFound)
	assert.ErrorIs(t, err, host.ErrMemberNotFound)
	assert.Zero(t, reg.Points())

	_, err = reg.Register(target, PriorityDefault, nil)
	assert.ErrorIs(t, err, ErrNilCallback)
}

func TestRegister_TiesKeepRegistrationOrder(t *testing.T) {
	_, reg, tr := newFixture(t)
	for _, name := range []string{"a", "b", "c"} {
		_, err := reg.Register(target, PriorityDefault, tracing(tr, name))
		require.NoError(t, err)
	}
	_, err := reg.Register(target, PriorityHighest, tracing(tr, "first"))
	require.NoError(t, err)

	snap := reg.Snapshot(target)
	require.Len(t, snap, 4)
	assert.Equal(t, PriorityHighest, snap[0].Priority)
	for _, r := range snap[1:] {
		assert.Equal(t, PriorityDefault, r.Priority)
	}
	assert.NotNil(t, snap[0].Unhook())
}

func TestUnhook_LastRemovesTrampoline(t *testing.T) {
	tbl, reg, _ := newFixture(t)
	u1, err := reg.Register(target, 1, Funcs{})
	require.NoError(t, err)
	u2, err := reg.Register(target, 2, Funcs{})
	require.NoError(t, err)
	assert.True(t, tbl.Installed(target))
	assert.Equal(t, 1, reg.Points())
	assert.Equal(t, 2, reg.Callbacks())

	require.NoError(t, u1.Unhook())
	require.NoError(t, u1.Unhook())
	assert.True(t, tbl.Installed(target))

	require.NoError(t, reg.Unregister(u2))
	assert.False(t, tbl.Installed(target))
	assert.Empty(t, reg.Snapshot(target))
	assert.Equal(t, target, u2.Point())
}

func TestUnhook_DuringOwnDispatch(t *testing.T) {
	tbl, reg, tr := newFixture(t)
	var self *Unhook
	var err error
	self, err = reg.Register(target, 10, Funcs{
		BeforeFunc: func(*Param) error {
			tr.add("before(self)")
			return self.Unhook()
		},
		AfterFunc: func(*Param) error { tr.add("after(self)"); return nil },
	})
	require.NoError(t, err)
	_, err = reg.Register(target, 20, tracing(tr, "20"))
	require.NoError(t, err)

	_, err = tbl.Call(context.Background(), target, nil, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"before(self)", "before(20)", "original", "after(20)", "after(self)"}, tr.get())

	tr.steps = nil
	_, err = tbl.Call(context.Background(), target, nil, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"before(20)", "original", "after(20)"}, tr.get())
}

func TestRegister_DuringDispatchAppliesLater(t *testing.T) {
	tbl, reg, tr := newFixture(t)
	added := false
	_, err := reg.Register(target, 10, BeforeFunc(func(*Param) error {
		if !added {
			added = true
			_, err := reg.Register(target, 5, tracing(tr, "late"))
			return err
		}
		return nil
	}))
	require.NoError(t, err)

	_, err = tbl.Call(context.Background(), target, nil, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"original"}, tr.get())

	tr.steps = nil
	_, err = tbl.Call(context.Background(), target, nil, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"before(late)", "original", "after(late)"}, tr.get())
}

func TestHookAllMethodsAndConstructors(t *testing.T) {
	tbl := host.NewTable()
	reg := NewRegistry(tbl)
	one := host.Method("app.Calc", "add", "int")
	two := host.Method("app.Calc", "add", "int", "int")
	other := host.Method("app.Calc", "sub", "int")
	ctor := host.Constructor("app.Calc")
	for _, m := range []host.Member{one, two, other} {
		tbl.MustDefine(m, func(context.Context, any, []any) (any, error) { return "orig", nil })
	}
	tbl.MustDefine(ctor, func(context.Context, any, []any) (any, error) { return &struct{ n int }{}, nil })

	unhooks, err := reg.HookAllMethods("app.Calc", "add", PriorityDefault, ReturnConstant("hooked"))
	require.NoError(t, err)
	assert.Len(t, unhooks, 2)

	res, _ := tbl.Call(context.Background(), two, nil, 1, 2)
	assert.Equal(t, "hooked", res)
	res, _ = tbl.Call(context.Background(), other, nil, 1)
	assert.Equal(t, "orig", res)

	var built any
	_, err = reg.HookAllConstructors("app.Calc", PriorityDefault, AfterFunc(func(p *Param) error {
		built = p.Result()
		return nil
	}))
	require.NoError(t, err)
	obj, err := tbl.New(context.Background(), "app.Calc", nil)
	require.NoError(t, err)
	assert.Same(t, obj, built)

	_, err = reg.HookAllMethods("app.Calc", "mul", PriorityDefault, Funcs{})
	assert.ErrorIs(t, err, ErrTargetNotFound)
	_, err = reg.HookAllConstructors("app.None", PriorityDefault, Funcs{})
	assert.ErrorIs(t, err, ErrTargetNotFound)

	require.NoError(t, reg.UnhookAll())
	assert.Zero(t, reg.Points())
	for _, m := range []host.Member{one, two, ctor} {
		assert.False(t, tbl.Installed(m))
	}
	// Tokens issued before UnhookAll stay harmless.
	assert.NoError(t, unhooks[0].Unhook())
}
