package host

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echo(_ context.Context, _ any, args []any) (any, error) {
	if len(args) == 0 {
		return nil, nil
	}
	return args[0], nil
}

func TestMember_String(t *testing.T) {
	assert.Equal(t, "a.B#run(int,string)", Method("a.B", "run", "int", "string").String())
	assert.Equal(t, "a.B#<init>()", Constructor("a.B").String())
	assert.Equal(t, []string{"int", "string"}, Method("a.B", "run", "int", "string").ParamTypes())
	assert.Nil(t, Method("a.B", "run").ParamTypes())
}

func TestTable_DefineAndCall(t *testing.T) {
	tbl := NewTable()
	m := Method("svc.Echo", "echo", "string")
	require.NoError(t, tbl.Define(m, echo))

	err := tbl.Define(m, echo)
	assert.ErrorIs(t, err, ErrMemberExists)

	out, err := tbl.Call(context.Background(), m, nil, "hi")
	require.NoError(t, err)
	assert.Equal(t, "hi", out)

	_, err = tbl.Call(context.Background(), Method("svc.Echo", "missing"), nil)
	assert.ErrorIs(t, err, ErrMemberNotFound)
	assert.ErrorIs(t, tbl.Resolve(Method("svc.Echo", "missing")), ErrMemberNotFound)
}

func TestTable_InstallRoutesAndUninstallRestores(t *testing.T) {
	tbl := NewTable()
	m := Method("svc.Echo", "echo", "string")
	tbl.MustDefine(m, echo)

	d := DispatcherFunc(func(ctx context.Context, _ Member, this any, args []any, original Invoker) (any, error) {
		v, err := original(ctx, this, args)
		return "wrapped:" + v.(string), err
	})

	h, err := tbl.Install(m, d)
	require.NoError(t, err)
	assert.True(t, tbl.Installed(m))
	assert.Equal(t, m, h.Member())

	_, err = tbl.Install(m, d)
	assert.ErrorIs(t, err, ErrAlreadyInstalled)

	out, err := tbl.Call(context.Background(), m, nil, "x")
	require.NoError(t, err)
	assert.Equal(t, "wrapped:x", out)

	raw, err := tbl.CallOriginal(context.Background(), m, nil, "x")
	require.NoError(t, err)
	assert.Equal(t, "x", raw)

	require.NoError(t, tbl.Uninstall(h))
	assert.False(t, tbl.Installed(m))
	assert.True(t, errors.Is(tbl.Uninstall(h), ErrNotInstalled))

	out, err = tbl.Call(context.Background(), m, nil, "x")
	require.NoError(t, err)
	assert.Equal(t, "x", out)
}

func TestTable_MembersKeepsDeclarationOrder(t *testing.T) {
	tbl := NewTable()
	tbl.MustDefine(Constructor("k.Key"), echo)
	tbl.MustDefine(Constructor("k.Key", "string"), echo)
	tbl.MustDefine(Method("k.Key", "hash"), echo)

	got := tbl.Members("k.Key")
	require.Len(t, got, 3)
	assert.True(t, got[0].Constructor)
	assert.Equal(t, "string", got[1].Params)
	assert.Equal(t, "hash", got[2].Name)
	assert.Empty(t, tbl.Members("nobody"))
}
