package xhook

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-lynx/xhook/boot"
	"github.com/go-lynx/xhook/conf"
	"github.com/go-lynx/xhook/factory"
	"github.com/go-lynx/xhook/hook"
	"github.com/go-lynx/xhook/host"
	"github.com/go-lynx/xhook/plugins"
	"github.com/go-lynx/xhook/resources"
)

var greet = host.Method("app.Greeter", "greet", "string")

// shouter upper-cases every greeting and records the packages it sees.
type shouter struct {
	mu       sync.Mutex
	packages []string
	res      []string
}

func (s *shouter) InitEarlyBootstrap(p *plugins.EarlyBootstrapParam) error {
	_, err := p.Hooks.Register(greet, hook.PriorityDefault, hook.AfterFunc(func(p *hook.Param) error {
		p.SetResult(strings.ToUpper(p.Result().(string)))
		return nil
	}))
	return err
}

func (s *shouter) HandleLoadPackage(p *plugins.PackageLoadParam) error {
	s.mu.Lock()
	s.packages = append(s.packages, p.PackageName)
	s.mu.Unlock()
	return nil
}

func (s *shouter) HandleInitPackageResources(p *plugins.ResourceInitParam) error {
	s.mu.Lock()
	s.res = append(s.res, p.PackageName+"@"+p.Res.ResDir())
	s.mu.Unlock()
	return nil
}

type assets struct{}

func (assets) Close() error { return nil }

type res struct{}

func (res) Assets() resources.Assets { return assets{} }

type env struct {
	dir     string
	tbl     *host.Table
	catalog *factory.Catalog
	plugin  *shouter
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{dir: t.TempDir(), tbl: host.NewTable(), catalog: factory.NewCatalog(), plugin: &shouter{}}
	e.tbl.MustDefine(greet, func(_ context.Context, _ any, args []any) (any, error) {
		return "hello " + args[0].(string), nil
	})
	factory.Register(e.catalog, "com.example.Shouter", func() *shouter { return e.plugin })
	require.NoError(t, os.MkdirAll(filepath.Join(e.dir, "conf"), 0o755))
	return e
}

func (e *env) writeBundle(t *testing.T, name string, classes ...string) string {
	t.Helper()
	path := filepath.Join(e.dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	zw := zip.NewWriter(f)
	for _, entry := range []string{boot.ManifestEntry, boot.ClassIndexEntry} {
		w, err := zw.Create(entry)
		require.NoError(t, err)
		_, err = w.Write([]byte(strings.Join(classes, "\n")))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return path
}

func (e *env) bridge(t *testing.T) *Bridge {
	t.Helper()
	cfg := conf.Default()
	cfg.BaseDir = e.dir
	b, err := New(Options{Name: t.Name(), Config: cfg, Host: e.tbl, Catalog: e.catalog})
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestNew_RequiresHost(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestBridge_LoadModulesAndDispatch(t *testing.T) {
	e := newEnv(t)
	bundle := e.writeBundle(t, "shouter.zip", "com.example.Shouter")
	require.NoError(t, os.WriteFile(filepath.Join(e.dir, conf.DefaultModulesList), []byte(bundle+"\n"), 0o644))
	b := e.bridge(t)

	report := b.LoadModules(boot.ProcessContext{EarlyBootstrap: true})
	require.NoError(t, report.ListErr)
	require.Len(t, report.Instances(), 1)
	assert.Equal(t, plugins.CapEarlyBootstrap|plugins.CapPackageLoad|plugins.CapResourceInit, report.Instances()[0].Caps)

	out, err := e.tbl.Call(context.Background(), greet, nil, "world")
	require.NoError(t, err)
	assert.Equal(t, "HELLO WORLD", out)
	assert.Equal(t, 1, b.Registry().Points())

	require.NoError(t, b.BindApplication(AppBinding{PackageName: "com.example.app", ProcessName: "com.example.app", ResDir: "/app/base.apk"}))
	require.NoError(t, b.HandleLoadPackage(&plugins.PackageLoadParam{PackageName: "com.example.app"}))
	require.NoError(t, b.HandleLoadPackage(&plugins.PackageLoadParam{PackageName: "com.example.lib"}))
	assert.Equal(t, []string{"com.example.app", "com.example.lib"}, e.plugin.packages)

	key := resources.Key{ResDir: "/app/base.apk"}
	inst, err := b.Coordinator().OnCreated(context.Background(), res{}, key)
	require.NoError(t, err)
	assert.Equal(t, "com.example.app", inst.PackageName())
	assert.Equal(t, []string{"com.example.app@/app/base.apk"}, e.plugin.res)

	require.NoError(t, b.Close())
	assert.False(t, e.tbl.Installed(greet))
	out, err = e.tbl.Call(context.Background(), greet, nil, "world")
	require.NoError(t, err)
	assert.Equal(t, "hello world", out)

	_, err = b.HookMethod(greet, hook.DoNothing)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestBridge_InstrumentationDisablesHooks(t *testing.T) {
	e := newEnv(t)
	b := e.bridge(t)
	_, err := b.HookMethod(greet, hook.ReturnConstant("hooked"))
	require.NoError(t, err)

	out, err := e.tbl.Call(context.Background(), greet, nil, "x")
	require.NoError(t, err)
	assert.Equal(t, "hooked", out)

	remove := b.HookLoadPackage(e.plugin)
	defer remove()
	require.NoError(t, b.BindApplication(AppBinding{PackageName: "com.example.test", Instrumentation: true}))
	assert.True(t, b.Engine().Disabled())
	assert.Empty(t, e.plugin.packages)

	out, err = e.tbl.Call(context.Background(), greet, nil, "x")
	require.NoError(t, err)
	assert.Equal(t, "hello x", out)
}

func TestBridge_ResourcesDisabledByMarker(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(e.dir, conf.DefaultDisableResourcesFile), nil, 0o644))
	b := e.bridge(t)
	require.True(t, b.ResourcesDisabled())

	b.HookInitPackageResources(e.plugin)
	require.NoError(t, b.InstallResourceHooks(resources.UncachedFactory{Factory: greet}))
	assert.False(t, e.tbl.Installed(greet))

	b.Coordinator().SetPackageNameForResDir("com.example.app", "/app/base.apk")
	_, err := b.Coordinator().OnCreated(context.Background(), res{}, resources.Key{ResDir: "/app/base.apk"})
	require.NoError(t, err)
	assert.Empty(t, e.plugin.res)

	bundle := e.writeBundle(t, "shouter.zip", "com.example.Shouter")
	br := b.LoadBundle(boot.ProcessContext{EarlyBootstrap: true}, bundle)
	require.Len(t, br.Entries, 1)
	assert.ErrorIs(t, br.Entries[0].Err, plugins.ErrResourcesDisabled)
}

func TestBridge_InstallResourceHooks(t *testing.T) {
	e := newEnv(t)
	themed := host.Method("app.Resources", "createThemed", "string")
	e.tbl.MustDefine(themed, func(context.Context, any, []any) (any, error) { return res{}, nil })
	b := e.bridge(t)

	require.NoError(t, b.InstallResourceHooks(resources.UncachedFactory{Factory: themed}))
	out, err := e.tbl.Call(context.Background(), themed, nil, "/theme")
	require.NoError(t, err)
	inst, ok := out.(*resources.Instrumented)
	require.True(t, ok)
	assert.Equal(t, "/theme", inst.ResDir())

	err = b.InstallResourceHooks(resources.UncachedFactory{Factory: host.Method("app.Missing", "x")})
	assert.ErrorIs(t, err, hook.ErrTargetNotFound)
}
