package bundle

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-lynx/xhook/boot"
)

func init() {
	color.NoColor = true
}

func writeBundle(t *testing.T, dir, name string, entries map[string]string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	zw := zip.NewWriter(f)
	for n, content := range entries {
		w, err := zw.Create(n)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return path
}

func TestVerify(t *testing.T) {
	dir := t.TempDir()
	good := writeBundle(t, dir, "good.zip", map[string]string{
		boot.ManifestEntry:   "com.example.Main\n",
		boot.ClassIndexEntry: "com.example.Main\n",
	})
	embedded := writeBundle(t, dir, "embedded.zip", map[string]string{
		boot.ManifestEntry:   "com.example.Main\n",
		boot.ClassIndexEntry: "com.example.Main\n" + boot.DefaultFrameworkClass + "\n",
	})
	list := filepath.Join(dir, "modules.list")
	require.NoError(t, os.WriteFile(list, []byte(good+"\n"+embedded+"\n"), 0o644))

	var out bytes.Buffer
	err := Verify(&out, boot.FileSource{}, list, boot.Validation{FrameworkClass: boot.DefaultFrameworkClass})
	assert.ErrorIs(t, err, ErrInvalid)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "OK   "+good))
	assert.Contains(t, lines[1], "FAIL "+embedded)
	assert.Contains(t, lines[1], "embeds the framework API")
	assert.Equal(t, "2 bundles, 1 failed", lines[2])
}

func TestVerify_MissingList(t *testing.T) {
	err := Verify(&bytes.Buffer{}, boot.FileSource{}, filepath.Join(t.TempDir(), "none"), boot.Validation{})
	assert.ErrorIs(t, err, boot.ErrModuleListMissing)
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	path := writeBundle(t, dir, "b.zip", map[string]string{
		boot.ManifestEntry:   "com.example.A\ncom.example.B\n",
		boot.ClassIndexEntry: "com.example.A\ncom.example.B\n",
	})
	var out bytes.Buffer
	require.NoError(t, Inspect(&out, boot.FileSource{}, path, boot.Validation{}))
	assert.Equal(t, path+"\nentry points:\n  com.example.A\n  com.example.B\n", out.String())

	noManifest := writeBundle(t, dir, "c.zip", map[string]string{boot.ClassIndexEntry: "x\n"})
	assert.ErrorIs(t, Inspect(&out, boot.FileSource{}, noManifest, boot.Validation{}), boot.ErrManifestMissing)
}
