package boot

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeBundle creates a bundle archive under dir. A nil manifest omits the
// manifest entry.
func writeBundle(t *testing.T, dir, name string, manifest, index []string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	if manifest != nil {
		w, err := zw.Create(ManifestEntry)
		require.NoError(t, err)
		_, err = w.Write([]byte("# entry points\n\n" + strings.Join(manifest, "\n") + "\n"))
		require.NoError(t, err)
	}
	w, err := zw.Create(ClassIndexEntry)
	require.NoError(t, err)
	_, err = w.Write([]byte(strings.Join(index, "\n")))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return path
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadLines(t *testing.T) {
	lines, err := ReadLines(strings.NewReader("  a.B \n\n# comment\n\tc.D\n#e.F\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a.B", "c.D"}, lines)
}

func TestReadModuleList(t *testing.T) {
	dir := t.TempDir()
	_, err := ReadModuleList(FileSource{}, filepath.Join(dir, "modules.list"))
	assert.ErrorIs(t, err, ErrModuleListMissing)

	list := writeFile(t, dir, "modules.list", "/data/a.zip\n# disabled\n/data/b.zip\n")
	paths, err := ReadModuleList(FileSource{}, list)
	require.NoError(t, err)
	assert.Equal(t, []string{"/data/a.zip", "/data/b.zip"}, paths)
}

func TestOpenBundle(t *testing.T) {
	dir := t.TempDir()
	v := Validation{FrameworkClass: DefaultFrameworkClass, ToolchainMarkers: DefaultToolchainMarkers}

	good := writeBundle(t, dir, "good.zip", []string{"com.example.Main"}, []string{"com.example.Main", "com.example.Util"})
	b, err := OpenBundle(FileSource{}, good, v)
	require.NoError(t, err)
	assert.Equal(t, []string{"com.example.Main"}, b.EntryPoints)
	assert.Len(t, b.Index, 2)

	cases := []struct {
		name  string
		path  string
		stage string
		want  error
	}{
		{"missing file", filepath.Join(dir, "absent.zip"), StageOpen, ErrBundleMissing},
		{"not an archive", writeFile(t, dir, "junk.zip", "not a zip"), StageOpen, ErrBundleUnreadable},
		{"incompatible toolchain", writeBundle(t, dir, "ir.zip", []string{"a.B"}, []string{"a.B", DefaultToolchainMarkers[0]}), StageValidate, ErrIncompatibleToolchain},
		{"framework embedded", writeBundle(t, dir, "fw.zip", []string{"a.B"}, []string{"a.B", DefaultFrameworkClass}), StageValidate, ErrFrameworkEmbedded},
		{"manifest missing", writeBundle(t, dir, "nomanifest.zip", nil, []string{"a.B"}), StageManifest, ErrManifestMissing},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := OpenBundle(FileSource{}, tc.path, v)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
			var be *BundleError
			require.ErrorAs(t, err, &be)
			assert.Equal(t, tc.stage, be.Stage)
			assert.Equal(t, tc.path, be.Path)
		})
	}
}
