package boot

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/klauspost/compress/zip"
)

// Well-known archive entries.
const (
	// ManifestEntry lists the entry-point class names of a bundle.
	ManifestEntry = "assets/xhook_init"
	// ClassIndexEntry lists every class packaged in a bundle.
	ClassIndexEntry = "classes.idx"
)

// DefaultFrameworkClass is the framework API class a bundle must not package.
const DefaultFrameworkClass = "github.com/go-lynx/xhook.Bridge"

// DefaultToolchainMarkers are classes injected by toolchains whose bundles
// cannot be loaded from a plain archive.
var DefaultToolchainMarkers = []string{"com.android.tools.fd.runtime.BootstrapApplication"}

// Bundle is a validated plugin archive.
type Bundle struct {
	Path string
	// EntryPoints are the manifest class names in declaration order.
	EntryPoints []string
	// Index lists the classes packaged in the archive.
	Index []string
}

// Validation configures which bundles are rejected.
type Validation struct {
	FrameworkClass   string
	ToolchainMarkers []string
}

// ReadLines parses a newline-delimited list, skipping blank lines and lines
// starting with '#'.
func ReadLines(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ReadModuleList returns the bundle paths listed at path.
func ReadModuleList(src Source, path string) ([]string, error) {
	if !src.Exists(path) {
		return nil, fmt.Errorf("%s: %w", path, ErrModuleListMissing)
	}
	f, err := src.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open module list %s: %w", path, err)
	}
	defer f.Close()
	return ReadLines(f)
}

// OpenBundle reads and validates the bundle at path. Every failure is a
// *BundleError.
func OpenBundle(src Source, path string, v Validation) (*Bundle, error) {
	if !src.Exists(path) {
		return nil, &BundleError{Path: path, Stage: StageOpen, Err: ErrBundleMissing}
	}
	zr, err := src.OpenArchive(path)
	if err != nil {
		return nil, &BundleError{Path: path, Stage: StageOpen, Err: fmt.Errorf("%w: %w", ErrBundleUnreadable, err)}
	}
	defer zr.Close()

	index, _, err := readEntry(&zr.Reader, ClassIndexEntry)
	if err != nil {
		return nil, &BundleError{Path: path, Stage: StageOpen, Err: fmt.Errorf("%w: %w", ErrBundleUnreadable, err)}
	}
	for _, marker := range v.ToolchainMarkers {
		if slices.Contains(index, marker) {
			return nil, &BundleError{Path: path, Stage: StageValidate, Err: fmt.Errorf("%w: contains %s", ErrIncompatibleToolchain, marker)}
		}
	}
	if v.FrameworkClass != "" && slices.Contains(index, v.FrameworkClass) {
		return nil, &BundleError{Path: path, Stage: StageValidate, Err: fmt.Errorf("%w: contains %s", ErrFrameworkEmbedded, v.FrameworkClass)}
	}

	entries, found, err := readEntry(&zr.Reader, ManifestEntry)
	if err != nil {
		return nil, &BundleError{Path: path, Stage: StageManifest, Err: err}
	}
	if !found {
		return nil, &BundleError{Path: path, Stage: StageManifest, Err: fmt.Errorf("%w: no %s", ErrManifestMissing, ManifestEntry)}
	}
	return &Bundle{Path: path, EntryPoints: entries, Index: index}, nil
}

// readEntry parses the list stored at name. A missing entry is not an error.
func readEntry(zr *zip.Reader, name string) ([]string, bool, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, true, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()
		lines, err := ReadLines(rc)
		if err != nil {
			return nil, true, fmt.Errorf("read %s: %w", name, err)
		}
		return lines, true, nil
	}
	return nil, false, nil
}
