package boot

import (
	"errors"
	"fmt"
)

var (
	// ErrModuleListMissing indicates the module list does not exist.
	ErrModuleListMissing = errors.New("module list missing")

	// ErrBundleMissing indicates a listed bundle file does not exist.
	ErrBundleMissing = errors.New("bundle file missing")

	// ErrBundleUnreadable indicates a bundle archive cannot be opened.
	ErrBundleUnreadable = errors.New("bundle archive unreadable")

	// ErrIncompatibleToolchain indicates a bundle built with a known-incompatible toolchain.
	ErrIncompatibleToolchain = errors.New("bundle built with incompatible toolchain")

	// ErrFrameworkEmbedded indicates a bundle packaging the framework API itself.
	ErrFrameworkEmbedded = errors.New("bundle embeds the framework API")

	// ErrManifestMissing indicates a bundle without an entry-point manifest.
	ErrManifestMissing = errors.New("bundle manifest missing")

	// ErrAlreadyLoaded indicates a bundle already loaded in this process.
	ErrAlreadyLoaded = errors.New("bundle already loaded")
)

// Bundle validation stages.
const (
	StageOpen     = "open"
	StageValidate = "validate"
	StageManifest = "manifest"
)

// BundleError describes why a bundle was skipped.
type BundleError struct {
	Path  string
	Stage string
	Err   error
}

// Error implements the error interface.
func (e *BundleError) Error() string {
	return fmt.Sprintf("bundle %s: %s: %v", e.Path, e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *BundleError) Unwrap() error {
	return e.Err
}
