package resources

import (
	"fmt"
	"strings"
)

// Key identifies one cacheable resource bundle. Two keys are the same bundle
// exactly when they compare equal with ==, which must agree with how the host
// keys its own cache.
type Key struct {
	ResDir         string
	SplitResDirs   string
	OverlayDirs    string
	LibDirs        string
	DisplayID      int
	OverrideConfig string
	CompatInfo     string
}

// NewKey builds a key from the host's key components.
func NewKey(resDir string, splitResDirs, overlayDirs, libDirs []string, displayID int, overrideConfig, compatInfo string) Key {
	return Key{
		ResDir:         resDir,
		SplitResDirs:   strings.Join(splitResDirs, ":"),
		OverlayDirs:    strings.Join(overlayDirs, ":"),
		LibDirs:        strings.Join(libDirs, ":"),
		DisplayID:      displayID,
		OverrideConfig: overrideConfig,
		CompatInfo:     compatInfo,
	}
}

// String renders the key for diagnostics.
func (k Key) String() string {
	return fmt.Sprintf("%s[display=%d split=%q overlay=%q]", k.ResDir, k.DisplayID, k.SplitResDirs, k.OverlayDirs)
}

// KeyFunc converts a host key object into a Key.
type KeyFunc func(hostKey any) (Key, bool)

// DirectKey accepts hosts that already use Key values.
func DirectKey(hostKey any) (Key, bool) {
	switch k := hostKey.(type) {
	case Key:
		return k, true
	case *Key:
		if k != nil {
			return *k, true
		}
	}
	return Key{}, false
}
