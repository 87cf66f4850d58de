// Package boot discovers, validates and instantiates plugin bundles and
// loads the framework configuration.
package boot

import (
	"fmt"
	"path/filepath"

	"github.com/go-kratos/kratos/v2/config"
	"github.com/go-kratos/kratos/v2/config/file"

	"github.com/go-lynx/xhook/conf"
	"github.com/go-lynx/xhook/log"
)

// LoadConfig loads the configuration file or directory at path and returns
// the defaulted xhook node.
func LoadConfig(path string) (*conf.Xhook, error) {
	if path == "" {
		return nil, fmt.Errorf("configuration path is empty: please specify it via -conf flag or %s environment variable", ConfigPathEnv)
	}

	log.Infof("loading xhook configuration from: %s", path)
	cfg := config.New(
		config.WithSource(file.NewSource(path)),
	)
	defer func() {
		if err := cfg.Close(); err != nil {
			log.Errorf("failed to close configuration: %v", err)
		}
	}()

	if err := cfg.Load(); err != nil {
		return nil, fmt.Errorf("failed to load configuration from %s: %w", path, err)
	}

	var bootstrap conf.Bootstrap
	if err := cfg.Scan(&bootstrap); err != nil {
		return nil, fmt.Errorf("failed to scan configuration from %s: %w", path, err)
	}

	x := bootstrap.GetXhook()
	x.ApplyDefaults()
	return x, nil
}

// ResolvePath resolves p against the configured base directory.
func ResolvePath(x *conf.Xhook, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(x.BaseDir, p)
}

// ResourcesDisabled reports whether resource hooks are switched off, either
// by the configuration flag or by the presence of the marker file.
func ResourcesDisabled(x *conf.Xhook, src Source) bool {
	if x.DisableResources {
		return true
	}
	marker := ResolvePath(x, x.DisableResourcesFile)
	return marker != "" && src.Exists(marker)
}
