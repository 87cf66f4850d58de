package factory

import (
	"fmt"
	"slices"
)

// Loader resolves class names. Loaders delegate to their parent first.
type Loader interface {
	// Name identifies the loader in diagnostics.
	Name() string
	// Parent returns the delegation parent, nil for the root loader.
	Parent() Loader
	// LoadClass resolves name or fails with ErrClassNotFound.
	LoadClass(name string) (Class, error)
}

// RootLoader resolves the classes the host shares with every bundle.
type RootLoader struct {
	catalog *Catalog
}

// NewRootLoader creates the host loader over catalog.
func NewRootLoader(catalog *Catalog) *RootLoader {
	return &RootLoader{catalog: catalog}
}

// Name implements Loader.
func (l *RootLoader) Name() string { return "root" }

// Parent implements Loader.
func (l *RootLoader) Parent() Loader { return nil }

// LoadClass implements Loader.
func (l *RootLoader) LoadClass(name string) (Class, error) {
	if cls, ok := l.catalog.Lookup(name); ok && cls.Host {
		return cls, nil
	}
	return Class{}, fmt.Errorf("%s via %s: %w", name, l.Name(), ErrClassNotFound)
}

// BundleLoader resolves the classes packaged in one bundle. Names the parent
// resolves always win, so classes shared with the host are never shadowed.
type BundleLoader struct {
	path    string
	parent  Loader
	catalog *Catalog
	index   []string
}

// NewBundleLoader creates a loader for the bundle at path whose class index
// lists index.
func NewBundleLoader(path string, index []string, parent Loader, catalog *Catalog) *BundleLoader {
	idx := slices.Clone(index)
	slices.Sort(idx)
	return &BundleLoader{path: path, parent: parent, catalog: catalog, index: slices.Compact(idx)}
}

// Name implements Loader.
func (l *BundleLoader) Name() string { return l.path }

// Parent implements Loader.
func (l *BundleLoader) Parent() Loader { return l.parent }

// Contains reports whether the bundle's class index lists name.
func (l *BundleLoader) Contains(name string) bool {
	_, found := slices.BinarySearch(l.index, name)
	return found
}

// LoadClass implements Loader.
func (l *BundleLoader) LoadClass(name string) (Class, error) {
	if l.parent != nil {
		if cls, err := l.parent.LoadClass(name); err == nil {
			return cls, nil
		}
	}
	if !l.Contains(name) {
		return Class{}, fmt.Errorf("%s via %s: %w", name, l.Name(), ErrClassNotFound)
	}
	cls, ok := l.catalog.Lookup(name)
	if !ok || cls.Host {
		return Class{}, fmt.Errorf("%s via %s: not linked into this process: %w", name, l.Name(), ErrClassNotFound)
	}
	return cls, nil
}
