// Package factory provides the class catalog plugin bundles are instantiated
// from and the loaders resolving class names against it.
package factory

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
)

var (
	// ErrClassNotFound is returned when a loader cannot resolve a class name.
	ErrClassNotFound = errors.New("class not found")

	// ErrClassExists is returned when a class name is registered twice.
	ErrClassExists = errors.New("class already registered")
)

// Global catalog instance
var globalCatalog = NewCatalog()

// Global returns the process catalog plugin packages register into from init.
func Global() *Catalog {
	return globalCatalog
}

// Class describes one instantiable entry-point type.
type Class struct {
	// Name is the fully qualified class name listed in bundle manifests.
	Name string
	// Type is the static type of the values New returns. Capabilities are
	// probed from it without constructing an instance.
	Type reflect.Type
	// New is the no-argument constructor.
	New func() any
	// Host marks classes shared with the host and resolvable from the root loader.
	Host bool
}

// Catalog maps class names to constructors.
type Catalog struct {
	mu      sync.RWMutex
	classes map[string]Class
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{classes: make(map[string]Class)}
}

// Register adds a plugin class constructing values of type T.
// Panics if a class with the same name is already registered.
func Register[T any](c *Catalog, name string, ctor func() T) {
	if err := c.Define(newClass(name, ctor, false)); err != nil {
		panic(err)
	}
}

// RegisterHost adds a class shared with the host.
// Panics if a class with the same name is already registered.
func RegisterHost[T any](c *Catalog, name string, ctor func() T) {
	if err := c.Define(newClass(name, ctor, true)); err != nil {
		panic(err)
	}
}

func newClass[T any](name string, ctor func() T, host bool) Class {
	var nw func() any
	if ctor != nil {
		nw = func() any { return ctor() }
	}
	return Class{Name: name, Type: reflect.TypeOf((*T)(nil)).Elem(), New: nw, Host: host}
}

// Define adds cls to the catalog.
func (c *Catalog) Define(cls Class) error {
	if cls.Name == "" || cls.Type == nil || cls.New == nil {
		return fmt.Errorf("define class %q: name, type and constructor are required", cls.Name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.classes[cls.Name]; exists {
		return fmt.Errorf("define class %s: %w", cls.Name, ErrClassExists)
	}
	c.classes[cls.Name] = cls
	return nil
}

// Remove deletes a class from the catalog.
func (c *Catalog) Remove(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.classes, name)
}

// Lookup returns the class registered under name.
func (c *Catalog) Lookup(name string) (Class, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cls, ok := c.classes[name]
	return cls, ok
}

// Names returns every registered class name, sorted.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.classes))
	for name := range c.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
