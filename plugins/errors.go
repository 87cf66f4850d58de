package plugins

import (
	"errors"
	"fmt"
)

// Common error variables for plugin loading
var (
	// ErrNoCapability indicates an entry point implementing none of the lifecycle contracts
	ErrNoCapability = errors.New("entry point implements no plugin capability")

	// ErrResourcesDisabled indicates a resource-init entry point while resource hooks are off
	ErrResourcesDisabled = errors.New("resource hooks are disabled")

	// ErrInstantiation indicates the no-argument constructor failed
	ErrInstantiation = errors.New("entry point instantiation failed")

	// ErrLifecycleCall indicates a lifecycle hook of the entry point failed
	ErrLifecycleCall = errors.New("plugin lifecycle call failed")
)

// PluginError represents a detailed error that occurred while handling one entry point
type PluginError struct {
	// Bundle is the archive the entry point belongs to
	Bundle string

	// Class is the entry point class name
	Class string

	// Operation describes the action that was being performed when the error occurred
	Operation string

	// Message provides a detailed description of the error
	Message string

	// Err is the underlying error that caused this PluginError
	Err error
}

// Error implements the error interface for PluginError
func (e *PluginError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("plugin %s (%s): %s failed: %s (%v)", e.Class, e.Bundle, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("plugin %s (%s): %s failed: %s", e.Class, e.Bundle, e.Operation, e.Message)
}

// Unwrap returns the underlying error for error chain handling
func (e *PluginError) Unwrap() error {
	return e.Err
}

// NewPluginError creates a new PluginError with the given details
func NewPluginError(bundle, class, operation, message string, err error) *PluginError {
	return &PluginError{
		Bundle:    bundle,
		Class:     class,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
