// Package resources keeps the host's cached resource bundles and their
// instrumented replacements coherent.
//
// Whenever the host factory produces a bundle, the Coordinator wraps it in an
// *Instrumented, mirrors the replacement into the host cache and hands it out
// instead of the raw object. At most one live replacement exists per Key.
// The adapters in this package bind the Coordinator to host factory members
// through the hook registry.
package resources
