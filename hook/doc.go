// Package hook implements the interception registry and the dispatch engine.
//
// Callbacks attach to a host.Member with a priority. For every routed
// invocation the engine runs the before stage in ascending priority order,
// invokes the original body unless a callback short-circuited or faulted, and
// then runs the after stage in descending order over exactly the callbacks
// whose before stage was entered:
//
//	before(10) -> before(20) -> original -> after(20) -> after(10)
//
// Registration and removal are safe at any time. A dispatch works on the
// snapshot taken when it started, so changes only apply to later invocations.
package hook
