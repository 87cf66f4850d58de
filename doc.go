// Package xhook instruments a running host by attaching before and after
// advice to host methods and constructors, substituting instrumented
// resource bundles wherever the host caches them, and loading plugin bundles
// that install their own advice.
//
// # Architecture
//
// The framework is organized around the following core concepts:
//
//   - Bridge: the process-scoped context object owning every component below
//   - hook.Registry and hook.Engine: ordered callbacks per interception point
//     and the before/original/after dispatch
//   - resources.Coordinator: one live instrumented bundle per resource key
//   - boot.Loader: bundle discovery, validation, instantiation and dispatch
//   - host.Interceptor: the trampoline primitive supplied by the host runtime
//
// # File Organization
//
//   - bridge.go: Bridge construction, teardown and accessors
//   - lifecycle.go: package-load and resource-init dispatch, application binding
//
// # Quick Start
//
//	b, err := xhook.New(xhook.Options{Host: table, Config: conf.Default()})
//	if err != nil {
//		return err
//	}
//	defer b.Close()
//	report := b.LoadModules(boot.ProcessContext{EarlyBootstrap: true})
package xhook
