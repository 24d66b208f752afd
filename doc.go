// Package dynbind turns annotated Go functions into native extension
// modules for a dynamic guest runtime.
//
// The toolkit has two halves. At generation time, directive comments on
// ordinary Go declarations are extracted into binding metadata and compiled
// into native entry points. At run time, a small ownership layer wraps the
// guest runtime's opaque object pointers and carries errors across the
// boundary in both directions.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	dynbind/             Root package documentation
//	├── abi/             Guest runtime ABI: references, entry points, generations
//	├── guest/           Ownership handles, module wrapper, error bridge, guards
//	│   └── guesttest/   In-memory fake interpreter with strict refcounting
//	├── meta/            Directive extraction from Go declarations
//	├── gen/             Entry-point and module-initializer synthesis
//	├── errors/          Structured error types for debugging
//	└── cmd/dynbind/     Generator CLI with list and interactive modes
//
// # Quick Start
//
// Annotate a function and a module:
//
//	//dynbind:module demo
//	func demoInit(tok guest.Token, m *guest.Module) error { ... }
//
//	//dynbind:function module=demo name=add_one
//	func AddOne(tok guest.Token, x int64) (int64, error) { ... }
//
// Generate the bindings:
//
//	dynbind -dir ./examples/demo
//
// The emitted file contains one wrapper per function implementing the guest
// calling convention (argument binding, conversion, error propagation, and
// an abort-on-unwind guard) plus a pair of module initializers, one per ABI
// generation. See examples/demo for a complete bound module.
//
// # Ownership
//
// Every guest object reference is held through a guest.Handle that is
// either owned (releases its refcount unit exactly once) or borrowed
// (never releases). Release is mandatory and double release panics; the
// guesttest fake interpreter enforces both in tests.
package dynbind
