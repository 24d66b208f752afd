// Package guesttest provides an in-memory fake of the guest-runtime ABI for
// exercising the binding layer without a real interpreter.
//
// The fake implements abi.Runtime over a small object model (none, bool,
// int, float, str, tuple, dict, module, function, type) with strict
// reference counting: operating on an unknown or already-released reference
// panics, so ownership bugs in the layer under test fail loudly instead of
// corrupting state.
//
// Failure injection switches (FailNewModule, FailNewType) and inspection
// helpers (RefCount, Alive, LiveCount, TypeInits) support the boundary and
// lifecycle tests in the guest package.
package guesttest
