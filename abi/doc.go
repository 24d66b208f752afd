// Package abi declares the guest-runtime C-level interface consumed by the
// binding layer.
//
// The guest interpreter is embedded in-process and exposes its object model
// only through this surface: opaque reference-counted object pointers (Ref),
// a thread-local error slot, and a small set of primitives for modules,
// attributes, calls, containers, and scalars. The interpreter's own object
// model and garbage collector are deliberately out of reach; everything here
// is a pointer-and-verb view of it.
//
// Runtime is the full primitive set. Production builds back it with the real
// interpreter ABI; tests back it with guesttest.
//
// # Ownership
//
// Unless documented otherwise, a Ref returned by a Runtime primitive carries
// one reference-count unit owned by the caller. Primitives documented as
// returning a borrowed Ref (container element access, the module dict, the
// none singleton) transfer no ownership. The guest package layers tagged
// handles over these raw rules.
//
// # Error slot
//
// A primitive that fails returns Null (or false) after setting the error
// slot. A primitive that reports "absent" without an exception (for example
// DictGet on a missing key) returns Null with the slot untouched; callers
// distinguish the two cases with ErrOccurred.
package abi
