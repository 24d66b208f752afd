// Package guest is the object-ownership and error-bridging runtime layered
// over the raw guest ABI.
//
// Everything in this package operates on three primitives:
//
//   - Token: proof that the guest runtime's global lock is held. Every
//     operation that touches a guest object takes one explicitly; the only
//     places a Token is minted are the true native boundaries (entry-point
//     callbacks and module initializers), where the guest hands control to
//     native code with the lock already held.
//   - Handle: a wrapper over exactly one raw object pointer, tagged Owned or
//     Borrowed at construction. Owned handles hold one reference-count unit
//     and must release it exactly once; Borrowed handles never release.
//   - Raised: a guest exception on the host side, either fetched from the
//     guest error slot or synthesized locally. At a native boundary it is
//     restored into the slot exactly once before the failure sentinel is
//     returned.
//
// # Native boundaries
//
// Enter wraps an entry-point body in the fixed guest calling convention:
// it mints the Token, installs an abort-on-unwind guard, restores any error
// into the slot, and guarantees that exactly one of {non-null result,
// null result with error pending} holds on every exit.
//
// InitModule drives the module-initializer sequence for both ABI
// generations: allocate, wrap, run the user body (which registers functions
// and classes), and either hand the owned module pointer to the loader or
// restore the failure and return null.
//
// # Argument binding
//
// BindArgs implements the positional/keyword binding protocol over the
// caller's args tuple and kwargs dict (both inspected read-only), and the
// Arg*/From* converters translate bound raw values to and from Go types
// with diagnostics that name the function and parameter.
package guest
