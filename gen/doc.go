// Package gen synthesizes native entry points from extracted binding
// metadata.
//
// Given a meta.Result, it emits one Go source file containing:
//
//   - a wrapper function per bound function and method, implementing the
//     guest calling convention: argument binding, value conversion, error
//     propagation into the guest error slot, and the abort-on-unwind guard
//   - a shared type descriptor per bound class
//   - a pair of module initializers per module, one per ABI generation,
//     both driving the same registration body
//
// The emitted file carries the standard generated-code header and is valid
// Go source. All synthesis failures are generation-time errors.
package gen
