// Package meta extracts binding metadata from annotated Go declarations.
//
// Declarations opt in with dynbind directives in their doc comments:
//
//	//dynbind:module demo
//	func demoInit(tok guest.Token, m *guest.Module) error { ... }
//
//	//dynbind:function module=demo name=add_one
//	func AddOne(tok guest.Token, x int64) (int64, error) { ... }
//
//	//dynbind:class module=demo name=Counter
//	type Counter struct { ... }
//
//	//dynbind:method class=Counter name=increment
//	func CounterIncrement(tok guest.Token, self guest.Handle, n int64) (int64, error)
//
// The method directive's kind key selects the binding shape: method (the
// default, taking a guest.Handle receiver), staticmethod, classmethod, or
// constructor. A constructor takes no receiver, must return guest.Handle
// for the new instance, and is limited to one per class.
//
// Extraction normalizes each declaration into ModuleSpec / FunctionSpec /
// ClassSpec records with an ordered ParameterSpec list, classifying every
// parameter or failing with a diagnostic that names the offending
// declaration and parameter. The records are immutable once extracted and
// are consumed exactly once by the gen package.
//
// A leading parameter of type guest.Token denotes the runtime-lock token;
// it is excluded from the guest-visible parameter list and supplied
// implicitly by the generated entry point. Optionality is derived from type
// shape: pointer parameters are optional and bind to nil when absent.
//
// The optional attrs key carries calling-convention markers; currently "*"
// makes all following parameters keyword-only:
//
//	//dynbind:function module=demo name=search attrs="q, *, limit"
//
// All extraction failures are generation-time errors; they abort code
// generation and never produce a native entry point.
package meta
