// Package errors provides structured error types for the dynbind toolkit.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type includes rich context: declaration or argument
// path, Go/guest type names, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseConvert, errors.KindTypeMismatch).
//		Path("demo.add_one()", "x").
//		GoType("int64").
//		GuestType("str").
//		Detail("cannot convert str to integer").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.MissingArg("demo.add_one()", "x")
//	err := errors.TypeMismatch("demo.add_one()", "x", "int64", "str")
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
