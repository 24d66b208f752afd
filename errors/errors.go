package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseExtract  Phase = "extract"  // directive/declaration analysis
	PhaseGen      Phase = "gen"      // entry-point synthesis
	PhaseBind     Phase = "bind"     // argument binding
	PhaseConvert  Phase = "convert"  // guest value conversion
	PhaseRuntime  Phase = "runtime"  // object wrapper operations
	PhaseRegister Phase = "register" // function/class registration
	PhaseInit     Phase = "init"     // module initialization
)

// Kind categorizes the error
type Kind string

const (
	KindConflict       Kind = "conflict"
	KindUnsupported    Kind = "unsupported"
	KindMissingArg     Kind = "missing_arg"
	KindUnexpectedArg  Kind = "unexpected_arg"
	KindTypeMismatch   Kind = "type_mismatch"
	KindInvalidUTF8    Kind = "invalid_utf8"
	KindNotFound       Kind = "not_found"
	KindAttribute      Kind = "attribute"
	KindNilRef         Kind = "nil_ref"
	KindRegistration   Kind = "registration"
	KindInvalidInput   Kind = "invalid_input"
	KindNotInitialized Kind = "not_initialized"
)

// Error is the structured error type used throughout the toolkit
type Error struct {
	Value     any
	Cause     error
	Phase     Phase
	Kind      Kind
	GoType    string
	GuestType string
	Detail    string
	Path      []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.GoType != "" || e.GuestType != "" {
		b.WriteString(": ")
		if e.GoType != "" && e.GuestType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", guest type ")
			b.WriteString(e.GuestType)
		} else if e.GoType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		} else {
			b.WriteString("guest type ")
			b.WriteString(e.GuestType)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.GuestType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the declaration/argument path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// GuestType sets the guest type name
func (b *Builder) GuestType(t string) *Builder {
	b.err.GuestType = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Conflict creates a conflicting-annotation error
func Conflict(path []string, detail string) *Error {
	return &Error{
		Phase:  PhaseExtract,
		Kind:   KindConflict,
		Path:   path,
		Detail: detail,
	}
}

// Unsupported creates an unsupported declaration/operation error
func Unsupported(phase Phase, path []string, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Path:   path,
		Detail: what,
	}
}

// MissingArg creates a missing required argument error
func MissingArg(location, param string) *Error {
	return &Error{
		Phase:  PhaseBind,
		Kind:   KindMissingArg,
		Path:   []string{location, param},
		Detail: fmt.Sprintf("missing required argument %q", param),
	}
}

// UnexpectedArg creates a surplus positional or unknown keyword argument error
func UnexpectedArg(location, detail string) *Error {
	return &Error{
		Phase:  PhaseBind,
		Kind:   KindUnexpectedArg,
		Path:   []string{location},
		Detail: detail,
	}
}

// TypeMismatch creates a type conversion error naming the offending argument
func TypeMismatch(location, param, goType, guestType string) *Error {
	return &Error{
		Phase:     PhaseConvert,
		Kind:      KindTypeMismatch,
		Path:      []string{location, param},
		GoType:    goType,
		GuestType: guestType,
		Detail:    fmt.Sprintf("argument %q: expected %s", param, goType),
	}
}

// InvalidUTF8 creates an invalid UTF-8 error embedding the offending bytes
func InvalidUTF8(phase Phase, path []string, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidUTF8,
		Path:   path,
		Detail: fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Attribute creates a missing-attribute error
func Attribute(name string) *Error {
	return &Error{
		Phase:  PhaseRuntime,
		Kind:   KindAttribute,
		Path:   []string{name},
		Detail: fmt.Sprintf("no attribute %q", name),
	}
}

// NilRef creates an error for a null guest pointer with no pending exception
func NilRef(phase Phase, op string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNilRef,
		Detail: fmt.Sprintf("%s returned a null object with no error pending", op),
	}
}

// Registration creates a registration error
func Registration(module, name string, cause error) *Error {
	return &Error{
		Phase:  PhaseRegister,
		Kind:   KindRegistration,
		Detail: fmt.Sprintf("register %s.%s", module, name),
		Cause:  cause,
	}
}

// NotInitialized creates a not-initialized error
func NotInitialized(phase Phase, component string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", component),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
