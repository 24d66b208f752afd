package guest

import (
	"fmt"

	"github.com/veldtlabs/dynbind/abi"
	"github.com/veldtlabs/dynbind/errors"
)

// Raised is a guest exception on the host side of the boundary. It is
// either fetched from the guest error slot (which clears the slot) or
// synthesized locally by a wrapper operation; either way it carries enough
// to re-raise into the slot or be inspected as a Go error.
type Raised struct {
	typ      string
	msg      string
	value    abi.Ref // owned exception object when fetched, Null otherwise
	cause    error   // structured host error when synthesized locally
	restored bool
}

// Fetch retrieves the pending guest exception, clearing the error slot.
// Returns nil if no error is pending.
func Fetch(tok Token) *Raised {
	state, ok := tok.Runtime().ErrFetch()
	if !ok {
		return nil
	}
	return &Raised{typ: state.Type, msg: state.Message, value: state.Value}
}

// Raise synthesizes a guest exception of the named type.
func Raise(typ, format string, args ...any) *Raised {
	return &Raised{typ: typ, msg: fmt.Sprintf(format, args...)}
}

// raiseCaused synthesizes a guest exception carrying a structured host error
// so host callers can still classify it with errors.Is.
func raiseCaused(typ, msg string, cause error) *Raised {
	return &Raised{typ: typ, msg: msg, cause: cause}
}

// AsRaised converts an error into a Raised, mapping structured host errors
// to guest exception types. An error that already is a Raised passes
// through unchanged.
func AsRaised(err error) *Raised {
	if err == nil {
		return nil
	}
	if r, ok := err.(*Raised); ok {
		return r
	}
	typ := abi.ExcRuntime
	if e, ok := err.(*errors.Error); ok {
		switch e.Kind {
		case errors.KindMissingArg, errors.KindUnexpectedArg, errors.KindTypeMismatch:
			typ = abi.ExcType
		case errors.KindAttribute, errors.KindNotFound:
			typ = abi.ExcAttribute
		case errors.KindInvalidUTF8:
			typ = abi.ExcDecode
		case errors.KindRegistration, errors.KindNotInitialized:
			typ = abi.ExcSystem
		}
	}
	return raiseCaused(typ, err.Error(), err)
}

// Restore deposits the exception into the guest error slot. The Raised is
// consumed: restoring twice is a boundary-contract violation and panics.
func (r *Raised) Restore(tok Token) {
	if r.restored {
		panic("guest: exception restored twice")
	}
	r.restored = true
	tok.Runtime().ErrRestore(abi.ErrState{Type: r.typ, Message: r.msg, Value: r.value})
	r.value = abi.Null
}

// Type returns the guest exception type name.
func (r *Raised) Type() string { return r.typ }

// Message returns the exception message.
func (r *Raised) Message() string { return r.msg }

// Error implements the error interface.
func (r *Raised) Error() string {
	if r.msg == "" {
		return r.typ
	}
	return r.typ + ": " + r.msg
}

// Unwrap exposes the structured host error behind a synthesized exception.
func (r *Raised) Unwrap() error { return r.cause }

// errIfNull is the null-translation rule shared by wrapper operations: a
// null guest result means either a pending exception (propagate it) or a
// condition the wrapper must describe itself (synthesize it). The guest
// error slot is always consulted first.
func errIfNull(tok Token, ref abi.Ref, synth func() *Raised) *Raised {
	if !ref.IsNull() {
		return nil
	}
	if r := Fetch(tok); r != nil {
		return r
	}
	return synth()
}
