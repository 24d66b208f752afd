package guest

import (
	"fmt"

	"github.com/veldtlabs/dynbind/abi"
	"github.com/veldtlabs/dynbind/errors"
)

// Param is the runtime shape of one declared parameter, as compiled into
// generated entry points. Optionality is derived from the declared Go type
// at generation time.
type Param struct {
	Name        string
	Optional    bool
	KeywordOnly bool
}

// BindArgs binds the caller's positional tuple and optional keyword dict
// (Null for none) against the declared parameter list. Both containers are
// inspected read-only.
//
// Binding is total: it either returns one raw value slot per parameter
// (Null marks an absent optional) or a single error, produced before any
// conversion runs. Positional values bind left to right across the
// non-keyword-only parameters in declaration order; remaining parameters
// bind by keyword; a parameter with neither binds to empty only if
// optional. Surplus positional values, duplicate bindings, and unknown
// keyword names each fail with an error naming the offender.
func BindArgs(tok Token, location string, params []Param, args, kwargs abi.Ref) ([]abi.Ref, error) {
	rt := tok.Runtime()

	nargs := 0
	if !args.IsNull() {
		nargs = rt.TupleLen(args)
	}

	maxPositional := 0
	for _, p := range params {
		if !p.KeywordOnly {
			maxPositional++
		}
	}
	if nargs > maxPositional {
		e := errors.UnexpectedArg(location, "too many positional arguments")
		return nil, raiseCaused(abi.ExcType,
			fmt.Sprintf("%s takes at most %d positional arguments (%d given)", location, maxPositional, nargs), e)
	}

	hasKwargs := !kwargs.IsNull()
	bound := make([]abi.Ref, len(params))
	usedKeywords := 0

	pos := 0
	for i, p := range params {
		var v abi.Ref

		if pos < nargs && !p.KeywordOnly {
			v = rt.TupleGet(args, pos)
			pos++
			if hasKwargs && !rt.DictGet(kwargs, p.Name).IsNull() {
				e := errors.UnexpectedArg(location, "duplicate argument "+p.Name)
				return nil, raiseCaused(abi.ExcType,
					fmt.Sprintf("%s got multiple values for argument %q", location, p.Name), e)
			}
		} else if hasKwargs {
			v = rt.DictGet(kwargs, p.Name)
			if !v.IsNull() {
				usedKeywords++
			}
		}

		if v.IsNull() && !p.Optional {
			e := errors.MissingArg(location, p.Name)
			return nil, raiseCaused(abi.ExcType,
				fmt.Sprintf("%s missing required argument %q", location, p.Name), e)
		}
		bound[i] = v
	}

	if hasKwargs && rt.DictLen(kwargs) > usedKeywords {
		declared := make(map[string]bool, len(params))
		for _, p := range params {
			declared[p.Name] = true
		}
		for _, key := range rt.DictKeys(kwargs) {
			if !declared[key] {
				e := errors.UnexpectedArg(location, "unexpected keyword "+key)
				return nil, raiseCaused(abi.ExcType,
					fmt.Sprintf("%s got an unexpected keyword argument %q", location, key), e)
			}
		}
	}

	return bound, nil
}

// Argument converters. Each translates one bound raw value to its declared
// Go type; failure names the function, parameter, and expected type.

// ArgInt64 converts a bound value to int64.
func ArgInt64(tok Token, location, name string, v abi.Ref) (int64, error) {
	if n, ok := tok.Runtime().AsInt64(v); ok {
		return n, nil
	}
	return 0, convErr(tok, location, name, "int", v)
}

// ArgFloat64 converts a bound value to float64.
func ArgFloat64(tok Token, location, name string, v abi.Ref) (float64, error) {
	if f, ok := tok.Runtime().AsFloat64(v); ok {
		return f, nil
	}
	return 0, convErr(tok, location, name, "float", v)
}

// ArgBool converts a bound value to bool.
func ArgBool(tok Token, location, name string, v abi.Ref) (bool, error) {
	if b, ok := tok.Runtime().AsBool(v); ok {
		return b, nil
	}
	return false, convErr(tok, location, name, "bool", v)
}

// ArgString converts a bound value to a Go string, validating UTF-8.
func ArgString(tok Token, location, name string, v abi.Ref) (string, error) {
	raw, ok := tok.Runtime().AsString(v)
	if !ok {
		return "", convErr(tok, location, name, "str", v)
	}
	return decodeGuestBytes(location+"."+name, raw)
}

// ArgObject wraps a bound value as a borrowed handle without conversion.
func ArgObject(tok Token, v abi.Ref) Handle {
	return Borrow(tok, v)
}

func convErr(tok Token, location, name, guestType string, v abi.Ref) error {
	got := tok.Runtime().TypeName(v)
	e := errors.TypeMismatch(location, name, guestType, got)
	return raiseCaused(abi.ExcType,
		fmt.Sprintf("%s argument %q: expected %s, got %s", location, name, guestType, got), e)
}

// Result converters. Each produces an owned guest reference per the entry
// point's declared result-conversion policy.

// FromInt64 converts an int64 result to an owned guest integer.
func FromInt64(tok Token, v int64) abi.Ref { return tok.Runtime().NewInt64(v) }

// FromFloat64 converts a float64 result to an owned guest float.
func FromFloat64(tok Token, v float64) abi.Ref { return tok.Runtime().NewFloat64(v) }

// FromBool converts a bool result to an owned guest boolean.
func FromBool(tok Token, v bool) abi.Ref { return tok.Runtime().NewBool(v) }

// FromString converts a string result to an owned guest string.
func FromString(tok Token, v string) abi.Ref { return tok.Runtime().NewString(v) }

// FromNone returns an owned reference to the none singleton, for functions
// with no declared result.
func FromNone(tok Token) abi.Ref {
	rt := tok.Runtime()
	none := rt.None()
	rt.IncRef(none)
	return none
}
