package guest

import (
	"unicode/utf8"

	"github.com/veldtlabs/dynbind/abi"
	"github.com/veldtlabs/dynbind/errors"
)

// Object is a typed wrapper over a handle to an arbitrary guest object.
type Object struct {
	h Handle
}

// NewObject wraps an existing handle.
func NewObject(h Handle) Object { return Object{h: h} }

// Handle returns the underlying handle.
func (o *Object) Handle() Handle { return o.h }

// Ref returns the raw pointer.
func (o *Object) Ref() abi.Ref { return o.h.Ref() }

// Release drops the wrapper's handle.
func (o *Object) Release(tok Token) { o.h.Release(tok) }

// IntoRef transfers the wrapper's reference out as a raw owned pointer.
func (o *Object) IntoRef(tok Token) abi.Ref { return o.h.IntoRef(tok) }

// TypeName returns the guest type name, for diagnostics.
func (o *Object) TypeName(tok Token) string {
	return tok.Runtime().TypeName(o.h.Ref())
}

// GetAttr returns the named attribute as an owned Object. A missing
// attribute surfaces the guest's own attribute error.
func (o *Object) GetAttr(tok Token, name string) (Object, error) {
	ref := tok.Runtime().GetAttr(o.h.Ref(), name)
	if r := errIfNull(tok, ref, func() *Raised {
		return raiseCaused(abi.ExcAttribute, "no attribute "+name, errors.Attribute(name))
	}); r != nil {
		return Object{}, r
	}
	return Object{h: Own(tok, ref)}, nil
}

// SetAttr binds the named attribute to value. The value reference is
// borrowed; ownership stays with the caller.
func (o *Object) SetAttr(tok Token, name string, value abi.Ref) error {
	if tok.Runtime().SetAttr(o.h.Ref(), name, value) {
		return nil
	}
	if r := Fetch(tok); r != nil {
		return r
	}
	return raiseCaused(abi.ExcAttribute, "cannot set attribute "+name, errors.Attribute(name))
}

// CallAttr looks up the named attribute and invokes it with positional args
// and optional keyword args (nil means the guest sees no kwargs). Temporary
// containers are released before returning.
func (o *Object) CallAttr(tok Token, name string, args []abi.Ref, kwargs map[string]abi.Ref) (Object, error) {
	fn, err := o.GetAttr(tok, name)
	if err != nil {
		return Object{}, err
	}
	defer fn.Release(tok)

	rt := tok.Runtime()

	tuple := Own(tok, rt.NewTuple(args))
	defer tuple.Release(tok)

	kw := abi.Null
	if kwargs != nil {
		kwh := Own(tok, rt.NewDict())
		defer kwh.Release(tok)
		for k, v := range kwargs {
			if !rt.DictSet(kwh.Ref(), k, v) {
				if r := Fetch(tok); r != nil {
					return Object{}, r
				}
				return Object{}, Raise(abi.ExcSystem, "kwargs dict insert failed for %q", k)
			}
		}
		kw = kwh.Ref()
	}

	ref := rt.Call(fn.Ref(), tuple.Ref(), kw)
	if r := errIfNull(tok, ref, func() *Raised {
		return Raise(abi.ExcSystem, "call %s returned null without error", name)
	}); r != nil {
		return Object{}, r
	}
	return Object{h: Own(tok, ref)}, nil
}

// decodeGuestBytes converts raw guest string bytes to a Go string,
// reporting non-UTF8 input with the offending byte preview.
func decodeGuestBytes(path string, raw []byte) (string, error) {
	if !utf8.Valid(raw) {
		e := errors.InvalidUTF8(errors.PhaseRuntime, []string{path}, raw)
		return "", raiseCaused(abi.ExcDecode, e.Detail, e)
	}
	return string(raw), nil
}
