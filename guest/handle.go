package guest

import (
	"github.com/veldtlabs/dynbind/abi"
)

// Handle wraps exactly one raw guest object pointer. The ownership mode is
// fixed at construction: an Owned handle holds one reference-count unit and
// must release it exactly once; a Borrowed handle's lifetime is bounded by
// the Token scope that produced it and it never releases.
//
// Double release and use after release are programming errors and panic.
type Handle struct {
	ref      abi.Ref
	owned    bool
	released bool
}

// Own claims ownership of the reference-count unit already carried by ref.
// Use for pointers returned by owning ABI primitives.
func Own(tok Token, ref abi.Ref) Handle {
	_ = tok.Runtime()
	return Handle{ref: ref, owned: true}
}

// Borrow wraps ref without taking ownership. The handle must not outlive
// the lock scope that owns the underlying reference.
func Borrow(tok Token, ref abi.Ref) Handle {
	_ = tok.Runtime()
	return Handle{ref: ref, owned: false}
}

// Ref returns the raw pointer.
func (h Handle) Ref() abi.Ref {
	if h.released {
		panic("guest: use of released handle")
	}
	return h.ref
}

// IsOwned reports the ownership mode.
func (h Handle) IsOwned() bool { return h.owned }

// IsNull reports whether the handle wraps the null pointer.
func (h Handle) IsNull() bool { return h.ref.IsNull() }

// Clone returns a new Owned handle over the same object, incrementing the
// reference count.
func (h Handle) Clone(tok Token) Handle {
	if h.released {
		panic("guest: clone of released handle")
	}
	if h.ref.IsNull() {
		return Handle{owned: true}
	}
	tok.Runtime().IncRef(h.ref)
	return Handle{ref: h.ref, owned: true}
}

// Release drops the handle. For an Owned handle this releases its
// reference-count unit; for a Borrowed handle it only invalidates the
// wrapper. Releasing twice panics.
func (h *Handle) Release(tok Token) {
	if h.released {
		panic("guest: double release of handle")
	}
	h.released = true
	if h.owned && !h.ref.IsNull() {
		tok.Runtime().DecRef(h.ref)
	}
}

// IntoRef transfers the handle's reference out as a raw owned pointer,
// invalidating the handle. A Borrowed handle increments the reference count
// so the returned pointer always carries one owned unit.
func (h *Handle) IntoRef(tok Token) abi.Ref {
	if h.released {
		panic("guest: IntoRef on released handle")
	}
	h.released = true
	if !h.owned && !h.ref.IsNull() {
		tok.Runtime().IncRef(h.ref)
	}
	return h.ref
}
