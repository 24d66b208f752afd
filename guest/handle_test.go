package guest

import (
	"testing"

	"github.com/veldtlabs/dynbind/guest/guesttest"
)

func TestOwnedHandleReleasesOnce(t *testing.T) {
	in := guesttest.New()
	tok := Entered(in)

	ref := in.NewInt64(5)
	h := Own(tok, ref)

	h.Release(tok)
	if in.Alive(ref) {
		t.Error("owned release should drop the object")
	}
}

func TestBorrowedHandleNeverReleases(t *testing.T) {
	in := guesttest.New()
	tok := Entered(in)

	ref := in.NewInt64(5)
	h := Borrow(tok, ref)

	h.Release(tok)
	if !in.Alive(ref) {
		t.Error("borrowed release must not drop the object")
	}
	if in.RefCount(ref) != 1 {
		t.Errorf("refcount = %d, want 1", in.RefCount(ref))
	}
	in.DecRef(ref)
}

func TestDoubleReleasePanics(t *testing.T) {
	in := guesttest.New()
	tok := Entered(in)

	h := Own(tok, in.NewInt64(5))
	h.Release(tok)

	defer func() {
		if recover() == nil {
			t.Error("expected panic on double release")
		}
	}()
	h.Release(tok)
}

func TestUseAfterReleasePanics(t *testing.T) {
	in := guesttest.New()
	tok := Entered(in)

	h := Own(tok, in.NewInt64(5))
	h.Release(tok)

	defer func() {
		if recover() == nil {
			t.Error("expected panic on use after release")
		}
	}()
	_ = h.Ref()
}

func TestCloneAddsUnit(t *testing.T) {
	in := guesttest.New()
	tok := Entered(in)

	ref := in.NewInt64(5)
	h := Own(tok, ref)
	dup := h.Clone(tok)

	if in.RefCount(ref) != 2 {
		t.Fatalf("refcount after clone = %d, want 2", in.RefCount(ref))
	}

	h.Release(tok)
	if !in.Alive(ref) {
		t.Fatal("clone should keep the object alive")
	}
	dup.Release(tok)
	if in.Alive(ref) {
		t.Error("releasing last handle should drop the object")
	}
}

func TestIntoRefTransfersOwnership(t *testing.T) {
	in := guesttest.New()
	tok := Entered(in)

	ref := in.NewInt64(5)
	h := Own(tok, ref)
	out := h.IntoRef(tok)

	if out != ref {
		t.Fatalf("IntoRef = %d, want %d", out, ref)
	}
	if in.RefCount(ref) != 1 {
		t.Errorf("refcount = %d, want 1 (unit transferred, not duplicated)", in.RefCount(ref))
	}
	in.DecRef(ref)
}

func TestIntoRefOnBorrowedClaimsUnit(t *testing.T) {
	in := guesttest.New()
	tok := Entered(in)

	ref := in.NewInt64(5)
	h := Borrow(tok, ref)
	out := h.IntoRef(tok)

	if out != ref {
		t.Fatalf("IntoRef = %d, want %d", out, ref)
	}
	if in.RefCount(ref) != 2 {
		t.Errorf("refcount = %d, want 2 (borrowed IntoRef claims a unit)", in.RefCount(ref))
	}
	in.DecRef(ref)
	in.DecRef(ref)
}
