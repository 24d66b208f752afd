package guest

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/veldtlabs/dynbind/abi"
	"github.com/veldtlabs/dynbind/errors"
	"github.com/veldtlabs/dynbind/guest/guesttest"
)

func newModule(t *testing.T, in *guesttest.Interp, tok Token, name string) *Module {
	t.Helper()
	m, err := NewModule(tok, name)
	if err != nil {
		t.Fatalf("NewModule error: %v", err)
	}
	return m
}

func TestModule_NameRoundTrip(t *testing.T) {
	in := guesttest.New()
	tok := Entered(in)

	m := newModule(t, in, tok, "demo")
	defer m.Release(tok)

	name, err := m.Name(tok)
	if err != nil {
		t.Fatalf("Name error: %v", err)
	}
	if name != "demo" {
		t.Errorf("name = %q, want %q", name, "demo")
	}
}

func TestModule_NameInvalidUTF8(t *testing.T) {
	in := guesttest.New()
	tok := Entered(in)

	m := newModule(t, in, tok, "demo")
	defer m.Release(tok)

	in.SetModuleName(m.Ref(), []byte{0xff, 0xfe, 'x'})

	_, err := m.Name(tok)
	if err == nil {
		t.Fatal("expected decode error")
	}
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseRuntime, Kind: errors.KindInvalidUTF8}) {
		t.Errorf("error %v is not an invalid-utf8 error", err)
	}
	if !strings.Contains(err.Error(), "fffe") {
		t.Errorf("error %q should embed the offending bytes", err.Error())
	}
}

func TestModule_FilenameMissing(t *testing.T) {
	in := guesttest.New()
	tok := Entered(in)

	m := newModule(t, in, tok, "demo")
	defer m.Release(tok)

	if _, err := m.Filename(tok); err == nil {
		t.Fatal("expected error for unset filename")
	}
	if in.ErrOccurred() {
		t.Error("wrapper must consume the pending guest error")
	}
}

func TestModule_DictIsBorrowed(t *testing.T) {
	in := guesttest.New()
	tok := Entered(in)

	m := newModule(t, in, tok, "demo")
	defer m.Release(tok)

	d := m.Dict(tok)
	if d.IsOwned() {
		t.Error("namespace dict handle must be borrowed")
	}
	before := in.RefCount(d.Ref())
	d.Release(tok)
	if in.RefCount(m.Dict(tok).Ref()) != before {
		t.Error("borrowed release must not change the refcount")
	}
}

func TestModule_AddAndGet(t *testing.T) {
	in := guesttest.New()
	tok := Entered(in)

	m := newModule(t, in, tok, "demo")
	defer m.Release(tok)

	v := Own(tok, in.NewInt64(42))
	if err := m.Add(tok, "answer", v.Ref()); err != nil {
		t.Fatalf("Add error: %v", err)
	}
	v.Release(tok)

	got, err := m.Get(tok, "answer")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	defer got.Release(tok)

	if n, ok := in.AsInt64(got.Ref()); !ok || n != 42 {
		t.Errorf("got %d (ok=%v), want 42", n, ok)
	}
}

func TestModule_GetMissingSurfacesGuestError(t *testing.T) {
	in := guesttest.New()
	tok := Entered(in)

	m := newModule(t, in, tok, "demo")
	defer m.Release(tok)

	_, err := m.Get(tok, "ghost")
	if err == nil {
		t.Fatal("expected attribute error")
	}
	r, ok := err.(*Raised)
	if !ok {
		t.Fatalf("error %T is not a Raised", err)
	}
	if r.Type() != abi.ExcAttribute {
		t.Errorf("exception type = %q, want %q", r.Type(), abi.ExcAttribute)
	}
	if in.ErrOccurred() {
		t.Error("guest error slot should be consumed by the wrapper")
	}
}

func TestModule_CallFunction(t *testing.T) {
	in := guesttest.New()
	tok := Entered(in)

	m := newModule(t, in, tok, "demo")
	defer m.Release(tok)

	def := &abi.MethodDef{
		Name:  "double",
		Flags: abi.MethVarArgs | abi.MethKeywords,
		Func: func(recv, args, kwargs abi.Ref) abi.Ref {
			n, _ := in.AsInt64(in.TupleGet(args, 0))
			return in.NewInt64(2 * n)
		},
	}
	if err := m.AddFunction(tok, def); err != nil {
		t.Fatalf("AddFunction error: %v", err)
	}

	arg := Own(tok, in.NewInt64(21))
	defer arg.Release(tok)

	out, err := m.Call(tok, "double", []abi.Ref{arg.Ref()}, nil)
	if err != nil {
		t.Fatalf("Call error: %v", err)
	}
	defer out.Release(tok)

	if n, ok := in.AsInt64(out.Ref()); !ok || n != 42 {
		t.Errorf("result = %d (ok=%v), want 42", n, ok)
	}
}

func TestModule_CallMissingAttribute(t *testing.T) {
	in := guesttest.New()
	tok := Entered(in)

	m := newModule(t, in, tok, "demo")
	defer m.Release(tok)

	if _, err := m.Call(tok, "ghost", nil, nil); err == nil {
		t.Fatal("expected error calling missing attribute")
	}
}

func TestModule_AddClassIdempotent(t *testing.T) {
	in := guesttest.New()
	tok := Entered(in)

	m := newModule(t, in, tok, "demo")
	defer m.Release(tok)

	ti := &TypeInfo{Name: "Counter", Doc: "a counter"}

	if err := m.AddClass(tok, ti); err != nil {
		t.Fatalf("first AddClass error: %v", err)
	}
	if !ti.Ready() {
		t.Fatal("descriptor should be ready after first registration")
	}
	if err := m.AddClass(tok, ti); err != nil {
		t.Fatalf("second AddClass error: %v", err)
	}

	if in.TypeInits() != 1 {
		t.Errorf("type initializations = %d, want 1", in.TypeInits())
	}

	cls, err := m.Get(tok, "Counter")
	if err != nil {
		t.Fatalf("Get class error: %v", err)
	}
	cls.Release(tok)
}

func TestModule_ConstructClass(t *testing.T) {
	in := guesttest.New()
	tok := Entered(in)

	m := newModule(t, in, tok, "demo")
	defer m.Release(tok)

	ti := &TypeInfo{
		Name: "Point",
		New: func(recv, args, kwargs abi.Ref) abi.Ref {
			n, _ := in.AsInt64(in.TupleGet(args, 0))
			return in.NewInt64(n)
		},
	}
	if err := m.AddClass(tok, ti); err != nil {
		t.Fatalf("AddClass error: %v", err)
	}

	arg := Own(tok, in.NewInt64(9))
	defer arg.Release(tok)

	obj, err := m.Call(tok, "Point", []abi.Ref{arg.Ref()}, nil)
	if err != nil {
		t.Fatalf("construct error: %v", err)
	}
	defer obj.Release(tok)

	if n, ok := in.AsInt64(obj.Ref()); !ok || n != 9 {
		t.Errorf("Point(9) = %d (ok=%v), want 9", n, ok)
	}
}

func TestModule_ClassWithoutConstructorNotCallable(t *testing.T) {
	in := guesttest.New()
	tok := Entered(in)

	m := newModule(t, in, tok, "demo")
	defer m.Release(tok)

	if err := m.AddClass(tok, &TypeInfo{Name: "Opaque"}); err != nil {
		t.Fatalf("AddClass error: %v", err)
	}

	_, err := m.Call(tok, "Opaque", nil, nil)
	if err == nil {
		t.Fatal("expected error calling a class without a constructor")
	}
	r, ok := err.(*Raised)
	if !ok || r.Type() != abi.ExcType {
		t.Errorf("error %v should be a guest type error", err)
	}
	if in.ErrOccurred() {
		t.Error("guest error slot should be consumed by the wrapper")
	}
}

func TestModule_AddClassInitFailurePanics(t *testing.T) {
	in := guesttest.New()
	in.FailNewType = true
	tok := Entered(in)

	m := newModule(t, in, tok, "demo")
	defer m.Release(tok)

	ti := &TypeInfo{Name: "Broken"}

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic on first-time type init failure")
		}
		if !strings.Contains(r.(string), "Broken") {
			t.Errorf("panic %v should name the class", r)
		}
	}()
	_ = m.AddClass(tok, ti)
}

func TestWrapModule_RejectsNonModule(t *testing.T) {
	in := guesttest.New()
	tok := Entered(in)

	ref := in.NewInt64(1)
	_, err := WrapModule(tok, Own(tok, ref))
	if err == nil {
		t.Fatal("expected type error wrapping a non-module")
	}
	if in.Alive(ref) {
		t.Error("failed wrap should release the handle")
	}
}

func TestImportModule(t *testing.T) {
	in := guesttest.New()
	tok := Entered(in)

	m := newModule(t, in, tok, "demo")
	in.Install("demo", m.Ref())
	m.Release(tok)

	imp, err := ImportModule(tok, "demo")
	if err != nil {
		t.Fatalf("ImportModule error: %v", err)
	}
	defer imp.Release(tok)

	name, err := imp.Name(tok)
	if err != nil || name != "demo" {
		t.Errorf("imported name = %q, err=%v", name, err)
	}

	if _, err := ImportModule(tok, "ghost"); err == nil {
		t.Error("expected error importing unknown module")
	}
}
