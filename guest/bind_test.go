package guest

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/veldtlabs/dynbind/abi"
	"github.com/veldtlabs/dynbind/errors"
	"github.com/veldtlabs/dynbind/guest/guesttest"
)

func makeArgs(in *guesttest.Interp, values ...int64) abi.Ref {
	items := make([]abi.Ref, len(values))
	for i, v := range values {
		items[i] = in.NewInt64(v)
	}
	tup := in.NewTuple(items)
	for _, item := range items {
		in.DecRef(item)
	}
	return tup
}

func makeKwargs(in *guesttest.Interp, kv map[string]int64) abi.Ref {
	d := in.NewDict()
	for k, v := range kv {
		n := in.NewInt64(v)
		in.DictSet(d, k, n)
		in.DecRef(n)
	}
	return d
}

func TestBindArgs_Positional(t *testing.T) {
	in := guesttest.New()
	tok := Entered(in)

	params := []Param{{Name: "a"}, {Name: "b"}}
	args := makeArgs(in, 1, 2)
	defer in.DecRef(args)

	bound, err := BindArgs(tok, "demo.f()", params, args, abi.Null)
	if err != nil {
		t.Fatalf("BindArgs error: %v", err)
	}
	if len(bound) != 2 {
		t.Fatalf("bound %d values, want 2", len(bound))
	}
	for i, want := range []int64{1, 2} {
		if n, _ := in.AsInt64(bound[i]); n != want {
			t.Errorf("bound[%d] = %d, want %d", i, n, want)
		}
	}
}

func TestBindArgs_KeywordFillsRemaining(t *testing.T) {
	in := guesttest.New()
	tok := Entered(in)

	params := []Param{{Name: "a"}, {Name: "b"}}
	args := makeArgs(in, 1)
	defer in.DecRef(args)
	kwargs := makeKwargs(in, map[string]int64{"b": 2})
	defer in.DecRef(kwargs)

	bound, err := BindArgs(tok, "demo.f()", params, args, kwargs)
	if err != nil {
		t.Fatalf("BindArgs error: %v", err)
	}
	if n, _ := in.AsInt64(bound[1]); n != 2 {
		t.Errorf("bound[1] = %d, want 2", n)
	}
}

func TestBindArgs_PositionalSkipsKeywordOnly(t *testing.T) {
	in := guesttest.New()
	tok := Entered(in)

	// a keyword-only parameter declared ahead of a positional one must not
	// consume tuple slots
	params := []Param{
		{Name: "flag", Optional: true, KeywordOnly: true},
		{Name: "x"},
	}
	args := makeArgs(in, 7)
	defer in.DecRef(args)

	bound, err := BindArgs(tok, "demo.f()", params, args, abi.Null)
	if err != nil {
		t.Fatalf("BindArgs error: %v", err)
	}
	if !bound[0].IsNull() {
		t.Error("keyword-only flag must not bind positionally")
	}
	if n, _ := in.AsInt64(bound[1]); n != 7 {
		t.Errorf("bound[1] = %d, want 7", n)
	}
}

func TestBindArgs_MissingRequiredNamesParameter(t *testing.T) {
	in := guesttest.New()
	tok := Entered(in)

	params := []Param{{Name: "x"}}

	_, err := BindArgs(tok, "demo.add_one()", params, abi.Null, abi.Null)
	if err == nil {
		t.Fatal("expected missing-argument error")
	}
	if !strings.Contains(err.Error(), `"x"`) {
		t.Errorf("error %q should name parameter x", err.Error())
	}
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseBind, Kind: errors.KindMissingArg}) {
		t.Errorf("error %v should classify as missing_arg", err)
	}
}

func TestBindArgs_OptionalBindsEmpty(t *testing.T) {
	in := guesttest.New()
	tok := Entered(in)

	params := []Param{{Name: "x"}, {Name: "limit", Optional: true}}
	args := makeArgs(in, 5)
	defer in.DecRef(args)

	bound, err := BindArgs(tok, "demo.f()", params, args, abi.Null)
	if err != nil {
		t.Fatalf("BindArgs error: %v", err)
	}
	if !bound[1].IsNull() {
		t.Error("absent optional should bind to the empty sentinel")
	}
}

func TestBindArgs_TooManyPositional(t *testing.T) {
	in := guesttest.New()
	tok := Entered(in)

	params := []Param{{Name: "x"}}
	args := makeArgs(in, 1, 2)
	defer in.DecRef(args)

	_, err := BindArgs(tok, "demo.add_one()", params, args, abi.Null)
	if err == nil {
		t.Fatal("expected too-many-arguments error")
	}
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseBind, Kind: errors.KindUnexpectedArg}) {
		t.Errorf("error %v should classify as unexpected_arg", err)
	}
}

func TestBindArgs_UnexpectedKeyword(t *testing.T) {
	in := guesttest.New()
	tok := Entered(in)

	params := []Param{{Name: "x"}}
	kwargs := makeKwargs(in, map[string]int64{"x": 1, "bogus": 2})
	defer in.DecRef(kwargs)

	_, err := BindArgs(tok, "demo.f()", params, abi.Null, kwargs)
	if err == nil {
		t.Fatal("expected unexpected-keyword error")
	}
	if !strings.Contains(err.Error(), `"bogus"`) {
		t.Errorf("error %q should name the keyword", err.Error())
	}
}

func TestBindArgs_DuplicatePositionalAndKeyword(t *testing.T) {
	in := guesttest.New()
	tok := Entered(in)

	params := []Param{{Name: "x"}}
	args := makeArgs(in, 1)
	defer in.DecRef(args)
	kwargs := makeKwargs(in, map[string]int64{"x": 2})
	defer in.DecRef(kwargs)

	_, err := BindArgs(tok, "demo.f()", params, args, kwargs)
	if err == nil {
		t.Fatal("expected multiple-values error")
	}
	if !strings.Contains(err.Error(), "multiple values") {
		t.Errorf("error %q should mention multiple values", err.Error())
	}
}

func TestBindArgs_KeywordOnlyRejectsPositional(t *testing.T) {
	in := guesttest.New()
	tok := Entered(in)

	params := []Param{{Name: "x"}, {Name: "strict", KeywordOnly: true}}
	args := makeArgs(in, 1, 2)
	defer in.DecRef(args)

	_, err := BindArgs(tok, "demo.f()", params, args, abi.Null)
	if err == nil {
		t.Fatal("expected error binding keyword-only parameter positionally")
	}
}

func TestBindArgs_ReadOnly(t *testing.T) {
	in := guesttest.New()
	tok := Entered(in)

	params := []Param{{Name: "a"}, {Name: "b"}}
	args := makeArgs(in, 1)
	defer in.DecRef(args)
	kwargs := makeKwargs(in, map[string]int64{"b": 2})
	defer in.DecRef(kwargs)

	if _, err := BindArgs(tok, "demo.f()", params, args, kwargs); err != nil {
		t.Fatalf("BindArgs error: %v", err)
	}

	if in.TupleLen(args) != 1 || in.DictLen(kwargs) != 1 {
		t.Error("binding must not mutate the caller's containers")
	}
}

func TestArgInt64_MismatchNamesArgument(t *testing.T) {
	in := guesttest.New()
	tok := Entered(in)

	s := in.NewString("five")
	defer in.DecRef(s)

	_, err := ArgInt64(tok, "demo.add_one()", "x", s)
	if err == nil {
		t.Fatal("expected conversion error")
	}
	msg := err.Error()
	for _, want := range []string{"demo.add_one()", `"x"`, "int", "str"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q missing %q", msg, want)
		}
	}
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseConvert, Kind: errors.KindTypeMismatch}) {
		t.Errorf("error %v should classify as type_mismatch", err)
	}
}

func TestArgString_InvalidUTF8(t *testing.T) {
	in := guesttest.New()
	tok := Entered(in)

	s := in.NewStringBytes([]byte{0xff, 0x00})
	defer in.DecRef(s)

	_, err := ArgString(tok, "demo.f()", "name", s)
	if err == nil {
		t.Fatal("expected decode error")
	}
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseRuntime, Kind: errors.KindInvalidUTF8}) {
		t.Errorf("error %v should classify as invalid_utf8", err)
	}
}

func TestFromNoneIsOwned(t *testing.T) {
	in := guesttest.New()
	tok := Entered(in)

	before := in.RefCount(in.None())
	ref := FromNone(tok)
	if ref != in.None() {
		t.Fatal("FromNone should return the none singleton")
	}
	if in.RefCount(ref) != before+1 {
		t.Error("FromNone should claim one unit")
	}
	in.DecRef(ref)
}
