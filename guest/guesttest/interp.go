package guesttest

import (
	"fmt"
	"sort"

	"github.com/veldtlabs/dynbind/abi"
)

type objKind uint8

const (
	kindNone objKind = iota
	kindBool
	kindInt
	kindFloat
	kindStr
	kindTuple
	kindDict
	kindModule
	kindFunc
	kindType
)

type object struct {
	kind     objKind
	refs     int
	i        int64
	f        float64
	b        bool
	s        []byte
	items    []abi.Ref          // tuple elements, one unit each
	entries  map[string]abi.Ref // dict entries, one unit each
	name     []byte             // module name bytes
	filename []byte             // module filename bytes, nil if unset
	dictRef  abi.Ref            // module/type namespace dict, one unit
	def      *abi.MethodDef
	ctor     abi.EntryPoint // type instantiation slot, nil if uninstantiable
}

// Interp is an in-memory guest interpreter implementing abi.Runtime.
type Interp struct {
	// FailNewModule makes module allocation fail with the error slot set.
	FailNewModule bool
	// FailNewType makes type initialization fail with the error slot set.
	FailNewType bool

	objects map[abi.Ref]*object
	modules map[string]abi.Ref // legacy module table, one unit each
	next    abi.Ref
	none    abi.Ref
	errSet  bool
	errVal  abi.ErrState
	inits   int // NewType calls that ran first-time initialization
}

var _ abi.Runtime = (*Interp)(nil)

// New creates an empty interpreter with the none singleton allocated.
func New() *Interp {
	in := &Interp{
		objects: make(map[abi.Ref]*object),
		modules: make(map[string]abi.Ref),
	}
	in.none = in.alloc(&object{kind: kindNone})
	return in
}

func (in *Interp) alloc(o *object) abi.Ref {
	in.next++
	o.refs = 1
	in.objects[in.next] = o
	return in.next
}

func (in *Interp) live(r abi.Ref) *object {
	o, ok := in.objects[r]
	if !ok {
		panic(fmt.Sprintf("guesttest: use of dead or unknown ref %d", r))
	}
	return o
}

// IncRef adds one reference-count unit.
func (in *Interp) IncRef(r abi.Ref) { in.live(r).refs++ }

// DecRef releases one unit, destroying the object and its children at zero.
func (in *Interp) DecRef(r abi.Ref) {
	o := in.live(r)
	o.refs--
	if o.refs > 0 {
		return
	}
	delete(in.objects, r)
	for _, item := range o.items {
		in.DecRef(item)
	}
	for _, v := range o.entries {
		in.DecRef(v)
	}
	if !o.dictRef.IsNull() {
		in.DecRef(o.dictRef)
	}
}

// NewModule allocates a module. Under GenLegacy the module table keeps the
// unit and the returned reference is borrowed; under GenCurrent the caller
// owns it.
func (in *Interp) NewModule(g abi.Generation, name string) abi.Ref {
	if in.FailNewModule {
		in.ErrSet(abi.ExcImport, "module allocation refused")
		return abi.Null
	}
	dict := in.alloc(&object{kind: kindDict, entries: make(map[string]abi.Ref)})
	m := in.alloc(&object{kind: kindModule, name: []byte(name), dictRef: dict})
	if g == abi.GenLegacy {
		in.modules[name] = m // table owns the allocation unit
	}
	return m
}

// Install registers a module in the import table, taking one unit.
func (in *Interp) Install(name string, m abi.Ref) {
	in.IncRef(m)
	in.modules[name] = m
}

// ImportModule returns an owned reference to a registered module.
func (in *Interp) ImportModule(name string) abi.Ref {
	m, ok := in.modules[name]
	if !ok {
		in.ErrSet(abi.ExcImport, "no module named "+name)
		return abi.Null
	}
	in.IncRef(m)
	return m
}

// ModuleName returns the raw name bytes.
func (in *Interp) ModuleName(m abi.Ref) ([]byte, bool) {
	o := in.live(m)
	if o.kind != kindModule {
		in.ErrSet(abi.ExcType, "not a module")
		return nil, false
	}
	return o.name, true
}

// SetModuleName overwrites the raw name bytes, for decode-error tests.
func (in *Interp) SetModuleName(m abi.Ref, raw []byte) { in.live(m).name = raw }

// ModuleFilename returns the raw filename bytes if set.
func (in *Interp) ModuleFilename(m abi.Ref) ([]byte, bool) {
	o := in.live(m)
	if o.kind != kindModule || o.filename == nil {
		in.ErrSet(abi.ExcAttribute, "module has no __file__")
		return nil, false
	}
	return o.filename, true
}

// SetModuleFilename sets the raw filename bytes.
func (in *Interp) SetModuleFilename(m abi.Ref, raw []byte) { in.live(m).filename = raw }

// ModuleDict returns a borrowed reference to the namespace dict.
func (in *Interp) ModuleDict(m abi.Ref) abi.Ref { return in.live(m).dictRef }

// IsModule reports whether r is a module object.
func (in *Interp) IsModule(r abi.Ref) bool { return in.live(r).kind == kindModule }

func (in *Interp) namespace(o *object) map[string]abi.Ref {
	switch o.kind {
	case kindModule, kindType:
		return in.live(o.dictRef).entries
	case kindDict:
		return o.entries
	}
	return nil
}

// GetAttr returns an owned reference to an attribute.
func (in *Interp) GetAttr(obj abi.Ref, name string) abi.Ref {
	ns := in.namespace(in.live(obj))
	if ns == nil {
		in.ErrSet(abi.ExcType, "object has no attributes")
		return abi.Null
	}
	v, ok := ns[name]
	if !ok {
		in.ErrSet(abi.ExcAttribute, "no attribute "+name)
		return abi.Null
	}
	in.IncRef(v)
	return v
}

// SetAttr binds an attribute, borrowing value.
func (in *Interp) SetAttr(obj abi.Ref, name string, value abi.Ref) bool {
	ns := in.namespace(in.live(obj))
	if ns == nil {
		in.ErrSet(abi.ExcType, "object has no attributes")
		return false
	}
	in.IncRef(value)
	if old, ok := ns[name]; ok {
		in.DecRef(old)
	}
	ns[name] = value
	return true
}

// Call invokes a callable object through its entry point. Calling a type
// object runs its instantiation slot with the type as receiver.
func (in *Interp) Call(fn, args, kwargs abi.Ref) abi.Ref {
	o := in.live(fn)
	switch o.kind {
	case kindFunc:
		return o.def.Func(abi.Null, args, kwargs)
	case kindType:
		if o.ctor == nil {
			in.ErrSet(abi.ExcType, "cannot create instances of "+string(o.name))
			return abi.Null
		}
		return o.ctor(fn, args, kwargs)
	}
	in.ErrSet(abi.ExcType, "object is not callable")
	return abi.Null
}

// TupleLen returns the tuple length.
func (in *Interp) TupleLen(t abi.Ref) int { return len(in.live(t).items) }

// TupleGet returns a borrowed element reference.
func (in *Interp) TupleGet(t abi.Ref, i int) abi.Ref { return in.live(t).items[i] }

// NewTuple builds an owned tuple, borrowing each item.
func (in *Interp) NewTuple(items []abi.Ref) abi.Ref {
	held := make([]abi.Ref, len(items))
	for i, item := range items {
		in.IncRef(item)
		held[i] = item
	}
	return in.alloc(&object{kind: kindTuple, items: held})
}

// DictLen returns the number of entries.
func (in *Interp) DictLen(d abi.Ref) int { return len(in.live(d).entries) }

// DictGet returns a borrowed value or Null without touching the error slot.
func (in *Interp) DictGet(d abi.Ref, key string) abi.Ref {
	return in.live(d).entries[key]
}

// DictKeys returns the dict's keys in sorted order.
func (in *Interp) DictKeys(d abi.Ref) []string {
	entries := in.live(d).entries
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NewDict builds an owned empty dict.
func (in *Interp) NewDict() abi.Ref {
	return in.alloc(&object{kind: kindDict, entries: make(map[string]abi.Ref)})
}

// DictSet stores value under key, borrowing it.
func (in *Interp) DictSet(d abi.Ref, key string, value abi.Ref) bool {
	o := in.live(d)
	in.IncRef(value)
	if old, ok := o.entries[key]; ok {
		in.DecRef(old)
	}
	o.entries[key] = value
	return true
}

// NewString builds an owned guest string.
func (in *Interp) NewString(s string) abi.Ref {
	return in.alloc(&object{kind: kindStr, s: []byte(s)})
}

// NewStringBytes builds an owned guest string from raw bytes, which need
// not be valid UTF-8.
func (in *Interp) NewStringBytes(raw []byte) abi.Ref {
	return in.alloc(&object{kind: kindStr, s: raw})
}

// AsString returns the raw bytes of a string object.
func (in *Interp) AsString(r abi.Ref) ([]byte, bool) {
	o := in.live(r)
	if o.kind != kindStr {
		return nil, false
	}
	return o.s, true
}

// NewInt64 builds an owned guest integer.
func (in *Interp) NewInt64(v int64) abi.Ref {
	return in.alloc(&object{kind: kindInt, i: v})
}

// AsInt64 reads a guest integer.
func (in *Interp) AsInt64(r abi.Ref) (int64, bool) {
	o := in.live(r)
	if o.kind != kindInt {
		return 0, false
	}
	return o.i, true
}

// NewFloat64 builds an owned guest float.
func (in *Interp) NewFloat64(v float64) abi.Ref {
	return in.alloc(&object{kind: kindFloat, f: v})
}

// AsFloat64 reads a guest float.
func (in *Interp) AsFloat64(r abi.Ref) (float64, bool) {
	o := in.live(r)
	if o.kind != kindFloat {
		return 0, false
	}
	return o.f, true
}

// NewBool builds an owned guest boolean.
func (in *Interp) NewBool(v bool) abi.Ref {
	return in.alloc(&object{kind: kindBool, b: v})
}

// AsBool reads a guest boolean.
func (in *Interp) AsBool(r abi.Ref) (bool, bool) {
	o := in.live(r)
	if o.kind != kindBool {
		return false, false
	}
	return o.b, true
}

// None returns a borrowed reference to the none singleton.
func (in *Interp) None() abi.Ref { return in.none }

// TypeName returns the guest type name of an object.
func (in *Interp) TypeName(r abi.Ref) string {
	if r.IsNull() {
		return "null"
	}
	switch in.live(r).kind {
	case kindNone:
		return "NoneType"
	case kindBool:
		return "bool"
	case kindInt:
		return "int"
	case kindFloat:
		return "float"
	case kindStr:
		return "str"
	case kindTuple:
		return "tuple"
	case kindDict:
		return "dict"
	case kindModule:
		return "module"
	case kindFunc:
		return "builtin_function_or_method"
	case kindType:
		return "type"
	}
	return "unknown"
}

// NewFunction materializes a method-table entry as a callable object.
func (in *Interp) NewFunction(def *abi.MethodDef, module abi.Ref) abi.Ref {
	return in.alloc(&object{kind: kindFunc, def: def})
}

// NewType runs first-time type initialization.
func (in *Interp) NewType(spec *abi.TypeSpec) abi.Ref {
	if in.FailNewType {
		in.ErrSet(abi.ExcType, "type initialization refused for "+spec.Name)
		return abi.Null
	}
	in.inits++
	dict := in.alloc(&object{kind: kindDict, entries: make(map[string]abi.Ref)})
	t := in.alloc(&object{kind: kindType, name: []byte(spec.Name), dictRef: dict, ctor: spec.New})
	for i := range spec.Methods {
		def := &spec.Methods[i]
		fn := in.NewFunction(def, abi.Null)
		in.SetAttr(t, def.Name, fn)
		in.DecRef(fn)
	}
	return t
}

// ErrOccurred reports whether the error slot is set.
func (in *Interp) ErrOccurred() bool { return in.errSet }

// ErrFetch returns the pending error and clears the slot.
func (in *Interp) ErrFetch() (abi.ErrState, bool) {
	if !in.errSet {
		return abi.ErrState{}, false
	}
	state := in.errVal
	in.errSet = false
	in.errVal = abi.ErrState{}
	return state, true
}

// ErrRestore deposits state into the error slot.
func (in *Interp) ErrRestore(state abi.ErrState) {
	in.errSet = true
	in.errVal = state
}

// ErrSet raises a new exception.
func (in *Interp) ErrSet(typ, message string) {
	in.errSet = true
	in.errVal = abi.ErrState{Type: typ, Message: message}
}

// Inspection helpers for tests.

// RefCount returns the current count for a live reference.
func (in *Interp) RefCount(r abi.Ref) int { return in.live(r).refs }

// Alive reports whether r still addresses a live object.
func (in *Interp) Alive(r abi.Ref) bool {
	_, ok := in.objects[r]
	return ok
}

// LiveCount returns the number of live objects, including the none
// singleton and table-held modules.
func (in *Interp) LiveCount() int { return len(in.objects) }

// TypeInits returns how many first-time type initializations have run.
func (in *Interp) TypeInits() int { return in.inits }
