package abi

// Ref is an opaque pointer to a guest object. Ref 0 is the null pointer and
// never addresses a live object.
type Ref uintptr

// Null is the failure sentinel of the guest calling convention.
const Null Ref = 0

// IsNull reports whether r is the null pointer.
func (r Ref) IsNull() bool { return r == Null }

// Generation identifies a guest module-loading ABI generation. Generations
// differ in the exported init-symbol naming convention and the module
// creation sequence; object-pointer semantics are identical.
type Generation int

const (
	// GenLegacy is the older loader convention: the init symbol is
	// "init<module>" and the module-creation primitive returns a borrowed
	// reference owned by the interpreter's module table.
	GenLegacy Generation = 2

	// GenCurrent is the current loader convention: the init symbol is
	// "GuestInit_<module>" and module creation returns an owned reference.
	GenCurrent Generation = 3
)

// InitSymbol returns the loader-facing entry-point symbol the guest resolves
// on import of module under generation g. The result is deterministic in
// (g, module).
//
// This is the symbol name, not the Go function name: generated initializers
// carry exported Go identifiers (GuestInit_<module>, Init_<module>), and
// under GenLegacy the two differ because "init<module>" is unexportable in
// Go. The embedding links the Go function to the loader symbol.
func InitSymbol(g Generation, module string) string {
	if g == GenLegacy {
		return "init" + module
	}
	return "GuestInit_" + module
}

// EntryPoint is the fixed calling convention for a native function callable
// by the guest: receiver, positional args tuple, keyword dict (possibly
// Null) in; owned result out, or Null with the error slot set.
type EntryPoint func(recv, args, kwargs Ref) Ref

// MethodFlags describes the calling convention bits of a method-table entry.
type MethodFlags uint32

const (
	MethVarArgs  MethodFlags = 1 << 0 // accepts a positional tuple
	MethKeywords MethodFlags = 1 << 1 // accepts a keyword dict
	MethStatic   MethodFlags = 1 << 2
	MethClass    MethodFlags = 1 << 3
)

// MethodDef is one entry of a generated method table.
type MethodDef struct {
	Name  string
	Doc   string
	Flags MethodFlags
	Func  EntryPoint
}

// TypeSpec describes a native type descriptor to be initialized and
// registered with the guest.
type TypeSpec struct {
	Name   string
	Doc    string
	Module string

	// New is the instantiation entry point invoked when the type object
	// itself is called; its receiver is the type object. Nil means the type
	// cannot be instantiated from guest code.
	New EntryPoint

	Methods []MethodDef
}

// ErrState is a fetched snapshot of the guest error slot: the exception type
// name, its message, and the exception value object if one was materialized.
type ErrState struct {
	Type    string
	Message string
	Value   Ref
}

// Runtime is the complete guest-ABI primitive set consumed by this library.
//
// Every method must be called with the guest's global lock held; the guest
// package enforces this by requiring a Token for each wrapper operation.
type Runtime interface {
	// IncRef adds one reference-count unit to a live object.
	IncRef(r Ref)
	// DecRef releases one reference-count unit.
	DecRef(r Ref)

	// NewModule allocates a module object named name following the creation
	// sequence of generation g. Under GenCurrent the result is owned; under
	// GenLegacy it is borrowed from the interpreter's module table. Returns
	// Null with the error slot set on failure.
	NewModule(g Generation, name string) Ref
	// ImportModule imports and returns an owned reference to a module.
	ImportModule(name string) Ref
	// ModuleName returns the raw bytes of a module's name attribute.
	ModuleName(m Ref) ([]byte, bool)
	// ModuleFilename returns the raw bytes of a module's filename attribute.
	ModuleFilename(m Ref) ([]byte, bool)
	// ModuleDict returns a borrowed reference to the module namespace dict.
	ModuleDict(m Ref) Ref
	// IsModule reports whether r points at a module object.
	IsModule(r Ref) bool

	// GetAttr returns an owned reference to an attribute, or Null with the
	// error slot set.
	GetAttr(obj Ref, name string) Ref
	// SetAttr binds an attribute; false means the error slot is set.
	SetAttr(obj Ref, name string, value Ref) bool
	// Call invokes fn with a positional tuple and an optional keyword dict
	// (Null for none). Owned result, or Null with the error slot set.
	Call(fn, args, kwargs Ref) Ref

	// TupleLen returns the length of a tuple.
	TupleLen(t Ref) int
	// TupleGet returns a borrowed reference to element i.
	TupleGet(t Ref, i int) Ref
	// NewTuple builds an owned tuple from items (borrowing each).
	NewTuple(items []Ref) Ref
	// DictLen returns the number of entries in a dict.
	DictLen(d Ref) int
	// DictGet returns a borrowed reference to the value under key, or Null
	// without touching the error slot when the key is absent.
	DictGet(d Ref, key string) Ref
	// DictKeys returns the string keys of a dict.
	DictKeys(d Ref) []string
	// NewDict builds an owned empty dict.
	NewDict() Ref
	// DictSet stores value under key; false means the error slot is set.
	DictSet(d Ref, key string, value Ref) bool

	// NewString builds an owned guest string from host bytes.
	NewString(s string) Ref
	// AsString returns the raw bytes of a guest string.
	AsString(r Ref) ([]byte, bool)
	// NewInt64 builds an owned guest integer.
	NewInt64(v int64) Ref
	// AsInt64 reads a guest integer.
	AsInt64(r Ref) (int64, bool)
	// NewFloat64 builds an owned guest float.
	NewFloat64(v float64) Ref
	// AsFloat64 reads a guest float.
	AsFloat64(r Ref) (float64, bool)
	// NewBool returns an owned reference to a guest boolean.
	NewBool(v bool) Ref
	// AsBool reads a guest boolean.
	AsBool(r Ref) (bool, bool)
	// None returns a borrowed reference to the none singleton.
	None() Ref
	// TypeName returns the guest type name of an object, for diagnostics.
	TypeName(r Ref) string

	// NewFunction materializes a callable object from a method-table entry,
	// bound to module for diagnostics. Owned result.
	NewFunction(def *MethodDef, module Ref) Ref
	// NewType performs first-time initialization of a native type
	// descriptor and returns an owned reference to the type object.
	NewType(spec *TypeSpec) Ref

	// ErrOccurred reports whether the error slot is set.
	ErrOccurred() bool
	// ErrFetch returns the pending error and clears the slot.
	ErrFetch() (ErrState, bool)
	// ErrRestore deposits state into the error slot.
	ErrRestore(state ErrState)
	// ErrSet raises a new exception of the named type.
	ErrSet(typ, message string)
}

// Standard guest exception type names raised by the binding layer.
const (
	ExcType      = "TypeError"
	ExcAttribute = "AttributeError"
	ExcDecode    = "UnicodeDecodeError"
	ExcRuntime   = "RuntimeError"
	ExcImport    = "ImportError"
	ExcSystem    = "SystemError"
)
