package meta

// GuestType identifies the guest-visible type a parameter or return value
// converts to.
type GuestType string

const (
	GuestInt    GuestType = "int"
	GuestFloat  GuestType = "float"
	GuestBool   GuestType = "bool"
	GuestString GuestType = "str"
	GuestObject GuestType = "object" // raw handle, no conversion
	GuestNone   GuestType = "None"
)

// FuncKind distinguishes the binding shapes a function declaration can take.
type FuncKind string

const (
	KindFunction    FuncKind = "function"
	KindMethod      FuncKind = "method"
	KindStaticMeth  FuncKind = "staticmethod"
	KindClassMethod FuncKind = "classmethod"
	KindConstructor FuncKind = "constructor"
)

// ParameterSpec describes one guest-visible parameter of a bound function.
// The ordered parameter list excludes the leading lock-token parameter and,
// for methods, the self handle.
type ParameterSpec struct {
	// Name is the guest-visible keyword for this parameter. It always
	// matches the Go parameter identifier.
	Name string

	// GoType is the Go type expression as written in the declaration.
	GoType string

	// Guest is the guest-side type the generated wrapper converts from.
	Guest GuestType

	// Optional marks pointer-typed parameters; an absent optional binds
	// to nil and the wrapper passes a nil pointer through.
	Optional bool

	// KeywordOnly parameters never bind positionally. Set by the "*"
	// marker in the directive's attrs list.
	KeywordOnly bool
}

// ReturnSpec describes the result shape of a bound function. A function
// returns either nothing (guest None), or one convertible value, in both
// cases optionally paired with a trailing error result.
type ReturnSpec struct {
	GoType   string
	Guest    GuestType
	HasError bool
}

// FunctionSpec is the normalized record for one annotated function. It is
// produced by extraction and consumed exactly once by code generation.
type FunctionSpec struct {
	Kind FuncKind

	// GoName is the Go identifier of the annotated function.
	GoName string

	// Name is the exported guest name, from the directive's name key or
	// derived from GoName.
	Name string

	// Module is the owning module's guest name. Empty for methods, which
	// reach their module through their class.
	Module string

	// Class is the owning class's guest name. Set only for method kinds.
	Class string

	// Doc is the declaration's doc comment with directive lines removed.
	Doc string

	// TakesToken records whether the Go function's first parameter is the
	// runtime-lock token.
	TakesToken bool

	Params []ParameterSpec
	Return ReturnSpec

	// Pos is the declaration's source position, for diagnostics.
	Pos string
}

// Location renders the call-site label the generated wrapper embeds in
// binding and conversion errors, e.g. "demo.add_one()".
func (f *FunctionSpec) Location() string {
	switch {
	case f.Kind == KindConstructor:
		return f.Class + "()"
	case f.Class != "":
		return f.Class + "." + f.Name + "()"
	case f.Module != "":
		return f.Module + "." + f.Name + "()"
	default:
		return f.Name + "()"
	}
}

// ClassSpec is the normalized record for one annotated type declaration.
type ClassSpec struct {
	// GoName is the Go identifier of the annotated type.
	GoName string

	// Name is the exported guest name.
	Name string

	// Module is the owning module's guest name.
	Module string

	Doc string

	// Constructor is the class's instantiation function, or nil when the
	// class cannot be instantiated from guest code. At most one per class.
	Constructor *FunctionSpec

	// Methods holds this class's bound methods in declaration order.
	Methods []*FunctionSpec

	Pos string
}

// ModuleSpec is the normalized record for one annotated module initializer.
type ModuleSpec struct {
	// GoName is the Go identifier of the annotated init function, or empty
	// when the module was declared implicitly by its first member.
	GoName string

	// Name is the guest module name from the directive.
	Name string

	Doc string

	// Functions and Classes hold the module's members in declaration order.
	Functions []*FunctionSpec
	Classes   []*ClassSpec

	Pos string
}
