package guest

import (
	"github.com/veldtlabs/dynbind/abi"
	"github.com/veldtlabs/dynbind/errors"
)

// Module is a typed wrapper over a guest module object.
type Module struct {
	Object
}

// NewModule creates a fresh module object named name under the current ABI
// generation.
func NewModule(tok Token, name string) (*Module, error) {
	ref := tok.Runtime().NewModule(abi.GenCurrent, name)
	if r := errIfNull(tok, ref, func() *Raised {
		return Raise(abi.ExcSystem, "module allocation failed for %q", name)
	}); r != nil {
		return nil, r
	}
	return &Module{Object{h: Own(tok, ref)}}, nil
}

// ImportModule imports the module with the given name.
func ImportModule(tok Token, name string) (*Module, error) {
	ref := tok.Runtime().ImportModule(name)
	if r := errIfNull(tok, ref, func() *Raised {
		return raiseCaused(abi.ExcImport, "no module named "+name,
			errors.NotFound(errors.PhaseRuntime, "module", name))
	}); r != nil {
		return nil, r
	}
	return &Module{Object{h: Own(tok, ref)}}, nil
}

// WrapModule takes ownership of ref via h and checks that it is a module
// object. On failure the handle is released and a type error returned.
func WrapModule(tok Token, h Handle) (*Module, error) {
	if h.IsNull() || !tok.Runtime().IsModule(h.Ref()) {
		name := "null"
		if !h.IsNull() {
			name = tok.Runtime().TypeName(h.Ref())
		}
		h.Release(tok)
		return nil, Raise(abi.ExcType, "expected module, got %s", name)
	}
	return &Module{Object{h: h}}, nil
}

// Name returns the module's name attribute.
func (m *Module) Name(tok Token) (string, error) {
	raw, ok := tok.Runtime().ModuleName(m.h.Ref())
	if !ok {
		if r := Fetch(tok); r != nil {
			return "", r
		}
		return "", raiseCaused(abi.ExcAttribute, "module has no name", errors.Attribute("__name__"))
	}
	return decodeGuestBytes("__name__", raw)
}

// Filename returns the module's filename attribute.
func (m *Module) Filename(tok Token) (string, error) {
	raw, ok := tok.Runtime().ModuleFilename(m.h.Ref())
	if !ok {
		if r := Fetch(tok); r != nil {
			return "", r
		}
		return "", raiseCaused(abi.ExcAttribute, "module has no filename", errors.Attribute("__file__"))
	}
	return decodeGuestBytes("__file__", raw)
}

// Dict returns a borrowed handle to the module's namespace mapping. No
// ownership is transferred.
func (m *Module) Dict(tok Token) Handle {
	return Borrow(tok, tok.Runtime().ModuleDict(m.h.Ref()))
}

// Get returns the named member of the module.
func (m *Module) Get(tok Token, name string) (Object, error) {
	return m.GetAttr(tok, name)
}

// Add binds a member on the module. Intended for use from module
// initializer bodies; the value reference is borrowed.
func (m *Module) Add(tok Token, name string, value abi.Ref) error {
	return m.SetAttr(tok, name, value)
}

// Call invokes the named member of the module with positional args and
// optional keyword args.
func (m *Module) Call(tok Token, name string, args []abi.Ref, kwargs map[string]abi.Ref) (Object, error) {
	return m.CallAttr(tok, name, args, kwargs)
}

// AddFunction materializes a generated method-table entry as a callable
// object and binds it under its declared name.
func (m *Module) AddFunction(tok Token, def *abi.MethodDef) error {
	ref := tok.Runtime().NewFunction(def, m.h.Ref())
	if r := errIfNull(tok, ref, func() *Raised {
		return AsRaised(errors.Registration(m.nameForDiag(tok), def.Name, nil))
	}); r != nil {
		return r
	}
	h := Own(tok, ref)
	defer h.Release(tok)
	return m.Add(tok, def.Name, h.Ref())
}

// AddClass registers a native type on the module. Registration is
// idempotent by construction: if the descriptor is already marked ready the
// existing type object is re-registered; otherwise first-time
// initialization runs exactly once. First-time initialization failure is
// unrecoverable and panics, since a partially-initialized descriptor must
// not be retried.
func (m *Module) AddClass(tok Token, ti *TypeInfo) error {
	modName := m.nameForDiag(tok)
	typeRef := ti.typeObject(tok, modName)
	return m.Add(tok, ti.Name, typeRef)
}

// nameForDiag best-effort resolves the module name for diagnostics.
func (m *Module) nameForDiag(tok Token) string {
	name, err := m.Name(tok)
	if err != nil {
		return "<module>"
	}
	return name
}
