package guest

import (
	"fmt"
	"sync"

	"github.com/veldtlabs/dynbind/abi"
)

// TypeInfo is the host-side descriptor for a native class exposed to the
// guest. A TypeInfo is declared once (typically generated) and registered
// on modules via Module.AddClass; the underlying guest type object is
// initialized lazily on first registration and reused afterwards.
type TypeInfo struct {
	Name string
	Doc  string

	// New is the instantiation entry point bound to calls of the type
	// object. Nil leaves the class uninstantiable from guest code.
	New abi.EntryPoint

	Methods []abi.MethodDef

	mu      sync.Mutex
	ready   bool
	typeRef abi.Ref // one refcount unit held for process lifetime once ready
}

// Ready reports whether the descriptor has completed first-time
// initialization.
func (ti *TypeInfo) Ready() bool {
	ti.mu.Lock()
	defer ti.mu.Unlock()
	return ti.ready
}

// typeObject returns the guest type object for this descriptor, running
// first-time initialization if the descriptor is not yet ready. The
// returned reference is borrowed from the descriptor's retained unit.
//
// Initialization failure panics: the descriptor may be left half
// initialized by the guest and retrying would operate on that state.
func (ti *TypeInfo) typeObject(tok Token, moduleName string) abi.Ref {
	ti.mu.Lock()
	defer ti.mu.Unlock()

	if ti.ready {
		return ti.typeRef
	}

	spec := &abi.TypeSpec{
		Name:    ti.Name,
		Doc:     ti.Doc,
		Module:  moduleName,
		New:     ti.New,
		Methods: ti.Methods,
	}
	ref := tok.Runtime().NewType(spec)
	if ref.IsNull() {
		detail := "unknown error"
		if r := Fetch(tok); r != nil {
			detail = r.Error()
		}
		panic(fmt.Sprintf("guest: initializing class %s failed: %s", ti.Name, detail))
	}

	ti.typeRef = ref
	ti.ready = true
	debugf("class %s initialized in module %s", ti.Name, moduleName)
	return ti.typeRef
}
