package guest

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/veldtlabs/dynbind/abi"
)

// Guard is a scope guard installed at every native boundary. If the scope
// unwinds without the guard being defused, the process is terminated:
// resuming guest-runtime execution across a disrupted native call stack is
// undefined behavior, so the only safe reaction is to die loudly.
type Guard struct {
	location string
	defused  bool
}

// NewGuard arms a guard for the named boundary location.
func NewGuard(location string) *Guard {
	return &Guard{location: location}
}

// Defuse marks the boundary exit as controlled. Must be called on every
// normal or error-but-handled exit path.
func (g *Guard) Defuse() { g.defused = true }

// abort terminates the process on an uncontrolled unwind. Overridable so
// the guard's firing can be observed in tests.
var abort = func(location string, cause any) {
	Logger().Error("uncontrolled unwind across native boundary",
		zap.String("location", location),
		zap.Any("cause", cause))
	fmt.Fprintf(os.Stderr, "dynbind: uncontrolled unwind across native boundary in %s: %v\n", location, cause)
	os.Exit(70)
}

// Enter runs an entry-point body under the guest calling convention at the
// named boundary location. It mints the lock token, arms a Guard, and
// enforces the boundary contract: exactly one of {non-null result returned,
// null returned with the error slot set} holds on every exit. A body that
// returns null without an error is itself a contract violation and is
// converted into a system error rather than handed to the guest silently.
func Enter(rt abi.Runtime, location string, body func(Token) (abi.Ref, error)) (result abi.Ref) {
	g := NewGuard(location)
	defer func() {
		if !g.defused {
			abort(g.location, recover())
		}
	}()

	tok := Entered(rt)
	ref, err := body(tok)
	if err != nil {
		AsRaised(err).Restore(tok)
		g.Defuse()
		return abi.Null
	}
	if ref.IsNull() {
		rt.ErrSet(abi.ExcSystem, location+" returned null without setting an error")
		g.Defuse()
		return abi.Null
	}
	g.Defuse()
	return ref
}

// ModuleInit is the user-supplied body of a module initializer. It runs
// with the freshly allocated module wrapped and registers the module's
// functions and classes.
type ModuleInit func(tok Token, m *Module) error

// InitModule drives the module-initializer boundary for generation g:
//
//	allocate → wrap → run body → hand owned pointer to the loader
//
// Allocation failure returns null immediately without running the body
// (the guest left its own error in the slot). Wrapping or body failure
// restores the error into the slot and returns null; a partially populated
// module is never returned as success. A Guard spans the whole sequence.
func InitModule(rt abi.Runtime, g abi.Generation, name string, body ModuleInit) (result abi.Ref) {
	guard := NewGuard(abi.InitSymbol(g, name))
	defer func() {
		if !guard.defused {
			abort(guard.location, recover())
		}
	}()

	tok := Entered(rt)

	ref := rt.NewModule(g, name)
	if ref.IsNull() {
		guard.Defuse()
		return abi.Null
	}

	// The legacy creation sequence hands back a borrowed pointer owned by
	// the interpreter's module table; claim a unit so both generations flow
	// through the same owned path.
	var h Handle
	if g == abi.GenLegacy {
		h = Borrow(tok, ref).Clone(tok)
	} else {
		h = Own(tok, ref)
	}

	m, err := WrapModule(tok, h)
	if err != nil {
		AsRaised(err).Restore(tok)
		guard.Defuse()
		return abi.Null
	}

	if err := body(tok, m); err != nil {
		AsRaised(err).Restore(tok)
		m.Release(tok)
		guard.Defuse()
		return abi.Null
	}

	guard.Defuse()
	return m.IntoRef(tok)
}
