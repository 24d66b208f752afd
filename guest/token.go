package guest

import (
	"github.com/veldtlabs/dynbind/abi"
)

// Token is proof of possession of the guest runtime's global lock. It is a
// zero-cost capability, not a lock: constructing one performs no
// acquisition, and there is no release. Operations that touch guest objects
// take a Token so the lock precondition is visible at every call site
// instead of being ambient state.
//
// The zero Token is invalid and panics on use.
type Token struct {
	rt abi.Runtime
}

// Entered mints a Token at a true native boundary, where the guest runtime
// transfers control to native code with the lock already held. Callers
// elsewhere must thread an existing Token instead.
func Entered(rt abi.Runtime) Token {
	if rt == nil {
		panic("guest: Entered with nil runtime")
	}
	return Token{rt: rt}
}

// Runtime returns the ABI surface this token grants access to.
func (t Token) Runtime() abi.Runtime {
	if t.rt == nil {
		panic("guest: use of zero Token")
	}
	return t.rt
}
