package gen

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/veldtlabs/dynbind/abi"
	"github.com/veldtlabs/dynbind/meta"
)

// classDescriptor emits the shared TypeInfo and its method table builder.
func (g *generator) classDescriptor(cls *meta.ClassSpec) {
	e := g.e
	ident := descriptorIdent(cls)

	e.Blank()
	e.Linef("// %s is the shared descriptor for class %s.", ident, cls.Name)
	e.Linef("var %s = &guest.TypeInfo{", ident).In()
	e.Linef("Name: %s,", strconv.Quote(cls.Name))
	if cls.Doc != "" {
		e.Linef("Doc:  %s,", strconv.Quote(cls.Doc))
	}
	e.Out().Line("}")

	if len(cls.Methods) == 0 {
		return
	}
	e.Blank()
	e.Linef("func %sMethods(rt abi.Runtime) []abi.MethodDef {", ident).In()
	e.Line("return []abi.MethodDef{").In()
	for _, fn := range cls.Methods {
		e.Line("{").In()
		g.methodDefFields(fn)
		e.Out().Line("},")
	}
	e.Out().Line("}")
	e.Out().Line("}")
}

func (g *generator) methodDefFields(fn *meta.FunctionSpec) {
	e := g.e
	e.Linef("Name:  %s,", strconv.Quote(fn.Name))
	if fn.Doc != "" {
		e.Linef("Doc:   %s,", strconv.Quote(fn.Doc))
	}
	e.Linef("Flags: %s,", flagsExpr(fn.Kind))
	e.Linef("Func:  wrap%s(rt),", fn.GoName)
}

func flagsExpr(kind meta.FuncKind) string {
	flags := "abi.MethVarArgs | abi.MethKeywords"
	switch kind {
	case meta.KindStaticMeth:
		flags += " | abi.MethStatic"
	case meta.KindClassMethod:
		flags += " | abi.MethClass"
	}
	return flags
}

// initializers emits the per-generation module init pair and their shared
// registration body.
func (g *generator) initializers(m *meta.ModuleSpec) {
	e := g.e
	shared := "init" + title(sanitize(m.Name)) + "Module"

	e.Blank()
	e.Linef("// GuestInit_%s is the %s module initializer for the current ABI generation.", sanitize(m.Name), m.Name)
	e.Linef("func GuestInit_%s(rt abi.Runtime) abi.Ref {", sanitize(m.Name)).In()
	e.Linef("return %s(rt, abi.GenCurrent)", shared)
	e.Out().Line("}")

	e.Blank()
	e.Linef("// Init_%s is the %s module initializer for the legacy ABI generation.", sanitize(m.Name), m.Name)
	e.Linef("// The loader resolves it through the %q symbol.", abi.InitSymbol(abi.GenLegacy, m.Name))
	e.Linef("func Init_%s(rt abi.Runtime) abi.Ref {", sanitize(m.Name)).In()
	e.Linef("return %s(rt, abi.GenLegacy)", shared)
	e.Out().Line("}")

	e.Blank()
	e.Linef("func %s(rt abi.Runtime, g abi.Generation) abi.Ref {", shared).In()
	e.Linef("return guest.InitModule(rt, g, %s, func(tok guest.Token, m *guest.Module) error {", strconv.Quote(m.Name)).In()

	for _, fn := range m.Functions {
		e.Line("if err := m.AddFunction(tok, &abi.MethodDef{").In()
		g.methodDefFields(fn)
		e.Out().Line("}); err != nil {").In()
		e.Line("return err")
		e.Out().Line("}")
	}
	for _, cls := range m.Classes {
		ident := descriptorIdent(cls)
		if cls.Constructor != nil {
			e.Linef("%s.New = wrap%s(rt)", ident, cls.Constructor.GoName)
		}
		if len(cls.Methods) > 0 {
			e.Linef("%s.Methods = %sMethods(rt)", ident, ident)
		}
		e.Linef("if err := m.AddClass(tok, %s); err != nil {", ident).In()
		e.Line("return err")
		e.Out().Line("}")
	}
	if m.GoName != "" {
		e.Linef("return %s(tok, m)", m.GoName)
	} else {
		e.Line("return nil")
	}

	e.Out().Line("})")
	e.Out().Line("}")
}

func descriptorIdent(cls *meta.ClassSpec) string {
	return lowerFirst(cls.GoName) + "Type"
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

func title(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// sanitize maps a guest module name to a Go identifier fragment.
func sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
