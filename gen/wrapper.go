package gen

import (
	"strconv"
	"strings"

	"github.com/veldtlabs/dynbind/errors"
	"github.com/veldtlabs/dynbind/meta"
)

// wrapper emits the entry point for one bound function or method.
func (g *generator) wrapper(fn *meta.FunctionSpec) error {
	e := g.e
	loc := strconv.Quote(fn.Location())
	owner := fn.Module
	if fn.Class != "" {
		owner = fn.Class
	}

	debugf("emit wrapper for %s", fn.Location())
	e.Blank()
	if fn.Kind == meta.KindConstructor {
		e.Linef("// wrap%s is the generated constructor entry point for %s.", fn.GoName, fn.Class)
	} else {
		e.Linef("// wrap%s is the generated entry point for %s.%s.", fn.GoName, owner, fn.Name)
	}
	e.Linef("func wrap%s(rt abi.Runtime) abi.EntryPoint {", fn.GoName).In()

	if len(fn.Params) > 0 {
		e.Line("params := []guest.Param{").In()
		for _, p := range fn.Params {
			e.Line(paramLiteral(p))
		}
		e.Out().Line("}")
	}

	e.Line("return func(recv, args, kwargs abi.Ref) abi.Ref {").In()
	e.Linef("return guest.Enter(rt, %s, func(tok guest.Token) (abi.Ref, error) {", loc).In()

	if len(fn.Params) > 0 {
		e.Linef("bound, err := guest.BindArgs(tok, %s, params, args, kwargs)", loc)
	} else {
		e.Linef("_, err := guest.BindArgs(tok, %s, nil, args, kwargs)", loc)
	}
	e.Line("if err != nil {").In().Line("return abi.Null, err").Out().Line("}")

	callArgs := make([]string, 0, len(fn.Params)+2)
	if fn.TakesToken {
		callArgs = append(callArgs, "tok")
	}
	if fn.Kind == meta.KindMethod || fn.Kind == meta.KindClassMethod {
		e.Line("self := guest.ArgObject(tok, recv)")
		callArgs = append(callArgs, "self")
	}

	for i, p := range fn.Params {
		name := "a" + strconv.Itoa(i)
		if err := g.convertParam(fn, i, p, name, loc); err != nil {
			return err
		}
		callArgs = append(callArgs, name)
	}

	call := fn.GoName + "(" + strings.Join(callArgs, ", ") + ")"
	ret := fn.Return
	hasValue := ret.Guest != meta.GuestNone

	switch {
	case hasValue && ret.HasError:
		e.Linef("out, err := %s", call)
		e.Line("if err != nil {").In().Line("return abi.Null, err").Out().Line("}")
	case hasValue:
		e.Linef("out := %s", call)
	case ret.HasError:
		e.Linef("if err := %s; err != nil {", call).In().Line("return abi.Null, err").Out().Line("}")
	default:
		e.Line(call)
	}

	if hasValue {
		conv, err := resultExpr(fn, ret)
		if err != nil {
			return err
		}
		e.Linef("return %s, nil", conv)
	} else {
		e.Line("return guest.FromNone(tok), nil")
	}

	e.Out().Line("})")
	e.Out().Line("}")
	e.Out().Line("}")
	return nil
}

// convertParam emits the conversion from bound[i] to the declared Go type.
func (g *generator) convertParam(fn *meta.FunctionSpec, i int, p meta.ParameterSpec, name, loc string) error {
	e := g.e
	slot := "bound[" + strconv.Itoa(i) + "]"

	if p.Guest == meta.GuestObject {
		e.Linef("%s := guest.ArgObject(tok, %s)", name, slot)
		return nil
	}

	converter, native, err := converterFor(fn, p)
	if err != nil {
		return err
	}
	base := strings.TrimPrefix(p.GoType, "*")

	if !p.Optional {
		if base == native {
			e.Linef("%s, err := guest.%s(tok, %s, %q, %s)", name, converter, loc, p.Name, slot)
			e.Line("if err != nil {").In().Line("return abi.Null, err").Out().Line("}")
		} else {
			raw := name + "v"
			e.Linef("%s, err := guest.%s(tok, %s, %q, %s)", raw, converter, loc, p.Name, slot)
			e.Line("if err != nil {").In().Line("return abi.Null, err").Out().Line("}")
			e.Linef("%s := %s(%s)", name, base, raw)
		}
		return nil
	}

	e.Linef("var %s %s", name, p.GoType)
	e.Linef("if !%s.IsNull() {", slot).In()
	raw := name + "v"
	e.Linef("%s, err := guest.%s(tok, %s, %q, %s)", raw, converter, loc, p.Name, slot)
	e.Line("if err != nil {").In().Line("return abi.Null, err").Out().Line("}")
	if base != native {
		cast := name + "c"
		e.Linef("%s := %s(%s)", cast, base, raw)
		e.Linef("%s = &%s", name, cast)
	} else {
		e.Linef("%s = &%s", name, raw)
	}
	e.Out().Line("}")
	return nil
}

func converterFor(fn *meta.FunctionSpec, p meta.ParameterSpec) (converter, native string, err error) {
	switch p.Guest {
	case meta.GuestInt:
		return "ArgInt64", "int64", nil
	case meta.GuestFloat:
		return "ArgFloat64", "float64", nil
	case meta.GuestBool:
		return "ArgBool", "bool", nil
	case meta.GuestString:
		return "ArgString", "string", nil
	}
	return "", "", errors.New(errors.PhaseGen, errors.KindUnsupported).
		Path(fn.GoName, p.Name).
		GoType(p.GoType).
		Detail("no converter for parameter type").
		Build()
}

func resultExpr(fn *meta.FunctionSpec, ret meta.ReturnSpec) (string, error) {
	switch ret.Guest {
	case meta.GuestInt:
		if ret.GoType != "int64" {
			return "guest.FromInt64(tok, int64(out))", nil
		}
		return "guest.FromInt64(tok, out)", nil
	case meta.GuestFloat:
		return "guest.FromFloat64(tok, out)", nil
	case meta.GuestBool:
		return "guest.FromBool(tok, out)", nil
	case meta.GuestString:
		return "guest.FromString(tok, out)", nil
	case meta.GuestObject:
		return "out.IntoRef(tok)", nil
	}
	return "", errors.New(errors.PhaseGen, errors.KindUnsupported).
		Path(fn.GoName).
		GoType(ret.GoType).
		Detail("no converter for result type").
		Build()
}

func paramLiteral(p meta.ParameterSpec) string {
	fields := []string{"Name: " + strconv.Quote(p.Name)}
	if p.Optional {
		fields = append(fields, "Optional: true")
	}
	if p.KeywordOnly {
		fields = append(fields, "KeywordOnly: true")
	}
	return "{" + strings.Join(fields, ", ") + "},"
}
