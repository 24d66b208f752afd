package gen

import (
	"go.uber.org/zap"

	"github.com/veldtlabs/dynbind/errors"
	"github.com/veldtlabs/dynbind/meta"
)

// header goes at the top of every generated file.
const header = "// Code generated by dynbind. DO NOT EDIT."

// Options configures one generation run.
type Options struct {
	// Package is the package name of the emitted file. It must match the
	// package holding the annotated declarations.
	Package string
}

// File renders the generated source for every module in result.
func File(result *meta.Result, opts Options) ([]byte, error) {
	if opts.Package == "" {
		return nil, errors.InvalidInput(errors.PhaseGen, "target package name is required")
	}

	g := &generator{e: NewEmitter()}
	g.e.Line(header).Blank()
	g.e.Linef("package %s", opts.Package).Blank()
	g.e.Line("import (").In()
	g.e.Linef("%q", "github.com/veldtlabs/dynbind/abi")
	g.e.Linef("%q", "github.com/veldtlabs/dynbind/guest")
	g.e.Out().Line(")")

	for _, m := range result.Modules {
		if err := g.module(m); err != nil {
			return nil, err
		}
	}
	Logger().Debug("generation complete",
		zap.String("package", opts.Package),
		zap.Int("modules", len(result.Modules)),
		zap.Int("bytes", g.e.Len()))
	return g.e.Bytes(), nil
}

type generator struct {
	e *Emitter
}

func (g *generator) module(m *meta.ModuleSpec) error {
	for _, fn := range m.Functions {
		if err := g.wrapper(fn); err != nil {
			return err
		}
	}
	for _, cls := range m.Classes {
		if cls.Constructor != nil {
			if err := g.wrapper(cls.Constructor); err != nil {
				return err
			}
		}
		for _, fn := range cls.Methods {
			if err := g.wrapper(fn); err != nil {
				return err
			}
		}
		g.classDescriptor(cls)
	}
	g.initializers(m)
	return nil
}
