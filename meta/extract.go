package meta

import (
	"go/ast"
	"go/parser"
	"go/printer"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/veldtlabs/dynbind/errors"
)

// Result holds every module extracted from one package, sorted by guest
// module name. Members keep their declaration order.
type Result struct {
	// Package is the Go package name of the parsed sources.
	Package string

	Modules []*ModuleSpec
}

// Module returns the module with the given guest name, or nil.
func (r *Result) Module(name string) *ModuleSpec {
	for _, m := range r.Modules {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// ExtractDir parses every non-test Go file in dir and extracts its dynbind
// declarations.
func ExtractDir(dir string) (*Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseExtract, errors.KindInvalidInput, err, "read source directory")
	}

	fset := token.NewFileSet()
	var files []*ast.File
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		file, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, parser.ParseComments)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseExtract, errors.KindInvalidInput, err, "parse "+name)
		}
		files = append(files, file)
	}
	return extractFiles(fset, files)
}

// ExtractSource extracts from a single in-memory file. Used by tests and
// by callers that already hold the source text.
func ExtractSource(filename, src string) (*Result, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseExtract, errors.KindInvalidInput, err, "parse "+filename)
	}
	return extractFiles(fset, []*ast.File{file})
}

type collector struct {
	fset    *token.FileSet
	modules map[string]*ModuleSpec
	classes map[string]*ClassSpec

	// pending methods, attached after every class is known
	methods []*FunctionSpec
}

func extractFiles(fset *token.FileSet, files []*ast.File) (*Result, error) {
	c := &collector{
		fset:    fset,
		modules: map[string]*ModuleSpec{},
		classes: map[string]*ClassSpec{},
	}

	for _, file := range files {
		for _, decl := range file.Decls {
			if err := c.decl(decl); err != nil {
				return nil, err
			}
		}
	}
	if err := c.attachMethods(); err != nil {
		return nil, err
	}

	result := &Result{}
	if len(files) > 0 {
		result.Package = files[0].Name.Name
	}
	for _, m := range c.modules {
		result.Modules = append(result.Modules, m)
	}
	sort.Slice(result.Modules, func(i, j int) bool {
		return result.Modules[i].Name < result.Modules[j].Name
	})
	Logger().Debug("extraction complete",
		zap.String("package", result.Package),
		zap.Int("modules", len(result.Modules)))
	return result, nil
}

func (c *collector) decl(decl ast.Decl) error {
	switch d := decl.(type) {
	case *ast.FuncDecl:
		return c.funcDecl(d)
	case *ast.GenDecl:
		return c.genDecl(d)
	}
	return nil
}

func (c *collector) funcDecl(decl *ast.FuncDecl) error {
	path := []string{decl.Name.Name}
	dir, err := findDirective(path, commentLines(decl.Doc))
	if err != nil {
		return err
	}
	if dir == nil {
		return nil
	}
	if decl.Recv != nil {
		return errors.Unsupported(errors.PhaseExtract, path,
			"dynbind directives go on plain functions, not methods with receivers")
	}

	switch dir.verb {
	case "module":
		return c.moduleDecl(path, dir, decl)
	case "function":
		return c.functionDecl(path, dir, decl)
	case "method":
		return c.methodDecl(path, dir, decl)
	default:
		return errors.Unsupported(errors.PhaseExtract, path,
			"directive "+strconvQuote(dir.verb)+" is not valid on a function")
	}
}

// moduleDecl handles //dynbind:module <name> on the user init function,
// which must have the shape func(guest.Token, *guest.Module) error.
func (c *collector) moduleDecl(path []string, dir *directive, decl *ast.FuncDecl) error {
	if dir.arg == "" {
		return errors.InvalidInput(errors.PhaseExtract,
			"module directive on "+decl.Name.Name+" needs a module name")
	}
	if err := dir.finish(path); err != nil {
		return err
	}
	if !isModuleInitSignature(decl.Type) {
		return errors.Unsupported(errors.PhaseExtract, path,
			"module init must have the shape func(guest.Token, *guest.Module) error")
	}

	existing := c.modules[dir.arg]
	if existing != nil && existing.GoName != "" {
		return errors.Conflict(path, "module "+strconvQuote(dir.arg)+" declared twice")
	}
	m := c.module(dir.arg)
	m.GoName = decl.Name.Name
	m.Doc = docText(decl.Doc)
	m.Pos = c.pos(decl)
	return nil
}

func (c *collector) functionDecl(path []string, dir *directive, decl *ast.FuncDecl) error {
	module, ok := dir.take("module")
	if !ok || module == "" {
		return errors.InvalidInput(errors.PhaseExtract,
			"function directive on "+decl.Name.Name+" needs a module key")
	}
	fn, err := c.classify(path, dir, decl, KindFunction)
	if err != nil {
		return err
	}
	fn.Module = module

	m := c.module(module)
	for _, prev := range m.Functions {
		if prev.Name == fn.Name {
			return errors.Conflict(path,
				"name "+strconvQuote(fn.Name)+" given twice in module "+strconvQuote(module))
		}
	}
	m.Functions = append(m.Functions, fn)
	return nil
}

func (c *collector) methodDecl(path []string, dir *directive, decl *ast.FuncDecl) error {
	class, ok := dir.take("class")
	if !ok || class == "" {
		return errors.InvalidInput(errors.PhaseExtract,
			"method directive on "+decl.Name.Name+" needs a class key")
	}
	kind := KindMethod
	if v, ok := dir.take("kind"); ok {
		switch FuncKind(v) {
		case KindMethod, KindStaticMeth, KindClassMethod, KindConstructor:
			kind = FuncKind(v)
		default:
			return errors.Unsupported(errors.PhaseExtract, path,
				"unknown method kind "+strconvQuote(v))
		}
	}
	fn, err := c.classify(path, dir, decl, kind)
	if err != nil {
		return err
	}
	if kind == KindConstructor && fn.Return.Guest != GuestObject {
		return errors.Unsupported(errors.PhaseExtract, path,
			"constructor must return guest.Handle for the new instance")
	}
	fn.Class = class
	c.methods = append(c.methods, fn)
	return nil
}

func (c *collector) genDecl(decl *ast.GenDecl) error {
	if decl.Tok != token.TYPE {
		return nil
	}
	for _, spec := range decl.Specs {
		ts, ok := spec.(*ast.TypeSpec)
		if !ok {
			continue
		}
		path := []string{ts.Name.Name}

		// the directive sits on the gen decl for single-spec blocks
		doc := ts.Doc
		if doc == nil {
			doc = decl.Doc
		}
		dir, err := findDirective(path, commentLines(doc))
		if err != nil {
			return err
		}
		if dir == nil {
			continue
		}
		if dir.verb != "class" {
			return errors.Unsupported(errors.PhaseExtract, path,
				"directive "+strconvQuote(dir.verb)+" is not valid on a type")
		}
		if err := c.classDecl(path, dir, ts, doc); err != nil {
			return err
		}
	}
	return nil
}

func (c *collector) classDecl(path []string, dir *directive, ts *ast.TypeSpec, doc *ast.CommentGroup) error {
	module, ok := dir.take("module")
	if !ok || module == "" {
		return errors.InvalidInput(errors.PhaseExtract,
			"class directive on "+ts.Name.Name+" needs a module key")
	}
	name, ok := dir.take("name")
	if !ok {
		name = ts.Name.Name
	}
	if err := dir.finish(path); err != nil {
		return err
	}
	if _, dup := c.classes[name]; dup {
		return errors.Conflict(path, "class "+strconvQuote(name)+" declared twice")
	}

	cls := &ClassSpec{
		GoName: ts.Name.Name,
		Name:   name,
		Module: module,
		Doc:    docText(doc),
		Pos:    c.posAt(ts.Pos()),
	}
	c.classes[name] = cls

	m := c.module(module)
	m.Classes = append(m.Classes, cls)
	return nil
}

func (c *collector) attachMethods() error {
	for _, fn := range c.methods {
		cls := c.classes[fn.Class]
		if cls == nil {
			return errors.NotFound(errors.PhaseExtract, "class", fn.Class)
		}
		if fn.Kind == KindConstructor {
			if cls.Constructor != nil {
				return errors.Conflict([]string{fn.GoName},
					"class "+strconvQuote(fn.Class)+" has two constructors")
			}
			cls.Constructor = fn
			continue
		}
		for _, prev := range cls.Methods {
			if prev.Name == fn.Name {
				return errors.Conflict([]string{fn.GoName},
					"name "+strconvQuote(fn.Name)+" given twice in class "+strconvQuote(fn.Class))
			}
		}
		cls.Methods = append(cls.Methods, fn)
	}
	return nil
}

// module returns the record for a guest module name, creating an implicit
// one when no module directive declared it yet.
func (c *collector) module(name string) *ModuleSpec {
	m := c.modules[name]
	if m == nil {
		m = &ModuleSpec{Name: name}
		c.modules[name] = m
	}
	return m
}

// classify turns an annotated function declaration into a FunctionSpec,
// consuming the directive's name and attrs keys.
func (c *collector) classify(path []string, dir *directive, decl *ast.FuncDecl, kind FuncKind) (*FunctionSpec, error) {
	name, ok := dir.take("name")
	if !ok {
		name = snakeCase(decl.Name.Name)
	}
	attrs, _ := dir.take("attrs")
	if err := dir.finish(path); err != nil {
		return nil, err
	}

	fn := &FunctionSpec{
		Kind:   kind,
		GoName: decl.Name.Name,
		Name:   name,
		Doc:    docText(decl.Doc),
		Pos:    c.pos(decl),
	}

	fields := decl.Type.Params.List
	idx := 0
	next := func() (*ast.Ident, ast.Expr, bool) {
		pos := 0
		for _, field := range fields {
			n := len(field.Names)
			if n == 0 {
				n = 1
			}
			if idx < pos+n {
				if len(field.Names) == 0 {
					return nil, field.Type, true
				}
				return field.Names[idx-pos], field.Type, true
			}
			pos += n
		}
		return nil, nil, false
	}

	if ident, typ, ok := next(); ok && isGuestSelector(typ, "Token") {
		_ = ident
		fn.TakesToken = true
		idx++
	}

	// bound methods and classmethods receive the self handle after the token
	if kind == KindMethod || kind == KindClassMethod {
		ident, typ, ok := next()
		if !ok || !isGuestSelector(typ, "Handle") {
			return nil, errors.Unsupported(errors.PhaseExtract, path,
				"bound method needs a guest.Handle parameter for the receiver")
		}
		_ = ident
		idx++
	}

	for {
		ident, typ, ok := next()
		if !ok {
			break
		}
		idx++
		if ident == nil || ident.Name == "_" {
			return nil, errors.Unsupported(errors.PhaseExtract, path,
				"every bound parameter needs a name")
		}
		if isGuestSelector(typ, "Token") {
			return nil, errors.Unsupported(errors.PhaseExtract,
				append(path, ident.Name), "the token parameter must come first")
		}
		param, err := classifyParam(path, ident.Name, typ)
		if err != nil {
			return nil, err
		}
		fn.Params = append(fn.Params, *param)
	}

	ret, err := classifyReturn(path, decl.Type.Results)
	if err != nil {
		return nil, err
	}
	fn.Return = *ret

	kwOnly, err := parseAttrs(path, attrs, fn.Params)
	if err != nil {
		return nil, err
	}
	for i := range fn.Params {
		if kwOnly[fn.Params[i].Name] {
			fn.Params[i].KeywordOnly = true
		}
	}
	debugf("classified %s as %s with %d parameters", fn.GoName, kind, len(fn.Params))
	return fn, nil
}

func classifyParam(path []string, name string, typ ast.Expr) (*ParameterSpec, error) {
	optional := false
	inner := typ
	if star, ok := typ.(*ast.StarExpr); ok {
		optional = true
		inner = star.X
	}

	guest, ok := guestTypeOf(inner)
	if !ok {
		return nil, errors.New(errors.PhaseExtract, errors.KindUnsupported).
			Path(append(path, name)...).
			GoType(exprString(typ)).
			Detail("cannot classify parameter type").
			Build()
	}
	if guest == GuestObject && optional {
		return nil, errors.Unsupported(errors.PhaseExtract, append(path, name),
			"handle parameters cannot be optional")
	}
	return &ParameterSpec{
		Name:     name,
		GoType:   exprString(typ),
		Guest:    guest,
		Optional: optional,
	}, nil
}

func classifyReturn(path []string, results *ast.FieldList) (*ReturnSpec, error) {
	ret := &ReturnSpec{Guest: GuestNone}
	if results == nil || len(results.List) == 0 {
		return ret, nil
	}

	var types []ast.Expr
	for _, field := range results.List {
		n := len(field.Names)
		if n == 0 {
			n = 1
		}
		for i := 0; i < n; i++ {
			types = append(types, field.Type)
		}
	}
	if len(types) > 2 {
		return nil, errors.Unsupported(errors.PhaseExtract, path,
			"at most two results are supported")
	}

	last := types[len(types)-1]
	if ident, ok := last.(*ast.Ident); ok && ident.Name == "error" {
		ret.HasError = true
		types = types[:len(types)-1]
	} else if len(types) == 2 {
		return nil, errors.Unsupported(errors.PhaseExtract, path,
			"the second result must be error")
	}

	if len(types) == 1 {
		guest, ok := guestTypeOf(types[0])
		if !ok {
			return nil, errors.New(errors.PhaseExtract, errors.KindUnsupported).
				Path(path...).
				GoType(exprString(types[0])).
				Detail("cannot classify result type").
				Build()
		}
		ret.GoType = exprString(types[0])
		ret.Guest = guest
	}
	return ret, nil
}

func guestTypeOf(e ast.Expr) (GuestType, bool) {
	switch {
	case isIdent(e, "int64"), isIdent(e, "int"):
		return GuestInt, true
	case isIdent(e, "float64"):
		return GuestFloat, true
	case isIdent(e, "bool"):
		return GuestBool, true
	case isIdent(e, "string"):
		return GuestString, true
	case isGuestSelector(e, "Handle"):
		return GuestObject, true
	}
	return "", false
}

// isModuleInitSignature checks func(guest.Token, *guest.Module) error.
func isModuleInitSignature(ft *ast.FuncType) bool {
	var params []ast.Expr
	for _, field := range ft.Params.List {
		n := len(field.Names)
		if n == 0 {
			n = 1
		}
		for i := 0; i < n; i++ {
			params = append(params, field.Type)
		}
	}
	if len(params) != 2 {
		return false
	}
	if !isGuestSelector(params[0], "Token") {
		return false
	}
	star, ok := params[1].(*ast.StarExpr)
	if !ok || !isGuestSelector(star.X, "Module") {
		return false
	}
	if ft.Results == nil || len(ft.Results.List) != 1 {
		return false
	}
	return isIdent(ft.Results.List[0].Type, "error")
}

func isIdent(e ast.Expr, name string) bool {
	ident, ok := e.(*ast.Ident)
	return ok && ident.Name == name
}

func isGuestSelector(e ast.Expr, name string) bool {
	sel, ok := e.(*ast.SelectorExpr)
	if !ok {
		return false
	}
	return isIdent(sel.X, "guest") && sel.Sel.Name == name
}

func exprString(e ast.Expr) string {
	switch v := e.(type) {
	case *ast.Ident:
		return v.Name
	case *ast.StarExpr:
		return "*" + exprString(v.X)
	case *ast.SelectorExpr:
		return exprString(v.X) + "." + v.Sel.Name
	}
	var b strings.Builder
	printer.Fprint(&b, token.NewFileSet(), e)
	return b.String()
}

func (c *collector) pos(decl *ast.FuncDecl) string {
	return c.posAt(decl.Pos())
}

func (c *collector) posAt(p token.Pos) string {
	return c.fset.Position(p).String()
}

func commentLines(doc *ast.CommentGroup) []string {
	if doc == nil {
		return nil
	}
	lines := make([]string, 0, len(doc.List))
	for _, comment := range doc.List {
		lines = append(lines, comment.Text)
	}
	return lines
}

// docText returns the doc comment with directive lines removed.
func docText(doc *ast.CommentGroup) string {
	if doc == nil {
		return ""
	}
	var kept []string
	for _, comment := range doc.List {
		if strings.HasPrefix(comment.Text, directivePrefix) {
			continue
		}
		text := strings.TrimPrefix(comment.Text, "//")
		kept = append(kept, strings.TrimPrefix(text, " "))
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
