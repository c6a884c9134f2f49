package resolver

import (
	"fmt"
	"strings"

	"github.com/nest-os/nest/symbols"
	"github.com/pkg/errors"
	"github.com/yuin/gopher-lua/ast"
)

// ErrNotDefined is returned from Lookup when the script has no top-level
// function with the requested name.
var ErrNotDefined = errors.New("not defined")

// newlines normalizes line endings the way the Lua scanner counts them.
var newlines = strings.NewReplacer("\r\n", "\n", "\n\r", "\n", "\r", "\n")

// A Function is a top-level function definition.
type Function struct {
	Name     string
	Source   string // Full source text of the definition statement.
	Line     int    // First line of the definition.
	LastLine int    // Last line of the definition.

	// exprLine and exprLastLine are the lines of the function expression,
	// which compiled functions report as LineDefined and LastLineDefined.
	exprLine     int
	exprLastLine int
}

// An Import is a top-level require binding. A statement binding several
// names yields one import per name.
type Import struct {
	Names  []string // Name bound by the import.
	Module string   // Module name passed to require.
	Symbol string   // Field taken from the module, empty for whole-module imports.
	Source string   // Statement binding only this name.
	Line   int
}

// A Script is a parsed configuration script.
type Script struct {
	// Name is the chunk name of the script, usually the file name.
	Name string

	lines     []string
	functions map[string]*Function
	order     []string
	imports   []Import
}

// Load parses a script and indexes its top-level functions and imports.
//
// If the script does not parse, a *symbols.ParseError is returned.
func Load(name string, src []byte) (*Script, error) {
	text := newlines.Replace(string(src))
	chunk, err := symbols.Parse(name, text)
	if err != nil {
		return nil, err
	}
	toks, err := scan(name, text)
	if err != nil {
		return nil, &symbols.ParseError{Name: name, Message: err.Error()}
	}

	s := &Script{
		Name:      name,
		lines:     strings.Split(text, "\n"),
		functions: make(map[string]*Function),
	}

	cursor := 0
	for _, stmt := range chunk {
		if name, fn := functionDef(stmt); fn != nil {
			sp, ok := toks.find(cursor, stmt, name)
			if ok {
				cursor = sp.next
			}
			s.addFunction(name, stmt, fn, sp, ok)
			continue
		}
		for _, imp := range importDefs(stmt) {
			imp.Line = stmt.Line()
			s.imports = append(s.imports, imp)
		}
	}

	return s, nil
}

// Functions returns the names of all top-level functions in definition
// order.
func (s *Script) Functions() []string {
	return append([]string(nil), s.order...)
}

// Imports returns all top-level imports in source order.
func (s *Script) Imports() []Import {
	return append([]Import(nil), s.imports...)
}

// Lookup returns the definition of a top-level function. ErrNotDefined is
// returned if no such function exists.
func (s *Script) Lookup(name string) (*Function, error) {
	fn, ok := s.functions[name]
	if !ok {
		return nil, ErrNotDefined
	}
	return fn, nil
}

// FunctionsAt returns the names of the top-level functions whose function
// expression spans the lines first to last, in definition order. The lines
// match the LineDefined and LastLineDefined values of a compiled function.
// More than one name is returned when several functions share these lines.
func (s *Script) FunctionsAt(first, last int) []string {
	var names []string
	for _, name := range s.order {
		fn := s.functions[name]
		if fn.exprLine == first && fn.exprLastLine == last {
			names = append(names, name)
		}
	}
	return names
}

// bound reports whether name is bound by a top-level import.
func (s *Script) bound(name string) bool {
	for _, imp := range s.imports {
		for _, n := range imp.Names {
			if n == name {
				return true
			}
		}
	}
	return false
}

func (s *Script) addFunction(name string, stmt ast.Stmt, fn *ast.FunctionExpr, sp span, exact bool) {
	f := &Function{
		Name:         name,
		Line:         stmt.Line(),
		LastLine:     stmt.LastLine(),
		exprLine:     fn.Line(),
		exprLastLine: fn.LastLine(),
	}
	if fn.LastLine() > f.LastLine {
		f.LastLine = fn.LastLine()
	}
	if exact {
		f.Source = s.slice(sp)
		f.LastLine = sp.end.line
	} else {
		f.Source = s.text(f.Line, f.LastLine)
	}

	if _, exists := s.functions[name]; !exists {
		s.order = append(s.order, name)
	}
	// A redefinition replaces the previous definition, like it does when
	// the script runs.
	s.functions[name] = f
}

// slice returns the source text covered by sp.
func (s *Script) slice(sp span) string {
	if sp.start.line == sp.end.line {
		return s.lines[sp.start.line-1][sp.start.col:sp.end.col]
	}
	parts := []string{s.lines[sp.start.line-1][sp.start.col:]}
	parts = append(parts, s.lines[sp.start.line:sp.end.line-1]...)
	parts = append(parts, s.lines[sp.end.line-1][:sp.end.col])
	return strings.Join(parts, "\n")
}

// text returns the source lines from first to last, inclusive.
func (s *Script) text(first, last int) string {
	if last < first {
		last = first
	}
	if first < 1 {
		first = 1
	}
	if last > len(s.lines) {
		last = len(s.lines)
	}
	return strings.TrimRight(strings.Join(s.lines[first-1:last], "\n"), " \t")
}

// functionDef returns the name and function expression if stmt defines a
// top-level function by name.
func functionDef(stmt ast.Stmt) (string, *ast.FunctionExpr) {
	switch s := stmt.(type) {
	case *ast.FuncDefStmt:
		if s.Name == nil || s.Name.Receiver != nil {
			return "", nil
		}
		if id, ok := s.Name.Func.(*ast.IdentExpr); ok {
			return id.Value, s.Func
		}
	case *ast.LocalAssignStmt:
		if len(s.Names) == 1 && len(s.Exprs) == 1 {
			if fn, ok := s.Exprs[0].(*ast.FunctionExpr); ok {
				return s.Names[0], fn
			}
		}
	case *ast.AssignStmt:
		if len(s.Lhs) == 1 && len(s.Rhs) == 1 {
			id, ok := s.Lhs[0].(*ast.IdentExpr)
			fn, isFn := s.Rhs[0].(*ast.FunctionExpr)
			if ok && isFn {
				return id.Value, fn
			}
		}
	}
	return "", nil
}

// importDefs returns one import per name if every value assigned by stmt is
// a require call, or a field of one. Names without a value are skipped.
func importDefs(stmt ast.Stmt) []Import {
	var names []string
	var exprs []ast.Expr
	local := false
	switch s := stmt.(type) {
	case *ast.LocalAssignStmt:
		names, exprs, local = s.Names, s.Exprs, true
	case *ast.AssignStmt:
		for _, lhs := range s.Lhs {
			id, ok := lhs.(*ast.IdentExpr)
			if !ok {
				return nil
			}
			names = append(names, id.Value)
		}
		exprs = s.Rhs
	default:
		return nil
	}
	if len(exprs) == 0 {
		return nil
	}

	imps := make([]Import, 0, len(exprs))
	for i, e := range exprs {
		module, symbol, ok := requireExpr(e)
		if !ok {
			return nil
		}
		if i >= len(names) {
			continue
		}
		imps = append(imps, Import{
			Names:  []string{names[i]},
			Module: module,
			Symbol: symbol,
			Source: importSource(local, names[i], module, symbol),
		})
	}
	return imps
}

// importSource renders the statement binding name to the module or one of
// its fields.
func importSource(local bool, name, module, symbol string) string {
	var b strings.Builder
	if local {
		b.WriteString("local ")
	}
	b.WriteString(name)
	b.WriteString(" = require(")
	b.WriteString(quote(module))
	b.WriteString(")")
	switch {
	case symbol == "":
	case luaName(symbol):
		b.WriteString(".")
		b.WriteString(symbol)
	default:
		b.WriteString("[")
		b.WriteString(quote(symbol))
		b.WriteString("]")
	}
	return b.String()
}

// requireExpr matches require("m") and require("m").sym.
func requireExpr(expr ast.Expr) (module, symbol string, ok bool) {
	if attr, isAttr := expr.(*ast.AttrGetExpr); isAttr {
		key, isStr := attr.Key.(*ast.StringExpr)
		if !isStr {
			return "", "", false
		}
		module, ok = requireCall(attr.Object)
		return module, key.Value, ok
	}
	module, ok = requireCall(expr)
	return module, "", ok
}

func requireCall(expr ast.Expr) (string, bool) {
	call, isCall := expr.(*ast.FuncCallExpr)
	if !isCall || call.Receiver != nil || len(call.Args) != 1 {
		return "", false
	}
	fn, isIdent := call.Func.(*ast.IdentExpr)
	if !isIdent || fn.Value != "require" {
		return "", false
	}
	arg, isStr := call.Args[0].(*ast.StringExpr)
	if !isStr {
		return "", false
	}
	return arg.Value, true
}

var keywords = map[string]bool{
	"and": true, "break": true, "do": true, "else": true, "elseif": true,
	"end": true, "false": true, "for": true, "function": true, "goto": true,
	"if": true, "in": true, "local": true, "nil": true, "not": true,
	"or": true, "repeat": true, "return": true, "then": true, "true": true,
	"until": true, "while": true,
}

// luaName reports whether s can be used as a Lua name.
func luaName(s string) bool {
	if s == "" || keywords[s] {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_', 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case i > 0 && '0' <= c && c <= '9':
		default:
			return false
		}
	}
	return true
}

// quote returns s as a double-quoted Lua string literal.
func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '"' || c == '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c < 0x20 || c == 0x7f:
			fmt.Fprintf(&b, "\\%03d", c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}
