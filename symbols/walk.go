package symbols

import "github.com/yuin/gopher-lua/ast"

// walker collects references while tracking which names are bound by local
// declarations, parameters and loop variables.
type walker struct {
	refs   Refs
	seen   [3]map[string]bool
	scopes []map[string]bool
}

func newWalker() *walker {
	w := &walker{}
	for i := range w.seen {
		w.seen[i] = make(map[string]bool)
	}
	w.push()
	return w
}

func (w *walker) push() { w.scopes = append(w.scopes, make(map[string]bool)) }

func (w *walker) pop() { w.scopes = w.scopes[:len(w.scopes)-1] }

func (w *walker) bind(names ...string) {
	for _, n := range names {
		w.scopes[len(w.scopes)-1][n] = true
	}
}

func (w *walker) bound(name string) bool {
	for i := len(w.scopes) - 1; i >= 0; i-- {
		if w.scopes[i][name] {
			return true
		}
	}
	return false
}

const (
	called = iota
	qualifier
	referenced
)

func (w *walker) add(kind int, name string) {
	if w.bound(name) || w.seen[kind][name] {
		return
	}
	w.seen[kind][name] = true
	switch kind {
	case called:
		w.refs.Called = append(w.refs.Called, name)
	case qualifier:
		w.refs.Qualifiers = append(w.refs.Qualifiers, name)
	case referenced:
		w.refs.Referenced = append(w.refs.Referenced, name)
	}
}

// block walks statements in a new scope.
func (w *walker) block(stmts []ast.Stmt) {
	w.push()
	w.stmts(stmts)
	w.pop()
}

func (w *walker) stmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		w.stmt(s)
	}
}

func (w *walker) stmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.AssignStmt:
		w.exprs(s.Lhs)
		w.exprs(s.Rhs)
	case *ast.LocalAssignStmt:
		if len(s.Names) == 1 && len(s.Exprs) == 1 {
			if fn, ok := s.Exprs[0].(*ast.FunctionExpr); ok {
				// local function f() end: f is visible in its own body.
				w.bind(s.Names[0])
				w.function(fn, false)
				return
			}
		}
		w.exprs(s.Exprs)
		w.bind(s.Names...)
	case *ast.FuncCallStmt:
		w.expr(s.Expr)
	case *ast.DoBlockStmt:
		w.block(s.Stmts)
	case *ast.WhileStmt:
		w.expr(s.Condition)
		w.block(s.Stmts)
	case *ast.RepeatStmt:
		// The condition can see locals declared in the body.
		w.push()
		w.stmts(s.Stmts)
		w.expr(s.Condition)
		w.pop()
	case *ast.IfStmt:
		w.expr(s.Condition)
		w.block(s.Then)
		w.block(s.Else)
	case *ast.NumberForStmt:
		w.expr(s.Init)
		w.expr(s.Limit)
		w.expr(s.Step)
		w.push()
		w.bind(s.Name)
		w.stmts(s.Stmts)
		w.pop()
	case *ast.GenericForStmt:
		w.exprs(s.Exprs)
		w.push()
		w.bind(s.Names...)
		w.stmts(s.Stmts)
		w.pop()
	case *ast.FuncDefStmt:
		w.funcName(s.Name)
		w.function(s.Func, s.Name.Method != "")
	case *ast.ReturnStmt:
		w.exprs(s.Exprs)
	}
}

// funcName walks the name of a function definition. A plain name is a
// definition, not a reference; the table of a dotted or method name is used
// as a qualifier.
func (w *walker) funcName(name *ast.FuncName) {
	if name == nil {
		return
	}
	if name.Receiver != nil {
		w.object(name.Receiver)
	}
	if attr, ok := name.Func.(*ast.AttrGetExpr); ok {
		w.expr(attr)
	}
}

func (w *walker) function(fn *ast.FunctionExpr, method bool) {
	if fn == nil {
		return
	}
	w.push()
	if method {
		w.bind("self")
	}
	if fn.ParList != nil {
		w.bind(fn.ParList.Names...)
	}
	w.stmts(fn.Stmts)
	w.pop()
}

func (w *walker) exprs(exprs []ast.Expr) {
	for _, e := range exprs {
		w.expr(e)
	}
}

// object walks an expression used on the left of a field access.
func (w *walker) object(expr ast.Expr) {
	if id, ok := expr.(*ast.IdentExpr); ok {
		w.add(qualifier, id.Value)
	}
	w.expr(expr)
}

func (w *walker) expr(expr ast.Expr) {
	switch e := expr.(type) {
	case nil:
	case *ast.IdentExpr:
		w.add(referenced, e.Value)
	case *ast.AttrGetExpr:
		w.object(e.Object)
		w.expr(e.Key)
	case *ast.FuncCallExpr:
		if id, ok := e.Func.(*ast.IdentExpr); ok {
			w.add(called, id.Value)
		}
		w.expr(e.Func)
		if e.Receiver != nil {
			w.object(e.Receiver)
		}
		w.exprs(e.Args)
	case *ast.FunctionExpr:
		w.function(e, false)
	case *ast.TableExpr:
		for _, f := range e.Fields {
			w.expr(f.Key)
			w.expr(f.Value)
		}
	case *ast.LogicalOpExpr:
		w.expr(e.Lhs)
		w.expr(e.Rhs)
	case *ast.RelationalOpExpr:
		w.expr(e.Lhs)
		w.expr(e.Rhs)
	case *ast.StringConcatOpExpr:
		w.expr(e.Lhs)
		w.expr(e.Rhs)
	case *ast.ArithmeticOpExpr:
		w.expr(e.Lhs)
		w.expr(e.Rhs)
	case *ast.UnaryMinusOpExpr:
		w.expr(e.Expr)
	case *ast.UnaryNotOpExpr:
		w.expr(e.Expr)
	case *ast.UnaryLenOpExpr:
		w.expr(e.Expr)
	}
}
