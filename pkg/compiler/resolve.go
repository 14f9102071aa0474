package compiler

import (
	"path/filepath"

	"github.com/cplus-project/cplus-origin-sub000/pkg/ast"
	"github.com/cplus-project/cplus-origin-sub000/pkg/lexer"
	"github.com/cplus-project/cplus-origin-sub000/pkg/symtab"
	"github.com/cplus-project/cplus-origin-sub000/pkg/unit"
)

// resolver fills the symbol table of one unit and checks every name
// reference against it, the unit's imports and the builtins.
type resolver struct {
	s     *Scheduler
	job   *job
	table *symtab.Table
	file  string
}

func newResolver(s *Scheduler, j *job) *resolver {
	return &resolver{s: s, job: j, table: symtab.New(j.unit.ID())}
}

// resolveUnit declares the top-level names of every file first, so that
// declarations may be used before they appear, and then walks the bodies.
func (r *resolver) resolveUnit(files []*ast.File) *symtab.Table {
	for _, f := range files {
		r.file = f.Path
		r.module(f.Module)
		for _, st := range f.Stmts {
			r.declareTop(st)
			if r.s.aborted {
				return r.table
			}
		}
	}
	for _, f := range files {
		r.file = f.Path
		for _, st := range f.Stmts {
			r.topStmt(st)
			if r.s.aborted {
				return r.table
			}
		}
	}
	return r.table
}

// module checks a file's module declaration against the unit holding the
// file. The first matching declaration defines the module name.
func (r *resolver) module(m *ast.Module) {
	if m == nil {
		return
	}
	u := r.job.unit
	if u.Kind != unit.Module && u.Kind != unit.Program {
		r.s.errorf(r.file, m.Pos, "module %s declared outside a module directory", m.Name)
		return
	}
	if m.Name != u.Name {
		r.s.errorf(r.file, m.Pos, "module %s does not match directory %s", m.Name, filepath.Base(u.Path))
		return
	}
	if sym, ok := r.table.LookupGlobal(m.Name); ok && sym.Kind == symtab.Module {
		return
	}
	r.define(&ast.Ident{Pos: m.Pos, Name: m.Name}, symtab.Module, "")
}

func (r *resolver) declareTop(st ast.Stmt) {
	switch st := st.(type) {
	case *ast.VarDecl:
		r.define(st.Name, symtab.Var, st.Type.Name)
	case *ast.FuncDecl:
		typ := ""
		if st.Result != nil {
			typ = st.Result.Name
		}
		r.define(st.Name, symtab.Func, typ)
	case *ast.TypeDecl:
		r.define(st.Name, symtab.Type, st.Type.Name)
	}
}

func (r *resolver) define(name *ast.Ident, kind symtab.Kind, typ string) {
	sym := symtab.Symbol{Name: name.Name, Kind: kind, Type: typ, Line: name.Pos.Line, Col: name.Pos.Col}
	if err := r.table.Define(sym); err != nil {
		r.s.errorf(r.file, name.Pos, "%v", err)
	}
}

// topStmt walks a top-level statement whose name, if any, is already
// declared.
func (r *resolver) topStmt(st ast.Stmt) {
	switch st := st.(type) {
	case *ast.VarDecl:
		r.typeRef(st.Type)
		r.expr(st.Value)
	case *ast.TypeDecl:
		r.typeRef(st.Type)
	case *ast.FuncDecl:
		r.funcDecl(st)
	default:
		r.stmt(st)
	}
}

func (r *resolver) funcDecl(fn *ast.FuncDecl) {
	if fn.Result != nil {
		r.typeRef(*fn.Result)
	}
	r.table.Push()
	defer r.table.Pop()
	for _, p := range fn.Params {
		r.typeRef(p.Type)
		r.define(p.Name, symtab.Param, p.Type.Name)
	}
	if fn.Body != nil {
		r.stmts(fn.Body.Stmts)
	}
}

func (r *resolver) stmts(list []ast.Stmt) {
	for _, st := range list {
		r.stmt(st)
		if r.s.aborted {
			return
		}
	}
}

func (r *resolver) block(b *ast.Block) {
	if b == nil {
		return
	}
	r.table.Push()
	r.stmts(b.Stmts)
	r.table.Pop()
}

func (r *resolver) stmt(st ast.Stmt) {
	switch st := st.(type) {
	case nil:
	case *ast.VarDecl:
		r.typeRef(st.Type)
		// The initializer cannot see the name it initializes.
		r.expr(st.Value)
		r.define(st.Name, symtab.Var, st.Type.Name)
	case *ast.TypeDecl:
		r.typeRef(st.Type)
		r.define(st.Name, symtab.Type, st.Type.Name)
	case *ast.FuncDecl:
		r.s.errorf(r.file, st.Pos, "function %s declared inside a block", st.Name.Name)
	case *ast.Block:
		r.block(st)
	case *ast.If:
		r.expr(st.Cond)
		r.block(st.Then)
		r.stmt(st.Else)
	case *ast.While:
		r.expr(st.Cond)
		r.block(st.Body)
	case *ast.For:
		r.table.Push()
		r.stmt(st.Init)
		r.expr(st.Cond)
		r.stmt(st.Post)
		r.block(st.Body)
		r.table.Pop()
	case *ast.Return:
		r.expr(st.Value)
	case *ast.Branch:
	case *ast.Assign:
		r.expr(st.Target)
		r.expr(st.Value)
	case *ast.ExprStmt:
		r.expr(st.X)
	}
}

func (r *resolver) expr(x ast.Expr) {
	switch x := x.(type) {
	case nil:
	case *ast.Ident:
		r.resolveName(x.Name, x.Pos, false)
	case *ast.Literal:
	case *ast.Index:
		r.expr(x.X)
		r.expr(x.Index)
	case *ast.Call:
		r.resolveName(x.Fn.Name, x.Fn.Pos, false)
		for _, a := range x.Args {
			r.expr(a)
		}
	case *ast.Unary:
		r.expr(x.X)
	case *ast.Binary:
		r.expr(x.X)
		// The right side of a selector names a member, not a symbol.
		if x.Op != lexer.Dot {
			r.expr(x.Y)
		}
	}
}

func (r *resolver) typeRef(t ast.TypeRef) {
	if t.Builtin || t.Name == "" {
		return
	}
	r.resolveName(t.Name, t.Pos, true)
}

// lookup searches the scope chain, the unit table, the tables of compiled
// imports and the builtins, in that order.
func (r *resolver) lookup(name string) (symtab.Symbol, bool) {
	if sym, ok := r.table.Lookup(name); ok {
		return sym, true
	}
	for _, dep := range r.job.deps {
		e, ok := r.s.cache.Lookup(dep.id)
		if !ok || !e.Resolved() {
			continue
		}
		if sym, ok := e.Table.LookupGlobal(name); ok {
			return sym, true
		}
	}
	return r.s.universe.Lookup(name)
}

// resolveName checks one reference. A missing name is deferred while the
// unit waits on a cyclic import and reported otherwise.
func (r *resolver) resolveName(name string, pos ast.Pos, wantType bool) {
	sym, ok := r.lookup(name)
	if ok {
		if wantType && sym.Kind != symtab.Type {
			r.s.errorf(r.file, pos, "%s is not a type", name)
		}
		return
	}
	id := r.job.unit.ID()
	if r.s.delay.Blocked(id) {
		r.s.log.Printf("defer %s in %s until its cyclic imports compile", name, id)
		r.s.delay.Defer(Deferred{Name: name, Unit: id, File: r.file, Pos: pos, WantType: wantType})
		return
	}
	r.s.errorf(r.file, pos, "undefined: %s", name)
}
