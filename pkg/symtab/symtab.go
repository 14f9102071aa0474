// Package symtab holds the per-unit symbol tables filled by the resolver.
package symtab

import (
	"fmt"
	"strings"

	"github.com/cplus-project/cplus-origin-sub000/pkg/ordmap"
)

type Kind int

const (
	Var Kind = iota
	Func
	Param
	Type
	Module
)

var kindNames = [...]string{
	Var:    "var",
	Func:   "func",
	Param:  "param",
	Type:   "type",
	Module: "module",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Symbol is one declared name. Type is the declared type name, empty for
// untyped symbols such as modules or functions without a result.
type Symbol struct {
	Name string
	Kind Kind
	Type string
	Line int
	Col  int
	Unit string
}

// RedefinitionError reports a name declared twice in the same scope.
type RedefinitionError struct {
	Sym  Symbol
	Prev Symbol
}

func (e *RedefinitionError) Error() string {
	if e.Prev.Line == 0 {
		return fmt.Sprintf("%s redeclared; previously declared as builtin %s", e.Sym.Name, e.Prev.Kind)
	}
	return fmt.Sprintf("%s redeclared; previous declaration at %d:%d", e.Sym.Name, e.Prev.Line, e.Prev.Col)
}

// Table maps names to symbols for one compilation unit. Globals are the
// unit-level declarations visible to importers; locals is the stack of
// nested block scopes active while a function body is walked.
type Table struct {
	unit    string
	globals *ordmap.Map[Symbol]
	locals  []*ordmap.Map[Symbol]
}

func New(unit string) *Table {
	return &Table{
		unit:    unit,
		globals: ordmap.New[Symbol](),
	}
}

// Unit returns the identity of the unit the table belongs to.
func (t *Table) Unit() string { return t.unit }

// Push opens a nested scope.
func (t *Table) Push() {
	t.locals = append(t.locals, ordmap.New[Symbol]())
}

// Pop closes the innermost scope. Popping with no open scope is a no-op.
func (t *Table) Pop() {
	if len(t.locals) > 0 {
		t.locals[len(t.locals)-1].Clear()
		t.locals = t.locals[:len(t.locals)-1]
	}
}

// Depth returns the number of open local scopes.
func (t *Table) Depth() int { return len(t.locals) }

func (t *Table) current() *ordmap.Map[Symbol] {
	if len(t.locals) > 0 {
		return t.locals[len(t.locals)-1]
	}
	return t.globals
}

// Define adds sym to the innermost scope. A name already defined in that
// scope yields a *RedefinitionError and leaves the table unchanged.
func (t *Table) Define(sym Symbol) error {
	if sym.Unit == "" {
		sym.Unit = t.unit
	}
	scope := t.current()
	if prev, ok := scope.Lookup(sym.Name); ok {
		return &RedefinitionError{Sym: sym, Prev: prev}
	}
	return scope.Insert(sym.Name, sym)
}

// Lookup searches the local scopes innermost first, then the globals.
func (t *Table) Lookup(name string) (Symbol, bool) {
	for i := len(t.locals) - 1; i >= 0; i-- {
		if sym, ok := t.locals[i].Lookup(name); ok {
			return sym, true
		}
	}
	return t.globals.Lookup(name)
}

// LookupGlobal searches only the unit-level scope.
func (t *Table) LookupGlobal(name string) (Symbol, bool) {
	return t.globals.Lookup(name)
}

// Globals returns the unit-level symbols in name order.
func (t *Table) Globals() []Symbol {
	syms := make([]Symbol, 0, t.globals.Len())
	t.globals.Ascend(func(_ string, sym Symbol) bool {
		syms = append(syms, sym)
		return true
	})
	return syms
}

// Len returns the number of unit-level symbols.
func (t *Table) Len() int { return t.globals.Len() }

// Release drops every scope.
func (t *Table) Release() {
	for len(t.locals) > 0 {
		t.Pop()
	}
	t.globals.Clear()
}

// String returns a deterministically ordered dump of the table.
func (t *Table) String() string {
	var sb strings.Builder
	if t.globals.Len() > 0 {
		fmt.Fprintf(&sb, "Globals (%s):\n", t.unit)
		t.globals.Ascend(func(name string, sym Symbol) bool {
			fmt.Fprintf(&sb, "  %-20s  %-6s %-10s %d:%d\n", name, sym.Kind, sym.Type, sym.Line, sym.Col)
			return true
		})
	} else {
		fmt.Fprintf(&sb, "Globals (%s): (empty)\n", t.unit)
	}
	for i, scope := range t.locals {
		fmt.Fprintf(&sb, "  Scope %d:\n", i)
		scope.Ascend(func(name string, sym Symbol) bool {
			fmt.Fprintf(&sb, "    %-20s  %-6s %-10s %d:%d\n", name, sym.Kind, sym.Type, sym.Line, sym.Col)
			return true
		})
	}
	return sb.String()
}

// Builtin type and function names available in every unit.
var (
	BuiltinTypes = []string{"bool", "char", "float", "int", "string", "void"}
	BuiltinFuncs = []string{"len", "print"}
)

// Universe returns a fresh table holding the builtins.
func Universe() *Table {
	u := New("<builtin>")
	for _, name := range BuiltinTypes {
		u.Define(Symbol{Name: name, Kind: Type, Type: name})
	}
	for _, name := range BuiltinFuncs {
		u.Define(Symbol{Name: name, Kind: Func})
	}
	return u
}
