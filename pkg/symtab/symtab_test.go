package symtab

import (
	"errors"
	"strings"
	"testing"
)

func TestTable(t *testing.T) {
	t.Run("GlobalDefinition", func(t *testing.T) {
		tab := New("/src/main.cp")
		if err := tab.Define(Symbol{Name: "g2", Kind: Var, Type: "int", Line: 2, Col: 1}); err != nil {
			t.Fatal(err)
		}
		if err := tab.Define(Symbol{Name: "g1", Kind: Func, Line: 1, Col: 1}); err != nil {
			t.Fatal(err)
		}
		sym, ok := tab.Lookup("g2")
		if !ok {
			t.Fatal("g2 not found")
		}
		if sym.Unit != "/src/main.cp" {
			t.Errorf("g2 unit: expected '/src/main.cp', got '%s'", sym.Unit)
		}
		globals := tab.Globals()
		if len(globals) != 2 || globals[0].Name != "g1" || globals[1].Name != "g2" {
			t.Errorf("Globals out of order: %+v", globals)
		}
	})

	t.Run("Redefinition", func(t *testing.T) {
		tab := New("u")
		tab.Define(Symbol{Name: "x", Kind: Var, Line: 3, Col: 5})
		err := tab.Define(Symbol{Name: "x", Kind: Func, Line: 9, Col: 1})
		var redef *RedefinitionError
		if !errors.As(err, &redef) {
			t.Fatalf("expected *RedefinitionError, got %v", err)
		}
		if !strings.Contains(err.Error(), "previous declaration at 3:5") {
			t.Errorf("message does not name previous position: %q", err)
		}
		if sym, _ := tab.Lookup("x"); sym.Kind != Var {
			t.Errorf("redefinition replaced the original symbol")
		}
	})

	t.Run("NestedScopes", func(t *testing.T) {
		tab := New("u")
		tab.Define(Symbol{Name: "a", Kind: Var, Type: "int"})
		tab.Push()
		if err := tab.Define(Symbol{Name: "a", Kind: Param, Type: "float"}); err != nil {
			t.Fatalf("shadowing in an inner scope: %v", err)
		}
		tab.Push()
		tab.Define(Symbol{Name: "b", Kind: Var})
		if sym, _ := tab.Lookup("a"); sym.Kind != Param {
			t.Errorf("inner lookup of a: expected param, got %s", sym.Kind)
		}
		if tab.Depth() != 2 {
			t.Errorf("depth: expected 2, got %d", tab.Depth())
		}
		tab.Pop()
		if _, ok := tab.Lookup("b"); ok {
			t.Error("b visible after its scope was popped")
		}
		tab.Pop()
		tab.Pop()
		if sym, _ := tab.Lookup("a"); sym.Kind != Var {
			t.Errorf("outer lookup of a: expected var, got %s", sym.Kind)
		}
		if _, ok := tab.LookupGlobal("b"); ok {
			t.Error("local leaked into globals")
		}
	})

	t.Run("Release", func(t *testing.T) {
		tab := New("u")
		tab.Define(Symbol{Name: "a"})
		tab.Push()
		tab.Release()
		if tab.Len() != 0 || tab.Depth() != 0 {
			t.Errorf("table not empty after Release: len %d depth %d", tab.Len(), tab.Depth())
		}
	})
}

func TestUniverse(t *testing.T) {
	u := Universe()
	for _, name := range BuiltinTypes {
		if sym, ok := u.Lookup(name); !ok || sym.Kind != Type {
			t.Errorf("builtin type %s missing", name)
		}
	}
	if sym, ok := u.Lookup("print"); !ok || sym.Kind != Func {
		t.Error("builtin print missing")
	}
	err := u.Define(Symbol{Name: "len", Kind: Var, Line: 1, Col: 1})
	if err == nil || !strings.Contains(err.Error(), "builtin func") {
		t.Errorf("redefining a builtin: %v", err)
	}
}

func TestTableString(t *testing.T) {
	tab := New("m")
	tab.Define(Symbol{Name: "z", Kind: Var, Type: "int", Line: 2, Col: 1})
	tab.Define(Symbol{Name: "a", Kind: Type, Type: "int", Line: 1, Col: 1})
	out := tab.String()
	if strings.Index(out, "a ") > strings.Index(out, "z ") {
		t.Errorf("dump not ordered:\n%s", out)
	}
	if !strings.HasPrefix(out, "Globals (m):") {
		t.Errorf("unexpected header:\n%s", out)
	}
	if got := New("e").String(); !strings.Contains(got, "(empty)") {
		t.Errorf("empty dump = %q", got)
	}
}
