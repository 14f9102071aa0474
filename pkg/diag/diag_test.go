package diag

import (
	"bytes"
	"errors"
	"testing"
)

func TestListCap(t *testing.T) {
	l := NewList(3)
	l.Warnf("a.cp", 1, 1, "unused")
	for i := 0; i < 2; i++ {
		if err := l.Errorf("a.cp", i+2, 1, "bad %d", i); err != nil {
			t.Fatalf("error %d: unexpected %v", i, err)
		}
	}
	if err := l.Errorf("a.cp", 9, 1, "third"); !errors.Is(err, ErrTooManyErrors) {
		t.Fatalf("third error: got %v, want ErrTooManyErrors", err)
	}
	if err := l.Errorf("a.cp", 10, 1, "ignored"); !errors.Is(err, ErrTooManyErrors) {
		t.Fatalf("after cap: got %v", err)
	}

	items := l.Items()
	if len(items) != 5 {
		t.Fatalf("expected 5 diagnostics, got %d: %v", len(items), items)
	}
	last := items[len(items)-1]
	if last.Severity != Fatal || last.Msg != "too many errors" {
		t.Errorf("last diagnostic: %+v", last)
	}
	if !l.Capped() || l.Count(Error) != 3 {
		t.Errorf("capped %v, errors %d", l.Capped(), l.Count(Error))
	}
}

func TestDefaultCap(t *testing.T) {
	l := NewList(0)
	var err error
	n := 0
	for err == nil {
		err = l.Errorf("x.cp", 1, 1, "e")
		n++
	}
	if n != DefaultMaxErrors {
		t.Errorf("cap reached after %d errors, want %d", n, DefaultMaxErrors)
	}
}

func TestFailed(t *testing.T) {
	l := NewList(0)
	if l.Failed() {
		t.Error("empty list failed")
	}
	l.Warnf("", 0, 0, "note")
	if l.Failed() {
		t.Error("warnings alone must not fail the run")
	}
	l.Fatalf("m.cp", 0, 0, "cannot open")
	if !l.Failed() {
		t.Error("fatal did not fail the run")
	}
}

func TestDiagnosticError(t *testing.T) {
	tests := []struct {
		d    Diagnostic
		want string
	}{
		{Diagnostic{Error, "main.cp", 3, 7, "undefined: x"}, "main.cp:3:7: error: undefined: x"},
		{Diagnostic{Fatal, "lib.cp", 0, 0, "file not found"}, "lib.cp: fatal: file not found"},
		{Diagnostic{Warning, "", 0, 0, "self import"}, "warning: self import"},
	}
	for _, tt := range tests {
		if got := tt.d.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestRender(t *testing.T) {
	l := NewList(0)
	l.Errorf("main.cp", 2, 5, "undefined: y")
	l.Fatalf("gone.cp", 0, 0, "file not found")
	src := "int x = 1\nx = y + 1\n"

	var buf bytes.Buffer
	if err := Render(&buf, l, map[string]string{"main.cp": src}); err != nil {
		t.Fatal(err)
	}
	want := "main.cp:2:5: error: undefined: y\n" +
		"   2 | x = y + 1\n" +
		"     |     ^\n" +
		"gone.cp: fatal: file not found\n"
	if buf.String() != want {
		t.Errorf("Render output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestSnippetTabs(t *testing.T) {
	got := snippet("\tint z\n", 1, 6)
	want := "   1 | \tint z\n     | \t    ^\n"
	if got != want {
		t.Errorf("snippet = %q, want %q", got, want)
	}
}
