package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cplus-project/cplus-origin-sub000/pkg/diag"
	"github.com/cplus-project/cplus-origin-sub000/pkg/parser"
)

func TestIncomplete(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"(1 + 2", true},
		{"f(1", true},
		{"1 +", false},
		{"1 2", false},
	}
	for _, tt := range tests {
		_, err := parser.ParseExpr(tt.src)
		if err == nil {
			t.Fatalf("ParseExpr(%q) succeeded", tt.src)
		}
		if got := incomplete(err); got != tt.want {
			t.Errorf("incomplete(%q) = %v, want %v (err %v)", tt.src, got, tt.want, err)
		}
	}
}

func TestReadSources(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.cp")
	if err := os.WriteFile(path, []byte("int x = y\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	l := diag.NewList(0)
	l.Errorf(path, 1, 9, "undefined: y")
	l.Errorf(path, 1, 9, "again")
	l.Fatalf(filepath.Join(dir, "gone.cp"), 1, 1, "missing")
	l.Warnf(filepath.Join(dir, "other.cp"), 0, 0, "no position")

	sources := readSources(l)
	if len(sources) != 1 || sources[path] != "int x = y\n" {
		t.Errorf("readSources = %v", sources)
	}
}

func TestCmdExpr(t *testing.T) {
	if code := cmdExpr([]string{"1", "+", "2"}); code != 0 {
		t.Errorf("cmdExpr valid: exit %d", code)
	}
	if code := cmdExpr([]string{"1", "+"}); code != 1 {
		t.Errorf("cmdExpr invalid: exit %d", code)
	}
	if code := cmdExpr(nil); code != 2 {
		t.Errorf("cmdExpr without args: exit %d", code)
	}
}

func TestCmdCompile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.cp")
	bad := filepath.Join(dir, "bad.cp")
	os.WriteFile(good, []byte("int x = 1\n"), 0o644)
	os.WriteFile(bad, []byte("int x = y\n"), 0o644)

	if code := cmdCompile([]string{good}); code != 0 {
		t.Errorf("compile good: exit %d", code)
	}
	if code := cmdCompile([]string{"-max-errors", "3", bad}); code != 1 {
		t.Errorf("compile bad: exit %d", code)
	}
	if code := cmdCompile(nil); code != 2 {
		t.Errorf("compile without path: exit %d", code)
	}
}
