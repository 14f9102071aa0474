package unit

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// writeTree creates files under root. Keys ending in "/" become directories.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if name[len(name)-1] == '/' {
			if err := os.MkdirAll(p, 0o755); err != nil {
				t.Fatal(err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestLoad(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"main.cp":            "",
		"notes.txt":          "",
		"b.cp":               "",
		"geo_mod/shape.cp":   "",
		"geo_mod/area.cp":    "",
		"tool_prog/main.cp":  "",
		"assets/":            "",
		".hidden_mod/x.cp":   "",
		"geo_mod/inner_mod/": "",
	})

	t.Run("File", func(t *testing.T) {
		u, err := Load(filepath.Join(root, "main.cp"))
		if err != nil {
			t.Fatal(err)
		}
		if u.Kind != File || u.Name != "main" || u.Dir() != root {
			t.Errorf("got %v in %s", u, u.Dir())
		}
		if !reflect.DeepEqual(u.Files, []string{u.Path}) {
			t.Errorf("files: %v", u.Files)
		}
	})

	t.Run("Module", func(t *testing.T) {
		u, err := Load(filepath.Join(root, "geo_mod"))
		if err != nil {
			t.Fatal(err)
		}
		if u.Kind != Module || u.Name != "geo" {
			t.Errorf("got %v", u)
		}
		want := []string{filepath.Join(root, "geo_mod", "area.cp"), filepath.Join(root, "geo_mod", "shape.cp")}
		if !reflect.DeepEqual(u.Files, want) {
			t.Errorf("files: expected %v, got %v", want, u.Files)
		}
		if !reflect.DeepEqual(u.Imports, []string{filepath.Join(root, "geo_mod", "inner_mod")}) {
			t.Errorf("imports: %v", u.Imports)
		}
	})

	t.Run("Program", func(t *testing.T) {
		u, err := Load(filepath.Join(root, "tool_prog"))
		if err != nil {
			t.Fatal(err)
		}
		if u.Kind != Program || u.Name != "tool" || len(u.Files) != 1 {
			t.Errorf("got %v with %v", u, u.Files)
		}
	})

	t.Run("Project", func(t *testing.T) {
		u, err := Load(root)
		if err != nil {
			t.Fatal(err)
		}
		if u.Kind != Project {
			t.Errorf("kind: expected project, got %s", u.Kind)
		}
		wantFiles := []string{filepath.Join(root, "b.cp"), filepath.Join(root, "main.cp")}
		if !reflect.DeepEqual(u.Files, wantFiles) {
			t.Errorf("files: expected %v, got %v", wantFiles, u.Files)
		}
		wantImports := []string{filepath.Join(root, "geo_mod"), filepath.Join(root, "tool_prog")}
		if !reflect.DeepEqual(u.Imports, wantImports) {
			t.Errorf("imports: expected %v, got %v", wantImports, u.Imports)
		}
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := Load(filepath.Join(root, "nope.cp"))
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestList(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"z.cp":    "",
		"a_mod/":  "",
		"m.cp":    "",
		".git/":   "",
		"b/c.txt": "",
	})
	entries, err := List(root)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, e := range entries {
		got = append(got, e.Name+":"+e.Type.String())
	}
	want := []string{"a_mod:dir", "b:dir", "m.cp:file", "z.cp:file"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("List = %v, want %v", got, want)
	}

	if _, err := List(filepath.Join(root, "missing")); !errors.Is(err, ErrNotFound) {
		t.Errorf("List(missing) = %v, want ErrNotFound", err)
	}
}

func TestResolveInclude(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"main.cp":         "",
		"util.cp":         "",
		"lib/math.cp":     "",
		"lib/vec.cp":      "",
		"lib/vec/":        "",
		"shapes_mod/a.cp": "",
		"src/app.cp":      "",
		"src/local.cp":    "",
		"src/shapes_mod/": "",
		"src/explicit.cp": "",
	})
	from := filepath.Join(root, "src", "app.cp")

	tests := []struct {
		target string
		want   string
	}{
		{"local", filepath.Join(root, "src", "local.cp")},
		{"explicit.cp", filepath.Join(root, "src", "explicit.cp")},
		{"util", filepath.Join(root, "util.cp")},
		{"lib/math", filepath.Join(root, "lib", "math.cp")},
		// A directory wins over a same-named source file.
		{"lib/vec", filepath.Join(root, "lib", "vec")},
		// The including file's directory wins over the root.
		{"shapes_mod", filepath.Join(root, "src", "shapes_mod")},
		{filepath.Join(root, "main"), filepath.Join(root, "main.cp")},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			got, err := ResolveInclude(from, tt.target, root)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("ResolveInclude(%q) = %s, want %s", tt.target, got, tt.want)
			}
		})
	}

	if _, err := ResolveInclude(from, "absent", root); !errors.Is(err, ErrNotFound) {
		t.Errorf("absent include: expected ErrNotFound, got %v", err)
	}
	if _, err := ResolveInclude(from, "util"); !errors.Is(err, ErrNotFound) {
		t.Errorf("include without roots must not search the root: %v", err)
	}
}

func TestPathUtilities(t *testing.T) {
	full, parent, err := PathInfo("a/../b/c.cp")
	if err != nil {
		t.Fatal(err)
	}
	if !IsAbs(full) || filepath.Base(full) != "c.cp" || filepath.Base(parent) != "b" {
		t.Errorf("PathInfo = %s, %s", full, parent)
	}

	tests := []struct {
		in, parent, base string
	}{
		{"a/b/c.cp", "a/b", "c.cp"},
		{"a/b/", "a", "b"},
		{"c.cp", ".", "c.cp"},
	}
	for _, tt := range tests {
		p, b := SplitParent(filepath.FromSlash(tt.in))
		if p != filepath.FromSlash(tt.parent) || b != tt.base {
			t.Errorf("SplitParent(%q) = %q, %q", tt.in, p, b)
		}
	}
}

func TestKindOf(t *testing.T) {
	tests := map[string]Kind{
		"geo_mod":  Module,
		"app_prog": Program,
		"_mod":     Project,
		"project":  Project,
		"x/y_mod":  Module,
	}
	for dir, want := range tests {
		if got := KindOf(dir); got != want {
			t.Errorf("KindOf(%q) = %s, want %s", dir, got, want)
		}
	}
}
