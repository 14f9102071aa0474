// Package unit discovers compilation units on disk.
//
// A unit is a single source file, or a directory whose kind follows from its
// name: a "_mod" suffix makes a Module, "_prog" a Program, and any other
// directory is a Project. A directory unit holds the source files directly
// inside it and imports every nested module or program directory, which are
// units of their own.
package unit

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Ext is the source file extension.
const Ext = ".cp"

const (
	ModuleSuffix  = "_mod"
	ProgramSuffix = "_prog"
)

// ErrNotFound reports a path that does not exist.
var ErrNotFound = errors.New("not found")

type Kind int

const (
	File Kind = iota
	Module
	Program
	Project
)

func (k Kind) String() string {
	switch k {
	case File:
		return "file"
	case Module:
		return "module"
	case Program:
		return "program"
	case Project:
		return "project"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Unit is one compilation unit. Path is absolute and cleaned and serves as
// the unit's identity. Files lists member source files in name order;
// Imports lists nested unit directories a directory unit depends on.
type Unit struct {
	Kind    Kind
	Name    string
	Path    string
	Files   []string
	Imports []string
}

// ID returns the unit identity.
func (u *Unit) ID() string { return u.Path }

// Dir returns the directory include paths are resolved against.
func (u *Unit) Dir() string {
	if u.Kind == File {
		return filepath.Dir(u.Path)
	}
	return u.Path
}

func (u *Unit) String() string {
	return fmt.Sprintf("%s %s", u.Kind, u.Name)
}

// KindOf classifies a directory by its name.
func KindOf(dir string) Kind {
	base := filepath.Base(dir)
	switch {
	case strings.HasSuffix(base, ModuleSuffix) && base != ModuleSuffix:
		return Module
	case strings.HasSuffix(base, ProgramSuffix) && base != ProgramSuffix:
		return Program
	}
	return Project
}

// Load builds the unit rooted at path.
func Load(path string) (*Unit, error) {
	full, _, err := PathInfo(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", full, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", full, err)
	}

	if !info.IsDir() {
		return &Unit{
			Kind:  File,
			Name:  trimExt(filepath.Base(full)),
			Path:  full,
			Files: []string{full},
		}, nil
	}

	entries, err := List(full)
	if err != nil {
		return nil, err
	}
	u := &Unit{Kind: KindOf(full), Path: full}
	u.Name = filepath.Base(full)
	switch u.Kind {
	case Module:
		u.Name = strings.TrimSuffix(u.Name, ModuleSuffix)
	case Program:
		u.Name = strings.TrimSuffix(u.Name, ProgramSuffix)
	}
	for _, e := range entries {
		switch {
		case e.Type == FileEntry && filepath.Ext(e.Name) == Ext:
			u.Files = append(u.Files, e.Path)
		case e.Type == DirEntry && KindOf(e.Path) != Project:
			u.Imports = append(u.Imports, e.Path)
		}
	}
	return u, nil
}

type EntryType int

const (
	FileEntry EntryType = iota
	DirEntry
)

func (t EntryType) String() string {
	if t == DirEntry {
		return "dir"
	}
	return "file"
}

// Entry is one item of a directory listing.
type Entry struct {
	Name string
	Path string
	Type EntryType
}

// List returns the entries of dir sorted by name. Hidden entries and
// anything that is neither a regular file nor a directory are skipped.
func List(dir string) ([]Entry, error) {
	des, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("list %s: %w", dir, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	entries := make([]Entry, 0, len(des))
	for _, de := range des {
		if strings.HasPrefix(de.Name(), ".") {
			continue
		}
		e := Entry{Name: de.Name(), Path: filepath.Join(dir, de.Name())}
		switch {
		case de.IsDir():
			e.Type = DirEntry
		case de.Type().IsRegular():
			e.Type = FileEntry
		default:
			continue
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// ResolveInclude locates the unit named by an include target written in the
// file from. Relative targets are tried against from's directory first and
// then against each root in turn. A target naming neither a file nor a
// directory is retried with Ext appended.
func ResolveInclude(from, target string, roots ...string) (string, error) {
	if target == "" {
		return "", fmt.Errorf("include %q: empty path", target)
	}
	var candidates []string
	if IsAbs(target) {
		candidates = append(candidates, target)
	} else {
		candidates = append(candidates, filepath.Join(filepath.Dir(from), target))
		for _, root := range roots {
			candidates = append(candidates, filepath.Join(root, target))
		}
	}

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			full, _, err := PathInfo(c)
			return full, err
		}
		if filepath.Ext(c) == Ext {
			continue
		}
		if info, err := os.Stat(c + Ext); err == nil && !info.IsDir() {
			full, _, err := PathInfo(c + Ext)
			return full, err
		}
	}
	return "", fmt.Errorf("include %q: %w", target, ErrNotFound)
}
