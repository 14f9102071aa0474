package unit

import (
	"path/filepath"
	"strings"
)

// PathInfo returns the absolute, cleaned form of relPath and the directory
// that contains it.
func PathInfo(relPath string) (fullPath string, parentDir string, err error) {
	fullPath, err = filepath.Abs(relPath)
	if err != nil {
		return "", "", err
	}
	return fullPath, filepath.Dir(fullPath), nil
}

// SplitParent splits p into its parent directory and final element. A
// trailing separator is ignored, so "a/b/" splits into "a" and "b".
func SplitParent(p string) (parent, base string) {
	p = filepath.Clean(p)
	return filepath.Dir(p), filepath.Base(p)
}

// IsAbs reports whether p is an absolute path.
func IsAbs(p string) bool {
	return filepath.IsAbs(p)
}

// trimExt drops the source extension from name, if present.
func trimExt(name string) string {
	return strings.TrimSuffix(name, Ext)
}
