package compiler

import (
	"fmt"

	"github.com/cplus-project/cplus-origin-sub000/pkg/ordmap"
	"github.com/cplus-project/cplus-origin-sub000/pkg/symtab"
	"github.com/cplus-project/cplus-origin-sub000/pkg/unit"
)

// CacheEntry records one unit known to the run. Table is nil until the unit
// has been compiled; an entry in that state is a placeholder.
type CacheEntry struct {
	ID    string
	Unit  *unit.Unit
	Table *symtab.Table
}

func (e *CacheEntry) Resolved() bool { return e.Table != nil }

// Cache maps unit identities to their compiled symbol tables.
type Cache struct {
	entries *ordmap.Map[*CacheEntry]
}

func NewCache() *Cache {
	m := ordmap.New[*CacheEntry]()
	m.OnRelease(func(_ string, e *CacheEntry) {
		if e.Table != nil {
			e.Table.Release()
		}
	})
	return &Cache{entries: m}
}

// Touch creates a placeholder for u unless an entry already exists, and
// returns the entry.
func (c *Cache) Touch(u *unit.Unit) *CacheEntry {
	if e, ok := c.entries.Lookup(u.ID()); ok {
		return e
	}
	e := &CacheEntry{ID: u.ID(), Unit: u}
	c.entries.Insert(e.ID, e)
	return e
}

// Resolve stores the compiled table for id.
func (c *Cache) Resolve(id string, table *symtab.Table) error {
	e, ok := c.entries.Lookup(id)
	if !ok {
		return fmt.Errorf("resolve %s: no cache entry", id)
	}
	if e.Resolved() {
		return fmt.Errorf("resolve %s: already resolved", id)
	}
	e.Table = table
	return nil
}

func (c *Cache) Lookup(id string) (*CacheEntry, bool) {
	return c.entries.Lookup(id)
}

// Resolved reports whether id has a compiled table.
func (c *Cache) Resolved(id string) bool {
	e, ok := c.entries.Lookup(id)
	return ok && e.Resolved()
}

// Ascend visits the entries in identity order until fn returns false.
func (c *Cache) Ascend(fn func(e *CacheEntry) bool) {
	c.entries.Ascend(func(_ string, e *CacheEntry) bool { return fn(e) })
}

func (c *Cache) Len() int { return c.entries.Len() }

// Clear drops every entry and releases the compiled tables.
func (c *Cache) Clear() { c.entries.Clear() }
