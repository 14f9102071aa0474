package compiler

import (
	"sort"

	"github.com/cplus-project/cplus-origin-sub000/pkg/ast"
)

// Deferred is a name reference left unresolved because the unit that may
// declare it sits on an import cycle and has not been compiled yet.
type Deferred struct {
	Name     string
	Unit     string
	File     string
	Pos      ast.Pos
	WantType bool
}

// delayResolver tracks, per waiting unit, the cyclic imports it is blocked
// on and the names it could not resolve yet.
type delayResolver struct {
	blockers map[string]map[string]bool
	waiters  map[string][]string
	deferred map[string][]Deferred
}

func newDelayResolver() *delayResolver {
	d := &delayResolver{}
	d.Clear()
	return d
}

// Block records that waiter imports blocker across a cycle.
func (d *delayResolver) Block(waiter, blocker string) {
	set := d.blockers[waiter]
	if set == nil {
		set = make(map[string]bool)
		d.blockers[waiter] = set
	}
	if set[blocker] {
		return
	}
	set[blocker] = true
	d.waiters[blocker] = append(d.waiters[blocker], waiter)
}

// Blocked reports whether waiter still has an uncompiled cyclic import.
func (d *delayResolver) Blocked(waiter string) bool {
	return len(d.blockers[waiter]) > 0
}

func (d *delayResolver) Defer(ref Deferred) {
	d.deferred[ref.Unit] = append(d.deferred[ref.Unit], ref)
}

// Complete marks blocker as compiled and returns the units that were
// waiting on it, in the order they started waiting.
func (d *delayResolver) Complete(blocker string) []string {
	waiters := d.waiters[blocker]
	delete(d.waiters, blocker)
	for _, w := range waiters {
		delete(d.blockers[w], blocker)
		if len(d.blockers[w]) == 0 {
			delete(d.blockers, w)
		}
	}
	return waiters
}

// Take removes and returns the deferred names of waiter.
func (d *delayResolver) Take(waiter string) []Deferred {
	refs := d.deferred[waiter]
	delete(d.deferred, waiter)
	return refs
}

// Pending returns the units that still hold deferred names, sorted.
func (d *delayResolver) Pending() []string {
	var ids []string
	for id, refs := range d.deferred {
		if len(refs) > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func (d *delayResolver) Clear() {
	d.blockers = make(map[string]map[string]bool)
	d.waiters = make(map[string][]string)
	d.deferred = make(map[string][]Deferred)
}
