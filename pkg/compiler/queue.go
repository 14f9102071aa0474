package compiler

import "github.com/cplus-project/cplus-origin-sub000/pkg/unit"

const none = -1

type queueEntry struct {
	unit       *unit.Unit
	discovered bool
	prev, next int
}

// Queue is the scheduler's wait list: a doubly linked list of pending units
// stored in a slice arena, with one movable cursor marking the unit being
// processed. Units discovered as dependencies are inserted just before the
// cursor so they are processed first.
type Queue struct {
	entries    []queueEntry
	free       []int
	head, tail int
	cursor     int
	n          int
	cache      *Cache
}

// NewQueue returns an empty queue. Enqueue consults cache, when non-nil, and
// refuses units whose entry is already resolved.
func NewQueue(cache *Cache) *Queue {
	return &Queue{head: none, tail: none, cursor: none, cache: cache}
}

func (q *Queue) Len() int { return q.n }

func (q *Queue) find(id string) int {
	for i := q.head; i != none; i = q.entries[i].next {
		if q.entries[i].unit.ID() == id {
			return i
		}
	}
	return none
}

// Contains reports whether id is pending.
func (q *Queue) Contains(id string) bool { return q.find(id) != none }

// Enqueue places u immediately before the cursor, or at the tail when the
// cursor is unset. A unit already pending is moved there rather than
// duplicated. Enqueue reports false, leaving the queue unchanged, when u's
// cache entry is resolved or u is the unit under the cursor.
func (q *Queue) Enqueue(u *unit.Unit) bool {
	if q.cache != nil && q.cache.Resolved(u.ID()) {
		return false
	}
	idx := q.find(u.ID())
	if idx != none {
		if idx == q.cursor {
			return false
		}
		q.unlink(idx)
	} else {
		idx = q.alloc(u)
		q.n++
	}
	q.linkBefore(idx, q.cursor)
	return true
}

func (q *Queue) alloc(u *unit.Unit) int {
	e := queueEntry{unit: u, prev: none, next: none}
	if n := len(q.free); n > 0 {
		idx := q.free[n-1]
		q.free = q.free[:n-1]
		q.entries[idx] = e
		return idx
	}
	q.entries = append(q.entries, e)
	return len(q.entries) - 1
}

// linkBefore links idx in front of at, or at the tail when at is none.
func (q *Queue) linkBefore(idx, at int) {
	e := &q.entries[idx]
	if at == none {
		e.prev, e.next = q.tail, none
		if q.tail != none {
			q.entries[q.tail].next = idx
		} else {
			q.head = idx
		}
		q.tail = idx
		return
	}
	prev := q.entries[at].prev
	e.prev, e.next = prev, at
	q.entries[at].prev = idx
	if prev != none {
		q.entries[prev].next = idx
	} else {
		q.head = idx
	}
}

func (q *Queue) unlink(idx int) {
	e := &q.entries[idx]
	if e.prev != none {
		q.entries[e.prev].next = e.next
	} else {
		q.head = e.next
	}
	if e.next != none {
		q.entries[e.next].prev = e.prev
	} else {
		q.tail = e.prev
	}
	e.prev, e.next = none, none
}

// NextPending moves the cursor to the head of the queue and returns the unit
// there, or nil when the queue is empty.
func (q *Queue) NextPending() *unit.Unit {
	q.cursor = q.head
	if q.cursor == none {
		return nil
	}
	return q.entries[q.cursor].unit
}

// Current returns the unit under the cursor.
func (q *Queue) Current() *unit.Unit {
	if q.cursor == none {
		return nil
	}
	return q.entries[q.cursor].unit
}

// Remove drops id from the queue. Removing the unit under the cursor unsets
// the cursor.
func (q *Queue) Remove(id string) bool {
	idx := q.find(id)
	if idx == none {
		return false
	}
	q.unlink(idx)
	if idx == q.cursor {
		q.cursor = none
	}
	q.entries[idx] = queueEntry{prev: none, next: none}
	q.free = append(q.free, idx)
	q.n--
	return true
}

// MarkDiscovered records that id's dependency pre-pass has started.
func (q *Queue) MarkDiscovered(id string) {
	if idx := q.find(id); idx != none {
		q.entries[idx].discovered = true
	}
}

// Discovered reports whether id is pending and its pre-pass has started.
func (q *Queue) Discovered(id string) bool {
	idx := q.find(id)
	return idx != none && q.entries[idx].discovered
}

// IDs returns the pending unit identities from head to tail.
func (q *Queue) IDs() []string {
	ids := make([]string, 0, q.n)
	for i := q.head; i != none; i = q.entries[i].next {
		ids = append(ids, q.entries[i].unit.ID())
	}
	return ids
}

// Clear empties the queue and unsets the cursor.
func (q *Queue) Clear() {
	q.entries = nil
	q.free = nil
	q.head, q.tail, q.cursor = none, none, none
	q.n = 0
}
