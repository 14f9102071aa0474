// Package ordmap implements a sorted string-keyed map as a red-black tree.
//
// Keys compare byte-wise, and a key that is a prefix of another sorts first,
// which is Go's native string order. Nodes live in a slice arena and refer to
// each other by index, so parent links never form owning cycles.
package ordmap

import (
	"errors"
	"fmt"
)

// ErrConflict is returned by Insert when the key is already present.
var ErrConflict = errors.New("ordmap: key already present")

const nilIdx = -1

type node[V any] struct {
	key    string
	val    V
	left   int
	right  int
	parent int
	red    bool
}

// Map is an ordered map from string keys to values of type V. The zero value
// is not usable; call New.
type Map[V any] struct {
	nodes   []node[V]
	root    int
	release func(key string, v V)
}

// New returns an empty map.
func New[V any]() *Map[V] {
	return &Map[V]{root: nilIdx}
}

// OnRelease registers fn to be called for every entry dropped by Clear.
func (m *Map[V]) OnRelease(fn func(key string, v V)) {
	m.release = fn
}

// Len returns the number of entries.
func (m *Map[V]) Len() int {
	return len(m.nodes)
}

// find returns the index holding key, or nilIdx and the would-be parent.
func (m *Map[V]) find(key string) (idx, parent int) {
	parent = nilIdx
	idx = m.root
	for idx != nilIdx {
		n := &m.nodes[idx]
		switch {
		case key < n.key:
			parent, idx = idx, n.left
		case key > n.key:
			parent, idx = idx, n.right
		default:
			return idx, parent
		}
	}
	return nilIdx, parent
}

// Lookup returns the value stored under key.
func (m *Map[V]) Lookup(key string) (V, bool) {
	idx, _ := m.find(key)
	if idx == nilIdx {
		var zero V
		return zero, false
	}
	return m.nodes[idx].val, true
}

// Contains reports whether key is present.
func (m *Map[V]) Contains(key string) bool {
	idx, _ := m.find(key)
	return idx != nilIdx
}

// Insert adds key with value v. If key is present the map is left unchanged
// and ErrConflict is returned.
func (m *Map[V]) Insert(key string, v V) error {
	idx, parent := m.find(key)
	if idx != nilIdx {
		return fmt.Errorf("%w: %q", ErrConflict, key)
	}
	m.insertAt(parent, key, v)
	return nil
}

// Upsert stores v under key, replacing any existing value. It reports whether
// a value was replaced.
func (m *Map[V]) Upsert(key string, v V) bool {
	idx, parent := m.find(key)
	if idx != nilIdx {
		m.nodes[idx].val = v
		return true
	}
	m.insertAt(parent, key, v)
	return false
}

func (m *Map[V]) insertAt(parent int, key string, v V) {
	z := len(m.nodes)
	m.nodes = append(m.nodes, node[V]{key: key, val: v, left: nilIdx, right: nilIdx, parent: parent, red: true})
	switch {
	case parent == nilIdx:
		m.root = z
	case key < m.nodes[parent].key:
		m.nodes[parent].left = z
	default:
		m.nodes[parent].right = z
	}
	m.insertFixup(z)
}

func (m *Map[V]) isRed(i int) bool {
	return i != nilIdx && m.nodes[i].red
}

// insertFixup restores the red-black properties after inserting the red
// node z: the root is black and no red node has a red parent.
func (m *Map[V]) insertFixup(z int) {
	for z != m.root && m.isRed(m.nodes[z].parent) {
		p := m.nodes[z].parent
		g := m.nodes[p].parent // exists: a red parent is never the root
		if p == m.nodes[g].left {
			u := m.nodes[g].right
			if m.isRed(u) {
				m.nodes[p].red = false
				m.nodes[u].red = false
				m.nodes[g].red = true
				z = g
				continue
			}
			if z == m.nodes[p].right {
				z = p
				m.rotateLeft(z)
				p = m.nodes[z].parent
			}
			m.nodes[p].red = false
			m.nodes[g].red = true
			m.rotateRight(g)
		} else {
			u := m.nodes[g].left
			if m.isRed(u) {
				m.nodes[p].red = false
				m.nodes[u].red = false
				m.nodes[g].red = true
				z = g
				continue
			}
			if z == m.nodes[p].left {
				z = p
				m.rotateRight(z)
				p = m.nodes[z].parent
			}
			m.nodes[p].red = false
			m.nodes[g].red = true
			m.rotateLeft(g)
		}
	}
	m.nodes[m.root].red = false
}

// replaceChild points x's parent at y instead of x.
func (m *Map[V]) replaceChild(x, y int) {
	p := m.nodes[x].parent
	m.nodes[y].parent = p
	switch {
	case p == nilIdx:
		m.root = y
	case m.nodes[p].left == x:
		m.nodes[p].left = y
	default:
		m.nodes[p].right = y
	}
}

func (m *Map[V]) rotateLeft(x int) {
	y := m.nodes[x].right
	m.nodes[x].right = m.nodes[y].left
	if l := m.nodes[y].left; l != nilIdx {
		m.nodes[l].parent = x
	}
	m.replaceChild(x, y)
	m.nodes[y].left = x
	m.nodes[x].parent = y
}

func (m *Map[V]) rotateRight(x int) {
	y := m.nodes[x].left
	m.nodes[x].left = m.nodes[y].right
	if r := m.nodes[y].right; r != nilIdx {
		m.nodes[r].parent = x
	}
	m.replaceChild(x, y)
	m.nodes[y].right = x
	m.nodes[x].parent = y
}

// Ascend calls fn for every entry in key order until fn returns false.
func (m *Map[V]) Ascend(fn func(key string, v V) bool) {
	var stack []int
	i := m.root
	for i != nilIdx || len(stack) > 0 {
		for i != nilIdx {
			stack = append(stack, i)
			i = m.nodes[i].left
		}
		i = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(m.nodes[i].key, m.nodes[i].val) {
			return
		}
		i = m.nodes[i].right
	}
}

// Keys returns every key in order.
func (m *Map[V]) Keys() []string {
	keys := make([]string, 0, len(m.nodes))
	m.Ascend(func(k string, _ V) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}

// Clear drops every entry, passing each to the release hook in key order.
func (m *Map[V]) Clear() {
	if m.release != nil {
		m.Ascend(func(k string, v V) bool {
			m.release(k, v)
			return true
		})
	}
	m.nodes = nil
	m.root = nilIdx
}

// Height returns the number of nodes on the longest root-to-leaf path.
func (m *Map[V]) Height() int {
	var height func(i int) int
	height = func(i int) int {
		if i == nilIdx {
			return 0
		}
		return 1 + max(height(m.nodes[i].left), height(m.nodes[i].right))
	}
	return height(m.root)
}

// Validate checks the binary-search-tree order, the parent links and the
// red-black properties: black root, no red node with a red child, and the
// same black count on every root-to-leaf path.
func (m *Map[V]) Validate() error {
	if m.root == nilIdx {
		if len(m.nodes) != 0 {
			return fmt.Errorf("ordmap: empty root with %d nodes", len(m.nodes))
		}
		return nil
	}
	if m.nodes[m.root].red {
		return errors.New("ordmap: root is red")
	}
	if m.nodes[m.root].parent != nilIdx {
		return errors.New("ordmap: root has a parent")
	}

	count := 0
	var walk func(i int, lo, hi *string) (int, error)
	walk = func(i int, lo, hi *string) (int, error) {
		if i == nilIdx {
			return 1, nil
		}
		count++
		n := m.nodes[i]
		if (lo != nil && n.key <= *lo) || (hi != nil && n.key >= *hi) {
			return 0, fmt.Errorf("ordmap: key %q out of order", n.key)
		}
		for _, c := range []int{n.left, n.right} {
			if c == nilIdx {
				continue
			}
			if m.nodes[c].parent != i {
				return 0, fmt.Errorf("ordmap: broken parent link under %q", n.key)
			}
			if n.red && m.nodes[c].red {
				return 0, fmt.Errorf("ordmap: red node %q has a red child", n.key)
			}
		}
		lh, err := walk(n.left, lo, &n.key)
		if err != nil {
			return 0, err
		}
		rh, err := walk(n.right, &n.key, hi)
		if err != nil {
			return 0, err
		}
		if lh != rh {
			return 0, fmt.Errorf("ordmap: black height mismatch at %q (%d vs %d)", n.key, lh, rh)
		}
		if !n.red {
			lh++
		}
		return lh, nil
	}
	if _, err := walk(m.root, nil, nil); err != nil {
		return err
	}
	if count != len(m.nodes) {
		return fmt.Errorf("ordmap: %d reachable nodes, %d stored", count, len(m.nodes))
	}
	return nil
}
