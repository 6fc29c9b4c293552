// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package reserve keeps externally owned resources alive while a recorded
// frame still names them.
package reserve

// Retainer is implemented by handles with explicit reference counting.
// A Table calls Retain once when it first stores a handle and Release once
// when it is cleared.
type Retainer interface {
	Retain()
	Release()
}

// Table is an insert-once map from resource identity to handle.
//
// Entries are iterated in insertion order so backends see a deterministic
// resource list. Table is not safe for concurrent use.
type Table[K comparable, H any] struct {
	index map[K]int
	ids   []K
	items []H
}

// New creates an empty table.
func New[K comparable, H any]() *Table[K, H] {
	return &Table[K, H]{
		index: make(map[K]int, 16),
		ids:   make([]K, 0, 16),
		items: make([]H, 0, 16),
	}
}

// Reserve stores h under id if id is not present yet and reports whether
// it did. A second Reserve for the same id is a no-op, even with a
// different handle.
func (t *Table[K, H]) Reserve(id K, h H) bool {
	if _, ok := t.index[id]; ok {
		return false
	}
	t.index[id] = len(t.items)
	t.ids = append(t.ids, id)
	t.items = append(t.items, h)
	if r, ok := any(h).(Retainer); ok {
		r.Retain()
	}
	return true
}

// Lookup returns the handle stored under id.
func (t *Table[K, H]) Lookup(id K) (H, bool) {
	i, ok := t.index[id]
	if !ok {
		var zero H
		return zero, false
	}
	return t.items[i], true
}

// Contains reports whether id has been reserved.
func (t *Table[K, H]) Contains(id K) bool {
	_, ok := t.index[id]
	return ok
}

// Len returns the number of reserved resources.
func (t *Table[K, H]) Len() int {
	return len(t.items)
}

// Each calls fn for every entry in insertion order.
func (t *Table[K, H]) Each(fn func(id K, h H)) {
	for i, id := range t.ids {
		fn(id, t.items[i])
	}
}

// Clear releases every handle and empties the table.
func (t *Table[K, H]) Clear() {
	var zero H
	for i, h := range t.items {
		if r, ok := any(h).(Retainer); ok {
			r.Release()
		}
		t.items[i] = zero
	}
	clear(t.index)
	t.ids = t.ids[:0]
	t.items = t.items[:0]
}

// ClearExcept releases every handle except the one stored under keep and
// empties the table down to that entry. The kept handle is neither
// released nor retained again, so its reference stays held throughout.
// If keep is absent ClearExcept behaves like Clear.
func (t *Table[K, H]) ClearExcept(keep K) {
	i, ok := t.index[keep]
	if !ok {
		t.Clear()
		return
	}
	kept := t.items[i]
	for j, h := range t.items {
		if j == i {
			continue
		}
		if r, ok := any(h).(Retainer); ok {
			r.Release()
		}
	}
	clear(t.items)
	clear(t.index)
	t.ids = append(t.ids[:0], keep)
	t.items = append(t.items[:0], kept)
	t.index[keep] = 0
}
