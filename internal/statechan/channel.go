// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package statechan implements a single pipeline-state axis with
// diff/coalesce semantics.
//
// A Channel holds the value the façade most recently asked for (current),
// an append-only history of values committed by flushes, and a dirty flag
// that is set exactly when a command for the channel is still pending.
//
//	CLEAN --Push(v != current)--> DIRTY
//	DIRTY --Push(v == committed)--> CLEAN   (pending command cancelled)
//	DIRTY --Push(v != committed)--> DIRTY   (coalesced, latest value wins)
//
// Any number of pushes between two commits therefore produce at most one
// history entry, and a change undone before the next commit costs nothing.
package statechan

// Transition reports what a Push did to a channel.
type Transition uint8

const (
	// Unchanged means the push was a no-op on a clean channel.
	Unchanged Transition = iota
	// Dirtied means a clean channel now has a pending command.
	Dirtied
	// Cancelled means the pending command was undone by a push of the
	// committed value.
	Cancelled
	// Coalesced means a pending command now carries a newer value.
	Coalesced
)

var transitionNames = [...]string{
	Unchanged: "Unchanged",
	Dirtied:   "Dirtied",
	Cancelled: "Cancelled",
	Coalesced: "Coalesced",
}

// String returns the transition name.
func (t Transition) String() string {
	if int(t) < len(transitionNames) {
		return transitionNames[t]
	}
	return "Unknown"
}

// Changed reports whether the push moved current to a value that will be
// emitted at the next commit. Resources named by the value are reserved
// only on these branches.
func (t Transition) Changed() bool {
	return t == Dirtied || t == Coalesced
}

// Channel is one independent axis of pipeline state.
//
// Values are compared with ==. A value that is not equal to itself, such
// as a float field holding NaN, never matches: every push of it dirties or
// coalesces the channel and can never cancel. Callers must not push NaN.
//
// The zero value is not usable; construct with New or NewWithSentinel.
// Channel is not safe for concurrent use.
type Channel[T comparable] struct {
	current T
	dirty   bool
	history []T

	sentinel    T
	hasSentinel bool
}

// New returns a carry-forward channel: Rebase keeps the most recently
// committed value.
func New[T comparable](initial T) *Channel[T] {
	return &Channel[T]{
		current: initial,
		history: append(make([]T, 0, 8), initial),
	}
}

// NewWithSentinel returns a resource-binding channel: Rebase resets it to
// sentinel rather than carrying the last binding into the next frame.
func NewWithSentinel[T comparable](initial, sentinel T) *Channel[T] {
	c := New(initial)
	c.sentinel = sentinel
	c.hasSentinel = true
	return c
}

// Push records a request to change the channel to v.
func (c *Channel[T]) Push(v T) Transition {
	if !c.dirty {
		if v == c.current {
			return Unchanged
		}
		c.current = v
		c.dirty = true
		return Dirtied
	}

	c.current = v
	if v == c.history[len(c.history)-1] {
		c.dirty = false
		return Cancelled
	}
	return Coalesced
}

// Dirty reports whether a command for this channel is pending.
func (c *Channel[T]) Dirty() bool {
	return c.dirty
}

// Current returns the latest pushed value.
func (c *Channel[T]) Current() T {
	return c.current
}

// Committed returns the last value appended to the history.
func (c *Channel[T]) Committed() T {
	return c.history[len(c.history)-1]
}

// Len returns the number of history entries. It is always at least 1.
func (c *Channel[T]) Len() int {
	return len(c.history)
}

// At returns the history entry at index i. Out-of-range indices panic.
func (c *Channel[T]) At(i uint32) T {
	return c.history[i]
}

// History returns the committed values. The slice must not be modified.
func (c *Channel[T]) History() []T {
	return c.history
}

// Commit appends current to the history, clears the dirty flag and
// returns the index of the new entry.
func (c *Channel[T]) Commit() uint32 {
	c.history = append(c.history, c.current)
	c.dirty = false
	// #nosec G115 -- history is truncated every frame, far below uint32 max
	return uint32(len(c.history) - 1)
}

// Rebase truncates the history to a single baseline entry and resets
// current to it. Sentinel channels rebase to their sentinel; the others
// keep their last committed value.
func (c *Channel[T]) Rebase() {
	base := c.history[len(c.history)-1]
	if c.hasSentinel {
		base = c.sentinel
	}
	c.history = append(c.history[:0], base)
	c.current = base
	c.dirty = false
}

// ResetsToSentinel reports whether Rebase discards the last value.
func (c *Channel[T]) ResetsToSentinel() bool {
	return c.hasSentinel
}
