// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package statechan

import (
	"math"
	"testing"
)

func TestNewChannel(t *testing.T) {
	c := New(7)
	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
	if c.Current() != 7 || c.Committed() != 7 {
		t.Errorf("Current() = %d, Committed() = %d, want 7, 7", c.Current(), c.Committed())
	}
	if c.Dirty() {
		t.Error("new channel should be clean")
	}
	if c.ResetsToSentinel() {
		t.Error("New channel should carry forward")
	}
}

func TestPushTransitions(t *testing.T) {
	tests := []struct {
		name      string
		pushes    []int
		want      []Transition
		wantDirty bool
		wantCur   int
	}{
		{
			name:    "same value while clean",
			pushes:  []int{0, 0, 0},
			want:    []Transition{Unchanged, Unchanged, Unchanged},
			wantCur: 0,
		},
		{
			name:      "single change",
			pushes:    []int{1},
			want:      []Transition{Dirtied},
			wantDirty: true,
			wantCur:   1,
		},
		{
			name:    "change then revert",
			pushes:  []int{1, 0},
			want:    []Transition{Dirtied, Cancelled},
			wantCur: 0,
		},
		{
			name:      "coalesce",
			pushes:    []int{1, 2, 3},
			want:      []Transition{Dirtied, Coalesced, Coalesced},
			wantDirty: true,
			wantCur:   3,
		},
		{
			name:      "same value while dirty coalesces",
			pushes:    []int{1, 1},
			want:      []Transition{Dirtied, Coalesced},
			wantDirty: true,
			wantCur:   1,
		},
		{
			name:      "revert then change again",
			pushes:    []int{1, 0, 2},
			want:      []Transition{Dirtied, Cancelled, Dirtied},
			wantDirty: true,
			wantCur:   2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(0)
			for i, v := range tt.pushes {
				if got := c.Push(v); got != tt.want[i] {
					t.Errorf("Push(%d) #%d = %v, want %v", v, i, got, tt.want[i])
				}
			}
			if c.Dirty() != tt.wantDirty {
				t.Errorf("Dirty() = %v, want %v", c.Dirty(), tt.wantDirty)
			}
			if c.Current() != tt.wantCur {
				t.Errorf("Current() = %d, want %d", c.Current(), tt.wantCur)
			}
			if c.Len() != 1 {
				t.Errorf("Len() = %d, want 1 (push must not touch history)", c.Len())
			}
		})
	}
}

func TestTransitionChanged(t *testing.T) {
	tests := []struct {
		tr   Transition
		want bool
	}{
		{Unchanged, false},
		{Dirtied, true},
		{Cancelled, false},
		{Coalesced, true},
	}
	for _, tt := range tests {
		if got := tt.tr.Changed(); got != tt.want {
			t.Errorf("%v.Changed() = %v, want %v", tt.tr, got, tt.want)
		}
	}
}

func TestTransitionString(t *testing.T) {
	if Coalesced.String() != "Coalesced" {
		t.Errorf("Coalesced.String() = %q", Coalesced.String())
	}
	if Transition(99).String() != "Unknown" {
		t.Errorf("Transition(99).String() = %q, want Unknown", Transition(99).String())
	}
}

func TestCommit(t *testing.T) {
	c := New(0)
	c.Push(5)
	idx := c.Commit()
	if idx != 1 {
		t.Errorf("Commit() = %d, want 1", idx)
	}
	if c.Dirty() {
		t.Error("Commit should clear dirty")
	}
	if c.Committed() != 5 || c.At(1) != 5 {
		t.Errorf("Committed() = %d, At(1) = %d, want 5", c.Committed(), c.At(1))
	}

	// Reverting to the old baseline is a real change now.
	if got := c.Push(0); got != Dirtied {
		t.Errorf("Push(0) after commit = %v, want Dirtied", got)
	}
}

func TestHistoryGrowth(t *testing.T) {
	c := New(0)
	const k = 10
	for i := 1; i <= k; i++ {
		c.Push(i)
		c.Commit()
	}
	if c.Len() != k+1 {
		t.Errorf("Len() = %d, want %d", c.Len(), k+1)
	}
	for i, v := range c.History() {
		if v != i {
			t.Errorf("History()[%d] = %d, want %d", i, v, i)
		}
	}
}

func TestRebaseCarryForward(t *testing.T) {
	c := New(0)
	c.Push(3)
	c.Commit()
	c.Push(4)
	c.Commit()

	c.Rebase()
	if c.Len() != 1 || c.At(0) != 4 {
		t.Errorf("after Rebase history = %v, want [4]", c.History())
	}
	if c.Current() != 4 {
		t.Errorf("Current() = %d, want 4", c.Current())
	}
}

func TestRebaseUsesCommittedNotPending(t *testing.T) {
	c := New(0)
	c.Push(3)
	c.Commit()
	c.Push(9) // never committed

	c.Rebase()
	if c.At(0) != 3 || c.Current() != 3 || c.Dirty() {
		t.Errorf("after Rebase: history = %v, current = %d, dirty = %v", c.History(), c.Current(), c.Dirty())
	}
}

func TestRebaseSentinel(t *testing.T) {
	const unbound = -1
	c := NewWithSentinel(unbound, unbound)
	if !c.ResetsToSentinel() {
		t.Fatal("ResetsToSentinel() = false, want true")
	}
	c.Push(12)
	c.Commit()

	c.Rebase()
	if c.Len() != 1 || c.At(0) != unbound || c.Current() != unbound {
		t.Errorf("after Rebase history = %v, current = %d, want [-1], -1", c.History(), c.Current())
	}
}

func TestPushNaNNeverMatches(t *testing.T) {
	nan := float32(math.NaN())
	c := New(float32(0))

	if got := c.Push(nan); got != Dirtied {
		t.Errorf("first NaN push = %v, want Dirtied", got)
	}
	if got := c.Push(nan); got != Coalesced {
		t.Errorf("repeated NaN push = %v, want Coalesced", got)
	}
	c.Commit()
	if got := c.Push(nan); got != Dirtied {
		t.Errorf("NaN push after commit = %v, want Dirtied", got)
	}
}
