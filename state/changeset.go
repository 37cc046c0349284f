// Copyright 2024 The go-probe Authors
// This file is part of the go-probe library.
//
// The go-probe library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-probe library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-probe library. If not, see <http://www.gnu.org/licenses/>.

// Package state implements the Change Set: a per-transaction overlay over a
// persistent RootStore.
//
// This ChangeSet journals nothing: it tracks no per-field mutation history
// and cannot revert to an arbitrary mid-transaction snapshot. spec.md's
// Non-goals rule out "rollback partial to an opcode" — the unit of
// atomicity is the whole transaction. A ChangeSet is therefore either
// merged in full or discarded in full; nested triggers share the same
// ChangeSet rather than cloning a snapshot, per spec.md §4.E and §5.
package state

import "errors"

// ErrReadOnlyWrite is returned when Set or Delete is called while the
// ChangeSet is in read-only mode (spec.md §4.H).
var ErrReadOnlyWrite = errors.New("state: write attempted in read-only mode")

type entryState byte

const (
	entryPut entryState = iota
	entryDelete
)

type entry struct {
	state entryState
	value []byte
}

// ChangeSet is the overlay a Runtime executes against. Reads consult the
// overlay first, falling through to the root store on a miss. It is cheap
// to construct (an empty map) so nested triggers can share one by
// reference rather than cloning it, per spec.md §5's "Shared resource
// policy".
type ChangeSet struct {
	root       RootStore
	overlay    map[string]entry
	readOnly   bool
}

// New creates an empty ChangeSet over root.
func New(root RootStore) *ChangeSet {
	return &ChangeSet{root: root, overlay: make(map[string]entry)}
}

// SetReadOnly toggles read-only mode. In read-only mode, Set and Delete
// return ErrReadOnlyWrite instead of touching the overlay.
func (c *ChangeSet) SetReadOnly(ro bool) { c.readOnly = ro }

// ReadOnly reports whether the set is in read-only mode.
func (c *ChangeSet) ReadOnly() bool { return c.readOnly }

// Get returns the value for key, consulting the overlay before the root
// store. ok is false if the key is absent or tombstoned.
func (c *ChangeSet) Get(key []byte) (value []byte, ok bool) {
	if e, found := c.overlay[string(key)]; found {
		if e.state == entryDelete {
			return nil, false
		}
		return e.value, true
	}
	return c.root.Get(key)
}

// Set records a create/update of key in the overlay. It is a fault for the
// caller to allow this to be reached while ReadOnly() is true; Set itself
// enforces it by returning ErrReadOnlyWrite, which the Runtime/Interpreter
// surfaces as a VM fault.
func (c *ChangeSet) Set(key, value []byte) error {
	if c.readOnly {
		return ErrReadOnlyWrite
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	c.overlay[string(key)] = entry{state: entryPut, value: cp}
	return nil
}

// Delete records a tombstone for key in the overlay.
func (c *ChangeSet) Delete(key []byte) error {
	if c.readOnly {
		return ErrReadOnlyWrite
	}
	c.overlay[string(key)] = entry{state: entryDelete}
	return nil
}

// Any reports whether the overlay holds any pending mutation — used to
// detect a read-only-mode violation where a commit path was reached after
// all (spec.md §4.H).
func (c *ChangeSet) Any() bool { return len(c.overlay) > 0 }

// Merge atomically applies every overlay entry onto the root store. Callers
// must only call Merge after a successful Halt; a Fault discards the
// ChangeSet by simply dropping it instead.
func (c *ChangeSet) Merge() {
	for k, e := range c.overlay {
		switch e.state {
		case entryPut:
			c.root.Put([]byte(k), e.value)
		case entryDelete:
			c.root.Delete([]byte(k))
		}
	}
}

// Discard drops all pending overlay mutations without touching the root
// store, restoring the ChangeSet to its pre-transaction state. Equivalent
// in effect to constructing a fresh ChangeSet over the same root.
func (c *ChangeSet) Discard() {
	c.overlay = make(map[string]entry)
}
