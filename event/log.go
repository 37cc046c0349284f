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

package event

// Log is an append-only, per-transaction ordered sequence of events. It is
// exclusive to one Runtime instance; a child Runtime (trigger invocation)
// merges its own Log into the parent's on Halt, in program order.
type Log struct {
	events []Event
}

// NewLog creates an empty event log.
func NewLog() *Log { return &Log{} }

// Append records e as the next event in emission order.
func (l *Log) Append(e Event) { l.events = append(l.events, e) }

// Events returns the full ordered list of events recorded so far. The
// returned slice must not be mutated by the caller.
func (l *Log) Events() []Event { return l.events }

// Len reports the number of events recorded.
func (l *Log) Len() int { return len(l.events) }

// MergeFrom appends all of child's events, in their original order, after
// l's current contents — used when a trigger's child Runtime halts
// successfully (spec.md §4.E InvokeTrigger).
func (l *Log) MergeFrom(child *Log) {
	l.events = append(l.events, child.events...)
}
