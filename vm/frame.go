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

package vm

import (
	"github.com/probechain/corevm/common"
	"github.com/probechain/corevm/value"
)

// Context is an executable unit loaded by CTX/CALL: either user-deployed
// script bytes or a native handler implemented in host code, per
// spec.md §3.
type Context struct {
	Name   string
	Script []byte
	Native NativeHandler
}

// IsNative reports whether the context is a built-in handler rather than
// interpreted bytecode.
func (c *Context) IsNative() bool { return c.Native != nil }

// NativeHandler implements a built-in contract's named methods, each with
// its own declared gas cost charged by the Host before Invoke runs.
type NativeHandler interface {
	Invoke(method string, args []value.Value) (value.Value, error)
	Cost(method string) uint64
}

// Frame is one entry in the call stack: the address the current context was
// entered under, the context itself, the bytecode offset to resume the
// caller at, and the frame-local key-value memory map addressed by
// GET/PUT/LOAD.
type Frame struct {
	EntryAddress common.Address
	Context      *Context
	ReturnOffset uint32
	Locals       []value.Value

	stack  *Stack
	memory map[string]value.Value
}

// newFrame constructs a Frame ready for execution.
func newFrame(entry common.Address, ctx *Context, returnOffset uint32) *Frame {
	return &Frame{
		EntryAddress: entry,
		Context:      ctx,
		ReturnOffset: returnOffset,
		stack:        newStack(),
		memory:       make(map[string]value.Value),
	}
}

// get implements the GET opcode: a read against the frame-local memory map.
func (f *Frame) get(key []byte) (value.Value, bool) {
	v, ok := f.memory[string(key)]
	return v, ok
}

// put implements the PUT opcode: a write into the frame-local memory map.
func (f *Frame) put(key []byte, v value.Value) {
	f.memory[string(key)] = v
}
