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

import "errors"

// All of these are VM faults per spec.md §7: terminal, and the caller
// (runtime package) is responsible for discarding the Change Set and event
// log and recording the triggering opcode in the receipt.
var (
	ErrUnknownOpcode      = errors.New("vm: unknown opcode")
	ErrOutOfGas           = errors.New("vm: out of gas")
	ErrUnresolvedContext  = errors.New("vm: unresolved context")
	ErrUnregisteredMethod = errors.New("vm: unregistered extcall method")
	ErrTruncatedBytecode  = errors.New("vm: truncated bytecode")
	ErrInvalidConstant    = errors.New("vm: invalid constant pool index")
	ErrInvalidLocal       = errors.New("vm: invalid local index")
	ErrInvalidCast        = errors.New("vm: invalid cast")
	ErrThrow              = errors.New("vm: THROW executed")
	ErrFrameLimit         = errors.New("vm: frame depth limit exceeded")
	ErrNotInBlockOp       = errors.New("vm: context not available in block operations")
)
