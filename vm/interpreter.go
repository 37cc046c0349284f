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
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/probechain/corevm/common"
	"github.com/probechain/corevm/value"
)

// MaxFrameDepth bounds recursion through CALL/CTX so a runaway script faults
// instead of exhausting the Go call stack; in practice the gas budget
// always runs out first (spec.md §4.B: "maximum depth bounded by the gas
// budget"), this is a hard backstop.
const MaxFrameDepth = 1024

// Host is the set of operations the Interpreter needs from the owning
// Runtime: resolving named contexts, dispatching EXTCALL/native-method
// handlers, and charging gas. Keeping this as an interface (rather than
// importing the runtime package directly) avoids a dependency cycle
// between vm and runtime.
type Host interface {
	// LoadContext resolves name to a Context. ok is false if no such
	// context exists.
	LoadContext(name string) (*Context, bool)

	// ChargeOpcode debits the gas cost of op from the current budget.
	ChargeOpcode(op Opcode) error

	// ChargeNativeMethod debits the declared cost of a native contract
	// method before it runs.
	ChargeNativeMethod(contextName, method string) error

	// ExtCall dispatches a host-registered interop handler by name.
	ExtCall(name string, args []value.Value) (value.Value, error)

	// InBlockOp reports whether BlockCreate has put the runtime into
	// block-operation mode for this transaction.
	InBlockOp() bool

	// BlockOpContextAllowed reports whether contextName may be entered
	// while InBlockOp is true (spec.md §4.E: only the token contract).
	BlockOpContextAllowed(contextName string) bool

	// SetCurrentContext tells the Host which address/name is authoring
	// execution right now. The Interpreter calls this on every frame
	// transition (initial entry, CTX push or native dispatch, RET pop) so
	// that Notify's event attribution and the System-address witness check
	// stay correct no matter how many contexts bytecode has switched
	// through.
	SetCurrentContext(address common.Address, name string)
}

// Interpreter executes Contexts against a Host.
type Interpreter struct {
	host Host
}

// NewInterpreter constructs an Interpreter bound to host.
func NewInterpreter(host Host) *Interpreter {
	return &Interpreter{host: host}
}

// Run executes entry starting at entryAddress. If entry is native, method
// is invoked directly and its result returned. Otherwise args are pushed
// onto the initial frame's stack in reverse order followed by method (so
// method ends up on top), matching the CallContext calling convention of
// spec.md §4.E; the script itself is responsible for popping its method
// name and dispatching. args are also available positionally via Locals
// for scripts that prefer indexed access over stack popping.
func (in *Interpreter) Run(entry *Context, entryAddress common.Address, method string, args []value.Value) (value.Value, error) {
	in.host.SetCurrentContext(entryAddress, entry.Name)
	if entry.IsNative() {
		return entry.Native.Invoke(method, args)
	}

	frames := []*Frame{newFrame(entryAddress, entry, 0)}
	frames[0].Locals = args
	for i := len(args) - 1; i >= 0; i-- {
		_ = frames[0].stack.Push(args[i])
	}
	if method != "" {
		_ = frames[0].stack.Push(value.String(method))
	}
	pcs := []uint32{0}

	for {
		cur := frames[len(frames)-1]
		code := cur.Context.Script
		pc := pcs[len(pcs)-1]

		if int(pc) >= len(code) {
			return value.Value{}, fmt.Errorf("%w: pc %d past end of code (%d bytes)", ErrTruncatedBytecode, pc, len(code))
		}
		op := Opcode(code[pc])
		pc++
		if !op.Valid() {
			return value.Value{}, fmt.Errorf("%w: 0x%02x", ErrUnknownOpcode, byte(op))
		}
		if err := in.host.ChargeOpcode(op); err != nil {
			return value.Value{}, err
		}

		depth := len(pcs)
		halted, retVal, err := in.step(op, cur, &pc, &frames, &pcs)
		if err != nil {
			return value.Value{}, err
		}
		if len(frames) == 0 {
			return retVal, nil
		}
		if halted {
			continue
		}
		// CTX/CALL push a frame: the caller resumes after the instruction and
		// the callee keeps its start offset. RET pops one: the caller's saved
		// pc stands.
		if len(pcs) >= depth {
			pcs[depth-1] = pc
		}
	}
}

// step executes one decoded instruction against the current frame, mutating
// the frame/pc stacks in place for CTX/CALL/RET. halted is true once RET on
// the outermost frame has emptied the frame stack (len(*frames) == 0), at
// which point retVal is the final result.
func (in *Interpreter) step(op Opcode, f *Frame, pc *uint32, frames *[]*Frame, pcs *[]uint32) (halted bool, retVal value.Value, err error) {
	code := f.Context.Script

	readU16 := func() (uint16, error) {
		if int(*pc)+2 > len(code) {
			return 0, ErrTruncatedBytecode
		}
		v := binary.BigEndian.Uint16(code[*pc:])
		*pc += 2
		return v, nil
	}
	readU8 := func() (uint8, error) {
		if int(*pc)+1 > len(code) {
			return 0, ErrTruncatedBytecode
		}
		v := code[*pc]
		*pc++
		return v, nil
	}
	readName := func() (string, error) {
		n, err := readU8()
		if err != nil {
			return "", err
		}
		if int(*pc)+int(n) > len(code) {
			return "", ErrTruncatedBytecode
		}
		name := string(code[*pc : *pc+uint32(n)])
		*pc += uint32(n)
		return name, nil
	}

	switch op {
	case OpNOP:
		// no-op

	case OpPUSH:
		lit, n, lerr := value.Decode(code[*pc:])
		if lerr != nil {
			return false, value.Value{}, lerr
		}
		*pc += uint32(n)
		if err := f.stack.Push(lit); err != nil {
			return false, value.Value{}, err
		}

	case OpPOP:
		if _, err := f.stack.Pop(); err != nil {
			return false, value.Value{}, err
		}

	case OpDUP:
		top, err := f.stack.Peek()
		if err != nil {
			return false, value.Value{}, err
		}
		if err := f.stack.Push(top); err != nil {
			return false, value.Value{}, err
		}

	case OpSWAP:
		a, err := f.stack.Pop()
		if err != nil {
			return false, value.Value{}, err
		}
		b, err := f.stack.Pop()
		if err != nil {
			return false, value.Value{}, err
		}
		_ = f.stack.Push(a)
		_ = f.stack.Push(b)

	case OpADD, OpSUB, OpMUL, OpDIV, OpMOD, OpAND, OpOR, OpXOR, OpSHL, OpSHR:
		if err := in.binaryIntOp(op, f); err != nil {
			return false, value.Value{}, err
		}

	case OpNOT:
		top, err := f.stack.Pop()
		if err != nil {
			return false, value.Value{}, err
		}
		b, err := top.AsBool()
		if err != nil {
			return false, value.Value{}, err
		}
		_ = f.stack.Push(value.Bool(!b))

	case OpEQUAL, OpLT, OpGT, OpLTE, OpGTE:
		if err := in.compareOp(op, f); err != nil {
			return false, value.Value{}, err
		}

	case OpSIZE:
		top, err := f.stack.Pop()
		if err != nil {
			return false, value.Value{}, err
		}
		b, err := top.AsBytes()
		if err != nil {
			return false, value.Value{}, err
		}
		_ = f.stack.Push(value.IntegerFromInt64(int64(len(b))))

	case OpCAT:
		b, err := f.stack.Pop()
		if err != nil {
			return false, value.Value{}, err
		}
		a, err := f.stack.Pop()
		if err != nil {
			return false, value.Value{}, err
		}
		ab, err := a.AsBytes()
		if err != nil {
			return false, value.Value{}, err
		}
		bb, err := b.AsBytes()
		if err != nil {
			return false, value.Value{}, err
		}
		_ = f.stack.Push(value.Bytes(append(append([]byte{}, ab...), bb...)))

	case OpSUBSTR:
		length, err := f.stack.Pop()
		if err != nil {
			return false, value.Value{}, err
		}
		start, err := f.stack.Pop()
		if err != nil {
			return false, value.Value{}, err
		}
		src, err := f.stack.Pop()
		if err != nil {
			return false, value.Value{}, err
		}
		sb, err := src.AsBytes()
		if err != nil {
			return false, value.Value{}, err
		}
		si, err := start.AsInteger()
		if err != nil {
			return false, value.Value{}, err
		}
		li, err := length.AsInteger()
		if err != nil {
			return false, value.Value{}, err
		}
		lo, ln := int(si.Int64()), int(li.Int64())
		if lo < 0 || ln < 0 || lo+ln > len(sb) {
			return false, value.Value{}, fmt.Errorf("vm: SUBSTR out of range")
		}
		_ = f.stack.Push(value.Bytes(sb[lo : lo+ln]))

	case OpNEWSTRUCT:
		count, rerr := readU8()
		if rerr != nil {
			return false, value.Value{}, rerr
		}
		fields := make([]value.Field, count)
		for i := int(count) - 1; i >= 0; i-- {
			v, err := f.stack.Pop()
			if err != nil {
				return false, value.Value{}, err
			}
			name, err := f.stack.Pop()
			if err != nil {
				return false, value.Value{}, err
			}
			n, err := name.AsString()
			if err != nil {
				return false, value.Value{}, err
			}
			fields[i] = value.Field{Name: n, Value: v}
		}
		_ = f.stack.Push(value.Struct(fields))

	case OpCAST:
		kindByte, rerr := readU8()
		if rerr != nil {
			return false, value.Value{}, rerr
		}
		v, err := f.stack.Pop()
		if err != nil {
			return false, value.Value{}, err
		}
		cast, err := castValue(v, value.Kind(kindByte))
		if err != nil {
			return false, value.Value{}, err
		}
		_ = f.stack.Push(cast)

	case OpGET:
		key, err := f.stack.Pop()
		if err != nil {
			return false, value.Value{}, err
		}
		kb, err := key.AsBytes()
		if err != nil {
			return false, value.Value{}, err
		}
		if v, ok := f.get(kb); ok {
			_ = f.stack.Push(v)
		} else {
			_ = f.stack.Push(value.Bool(false))
		}

	case OpPUT:
		v, err := f.stack.Pop()
		if err != nil {
			return false, value.Value{}, err
		}
		key, err := f.stack.Pop()
		if err != nil {
			return false, value.Value{}, err
		}
		kb, err := key.AsBytes()
		if err != nil {
			return false, value.Value{}, err
		}
		f.put(kb, v)

	case OpLOAD:
		idx, rerr := readU8()
		if rerr != nil {
			return false, value.Value{}, rerr
		}
		if int(idx) >= len(f.Locals) {
			return false, value.Value{}, ErrInvalidLocal
		}
		_ = f.stack.Push(f.Locals[idx])

	case OpJMP:
		target, rerr := readU16()
		if rerr != nil {
			return false, value.Value{}, rerr
		}
		*pc = uint32(target)

	case OpJMPIF, OpJMPIFNOT:
		target, rerr := readU16()
		if rerr != nil {
			return false, value.Value{}, rerr
		}
		cond, err := f.stack.Pop()
		if err != nil {
			return false, value.Value{}, err
		}
		b, err := cond.AsBool()
		if err != nil {
			return false, value.Value{}, err
		}
		if (op == OpJMPIF && b) || (op == OpJMPIFNOT && !b) {
			*pc = uint32(target)
		}

	case OpSWITCH:
		caseCount, rerr := readU8()
		if rerr != nil {
			return false, value.Value{}, rerr
		}
		targets := make([]uint16, caseCount)
		for i := range targets {
			t, terr := readU16()
			if terr != nil {
				return false, value.Value{}, terr
			}
			targets[i] = t
		}
		defaultTarget, rerr := readU16()
		if rerr != nil {
			return false, value.Value{}, rerr
		}
		sel, err := f.stack.Pop()
		if err != nil {
			return false, value.Value{}, err
		}
		si, err := sel.AsInteger()
		if err != nil {
			return false, value.Value{}, err
		}
		idx := si.Int64()
		if idx >= 0 && idx < int64(len(targets)) {
			*pc = uint32(targets[idx])
		} else {
			*pc = uint32(defaultTarget)
		}

	case OpTHROW:
		msg, err := f.stack.Pop()
		if err != nil {
			return false, value.Value{}, err
		}
		s, _ := msg.AsString()
		return false, value.Value{}, fmt.Errorf("%w: %s", ErrThrow, s)

	case OpCALL:
		target, rerr := readU16()
		if rerr != nil {
			return false, value.Value{}, rerr
		}
		if len(*frames) >= MaxFrameDepth {
			return false, value.Value{}, ErrFrameLimit
		}
		nf := newFrame(f.EntryAddress, f.Context, *pc)
		*frames = append(*frames, nf)
		*pcs = append(*pcs, uint32(target))
		return false, value.Value{}, nil

	case OpRET:
		retv, err := f.stack.Pop()
		if err != nil {
			retv = value.Value{}
		}
		*frames = (*frames)[:len(*frames)-1]
		*pcs = (*pcs)[:len(*pcs)-1]
		if len(*frames) == 0 {
			return true, retv, nil
		}
		caller := (*frames)[len(*frames)-1]
		in.host.SetCurrentContext(caller.EntryAddress, caller.Context.Name)
		_ = caller.stack.Push(retv)

	case OpCTX:
		name, rerr := readName()
		if rerr != nil {
			return false, value.Value{}, rerr
		}
		method, rerr := readName()
		if rerr != nil {
			return false, value.Value{}, rerr
		}
		argc, rerr := readU8()
		if rerr != nil {
			return false, value.Value{}, rerr
		}
		if in.host.InBlockOp() && !in.host.BlockOpContextAllowed(name) {
			return false, value.Value{}, ErrNotInBlockOp
		}
		target, ok := in.host.LoadContext(name)
		if !ok {
			return false, value.Value{}, fmt.Errorf("%w: %s", ErrUnresolvedContext, name)
		}
		args := make([]value.Value, argc)
		for i := int(argc) - 1; i >= 0; i-- {
			v, err := f.stack.Pop()
			if err != nil {
				return false, value.Value{}, err
			}
			args[i] = v
		}
		if target.IsNative() {
			if err := in.host.ChargeNativeMethod(name, method); err != nil {
				return false, value.Value{}, err
			}
			in.host.SetCurrentContext(common.FromSystemName(name), name)
			result, err := target.Native.Invoke(method, args)
			in.host.SetCurrentContext(f.EntryAddress, f.Context.Name)
			if err != nil {
				return false, value.Value{}, err
			}
			_ = f.stack.Push(result)
			return false, value.Value{}, nil
		}
		if len(*frames) >= MaxFrameDepth {
			return false, value.Value{}, ErrFrameLimit
		}
		nf := newFrame(common.FromSystemName(name), target, *pc)
		nf.Locals = args
		for i := len(args) - 1; i >= 0; i-- {
			_ = nf.stack.Push(args[i])
		}
		if method != "" {
			_ = nf.stack.Push(value.String(method))
		}
		in.host.SetCurrentContext(nf.EntryAddress, name)
		*frames = append(*frames, nf)
		*pcs = append(*pcs, 0)

	case OpEXTCALL:
		name, rerr := readName()
		if rerr != nil {
			return false, value.Value{}, rerr
		}
		argc, rerr := readU8()
		if rerr != nil {
			return false, value.Value{}, rerr
		}
		args := make([]value.Value, argc)
		for i := int(argc) - 1; i >= 0; i-- {
			v, err := f.stack.Pop()
			if err != nil {
				return false, value.Value{}, err
			}
			args[i] = v
		}
		result, err := in.host.ExtCall(name, args)
		if err != nil {
			return false, value.Value{}, err
		}
		_ = f.stack.Push(result)

	default:
		return false, value.Value{}, fmt.Errorf("%w: 0x%02x", ErrUnknownOpcode, byte(op))
	}
	return false, value.Value{}, nil
}

func (in *Interpreter) binaryIntOp(op Opcode, f *Frame) error {
	rhs, err := f.stack.Pop()
	if err != nil {
		return err
	}
	lhs, err := f.stack.Pop()
	if err != nil {
		return err
	}
	a, err := lhs.AsInteger()
	if err != nil {
		return err
	}
	b, err := rhs.AsInteger()
	if err != nil {
		return err
	}
	result := new(big.Int)
	switch op {
	case OpADD:
		result.Add(a, b)
	case OpSUB:
		result.Sub(a, b)
	case OpMUL:
		result.Mul(a, b)
	case OpDIV:
		if b.Sign() == 0 {
			return fmt.Errorf("vm: division by zero")
		}
		result.Quo(a, b)
	case OpMOD:
		if b.Sign() == 0 {
			return fmt.Errorf("vm: division by zero")
		}
		result.Rem(a, b)
	case OpAND:
		result.And(a, b)
	case OpOR:
		result.Or(a, b)
	case OpXOR:
		result.Xor(a, b)
	case OpSHL:
		result.Lsh(a, uint(b.Uint64()))
	case OpSHR:
		result.Rsh(a, uint(b.Uint64()))
	}
	return f.stack.Push(value.Integer(result))
}

func (in *Interpreter) compareOp(op Opcode, f *Frame) error {
	rhs, err := f.stack.Pop()
	if err != nil {
		return err
	}
	lhs, err := f.stack.Pop()
	if err != nil {
		return err
	}
	if op == OpEQUAL {
		return f.stack.Push(value.Bool(lhs.Equal(rhs)))
	}
	cmp, err := value.Compare(lhs, rhs)
	if err != nil {
		return err
	}
	var result bool
	switch op {
	case OpLT:
		result = cmp < 0
	case OpGT:
		result = cmp > 0
	case OpLTE:
		result = cmp <= 0
	case OpGTE:
		result = cmp >= 0
	}
	return f.stack.Push(value.Bool(result))
}

func castValue(v value.Value, target value.Kind) (value.Value, error) {
	switch target {
	case value.KindInteger:
		i, err := v.AsInteger()
		if err != nil {
			return value.Value{}, err
		}
		return value.Integer(i), nil
	case value.KindBytes:
		b, err := v.AsBytes()
		if err != nil {
			return value.Value{}, err
		}
		return value.Bytes(b), nil
	case value.KindString:
		s, err := v.AsString()
		if err != nil {
			return value.Value{}, err
		}
		return value.String(s), nil
	case value.KindBool:
		b, err := v.AsBool()
		if err != nil {
			return value.Value{}, err
		}
		return value.Bool(b), nil
	case value.KindAddress:
		a, err := v.AsAddress()
		if err != nil {
			return value.Value{}, err
		}
		return value.AddressValue(a), nil
	default:
		return value.Value{}, fmt.Errorf("%w: cannot cast to %s", ErrInvalidCast, target)
	}
}
