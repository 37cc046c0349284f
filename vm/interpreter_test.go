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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/probechain/corevm/common"
	"github.com/probechain/corevm/value"
)

// stubHost is a minimal Host used to drive the interpreter in isolation
// from the runtime package's gas meter and contexts.
type stubHost struct {
	gasUsed      uint64
	gasLimit     uint64
	contexts     map[string]*Context
	blockOp      bool
	allowedCtx   string
	extcalls     map[string]value.Value
	contextNames []string
}

func newStubHost() *stubHost {
	return &stubHost{
		gasLimit: 1_000_000,
		contexts: make(map[string]*Context),
		extcalls: make(map[string]value.Value),
	}
}

func (h *stubHost) LoadContext(name string) (*Context, bool) {
	c, ok := h.contexts[name]
	return c, ok
}

func (h *stubHost) ChargeOpcode(op Opcode) error {
	h.gasUsed += op.GasCost()
	if h.gasUsed > h.gasLimit {
		return ErrOutOfGas
	}
	return nil
}

func (h *stubHost) ChargeNativeMethod(contextName, method string) error { return nil }

func (h *stubHost) ExtCall(name string, args []value.Value) (value.Value, error) {
	return h.extcalls[name], nil
}

func (h *stubHost) InBlockOp() bool { return h.blockOp }

func (h *stubHost) BlockOpContextAllowed(name string) bool { return name == h.allowedCtx }

func (h *stubHost) SetCurrentContext(_ common.Address, name string) {
	h.contextNames = append(h.contextNames, name)
}

func assembleCTX(name, method string, argc uint8) []byte {
	out := []byte{byte(OpCTX), byte(len(name))}
	out = append(out, name...)
	out = append(out, byte(len(method)))
	out = append(out, method...)
	out = append(out, argc)
	return out
}

func TestArithmeticAddition(t *testing.T) {
	code := []byte{}
	code = append(code, byte(OpPUSH))
	code = append(code, value.Encode(value.IntegerFromInt64(2))...)
	code = append(code, byte(OpPUSH))
	code = append(code, value.Encode(value.IntegerFromInt64(3))...)
	code = append(code, byte(OpADD))
	code = append(code, byte(OpRET))

	host := newStubHost()
	ctx := &Context{Name: "main", Script: code}
	interp := NewInterpreter(host)
	result, err := interp.Run(ctx, common.NullAddress, "", nil)
	require.NoError(t, err)
	n, err := result.AsInteger()
	require.NoError(t, err)
	require.Equal(t, int64(5), n.Int64())
}

func TestDivisionByZeroFaults(t *testing.T) {
	code := []byte{}
	code = append(code, byte(OpPUSH))
	code = append(code, value.Encode(value.IntegerFromInt64(1))...)
	code = append(code, byte(OpPUSH))
	code = append(code, value.Encode(value.IntegerFromInt64(0))...)
	code = append(code, byte(OpDIV))
	code = append(code, byte(OpRET))

	host := newStubHost()
	ctx := &Context{Name: "main", Script: code}
	interp := NewInterpreter(host)
	_, err := interp.Run(ctx, common.NullAddress, "", nil)
	require.Error(t, err)
}

func TestZeroCostOpcodesRunWithZeroGasLimit(t *testing.T) {
	code := []byte{byte(OpNOP), byte(OpNOP), byte(OpNOP), byte(OpRET)}
	host := newStubHost()
	host.gasLimit = 0
	ctx := &Context{Name: "main", Script: code}
	interp := NewInterpreter(host)
	_, err := interp.Run(ctx, common.NullAddress, "", nil)
	require.NoError(t, err) // NOP costs 0 gas, so this should still succeed
}

func TestCTXIntoUnresolvedContextFaults(t *testing.T) {
	code := assembleCTX("missing", "run", 0)
	code = append(code, byte(OpRET))
	host := newStubHost()
	ctx := &Context{Name: "main", Script: code}
	interp := NewInterpreter(host)
	_, err := interp.Run(ctx, common.NullAddress, "", nil)
	require.ErrorIs(t, err, ErrUnresolvedContext)
}

func TestCTXRestrictedDuringBlockOp(t *testing.T) {
	code := assembleCTX("validator", "run", 0)
	code = append(code, byte(OpRET))
	host := newStubHost()
	host.blockOp = true
	host.allowedCtx = "token"
	host.contexts["validator"] = &Context{Name: "validator", Script: []byte{byte(OpRET)}}
	ctx := &Context{Name: "block", Script: code}
	interp := NewInterpreter(host)
	_, err := interp.Run(ctx, common.NullAddress, "", nil)
	require.ErrorIs(t, err, ErrNotInBlockOp)
}

func TestCTXUpdatesAndRestoresCurrentContext(t *testing.T) {
	callee := []byte{byte(OpRET)}
	caller := assembleCTX("callee", "run", 0)
	caller = append(caller, byte(OpRET))

	host := newStubHost()
	host.contexts["callee"] = &Context{Name: "callee", Script: callee}
	ctx := &Context{Name: "caller", Script: caller}
	interp := NewInterpreter(host)
	_, err := interp.Run(ctx, common.NullAddress, "", nil)
	require.NoError(t, err)
	require.Equal(t, []string{"caller", "callee", "caller"}, host.contextNames)
}

func TestCTXNativeDispatchRestoresCurrentContextOnReturn(t *testing.T) {
	caller := assembleCTX("native", "run", 0)
	caller = append(caller, byte(OpRET))

	host := newStubHost()
	host.contexts["native"] = &Context{Name: "native", Native: recordingNative{}}
	ctx := &Context{Name: "caller", Script: caller}
	interp := NewInterpreter(host)
	_, err := interp.Run(ctx, common.NullAddress, "", nil)
	require.NoError(t, err)
	require.Equal(t, []string{"caller", "native", "caller"}, host.contextNames)
}

type recordingNative struct{}

func (recordingNative) Invoke(method string, args []value.Value) (value.Value, error) {
	return value.Bool(true), nil
}
func (recordingNative) Cost(method string) uint64 { return 1 }

func TestStackOverflowFaults(t *testing.T) {
	var code []byte
	for i := 0; i < MaxStackDepth+1; i++ {
		code = append(code, byte(OpPUSH))
		code = append(code, value.Encode(value.IntegerFromInt64(1))...)
	}
	code = append(code, byte(OpRET))
	host := newStubHost()
	ctx := &Context{Name: "main", Script: code}
	interp := NewInterpreter(host)
	_, err := interp.Run(ctx, common.NullAddress, "", nil)
	require.ErrorIs(t, err, ErrStackOverflow)
}
