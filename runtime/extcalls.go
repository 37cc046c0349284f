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

package runtime

import (
	"fmt"

	"github.com/probechain/corevm/event"
	"github.com/probechain/corevm/value"
)

// builtinExtCallHandler is like ExtCallHandler but resolved against the
// Runtime instance actually making the call, rather than the one that
// registered it. InvokeTrigger's child Runtimes share their parent's
// extcalls map by reference without re-registering, so a handler bound
// to one *Runtime via a method value would keep attributing Notify and
// IsWitness to the parent's context forever; dispatching through the
// caller's own receiver keeps attribution correct across trigger calls.
type builtinExtCallHandler func(r *Runtime, args []value.Value) (value.Value, error)

// builtinExtCalls are the Runtime operations EXTCALL can dispatch to by
// name, wiring Notify, ReadOracle, IsWitness, GetRandomNumber,
// GetTokenPrice, GetTokenQuote, and TransferTokens up for ordinary
// contract bytecode rather than only Go-level callers. Argument and
// return encoding follows value.Value's struct/primitive forms, matching
// how notify.go already packs GasEscrow/GasPayment payloads.
var builtinExtCalls = map[string]builtinExtCallHandler{
	"Notify":          (*Runtime).extCallNotify,
	"ReadOracle":      (*Runtime).extCallReadOracle,
	"IsWitness":       (*Runtime).extCallIsWitness,
	"GetRandomNumber": (*Runtime).extCallGetRandomNumber,
	"GetTokenPrice":   (*Runtime).extCallGetTokenPrice,
	"GetTokenQuote":   (*Runtime).extCallGetTokenQuote,
	"TransferTokens":  (*Runtime).extCallTransferTokens,
}

func (r *Runtime) extCallNotify(args []value.Value) (value.Value, error) {
	if len(args) != 3 {
		return value.Value{}, fmt.Errorf("runtime: Notify wants 3 args, got %d", len(args))
	}
	kindInt, err := args[0].AsInteger()
	if err != nil {
		return value.Value{}, err
	}
	address, err := args[1].AsAddress()
	if err != nil {
		return value.Value{}, err
	}
	data, err := args[2].AsBytes()
	if err != nil {
		return value.Value{}, err
	}
	if err := r.Notify(event.Kind(kindInt.Uint64()), address, data); err != nil {
		return value.Value{}, err
	}
	return value.Bool(true), nil
}

func (r *Runtime) extCallReadOracle(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, fmt.Errorf("runtime: ReadOracle wants 1 arg, got %d", len(args))
	}
	url, err := args[0].AsString()
	if err != nil {
		return value.Value{}, err
	}
	data, err := r.oracle.Read(r.time, url)
	if err != nil {
		return value.Value{}, err
	}
	return value.Bytes(data), nil
}

func (r *Runtime) extCallIsWitness(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, fmt.Errorf("runtime: IsWitness wants 1 arg, got %d", len(args))
	}
	address, err := args[0].AsAddress()
	if err != nil {
		return value.Value{}, err
	}
	return value.Bool(r.IsWitness(address)), nil
}

func (r *Runtime) extCallGetRandomNumber(args []value.Value) (value.Value, error) {
	if len(args) != 0 {
		return value.Value{}, fmt.Errorf("runtime: GetRandomNumber takes no args, got %d", len(args))
	}
	return value.IntegerFromInt64(r.GetRandomNumber()), nil
}

func (r *Runtime) extCallGetTokenPrice(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, fmt.Errorf("runtime: GetTokenPrice wants 1 arg, got %d", len(args))
	}
	symbol, err := args[0].AsString()
	if err != nil {
		return value.Value{}, err
	}
	price, err := r.GetTokenPrice(symbol)
	if err != nil {
		return value.Value{}, err
	}
	return value.Integer(price), nil
}

func (r *Runtime) extCallGetTokenQuote(args []value.Value) (value.Value, error) {
	if len(args) != 3 {
		return value.Value{}, fmt.Errorf("runtime: GetTokenQuote wants 3 args, got %d", len(args))
	}
	base, err := args[0].AsString()
	if err != nil {
		return value.Value{}, err
	}
	quote, err := args[1].AsString()
	if err != nil {
		return value.Value{}, err
	}
	amount, err := args[2].AsInteger()
	if err != nil {
		return value.Value{}, err
	}
	result, err := r.GetTokenQuote(base, quote, amount)
	if err != nil {
		return value.Value{}, err
	}
	return value.Integer(result), nil
}

func (r *Runtime) extCallTransferTokens(args []value.Value) (value.Value, error) {
	if len(args) != 4 {
		return value.Value{}, fmt.Errorf("runtime: TransferTokens wants 4 args, got %d", len(args))
	}
	symbol, err := args[0].AsString()
	if err != nil {
		return value.Value{}, err
	}
	source, err := args[1].AsAddress()
	if err != nil {
		return value.Value{}, err
	}
	destination, err := args[2].AsAddress()
	if err != nil {
		return value.Value{}, err
	}
	amount, err := args[3].AsBytes()
	if err != nil {
		return value.Value{}, err
	}
	if err := r.nexus.TransferTokens(symbol, source, destination, amount); err != nil {
		return value.Value{}, err
	}
	return value.Bool(true), nil
}
