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

	"github.com/probechain/corevm/common"
	"github.com/probechain/corevm/event"
	"github.com/probechain/corevm/value"
)

// eventAuthority maps an EventKind to the one contract name allowed to
// emit it. Kinds absent from this table may be emitted by any contract
// (spec.md §4.E).
var eventAuthority = map[event.Kind]string{
	event.GasEscrow:         gasContractName,
	event.GasPayment:        gasContractName,
	event.GasLoan:           gasContractName,
	event.BlockCreate:       blockContractName,
	event.BlockClose:        blockContractName,
	event.ValidatorSwitch:   blockContractName,
	event.PollCreated:       consensusContractName,
	event.PollClosed:        consensusContractName,
	event.PollVote:          consensusContractName,
	event.ChainCreate:       nexusContractName,
	event.TokenCreate:       nexusContractName,
	event.FeedCreate:        nexusContractName,
	event.FileCreate:        storageContractName,
	event.FileDelete:        storageContractName,
	event.ValidatorPropose:  validatorContractName,
	event.ValidatorElect:    validatorContractName,
	event.ValidatorRemove:   validatorContractName,
	event.BrokerRequest:     interopContractName,
	event.ValueCreate:       governanceContractName,
	event.ValueUpdate:       governanceContractName,
	event.OrderCreated:      orderContractName,
	event.OrderFilled:       orderContractName,
	event.OrderCancelled:    orderContractName,
}

// Notify implements spec.md §4.E's Notify operation: it appends an event
// authored by CurrentContext, enforcing the authorization table and the
// Gas Meter / block-operation side effects some kinds carry.
func (r *Runtime) Notify(kind event.Kind, address common.Address, data []byte) error {
	if required, ok := eventAuthority[kind]; ok && required != r.currentName {
		return fmt.Errorf("%w: %s only in %s contract", ErrUnauthorizedEvent, kind, required)
	}

	switch kind {
	case event.GasEscrow:
		price, amount, target, err := decodeGasEscrow(data)
		if err != nil {
			return err
		}
		if err := r.gas.Escrow(price, amount, target); err != nil {
			return err
		}
	case event.GasPayment:
		amount, payer, err := decodeGasPayment(data)
		if err != nil {
			return err
		}
		r.gas.Pay(amount, payer, r.chainAddress)
	case event.BlockCreate:
		r.blockOp = true
		r.gas.BlockOp = true
	case event.BlockClose:
		r.blockOp = false
		r.gas.BlockOp = false
	}

	r.events.Append(event.New(kind, address, r.currentName, data))
	return nil
}

// EncodeGasEscrow builds a GasEscrow event payload: {price, amount, address}.
func EncodeGasEscrow(price, amount uint64, target common.Address) []byte {
	v := value.Struct([]value.Field{
		{Name: "price", Value: value.IntegerFromInt64(int64(price))},
		{Name: "amount", Value: value.IntegerFromInt64(int64(amount))},
		{Name: "address", Value: value.AddressValue(target)},
	})
	return value.Encode(v)
}

// EncodeGasPayment builds a GasPayment event payload: {amount, address}.
func EncodeGasPayment(amount uint64, payer common.Address) []byte {
	v := value.Struct([]value.Field{
		{Name: "amount", Value: value.IntegerFromInt64(int64(amount))},
		{Name: "address", Value: value.AddressValue(payer)},
	})
	return value.Encode(v)
}

func decodeGasEscrow(data []byte) (price, amount uint64, target common.Address, err error) {
	v, _, derr := value.Decode(data)
	if derr != nil {
		return 0, 0, common.Address{}, derr
	}
	fields, ferr := v.AsStruct()
	if ferr != nil {
		return 0, 0, common.Address{}, ferr
	}
	for _, f := range fields {
		switch f.Name {
		case "price":
			i, e := f.Value.AsInteger()
			if e != nil {
				return 0, 0, common.Address{}, e
			}
			price = i.Uint64()
		case "amount":
			i, e := f.Value.AsInteger()
			if e != nil {
				return 0, 0, common.Address{}, e
			}
			amount = i.Uint64()
		case "address":
			a, e := f.Value.AsAddress()
			if e != nil {
				return 0, 0, common.Address{}, e
			}
			target = a
		}
	}
	return price, amount, target, nil
}

func decodeGasPayment(data []byte) (amount uint64, payer common.Address, err error) {
	v, _, derr := value.Decode(data)
	if derr != nil {
		return 0, common.Address{}, derr
	}
	fields, ferr := v.AsStruct()
	if ferr != nil {
		return 0, common.Address{}, ferr
	}
	for _, f := range fields {
		switch f.Name {
		case "amount":
			i, e := f.Value.AsInteger()
			if e != nil {
				return 0, common.Address{}, e
			}
			amount = i.Uint64()
		case "address":
			a, e := f.Value.AsAddress()
			if e != nil {
				return 0, common.Address{}, e
			}
			payer = a
		}
	}
	return amount, payer, nil
}
