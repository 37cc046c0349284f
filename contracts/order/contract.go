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

package order

import (
	"fmt"
	"math/big"

	"golang.org/x/crypto/sha3"

	"github.com/probechain/corevm/common"
	"github.com/probechain/corevm/event"
	"github.com/probechain/corevm/value"
)

// Host is the subset of the Runtime the order contract needs: emitting
// events under its own authority and learning who is calling it.
type Host interface {
	Notify(kind event.Kind, address common.Address, data []byte) error
	EntryAddress() common.Address
}

const (
	costCreate = 5
	costCancel = 2
)

// Contract is the native "order" context: spec.md's order matching engine,
// keyed by trading pair (SPEC_FULL.md §4.P).
type Contract struct {
	host  Host
	books map[string]*book
}

// New constructs an empty order contract bound to host.
func New(host Host) *Contract {
	return &Contract{host: host, books: make(map[string]*book)}
}

// Cost implements vm.NativeHandler.
func (c *Contract) Cost(method string) uint64 {
	switch method {
	case "Create":
		return costCreate
	case "Cancel":
		return costCancel
	default:
		return 1
	}
}

// Invoke implements vm.NativeHandler.
func (c *Contract) Invoke(method string, args []value.Value) (value.Value, error) {
	switch method {
	case "Create":
		return c.create(args)
	case "Cancel":
		return c.cancel(args)
	default:
		return value.Value{}, fmt.Errorf("order: unknown method %s", method)
	}
}

// create places a limit order and matches it against the resting book,
// emitting OrderCreated and any resulting OrderFilled events.
func (c *Contract) create(args []value.Value) (value.Value, error) {
	if len(args) != 5 {
		return value.Value{}, fmt.Errorf("order: Create wants {base, quote, side, price, amount}")
	}
	base, err := args[0].AsString()
	if err != nil {
		return value.Value{}, err
	}
	quote, err := args[1].AsString()
	if err != nil {
		return value.Value{}, err
	}
	sideInt, err := args[2].AsInteger()
	if err != nil {
		return value.Value{}, err
	}
	price, err := args[3].AsInteger()
	if err != nil {
		return value.Value{}, err
	}

	var amount *big.Int
	if len(args) > 4 {
		amount, err = args[4].AsInteger()
		if err != nil {
			return value.Value{}, err
		}
	} else {
		amount = big.NewInt(0)
	}

	pair := Pair{Base: base, Quote: quote}
	side := Side(sideInt.Uint64() & 1)
	owner := c.host.EntryAddress()

	o := &Order{
		Owner:  owner,
		Pair:   pair,
		Side:   side,
		Price:  new(big.Int).Set(price),
		Amount: new(big.Int).Set(amount),
		Filled: big.NewInt(0),
		Status: StatusOpen,
	}
	o.ID = orderID(o)

	b, ok := c.books[pair.key()]
	if !ok {
		b = newBook(pair)
		c.books[pair.key()] = b
	}

	if err := c.host.Notify(event.OrderCreated, owner, encodeOrderCreated(o)); err != nil {
		return value.Value{}, err
	}

	fills := match(b, o)
	for _, f := range fills {
		if err := c.host.Notify(event.OrderFilled, f.Maker, encodeFill(f)); err != nil {
			return value.Value{}, err
		}
	}

	if !o.IsFilled() {
		o.Status = StatusOpen
		if o.Filled.Sign() > 0 {
			o.Status = StatusPartial
		}
		b.add(o)
	} else {
		o.Status = StatusFilled
	}

	return value.Bytes(o.ID[:]), nil
}

// cancel removes a resting order, emitting OrderCancelled.
func (c *Contract) cancel(args []value.Value) (value.Value, error) {
	if len(args) != 3 {
		return value.Value{}, fmt.Errorf("order: Cancel wants {base, quote, orderID}")
	}
	base, err := args[0].AsString()
	if err != nil {
		return value.Value{}, err
	}
	quote, err := args[1].AsString()
	if err != nil {
		return value.Value{}, err
	}
	idBytes, err := args[2].AsBytes()
	if err != nil {
		return value.Value{}, err
	}
	var id [32]byte
	copy(id[:], idBytes)

	b, ok := c.books[(Pair{Base: base, Quote: quote}).key()]
	if !ok {
		return value.Value{}, fmt.Errorf("order: unknown pair %s/%s", base, quote)
	}
	o := b.remove(id)
	if o == nil {
		return value.Value{}, fmt.Errorf("order: unknown order")
	}
	o.Status = StatusCancelled
	if err := c.host.Notify(event.OrderCancelled, o.Owner, encodeOrderCreated(o)); err != nil {
		return value.Value{}, err
	}
	return value.Bool(true), nil
}

// match crosses incoming against the opposite side of b in price-time
// priority, mutating resting orders' Filled in place and returning the
// trades produced.
func match(b *book, incoming *Order) []Fill {
	var fills []Fill
	// Iterate over a copy: b.remove shifts the live slice when a level empties.
	levels := append([]*priceLevel(nil), b.opposite(incoming.Side)...)
	for _, lvl := range levels {
		if incoming.IsFilled() {
			break
		}
		if !crosses(incoming.Side, incoming.Price, lvl.Price) {
			break
		}
		i := 0
		for i < len(lvl.Orders) {
			resting := lvl.Orders[i]
			if incoming.IsFilled() {
				break
			}
			tradeAmount := new(big.Int).Set(incoming.Remaining())
			if resting.Remaining().Cmp(tradeAmount) < 0 {
				tradeAmount = new(big.Int).Set(resting.Remaining())
			}
			incoming.Filled.Add(incoming.Filled, tradeAmount)
			resting.Filled.Add(resting.Filled, tradeAmount)

			maker, taker := resting.Owner, incoming.Owner
			fills = append(fills, Fill{
				MakerID: resting.ID,
				TakerID: incoming.ID,
				Maker:   maker,
				Taker:   taker,
				Pair:    b.pair,
				Price:   new(big.Int).Set(lvl.Price),
				Amount:  tradeAmount,
			})

			if resting.IsFilled() {
				resting.Status = StatusFilled
				b.remove(resting.ID)
			} else {
				resting.Status = StatusPartial
				i++
			}
		}
	}
	return fills
}

func orderID(o *Order) [32]byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(o.Owner.Bytes())
	h.Write([]byte(o.Pair.Base))
	h.Write([]byte(o.Pair.Quote))
	h.Write([]byte{byte(o.Side)})
	h.Write(o.Price.Bytes())
	h.Write(o.Amount.Bytes())
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
