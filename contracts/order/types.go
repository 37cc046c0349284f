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

// Package order implements the "order" native contract: a limit order book
// per trading pair, matched price-time priority, emitting
// OrderCreated/OrderFilled/OrderCancelled events. It is a vm.NativeHandler
// the Runtime dispatches CTX("order", ...) calls into.
package order

import (
	"math/big"

	"github.com/probechain/corevm/common"
)

// Side is which direction an order trades.
type Side uint8

const (
	SideBuy  Side = 0
	SideSell Side = 1
)

// Status is an order's lifecycle state.
type Status uint8

const (
	StatusOpen      Status = 0
	StatusFilled    Status = 1
	StatusPartial   Status = 2
	StatusCancelled Status = 3
)

// Pair identifies a base/quote token symbol pair.
type Pair struct {
	Base  string
	Quote string
}

func (p Pair) key() string { return p.Base + "/" + p.Quote }

// Order is a resting or historical limit order.
type Order struct {
	ID     [32]byte
	Owner  common.Address
	Pair   Pair
	Side   Side
	Price  *big.Int
	Amount *big.Int
	Filled *big.Int
	Status Status
}

// Remaining returns the unfilled amount of the order.
func (o *Order) Remaining() *big.Int { return new(big.Int).Sub(o.Amount, o.Filled) }

// IsFilled reports whether the order has no remaining amount.
func (o *Order) IsFilled() bool { return o.Filled.Cmp(o.Amount) >= 0 }

// Fill is one match produced while placing an order.
type Fill struct {
	MakerID [32]byte
	TakerID [32]byte
	Maker   common.Address
	Taker   common.Address
	Pair    Pair
	Price   *big.Int
	Amount  *big.Int
}
