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

import "github.com/probechain/corevm/value"

// encodeOrderCreated builds the OrderCreated/OrderCancelled event payload:
// {id, base, quote, side, price, amount, filled, status}.
func encodeOrderCreated(o *Order) []byte {
	v := value.Struct([]value.Field{
		{Name: "id", Value: value.Bytes(o.ID[:])},
		{Name: "base", Value: value.String(o.Pair.Base)},
		{Name: "quote", Value: value.String(o.Pair.Quote)},
		{Name: "side", Value: value.IntegerFromInt64(int64(o.Side))},
		{Name: "price", Value: value.Integer(o.Price)},
		{Name: "amount", Value: value.Integer(o.Amount)},
		{Name: "filled", Value: value.Integer(o.Filled)},
		{Name: "status", Value: value.IntegerFromInt64(int64(o.Status))},
	})
	return value.Encode(v)
}

// encodeFill builds the OrderFilled event payload: {makerID, takerID,
// base, quote, price, amount}.
func encodeFill(f Fill) []byte {
	v := value.Struct([]value.Field{
		{Name: "makerID", Value: value.Bytes(f.MakerID[:])},
		{Name: "takerID", Value: value.Bytes(f.TakerID[:])},
		{Name: "base", Value: value.String(f.Pair.Base)},
		{Name: "quote", Value: value.String(f.Pair.Quote)},
		{Name: "price", Value: value.Integer(f.Price)},
		{Name: "amount", Value: value.Integer(f.Amount)},
	})
	return value.Encode(v)
}
