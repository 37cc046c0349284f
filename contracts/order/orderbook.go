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
	"math/big"
	"sort"
)

// priceLevel groups the FIFO queue of orders resting at one price.
type priceLevel struct {
	Price  *big.Int
	Orders []*Order
}

// book is a single trading pair's bids (descending by price) and asks
// (ascending by price).
type book struct {
	pair  Pair
	bids  []*priceLevel
	asks  []*priceLevel
	index map[[32]byte]*Order
}

func newBook(pair Pair) *book {
	return &book{pair: pair, index: make(map[[32]byte]*Order)}
}

func (b *book) add(o *Order) {
	b.index[o.ID] = o
	if o.Side == SideBuy {
		b.bids = insertLevel(b.bids, o, func(a, c *big.Int) bool { return a.Cmp(c) > 0 })
	} else {
		b.asks = insertLevel(b.asks, o, func(a, c *big.Int) bool { return a.Cmp(c) < 0 })
	}
}

func insertLevel(levels []*priceLevel, o *Order, less func(a, b *big.Int) bool) []*priceLevel {
	for _, lvl := range levels {
		if lvl.Price.Cmp(o.Price) == 0 {
			lvl.Orders = append(lvl.Orders, o)
			return levels
		}
	}
	levels = append(levels, &priceLevel{Price: new(big.Int).Set(o.Price), Orders: []*Order{o}})
	sort.Slice(levels, func(i, j int) bool { return less(levels[i].Price, levels[j].Price) })
	return levels
}

func (b *book) remove(id [32]byte) *Order {
	o, ok := b.index[id]
	if !ok {
		return nil
	}
	delete(b.index, id)
	var levels *[]*priceLevel
	if o.Side == SideBuy {
		levels = &b.bids
	} else {
		levels = &b.asks
	}
	for i, lvl := range *levels {
		if lvl.Price.Cmp(o.Price) != 0 {
			continue
		}
		for j, entry := range lvl.Orders {
			if entry.ID == id {
				lvl.Orders = append(lvl.Orders[:j], lvl.Orders[j+1:]...)
				break
			}
		}
		if len(lvl.Orders) == 0 {
			*levels = append((*levels)[:i], (*levels)[i+1:]...)
		}
		break
	}
	return o
}

// opposite returns the levels a new order of side should match against.
func (b *book) opposite(side Side) []*priceLevel {
	if side == SideBuy {
		return b.asks
	}
	return b.bids
}

// crosses reports whether a resting order at restingPrice is willing to
// trade with an incoming order of side at incomingPrice.
func crosses(side Side, incomingPrice, restingPrice *big.Int) bool {
	if side == SideBuy {
		return incomingPrice.Cmp(restingPrice) >= 0
	}
	return incomingPrice.Cmp(restingPrice) <= 0
}
