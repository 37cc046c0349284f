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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/probechain/corevm/common"
	"github.com/probechain/corevm/event"
	"github.com/probechain/corevm/value"
)

// stubHost records every Notify call and reports a fixed caller address,
// standing in for the Runtime in isolation from the VM.
type stubHost struct {
	entry  common.Address
	events []stubEvent
}

type stubEvent struct {
	kind    event.Kind
	address common.Address
	data    []byte
}

func (h *stubHost) Notify(kind event.Kind, address common.Address, data []byte) error {
	h.events = append(h.events, stubEvent{kind: kind, address: address, data: data})
	return nil
}

func (h *stubHost) EntryAddress() common.Address { return h.entry }

func createArgs(base, quote string, side int64, price, amount int64) []value.Value {
	return []value.Value{
		value.String(base),
		value.String(quote),
		value.IntegerFromInt64(side),
		value.IntegerFromInt64(price),
		value.IntegerFromInt64(amount),
	}
}

func TestCreateRestingOrderEmitsOrderCreatedOnly(t *testing.T) {
	host := &stubHost{entry: common.FromSystemName("alice")}
	c := New(host)

	_, err := c.Invoke("Create", createArgs("BTC", "USD", int64(SideBuy), 100, 10))
	require.NoError(t, err)
	require.Len(t, host.events, 1)
	require.Equal(t, event.OrderCreated, host.events[0].kind)
}

func TestCreateCrossingOrdersProduceFill(t *testing.T) {
	host := &stubHost{entry: common.FromSystemName("maker")}
	c := New(host)

	_, err := c.Invoke("Create", createArgs("BTC", "USD", int64(SideSell), 100, 5))
	require.NoError(t, err)

	host.entry = common.FromSystemName("taker")
	result, err := c.Invoke("Create", createArgs("BTC", "USD", int64(SideBuy), 100, 5))
	require.NoError(t, err)

	idBytes, err := result.AsBytes()
	require.NoError(t, err)
	require.Len(t, idBytes, 32)

	var kinds []event.Kind
	for _, e := range host.events {
		kinds = append(kinds, e.kind)
	}
	require.Contains(t, kinds, event.OrderFilled)
}

func TestCreatePartialFillLeavesRemainderResting(t *testing.T) {
	host := &stubHost{entry: common.FromSystemName("maker")}
	c := New(host)
	_, err := c.Invoke("Create", createArgs("BTC", "USD", int64(SideSell), 50, 10))
	require.NoError(t, err)

	host.entry = common.FromSystemName("taker")
	_, err = c.Invoke("Create", createArgs("BTC", "USD", int64(SideBuy), 50, 4))
	require.NoError(t, err)

	b := c.books[(Pair{Base: "BTC", Quote: "USD"}).key()]
	require.Len(t, b.asks, 1)
	require.Equal(t, 1, len(b.asks[0].Orders))
	require.Equal(t, int64(4), b.asks[0].Orders[0].Filled.Int64())
}

func TestCancelRemovesRestingOrder(t *testing.T) {
	host := &stubHost{entry: common.FromSystemName("alice")}
	c := New(host)

	result, err := c.Invoke("Create", createArgs("BTC", "USD", int64(SideBuy), 100, 10))
	require.NoError(t, err)
	idBytes, err := result.AsBytes()
	require.NoError(t, err)

	_, err = c.Invoke("Cancel", []value.Value{
		value.String("BTC"),
		value.String("USD"),
		value.Bytes(idBytes),
	})
	require.NoError(t, err)

	b := c.books[(Pair{Base: "BTC", Quote: "USD"}).key()]
	require.Len(t, b.bids, 0)
	require.Equal(t, event.OrderCancelled, host.events[len(host.events)-1].kind)
}

func TestCancelUnknownOrderErrors(t *testing.T) {
	host := &stubHost{entry: common.FromSystemName("alice")}
	c := New(host)
	_, err := c.Invoke("Create", createArgs("BTC", "USD", int64(SideBuy), 100, 10))
	require.NoError(t, err)

	_, err = c.Invoke("Cancel", []value.Value{
		value.String("BTC"),
		value.String("USD"),
		value.Bytes(make([]byte, 32)),
	})
	require.Error(t, err)
}

func TestCostSchedule(t *testing.T) {
	c := New(&stubHost{})
	require.Equal(t, uint64(5), c.Cost("Create"))
	require.Equal(t, uint64(2), c.Cost("Cancel"))
	require.Equal(t, uint64(1), c.Cost("Unknown"))
}
