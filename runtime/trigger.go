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
	"github.com/probechain/corevm/common"
	"github.com/probechain/corevm/event"
	"github.com/probechain/corevm/value"
	"github.com/probechain/corevm/vm"
)

// InvokeTrigger implements spec.md §4.E's InvokeTrigger operation: it runs
// script's name method as a child Runtime sharing this Runtime's Change
// Set, Oracle, Chain, Time and Transaction, with DelayPayment forced on.
// On Halt the child's gas is propagated to the parent and its events are
// merged in afterward, in order; on Fault the parent is left untouched and
// the caller decides what a false return means.
func (r *Runtime) InvokeTrigger(script []byte, name string, args []value.Value) bool {
	gm := NewGasMeter(r.nexus.HasGenesis(), r.changes.ReadOnly())
	gm.DelayPayment = true

	child := &Runtime{
		changes:      r.changes,
		oracle:       r.oracle,
		nexus:        r.nexus,
		chain:        r.chain,
		gas:          gm,
		events:       event.NewLog(),
		tx:           r.tx,
		time:         r.time,
		chainAddress: r.chainAddress,
		entryAddress: r.entryAddress,
		currentName:  name,
		contexts:     r.contexts,
		extcalls:     r.extcalls,
		witnessCache: make(map[common.Address]bool),
		interop:      r.interop,
		log:          r.log,
	}
	child.interp = vm.NewInterpreter(child)

	entry := &vm.Context{Name: name, Script: script}
	_, err := child.interp.Run(entry, child.entryAddress, name, args)
	if err != nil {
		return false
	}

	gm.PropagateToParent(r.gas)
	r.events.MergeFrom(child.events)
	return true
}
