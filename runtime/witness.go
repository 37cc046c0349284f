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

import "github.com/probechain/corevm/common"

// onWitnessMethod is the account trigger method name invoked to ask a
// User-owned on-chain script whether it authorizes the current call.
const onWitnessMethod = "OnWitness"

// IsWitness implements spec.md §4.E's IsWitness operation. The result is
// memoized per address for the lifetime of the Runtime: a signature check
// must behave identically no matter how many times it is asked within one
// transaction.
func (r *Runtime) IsWitness(address common.Address) bool {
	if cached, ok := r.witnessCache[address]; ok {
		return cached
	}

	result := r.evalWitness(address)
	r.witnessCache[address] = result
	return result
}

func (r *Runtime) evalWitness(address common.Address) bool {
	if address.IsInterop() {
		return false
	}
	if address.Equal(r.entryAddress) {
		return true
	}

	switch {
	case address.IsSystem():
		return address.Equal(common.FromSystemName(r.currentName))
	case address.IsUser():
		if script, ok := r.nexus.LookUpAddressScript(address); ok {
			if r.InvokeTrigger(script, onWitnessMethod, nil) {
				return true
			}
		}
		for _, signer := range r.tx.Signers {
			if signer.Equal(address) {
				return true
			}
		}
	}
	return false
}
