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
	"errors"

	"github.com/probechain/corevm/common"
	"github.com/probechain/corevm/vm"
)

// ErrOutOfGas is returned when UsedGas would exceed MaxGas outside
// DelayPayment mode.
var ErrOutOfGas = errors.New("runtime: out of gas")

// ErrReadOnlyWrite surfaces state.ErrReadOnlyWrite as a VM fault at the
// runtime layer.
var ErrReadOnlyWrite = errors.New("runtime: write attempted in read-only mode")

// GasMeter tracks the per-transaction gas budget and settlement described
// by spec.md §4.D. Each Runtime owns one GasMeter; a trigger's child
// Runtime gets a fresh one whose UsedGas is added to the parent's on Halt
// (PropagateToParent).
type GasMeter struct {
	UsedGas  uint64
	PaidGas  uint64
	MaxGas   uint64
	GasPrice uint64
	// MinimumFee is the floor GasEscrow's price must meet.
	MinimumFee uint64
	// GasTarget is the address GasEscrow designated to receive payment.
	GasTarget common.Address
	// FeeTargetAddress is set by GasPayment when the payer is not the
	// chain address itself.
	FeeTargetAddress common.Address
	// DelayPayment disables the MaxGas ceiling and the halt-time payment
	// check; set for trigger children and from Config.DelayPayment.
	// Bootstrap and read-only execution are exempted by exempt() instead.
	DelayPayment bool
	// BlockOp is set while a BlockCreate/BlockClose pair is open; opcodes
	// are free for its duration (spec.md §4.E on block operations).
	BlockOp bool

	hasGenesis bool
	readOnly   bool
}

// NewGasMeter constructs a meter. hasGenesis and readOnly gate the
// bootstrap exemption ("If genesis not yet established OR readOnlyMode,
// gas is free").
func NewGasMeter(hasGenesis, readOnly bool) *GasMeter {
	return &GasMeter{hasGenesis: hasGenesis, readOnly: readOnly}
}

// exempt reports whether gas is free for this execution.
func (g *GasMeter) exempt() bool { return !g.hasGenesis || g.readOnly || g.BlockOp }

// ChargeOpcode implements vm.Host.ChargeOpcode: it debits op's cost into
// UsedGas and faults if the budget is exceeded and DelayPayment is unset.
func (g *GasMeter) ChargeOpcode(op vm.Opcode) error {
	if g.exempt() {
		return nil
	}
	g.UsedGas += op.GasCost()
	if g.UsedGas > g.MaxGas && !g.DelayPayment {
		return ErrOutOfGas
	}
	return nil
}

// ChargeNativeMethod debits a native contract method's declared cost.
func (g *GasMeter) ChargeNativeMethod(cost uint64) error {
	if g.exempt() {
		return nil
	}
	g.UsedGas += cost
	if g.UsedGas > g.MaxGas && !g.DelayPayment {
		return ErrOutOfGas
	}
	return nil
}

// Escrow applies a GasEscrow event: price must meet MinimumFee; it sets
// MaxGas, GasPrice, and GasTarget.
func (g *GasMeter) Escrow(price, amount uint64, target common.Address) error {
	if price < g.MinimumFee {
		return errors.New("runtime: gas escrow price below minimum fee")
	}
	g.MaxGas = amount
	g.GasPrice = price
	g.GasTarget = target
	return nil
}

// Pay applies a GasPayment event: it accumulates PaidGas, and if the payer
// is not the chain address, records it as FeeTargetAddress.
func (g *GasMeter) Pay(amount uint64, payer, chainAddress common.Address) {
	g.PaidGas += amount
	if !payer.Equal(chainAddress) {
		g.FeeTargetAddress = payer
	}
}

// SettleHalt applies the on-halt settlement rule: if PaidGas < UsedGas and
// genesis is established and DelayPayment is unset, the transaction faults.
func (g *GasMeter) SettleHalt() error {
	if g.hasGenesis && !g.DelayPayment && g.PaidGas < g.UsedGas {
		return ErrOutOfGas
	}
	return nil
}

// PropagateToParent adds the child meter's UsedGas into the parent's, per
// spec.md §4.D: "Triggers execute in a child VM; on return, UsedGas_parent
// += UsedGas_child".
func (g *GasMeter) PropagateToParent(parent *GasMeter) {
	parent.UsedGas += g.UsedGas
}
