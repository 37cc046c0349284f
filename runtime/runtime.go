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

// Package runtime implements the contract-facing surface glueing the
// Bytecode Interpreter to state, events, triggers, oracles, and witnesses
// (spec.md §4.E).
package runtime

import (
	"errors"
	"fmt"

	"github.com/probechain/corevm/chainstore"
	"github.com/probechain/corevm/common"
	"github.com/probechain/corevm/event"
	"github.com/probechain/corevm/log"
	"github.com/probechain/corevm/nexus"
	"github.com/probechain/corevm/oracle"
	"github.com/probechain/corevm/state"
	"github.com/probechain/corevm/value"
	"github.com/probechain/corevm/vm"
)

// Reserved contract names. blockContractName owns the BlockCreate /
// BlockClose / ValidatorSwitch events; tokenContractName is the only
// context CTX may load while in block-operation mode.
const (
	gasContractName       = "gas"
	blockContractName     = "block"
	consensusContractName = "consensus"
	nexusContractName     = "nexus"
	storageContractName   = "storage"
	validatorContractName = "validator"
	interopContractName   = "interop"
	governanceContractName = "governance"
	tokenContractName     = "token"
	orderContractName     = "order"
)

// Transaction is the minimal per-transaction context the Runtime needs:
// its hash (for RNG seeding), the entry context/method to
// invoke, and the set of addresses whose signatures authorize it.
type Transaction struct {
	Hash         [32]byte
	EntryContext string
	EntryMethod  string
	Args         []value.Value
	Signers      []common.Address
}

// Result is the outcome of executing a transaction: Halt or Fault, plus the
// accounting spec.md's receipt needs.
type Result struct {
	Halted      bool
	ReturnValue value.Value
	UsedGas     uint64
	PaidGas     uint64
	FaultOpcode string
	FaultReason string
}

// InteropResolver is the host hook for interop withdrawals (spec.md §6).
// A Runtime stores it and passes it on to trigger children; no code path in
// this package calls WithdrawTokens.
type InteropResolver interface {
	WithdrawTokens(source, destination common.Address, symbol string, amount []byte) error
}

// Runtime executes one transaction's worth of contract code. A Runtime is
// constructed fresh per transaction; InvokeTrigger constructs a child
// Runtime sharing the parent's Change Set, Oracle, ChainStore, time, and
// transaction, per spec.md §4.E and §9's "nested runtime instances" design
// note.
type Runtime struct {
	changes *state.ChangeSet
	oracle  *oracle.Oracle
	nexus   *nexus.Nexus
	chain   *chainstore.ChainStore
	gas     *GasMeter
	events  *event.Log
	tx      Transaction
	time    uint32

	chainAddress common.Address
	entryAddress common.Address
	currentName  string

	blockOp bool

	contexts map[string]*vm.Context
	extcalls map[string]ExtCallHandler

	witnessCache map[common.Address]bool
	rngState     *int64

	interop InteropResolver
	log     *log.Logger

	interp *vm.Interpreter
}

// ExtCallHandler implements an EXTCALL-dispatched host function, distinct
// from a native contract's CTX-dispatched methods.
type ExtCallHandler func(args []value.Value) (value.Value, error)

// Config bundles a Runtime's dependencies.
type Config struct {
	Changes      *state.ChangeSet
	Oracle       *oracle.Oracle
	Nexus        *nexus.Nexus
	Chain        *chainstore.ChainStore
	ChainAddress common.Address
	Time         uint32
	Interop      InteropResolver
	DelayPayment bool
}

// New constructs a top-level Runtime for tx.
func New(cfg Config, tx Transaction) *Runtime {
	gm := NewGasMeter(cfg.Nexus.HasGenesis(), cfg.Changes.ReadOnly())
	gm.DelayPayment = cfg.DelayPayment

	r := &Runtime{
		changes:      cfg.Changes,
		oracle:       cfg.Oracle,
		nexus:        cfg.Nexus,
		chain:        cfg.Chain,
		gas:          gm,
		events:       event.NewLog(),
		tx:           tx,
		time:         cfg.Time,
		chainAddress: cfg.ChainAddress,
		contexts:     make(map[string]*vm.Context),
		extcalls:     make(map[string]ExtCallHandler),
		witnessCache: make(map[common.Address]bool),
		interop:      cfg.Interop,
		log:          log.NewWith("component", "runtime"),
	}
	r.interp = vm.NewInterpreter(r)
	return r
}

// RegisterContext makes a named context (script or native) resolvable by
// CTX/CallContext.
func (r *Runtime) RegisterContext(ctx *vm.Context) {
	r.contexts[ctx.Name] = ctx
}

// RegisterExtCall registers a host-level handler EXTCALL can invoke by
// name.
func (r *Runtime) RegisterExtCall(name string, handler ExtCallHandler) {
	r.extcalls[name] = handler
}

// GasMeter exposes the underlying meter for callers that need to read or
// seed MinimumFee and similar bootstrap parameters.
func (r *Runtime) GasMeter() *GasMeter { return r.gas }

// Events returns the runtime's event log.
func (r *Runtime) Events() *event.Log { return r.events }

// EntryAddress returns the address the current context was entered under.
func (r *Runtime) EntryAddress() common.Address { return r.entryAddress }

// Execute runs the transaction's entry context to Halt or Fault. On Fault,
// the Change Set is discarded; on Halt with unpaid gas, it is also
// discarded and the result reported as a fault.
func (r *Runtime) Execute() Result {
	entry, ok := r.contexts[r.tx.EntryContext]
	if !ok {
		return r.fault("CTX", fmt.Sprintf("unresolved entry context %q", r.tx.EntryContext))
	}
	r.entryAddress = common.FromSystemName(r.tx.EntryContext)
	r.currentName = r.tx.EntryContext

	retVal, err := r.interp.Run(entry, r.entryAddress, r.tx.EntryMethod, r.tx.Args)
	if err != nil {
		r.changes.Discard()
		return Result{
			Halted:      false,
			UsedGas:     r.gas.UsedGas,
			PaidGas:     r.gas.PaidGas,
			FaultOpcode: "EXEC",
			FaultReason: err.Error(),
		}
	}
	if err := r.gas.SettleHalt(); err != nil {
		r.changes.Discard()
		return Result{
			Halted:      false,
			UsedGas:     r.gas.UsedGas,
			PaidGas:     r.gas.PaidGas,
			FaultOpcode: "HALT",
			FaultReason: err.Error(),
		}
	}
	r.changes.Merge()
	return Result{
		Halted:      true,
		ReturnValue: retVal,
		UsedGas:     r.gas.UsedGas,
		PaidGas:     r.gas.PaidGas,
	}
}

func (r *Runtime) fault(opcode, reason string) Result {
	r.changes.Discard()
	return Result{FaultOpcode: opcode, FaultReason: reason, UsedGas: r.gas.UsedGas, PaidGas: r.gas.PaidGas}
}

// CallContext implements spec.md §4.E's CallContext operation directly
// (rather than only through the CTX opcode), for native code paths
// (triggers, EXTCALL handlers) that must invoke another context
// programmatically. The bomb contract is exempt: UsedGas is rewound
// around a bomb call.
func (r *Runtime) CallContext(contextName, methodName string, args []value.Value) (value.Value, error) {
	if r.blockOp && !r.BlockOpContextAllowed(contextName) {
		return value.Value{}, vm.ErrNotInBlockOp
	}
	target, ok := r.contexts[contextName]
	if !ok {
		return value.Value{}, fmt.Errorf("%w: %s", vm.ErrUnresolvedContext, contextName)
	}

	const bombContract = "bomb"
	gasBefore := r.gas.UsedGas
	savedEntry, savedName := r.entryAddress, r.currentName

	var result value.Value
	var err error
	if target.IsNative() {
		if cerr := r.ChargeNativeMethod(contextName, methodName); cerr != nil {
			return value.Value{}, cerr
		}
		r.SetCurrentContext(common.FromSystemName(contextName), contextName)
		result, err = target.Native.Invoke(methodName, args)
	} else {
		result, err = r.interp.Run(target, common.FromSystemName(contextName), methodName, args)
	}

	r.SetCurrentContext(savedEntry, savedName)
	if contextName == bombContract {
		r.gas.UsedGas = gasBefore
	}
	return result, err
}

// SetCurrentContext implements vm.Host: it records which address/name is
// authoring execution right now, so Notify's event attribution and the
// System-address witness check stay correct across every CTX frame
// transition, not only direct Go-level CallContext invocations.
func (r *Runtime) SetCurrentContext(address common.Address, name string) {
	r.entryAddress = address
	r.currentName = name
}

// LoadContext implements vm.Host.
func (r *Runtime) LoadContext(name string) (*vm.Context, bool) {
	ctx, ok := r.contexts[name]
	return ctx, ok
}

// ChargeOpcode implements vm.Host.
func (r *Runtime) ChargeOpcode(op vm.Opcode) error { return r.gas.ChargeOpcode(op) }

// ChargeNativeMethod implements vm.Host.
func (r *Runtime) ChargeNativeMethod(contextName, method string) error {
	ctx, ok := r.contexts[contextName]
	if !ok || !ctx.IsNative() {
		return nil
	}
	return r.gas.ChargeNativeMethod(ctx.Native.Cost(method))
}

// ExtCall implements vm.Host. Builtin Runtime operations (Notify,
// ReadOracle, IsWitness, and the rest of builtinExtCalls) take priority
// over caller-registered handlers of the same name.
func (r *Runtime) ExtCall(name string, args []value.Value) (value.Value, error) {
	if builtin, ok := builtinExtCalls[name]; ok {
		return builtin(r, args)
	}
	handler, ok := r.extcalls[name]
	if !ok {
		return value.Value{}, fmt.Errorf("%w: %s", vm.ErrUnregisteredMethod, name)
	}
	return handler(args)
}

// InBlockOp implements vm.Host.
func (r *Runtime) InBlockOp() bool { return r.blockOp }

// BlockOpContextAllowed implements vm.Host: only the token contract may be
// re-entered while in block-operation mode.
func (r *Runtime) BlockOpContextAllowed(contextName string) bool {
	return contextName == tokenContractName
}

// ErrUnauthorizedEvent is returned by Notify when CurrentContext is not
// permitted to emit the given kind.
var ErrUnauthorizedEvent = errors.New("runtime: event kind not authorized for this contract")
