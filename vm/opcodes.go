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

// Package vm implements the stack-based bytecode interpreter that executes
// smart-contract code against an Execution Stack of Values: variable-width
// instructions, one operand stack per frame, and a gas table that is
// consensus-critical rather than advisory.
package vm

// Opcode is an 8-bit instruction code.
type Opcode uint8

const (
	OpNOP Opcode = iota

	// ---- Stack manipulation ----
	OpPUSH
	OpPOP
	OpDUP
	OpSWAP

	// ---- Arithmetic / logic ----
	OpADD
	OpSUB
	OpMUL
	OpDIV
	OpMOD
	OpAND
	OpOR
	OpXOR
	OpNOT
	OpSHL
	OpSHR
	OpEQUAL
	OpLT
	OpGT
	OpLTE
	OpGTE

	// ---- Data manipulation ----
	OpSIZE
	OpCAT
	OpSUBSTR
	OpNEWSTRUCT
	OpCAST

	// ---- Memory: per-frame key-value map ----
	OpGET
	OpPUT
	OpLOAD

	// ---- Control flow ----
	OpJMP
	OpJMPIF
	OpJMPIFNOT
	OpCALL
	OpRET
	OpSWITCH
	OpTHROW

	// ---- Context / interop ----
	OpCTX
	OpEXTCALL

	opcodeCount
)

var opcodeNames = [opcodeCount]string{
	OpNOP:       "NOP",
	OpPUSH:      "PUSH",
	OpPOP:       "POP",
	OpDUP:       "DUP",
	OpSWAP:      "SWAP",
	OpADD:       "ADD",
	OpSUB:       "SUB",
	OpMUL:       "MUL",
	OpDIV:       "DIV",
	OpMOD:       "MOD",
	OpAND:       "AND",
	OpOR:        "OR",
	OpXOR:       "XOR",
	OpNOT:       "NOT",
	OpSHL:       "SHL",
	OpSHR:       "SHR",
	OpEQUAL:     "EQUAL",
	OpLT:        "LT",
	OpGT:        "GT",
	OpLTE:       "LTE",
	OpGTE:       "GTE",
	OpSIZE:      "SIZE",
	OpCAT:       "CAT",
	OpSUBSTR:    "SUBSTR",
	OpNEWSTRUCT: "NEWSTRUCT",
	OpCAST:      "CAST",
	OpGET:       "GET",
	OpPUT:       "PUT",
	OpLOAD:      "LOAD",
	OpJMP:       "JMP",
	OpJMPIF:     "JMPIF",
	OpJMPIFNOT:  "JMPIFNOT",
	OpCALL:      "CALL",
	OpRET:       "RET",
	OpSWITCH:    "SWITCH",
	OpTHROW:     "THROW",
	OpCTX:       "CTX",
	OpEXTCALL:   "EXTCALL",
}

// String returns the opcode's mnemonic, or "UNKNOWN" if op is out of range.
func (op Opcode) String() string {
	if int(op) >= len(opcodeNames) || opcodeNames[op] == "" {
		return "UNKNOWN"
	}
	return opcodeNames[op]
}

// Valid reports whether op names a defined instruction.
func (op Opcode) Valid() bool {
	return int(op) < int(opcodeCount)
}

// GasCost returns the consensus-critical gas cost for op, per spec.md §4.C:
// SWITCH costs 10, CTX costs 5, EXTCALL costs 3, GET/PUT/CALL/LOAD cost 2,
// NOP/RET cost 0, and everything else costs 1. These numbers must never be
// changed independent of a protocol upgrade.
func (op Opcode) GasCost() uint64 {
	switch op {
	case OpSWITCH:
		return 10
	case OpCTX:
		return 5
	case OpEXTCALL:
		return 3
	case OpGET, OpPUT, OpCALL, OpLOAD:
		return 2
	case OpNOP, OpRET:
		return 0
	default:
		return 1
	}
}
