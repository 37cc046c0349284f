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

// Package event implements the typed, contract-attributed, append-only
// event log produced during transaction execution.
package event

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/probechain/corevm/common"
)

// Kind is the closed set of event kinds a contract may emit.
type Kind uint8

const (
	ChainCreate Kind = iota
	BlockCreate
	BlockClose
	TokenCreate
	TokenSend
	TokenReceive
	TokenMint
	TokenBurn
	TokenStake
	TokenUnstake
	TokenClaim
	RoleChange
	AddressChange
	GasEscrow
	GasPayment
	GasLoan
	OrderCreated
	OrderFilled
	OrderCancelled
	FeedCreate
	FileCreate
	FileDelete
	ValidatorPropose
	ValidatorElect
	ValidatorRemove
	ValidatorSwitch
	BrokerRequest
	ValueCreate
	ValueUpdate
	PollCreated
	PollClosed
	PollVote
	ChannelOpen
	ChannelClose
	Leaderboard
	Metadata
	PackedNFT

	// CustomBase is the first value available to application-defined custom
	// event kinds (Custom+N in spec.md §3).
	CustomBase Kind = 128
)

// IsCustom reports whether k is an application-defined Custom+N kind.
func (k Kind) IsCustom() bool { return k >= CustomBase }

var kindNames = map[Kind]string{
	ChainCreate: "ChainCreate", BlockCreate: "BlockCreate", BlockClose: "BlockClose",
	TokenCreate: "TokenCreate", TokenSend: "TokenSend", TokenReceive: "TokenReceive",
	TokenMint: "TokenMint", TokenBurn: "TokenBurn", TokenStake: "TokenStake",
	TokenUnstake: "TokenUnstake", TokenClaim: "TokenClaim", RoleChange: "RoleChange",
	AddressChange: "AddressChange", GasEscrow: "GasEscrow", GasPayment: "GasPayment",
	GasLoan: "GasLoan", OrderCreated: "OrderCreated", OrderFilled: "OrderFilled",
	OrderCancelled: "OrderCancelled", FeedCreate: "FeedCreate", FileCreate: "FileCreate",
	FileDelete: "FileDelete", ValidatorPropose: "ValidatorPropose", ValidatorElect: "ValidatorElect",
	ValidatorRemove: "ValidatorRemove", ValidatorSwitch: "ValidatorSwitch", BrokerRequest: "BrokerRequest",
	ValueCreate: "ValueCreate", ValueUpdate: "ValueUpdate", PollCreated: "PollCreated",
	PollClosed: "PollClosed", PollVote: "PollVote", ChannelOpen: "ChannelOpen",
	ChannelClose: "ChannelClose", Leaderboard: "Leaderboard", Metadata: "Metadata",
	PackedNFT: "PackedNFT",
}

// String returns the event kind's name, or "Custom+N" for application kinds.
func (k Kind) String() string {
	if k.IsCustom() {
		return fmt.Sprintf("Custom+%d", k-CustomBase)
	}
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", byte(k))
}

// ErrMalformedEvent is returned by Unserialize when the wire bytes are
// truncated or internally inconsistent.
var ErrMalformedEvent = errors.New("event: malformed wire encoding")

// Event is one record in the Event Log: a kind, the address it concerns,
// the name of the contract that authored it, and an opaque payload.
type Event struct {
	Kind     Kind
	Address  common.Address
	Contract string
	Data     []byte
}

// New constructs an Event.
func New(kind Kind, address common.Address, contract string, data []byte) Event {
	cp := make([]byte, len(data))
	copy(cp, data)
	return Event{Kind: kind, Address: address, Contract: contract, Data: cp}
}

// Serialize encodes the event exactly as spec.md §3 requires:
// kind(u8) | address(34) | varstring(contract) | varbytes(data), where a
// varstring/varbytes is a little-endian uint32 length prefix followed by
// the raw bytes.
func (e Event) Serialize() []byte {
	out := make([]byte, 0, 1+common.AddressLength+4+len(e.Contract)+4+len(e.Data))
	out = append(out, byte(e.Kind))
	out = append(out, e.Address.Bytes()...)
	out = appendVarBytes(out, []byte(e.Contract))
	out = appendVarBytes(out, e.Data)
	return out
}

// Unserialize decodes an Event from its wire form, the inverse of
// Serialize. It returns the number of bytes consumed.
func Unserialize(b []byte) (Event, int, error) {
	const headerLen = 1 + common.AddressLength
	if len(b) < headerLen {
		return Event{}, 0, fmt.Errorf("%w: short header", ErrMalformedEvent)
	}
	kind := Kind(b[0])
	addr, err := common.AddressFromBytes(b[1:headerLen])
	if err != nil {
		return Event{}, 0, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	off := headerLen

	contractBytes, n, err := readVarBytes(b[off:])
	if err != nil {
		return Event{}, 0, err
	}
	off += n

	data, n, err := readVarBytes(b[off:])
	if err != nil {
		return Event{}, 0, err
	}
	off += n

	return Event{Kind: kind, Address: addr, Contract: string(contractBytes), Data: data}, off, nil
}

func appendVarBytes(out []byte, b []byte) []byte {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(b)))
	out = append(out, lenBuf[:]...)
	return append(out, b...)
}

func readVarBytes(b []byte) ([]byte, int, error) {
	if len(b) < 4 {
		return nil, 0, fmt.Errorf("%w: short length prefix", ErrMalformedEvent)
	}
	n := binary.LittleEndian.Uint32(b[:4])
	if uint64(len(b)-4) < uint64(n) {
		return nil, 0, fmt.Errorf("%w: truncated payload", ErrMalformedEvent)
	}
	payload := make([]byte, n)
	copy(payload, b[4:4+n])
	return payload, 4 + int(n), nil
}
