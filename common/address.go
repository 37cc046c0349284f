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

package common

import (
	"bytes"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/sha3"
)

// AddressLength is the fixed byte width of an Address: one discriminant byte
// plus a 33-byte payload (public key hash, contract name hash, or opaque
// interop identity).
const AddressLength = 34

// AddressKind discriminates the three identity spaces an Address may name.
type AddressKind byte

const (
	// AddressUser identifies a public-key-derived wallet.
	AddressUser AddressKind = 0x01
	// AddressSystem identifies a contract, derived by hashing its name.
	AddressSystem AddressKind = 0x02
	// AddressInterop identifies a foreign-chain identity opaque to this core.
	AddressInterop AddressKind = 0x03
)

// ErrInvalidAddressKind is returned when an Address payload carries a
// discriminant byte outside the closed AddressKind set.
var ErrInvalidAddressKind = errors.New("common: invalid address kind")

// Address is a 34-byte discriminated identity: a one-byte kind tag followed
// by a 33-byte payload. Equality is byte-wise.
type Address [AddressLength]byte

// NullAddress is the all-zero address, used as a sentinel "no address".
var NullAddress = Address{}

// NewAddress builds an Address from a kind and a payload, left-padding or
// truncating the payload to 33 bytes as go-ethereum's common.Address does
// for 20-byte inputs.
func NewAddress(kind AddressKind, payload []byte) Address {
	var a Address
	a[0] = byte(kind)
	if len(payload) > AddressLength-1 {
		payload = payload[:AddressLength-1]
	}
	copy(a[AddressLength-len(payload):], payload)
	return a
}

// FromSystemName derives a System address by hashing a contract name.
func FromSystemName(name string) Address {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(name))
	sum := h.Sum(nil)
	return NewAddress(AddressSystem, sum)
}

// Kind returns the address's discriminant.
func (a Address) Kind() (AddressKind, error) {
	switch AddressKind(a[0]) {
	case AddressUser, AddressSystem, AddressInterop:
		return AddressKind(a[0]), nil
	default:
		return 0, ErrInvalidAddressKind
	}
}

// IsUser reports whether a is a public-key-derived address.
func (a Address) IsUser() bool { return a[0] == byte(AddressUser) }

// IsSystem reports whether a is a contract-derived address.
func (a Address) IsSystem() bool { return a[0] == byte(AddressSystem) }

// IsInterop reports whether a is a foreign-chain identity.
func (a Address) IsInterop() bool { return a[0] == byte(AddressInterop) }

// IsNull reports whether a is the all-zero address.
func (a Address) IsNull() bool { return a == NullAddress }

// Equal reports whether a and b name the same identity.
func (a Address) Equal(b Address) bool { return bytes.Equal(a[:], b[:]) }

// Bytes returns the address's raw 34-byte form.
func (a Address) Bytes() []byte { return a[:] }

// Hex returns the address in "0x"-prefixed hexadecimal.
func (a Address) Hex() string { return "0x" + hex.EncodeToString(a[:]) }

// String implements fmt.Stringer.
func (a Address) String() string { return a.Hex() }

// AddressFromBytes parses a 34-byte slice into an Address. The all-zero
// NullAddress is accepted; any other value must carry a valid kind byte.
func AddressFromBytes(b []byte) (Address, error) {
	var a Address
	if len(b) != AddressLength {
		return a, errors.New("common: address must be 34 bytes")
	}
	copy(a[:], b)
	if a.IsNull() {
		return a, nil
	}
	if _, err := a.Kind(); err != nil {
		return a, err
	}
	return a, nil
}
