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

// Package value implements the dynamically-typed values the VM's operand
// stack, frame locals, and per-frame memory manipulate.
package value

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"

	"github.com/probechain/corevm/common"
)

// Kind tags the runtime type carried by a Value.
type Kind byte

const (
	KindInteger Kind = iota
	KindBytes
	KindString
	KindBool
	KindTimestamp
	KindAddress
	KindStruct
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindBytes:
		return "bytes"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindTimestamp:
		return "timestamp"
	case KindAddress:
		return "address"
	case KindStruct:
		return "struct"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", byte(k))
	}
}

// ErrTypeMismatch is returned by a coercion that cannot produce the
// requested Kind from the Value's stored representation.
var ErrTypeMismatch = errors.New("value: type mismatch")

// ErrNotComparable is returned when two values of incomparable kinds are
// passed to Compare.
var ErrNotComparable = errors.New("value: not comparable")

// Field is one entry of a Struct, kept in insertion order.
type Field struct {
	Name  string
	Value Value
}

// Value is a tagged union of the VM's runtime data types. The zero Value is
// the integer 0.
type Value struct {
	kind   Kind
	i      *big.Int
	bytes  []byte
	str    string
	b      bool
	ts     uint32
	addr   common.Address
	fields []Field
	obj    any
}

// Integer constructs a signed arbitrary-precision integer Value.
func Integer(i *big.Int) Value {
	if i == nil {
		i = new(big.Int)
	}
	return Value{kind: KindInteger, i: new(big.Int).Set(i)}
}

// IntegerFromInt64 is a convenience constructor for small integer literals.
func IntegerFromInt64(n int64) Value { return Integer(big.NewInt(n)) }

// Bytes constructs a byte-string Value.
func Bytes(b []byte) Value {
	cp := make([]byte, len(b))
	copy(cp, b)
	return Value{kind: KindBytes, bytes: cp}
}

// String constructs a UTF-8 string Value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Bool constructs a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Timestamp constructs a unix-second timestamp Value.
func Timestamp(t uint32) Value { return Value{kind: KindTimestamp, ts: t} }

// AddressValue constructs an Address Value.
func AddressValue(a common.Address) Value { return Value{kind: KindAddress, addr: a} }

// Struct constructs an ordered-field Value from fields in insertion order.
func Struct(fields []Field) Value {
	cp := make([]Field, len(fields))
	copy(cp, fields)
	return Value{kind: KindStruct, fields: cp}
}

// Object wraps an opaque handle produced by an external (EXTCALL) call.
// Object values carry no canonical byte form beyond their kind tag; they
// exist only for the lifetime of a single transaction's stack.
func Object(v any) Value { return Value{kind: KindObject, obj: v} }

// Kind returns the Value's runtime type tag.
func (v Value) Kind() Kind { return v.kind }

// AsInteger returns the Value as a signed big integer. Bytes are coerced
// per §4.A: unsigned little-endian magnitude with the sign carried in the
// top bit of the highest byte. Bool and Timestamp coerce to 0/1 and the
// timestamp's numeric value respectively. Any other kind fails.
func (v Value) AsInteger() (*big.Int, error) {
	switch v.kind {
	case KindInteger:
		return new(big.Int).Set(v.i), nil
	case KindBytes:
		return bytesToInteger(v.bytes), nil
	case KindBool:
		if v.b {
			return big.NewInt(1), nil
		}
		return big.NewInt(0), nil
	case KindTimestamp:
		return new(big.Int).SetUint64(uint64(v.ts)), nil
	default:
		return nil, fmt.Errorf("%w: cannot read %s as integer", ErrTypeMismatch, v.kind)
	}
}

// AsBytes returns the Value's byte-string form. Integers are encoded back
// through the same unsigned-little-endian-plus-sign-bit convention used by
// AsInteger, so Bytes(AsInteger(x)) round-trips for values that fit the
// representation.
func (v Value) AsBytes() ([]byte, error) {
	switch v.kind {
	case KindBytes:
		cp := make([]byte, len(v.bytes))
		copy(cp, v.bytes)
		return cp, nil
	case KindInteger:
		return integerToBytes(v.i), nil
	case KindString:
		return []byte(v.str), nil
	case KindAddress:
		return v.addr.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: cannot read %s as bytes", ErrTypeMismatch, v.kind)
	}
}

// AsString returns the Value's string form.
func (v Value) AsString() (string, error) {
	switch v.kind {
	case KindString:
		return v.str, nil
	case KindBytes:
		return string(v.bytes), nil
	default:
		return "", fmt.Errorf("%w: cannot read %s as string", ErrTypeMismatch, v.kind)
	}
}

// AsBool returns the Value's boolean form.
func (v Value) AsBool() (bool, error) {
	switch v.kind {
	case KindBool:
		return v.b, nil
	case KindInteger:
		return v.i.Sign() != 0, nil
	default:
		return false, fmt.Errorf("%w: cannot read %s as bool", ErrTypeMismatch, v.kind)
	}
}

// AsTimestamp returns the Value's timestamp form.
func (v Value) AsTimestamp() (uint32, error) {
	switch v.kind {
	case KindTimestamp:
		return v.ts, nil
	case KindInteger:
		if !v.i.IsUint64() {
			return 0, fmt.Errorf("%w: integer out of timestamp range", ErrTypeMismatch)
		}
		return uint32(v.i.Uint64()), nil
	default:
		return 0, fmt.Errorf("%w: cannot read %s as timestamp", ErrTypeMismatch, v.kind)
	}
}

// AsAddress returns the Value's address form.
func (v Value) AsAddress() (common.Address, error) {
	if v.kind != KindAddress {
		return common.Address{}, fmt.Errorf("%w: cannot read %s as address", ErrTypeMismatch, v.kind)
	}
	return v.addr, nil
}

// AsStruct returns the Value's ordered field list.
func (v Value) AsStruct() ([]Field, error) {
	if v.kind != KindStruct {
		return nil, fmt.Errorf("%w: cannot read %s as struct", ErrTypeMismatch, v.kind)
	}
	cp := make([]Field, len(v.fields))
	copy(cp, v.fields)
	return cp, nil
}

// AsObject returns the Value's opaque object handle.
func (v Value) AsObject() (any, error) {
	if v.kind != KindObject {
		return nil, fmt.Errorf("%w: cannot read %s as object", ErrTypeMismatch, v.kind)
	}
	return v.obj, nil
}

// Canonical returns the canonical byte serialization used for hashing and
// cross-value comparison: kind(u8) followed by the type-specific payload.
// A Struct serializes its fields in insertion order as
// name(varstring) | type(u8) | payload. Object values have no stable
// canonical form and serialize to their kind tag alone.
func (v Value) Canonical() []byte {
	var buf bytes.Buffer
	buf.WriteByte(byte(v.kind))
	switch v.kind {
	case KindInteger:
		buf.Write(integerToBytes(v.i))
	case KindBytes:
		buf.Write(v.bytes)
	case KindString:
		buf.Write([]byte(v.str))
	case KindBool:
		if v.b {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
	case KindTimestamp:
		var tmp [4]byte
		binary.LittleEndian.PutUint32(tmp[:], v.ts)
		buf.Write(tmp[:])
	case KindAddress:
		buf.Write(v.addr.Bytes())
	case KindStruct:
		for _, f := range v.fields {
			writeVarString(&buf, f.Name)
			buf.WriteByte(byte(f.Value.kind))
			buf.Write(f.Value.Canonical()[1:]) // payload only, kind already written
		}
	case KindObject:
		// no stable payload
	}
	return buf.Bytes()
}

// Equal reports whether a and b hold the same canonical value.
func (a Value) Equal(b Value) bool {
	return bytes.Equal(a.Canonical(), b.Canonical())
}

// Compare orders two values. Only Integer-vs-Integer and String-vs-String
// comparisons are defined, per §4.A ("comparison on non-integer, non-string
// values fails the opcode"); all other pairings return ErrNotComparable.
func Compare(a, b Value) (int, error) {
	if a.kind == KindInteger && b.kind == KindInteger {
		return a.i.Cmp(b.i), nil
	}
	if a.kind == KindString && b.kind == KindString {
		switch {
		case a.str < b.str:
			return -1, nil
		case a.str > b.str:
			return 1, nil
		default:
			return 0, nil
		}
	}
	return 0, fmt.Errorf("%w: %s vs %s", ErrNotComparable, a.kind, b.kind)
}

func writeVarString(buf *bytes.Buffer, s string) {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(s)))
	buf.Write(lenBuf[:])
	buf.WriteString(s)
}

// bytesToInteger implements the §4.A coercion: unsigned little-endian
// magnitude, sign carried in the top bit of the last (most significant)
// byte.
func bytesToInteger(b []byte) *big.Int {
	if len(b) == 0 {
		return new(big.Int)
	}
	magnitude := make([]byte, len(b))
	copy(magnitude, b)
	neg := magnitude[len(magnitude)-1]&0x80 != 0
	magnitude[len(magnitude)-1] &^= 0x80
	reverse(magnitude) // big.Int.SetBytes wants big-endian
	n := new(big.Int).SetBytes(magnitude)
	if neg {
		n.Neg(n)
	}
	return n
}

// integerToBytes is the inverse of bytesToInteger.
func integerToBytes(n *big.Int) []byte {
	neg := n.Sign() < 0
	mag := new(big.Int).Abs(n).Bytes() // big-endian
	reverse(mag)                       // little-endian
	if len(mag) == 0 {
		mag = []byte{0}
	}
	if mag[len(mag)-1]&0x80 != 0 {
		mag = append(mag, 0)
	}
	if neg {
		mag[len(mag)-1] |= 0x80
	}
	return mag
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
