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

package value

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/probechain/corevm/common"
)

// ErrMalformedLiteral is returned by Decode when the wire bytes are
// truncated or internally inconsistent.
var ErrMalformedLiteral = errors.New("value: malformed literal encoding")

// Encode produces a self-describing, length-prefixed wire form of v,
// suitable for embedding inline in a byte stream (the interpreter's bytecode
// constant literals, native-method argument framing). Unlike Canonical,
// which assumes external framing and is never decoded, Encode's output can
// always be read back with Decode.
func Encode(v Value) []byte {
	var out []byte
	out = append(out, byte(v.kind))
	switch v.kind {
	case KindInteger:
		out = appendLenPrefixed(out, integerToBytes(v.i))
	case KindBytes:
		out = appendLenPrefixed(out, v.bytes)
	case KindString:
		out = appendLenPrefixed(out, []byte(v.str))
	case KindBool:
		if v.b {
			out = append(out, 1)
		} else {
			out = append(out, 0)
		}
	case KindTimestamp:
		var tmp [4]byte
		binary.LittleEndian.PutUint32(tmp[:], v.ts)
		out = append(out, tmp[:]...)
	case KindAddress:
		out = append(out, v.addr.Bytes()...)
	case KindStruct:
		var cnt [4]byte
		binary.LittleEndian.PutUint32(cnt[:], uint32(len(v.fields)))
		out = append(out, cnt[:]...)
		for _, f := range v.fields {
			out = appendLenPrefixed(out, []byte(f.Name))
			out = append(out, Encode(f.Value)...)
		}
	case KindObject:
		// Object values are process-local handles; they are never encoded
		// onto the wire or into bytecode literal pools.
	}
	return out
}

// Decode reads one Value from the front of b, returning the value and the
// number of bytes consumed.
func Decode(b []byte) (Value, int, error) {
	if len(b) < 1 {
		return Value{}, 0, fmt.Errorf("%w: empty input", ErrMalformedLiteral)
	}
	kind := Kind(b[0])
	off := 1
	switch kind {
	case KindInteger:
		mag, n, err := readLenPrefixed(b[off:])
		if err != nil {
			return Value{}, 0, err
		}
		off += n
		return Integer(bytesToInteger(mag)), off, nil
	case KindBytes:
		raw, n, err := readLenPrefixed(b[off:])
		if err != nil {
			return Value{}, 0, err
		}
		off += n
		return Bytes(raw), off, nil
	case KindString:
		raw, n, err := readLenPrefixed(b[off:])
		if err != nil {
			return Value{}, 0, err
		}
		off += n
		return String(string(raw)), off, nil
	case KindBool:
		if len(b) < off+1 {
			return Value{}, 0, fmt.Errorf("%w: truncated bool", ErrMalformedLiteral)
		}
		v := b[off] != 0
		off++
		return Bool(v), off, nil
	case KindTimestamp:
		if len(b) < off+4 {
			return Value{}, 0, fmt.Errorf("%w: truncated timestamp", ErrMalformedLiteral)
		}
		ts := binary.LittleEndian.Uint32(b[off:])
		off += 4
		return Timestamp(ts), off, nil
	case KindAddress:
		if len(b) < off+common.AddressLength {
			return Value{}, 0, fmt.Errorf("%w: truncated address", ErrMalformedLiteral)
		}
		addr, err := common.AddressFromBytes(b[off : off+common.AddressLength])
		if err != nil {
			return Value{}, 0, fmt.Errorf("%w: %v", ErrMalformedLiteral, err)
		}
		off += common.AddressLength
		return AddressValue(addr), off, nil
	case KindStruct:
		if len(b) < off+4 {
			return Value{}, 0, fmt.Errorf("%w: truncated struct count", ErrMalformedLiteral)
		}
		count := binary.LittleEndian.Uint32(b[off:])
		off += 4
		fields := make([]Field, count)
		for i := range fields {
			name, n, err := readLenPrefixed(b[off:])
			if err != nil {
				return Value{}, 0, err
			}
			off += n
			fv, n, err := Decode(b[off:])
			if err != nil {
				return Value{}, 0, err
			}
			off += n
			fields[i] = Field{Name: string(name), Value: fv}
		}
		return Struct(fields), off, nil
	default:
		return Value{}, 0, fmt.Errorf("%w: unknown kind %d", ErrMalformedLiteral, kind)
	}
}

func appendLenPrefixed(out []byte, b []byte) []byte {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(b)))
	out = append(out, lenBuf[:]...)
	return append(out, b...)
}

func readLenPrefixed(b []byte) ([]byte, int, error) {
	if len(b) < 4 {
		return nil, 0, fmt.Errorf("%w: short length prefix", ErrMalformedLiteral)
	}
	n := binary.LittleEndian.Uint32(b[:4])
	if uint64(len(b)-4) < uint64(n) {
		return nil, 0, fmt.Errorf("%w: truncated payload", ErrMalformedLiteral)
	}
	return b[4 : 4+n], 4 + int(n), nil
}
