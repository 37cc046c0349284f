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

package oracle

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/probechain/corevm/value"
)

// decodeTokenPayload reads the {symbol, value} struct a token contract
// encodes into TokenSend/TokenReceive/TokenStake event data, using the
// Value Model's length-prefixed codec (value.Decode) rather than a
// bespoke format.
func decodeTokenPayload(data []byte) (string, *big.Int, error) {
	v, _, err := value.Decode(data)
	if err != nil {
		return "", nil, err
	}
	fields, err := v.AsStruct()
	if err != nil {
		return "", nil, err
	}
	var symbol string
	var amount *big.Int
	for _, f := range fields {
		switch f.Name {
		case "symbol":
			symbol, err = f.Value.AsString()
			if err != nil {
				return "", nil, err
			}
		case "value":
			amount, err = f.Value.AsInteger()
			if err != nil {
				return "", nil, err
			}
		}
	}
	if amount == nil {
		amount = new(big.Int)
	}
	return symbol, amount, nil
}

// EncodeTokenPayload is the inverse of decodeTokenPayload, used by the
// token native contract when emitting TokenSend/TokenReceive/TokenStake.
func EncodeTokenPayload(symbol string, amount *big.Int) []byte {
	v := value.Struct([]value.Field{
		{Name: "symbol", Value: value.String(symbol)},
		{Name: "value", Value: value.Integer(amount)},
	})
	return value.Encode(v)
}

// decodePackedNFTPayload reads the {symbol, data} struct a token contract
// encodes into a PackedNFT event, pairing it with the TokenSend/TokenReceive
// leg of a non-fungible interop transfer.
func decodePackedNFTPayload(data []byte) (string, []byte, error) {
	v, _, err := value.Decode(data)
	if err != nil {
		return "", nil, err
	}
	fields, err := v.AsStruct()
	if err != nil {
		return "", nil, err
	}
	var symbol string
	var raw []byte
	for _, f := range fields {
		switch f.Name {
		case "symbol":
			symbol, err = f.Value.AsString()
			if err != nil {
				return "", nil, err
			}
		case "data":
			raw, err = f.Value.AsBytes()
			if err != nil {
				return "", nil, err
			}
		}
	}
	return symbol, raw, nil
}

// EncodePackedNFTPayload is the inverse of decodePackedNFTPayload, used by
// a non-fungible token contract when emitting PackedNFT alongside its
// TokenSend/TokenReceive leg.
func EncodePackedNFTPayload(symbol string, data []byte) []byte {
	v := value.Struct([]value.Field{
		{Name: "symbol", Value: value.String(symbol)},
		{Name: "data", Value: value.Bytes(data)},
	})
	return value.Encode(v)
}

func decodeHex(s string) ([]byte, error) {
	return hex.DecodeString(s)
}

func encodeInteropTransaction(tx InteropTransaction) []byte {
	var buf []byte
	buf = append(buf, tx.Hash[:]...)
	var cnt [4]byte
	binary.LittleEndian.PutUint32(cnt[:], uint32(len(tx.Transfers)))
	buf = append(buf, cnt[:]...)
	for _, t := range tx.Transfers {
		buf = appendVarString(buf, t.From)
		buf = appendVarString(buf, t.To)
		buf = appendVarString(buf, t.Symbol)
		valBytes := t.Value.Bytes()
		buf = appendVarBytesRaw(buf, valBytes)
		buf = appendVarBytesRaw(buf, t.RawData)
	}
	return buf
}

// DecodeInteropTransaction is the inverse of encodeInteropTransaction,
// exposed so callers of Oracle.Read("interop://.../tx/...") can parse the
// returned bytes back into an InteropTransaction.
func DecodeInteropTransaction(b []byte) (InteropTransaction, error) {
	if len(b) < 32+4 {
		return InteropTransaction{}, fmt.Errorf("%w: short interop transaction", ErrMalformedURL)
	}
	var tx InteropTransaction
	copy(tx.Hash[:], b[:32])
	off := 32
	count := binary.LittleEndian.Uint32(b[off:])
	off += 4
	tx.Transfers = make([]InteropTransfer, count)
	for i := range tx.Transfers {
		from, n, err := readVarString(b[off:])
		if err != nil {
			return InteropTransaction{}, err
		}
		off += n
		to, n, err := readVarString(b[off:])
		if err != nil {
			return InteropTransaction{}, err
		}
		off += n
		sym, n, err := readVarString(b[off:])
		if err != nil {
			return InteropTransaction{}, err
		}
		off += n
		valBytes, n, err := readVarBytesRaw(b[off:])
		if err != nil {
			return InteropTransaction{}, err
		}
		off += n
		raw, n, err := readVarBytesRaw(b[off:])
		if err != nil {
			return InteropTransaction{}, err
		}
		off += n
		tx.Transfers[i] = InteropTransfer{
			From:    from,
			To:      to,
			Symbol:  sym,
			Value:   new(big.Int).SetBytes(valBytes),
			RawData: raw,
		}
	}
	return tx, nil
}

func encodeInteropBlock(b InteropBlock) []byte {
	var buf []byte
	buf = appendVarString(buf, b.Platform)
	buf = appendVarString(buf, b.Chain)
	buf = append(buf, b.Hash[:]...)
	var cnt [4]byte
	binary.LittleEndian.PutUint32(cnt[:], uint32(len(b.TxHashes)))
	buf = append(buf, cnt[:]...)
	for _, h := range b.TxHashes {
		buf = append(buf, h[:]...)
	}
	return buf
}

func appendVarString(buf []byte, s string) []byte {
	return appendVarBytesRaw(buf, []byte(s))
}

func appendVarBytesRaw(buf []byte, b []byte) []byte {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(b)))
	buf = append(buf, lenBuf[:]...)
	return append(buf, b...)
}

func readVarString(b []byte) (string, int, error) {
	raw, n, err := readVarBytesRaw(b)
	return string(raw), n, err
}

func readVarBytesRaw(b []byte) ([]byte, int, error) {
	if len(b) < 4 {
		return nil, 0, fmt.Errorf("%w: short length prefix", ErrMalformedURL)
	}
	n := binary.LittleEndian.Uint32(b[:4])
	if uint64(len(b)-4) < uint64(n) {
		return nil, 0, fmt.Errorf("%w: truncated payload", ErrMalformedURL)
	}
	return b[4 : 4+n], 4 + int(n), nil
}
