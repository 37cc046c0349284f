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

import "encoding/binary"

// lcgMultiplier and lcgModulus are the Lehmer/Park-Miller minimal standard
// generator constants spec.md §4.E requires.
const (
	lcgMultiplier int64 = 16807
	lcgModulus    int64 = 1<<31 - 1
)

// GetRandomNumber implements spec.md §4.E's GetRandomNumber operation: a
// deterministic LCG seeded lazily from the transaction hash, the entry
// script, and the block time, so the sequence is reproducible by every
// node replaying the same transaction.
func (r *Runtime) GetRandomNumber() int64 {
	if r.rngState == nil {
		seed := r.seedRandom()
		r.rngState = &seed
	}
	*r.rngState = (lcgMultiplier * *r.rngState) % lcgModulus
	return *r.rngState
}

// seedRandom computes H = tx.Hash xor entryScript xor little_endian(time),
// byte-wise with the shorter operand wrapping, folded into an int64 seed.
func (r *Runtime) seedRandom() int64 {
	var timeBytes [4]byte
	binary.LittleEndian.PutUint32(timeBytes[:], r.time)

	var entryScript []byte
	if ctx, ok := r.contexts[r.tx.EntryContext]; ok {
		entryScript = ctx.Script
	}

	h := make([]byte, len(r.tx.Hash))
	copy(h, r.tx.Hash[:])
	for i := range h {
		if len(entryScript) > 0 {
			h[i] ^= entryScript[i%len(entryScript)]
		}
		h[i] ^= timeBytes[i%len(timeBytes)]
	}

	seed := int64(binary.LittleEndian.Uint64(h[:8])) % lcgModulus
	if seed < 0 {
		seed += lcgModulus
	}
	if seed == 0 {
		seed = 1
	}
	return seed
}
