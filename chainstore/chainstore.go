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

// Package chainstore implements the block/transaction index over a
// RootStore that the ChainStore host hook (spec.md §6) exposes to the
// Oracle Reader. Every record is addressed by a prefixed string key, read
// and written through plain Get/Put calls rather than a schema migration
// layer.
package chainstore

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/probechain/corevm/event"
	"github.com/probechain/corevm/log"
	"github.com/probechain/corevm/state"
)

const (
	prefixBlockByHash   = "chain/block/h/"
	prefixBlockByHeight = "chain/block/n/"
	prefixTx            = "chain/tx/"
	prefixTxBlock       = "chain/txblock/"
	prefixTxEvents      = "chain/txevents/"
)

// ErrNotFound is returned when a requested block or transaction is absent.
var ErrNotFound = errors.New("chainstore: not found")

// Block is the minimal block record the oracle and runtime need: identity,
// height, and the ordered list of transactions it contains.
type Block struct {
	Hash      [32]byte
	Height    uint64
	Timestamp uint32
	TxHashes  [][32]byte
}

// Transaction is the minimal transaction record.
type Transaction struct {
	Hash   [32]byte
	Script []byte
}

// ChainStore implements spec.md §6's ChainStore host hook: getBlockByHash,
// getBlockByHeight, getTransactionByHash, getBlockHashOfTransaction,
// getEventsForTransaction.
type ChainStore struct {
	root state.RootStore
	log  *log.Logger
}

// New constructs a ChainStore over root.
func New(root state.RootStore) *ChainStore {
	return &ChainStore{root: root, log: log.NewWith("component", "chainstore")}
}

// PutBlock indexes a block by both hash and height, and records each
// transaction's containing block hash.
func (c *ChainStore) PutBlock(b Block) {
	enc := encodeBlock(b)
	c.root.Put(blockHashKey(b.Hash), enc)
	c.root.Put(blockHeightKey(b.Height), b.Hash[:])
	for _, txHash := range b.TxHashes {
		c.root.Put(txBlockKey(txHash), b.Hash[:])
	}
}

// PutTransaction indexes a transaction by hash and records the events it
// produced, for later retrieval by GetEventsForTransaction.
func (c *ChainStore) PutTransaction(tx Transaction, events []event.Event) {
	c.root.Put(txKey(tx.Hash), tx.Script)
	var buf []byte
	for _, e := range events {
		ser := e.Serialize()
		var lenBuf [4]byte
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(ser)))
		buf = append(buf, lenBuf[:]...)
		buf = append(buf, ser...)
	}
	c.root.Put(txEventsKey(tx.Hash), buf)
}

// GetBlockByHash retrieves the block with the given hash.
func (c *ChainStore) GetBlockByHash(hash [32]byte) (Block, error) {
	raw, ok := c.root.Get(blockHashKey(hash))
	if !ok {
		return Block{}, fmt.Errorf("%w: block %x", ErrNotFound, hash)
	}
	return decodeBlock(raw)
}

// GetBlockByHeight retrieves the block at the given height directly, never
// by reusing a hash from an unrelated lookup. This resolves the open
// question in spec.md §9: the original source's block-by-height oracle path
// reused a stale `hash` variable left over from a prior lookup — a defect
// fixed here by indexing height to hash and dereferencing that hash fresh
// every time.
func (c *ChainStore) GetBlockByHeight(height uint64) (Block, error) {
	hashRaw, ok := c.root.Get(blockHeightKey(height))
	if !ok {
		return Block{}, fmt.Errorf("%w: height %d", ErrNotFound, height)
	}
	var hash [32]byte
	copy(hash[:], hashRaw)
	return c.GetBlockByHash(hash)
}

// GetTransactionByHash retrieves a transaction's script bytes by hash.
func (c *ChainStore) GetTransactionByHash(hash [32]byte) (Transaction, error) {
	raw, ok := c.root.Get(txKey(hash))
	if !ok {
		return Transaction{}, fmt.Errorf("%w: tx %x", ErrNotFound, hash)
	}
	return Transaction{Hash: hash, Script: raw}, nil
}

// GetBlockHashOfTransaction returns the hash of the block containing hash.
func (c *ChainStore) GetBlockHashOfTransaction(hash [32]byte) ([32]byte, error) {
	raw, ok := c.root.Get(txBlockKey(hash))
	if !ok {
		return [32]byte{}, fmt.Errorf("%w: tx %x", ErrNotFound, hash)
	}
	var blockHash [32]byte
	copy(blockHash[:], raw)
	return blockHash, nil
}

// GetEventsForTransaction returns the events a transaction produced, in
// emission order.
func (c *ChainStore) GetEventsForTransaction(hash [32]byte) ([]event.Event, error) {
	raw, ok := c.root.Get(txEventsKey(hash))
	if !ok {
		return nil, nil
	}
	var events []event.Event
	off := 0
	for off < len(raw) {
		if off+4 > len(raw) {
			c.log.Error("chainstore: truncated event index", "tx", hex.EncodeToString(hash[:]))
			break
		}
		n := binary.LittleEndian.Uint32(raw[off:])
		off += 4
		if off+int(n) > len(raw) {
			c.log.Error("chainstore: truncated event record", "tx", hex.EncodeToString(hash[:]))
			break
		}
		e, _, err := event.Unserialize(raw[off : off+int(n)])
		if err != nil {
			return nil, err
		}
		events = append(events, e)
		off += int(n)
	}
	return events, nil
}

func blockHashKey(h [32]byte) []byte   { return []byte(prefixBlockByHash + hex.EncodeToString(h[:])) }
func txKey(h [32]byte) []byte          { return []byte(prefixTx + hex.EncodeToString(h[:])) }
func txBlockKey(h [32]byte) []byte     { return []byte(prefixTxBlock + hex.EncodeToString(h[:])) }
func txEventsKey(h [32]byte) []byte    { return []byte(prefixTxEvents + hex.EncodeToString(h[:])) }

func blockHeightKey(height uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], height)
	return append([]byte(prefixBlockByHeight), buf[:]...)
}

func encodeBlock(b Block) []byte {
	buf := make([]byte, 0, 32+8+4+4+len(b.TxHashes)*32)
	buf = append(buf, b.Hash[:]...)
	var heightBuf [8]byte
	binary.BigEndian.PutUint64(heightBuf[:], b.Height)
	buf = append(buf, heightBuf[:]...)
	var tsBuf [4]byte
	binary.LittleEndian.PutUint32(tsBuf[:], b.Timestamp)
	buf = append(buf, tsBuf[:]...)
	var cntBuf [4]byte
	binary.LittleEndian.PutUint32(cntBuf[:], uint32(len(b.TxHashes)))
	buf = append(buf, cntBuf[:]...)
	for _, h := range b.TxHashes {
		buf = append(buf, h[:]...)
	}
	return buf
}

func decodeBlock(raw []byte) (Block, error) {
	if len(raw) < 32+8+4+4 {
		return Block{}, fmt.Errorf("chainstore: malformed block record")
	}
	var b Block
	copy(b.Hash[:], raw[:32])
	off := 32
	b.Height = binary.BigEndian.Uint64(raw[off:])
	off += 8
	b.Timestamp = binary.LittleEndian.Uint32(raw[off:])
	off += 4
	count := binary.LittleEndian.Uint32(raw[off:])
	off += 4
	b.TxHashes = make([][32]byte, count)
	for i := range b.TxHashes {
		if off+32 > len(raw) {
			return Block{}, fmt.Errorf("chainstore: malformed block record")
		}
		copy(b.TxHashes[i][:], raw[off:off+32])
		off += 32
	}
	return b, nil
}
