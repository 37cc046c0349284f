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

// Package oracle implements the deterministic, URL-keyed cache of external
// reads described by spec.md §4.F. Its cache is a fastcache.Cache
// (github.com/VictoriaMetrics/fastcache) guarded by a
// golang.org/x/sync/singleflight group so concurrent readers of the same
// URL within a block observe byte-identical content and the host hook
// fires exactly once, matching spec.md §5's "first writer wins" rule.
package oracle

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/VictoriaMetrics/fastcache"
	"golang.org/x/sync/singleflight"

	"github.com/probechain/corevm/chainstore"
	"github.com/probechain/corevm/event"
)

// Host abstracts the external data sources the Oracle pulls from when its
// cache misses: PullData for opaque "other" URLs, PullPrice for price://
// symbols, and PullPlatformBlock/PullPlatformTransaction for interop://
// URLs against platforms other than the local one. This is spec.md §6's
// OracleHost.
type Host interface {
	PullData(timestamp uint32, url string) ([]byte, error)
	PullPrice(timestamp uint32, symbol string) (*big.Int, error)
	PullPlatformBlock(platform, chain, hash string) ([]byte, error)
	PullPlatformTransaction(platform, chain, hash string) ([]byte, error)
}

// Nexus is the subset of the registry the Oracle needs: platform
// recognition, and whether a token symbol is fungible (so interop
// transfer synthesis knows whether to require a PackedNFT pairing).
type Nexus interface {
	PlatformExists(platform string) bool
	TokenIsFungible(symbol string) (fungible, known bool)
}

// ErrMalformedURL is returned when a URL does not match the grammar of
// spec.md §6.
var ErrMalformedURL = errors.New("oracle: malformed url")

// ErrUnknownPlatform is returned when an interop:// URL names a platform
// the Nexus has not registered.
var ErrUnknownPlatform = errors.New("oracle: unknown platform")

// ErrUnpairedTransfer is returned when interop transfer synthesis cannot
// find a matching TokenReceive/TokenStake for a TokenSend.
var ErrUnpairedTransfer = errors.New("oracle: unpaired token transfer")

// localPlatform is the platform name the Oracle resolves directly against
// the node's own ChainStore rather than delegating to Host.
const localPlatform = "main"

// FiatDecimals is the decimal precision GetTokenPrice/ToBigIntegerBytes
// normalizes fiat-denominated prices to (spec.md §4.E).
const FiatDecimals = 8

// Oracle is the per-node, cross-VM-shared cache described by spec.md §4.F
// and §5 ("The Oracle Reader is shared across all VMs in a node; its only
// mutable state is the cache map").
type Oracle struct {
	cache *fastcache.Cache
	group singleflight.Group
	mu    sync.Mutex
	chain *chainstore.ChainStore
	nexus Nexus
	host  Host
}

// New constructs an Oracle backed by chain (for interop/local reads) and
// host (for price pulls and non-local interop delegation). maxBytes sizes
// the fastcache instance.
func New(chain *chainstore.ChainStore, nexus Nexus, host Host, maxBytes int) *Oracle {
	if maxBytes <= 0 {
		maxBytes = 32 * 1024 * 1024
	}
	return &Oracle{
		cache: fastcache.New(maxBytes),
		chain: chain,
		nexus: nexus,
		host:  host,
	}
}

// Clear wipes all cached entries. Callers invoke it between blocks
// (spec.md §4.F).
func (o *Oracle) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cache.Reset()
}

// Read resolves url, returning cached bytes on a hit and otherwise
// dispatching to the appropriate handler and caching the result. Identical
// URLs observed twice return byte-identical content (spec.md's testable
// invariant #2), enforced by the singleflight group collapsing concurrent
// misses for the same key into one underlying fetch.
func (o *Oracle) Read(timestamp uint32, url string) ([]byte, error) {
	if v, ok := o.cache.HasGet(nil, []byte(url)); ok {
		return v, nil
	}

	v, err, _ := o.group.Do(url, func() (any, error) {
		if cached, ok := o.cache.HasGet(nil, []byte(url)); ok {
			return cached, nil
		}
		content, err := o.resolve(timestamp, url)
		if err != nil {
			return nil, err
		}
		o.cache.Set([]byte(url), content)
		return content, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (o *Oracle) resolve(timestamp uint32, url string) ([]byte, error) {
	switch {
	case strings.HasPrefix(url, "price://"):
		return o.resolvePrice(timestamp, url)
	case strings.HasPrefix(url, "interop://"):
		return o.resolveInterop(timestamp, url)
	default:
		return o.host.PullData(timestamp, url)
	}
}

func (o *Oracle) resolvePrice(timestamp uint32, url string) ([]byte, error) {
	symbol := strings.TrimPrefix(url, "price://")
	if symbol == "" || strings.Contains(symbol, "/") {
		return nil, fmt.Errorf("%w: %s", ErrMalformedURL, url)
	}
	price, err := o.host.PullPrice(timestamp, symbol)
	if err != nil {
		return nil, err
	}
	return ToBigIntegerBytes(price, FiatDecimals), nil
}

// ToBigIntegerBytes normalizes price to the given decimal precision and
// serializes it as unsigned little-endian bytes, the representation
// GetTokenPrice expects back from a price:// read (spec.md §4.E).
func ToBigIntegerBytes(price *big.Int, decimals int) []byte {
	if price == nil {
		return nil
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	scaled := new(big.Int).Mul(price, scale)
	raw := scaled.Bytes() // big-endian
	for i, j := 0, len(raw)-1; i < j; i, j = i+1, j-1 {
		raw[i], raw[j] = raw[j], raw[i]
	}
	return raw
}

func (o *Oracle) resolveInterop(timestamp uint32, url string) ([]byte, error) {
	rest := strings.TrimPrefix(url, "interop://")
	parts := strings.SplitN(rest, "/", 4)
	if len(parts) != 4 {
		return nil, fmt.Errorf("%w: %s", ErrMalformedURL, url)
	}
	platform, chain, cmd, arg := parts[0], parts[1], parts[2], parts[3]
	if !o.nexus.PlatformExists(platform) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlatform, platform)
	}

	if platform != localPlatform {
		switch cmd {
		case "tx", "transaction":
			return o.host.PullPlatformTransaction(platform, chain, arg)
		case "block":
			return o.host.PullPlatformBlock(platform, chain, arg)
		default:
			return nil, fmt.Errorf("%w: unknown command %s", ErrMalformedURL, cmd)
		}
	}

	switch cmd {
	case "tx", "transaction":
		return o.resolveLocalTransaction(arg)
	case "block":
		return o.resolveLocalBlock(platform, chain, arg)
	default:
		return nil, fmt.Errorf("%w: unknown command %s", ErrMalformedURL, cmd)
	}
}

// InteropTransfer is a synthesized cross-chain transfer record produced by
// pairing a TokenSend event with its matching TokenReceive/TokenStake.
type InteropTransfer struct {
	From    string
	To      string
	Symbol  string
	Value   *big.Int
	RawData []byte
}

// InteropTransaction wraps the synthesized transfers found in one
// transaction's event log.
type InteropTransaction struct {
	Hash      [32]byte
	Transfers []InteropTransfer
}

func (o *Oracle) resolveLocalTransaction(hexHash string) ([]byte, error) {
	hash, err := parseHash(hexHash)
	if err != nil {
		return nil, err
	}
	events, err := o.chain.GetEventsForTransaction(hash)
	if err != nil {
		return nil, err
	}
	transfers, err := synthesizeTransfers(events, o.nexus)
	if err != nil {
		return nil, err
	}
	tx := InteropTransaction{Hash: hash, Transfers: transfers}
	return encodeInteropTransaction(tx), nil
}

// InteropBlock mirrors spec.md §4.F's block command result.
type InteropBlock struct {
	Platform string
	Chain    string
	Hash     [32]byte
	TxHashes [][32]byte
}

func (o *Oracle) resolveLocalBlock(platform, chain, arg string) ([]byte, error) {
	var block chainstore.Block
	var err error
	if hash, herr := parseHash(arg); herr == nil {
		block, err = o.chain.GetBlockByHash(hash)
	} else {
		var height uint64
		if _, serr := fmt.Sscanf(arg, "%d", &height); serr != nil {
			return nil, fmt.Errorf("%w: %s", ErrMalformedURL, arg)
		}
		block, err = o.chain.GetBlockByHeight(height)
	}
	if err != nil {
		return nil, err
	}
	ib := InteropBlock{Platform: platform, Chain: chain, Hash: block.Hash, TxHashes: block.TxHashes}
	return encodeInteropBlock(ib), nil
}

// synthesizeTransfers pairs each TokenSend event with a matching
// TokenReceive or TokenStake on the same {symbol, value}, per spec.md
// §4.F. For a symbol nexus reports as non-fungible, it additionally
// requires a matching PackedNFT event on the same symbol and attaches its
// payload as RawData. An unpaired TokenSend, or a non-fungible transfer
// missing its PackedNFT, faults.
func synthesizeTransfers(events []event.Event, nx Nexus) ([]InteropTransfer, error) {
	var transfers []InteropTransfer
	used := make([]bool, len(events))

	for i, e := range events {
		if e.Kind != event.TokenSend {
			continue
		}
		sendSym, sendVal, serr := decodeTokenPayload(e.Data)
		if serr != nil {
			return nil, serr
		}

		paired := -1
		for j, other := range events {
			if used[j] || j == i {
				continue
			}
			if other.Kind != event.TokenReceive && other.Kind != event.TokenStake {
				continue
			}
			otherSym, otherVal, oerr := decodeTokenPayload(other.Data)
			if oerr != nil {
				continue
			}
			if otherSym == sendSym && otherVal.Cmp(sendVal) == 0 {
				paired = j
				break
			}
		}
		if paired == -1 {
			return nil, fmt.Errorf("%w: %s value %s", ErrUnpairedTransfer, sendSym, sendVal.String())
		}
		used[paired] = true

		transfer := InteropTransfer{
			From:   e.Address.Hex(),
			To:     events[paired].Address.Hex(),
			Symbol: sendSym,
			Value:  sendVal,
		}

		if fungible, known := nx.TokenIsFungible(sendSym); known && !fungible {
			nftIdx := -1
			for j, other := range events {
				if used[j] || other.Kind != event.PackedNFT {
					continue
				}
				nftSym, _, nerr := decodePackedNFTPayload(other.Data)
				if nerr != nil {
					continue
				}
				if nftSym == sendSym {
					nftIdx = j
					break
				}
			}
			if nftIdx == -1 {
				return nil, fmt.Errorf("%w: %s missing PackedNFT pairing", ErrUnpairedTransfer, sendSym)
			}
			used[nftIdx] = true
			_, transfer.RawData, _ = decodePackedNFTPayload(events[nftIdx].Data)
		}

		transfers = append(transfers, transfer)
	}
	return transfers, nil
}

func parseHash(hex string) ([32]byte, error) {
	var h [32]byte
	b, err := decodeHex(hex)
	if err != nil || len(b) != 32 {
		return h, fmt.Errorf("%w: %s", ErrMalformedURL, hex)
	}
	copy(h[:], b)
	return h, nil
}
