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

package nexus

import (
	"testing"

	mapset "github.com/deckarep/golang-set"
	"github.com/stretchr/testify/require"

	"github.com/probechain/corevm/common"
	"github.com/probechain/corevm/state"
)

func TestGenesisNotEstablishedUntilSet(t *testing.T) {
	n := New(state.NewMemoryStore())
	require.False(t, n.HasGenesis())
	n.SetGenesisEstablished()
	require.True(t, n.HasGenesis())
}

func TestTokenInfoRoundTripPreservesFlags(t *testing.T) {
	n := New(state.NewMemoryStore())
	info := TokenInfo{
		Symbol:     "USD",
		Name:       "US Dollar",
		Decimals:   8,
		MaxSupply:  "0",
		IsFungible: true,
		Flags:      mapset.NewSetWith(FlagFiat),
	}
	n.PutTokenInfo(info)

	got, ok := n.GetTokenInfo("USD")
	require.True(t, ok)
	require.Equal(t, "USD", got.Symbol)
	require.Equal(t, 8, got.Decimals)
	require.True(t, got.Flags.Contains(FlagFiat))
	require.False(t, got.Flags.Contains(FlagFuel))
}

func TestTokenInfoCacheServesWithoutRootHit(t *testing.T) {
	root := state.NewMemoryStore()
	n := New(root)
	n.PutTokenInfo(TokenInfo{Symbol: "GAS", Decimals: 18, Flags: mapset.NewSet()})

	root.Delete([]byte(prefixToken + "GAS"))

	got, ok := n.GetTokenInfo("GAS")
	require.True(t, ok)
	require.Equal(t, "GAS", got.Symbol)
}

func TestLookUpAddressScriptAfterAllocByName(t *testing.T) {
	n := New(state.NewMemoryStore())
	script := []byte{0x01, 0x02, 0x03}
	addr := n.AllocContractByName("gas", script)

	require.True(t, addr.IsSystem())
	got, ok := n.LookUpAddressScript(addr)
	require.True(t, ok)
	require.Equal(t, script, got)
	require.True(t, n.HasScript(addr))
}

func TestPlatformRegistration(t *testing.T) {
	n := New(state.NewMemoryStore())
	require.False(t, n.PlatformExists("sidechain"))
	n.RegisterPlatform("sidechain")
	require.True(t, n.PlatformExists("sidechain"))
}

func TestGovernanceValueRoundTrip(t *testing.T) {
	n := New(state.NewMemoryStore())
	_, ok := n.GetGovernanceValue("StakingPrice")
	require.False(t, ok)

	n.SetGovernanceValue("StakingPrice", []byte{5, 0, 0, 0})
	got, ok := n.GetGovernanceValue("StakingPrice")
	require.True(t, ok)
	require.Equal(t, []byte{5, 0, 0, 0}, got)
}

func TestTransferTokensRejectsUnknownSymbol(t *testing.T) {
	n := New(state.NewMemoryStore())
	err := n.TransferTokens("NOPE", common.NullAddress, common.NullAddress, []byte{1})
	require.Error(t, err)
}
