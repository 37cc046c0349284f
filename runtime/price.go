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

import (
	"fmt"
	"math/big"

	"github.com/probechain/corevm/nexus"
	"github.com/probechain/corevm/oracle"
)

// stakingPriceGovernanceKey names the governance value GetTokenPrice
// divides by five for the fuel token.
const stakingPriceGovernanceKey = "StakingPrice"

// ErrUnknownToken is returned by GetTokenPrice when symbol is not a
// registered token (the oracle is not consulted then), or when the fuel
// token's staking price governance value is unset.
var ErrUnknownToken = fmt.Errorf("runtime: unknown token")

// GetTokenPrice implements spec.md §4.E's GetTokenPrice operation.
func (r *Runtime) GetTokenPrice(symbol string) (*big.Int, error) {
	info, known := r.nexus.GetTokenInfo(symbol)
	if known && info.Flags != nil && info.Flags.Contains(nexus.FlagFiat) {
		return new(big.Int).Exp(big.NewInt(10), big.NewInt(oracle.FiatDecimals), nil), nil
	}
	if known && info.Flags != nil && info.Flags.Contains(nexus.FlagFuel) {
		raw, ok := r.nexus.GetGovernanceValue(stakingPriceGovernanceKey)
		if !ok {
			return nil, fmt.Errorf("%w: staking price not set", ErrUnknownToken)
		}
		staking := new(big.Int).SetBytes(reverseBytes(raw))
		return new(big.Int).Div(staking, big.NewInt(5)), nil
	}
	if !known {
		return nil, fmt.Errorf("%w: %s", ErrUnknownToken, symbol)
	}

	raw, err := r.oracle.Read(r.time, "price://"+symbol)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(reverseBytes(raw)), nil
}

// GetTokenQuote implements spec.md §4.E's GetTokenQuote operation: amount
// of base, expressed in quote, truncating toward zero.
func (r *Runtime) GetTokenQuote(base, quote string, amount *big.Int) (*big.Int, error) {
	basePrice, err := r.GetTokenPrice(base)
	if err != nil {
		return nil, err
	}
	quotePrice, err := r.GetTokenPrice(quote)
	if err != nil {
		return nil, err
	}
	if quotePrice.Sign() == 0 {
		return nil, fmt.Errorf("runtime: zero quote price for %s", quote)
	}

	baseInfo, _ := r.nexus.GetTokenInfo(base)
	quoteInfo, _ := r.nexus.GetTokenInfo(quote)

	fiatValue := new(big.Int).Mul(amount, basePrice)
	fiatValue = normalizeDecimals(fiatValue, baseInfo.Decimals, oracle.FiatDecimals)

	result := new(big.Int).Div(fiatValue, quotePrice)
	return normalizeDecimals(result, oracle.FiatDecimals, quoteInfo.Decimals), nil
}

// normalizeDecimals rescales v from a fromDecimals fixed-point
// representation to toDecimals, truncating toward zero on a shrink.
func normalizeDecimals(v *big.Int, fromDecimals, toDecimals int) *big.Int {
	if fromDecimals == toDecimals {
		return v
	}
	if toDecimals > fromDecimals {
		scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(toDecimals-fromDecimals)), nil)
		return new(big.Int).Mul(v, scale)
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(fromDecimals-toDecimals)), nil)
	return new(big.Int).Div(v, scale)
}

func reverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}
