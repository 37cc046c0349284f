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

// Command corevm is a local single-transaction driver for the execution
// core, built on gopkg.in/urfave/cli.v1. It exists for fixture replay and
// local testing, not as a node: block production, P2P, and RPC surfaces
// are external collaborators (spec.md §1).
package main

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"os"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/probechain/corevm/chainstore"
	"github.com/probechain/corevm/common"
	"github.com/probechain/corevm/config"
	"github.com/probechain/corevm/contracts/order"
	"github.com/probechain/corevm/log"
	"github.com/probechain/corevm/nexus"
	"github.com/probechain/corevm/oracle"
	"github.com/probechain/corevm/runtime"
	"github.com/probechain/corevm/state"
	"github.com/probechain/corevm/vm"
)

var (
	configFlag = cli.StringFlag{Name: "config", Usage: "TOML configuration file"}
	storeFlag  = cli.StringFlag{Name: "store", Usage: "override the configured LevelDB store path"}
	entryFlag  = cli.StringFlag{Name: "entry", Usage: "entry context name"}
	methodFlag = cli.StringFlag{Name: "method", Usage: "entry method name"}
	scriptFlag = cli.StringFlag{Name: "script", Usage: "path to hex-encoded bytecode for the entry context"}
)

func main() {
	app := cli.NewApp()
	app.Name = "corevm"
	app.Usage = "drive the transactional execution core against a local store"
	app.Commands = []cli.Command{
		{
			Name:   "run",
			Usage:  "execute a single transaction's entry script and print its receipt",
			Flags:  []cli.Flag{configFlag, storeFlag, entryFlag, methodFlag, scriptFlag},
			Action: runCommand,
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Crit("corevm exited with error", "err", err)
	}
}

func runCommand(ctx *cli.Context) error {
	cfg := config.Defaults()
	if path := ctx.String(configFlag.Name); path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if path := ctx.String(storeFlag.Name); path != "" {
		cfg.StorePath = path
	}

	entryName := ctx.String(entryFlag.Name)
	if entryName == "" {
		return fmt.Errorf("corevm: --entry is required")
	}
	scriptPath := ctx.String(scriptFlag.Name)
	if scriptPath == "" {
		return fmt.Errorf("corevm: --script is required")
	}
	hexScript, err := os.ReadFile(scriptPath)
	if err != nil {
		return err
	}
	script, err := hex.DecodeString(trimHexWhitespace(string(hexScript)))
	if err != nil {
		return fmt.Errorf("corevm: malformed script hex: %w", err)
	}

	root, err := state.OpenLevelDBStore(cfg.StorePath)
	if err != nil {
		return err
	}
	defer root.Close()

	nx := nexus.New(root)
	for _, p := range cfg.Platforms {
		nx.RegisterPlatform(p.Name)
	}
	chain := chainstore.New(root)
	orc := oracle.New(chain, nx, unavailableHost{}, cfg.OracleCacheBytes)

	changes := state.New(root)
	rt := runtime.New(runtime.Config{
		Changes:      changes,
		Oracle:       orc,
		Nexus:        nx,
		Chain:        chain,
		ChainAddress: common.NullAddress,
		Time:         0,
	}, runtime.Transaction{
		EntryContext: entryName,
		EntryMethod:  ctx.String(methodFlag.Name),
	})
	rt.RegisterContext(&vm.Context{Name: entryName, Script: script})
	rt.RegisterContext(&vm.Context{Name: "order", Native: order.New(rt)})
	rt.GasMeter().MinimumFee = cfg.Gas.MinimumFee

	result := rt.Execute()
	if !result.Halted {
		return fmt.Errorf("fault at %s: %s (usedGas=%d)", result.FaultOpcode, result.FaultReason, result.UsedGas)
	}
	log.Info("halted", "usedGas", result.UsedGas, "paidGas", result.PaidGas)
	for _, e := range rt.Events().Events() {
		log.Info("event", "kind", e.Kind.String(), "contract", e.Contract)
	}
	return nil
}

func trimHexWhitespace(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\n', '\r', '\t':
		default:
			out = append(out, s[i])
		}
	}
	return string(out)
}

// unavailableHost is the Oracle Host used when no external chain watcher
// or price feed is wired in; every pull faults rather than blocking.
type unavailableHost struct{}

func (unavailableHost) PullData(uint32, string) ([]byte, error) {
	return nil, fmt.Errorf("corevm: no oracle host configured")
}
func (unavailableHost) PullPrice(uint32, string) (*big.Int, error) {
	return nil, fmt.Errorf("corevm: no oracle host configured")
}
func (unavailableHost) PullPlatformBlock(string, string, string) ([]byte, error) {
	return nil, fmt.Errorf("corevm: no oracle host configured")
}
func (unavailableHost) PullPlatformTransaction(string, string, string) ([]byte, error) {
	return nil, fmt.Errorf("corevm: no oracle host configured")
}
