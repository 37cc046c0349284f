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

// Package config loads cmd/corevm's TOML configuration.
package config

import (
	"fmt"
	"os"
	"reflect"
	"unicode"

	"github.com/naoina/toml"

	"github.com/probechain/corevm/log"
)

// tomlSettings keeps TOML keys identical to the Go struct field names, and
// treats an unrecognized field as a hard error rather than a silently
// ignored typo.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string { return key },
	FieldToKey:    func(rt reflect.Type, field string) string { return field },
	MissingField: func(rt reflect.Type, field string) error {
		id := fmt.Sprintf("%s.%s", rt.String(), field)
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://godoc.org/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

// GasSchedule overrides the Gas Meter's bootstrap parameters (spec.md §4.D)
// before genesis establishes its own GasEscrow.
type GasSchedule struct {
	MinimumFee uint64
}

// OraclePlatform registers one interop platform name the Oracle Reader's
// interop:// URLs may reference (spec.md §4.F). Only listed platforms are
// registered; the local "main" platform is not added implicitly.
type OraclePlatform struct {
	Name string
}

// Config is corevm's top-level TOML document.
type Config struct {
	StorePath string
	Gas       GasSchedule
	Platforms []OraclePlatform
	OracleCacheBytes int
}

// Defaults returns the configuration cmd/corevm runs with absent a file.
func Defaults() Config {
	return Config{
		StorePath:        "corevm-data",
		Gas:              GasSchedule{MinimumFee: 1},
		OracleCacheBytes: 32 * 1024 * 1024,
	}
}

// LoadFile reads and decodes a TOML configuration file at path, starting
// from Defaults so partial files only override what they mention.
func LoadFile(path string) (Config, error) {
	cfg := Defaults()
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()

	if err := tomlSettings.NewDecoder(f).Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	log.Info("loaded configuration", "path", path)
	return cfg, nil
}
