// Copyright 2024 The Erigon Authors
// This file is part of Erigon.
//
// Erigon is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Erigon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Erigon. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"fmt"

	"github.com/mentalblood0/dream/config"
	"github.com/mentalblood0/dream/index"
	"github.com/mentalblood0/dream/kv"
	"github.com/mentalblood0/dream/kv/mdbx"
)

func openIndex() (*index.Index, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if locker := cfg.Database.NewLocker(); locker != nil {
		ok, err := locker.TryLock()
		if err != nil {
			return nil, fmt.Errorf("acquire lock: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("data directory %s is already locked", cfg.Database.Dir)
		}
	}

	geom := mdbx.DefaultGeometry
	if cfg.Database.SizeLower > 0 {
		geom.SizeLower = int(cfg.Database.SizeLower)
	}
	if cfg.Database.GrowthStep > 0 {
		geom.GrowthStep = int(cfg.Database.GrowthStep)
	}
	if maxSize, err := cfg.Database.MaxMapSize(); err != nil {
		return nil, fmt.Errorf("compute map size: %w", err)
	} else if maxSize > 0 {
		geom.SizeUpper = int(maxSize)
	}

	store, err := mdbx.Open(cfg.Database.Dir, kv.DefaultTablesCfg, geom)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return index.New(store, index.WithMaxTries(uint64(cfg.Retry.MaxTries))), nil
}
