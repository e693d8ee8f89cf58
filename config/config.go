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

// Package config loads the on-disk layout and retry parameters an Index
// is opened with.
package config

import (
	"fmt"
	"os"

	"github.com/c2h5oh/datasize"
	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"

	"github.com/mentalblood0/dream/internal/mathutil"
)

// Database describes where and how large the MDBX environment backing
// the five tables may grow.
type Database struct {
	Dir             string            `yaml:"dir"`
	SizeLower       datasize.ByteSize `yaml:"size_lower"`
	SizeUpper       datasize.ByteSize `yaml:"size_upper"`
	GrowthStep      datasize.ByteSize `yaml:"growth_step"`
	ShrinkThreshold datasize.ByteSize `yaml:"shrink_threshold"`
	// Lock, if set, is an advisory lock file path held for the process
	// lifetime so two processes don't open the same directory at once -
	// layered above MDBX's own environment lock, not instead of it.
	Lock string `yaml:"lock,omitempty"`
}

// Retry controls Index.Write's backoff around transient MDBX busy errors.
type Retry struct {
	MaxTries int `yaml:"max_tries"`
}

// Config is the top-level document loaded from a dream.yaml-style file.
type Config struct {
	Database Database `yaml:"database"`
	Retry    Retry    `yaml:"retry"`
}

// DefaultRetry mirrors the handful-of-attempts guidance in the
// specification's retry-on-busy note.
var DefaultRetry = Retry{MaxTries: 5}

// Load reads and parses a YAML config document from path.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if cfg.Retry.MaxTries == 0 {
		cfg.Retry.MaxTries = DefaultRetry.MaxTries
	}
	return cfg, nil
}

// Locker is the subset of gofrs/flock's *flock.Flock that the dream CLI
// uses when it opens an index: an
// advisory, process-held exclusive lock over Database.Lock.
type Locker interface {
	TryLock() (bool, error)
	Unlock() error
}

// NewLocker returns nil if no lock path is configured, otherwise an
// unlocked *flock.Flock ready for TryLock.
func (d Database) NewLocker() Locker {
	if d.Lock == "" {
		return nil
	}
	return flock.New(d.Lock)
}

// MaxMapSize returns the map size MDBX should be opened with: SizeUpper,
// or SizeLower plus one GrowthStep if SizeUpper was left unset. Reports
// an error if the addition overflows, since both fields come straight
// from user-supplied YAML.
func (d Database) MaxMapSize() (uint64, error) {
	if d.SizeUpper > 0 {
		return uint64(d.SizeUpper), nil
	}
	sum, overflow := mathutil.SafeAdd(uint64(d.SizeLower), uint64(d.GrowthStep))
	if overflow {
		return 0, fmt.Errorf("config: size_lower+growth_step overflows uint64")
	}
	return sum, nil
}
