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

// Package bench benchmarks the search executor the way benches/
// benchmarks.rs does: a YAML-configured population, one sub-benchmark
// per present-tag-count, first in memory then on disk after a
// checkpoint.
package bench

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/mentalblood0/dream/id"
	"github.com/mentalblood0/dream/index"
	"github.com/mentalblood0/dream/kv"
	"github.com/mentalblood0/dream/kv/mdbx"
	"github.com/mentalblood0/dream/kv/memkv"
)

// BenchConfig mirrors the Rust harness's population parameters.
type BenchConfig struct {
	Seed        int64 `yaml:"seed"`
	TagPoolSize int   `yaml:"tag_pool_size"`
	TagsPerObj  int   `yaml:"tags_per_object"`
	ObjectCount int   `yaml:"object_count"`
	ReaderCount int   `yaml:"concurrent_readers"`
}

var defaultConfig = BenchConfig{
	Seed:        1,
	TagPoolSize: 64,
	TagsPerObj:  4,
	ObjectCount: 5000,
	ReaderCount: 8,
}

func loadConfig(b *testing.B) BenchConfig {
	b.Helper()
	path := os.Getenv("DREAM_BENCH_CONFIG")
	if path == "" {
		return defaultConfig
	}
	data, err := os.ReadFile(path)
	if err != nil {
		b.Fatalf("read bench config: %v", err)
	}
	var cfg BenchConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		b.Fatalf("parse bench config: %v", err)
	}
	return cfg
}

func populate(b *testing.B, idx *index.Index, cfg BenchConfig) []id.Object {
	b.Helper()
	ctx := context.Background()
	rng := rand.New(rand.NewSource(cfg.Seed))

	tags := make([]id.Object, cfg.TagPoolSize)
	for i := range tags {
		tags[i] = id.Raw(fmt.Sprintf("tag-%d", i))
	}

	if err := idx.Write(ctx, func(tx *index.WriteTx) error {
		for o := 0; o < cfg.ObjectCount; o++ {
			object := id.Raw(fmt.Sprintf("object-%d", o))
			picked := rng.Perm(cfg.TagPoolSize)[:cfg.TagsPerObj]
			chosen := make([]id.Object, len(picked))
			for j, t := range picked {
				chosen[j] = tags[t]
			}
			if _, err := tx.Insert(object, chosen); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		b.Fatalf("populate: %v", err)
	}
	return tags
}

func runPresentCountBenchmarks(b *testing.B, idx *index.Index, tags []id.Object, cfg BenchConfig) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(cfg.Seed + 1))

	for n := 1; n <= 4; n++ {
		n := n
		b.Run(fmt.Sprintf("present=%d", n), func(b *testing.B) {
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				present := make([]id.Object, n)
				for j, t := range rng.Perm(len(tags))[:n] {
					present[j] = tags[t]
				}
				if err := idx.Read(ctx, func(tx *index.Tx) error {
					it, err := tx.Search(present, nil, nil)
					if err != nil {
						return err
					}
					for {
						_, ok, err := it.Next()
						if err != nil {
							return err
						}
						if !ok {
							return nil
						}
					}
				}); err != nil {
					b.Fatalf("search: %v", err)
				}
			}
		})
	}
}

// BenchmarkSearchInMemory is the "in-memory" phase: kv/memkv, no disk I/O.
func BenchmarkSearchInMemory(b *testing.B) {
	cfg := loadConfig(b)
	store := memkv.New(kv.DefaultTablesCfg)
	idx := index.New(store)
	tags := populate(b, idx, cfg)
	runPresentCountBenchmarks(b, idx, tags, cfg)
}

// BenchmarkSearchOnDisk is the "on-disk" phase: kv/mdbx, with an explicit
// checkpoint between population and search to force a durable flush.
func BenchmarkSearchOnDisk(b *testing.B) {
	cfg := loadConfig(b)
	dir, err := os.MkdirTemp("", "dream-bench-*")
	if err != nil {
		b.Fatalf("mkdir temp: %v", err)
	}
	defer os.RemoveAll(dir)

	store, err := mdbx.Open(filepath.Join(dir, "data"), kv.DefaultTablesCfg, mdbx.DefaultGeometry)
	if err != nil {
		b.Fatalf("open mdbx: %v", err)
	}
	defer store.Close()

	idx := index.New(store)
	tags := populate(b, idx, cfg)
	if err := idx.Checkpoint(); err != nil {
		b.Fatalf("checkpoint: %v", err)
	}
	runPresentCountBenchmarks(b, idx, tags, cfg)
}

// BenchmarkSearchConcurrentReaders exercises the multi-reader side of the
// concurrency model: many goroutines reading through the same Index
// while a single present-tag search runs in each, coordinated with
// golang.org/x/sync/errgroup so the benchmark fails loudly on the first
// reader error instead of silently dropping it.
func BenchmarkSearchConcurrentReaders(b *testing.B) {
	cfg := loadConfig(b)
	store := memkv.New(kv.DefaultTablesCfg)
	idx := index.New(store)
	tags := populate(b, idx, cfg)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g, gctx := errgroup.WithContext(ctx)
		for r := 0; r < cfg.ReaderCount; r++ {
			tag := tags[r%len(tags)]
			g.Go(func() error {
				return idx.Read(gctx, func(tx *index.Tx) error {
					it, err := tx.Search([]id.Object{tag}, nil, nil)
					if err != nil {
						return err
					}
					for {
						_, ok, err := it.Next()
						if err != nil {
							return err
						}
						if !ok {
							return nil
						}
					}
				})
			})
		}
		if err := g.Wait(); err != nil {
			b.Fatalf("concurrent readers: %v", err)
		}
	}
}
