// Copyright 2024 The Densevec Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package vec implements the dense-vector index exercised by the self-test
// battery. It is a straightforward exact-scan implementation: every search
// computes the distance to every stored vector. Correctness and portability
// matter here, not speed; the battery uses it to verify behavior of the
// shipped artifact on the target platform.
package vec

import (
	"math"
	"sort"
	"sync"

	"github.com/densevec/selfcheck/errors"
)

// libraryVersion identifies the index format and behavior revision.
const libraryVersion = "0.4.2"

// Version returns the library version string.
func Version() string { return libraryVersion }

// Key identifies a vector in an index.
type Key uint64

// Metric selects the distance function used by an index.
type Metric int

const (
	// L2sq is the squared Euclidean distance.
	L2sq Metric = iota
	// Cosine is the cosine distance (1 - cosine similarity).
	Cosine
	// InnerProduct is the inner-product distance (1 - dot product).
	InnerProduct
)

// String returns a short lower-case name of the metric.
func (m Metric) String() string {
	switch m {
	case L2sq:
		return "l2sq"
	case Cosine:
		return "cosine"
	case InnerProduct:
		return "ip"
	default:
		return "unknown"
	}
}

// Config describes parameters of an index.
type Config struct {
	// Dimensions is the number of scalar components per vector. Must be positive.
	Dimensions int
	// Metric is the distance function. Defaults to L2sq.
	Metric Metric
}

// DefaultConfig returns a Config with the given dimensionality and the
// default metric.
func DefaultConfig(dims int) Config {
	return Config{Dimensions: dims, Metric: L2sq}
}

// Result is a single search hit.
type Result struct {
	Key      Key
	Distance float32
}

// Index is a flat dense-vector index. It is safe for concurrent use.
type Index struct {
	cfg Config

	mu    sync.RWMutex
	keys  []Key
	vecs  []float32 // len(keys) * cfg.Dimensions, row-major
	byKey map[Key]int
}

// New creates an empty index per cfg.
func New(cfg Config) (*Index, error) {
	if cfg.Dimensions <= 0 {
		return nil, errors.Errorf("invalid dimensions %d", cfg.Dimensions)
	}
	if cfg.Metric < L2sq || cfg.Metric > InnerProduct {
		return nil, errors.Errorf("invalid metric %d", int(cfg.Metric))
	}
	return &Index{cfg: cfg, byKey: make(map[Key]int)}, nil
}

// Dimensions returns the configured dimensionality.
func (ix *Index) Dimensions() int { return ix.cfg.Dimensions }

// Metric returns the configured metric.
func (ix *Index) Metric() Metric { return ix.cfg.Metric }

// Len returns the number of stored vectors.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.keys)
}

// Add stores vector under key. Adding an already-present key is an error.
func (ix *Index) Add(key Key, vector []float32) error {
	if err := ix.checkVector(vector); err != nil {
		return err
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if _, ok := ix.byKey[key]; ok {
		return errors.Errorf("key %d already present", key)
	}
	ix.byKey[key] = len(ix.keys)
	ix.keys = append(ix.keys, key)
	ix.vecs = append(ix.vecs, vector...)
	return nil
}

// Get returns a copy of the vector stored under key.
func (ix *Index) Get(key Key) ([]float32, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	i, ok := ix.byKey[key]
	if !ok {
		return nil, errors.Errorf("key %d not found", key)
	}
	return append([]float32(nil), ix.row(i)...), nil
}

// Contains reports whether key is present.
func (ix *Index) Contains(key Key) bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	_, ok := ix.byKey[key]
	return ok
}

// Remove deletes the vector stored under key.
func (ix *Index) Remove(key Key) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	i, ok := ix.byKey[key]
	if !ok {
		return errors.Errorf("key %d not found", key)
	}
	// Move the last row into the removed slot.
	last := len(ix.keys) - 1
	d := ix.cfg.Dimensions
	if i != last {
		ix.keys[i] = ix.keys[last]
		copy(ix.vecs[i*d:(i+1)*d], ix.vecs[last*d:(last+1)*d])
		ix.byKey[ix.keys[i]] = i
	}
	ix.keys = ix.keys[:last]
	ix.vecs = ix.vecs[:last*d]
	delete(ix.byKey, key)
	return nil
}

// Search returns up to limit results closest to query, ordered by ascending
// distance. Ties are broken by ascending key so results are deterministic.
func (ix *Index) Search(query []float32, limit int) ([]Result, error) {
	if err := ix.checkVector(query); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, errors.Errorf("invalid result limit %d", limit)
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	res := make([]Result, 0, len(ix.keys))
	for i, key := range ix.keys {
		res = append(res, Result{Key: key, Distance: distance(query, ix.row(i), ix.cfg.Metric)})
	}
	sort.Slice(res, func(a, b int) bool {
		if res[a].Distance != res[b].Distance {
			return res[a].Distance < res[b].Distance
		}
		return res[a].Key < res[b].Key
	})
	if len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

func (ix *Index) row(i int) []float32 {
	d := ix.cfg.Dimensions
	return ix.vecs[i*d : (i+1)*d]
}

func (ix *Index) checkVector(vector []float32) error {
	if len(vector) == 0 {
		return errors.New("empty vector")
	}
	if len(vector) != ix.cfg.Dimensions {
		return errors.Errorf("vector has %d dimensions; index expects %d", len(vector), ix.cfg.Dimensions)
	}
	return nil
}

// Distance computes the distance between two vectors of equal dimensionality
// under the given metric.
func Distance(a, b []float32, m Metric) (float32, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, errors.New("empty vector")
	}
	if len(a) != len(b) {
		return 0, errors.Errorf("dimension mismatch: %d vs %d", len(a), len(b))
	}
	if m < L2sq || m > InnerProduct {
		return 0, errors.Errorf("invalid metric %d", int(m))
	}
	return distance(a, b, m), nil
}

func distance(a, b []float32, m Metric) float32 {
	switch m {
	case Cosine:
		var dot, na, nb float64
		for i := range a {
			dot += float64(a[i]) * float64(b[i])
			na += float64(a[i]) * float64(a[i])
			nb += float64(b[i]) * float64(b[i])
		}
		if na == 0 || nb == 0 {
			return 1
		}
		return float32(1 - dot/(math.Sqrt(na)*math.Sqrt(nb)))
	case InnerProduct:
		var dot float64
		for i := range a {
			dot += float64(a[i]) * float64(b[i])
		}
		return float32(1 - dot)
	default: // L2sq
		var sum float64
		for i := range a {
			d := float64(a[i]) - float64(b[i])
			sum += d * d
		}
		return float32(sum)
	}
}
