// Copyright 2024 The Densevec Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package cases

import (
	"context"
	"math"
	"os"
	"path/filepath"

	"github.com/densevec/selfcheck/internal/testing"
	"github.com/densevec/selfcheck/vec"
)

const (
	testDimensions    = 32
	distanceTolerance = 1e-4
)

// testVector returns a deterministic vector whose first component is first.
func testVector(dims int, first float32) []float32 {
	v := make([]float32, dims)
	v[0] = first
	for i := 1; i < dims; i++ {
		v[i] = float32(i) + 0.1
	}
	return v
}

// populate adds n distinct vectors under keys 0..n-1.
func populate(s *testing.State, ix *vec.Index, n int) {
	for i := 0; i < n; i++ {
		if err := ix.Add(vec.Key(i), testVector(ix.Dimensions(), float32(i))); err != nil {
			s.Fatalf("Failed to add vector %d: %v", i, err)
		}
	}
}

func indexCreate(ctx context.Context, s *testing.State) {
	ix, err := vec.New(vec.Config{Dimensions: testDimensions, Metric: vec.Cosine})
	if err != nil {
		s.Fatal("Failed to create index: ", err)
	}
	if got := ix.Dimensions(); got != testDimensions {
		s.Errorf("Dimensions = %d; want %d", got, testDimensions)
	}
	if got := ix.Metric(); got != vec.Cosine {
		s.Errorf("Metric = %v; want cosine", got)
	}
	if got := ix.Len(); got != 0 {
		s.Errorf("Len = %d for fresh index; want 0", got)
	}
	if v := vec.Version(); v == "" {
		s.Error("Version returned an empty string")
	}
}

func indexAddGet(ctx context.Context, s *testing.State) {
	ix, err := vec.New(vec.DefaultConfig(testDimensions))
	if err != nil {
		s.Fatal("Failed to create index: ", err)
	}

	want := testVector(testDimensions, 42)
	if err := ix.Add(100, want); err != nil {
		s.Fatal("Failed to add vector: ", err)
	}
	if got := ix.Len(); got != 1 {
		s.Errorf("Len = %d after one add; want 1", got)
	}
	if !ix.Contains(100) {
		s.Error("Contains(100) = false after add")
	}

	got, err := ix.Get(100)
	if err != nil {
		s.Fatal("Failed to get vector: ", err)
	}
	for i := range want {
		if got[i] != want[i] {
			s.Fatalf("Retrieved vector differs at component %d: got %f, want %f", i, got[i], want[i])
		}
	}

	if err := ix.Add(100, want); err == nil {
		s.Error("Adding a duplicate key unexpectedly succeeded")
	}
}

func indexRemove(ctx context.Context, s *testing.State) {
	ix, err := vec.New(vec.DefaultConfig(testDimensions))
	if err != nil {
		s.Fatal("Failed to create index: ", err)
	}
	populate(s, ix, 5)

	if err := ix.Remove(2); err != nil {
		s.Fatal("Failed to remove vector: ", err)
	}
	if ix.Contains(2) {
		s.Error("Contains(2) = true after remove")
	}
	if got := ix.Len(); got != 4 {
		s.Errorf("Len = %d after remove; want 4", got)
	}
	for _, k := range []vec.Key{0, 1, 3, 4} {
		if !ix.Contains(k) {
			s.Errorf("Contains(%d) = false; remove deleted the wrong vector", k)
		}
	}
	if err := ix.Remove(2); err == nil {
		s.Error("Removing a missing key unexpectedly succeeded")
	}
}

func indexSearch(ctx context.Context, s *testing.State) {
	ix, err := vec.New(vec.DefaultConfig(testDimensions))
	if err != nil {
		s.Fatal("Failed to create index: ", err)
	}
	populate(s, ix, 10)

	query := testVector(testDimensions, 3)
	res, err := ix.Search(query, 5)
	if err != nil {
		s.Fatal("Search failed: ", err)
	}
	if len(res) != 5 {
		s.Fatalf("Search returned %d results; want 5", len(res))
	}
	if res[0].Key != 3 {
		s.Errorf("Nearest key = %d; want 3 (exact match)", res[0].Key)
	}
	if math.Abs(float64(res[0].Distance)) > distanceTolerance {
		s.Errorf("Exact-match distance = %f; want ~0", res[0].Distance)
	}
	for i := 1; i < len(res); i++ {
		if res[i].Distance < res[i-1].Distance {
			s.Errorf("Results out of order: result %d is closer than result %d", i, i-1)
		}
	}
}

// persistSnapshotName is the snapshot file indexPersist writes to scratch.
const persistSnapshotName = "index.dvec"

func indexPersist(ctx context.Context, s *testing.State) {
	ix, err := vec.New(vec.DefaultConfig(testDimensions))
	if err != nil {
		s.Fatal("Failed to create index: ", err)
	}
	populate(s, ix, 50)

	path := filepath.Join(s.ScratchDir(), persistSnapshotName)
	if err := ix.SaveFile(path); err != nil {
		s.Fatal("Failed to save snapshot: ", err)
	}

	restored, err := vec.LoadFile(path)
	if err != nil {
		s.Fatal("Failed to load snapshot: ", err)
	}
	if restored.Len() != ix.Len() {
		s.Errorf("Restored Len = %d; want %d", restored.Len(), ix.Len())
	}

	query := testVector(testDimensions, 7)
	res, err := restored.Search(query, 1)
	if err != nil {
		s.Fatal("Search on restored index failed: ", err)
	}
	if len(res) != 1 || res[0].Key != 7 {
		s.Errorf("Restored index search = %+v; want exact match for key 7", res)
	}
}

func indexPersistTeardown(ctx context.Context, s *testing.State) {
	// The executor removes the whole scratch dir afterwards; deleting the
	// snapshot here verifies the file is where the case claims it is.
	path := filepath.Join(s.ScratchDir(), persistSnapshotName)
	if err := os.Remove(path); err != nil {
		s.Error("Failed to remove snapshot: ", err)
	}
}

func indexSnapshot(ctx context.Context, s *testing.State) {
	ix, err := vec.New(vec.Config{Dimensions: testDimensions, Metric: vec.Cosine})
	if err != nil {
		s.Fatal("Failed to create index: ", err)
	}
	populate(s, ix, 20)

	b, err := ix.Bytes()
	if err != nil {
		s.Fatal("Failed to serialize index: ", err)
	}
	restored, err := vec.FromBytes(b)
	if err != nil {
		s.Fatal("Failed to restore index: ", err)
	}
	if restored.Len() != ix.Len() {
		s.Errorf("Restored Len = %d; want %d", restored.Len(), ix.Len())
	}
	if restored.Metric() != vec.Cosine || restored.Dimensions() != testDimensions {
		s.Errorf("Restored config = (%d, %v); want (%d, cosine)",
			restored.Dimensions(), restored.Metric(), testDimensions)
	}
}

func indexDistance(ctx context.Context, s *testing.State) {
	for _, tc := range []struct {
		name   string
		a, b   []float32
		metric vec.Metric
		want   float32
	}{
		{"l2sq", []float32{1, 0, 0}, []float32{0, 1, 0}, vec.L2sq, 2},
		{"cosine", []float32{1, 0, 0}, []float32{0, 1, 0}, vec.Cosine, 1},
		{"ip", []float32{1, 0, 0}, []float32{1, 0, 0}, vec.InnerProduct, 0},
	} {
		got, err := vec.Distance(tc.a, tc.b, tc.metric)
		if err != nil {
			s.Errorf("Distance(%s) failed: %v", tc.name, err)
			continue
		}
		if math.Abs(float64(got-tc.want)) > distanceTolerance {
			s.Errorf("Distance(%s) = %f; want %f", tc.name, got, tc.want)
		}
	}
}

func indexValidation(ctx context.Context, s *testing.State) {
	if _, err := vec.New(vec.Config{Dimensions: 0}); err == nil {
		s.Error("Creating an index with zero dimensions unexpectedly succeeded")
	}

	ix, err := vec.New(vec.DefaultConfig(testDimensions))
	if err != nil {
		s.Fatal("Failed to create index: ", err)
	}
	if err := ix.Add(1, nil); err == nil {
		s.Error("Adding an empty vector unexpectedly succeeded")
	}
	if err := ix.Add(1, make([]float32, testDimensions/2)); err == nil {
		s.Error("Adding a mismatched vector unexpectedly succeeded")
	}
	if _, err := ix.Search(nil, 1); err == nil {
		s.Error("Searching with an empty query unexpectedly succeeded")
	}
	if _, err := ix.Search(testVector(testDimensions, 0), 0); err == nil {
		s.Error("Searching with a zero limit unexpectedly succeeded")
	}
	if _, err := vec.Distance([]float32{1}, []float32{1, 2}, vec.L2sq); err == nil {
		s.Error("Distance with mismatched dimensions unexpectedly succeeded")
	}
}
