// Copyright 2024 The Densevec Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package testing

import (
	"context"
	gotesting "testing"

	"github.com/google/go-cmp/cmp"
)

// noopFunc does nothing and is used for cases that never run.
func noopFunc(ctx context.Context, s *State) {}

func TestAddTestPreservesOrder(t *gotesting.T) {
	reg := NewRegistry()
	names := []string{"index.Create", "index.Search", "index.Remove"}
	for _, n := range names {
		if err := reg.AddTest(&TestCase{Name: n, Func: noopFunc}); err != nil {
			t.Fatalf("AddTest(%q) failed: %v", n, err)
		}
	}

	var got []string
	for _, tc := range reg.AllTests() {
		got = append(got, tc.Name)
	}
	if diff := cmp.Diff(names, got); diff != "" {
		t.Errorf("AllTests order mismatch (-want +got):\n%s", diff)
	}
	if reg.Len() != len(names) {
		t.Errorf("Len = %d; want %d", reg.Len(), len(names))
	}
}

func TestAddTestRejectsDuplicates(t *gotesting.T) {
	reg := NewRegistry()
	tc := &TestCase{Name: "index.Create", Func: noopFunc}
	if err := reg.AddTest(tc); err != nil {
		t.Fatalf("AddTest failed: %v", err)
	}
	if err := reg.AddTest(tc); err == nil {
		t.Error("AddTest succeeded for duplicate name")
	}
}

func TestAddTestValidation(t *gotesting.T) {
	for _, tc := range []*TestCase{
		{Name: "", Func: noopFunc},
		{Name: "NoGroup", Func: noopFunc},
		{Name: "index.lowercase", Func: noopFunc},
		{Name: "index.Create", Func: nil},
		{Name: "index.Create", Func: noopFunc, Timeout: -1},
	} {
		if err := NewRegistry().AddTest(tc); err == nil {
			t.Errorf("AddTest succeeded for invalid case %+v", tc)
		}
	}
}

func TestAllTestsReturnsCopies(t *gotesting.T) {
	reg := NewRegistry()
	if err := reg.AddTest(&TestCase{Name: "index.Create", Func: noopFunc, Desc: "original"}); err != nil {
		t.Fatalf("AddTest failed: %v", err)
	}
	reg.AllTests()[0].Desc = "mutated"
	if got := reg.AllTests()[0].Desc; got != "original" {
		t.Errorf("registered case was mutated through AllTests: Desc = %q", got)
	}
}
