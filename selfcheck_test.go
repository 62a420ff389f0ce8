// Copyright 2024 The Densevec Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package selfcheck_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"

	selfcheck "github.com/densevec/selfcheck"
	"github.com/densevec/selfcheck/cases"
	"github.com/densevec/selfcheck/report"
	"github.com/densevec/selfcheck/testutil"
)

func runOnce(t *testing.T, cfg *selfcheck.Config) *report.Report {
	t.Helper()
	rep, err := selfcheck.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return rep
}

func TestRun(t *testing.T) {
	base := testutil.TempDir(t)
	defer os.RemoveAll(base)

	rep := runOnce(t, &selfcheck.Config{ScratchBase: base})

	reg, err := cases.Registry()
	if err != nil {
		t.Fatalf("Registry failed: %v", err)
	}
	if len(rep.Outcomes) != reg.Len() {
		t.Errorf("got %d outcomes; want %d", len(rep.Outcomes), reg.Len())
	}
	if rep.Overall != report.Passed {
		t.Errorf("Overall = %v; want passed", rep.Overall)
		for _, o := range rep.Outcomes {
			if o.Status != report.Passed {
				t.Logf("%s: %v (%s)", o.Name, o.Status, o.Reason)
			}
		}
	}
	if rep.FailureCount() != 0 {
		t.Errorf("FailureCount = %d; want 0", rep.FailureCount())
	}
	if rep.LibraryVersion == "" {
		t.Error("LibraryVersion is empty")
	}
	if rep.StartedAt.IsZero() {
		t.Error("StartedAt is zero")
	}
	if rep.Environment == nil {
		t.Error("Environment was not collected")
	}
}

func TestRunNilConfig(t *testing.T) {
	rep := runOnce(t, nil)
	if rep.Overall != report.Passed {
		t.Errorf("Overall = %v; want passed", rep.Overall)
	}
}

func TestRunSkipEnvironment(t *testing.T) {
	base := testutil.TempDir(t)
	defer os.RemoveAll(base)

	rep := runOnce(t, &selfcheck.Config{ScratchBase: base, SkipEnvironment: true})
	if rep.Environment != nil {
		t.Errorf("Environment = %+v; want nil", rep.Environment)
	}
}

// TestRunRepeatable verifies that consecutive runs within one process are
// independent and produce identical case names, order and statuses.
func TestRunRepeatable(t *testing.T) {
	base := testutil.TempDir(t)
	defer os.RemoveAll(base)

	type shape struct {
		Name   string
		Status report.Status
	}
	extract := func(rep *report.Report) []shape {
		var ss []shape
		for _, o := range rep.Outcomes {
			ss = append(ss, shape{o.Name, o.Status})
		}
		return ss
	}

	first := extract(runOnce(t, &selfcheck.Config{ScratchBase: base}))
	second := extract(runOnce(t, &selfcheck.Config{ScratchBase: base}))
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Runs differ (-first +second):\n%s", diff)
	}
}

func TestRunConcurrent(t *testing.T) {
	base := testutil.TempDir(t)
	defer os.RemoveAll(base)

	seq := runOnce(t, &selfcheck.Config{ScratchBase: base})
	par := runOnce(t, &selfcheck.Config{ScratchBase: base, Concurrency: 4})

	if len(par.Outcomes) != len(seq.Outcomes) {
		t.Fatalf("got %d outcomes; want %d", len(par.Outcomes), len(seq.Outcomes))
	}
	for i := range par.Outcomes {
		if par.Outcomes[i].Name != seq.Outcomes[i].Name {
			t.Errorf("outcome %d: name %q; want %q", i, par.Outcomes[i].Name, seq.Outcomes[i].Name)
		}
	}
	if par.Overall != report.Passed {
		t.Errorf("Overall = %v; want passed", par.Overall)
	}
}
