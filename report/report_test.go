// Copyright 2024 The Densevec Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package report_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/densevec/selfcheck/report"
)

func TestOverallPassedIffAllPassed(t *testing.T) {
	for _, tc := range []struct {
		name     string
		statuses []report.Status
		want     report.Status
	}{
		{"empty", nil, report.Passed},
		{"all passed", []report.Status{report.Passed, report.Passed}, report.Passed},
		{"one failed", []report.Status{report.Passed, report.Failed, report.Passed}, report.Failed},
		{"one crashed", []report.Status{report.Crashed}, report.Failed},
		{"one timed out", []report.Status{report.Passed, report.TimedOut}, report.Failed},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var outcomes []*report.Outcome
			for i, st := range tc.statuses {
				outcomes = append(outcomes, &report.Outcome{Name: "index.Create", Ordinal: i, Status: st})
			}
			r := report.New(outcomes)
			if r.Overall != tc.want {
				t.Errorf("Overall = %v; want %v", r.Overall, tc.want)
			}
			if len(r.Outcomes) != len(tc.statuses) {
				t.Errorf("len(Outcomes) = %d; want %d", len(r.Outcomes), len(tc.statuses))
			}
		})
	}
}

func TestFailureCount(t *testing.T) {
	r := report.New([]*report.Outcome{
		{Status: report.Passed},
		{Status: report.Failed},
		{Status: report.Crashed},
		{Status: report.TimedOut},
	})
	if n := r.FailureCount(); n != 3 {
		t.Errorf("FailureCount = %d; want 3", n)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	r := report.New([]*report.Outcome{
		{Name: "index.Create", Ordinal: 0, Status: report.Passed, Elapsed: report.Duration(15 * time.Millisecond)},
		{Name: "index.Search", Ordinal: 1, Status: report.Failed, Reason: "mismatch"},
	})
	r.LibraryVersion = "0.4.2"
	r.StartedAt = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	r.Elapsed = report.Duration(20 * time.Millisecond)

	b, err := r.JSON()
	if err != nil {
		t.Fatalf("JSON failed: %v", err)
	}
	for _, want := range []string{`"overall":"failed"`, `"status":"passed"`, `"reason":"mismatch"`, `"elapsed_ms":15`} {
		if !strings.Contains(string(b), want) {
			t.Errorf("JSON output %s does not contain %s", b, want)
		}
	}

	got, err := report.FromJSON(b)
	if err != nil {
		t.Fatalf("FromJSON failed: %v", err)
	}
	if diff := cmp.Diff(r, got); diff != "" {
		t.Errorf("Round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestStatusText(t *testing.T) {
	for st, want := range map[report.Status]string{
		report.Passed:   "passed",
		report.Failed:   "failed",
		report.Crashed:  "crashed",
		report.TimedOut: "timed_out",
	} {
		if got := st.String(); got != want {
			t.Errorf("%d.String() = %q; want %q", int(st), got, want)
		}
	}
	if _, err := report.Status(42).MarshalText(); err == nil {
		t.Error("MarshalText succeeded for unknown status")
	}
}
