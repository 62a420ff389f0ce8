// Copyright 2024 The Densevec Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package report defines per-case outcomes and the aggregate report built
// from one full run of the self-test battery.
package report

import (
	"encoding/json"
	"time"

	"github.com/densevec/selfcheck/errors"
)

// Status classifies how a test case (or a whole run) finished.
type Status int

const (
	// Passed means the case finished without reporting errors.
	Passed Status = iota
	// Failed means the case reported at least one assertion or
	// setup/teardown error.
	Failed
	// Crashed means the case aborted with a panic or equivalent fault that
	// the executor contained.
	Crashed
	// TimedOut means the case exceeded its execution budget and was
	// abandoned.
	TimedOut
)

var statusNames = map[Status]string{
	Passed:   "passed",
	Failed:   "failed",
	Crashed:  "crashed",
	TimedOut: "timed_out",
}

// String returns a lower-case name of the status.
func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler so statuses serialize as
// stable strings rather than integers.
func (s Status) MarshalText() ([]byte, error) {
	n, ok := statusNames[s]
	if !ok {
		return nil, errors.Errorf("unknown status %d", int(s))
	}
	return []byte(n), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(b []byte) error {
	for st, n := range statusNames {
		if n == string(b) {
			*s = st
			return nil
		}
	}
	return errors.Errorf("unknown status %q", string(b))
}

// Duration serializes as fractional milliseconds so hosts with no notion of
// Go durations can consume it.
type Duration time.Duration

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(time.Duration(d)) / float64(time.Millisecond))
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var ms float64
	if err := json.Unmarshal(b, &ms); err != nil {
		return err
	}
	*d = Duration(ms * float64(time.Millisecond))
	return nil
}

// Outcome is the immutable result of one test case.
type Outcome struct {
	// Name is the case name from the registry.
	Name string `json:"name"`
	// Ordinal is the case's zero-based registration position.
	Ordinal int `json:"ordinal"`
	// Status classifies the result.
	Status Status `json:"status"`
	// Reason holds failure diagnostics. Empty for passed cases.
	Reason string `json:"reason,omitempty"`
	// Elapsed is the case's wall-clock duration.
	Elapsed Duration `json:"elapsed_ms"`
}

// Environment is a best-effort snapshot of the host the battery ran on.
type Environment struct {
	OS              string `json:"os"`
	Platform        string `json:"platform,omitempty"`
	PlatformVersion string `json:"platform_version,omitempty"`
	KernelVersion   string `json:"kernel_version,omitempty"`
	CPUs            int    `json:"cpus"`
	TotalMemory     uint64 `json:"total_memory,omitempty"`
	FreeMemory      uint64 `json:"free_memory,omitempty"`
}

// Report aggregates the outcomes of one full battery run. A Report is built
// once per run and not mutated afterwards.
type Report struct {
	// Overall is Passed iff every outcome is Passed.
	Overall Status `json:"overall"`
	// Outcomes lists per-case results in registration order, one per
	// registered case.
	Outcomes []*Outcome `json:"outcomes"`
	// LibraryVersion is the version of the library under test.
	LibraryVersion string `json:"library_version,omitempty"`
	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`
	// Elapsed is the wall-clock duration of the whole run.
	Elapsed Duration `json:"elapsed_ms"`
	// Environment describes the host, if collection was requested.
	Environment *Environment `json:"environment,omitempty"`
}

// New builds a report from outcomes. Overall is Passed iff every outcome
// is Passed; any Failed, Crashed or TimedOut outcome forces Failed.
func New(outcomes []*Outcome) *Report {
	overall := Passed
	for _, o := range outcomes {
		if o.Status != Passed {
			overall = Failed
			break
		}
	}
	return &Report{Overall: overall, Outcomes: outcomes}
}

// FailureCount returns the number of non-passing outcomes.
func (r *Report) FailureCount() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status != Passed {
			n++
		}
	}
	return n
}

// JSON serializes the report.
func (r *Report) JSON() ([]byte, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal report")
	}
	return b, nil
}

// FromJSON deserializes a report produced by JSON.
func FromJSON(b []byte) (*Report, error) {
	var r Report
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal report")
	}
	return &r, nil
}
