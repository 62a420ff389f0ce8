// Copyright 2024 The Densevec Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package planner executes test cases in isolation and produces one outcome
// per case. A fault inside a case (assertion failure, panic, ignored
// timeout) terminates only that case; the run always continues to the end
// of the battery so a single invocation yields complete diagnostics.
package planner

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/densevec/selfcheck/internal/logging"
	"github.com/densevec/selfcheck/internal/testing"
	"github.com/densevec/selfcheck/report"
)

const (
	// DefaultCaseTimeout bounds a case that does not declare its own timeout.
	DefaultCaseTimeout = 30 * time.Second

	gracePeriod     = 3 * time.Second  // extra time granted to a case to exit after its deadline
	teardownTimeout = 10 * time.Second // budget for a case's Teardown
)

// Config contains details about how the planner should run cases.
type Config struct {
	// ScratchBase is the directory under which per-case scratch directories
	// are created. Empty means the system temporary directory.
	ScratchBase string
	// CaseTimeout overrides DefaultCaseTimeout if positive.
	CaseTimeout time.Duration
	// Concurrency is the maximum number of cases in flight. Values below 2
	// select the default fully sequential mode.
	Concurrency int
}

func (c *Config) caseTimeout(tc *testing.TestCase) time.Duration {
	if tc.Timeout > 0 {
		return tc.Timeout
	}
	if c.CaseTimeout > 0 {
		return c.CaseTimeout
	}
	return DefaultCaseTimeout
}

// RunTests runs every case in tcs exactly once and returns one outcome per
// case, in the order given (i.e. registration order). It never returns
// early: later cases run even if earlier ones failed, crashed or timed out.
func RunTests(ctx context.Context, tcs []*testing.TestCase, cfg *Config) []*report.Outcome {
	if cfg == nil {
		cfg = &Config{}
	}
	outcomes := make([]*report.Outcome, len(tcs))

	if cfg.Concurrency > 1 {
		// Each case gets its own scratch directory, so independent cases can
		// run in parallel. Outcomes land in registration-order slots, which
		// keeps reporting deterministic while completion order varies.
		var g errgroup.Group
		g.SetLimit(cfg.Concurrency)
		for i, tc := range tcs {
			i, tc := i, tc
			g.Go(func() error {
				outcomes[i] = runCase(ctx, i, tc, cfg)
				return nil
			})
		}
		_ = g.Wait() // runCase never returns an error
		return outcomes
	}

	for i, tc := range tcs {
		outcomes[i] = runCase(ctx, i, tc, cfg)
	}
	return outcomes
}

// runCase runs a single case and always returns an outcome; panics and
// ignored deadlines inside the case never propagate to the caller.
func runCase(ctx context.Context, ordinal int, tc *testing.TestCase, cfg *Config) *report.Outcome {
	logging.Infof(ctx, "Running %s", tc.Name)
	start := time.Now()

	o := &report.Outcome{Name: tc.Name, Ordinal: ordinal}
	finish := func(status report.Status, reason string) *report.Outcome {
		o.Status = status
		o.Reason = reason
		o.Elapsed = report.Duration(time.Since(start))
		logging.Infof(ctx, "Completed %s (%s) in %v", tc.Name, status, time.Since(start).Round(time.Millisecond))
		return o
	}

	scratch, err := os.MkdirTemp(cfg.ScratchBase, scratchPrefix(tc.Name))
	if err != nil {
		return finish(report.Failed, fmt.Sprintf("failed to create scratch dir: %v", err))
	}
	// The scratch directory is removed on every exit path, including panics
	// and abandoned cases, so no case leaves residue affecting a later one.
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			logging.Infof(ctx, "Failed to remove scratch dir for %s: %v", tc.Name, err)
		}
	}()

	s := testing.NewState(ctx, tc, scratch)

	var panicked bool
	var panicVal interface{}
	timeout := cfg.caseTimeout(tc)
	err = runIsolated(ctx, tc.Name, timeout, gracePeriod, func(val interface{}) {
		panicked = true
		panicVal = val
	}, func(ctx context.Context) {
		tc.Func(ctx, s)
	})
	if err != nil {
		// The case ignored its deadline and was abandoned. Its goroutine may
		// still be running; Teardown is skipped since the case could touch
		// its state concurrently.
		return finish(report.TimedOut, err.Error())
	}

	if tc.Teardown != nil {
		var tdPanicked bool
		var tdPanicVal interface{}
		before := len(s.Errors())
		err = runIsolated(ctx, tc.Name+" teardown", teardownTimeout, gracePeriod, func(val interface{}) {
			tdPanicked = true
			tdPanicVal = val
		}, func(ctx context.Context) {
			tc.Teardown(ctx, s)
		})
		switch {
		case err != nil:
			s.Errorf("teardown did not return: %v", err)
		case tdPanicked:
			s.Errorf("teardown panic: %v", tdPanicVal)
		case len(s.Errors()) > before:
			// Teardown reported errors itself; they are already recorded and
			// will be appended to the diagnostics below.
		}
	}

	if panicked {
		// A panic in the case body is a contained fault, distinct from a
		// failed assertion. Teardown diagnostics, if any, ride along.
		return finish(report.Crashed, joinReasons(fmt.Sprintf("panic: %v", panicVal), reasons(s)))
	}
	if s.HasError() {
		return finish(report.Failed, joinReasons("", reasons(s)))
	}
	return finish(report.Passed, "")
}

// scratchPrefix derives an os.MkdirTemp pattern from a case name.
func scratchPrefix(name string) string {
	return "selfcheck_" + strings.Replace(name, ".", "_", -1) + "."
}

func reasons(s *testing.State) []string {
	var rs []string
	for _, e := range s.Errors() {
		rs = append(rs, e.Reason)
	}
	return rs
}

func joinReasons(first string, rest []string) string {
	all := rest
	if first != "" {
		all = append([]string{first}, rest...)
	}
	return strings.Join(all, "; ")
}
