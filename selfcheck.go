// Copyright 2024 The Densevec Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package selfcheck runs the library's built-in functional test battery and
// reports the results.
//
// The battery verifies the compiled library on the platform it actually
// ships to, under that platform's runtime constraints. Each case runs in
// isolation with a private scratch directory; a fault in one case is
// contained and never aborts the run or the host process. Hosts consume the
// result either through the C entry points exported by the bridge binary or,
// from Go, by calling Run directly.
package selfcheck

import (
	"context"
	"time"

	"github.com/densevec/selfcheck/cases"
	"github.com/densevec/selfcheck/internal/planner"
	"github.com/densevec/selfcheck/internal/sysinfo"
	"github.com/densevec/selfcheck/report"
	"github.com/densevec/selfcheck/vec"
)

// Config controls a battery run. The zero value selects sane defaults:
// sequential execution, the default per-case budget and the system
// temporary directory for scratch space.
type Config struct {
	// ScratchBase is the directory under which per-case scratch directories
	// are created. Empty means the system temporary directory.
	ScratchBase string
	// CaseTimeout overrides the default per-case execution budget.
	CaseTimeout time.Duration
	// Concurrency is the maximum number of cases in flight. Values below 2
	// select sequential execution. Reporting order is always registration
	// order regardless of this setting.
	Concurrency int
	// SkipEnvironment disables the host environment snapshot in the report.
	SkipEnvironment bool
}

// Run executes every registered case exactly once and returns the aggregate
// report. Each call builds a fresh registry and report, so repeated calls
// within one process are independent.
//
// Run returns a non-nil error only if the battery could not be assembled or
// started at all; failures of individual cases are expressed in the report.
func Run(ctx context.Context, cfg *Config) (*report.Report, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	reg, err := cases.Registry()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	outcomes := planner.RunTests(ctx, reg.AllTests(), &planner.Config{
		ScratchBase: cfg.ScratchBase,
		CaseTimeout: cfg.CaseTimeout,
		Concurrency: cfg.Concurrency,
	})

	rep := report.New(outcomes)
	rep.LibraryVersion = vec.Version()
	rep.StartedAt = start
	rep.Elapsed = report.Duration(time.Since(start))
	if !cfg.SkipEnvironment {
		rep.Environment = sysinfo.Collect(ctx)
	}
	return rep, nil
}
