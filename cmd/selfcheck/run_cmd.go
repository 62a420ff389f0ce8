// Copyright 2024 The Densevec Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/subcommands"

	selfcheck "github.com/densevec/selfcheck"
	"github.com/densevec/selfcheck/internal/logging"
	"github.com/densevec/selfcheck/report"
)

// runCmd implements subcommands.Command to support running the battery.
type runCmd struct {
	configPath  string        // optional YAML config file
	scratchBase string        // base dir for per-case scratch dirs
	timeout     time.Duration // per-case budget; 0 means the default
	concurrency int           // max cases in flight
	skipEnv     bool          // skip the host environment snapshot
	json        bool          // print the full report as JSON
	stdout      io.Writer     // where to write results
}

var _ = subcommands.Command(&runCmd{})

func newRunCmd(stdout io.Writer) *runCmd {
	return &runCmd{stdout: stdout}
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "run the self-test battery" }
func (*runCmd) Usage() string {
	return `Usage: run [flag]...

Description:
    Runs the full self-test battery against the in-process library, the same
    way the shipped bridge does, and prints per-case results.
    Exits with 0 if every case passed and with 1 otherwise.

Flag:
`
}

func (r *runCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&r.configPath, "config", "", "YAML config file; flags override its values")
	f.StringVar(&r.scratchBase, "scratch", "", "base directory for per-case scratch dirs (default: system temp dir)")
	f.DurationVar(&r.timeout, "timeout", 0, "per-case execution budget (default: built-in)")
	f.IntVar(&r.concurrency, "concurrency", 0, "maximum cases in flight (default: sequential)")
	f.BoolVar(&r.skipEnv, "skipenv", false, "skip the host environment snapshot")
	f.BoolVar(&r.json, "json", false, "print the full report as JSON")
}

// config merges the optional config file with flags. Flags set explicitly on
// the command line win.
func (r *runCmd) config(f *flag.FlagSet) (*selfcheck.Config, error) {
	cfg := &selfcheck.Config{}
	if r.configPath != "" {
		fc, err := loadFileConfig(r.configPath)
		if err != nil {
			return nil, err
		}
		cfg.ScratchBase = fc.ScratchBase
		cfg.Concurrency = fc.Concurrency
		cfg.SkipEnvironment = fc.SkipEnvironment
		if cfg.CaseTimeout, err = fc.caseTimeout(); err != nil {
			return nil, err
		}
	}
	set := make(map[string]bool)
	f.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	if set["scratch"] {
		cfg.ScratchBase = r.scratchBase
	}
	if set["timeout"] {
		cfg.CaseTimeout = r.timeout
	}
	if set["concurrency"] {
		cfg.Concurrency = r.concurrency
	}
	if set["skipenv"] {
		cfg.SkipEnvironment = r.skipEnv
	}
	return cfg, nil
}

func (r *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := r.config(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return subcommands.ExitUsageError
	}

	rep, err := selfcheck.Run(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return subcommands.ExitFailure
	}

	if err := r.printReport(rep); err != nil {
		logging.Info(ctx, "Failed to write report: ", err)
		return subcommands.ExitFailure
	}
	if rep.Overall != report.Passed {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// printReport writes the report to r.stdout.
func (r *runCmd) printReport(rep *report.Report) error {
	if r.json {
		b, err := rep.JSON()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(r.stdout, "%s\n", b)
		return err
	}

	for _, o := range rep.Outcomes {
		line := fmt.Sprintf("%-20s %-9s %7.1fms", o.Name, o.Status, float64(time.Duration(o.Elapsed))/float64(time.Millisecond))
		if o.Reason != "" {
			line += "  " + o.Reason
		}
		if _, err := fmt.Fprintln(r.stdout, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(r.stdout, "%s: %d/%d cases passed\n",
		rep.Overall, len(rep.Outcomes)-rep.FailureCount(), len(rep.Outcomes))
	return err
}
