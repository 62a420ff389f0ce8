// Copyright 2024 The Densevec Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	"github.com/densevec/selfcheck/cases"
	"github.com/densevec/selfcheck/internal/logging"
	internaltesting "github.com/densevec/selfcheck/internal/testing"
)

// listCmd implements subcommands.Command to support listing battery cases.
type listCmd struct {
	json   bool      // marshal cases to JSON instead of just printing names
	stdout io.Writer // where to write cases
}

var _ = subcommands.Command(&listCmd{})

// newListCmd returns a new listCmd that will write cases to stdout.
func newListCmd(stdout io.Writer) *listCmd {
	return &listCmd{stdout: stdout}
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "list battery cases" }
func (*listCmd) Usage() string {
	return `Usage: list [flag]...

Description:
    List the cases in the self-test battery, in execution order.

Flag:
`
}

func (lc *listCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&lc.json, "json", false, "print full case details as JSON")
}

func (lc *listCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	reg, err := cases.Registry()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := lc.printCases(reg.AllTests()); err != nil {
		logging.Info(ctx, "Failed to write cases: ", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// printCases writes the supplied cases to lc.stdout.
func (lc *listCmd) printCases(tcs []*internaltesting.TestCase) error {
	if lc.json {
		type caseInfo struct {
			Name    string `json:"name"`
			Desc    string `json:"desc"`
			Timeout string `json:"timeout,omitempty"`
		}
		infos := make([]caseInfo, len(tcs))
		for i, tc := range tcs {
			infos[i] = caseInfo{Name: tc.Name, Desc: tc.Desc}
			if tc.Timeout > 0 {
				infos[i].Timeout = tc.Timeout.String()
			}
		}
		enc := json.NewEncoder(lc.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}

	for _, tc := range tcs {
		if _, err := fmt.Fprintln(lc.stdout, tc.Name); err != nil {
			return err
		}
	}
	return nil
}
