// Copyright 2024 The Densevec Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/densevec/selfcheck/report"
	"github.com/densevec/selfcheck/testutil"
)

// parseRunFlags builds a runCmd with the given command-line arguments parsed.
func parseRunFlags(t *testing.T, args ...string) (*runCmd, *flag.FlagSet) {
	t.Helper()
	r := newRunCmd(&bytes.Buffer{})
	f := flag.NewFlagSet("run", flag.ContinueOnError)
	r.SetFlags(f)
	if err := f.Parse(args); err != nil {
		t.Fatalf("Failed to parse flags %v: %v", args, err)
	}
	return r, f
}

func TestRunCmdConfigDefaults(t *testing.T) {
	r, f := parseRunFlags(t)
	cfg, err := r.config(f)
	if err != nil {
		t.Fatalf("config failed: %v", err)
	}
	if cfg.ScratchBase != "" || cfg.CaseTimeout != 0 || cfg.Concurrency != 0 || cfg.SkipEnvironment {
		t.Errorf("config = %+v; want zero value", cfg)
	}
}

func TestRunCmdConfigFromFile(t *testing.T) {
	td := testutil.TempDir(t)
	defer os.RemoveAll(td)

	path := filepath.Join(td, "selfcheck.yaml")
	data := "scratch_base: /data/scratch\ncase_timeout: 45s\nconcurrency: 2\nskip_environment: true\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	r, f := parseRunFlags(t, "-config", path)
	cfg, err := r.config(f)
	if err != nil {
		t.Fatalf("config failed: %v", err)
	}
	if cfg.ScratchBase != "/data/scratch" {
		t.Errorf("ScratchBase = %q; want /data/scratch", cfg.ScratchBase)
	}
	if cfg.CaseTimeout != 45*time.Second {
		t.Errorf("CaseTimeout = %v; want 45s", cfg.CaseTimeout)
	}
	if cfg.Concurrency != 2 {
		t.Errorf("Concurrency = %d; want 2", cfg.Concurrency)
	}
	if !cfg.SkipEnvironment {
		t.Error("SkipEnvironment = false; want true")
	}
}

// TestRunCmdFlagsOverrideFile verifies that explicit flags win over the file.
func TestRunCmdFlagsOverrideFile(t *testing.T) {
	td := testutil.TempDir(t)
	defer os.RemoveAll(td)

	path := filepath.Join(td, "selfcheck.yaml")
	data := "case_timeout: 45s\nconcurrency: 2\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	r, f := parseRunFlags(t, "-config", path, "-timeout", "10s")
	cfg, err := r.config(f)
	if err != nil {
		t.Fatalf("config failed: %v", err)
	}
	if cfg.CaseTimeout != 10*time.Second {
		t.Errorf("CaseTimeout = %v; want flag value 10s", cfg.CaseTimeout)
	}
	if cfg.Concurrency != 2 {
		t.Errorf("Concurrency = %d; want file value 2", cfg.Concurrency)
	}
}

func TestRunCmdBadConfig(t *testing.T) {
	td := testutil.TempDir(t)
	defer os.RemoveAll(td)

	for _, tc := range []struct{ name, data string }{
		{"bad duration", "case_timeout: sometimes\n"},
		{"negative concurrency", "concurrency: -1\n"},
		{"unknown key", "scratch_dir: /tmp\n"},
	} {
		path := filepath.Join(td, "bad.yaml")
		if err := os.WriteFile(path, []byte(tc.data), 0644); err != nil {
			t.Fatalf("Failed to write config: %v", err)
		}
		if _, err := loadFileConfig(path); err == nil {
			t.Errorf("loadFileConfig unexpectedly succeeded for %s", tc.name)
		}
	}
}

func TestRunCmdPrintReport(t *testing.T) {
	rep := report.New([]*report.Outcome{
		{Name: "index.Create", Ordinal: 0, Status: report.Passed, Elapsed: report.Duration(3 * time.Millisecond)},
		{Name: "index.Search", Ordinal: 1, Status: report.Failed, Reason: "nearest key mismatch"},
	})

	var out bytes.Buffer
	r := newRunCmd(&out)
	if err := r.printReport(rep); err != nil {
		t.Fatalf("printReport failed: %v", err)
	}

	got := out.String()
	for _, want := range []string{"index.Create", "passed", "index.Search", "failed", "nearest key mismatch", "failed: 1/2 cases passed"} {
		if !strings.Contains(got, want) {
			t.Errorf("Output %q doesn't contain %q", got, want)
		}
	}
}

func TestRunCmdPrintReportJSON(t *testing.T) {
	rep := report.New([]*report.Outcome{
		{Name: "index.Create", Status: report.Passed},
	})

	var out bytes.Buffer
	r := newRunCmd(&out)
	r.json = true
	if err := r.printReport(rep); err != nil {
		t.Fatalf("printReport failed: %v", err)
	}

	parsed, err := report.FromJSON(out.Bytes())
	if err != nil {
		t.Fatalf("Failed to parse JSON output: %v", err)
	}
	if parsed.Overall != report.Passed || len(parsed.Outcomes) != 1 {
		t.Errorf("Parsed report = %+v; want one passed outcome", parsed)
	}
}
