// Copyright 2024 The Densevec Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/densevec/selfcheck/errors"
)

// fileConfig mirrors the run settings that can be stored in a YAML file and
// passed via -config. Flags given on the command line take precedence over
// values read from the file.
type fileConfig struct {
	// ScratchBase is the directory for per-case scratch directories.
	ScratchBase string `yaml:"scratch_base"`
	// CaseTimeout is the per-case budget as a Go duration string, e.g. "45s".
	CaseTimeout string `yaml:"case_timeout"`
	// Concurrency is the maximum number of cases in flight.
	Concurrency int `yaml:"concurrency"`
	// SkipEnvironment disables the host environment snapshot.
	SkipEnvironment bool `yaml:"skip_environment"`
}

// loadFileConfig reads and validates a YAML config file.
func loadFileConfig(path string) (*fileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config %s", path)
	}
	var fc fileConfig
	if err := yaml.UnmarshalStrict(b, &fc); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config %s", path)
	}
	if _, err := fc.caseTimeout(); err != nil {
		return nil, errors.Wrapf(err, "bad case_timeout in %s", path)
	}
	if fc.Concurrency < 0 {
		return nil, errors.Errorf("bad concurrency %d in %s", fc.Concurrency, path)
	}
	return &fc, nil
}

// caseTimeout parses the CaseTimeout field. An empty field means no override.
func (fc *fileConfig) caseTimeout() (time.Duration, error) {
	if fc.CaseTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(fc.CaseTimeout)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, errors.Errorf("non-positive duration %q", fc.CaseTimeout)
	}
	return d, nil
}
