// Copyright 2024 The Densevec Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package testing defines the self-test battery's case and registry types
// along with the per-case State handle passed to case functions.
package testing

import (
	"context"
	"regexp"
	"time"

	"github.com/densevec/selfcheck/errors"
)

// TestCase describes a single functional check of the library. A TestCase
// is immutable once registered.
type TestCase struct {
	// Name uniquely identifies the case. It must look like "group.CamelCase",
	// e.g. "index.Search".
	Name string
	// Desc is a short human-readable description of what the case verifies.
	Desc string
	// Func is the case body. It reports failures through s and must confine
	// file-system side effects to s.ScratchDir().
	Func func(ctx context.Context, s *State)
	// Teardown optionally cleans up after Func. It always runs after Func
	// unless the case was abandoned on timeout. Errors reported by Teardown
	// fail an otherwise-passing case.
	Teardown func(ctx context.Context, s *State)
	// Timeout bounds the execution of Func. Zero means the runner default.
	Timeout time.Duration
}

// testNameRegexp validates the name of a test case.
var testNameRegexp = regexp.MustCompile(`^[a-z][a-z0-9]*\.[A-Z][A-Za-z0-9]*$`)

// validate returns an error if the case is ill-formed.
func (tc *TestCase) validate() error {
	if !testNameRegexp.MatchString(tc.Name) {
		return errors.Errorf("invalid test case name %q", tc.Name)
	}
	if tc.Func == nil {
		return errors.Errorf("test case %s has no function", tc.Name)
	}
	if tc.Timeout < 0 {
		return errors.Errorf("test case %s has negative timeout %v", tc.Name, tc.Timeout)
	}
	return nil
}

// clone returns a shallow copy of tc.
func (tc *TestCase) clone() *TestCase {
	c := *tc
	return &c
}
