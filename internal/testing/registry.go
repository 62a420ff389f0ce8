// Copyright 2024 The Densevec Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package testing

import (
	"github.com/densevec/selfcheck/errors"
)

// Registry holds an ordered collection of test cases. It is assembled once
// at startup and read-only afterwards; enumeration order equals registration
// order, which makes reports deterministic across runs of the same build.
//
// There is deliberately no ambient global registry. The battery constructs
// a Registry explicitly and hands it to the planner.
type Registry struct {
	allCases  []*TestCase
	caseNames map[string]struct{}
}

// NewRegistry returns a new empty registry.
func NewRegistry() *Registry {
	return &Registry{caseNames: make(map[string]struct{})}
}

// AddTest adds tc to the registry. Duplicate and ill-formed cases are
// rejected.
func (r *Registry) AddTest(tc *TestCase) error {
	if err := tc.validate(); err != nil {
		return err
	}
	if _, ok := r.caseNames[tc.Name]; ok {
		return errors.Errorf("test case %q already registered", tc.Name)
	}
	r.allCases = append(r.allCases, tc.clone())
	r.caseNames[tc.Name] = struct{}{}
	return nil
}

// AllTests returns copies of all registered cases in registration order.
func (r *Registry) AllTests() []*TestCase {
	tcs := make([]*TestCase, len(r.allCases))
	for i, tc := range r.allCases {
		tcs[i] = tc.clone()
	}
	return tcs
}

// Len returns the number of registered cases.
func (r *Registry) Len() int {
	return len(r.allCases)
}
