// Copyright 2024 The Densevec Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package testing

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/densevec/selfcheck/errors/stack"
	"github.com/densevec/selfcheck/internal/logging"
)

// Error describes a failure reported by a test case.
type Error struct {
	// Reason is the failure message passed to Error/Fatal.
	Reason string
	// Stack is a human-readable stack trace of the Error/Fatal call.
	Stack string
}

// State is passed to a case's Func and Teardown and is used to report
// failures, emit logs and locate the case's private scratch directory.
//
// State is safe for concurrent use, though cases normally run on a single
// goroutine.
type State struct {
	testCase   *TestCase
	scratchDir string
	ctx        context.Context // carries the attached logger

	mu   sync.Mutex
	errs []*Error
}

// NewState returns a State for tc whose scratch directory is scratchDir.
// Logs emitted through the State go to the logger attached to ctx, if any.
func NewState(ctx context.Context, tc *TestCase, scratchDir string) *State {
	return &State{testCase: tc, scratchDir: scratchDir, ctx: ctx}
}

// ScratchDir returns the case's private working directory. It exists for
// the duration of the case and is removed afterwards regardless of outcome.
func (s *State) ScratchDir() string { return s.scratchDir }

// Log formats its arguments using default formatting and logs them.
func (s *State) Log(args ...interface{}) {
	logging.Infof(s.ctx, "%s: %s", s.testCase.Name, fmt.Sprint(args...))
}

// Logf is similar to Log but formats its arguments using fmt.Sprintf.
func (s *State) Logf(format string, args ...interface{}) {
	logging.Infof(s.ctx, "%s: %s", s.testCase.Name, fmt.Sprintf(format, args...))
}

// Error formats its arguments using default formatting and marks the case
// as failed while letting it continue execution.
func (s *State) Error(args ...interface{}) {
	s.recordError(fmt.Sprint(args...))
}

// Errorf is similar to Error but formats its arguments using fmt.Sprintf.
func (s *State) Errorf(format string, args ...interface{}) {
	s.recordError(fmt.Sprintf(format, args...))
}

// Fatal is similar to Error but additionally ends the case immediately.
func (s *State) Fatal(args ...interface{}) {
	s.recordError(fmt.Sprint(args...))
	runtime.Goexit()
}

// Fatalf is similar to Fatal but formats its arguments using fmt.Sprintf.
func (s *State) Fatalf(format string, args ...interface{}) {
	s.recordError(fmt.Sprintf(format, args...))
	runtime.Goexit()
}

// HasError reports whether the case has already reported errors.
func (s *State) HasError() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.errs) > 0
}

// Errors returns a copy of the errors reported so far, in report order.
func (s *State) Errors() []*Error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Error(nil), s.errs...)
}

func (s *State) recordError(reason string) {
	e := &Error{Reason: reason, Stack: stack.New(2).String()}
	s.mu.Lock()
	s.errs = append(s.errs, e)
	s.mu.Unlock()
	logging.Infof(s.ctx, "%s: Error: %s", s.testCase.Name, reason)
}
