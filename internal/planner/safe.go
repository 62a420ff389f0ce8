// Copyright 2024 The Densevec Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package planner

import (
	"context"
	"sync/atomic"
	"time"

	"code.cloudfoundry.org/clock"

	"github.com/densevec/selfcheck/errors"
)

// clk is replaced in unit tests to use fake clocks.
var clk = clock.NewClock()

// panicHandler receives the value a contained case panicked with.
type panicHandler func(val interface{})

// runIsolated calls f on its own goroutine so a misbehaving case cannot take
// the run down with it.
//
// f receives a context whose deadline is timeout from now. A case that
// honors the deadline gets gracePeriod of extra wall time to unwind; one
// that is still running after timeout+gracePeriod, or after ctx is canceled,
// is abandoned and runIsolated returns an error naming it. The abandoned
// goroutine keeps running but nothing it does afterwards is observed.
//
// A panic inside f is recovered and handed to onPanic on the case goroutine,
// so the panic site stays in the stack trace. onPanic is never invoked for
// an already-abandoned case. A runtime.Goexit inside f (State.Fatal) counts
// as a normal return.
//
// The returned error is nil whenever f's execution was observed to finish,
// panicking or not; non-nil means f was abandoned.
func runIsolated(ctx context.Context, name string, timeout, gracePeriod time.Duration, onPanic panicHandler, f func(ctx context.Context)) error {
	// Exactly one of the two goroutines gets to report first. The watcher
	// (this goroutine) claims on deadline or cancellation and abandons the
	// case; the case goroutine claims when f finishes and may then invoke
	// onPanic. Claiming is a CAS so the loser always sees it lost.
	var reported uintptr
	claim := func() bool {
		return atomic.CompareAndSwapUintptr(&reported, 0, 1)
	}

	finished := make(chan struct{})

	go func() {
		defer close(finished)

		defer func() {
			// recover unconditionally; letting a panic escape here would
			// kill the process, which is the one thing this function exists
			// to prevent.
			val := recover()
			if !claim() {
				return // abandoned; the watcher already returned
			}
			if val != nil {
				onPanic(val)
			}
		}()

		cctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		f(cctx)
	}()

	// If the case goroutine is mid-claim (possibly inside onPanic), hold the
	// return until it is done so its effects are visible to the caller.
	defer func() {
		if !claim() {
			<-finished
		}
	}()

	// The watchdog timer comes from clk so tests can drive it with a fake
	// clock instead of sleeping.
	watchdog := clk.NewTimer(timeout + gracePeriod)
	defer watchdog.Stop()

	select {
	case <-finished:
		return nil
	case <-watchdog.C():
		return errors.Errorf("%s did not return on timeout", name)
	case <-ctx.Done():
		return ctx.Err()
	}
}
