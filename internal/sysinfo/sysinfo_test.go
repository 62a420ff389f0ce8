// Copyright 2024 The Densevec Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package sysinfo_test

import (
	"context"
	"runtime"
	"testing"

	"github.com/densevec/selfcheck/internal/sysinfo"
)

func TestCollect(t *testing.T) {
	env := sysinfo.Collect(context.Background())
	if env == nil {
		t.Fatal("Collect returned nil")
	}
	if env.OS != runtime.GOOS {
		t.Errorf("OS = %q; want %q", env.OS, runtime.GOOS)
	}
	if env.CPUs <= 0 {
		t.Errorf("CPUs = %d; want positive", env.CPUs)
	}
}
