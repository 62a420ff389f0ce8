// Copyright 2024 The Densevec Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package sysinfo captures a snapshot of the host environment for inclusion
// in self-test reports. Mobile targets constrain memory and run aging
// kernels, so the snapshot is what makes a failing report reproducible.
package sysinfo

import (
	"context"
	"runtime"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/densevec/selfcheck/internal/logging"
	"github.com/densevec/selfcheck/report"
)

// Collect gathers a best-effort environment snapshot. Collection failures
// are logged and leave the corresponding fields empty; they never fail the
// run.
func Collect(ctx context.Context) *report.Environment {
	env := &report.Environment{
		OS:   runtime.GOOS,
		CPUs: runtime.NumCPU(),
	}

	if hi, err := host.InfoWithContext(ctx); err != nil {
		logging.Debugf(ctx, "Failed to collect host info: %v", err)
	} else {
		env.Platform = hi.Platform
		env.PlatformVersion = hi.PlatformVersion
		env.KernelVersion = hi.KernelVersion
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err != nil {
		logging.Debugf(ctx, "Failed to collect memory info: %v", err)
	} else {
		env.TotalMemory = vm.Total
		env.FreeMemory = vm.Available
	}

	return env
}
