// Copyright 2024 The Densevec Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// The bridge binary exposes the self-test battery to non-Go hosts. Built
// with -buildmode=c-shared it yields a shared library plus a generated
// header; mobile host apps load the library and call the exported entry
// points below through their platform FFI.
//
// The exported surface is deliberately tiny and C-shaped: plain integers
// and byte buffers only, no Go types cross the boundary. Entry points never
// panic into the host; any internal fault is converted to an error return.
package main

/*
#include <stdint.h>
#include <stdlib.h>
*/
import "C"

import (
	"context"
	"unsafe"

	selfcheck "github.com/densevec/selfcheck"
)

// run executes the battery with default settings. Isolation and fault
// containment happen inside; run only fails if the battery could not be
// assembled at all.
func run(ctx context.Context) (failures int, reportJSON []byte, err error) {
	rep, err := selfcheck.Run(ctx, nil)
	if err != nil {
		return 0, nil, err
	}
	b, err := rep.JSON()
	if err != nil {
		return 0, nil, err
	}
	return rep.FailureCount(), b, nil
}

// densevec_self_test runs the full battery and returns the number of
// non-passing cases, so 0 means the library is healthy on this host.
// A negative return means the battery itself could not run.
//
//export densevec_self_test
func densevec_self_test() C.int32_t {
	n, _, err := run(context.Background())
	if err != nil {
		return -1
	}
	return C.int32_t(n)
}

// densevec_self_test_report runs the full battery and returns the report as
// a malloc'd UTF-8 JSON buffer, storing its length in *out_len. The caller
// owns the buffer and must release it with densevec_self_test_free. On
// failure the function returns NULL and sets *out_len to -1.
//
//export densevec_self_test_report
func densevec_self_test_report(out_len *C.int32_t) unsafe.Pointer {
	if out_len == nil {
		return nil
	}
	_, b, err := run(context.Background())
	if err != nil {
		*out_len = -1
		return nil
	}
	*out_len = C.int32_t(len(b))
	// C.CBytes allocates with malloc, which is what the free entry point
	// and non-Go callers expect.
	return C.CBytes(b)
}

// densevec_self_test_free releases a buffer returned by
// densevec_self_test_report. Passing NULL is a no-op.
//
//export densevec_self_test_free
func densevec_self_test_free(p unsafe.Pointer) {
	if p != nil {
		C.free(p)
	}
}

// main is required for -buildmode=c-shared but never runs.
func main() {}
