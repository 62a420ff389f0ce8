// Copyright 2024 The Densevec Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package cases defines the fixed battery of functional checks the bridge
// runs against the library. The battery is assembled at startup into an
// explicit registry; nothing registers cases dynamically at run time, so
// report shape and order are identical across invocations of one build.
package cases

import (
	"github.com/densevec/selfcheck/internal/testing"
)

// Registry builds and returns the battery. Each call returns a fresh
// registry so invocations of the bridge share no state.
func Registry() (*testing.Registry, error) {
	reg := testing.NewRegistry()
	for _, tc := range []*testing.TestCase{
		{
			Name: "index.Create",
			Desc: "Index creation and configuration introspection",
			Func: indexCreate,
		},
		{
			Name: "index.AddGet",
			Desc: "Vectors can be stored, found and read back",
			Func: indexAddGet,
		},
		{
			Name: "index.Remove",
			Desc: "Removal deletes exactly the requested vector",
			Func: indexRemove,
		},
		{
			Name: "index.Search",
			Desc: "Search returns nearest vectors in deterministic order",
			Func: indexSearch,
		},
		{
			Name:     "index.Persist",
			Desc:     "A snapshot file written to scratch restores the index",
			Func:     indexPersist,
			Teardown: indexPersistTeardown,
		},
		{
			Name: "index.Snapshot",
			Desc: "An in-memory snapshot buffer restores the index",
			Func: indexSnapshot,
		},
		{
			Name: "index.Distance",
			Desc: "Standalone distance computations match known values",
			Func: indexDistance,
		},
		{
			Name: "index.Validation",
			Desc: "Malformed inputs are rejected with errors, not faults",
			Func: indexValidation,
		},
	} {
		if err := reg.AddTest(tc); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
