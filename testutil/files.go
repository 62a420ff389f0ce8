// Copyright 2024 The Densevec Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package testutil provides support code for unit tests.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/densevec/selfcheck/errors"
)

// TempDir creates a temporary directory prefixed by
// "selfcheck_unittest_[TestName]." and returns its path.
// If the directory cannot be created, a fatal error is reported to t.
// The caller is responsible for removing the directory.
func TempDir(t *testing.T) string {
	t.Helper()
	// Subtests have slashes in their name.
	name := strings.ReplaceAll(t.Name(), "/", "_")
	td, err := os.MkdirTemp("", "selfcheck_unittest_"+name+".")
	if err != nil {
		t.Fatal(err)
	}
	return td
}

// WriteFiles creates files under dir from a map of relative path to
// contents, creating intermediate directories as needed.
func WriteFiles(dir string, files map[string]string) error {
	for rel, contents := range files {
		p := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			return errors.Wrapf(err, "failed to create dir for %s", rel)
		}
		if err := os.WriteFile(p, []byte(contents), 0644); err != nil {
			return errors.Wrapf(err, "failed to write %s", rel)
		}
	}
	return nil
}
