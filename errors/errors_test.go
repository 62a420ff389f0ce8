// Copyright 2024 The Densevec Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package errors_test

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/densevec/selfcheck/errors"
)

func TestNew(t *testing.T) {
	err := errors.New("meow")
	if s := err.Error(); s != "meow" {
		t.Errorf("Error() = %q; want %q", s, "meow")
	}
}

func TestErrorf(t *testing.T) {
	err := errors.Errorf("key %d not found", 42)
	if s := err.Error(); s != "key 42 not found" {
		t.Errorf("Error() = %q; want %q", s, "key 42 not found")
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("read failed")
	err := errors.Wrap(cause, "failed to load snapshot")
	const want = "failed to load snapshot: read failed"
	if s := err.Error(); s != want {
		t.Errorf("Error() = %q; want %q", s, want)
	}
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false; want true")
	}
}

func TestWrapStandardError(t *testing.T) {
	cause := stderrors.New("underlying")
	err := errors.Wrapf(cause, "op %s", "save")
	if s := err.Error(); s != "op save: underlying" {
		t.Errorf("Error() = %q; want %q", s, "op save: underlying")
	}
	if !errors.Is(err, cause) {
		t.Error("Is(err, cause) = false; want true")
	}
}

func TestFormatChain(t *testing.T) {
	err := errors.Wrap(errors.New("inner"), "outer")
	s := fmt.Sprintf("%+v", err)
	for _, want := range []string{"outer", "inner", "\tat "} {
		if !strings.Contains(s, want) {
			t.Errorf("%%+v output %q does not contain %q", s, want)
		}
	}
}
