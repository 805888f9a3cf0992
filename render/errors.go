// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"
)

var (
	// ErrKernelBuildFailed is returned when a device fails to compile a kernel.
	ErrKernelBuildFailed = errors.New("render: kernel build failed")

	// ErrAllocationFailed is returned when a device fails to allocate or
	// fill an output buffer or lookup table.
	ErrAllocationFailed = errors.New("render: allocation failed")

	// ErrInvalidRequest is returned for a draw request with out-of-range fields.
	ErrInvalidRequest = errors.New("render: invalid draw request")
)

// ResourceError reports a failed device resource operation. It matches
// both its Kind (ErrKernelBuildFailed or ErrAllocationFailed) and the
// device error with errors.Is.
type ResourceError struct {
	Kind error
	Op   string
	Err  error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("%v: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *ResourceError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
