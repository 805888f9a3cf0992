// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build nogpu

// Package gpu provides the hardware render.Device. This build was made
// with the nogpu tag and every constructor returns ErrUnavailable.
package gpu

import (
	"errors"
	"log/slog"

	"github.com/gogpu/julia/render"
)

// ErrUnavailable is returned when no GPU device can be opened.
var ErrUnavailable = errors.New("gpu: device unavailable")

// Available reports whether this build includes the GPU backend.
const Available = false

// NewDevice always fails in nogpu builds.
func NewDevice() (render.Device, error) {
	return nil, errors.Join(ErrUnavailable, errors.New("gpu: built with nogpu"))
}

// NewDeviceFromProvider always fails in nogpu builds.
func NewDeviceFromProvider(render.DeviceHandle) (render.Device, error) {
	return nil, errors.Join(ErrUnavailable, errors.New("gpu: built with nogpu"))
}

// SetLogger is a no-op in nogpu builds.
func SetLogger(*slog.Logger) {}
