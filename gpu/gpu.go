// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

// Package gpu provides the hardware render.Device.
//
// Fractal kernels run as wgpu/hal compute shaders. Each formula is
// assembled into a WGSL compute shader and compiled to SPIR-V with naga.
//
// Usage:
//
//	dev, err := gpu.NewDevice()
//	if err != nil {
//		// no Vulkan adapter; use the software device
//	}
//	set, err := julia.New(800, 600, "z*z + 0.2i0.5", julia.WithDevice(dev))
//
// Build with the nogpu tag to exclude the GPU backend entirely.
package gpu

import (
	"errors"
	"log/slog"

	gpuimpl "github.com/gogpu/julia/internal/gpu"
	"github.com/gogpu/julia/render"
)

// ErrUnavailable is returned when no GPU device can be opened.
var ErrUnavailable = errors.New("gpu: device unavailable")

// Available reports whether this build includes the GPU backend.
const Available = true

// NewDevice opens the first discrete or integrated GPU.
func NewDevice() (render.Device, error) {
	dev, err := gpuimpl.Open()
	if err != nil {
		return nil, errors.Join(ErrUnavailable, err)
	}
	return dev, nil
}

// NewDeviceFromProvider creates a device on a GPU owned by a host
// application (e.g. a gogpu.App). The provider must also implement
// HalDevice() any and HalQueue() any. Closing the returned device does
// not destroy the host's device.
func NewDeviceFromProvider(provider render.DeviceHandle) (render.Device, error) {
	if provider == nil {
		return nil, errors.Join(ErrUnavailable, errors.New("gpu: nil provider"))
	}
	dev, err := gpuimpl.FromProvider(provider)
	if err != nil {
		return nil, errors.Join(ErrUnavailable, err)
	}
	return dev, nil
}

// SetLogger sets the logger for GPU diagnostics.
func SetLogger(l *slog.Logger) {
	gpuimpl.SetLogger(l)
}
