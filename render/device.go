// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"image"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/julia/formula"
	"github.com/gogpu/julia/palette"
)

// DeviceHandle provides GPU device access from a host application.
//
// Hosts that already own a GPU device (e.g. a gogpu.App) pass it to
// gpu.NewDeviceFromProvider so that the fractal kernel shares the device
// instead of opening a second one.
type DeviceHandle = gpucontext.DeviceProvider

// Device evaluates fractal kernels.
//
// Resources returned by a Device are only valid with that Device. A Device
// is used by one Surface at a time unless its documentation says otherwise.
type Device interface {
	// Name returns a short device name for logs (e.g. "cpu", "wgpu").
	Name() string

	// BuildKernel compiles a kernel for spec.
	BuildKernel(spec KernelSpec) (Kernel, error)

	// AllocateOutput allocates an output buffer of the given size.
	AllocateOutput(width, height int) (Output, error)

	// NewLookupTable allocates an empty color lookup table.
	NewLookupTable() (LookupTable, error)

	// Compute runs phase 0: it evaluates k for every cell of out and stores
	// the escape iteration count. It returns after out is fully populated.
	Compute(k Kernel, out Output, u Uniforms) error

	// Paint runs phase 1: it maps the iteration counts in out through lut
	// and stores the resulting colors in out.
	Paint(k Kernel, out Output, lut LookupTable) error

	// Close releases the device.
	Close()
}

// KernelSpec describes a kernel to build.
type KernelSpec struct {
	// Source is the generated kernel expression.
	Source formula.KernelSource

	// Notation is the compiled formula the source was generated from.
	// Devices that do not compile text (such as the software device)
	// build from it instead.
	Notation formula.Notation

	// Iterations is the escape iteration limit baked into the kernel.
	Iterations int
}

// Kernel is a compiled fractal kernel.
type Kernel interface {
	Release()
}

// Output is a per-cell buffer holding escape iterations after phase 0 and
// colors after phase 1.
type Output interface {
	// Size returns the buffer dimensions in cells.
	Size() (width, height int)

	// Image returns the painted colors. Its content is defined only after
	// a successful Paint and may be reused by the next draw.
	Image() *image.RGBA

	Release()
}

// LookupTable maps normalized escape iterations to colors.
type LookupTable interface {
	// Upload replaces the table contents.
	Upload(t *palette.Table) error

	Release()
}

// Uniforms are the per-draw kernel parameters.
type Uniforms struct {
	// Literals are bound to the kernel's literal slots in order.
	Literals []formula.Complex

	// Distance is the escape threshold on |z|.
	Distance float64

	// Viewport is the region of the complex plane covered by the output.
	Viewport Viewport
}

// Viewport is a rectangle of the complex plane.
type Viewport struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Point returns the complex coordinate at the center of cell (x, y) of a
// width×height grid. Row 0 is the top of the image, at MaxY.
func (v Viewport) Point(x, y, width, height int) complex128 {
	re := v.MinX + (float64(x)+0.5)/float64(width)*(v.MaxX-v.MinX)
	im := v.MaxY - (float64(y)+0.5)/float64(height)*(v.MaxY-v.MinY)
	return complex(re, im)
}
