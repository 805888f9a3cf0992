// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"context"
	"fmt"
	"image"

	"github.com/gogpu/julia/formula"
	"github.com/gogpu/julia/palette"
)

// State is the lifecycle state of a Surface.
type State int

const (
	// StateUninitialized means the surface does not yet hold a complete
	// set of resources.
	StateUninitialized State = iota

	// StateReady means kernel, output buffer and lookup table all exist.
	StateReady
)

// String returns the string representation of State.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateReady:
		return "Ready"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// Stats counts the work a Surface has done. Tests and diagnostics use it
// to observe which resources a draw rebuilt.
type Stats struct {
	Draws             int
	KernelBuilds      int
	OutputAllocations int
	PaletteUploads    int
}

// fingerprint identifies a compiled kernel.
type fingerprint struct {
	code       string
	iterations int
}

// Surface is the resource cache of one rendering surface.
//
// State Machine:
//
//	Uninitialized -> Draw() -> Ready
//	Ready -> Release() -> Uninitialized
//
// A Surface is not safe for concurrent use.
type Surface struct {
	device Device
	state  State

	kernel      Kernel
	fingerprint fingerprint

	output        Output
	width, height int
	painted       bool

	lut   LookupTable
	stops palette.Stops

	stats Stats
}

// NewSurface creates an uninitialized surface drawing on device.
// Resources are allocated by the first Draw.
func NewSurface(device Device) *Surface {
	return &Surface{device: device}
}

// State returns the current lifecycle state.
func (s *Surface) State() State {
	return s.state
}

// Stats returns the work counters.
func (s *Surface) Stats() Stats {
	return s.stats
}

// Device returns the device the surface draws on.
func (s *Surface) Device() Device {
	return s.device
}

// Image returns the colors painted by the last successful Draw, or nil if
// nothing has been drawn. The image is owned by the surface and is
// overwritten by the next Draw.
func (s *Surface) Image() *image.RGBA {
	if s.output == nil || !s.painted {
		return nil
	}
	return s.output.Image()
}

// Draw renders req, rebuilding only the resources that changed since the
// previous draw.
//
// If a resource cannot be rebuilt, Draw returns a *ResourceError and the
// surface keeps its previous resource together with the fingerprint
// describing it, so retrying the same request attempts the rebuild again.
func (s *Surface) Draw(ctx context.Context, req Request) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	src, err := formula.Generate(req.Notation)
	if err != nil {
		return fmt.Errorf("render: generate kernel: %w", err)
	}

	if err := s.prepareKernel(req, src); err != nil {
		return err
	}
	if err := s.prepareOutput(req); err != nil {
		return err
	}
	if err := s.preparePalette(req); err != nil {
		return err
	}
	s.state = StateReady

	// Phase 0: escape iterations.
	s.painted = false
	u := Uniforms{
		Literals: req.Notation.Literals,
		Distance: req.Distance,
		Viewport: req.Viewport,
	}
	if err := s.device.Compute(s.kernel, s.output, u); err != nil {
		return fmt.Errorf("render: compute phase: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// Phase 1: paint.
	if err := s.device.Paint(s.kernel, s.output, s.lut); err != nil {
		return fmt.Errorf("render: paint phase: %w", err)
	}

	s.painted = true
	s.stats.Draws++
	return nil
}

func (s *Surface) prepareKernel(req Request, src formula.KernelSource) error {
	fp := fingerprint{code: src.Code, iterations: req.Iterations}
	if s.kernel != nil && fp == s.fingerprint {
		slogger().Debug("render: kernel reused", "device", s.device.Name())
		return nil
	}

	k, err := s.device.BuildKernel(KernelSpec{
		Source:     src,
		Notation:   req.Notation,
		Iterations: req.Iterations,
	})
	if err != nil {
		return &ResourceError{Kind: ErrKernelBuildFailed, Op: "build kernel", Err: err}
	}

	if s.kernel != nil {
		s.kernel.Release()
	}
	s.kernel = k
	s.fingerprint = fp
	s.stats.KernelBuilds++
	slogger().Debug("render: kernel rebuilt",
		"device", s.device.Name(),
		"code", src.Code,
		"literals", src.LiteralCount,
		"iterations", req.Iterations)
	return nil
}

func (s *Surface) prepareOutput(req Request) error {
	if s.output != nil && s.width == req.Width && s.height == req.Height {
		return nil
	}

	out, err := s.device.AllocateOutput(req.Width, req.Height)
	if err != nil {
		return &ResourceError{
			Kind: ErrAllocationFailed,
			Op:   fmt.Sprintf("allocate %dx%d output", req.Width, req.Height),
			Err:  err,
		}
	}

	if s.output != nil {
		s.output.Release()
	}
	s.output = out
	s.width, s.height = req.Width, req.Height
	s.painted = false
	s.stats.OutputAllocations++
	slogger().Debug("render: output allocated", "width", req.Width, "height", req.Height)
	return nil
}

func (s *Surface) preparePalette(req Request) error {
	if s.lut != nil && s.stops.Equal(req.Palette) {
		return nil
	}

	if s.lut == nil {
		lut, err := s.device.NewLookupTable()
		if err != nil {
			return &ResourceError{Kind: ErrAllocationFailed, Op: "allocate lookup table", Err: err}
		}
		s.lut = lut
	}

	table, err := palette.Rasterize(req.Palette)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if err := s.lut.Upload(table); err != nil {
		// The table may be partially written; force a re-upload next time.
		s.stops = nil
		return &ResourceError{Kind: ErrAllocationFailed, Op: "upload lookup table", Err: err}
	}

	s.stops = req.Palette.Clone()
	s.stats.PaletteUploads++
	slogger().Debug("render: lookup table uploaded", "stops", len(req.Palette))
	return nil
}

// Release frees all device resources and returns the surface to the
// Uninitialized state. The device itself is not closed.
func (s *Surface) Release() {
	if s.kernel != nil {
		s.kernel.Release()
		s.kernel = nil
	}
	if s.output != nil {
		s.output.Release()
		s.output = nil
	}
	if s.lut != nil {
		s.lut.Release()
		s.lut = nil
	}
	s.fingerprint = fingerprint{}
	s.width, s.height = 0, 0
	s.painted = false
	s.stops = nil
	s.state = StateUninitialized
}
