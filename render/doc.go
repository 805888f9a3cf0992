// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render drives fractal kernels on a compute device and caches the
// device resources between draws.
//
// # Key Principle
//
// A Surface owns three resources: a compiled kernel, an output buffer and a
// color lookup table. Each Draw compares the request with what the surface
// last used and rebuilds only what changed:
//
//   - the kernel, when the generated code or the iteration limit changed
//     (literal values are bound at draw time and never force a rebuild)
//   - the output buffer, when the size changed
//   - the lookup table, when the color stops changed
//
// The draw itself runs in two phases. Phase 0 evaluates the kernel for every
// cell and stores the escape iteration in the output buffer. Phase 1 maps
// those values through the lookup table to colors.
//
// # Devices
//
// A Device performs the actual work. The module ships a software device
// (internal/cpu, used by default) and a wgpu compute device (package gpu).
// Tests use in-memory fakes.
//
// # Thread Safety
//
// A Surface is not safe for concurrent use: the compare-then-rebuild steps
// are not atomic. Serialize draws on one surface; distinct surfaces may be
// driven from different goroutines.
package render
