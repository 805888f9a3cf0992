// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/julia/palette"
	"github.com/gogpu/julia/render"
)

// Uniform block sizes, matching the Frame structs of the shaders.
const (
	computeFrameSize = 32
	paintFrameSize   = 16
	lutSize          = palette.Size * 4
)

// PackFrame encodes the phase 0 uniform block: the viewport origin and
// extent, the output size and the escape distance.
func PackFrame(u render.Uniforms, width, height int) []byte {
	buf := make([]byte, computeFrameSize)
	v := u.Viewport
	putF32(buf[0:], v.MinX)
	putF32(buf[4:], v.MinY)
	putF32(buf[8:], v.MaxX-v.MinX)
	putF32(buf[12:], v.MaxY-v.MinY)
	binary.LittleEndian.PutUint32(buf[16:], uint32(width))  //nolint:gosec // validated positive
	binary.LittleEndian.PutUint32(buf[20:], uint32(height)) //nolint:gosec // validated positive
	putF32(buf[24:], u.Distance)
	return buf
}

// PackLiterals encodes the literal values as slots vec2<f32> pairs.
// Unused slots are zero.
func PackLiterals(u render.Uniforms, slots int) []byte {
	buf := make([]byte, slots*8)
	for i, c := range u.Literals {
		putF32(buf[i*8:], c.Re)
		putF32(buf[i*8+4:], c.Im)
	}
	return buf
}

// PackTable encodes a lookup table as little-endian r | g<<8 | b<<16 | a<<24
// words.
func PackTable(t *palette.Table) []byte {
	buf := make([]byte, lutSize)
	for i, c := range t {
		copy(buf[i*4:], []byte{c.R, c.G, c.B, c.A})
	}
	return buf
}

func putF32(b []byte, v float64) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(float32(v)))
}
