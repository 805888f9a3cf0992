// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"bytes"
	"encoding/binary"
	"image/color"
	"math"
	"testing"

	"github.com/gogpu/julia/formula"
	"github.com/gogpu/julia/palette"
	"github.com/gogpu/julia/render"
)

func f32At(b []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[off:]))
}

func TestPackFrame(t *testing.T) {
	u := render.Uniforms{
		Distance: 4,
		Viewport: render.Viewport{MinX: -2, MinY: -1.5, MaxX: 2, MaxY: 1.5},
	}
	b := PackFrame(u, 640, 480)
	if len(b) != computeFrameSize {
		t.Fatalf("len = %d, want %d", len(b), computeFrameSize)
	}

	floats := []struct {
		off  int
		want float32
	}{
		{0, -2}, {4, -1.5}, {8, 4}, {12, 3}, {24, 4},
	}
	for _, f := range floats {
		if got := f32At(b, f.off); got != f.want {
			t.Errorf("float at %d = %v, want %v", f.off, got, f.want)
		}
	}
	if w, h := binary.LittleEndian.Uint32(b[16:]), binary.LittleEndian.Uint32(b[20:]); w != 640 || h != 480 {
		t.Errorf("size = %dx%d, want 640x480", w, h)
	}
}

func TestPackLiterals(t *testing.T) {
	u := render.Uniforms{Literals: []formula.Complex{{Re: 1, Im: -1.2}, {Re: 0.5}}}
	b := PackLiterals(u, 3)
	if len(b) != 24 {
		t.Fatalf("len = %d, want 24", len(b))
	}
	if f32At(b, 0) != 1 || f32At(b, 4) != float32(-1.2) || f32At(b, 8) != 0.5 || f32At(b, 12) != 0 {
		t.Errorf("packed literals = %v", b)
	}
	if !bytes.Equal(b[16:], make([]byte, 8)) {
		t.Error("unused slot should be zero")
	}

	if got := len(PackLiterals(render.Uniforms{}, paramSlots(0))); got != 8 {
		t.Errorf("empty literals packed to %d bytes, want 8", got)
	}
}

func TestPackTable(t *testing.T) {
	table, err := palette.Rasterize(palette.Stops{
		{R: 1, G: 2, B: 3, A: 4},
		{R: 255, G: 255, B: 255, A: 255},
	})
	if err != nil {
		t.Fatal(err)
	}
	b := PackTable(table)
	if len(b) != lutSize {
		t.Fatalf("len = %d, want %d", len(b), lutSize)
	}
	if got := binary.LittleEndian.Uint32(b); got != 1|2<<8|3<<16|4<<24 {
		t.Errorf("first entry = %#x", got)
	}
	last := color.RGBA{b[lutSize-4], b[lutSize-3], b[lutSize-2], b[lutSize-1]}
	if last != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("last entry = %v, want white", last)
	}
}
