// Package palette converts color stops into the fixed-size lookup table
// used to map escape iterations to colors.
//
// A palette is an ordered list of RGBA stops spread evenly over the table
// and linearly interpolated in between, much like a CSS gradient:
//
//	lut, _ := palette.Rasterize(palette.Stops{
//	    {R: 0, G: 0, B: 0, A: 255},
//	    {R: 255, G: 255, B: 255, A: 255},
//	})
//	// lut[i] == color.RGBA{uint8(i), uint8(i), uint8(i), 255}
package palette

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Size is the number of entries in a rasterized lookup table.
const Size = 256

// ErrEmpty is returned when a palette has no stops.
var ErrEmpty = errors.New("palette: no color stops")

// Stops is an ordered list of color stops.
type Stops []color.RGBA

// Table is a rasterized lookup table.
type Table [Size]color.RGBA

// Equal reports whether s and other have the same length and every
// channel of every stop matches.
func (s Stops) Equal(other Stops) bool {
	return slices.Equal(s, other)
}

// Clone returns a copy of s that does not share storage.
func (s Stops) Clone() Stops {
	return slices.Clone(s)
}

// Rasterize interpolates stops into a lookup table. The first stop lands
// on entry 0, the last on entry Size-1 and the rest at even spacing.
// A single stop yields a uniform table.
func Rasterize(stops Stops) (*Table, error) {
	var t Table
	switch len(stops) {
	case 0:
		return nil, ErrEmpty
	case 1:
		for i := range t {
			t[i] = stops[0]
		}
		return &t, nil
	}

	spacing := float64(Size-1) / float64(len(stops)-1)
	last := len(stops) - 2
	for i := range t {
		pos := float64(i) / spacing
		seg := min(int(pos), last)
		t[i] = blend(stops[seg], stops[seg+1], pos-float64(seg))
	}
	return &t, nil
}

func blend(a, b color.RGBA, alpha float64) color.RGBA {
	mix := func(x, y uint8) uint8 {
		v := math.Round(float64(x)*(1-alpha) + float64(y)*alpha)
		return uint8(min(max(v, 0), 255))
	}
	return color.RGBA{
		R: mix(a.R, b.R),
		G: mix(a.G, b.G),
		B: mix(a.B, b.B),
		A: mix(a.A, b.A),
	}
}

// ParseStops parses stops written as "r,g,b[,a];r,g,b[,a];...". Channels
// are integers in 0..255 and alpha defaults to 255.
func ParseStops(s string) (Stops, error) {
	var stops Stops
	for i, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.Split(part, ",")
		if len(fields) != 3 && len(fields) != 4 {
			return nil, fmt.Errorf("palette: stop %d: want 3 or 4 channels, got %d", i, len(fields))
		}
		ch := [4]uint8{3: 255}
		for j, f := range fields {
			v, err := strconv.ParseUint(strings.TrimSpace(f), 10, 8)
			if err != nil {
				return nil, fmt.Errorf("palette: stop %d channel %d: %w", i, j, err)
			}
			ch[j] = uint8(v)
		}
		stops = append(stops, color.RGBA{R: ch[0], G: ch[1], B: ch[2], A: ch[3]})
	}
	if len(stops) == 0 {
		return nil, ErrEmpty
	}
	return stops, nil
}
