package palette

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

func opaque(r, g, b uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func TestRasterizeTwoColors(t *testing.T) {
	lut, err := Rasterize(Stops{opaque(0, 0, 0), opaque(255, 255, 255)})
	require.NoError(t, err)
	for i, c := range lut {
		require.Equal(t, opaque(uint8(i), uint8(i), uint8(i)), c, "entry %d", i)
	}
}

func TestRasterizeThreeColors(t *testing.T) {
	lut, err := Rasterize(Stops{opaque(0, 0, 0), opaque(255, 0, 0), opaque(0, 0, 255)})
	require.NoError(t, err)

	for i, c := range lut[:128] {
		require.EqualValues(t, 2*i, c.R, "entry %d", i)
		require.Zero(t, c.G)
		require.Zero(t, c.B)
		require.EqualValues(t, 255, c.A)
	}
	for i, c := range lut[127:] {
		require.InDelta(t, 255-2*i, int(c.R), 1.5, "entry %d", 127+i)
		require.Zero(t, c.G)
		require.InDelta(t, 2*i, int(c.B), 1.5, "entry %d", 127+i)
	}
}

func TestRasterizeEndpoints(t *testing.T) {
	stops := Stops{opaque(10, 20, 30), opaque(40, 50, 60), opaque(70, 80, 90), opaque(1, 2, 3), opaque(200, 100, 0)}
	lut, err := Rasterize(stops)
	require.NoError(t, err)
	require.Equal(t, stops[0], lut[0])
	require.Equal(t, stops[len(stops)-1], lut[Size-1])
}

func TestRasterizeSingleAndEmpty(t *testing.T) {
	lut, err := Rasterize(Stops{opaque(1, 2, 3)})
	require.NoError(t, err)
	for _, c := range lut {
		require.Equal(t, opaque(1, 2, 3), c)
	}

	_, err = Rasterize(nil)
	require.ErrorIs(t, err, ErrEmpty)
}

func TestStopsEqual(t *testing.T) {
	a := Stops{opaque(0, 0, 0), opaque(255, 255, 255)}
	b := Stops{opaque(0, 0, 0), opaque(255, 255, 255)}
	require.True(t, a.Equal(b))
	require.False(t, a.Equal(b[:1]))

	b[1].A = 254
	require.False(t, a.Equal(b))
}

func TestParseStops(t *testing.T) {
	stops, err := ParseStops("255,255,255; 0,0,0,128")
	require.NoError(t, err)
	require.Equal(t, Stops{opaque(255, 255, 255), {A: 128}}, stops)

	_, err = ParseStops("1,2")
	require.Error(t, err)
	_, err = ParseStops("1,2,300")
	require.Error(t, err)
	_, err = ParseStops(" ; ")
	require.ErrorIs(t, err, ErrEmpty)
}

func TestNamed(t *testing.T) {
	require.Equal(t, []string{Gold, Grayscale, Green, Red, Snow, Tree}, Names())
	for _, name := range Names() {
		stops, ok := Named(name)
		require.True(t, ok)
		require.GreaterOrEqual(t, len(stops), 2)
	}

	gray, ok := Named("GrayScale")
	require.True(t, ok)
	require.Equal(t, Stops{opaque(0, 0, 0), opaque(255, 255, 255)}, gray)

	// Callers get a copy.
	gray[0] = opaque(9, 9, 9)
	again, _ := Named(Grayscale)
	require.Equal(t, opaque(0, 0, 0), again[0])
}

func TestLookup(t *testing.T) {
	s, err := Lookup("snow")
	require.NoError(t, err)
	require.Len(t, s, 4)

	s, err = Lookup("0,0,0;255,0,0")
	require.NoError(t, err)
	require.Len(t, s, 2)

	_, err = Lookup("rainbow")
	require.ErrorContains(t, err, "unknown palette")
}
