package julia

import (
	"context"
	"errors"
	"image/color"
	"sync"
	"testing"

	"github.com/gogpu/julia/formula"
	"github.com/gogpu/julia/internal/cpu"
	"github.com/gogpu/julia/palette"
	"github.com/gogpu/julia/render"
)

var (
	black = color.RGBA{A: 255}
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

func newSet(t *testing.T, w, h int, code string, opts ...Option) *Set {
	t.Helper()
	s, err := New(w, h, code, opts...)
	if err != nil {
		t.Fatalf("New(%q): %v", code, err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestNewDefaults(t *testing.T) {
	s := newSet(t, 8, 8, "z*z + 0i0", WithHeight(10))

	img := s.Image()
	if img == nil || img.Bounds().Dx() != 8 || img.Bounds().Dy() != 8 {
		t.Fatalf("Image() = %v, want 8x8", img)
	}
	// Inside the unit disc z*z never escapes: last palette entry.
	if got := img.RGBAAt(4, 4); got != white {
		t.Errorf("center = %v, want white", got)
	}
	// The corners lie outside the runaway distance and escape at once.
	if got := img.RGBAAt(0, 0); got != black {
		t.Errorf("corner = %v, want black", got)
	}
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name   string
		w, h   int
		code   string
		opts   []Option
		target error
	}{
		{"zero width", 0, 8, "z", nil, render.ErrInvalidRequest},
		{"negative height", 8, -1, "z", nil, render.ErrInvalidRequest},
		{"zero iterations", 8, 8, "z", []Option{WithIterations(0)}, render.ErrInvalidRequest},
		{"negative distance", 8, 8, "z", []Option{WithRunawayDistance(-1)}, render.ErrInvalidRequest},
		{"zero height", 8, 8, "z", []Option{WithHeight(0)}, render.ErrInvalidRequest},
		{"empty palette", 8, 8, "z", []Option{WithPalette(nil)}, render.ErrInvalidRequest},
		{"bad symbol", 8, 8, "z $ 1", nil, formula.ErrInvalidSymbol},
		{"bad variable", 8, 8, "x + 1", nil, formula.ErrInvalidVariable},
		{"unmatched bracket", 8, 8, "(z + 1", nil, formula.ErrUnmatchedBrackets},
		{"dangling operator", 8, 8, "z +", nil, formula.ErrSyntax},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.w, tt.h, tt.code, tt.opts...)
			if err == nil {
				s.Close()
				t.Fatal("New succeeded, want error")
			}
			if !errors.Is(err, tt.target) {
				t.Errorf("New error = %v, want %v", err, tt.target)
			}
		})
	}
}

func TestUpdateLiteralsReuseKernel(t *testing.T) {
	s := newSet(t, 16, 16, "z*z + 0.2i0.5")

	if err := s.Update(WithCode("z*z + -0.8i0.156")); err != nil {
		t.Fatal(err)
	}
	st := s.Stats()
	if st.KernelBuilds != 1 || st.Draws != 2 {
		t.Errorf("Stats = %+v, want 1 kernel build and 2 draws", st)
	}

	if err := s.Update(WithIterations(100)); err != nil {
		t.Fatal(err)
	}
	if got := s.Stats().KernelBuilds; got != 2 {
		t.Errorf("KernelBuilds after iteration change = %d, want 2", got)
	}
}

func TestUpdateViewportAndPalette(t *testing.T) {
	s := newSet(t, 16, 16, "z*z + 0.2i0.5")

	red, _ := palette.Named(palette.Red)
	if err := s.Update(WithCenter(0.5, 0.5), WithHeight(1), WithPalette(red)); err != nil {
		t.Fatal(err)
	}
	st := s.Stats()
	if st.KernelBuilds != 1 || st.OutputAllocations != 1 || st.PaletteUploads != 2 {
		t.Errorf("Stats = %+v, want 1 build, 1 allocation, 2 uploads", st)
	}
}

func TestUpdateFailureKeepsState(t *testing.T) {
	s := newSet(t, 8, 8, "z*z + 0.2i0.5")
	before := s.Image()

	var serr *formula.SyntaxError
	if err := s.Update(WithCode("z * (1 +")); !errors.As(err, &serr) {
		t.Fatalf("Update error = %v, want *formula.SyntaxError", err)
	}
	if got := s.Code(); got != "z*z + 0.2i0.5" {
		t.Errorf("Code() = %q after failed update", got)
	}
	after := s.Image()
	if string(before.Pix) != string(after.Pix) {
		t.Error("image changed after a failed update")
	}

	// The next update starts from the last good options.
	if err := s.Update(WithIterations(30)); err != nil {
		t.Errorf("Update after failure: %v", err)
	}
}

func TestAntialias(t *testing.T) {
	s := newSet(t, 10, 6, "z*z + 0.2i0.5", WithAntialias(true))

	img := s.Image()
	if img.Bounds().Dx() != 10 || img.Bounds().Dy() != 6 {
		t.Errorf("antialiased image is %v, want 10x6", img.Bounds())
	}

	if err := s.Update(WithAntialias(false)); err != nil {
		t.Fatal(err)
	}
	if got := s.Stats().OutputAllocations; got != 2 {
		t.Errorf("OutputAllocations = %d, want 2 after leaving supersampling", got)
	}
}

func TestAntialiasSmoothsEdges(t *testing.T) {
	// With one iteration of the identity the image is a white disc of
	// radius 4 on black. Supersampling adds intermediate shades on its rim.
	stops := palette.Stops{black, white}
	opts := []Option{WithPalette(stops), WithIterations(1), WithHeight(10)}

	plain := newSet(t, 24, 24, "z", opts...).Image()
	smooth := newSet(t, 24, 24, "z", append(opts, WithAntialias(true))...).Image()

	gray := func(c color.RGBA) bool { return c != black && c != white }
	count := func(img interface{ RGBAAt(x, y int) color.RGBA }) int {
		n := 0
		for y := range 24 {
			for x := range 24 {
				if gray(img.RGBAAt(x, y)) {
					n++
				}
			}
		}
		return n
	}
	if n := count(plain); n != 0 {
		t.Errorf("plain image has %d intermediate pixels, want 0", n)
	}
	if n := count(smooth); n == 0 {
		t.Error("antialiased image has no intermediate pixels")
	}
}

func TestWithDeviceIsNotClosed(t *testing.T) {
	dev := cpu.NewDevice(2)
	defer dev.Close()

	s, err := New(8, 8, "z*z", WithDevice(dev))
	if err != nil {
		t.Fatal(err)
	}
	s.Close()

	// The device is still usable by another set.
	s2, err := New(8, 8, "z*z", WithDevice(dev))
	if err != nil {
		t.Fatalf("device unusable after Set.Close: %v", err)
	}
	s2.Close()
}

func TestUpdateSwitchesDevice(t *testing.T) {
	s := newSet(t, 8, 8, "z*z + 0.2i0.5")

	dev := cpu.NewDevice(1)
	defer dev.Close()
	if err := s.Update(WithDevice(dev)); err != nil {
		t.Fatal(err)
	}
	// A fresh surface builds its own kernel.
	if st := s.Stats(); st.KernelBuilds != 1 || st.Draws != 1 {
		t.Errorf("Stats after device switch = %+v", st)
	}
}

func TestClose(t *testing.T) {
	s, err := New(4, 4, "z")
	if err != nil {
		t.Fatal(err)
	}
	s.Close()
	s.Close()
	if err := s.Update(); !errors.Is(err, ErrClosed) {
		t.Errorf("Update after Close = %v, want ErrClosed", err)
	}
}

func TestNewContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewContext(ctx, 4, 4, "z"); !errors.Is(err, context.Canceled) {
		t.Errorf("NewContext error = %v, want context.Canceled", err)
	}
}

func TestRender(t *testing.T) {
	img, err := Render(12, 9, "z*z + 0.2i0.5", WithHeight(3))
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 12 || img.Bounds().Dy() != 9 {
		t.Errorf("Render size = %v, want 12x9", img.Bounds())
	}
}

func TestConcurrentUpdates(t *testing.T) {
	s := newSet(t, 16, 16, "z*z + 0.2i0.5")

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Update(WithCenter(float64(i)/10, 0)); err != nil {
				t.Errorf("Update: %v", err)
			}
			_ = s.Image()
		}()
	}
	wg.Wait()

	if got := s.Stats().Draws; got != 9 {
		t.Errorf("Draws = %d, want 9", got)
	}
}

func TestViewport(t *testing.T) {
	v := Viewport(1, -1, 5, 200, 100)
	want := render.Viewport{MinX: -4, MinY: -3.5, MaxX: 6, MaxY: 1.5}
	if v != want {
		t.Errorf("Viewport = %+v, want %+v", v, want)
	}
}

func TestCompileReturnsIndependentCopies(t *testing.T) {
	a, err := Compile("z + 1i2")
	if err != nil {
		t.Fatal(err)
	}
	a.Literals[0] = formula.Complex{}
	a.Ops[0] = "mutated"

	b, err := Compile("z + 1i2")
	if err != nil {
		t.Fatal(err)
	}
	if b.Literals[0] != (formula.Complex{Re: 1, Im: 2}) || b.Ops[0] != "var" {
		t.Errorf("cached notation was mutated: %v", b)
	}
}
