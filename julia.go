package julia

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"golang.org/x/image/draw"

	"github.com/gogpu/julia/internal/cpu"
	"github.com/gogpu/julia/render"
)

// ErrClosed is returned by operations on a closed Set.
var ErrClosed = errors.New("julia: set is closed")

// supersample is the per-axis sampling factor used for antialiasing.
const supersample = 2

// Set is a rendered Julia set of one formula.
//
// A Set owns a render.Surface and keeps its device resources between
// draws, so Update re-renders without recompiling when only literal values,
// the viewport or the palette change.
//
// Set is safe for concurrent use; draws are serialized.
type Set struct {
	mu sync.Mutex

	width, height int
	opts          options

	device     render.Device
	ownsDevice bool
	surface    *render.Surface

	img    *image.RGBA // final image, downscaled when antialiasing
	closed bool
}

// New renders the formula code into a width x height image.
//
// Example:
//
//	set, err := julia.New(800, 600, "z*z + 0.2i0.5", julia.WithHeight(3))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer set.Close()
//	png.Encode(w, set.Image())
func New(width, height int, code string, opts ...Option) (*Set, error) {
	return NewContext(context.Background(), width, height, code, opts...)
}

// NewContext is like New but stops between draw phases when ctx is done.
func NewContext(ctx context.Context, width, height int, code string, opts ...Option) (*Set, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("julia: invalid size %dx%d: %w", width, height, render.ErrInvalidRequest)
	}

	o := defaultOptions()
	o.code = code
	for _, opt := range opts {
		opt(&o)
	}

	s := &Set{width: width, height: height}
	s.attach(o.device)
	if err := s.draw(ctx, o); err != nil {
		s.detach()
		return nil, err
	}
	s.opts = o
	return s, nil
}

// Render is a one-shot helper that renders code and returns the image.
func Render(width, height int, code string, opts ...Option) (*image.RGBA, error) {
	s, err := New(width, height, code, opts...)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.Image(), nil
}

// Update changes options and re-renders. If the draw fails the Set keeps
// its previous options and image.
func (s *Set) Update(opts ...Option) error {
	return s.UpdateContext(context.Background(), opts...)
}

// UpdateContext is like Update but stops between draw phases when ctx is
// done.
func (s *Set) UpdateContext(ctx context.Context, opts ...Option) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	o := s.opts
	for _, opt := range opts {
		opt(&o)
	}
	if o.device != s.opts.device {
		s.detach()
		s.attach(o.device)
		s.opts.device = o.device
	}
	if err := s.draw(ctx, o); err != nil {
		return err
	}
	s.opts = o
	return nil
}

// attach creates the surface on dev, or on a new software device when dev
// is nil.
func (s *Set) attach(dev render.Device) {
	s.ownsDevice = dev == nil
	if s.ownsDevice {
		dev = cpu.NewDevice(0)
	}
	s.device = dev
	s.surface = render.NewSurface(dev)
	Logger().Info("julia: device selected", "device", dev.Name())
}

func (s *Set) detach() {
	if s.surface != nil {
		s.surface.Release()
		s.surface = nil
	}
	if s.ownsDevice && s.device != nil {
		s.device.Close()
	}
	s.device = nil
	s.ownsDevice = false
}

func (s *Set) draw(ctx context.Context, o options) error {
	n, err := Compile(o.code)
	if err != nil {
		return err
	}

	w, h := s.width, s.height
	if o.antialias {
		w, h = w*supersample, h*supersample
	}
	req := render.Request{
		Notation:   n,
		Iterations: o.iterations,
		Distance:   o.distance,
		Palette:    o.palette,
		Width:      w,
		Height:     h,
		Viewport:   Viewport(o.centerX, o.centerY, o.height, s.width, s.height),
	}
	if err := s.surface.Draw(ctx, req); err != nil {
		return err
	}

	src := s.surface.Image()
	if s.img == nil {
		s.img = image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	}
	if o.antialias {
		draw.CatmullRom.Scale(s.img, s.img.Bounds(), src, src.Bounds(), draw.Src, nil)
	} else {
		draw.Copy(s.img, image.Point{}, src, src.Bounds(), draw.Src, nil)
	}
	return nil
}

// Image returns a copy of the last rendered image.
func (s *Set) Image() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.img == nil {
		return nil
	}
	out := image.NewRGBA(s.img.Bounds())
	copy(out.Pix, s.img.Pix)
	return out
}

// Size returns the image size in pixels.
func (s *Set) Size() (width, height int) {
	return s.width, s.height
}

// Code returns the current formula.
func (s *Set) Code() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts.code
}

// Stats returns the resource counters of the underlying surface.
func (s *Set) Stats() render.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.surface == nil {
		return render.Stats{}
	}
	return s.surface.Stats()
}

// Close releases device resources. A device created by the Set is closed;
// one passed with WithDevice is not. Close is safe to call multiple times.
func (s *Set) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.detach()
	s.closed = true
}
