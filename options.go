package julia

import (
	"github.com/gogpu/julia/palette"
	"github.com/gogpu/julia/render"
)

// Default option values.
const (
	DefaultHeight          = 5.0
	DefaultIterations      = 60
	DefaultRunawayDistance = 4.0
)

// Option configures a Set.
//
// Example:
//
//	set, err := julia.New(800, 600, "z*z + 0.2i0.5",
//		julia.WithCenter(-0.5, 0),
//		julia.WithIterations(120))
type Option func(*options)

// options holds the rendering parameters of a Set.
type options struct {
	code       string
	centerX    float64
	centerY    float64
	height     float64
	palette    palette.Stops
	iterations int
	distance   float64
	antialias  bool
	device     render.Device
}

// defaultOptions returns the default options: centered at the origin,
// 5 units tall, grayscale, 60 iterations, runaway distance 4, no
// antialiasing, software device.
func defaultOptions() options {
	gray, _ := palette.Named(palette.Grayscale)
	return options{
		height:     DefaultHeight,
		palette:    gray,
		iterations: DefaultIterations,
		distance:   DefaultRunawayDistance,
	}
}

// WithCode replaces the formula. It is mainly useful with Set.Update.
func WithCode(code string) Option {
	return func(o *options) {
		o.code = code
	}
}

// WithCenter sets the point of the complex plane at the center of the
// image.
func WithCenter(re, im float64) Option {
	return func(o *options) {
		o.centerX, o.centerY = re, im
	}
}

// WithHeight sets the height of the rendered region in the complex plane.
// The width follows from the aspect ratio of the image.
func WithHeight(h float64) Option {
	return func(o *options) {
		o.height = h
	}
}

// WithPalette sets the color stops. They are spread evenly over the
// escape range; the first stop colors points that escape at once and the
// last colors points that never escape.
func WithPalette(stops palette.Stops) Option {
	return func(o *options) {
		o.palette = stops.Clone()
	}
}

// WithIterations sets the iteration limit.
func WithIterations(n int) Option {
	return func(o *options) {
		o.iterations = n
	}
}

// WithRunawayDistance sets the escape threshold on |z|.
func WithRunawayDistance(d float64) Option {
	return func(o *options) {
		o.distance = d
	}
}

// WithAntialias enables 2x supersampling. The fractal is rendered at twice
// the width and height and scaled down.
func WithAntialias(enabled bool) Option {
	return func(o *options) {
		o.antialias = enabled
	}
}

// WithDevice sets the device to render on. The Set does not close a device
// passed this way. Without this option a Set creates and owns a software
// device.
func WithDevice(dev render.Device) Option {
	return func(o *options) {
		o.device = dev
	}
}
