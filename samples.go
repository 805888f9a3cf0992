package julia

import "slices"

// Sample is a named formula with parameters that frame it well.
type Sample struct {
	Name       string
	Code       string
	CenterX    float64
	CenterY    float64
	Height     float64
	Iterations int
	Distance   float64
}

// Options returns the options that render the sample.
func (s Sample) Options() []Option {
	return []Option{
		WithCode(s.Code),
		WithCenter(s.CenterX, s.CenterY),
		WithHeight(s.Height),
		WithIterations(s.Iterations),
		WithRunawayDistance(s.Distance),
	}
}

var samples = []Sample{
	{Name: "simple", Code: "z*z + 0.2i0.5", Height: 3, Iterations: 80, Distance: 4},
	{Name: "cosh", Code: "z^2 * cosh z + 0.25", Height: 3.75, Iterations: 80, Distance: 4},
	{Name: "exp", Code: "exp(z^-4) + 0i0.15", Height: 4, Iterations: 60, Distance: 9},
	{Name: "star", Code: "z*(1.05 + atanh(z^-5))", Height: 4, Iterations: 80, Distance: 10},
	{Name: "flower", Code: "0.8*z + z/atanh(z^-4)", Height: 2, Iterations: 80, Distance: 10},
	{Name: "hills", Code: "0i1 * acosh(cosh(0i1 * z) - arg z^-2) + -0.05i0.05", CenterX: -9.41, Height: 8, Iterations: 80, Distance: 5},
	{Name: "fragmentedSpiral", Code: "0.15i0.1*z*acosh(z^-4) - z", Height: 19, Iterations: 40, Distance: 12},
	{Name: "structures", Code: "z*tanh z + 0.35i0.1", Height: 2.1, Iterations: 80, Distance: 5},
	{Name: "outward", Code: "z*(0i2.61 + atanh(z^8))", Height: 2.5, Iterations: 80, Distance: 9},
	{Name: "spiral", Code: "z + tanh sqrt z + -0.18i0.5", CenterX: -6.84, CenterY: 1.15, Height: 2.3, Iterations: 80, Distance: 9},
}

// Samples returns the built-in sample fractals.
func Samples() []Sample {
	return slices.Clone(samples)
}

// SampleByName returns the built-in sample with the given name.
func SampleByName(name string) (Sample, bool) {
	i := slices.IndexFunc(samples, func(s Sample) bool { return s.Name == name })
	if i < 0 {
		return Sample{}, false
	}
	return samples[i], true
}
