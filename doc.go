// Package julia renders Julia-set fractals of user-supplied complex
// formulas.
//
// A formula is an expression over the complex variable z, for example
//
//	z*z + 0.2i0.5
//	z^2 * cosh z + 0.25
//	exp(z^-4) + 0i0.15
//
// Complex literals are written as re i im (or re j im). The operators
// + - * / ^ and the functions re, im, arg, mod, exp, log (ln), sqrt,
// sinh (sh), cosh (ch), tanh (th), asinh, acosh and atanh are supported.
// Brackets of any kind group subexpressions.
//
// Each pixel is iterated through the formula until |z| exceeds the runaway
// distance or the iteration limit is reached, and the escape count picks a
// color from the palette.
//
// # Quick Start
//
//	gold, _ := palette.Named(palette.Gold)
//	img, err := julia.Render(800, 600, "z*z + 0.2i0.5",
//		julia.WithHeight(3),
//		julia.WithIterations(80),
//		julia.WithPalette(gold))
//
// # Incremental Rendering
//
// A Set keeps its compiled kernel, output buffer and color table between
// draws. Changing only the numbers in a formula, the viewport or the
// palette does not recompile the kernel:
//
//	set, err := julia.New(800, 600, "z*z + 0.2i0.5")
//	defer set.Close()
//	err = set.Update(julia.WithCode("z*z + -0.8i0.156"))
//
// # Devices
//
// Sets render on the software device by default. To render with compute
// shaders, open a GPU device and pass it with WithDevice:
//
//	dev, err := gpu.NewDevice()
//	set, err := julia.New(800, 600, code, julia.WithDevice(dev))
//
// # Logging
//
// The package is silent by default. SetLogger enables structured logging
// for julia and its sub-packages.
package julia
