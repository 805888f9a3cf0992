package julia

import "github.com/gogpu/julia/render"

// Viewport returns the region of the complex plane shown by a
// width x height image centered at (re, im) and spanning planeHeight
// units vertically. The horizontal span keeps the pixels square.
func Viewport(re, im, planeHeight float64, width, height int) render.Viewport {
	planeWidth := planeHeight * float64(width) / float64(height)
	return render.Viewport{
		MinX: re - planeWidth/2,
		MaxX: re + planeWidth/2,
		MinY: im - planeHeight/2,
		MaxY: im + planeHeight/2,
	}
}
