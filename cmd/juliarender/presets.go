package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/gogpu/julia"
	"github.com/gogpu/julia/palette"
)

// gallery is a TOML preset file.
//
//	size = [400, 400]
//	format = "png"
//
//	[[fractal]]
//	name = "simple"
//	code = "z*z + 0.2i0.5"
//	height = 3
//	iterations = 80
//	palette = "gold"
type gallery struct {
	Size     [2]int   `toml:"size"`
	Format   string   `toml:"format"`
	Fractals []preset `toml:"fractal"`
}

// preset mirrors the options of julia.Set. Unset fields keep the defaults.
type preset struct {
	Name            string      `toml:"name"`
	Sample          string      `toml:"sample"`
	Code            string      `toml:"code"`
	Center          *[2]float64 `toml:"center"`
	Height          float64     `toml:"height"`
	Palette         string      `toml:"palette"`
	Iterations      int         `toml:"iterations"`
	RunawayDistance float64     `toml:"runaway_distance"`
	Antialias       bool        `toml:"antialias"`
}

func loadGallery(path string) (*gallery, error) {
	g := &gallery{Size: [2]int{400, 400}}
	md, err := toml.DecodeFile(path, g)
	if err != nil {
		return nil, fmt.Errorf("read presets: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("read presets: unknown key %q", undecoded[0].String())
	}
	if len(g.Fractals) == 0 {
		return nil, errors.New("read presets: no [[fractal]] entries")
	}
	if g.Size[0] <= 0 || g.Size[1] <= 0 {
		return nil, fmt.Errorf("read presets: invalid size %v", g.Size)
	}

	seen := make(map[string]bool, len(g.Fractals))
	for i, p := range g.Fractals {
		if p.Name == "" {
			return nil, fmt.Errorf("read presets: fractal %d has no name", i)
		}
		if p.Name == "." || p.Name == ".." || strings.ContainsAny(p.Name, `/\`) {
			return nil, fmt.Errorf("read presets: fractal name %q must not contain a path", p.Name)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("read presets: duplicate fractal %q", p.Name)
		}
		seen[p.Name] = true
	}
	return g, nil
}

// options resolves the preset into julia options. A sample provides the
// base values that the other fields override.
func (p preset) options() ([]julia.Option, error) {
	var opts []julia.Option
	if p.Sample != "" {
		s, ok := julia.SampleByName(p.Sample)
		if !ok {
			return nil, fmt.Errorf("fractal %q: unknown sample %q", p.Name, p.Sample)
		}
		opts = append(opts, s.Options()...)
	} else if p.Code == "" {
		return nil, fmt.Errorf("fractal %q: needs code or sample", p.Name)
	}

	if p.Code != "" {
		opts = append(opts, julia.WithCode(p.Code))
	}
	if p.Center != nil {
		opts = append(opts, julia.WithCenter(p.Center[0], p.Center[1]))
	}
	if p.Height != 0 {
		opts = append(opts, julia.WithHeight(p.Height))
	}
	if p.Palette != "" {
		stops, err := palette.Lookup(p.Palette)
		if err != nil {
			return nil, fmt.Errorf("fractal %q: %w", p.Name, err)
		}
		opts = append(opts, julia.WithPalette(stops))
	}
	if p.Iterations != 0 {
		opts = append(opts, julia.WithIterations(p.Iterations))
	}
	if p.RunawayDistance != 0 {
		opts = append(opts, julia.WithRunawayDistance(p.RunawayDistance))
	}
	if p.Antialias {
		opts = append(opts, julia.WithAntialias(true))
	}
	return opts, nil
}
