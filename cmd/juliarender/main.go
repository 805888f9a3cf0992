// Command juliarender renders Julia sets of complex formulas to image files.
//
// Render one formula:
//
//	juliarender -code 'z*z + 0.2i0.5' -plane-height 3 -palette gold -output simple.png
//
// Render a built-in sample, or every sample:
//
//	juliarender -sample spiral -output spiral.jpg
//	juliarender -samples -outdir gallery
//
// Render a TOML preset gallery concurrently:
//
//	juliarender -presets gallery.toml -outdir gallery
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/julia"
	"github.com/gogpu/julia/gpu"
	"github.com/gogpu/julia/internal/cpu"
	"github.com/gogpu/julia/palette"
	"github.com/gogpu/julia/render"
)

type config struct {
	width, height int
	code          string
	sample        string
	center        string
	planeHeight   float64
	palette       string
	iterations    int
	distance      float64
	antialias     bool
	useGPU        bool
	output        string
	format        string
	quality       int
	presets       string
	allSamples    bool
	outdir        string
	list          bool
	verbose       bool
}

func main() {
	var cfg config
	flag.IntVar(&cfg.width, "width", 800, "image width")
	flag.IntVar(&cfg.height, "height", 600, "image height")
	flag.StringVar(&cfg.code, "code", "", "formula over z, e.g. 'z*z + 0.2i0.5'")
	flag.StringVar(&cfg.sample, "sample", "", "render a built-in sample (see -list)")
	flag.StringVar(&cfg.center, "center", "", "view center as re,im")
	flag.Float64Var(&cfg.planeHeight, "plane-height", 0, "height of the view in the complex plane")
	flag.StringVar(&cfg.palette, "palette", "", "palette name or stops 'r,g,b[,a];...'")
	flag.IntVar(&cfg.iterations, "iterations", 0, "iteration limit")
	flag.Float64Var(&cfg.distance, "distance", 0, "runaway distance")
	flag.BoolVar(&cfg.antialias, "antialias", false, "2x supersampling")
	flag.BoolVar(&cfg.useGPU, "gpu", false, "render with the GPU, falling back to the CPU")
	flag.StringVar(&cfg.output, "output", "julia.png", "output file, - for stdout")
	flag.StringVar(&cfg.format, "format", "", "png, jpeg, bmp or tiff (default from -output)")
	flag.IntVar(&cfg.quality, "quality", 90, "JPEG quality")
	flag.StringVar(&cfg.presets, "presets", "", "TOML gallery of fractals to render")
	flag.BoolVar(&cfg.allSamples, "samples", false, "render every built-in sample")
	flag.StringVar(&cfg.outdir, "outdir", ".", "output directory for -presets and -samples")
	flag.BoolVar(&cfg.list, "list", false, "list samples and palettes")
	flag.BoolVar(&cfg.verbose, "v", false, "debug logging")
	flag.Parse()

	if err := run(context.Background(), cfg); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cfg config) error {
	if cfg.verbose {
		julia.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}
	if cfg.list {
		printList()
		return nil
	}

	dev := openDevice(cfg.useGPU)
	defer dev.Close()

	switch {
	case cfg.presets != "":
		g, err := loadGallery(cfg.presets)
		if err != nil {
			return err
		}
		return renderGallery(ctx, dev, g, cfg)
	case cfg.allSamples:
		g := &gallery{Size: [2]int{cfg.width, cfg.height}, Format: cfg.format}
		for _, s := range julia.Samples() {
			g.Fractals = append(g.Fractals, preset{Name: s.Name, Sample: s.Name, Palette: cfg.palette, Antialias: cfg.antialias})
		}
		return renderGallery(ctx, dev, g, cfg)
	default:
		return renderSingle(ctx, dev, cfg)
	}
}

// openDevice returns the GPU device when requested and available, and the
// software device otherwise.
func openDevice(useGPU bool) render.Device {
	if useGPU {
		dev, err := gpu.NewDevice()
		if err == nil {
			return dev
		}
		julia.Logger().Warn("juliarender: GPU unavailable", "err", err)
		log.Printf("GPU unavailable, rendering on the CPU: %v", err)
	}
	return cpu.NewDevice(0)
}

func renderSingle(ctx context.Context, dev render.Device, cfg config) error {
	f, err := parseFormat(cfg.format, cfg.output)
	if err != nil {
		return err
	}
	p := preset{Name: "output", Sample: cfg.sample, Code: cfg.code, Palette: cfg.palette, Antialias: cfg.antialias}
	if p.Sample == "" && p.Code == "" {
		return errors.New("nothing to render: pass -code, -sample, -samples or -presets")
	}
	opts, err := p.options()
	if err != nil {
		return err
	}
	extra, err := flagOptions(cfg)
	if err != nil {
		return err
	}
	opts = append(append(opts, extra...), julia.WithDevice(dev))

	set, err := julia.NewContext(ctx, cfg.width, cfg.height, "", opts...)
	if err != nil {
		return err
	}
	defer set.Close()

	if err := writeImage(cfg.output, f, set.Image(), cfg.quality); err != nil {
		return err
	}
	if cfg.output != "-" {
		log.Printf("Saved %s (%dx%d, %s)", cfg.output, cfg.width, cfg.height, dev.Name())
	}
	return nil
}

// flagOptions converts the view flags that were set into options.
func flagOptions(cfg config) ([]julia.Option, error) {
	var opts []julia.Option
	if cfg.center != "" {
		re, im, err := parseCenter(cfg.center)
		if err != nil {
			return nil, err
		}
		opts = append(opts, julia.WithCenter(re, im))
	}
	if cfg.planeHeight != 0 {
		opts = append(opts, julia.WithHeight(cfg.planeHeight))
	}
	if cfg.iterations != 0 {
		opts = append(opts, julia.WithIterations(cfg.iterations))
	}
	if cfg.distance != 0 {
		opts = append(opts, julia.WithRunawayDistance(cfg.distance))
	}
	return opts, nil
}

func parseCenter(s string) (re, im float64, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid -center %q: want re,im", s)
	}
	if re, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64); err != nil {
		return 0, 0, fmt.Errorf("invalid -center %q: %w", s, err)
	}
	if im, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64); err != nil {
		return 0, 0, fmt.Errorf("invalid -center %q: %w", s, err)
	}
	return re, im, nil
}

// renderGallery renders every fractal of g into cfg.outdir, several at a
// time. The first failure cancels the remaining renders.
func renderGallery(ctx context.Context, dev render.Device, g *gallery, cfg config) error {
	name := g.Format
	if cfg.format != "" {
		name = cfg.format
	}
	f, err := parseFormat(name, "")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.outdir, 0o755); err != nil {
		return err
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for _, p := range g.Fractals {
		eg.Go(func() error {
			opts, err := p.options()
			if err != nil {
				return err
			}
			set, err := julia.NewContext(ctx, g.Size[0], g.Size[1], "", append(opts, julia.WithDevice(dev))...)
			if err != nil {
				return fmt.Errorf("fractal %q: %w", p.Name, err)
			}
			defer set.Close()

			path := filepath.Join(cfg.outdir, p.Name+"."+string(f))
			if err := writeImage(path, f, set.Image(), cfg.quality); err != nil {
				return fmt.Errorf("fractal %q: %w", p.Name, err)
			}
			log.Printf("Saved %s", path)
			return nil
		})
	}
	return eg.Wait()
}

func printList() {
	fmt.Println("Samples:")
	for _, s := range julia.Samples() {
		fmt.Printf("  %-18s %s\n", s.Name, s.Code)
	}
	fmt.Println("Palettes:")
	for _, name := range palette.Names() {
		fmt.Printf("  %s\n", name)
	}
}
