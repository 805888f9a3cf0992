package palette

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/image/colornames"
)

// Names of the built-in palettes.
const (
	Grayscale = "grayscale"
	Tree      = "tree"
	Gold      = "gold"
	Snow      = "snow"
	Red       = "red"
	Green     = "green"
)

var named = map[string]Stops{
	Grayscale: {colornames.Black, colornames.White},
	Tree:      {colornames.Black, colornames.Saddlebrown, colornames.Forestgreen, colornames.Yellowgreen},
	Gold:      {colornames.Black, colornames.Darkgoldenrod, colornames.Gold, colornames.Lightyellow},
	Snow:      {colornames.Black, colornames.Steelblue, colornames.Lightskyblue, colornames.Snow},
	Red:       {colornames.Black, colornames.Darkred, colornames.Red, colornames.Orange},
	Green:     {colornames.Black, colornames.Darkgreen, colornames.Limegreen, colornames.Palegreen},
}

// Named returns the stops of a built-in palette.
func Named(name string) (Stops, bool) {
	s, ok := named[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return s.Clone(), true
}

// Names returns the built-in palette names in sorted order.
func Names() []string {
	names := make([]string, 0, len(named))
	for n := range named {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Lookup resolves a palette given either as a built-in name or in the
// ParseStops syntax.
func Lookup(spec string) (Stops, error) {
	if s, ok := Named(spec); ok {
		return s, nil
	}
	if !strings.ContainsRune(spec, ',') {
		return nil, fmt.Errorf("palette: unknown palette %q (known: %s)", spec, strings.Join(Names(), ", "))
	}
	return ParseStops(spec)
}
