// Package cache provides a generic thread-safe LRU cache with a soft limit.
//
// The julia package keeps compiled formulas in it, keyed by source text:
//
//	c := cache.New[string, formula.Notation](128)
//	n, err := c.GetOrCreate(code, func() (formula.Notation, error) {
//		return formula.Parse(code)
//	})
//
// Failed creations are not cached, so an invalid formula is reported on
// every lookup.
//
// A Cache is safe for concurrent use and must not be copied after creation.
package cache
