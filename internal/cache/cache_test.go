package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestCacheGetSet(t *testing.T) {
	c := New[string, int](0)

	if _, ok := c.Get("a"); ok {
		t.Error("Get on empty cache returned ok")
	}
	c.Set("a", 1)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v; want 1, true", v, ok)
	}
	c.Set("a", 2)
	if v, _ := c.Get("a"); v != 2 {
		t.Errorf("Get(a) after overwrite = %d, want 2", v)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[int, int](4)
	for i := range 4 {
		c.Set(i, i)
	}
	// Touch 0 so that 1 is the oldest.
	c.Get(0)
	c.Set(4, 4)

	// Over the limit: shrink to 3 entries, dropping 1 and 2.
	if got := c.Len(); got != 3 {
		t.Fatalf("Len() = %d, want 3", got)
	}
	for _, k := range []int{0, 3, 4} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("key %d evicted, want kept", k)
		}
	}
	for _, k := range []int{1, 2} {
		if _, ok := c.Get(k); ok {
			t.Errorf("key %d kept, want evicted", k)
		}
	}
	if got := c.Stats().Evictions; got != 2 {
		t.Errorf("Evictions = %d, want 2", got)
	}
}

func TestCacheGetOrCreate(t *testing.T) {
	c := New[string, int](0)
	calls := 0
	create := func() (int, error) {
		calls++
		return 7, nil
	}

	for range 3 {
		v, err := c.GetOrCreate("k", create)
		if err != nil || v != 7 {
			t.Fatalf("GetOrCreate = %d, %v; want 7, nil", v, err)
		}
	}
	if calls != 1 {
		t.Errorf("create called %d times, want 1", calls)
	}

	s := c.Stats()
	if s.Hits != 2 || s.Misses != 1 {
		t.Errorf("Stats = %+v, want 2 hits 1 miss", s)
	}
}

func TestCacheGetOrCreateErrorNotCached(t *testing.T) {
	c := New[string, int](0)
	errBad := errors.New("bad")

	for range 2 {
		if _, err := c.GetOrCreate("k", func() (int, error) { return 0, errBad }); !errors.Is(err, errBad) {
			t.Fatalf("GetOrCreate error = %v, want errBad", err)
		}
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, failed creations must not be stored", c.Len())
	}
}

func TestCacheConcurrentGetOrCreate(t *testing.T) {
	c := New[int, int](0)
	var creations atomic.Int32

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := range 10 {
				_, _ = c.GetOrCreate(k, func() (int, error) {
					creations.Add(1)
					return k * k, nil
				})
			}
		}()
	}
	wg.Wait()

	if got := creations.Load(); got != 10 {
		t.Errorf("creations = %d, want 10", got)
	}
}

func TestCacheClear(t *testing.T) {
	c := New[string, int](0)
	c.Set("a", 1)
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", c.Len())
	}
}
