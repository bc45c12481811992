package cache

import (
	"strconv"
	"sync"
	"testing"
)

func TestShardedGetSet(t *testing.T) {
	c := NewSharded[string, int](10, StringHasher)

	c.Set("key1", 42)

	val, ok := c.Get("key1")
	if !ok {
		t.Error("expected key1 to exist")
	}
	if val != 42 {
		t.Errorf("expected 42, got %d", val)
	}

	if _, ok = c.Get("nonexistent"); ok {
		t.Error("expected nonexistent key to not exist")
	}
}

func TestShardedUpdate(t *testing.T) {
	c := NewSharded[string, int](10, StringHasher)
	c.Set("k", 1)
	c.Set("k", 2)
	if val, _ := c.Get("k"); val != 2 {
		t.Errorf("expected updated value 2, got %d", val)
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 entry after update, got %d", c.Len())
	}
}

func TestShardedGetOrCreate(t *testing.T) {
	c := NewSharded[string, int](10, StringHasher)
	createCalled := 0

	val := c.GetOrCreate("key1", func() int {
		createCalled++
		return 100
	})
	if val != 100 {
		t.Errorf("expected 100, got %d", val)
	}

	val = c.GetOrCreate("key1", func() int {
		createCalled++
		return 200
	})
	if val != 100 {
		t.Errorf("expected cached 100, got %d", val)
	}
	if createCalled != 1 {
		t.Errorf("expected create called once, got %d", createCalled)
	}
}

func TestShardedDelete(t *testing.T) {
	c := NewSharded[string, int](10, StringHasher)
	c.Set("key1", 42)

	if !c.Delete("key1") {
		t.Error("expected Delete to return true for existing key")
	}
	if _, ok := c.Get("key1"); ok {
		t.Error("expected key1 gone after Delete")
	}
	if c.Delete("key1") {
		t.Error("expected Delete to return false for missing key")
	}
}

func TestShardedClear(t *testing.T) {
	c := NewSharded[string, int](10, StringHasher)
	for i := 0; i < 20; i++ {
		c.Set(strconv.Itoa(i), i)
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("expected empty cache after Clear, got %d", c.Len())
	}
}

func TestShardedEviction(t *testing.T) {
	// Capacity 2 per shard. Drive many keys into the cache; total
	// entries must never exceed shards * capacity.
	c := NewSharded[uint64, int](2, Uint64Hasher)
	for i := uint64(0); i < 1000; i++ {
		c.Set(i, int(i))
	}
	if max := 2 * DefaultShardCount; c.Len() > max {
		t.Errorf("cache grew to %d entries, cap is %d", c.Len(), max)
	}
	if c.Stats().Evictions == 0 {
		t.Error("expected evictions after overfilling")
	}
}

func TestShardedLRUOrder(t *testing.T) {
	// All keys hash to one shard via a constant hasher, making the LRU
	// order observable: touching "a" keeps it alive while "b" is evicted.
	one := func(string) uint64 { return 0 }
	c := NewSharded[string, int](2, one)

	c.Set("a", 1)
	c.Set("b", 2)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a missing before eviction")
	}
	c.Set("c", 3) // evicts b, the least recently used

	if _, ok := c.Get("b"); ok {
		t.Error("b survived eviction, want it dropped as LRU")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a was evicted despite recent use")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("c missing after insert")
	}
}

func TestShardedStats(t *testing.T) {
	c := NewSharded[string, int](10, StringHasher)
	c.Set("a", 1)

	c.Get("a")
	c.Get("a")
	c.Get("missing")

	s := c.Stats()
	if s.Hits != 2 || s.Misses != 1 {
		t.Errorf("stats = %d hits / %d misses, want 2/1", s.Hits, s.Misses)
	}
	if s.HitRate < 0.66 || s.HitRate > 0.67 {
		t.Errorf("hit rate = %v, want ~2/3", s.HitRate)
	}
	if s.TotalCapacity != 10*DefaultShardCount {
		t.Errorf("TotalCapacity = %d, want %d", s.TotalCapacity, 10*DefaultShardCount)
	}

	c.ResetStats()
	if s := c.Stats(); s.Hits != 0 || s.Misses != 0 {
		t.Errorf("counters not reset: %+v", s)
	}
}

func TestShardedConcurrent(t *testing.T) {
	c := NewSharded[string, int](64, StringHasher)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := strconv.Itoa(i % 100)
				c.Set(key, g)
				c.Get(key)
				c.GetOrCreate(key, func() int { return g })
			}
		}(g)
	}
	wg.Wait()

	if c.Len() == 0 {
		t.Error("cache empty after concurrent writes")
	}
}

func TestShardedDefaultCapacity(t *testing.T) {
	c := NewSharded[string, int](0, StringHasher)
	if c.Capacity() != DefaultCapacity {
		t.Errorf("Capacity() = %d, want %d", c.Capacity(), DefaultCapacity)
	}
}
