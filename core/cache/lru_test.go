package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestLRUCache_BasicOperations(t *testing.T) {
	cache := NewLRUCache[string, string](Config{MaxSize: 3})

	cache.Put("का", "'kaa")
	cache.Put("कि", "'ki")

	if v, ok := cache.Get("का"); !ok || v != "'kaa" {
		t.Errorf("Get(का) = %q, %v; want 'kaa, true", v, ok)
	}
	if _, ok := cache.Get("कु"); ok {
		t.Error("Get of missing key should return false")
	}
	if n := cache.Len(); n != 2 {
		t.Errorf("Len() = %d; want 2", n)
	}
}

func TestLRUCache_Eviction(t *testing.T) {
	cache := NewLRUCache[string, int](Config{MaxSize: 2})

	cache.Put("a", 1)
	cache.Put("b", 2)
	cache.Get("a")    // a is now most recent
	cache.Put("c", 3) // evicts b

	if _, ok := cache.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	for _, k := range []string{"a", "c"} {
		if _, ok := cache.Get(k); !ok {
			t.Errorf("%s should still be cached", k)
		}
	}
	if s := cache.Stats(); s.Evictions != 1 {
		t.Errorf("Evictions = %d; want 1", s.Evictions)
	}
}

func TestLRUCache_Update(t *testing.T) {
	cache := NewLRUCache[string, int](Config{MaxSize: 2})
	cache.Put("a", 1)
	cache.Put("a", 2)

	if v, _ := cache.Get("a"); v != 2 {
		t.Errorf("Get(a) = %d; want 2", v)
	}
	if n := cache.Len(); n != 1 {
		t.Errorf("Len() = %d; want 1", n)
	}
}

func TestLRUCache_TTL(t *testing.T) {
	cache := NewLRUCache[string, int](Config{MaxSize: 3, TTL: 30 * time.Millisecond})
	cache.Put("a", 1)

	if _, ok := cache.Get("a"); !ok {
		t.Fatal("a should be present before expiry")
	}
	time.Sleep(60 * time.Millisecond)
	if _, ok := cache.Get("a"); ok {
		t.Error("a should have expired")
	}
	if n := cache.Len(); n != 0 {
		t.Errorf("expired entry still counted: Len() = %d", n)
	}
}

func TestLRUCache_Stats(t *testing.T) {
	cache := NewLRUCache[string, int](Config{MaxSize: 2})
	cache.Put("a", 1)
	cache.Get("a")
	cache.Get("a")
	cache.Get("b")

	s := cache.Stats()
	if s.Hits != 2 || s.Misses != 1 || s.Size != 1 || s.MaxSize != 2 {
		t.Errorf("Stats() = %+v", s)
	}
	if got := s.HitRate(); got < 0.66 || got > 0.67 {
		t.Errorf("HitRate() = %v", got)
	}
	if (Stats{}).HitRate() != 0 {
		t.Error("empty HitRate should be 0")
	}
}

func TestLRUCache_Unlimited(t *testing.T) {
	cache := NewLRUCache[int, int](Config{MaxSize: -1})
	for i := 0; i < 1000; i++ {
		cache.Put(i, i)
	}
	if n := cache.Len(); n != 1000 {
		t.Errorf("Len() = %d; want 1000", n)
	}
}

func TestLRUCache_Concurrency(t *testing.T) {
	cache := NewLRUCache[string, int](Config{MaxSize: 50})

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("w%d", (g*200+i)%75)
				cache.Put(key, i)
				cache.Get(key)
			}
		}(g)
	}
	wg.Wait()

	if n := cache.Len(); n > 50 {
		t.Errorf("Len() = %d exceeds MaxSize", n)
	}
}

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	if c.MaxSize != 4096 || c.TTL != 0 {
		t.Errorf("DefaultConfig() = %+v", c)
	}
}
