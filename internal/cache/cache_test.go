package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestGetSet(t *testing.T) {
	c := New[string, int](0, time.Minute)

	if _, ok := c.Get("a"); ok {
		t.Fatal("Get() on empty cache returned ok")
	}
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("a", 3)

	tests := []struct {
		key    string
		want   int
		wantOK bool
	}{
		{"a", 3, true},
		{"b", 2, true},
		{"c", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := c.Get(tt.key)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Get(%q) = %d, %v, want %d, %v", tt.key, got, ok, tt.want, tt.wantOK)
			}
		})
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestExpiry(t *testing.T) {
	now := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)
	c := New[string, string](0, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("k", "v")
	now = now.Add(59 * time.Second)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("entry expired early")
	}

	now = now.Add(time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatal("entry survived its TTL")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want expired entry removed", c.Len())
	}
}

func TestNoTTL(t *testing.T) {
	now := time.Now()
	c := New[int, int](0, 0)
	c.now = func() time.Time { return now }

	c.Set(1, 1)
	now = now.Add(24 * time.Hour)
	if _, ok := c.Get(1); !ok {
		t.Error("entry expired with ttl 0")
	}
}

func TestEviction(t *testing.T) {
	c := New[int, int](2, time.Minute)
	c.Set(1, 1)
	c.Set(2, 2)
	c.Get(1) // 2 is now least recently used
	c.Set(3, 3)

	if _, ok := c.Get(2); ok {
		t.Error("least recently used entry was kept")
	}
	for _, k := range []int{1, 3} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("Get(%d) missing", k)
		}
	}
}

func TestInvalidate(t *testing.T) {
	c := New[string, int](0, time.Minute)
	c.Set("a", 1)
	c.Invalidate()
	if _, ok := c.Get("a"); ok || c.Len() != 0 {
		t.Error("Invalidate() left entries behind")
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := New[string, int](64, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("k%d", j%16)
				c.Set(key, i)
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()

	if c.Len() > 16 {
		t.Errorf("Len() = %d, want at most 16", c.Len())
	}
}
