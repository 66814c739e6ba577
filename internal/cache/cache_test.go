package cache

import (
	"testing"
	"time"
)

func TestCacheBasicOperations(t *testing.T) {
	c := New(5*time.Minute, 10*time.Minute)
	defer c.Stop()

	c.Set("key1", "value1")

	value, found := c.Get("key1")
	if !found {
		t.Error("Expected to find key1")
	}
	if value != "value1" {
		t.Errorf("Expected 'value1', got %v", value)
	}

	_, found = c.Get("nonexistent")
	if found {
		t.Error("Expected not to find nonexistent key")
	}
}

func TestCacheExpiration(t *testing.T) {
	c := New(5*time.Minute, 10*time.Minute)
	defer c.Stop()

	c.SetWithTTL("expiring", "value", 100*time.Millisecond)

	_, found := c.Get("expiring")
	if !found {
		t.Error("Expected to find item before expiration")
	}

	time.Sleep(150 * time.Millisecond)

	_, found = c.Get("expiring")
	if found {
		t.Error("Expected item to be expired")
	}
}

func TestCacheDelete(t *testing.T) {
	c := New(5*time.Minute, 10*time.Minute)
	defer c.Stop()

	c.Set("key1", "value1")
	c.Delete("key1")

	_, found := c.Get("key1")
	if found {
		t.Error("Expected key to be deleted")
	}
}

func TestCacheClear(t *testing.T) {
	c := New(5*time.Minute, 10*time.Minute)
	defer c.Stop()

	c.Set("key1", "value1")
	c.Set("key2", "value2")

	if c.Count() != 2 {
		t.Errorf("Expected count 2, got %d", c.Count())
	}

	c.Clear()

	if c.Count() != 0 {
		t.Errorf("Expected count 0 after clear, got %d", c.Count())
	}
}

func TestCacheConcurrency(t *testing.T) {
	c := New(5*time.Minute, 10*time.Minute)
	defer c.Stop()

	done := make(chan bool)

	for i := 0; i < 10; i++ {
		go func(n int) {
			for j := 0; j < 100; j++ {
				c.Set(string(rune('a'+n)), j)
			}
			done <- true
		}(i)
	}

	for i := 0; i < 10; i++ {
		go func(n int) {
			for j := 0; j < 100; j++ {
				c.Get(string(rune('a' + n)))
			}
			done <- true
		}(i)
	}

	for i := 0; i < 20; i++ {
		<-done
	}
}

func BenchmarkCacheSet(b *testing.B) {
	c := New(5*time.Minute, 10*time.Minute)
	defer c.Stop()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Set("key", "value")
	}
}

func BenchmarkCacheGet(b *testing.B) {
	c := New(5*time.Minute, 10*time.Minute)
	defer c.Stop()

	c.Set("key", "value")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get("key")
	}
}
