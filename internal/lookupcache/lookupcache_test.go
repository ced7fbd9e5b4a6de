package lookupcache

import (
	"errors"
	"testing"
)

func TestCacheBasics(t *testing.T) {
	c := New[string, int](4)
	if _, ok := c.Get("a"); ok {
		t.Fatal("unexpected hit on empty cache")
	}
	c.Put("a", 1)
	c.Put("b", 2)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("Get(a) = %d,%v", v, ok)
	}
	c.Put("a", 10)
	if v, _ := c.Get("a"); v != 10 {
		t.Fatalf("overwrite not visible, got %d", v)
	}
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[int, int](3)
	for i := 1; i <= 3; i++ {
		c.Put(i, i)
	}
	c.Get(1) // 2 is now the oldest
	c.Put(4, 4)
	if _, ok := c.Get(2); ok {
		t.Fatal("expected 2 to be evicted")
	}
	for _, k := range []int{1, 3, 4} {
		if _, ok := c.Get(k); !ok {
			t.Fatalf("expected %d to survive", k)
		}
	}
}

func TestCacheGetOrFill(t *testing.T) {
	c := New[string, string](8)
	calls := 0
	fill := func() (string, error) {
		calls++
		return "value", nil
	}
	for i := 0; i < 3; i++ {
		v, err := c.GetOrFill("k", fill)
		if err != nil || v != "value" {
			t.Fatalf("GetOrFill = %q, %v", v, err)
		}
	}
	if calls != 1 {
		t.Fatalf("fill called %d times, want 1", calls)
	}

	boom := errors.New("upstream down")
	_, err := c.GetOrFill("bad", func() (string, error) { return "", boom })
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	// Errors are not cached; a later fill gets another chance.
	v, err := c.GetOrFill("bad", func() (string, error) { return "recovered", nil })
	if err != nil || v != "recovered" {
		t.Fatalf("retry = %q, %v", v, err)
	}
}

func TestCacheDefaultCapacity(t *testing.T) {
	c := New[int, int](0)
	for i := 0; i < 300; i++ {
		c.Put(i, i)
	}
	if c.Len() != 256 {
		t.Fatalf("Len = %d, want default capacity 256", c.Len())
	}
	if _, ok := c.Get(0); ok {
		t.Fatal("oldest entry should have been evicted")
	}
	if _, ok := c.Get(299); !ok {
		t.Fatal("newest entry missing")
	}
}

func TestCacheStructKeys(t *testing.T) {
	type key struct {
		species string
		region  string
	}
	c := New[key, string](4)
	k := key{"homo_sapiens", "7:100-200"}
	c.Put(k, "ACGT")
	if v, ok := c.Get(key{"homo_sapiens", "7:100-200"}); !ok || v != "ACGT" {
		t.Fatalf("struct key lookup = %q,%v", v, ok)
	}
	if _, ok := c.Get(key{"mus_musculus", "7:100-200"}); ok {
		t.Fatal("distinct key should miss")
	}
}
