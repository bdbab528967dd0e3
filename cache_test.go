package main

import (
	"testing"
	"time"
)

func TestLRUCacheEviction(t *testing.T) {
	c := NewLRUCache[string, int](2)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)

	if _, ok := c.Get("a"); ok {
		t.Error("a should have been evicted")
	}
	if v, ok := c.Get("b"); !ok || v != 2 {
		t.Errorf("b = %d (%v)", v, ok)
	}
	// Get promoted b, so adding d evicts c.
	c.Put("d", 4)
	if _, ok := c.Get("c"); ok {
		t.Error("c should have been evicted after b was promoted")
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("b should still be cached")
	}
}

func TestLRUCacheUpdateDoesNotPromote(t *testing.T) {
	c := NewLRUCache[string, int](2)
	c.Put("a", 1)
	c.Put("b", 2)

	if !c.Update("a", 10) {
		t.Fatal("Update should find a")
	}
	if c.Update("missing", 1) {
		t.Error("Update should not create entries")
	}
	// a stays least recently used, so it is the one to go.
	c.Put("c", 3)
	if _, ok := c.Get("a"); ok {
		t.Error("a should have been evicted")
	}
	if v, _ := c.Get("b"); v != 2 {
		t.Errorf("b = %d", v)
	}
}

func TestLRUCacheDelete(t *testing.T) {
	c := NewLRUCache[string, int](4)
	c.Put("a", 1)
	if !c.Delete("a") {
		t.Error("Delete should report the removal")
	}
	if c.Delete("a") {
		t.Error("second Delete should report a miss")
	}
	if _, ok := c.Get("a"); ok {
		t.Error("a should be gone")
	}
}

func TestTTLCacheExpiry(t *testing.T) {
	c := NewTTLCache[string, string](time.Hour)
	c.Set("fresh", "v", time.Minute)
	if v, ok := c.Get("fresh"); !ok || v != "v" {
		t.Errorf("fresh = %q (%v)", v, ok)
	}
	// An already-passed deadline is expired even before the cleanup runs.
	c.Set("stale", "v", -time.Second)
	if _, ok := c.Get("stale"); ok {
		t.Error("stale entry should not be returned")
	}
}

func TestGetQueryKey(t *testing.T) {
	a := GetQueryKey("SELECT file FROM pages WHERE title = ?", "Streams")
	b := GetQueryKey("SELECT file FROM pages WHERE title = ?", "Streams")
	if a != b {
		t.Error("identical queries should share a key")
	}
	if a == GetQueryKey("SELECT file FROM pages WHERE title = ?", "Lambdas") {
		t.Error("different values should produce different keys")
	}
	// The separator keeps (stmt, value) boundaries unambiguous.
	if GetQueryKey("a", "bc") == GetQueryKey("ab", "c") {
		t.Error("keys should depend on the value boundaries")
	}
}
