package cache

import (
	"testing"
	"time"
)

func TestKey_StableAndNamespaced(t *testing.T) {
	k1 := Key("https://example.com/api?q=1")
	k2 := Key("https://example.com/api?q=1")
	k3 := Key("https://example.com/api?q=2")

	if k1 != k2 {
		t.Error("same request produced different keys")
	}
	if k1 == k3 {
		t.Error("different requests produced the same key")
	}
	if len(k1) == 0 || k1[:15] != "ecoprofiler:v1:" {
		t.Errorf("key missing namespace prefix: %s", k1)
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	c := NewLayeredCache(time.Minute, t.TempDir(), time.Hour)

	key := Key("https://overpass-api.de/api/interpreter?q=test")
	if err := c.Set(key, []byte("payload"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// Drop the memory layer; the disk layer must still serve the value.
	if err := c.memory.Clear(); err != nil {
		t.Fatalf("clear memory: %v", err)
	}

	val, found := c.Get(key)
	if !found || string(val) != "payload" {
		t.Fatalf("expected disk hit, got found=%v val=%q", found, val)
	}

	// Promotion: a second read must hit the memory layer.
	if _, found := c.memory.Get(key); !found {
		t.Error("disk hit was not promoted to memory")
	}
}

func TestDiskCache_ExpiredEntryEvicted(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)

	key := Key("expired")
	if err := c.Set(key, []byte("old"), -time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if _, found := c.Get(key); found {
		t.Error("expired entry served from disk cache")
	}
}
