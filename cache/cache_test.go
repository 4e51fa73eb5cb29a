package cache

import (
	"bytes"
	"testing"
	"time"
)

func TestCache_SetGet(t *testing.T) {
	c := New(10, time.Minute)

	key := Key("https://example.com", "iPhone 14", "png", true, false)
	c.Set(key, []byte("image-bytes"), "png")

	img, format, hit := c.Get(key)
	if !hit {
		t.Fatal("expected cache hit")
	}
	if !bytes.Equal(img, []byte("image-bytes")) || format != "png" {
		t.Errorf("got (%q, %q)", img, format)
	}

	if _, _, hit := c.Get(Key("https://example.com", "iPad", "png", true, false)); hit {
		t.Error("different device should be a distinct key")
	}
}

func TestCache_TTLExpiry(t *testing.T) {
	c := New(10, 20*time.Millisecond)

	c.Set("k", []byte("v"), "png")
	if _, _, hit := c.Get("k"); !hit {
		t.Fatal("fresh entry should hit")
	}

	time.Sleep(40 * time.Millisecond)
	if _, _, hit := c.Get("k"); hit {
		t.Error("expired entry should miss")
	}
}

func TestCache_EvictsAtCapacity(t *testing.T) {
	c := New(2, time.Minute)

	c.Set("a", []byte("1"), "png")
	c.Set("b", []byte("2"), "png")
	c.Set("c", []byte("3"), "png")

	if got := c.Len(); got != 2 {
		t.Errorf("Len = %d, want 2", got)
	}

	hits := 0
	for _, k := range []string{"a", "b", "c"} {
		if _, _, hit := c.Get(k); hit {
			hits++
		}
	}
	if hits != 2 {
		t.Errorf("hits = %d, want 2 after one eviction", hits)
	}
}

func TestKey_SensitiveToEveryParameter(t *testing.T) {
	base := Key("https://example.com", "iPad", "png", false, false)

	variants := []string{
		Key("https://example.org", "iPad", "png", false, false),
		Key("https://example.com", "iPhone 14", "png", false, false),
		Key("https://example.com", "iPad", "jpeg", false, false),
		Key("https://example.com", "iPad", "png", true, false),
		Key("https://example.com", "iPad", "png", false, true),
	}
	for i, v := range variants {
		if v == base {
			t.Errorf("variant %d collides with base key", i)
		}
	}
}
