package assist

import (
	"fmt"
	"testing"
	"time"
)

func TestNameStore_SetGet(t *testing.T) {
	s := NewNameStore(10, time.Minute)

	s.Set("c1", "Alice")
	if got := s.Get("c1"); got != "Alice" {
		t.Fatalf("expected Alice, got %q", got)
	}
	if got := s.Get("unknown"); got != "" {
		t.Fatalf("expected empty for unknown conversation, got %q", got)
	}

	// Last writer wins.
	s.Set("c1", "Bob")
	if got := s.Get("c1"); got != "Bob" {
		t.Fatalf("expected Bob, got %q", got)
	}
}

func TestNameStore_IgnoresEmptyKeys(t *testing.T) {
	s := NewNameStore(10, time.Minute)

	s.Set("", "Alice")
	s.Set("c1", "")
	if s.Len() != 0 {
		t.Fatalf("empty ids/names must not be stored, len=%d", s.Len())
	}
	if got := s.Get(""); got != "" {
		t.Fatalf("empty id must read empty, got %q", got)
	}
}

func TestNameStore_Eviction(t *testing.T) {
	s := NewNameStore(2, time.Minute)

	for i := 0; i < 3; i++ {
		s.Set(fmt.Sprintf("c%d", i), "name")
	}
	if s.Len() != 2 {
		t.Fatalf("capacity must bound the store, len=%d", s.Len())
	}
	if got := s.Get("c0"); got != "" {
		t.Fatalf("oldest entry should be evicted, got %q", got)
	}
	if got := s.Get("c2"); got != "name" {
		t.Fatalf("newest entry missing, got %q", got)
	}
}

func TestNameStore_TTLExpiry(t *testing.T) {
	s := NewNameStore(10, 20*time.Millisecond)

	s.Set("c1", "Alice")
	time.Sleep(60 * time.Millisecond)
	if got := s.Get("c1"); got != "" {
		t.Fatalf("entry should have expired, got %q", got)
	}
}
