package strtab

import (
	"fmt"
	"testing"
)

func TestInternDeduplicates(t *testing.T) {
	tab := New()

	idx, seen := tab.Intern("a")
	if idx != 0 || seen {
		t.Fatalf("first Intern = %d, %v", idx, seen)
	}
	for i := 0; i < 2; i++ {
		idx, seen = tab.Intern("a")
		if idx != 0 || !seen {
			t.Errorf("repeat Intern = %d, %v; want 0, true", idx, seen)
		}
	}
	if tab.Len() != 1 {
		t.Errorf("Len = %d, want 1", tab.Len())
	}
}

func TestGrowthKeepsIndices(t *testing.T) {
	tab := New()
	const n = 1000
	for i := 0; i < n; i++ {
		idx, seen := tab.Intern(fmt.Sprintf("key-%d", i))
		if seen || idx != uint32(i) {
			t.Fatalf("Intern(key-%d) = %d, %v", i, idx, seen)
		}
	}
	if tab.Capacity() <= initialSlots {
		t.Errorf("table did not grow: capacity %d", tab.Capacity())
	}
	if tab.Len()*loadDen > tab.Capacity()*loadNum {
		t.Errorf("load factor exceeded: %d entries in %d slots", tab.Len(), tab.Capacity())
	}
	for i := 0; i < n; i++ {
		idx, seen := tab.Intern(fmt.Sprintf("key-%d", i))
		if !seen || idx != uint32(i) {
			t.Errorf("after growth Intern(key-%d) = %d, %v", i, idx, seen)
		}
	}
}

func TestCollisionsNeverMerge(t *testing.T) {
	constant := func(string) uint64 { return 42 }
	tab := NewWithHasher(constant)

	words := []string{"alpha", "beta", "gamma", "delta", "", "alpha\x00", "ALPHA"}
	for i := 0; i < 40; i++ {
		words = append(words, fmt.Sprintf("w%02d", i))
	}
	for i, w := range words {
		idx, seen := tab.Intern(w)
		if seen || idx != uint32(i) {
			t.Fatalf("Intern(%q) = %d, %v; want %d, false", w, idx, seen, i)
		}
	}
	for i, w := range words {
		idx, seen := tab.Intern(w)
		if !seen || idx != uint32(i) {
			t.Errorf("second Intern(%q) = %d, %v; want %d, true", w, idx, seen, i)
		}
	}
	if idx, seen := tab.Intern("missing"); seen || idx != uint32(len(words)) {
		t.Errorf("colliding new string = %d, %v; want %d, false", idx, seen, len(words))
	}
}

func TestList(t *testing.T) {
	var l List
	if _, ok := l.Get(0); ok {
		t.Error("Get on empty list succeeded")
	}
	l.Add("x")
	l.Add("x")
	if l.Len() != 2 {
		t.Errorf("Len = %d, want 2", l.Len())
	}
	if s, ok := l.Get(1); !ok || s != "x" {
		t.Errorf("Get(1) = %q, %v", s, ok)
	}
	if _, ok := l.Get(2); ok {
		t.Error("Get past end succeeded")
	}
}
