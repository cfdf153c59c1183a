package cmap

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
)

func TestNewWithShards(t *testing.T) {
	tests := []struct {
		input    int
		expected int
	}{
		{0, DefaultShardCount},
		{-1, DefaultShardCount},
		{3, DefaultShardCount},
		{1, 1},
		{4, 4},
		{32, 32},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("shards=%d", tt.input), func(t *testing.T) {
			m := NewWithShards[string, int](tt.input)
			if len(m.shards) != tt.expected {
				t.Errorf("shard count = %d, want %d", len(m.shards), tt.expected)
			}
		})
	}
	if got := len(New[string, int]().shards); got != DefaultShardCount {
		t.Errorf("New() shard count = %d", got)
	}
}

type pair struct {
	collection, id string
}

func TestMap_Basic(t *testing.T) {
	m := New[pair, string]()
	k := pair{"users", "5550001111"}

	if _, ok := m.Get(k); ok {
		t.Fatal("empty map returned a value")
	}
	m.Set(k, "a")
	if v, ok := m.Get(k); !ok || v != "a" {
		t.Errorf("Get = %q, %v", v, ok)
	}
	if !m.Has(k) || m.Has(pair{"tokens", "5550001111"}) {
		t.Error("Has mismatch")
	}
	m.Delete(k)
	if m.Has(k) || m.Count() != 0 {
		t.Error("Delete left the key behind")
	}
}

func TestMap_Conditional(t *testing.T) {
	m := New[string, int]()

	if m.SetIfPresent("a", 1) {
		t.Error("SetIfPresent stored an absent key")
	}
	if !m.SetIfAbsent("a", 1) {
		t.Error("SetIfAbsent refused an absent key")
	}
	if m.SetIfAbsent("a", 2) {
		t.Error("SetIfAbsent overwrote a present key")
	}
	if !m.SetIfPresent("a", 3) {
		t.Error("SetIfPresent refused a present key")
	}
	if v, ok := m.Pop("a"); !ok || v != 3 {
		t.Errorf("Pop = %d, %v", v, ok)
	}
	if _, ok := m.Pop("a"); ok {
		t.Error("second Pop found the key")
	}
}

func TestMap_RangeCountClear(t *testing.T) {
	m := NewWithShards[int, int](4)
	for i := 0; i < 100; i++ {
		m.Set(i, i*i)
	}
	if m.Count() != 100 {
		t.Fatalf("Count = %d", m.Count())
	}

	sum := 0
	m.Range(func(k, v int) bool {
		if v != k*k {
			t.Errorf("value for %d = %d", k, v)
		}
		sum += k
		return true
	})
	if sum != 4950 {
		t.Errorf("sum of keys = %d", sum)
	}

	visited := 0
	m.Range(func(int, int) bool {
		visited++
		return visited < 10
	})
	if visited != 10 {
		t.Errorf("early stop visited %d", visited)
	}

	m.Clear()
	if m.Count() != 0 {
		t.Errorf("Count after Clear = %d", m.Count())
	}
}

func TestMap_SetIfAbsentConcurrent(t *testing.T) {
	m := New[string, int]()
	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if m.SetIfAbsent("5550001111", i) {
				wins.Add(1)
			}
		}(i)
	}
	wg.Wait()
	if wins.Load() != 1 {
		t.Errorf("%d goroutines won the create race, want 1", wins.Load())
	}
}
