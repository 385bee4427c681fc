package cmap

import (
	"fmt"
	"sync"
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
		{8, 8},
		{32, 32},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("shards=%d", tt.input), func(t *testing.T) {
			m := NewWithShards[int](tt.input)
			if m.ShardCount() != tt.expected {
				t.Errorf("NewWithShards(%d) shard count = %d, want %d",
					tt.input, m.ShardCount(), tt.expected)
			}
		})
	}
}

func TestSetGetDelete(t *testing.T) {
	m := New[int]()

	m.Set("a", 1)
	m.Set("b", 2)

	if v, ok := m.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = (%d, %v), want (1, true)", v, ok)
	}
	m.Delete("a")
	if _, ok := m.Get("a"); ok {
		t.Error("Get(a) after Delete should miss")
	}
	if m.Count() != 1 {
		t.Errorf("Count() = %d, want 1", m.Count())
	}
}

func TestGetOrCreate(t *testing.T) {
	m := New[int]()
	calls := 0
	create := func() int { calls++; return 7 }

	if v := m.GetOrCreate("k", create); v != 7 {
		t.Errorf("GetOrCreate() = %d, want 7", v)
	}
	if v := m.GetOrCreate("k", create); v != 7 {
		t.Errorf("GetOrCreate() second = %d, want 7", v)
	}
	if calls != 1 {
		t.Errorf("create called %d times, want 1", calls)
	}
}

func TestCompute(t *testing.T) {
	m := New[int]()

	v, keep := m.Compute("n", func(old int, exists bool) (int, bool) {
		if exists {
			t.Error("key should not exist yet")
		}
		return old + 1, true
	})
	if v != 1 || !keep {
		t.Errorf("Compute() = (%d, %v), want (1, true)", v, keep)
	}

	m.Compute("n", func(old int, exists bool) (int, bool) { return old + 1, true })
	if got, _ := m.Get("n"); got != 2 {
		t.Errorf("Get(n) = %d, want 2", got)
	}

	m.Compute("n", func(old int, exists bool) (int, bool) { return 0, false })
	if _, ok := m.Get("n"); ok {
		t.Error("Compute with keep=false should delete")
	}
}

func TestDeleteFunc(t *testing.T) {
	m := NewWithShards[int](4)
	for i := 0; i < 100; i++ {
		m.Set(fmt.Sprintf("k%d", i), i)
	}

	removed := m.DeleteFunc(func(_ string, v int) bool { return v%2 == 0 })
	if removed != 50 {
		t.Errorf("DeleteFunc() removed %d, want 50", removed)
	}
	if m.Count() != 50 {
		t.Errorf("Count() = %d, want 50", m.Count())
	}
}

func TestRangeStops(t *testing.T) {
	m := New[int]()
	for i := 0; i < 10; i++ {
		m.Set(fmt.Sprintf("k%d", i), i)
	}

	seen := 0
	m.Range(func(string, int) bool {
		seen++
		return seen < 3
	})
	if seen != 3 {
		t.Errorf("Range visited %d entries, want 3", seen)
	}
}

func TestConcurrentCompute(t *testing.T) {
	m := New[int]()
	var wg sync.WaitGroup
	const goroutines, ops = 50, 200

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < ops; j++ {
				m.Compute("counter", func(old int, _ bool) (int, bool) { return old + 1, true })
			}
		}()
	}
	wg.Wait()

	if v, _ := m.Get("counter"); v != goroutines*ops {
		t.Errorf("counter = %d, want %d", v, goroutines*ops)
	}
}
