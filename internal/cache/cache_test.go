package cache

import (
	"errors"
	"math/big"
	"sync"
	"testing"

	"godice/domain/core"
	"godice/domain/pool"
)

func TestPopsRoundTrip(t *testing.T) {
	c := New(0)
	key := core.ComputePopKey(core.ComputeGeneratorHash("test"), "st", 3, core.OrderAscending)

	if _, ok := c.GetPops(key); ok {
		t.Fatal("cold cache reported a hit")
	}
	pops := []pool.Pop{{Count: 1, Weight: big.NewInt(2)}}
	c.PutPops(key, pops)
	got, ok := c.GetPops(key)
	if !ok || len(got) != 1 || got[0].Count != 1 {
		t.Fatalf("GetPops = %+v ok=%v", got, ok)
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Entries != 1 {
		t.Errorf("stats = %+v, want 1 hit, 1 miss, 1 entry", stats)
	}
}

func TestResultRoundTrip(t *testing.T) {
	c := New(0)
	key := core.ComputeResultKey("evals.sum", nil, core.OrderDescending)
	if _, ok := c.GetResult(key); ok {
		t.Fatal("cold cache reported a hit")
	}
	c.PutResult(key, "value")
	if v, ok := c.GetResult(key); !ok || v != "value" {
		t.Fatalf("GetResult = %v ok=%v", v, ok)
	}
}

func TestMaxEntriesSkipsInsertion(t *testing.T) {
	c := New(1)
	k1 := core.ComputeResultKey("a", nil, core.OrderAny)
	k2 := core.ComputeResultKey("b", nil, core.OrderAny)
	c.PutResult(k1, 1)
	c.PutResult(k2, 2)
	if _, ok := c.GetResult(k1); !ok {
		t.Error("first entry should be stored")
	}
	if _, ok := c.GetResult(k2); ok {
		t.Error("full cache must skip insertion, not evict")
	}
}

func TestClearResetsEverything(t *testing.T) {
	c := New(0)
	key := core.ComputeResultKey("x", nil, core.OrderAny)
	c.PutResult(key, 1)
	c.GetResult(key)
	c.Clear()
	stats := c.Stats()
	if stats.Entries != 0 || stats.Hits != 0 || stats.Misses != 0 {
		t.Errorf("stats after Clear = %+v, want all zero", stats)
	}
	if _, ok := c.GetResult(key); ok {
		t.Error("entry survived Clear")
	}
}

func TestDoResultComputesOnce(t *testing.T) {
	c := New(0)
	key := core.ComputeResultKey("once", nil, core.OrderAny)

	var mu sync.Mutex
	calls := 0
	compute := func() (any, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return 42, nil
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.DoResult(key, compute)
			if err != nil || v != 42 {
				t.Errorf("DoResult = %v, %v", v, err)
			}
		}()
	}
	wg.Wait()

	// Once the value is stored, later calls never recompute.
	if _, err := c.DoResult(key, compute); err != nil {
		t.Fatalf("DoResult: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if calls < 1 {
		t.Fatal("compute never ran")
	}
	v, ok := c.GetResult(key)
	if !ok || v != 42 {
		t.Fatalf("stored value = %v ok=%v", v, ok)
	}
}

func TestDoResultDoesNotCacheErrors(t *testing.T) {
	c := New(0)
	key := core.ComputeResultKey("err", nil, core.OrderAny)
	boom := errors.New("boom")
	if _, err := c.DoResult(key, func() (any, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	v, err := c.DoResult(key, func() (any, error) { return 7, nil })
	if err != nil || v != 7 {
		t.Fatalf("retry = %v, %v, want 7", v, err)
	}
}
