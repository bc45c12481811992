package parallel

import (
	"runtime"
	"sync/atomic"
	"testing"
)

func TestWorkerPool_Create(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	if pool.Workers() != 4 {
		t.Errorf("Workers() = %d, want 4", pool.Workers())
	}
	if !pool.IsRunning() {
		t.Error("pool should be running after creation")
	}
}

func TestWorkerPool_CreateZeroWorkers(t *testing.T) {
	pool := NewWorkerPool(0)
	defer pool.Close()

	expected := runtime.GOMAXPROCS(0)
	if pool.Workers() != expected {
		t.Errorf("Workers() = %d, want %d (GOMAXPROCS)", pool.Workers(), expected)
	}
}

func TestWorkerPool_ExecuteAll(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	var counter atomic.Int64
	tasks := make([]func(), 100)
	for i := range tasks {
		tasks[i] = func() { counter.Add(1) }
	}

	pool.ExecuteAll(tasks)

	if got := counter.Load(); got != 100 {
		t.Errorf("completed tasks = %d, want 100", got)
	}
}

func TestWorkerPool_ExecuteAllJoinsBeforeReturn(t *testing.T) {
	pool := NewWorkerPool(3)
	defer pool.Close()

	// Every task writes its own slot; if ExecuteAll returned before the
	// last task finished, some slot would still be zero.
	results := make([]int64, 64)
	tasks := make([]func(), len(results))
	for i := range tasks {
		i := i
		tasks[i] = func() {
			atomic.StoreInt64(&results[i], int64(i)+1)
		}
	}

	pool.ExecuteAll(tasks)

	for i, v := range results {
		if v != int64(i)+1 {
			t.Fatalf("slot %d = %d, want %d", i, v, i+1)
		}
	}
}

func TestWorkerPool_ExecuteAllEmpty(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Close()

	pool.ExecuteAll(nil) // must not hang or panic
}

func TestWorkerPool_ExecuteAllUnevenCost(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	// A few heavy tasks mixed with many light ones; stealing should let
	// all of them finish without the join deadlocking.
	var counter atomic.Int64
	tasks := make([]func(), 40)
	for i := range tasks {
		heavy := i%10 == 0
		tasks[i] = func() {
			n := 10
			if heavy {
				n = 10000
			}
			s := 0
			for j := 0; j < n; j++ {
				s += j
			}
			_ = s
			counter.Add(1)
		}
	}

	pool.ExecuteAll(tasks)

	if got := counter.Load(); got != 40 {
		t.Errorf("completed tasks = %d, want 40", got)
	}
}

func TestWorkerPool_Close(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Close()

	if pool.IsRunning() {
		t.Error("pool still running after Close")
	}

	// ExecuteAll on a closed pool is a no-op and must not block.
	var counter atomic.Int64
	pool.ExecuteAll([]func(){func() { counter.Add(1) }})
	if got := counter.Load(); got != 0 {
		t.Errorf("closed pool ran %d tasks, want 0", got)
	}

	pool.Close() // second close is safe
}
