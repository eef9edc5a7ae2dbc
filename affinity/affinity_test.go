package affinity

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestInline(t *testing.T) {
	ran := false
	Inline{}.RunOnOwner(func() { ran = true })
	if !ran {
		t.Error("Inline did not run action")
	}
	if !(Inline{}).OnOwner() {
		t.Error("Inline.OnOwner() = false")
	}
}

func TestLoopDefersUntilDrain(t *testing.T) {
	l := NewLoop()
	var order []int

	l.RunOnOwner(func() { order = append(order, 1) })
	l.RunOnOwner(func() { order = append(order, 2) })
	l.RunOnOwner(nil)

	if len(order) != 0 {
		t.Fatal("actions ran before Drain")
	}
	if l.Pending() != 2 {
		t.Errorf("Pending() = %d, want 2", l.Pending())
	}

	if n := l.Drain(); n != 2 {
		t.Errorf("Drain() = %d, want 2", n)
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("order = %v, want [1 2]", order)
	}
	if l.Drain() != 0 {
		t.Error("second Drain should be empty")
	}
}

func TestLoopNestedPostRunsInSameDrain(t *testing.T) {
	l := NewLoop()
	nested := false
	l.RunOnOwner(func() {
		l.RunOnOwner(func() { nested = true })
	})
	if n := l.Drain(); n != 2 {
		t.Errorf("Drain() = %d, want 2", n)
	}
	if !nested {
		t.Error("action posted during Drain did not run")
	}
}

func TestLoopClose(t *testing.T) {
	l := NewLoop()
	var count atomic.Int32
	l.RunOnOwner(func() { count.Add(1) })
	l.Close()
	if count.Load() != 1 {
		t.Errorf("Close did not drain queue, count = %d", count.Load())
	}
	l.RunOnOwner(func() { count.Add(1) })
	if count.Load() != 2 {
		t.Error("RunOnOwner after Close should run inline")
	}
	l.Close()
}

func TestLoopConcurrentPost(t *testing.T) {
	l := NewLoop()
	var count atomic.Int32
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				l.RunOnOwner(func() { count.Add(1) })
			}
		}()
	}
	wg.Wait()
	l.Drain()
	if count.Load() != 800 {
		t.Errorf("count = %d, want 800", count.Load())
	}
}

func TestRun(t *testing.T) {
	l := NewLoop()
	ran := 0

	Run(nil, false, func() { ran++ })
	Run(l, true, func() { ran++ })
	if ran != 2 {
		t.Fatalf("inline paths ran %d, want 2", ran)
	}

	Run(l, false, func() { ran++ })
	if ran != 2 || l.Pending() != 1 {
		t.Fatal("off-owner Run should be queued")
	}
	l.Drain()
	if ran != 3 {
		t.Error("queued Run did not execute")
	}
}

func TestLoopOnOwner(t *testing.T) {
	l := NewLoop()
	if l.OnOwner() {
		t.Fatal("OnOwner() = true before any Drain")
	}
	l.Drain()
	if !l.OnOwner() {
		t.Error("OnOwner() = false on the draining goroutine")
	}

	other := make(chan bool)
	go func() { other <- l.OnOwner() }()
	if <-other {
		t.Error("OnOwner() = true on another goroutine")
	}

	ran := false
	Run(l, false, func() { ran = true })
	if !ran || l.Pending() != 0 {
		t.Error("Run on the owner should execute inline")
	}

	done := make(chan struct{})
	go func() {
		Run(l, false, func() { ran = false })
		close(done)
	}()
	<-done
	if !ran || l.Pending() != 1 {
		t.Error("Run off the owner should be queued")
	}
	l.Drain()
	if ran {
		t.Error("queued Run did not execute")
	}
}

func TestGoroutineID(t *testing.T) {
	id := goroutineID()
	if id == 0 {
		t.Fatal("goroutineID() = 0")
	}
	if goroutineID() != id {
		t.Error("goroutineID() not stable on one goroutine")
	}
	other := make(chan uint64)
	go func() { other <- goroutineID() }()
	if <-other == id {
		t.Error("two goroutines share an id")
	}
}
