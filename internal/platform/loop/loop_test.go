package loop_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"yuki/internal/platform/loop"
)

func TestPostRunsInOrderOnRunner(t *testing.T) {
	t.Parallel()
	lp := loop.New()
	var got []int
	for i := 0; i < 3; i++ {
		i := i
		lp.Post(func() { got = append(got, i) })
	}
	if n := lp.RunPending(); n != 3 {
		t.Fatalf("expected 3 functions, ran %d", n)
	}
	if len(got) != 3 || got[0] != 0 || got[2] != 2 {
		t.Fatalf("unexpected order %v", got)
	}
}

func TestPostFromRunningFunctionWaitsForNextBatch(t *testing.T) {
	t.Parallel()
	lp := loop.New()
	ran := false
	lp.Post(func() { lp.Post(func() { ran = true }) })
	lp.RunPending()
	if ran {
		t.Fatalf("nested post must not run in the same batch")
	}
	lp.RunPending()
	if !ran {
		t.Fatalf("nested post should run in the next batch")
	}
}

func TestRunAndDoFromOtherGoroutines(t *testing.T) {
	t.Parallel()
	lp := loop.New()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go func() { _ = lp.Run(ctx) }()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = lp.Do(ctx, func() error { counter++; return nil })
		}()
	}
	wg.Wait()
	want := errors.New("boom")
	if err := lp.Do(ctx, func() error { return want }); !errors.Is(err, want) {
		t.Fatalf("expected fn error, got %v", err)
	}
	var final int
	_ = lp.Do(ctx, func() error { final = counter; return nil })
	if final != 20 {
		t.Fatalf("expected 20 serialized increments, got %d", final)
	}
}

func TestStopRejectsPosts(t *testing.T) {
	t.Parallel()
	lp := loop.New()
	lp.Post(func() { t.Errorf("dropped function ran") })
	lp.Stop()
	if lp.Post(func() {}) {
		t.Fatalf("post after stop should fail")
	}
	if lp.RunPending() != 0 {
		t.Fatalf("queued functions should be dropped on stop")
	}
	if err := lp.Do(context.Background(), func() error { return nil }); !errors.Is(err, loop.ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
}

func TestCancelledRunDrainsQueueAndStops(t *testing.T) {
	t.Parallel()
	lp := loop.New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ran := false
	lp.Post(func() { ran = true })
	if err := lp.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if !ran {
		t.Fatalf("queued function should run before Run returns")
	}
	if lp.Post(func() {}) {
		t.Fatalf("post after a cancelled run should fail")
	}
}
