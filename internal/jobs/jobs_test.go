package jobs

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunnerExecutesTasks(t *testing.T) {
	r := NewRunner(context.Background())

	var count atomic.Int32
	for i := 0; i < 5; i++ {
		r.Submit(func(ctx context.Context) {
			count.Add(1)
		})
	}
	r.Wait()

	if got := count.Load(); got != 5 {
		t.Errorf("executed %d tasks, want 5", got)
	}
}

func TestRunnerSurvivesPanics(t *testing.T) {
	r := NewRunner(context.Background())

	var ran atomic.Bool
	r.Submit(func(ctx context.Context) {
		panic("task exploded")
	})
	r.Submit(func(ctx context.Context) {
		ran.Store(true)
	})
	r.Wait()

	if !ran.Load() {
		t.Error("panic in one task blocked another")
	}
}

func TestRunnerBaseContext(t *testing.T) {
	base, cancel := context.WithCancel(context.Background())
	r := NewRunner(base)

	done := make(chan struct{})
	r.Submit(func(ctx context.Context) {
		<-ctx.Done()
		close(done)
	})

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task context not tied to the base context")
	}
	r.Wait()
}

func TestInlineRunsImmediately(t *testing.T) {
	var ran bool
	Inline{}.Submit(func(ctx context.Context) {
		ran = true
	})
	if !ran {
		t.Error("inline task did not run before Submit returned")
	}
}
