package guard

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestMemory_RejectsWhileHeld(t *testing.T) {
	g := NewMemory()
	ctx := context.Background()

	release, err := g.Acquire(ctx, "contract:submit:1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.Acquire(ctx, "contract:submit:1"); !errors.Is(err, ErrInFlight) {
		t.Fatalf("expected ErrInFlight, got %v", err)
	}
	if _, err := g.Acquire(ctx, "contract:submit:2"); err != nil {
		t.Fatalf("other keys must not be blocked: %v", err)
	}

	release()
	release()
	again, err := g.Acquire(ctx, "contract:submit:1")
	if err != nil {
		t.Fatalf("expected key to be free after release: %v", err)
	}
	again()
}

func TestMemory_OneWinnerUnderContention(t *testing.T) {
	g := NewMemory()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
	)
	start := make(chan struct{})
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, err := g.Acquire(context.Background(), "k"); err == nil {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	close(start)
	wg.Wait()
	if winners != 1 {
		t.Fatalf("expected exactly one winner, got %d", winners)
	}
}
