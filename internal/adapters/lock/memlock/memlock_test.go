package memlock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"child-immunization-history/internal/ports/lock"
)

func TestAcquire_SerializesSameKey(t *testing.T) {
	l := New()

	var (
		mu      sync.Mutex
		inside  int
		maxSeen int
		wg      sync.WaitGroup
	)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Acquire(context.Background(), "child-1")
			if err != nil {
				t.Errorf("acquire: %v", err)
				return
			}
			defer release()

			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Fatalf("expected at most 1 holder, saw %d", maxSeen)
	}
	if len(l.slots) != 0 {
		t.Fatalf("expected slots cleaned up, got %d", len(l.slots))
	}
}

func TestAcquire_DifferentKeysDoNotBlock(t *testing.T) {
	l := New()

	r1, err := l.Acquire(context.Background(), "a")
	if err != nil {
		t.Fatalf("acquire a: %v", err)
	}
	defer r1()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	r2, err := l.Acquire(ctx, "b")
	if err != nil {
		t.Fatalf("acquire b: %v", err)
	}
	r2()
}

func TestAcquire_RespectsContext(t *testing.T) {
	l := New()

	release, err := l.Acquire(context.Background(), "k")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := l.Acquire(ctx, "k"); !errors.Is(err, lock.ErrNotAcquired) {
		t.Fatalf("expected ErrNotAcquired, got %v", err)
	}

	release()
	release() // idempotente

	again, err := l.Acquire(context.Background(), "k")
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	again()
}
