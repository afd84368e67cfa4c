package cooldown

import (
	"sync"
	"testing"
	"time"
)

func TestGate_TryAcquire(t *testing.T) {
	g := NewGate(30*time.Second, 5*time.Second)
	now := time.Unix(1000, 0)

	if !g.TryAcquire(KindSelection, 1, now) {
		t.Fatal("expected first acquire to succeed")
	}
	if g.TryAcquire(KindSelection, 1, now.Add(2*time.Second)) {
		t.Error("expected acquire within window to fail")
	}
	if !g.TryAcquire(KindSelection, 1, now.Add(5*time.Second)) {
		t.Error("expected acquire after window to succeed")
	}
}

func TestGate_Remaining(t *testing.T) {
	g := NewGate(30*time.Second, 5*time.Second)
	now := time.Unix(1000, 0)

	if rem := g.Remaining(KindSelection, 1, now); rem != 0 {
		t.Errorf("expected zero remaining before any acquire, got %s", rem)
	}

	g.TryAcquire(KindSelection, 1, now)

	rem := g.Remaining(KindSelection, 1, now.Add(2*time.Second))
	if rem != 3*time.Second {
		t.Errorf("expected 3s remaining, got %s", rem)
	}
	if rem <= 0 || rem >= 5*time.Second {
		t.Errorf("remaining must be positive and strictly less than the window, got %s", rem)
	}
}

func TestGate_FailureDoesNotMutate(t *testing.T) {
	g := NewGate(30*time.Second, 5*time.Second)
	now := time.Unix(1000, 0)

	g.TryAcquire(KindSelection, 1, now)
	g.TryAcquire(KindSelection, 1, now.Add(time.Second))

	// The failed attempt must not have pushed the deadline out.
	if !g.TryAcquire(KindSelection, 1, now.Add(5*time.Second)) {
		t.Error("failed acquire extended the deadline")
	}
}

func TestGate_KindsAreIndependent(t *testing.T) {
	g := NewGate(30*time.Second, 5*time.Second)
	now := time.Unix(1000, 0)

	if !g.TryAcquire(KindCommand, 1, now) {
		t.Fatal("expected command acquire to succeed")
	}
	if !g.TryAcquire(KindSelection, 1, now) {
		t.Error("command cooldown must not gate selection")
	}
}

func TestGate_PlayersAreIndependent(t *testing.T) {
	g := NewGate(30*time.Second, 5*time.Second)
	now := time.Unix(1000, 0)

	g.TryAcquire(KindSelection, 1, now)
	if !g.TryAcquire(KindSelection, 2, now) {
		t.Error("one player's cooldown must not gate another")
	}
}

func TestGate_Clear(t *testing.T) {
	g := NewGate(30*time.Second, 5*time.Second)
	now := time.Unix(1000, 0)

	g.TryAcquire(KindSelection, 1, now)
	g.Clear(1)

	if !g.TryAcquire(KindSelection, 1, now) {
		t.Error("expected acquire to succeed after Clear")
	}
}

func TestGate_ConcurrentSingleWinner(t *testing.T) {
	g := NewGate(30*time.Second, 5*time.Second)
	now := time.Unix(1000, 0)

	var wg sync.WaitGroup
	wins := make(chan struct{}, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.TryAcquire(KindSelection, 1, now) {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	count := 0
	for range wins {
		count++
	}
	if count != 1 {
		t.Errorf("expected exactly one winner, got %d", count)
	}
}
