package execpool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDoRunsFunction(t *testing.T) {
	p := New(2)
	got, err := p.Do(context.Background(), func() ([]byte, error) {
		return []byte("ok"), nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if string(got) != "ok" {
		t.Fatalf("Do result = %q, want %q", got, "ok")
	}
}

func TestDoPropagatesError(t *testing.T) {
	p := New(1)
	sentinel := errors.New("collect failed")
	if _, err := p.Do(context.Background(), func() ([]byte, error) {
		return nil, sentinel
	}); !errors.Is(err, sentinel) {
		t.Fatalf("Do = %v, want %v", err, sentinel)
	}
}

// A submission against a saturated pool must neither error nor drop: it waits
// for a slot and then runs.
func TestDoBlocksWhenSaturated(t *testing.T) {
	const size = 4
	p := New(size)

	release := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < size; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Do(context.Background(), func() ([]byte, error) {
				<-release
				return nil, nil
			})
		}()
	}

	// Wait until every slot is held.
	deadline := time.Now().Add(2 * time.Second)
	for len(p.slots) < size {
		if time.Now().After(deadline) {
			t.Fatal("pool never saturated")
		}
		time.Sleep(time.Millisecond)
	}

	var ran atomic.Bool
	done := make(chan error, 1)
	go func() {
		_, err := p.Do(context.Background(), func() ([]byte, error) {
			ran.Store(true)
			return nil, nil
		})
		done <- err
	}()

	select {
	case <-done:
		t.Fatal("submission completed while pool was saturated")
	case <-time.After(50 * time.Millisecond):
	}
	if ran.Load() {
		t.Fatal("fn ran while pool was saturated")
	}

	close(release)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Do after slot freed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("submission never proceeded after slots freed")
	}
	if !ran.Load() {
		t.Fatal("fn never ran")
	}
	wg.Wait()
}

func TestDoContextCancelsSlotWait(t *testing.T) {
	p := New(1)
	release := make(chan struct{})
	defer close(release)
	go p.Do(context.Background(), func() ([]byte, error) {
		<-release
		return nil, nil
	})

	deadline := time.Now().Add(2 * time.Second)
	for len(p.slots) < 1 {
		if time.Now().After(deadline) {
			t.Fatal("pool never saturated")
		}
		time.Sleep(time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := p.Do(ctx, func() ([]byte, error) {
		return nil, nil
	}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Do with expired ctx = %v, want DeadlineExceeded", err)
	}
}
