package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stayhub/stayhub-backend/pkg/apperrors"
)

func TestAcquireAndRelease(t *testing.T) {
	locks := newPropertyLocks()
	ctx := context.Background()

	release, err := locks.Acquire(ctx, 1, time.Second)
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	release()

	// Released, so the slot is free again.
	release, err = locks.Acquire(ctx, 1, time.Second)
	if err != nil {
		t.Fatalf("reacquire after release: %v", err)
	}
	release()
}

func TestAcquireDifferentPropertiesDoNotBlock(t *testing.T) {
	locks := newPropertyLocks()
	ctx := context.Background()

	release1, err := locks.Acquire(ctx, 1, time.Second)
	if err != nil {
		t.Fatalf("acquire property 1: %v", err)
	}
	defer release1()

	// Property 2 must not queue behind property 1.
	release2, err := locks.Acquire(ctx, 2, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("acquire property 2 while 1 held: %v", err)
	}
	release2()
}

func TestAcquireBoundedWait(t *testing.T) {
	locks := newPropertyLocks()
	ctx := context.Background()

	release, err := locks.Acquire(ctx, 1, time.Second)
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	defer release()

	start := time.Now()
	_, err = locks.Acquire(ctx, 1, 30*time.Millisecond)
	if !apperrors.Is(err, apperrors.CodeContention) {
		t.Fatalf("got %v, want contention", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("waited %s, bound was 30ms", elapsed)
	}
}

func TestAcquireReleasedWhileWaiting(t *testing.T) {
	locks := newPropertyLocks()
	ctx := context.Background()

	release, err := locks.Acquire(ctx, 1, time.Second)
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		r, err := locks.Acquire(ctx, 1, 2*time.Second)
		if err == nil {
			r()
		}
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	release()

	if err := <-done; err != nil {
		t.Errorf("waiter should enter after release, got %v", err)
	}
}

func TestAcquireContextCancelled(t *testing.T) {
	locks := newPropertyLocks()

	release, err := locks.Acquire(context.Background(), 1, time.Second)
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = locks.Acquire(ctx, 1, time.Minute)
	if !apperrors.Is(err, apperrors.CodeContention) {
		t.Errorf("got %v, want contention", err)
	}
}
