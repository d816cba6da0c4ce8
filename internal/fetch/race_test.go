package fetch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestRace_FirstSuccessWins(t *testing.T) {
	ops := []func(context.Context) (string, error){
		func(ctx context.Context) (string, error) {
			return "", errors.New("blocked")
		},
		func(ctx context.Context) (string, error) {
			time.Sleep(10 * time.Millisecond)
			return "winner", nil
		},
		func(ctx context.Context) (string, error) {
			return "", errors.New("timeout")
		},
	}

	got, err := Race(context.Background(), ops)
	if err != nil {
		t.Fatalf("Race() error = %v", err)
	}
	if got != "winner" {
		t.Errorf("Race() = %q, want %q", got, "winner")
	}
}

func TestRace_AllFail(t *testing.T) {
	wantErr := errors.New("last one standing")
	ops := []func(context.Context) (int, error){
		func(ctx context.Context) (int, error) { return 0, errors.New("nope") },
		func(ctx context.Context) (int, error) {
			time.Sleep(10 * time.Millisecond)
			return 0, wantErr
		},
	}

	_, err := Race(context.Background(), ops)
	if !errors.Is(err, wantErr) {
		t.Errorf("Race() error = %v, want %v", err, wantErr)
	}
}

func TestRace_LosersCancelled(t *testing.T) {
	var cancelled atomic.Bool
	ops := []func(context.Context) (string, error){
		func(ctx context.Context) (string, error) {
			return "fast", nil
		},
		func(ctx context.Context) (string, error) {
			select {
			case <-ctx.Done():
				cancelled.Store(true)
				return "", ctx.Err()
			case <-time.After(2 * time.Second):
				return "slow", nil
			}
		},
	}

	got, err := Race(context.Background(), ops)
	if err != nil || got != "fast" {
		t.Fatalf("Race() = %q, %v", got, err)
	}

	deadline := time.Now().Add(time.Second)
	for !cancelled.Load() {
		if time.Now().After(deadline) {
			t.Fatal("losing operation was never cancelled")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestRace_NoCandidates(t *testing.T) {
	_, err := Race[string](context.Background(), nil)
	if err == nil {
		t.Fatal("expected error for empty candidate list")
	}
}

func TestRace_ParentCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ops := []func(context.Context) (string, error){
		func(opCtx context.Context) (string, error) {
			<-opCtx.Done()
			return "", opCtx.Err()
		},
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := Race(ctx, ops)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Race() error = %v, want context.Canceled", err)
	}
}
