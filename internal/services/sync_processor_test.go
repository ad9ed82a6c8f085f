package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type countingSweeper struct {
	calls atomic.Int32
	err   error
}

func (s *countingSweeper) ProcessPendingRecipes(context.Context) (int, error) {
	s.calls.Add(1)
	return 1, s.err
}

func TestDefaultSyncProcessorConfig(t *testing.T) {
	if got := DefaultSyncProcessorConfig().PollInterval; got != 30*time.Second {
		t.Errorf("expected PollInterval 30s, got %v", got)
	}
	p := NewSyncProcessor(&countingSweeper{}, SyncProcessorConfig{})
	if p.config.PollInterval != 30*time.Second {
		t.Errorf("zero interval not defaulted: %v", p.config.PollInterval)
	}
}

func TestSyncProcessor_SweepsUntilStopped(t *testing.T) {
	sweeper := &countingSweeper{err: errors.New("sheets down")}
	p := NewSyncProcessor(sweeper, SyncProcessorConfig{PollInterval: 5 * time.Millisecond})

	if p.IsRunning() {
		t.Fatal("processor should not be running initially")
	}
	ctx := context.Background()
	if err := p.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := p.Start(ctx); err == nil {
		t.Fatal("expected error when starting already running processor")
	}

	deadline := time.Now().Add(2 * time.Second)
	for sweeper.calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if sweeper.calls.Load() < 2 {
		t.Fatalf("expected repeated sweeps despite errors, got %d", sweeper.calls.Load())
	}

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := p.Stop(stopCtx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if p.IsRunning() {
		t.Fatal("processor still running after Stop")
	}
}

func TestSyncProcessor_StopNotRunning(t *testing.T) {
	p := NewSyncProcessor(&countingSweeper{}, DefaultSyncProcessorConfig())
	if err := p.Stop(context.Background()); err != nil {
		t.Errorf("Stop on idle processor: %v", err)
	}
}
