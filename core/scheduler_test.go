package core

import (
	"context"
	"testing"
	"time"
)

func TestCurrentEpoch(t *testing.T) {
	genesis := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	SetGenesisTime(genesis)
	defer SetGenesisTime(time.Unix(0, 0).UTC())

	if got := CurrentEpoch(genesis); got != 0 {
		t.Fatalf("expected epoch 0 at genesis, got %d", got)
	}
	if got := CurrentEpoch(genesis.Add(EpochLength - time.Second)); got != 0 {
		t.Fatalf("expected epoch 0 just before boundary, got %d", got)
	}
	if got := CurrentEpoch(genesis.Add(EpochLength)); got != 1 {
		t.Fatalf("expected epoch 1 right at boundary, got %d", got)
	}
	if got := CurrentEpoch(genesis.Add(-time.Hour)); got != 0 {
		t.Fatalf("expected epoch 0 before genesis, got %d", got)
	}
}

type countingSweeper struct{ calls int }

func (s *countingSweeper) Sweep(_ context.Context) error { s.calls++; return nil }

func TestEpochSchedulerTickSettlesAndSweeps(t *testing.T) {
	genesis := time.Now().Add(-3 * EpochLength)
	SetGenesisTime(genesis)
	defer SetGenesisTime(time.Unix(0, 0).UTC())

	deps := SettlementDeps{
		Receipts: newMemReceiptStore(), Hosts: newMemHostStore(),
		Bounties: newMemBountyStore(), Summaries: newMemSummaryStore(),
	}
	sweeper := &countingSweeper{}
	sched := NewEpochScheduler(deps, sweeper, time.Second)

	if err := sched.Tick(context.Background()); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if sweeper.calls != 1 {
		t.Fatalf("expected sweeper invoked once, got %d", sweeper.calls)
	}
	wantSettled := CurrentEpoch(time.Now()) - 1
	if sched.LastSettledEpoch() != wantSettled {
		t.Fatalf("got last settled %d want %d", sched.LastSettledEpoch(), wantSettled)
	}

	// A second tick in the same epoch window must not re-settle.
	if err := sched.Tick(context.Background()); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if sweeper.calls != 2 {
		t.Fatalf("expected sweeper invoked again regardless of settlement, got %d", sweeper.calls)
	}
}

func TestNewEpochSchedulerInitialLastSettled(t *testing.T) {
	genesis := time.Now().Add(-10 * EpochLength)
	SetGenesisTime(genesis)
	defer SetGenesisTime(time.Unix(0, 0).UTC())

	deps := SettlementDeps{
		Receipts: newMemReceiptStore(), Hosts: newMemHostStore(),
		Bounties: newMemBountyStore(), Summaries: newMemSummaryStore(),
	}
	sched := NewEpochScheduler(deps, nil, time.Second)
	wantInitial := CurrentEpoch(time.Now()) - 2
	if sched.LastSettledEpoch() != wantInitial {
		t.Fatalf("got %d want %d", sched.LastSettledEpoch(), wantInitial)
	}
}

func TestEpochSchedulerSweepFailureDoesNotAbortTick(t *testing.T) {
	genesis := time.Now().Add(-3 * EpochLength)
	SetGenesisTime(genesis)
	defer SetGenesisTime(time.Unix(0, 0).UTC())

	deps := SettlementDeps{
		Receipts: newMemReceiptStore(), Hosts: newMemHostStore(),
		Bounties: newMemBountyStore(), Summaries: newMemSummaryStore(),
	}
	sched := NewEpochScheduler(deps, failingSweeper{}, time.Second)
	if err := sched.Tick(context.Background()); err != nil {
		t.Fatalf("expected tick to succeed despite sweep failure, got %v", err)
	}
}

type failingSweeper struct{}

func (failingSweeper) Sweep(_ context.Context) error { return NewError(TagNotFound, "boom") }
