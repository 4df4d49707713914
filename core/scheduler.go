package core

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// genesisTime is the protocol genesis timestamp used by epoch arithmetic.
// It is process-wide mutable state: it must be initialised at startup and
// reset explicitly in tests, never implicitly by import.
var genesisTime = struct {
	mu sync.RWMutex
	t  time.Time
}{t: time.Unix(0, 0).UTC()}

// SetGenesisTime overrides the protocol genesis. Intended for test setup
// and process startup configuration only.
func SetGenesisTime(t time.Time) {
	genesisTime.mu.Lock()
	defer genesisTime.mu.Unlock()
	genesisTime.t = t.UTC()
}

// GenesisTimeValue returns the currently configured genesis timestamp.
func GenesisTimeValue() time.Time {
	genesisTime.mu.RLock()
	defer genesisTime.mu.RUnlock()
	return genesisTime.t
}

// CurrentEpoch returns floor((now - genesis) / EpochLength) for the given
// instant.
func CurrentEpoch(now time.Time) uint32 {
	d := now.Sub(GenesisTimeValue())
	if d < 0 {
		return 0
	}
	return uint32(d / EpochLength)
}

// AvailabilitySweeper runs a spot-check sweep across hosts. It is invoked
// by the scheduler after settlement and is decoupled from it: a sweep
// failure never aborts settlement.
type AvailabilitySweeper interface {
	Sweep(ctx context.Context) error
}

// EpochScheduler fires settlement once per epoch boundary. It is safe to
// tick repeatedly or restart the process: SettleEpoch is idempotent, so
// double-ticks and restarts never double-pay.
type EpochScheduler struct {
	deps     SettlementDeps
	sweeper  AvailabilitySweeper // optional
	interval time.Duration
	logger   *logrus.Entry

	mu                sync.Mutex
	lastSettledEpoch  uint32
	lastSettledIsSet  bool
	stop              chan struct{}
	stopped           chan struct{}
}

// NewEpochScheduler constructs a scheduler. interval defaults to 60s if <=0.
// At construction, last_settled_epoch is initialised to current_epoch-2, so
// the most recently closed epoch is processed on the very first tick.
func NewEpochScheduler(deps SettlementDeps, sweeper AvailabilitySweeper, interval time.Duration) *EpochScheduler {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	now := CurrentEpoch(time.Now())
	var initial uint32
	if now >= 2 {
		initial = now - 2
	}
	return &EpochScheduler{
		deps: deps, sweeper: sweeper, interval: interval,
		logger: deps.logger(), lastSettledEpoch: initial, lastSettledIsSet: now >= 2,
		stop: make(chan struct{}), stopped: make(chan struct{}),
	}
}

// LastSettledEpoch returns the last epoch this scheduler settled (or its
// initial value if it has not ticked yet).
func (s *EpochScheduler) LastSettledEpoch() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSettledEpoch
}

// Tick runs one scheduling decision: settle current_epoch()-1 if it has not
// already been settled, then run the optional availability sweep.
func (s *EpochScheduler) Tick(ctx context.Context) error {
	epochToSettle := CurrentEpoch(time.Now())
	if epochToSettle > 0 {
		epochToSettle--
	} else {
		return nil
	}

	s.mu.Lock()
	needsSettle := epochToSettle > s.lastSettledEpoch || !s.lastSettledIsSet
	s.mu.Unlock()

	if needsSettle {
		if _, err := SettleEpoch(ctx, epochToSettle, s.deps); err != nil {
			return err
		}
		s.mu.Lock()
		s.lastSettledEpoch = epochToSettle
		s.lastSettledIsSet = true
		s.mu.Unlock()
	}

	if s.sweeper != nil {
		if err := s.sweeper.Sweep(ctx); err != nil {
			s.logger.WithError(err).Warn("scheduler: availability sweep failed")
		}
	}
	return nil
}

// Run starts the periodic ticker loop; it blocks until Stop is called or
// ctx is cancelled.
func (s *EpochScheduler) Run(ctx context.Context) {
	defer close(s.stopped)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-ticker.C:
			if err := s.Tick(ctx); err != nil {
				s.logger.WithError(err).Error("scheduler: tick failed")
			}
		}
	}
}

// Stop signals Run to exit and waits for it to finish.
func (s *EpochScheduler) Stop() {
	close(s.stop)
	<-s.stopped
}
