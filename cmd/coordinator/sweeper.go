package main

import (
	"context"

	"github.com/sirupsen/logrus"

	"synnergy-storage-network/core"
)

// availabilitySweeper re-evaluates each host's registry status from its
// currently stored availability_score. Dispatching the actual PRF-selected
// spot-check fetches to hosts is a remote HTTP call and lives outside the
// settlement path entirely; this sweep only reconciles state that fetch
// already wrote back via Host.AvailabilityScore.
type availabilitySweeper struct {
	hosts  core.HostStore
	logger *logrus.Entry
}

func (s *availabilitySweeper) Sweep(ctx context.Context) error {
	all, err := s.hosts.ListHosts(ctx)
	if err != nil {
		return err
	}
	for _, h := range all {
		next := core.NextHostStatus(h.Status, h.AvailabilityScore)
		if h.AvailabilityScore == 0 {
			h.ConsecutiveZero++
		} else {
			h.ConsecutiveZero = 0
		}
		if next == h.Status {
			continue
		}
		h.Status = next
		if err := s.hosts.PutHost(ctx, h); err != nil {
			s.logger.WithError(err).WithField("host", h.Pubkey).Warn("sweeper: persist host status")
			continue
		}
		s.logger.WithFields(logrus.Fields{"host": h.Pubkey, "status": next}).Info("sweeper: host status transition")
	}
	return nil
}
