package core

import (
	"context"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

// SettlementDeps bundles the replaceable collaborators SettleEpoch needs:
// the receipt, host, bounty and summary stores, plus the optional pin
// store, event log and logger. All fields are required except Pins, Log
// and Logger.
type SettlementDeps struct {
	Receipts ReceiptStore
	Hosts    HostStore
	Bounties BountyStore
	Pins     PinStore // optional; nil skips pin-contract draining
	Summaries EpochSummaryStore
	Log      EventLogStore // optional; nil skips event-log publication
	Logger   *logrus.Entry
}

func (d SettlementDeps) logger() *logrus.Entry {
	if d.Logger != nil {
		return d.Logger
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

// SettleEpoch is the idempotent top-level settlement pipeline. Calling it
// twice for the same epoch with unchanged inputs produces identical
// EpochSummary rows and debits nothing on the second call.
func SettleEpoch(ctx context.Context, epoch uint32, deps SettlementDeps) (*SettlementResult, error) {
	log := deps.logger().WithField("epoch", epoch)

	// Step 1: idempotency guard.
	already, err := deps.Summaries.HasAnySummary(ctx, epoch)
	if err != nil {
		return nil, err
	}
	if already {
		log.Debug("settlement: epoch already settled, no-op")
		return &SettlementResult{Epoch: epoch}, nil
	}

	// Step 2: fetch receipts, project to digests.
	receipts, err := deps.Receipts.ReceiptsForEpoch(ctx, epoch)
	if err != nil {
		return nil, err
	}
	digests := make([]ReceiptDigest, 0, len(receipts))
	for _, r := range receipts {
		digests = append(digests, ReceiptDigest{
			Host: r.HostPubkey, CID: r.CID(), Client: r.ClientPubkey, PriceSats: uint64(r.PriceSats),
		})
	}

	// Step 3: aggregate.
	groups := AggregateReceipts(digests)

	// Step 4: classify and index eligible groups by CID.
	eligibleByCID := make(map[Hex32][]EpochGroup)
	summaries := make([]EpochSummary, 0, len(groups))
	now := time.Now().UTC()
	eligibleGroups := 0
	for _, g := range groups {
		if !g.Eligible() {
			summaries = append(summaries, EpochSummary{
				Epoch: epoch, Host: g.Host, CID: g.CID,
				ReceiptCount: g.ReceiptCount, UniqueClients: g.UniqueClients,
				Eligible: false, RewardSats: 0, CreatedAt: now,
			})
			continue
		}
		eligibleByCID[g.CID] = append(eligibleByCID[g.CID], g)
		eligibleGroups++
	}

	var totalPaid, totalFee uint64
	paidGroups := 0

	// Deterministic CID iteration order for reproducible logs/tests.
	cids := make([]Hex32, 0, len(eligibleByCID))
	for cid := range eligibleByCID {
		cids = append(cids, cid)
	}
	sort.Slice(cids, func(i, j int) bool { return cids[i] < cids[j] })

	for _, cid := range cids {
		group := eligibleByCID[cid]
		pool, found, err := deps.Bounties.GetBountyPool(ctx, cid)
		if err != nil {
			return nil, err
		}
		if !found || pool.BalanceSats == 0 {
			for _, g := range group {
				summaries = append(summaries, EpochSummary{
					Epoch: epoch, Host: g.Host, CID: g.CID,
					ReceiptCount: g.ReceiptCount, UniqueClients: g.UniqueClients,
					Eligible: true, RewardSats: 0, CreatedAt: now,
				})
			}
			continue
		}

		// Step 5: build host scores and compute rewards.
		hostInputs := make([]HostScoreInput, 0, len(group))
		for _, g := range group {
			uptime := 0.5
			if h, ok, err := deps.Hosts.GetHost(ctx, g.Host); err == nil && ok {
				uptime = h.AvailabilityScore
			}
			hostInputs = append(hostInputs, HostScoreInput{
				Host: g.Host, UniqueClients: g.UniqueClients, Uptime: uptime, Diversity: 1.0,
			})
		}
		cap := CIDEpochCap(pool.BalanceSats)
		splits, fee := DistributeRewards(cap, hostInputs)

		splitByHost := make(map[Hex32]uint64, len(splits))
		var groupTotal uint64
		for _, s := range splits {
			splitByHost[s.Host] = s.RewardSats
			groupTotal += s.RewardSats
		}

		for _, g := range group {
			reward := splitByHost[g.Host]
			if reward > 0 {
				paidGroups++
			}
			summaries = append(summaries, EpochSummary{
				Epoch: epoch, Host: g.Host, CID: g.CID,
				ReceiptCount: g.ReceiptCount, UniqueClients: g.UniqueClients,
				Eligible: true, RewardSats: reward, CreatedAt: now,
			})
		}
		totalPaid += groupTotal
		totalFee += fee

		// Step 6: drain the pool and any active pin contracts for this CID.
		totalDrain := groupTotal + fee
		actualDrain := totalDrain
		if actualDrain > pool.BalanceSats {
			actualDrain = pool.BalanceSats
		}
		pool.BalanceSats -= actualDrain
		pool.LastPayoutEpoch = epoch
		if err := deps.Bounties.PutBountyPool(ctx, pool); err != nil {
			return nil, err
		}
		if deps.Pins != nil {
			if err := drainPinContracts(ctx, deps.Pins, cid, actualDrain, epoch); err != nil {
				return nil, err
			}
		}
	}

	// Step 7: persist the full batch (eligible and ineligible alike).
	if err := deps.Summaries.PutSummaries(ctx, summaries); err != nil {
		return nil, err
	}

	// Step 8: log one aggregate event.
	if deps.Log != nil {
		if err := publishEpochSummaryEvent(ctx, deps.Log, epoch, len(groups), eligibleGroups, paidGroups, totalPaid, totalFee); err != nil {
			log.WithError(err).Warn("settlement: failed to publish epoch summary event")
		}
	}

	log.WithFields(logrus.Fields{
		"total_groups": len(groups), "eligible_groups": eligibleGroups,
		"paid_groups": paidGroups, "total_paid_sats": totalPaid,
	}).Info("settlement: epoch settled")

	return &SettlementResult{
		Epoch: epoch, TotalGroups: len(groups), EligibleGroups: eligibleGroups,
		PaidGroups: paidGroups, TotalPaidSats: totalPaid, TotalAggregatorFeeSats: totalFee,
		Summaries: summaries,
	}, nil
}

// drainPinContracts decrements every active pin contract for assetRoot by
// amountSats, transitioning exhausted contracts. A pin contract's
// remaining budget is independent of the bounty pool; it is drained
// alongside settlement because both are funded by the same CID's economic
// activity.
func drainPinContracts(ctx context.Context, pins PinStore, assetRoot Hex32, amountSats uint64, epoch uint32) error {
	active, err := pins.ActivePinsForAsset(ctx, assetRoot)
	if err != nil {
		return err
	}
	for _, p := range active {
		if p.Status != PinActive {
			continue
		}
		drain := amountSats
		if drain > p.RemainingSats {
			drain = p.RemainingSats
		}
		p.RemainingSats -= drain
		if p.RemainingSats == 0 {
			p.Status = PinExhausted
		}
		if err := pins.PutPinContract(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// epochSummaryEventBody is the canonical-encodable payload for the
// EPOCH_SUMMARY_EVENT logged by settlement once per epoch.
type epochSummaryEventBody struct {
	Epoch          uint32 `cbor:"epoch"`
	TotalGroups    int    `cbor:"total_groups"`
	EligibleGroups int    `cbor:"eligible_groups"`
	PaidGroups     int    `cbor:"paid_groups"`
	TotalPaidSats  uint64 `cbor:"total_paid_sats"`
	TotalFeeSats   uint64 `cbor:"total_fee_sats"`
}

func publishEpochSummaryEvent(ctx context.Context, log EventLogStore, epoch uint32, totalGroups, eligibleGroups, paidGroups int, totalPaid, totalFee uint64) error {
	bodyHex, err := EncodeEventBody(epochSummaryEventBody{
		Epoch: epoch, TotalGroups: totalGroups, EligibleGroups: eligibleGroups,
		PaidGroups: paidGroups, TotalPaidSats: totalPaid, TotalFeeSats: totalFee,
	})
	if err != nil {
		return err
	}
	e := NewUnsignedEvent(EventKindAttest, ZeroHash, ZeroHash, bodyHex, 0, 0)
	// The settlement engine publishes this as an unsigned system record;
	// coordinators that require every log entry to be signed should wrap
	// EventLogStore with one that signs using the coordinator's own key
	// before appending.
	_, err = log.Append(ctx, e)
	return err
}
