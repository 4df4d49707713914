package core

import (
	"context"
	"testing"
)

// The fakes below are minimal in-package stores for exercising SettleEpoch,
// following the same pattern as access_control_test.go's in-package Ledger
// fake rather than pulling in a mocking framework.

type memReceiptStore struct{ byEpoch map[uint32][]ReceiptV2 }

func newMemReceiptStore() *memReceiptStore { return &memReceiptStore{byEpoch: map[uint32][]ReceiptV2{}} }
func (s *memReceiptStore) PutReceipt(_ context.Context, r ReceiptV2) error {
	s.byEpoch[r.Epoch] = append(s.byEpoch[r.Epoch], r)
	return nil
}
func (s *memReceiptStore) ReceiptsForEpoch(_ context.Context, epoch uint32) ([]ReceiptV2, error) {
	return s.byEpoch[epoch], nil
}

type memHostStore struct{ hosts map[Hex32]Host }

func newMemHostStore() *memHostStore { return &memHostStore{hosts: map[Hex32]Host{}} }
func (s *memHostStore) GetHost(_ context.Context, pubkey Hex32) (Host, bool, error) {
	h, ok := s.hosts[pubkey]
	return h, ok, nil
}
func (s *memHostStore) PutHost(_ context.Context, h Host) error { s.hosts[h.Pubkey] = h; return nil }
func (s *memHostStore) ListHosts(_ context.Context) ([]Host, error) {
	out := make([]Host, 0, len(s.hosts))
	for _, h := range s.hosts {
		out = append(out, h)
	}
	return out, nil
}

type memBountyStore struct{ pools map[Hex32]BountyPool }

func newMemBountyStore() *memBountyStore { return &memBountyStore{pools: map[Hex32]BountyPool{}} }
func (s *memBountyStore) GetBountyPool(_ context.Context, cid Hex32) (BountyPool, bool, error) {
	p, ok := s.pools[cid]
	return p, ok, nil
}
func (s *memBountyStore) PutBountyPool(_ context.Context, p BountyPool) error {
	s.pools[p.CID] = p
	return nil
}

type memSummaryStore struct{ byEpoch map[uint32][]EpochSummary }

func newMemSummaryStore() *memSummaryStore { return &memSummaryStore{byEpoch: map[uint32][]EpochSummary{}} }
func (s *memSummaryStore) HasAnySummary(_ context.Context, epoch uint32) (bool, error) {
	return len(s.byEpoch[epoch]) > 0, nil
}
func (s *memSummaryStore) PutSummaries(_ context.Context, rows []EpochSummary) error {
	for _, r := range rows {
		s.byEpoch[r.Epoch] = append(s.byEpoch[r.Epoch], r)
	}
	return nil
}
func (s *memSummaryStore) GetSummary(_ context.Context, epoch uint32, host, cid Hex32) (EpochSummary, bool, error) {
	for _, r := range s.byEpoch[epoch] {
		if r.Host == host && r.CID == cid {
			return r, true, nil
		}
	}
	return EpochSummary{}, false, nil
}

func TestSettleEpochPaysEligibleHostAndDrainsPool(t *testing.T) {
	ctx := context.Background()
	receipts := newMemReceiptStore()
	hosts := newMemHostStore()
	bounties := newMemBountyStore()
	summaries := newMemSummaryStore()

	host := Hex32("host-1")
	cid := Hex32("cid-1")
	hosts.hosts[host] = Host{Pubkey: host, AvailabilityScore: 1.0}
	bounties.pools[cid] = BountyPool{CID: cid, BalanceSats: 2500}

	clients := []Hex32{"c1", "c2", "c3", "c1", "c2"}
	for _, c := range clients {
		receipts.byEpoch[1] = append(receipts.byEpoch[1], ReceiptV2{
			FileRoot: cid, HostPubkey: host, Epoch: 1, PriceSats: 1,
			ClientPubkey: c,
		})
	}

	deps := SettlementDeps{Receipts: receipts, Hosts: hosts, Bounties: bounties, Summaries: summaries}
	result, err := SettleEpoch(ctx, 1, deps)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if result.EligibleGroups != 1 || result.PaidGroups != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.TotalPaidSats != 48 {
		t.Fatalf("expected 48 sats paid (cap 50, single host, 3%% fee), got %d", result.TotalPaidSats)
	}

	pool := bounties.pools[cid]
	if pool.BalanceSats != 2500-50 {
		t.Fatalf("expected pool drained by the full cap (paid+fee), got balance %d", pool.BalanceSats)
	}
	if pool.LastPayoutEpoch != 1 {
		t.Fatalf("expected last_payout_epoch updated to 1, got %d", pool.LastPayoutEpoch)
	}
}

func TestSettleEpochTwoHostsSharingOneCIDBothCountAsEligibleGroups(t *testing.T) {
	ctx := context.Background()
	receipts := newMemReceiptStore()
	hosts := newMemHostStore()
	bounties := newMemBountyStore()
	summaries := newMemSummaryStore()

	cid := Hex32("cid-1")
	hostA, hostB := Hex32("host-a"), Hex32("host-b")
	hosts.hosts[hostA] = Host{Pubkey: hostA, AvailabilityScore: 1.0}
	hosts.hosts[hostB] = Host{Pubkey: hostB, AvailabilityScore: 1.0}
	bounties.pools[cid] = BountyPool{CID: cid, BalanceSats: 2500}

	// Two equal hosts each served the same CID to 3 unique clients, well
	// past the eligibility thresholds: they form two distinct (host, cid)
	// EpochGroups sharing one bounty pool.
	for _, host := range []Hex32{hostA, hostB} {
		for _, c := range []Hex32{"c1", "c2", "c3", "c1", "c2"} {
			receipts.byEpoch[1] = append(receipts.byEpoch[1], ReceiptV2{
				FileRoot: cid, HostPubkey: host, Epoch: 1, PriceSats: 1,
				ClientPubkey: c,
			})
		}
	}

	deps := SettlementDeps{Receipts: receipts, Hosts: hosts, Bounties: bounties, Summaries: summaries}
	result, err := SettleEpoch(ctx, 1, deps)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if result.TotalGroups != 2 {
		t.Fatalf("expected 2 total groups (one per host), got %d", result.TotalGroups)
	}
	if result.EligibleGroups != 2 {
		t.Fatalf("expected both per-host groups counted as eligible (cap 50 shared by 2 equal hosts), got %d", result.EligibleGroups)
	}
	if result.PaidGroups != 2 {
		t.Fatalf("expected both hosts to receive a nonzero share of the cap, got %d paid groups", result.PaidGroups)
	}
}

func TestSettleEpochIneligibleGroupGetsZeroReward(t *testing.T) {
	ctx := context.Background()
	receipts := newMemReceiptStore()
	hosts := newMemHostStore()
	bounties := newMemBountyStore()
	summaries := newMemSummaryStore()

	host, cid := Hex32("host-1"), Hex32("cid-1")
	bounties.pools[cid] = BountyPool{CID: cid, BalanceSats: 1000}
	// Only 2 receipts, 1 unique client: below both thresholds.
	receipts.byEpoch[2] = []ReceiptV2{
		{FileRoot: cid, HostPubkey: host, Epoch: 2, ClientPubkey: "c1"},
		{FileRoot: cid, HostPubkey: host, Epoch: 2, ClientPubkey: "c1"},
	}

	deps := SettlementDeps{Receipts: receipts, Hosts: hosts, Bounties: bounties, Summaries: summaries}
	result, err := SettleEpoch(ctx, 2, deps)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if result.EligibleGroups != 0 {
		t.Fatalf("expected 0 eligible groups, got %d", result.EligibleGroups)
	}
	if result.TotalPaidSats != 0 {
		t.Fatalf("expected nothing paid, got %d", result.TotalPaidSats)
	}
	pool := bounties.pools[cid]
	if pool.BalanceSats != 1000 {
		t.Fatalf("expected pool untouched for an ineligible group, got %d", pool.BalanceSats)
	}
}

func TestSettleEpochIsIdempotent(t *testing.T) {
	ctx := context.Background()
	receipts := newMemReceiptStore()
	hosts := newMemHostStore()
	bounties := newMemBountyStore()
	summaries := newMemSummaryStore()

	host, cid := Hex32("host-1"), Hex32("cid-1")
	bounties.pools[cid] = BountyPool{CID: cid, BalanceSats: 2500}
	for _, c := range []Hex32{"c1", "c2", "c3", "c1", "c2"} {
		receipts.byEpoch[3] = append(receipts.byEpoch[3], ReceiptV2{
			FileRoot: cid, HostPubkey: host, Epoch: 3, ClientPubkey: c,
		})
	}

	deps := SettlementDeps{Receipts: receipts, Hosts: hosts, Bounties: bounties, Summaries: summaries}
	first, err := SettleEpoch(ctx, 3, deps)
	if err != nil {
		t.Fatalf("first settle: %v", err)
	}
	balanceAfterFirst := bounties.pools[cid].BalanceSats

	second, err := SettleEpoch(ctx, 3, deps)
	if err != nil {
		t.Fatalf("second settle: %v", err)
	}
	if second.TotalPaidSats != 0 {
		t.Fatalf("expected second settlement of the same epoch to be a no-op, got %+v", second)
	}
	if bounties.pools[cid].BalanceSats != balanceAfterFirst {
		t.Fatalf("expected balance unchanged after idempotent re-settlement: got %d want %d",
			bounties.pools[cid].BalanceSats, balanceAfterFirst)
	}
	if first.TotalPaidSats == 0 {
		t.Fatalf("sanity: expected the first settlement to have actually paid something")
	}
}

func TestSettleEpochNoReceiptsIsANoop(t *testing.T) {
	ctx := context.Background()
	deps := SettlementDeps{
		Receipts: newMemReceiptStore(), Hosts: newMemHostStore(),
		Bounties: newMemBountyStore(), Summaries: newMemSummaryStore(),
	}
	result, err := SettleEpoch(ctx, 4, deps)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if result.TotalGroups != 0 || result.TotalPaidSats != 0 {
		t.Fatalf("expected an empty settlement, got %+v", result)
	}
}
