package core

import "testing"

func TestCIDEpochCapPercentageDominatesSmallPools(t *testing.T) {
	// balance=2500 -> pctCap = 50, logCap = 50*(1+floor(log2(2500/50+1))) =
	// 50*(1+floor(log2(51))) = 50*(1+5) = 300. min(50,300) = 50.
	if got := CIDEpochCap(2500); got != 50 {
		t.Fatalf("got %d want 50", got)
	}
}

func TestCIDEpochCapZeroBalance(t *testing.T) {
	if got := CIDEpochCap(0); got != 0 {
		t.Fatalf("got %d want 0", got)
	}
}

func TestCIDEpochCapLogDominatesLargePools(t *testing.T) {
	// balance=100000 -> pctCap = 2000, logCap = 50*(1+floor(log2(2001))) =
	// 50*(1+10) = 550. min(2000,550) = 550.
	if got := CIDEpochCap(100000); got != 550 {
		t.Fatalf("got %d want 550", got)
	}
}

func TestDistributeRewardsSingleHostGetsCapMinusFee(t *testing.T) {
	// cap=50, single host, fee 3%: payable = 50*0.97 = 48.5 -> floor 48.
	splits, fee := DistributeRewards(50, []HostScoreInput{
		{Host: "h1", UniqueClients: 3, Uptime: 1.0, Diversity: 1.0},
	})
	if len(splits) != 1 {
		t.Fatalf("expected 1 split, got %d", len(splits))
	}
	if splits[0].RewardSats != 48 {
		t.Fatalf("got %d want 48", splits[0].RewardSats)
	}
	if fee != 2 {
		t.Fatalf("got fee %d want 2", fee)
	}
}

func TestDistributeRewardsTwoEqualHostsSplitEvenly(t *testing.T) {
	splits, _ := DistributeRewards(50, []HostScoreInput{
		{Host: "h1", UniqueClients: 3, Uptime: 1.0, Diversity: 1.0},
		{Host: "h2", UniqueClients: 3, Uptime: 1.0, Diversity: 1.0},
	})
	if len(splits) != 2 {
		t.Fatalf("expected 2 splits, got %d", len(splits))
	}
	if splits[0].RewardSats != 24 || splits[1].RewardSats != 24 {
		t.Fatalf("expected 24 each for two identical hosts, got %+v", splits)
	}
}

func TestDistributeRewardsZeroCap(t *testing.T) {
	splits, fee := DistributeRewards(0, []HostScoreInput{{Host: "h1", UniqueClients: 5, Uptime: 1.0}})
	if fee != 0 {
		t.Fatalf("expected zero fee for zero cap")
	}
	if splits[0].RewardSats != 0 {
		t.Fatalf("expected zero reward for zero cap")
	}
}

func TestDistributeRewardsWeightsClientsUptimeDiversity(t *testing.T) {
	// Score = 0.5*clients + 0.3*uptime + 0.2*diversity. A host with more
	// unique clients should out-earn one with fewer, all else equal.
	splits, _ := DistributeRewards(1000, []HostScoreInput{
		{Host: "high", UniqueClients: 10, Uptime: 1.0, Diversity: 1.0},
		{Host: "low", UniqueClients: 3, Uptime: 1.0, Diversity: 1.0},
	})
	var high, low uint64
	for _, s := range splits {
		if s.Host == "high" {
			high = s.RewardSats
		} else {
			low = s.RewardSats
		}
	}
	if high <= low {
		t.Fatalf("expected host with more unique clients to earn more: high=%d low=%d", high, low)
	}
}

func TestHostScoreInputScore(t *testing.T) {
	h := HostScoreInput{UniqueClients: 2, Uptime: 0.5, Diversity: 1.0}
	want := WeightClients*2 + WeightUptime*0.5 + WeightDiversity*1.0
	if got := h.Score(); got != want {
		t.Fatalf("got %f want %f", got, want)
	}
}
