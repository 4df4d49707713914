package core

import "math"

// CIDEpochCap computes the per-CID-per-epoch reward cap:
//
//	cap(balance) = min(balance * 0.02, 50 * (1 + floor(log2(balance/50 + 1))))
//
// The percentage branch dominates for small pools; the logarithmic branch
// caps large "endowment" pools so a single well-funded CID cannot drain
// disproportionately in one epoch.
func CIDEpochCap(balanceSats uint64) uint64 {
	if balanceSats == 0 {
		return 0
	}
	balance := float64(balanceSats)
	pctCap := balance * EpochRewardPct
	logCap := EpochRewardBaseSats * (1 + math.Floor(math.Log2(balance/EpochRewardBaseSats+1)))
	cap := math.Min(pctCap, logCap)
	if cap < 0 {
		return 0
	}
	return uint64(cap)
}

// RewardSplit is one host's share of a CID's epoch reward.
type RewardSplit struct {
	Host       Hex32
	RewardSats uint64
}

// DistributeRewards splits cap among hosts sharing one CID's bounty pool:
// total payable = cap * (1 - AGGREGATOR_FEE_PCT); each host's reward =
// floor(payable * host_score / sum(scores)). The aggregator's fee is cap
// minus the sum of the floored host rewards, so rounding remainders go to
// the fee (retained by the protocol).
//
// Hosts with zero score receive zero. If cap is zero or no host has a
// positive score, every host receives zero and the fee is zero (nothing to
// distribute).
func DistributeRewards(cap uint64, hosts []HostScoreInput) (splits []RewardSplit, aggregatorFeeSats uint64) {
	if cap == 0 || len(hosts) == 0 {
		out := make([]RewardSplit, len(hosts))
		for i, h := range hosts {
			out[i] = RewardSplit{Host: h.Host, RewardSats: 0}
		}
		return out, 0
	}

	var sumScores float64
	scores := make([]float64, len(hosts))
	for i, h := range hosts {
		s := h.Score()
		if s < 0 {
			s = 0
		}
		scores[i] = s
		sumScores += s
	}

	if sumScores <= 0 {
		out := make([]RewardSplit, len(hosts))
		for i, h := range hosts {
			out[i] = RewardSplit{Host: h.Host, RewardSats: 0}
		}
		return out, 0
	}

	payable := float64(cap) * (1 - AggregatorFeePct)
	splits = make([]RewardSplit, len(hosts))
	var distributed uint64
	for i, h := range hosts {
		share := uint64(math.Floor(payable * scores[i] / sumScores))
		splits[i] = RewardSplit{Host: h.Host, RewardSats: share}
		distributed += share
	}
	aggregatorFeeSats = cap - distributed
	return splits, aggregatorFeeSats
}
