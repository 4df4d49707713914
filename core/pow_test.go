package core

import (
	"math/big"
	"testing"
)

func TestPowTargetForCountMonotonic(t *testing.T) {
	prev := PowTargetForCount(0)
	for _, n := range []uint64{1, 2, 3, 7, 8, 100, 100000} {
		cur := PowTargetForCount(n)
		if cur.Cmp(prev) > 0 {
			t.Fatalf("target must be non-increasing: target(%d)=%s > previous=%s", n, cur, prev)
		}
		prev = cur
	}
}

func TestPowTargetForCountHalvesAtPowerOfTwoPlusOne(t *testing.T) {
	// bits.Len64(n+1)-1 steps the shift at n=1,3,7,15,...
	t0 := PowTargetForCount(0)
	t1 := PowTargetForCount(1)
	if new(big.Int).Rsh(t0, 1).Cmp(t1) != 0 {
		t.Fatalf("expected target(1) == target(0)>>1: got %s vs %s", t1, t0)
	}
}

func TestPowMeetsTargetAgainstMaxTarget(t *testing.T) {
	max := new(big.Int).Lsh(big.NewInt(1), 256) // every hash is < 2^256
	if !PowMeetsTarget([]byte("challenge"), 0, max) {
		t.Fatalf("expected every hash to meet a target of 2^256")
	}
}

func TestPowMeetsTargetRejectsZeroTarget(t *testing.T) {
	if PowMeetsTarget([]byte("challenge"), 0, big.NewInt(0)) {
		t.Fatalf("expected no hash to meet a target of 0")
	}
}

func TestMineNonceFindsSolutionUnderPowTargetBase(t *testing.T) {
	// POW_TARGET_BASE = 2^240 leaves 1/65536 of the 256-bit space, so about
	// 65536 attempts are expected and 2^20 attempts find a solution with
	// overwhelming probability.
	nonce, found := MineNonce([]byte("mine me"), PowTargetBase(), 1<<20)
	if !found {
		t.Fatalf("expected to find a nonce within 2^20 attempts")
	}
	if !PowMeetsTarget([]byte("mine me"), nonce, PowTargetBase()) {
		t.Fatalf("mined nonce does not actually meet the target")
	}
}

func TestMineNonceExhaustsAttempts(t *testing.T) {
	_, found := MineNonce([]byte("x"), big.NewInt(1), 100)
	if found {
		t.Fatalf("expected target of 1 to not be met within 100 attempts")
	}
}

func TestReceiptChallengeDeterministic(t *testing.T) {
	a := ReceiptChallenge("", "file", "block", "host", "payhash", "resphash", 7, "client")
	b := ReceiptChallenge("", "file", "block", "host", "payhash", "resphash", 7, "client")
	if string(a) != string(b) {
		t.Fatalf("expected deterministic challenge bytes")
	}
	withAsset := ReceiptChallenge("asset", "file", "block", "host", "payhash", "resphash", 7, "client")
	if string(a) == string(withAsset) {
		t.Fatalf("expected asset_root presence to change the challenge")
	}
}

func TestEventPowChallengeDeterministic(t *testing.T) {
	a := EventPowChallenge("from", 100, EventKindPost, ZeroHash, []byte("body"))
	b := EventPowChallenge("from", 100, EventKindPost, ZeroHash, []byte("body"))
	if string(a) != string(b) {
		t.Fatalf("expected deterministic event pow challenge")
	}
	c := EventPowChallenge("from", 101, EventKindPost, ZeroHash, []byte("body"))
	if string(a) == string(c) {
		t.Fatalf("expected timestamp to change the challenge")
	}
}
