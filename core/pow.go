package core

import (
	"crypto/sha256"
	"encoding/binary"
	"math/big"
	"math/bits"
)

// PowTargetForCount returns target(receiptCount) = POW_TARGET_BASE >>
// floor(log2(receiptCount+1)): difficulty doubles each time receiptCount+1
// reaches a power of two (receiptCount = 1, 3, 7, 15, ...), throttling
// spammy hosts.
// Monotonically non-increasing in receiptCount.
func PowTargetForCount(receiptCount uint64) *big.Int {
	shift := bits.Len64(receiptCount + 1) - 1
	return new(big.Int).Rsh(PowTargetBase(), uint(shift))
}

// powHash computes SHA256(challenge || nonce_be64) as a big-endian integer
// for comparison against a target.
func powHash(challenge []byte, nonce uint64) [32]byte {
	var nb [8]byte
	binary.BigEndian.PutUint64(nb[:], nonce)
	h := sha256.New()
	h.Write(challenge)
	h.Write(nb[:])
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// PowHash is the exported form of powHash, returning a Hex32.
func PowHash(challenge []byte, nonce uint64) Hex32 {
	h := powHash(challenge, nonce)
	return hex32FromBytes(h)
}

// PowMeetsTarget reports whether SHA256(challenge || nonce) < target.
func PowMeetsTarget(challenge []byte, nonce uint64, target *big.Int) bool {
	h := powHash(challenge, nonce)
	v := new(big.Int).SetBytes(h[:])
	return v.Cmp(target) < 0
}

// MineNonce searches nonces starting at 0 until the PoW challenge is
// satisfied against target, or maxAttempts is exhausted. This is CPU-bound
// and should be offloaded to a worker pool by callers; it does not itself
// suspend.
func MineNonce(challenge []byte, target *big.Int, maxAttempts uint64) (nonce uint64, found bool) {
	for n := uint64(0); n < maxAttempts; n++ {
		if PowMeetsTarget(challenge, n, target) {
			return n, true
		}
	}
	return 0, false
}

// ReceiptChallenge computes the PoW challenge for a ReceiptV2:
//
//	SHA256("RECEIPT_V2" || [asset_root]? || file_root || block_cid ||
//	       host_pubkey || payment_hash || response_hash || epoch_be32 ||
//	       client_pubkey)
func ReceiptChallenge(assetRoot, fileRoot, blockCID, hostPubkey, paymentHash, responseHash Hex32, epoch uint32, clientPubkey Hex32) []byte {
	h := sha256.New()
	h.Write([]byte("RECEIPT_V2"))
	if assetRoot != "" {
		h.Write([]byte(assetRoot))
	}
	h.Write([]byte(fileRoot))
	h.Write([]byte(blockCID))
	h.Write([]byte(hostPubkey))
	h.Write([]byte(paymentHash))
	h.Write([]byte(responseHash))
	var eb [4]byte
	binary.BigEndian.PutUint32(eb[:], epoch)
	h.Write(eb[:])
	h.Write([]byte(clientPubkey))
	return h.Sum(nil)
}

// EventPowChallenge computes the PoW challenge for a free (sats==0) EventV1:
//
//	SHA256("EV1_POW" || from || ts_be64 || kind_u8 || ref || SHA256(body))
func EventPowChallenge(from Hex32, ts uint64, kind EventKind, ref Hex32, body []byte) []byte {
	bodyHash := sha256.Sum256(body)
	h := sha256.New()
	h.Write([]byte("EV1_POW"))
	h.Write([]byte(from))
	var tb [8]byte
	binary.BigEndian.PutUint64(tb[:], ts)
	h.Write(tb[:])
	h.Write([]byte{byte(kind)})
	h.Write([]byte(ref))
	h.Write(bodyHash[:])
	return h.Sum(nil)
}
