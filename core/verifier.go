package core

import (
	"crypto/ed25519"
	"encoding/base64"
)

// VerifyReceipt is the zero-state receipt verifier. It performs no I/O and
// is safe for external adopters to embed directly. Steps run in a fixed
// order, each producing a distinct error tag:
//
//  1. Hex shape check on every Hex32 field.
//  2. Recompute pow_hash from challenge+nonce; must match and beat target.
//  3. Reconstruct the token payload; accept the first trusted mint pubkey
//     whose Ed25519 signature verifies.
//  4. Verify the client's signature over challenge || nonce || pow_hash.
func VerifyReceipt(r ReceiptV2, trustedMintPubkeys []Hex32) error {
	if err := verifyReceiptShape(r); err != nil {
		return err
	}

	challenge := ReceiptChallenge(r.AssetRoot, r.FileRoot, r.BlockCID, r.HostPubkey, r.PaymentHash, r.ResponseHash, r.Epoch, r.ClientPubkey)
	want := PowHash(challenge, r.Nonce)
	if want != r.PowHash {
		return NewError(TagPowHashMismatch, "receipt: pow_hash mismatch")
	}
	if !PowMeetsTarget(challenge, r.Nonce, PowTargetBase()) {
		return NewError(TagPowInvalid, "receipt: pow_hash >= target")
	}

	token, err := base64.StdEncoding.DecodeString(r.ReceiptToken)
	if err != nil {
		return WrapError(TagTokenDecodeFailed, err)
	}
	if len(token) != ed25519.SignatureSize {
		return NewError(TagTokenInvalidLength, "receipt: token is %d bytes, want %d", len(token), ed25519.SignatureSize)
	}
	in := MintInput{
		HostPubkey: r.HostPubkey, Epoch: r.Epoch, BlockCID: r.BlockCID,
		ResponseHash: r.ResponseHash, PriceSats: r.PriceSats, PaymentHash: r.PaymentHash,
	}
	payload := receiptTokenPayload(in)
	accepted := false
	for _, mpk := range trustedMintPubkeys {
		pub, err := decodeHex32Pub(mpk)
		if err != nil {
			continue
		}
		if ed25519.Verify(pub, payload, token) {
			accepted = true
			break
		}
	}
	if !accepted {
		return NewError(TagTokenInvalid, "receipt: token not signed by any trusted mint")
	}

	clientSig, err := base64.StdEncoding.DecodeString(r.ClientSig)
	if err != nil {
		return WrapError(TagClientSigInvalid, err)
	}
	if len(clientSig) != ed25519.SignatureSize {
		return NewError(TagClientSigInvalid, "receipt: client_sig wrong length")
	}
	clientPub, err := decodeHex32Pub(r.ClientPubkey)
	if err != nil {
		return NewError(TagClientSigInvalid, "receipt: invalid client_pubkey")
	}
	clientPayload := clientSigningPayload(challenge, r.Nonce, r.PowHash)
	if !ed25519.Verify(clientPub, clientPayload, clientSig) {
		return NewError(TagClientSigInvalid, "receipt: client signature invalid")
	}
	return nil
}

// clientSigningPayload is challenge_raw || nonce_be64 || pow_hash_bytes.
func clientSigningPayload(challenge []byte, nonce uint64, powHashValue Hex32) []byte {
	out := make([]byte, 0, len(challenge)+8+32)
	out = append(out, challenge...)
	var nb [8]byte
	be64(nb[:], nonce)
	out = append(out, nb[:]...)
	ph := powHashValue.Bytes()
	out = append(out, ph[:]...)
	return out
}

func be64(b []byte, v uint64) {
	for i := 7; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
}

func decodeHex32Pub(h Hex32) (ed25519.PublicKey, error) {
	if !ValidHex32(h) {
		return nil, NewError(TagInvalidCID, "not a valid Hex32")
	}
	b := h.Bytes()
	return ed25519.PublicKey(b[:]), nil
}

func verifyReceiptShape(r ReceiptV2) error {
	fields := map[string]Hex32{
		"file_root": r.FileRoot, "block_cid": r.BlockCID, "host_pubkey": r.HostPubkey,
		"payment_hash": r.PaymentHash, "response_hash": r.ResponseHash,
		"pow_hash": r.PowHash, "client_pubkey": r.ClientPubkey,
	}
	for name, v := range fields {
		if !ValidHex32(v) {
			return NewError(TagInvalidField, "receipt: invalid %s", name)
		}
	}
	if r.AssetRoot != "" && !ValidHex32(r.AssetRoot) {
		return NewError(TagInvalidField, "receipt: invalid asset_root")
	}
	return nil
}
