// Signing uses plain Ed25519 with 64-byte crypto/ed25519 private keys (the
// 32-byte seed followed by the public key); a bare 32-byte seed is not
// accepted. There is no hierarchical derivation — key management and
// recovery phrases are out of scope for this protocol; only raw
// sign/verify over canonical payloads is needed.
package core

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
)

// GenerateSigningKey returns a fresh 64-byte Ed25519 private key and its
// hex-encoded public key.
func GenerateSigningKey() (seed ed25519.PrivateKey, pubkeyHex Hex32, err error) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, "", err
	}
	return priv, Hex32(hex.EncodeToString(pub)), nil
}

// SignPayload signs the canonical encoding of object with seed and returns
// the base64-encoded 64-byte signature.
func SignPayload(seed ed25519.PrivateKey, object any) (string, error) {
	enc, err := CanonicalEncode(object)
	if err != nil {
		return "", err
	}
	sig := ed25519.Sign(seed, enc)
	return base64.StdEncoding.EncodeToString(sig), nil
}

// VerifySignature reports whether sigB64 is a valid Ed25519 signature by
// pubkeyHex over the canonical encoding of object. Any structural problem
// (bad hex, bad base64, wrong lengths, crypto failure) returns false; it
// never panics or returns an error.
func VerifySignature(pubkeyHex Hex32, sigB64 string, object any) bool {
	pub, err := hex.DecodeString(string(pubkeyHex))
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return false
	}
	sig, err := base64.StdEncoding.DecodeString(sigB64)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}
	enc, err := CanonicalEncode(object)
	if err != nil {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pub), enc, sig)
}
