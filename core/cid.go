package core

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
)

// hex32Pattern matches the canonical rendering of a 32-byte hash: 64
// lowercase hex characters, nothing else.
var hex32Pattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// ValidHex32 reports whether s is a syntactically valid Hex32.
func ValidHex32(s Hex32) bool {
	return hex32Pattern.MatchString(string(s))
}

// Bytes decodes h into its raw 32 bytes, returning a zero array if h is not
// valid hex or not 32 bytes long; callers in verification paths must call
// ValidHex32 first to distinguish a genuine all-zero hash from malformed
// input.
func (h Hex32) Bytes() [32]byte {
	var out [32]byte
	b, err := hex.DecodeString(string(h))
	if err != nil || len(b) != 32 {
		return out
	}
	copy(out[:], b)
	return out
}

// hex32FromBytes renders a 32-byte array as lowercase hex.
func hex32FromBytes(b [32]byte) Hex32 {
	return Hex32(hex.EncodeToString(b[:]))
}

// CIDFromBytes computes the content ID of raw bytes: SHA256(bytes), hex.
func CIDFromBytes(b []byte) Hex32 {
	return hex32FromBytes(sha256.Sum256(b))
}

// VerifyCID reports whether claimed is the CID of b.
func VerifyCID(claimed Hex32, b []byte) bool {
	return claimed == CIDFromBytes(b)
}

// CIDFromObject computes the content ID of a canonical-encodable value:
// SHA256(CanonicalEncode(o)).
func CIDFromObject(o any) (Hex32, error) {
	enc, err := CanonicalEncode(o)
	if err != nil {
		return "", err
	}
	return CIDFromBytes(enc), nil
}
