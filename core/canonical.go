// Package core implements the protocol physics: canonical encoding, content
// IDs, Merkle roots, the signed event envelope, the receipt mint/verifier
// pair, and the epoch settlement pipeline. Every hash in the system is
// computed over the output of CanonicalEncode — changing its rules changes
// every content ID and signature in the system, so the encoding rules are
// frozen once deployed.
package core

import (
	"fmt"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// canonicalEncMode is built once from cbor's canonical options: sorted map
// keys (RFC 7049 §3.9 bytewise lexicographic), shortest-form integers,
// definite-length arrays and maps. The mode does not reject floating point
// values: a float passed in is encoded as a CBOR float. Hash-relevant
// payloads in this package carry only integers, strings, byte strings, and
// nested maps/arrays.
var canonicalEncMode = sync.OnceValue(func() cbor.EncMode {
	opts := cbor.CanonicalEncOptions()
	opts.Time = cbor.TimeUnix
	mode, err := opts.EncMode()
	if err != nil {
		panic(fmt.Errorf("core: building canonical cbor enc mode: %w", err))
	}
	return mode
})

var canonicalDecMode = sync.OnceValue(func() cbor.DecMode {
	mode, err := cbor.DecOptions{
		// Reject indefinite-length items and duplicate map keys so decode
		// can never observe a non-canonical encoding.
		DupMapKey:  cbor.DupMapKeyEnforcedAPF,
		IndefLength: cbor.IndefLengthForbidden,
	}.DecMode()
	if err != nil {
		panic(fmt.Errorf("core: building canonical cbor dec mode: %w", err))
	}
	return mode
})

// CanonicalEncode deterministically encodes v. Semantically equal values of
// the same Go type always produce byte-equal output, independent of map
// iteration order, process, host or restart.
func CanonicalEncode(v any) ([]byte, error) {
	b, err := canonicalEncMode().Marshal(v)
	if err != nil {
		return nil, WrapError(TagInvalidField, err)
	}
	return b, nil
}

// CanonicalDecode decodes b (produced by CanonicalEncode, or any strict
// canonical CBOR) into out.
func CanonicalDecode(b []byte, out any) error {
	if err := canonicalDecMode().Unmarshal(b, out); err != nil {
		return WrapError(TagInvalidField, err)
	}
	return nil
}
