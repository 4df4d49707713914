package core

import (
	"crypto/ed25519"
	"encoding/hex"
	"time"
)

// eventSigningPayload is the canonical-encodable projection of EventV1 used
// both to compute event_id and as the Ed25519 signing payload. sig itself
// is never part of what it signs.
type eventSigningPayload struct {
	V    int       `cbor:"v"`
	Kind EventKind `cbor:"kind"`
	From Hex32     `cbor:"from"`
	Ref  Hex32     `cbor:"ref"`
	Body string    `cbor:"body"`
	Sats uint64    `cbor:"sats"`
	TS   uint64    `cbor:"ts"`
}

func (e EventV1) signingPayload() eventSigningPayload {
	return eventSigningPayload{
		V: e.V, Kind: e.Kind, From: e.From, Ref: e.Ref, Body: e.Body, Sats: e.Sats, TS: e.TS,
	}
}

// ComputeEventID returns CIDFromObject(signing_payload(e)).
func ComputeEventID(e EventV1) (Hex32, error) {
	return CIDFromObject(e.signingPayload())
}

// EncodeEventBody canonical-encodes payload and hex-encodes the result,
// rejecting anything over EventMaxBodyBytes.
func EncodeEventBody(payload any) (string, error) {
	enc, err := CanonicalEncode(payload)
	if err != nil {
		return "", err
	}
	if len(enc) > EventMaxBodyBytes {
		return "", NewError(TagBodyTooLarge, "event body is %d bytes, max %d", len(enc), EventMaxBodyBytes)
	}
	return hex.EncodeToString(enc), nil
}

// DecodeEventBody reverses EncodeEventBody into out.
func DecodeEventBody(bodyHex string, out any) error {
	raw, err := hex.DecodeString(bodyHex)
	if err != nil {
		return WrapError(TagInvalidField, err)
	}
	return CanonicalDecode(raw, out)
}

// NewUnsignedEvent builds an EventV1 with v=1, a zero ref when ref=="", and
// the current time if ts==0. It does not sign or mine PoW.
func NewUnsignedEvent(kind EventKind, from Hex32, ref Hex32, bodyHex string, sats uint64, ts uint64) EventV1 {
	if ref == "" {
		ref = ZeroHash
	}
	if ts == 0 {
		ts = uint64(time.Now().UnixMilli())
	}
	return EventV1{V: 1, Kind: kind, From: from, Ref: ref, Body: bodyHex, Sats: sats, TS: ts}
}

// SignEvent sets e.Sig (and, for free events, mines Nonce/PowHash) and
// returns the fully signed event.
func SignEvent(seed ed25519.PrivateKey, from Hex32, e EventV1) (EventV1, error) {
	e.From = from
	sig, err := SignPayload(seed, e.signingPayload())
	if err != nil {
		return EventV1{}, err
	}
	e.Sig = sig
	if e.Sats == 0 {
		if err := mineEventPow(&e); err != nil {
			return EventV1{}, err
		}
	}
	return e, nil
}

// mineEventPow mines a nonce satisfying EventPowTarget for a free event.
func mineEventPow(e *EventV1) error {
	body, err := hex.DecodeString(e.Body)
	if err != nil {
		return WrapError(TagInvalidField, err)
	}
	challenge := EventPowChallenge(e.From, e.TS, e.Kind, e.Ref, body)
	nonce, ok := MineNonce(challenge, EventPowTarget(), 1<<32)
	if !ok {
		return NewError(TagPowInvalid, "event: failed to mine PoW nonce")
	}
	e.Nonce = nonce
	e.PowHash = PowHash(challenge, nonce)
	return nil
}

// VerifyEvent validates an event's signature and, for free events, its
// body PoW. It never mutates e.
func VerifyEvent(e EventV1) error {
	if !ValidHex32(e.From) {
		return NewError(TagInvalidField, "event: invalid from")
	}
	if !VerifySignature(e.From, e.Sig, e.signingPayload()) {
		return NewError(TagClientSigInvalid, "event: signature verification failed")
	}
	if e.Sats == 0 {
		body, err := hex.DecodeString(e.Body)
		if err != nil {
			return WrapError(TagInvalidField, err)
		}
		challenge := EventPowChallenge(e.From, e.TS, e.Kind, e.Ref, body)
		want := PowHash(challenge, e.Nonce)
		if want != e.PowHash {
			return NewError(TagPowHashMismatch, "event: pow_hash mismatch")
		}
		if !PowMeetsTarget(challenge, e.Nonce, EventPowTarget()) {
			return NewError(TagPowInvalid, "event: pow does not meet target")
		}
	}
	return nil
}
