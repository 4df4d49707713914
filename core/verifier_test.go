package core

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"testing"
)

// buildValidReceipt mines a real PoW solution and signs both the mint token
// and the client signature, producing a receipt that VerifyReceipt accepts.
func buildValidReceipt(t *testing.T, mint *Mint, mintPub Hex32, clientSeed ed25519.PrivateKey, clientPub Hex32) ReceiptV2 {
	t.Helper()
	fileRoot := CIDFromBytes([]byte("file"))
	blockCID := CIDFromBytes([]byte("block"))
	hostPubkey := CIDFromBytes([]byte("host"))
	paymentHash := CIDFromBytes([]byte("payhash"))
	responseHash := CIDFromBytes([]byte("response"))
	const epoch = uint32(9)
	const priceSats = uint32(10)

	challenge := ReceiptChallenge("", fileRoot, blockCID, hostPubkey, paymentHash, responseHash, epoch, clientPub)
	nonce, found := MineNonce(challenge, PowTargetBase(), 1<<20)
	if !found {
		t.Fatalf("failed to mine pow nonce")
	}
	powHash := PowHash(challenge, nonce)

	in := MintInput{
		HostPubkey: hostPubkey, Epoch: epoch, BlockCID: blockCID,
		ResponseHash: responseHash, PriceSats: priceSats, PaymentHash: paymentHash,
	}
	token, err := mint.SignReceipt(context.Background(), in)
	if err != nil {
		t.Fatalf("mint sign: %v", err)
	}

	clientPayload := clientSigningPayload(challenge, nonce, powHash)
	clientSig := ed25519.Sign(clientSeed, clientPayload)

	return ReceiptV2{
		FileRoot: fileRoot, BlockCID: blockCID, HostPubkey: hostPubkey,
		PaymentHash: paymentHash, ResponseHash: responseHash, PriceSats: priceSats,
		ReceiptToken: base64.StdEncoding.EncodeToString(token),
		Epoch:        epoch, Nonce: nonce, PowHash: powHash,
		ClientPubkey: clientPub, ClientSig: base64.StdEncoding.EncodeToString(clientSig),
	}
}

func TestVerifyReceiptAccepts(t *testing.T) {
	mintSeed, mintPub, err := GenerateSigningKey()
	if err != nil {
		t.Fatalf("generate mint key: %v", err)
	}
	clientSeed, clientPub, err := GenerateSigningKey()
	if err != nil {
		t.Fatalf("generate client key: %v", err)
	}
	mint := NewMint(mintSeed, nil)
	r := buildValidReceipt(t, mint, mintPub, clientSeed, clientPub)
	if err := VerifyReceipt(r, []Hex32{mintPub}); err != nil {
		t.Fatalf("expected receipt to verify, got %v", err)
	}
}

func TestVerifyReceiptRejectsUntrustedMint(t *testing.T) {
	mintSeed, mintPub, err := GenerateSigningKey()
	if err != nil {
		t.Fatalf("generate mint key: %v", err)
	}
	clientSeed, clientPub, err := GenerateSigningKey()
	if err != nil {
		t.Fatalf("generate client key: %v", err)
	}
	mint := NewMint(mintSeed, nil)
	r := buildValidReceipt(t, mint, mintPub, clientSeed, clientPub)

	_, otherMintPub, err := GenerateSigningKey()
	if err != nil {
		t.Fatalf("generate other key: %v", err)
	}
	if err := VerifyReceipt(r, []Hex32{otherMintPub}); !HasTag(err, TagTokenInvalid) {
		t.Fatalf("expected token_invalid, got %v", err)
	}
}

func TestVerifyReceiptRejectsTamperedClientSig(t *testing.T) {
	mintSeed, mintPub, err := GenerateSigningKey()
	if err != nil {
		t.Fatalf("generate mint key: %v", err)
	}
	clientSeed, clientPub, err := GenerateSigningKey()
	if err != nil {
		t.Fatalf("generate client key: %v", err)
	}
	mint := NewMint(mintSeed, nil)
	r := buildValidReceipt(t, mint, mintPub, clientSeed, clientPub)
	r.ClientSig = base64.StdEncoding.EncodeToString(make([]byte, 64))
	if err := VerifyReceipt(r, []Hex32{mintPub}); !HasTag(err, TagClientSigInvalid) {
		t.Fatalf("expected client_sig_invalid, got %v", err)
	}
}

func TestVerifyReceiptRejectsBadShape(t *testing.T) {
	r := ReceiptV2{FileRoot: "not-hex"}
	if err := VerifyReceipt(r, nil); !HasTag(err, TagInvalidField) {
		t.Fatalf("expected invalid_field, got %v", err)
	}
}

func TestVerifyReceiptRejectsPowHashMismatch(t *testing.T) {
	mintSeed, mintPub, err := GenerateSigningKey()
	if err != nil {
		t.Fatalf("generate mint key: %v", err)
	}
	clientSeed, clientPub, err := GenerateSigningKey()
	if err != nil {
		t.Fatalf("generate client key: %v", err)
	}
	mint := NewMint(mintSeed, nil)
	r := buildValidReceipt(t, mint, mintPub, clientSeed, clientPub)
	// Corrupt the nonce so pow_hash no longer matches the recomputation.
	r.Nonce++
	if err := VerifyReceipt(r, []Hex32{mintPub}); !HasTag(err, TagPowHashMismatch) {
		t.Fatalf("expected pow_hash_mismatch, got %v", err)
	}
}
