package core

import (
	"context"
	"crypto/ed25519"
	"encoding/binary"
	"encoding/hex"
)

// MintInput is the request to sign a receipt token.
type MintInput struct {
	HostPubkey   Hex32
	Epoch        uint32
	BlockCID     Hex32
	ResponseHash Hex32
	PriceSats    uint32
	PaymentHash  Hex32
}

func (in MintInput) validate() error {
	for name, v := range map[string]Hex32{
		"host_pubkey": in.HostPubkey, "block_cid": in.BlockCID,
		"response_hash": in.ResponseHash, "payment_hash": in.PaymentHash,
	} {
		if !ValidHex32(v) {
			return NewError(TagInvalidField, "mint: invalid %s", name)
		}
	}
	return nil
}

// receiptTokenPayload builds "R2" || host_pubkey || epoch_be32 ||
// block_cid || response_hash || price_sats_be32 || payment_hash, the exact
// byte layout signed into the 64-byte receipt token.
func receiptTokenPayload(in MintInput) []byte {
	buf := make([]byte, 0, 2+32+4+32+32+4+32)
	buf = append(buf, 'R', '2')
	buf = append(buf, in.HostPubkey.Bytes()[:]...)
	var eb [4]byte
	binary.BigEndian.PutUint32(eb[:], in.Epoch)
	buf = append(buf, eb[:]...)
	buf = append(buf, in.BlockCID.Bytes()[:]...)
	buf = append(buf, in.ResponseHash.Bytes()[:]...)
	var pb [4]byte
	binary.BigEndian.PutUint32(pb[:], in.PriceSats)
	buf = append(buf, pb[:]...)
	buf = append(buf, in.PaymentHash.Bytes()[:]...)
	return buf
}

// ReceiptTokenPayload exposes receiptTokenPayload for verifiers that must
// reconstruct the exact bytes the mint signed.
func ReceiptTokenPayload(in MintInput) []byte { return receiptTokenPayload(in) }

// Mint is an isolated signing oracle. It holds no application state: no
// database, no invoice records, no history of which invoices it has
// already signed for. Double-signing the same settled invoice is possible
// by design; no later stage deduplicates on payment_hash, so each stored
// receipt counts toward its group's receipt_count (see AggregateReceipts).
type Mint struct {
	seed    ed25519.PrivateKey
	pubkey  Hex32
	invoice InvoicePort // optional; nil means settlement checks are skipped
}

// NewMint constructs a mint from an Ed25519 seed and an optional invoice
// port. A nil invoice port is valid (tests, or operators who trust the
// caller) and simply skips the settlement check in SignReceipt.
func NewMint(seed ed25519.PrivateKey, invoice InvoicePort) *Mint {
	pub := seed.Public().(ed25519.PublicKey)
	return &Mint{seed: seed, pubkey: Hex32(hex.EncodeToString(pub)), invoice: invoice}
}

// PublicKey returns the mint's published Ed25519 public key.
func (m *Mint) PublicKey() Hex32 { return m.pubkey }

// SignReceipt validates input, optionally checks Lightning settlement via
// the invoice port, and emits a signed 64-byte receipt token.
func (m *Mint) SignReceipt(ctx context.Context, in MintInput) ([]byte, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if m.invoice != nil {
		inv, err := m.invoice.LookupInvoice(ctx, in.PaymentHash)
		if err != nil {
			return nil, WrapError(TagLndUnavailable, err)
		}
		if !inv.Settled {
			return nil, NewError(TagNotSettled, "mint: invoice %s not settled", in.PaymentHash)
		}
		if inv.AmtPaidSats < uint64(in.PriceSats) {
			return nil, NewError(TagUnderpaid, "mint: paid %d < price %d", inv.AmtPaidSats, in.PriceSats)
		}
	}
	payload := receiptTokenPayload(in)
	return ed25519.Sign(m.seed, payload), nil
}
