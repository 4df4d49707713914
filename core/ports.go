package core

import "context"

// InvoiceState enumerates the Lightning invoice lifecycle states surfaced
// by the invoice port.
type InvoiceState string

const (
	InvoiceOpen     InvoiceState = "OPEN"
	InvoiceSettled  InvoiceState = "SETTLED"
	InvoiceCanceled InvoiceState = "CANCELED"
	InvoiceAccepted InvoiceState = "ACCEPTED"
)

// Invoice is the projection returned by InvoicePort.LookupInvoice.
type Invoice struct {
	PaymentHash  Hex32
	Settled      bool
	ValueSats    uint64
	AmtPaidSats  uint64
	State        InvoiceState
}

// CreateInvoiceRequest/Result model InvoicePort.CreateInvoice.
type CreateInvoiceRequest struct {
	ValueSats  uint64
	Memo       string
	ExpirySecs int
}

type CreateInvoiceResult struct {
	PaymentHash Hex32
	Bolt11      string
}

// InvoicePort is the narrow interface to a Lightning node. The core never
// talks to Lightning directly; it only calls this port, which is
// replaceable by a test double (InvoiceCache in this package is an
// in-memory implementation).
type InvoicePort interface {
	CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (CreateInvoiceResult, error)
	LookupInvoice(ctx context.Context, paymentHash Hex32) (Invoice, error)
}

// ReceiptStore persists ReceiptV2 values and answers the aggregator's
// per-epoch query.
type ReceiptStore interface {
	PutReceipt(ctx context.Context, r ReceiptV2) error
	ReceiptsForEpoch(ctx context.Context, epoch uint32) ([]ReceiptV2, error)
}

// HostStore is the host registry consulted and mutated by the availability
// scorer and the settlement engine.
type HostStore interface {
	GetHost(ctx context.Context, pubkey Hex32) (Host, bool, error)
	PutHost(ctx context.Context, h Host) error
	ListHosts(ctx context.Context) ([]Host, error)
}

// BountyStore holds per-CID BountyPool balances.
type BountyStore interface {
	GetBountyPool(ctx context.Context, cid Hex32) (BountyPool, bool, error)
	PutBountyPool(ctx context.Context, p BountyPool) error
}

// PinStore holds PinContract records, scoped to a single asset_root so
// settlement can drain every active contract for a paid-out CID.
type PinStore interface {
	ActivePinsForAsset(ctx context.Context, assetRoot Hex32) ([]PinContract, error)
	PutPinContract(ctx context.Context, p PinContract) error
}

// EpochSummaryStore persists EpochSummary rows and is the idempotency guard
// for settlement: an epoch with any stored summary has already settled.
type EpochSummaryStore interface {
	HasAnySummary(ctx context.Context, epoch uint32) (bool, error)
	PutSummaries(ctx context.Context, summaries []EpochSummary) error
	GetSummary(ctx context.Context, epoch uint32, host, cid Hex32) (EpochSummary, bool, error)
}

// EventLogStore is the append-only signed event log.
type EventLogStore interface {
	Append(ctx context.Context, e EventV1) (Hex32, error)
	Get(ctx context.Context, eventID Hex32) (EventV1, bool, error)
	ListByKind(ctx context.Context, kind EventKind, limit int) ([]EventV1, error)
}

// BlockStore is the opaque content-addressed block KV; on-disk layout is
// an implementation detail of the store, the core only needs Has/Get/Put.
type BlockStore interface {
	Has(ctx context.Context, cid Hex32) (bool, error)
	Get(ctx context.Context, cid Hex32) ([]byte, error)
	Put(ctx context.Context, cid Hex32, data []byte) error
}

// MetadataStore persists FileManifest and AssetRoot JSON documents keyed by
// their canonical root hash.
type MetadataStore interface {
	PutManifest(ctx context.Context, fileRoot Hex32, m FileManifest) error
	GetManifest(ctx context.Context, fileRoot Hex32) (FileManifest, bool, error)
	PutAsset(ctx context.Context, assetRoot Hex32, a AssetRoot) error
	GetAsset(ctx context.Context, assetRoot Hex32) (AssetRoot, bool, error)
}

// MintClient is how a coordinator or gateway asks a remote mint to sign a
// receipt over HTTP. The mint's own process uses Mint (mint.go) directly
// and never implements this interface itself.
type MintClient interface {
	SignReceipt(ctx context.Context, input MintInput) (token []byte, mintPubkey Hex32, err error)
}
