package core

import (
	"strings"
	"time"
)

// Hex32 is a 32-byte value rendered as 64-char lowercase hex. It is the
// universal identifier type: block CIDs, file roots, asset roots, event
// ids, pubkeys and payment hashes are all Hex32.
type Hex32 string

// FileRef and VariantRef point at a stored FileManifest by its file_root.
type FileRef struct {
	FileRoot Hex32  `cbor:"file_root" json:"file_root"`
	Mime     string `cbor:"mime,omitempty" json:"mime,omitempty"`
}

type VariantRef struct {
	Label    string `cbor:"label" json:"label"`
	FileRoot Hex32  `cbor:"file_root" json:"file_root"`
	Mime     string `cbor:"mime,omitempty" json:"mime,omitempty"`
}

// AssetKind enumerates AssetRoot.kind.
type AssetKind string

const (
	AssetKindText  AssetKind = "TEXT"
	AssetKindImage AssetKind = "IMAGE"
	AssetKindAudio AssetKind = "AUDIO"
	AssetKindVideo AssetKind = "VIDEO"
	AssetKindFile  AssetKind = "FILE"
)

// FileManifest describes how a file was split into content-addressed
// blocks. Blocks is ordered; 1 <= len(Blocks) <= MaxManifestBlocks.
type FileManifest struct {
	Version    int     `cbor:"version" json:"version"`
	ChunkSize  int     `cbor:"chunk_size" json:"chunk_size"`
	Size       int64   `cbor:"size" json:"size"`
	Blocks     []Hex32 `cbor:"blocks" json:"blocks"`
	MerkleRoot Hex32   `cbor:"merkle_root" json:"merkle_root"`
	Mime       string  `cbor:"mime,omitempty" json:"mime,omitempty"`
}

// AssetRoot groups a file's variants (original, thumbnails, posters) under
// one content ID — the unit of value in the protocol; payments and
// bounties attach here.
type AssetRoot struct {
	Version  int               `cbor:"version" json:"version"`
	Kind     AssetKind         `cbor:"kind" json:"kind"`
	Original FileRef           `cbor:"original" json:"original"`
	Variants []VariantRef      `cbor:"variants,omitempty" json:"variants,omitempty"`
	Poster   *FileRef          `cbor:"poster,omitempty" json:"poster,omitempty"`
	Thumbs   []FileRef         `cbor:"thumbs,omitempty" json:"thumbs,omitempty"`
	Meta     map[string]string `cbor:"meta" json:"meta"`
}

// EventKind enumerates the recognised EventV1.kind values.
type EventKind uint8

const (
	EventKindFund        EventKind = 0x01
	EventKindAnnounce     EventKind = 0x02
	EventKindPost         EventKind = 0x03
	EventKindHost         EventKind = 0x04
	EventKindRefusal      EventKind = 0x05
	EventKindAttest       EventKind = 0x06
	EventKindList         EventKind = 0x07
	EventKindPinPolicy    EventKind = 0x08
	EventKindMaterializer EventKind = 0x09
)

// ZeroHash is the all-zero Hex32 used for EventV1.Ref when there is no
// parent reference.
var ZeroHash = Hex32(strings.Repeat("0", 64))

// EventV1 is the universal signed message envelope: funding, announcements,
// posts, host registration, refusals, attestations, listings, pin policy
// and materializer requests all travel as one of these, distinguished by
// Kind.
type EventV1 struct {
	V      int       `cbor:"v" json:"v"`
	Kind    EventKind `cbor:"kind" json:"kind"`
	From    Hex32     `cbor:"from" json:"from"`
	Ref     Hex32     `cbor:"ref" json:"ref"`
	Body    string    `cbor:"body" json:"body"` // hex-CBOR, <= EventMaxBodyBytes after decoding
	Sats    uint64    `cbor:"sats" json:"sats"`
	TS      uint64    `cbor:"ts" json:"ts"` // ms since epoch
	Sig     string    `cbor:"sig" json:"sig"` // base64
	Nonce   uint64    `cbor:"nonce,omitempty" json:"nonce,omitempty"`
	PowHash Hex32     `cbor:"pow_hash,omitempty" json:"pow_hash,omitempty"`
}

// ReceiptV2 is the cryptographic proof of a paid block fetch: it binds a
// host's signed mint token to the client's own signature and PoW, and is
// the unit settlement aggregates over.
type ReceiptV2 struct {
	AssetRoot     Hex32  `cbor:"asset_root,omitempty" json:"asset_root,omitempty"`
	FileRoot      Hex32  `cbor:"file_root" json:"file_root"`
	BlockCID      Hex32  `cbor:"block_cid" json:"block_cid"`
	HostPubkey    Hex32  `cbor:"host_pubkey" json:"host_pubkey"`
	PaymentHash   Hex32  `cbor:"payment_hash" json:"payment_hash"`
	ResponseHash  Hex32  `cbor:"response_hash" json:"response_hash"`
	PriceSats     uint32 `cbor:"price_sats" json:"price_sats"`
	ReceiptToken  string `cbor:"receipt_token" json:"receipt_token"` // base64, 64 raw bytes
	Epoch         uint32 `cbor:"epoch" json:"epoch"`
	Nonce         uint64 `cbor:"nonce" json:"nonce"`
	PowHash       Hex32  `cbor:"pow_hash" json:"pow_hash"`
	ClientPubkey  Hex32  `cbor:"client_pubkey" json:"client_pubkey"`
	ClientSig     string `cbor:"client_sig" json:"client_sig"` // base64, 64 raw bytes
}

// CID returns the economic attachment point of the receipt: asset_root when
// present, otherwise file_root.
func (r ReceiptV2) CID() Hex32 {
	if r.AssetRoot != "" {
		return r.AssetRoot
	}
	return r.FileRoot
}

// BountyPool is the per-CID sats balance accumulated from FUND events and
// drained by settlement.
type BountyPool struct {
	CID             Hex32  `json:"cid"`
	BalanceSats     uint64 `json:"balance_sats"`
	LastPayoutEpoch uint32 `json:"last_payout_epoch"`
}

// PinStatus enumerates PinContract.status.
type PinStatus string

const (
	PinActive    PinStatus = "ACTIVE"
	PinExhausted PinStatus = "EXHAUSTED"
	PinCancelled PinStatus = "CANCELLED"
)

// PinContract is a client-funded durability guarantee: the client prepays a
// budget that drains alongside settlement until it is exhausted or
// cancelled, buying a minimum copy count for a fixed number of epochs.
type PinContract struct {
	ID             string    `json:"id"`
	Client         Hex32     `json:"client"`
	AssetRoot      Hex32     `json:"asset_root"`
	MinCopies      int       `json:"min_copies"`
	DurationEpochs uint32    `json:"duration_epochs"`
	BudgetSats     uint64    `json:"budget_sats"`
	RemainingSats  uint64    `json:"remaining_sats"`
	DrainRate      uint64    `json:"drain_rate"` // budget_sats / duration_epochs
	Status         PinStatus `json:"status"`
	CreatedEpoch   uint32    `json:"created_epoch"`
}

// HostStatus enumerates Host.status; see NextHostStatus for the transition
// rules between these values.
type HostStatus string

const (
	HostPending   HostStatus = "PENDING"
	HostTrusted   HostStatus = "TRUSTED"
	HostDegraded  HostStatus = "DEGRADED"
	HostInactive  HostStatus = "INACTIVE"
	HostUnbonding HostStatus = "UNBONDING"
	HostSlashed   HostStatus = "SLASHED"
)

// PricingPolicy is a host's advertised pricing.
type PricingPolicy struct {
	MinRequestSats uint64 `json:"min_request_sats"`
	SatsPerGB      uint64 `json:"sats_per_gb"`
}

// Host is a registry record for a storage host.
type Host struct {
	Pubkey             Hex32         `json:"pubkey"`
	Endpoint           string        `json:"endpoint,omitempty"`
	Stake              uint64        `json:"stake"`
	Status             HostStatus    `json:"status"`
	Pricing            PricingPolicy `json:"pricing"`
	AvailabilityScore  float64       `json:"availability_score"`
	ServedCIDs         map[Hex32]bool `json:"served_cids,omitempty"`
	ConsecutiveZero    int           `json:"consecutive_zero_epochs"`
}

// EpochSummary is persisted once per (epoch, host, cid) and is the
// idempotency key for settlement.
type EpochSummary struct {
	Epoch         uint32  `json:"epoch"`
	Host          Hex32   `json:"host"`
	CID           Hex32   `json:"cid"`
	ReceiptCount  int     `json:"receipt_count"`
	UniqueClients int     `json:"unique_clients"`
	Eligible      bool    `json:"eligible"`
	RewardSats    uint64  `json:"reward_sats"`
	CreatedAt     time.Time `json:"created_at"`
}

// ReceiptDigest is the projection of a stored receipt used by the epoch
// aggregator.
type ReceiptDigest struct {
	Host      Hex32
	CID       Hex32
	Client    Hex32
	PriceSats uint64
}

// EpochGroup is the aggregator's output unit: all receipts sharing
// (host, cid) within one epoch.
type EpochGroup struct {
	Host          Hex32
	CID           Hex32
	ReceiptCount  int
	UniqueClients int
}

// Eligible reports whether the group meets the reward eligibility
// thresholds: a minimum receipt count and a minimum number of unique
// clients, to deter a single client from manufacturing reward-eligible
// traffic.
func (g EpochGroup) Eligible() bool {
	return g.ReceiptCount >= ReceiptMinCount && g.UniqueClients >= ReceiptMinUniqueClients
}

// HostScoreInput feeds the reward distributor.
type HostScoreInput struct {
	Host          Hex32
	UniqueClients int
	Uptime        float64 // availability_score, default 0.5 when missing
	Diversity     float64 // reserved; stubbed to 1.0
}

// Score computes the weighted per-host score used to split a CID's reward
// pool.
func (h HostScoreInput) Score() float64 {
	return WeightClients*float64(h.UniqueClients) + WeightUptime*h.Uptime + WeightDiversity*h.Diversity
}

// SettlementResult is the return value of SettleEpoch.
type SettlementResult struct {
	Epoch                  uint32         `json:"epoch"`
	TotalGroups            int            `json:"total_groups"`
	EligibleGroups         int            `json:"eligible_groups"`
	PaidGroups             int            `json:"paid_groups"`
	TotalPaidSats          uint64         `json:"total_paid_sats"`
	TotalAggregatorFeeSats uint64         `json:"total_aggregator_fee_sats"`
	Summaries              []EpochSummary `json:"summaries"`
}
