package core

import (
	"math/big"
	"time"
)

// Frozen protocol constants. No component may redefine or override these —
// changing any of them is a hard fork.
const (
	ChunkSizeDefault   = 262144
	MaxManifestBlocks  = 32768
	MaxAssetVariants   = 8
	ReceiptVersion     = 2
	EventMaxBodyBytes  = 16384
	FreePreviewMaxSize = 16384
	MaxListItems       = 1000
)

// Tunable constants. These may move at an epoch boundary but never mid-epoch.
const (
	EpochLength              = 4 * time.Hour
	ReceiptMinCount          = 5
	ReceiptMinUniqueClients  = 3
	EpochRewardPct           = 0.02
	EpochRewardBaseSats      = 50
	AggregatorFeePct         = 0.03
	WeightClients            = 0.5
	WeightUptime             = 0.3
	WeightDiversity          = 0.2
	AvailabilityWindowEpochs = 6
	AvailabilityTrustedMin   = 0.6
	InactiveZeroEpochs       = 6
	PinMinBudgetSats         = 210
	PinMaxCopies             = 20
	PinCancelFeePct          = 0.05
)

// powTargetBase is the shared proof-of-work target, 2^240, used by both the
// receipt mint's PoW challenge and the free-event PoW challenge.
var powTargetBase = new(big.Int).Lsh(big.NewInt(1), 240)

// PowTargetBase returns a fresh copy of 2^240 so callers cannot mutate the
// shared value.
func PowTargetBase() *big.Int { return new(big.Int).Set(powTargetBase) }

// EventPowTarget is an alias of PowTargetBase kept distinct in the API so
// the event-PoW and receipt-PoW call sites each read naturally at their own
// call site, even though the underlying values coincide.
func EventPowTarget() *big.Int { return PowTargetBase() }
