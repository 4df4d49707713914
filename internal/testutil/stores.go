// Package testutil provides in-memory implementations of the core port
// interfaces other than InvoicePort (core.InvoiceCache covers that one),
// for use in tests and local development where a real database or
// Lightning node would be overkill.
package testutil

import (
	"context"
	"sync"

	"synnergy-storage-network/core"
)

// ReceiptStore is an in-memory core.ReceiptStore keyed by receipt epoch.
type ReceiptStore struct {
	mu       sync.Mutex
	byEpoch  map[uint32][]core.ReceiptV2
}

func NewReceiptStore() *ReceiptStore {
	return &ReceiptStore{byEpoch: make(map[uint32][]core.ReceiptV2)}
}

func (s *ReceiptStore) PutReceipt(_ context.Context, r core.ReceiptV2) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byEpoch[r.Epoch] = append(s.byEpoch[r.Epoch], r)
	return nil
}

func (s *ReceiptStore) ReceiptsForEpoch(_ context.Context, epoch uint32) ([]core.ReceiptV2, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.ReceiptV2, len(s.byEpoch[epoch]))
	copy(out, s.byEpoch[epoch])
	return out, nil
}

// HostStore is an in-memory core.HostStore.
type HostStore struct {
	mu    sync.Mutex
	hosts map[core.Hex32]core.Host
}

func NewHostStore() *HostStore {
	return &HostStore{hosts: make(map[core.Hex32]core.Host)}
}

func (s *HostStore) GetHost(_ context.Context, pubkey core.Hex32) (core.Host, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hosts[pubkey]
	return h, ok, nil
}

func (s *HostStore) PutHost(_ context.Context, h core.Host) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hosts[h.Pubkey] = h
	return nil
}

func (s *HostStore) ListHosts(_ context.Context) ([]core.Host, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Host, 0, len(s.hosts))
	for _, h := range s.hosts {
		out = append(out, h)
	}
	return out, nil
}

// BountyStore is an in-memory core.BountyStore.
type BountyStore struct {
	mu    sync.Mutex
	pools map[core.Hex32]core.BountyPool
}

func NewBountyStore() *BountyStore {
	return &BountyStore{pools: make(map[core.Hex32]core.BountyPool)}
}

func (s *BountyStore) GetBountyPool(_ context.Context, cid core.Hex32) (core.BountyPool, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pools[cid]
	return p, ok, nil
}

func (s *BountyStore) PutBountyPool(_ context.Context, p core.BountyPool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pools[p.CID] = p
	return nil
}

// Fund is a test helper that credits a CID's pool, creating it if absent.
func (s *BountyStore) Fund(cid core.Hex32, sats uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.pools[cid]
	p.CID = cid
	p.BalanceSats += sats
	s.pools[cid] = p
}

// PinStore is an in-memory core.PinStore.
type PinStore struct {
	mu    sync.Mutex
	byID  map[string]core.PinContract
}

func NewPinStore() *PinStore {
	return &PinStore{byID: make(map[string]core.PinContract)}
}

func (s *PinStore) ActivePinsForAsset(_ context.Context, assetRoot core.Hex32) ([]core.PinContract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.PinContract
	for _, p := range s.byID {
		if p.AssetRoot == assetRoot && p.Status == core.PinActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *PinStore) PutPinContract(_ context.Context, p core.PinContract) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[p.ID] = p
	return nil
}

// EpochSummaryStore is an in-memory core.EpochSummaryStore.
type EpochSummaryStore struct {
	mu       sync.Mutex
	byEpoch  map[uint32][]core.EpochSummary
}

func NewEpochSummaryStore() *EpochSummaryStore {
	return &EpochSummaryStore{byEpoch: make(map[uint32][]core.EpochSummary)}
}

func (s *EpochSummaryStore) HasAnySummary(_ context.Context, epoch uint32) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byEpoch[epoch]) > 0, nil
}

func (s *EpochSummaryStore) PutSummaries(_ context.Context, summaries []core.EpochSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sm := range summaries {
		s.byEpoch[sm.Epoch] = append(s.byEpoch[sm.Epoch], sm)
	}
	return nil
}

func (s *EpochSummaryStore) GetSummary(_ context.Context, epoch uint32, host, cid core.Hex32) (core.EpochSummary, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sm := range s.byEpoch[epoch] {
		if sm.Host == host && sm.CID == cid {
			return sm, true, nil
		}
	}
	return core.EpochSummary{}, false, nil
}

// All returns every persisted summary across every epoch, sorted by nothing
// in particular; tests that care about order should sort themselves.
func (s *EpochSummaryStore) All() []core.EpochSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.EpochSummary
	for _, rows := range s.byEpoch {
		out = append(out, rows...)
	}
	return out
}

// EventLogStore is an in-memory core.EventLogStore. Event IDs are computed
// from the event's own content, so Append never reassigns one.
type EventLogStore struct {
	mu      sync.Mutex
	events  map[core.Hex32]core.EventV1
	byKind  map[core.EventKind][]core.Hex32
}

func NewEventLogStore() *EventLogStore {
	return &EventLogStore{
		events: make(map[core.Hex32]core.EventV1),
		byKind: make(map[core.EventKind][]core.Hex32),
	}
}

func (s *EventLogStore) Append(_ context.Context, e core.EventV1) (core.Hex32, error) {
	id, err := core.ComputeEventID(e)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[id] = e
	s.byKind[e.Kind] = append(s.byKind[e.Kind], id)
	return id, nil
}

func (s *EventLogStore) Get(_ context.Context, eventID core.Hex32) (core.EventV1, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[eventID]
	return e, ok, nil
}

func (s *EventLogStore) ListByKind(_ context.Context, kind core.EventKind, limit int) ([]core.EventV1, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.byKind[kind]
	if limit > 0 && limit < len(ids) {
		ids = ids[len(ids)-limit:]
	}
	out := make([]core.EventV1, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.events[id])
	}
	return out, nil
}

// BlockStore is an in-memory core.BlockStore.
type BlockStore struct {
	mu     sync.Mutex
	blocks map[core.Hex32][]byte
}

func NewBlockStore() *BlockStore {
	return &BlockStore{blocks: make(map[core.Hex32][]byte)}
}

func (s *BlockStore) Has(_ context.Context, cid core.Hex32) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.blocks[cid]
	return ok, nil
}

func (s *BlockStore) Get(_ context.Context, cid core.Hex32) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blocks[cid]
	if !ok {
		return nil, core.NewError(core.TagMissingBlock, "testutil: block %s not found", cid)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *BlockStore) Put(_ context.Context, cid core.Hex32, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	s.blocks[cid] = cp
	return nil
}

// MetadataStore is an in-memory core.MetadataStore.
type MetadataStore struct {
	mu        sync.Mutex
	manifests map[core.Hex32]core.FileManifest
	assets    map[core.Hex32]core.AssetRoot
}

func NewMetadataStore() *MetadataStore {
	return &MetadataStore{
		manifests: make(map[core.Hex32]core.FileManifest),
		assets:    make(map[core.Hex32]core.AssetRoot),
	}
}

func (s *MetadataStore) PutManifest(_ context.Context, fileRoot core.Hex32, m core.FileManifest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manifests[fileRoot] = m
	return nil
}

func (s *MetadataStore) GetManifest(_ context.Context, fileRoot core.Hex32) (core.FileManifest, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.manifests[fileRoot]
	return m, ok, nil
}

func (s *MetadataStore) PutAsset(_ context.Context, assetRoot core.Hex32, a core.AssetRoot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets[assetRoot] = a
	return nil
}

func (s *MetadataStore) GetAsset(_ context.Context, assetRoot core.Hex32) (core.AssetRoot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assets[assetRoot]
	return a, ok, nil
}
