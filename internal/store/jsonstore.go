package store

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	"synnergy-storage-network/core"
)

// jsonDoc persists an in-memory value of type T as a single JSON file,
// rewritten atomically on every mutation. This mirrors core/storage.go's
// os.WriteFile-based persistence without pulling in a database driver —
// adequate for the single-coordinator deployments this protocol targets;
// sharding the coordinator across multiple writers is out of scope.
type jsonDoc[T any] struct {
	mu   sync.Mutex
	path string
	data T
}

func openJSONDoc[T any](path string, zero T) (*jsonDoc[T], error) {
	d := &jsonDoc[T]{path: path, data: zero}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return d, nil
		}
		return nil, err
	}
	if len(raw) == 0 {
		return d, nil
	}
	if err := json.Unmarshal(raw, &d.data); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *jsonDoc[T]) save() error {
	raw, err := json.MarshalIndent(d.data, "", "  ")
	if err != nil {
		return err
	}
	tmp := d.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, d.path)
}

// ReceiptStore persists ReceiptV2 rows keyed by epoch.
type ReceiptStore struct {
	doc *jsonDoc[map[uint32][]core.ReceiptV2]
}

func NewReceiptStore(path string) (*ReceiptStore, error) {
	doc, err := openJSONDoc(path, map[uint32][]core.ReceiptV2{})
	if err != nil {
		return nil, err
	}
	return &ReceiptStore{doc: doc}, nil
}

func (s *ReceiptStore) PutReceipt(_ context.Context, r core.ReceiptV2) error {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	s.doc.data[r.Epoch] = append(s.doc.data[r.Epoch], r)
	return s.doc.save()
}

func (s *ReceiptStore) ReceiptsForEpoch(_ context.Context, epoch uint32) ([]core.ReceiptV2, error) {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	out := make([]core.ReceiptV2, len(s.doc.data[epoch]))
	copy(out, s.doc.data[epoch])
	return out, nil
}

// HostStore persists the host registry keyed by pubkey.
type HostStore struct {
	doc *jsonDoc[map[core.Hex32]core.Host]
}

func NewHostStore(path string) (*HostStore, error) {
	doc, err := openJSONDoc(path, map[core.Hex32]core.Host{})
	if err != nil {
		return nil, err
	}
	return &HostStore{doc: doc}, nil
}

func (s *HostStore) GetHost(_ context.Context, pubkey core.Hex32) (core.Host, bool, error) {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	h, ok := s.doc.data[pubkey]
	return h, ok, nil
}

func (s *HostStore) PutHost(_ context.Context, h core.Host) error {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	s.doc.data[h.Pubkey] = h
	return s.doc.save()
}

func (s *HostStore) ListHosts(_ context.Context) ([]core.Host, error) {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	out := make([]core.Host, 0, len(s.doc.data))
	for _, h := range s.doc.data {
		out = append(out, h)
	}
	return out, nil
}

// BountyStore persists per-CID bounty pool balances.
type BountyStore struct {
	doc *jsonDoc[map[core.Hex32]core.BountyPool]
}

func NewBountyStore(path string) (*BountyStore, error) {
	doc, err := openJSONDoc(path, map[core.Hex32]core.BountyPool{})
	if err != nil {
		return nil, err
	}
	return &BountyStore{doc: doc}, nil
}

func (s *BountyStore) GetBountyPool(_ context.Context, cid core.Hex32) (core.BountyPool, bool, error) {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	p, ok := s.doc.data[cid]
	return p, ok, nil
}

func (s *BountyStore) PutBountyPool(_ context.Context, p core.BountyPool) error {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	s.doc.data[p.CID] = p
	return s.doc.save()
}

// Fund credits a CID's pool, creating it if absent. The coordinator's FUND
// handler does not call it; it credits pools through PutBountyPool.
func (s *BountyStore) Fund(cid core.Hex32, sats uint64) error {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	p := s.doc.data[cid]
	p.CID = cid
	p.BalanceSats += sats
	s.doc.data[cid] = p
	return s.doc.save()
}

// PinStore persists pin contracts keyed by ID.
type PinStore struct {
	doc *jsonDoc[map[string]core.PinContract]
}

func NewPinStore(path string) (*PinStore, error) {
	doc, err := openJSONDoc(path, map[string]core.PinContract{})
	if err != nil {
		return nil, err
	}
	return &PinStore{doc: doc}, nil
}

func (s *PinStore) ActivePinsForAsset(_ context.Context, assetRoot core.Hex32) ([]core.PinContract, error) {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	var out []core.PinContract
	for _, p := range s.doc.data {
		if p.AssetRoot == assetRoot && p.Status == core.PinActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *PinStore) PutPinContract(_ context.Context, p core.PinContract) error {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	s.doc.data[p.ID] = p
	return s.doc.save()
}

// GetByID looks up a pin contract directly by ID, for the coordinator's
// HTTP handlers that only have the contract ID (core.PinStore itself is scoped
// to one asset_root at a time, per settlement's draining needs).
func (s *PinStore) GetByID(id string) (core.PinContract, bool) {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	p, ok := s.doc.data[id]
	return p, ok
}

// EpochSummaryStore persists EpochSummary rows keyed by epoch, the
// idempotency guard for settlement.
type EpochSummaryStore struct {
	doc *jsonDoc[map[uint32][]core.EpochSummary]
}

func NewEpochSummaryStore(path string) (*EpochSummaryStore, error) {
	doc, err := openJSONDoc(path, map[uint32][]core.EpochSummary{})
	if err != nil {
		return nil, err
	}
	return &EpochSummaryStore{doc: doc}, nil
}

func (s *EpochSummaryStore) HasAnySummary(_ context.Context, epoch uint32) (bool, error) {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	return len(s.doc.data[epoch]) > 0, nil
}

func (s *EpochSummaryStore) PutSummaries(_ context.Context, rows []core.EpochSummary) error {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	for _, r := range rows {
		s.doc.data[r.Epoch] = append(s.doc.data[r.Epoch], r)
	}
	return s.doc.save()
}

func (s *EpochSummaryStore) GetSummary(_ context.Context, epoch uint32, host, cid core.Hex32) (core.EpochSummary, bool, error) {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	for _, r := range s.doc.data[epoch] {
		if r.Host == host && r.CID == cid {
			return r, true, nil
		}
	}
	return core.EpochSummary{}, false, nil
}

// SummariesForEpoch returns every summary row for one epoch, for CLI
// reporting (`epoch summary`).
func (s *EpochSummaryStore) SummariesForEpoch(epoch uint32) []core.EpochSummary {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	out := make([]core.EpochSummary, len(s.doc.data[epoch]))
	copy(out, s.doc.data[epoch])
	return out
}

// EventLogStore persists signed events keyed by their content-derived ID.
type EventLogStore struct {
	doc *jsonDoc[eventLogDoc]
}

type eventLogDoc struct {
	Events map[core.Hex32]core.EventV1   `json:"events"`
	ByKind map[core.EventKind][]core.Hex32 `json:"by_kind"`
}

func NewEventLogStore(path string) (*EventLogStore, error) {
	doc, err := openJSONDoc(path, eventLogDoc{Events: map[core.Hex32]core.EventV1{}, ByKind: map[core.EventKind][]core.Hex32{}})
	if err != nil {
		return nil, err
	}
	if doc.data.Events == nil {
		doc.data.Events = map[core.Hex32]core.EventV1{}
	}
	if doc.data.ByKind == nil {
		doc.data.ByKind = map[core.EventKind][]core.Hex32{}
	}
	return &EventLogStore{doc: doc}, nil
}

func (s *EventLogStore) Append(_ context.Context, e core.EventV1) (core.Hex32, error) {
	id, err := core.ComputeEventID(e)
	if err != nil {
		return "", err
	}
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	s.doc.data.Events[id] = e
	s.doc.data.ByKind[e.Kind] = append(s.doc.data.ByKind[e.Kind], id)
	if err := s.doc.save(); err != nil {
		return "", err
	}
	return id, nil
}

func (s *EventLogStore) Get(_ context.Context, eventID core.Hex32) (core.EventV1, bool, error) {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	e, ok := s.doc.data.Events[eventID]
	return e, ok, nil
}

func (s *EventLogStore) ListByKind(_ context.Context, kind core.EventKind, limit int) ([]core.EventV1, error) {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	ids := s.doc.data.ByKind[kind]
	if limit > 0 && limit < len(ids) {
		ids = ids[len(ids)-limit:]
	}
	out := make([]core.EventV1, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.doc.data.Events[id])
	}
	return out, nil
}

// MetadataStore persists FileManifest and AssetRoot documents.
type MetadataStore struct {
	doc *jsonDoc[metadataDoc]
}

type metadataDoc struct {
	Manifests map[core.Hex32]core.FileManifest `json:"manifests"`
	Assets    map[core.Hex32]core.AssetRoot    `json:"assets"`
}

func NewMetadataStore(path string) (*MetadataStore, error) {
	doc, err := openJSONDoc(path, metadataDoc{Manifests: map[core.Hex32]core.FileManifest{}, Assets: map[core.Hex32]core.AssetRoot{}})
	if err != nil {
		return nil, err
	}
	if doc.data.Manifests == nil {
		doc.data.Manifests = map[core.Hex32]core.FileManifest{}
	}
	if doc.data.Assets == nil {
		doc.data.Assets = map[core.Hex32]core.AssetRoot{}
	}
	return &MetadataStore{doc: doc}, nil
}

func (s *MetadataStore) PutManifest(_ context.Context, fileRoot core.Hex32, m core.FileManifest) error {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	s.doc.data.Manifests[fileRoot] = m
	return s.doc.save()
}

func (s *MetadataStore) GetManifest(_ context.Context, fileRoot core.Hex32) (core.FileManifest, bool, error) {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	m, ok := s.doc.data.Manifests[fileRoot]
	return m, ok, nil
}

func (s *MetadataStore) PutAsset(_ context.Context, assetRoot core.Hex32, a core.AssetRoot) error {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	s.doc.data.Assets[assetRoot] = a
	return s.doc.save()
}

func (s *MetadataStore) GetAsset(_ context.Context, assetRoot core.Hex32) (core.AssetRoot, bool, error) {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	a, ok := s.doc.data.Assets[assetRoot]
	return a, ok, nil
}
