package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"synnergy-storage-network/core"
	"synnergy-storage-network/internal/store"
)

type server struct {
	hosts     core.HostStore
	bounties  core.BountyStore
	pins      *store.PinStore
	summaries core.EpochSummaryStore
	log       core.EventLogStore

	founderRoyaltyBps uint64
}

func (s *server) handleEvent(w http.ResponseWriter, r *http.Request) {
	var e core.EventV1
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		writeError(w, http.StatusBadRequest, core.TagInvalidField, err.Error())
		return
	}
	if err := core.VerifyEvent(e); err != nil {
		writeEventError(w, err)
		return
	}

	if e.Kind == core.EventKindFund && core.ValidHex32(e.Ref) {
		if err := s.creditBounty(r.Context(), e.Ref, e.Sats); err != nil {
			writeError(w, http.StatusInternalServerError, "internal", err.Error())
			return
		}
	}

	id, err := s.log.Append(r.Context(), e)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]core.Hex32{"event_id": id})
}

// creditBounty applies the founder royalty and credits the remainder into
// the CID's bounty pool: a FUND event materializes into the bounty pool
// only after the royalty cut is deducted.
func (s *server) creditBounty(ctx context.Context, cid core.Hex32, sats uint64) error {
	royalty := sats * s.founderRoyaltyBps / 10000
	credit := sats - royalty

	pool, _, err := s.bounties.GetBountyPool(ctx, cid)
	if err != nil {
		return err
	}
	pool.CID = cid
	pool.BalanceSats += credit
	return s.bounties.PutBountyPool(ctx, pool)
}

func (s *server) handleGetBounty(w http.ResponseWriter, r *http.Request) {
	cid := core.Hex32(chi.URLParam(r, "cid"))
	pool, ok, err := s.bounties.GetBountyPool(r.Context(), cid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, pool)
}

func (s *server) handleDirectory(w http.ResponseWriter, r *http.Request) {
	all, err := s.hosts.ListHosts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	if len(all) > core.MaxListItems {
		all = all[:core.MaxListItems]
	}
	writeJSON(w, http.StatusOK, all)
}

func (s *server) handlePricing(w http.ResponseWriter, r *http.Request) {
	all, err := s.hosts.ListHosts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	out := make(map[core.Hex32]core.PricingPolicy, len(all))
	for _, h := range all {
		out[h.Pubkey] = h.Pricing
	}
	writeJSON(w, http.StatusOK, out)
}

type createPinRequest struct {
	AssetRoot      core.Hex32 `json:"asset_root"`
	Client         core.Hex32 `json:"client"`
	BudgetSats     uint64     `json:"budget_sats"`
	DurationEpochs uint32     `json:"duration_epochs"`
	MinCopies      int        `json:"min_copies"`
	Sig            string     `json:"sig"`
}

func (req createPinRequest) signingPayload() any {
	return map[string]any{
		"asset_root": req.AssetRoot, "budget_sats": req.BudgetSats,
		"duration_epochs": req.DurationEpochs, "min_copies": req.MinCopies, "client": req.Client,
	}
}

func (s *server) handleCreatePin(w http.ResponseWriter, r *http.Request) {
	var req createPinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, core.TagInvalidField, err.Error())
		return
	}
	if !core.ValidHex32(req.AssetRoot) || !core.ValidHex32(req.Client) {
		writeError(w, http.StatusBadRequest, core.TagInvalidField, "invalid asset_root or client")
		return
	}
	if req.BudgetSats < core.PinMinBudgetSats {
		writeError(w, http.StatusBadRequest, core.TagInvalidField, "budget_sats below PIN_MIN_BUDGET_SATS")
		return
	}
	if req.MinCopies <= 0 || req.MinCopies > core.PinMaxCopies {
		writeError(w, http.StatusBadRequest, core.TagInvalidField, "min_copies out of range")
		return
	}
	if req.DurationEpochs == 0 {
		writeError(w, http.StatusBadRequest, core.TagInvalidField, "duration_epochs must be positive")
		return
	}
	if !core.VerifySignature(req.Client, req.Sig, req.signingPayload()) {
		writeError(w, http.StatusUnauthorized, core.TagClientSigInvalid, "pin request signature invalid")
		return
	}

	contract := core.PinContract{
		ID: uuid.NewString(), Client: req.Client, AssetRoot: req.AssetRoot,
		MinCopies: req.MinCopies, DurationEpochs: req.DurationEpochs,
		BudgetSats: req.BudgetSats, RemainingSats: req.BudgetSats,
		DrainRate: req.BudgetSats / uint64(req.DurationEpochs),
		Status:    core.PinActive, CreatedEpoch: core.CurrentEpoch(time.Now()),
	}
	if err := s.pins.PutPinContract(r.Context(), contract); err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, contract)
}

func (s *server) handleGetPin(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, ok := s.pins.GetByID(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *server) handleCancelPin(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, ok := s.pins.GetByID(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	fee := uint64(float64(p.RemainingSats) * core.PinCancelFeePct)
	p.RemainingSats -= fee
	p.Status = core.PinCancelled
	if err := s.pins.PutPinContract(r.Context(), p); err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *server) handleEpochSummary(w http.ResponseWriter, r *http.Request) {
	epochStr := chi.URLParam(r, "epoch")
	epoch64, err := strconv.ParseUint(epochStr, 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, core.TagInvalidField, "invalid epoch")
		return
	}
	epoch := uint32(epoch64)
	has, err := s.summaries.HasAnySummary(r.Context(), epoch)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	if !has {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"epoch": epoch, "has_summary": true})
}

func writeError(w http.ResponseWriter, status int, tag core.Tag, message string) {
	writeJSON(w, status, map[string]string{"error": string(tag), "message": message})
}

func writeEventError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	tag := core.Tag("invalid_field")
	switch {
	case core.HasTag(err, core.TagClientSigInvalid):
		tag = core.TagClientSigInvalid
	case core.HasTag(err, core.TagPowInvalid):
		tag = core.TagPowInvalid
	case core.HasTag(err, core.TagPowHashMismatch):
		tag = core.TagPowHashMismatch
	case core.HasTag(err, core.TagBodyTooLarge):
		tag = core.TagBodyTooLarge
	}
	writeError(w, status, tag, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
