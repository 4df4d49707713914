package main

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"synnergy-storage-network/core"
)

// server bundles the gateway's collaborators. pending remembers which
// block CID each invoice it minted was for, since core.InvoicePort itself
// has no notion of what a payment is buying: the handler that settles a
// fetch needs to confirm the paid invoice's CID matches the one requested.
type server struct {
	blocks   core.BlockStore
	meta     core.MetadataStore
	invoices *core.InvoiceCache
	mint     core.MintClient

	hostPubkey core.Hex32
	priceSats  uint64

	pendingMu sync.Mutex
	pending   map[core.Hex32]core.Hex32 // payment_hash -> block cid
}

func (s *server) rememberPending(paymentHash, cid core.Hex32) {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	if s.pending == nil {
		s.pending = map[core.Hex32]core.Hex32{}
	}
	s.pending[paymentHash] = cid
}

func (s *server) pendingCID(paymentHash core.Hex32) (core.Hex32, bool) {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	cid, ok := s.pending[paymentHash]
	return cid, ok
}

func (s *server) handlePutBlock(w http.ResponseWriter, r *http.Request) {
	cid := core.Hex32(chi.URLParam(r, "cid"))
	if !core.ValidHex32(cid) {
		writeError(w, http.StatusBadRequest, core.TagInvalidCID, "malformed cid")
		return
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, core.TagInvalidField, err.Error())
		return
	}
	if !core.VerifyCID(cid, data) {
		writeError(w, http.StatusUnprocessableEntity, core.TagCIDMismatch, "hash of body does not match path")
		return
	}
	if exists, err := s.blocks.Has(r.Context(), cid); err == nil && exists {
		w.WriteHeader(http.StatusConflict)
		return
	}
	if err := s.blocks.Put(r.Context(), cid, data); err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *server) handleGetBlock(w http.ResponseWriter, r *http.Request) {
	cid := core.Hex32(chi.URLParam(r, "cid"))
	if !core.ValidHex32(cid) {
		writeError(w, http.StatusBadRequest, core.TagInvalidCID, "malformed cid")
		return
	}
	data, err := s.blocks.Get(r.Context(), cid)
	if err != nil {
		if core.HasTag(err, core.TagMissingBlock) {
			http.NotFound(w, r)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}

	if len(data) <= core.FreePreviewMaxSize {
		w.Header().Set("X-Free-Preview", "true")
		w.Write(data)
		return
	}

	s.serveL402Block(w, r, cid, data)
}

func (s *server) serveL402Block(w http.ResponseWriter, r *http.Request, cid core.Hex32, data []byte) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		s.challengeL402(w, r, cid)
		return
	}

	preimage, ok := parseL402Authorization(auth)
	if !ok {
		writeError(w, http.StatusUnauthorized, core.TagInvalidPreimage, "malformed Authorization header")
		return
	}
	paymentHash := core.CIDFromBytes([]byte(preimage))
	invoiceCID, ok := s.pendingCID(paymentHash)
	if !ok || invoiceCID != cid {
		writeError(w, http.StatusUnauthorized, core.TagCIDMismatch, "payment does not match requested block")
		return
	}
	inv, err := s.invoices.LookupInvoice(r.Context(), paymentHash)
	if err != nil {
		writeError(w, http.StatusUnauthorized, core.TagUnknownPayment, "unknown payment_hash")
		return
	}
	if !inv.Settled {
		writeError(w, http.StatusUnauthorized, core.TagInvalidPreimage, "invoice not settled")
		return
	}

	responseHash := core.CIDFromBytes(data)
	token, mintPubkey, err := s.mint.SignReceipt(r.Context(), core.MintInput{
		HostPubkey: s.hostPubkey, Epoch: core.CurrentEpoch(nowUTC()), BlockCID: cid,
		ResponseHash: responseHash, PriceSats: uint32(inv.ValueSats), PaymentHash: paymentHash,
	})
	if err != nil {
		writeError(w, http.StatusBadGateway, core.TagMintUnavailable, err.Error())
		return
	}

	w.Header().Set("X-Receipt-Token", base64Encode(token))
	w.Header().Set("X-Payment-Hash", string(paymentHash))
	w.Header().Set("X-Price-Sats", uintToString(inv.ValueSats))
	w.Header().Set("X-Content-CID", string(cid))
	w.Header().Set("X-Mint-Pubkey", string(mintPubkey))
	w.Write(data)
}

func (s *server) challengeL402(w http.ResponseWriter, r *http.Request, cid core.Hex32) {
	result, err := s.invoices.CreateInvoice(r.Context(), core.CreateInvoiceRequest{
		ValueSats: s.priceSats, Memo: string(cid), ExpirySecs: 900,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	s.rememberPending(result.PaymentHash, cid)

	w.Header().Set("WWW-Authenticate", "L402")
	w.WriteHeader(http.StatusPaymentRequired)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"invoice":      result.Bolt11,
		"payment_hash": result.PaymentHash,
		"price_sats":   s.priceSats,
		"expires_at":   nowUTC().Add(900 * secondsDuration).Unix(),
	})
}

func (s *server) handlePutFile(w http.ResponseWriter, r *http.Request) {
	fileRoot := core.Hex32(chi.URLParam(r, "fileRoot"))
	var m core.FileManifest
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		writeError(w, http.StatusBadRequest, core.TagInvalidField, err.Error())
		return
	}
	computed, err := core.CIDFromObject(m)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	if computed != fileRoot {
		writeError(w, http.StatusUnprocessableEntity, core.TagCIDMismatch, "manifest hash does not match path")
		return
	}
	if err := s.meta.PutManifest(r.Context(), fileRoot, m); err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	fileRoot := core.Hex32(chi.URLParam(r, "fileRoot"))
	m, ok, err := s.meta.GetManifest(r.Context(), fileRoot)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *server) handlePutAsset(w http.ResponseWriter, r *http.Request) {
	assetRoot := core.Hex32(chi.URLParam(r, "assetRoot"))
	var a core.AssetRoot
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		writeError(w, http.StatusBadRequest, core.TagInvalidField, err.Error())
		return
	}
	computed, err := core.CIDFromObject(a)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	if computed != assetRoot {
		writeError(w, http.StatusUnprocessableEntity, core.TagCIDMismatch, "asset hash does not match path")
		return
	}
	if err := s.meta.PutAsset(r.Context(), assetRoot, a); err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	assetRoot := core.Hex32(chi.URLParam(r, "assetRoot"))
	a, ok, err := s.meta.GetAsset(r.Context(), assetRoot)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func writeError(w http.ResponseWriter, status int, tag core.Tag, message string) {
	writeJSON(w, status, map[string]string{"error": string(tag), "message": message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
