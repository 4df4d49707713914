// Command mint is the isolated signing oracle: it holds the Ed25519 seed
// in memory and signs receipt tokens. It keeps no receipt history. This
// binary wires no InvoicePort, so core.Mint's settlement check is skipped.
package main

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"synnergy-storage-network/core"
	"synnergy-storage-network/pkg/config"
	"synnergy-storage-network/pkg/utils"
)

type signRequest struct {
	HostPubkey   core.Hex32 `json:"host_pubkey"`
	Epoch        uint32     `json:"epoch"`
	BlockCID     core.Hex32 `json:"block_cid"`
	ResponseHash core.Hex32 `json:"response_hash"`
	PriceSats    uint32     `json:"price_sats"`
	PaymentHash  core.Hex32 `json:"payment_hash"`
}

type signResponse struct {
	ReceiptToken string     `json:"receipt_token"`
	MintPubkey   core.Hex32 `json:"mint_pubkey"`
}

type server struct {
	mint *core.Mint
}

func (s *server) handleSign(w http.ResponseWriter, r *http.Request) {
	var req signRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, core.TagInvalidField, err.Error())
		return
	}
	token, err := s.mint.SignReceipt(r.Context(), core.MintInput{
		HostPubkey: req.HostPubkey, Epoch: req.Epoch, BlockCID: req.BlockCID,
		ResponseHash: req.ResponseHash, PriceSats: req.PriceSats, PaymentHash: req.PaymentHash,
	})
	if err != nil {
		writeMintError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, signResponse{
		ReceiptToken: base64Encode(token), MintPubkey: s.mint.PublicKey(),
	})
}

func (s *server) handlePubkey(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]core.Hex32{"mint_pubkey": s.mint.PublicKey()})
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeMintError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	tag := core.Tag("internal")
	switch {
	case core.HasTag(err, core.TagNotSettled):
		status, tag = http.StatusPaymentRequired, core.TagNotSettled
	case core.HasTag(err, core.TagUnderpaid):
		status, tag = http.StatusPaymentRequired, core.TagUnderpaid
	case core.HasTag(err, core.TagLndUnavailable):
		status, tag = http.StatusBadGateway, core.TagLndUnavailable
	case core.HasTag(err, core.TagInvalidField):
		status, tag = http.StatusBadRequest, core.TagInvalidField
	}
	writeError(w, status, tag, err.Error())
}

func writeError(w http.ResponseWriter, status int, tag core.Tag, message string) {
	writeJSON(w, status, map[string]string{"error": string(tag), "message": message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		logrus.WithError(err).Warn("mint: no config file found, using env vars and defaults")
		cfg = &config.Config{}
	}

	seedPath := utils.EnvOrDefault("MINT_SEED_PATH", orDefault(cfg.Mint.SeedHexPath, "./mint.seed"))
	listenAddr := utils.EnvOrDefault("MINT_LISTEN_ADDR", orDefault(cfg.Mint.ListenAddr, ":8082"))

	seed, pub, err := loadOrCreateSeed(seedPath)
	if err != nil {
		logrus.WithError(err).Fatal("mint: load seed")
	}

	// No InvoicePort is wired here: settlement is already checked by the
	// gateway process against its own invoice cache before it ever calls
	// /sign (see cmd/gateway/server.go's serveL402Block), and a nil port is
	// the documented way to skip core.Mint's own redundant check (the two
	// processes don't share an invoice backend in this deployment).
	mint := core.NewMint(seed, nil)
	srv := &server{mint: mint}

	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Post("/sign", srv.handleSign)
	r.Get("/pubkey", srv.handlePubkey)
	r.Get("/health", srv.handleHealth)

	logrus.Infof("mint listening on %s, pubkey=%s", listenAddr, pub)
	if err := http.ListenAndServe(listenAddr, r); err != nil {
		logrus.WithError(err).Fatal("mint: serve")
	}
}
