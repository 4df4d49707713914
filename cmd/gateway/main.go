// Command gateway is the storage edge of the network: it serves blocks,
// file manifests and asset roots over HTTP, gating paid block fetches
// behind an L402 challenge/response flow.
package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"synnergy-storage-network/core"
	"synnergy-storage-network/internal/store"
	"synnergy-storage-network/pkg/config"
	"synnergy-storage-network/pkg/utils"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		logrus.WithError(err).Warn("gateway: no config file found, using env vars and defaults")
		cfg = &config.Config{}
	}

	listenAddr := utils.EnvOrDefault("GATEWAY_LISTEN_ADDR", orDefault(cfg.Gateway.ListenAddr, ":8080"))
	dataDir := utils.EnvOrDefault("GATEWAY_DATA_DIR", orDefault(cfg.Storage.DataDir, "./data"))
	mintURL := utils.EnvOrDefault("GATEWAY_MINT_URL", "http://localhost:8082")
	hostPubkey := utils.EnvOrDefault("GATEWAY_HOST_PUBKEY", "")
	priceSats := utils.EnvOrDefaultUint64("GATEWAY_PRICE_SATS", 10)
	invoiceTTLSeconds := cfg.Mint.InvoiceTTLSeconds
	if invoiceTTLSeconds <= 0 {
		invoiceTTLSeconds = 900
	}
	invoiceTTL := time.Duration(utils.EnvOrDefaultInt("GATEWAY_INVOICE_TTL_SECONDS", invoiceTTLSeconds)) * time.Second
	autoSettle := utils.EnvOrDefault("GATEWAY_AUTO_SETTLE_INVOICES", "true") == "true"

	blocks, err := store.NewBlockStore(dataDir + "/blocks")
	if err != nil {
		logrus.WithError(err).Fatal("gateway: open block store")
	}
	meta, err := store.NewMetadataStore(dataDir + "/metadata.json")
	if err != nil {
		logrus.WithError(err).Fatal("gateway: open metadata store")
	}
	invoices, err := core.NewInvoiceCache(10000, invoiceTTL)
	if err != nil {
		logrus.WithError(err).Fatal("gateway: init invoice cache")
	}
	invoices.SetAutoSettle(autoSettle)

	srv := &server{
		blocks:     blocks,
		meta:       meta,
		invoices:   invoices,
		mint:       newHTTPMintClient(mintURL),
		hostPubkey: core.Hex32(hostPubkey),
		priceSats:  priceSats,
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Put("/block/{cid}", srv.handlePutBlock)
	r.Get("/block/{cid}", srv.handleGetBlock)
	r.Put("/file/{fileRoot}", srv.handlePutFile)
	r.Get("/file/{fileRoot}", srv.handleGetFile)
	r.Put("/asset/{assetRoot}", srv.handlePutAsset)
	r.Get("/asset/{assetRoot}", srv.handleGetAsset)

	logrus.Infof("gateway listening on %s", listenAddr)
	if err := http.ListenAndServe(listenAddr, r); err != nil {
		logrus.WithError(err).Fatal("gateway: serve")
	}
}
