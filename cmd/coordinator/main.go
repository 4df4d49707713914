// Command coordinator is the protocol's ingest and bookkeeping edge: it
// accepts signed events, maintains bounty pools, pin contracts and the
// host registry, and drives epoch settlement on a ticking scheduler.
package main

import (
	"context"
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

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		logrus.WithError(err).Warn("coordinator: no config file found, using env vars and defaults")
		cfg = &config.Config{}
	}

	listenAddr := utils.EnvOrDefault("COORDINATOR_LISTEN_ADDR", orDefault(cfg.Coordinator.ListenAddr, ":8081"))
	dataDir := utils.EnvOrDefault("COORDINATOR_DATA_DIR", orDefault(cfg.Storage.DataDir, "./data"))
	genesisRFC3339 := utils.EnvOrDefault("COORDINATOR_GENESIS_TIME", orDefault(cfg.Coordinator.GenesisTimeRFC3339, "2026-01-01T00:00:00Z"))
	tickIntervalSeconds := utils.EnvOrDefaultInt("COORDINATOR_TICK_INTERVAL_SECONDS", 60)
	if cfg.Coordinator.TickIntervalSeconds > 0 {
		tickIntervalSeconds = utils.EnvOrDefaultInt("COORDINATOR_TICK_INTERVAL_SECONDS", cfg.Coordinator.TickIntervalSeconds)
	}
	tickInterval := time.Duration(tickIntervalSeconds) * time.Second
	founderRoyaltyBps := utils.EnvOrDefaultUint64("COORDINATOR_FOUNDER_ROYALTY_BPS", 500)

	if genesis, err := time.Parse(time.RFC3339, genesisRFC3339); err == nil {
		core.SetGenesisTime(genesis)
	} else {
		logrus.WithError(err).Warn("coordinator: invalid genesis time, keeping default")
	}

	receipts, err := store.NewReceiptStore(dataDir + "/receipts.json")
	if err != nil {
		logrus.WithError(err).Fatal("coordinator: open receipt store")
	}
	hosts, err := store.NewHostStore(dataDir + "/hosts.json")
	if err != nil {
		logrus.WithError(err).Fatal("coordinator: open host store")
	}
	bounties, err := store.NewBountyStore(dataDir + "/bounties.json")
	if err != nil {
		logrus.WithError(err).Fatal("coordinator: open bounty store")
	}
	pins, err := store.NewPinStore(dataDir + "/pins.json")
	if err != nil {
		logrus.WithError(err).Fatal("coordinator: open pin store")
	}
	summaries, err := store.NewEpochSummaryStore(dataDir + "/summaries.json")
	if err != nil {
		logrus.WithError(err).Fatal("coordinator: open summary store")
	}
	eventLog, err := store.NewEventLogStore(dataDir + "/events.json")
	if err != nil {
		logrus.WithError(err).Fatal("coordinator: open event log store")
	}

	deps := core.SettlementDeps{
		Receipts: receipts, Hosts: hosts, Bounties: bounties, Pins: pins,
		Summaries: summaries, Log: eventLog, Logger: logrus.NewEntry(logrus.StandardLogger()),
	}

	srv := &server{
		hosts: hosts, bounties: bounties, pins: pins, summaries: summaries,
		log: eventLog, founderRoyaltyBps: founderRoyaltyBps,
	}

	sweeper := &availabilitySweeper{hosts: hosts, logger: logrus.NewEntry(logrus.StandardLogger())}
	scheduler := core.NewEpochScheduler(deps, sweeper, tickInterval)
	go scheduler.Run(context.Background())

	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Post("/event", srv.handleEvent)
	r.Get("/bounty/{cid}", srv.handleGetBounty)
	r.Get("/directory", srv.handleDirectory)
	r.Get("/pricing", srv.handlePricing)
	r.Post("/pin", srv.handleCreatePin)
	r.Get("/pin/{id}", srv.handleGetPin)
	r.Post("/pin/{id}/cancel", srv.handleCancelPin)
	r.Get("/epoch/summary/{epoch}", srv.handleEpochSummary)

	logrus.Infof("coordinator listening on %s", listenAddr)
	if err := http.ListenAndServe(listenAddr, r); err != nil {
		logrus.WithError(err).Fatal("coordinator: serve")
	}
}
