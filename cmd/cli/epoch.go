package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"synnergy-storage-network/core"
	"synnergy-storage-network/internal/store"
)

// openStores wires the shared on-disk stores settlement needs, rooted at
// dataDir, following the gateway and coordinator's own store layout.
func openStores(dataDir string) (core.SettlementDeps, error) {
	receipts, err := store.NewReceiptStore(filepath.Join(dataDir, "receipts.json"))
	if err != nil {
		return core.SettlementDeps{}, err
	}
	hosts, err := store.NewHostStore(filepath.Join(dataDir, "hosts.json"))
	if err != nil {
		return core.SettlementDeps{}, err
	}
	bounties, err := store.NewBountyStore(filepath.Join(dataDir, "bounties.json"))
	if err != nil {
		return core.SettlementDeps{}, err
	}
	pins, err := store.NewPinStore(filepath.Join(dataDir, "pins.json"))
	if err != nil {
		return core.SettlementDeps{}, err
	}
	summaries, err := store.NewEpochSummaryStore(filepath.Join(dataDir, "summaries.json"))
	if err != nil {
		return core.SettlementDeps{}, err
	}
	log, err := store.NewEventLogStore(filepath.Join(dataDir, "events.json"))
	if err != nil {
		return core.SettlementDeps{}, err
	}
	return core.SettlementDeps{
		Receipts: receipts, Hosts: hosts, Bounties: bounties, Pins: pins,
		Summaries: summaries, Log: log, Logger: logrus.NewEntry(logrus.StandardLogger()),
	}, nil
}

func epochSettleHandler(cmd *cobra.Command, args []string) error {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	epoch, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid epoch %q: %w", args[0], err)
	}

	deps, err := openStores(dataDir)
	if err != nil {
		return err
	}
	result, err := core.SettleEpoch(context.Background(), uint32(epoch), deps)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "epoch=%d groups=%d eligible=%d paid=%d total_paid_sats=%d aggregator_fee_sats=%d\n",
		result.Epoch, result.TotalGroups, result.EligibleGroups, result.PaidGroups, result.TotalPaidSats, result.TotalAggregatorFeeSats)
	return nil
}

func epochSummaryHandler(cmd *cobra.Command, args []string) error {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	epoch, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid epoch %q: %w", args[0], err)
	}
	summaries, err := store.NewEpochSummaryStore(filepath.Join(dataDir, "summaries.json"))
	if err != nil {
		return err
	}
	rows := summaries.SummariesForEpoch(uint32(epoch))
	if len(rows) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no summaries for this epoch")
		return nil
	}
	for _, r := range rows {
		fmt.Fprintf(cmd.OutOrStdout(), "host=%s cid=%s receipts=%d clients=%d eligible=%t reward_sats=%d\n",
			r.Host, r.CID, r.ReceiptCount, r.UniqueClients, r.Eligible, r.RewardSats)
	}
	return nil
}

var epochCmd = &cobra.Command{Use: "epoch", Short: "Drive and inspect epoch settlement"}

var epochSettleCmd = &cobra.Command{
	Use:   "settle <epoch>",
	Short: "Run settlement for one epoch against the on-disk stores",
	Args:  cobra.ExactArgs(1),
	RunE:  epochSettleHandler,
}

var epochSummaryCmd = &cobra.Command{
	Use:   "summary <epoch>",
	Short: "Print the persisted EpochSummary rows for one epoch",
	Args:  cobra.ExactArgs(1),
	RunE:  epochSummaryHandler,
}

func init() {
	epochSettleCmd.Flags().String("data-dir", "./data", "on-disk store directory")
	epochSummaryCmd.Flags().String("data-dir", "./data", "on-disk store directory")
	epochCmd.AddCommand(epochSettleCmd, epochSummaryCmd)
}
