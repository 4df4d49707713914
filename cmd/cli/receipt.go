package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"synnergy-storage-network/core"
)

func receiptVerifyHandler(cmd *cobra.Command, args []string) error {
	trustedFlag, _ := cmd.Flags().GetStringSlice("trusted-mint")
	fileRoot, _ := cmd.Flags().GetString("file-root")
	assetRoot, _ := cmd.Flags().GetString("asset-root")
	blockCID, _ := cmd.Flags().GetString("block-cid")
	hostPub, _ := cmd.Flags().GetString("host-pubkey")
	paymentHash, _ := cmd.Flags().GetString("payment-hash")
	responseHash, _ := cmd.Flags().GetString("response-hash")
	priceSats, _ := cmd.Flags().GetUint32("price-sats")
	receiptToken, _ := cmd.Flags().GetString("receipt-token")
	epoch, _ := cmd.Flags().GetUint32("epoch")
	nonce, _ := cmd.Flags().GetUint64("nonce")
	powHash, _ := cmd.Flags().GetString("pow-hash")
	clientPub, _ := cmd.Flags().GetString("client-pubkey")
	clientSig, _ := cmd.Flags().GetString("client-sig")

	_ = args
	r := core.ReceiptV2{
		AssetRoot: core.Hex32(assetRoot), FileRoot: core.Hex32(fileRoot), BlockCID: core.Hex32(blockCID),
		HostPubkey: core.Hex32(hostPub), PaymentHash: core.Hex32(paymentHash), ResponseHash: core.Hex32(responseHash),
		PriceSats: priceSats, ReceiptToken: receiptToken, Epoch: epoch, Nonce: nonce,
		PowHash: core.Hex32(powHash), ClientPubkey: core.Hex32(clientPub), ClientSig: clientSig,
	}

	trusted := make([]core.Hex32, 0, len(trustedFlag))
	for _, t := range trustedFlag {
		if t = strings.TrimSpace(t); t != "" {
			trusted = append(trusted, core.Hex32(t))
		}
	}

	if err := core.VerifyReceipt(r, trusted); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "ok")
	return nil
}

var receiptCmd = &cobra.Command{Use: "receipt", Short: "Verify payment receipts"}

var receiptVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify a ReceiptV2 against one or more trusted mint pubkeys",
	Args:  cobra.NoArgs,
	RunE:  receiptVerifyHandler,
}

func init() {
	f := receiptVerifyCmd.Flags()
	f.StringSlice("trusted-mint", nil, "trusted mint pubkey, hex (repeatable)")
	f.String("file-root", "", "file_root, hex")
	f.String("asset-root", "", "asset_root, hex (optional)")
	f.String("block-cid", "", "block_cid, hex")
	f.String("host-pubkey", "", "host_pubkey, hex")
	f.String("payment-hash", "", "payment_hash, hex")
	f.String("response-hash", "", "response_hash, hex")
	f.Uint32("price-sats", 0, "price_sats")
	f.String("receipt-token", "", "receipt_token, base64")
	f.Uint32("epoch", 0, "epoch")
	f.Uint64("nonce", 0, "pow nonce")
	f.String("pow-hash", "", "pow_hash, hex")
	f.String("client-pubkey", "", "client_pubkey, hex")
	f.String("client-sig", "", "client_sig, base64")
	receiptCmd.AddCommand(receiptVerifyCmd)
}
