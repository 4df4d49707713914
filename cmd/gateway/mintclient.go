package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"synnergy-storage-network/core"
)

const secondsDuration = time.Second

func nowUTC() time.Time { return time.Now().UTC() }

func uintToString(v uint64) string { return strconv.FormatUint(v, 10) }

func base64Encode(b []byte) string { return base64.StdEncoding.EncodeToString(b) }

// orDefault returns v unless it is empty, in which case it returns fallback.
func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// parseL402Authorization extracts the preimage from an "L402 <preimage>"
// Authorization header.
func parseL402Authorization(header string) (string, bool) {
	const prefix = "L402 "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	preimage := strings.TrimSpace(header[len(prefix):])
	return preimage, preimage != ""
}

// httpMintClient implements core.MintClient by calling a remote mint
// process over HTTP.
type httpMintClient struct {
	baseURL string
	client  *http.Client
}

func newHTTPMintClient(baseURL string) *httpMintClient {
	return &httpMintClient{baseURL: strings.TrimRight(baseURL, "/"), client: &http.Client{Timeout: 10 * time.Second}}
}

type mintSignRequest struct {
	HostPubkey   core.Hex32 `json:"host_pubkey"`
	Epoch        uint32     `json:"epoch"`
	BlockCID     core.Hex32 `json:"block_cid"`
	ResponseHash core.Hex32 `json:"response_hash"`
	PriceSats    uint32     `json:"price_sats"`
	PaymentHash  core.Hex32 `json:"payment_hash"`
}

type mintSignResponse struct {
	ReceiptToken string     `json:"receipt_token"`
	MintPubkey   core.Hex32 `json:"mint_pubkey"`
	Error        string     `json:"error"`
	Message      string     `json:"message"`
}

func (c *httpMintClient) SignReceipt(ctx context.Context, input core.MintInput) ([]byte, core.Hex32, error) {
	body, err := json.Marshal(mintSignRequest{
		HostPubkey: input.HostPubkey, Epoch: input.Epoch, BlockCID: input.BlockCID,
		ResponseHash: input.ResponseHash, PriceSats: input.PriceSats, PaymentHash: input.PaymentHash,
	})
	if err != nil {
		return nil, "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/sign", bytes.NewReader(body))
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, "", core.WrapError(core.TagMintUnavailable, err)
	}
	defer resp.Body.Close()

	var out mintSignResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, "", core.WrapError(core.TagMintUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", core.NewError(core.Tag(out.Error), "mint: %s", out.Message)
	}
	token, err := base64.StdEncoding.DecodeString(out.ReceiptToken)
	if err != nil {
		return nil, "", fmt.Errorf("mint: invalid receipt_token encoding: %w", err)
	}
	return token, out.MintPubkey, nil
}
