package main

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"

	"synnergy-storage-network/core"
)

// loadOrCreateSeed reads a hex-encoded Ed25519 private key from path,
// generating and persisting a fresh one on first run. The mint never
// accepts a seed over the network; operators provision it out of band.
func loadOrCreateSeed(path string) (ed25519.PrivateKey, core.Hex32, error) {
	raw, err := os.ReadFile(path)
	if err == nil {
		seed, decodeErr := hex.DecodeString(string(raw))
		if decodeErr != nil || len(seed) != ed25519.PrivateKeySize {
			return nil, "", fmt.Errorf("mint seed file %s is not a valid ed25519 private key", path)
		}
		priv := ed25519.PrivateKey(seed)
		pub := priv.Public().(ed25519.PublicKey)
		return priv, core.Hex32(hex.EncodeToString(pub)), nil
	}
	if !os.IsNotExist(err) {
		return nil, "", err
	}
	priv, pub, genErr := core.GenerateSigningKey()
	if genErr != nil {
		return nil, "", genErr
	}
	if writeErr := os.WriteFile(path, []byte(hex.EncodeToString(priv)), 0o600); writeErr != nil {
		return nil, "", writeErr
	}
	return priv, pub, nil
}

func base64Encode(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// orDefault returns v unless it is empty, in which case it returns fallback.
func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
