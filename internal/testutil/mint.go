package testutil

import (
	"context"
	"sync"

	"synnergy-storage-network/core"
)

// MintClient is an in-process core.MintClient that signs directly against a
// core.Mint instead of making an HTTP round trip, for exercising gateway and
// coordinator code without a network.
type MintClient struct {
	mint *core.Mint
}

func NewMintClient(mint *core.Mint) *MintClient {
	return &MintClient{mint: mint}
}

func (c *MintClient) SignReceipt(ctx context.Context, input core.MintInput) ([]byte, core.Hex32, error) {
	tok, err := c.mint.SignReceipt(ctx, input)
	if err != nil {
		return nil, "", err
	}
	return tok, c.mint.PublicKey(), nil
}

// Sweeper is a no-op core.AvailabilitySweeper that counts invocations, for
// asserting a scheduler tick ran its sweep step.
type Sweeper struct {
	mu    sync.Mutex
	calls int
	err   error
}

func NewSweeper(err error) *Sweeper { return &Sweeper{err: err} }

func (s *Sweeper) Sweep(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.err
}

func (s *Sweeper) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
