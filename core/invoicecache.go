package core

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// invoiceCacheEntry is a single TTL-bounded invoice record.
type invoiceCacheEntry struct {
	invoice Invoice
	expiry  time.Time
}

// InvoiceCache is an in-memory InvoicePort backed by a bounded LRU cache
// with per-entry TTL eviction, protecting against unbounded growth: entries
// expire lazily on access plus a full sweep on every CreateInvoice and
// LookupInvoice call. It is a
// lightweight reference implementation — production deployments talk to a
// real Lightning node instead.
type InvoiceCache struct {
	mu    sync.Mutex
	cache *lru.Cache[Hex32, *invoiceCacheEntry]
	ttl   time.Duration
	now   func() time.Time

	// autoSettle, when true, marks every created invoice settled
	// immediately (useful for exercising the mint/gateway flow without a
	// real Lightning node).
	autoSettle bool
}

// NewInvoiceCache builds an InvoiceCache with the given capacity and TTL.
// ttl <= 0 defaults to 10 minutes.
func NewInvoiceCache(capacity int, ttl time.Duration) (*InvoiceCache, error) {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	c, err := lru.New[Hex32, *invoiceCacheEntry](capacity)
	if err != nil {
		return nil, err
	}
	return &InvoiceCache{cache: c, ttl: ttl, now: time.Now}, nil
}

// SetAutoSettle toggles whether newly created invoices are immediately
// marked settled — useful for tests and demo deployments.
func (c *InvoiceCache) SetAutoSettle(v bool) { c.autoSettle = v }

// CreateInvoice implements InvoicePort.
func (c *InvoiceCache) CreateInvoice(_ context.Context, req CreateInvoiceRequest) (CreateInvoiceResult, error) {
	var raw [32]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return CreateInvoiceResult{}, err
	}
	paymentHash := Hex32(hex.EncodeToString(sha256Sum(raw[:])))

	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweepLocked()

	inv := Invoice{PaymentHash: paymentHash, ValueSats: req.ValueSats, State: InvoiceOpen}
	if c.autoSettle {
		inv.State = InvoiceSettled
		inv.Settled = true
		inv.AmtPaidSats = req.ValueSats
	}
	c.cache.Add(paymentHash, &invoiceCacheEntry{invoice: inv, expiry: c.now().Add(c.ttl)})
	return CreateInvoiceResult{PaymentHash: paymentHash, Bolt11: "lnbc_test_" + string(paymentHash)[:16]}, nil
}

// LookupInvoice implements InvoicePort.
func (c *InvoiceCache) LookupInvoice(_ context.Context, paymentHash Hex32) (Invoice, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweepLocked()

	entry, ok := c.cache.Get(paymentHash)
	if !ok {
		return Invoice{}, NewError(TagUnknownPayment, "invoicecache: unknown payment_hash %s", paymentHash)
	}
	if c.now().After(entry.expiry) {
		c.cache.Remove(paymentHash)
		return Invoice{}, NewError(TagUnknownPayment, "invoicecache: payment_hash %s expired", paymentHash)
	}
	return entry.invoice, nil
}

// MarkSettled simulates a Lightning settlement callback arriving for an
// invoice previously created by this cache.
func (c *InvoiceCache) MarkSettled(paymentHash Hex32, amtPaidSats uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.cache.Get(paymentHash)
	if !ok {
		return NewError(TagUnknownPayment, "invoicecache: unknown payment_hash %s", paymentHash)
	}
	entry.invoice.Settled = true
	entry.invoice.State = InvoiceSettled
	entry.invoice.AmtPaidSats = amtPaidSats
	return nil
}

// sweepLocked performs a full eviction pass across every cached entry; it
// runs at the start of every CreateInvoice and LookupInvoice call, in
// addition to the lazy per-access expiry check above. Callers must hold
// c.mu.
func (c *InvoiceCache) sweepLocked() {
	now := c.now()
	for _, key := range c.cache.Keys() {
		entry, ok := c.cache.Peek(key)
		if ok && now.After(entry.expiry) {
			c.cache.Remove(key)
		}
	}
}

func sha256Sum(b []byte) []byte {
	h := sha256.Sum256(b)
	return h[:]
}
