package core

// AggregateReceipts groups a finite sequence of ReceiptDigest by (host, cid)
// into EpochGroups. It is a pure function: the iteration order of the input
// does not affect the output as a multiset, and the returned slice's own
// order is not a contract callers may rely on.
//
// Duplicate payment_hash entries are not deduplicated here — a receipt
// digest has no payment_hash field — and the ReceiptStore implementations
// keep every receipt they are given, so receipts that share a payment_hash
// each add to receipt_count while adding nothing to unique_clients; the
// eligibility threshold bounds the economic effect of such duplication.
func AggregateReceipts(digests []ReceiptDigest) []EpochGroup {
	type key struct{ host, cid Hex32 }
	counts := make(map[key]int)
	clients := make(map[key]map[Hex32]bool)
	order := make([]key, 0)

	for _, d := range digests {
		k := key{d.Host, d.CID}
		if _, ok := counts[k]; !ok {
			order = append(order, k)
			clients[k] = make(map[Hex32]bool)
		}
		counts[k]++
		clients[k][d.Client] = true
	}

	groups := make([]EpochGroup, 0, len(order))
	for _, k := range order {
		groups = append(groups, EpochGroup{
			Host:          k.host,
			CID:           k.cid,
			ReceiptCount:  counts[k],
			UniqueClients: len(clients[k]),
		})
	}
	return groups
}
