package timeseries

import (
	"cmp"
	"slices"
	"time"

	"github.com/feral-file/ff-nft-warehouse/internal/domain"
)

type ownerKey struct {
	Collection domain.CollectionKey
	Trader     string
}

// UpdateOwnerLedger adds the buyers and sellers of the month's countable transactions
// to the previous owner ledger, keeping the earliest first trade per (collection, trader)
func UpdateOwnerLedger(previous []domain.OwnerFirstSeen, txs []domain.Transaction) []domain.OwnerFirstSeen {
	first := make(map[ownerKey]time.Time, len(previous))
	keep := func(k ownerKey, ts time.Time) {
		if cur, ok := first[k]; !ok || ts.Before(cur) {
			first[k] = ts
		}
	}

	for _, o := range previous {
		keep(ownerKey{Collection: domain.CollectionKey{Category: o.Category, CollectionID: o.CollectionID}, Trader: o.Trader}, o.FirstSeen)
	}
	for _, tx := range txs {
		if !tx.Countable() {
			continue
		}
		coll := domain.CollectionKey{Category: tx.Category, CollectionID: tx.CollectionID}
		keep(ownerKey{Collection: coll, Trader: tx.Seller}, tx.Timestamp)
		keep(ownerKey{Collection: coll, Trader: tx.Buyer}, tx.Timestamp)
	}

	owners := make([]domain.OwnerFirstSeen, 0, len(first))
	for k, ts := range first {
		owners = append(owners, domain.OwnerFirstSeen{
			Category:     k.Collection.Category,
			CollectionID: k.Collection.CollectionID,
			Trader:       k.Trader,
			FirstSeen:    ts,
		})
	}
	slices.SortFunc(owners, func(a, b domain.OwnerFirstSeen) int {
		return cmp.Or(
			cmp.Compare(a.Category, b.Category),
			cmp.Compare(a.CollectionID, b.CollectionID),
			cmp.Compare(a.Trader, b.Trader),
		)
	})
	return owners
}

// SeedTokenLedger derives a token ledger from a KPI table when no persisted ledger exists
func SeedTokenLedger(rows []domain.KPIRow) []domain.TokenFirstSeen {
	return mergeTokens(nil, func(add func(domain.TokenKey, time.Time)) {
		for _, r := range rows {
			add(r.TokenKey(), domain.Day(r.Timestamp))
		}
	})
}

// UpdateTokenLedger adds the tokens of the month's countable transactions to the
// previous token ledger, keeping the earliest first-seen date per token
func UpdateTokenLedger(previous []domain.TokenFirstSeen, txs []domain.Transaction) []domain.TokenFirstSeen {
	return mergeTokens(previous, func(add func(domain.TokenKey, time.Time)) {
		for _, tx := range txs {
			if tx.Countable() {
				add(domain.TokenKey{Category: tx.Category, CollectionID: tx.CollectionID, TokenID: tx.TokenID}, domain.Day(tx.Timestamp))
			}
		}
	})
}

func mergeTokens(previous []domain.TokenFirstSeen, source func(add func(domain.TokenKey, time.Time))) []domain.TokenFirstSeen {
	first := make(map[domain.TokenKey]time.Time, len(previous))
	add := func(k domain.TokenKey, day time.Time) {
		if cur, ok := first[k]; !ok || day.Before(cur) {
			first[k] = day
		}
	}
	for _, t := range previous {
		add(domain.TokenKey{Category: t.Category, CollectionID: t.CollectionID, TokenID: t.TokenID}, t.FirstSeen)
	}
	source(add)

	tokens := make([]domain.TokenFirstSeen, 0, len(first))
	for k, day := range first {
		tokens = append(tokens, domain.TokenFirstSeen{
			Category:     k.Category,
			CollectionID: k.CollectionID,
			TokenID:      k.TokenID,
			FirstSeen:    day,
		})
	}
	slices.SortFunc(tokens, func(a, b domain.TokenFirstSeen) int {
		return cmp.Or(
			cmp.Compare(a.Category, b.Category),
			cmp.Compare(a.CollectionID, b.CollectionID),
			cmp.Compare(a.TokenID, b.TokenID),
		)
	})
	return tokens
}
