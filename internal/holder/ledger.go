package holder

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/feral-file/ff-nft-warehouse/internal/domain"
)

// side accumulates one trader's sells or buys of a token
type side struct {
	latestDate  time.Time
	latestPrice float64
	amount      float64
	count       int64
	mintCount   int64
	mintUSD     float64
}

func (s *side) add(tx domain.Transaction, possibleMint bool) {
	if s.count == 0 || !tx.Timestamp.Before(s.latestDate) {
		s.latestDate = tx.Timestamp
		s.latestPrice = tx.ValueUSD
	}
	s.amount += tx.ValueUSD
	s.count++
	if possibleMint {
		s.mintCount++
		s.mintUSD += tx.ValueUSD
	}
}

// BuildRaw aggregates one month of transactions into ledger rows per (token, trader).
// Duplicate and unknown-value transactions are ignored. The mint fields hold the
// possible-mint signal: sales at the token's first timestamp of the batch, counted on the seller.
func BuildRaw(txs []domain.Transaction) []domain.HolderEntry {
	countable := make([]domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Countable() {
			countable = append(countable, tx)
		}
	}
	slices.SortStableFunc(countable, func(a, b domain.Transaction) int {
		return cmp.Or(
			cmp.Compare(a.CollectionID, b.CollectionID),
			cmp.Compare(a.TokenID, b.TokenID),
			a.Timestamp.Compare(b.Timestamp),
		)
	})

	firstSale := make(map[domain.TokenKey]time.Time)
	sellers := make(map[domain.HolderKey]*side)
	buyers := make(map[domain.HolderKey]*side)
	var order []domain.HolderKey

	track := func(k domain.HolderKey) {
		if sellers[k] == nil && buyers[k] == nil {
			order = append(order, k)
		}
	}

	for _, tx := range countable {
		tk := domain.TokenKey{Category: tx.Category, CollectionID: tx.CollectionID, TokenID: tx.TokenID}
		first, ok := firstSale[tk]
		if !ok {
			first = tx.Timestamp
			firstSale[tk] = first
		}
		possibleMint := tx.Timestamp.Equal(first)

		sk := domain.HolderKey{Category: tx.Category, CollectionID: tx.CollectionID, TokenID: tx.TokenID, Trader: tx.Seller}
		track(sk)
		if sellers[sk] == nil {
			sellers[sk] = &side{}
		}
		sellers[sk].add(tx, possibleMint)

		bk := domain.HolderKey{Category: tx.Category, CollectionID: tx.CollectionID, TokenID: tx.TokenID, Trader: tx.Buyer}
		track(bk)
		if buyers[bk] == nil {
			buyers[bk] = &side{}
		}
		buyers[bk].add(tx, false)
	}

	entries := make([]domain.HolderEntry, 0, len(order))
	for _, k := range order {
		e := domain.HolderEntry{
			Category:        k.Category,
			CollectionID:    k.CollectionID,
			TokenID:         k.TokenID,
			Trader:          k.Trader,
			SellPriceLatest: math.NaN(),
			BuyPriceLatest:  math.NaN(),
		}
		if s := sellers[k]; s != nil {
			e.SellDateLatest = s.latestDate
			e.SellPriceLatest = s.latestPrice
			e.SellAmountUSD = s.amount
			e.SellCount = s.count
			e.MintCount = s.mintCount
			e.MintUSD = s.mintUSD
		}
		if b := buyers[k]; b != nil {
			e.BuyDateLatest = b.latestDate
			e.BuyPriceLatest = b.latestPrice
			e.BuyAmountUSD = b.amount
			e.BuyCount = b.count
		}
		e.Holding = isHolding(e)
		entries = append(entries, e)
	}
	sortEntries(entries)
	return entries
}

// isHolding reports whether the trader never sold the token or bought it after the latest sell
func isHolding(e domain.HolderEntry) bool {
	if e.SellDateLatest.IsZero() {
		return true
	}
	return !e.BuyDateLatest.IsZero() && e.BuyDateLatest.After(e.SellDateLatest)
}

// Merge combines the previous month's ledger with this month's raw rows.
// Only the previous holders are carried. Per field group:
//
//	field group              | only new          | only old | both
//	holding                  | new               | old      | new
//	latest dates and prices  | new               | old      | new if known, else old
//	counts and amounts       | new               | old      | old + new
//	mint count and amount    | new possible mint | old      | old
func Merge(previous, fresh []domain.HolderEntry) []domain.HolderEntry {
	merged := make(map[domain.HolderKey]domain.HolderEntry, len(previous)+len(fresh))
	for _, old := range previous {
		if old.Holding {
			merged[old.Key()] = old
		}
	}

	for _, n := range fresh {
		old, ok := merged[n.Key()]
		if !ok {
			merged[n.Key()] = n
			continue
		}
		merged[n.Key()] = mergeEntry(old, n)
	}

	entries := make([]domain.HolderEntry, 0, len(merged))
	for _, e := range merged {
		entries = append(entries, e)
	}
	sortEntries(entries)
	return entries
}

func mergeEntry(old, n domain.HolderEntry) domain.HolderEntry {
	e := old
	e.Holding = n.Holding

	e.SellDateLatest = newerTime(old.SellDateLatest, n.SellDateLatest)
	e.SellPriceLatest = knownFloat(old.SellPriceLatest, n.SellPriceLatest)
	e.BuyDateLatest = newerTime(old.BuyDateLatest, n.BuyDateLatest)
	e.BuyPriceLatest = knownFloat(old.BuyPriceLatest, n.BuyPriceLatest)

	e.SellCount = old.SellCount + n.SellCount
	e.SellAmountUSD = zeroIfNaN(old.SellAmountUSD) + zeroIfNaN(n.SellAmountUSD)
	e.BuyCount = old.BuyCount + n.BuyCount
	e.BuyAmountUSD = zeroIfNaN(old.BuyAmountUSD) + zeroIfNaN(n.BuyAmountUSD)
	return e
}

// newerTime takes the new value when it is present
func newerTime(old, n time.Time) time.Time {
	if n.IsZero() {
		return old
	}
	return n
}

func knownFloat(old, n float64) float64 {
	if math.IsNaN(n) {
		return old
	}
	return n
}

func zeroIfNaN(f float64) float64 {
	if math.IsNaN(f) {
		return 0
	}
	return f
}

func sortEntries(entries []domain.HolderEntry) {
	slices.SortFunc(entries, func(a, b domain.HolderEntry) int {
		return cmp.Or(
			cmp.Compare(a.Category, b.Category),
			cmp.Compare(a.CollectionID, b.CollectionID),
			cmp.Compare(a.TokenID, b.TokenID),
			cmp.Compare(a.Trader, b.Trader),
		)
	})
}
