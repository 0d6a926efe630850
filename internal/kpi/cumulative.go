package kpi

import (
	"cmp"
	"slices"

	"github.com/feral-file/ff-nft-warehouse/internal/domain"
)

// JoinReport describes the token master join of one build
type JoinReport struct {
	// Expected is the number of matched transactions
	Expected int
	// Actual is the number of rows after the join, larger than Expected when master keys repeat
	Actual int
	// Unmatched is the number of transactions without a token master record
	Unmatched int
}

// Duplicated reports whether the join multiplied rows
func (r JoinReport) Duplicated() bool {
	return r.Actual > r.Expected
}

type masterKey struct {
	CollectionID string
	TokenID      string
}

type minterKey struct {
	Category domain.Category
	Minter   string
}

type carryKey struct {
	Token  domain.TokenKey
	Minter string
}

// Build computes the KPI rows of one month. previous is the KPI table of the month
// before and may be empty for the first month. Carried rows come first, followed by
// the in-month rows ordered by token and time.
func Build(txs []domain.Transaction, tokens []domain.Token, ledger []domain.HolderEntry, previous []domain.KPIRow) ([]domain.KPIRow, JoinReport) {
	fresh, report := join(txs, tokens)

	tokenPass(fresh)
	collectionPass(fresh)
	minterPass(fresh)

	owners := parallelOwners(ledger)
	for i := range fresh {
		fresh[i].ParallelOwnersMax = owners[fresh[i].TokenKey()]
	}

	if len(previous) > 0 {
		applyOffsets(fresh, previous)
	}

	sortByToken(fresh)
	rows := append(carried(previous, fresh), fresh...)
	return rows, report
}

// join pairs each countable transaction with its token master records
func join(txs []domain.Transaction, tokens []domain.Token) ([]domain.KPIRow, JoinReport) {
	master := make(map[masterKey][]domain.Token, len(tokens))
	for _, tok := range tokens {
		k := masterKey{CollectionID: tok.CollectionID, TokenID: tok.TokenID}
		master[k] = append(master[k], tok)
	}

	var report JoinReport
	rows := make([]domain.KPIRow, 0, len(txs))
	for _, tx := range txs {
		if !tx.Countable() {
			continue
		}
		matches := master[masterKey{CollectionID: tx.CollectionID, TokenID: tx.TokenID}]
		if len(matches) == 0 {
			report.Unmatched++
			continue
		}
		report.Expected++
		for _, tok := range matches {
			row := domain.KPIRow{
				Category:     tx.Category,
				CollectionID: tx.CollectionID,
				TokenID:      tx.TokenID,
				Minter:       tok.MinterAddress,
				Timestamp:    tx.Timestamp,
				ValueUSD:     tx.ValueUSD,
				Count:        1,
				InMonth:      true,
			}
			if !tok.MintDate.IsZero() {
				row.TenureDays = domain.DaysBetween(tok.MintDate, tx.Timestamp)
			}
			rows = append(rows, row)
		}
	}
	report.Actual = len(rows)
	return rows, report
}

// cumulate runs a cumulative count and USD sum over the rows grouped by key, in time order
func cumulate[K comparable](rows []domain.KPIRow, key func(domain.KPIRow) K, less func(a, b domain.KPIRow) int, set func(*domain.KPIRow, int64, float64)) {
	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		return cmp.Or(less(rows[a], rows[b]), rows[a].Timestamp.Compare(rows[b].Timestamp))
	})

	counts := make(map[K]int64)
	sums := make(map[K]float64)
	for _, i := range idx {
		k := key(rows[i])
		counts[k] += rows[i].Count
		sums[k] += rows[i].ValueUSD
		set(&rows[i], counts[k], sums[k])
	}
}

func tokenPass(rows []domain.KPIRow) {
	cumulate(rows,
		domain.KPIRow.TokenKey,
		compareToken,
		func(r *domain.KPIRow, count int64, usd float64) {
			r.TokenCountCum = count
			r.TokenUSDCum = usd
		},
	)
}

func collectionPass(rows []domain.KPIRow) {
	cumulate(rows,
		collectionKey,
		compareCollection,
		func(r *domain.KPIRow, count int64, usd float64) {
			r.CollectionCountCum = count
			r.CollectionUSDCum = usd
		},
	)
}

func minterPass(rows []domain.KPIRow) {
	cumulate(rows,
		minterOf,
		compareMinter,
		func(r *domain.KPIRow, count int64, usd float64) {
			r.MinterCountCum = count
			r.MinterUSDCum = usd
		},
	)
}

func collectionKey(r domain.KPIRow) domain.CollectionKey {
	return domain.CollectionKey{Category: r.Category, CollectionID: r.CollectionID}
}

func minterOf(r domain.KPIRow) minterKey {
	return minterKey{Category: r.Category, Minter: r.Minter}
}

// parallelOwners counts the current holders of each token
func parallelOwners(ledger []domain.HolderEntry) map[domain.TokenKey]int64 {
	owners := make(map[domain.TokenKey]int64)
	for _, e := range ledger {
		if e.Holding {
			owners[domain.TokenKey{Category: e.Category, CollectionID: e.CollectionID, TokenID: e.TokenID}]++
		}
	}
	return owners
}

// lastBy returns the last row per group after a stable sort by group, time and the tie-break
func lastBy[K comparable](rows []domain.KPIRow, key func(domain.KPIRow) K, less func(a, b domain.KPIRow) int, tie func(domain.KPIRow) int64) map[K]domain.KPIRow {
	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, func(a, b domain.KPIRow) int {
		return cmp.Or(
			less(a, b),
			a.Timestamp.Compare(b.Timestamp),
			cmp.Compare(tie(a), tie(b)),
		)
	})

	last := make(map[K]domain.KPIRow)
	for _, r := range sorted {
		last[key(r)] = r
	}
	return last
}

// applyOffsets adds the previous month's last cumulative values to the fresh rows
func applyOffsets(fresh, previous []domain.KPIRow) {
	tokens := lastBy(previous, domain.KPIRow.TokenKey, compareToken, func(r domain.KPIRow) int64 { return r.TokenCountCum })
	collections := lastBy(previous, collectionKey, compareCollection, func(r domain.KPIRow) int64 { return r.CollectionCountCum })
	minters := lastBy(previous, minterOf, compareMinter, func(r domain.KPIRow) int64 { return r.MinterCountCum })

	for i := range fresh {
		r := &fresh[i]
		if old, ok := tokens[r.TokenKey()]; ok {
			r.TokenCountCum += old.TokenCountCum
			r.TokenUSDCum += old.TokenUSDCum
			r.ParallelOwnersMax = max(r.ParallelOwnersMax, old.ParallelOwnersMax)
		}
		if old, ok := collections[collectionKey(*r)]; ok {
			r.CollectionCountCum += old.CollectionCountCum
			r.CollectionUSDCum += old.CollectionUSDCum
		}
		if old, ok := minters[minterOf(*r)]; ok {
			r.MinterCountCum += old.MinterCountCum
			r.MinterUSDCum += old.MinterUSDCum
		}
	}
}

// carried returns the last previous row of every token without in-month activity
func carried(previous, fresh []domain.KPIRow) []domain.KPIRow {
	active := make(map[domain.TokenKey]bool, len(fresh))
	for _, r := range fresh {
		active[r.TokenKey()] = true
	}

	var idle []domain.KPIRow
	for _, r := range previous {
		if !active[r.TokenKey()] {
			idle = append(idle, r)
		}
	}
	if len(idle) == 0 {
		return nil
	}

	last := lastBy(idle,
		func(r domain.KPIRow) carryKey { return carryKey{Token: r.TokenKey(), Minter: r.Minter} },
		func(a, b domain.KPIRow) int { return cmp.Or(compareToken(a, b), cmp.Compare(a.Minter, b.Minter)) },
		func(r domain.KPIRow) int64 { return r.TokenCountCum },
	)

	rows := make([]domain.KPIRow, 0, len(last))
	for _, r := range last {
		r.InMonth = false
		rows = append(rows, r)
	}
	slices.SortFunc(rows, func(a, b domain.KPIRow) int {
		return cmp.Or(compareToken(a, b), cmp.Compare(a.Minter, b.Minter))
	})
	return rows
}

func compareToken(a, b domain.KPIRow) int {
	return cmp.Or(
		cmp.Compare(a.Category, b.Category),
		cmp.Compare(a.CollectionID, b.CollectionID),
		cmp.Compare(a.TokenID, b.TokenID),
	)
}

func compareCollection(a, b domain.KPIRow) int {
	return cmp.Or(
		cmp.Compare(a.Category, b.Category),
		cmp.Compare(a.CollectionID, b.CollectionID),
	)
}

func compareMinter(a, b domain.KPIRow) int {
	return cmp.Or(
		cmp.Compare(a.Category, b.Category),
		cmp.Compare(a.Minter, b.Minter),
	)
}

func sortByToken(rows []domain.KPIRow) {
	slices.SortStableFunc(rows, func(a, b domain.KPIRow) int {
		return cmp.Or(compareToken(a, b), a.Timestamp.Compare(b.Timestamp))
	})
}
