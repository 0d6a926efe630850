package dedup

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"

	"go.uber.org/zap"

	"github.com/feral-file/ff-nft-warehouse/internal/domain"
	"github.com/feral-file/ff-nft-warehouse/internal/logger"
	"github.com/feral-file/ff-nft-warehouse/internal/store"
)

// Detector flags probable duplicate sales in the transaction partitions
//
//go:generate mockgen -source=detector.go -destination=../mocks/dedup_detector.go -package=mocks -mock_names=Detector=MockDetector
type Detector interface {
	// Run scans the months pairwise and writes the flagged partitions back.
	// The months must be ascending. A single month is scanned on its own.
	Run(ctx context.Context, category domain.Category, months []domain.Monat) (Result, error)
}

// Result summarizes a detector run
type Result struct {
	Scanned int
	Flagged int
}

// groupKey identifies transactions that repeat the same sale
type groupKey struct {
	CollectionID string
	TokenID      string
	Seller       string
	Buyer        string
	ValueCrypto  float64
}

type detector struct {
	warehouse store.Warehouse
}

// NewDetector creates a duplicate detector over the warehouse transaction partitions
func NewDetector(warehouse store.Warehouse) Detector {
	return &detector{warehouse: warehouse}
}

// Run scans the months pairwise and writes the flagged partitions back
func (d *detector) Run(ctx context.Context, category domain.Category, months []domain.Monat) (Result, error) {
	ctx = logger.WithStep(ctx, category.Key(), "", "")
	var result Result
	for _, pair := range pairMonths(months) {
		flagged, scanned, err := d.scan(ctx, category, pair)
		if err != nil {
			return result, err
		}
		result.Scanned += scanned
		result.Flagged += flagged
	}
	return result, nil
}

// pairMonths returns consecutive pairs of the months, or the single month alone
func pairMonths(months []domain.Monat) [][]domain.Monat {
	if len(months) == 1 {
		return [][]domain.Monat{{months[0]}}
	}
	pairs := make([][]domain.Monat, 0, len(months))
	for i := 0; i+1 < len(months); i++ {
		pairs = append(pairs, []domain.Monat{months[i], months[i+1]})
	}
	return pairs
}

func (d *detector) scan(ctx context.Context, category domain.Category, months []domain.Monat) (int, int, error) {
	var txs []domain.Transaction
	for _, m := range months {
		part, err := d.warehouse.ReadTransactions(ctx, category, m)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to read transactions %s: %w", m, err)
		}
		txs = append(txs, part...)
	}

	flagged := MarkDuplicates(txs)

	byMonth := make(map[domain.Monat][]domain.Transaction, len(months))
	for _, tx := range txs {
		m := tx.Monat()
		if !slices.Contains(months, m) {
			return 0, 0, fmt.Errorf("%w: transaction at %s outside months %v", domain.ErrMalformedPartition, tx.Timestamp, months)
		}
		byMonth[m] = append(byMonth[m], tx)
	}

	for _, m := range months {
		sortTransactions(byMonth[m])
		if err := d.warehouse.WriteTransactions(ctx, category, m, byMonth[m]); err != nil {
			return 0, 0, fmt.Errorf("failed to write transactions %s: %w", m, err)
		}
	}

	logger.InfoCtx(ctx, "Scanned transactions for duplicates",
		zap.Any("months", months),
		zap.Int("rows", len(txs)),
		zap.Int("flagged", flagged),
	)
	return flagged, len(txs), nil
}

// MarkDuplicates flags every transaction that repeats an earlier sale of the same group
// within DUPLICATE_MAX_SPAN_DAYS whole days. The slice order is kept and existing flags
// are never cleared. It returns the number of newly flagged rows.
func MarkDuplicates(txs []domain.Transaction) int {
	groups := make(map[groupKey][]int)
	for i, tx := range txs {
		if math.IsNaN(tx.ValueCrypto) {
			continue
		}
		k := groupKey{
			CollectionID: tx.CollectionID,
			TokenID:      tx.TokenID,
			Seller:       tx.Seller,
			Buyer:        tx.Buyer,
			ValueCrypto:  tx.ValueCrypto,
		}
		groups[k] = append(groups[k], i)
	}

	var flagged int
	for _, idx := range groups {
		if len(idx) < 2 {
			continue
		}
		slices.SortStableFunc(idx, func(a, b int) int {
			return txs[a].Timestamp.Compare(txs[b].Timestamp)
		})

		first := txs[idx[0]].Timestamp
		last := txs[idx[len(idx)-1]].Timestamp
		if domain.DaysBetween(first, last) > domain.DUPLICATE_MAX_SPAN_DAYS {
			continue
		}

		for _, i := range idx[1:] {
			if !txs[i].Duplicate {
				txs[i].Duplicate = true
				flagged++
			}
		}
	}
	return flagged
}

// sortTransactions orders transactions by token and time
func sortTransactions(txs []domain.Transaction) {
	slices.SortStableFunc(txs, func(a, b domain.Transaction) int {
		return cmp.Or(
			cmp.Compare(a.CollectionID, b.CollectionID),
			cmp.Compare(a.TokenID, b.TokenID),
			a.Timestamp.Compare(b.Timestamp),
		)
	})
}
