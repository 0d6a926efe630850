package holder

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/feral-file/ff-nft-warehouse/internal/domain"
	"github.com/feral-file/ff-nft-warehouse/internal/logger"
	"github.com/feral-file/ff-nft-warehouse/internal/period"
	"github.com/feral-file/ff-nft-warehouse/internal/store"
)

// Builder materializes the monthly holder ledger
//
//go:generate mockgen -source=builder.go -destination=../mocks/holder_builder.go -package=mocks -mock_names=Builder=MockHolderBuilder
type Builder interface {
	// BuildMonth builds the ledger of the month from its transactions and the
	// previous month's ledger, and writes it. It returns the number of rows written.
	BuildMonth(ctx context.Context, category domain.Category, monat domain.Monat) (int, error)
}

type builder struct {
	warehouse store.Warehouse
}

// NewBuilder creates a holder ledger builder
func NewBuilder(warehouse store.Warehouse) Builder {
	return &builder{warehouse: warehouse}
}

func (b *builder) BuildMonth(ctx context.Context, category domain.Category, monat domain.Monat) (int, error) {
	ctx = logger.WithStep(ctx, category.Key(), "", monat.String())

	txs, err := b.warehouse.ReadTransactions(ctx, category, monat)
	if err != nil {
		return 0, fmt.Errorf("failed to read transactions %s: %w", monat, err)
	}
	raw := BuildRaw(txs)

	prev := period.MonthAdd(monat, -1)
	previous, err := b.warehouse.ReadHolderLedger(ctx, category, prev)
	var entries []domain.HolderEntry
	switch {
	case store.IsNotFound(err):
		logger.InfoCtx(ctx, "No previous holder ledger, writing raw ledger")
		entries = raw
	case err != nil:
		return 0, fmt.Errorf("failed to read holder ledger %s: %w", prev, err)
	default:
		entries = Merge(previous, raw)
	}

	if err := b.warehouse.WriteHolderLedger(ctx, category, monat, entries); err != nil {
		return 0, fmt.Errorf("failed to write holder ledger %s: %w", monat, err)
	}

	logger.InfoCtx(ctx, "Built holder ledger",
		zap.Int("transactions", len(txs)),
		zap.Int("rows", len(entries)),
	)
	return len(entries), nil
}
