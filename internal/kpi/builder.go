package kpi

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/feral-file/ff-nft-warehouse/internal/domain"
	"github.com/feral-file/ff-nft-warehouse/internal/logger"
	"github.com/feral-file/ff-nft-warehouse/internal/period"
	"github.com/feral-file/ff-nft-warehouse/internal/store"
)

// Builder materializes the monthly cumulative NFT KPI table
//
//go:generate mockgen -source=builder.go -destination=../mocks/kpi_builder.go -package=mocks -mock_names=Builder=MockKPIBuilder
type Builder interface {
	// BuildMonth builds the KPI table of the month. The holder ledger of the same
	// month must exist. It returns the number of rows written.
	BuildMonth(ctx context.Context, category domain.Category, monat domain.Monat) (int, error)
}

type builder struct {
	warehouse store.Warehouse
	tokens    store.TokenMasterStore
}

// NewBuilder creates a KPI builder
func NewBuilder(warehouse store.Warehouse, tokens store.TokenMasterStore) Builder {
	return &builder{
		warehouse: warehouse,
		tokens:    tokens,
	}
}

func (b *builder) BuildMonth(ctx context.Context, category domain.Category, monat domain.Monat) (int, error) {
	ctx = logger.WithStep(ctx, category.Key(), "", monat.String())

	ledger, err := b.warehouse.ReadHolderLedger(ctx, category, monat)
	if err != nil {
		if store.IsNotFound(err) {
			return 0, fmt.Errorf("%w: holder ledger %s/%s", domain.ErrMissingDependency, category.Key(), monat)
		}
		return 0, fmt.Errorf("failed to read holder ledger %s: %w", monat, err)
	}

	txs, err := b.warehouse.ReadTransactions(ctx, category, monat)
	if err != nil {
		return 0, fmt.Errorf("failed to read transactions %s: %w", monat, err)
	}

	tokens, err := b.tokens.Load(ctx, category)
	if err != nil {
		return 0, fmt.Errorf("failed to load token master: %w", err)
	}

	prev := period.MonthAdd(monat, -1)
	previous, err := b.warehouse.ReadKPI(ctx, category, prev)
	if err != nil {
		if !store.IsNotFound(err) {
			return 0, fmt.Errorf("failed to read kpi %s: %w", prev, err)
		}
		logger.InfoCtx(ctx, "No previous KPI table, starting cumulative counters")
		previous = nil
	}

	rows, report := Build(txs, tokens, ledger, previous)
	if report.Unmatched > 0 {
		logger.WarnCtx(ctx, "Transactions without token master record dropped",
			zap.Int("unmatched", report.Unmatched),
		)
	}
	if report.Duplicated() {
		logger.WarnCtx(ctx, "Token master join produced more rows than expected",
			zap.Int("expected", report.Expected),
			zap.Int("actual", report.Actual),
		)
	}

	if err := b.warehouse.WriteKPI(ctx, category, monat, rows); err != nil {
		return 0, fmt.Errorf("failed to write kpi %s: %w", monat, err)
	}

	logger.InfoCtx(ctx, "Built KPI table",
		zap.Int("transactions", len(txs)),
		zap.Int("rows", len(rows)),
	)
	return len(rows), nil
}
