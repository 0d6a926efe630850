package timeseries

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/feral-file/ff-nft-warehouse/internal/domain"
	"github.com/feral-file/ff-nft-warehouse/internal/logger"
	"github.com/feral-file/ff-nft-warehouse/internal/period"
	"github.com/feral-file/ff-nft-warehouse/internal/store"
)

// Options configures the collection time series
type Options struct {
	// Windows are the moving-window lengths in days, ascending
	Windows []int
	// Estimated aggregates the facts per day before the window statistics
	Estimated bool
}

// Builder materializes the owner ledger, the token ledger and the collection time series of a month
//
//go:generate mockgen -source=builder.go -destination=../mocks/timeseries_builder.go -package=mocks -mock_names=Builder=MockTimeSeriesBuilder
type Builder interface {
	// BuildMonth builds the tables of the month. The KPI table of the same month
	// must exist. It returns the number of series rows written.
	BuildMonth(ctx context.Context, category domain.Category, monat domain.Monat) (int, error)
}

type builder struct {
	warehouse store.Warehouse
	opts      Options
}

// NewBuilder creates a time series builder
func NewBuilder(warehouse store.Warehouse, opts Options) (Builder, error) {
	if len(opts.Windows) == 0 {
		opts.Windows = domain.DefaultWindows()
	}
	if err := ValidateWindows(opts.Windows); err != nil {
		return nil, err
	}
	opts.Windows = slices.Clone(opts.Windows)

	return &builder{
		warehouse: warehouse,
		opts:      opts,
	}, nil
}

func (b *builder) BuildMonth(ctx context.Context, category domain.Category, monat domain.Monat) (int, error) {
	ctx = logger.WithStep(ctx, category.Key(), "", monat.String())

	prev := period.MonthAdd(monat, -1)

	current, err := b.warehouse.ReadKPI(ctx, category, monat)
	if err != nil {
		if store.IsNotFound(err) {
			return 0, fmt.Errorf("%w: kpi %s/%s", domain.ErrMissingDependency, category.Key(), monat)
		}
		return 0, fmt.Errorf("failed to read kpi %s: %w", monat, err)
	}

	previous, err := optional(b.warehouse.ReadKPI(ctx, category, prev))
	if err != nil {
		return 0, fmt.Errorf("failed to read kpi %s: %w", prev, err)
	}

	txs, err := b.warehouse.ReadTransactions(ctx, category, monat)
	if err != nil {
		return 0, fmt.Errorf("failed to read transactions %s: %w", monat, err)
	}

	owners, err := b.updateOwners(ctx, category, monat, txs)
	if err != nil {
		return 0, err
	}

	tokens, err := b.updateTokens(ctx, category, monat, txs, previous)
	if err != nil {
		return 0, err
	}

	days := Compute(Input{
		Monat:        monat,
		Windows:      b.opts.Windows,
		Estimated:    b.opts.Estimated,
		Transactions: txs,
		KPI:          current,
		PreviousKPI:  previous,
		Owners:       owners,
		Tokens:       tokens,
	})

	old, err := b.warehouse.ReadTimeSeries(ctx, category, prev)
	switch {
	case store.IsNotFound(err):
		logger.InfoCtx(ctx, "No previous time series, skipping reconciliation")
	case err != nil:
		return 0, fmt.Errorf("failed to read time series %s: %w", prev, err)
	default:
		days = Reconcile(old, days, monat)
	}

	if err := b.warehouse.WriteTimeSeries(ctx, category, monat, days); err != nil {
		return 0, fmt.Errorf("failed to write time series %s: %w", monat, err)
	}

	logger.InfoCtx(ctx, "Built collection time series",
		zap.Int("owners", len(owners)),
		zap.Int("tokens", len(tokens)),
		zap.Int("rows", len(days)),
		zap.Bool("estimated", b.opts.Estimated),
	)
	return len(days), nil
}

func (b *builder) updateOwners(ctx context.Context, category domain.Category, monat domain.Monat, txs []domain.Transaction) ([]domain.OwnerFirstSeen, error) {
	prev := period.MonthAdd(monat, -1)
	previous, err := optional(b.warehouse.ReadOwnerLedger(ctx, category, prev))
	if err != nil {
		return nil, fmt.Errorf("failed to read owner ledger %s: %w", prev, err)
	}

	owners := UpdateOwnerLedger(previous, txs)
	if err := b.warehouse.WriteOwnerLedger(ctx, category, monat, owners); err != nil {
		return nil, fmt.Errorf("failed to write owner ledger %s: %w", monat, err)
	}
	return owners, nil
}

func (b *builder) updateTokens(ctx context.Context, category domain.Category, monat domain.Monat, txs []domain.Transaction, previousKPI []domain.KPIRow) ([]domain.TokenFirstSeen, error) {
	prev := period.MonthAdd(monat, -1)
	previous, err := b.warehouse.ReadTokenLedger(ctx, category, prev)
	if err != nil {
		if !store.IsNotFound(err) {
			return nil, fmt.Errorf("failed to read token ledger %s: %w", prev, err)
		}
		previous = SeedTokenLedger(previousKPI)
	}

	tokens := UpdateTokenLedger(previous, txs)
	if err := b.warehouse.WriteTokenLedger(ctx, category, monat, tokens); err != nil {
		return nil, fmt.Errorf("failed to write token ledger %s: %w", monat, err)
	}
	return tokens, nil
}

// optional treats a missing table as empty
func optional[T any](rows []T, err error) ([]T, error) {
	if store.IsNotFound(err) {
		return nil, nil
	}
	return rows, err
}
