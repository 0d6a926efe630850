// Package pipeline runs the monthly build chain over categories and months.
package pipeline

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/feral-file/ff-nft-warehouse/internal/adapter"
	"github.com/feral-file/ff-nft-warehouse/internal/dedup"
	"github.com/feral-file/ff-nft-warehouse/internal/domain"
	"github.com/feral-file/ff-nft-warehouse/internal/holder"
	"github.com/feral-file/ff-nft-warehouse/internal/kpi"
	"github.com/feral-file/ff-nft-warehouse/internal/logger"
	"github.com/feral-file/ff-nft-warehouse/internal/metrics"
	"github.com/feral-file/ff-nft-warehouse/internal/period"
	"github.com/feral-file/ff-nft-warehouse/internal/store"
	"github.com/feral-file/ff-nft-warehouse/internal/timeseries"
)

// Options configures a run
type Options struct {
	Categories []domain.Category
	// From and To bound the months to build. Both zero means every month from the
	// first one without a time series up to the last transaction partition.
	From domain.Monat
	To   domain.Monat
	// Lookback rebuilds this many months before the first month
	Lookback int
	// Steps to run, all when empty
	Steps []string
}

// Steps holds the builders of the chain
type Steps struct {
	Detector   dedup.Detector
	Holder     holder.Builder
	KPI        kpi.Builder
	TimeSeries timeseries.Builder
}

// monthBuilder is the shape shared by the monthly builders
type monthBuilder interface {
	BuildMonth(ctx context.Context, category domain.Category, monat domain.Monat) (int, error)
}

// Report summarizes a run
type Report struct {
	RunID   string
	Months  int
	Flagged int
	Rows    map[string]int
}

// Runner builds the chain per category, month by month
type Runner struct {
	warehouse store.Warehouse
	steps     Steps
	clock     adapter.Clock
	metrics   *metrics.Recorder
	opts      Options
}

// NewRunner creates a pipeline runner. The recorder may be nil.
func NewRunner(warehouse store.Warehouse, steps Steps, clock adapter.Clock, recorder *metrics.Recorder, opts Options) *Runner {
	if len(opts.Steps) == 0 {
		opts.Steps = domain.BuildSteps()
	}
	return &Runner{
		warehouse: warehouse,
		steps:     steps,
		clock:     clock,
		metrics:   recorder,
		opts:      opts,
	}
}

// Run builds every configured category
func (r *Runner) Run(ctx context.Context) (Report, error) {
	report := Report{
		RunID: ulid.MustNewDefault(r.clock.Now()).String(),
		Rows:  make(map[string]int),
	}
	ctx = logger.WithRun(ctx, logger.RunInfo{RunID: report.RunID})
	start := r.clock.Now()

	logger.InfoCtx(ctx, "Starting warehouse run",
		zap.Int("categories", len(r.opts.Categories)),
		zap.Strings("steps", r.opts.Steps),
		zap.Int("lookback", r.opts.Lookback),
	)

	for _, category := range r.opts.Categories {
		if err := r.runCategory(ctx, category, &report); err != nil {
			logger.ErrorCtx(ctx, err, zap.String("category", category.Key()))
			return report, err
		}
	}

	logger.InfoCtx(ctx, "Finished warehouse run",
		zap.Int("months", report.Months),
		zap.Int("flagged", report.Flagged),
		zap.Any("rows", report.Rows),
		zap.Duration("duration", r.clock.Since(start)),
	)
	return report, nil
}

func (r *Runner) runCategory(ctx context.Context, category domain.Category, report *Report) error {
	ctx = logger.WithStep(ctx, category.Key(), "", "")

	months, err := r.months(ctx, category)
	if err != nil {
		return err
	}
	if len(months) == 0 {
		logger.InfoCtx(ctx, "Nothing to build")
		return nil
	}

	logger.InfoCtx(ctx, "Building category",
		zap.Stringer("from", months[0]),
		zap.Stringer("to", months[len(months)-1]),
	)

	if err := r.requirePartitions(ctx, category, months); err != nil {
		return err
	}

	if r.enabled(domain.STEP_DEDUP) {
		stepCtx := logger.WithStep(ctx, "", domain.STEP_DEDUP, "")
		started := r.clock.Now()
		result, err := r.steps.Detector.Run(stepCtx, category, months)
		if err != nil {
			return fmt.Errorf("failed to run %s for %s: %w", domain.STEP_DEDUP, category.Key(), err)
		}
		r.metrics.ObserveStep(domain.STEP_DEDUP, r.clock.Since(started))
		r.metrics.AddRows(domain.STEP_DEDUP, category.Key(), result.Flagged)
		report.Flagged += result.Flagged
		report.Rows[domain.STEP_DEDUP] += result.Scanned
	}

	monthly := []struct {
		name    string
		builder monthBuilder
	}{
		{domain.STEP_HOLDER, r.steps.Holder},
		{domain.STEP_KPI, r.steps.KPI},
		{domain.STEP_TIMESERIES, r.steps.TimeSeries},
	}

	for _, m := range months {
		for _, step := range monthly {
			if !r.enabled(step.name) {
				continue
			}
			stepCtx := logger.WithStep(ctx, "", step.name, m.String())
			started := r.clock.Now()
			rows, err := step.builder.BuildMonth(stepCtx, category, m)
			if err != nil {
				return fmt.Errorf("failed to run %s for %s/%s: %w", step.name, category.Key(), m, err)
			}
			elapsed := r.clock.Since(started)
			r.metrics.ObserveStep(step.name, elapsed)
			r.metrics.AddRows(step.name, category.Key(), rows)
			report.Rows[step.name] += rows

			logger.DebugCtx(stepCtx, "Step finished", zap.Int("rows", rows), zap.Duration("duration", elapsed))
		}
		report.Months++
	}
	return nil
}

func (r *Runner) enabled(step string) bool {
	return slices.Contains(r.opts.Steps, step)
}

// months returns the months to build for the category
func (r *Runner) months(ctx context.Context, category domain.Category) ([]domain.Monat, error) {
	if r.opts.From != 0 && r.opts.To != 0 {
		return period.MonthRange(r.opts.From, r.opts.To, r.opts.Lookback)
	}

	txMonths, err := r.warehouse.ListMonats(ctx, store.FamilyTransactions, category)
	if err != nil {
		return nil, fmt.Errorf("failed to list transaction partitions: %w", err)
	}
	if len(txMonths) == 0 {
		return nil, nil
	}
	built, err := r.warehouse.ListMonats(ctx, store.FamilyTimeSeries, category)
	if err != nil {
		return nil, fmt.Errorf("failed to list time series partitions: %w", err)
	}

	first, ok := firstUncovered(txMonths, built)
	if !ok {
		return nil, nil
	}
	return period.MonthRange(first, slices.Max(txMonths), r.opts.Lookback)
}

// firstUncovered returns the earliest transaction month without a time series
func firstUncovered(txMonths, built []domain.Monat) (domain.Monat, bool) {
	requested := make([]period.Interval, 0, len(txMonths))
	for _, m := range txMonths {
		requested = append(requested, monthInterval(m))
	}
	existing := make([]period.Interval, 0, len(built))
	for _, m := range built {
		existing = append(existing, monthInterval(m))
	}

	uncovered := period.FilterUncoveredPeriods(requested, existing, period.FilterModeCutter)
	if len(uncovered) == 0 {
		return 0, false
	}
	first := slices.MinFunc(uncovered, func(a, b period.Interval) int {
		return cmp.Compare(a.Start, b.Start)
	})
	return fromIndex(first.Start), true
}

func monthInterval(m domain.Monat) period.Interval {
	idx := int64(m.Year()*12 + m.Month() - 1)
	return period.Interval{Start: idx, End: idx + 1}
}

func fromIndex(idx int64) domain.Monat {
	return domain.Monat(int(idx/12)*100 + int(idx%12) + 1)
}

// requirePartitions fails when a month of the range has no transaction partition.
// Cumulative state is carried month to month, so no month may be assumed empty.
func (r *Runner) requirePartitions(ctx context.Context, category domain.Category, months []domain.Monat) error {
	var missing []domain.Monat
	for _, m := range months {
		exists, err := r.warehouse.Exists(ctx, store.FamilyTransactions, category, m)
		if err != nil {
			return fmt.Errorf("failed to check transactions %s: %w", m, err)
		}
		if !exists {
			missing = append(missing, m)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: transactions %s for %v", domain.ErrMissingDependency, category.Key(), missing)
	}
	return nil
}

// Finish records the run outcome and pushes the metrics when a Pushgateway is configured
func (r *Runner) Finish(ctx context.Context, command, pushgatewayURL string, runErr error) {
	r.metrics.RunFinished(command, r.clock.Now(), runErr)
	pushCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := r.metrics.Push(pushCtx, pushgatewayURL, command); err != nil {
		logger.WarnCtx(ctx, "Failed to push metrics", zap.Error(err))
	}
}
