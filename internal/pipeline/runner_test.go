package pipeline_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-nft-warehouse/internal/adapter"
	"github.com/feral-file/ff-nft-warehouse/internal/dedup"
	"github.com/feral-file/ff-nft-warehouse/internal/domain"
	"github.com/feral-file/ff-nft-warehouse/internal/holder"
	"github.com/feral-file/ff-nft-warehouse/internal/kpi"
	"github.com/feral-file/ff-nft-warehouse/internal/logger"
	"github.com/feral-file/ff-nft-warehouse/internal/metrics"
	"github.com/feral-file/ff-nft-warehouse/internal/mocks"
	"github.com/feral-file/ff-nft-warehouse/internal/pipeline"
	"github.com/feral-file/ff-nft-warehouse/internal/store"
	"github.com/feral-file/ff-nft-warehouse/internal/timeseries"
)

const category domain.Category = "art"

func setupLogger(t *testing.T) {
	t.Helper()
	err := logger.Initialize(logger.Config{Debug: true})
	require.NoError(t, err)
}

func sale(seller, buyer string, at time.Time, usd float64) domain.Transaction {
	return domain.Transaction{
		Category:     category,
		MarketID:     "m1",
		CollectionID: "c1",
		TokenID:      "t1",
		Seller:       seller,
		Buyer:        buyer,
		Timestamp:    at,
		CryptoSymbol: "ETH",
		ValueCrypto:  usd / 1000,
		ValueUSD:     usd,
	}
}

func newSteps(t *testing.T, wh store.Warehouse, tokens store.TokenMasterStore) pipeline.Steps {
	t.Helper()
	series, err := timeseries.NewBuilder(wh, timeseries.Options{})
	require.NoError(t, err)
	return pipeline.Steps{
		Detector:   dedup.NewDetector(wh),
		Holder:     holder.NewBuilder(wh),
		KPI:        kpi.NewBuilder(wh, tokens),
		TimeSeries: series,
	}
}

func TestRunner_Run_EndToEnd(t *testing.T) {
	setupLogger(t)
	ctx := context.Background()

	blobs := store.NewLocalBlobStore(t.TempDir(), adapter.NewFileSystem())
	wh := store.NewParquetWarehouse(blobs)
	tokens := store.NewParquetTokenMasterStore(blobs)

	require.NoError(t, wh.WriteTransactions(ctx, category, 202401, []domain.Transaction{
		sale("M", "A", time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC), 100),
		sale("A", "B", time.Date(2024, 1, 20, 10, 0, 0, 0, time.UTC), 150),
	}))
	require.NoError(t, wh.WriteTransactions(ctx, category, 202402, []domain.Transaction{
		sale("B", "C", time.Date(2024, 2, 3, 10, 0, 0, 0, time.UTC), 200),
	}))

	recorder := metrics.New()
	runner := pipeline.NewRunner(wh, newSteps(t, wh, tokens), adapter.NewClock(), recorder, pipeline.Options{
		Categories: []domain.Category{category},
	})

	report, err := runner.Run(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 2, report.Months)
	assert.Equal(t, 0, report.Flagged)
	assert.Equal(t, 3, report.Rows[domain.STEP_DEDUP])
	assert.Equal(t, 5, report.Rows[domain.STEP_HOLDER])
	assert.Equal(t, 3, report.Rows[domain.STEP_KPI])
	assert.Equal(t, 27+29, report.Rows[domain.STEP_TIMESERIES])

	for _, family := range []store.Family{
		store.FamilyHolderLedger,
		store.FamilyKPI,
		store.FamilyOwnerLedger,
		store.FamilyTokenLedger,
		store.FamilyTimeSeries,
	} {
		months, err := wh.ListMonats(ctx, family, category)
		require.NoError(t, err)
		assert.ElementsMatch(t, []domain.Monat{202401, 202402}, months, family)
	}

	again, err := runner.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Months)
	assert.NotEqual(t, report.RunID, again.RunID)
}

func TestRunner_Run_ResumesAfterLastBuiltMonth(t *testing.T) {
	setupLogger(t)
	ctx := context.Background()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	wh := mocks.NewMockWarehouse(ctrl)
	holders := mocks.NewMockHolderBuilder(ctrl)
	kpis := mocks.NewMockKPIBuilder(ctrl)
	series := mocks.NewMockTimeSeriesBuilder(ctrl)

	wh.EXPECT().ListMonats(gomock.Any(), store.FamilyTransactions, category).
		Return([]domain.Monat{202312, 202401, 202402, 202403}, nil)
	wh.EXPECT().ListMonats(gomock.Any(), store.FamilyTimeSeries, category).
		Return([]domain.Monat{202312}, nil)

	for _, m := range []domain.Monat{202401, 202402, 202403} {
		wh.EXPECT().Exists(gomock.Any(), store.FamilyTransactions, category, m).Return(true, nil)
		gomock.InOrder(
			holders.EXPECT().BuildMonth(gomock.Any(), category, m).Return(2, nil),
			kpis.EXPECT().BuildMonth(gomock.Any(), category, m).Return(1, nil),
			series.EXPECT().BuildMonth(gomock.Any(), category, m).Return(10, nil),
		)
	}

	runner := pipeline.NewRunner(wh, pipeline.Steps{
		Holder:     holders,
		KPI:        kpis,
		TimeSeries: series,
	}, adapter.NewClock(), nil, pipeline.Options{
		Categories: []domain.Category{category},
		Steps:      []string{domain.STEP_HOLDER, domain.STEP_KPI, domain.STEP_TIMESERIES},
	})

	report, err := runner.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Months)
	assert.Equal(t, 6, report.Rows[domain.STEP_HOLDER])
	assert.Equal(t, 30, report.Rows[domain.STEP_TIMESERIES])
}

func TestRunner_Run_ExplicitRangeWithLookback(t *testing.T) {
	setupLogger(t)
	ctx := context.Background()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	wh := mocks.NewMockWarehouse(ctrl)
	detector := mocks.NewMockDetector(ctrl)
	kpis := mocks.NewMockKPIBuilder(ctrl)

	months := []domain.Monat{202311, 202312, 202401}
	for _, m := range months {
		wh.EXPECT().Exists(gomock.Any(), store.FamilyTransactions, category, m).Return(true, nil)
		kpis.EXPECT().BuildMonth(gomock.Any(), category, m).Return(4, nil)
	}
	detector.EXPECT().Run(gomock.Any(), category, months).Return(dedup.Result{Scanned: 12, Flagged: 2}, nil)

	runner := pipeline.NewRunner(wh, pipeline.Steps{
		Detector: detector,
		KPI:      kpis,
	}, adapter.NewClock(), metrics.New(), pipeline.Options{
		Categories: []domain.Category{category},
		From:       202312,
		To:         202401,
		Lookback:   1,
		Steps:      []string{domain.STEP_DEDUP, domain.STEP_KPI},
	})

	report, err := runner.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Months)
	assert.Equal(t, 2, report.Flagged)
	assert.Equal(t, 12, report.Rows[domain.STEP_DEDUP])
	assert.Equal(t, 12, report.Rows[domain.STEP_KPI])
}

func TestRunner_Run_MissingPartitionFails(t *testing.T) {
	setupLogger(t)
	ctx := context.Background()

	tests := []struct {
		name string
		opts pipeline.Options
	}{
		{
			name: "explicit range",
			opts: pipeline.Options{Categories: []domain.Category{category}, From: 202401, To: 202403},
		},
		{
			name: "discovered range",
			opts: pipeline.Options{Categories: []domain.Category{category}},
		},
		{
			name: "lookback month",
			opts: pipeline.Options{Categories: []domain.Category{category}, From: 202403, To: 202403, Lookback: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blobs := store.NewLocalBlobStore(t.TempDir(), adapter.NewFileSystem())
			wh := store.NewParquetWarehouse(blobs)
			tokens := store.NewParquetTokenMasterStore(blobs)

			require.NoError(t, wh.WriteTransactions(ctx, category, 202401, []domain.Transaction{
				sale("M", "A", time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC), 100),
			}))
			require.NoError(t, wh.WriteTransactions(ctx, category, 202403, []domain.Transaction{
				sale("A", "B", time.Date(2024, 3, 3, 10, 0, 0, 0, time.UTC), 200),
			}))

			runner := pipeline.NewRunner(wh, newSteps(t, wh, tokens), adapter.NewClock(), nil, tt.opts)
			report, err := runner.Run(ctx)
			require.ErrorIs(t, err, domain.ErrMissingDependency)
			assert.Contains(t, err.Error(), "202402")
			assert.Equal(t, 0, report.Months)

			exists, err := wh.Exists(ctx, store.FamilyTransactions, category, 202402)
			require.NoError(t, err)
			assert.False(t, exists)

			for _, family := range []store.Family{store.FamilyHolderLedger, store.FamilyKPI, store.FamilyTimeSeries} {
				months, err := wh.ListMonats(ctx, family, category)
				require.NoError(t, err)
				assert.Empty(t, months, family)
			}
		})
	}
}

func TestRunner_Run_StepFailure(t *testing.T) {
	setupLogger(t)
	ctx := context.Background()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	wh := mocks.NewMockWarehouse(ctrl)
	holders := mocks.NewMockHolderBuilder(ctrl)
	kpis := mocks.NewMockKPIBuilder(ctrl)

	wh.EXPECT().Exists(gomock.Any(), store.FamilyTransactions, category, gomock.Any()).Return(true, nil).Times(2)
	holders.EXPECT().BuildMonth(gomock.Any(), category, domain.Monat(202401)).Return(3, nil)
	kpis.EXPECT().BuildMonth(gomock.Any(), category, domain.Monat(202401)).
		Return(0, domain.ErrMissingDependency)

	runner := pipeline.NewRunner(wh, pipeline.Steps{
		Holder: holders,
		KPI:    kpis,
	}, adapter.NewClock(), nil, pipeline.Options{
		Categories: []domain.Category{category},
		From:       202401,
		To:         202402,
		Steps:      []string{domain.STEP_HOLDER, domain.STEP_KPI},
	})

	report, err := runner.Run(ctx)
	require.ErrorIs(t, err, domain.ErrMissingDependency)
	assert.Contains(t, err.Error(), "kpi for art/202401")
	assert.Equal(t, 0, report.Months)
}

func TestRunner_Run_NoPartitions(t *testing.T) {
	setupLogger(t)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	wh := mocks.NewMockWarehouse(ctrl)
	wh.EXPECT().ListMonats(gomock.Any(), store.FamilyTransactions, category).Return(nil, nil)

	runner := pipeline.NewRunner(wh, pipeline.Steps{}, adapter.NewClock(), nil, pipeline.Options{
		Categories: []domain.Category{category},
	})

	report, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Months)
}

func TestRunner_Run_ListFailure(t *testing.T) {
	setupLogger(t)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	boom := errors.New("boom")
	wh := mocks.NewMockWarehouse(ctrl)
	wh.EXPECT().ListMonats(gomock.Any(), store.FamilyTransactions, category).Return(nil, boom)

	runner := pipeline.NewRunner(wh, pipeline.Steps{}, adapter.NewClock(), nil, pipeline.Options{
		Categories: []domain.Category{category},
	})

	_, err := runner.Run(context.Background())
	require.ErrorIs(t, err, boom)
}

func TestRunner_Finish(t *testing.T) {
	setupLogger(t)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	clock := mocks.NewMockClock(ctrl)
	clock.EXPECT().Now().Return(at).AnyTimes()

	recorder := metrics.New()
	runner := pipeline.NewRunner(mocks.NewMockWarehouse(ctrl), pipeline.Steps{}, clock, recorder, pipeline.Options{})

	runner.Finish(context.Background(), "warehouse", "", nil)

	families, err := recorder.Registry().Gather()
	require.NoError(t, err)
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "ff_warehouse_runs_total")
	assert.Contains(t, names, "ff_warehouse_last_success_timestamp_seconds")
}
