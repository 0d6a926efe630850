package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-nft-warehouse/internal/metrics"
	"github.com/feral-file/ff-nft-warehouse/internal/mocks"
	"github.com/feral-file/ff-nft-warehouse/internal/staging"
)

func TestLoad(t *testing.T) {
	now := time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		result     staging.Result
		err        error
		wantRows   int
		wantStatus string
	}{
		{
			name:       "success",
			result:     staging.Result{Chunks: 2, Transactions: 10, Appended: 7, Partitions: 2},
			wantRows:   1,
			wantStatus: metrics.StatusSuccess,
		},
		{
			name:       "failure",
			err:        errors.New("chunk unreadable"),
			wantRows:   0,
			wantStatus: metrics.StatusFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			loader := mocks.NewMockLoader(ctrl)
			clock := mocks.NewMockClock(ctrl)
			recorder := metrics.New()

			clock.EXPECT().Now().Return(now).Times(2)
			clock.EXPECT().Since(now).Return(3 * time.Second)
			loader.EXPECT().Load(gomock.Any()).Return(tt.result, tt.err)

			result, err := load(context.Background(), loader, clock, recorder, "ff-nds-loader")
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.result, result)

			rows, err := testutil.GatherAndCount(recorder.Registry(), "ff_warehouse_rows_written_total")
			require.NoError(t, err)
			assert.Equal(t, tt.wantRows, rows)

			families, err := recorder.Registry().Gather()
			require.NoError(t, err)
			var status string
			for _, f := range families {
				if f.GetName() != "ff_warehouse_runs_total" {
					continue
				}
				for _, m := range f.GetMetric() {
					for _, l := range m.GetLabel() {
						if l.GetName() == "status" {
							status = l.GetValue()
						}
					}
				}
			}
			assert.Equal(t, tt.wantStatus, status)
		})
	}
}
