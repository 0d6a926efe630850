package schema

import "github.com/feral-file/ff-nft-warehouse/internal/domain"

// WindowRecord is the parquet layout of one moving-window result
type WindowRecord struct {
	Days     int32   `parquet:"name=window_days, type=INT32"`
	CountSum int64   `parquet:"name=coll_trx_cnt_sum, type=INT64"`
	USDSum   float64 `parquet:"name=coll_trx_usd_sum, type=DOUBLE"`
	USDMin   float64 `parquet:"name=coll_trx_usd_min, type=DOUBLE"`
	USDMax   float64 `parquet:"name=coll_trx_usd_max, type=DOUBLE"`
	USDStd   float64 `parquet:"name=coll_trx_usd_std, type=DOUBLE"`
	USDP25   float64 `parquet:"name=coll_trx_usd_p25, type=DOUBLE"`
	USDP75   float64 `parquet:"name=coll_trx_usd_p75, type=DOUBLE"`
	AvgPrice float64 `parquet:"name=coll_avg_price, type=DOUBLE"`
}

// CollectionDayRecord is the parquet layout of a collection time series row
type CollectionDayRecord struct {
	Category     string `parquet:"name=token_category, type=BYTE_ARRAY, convertedtype=UTF8"`
	CollectionID string `parquet:"name=collection_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	ReportDate   int32  `parquet:"name=report_dt, type=INT32, convertedtype=DATE"`

	OwnerCount         float64 `parquet:"name=coll_owner_cumdcnt, type=DOUBLE"`
	TokenCount         float64 `parquet:"name=coll_token_dcnt, type=DOUBLE"`
	TokenSumUSD        float64 `parquet:"name=coll_token_sum_usd, type=DOUBLE"`
	AvgLatestValueUSD  float64 `parquet:"name=coll_token_avg_latest_val_usd, type=DOUBLE"`
	AvgLatestTrxDay    float64 `parquet:"name=coll_token_avg_latest_trx_day, type=DOUBLE"`
	MaxValueSeen       float64 `parquet:"name=coll_trx_maxval_usd_max, type=DOUBLE"`
	TrxCountCumulative float64 `parquet:"name=coll_trx_cnt_csum_max, type=DOUBLE"`
	TrxUSDCumulative   float64 `parquet:"name=coll_trx_usd_csum_max, type=DOUBLE"`

	DailyCount    int64   `parquet:"name=coll_trx_cnt_dly_sum, type=INT64"`
	DailyUSD      float64 `parquet:"name=coll_trx_usd_dly_sum, type=DOUBLE"`
	AvgPriceDaily float64 `parquet:"name=coll_avg_price_dly, type=DOUBLE"`

	Windows []WindowRecord `parquet:"name=windows, type=LIST"`
}

// NewCollectionDayRecord converts a time series row into its parquet layout
func NewCollectionDayRecord(d domain.CollectionDay) CollectionDayRecord {
	windows := make([]WindowRecord, 0, len(d.Windows))
	for _, w := range d.Windows {
		windows = append(windows, WindowRecord{
			Days:     int32(w.Days),
			CountSum: w.CountSum,
			USDSum:   w.USDSum,
			USDMin:   w.USDMin,
			USDMax:   w.USDMax,
			USDStd:   w.USDStd,
			USDP25:   w.USDP25,
			USDP75:   w.USDP75,
			AvgPrice: w.AvgPrice,
		})
	}

	return CollectionDayRecord{
		Category:           string(d.Category),
		CollectionID:       d.CollectionID,
		ReportDate:         toDate(d.ReportDate),
		OwnerCount:         d.OwnerCount,
		TokenCount:         d.TokenCount,
		TokenSumUSD:        d.TokenSumUSD,
		AvgLatestValueUSD:  d.AvgLatestValueUSD,
		AvgLatestTrxDay:    d.AvgLatestTrxDay,
		MaxValueSeen:       d.MaxValueSeen,
		TrxCountCumulative: d.TrxCountCumulative,
		TrxUSDCumulative:   d.TrxUSDCumulative,
		DailyCount:         d.DailyCount,
		DailyUSD:           d.DailyUSD,
		AvgPriceDaily:      d.AvgPriceDaily,
		Windows:            windows,
	}
}

// Domain converts the record back into a time series row
func (r CollectionDayRecord) Domain() domain.CollectionDay {
	windows := make([]domain.WindowStats, 0, len(r.Windows))
	for _, w := range r.Windows {
		windows = append(windows, domain.WindowStats{
			Days:     int(w.Days),
			CountSum: w.CountSum,
			USDSum:   w.USDSum,
			USDMin:   w.USDMin,
			USDMax:   w.USDMax,
			USDStd:   w.USDStd,
			USDP25:   w.USDP25,
			USDP75:   w.USDP75,
			AvgPrice: w.AvgPrice,
		})
	}

	return domain.CollectionDay{
		Category:           domain.Category(r.Category),
		CollectionID:       r.CollectionID,
		ReportDate:         fromDate(r.ReportDate),
		OwnerCount:         r.OwnerCount,
		TokenCount:         r.TokenCount,
		TokenSumUSD:        r.TokenSumUSD,
		AvgLatestValueUSD:  r.AvgLatestValueUSD,
		AvgLatestTrxDay:    r.AvgLatestTrxDay,
		MaxValueSeen:       r.MaxValueSeen,
		TrxCountCumulative: r.TrxCountCumulative,
		TrxUSDCumulative:   r.TrxUSDCumulative,
		DailyCount:         r.DailyCount,
		DailyUSD:           r.DailyUSD,
		AvgPriceDaily:      r.AvgPriceDaily,
		Windows:            windows,
	}
}
