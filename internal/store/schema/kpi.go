package schema

import "github.com/feral-file/ff-nft-warehouse/internal/domain"

// KPIRecord is the parquet layout of a cumulative NFT KPI row
type KPIRecord struct {
	Category     string `parquet:"name=token_category, type=BYTE_ARRAY, convertedtype=UTF8"`
	CollectionID string `parquet:"name=collection_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	TokenID      string `parquet:"name=token_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Minter       string `parquet:"name=token_mint_address_est, type=BYTE_ARRAY, convertedtype=UTF8"`
	Timestamp    int64  `parquet:"name=nftkpi_datetime_stamp, type=INT64, convertedtype=TIMESTAMP_MILLIS"`

	ValueUSD   float64 `parquet:"name=trx_value_usd, type=DOUBLE"`
	Count      int64   `parquet:"name=trx_cnt, type=INT64"`
	TenureDays int64   `parquet:"name=token_tenure_days, type=INT64"`

	TokenCountCum     int64   `parquet:"name=nftkpi_token_trx_cnt_csum, type=INT64"`
	TokenUSDCum       float64 `parquet:"name=nftkpi_token_trx_usd_csum, type=DOUBLE"`
	ParallelOwnersMax int64   `parquet:"name=nftkpi_token_parallel_own_max, type=INT64"`

	CollectionCountCum int64   `parquet:"name=nftkpi_coll_trx_cnt_csum, type=INT64"`
	CollectionUSDCum   float64 `parquet:"name=nftkpi_coll_trx_usd_csum, type=DOUBLE"`

	MinterCountCum int64   `parquet:"name=nftkpi_mint_trx_cnt_csum, type=INT64"`
	MinterUSDCum   float64 `parquet:"name=nftkpi_mint_trx_usd_csum, type=DOUBLE"`

	InMonth bool `parquet:"name=nftkpi_inmonth_trx_flg, type=BOOLEAN"`
}

// NewKPIRecord converts a KPI row into its parquet layout
func NewKPIRecord(r domain.KPIRow) KPIRecord {
	return KPIRecord{
		Category:           string(r.Category),
		CollectionID:       r.CollectionID,
		TokenID:            r.TokenID,
		Minter:             r.Minter,
		Timestamp:          toMillis(r.Timestamp),
		ValueUSD:           r.ValueUSD,
		Count:              r.Count,
		TenureDays:         r.TenureDays,
		TokenCountCum:      r.TokenCountCum,
		TokenUSDCum:        r.TokenUSDCum,
		ParallelOwnersMax:  r.ParallelOwnersMax,
		CollectionCountCum: r.CollectionCountCum,
		CollectionUSDCum:   r.CollectionUSDCum,
		MinterCountCum:     r.MinterCountCum,
		MinterUSDCum:       r.MinterUSDCum,
		InMonth:            r.InMonth,
	}
}

// Domain converts the record back into a KPI row
func (r KPIRecord) Domain() domain.KPIRow {
	return domain.KPIRow{
		Category:           domain.Category(r.Category),
		CollectionID:       r.CollectionID,
		TokenID:            r.TokenID,
		Minter:             r.Minter,
		Timestamp:          fromMillis(r.Timestamp),
		ValueUSD:           r.ValueUSD,
		Count:              r.Count,
		TenureDays:         r.TenureDays,
		TokenCountCum:      r.TokenCountCum,
		TokenUSDCum:        r.TokenUSDCum,
		ParallelOwnersMax:  r.ParallelOwnersMax,
		CollectionCountCum: r.CollectionCountCum,
		CollectionUSDCum:   r.CollectionUSDCum,
		MinterCountCum:     r.MinterCountCum,
		MinterUSDCum:       r.MinterUSDCum,
		InMonth:            r.InMonth,
	}
}
